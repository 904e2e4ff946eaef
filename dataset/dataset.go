/*
Package dataset defines the point source the tree grower replays once
per growth round, together with an in-memory implementation. Backends
over CSV streams, SQL databases and MongoDB live in subpackages.
*/
package dataset

import (
	"context"
	"fmt"
)

/*
Sample is a single training point: a feature vector and the target
value the grown tree should predict for it. Feature values are indexed
the way the feature registry indexes features; categorical values are
observed as float64 codes.
*/
type Sample struct {
	Features []float64
	Target   float64
}

/*
Source is a restartable iterator over training samples.

The grower replays a source in full once per growth round, so Reset
must be an idempotent rewind and the source must be safe to fully
re-consume arbitrarily many times.

All its methods but HasNext take a context that may allow cancelling
the operation if the implementation allows it.
*/
type Source interface {
	// Reset rewinds the source to its first sample. It returns an
	// error if the underlying backend cannot be rewound.
	Reset(ctx context.Context) error
	// HasNext indicates whether a call to Next will yield a sample.
	HasNext() bool
	// Next returns the next sample on the source or an error if it
	// cannot be read. Calling Next when HasNext is false is a caller
	// bug and implementations may panic.
	Next(ctx context.Context) (Sample, error)
}

type memorySource struct {
	samples []Sample
	pos     int
}

/*
New takes a slice of samples and returns a Source backed by the
process memory that iterates over them in order.
*/
func New(samples []Sample) Source {
	return &memorySource{samples: samples}
}

func (ms *memorySource) Reset(ctx context.Context) error {
	ms.pos = 0
	return nil
}

func (ms *memorySource) HasNext() bool {
	return ms.pos < len(ms.samples)
}

func (ms *memorySource) Next(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	if ms.pos >= len(ms.samples) {
		panic(fmt.Sprintf("reading sample %d from a source with %d samples", ms.pos, len(ms.samples)))
	}
	s := ms.samples[ms.pos]
	ms.pos++
	return s, nil
}
