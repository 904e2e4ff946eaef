/*
Package dbsource provides a dataset.Source backed by a SQL database
through an Adapter. Concrete adapters for SQLite3 and PostgreSQL live
in subpackages.

The samples table is expected to hold one numeric column per feature
plus one for the target; categorical values are stored as their value
codes. Rows are replayed in primary-key order, so every Reset yields
the same sample sequence.
*/
package dbsource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/colinsongf/Gradient-Boosted-Tree/dataset"
	"github.com/colinsongf/Gradient-Boosted-Tree/feature"
)

/*
Adapter is an interface to a SQL database holding a samples table.
Implementations deal with driver-specific connection handling and
identifier quoting.
*/
type Adapter interface {
	// QuerySamples returns the rows of the samples table restricted
	// to the given columns, in a stable order, or an error.
	QuerySamples(ctx context.Context, columns []string) (*sql.Rows, error)
	// Close closes the adapter and its underlying connections.
	Close() error
}

type dbSource struct {
	adapter  Adapter
	registry *feature.Registry
	target   string
	columns  []string
	rows     *sql.Rows
	next     *dataset.Sample
	nextErr  error
}

/*
Open takes an Adapter, a feature registry and the name of the target
column and returns a dataset.Source streaming the samples table
through the adapter. The source holds no rows until its first Reset.
*/
func Open(adapter Adapter, registry *feature.Registry, target string) dataset.Source {
	columns := make([]string, 0, registry.Len()+1)
	for _, f := range registry.Features() {
		columns = append(columns, f.Name())
	}
	columns = append(columns, target)
	return &dbSource{
		adapter:  adapter,
		registry: registry,
		target:   target,
		columns:  columns,
	}
}

func (ds *dbSource) Reset(ctx context.Context) error {
	if ds.rows != nil {
		if err := ds.rows.Close(); err != nil {
			return fmt.Errorf("closing previous samples query: %v", err)
		}
		ds.rows = nil
	}
	ds.nextErr = nil
	rows, err := ds.adapter.QuerySamples(ctx, ds.columns)
	if err != nil {
		return fmt.Errorf("querying samples: %v", err)
	}
	ds.rows = rows
	ds.prefetch()
	return ds.nextErr
}

func (ds *dbSource) HasNext() bool {
	return ds.next != nil
}

func (ds *dbSource) Next(ctx context.Context) (dataset.Sample, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Sample{}, err
	}
	if ds.nextErr != nil {
		return dataset.Sample{}, ds.nextErr
	}
	if ds.next == nil {
		panic("reading past the end of a db source")
	}
	s := *ds.next
	ds.prefetch()
	if ds.nextErr != nil {
		return dataset.Sample{}, ds.nextErr
	}
	return s, nil
}

// prefetch advances to the next row. When the rows are exhausted or
// fail they are closed immediately so their connection returns to the
// pool; the next Reset starts from a fresh query either way.
func (ds *dbSource) prefetch() {
	ds.next = nil
	if ds.rows == nil {
		return
	}
	if !ds.rows.Next() {
		if err := ds.rows.Err(); err != nil {
			ds.nextErr = fmt.Errorf("reading samples: %v", err)
		}
		ds.rows.Close()
		ds.rows = nil
		return
	}
	values := make([]float64, len(ds.columns))
	dest := make([]interface{}, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := ds.rows.Scan(dest...); err != nil {
		ds.nextErr = fmt.Errorf("scanning sample row: %v", err)
		ds.rows.Close()
		ds.rows = nil
		return
	}
	ds.next = &dataset.Sample{
		Features: values[:len(values)-1],
		Target:   values[len(values)-1],
	}
}
