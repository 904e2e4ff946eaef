/*
Package split provides the per-leaf split search: accumulators consume
the training points routed to one leaf during a statistics pass and are
finalized into the best candidate way of turning that leaf into a
decision node with two children.
*/
package split

import (
	"github.com/colinsongf/Gradient-Boosted-Tree/dataset"
)

/*
Best is the best candidate split found for one leaf: the feature to
decide on, the rule parameters for the decision node, and the
prediction and squared error the two resulting children would carry.

TotalError, the sum of both children's errors, is the ranking key the
grower compares across leaves. The zero value of Best is the no-split
sentinel: it ranks with TotalError 0.0, so once it becomes the global
minimum the whole growth loop stops.
*/
type Best struct {
	// Feature is the index of the feature the split decides on.
	Feature int
	// Threshold is the split rule for an ordered feature: samples
	// with a feature value strictly below it go left.
	Threshold float64
	// LeftValues is the split rule for a categorical feature: the
	// value codes routed left. It is nil for ordered splits.
	LeftValues []float64
	// LeftPrediction and LeftError are the prediction and squared
	// error for the hypothetical left child, RightPrediction and
	// RightError for the right one.
	LeftPrediction  float64
	LeftError       float64
	RightPrediction float64
	RightError      float64
	// TotalError is LeftError + RightError.
	TotalError float64

	solution bool
}

/*
NoSplit returns the sentinel Best marking a leaf for which no
error-reducing split exists.
*/
func NoSplit() *Best {
	return &Best{}
}

/*
Solution indicates whether the Best describes an actual split.
It is false for the no-split sentinel.
*/
func (b *Best) Solution() bool {
	return b.solution
}

/*
Accumulator consumes the training points routed to one leaf and is
finalized into the best split candidate for it.

The grower constructs a fresh accumulator per investigated leaf per
round, feeds it every point whose current leaf it is, and finalizes it
exactly once.
*/
type Accumulator interface {
	// Process incorporates one training point.
	Process(s dataset.Sample)
	// BestSplit finalizes the accumulator into the best split found
	// or the no-split sentinel. It must be called exactly once per
	// instance; the instance is discarded afterwards and
	// implementations panic on a second call.
	BestSplit() *Best
}
