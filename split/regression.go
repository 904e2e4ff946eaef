package split

import (
	"sort"

	"github.com/colinsongf/Gradient-Boosted-Tree/dataset"
	"github.com/colinsongf/Gradient-Boosted-Tree/feature"
)

/*
Regression is an Accumulator that searches the error-minimizing split
of the points routed to one leaf.

For an ordered feature it scans the boundaries between distinct sorted
values and considers the midpoint thresholds; for a categorical feature
it orders the categories by mean target and scans the prefix
partitions of that order. Candidates are ranked by the sum of the
squared errors of the two resulting children; a candidate is only a
solution if that sum strictly beats the error the leaf currently
carries and both children hold at least minLeafSize points.
*/
type Regression struct {
	registry    *feature.Registry
	leafError   float64
	minLeafSize int
	samples     []dataset.Sample
	finalized   bool
}

/*
NewRegression takes a feature registry, the error currently carried by
the leaf under investigation and the minimum number of points each
child of a split must hold, and returns an empty accumulator for that
leaf. A leafError of +Inf (the never-evaluated sentinel) admits any
split.
*/
func NewRegression(registry *feature.Registry, leafError float64, minLeafSize int) *Regression {
	if minLeafSize < 1 {
		minLeafSize = 1
	}
	return &Regression{
		registry:    registry,
		leafError:   leafError,
		minLeafSize: minLeafSize,
	}
}

// Process incorporates one training point.
func (r *Regression) Process(s dataset.Sample) {
	if r.finalized {
		panic("processing a point on a finalized accumulator")
	}
	r.samples = append(r.samples, s)
}

/*
BestSplit finalizes the accumulator and returns the best split found
for the leaf's points, or the no-split sentinel if no feature admits a
split that strictly reduces the leaf's error. It panics if called a
second time.
*/
func (r *Regression) BestSplit() *Best {
	if r.finalized {
		panic("finalizing an accumulator twice")
	}
	r.finalized = true
	if len(r.samples) < 2*r.minLeafSize {
		return NoSplit()
	}
	var best *Best
	for f := 0; f < r.registry.Len(); f++ {
		var candidate *Best
		if r.registry.Ordered(f) {
			candidate = r.bestOrderedSplit(f)
		} else {
			candidate = r.bestCategoricalSplit(f)
		}
		if candidate != nil && (best == nil || candidate.TotalError < best.TotalError) {
			best = candidate
		}
	}
	if best == nil || !(best.TotalError < r.leafError) {
		return NoSplit()
	}
	return best
}

type valueTarget struct {
	value  float64
	target float64
}

func (r *Regression) bestOrderedSplit(f int) *Best {
	points := make([]valueTarget, len(r.samples))
	for i, s := range r.samples {
		points[i] = valueTarget{s.Features[f], s.Target}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].value < points[j].value })
	n := len(points)
	sums := make([]float64, n+1)
	sqSums := make([]float64, n+1)
	for i, p := range points {
		sums[i+1] = sums[i] + p.target
		sqSums[i+1] = sqSums[i] + p.target*p.target
	}
	var best *Best
	for i := r.minLeafSize; i <= n-r.minLeafSize; i++ {
		if points[i].value == points[i-1].value {
			continue
		}
		leftErr := squaredError(i, sums[i], sqSums[i])
		rightErr := squaredError(n-i, sums[n]-sums[i], sqSums[n]-sqSums[i])
		total := leftErr + rightErr
		if best != nil && total >= best.TotalError {
			continue
		}
		best = &Best{
			Feature:         f,
			Threshold:       (points[i-1].value + points[i].value) / 2.0,
			LeftPrediction:  sums[i] / float64(i),
			LeftError:       leftErr,
			RightPrediction: (sums[n] - sums[i]) / float64(n-i),
			RightError:      rightErr,
			TotalError:      total,
			solution:        true,
		}
	}
	return best
}

type categoryStats struct {
	code  float64
	count int
	sum   float64
	sqSum float64
}

func (r *Regression) bestCategoricalSplit(f int) *Best {
	byCode := make(map[float64]*categoryStats)
	var categories []*categoryStats
	for _, s := range r.samples {
		code := s.Features[f]
		cs := byCode[code]
		if cs == nil {
			cs = &categoryStats{code: code}
			byCode[code] = cs
			categories = append(categories, cs)
		}
		cs.count++
		cs.sum += s.Target
		cs.sqSum += s.Target * s.Target
	}
	if len(categories) < 2 {
		return nil
	}
	// Ordering categories by mean target makes the optimal subset
	// split reachable by a prefix scan. Ties fall back to the value
	// code so the scan order is deterministic.
	sort.Slice(categories, func(i, j int) bool {
		mi := categories[i].sum / float64(categories[i].count)
		mj := categories[j].sum / float64(categories[j].count)
		if mi != mj {
			return mi < mj
		}
		return categories[i].code < categories[j].code
	})
	n := len(r.samples)
	var totalSum, totalSqSum float64
	for _, cs := range categories {
		totalSum += cs.sum
		totalSqSum += cs.sqSum
	}
	var best *Best
	var leftCount int
	var leftSum, leftSqSum float64
	for k := 0; k < len(categories)-1; k++ {
		leftCount += categories[k].count
		leftSum += categories[k].sum
		leftSqSum += categories[k].sqSum
		if leftCount < r.minLeafSize || n-leftCount < r.minLeafSize {
			continue
		}
		leftErr := squaredError(leftCount, leftSum, leftSqSum)
		rightErr := squaredError(n-leftCount, totalSum-leftSum, totalSqSum-leftSqSum)
		total := leftErr + rightErr
		if best != nil && total >= best.TotalError {
			continue
		}
		leftValues := make([]float64, 0, k+1)
		for _, cs := range categories[:k+1] {
			leftValues = append(leftValues, cs.code)
		}
		sort.Float64s(leftValues)
		best = &Best{
			Feature:         f,
			LeftValues:      leftValues,
			LeftPrediction:  leftSum / float64(leftCount),
			LeftError:       leftErr,
			RightPrediction: (totalSum - leftSum) / float64(n-leftCount),
			RightError:      rightErr,
			TotalError:      total,
			solution:        true,
		}
	}
	return best
}

// squaredError is the sum of squared deviations from the mean,
// computed from running sums. Tiny negative results from floating
// point cancellation are clamped to zero so a pure leaf reports an
// exact zero error.
func squaredError(count int, sum, sqSum float64) float64 {
	err := sqSum - sum*sum/float64(count)
	if err < 0 {
		return 0
	}
	return err
}
