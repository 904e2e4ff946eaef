/*
Package gbt grows a single regression decision tree by greedy,
error-minimizing node splitting, the induction step used inside
gradient-boosted-tree training.

The Grower repeatedly identifies growable leaves, replays the training
point source past them to accumulate per-leaf split statistics, selects
the single best split across the whole frontier and mutates the tree
accordingly. Leaf membership is re-derived from the live tree on every
pass instead of keeping per-node point lists: O(rounds x N) scan cost
buys O(1) memory per point and correctness by construction as the
topology changes between rounds.
*/
package gbt

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/colinsongf/Gradient-Boosted-Tree/dataset"
	"github.com/colinsongf/Gradient-Boosted-Tree/feature"
	"github.com/colinsongf/Gradient-Boosted-Tree/split"
	"github.com/colinsongf/Gradient-Boosted-Tree/tree"
)

/*
AccumulatorFactory builds an empty split accumulator for a leaf under
investigation, given the error the leaf currently carries.
*/
type AccumulatorFactory func(leafError float64) split.Accumulator

/*
Grower grows a regression tree over a training point source. It owns
the frontier memo of already-scored leaves, so concurrent or repeated
growth runs must each use their own Grower.
*/
type Grower struct {
	registry       *feature.Registry
	source         dataset.Source
	tree           *tree.Tree
	memo           map[tree.Node]*split.Best
	order          []tree.Node
	newAccumulator AccumulatorFactory
	minLeafSize    int
	concurrency    int
}

// Option configures a Grower.
type Option func(*Grower)

/*
Capacity limits the number of nodes on the grown tree. Growth stops
before any round that would start on a full tree. A capacity of 0 or
less (the default) leaves the tree unbounded; growth then stops when
no leaf admits an error-reducing split.
*/
func Capacity(n int) Option {
	return func(g *Grower) {
		g.tree = tree.New(n)
	}
}

/*
MinLeafSize sets the minimum number of training points each child of
an applied split must hold. The default is 1.
*/
func MinLeafSize(n int) Option {
	return func(g *Grower) {
		g.minLeafSize = n
	}
}

/*
Concurrency sets the number of statistics-pass worker goroutines the
grower may use. Points are sharded by resolved leaf: every investigated
leaf is assigned to exactly one of the workers, which exclusively owns
that leaf's accumulator for the duration of the pass. Values below 2
select the direct single-goroutine pass (the default).
*/
func Concurrency(n int) Option {
	return func(g *Grower) {
		g.concurrency = n
	}
}

/*
Accumulators overrides the factory used to build a split accumulator
per investigated leaf. The default factory builds split.Regression
accumulators over the grower's feature registry.
*/
func Accumulators(f AccumulatorFactory) Option {
	return func(g *Grower) {
		g.newAccumulator = f
	}
}

/*
New takes the feature registry and the training point source and
returns a Grower configured by the given options.
*/
func New(registry *feature.Registry, source dataset.Source, opts ...Option) *Grower {
	g := &Grower{
		registry:    registry,
		source:      source,
		tree:        tree.New(0),
		memo:        make(map[tree.Node]*split.Best),
		minLeafSize: 1,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.newAccumulator == nil {
		g.newAccumulator = func(leafError float64) split.Accumulator {
			return split.NewRegression(g.registry, leafError, g.minLeafSize)
		}
	}
	return g
}

// Tree returns the tree the grower is growing.
func (g *Grower) Tree() *tree.Tree {
	return g.tree
}

/*
Grow runs the growth loop to completion and returns the grown tree.

Each round investigates the leaves that have no memoized best split
yet and a nonzero error, replays the point source once to feed their
accumulators, merges the finalized candidates into the frontier memo
and applies the globally best one. The loop terminates when the tree
is full, when the memo is empty after investigation, or when the
single best-ranked memo entry is the no-split sentinel; in the latter
case other memo entries may still hold viable splits, and leaving them
unapplied is deliberate.

Grow returns a non-nil error if the given context expires or the
point source fails; the tree built so far is still available through
Tree.
*/
func (g *Grower) Grow(ctx context.Context) (*tree.Tree, error) {
	if err := g.seedRoot(ctx); err != nil {
		return nil, fmt.Errorf("growing tree: %v", err)
	}
	for !g.tree.IsFull() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pending := g.pendingLeaves()
		if err := g.scan(ctx, pending); err != nil {
			return nil, fmt.Errorf("growing tree: %v", err)
		}
		for _, inv := range pending {
			g.memo[inv.leaf] = inv.acc.BestSplit()
			g.order = append(g.order, inv.leaf)
		}
		leaf, best, ok := g.bestCandidate()
		if !ok {
			break
		}
		if !best.Solution() {
			break
		}
		g.apply(leaf, best)
		g.forget(leaf)
	}
	return g.tree, nil
}

/*
seedRoot installs the initial leaf on a tree with zero nodes: one full
pass over the point source computes the arithmetic mean of the target
(0.0 for an empty source) and the leaf carries it with an error of
+Inf, so the first round always investigates it.
*/
func (g *Grower) seedRoot(ctx context.Context) error {
	if g.tree.Size() != 0 {
		return nil
	}
	if err := g.source.Reset(ctx); err != nil {
		return fmt.Errorf("rewinding point source: %v", err)
	}
	var sum float64
	var count int
	for g.source.HasNext() {
		s, err := g.source.Next(ctx)
		if err != nil {
			return fmt.Errorf("reading point source: %v", err)
		}
		sum += s.Target
		count++
	}
	mean := 0.0
	if count > 0 {
		mean = sum / float64(count)
	}
	g.tree.SetRoot(tree.NewLeaf(mean, math.Inf(1)))
	return nil
}

type investigation struct {
	leaf tree.Node
	acc  split.Accumulator
}

/*
pendingLeaves selects the leaves to investigate this round: those with
no memo entry and a nonzero error. A leaf whose error is exactly 0.0
is perfect and permanently excluded. On a tree with zero nodes the
single logical leaf is the empty-tree sentinel, so the first split
shares the code path of ordinary growth.
*/
func (g *Grower) pendingLeaves() []investigation {
	if g.tree.Size() == 0 {
		return []investigation{{tree.Empty, g.newAccumulator(math.Inf(1))}}
	}
	var pending []investigation
	for _, leaf := range g.tree.Leaves() {
		if leaf.Error() == 0 {
			g.forget(leaf)
			continue
		}
		if _, ok := g.memo[leaf]; ok {
			continue
		}
		pending = append(pending, investigation{leaf, g.newAccumulator(leaf.Error())})
	}
	return pending
}

/*
scan performs the round's statistics pass: one full replay of the
point source, routing every point to its current leaf and feeding it
to that leaf's accumulator if the leaf is under investigation. Points
resolving to other leaves were captured in an earlier round and are
ignored. The pass is skipped entirely when nothing is under
investigation.
*/
func (g *Grower) scan(ctx context.Context, pending []investigation) error {
	if len(pending) == 0 {
		return nil
	}
	if err := g.source.Reset(ctx); err != nil {
		return fmt.Errorf("rewinding point source: %v", err)
	}
	if g.concurrency > 1 {
		return g.scanConcurrent(ctx, pending)
	}
	byLeaf := make(map[tree.Node]split.Accumulator, len(pending))
	for _, inv := range pending {
		byLeaf[inv.leaf] = inv.acc
	}
	for g.source.HasNext() {
		s, err := g.source.Next(ctx)
		if err != nil {
			return fmt.Errorf("reading point source: %v", err)
		}
		if acc, ok := byLeaf[g.resolve(s)]; ok {
			acc.Process(s)
		}
	}
	return nil
}

/*
scanConcurrent shards the pass by resolved leaf across the configured
number of workers. Each investigated leaf is assigned to exactly one
worker, which consumes that leaf's points from the worker's channel, so
no accumulator is ever touched by two goroutines. Finalization happens
after all workers drain, back on the calling goroutine.
*/
func (g *Grower) scanConcurrent(ctx context.Context, pending []investigation) error {
	workers := g.concurrency
	if workers > len(pending) {
		workers = len(pending)
	}
	type routed struct {
		acc split.Accumulator
		s   dataset.Sample
	}
	channels := make([]chan routed, workers)
	var wg sync.WaitGroup
	for i := range channels {
		ch := make(chan routed, 128)
		channels[i] = ch
		wg.Add(1)
		go func(ch <-chan routed) {
			defer wg.Done()
			for r := range ch {
				r.acc.Process(r.s)
			}
		}(ch)
	}
	type destination struct {
		ch  chan routed
		acc split.Accumulator
	}
	destinations := make(map[tree.Node]destination, len(pending))
	for i, inv := range pending {
		destinations[inv.leaf] = destination{channels[i%workers], inv.acc}
	}
	var readErr error
	for g.source.HasNext() {
		s, err := g.source.Next(ctx)
		if err != nil {
			readErr = fmt.Errorf("reading point source: %v", err)
			break
		}
		if d, ok := destinations[g.resolve(s)]; ok {
			d.ch <- routed{d.acc, s}
		}
	}
	for _, ch := range channels {
		close(ch)
	}
	wg.Wait()
	return readErr
}

// resolve returns the current leaf of a point, or the empty-tree
// sentinel on a tree with zero nodes.
func (g *Grower) resolve(s dataset.Sample) tree.Node {
	if g.tree.Size() == 0 {
		return tree.Empty
	}
	return g.tree.Leaf(s.Features)
}

/*
bestCandidate returns the frontier-memo entry with the numerically
smallest combined error and the leaf it belongs to. Ties break towards
the entry that entered the memo first, which is deterministic because
leaves are investigated in tree-enumeration order and rounds are
sequential. The boolean is false when the memo is empty.
*/
func (g *Grower) bestCandidate() (tree.Node, *split.Best, bool) {
	var bestLeaf tree.Node
	var best *split.Best
	for _, leaf := range g.order {
		b, ok := g.memo[leaf]
		if !ok {
			continue
		}
		if best == nil || b.TotalError < best.TotalError {
			bestLeaf, best = leaf, b
		}
	}
	if best == nil {
		return nil, nil, false
	}
	return bestLeaf, best, true
}

/*
apply materializes the winning split. For the empty-tree sentinel a
new leaf carrying the left-child prediction and error becomes the root
directly and no decision node or children are created. Otherwise the
leaf is replaced by a decision node whose variant is chosen by the
feature registry, carrying the leaf's prediction, and two fresh leaf
children are inserted under it.
*/
func (g *Grower) apply(n tree.Node, best *split.Best) {
	if n == tree.Empty {
		g.tree.SetRoot(tree.NewLeaf(best.LeftPrediction, best.LeftError))
		return
	}
	leaf, ok := n.(*tree.Leaf)
	if !ok {
		panic(fmt.Sprintf("applying a split to a %T node", n))
	}
	var decision tree.Node
	if g.registry.Ordered(best.Feature) {
		decision = tree.NewOrderedNode(best.Feature, best.Threshold, leaf.Prediction())
	} else {
		decision = tree.NewCategoricalNode(best.Feature, best.LeftValues, leaf.Prediction())
	}
	if g.tree.Size() == 1 {
		g.tree.ReplaceRoot(decision)
	} else {
		g.tree.Replace(leaf, decision)
	}
	left := tree.NewLeaf(best.LeftPrediction, best.LeftError)
	right := tree.NewLeaf(best.RightPrediction, best.RightError)
	g.tree.InsertChildren(decision, left, right)
}

// forget drops a leaf's frontier-memo entry.
func (g *Grower) forget(n tree.Node) {
	if _, ok := g.memo[n]; !ok {
		return
	}
	delete(g.memo, n)
	for i, leaf := range g.order {
		if leaf == n {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}
