package tree_test

import (
	"math"
	"testing"

	"github.com/colinsongf/Gradient-Boosted-Tree/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grownTree builds the tree the grower would produce in two rounds:
// an ordered root deciding on feature 0 at 5, whose left child was
// itself split on feature 1 at 2.
func grownTree(t *testing.T) (*tree.Tree, *tree.OrderedNode, *tree.OrderedNode) {
	tr := tree.New(0)
	tr.SetRoot(tree.NewLeaf(3.0, math.Inf(1)))

	root := tree.NewOrderedNode(0, 5.0, 3.0)
	tr.ReplaceRoot(root)
	left := tree.NewLeaf(1.0, 4.0)
	tr.InsertChildren(root, left, tree.NewLeaf(8.0, 0.0))

	inner := tree.NewOrderedNode(1, 2.0, 1.0)
	tr.Replace(left, inner)
	tr.InsertChildren(inner, tree.NewLeaf(0.5, 0.0), tree.NewLeaf(1.5, 0.0))

	require.Equal(t, 5, tr.Size())
	return tr, root, inner
}

func TestPredictRoutesThroughDecisions(t *testing.T) {
	tr, _, _ := grownTree(t)
	for _, tc := range []struct {
		features []float64
		want     float64
	}{
		{[]float64{0, 0}, 0.5},
		{[]float64{0, 3}, 1.5},
		{[]float64{7, 0}, 8.0},
	} {
		got, err := tr.Predict(tc.features)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "features %v", tc.features)
	}
}

func TestCategoricalRouting(t *testing.T) {
	tr := tree.New(0)
	tr.SetRoot(tree.NewLeaf(0, math.Inf(1)))
	root := tree.NewCategoricalNode(0, []float64{0, 2}, 0)
	tr.ReplaceRoot(root)
	tr.InsertChildren(root, tree.NewLeaf(-1.0, 0), tree.NewLeaf(1.0, 0))

	for code, want := range map[float64]float64{0: -1.0, 1: 1.0, 2: -1.0, 3: 1.0} {
		got, err := tr.Predict([]float64{code})
		require.NoError(t, err)
		assert.Equal(t, want, got, "code %v", code)
	}
}

func TestPredictOnEmptyTreeErrors(t *testing.T) {
	tr := tree.New(0)
	_, err := tr.Predict([]float64{1})
	assert.Error(t, err)
	assert.Equal(t, tree.Empty, tr.Root())
}

func TestEmptySentinel(t *testing.T) {
	assert.Equal(t, 0.0, tree.Empty.Prediction())
	assert.True(t, math.IsInf(tree.Empty.Error(), 1))
}

func TestIDsIncreaseInAttachmentOrder(t *testing.T) {
	_, root, inner := grownTree(t)
	assert.Equal(t, int64(1), root.ID())
	assert.Equal(t, int64(2), inner.ID())
}

func TestRestoredIDsBumpTheCounter(t *testing.T) {
	tr := tree.New(0)
	root := tree.RestoreOrderedNode(5, 0, 1.0, 0)
	tr.SetRoot(root)
	left := tree.NewLeaf(0, 1.0)
	tr.InsertChildren(root, left, tree.NewLeaf(0, 0))

	inner := tree.NewOrderedNode(1, 0.5, 0)
	tr.Replace(left, inner)
	assert.Equal(t, int64(5), root.ID())
	assert.Equal(t, int64(6), inner.ID())
}

func TestLeavesEnumerateInSlotOrder(t *testing.T) {
	tr, _, _ := grownTree(t)
	leaves := tr.Leaves()
	require.Len(t, leaves, 3)
	// The right child of the root was attached before the two
	// grandchildren under the inner node.
	assert.Equal(t, 8.0, leaves[0].Prediction())
	assert.Equal(t, 0.5, leaves[1].Prediction())
	assert.Equal(t, 1.5, leaves[2].Prediction())
}

func TestChildren(t *testing.T) {
	tr, root, inner := grownTree(t)
	left, right := tr.Children(root)
	assert.Equal(t, inner, left)
	assert.Equal(t, 8.0, right.Prediction())

	left, right = tr.Children(right)
	assert.Nil(t, left)
	assert.Nil(t, right)
}

func TestCapacity(t *testing.T) {
	tr := tree.New(3)
	assert.False(t, tr.IsFull())
	tr.SetRoot(tree.NewLeaf(0, math.Inf(1)))
	assert.False(t, tr.IsFull())
	root := tree.NewOrderedNode(0, 1.0, 0)
	tr.ReplaceRoot(root)
	tr.InsertChildren(root, tree.NewLeaf(0, 0), tree.NewLeaf(0, 0))
	assert.True(t, tr.IsFull())
	assert.Equal(t, 3, tr.Capacity())

	unbounded := tree.New(0)
	unbounded.SetRoot(tree.NewLeaf(0, math.Inf(1)))
	assert.False(t, unbounded.IsFull())
}

func TestSetRootOnNonEmptyTreePanics(t *testing.T) {
	tr := tree.New(0)
	tr.SetRoot(tree.NewLeaf(0, 0))
	assert.Panics(t, func() { tr.SetRoot(tree.NewLeaf(1, 0)) })
}

func TestReplaceNonLeafPanics(t *testing.T) {
	tr, root, _ := grownTree(t)
	assert.Panics(t, func() { tr.Replace(root, tree.NewLeaf(0, 0)) })
}

func TestReplaceUnattachedNodePanics(t *testing.T) {
	tr, _, _ := grownTree(t)
	assert.Panics(t, func() { tr.Replace(tree.NewLeaf(42, 0), tree.NewLeaf(0, 0)) })
}

func TestInsertChildrenUnderLeafPanics(t *testing.T) {
	tr := tree.New(0)
	leaf := tree.NewLeaf(0, 0)
	tr.SetRoot(leaf)
	assert.Panics(t, func() {
		tr.InsertChildren(leaf, tree.NewLeaf(0, 0), tree.NewLeaf(1, 0))
	})
}

func TestInsertChildrenTwicePanics(t *testing.T) {
	tr, root, _ := grownTree(t)
	assert.Panics(t, func() {
		tr.InsertChildren(root, tree.NewLeaf(0, 0), tree.NewLeaf(1, 0))
	})
}
