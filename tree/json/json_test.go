package json_test

import (
	"bytes"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/colinsongf/Gradient-Boosted-Tree/tree"
	treejson "github.com/colinsongf/Gradient-Boosted-Tree/tree/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeRoundTrip(t *testing.T) {
	tr := tree.New(7)
	tr.SetRoot(tree.NewLeaf(3.0, math.Inf(1)))
	root := tree.NewOrderedNode(0, 5.0, 3.0)
	tr.ReplaceRoot(root)
	left := tree.NewLeaf(1.0, 4.0)
	tr.InsertChildren(root, left, tree.NewLeaf(8.0, math.Inf(1)))
	inner := tree.NewCategoricalNode(1, []float64{0, 2}, 1.0)
	tr.Replace(left, inner)
	tr.InsertChildren(inner, tree.NewLeaf(0.5, 0.0), tree.NewLeaf(1.5, 0.25))

	var buf bytes.Buffer
	require.NoError(t, treejson.WriteTree(tr, &buf))
	decoded, err := treejson.ReadTree(&buf)
	require.NoError(t, err)

	assert.Equal(t, 7, decoded.Capacity())
	require.Equal(t, 5, decoded.Size())

	decodedRoot, ok := decoded.Root().(*tree.OrderedNode)
	require.True(t, ok)
	assert.Equal(t, root.ID(), decodedRoot.ID())
	assert.Equal(t, 0, decodedRoot.Feature())
	assert.Equal(t, 5.0, decodedRoot.Threshold())
	assert.Equal(t, 3.0, decodedRoot.Prediction())

	decodedInner, decodedRight := decoded.Children(decodedRoot)
	cat, ok := decodedInner.(*tree.CategoricalNode)
	require.True(t, ok)
	assert.Equal(t, inner.ID(), cat.ID())
	leftValues := cat.LeftValues()
	sort.Float64s(leftValues)
	assert.Equal(t, []float64{0, 2}, leftValues)

	// The unevaluated leaf must come back with its +Inf error intact.
	rightLeaf, ok := decodedRight.(*tree.Leaf)
	require.True(t, ok)
	assert.Equal(t, 8.0, rightLeaf.Prediction())
	assert.True(t, math.IsInf(rightLeaf.Error(), 1))

	for _, features := range [][]float64{{0, 0}, {0, 1}, {0, 2}, {9, 0}} {
		want, err := tr.Predict(features)
		require.NoError(t, err)
		got, err := decoded.Predict(features)
		require.NoError(t, err)
		assert.Equal(t, want, got, "features %v", features)
	}
}

func TestEmptyTreeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, treejson.WriteTree(tree.New(3), &buf))
	decoded, err := treejson.ReadTree(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, decoded.Capacity())
	assert.Equal(t, 0, decoded.Size())
}

func TestRestoredTreeKeepsAssigningFreshIDs(t *testing.T) {
	tr := tree.New(0)
	tr.SetRoot(tree.NewLeaf(0, math.Inf(1)))
	root := tree.NewOrderedNode(0, 1.0, 0)
	tr.ReplaceRoot(root)
	grownLeaf := tree.NewLeaf(-1.0, 2.0)
	tr.InsertChildren(root, grownLeaf, tree.NewLeaf(1.0, 0.0))

	var buf bytes.Buffer
	require.NoError(t, treejson.WriteTree(tr, &buf))
	decoded, err := treejson.ReadTree(&buf)
	require.NoError(t, err)

	decodedLeaf := decoded.Leaf([]float64{0})
	require.NotNil(t, decodedLeaf)
	next := tree.NewOrderedNode(0, 0.5, -1.0)
	decoded.Replace(decodedLeaf, next)
	assert.Equal(t, root.ID()+1, next.ID())
}

func TestReadTreeRejectsUnknownKind(t *testing.T) {
	_, err := treejson.ReadTree(strings.NewReader(`{"capacity":0,"root":{"kind":"wat","prediction":1}}`))
	assert.Error(t, err)
}

func TestReadTreeRejectsMissingChild(t *testing.T) {
	doc := `{"capacity":0,"root":{"kind":"ordered","id":1,"threshold":1,"prediction":0,"left":{"kind":"leaf","prediction":0}}}`
	_, err := treejson.ReadTree(strings.NewReader(doc))
	assert.Error(t, err)
}
