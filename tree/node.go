package tree

import "math"

/*
Node is a node of a regression tree. The variant set is closed: a node
is exactly one of *Leaf, *OrderedNode, *CategoricalNode or the Empty
sentinel.
*/
type Node interface {
	// Prediction returns the value predicted for samples reaching
	// the node.
	Prediction() float64
	// Error returns the squared-error impurity attributed to the
	// node. A +Inf error on a leaf means it has never been
	// evaluated and must be investigated.
	Error() float64

	node()
}

/*
Decision is the interface shared by the two decision-node variants:
nodes that route a feature vector to one of exactly two children based
on the value of one feature and the node's split rule.
*/
type Decision interface {
	Node
	// ID returns the node's unique id. Ids are assigned by the tree
	// when the node is attached, strictly increasing from 1.
	ID() int64
	// Feature returns the index of the feature the node decides on.
	Feature() int
	// GoesLeft indicates whether the given feature vector is routed
	// to the node's left child.
	GoesLeft(features []float64) bool
}

type emptyNode struct{}

/*
Empty is the sentinel node representing a tree with zero nodes. It is
only observed before the first growth step.
*/
var Empty Node = emptyNode{}

func (emptyNode) Prediction() float64 { return 0 }
func (emptyNode) Error() float64      { return math.Inf(1) }
func (emptyNode) node()               {}

/*
Leaf is an unstructured node: it holds a prediction and an error and
has no children yet.
*/
type Leaf struct {
	prediction float64
	err        float64
}

/*
NewLeaf takes a prediction and an error and returns a leaf carrying
them. Use an error of +Inf to mark a leaf that has never been
evaluated.
*/
func NewLeaf(prediction, err float64) *Leaf {
	return &Leaf{prediction, err}
}

// Prediction returns the value predicted for samples reaching the leaf.
func (l *Leaf) Prediction() float64 { return l.prediction }

// Error returns the squared-error impurity of the leaf.
func (l *Leaf) Error() float64 { return l.err }

func (l *Leaf) node() {}

/*
OrderedNode is a decision node over an ordered feature: samples whose
feature value is strictly below the node's threshold are routed left,
the rest right.
*/
type OrderedNode struct {
	id         int64
	feature    int
	threshold  float64
	prediction float64
}

/*
NewOrderedNode takes a feature index, a threshold and the prediction
carried over from the leaf the node replaces, and returns an ordered
decision node. The node's id is assigned when it is attached to a
tree.
*/
func NewOrderedNode(feature int, threshold, prediction float64) *OrderedNode {
	return &OrderedNode{feature: feature, threshold: threshold, prediction: prediction}
}

/*
RestoreOrderedNode rebuilds an ordered decision node with an already
assigned id, as read back from a serialized tree.
*/
func RestoreOrderedNode(id int64, feature int, threshold, prediction float64) *OrderedNode {
	return &OrderedNode{id: id, feature: feature, threshold: threshold, prediction: prediction}
}

// ID returns the node's unique id.
func (n *OrderedNode) ID() int64 { return n.id }

// Feature returns the index of the feature the node decides on.
func (n *OrderedNode) Feature() int { return n.feature }

// Threshold returns the node's split threshold.
func (n *OrderedNode) Threshold() float64 { return n.threshold }

// Prediction returns the prediction carried over from the leaf the
// node replaced.
func (n *OrderedNode) Prediction() float64 { return n.prediction }

func (n *OrderedNode) Error() float64 { return 0 }

// GoesLeft indicates whether the given feature vector is routed to
// the node's left child.
func (n *OrderedNode) GoesLeft(features []float64) bool {
	return features[n.feature] < n.threshold
}

func (n *OrderedNode) node() {}

/*
CategoricalNode is a decision node over a categorical feature: samples
whose feature value code belongs to the node's left-value set are
routed left, the rest right.
*/
type CategoricalNode struct {
	id         int64
	feature    int
	leftValues map[float64]bool
	prediction float64
}

/*
NewCategoricalNode takes a feature index, the value codes routed left
and the prediction carried over from the leaf the node replaces, and
returns a categorical decision node. The node's id is assigned when it
is attached to a tree.
*/
func NewCategoricalNode(feature int, leftValues []float64, prediction float64) *CategoricalNode {
	lv := make(map[float64]bool, len(leftValues))
	for _, v := range leftValues {
		lv[v] = true
	}
	return &CategoricalNode{feature: feature, leftValues: lv, prediction: prediction}
}

/*
RestoreCategoricalNode rebuilds a categorical decision node with an
already assigned id, as read back from a serialized tree.
*/
func RestoreCategoricalNode(id int64, feature int, leftValues []float64, prediction float64) *CategoricalNode {
	n := NewCategoricalNode(feature, leftValues, prediction)
	n.id = id
	return n
}

// ID returns the node's unique id.
func (n *CategoricalNode) ID() int64 { return n.id }

// Feature returns the index of the feature the node decides on.
func (n *CategoricalNode) Feature() int { return n.feature }

/*
LeftValues returns the value codes the node routes left, in no
particular order.
*/
func (n *CategoricalNode) LeftValues() []float64 {
	values := make([]float64, 0, len(n.leftValues))
	for v := range n.leftValues {
		values = append(values, v)
	}
	return values
}

// Prediction returns the prediction carried over from the leaf the
// node replaced.
func (n *CategoricalNode) Prediction() float64 { return n.prediction }

func (n *CategoricalNode) Error() float64 { return 0 }

// GoesLeft indicates whether the given feature vector is routed to
// the node's left child.
func (n *CategoricalNode) GoesLeft(features []float64) bool {
	return n.leftValues[features[n.feature]]
}

func (n *CategoricalNode) node() {}
