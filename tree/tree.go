/*
Package tree provides the mutable binary regression tree the grower
builds: an arena of nodes addressed by stable slot indices, with
explicit parent and child slot fields so that structural replacement
is an update of the parent's child slot rather than pointer surgery.
*/
package tree

import (
	"fmt"
	"strings"
)

const noSlot = -1

type slot struct {
	node   Node
	parent int
	left   int
	right  int
}

/*
Tree is a rooted binary regression tree with a configured node
capacity. Every non-leaf holds exactly two children; decision-node ids
are unique and strictly increasing in attachment order, starting at 1.

A Tree is not safe for concurrent mutation; the grower mutates it
between statistics passes only.
*/
type Tree struct {
	capacity int
	slots    []slot
	index    map[Node]int
	root     int
	lastID   int64
}

/*
New takes a node capacity and returns an empty tree. A capacity of 0
or less means the tree never reports itself full.
*/
func New(capacity int) *Tree {
	return &Tree{
		capacity: capacity,
		index:    make(map[Node]int),
		root:     noSlot,
	}
}

// Size returns the current number of nodes on the tree.
func (t *Tree) Size() int {
	return len(t.slots)
}

// Capacity returns the node capacity the tree was built with.
func (t *Tree) Capacity() int {
	return t.capacity
}

/*
IsFull indicates whether the tree has reached its configured capacity
and must not grow further.
*/
func (t *Tree) IsFull() bool {
	return t.capacity > 0 && len(t.slots) >= t.capacity
}

// Root returns the node at the root of the tree, or the Empty
// sentinel if the tree has zero nodes.
func (t *Tree) Root() Node {
	if t.root == noSlot {
		return Empty
	}
	return t.slots[t.root].node
}

/*
Leaves returns the current leaves of the tree in slot order, which is
deterministic for a given mutation history. It returns nil for a tree
with zero nodes.
*/
func (t *Tree) Leaves() []*Leaf {
	var leaves []*Leaf
	for _, s := range t.slots {
		if l, ok := s.node.(*Leaf); ok {
			leaves = append(leaves, l)
		}
	}
	return leaves
}

/*
Leaf routes a feature vector from the root down to its current leaf
and returns it. It returns nil for a tree with zero nodes.
*/
func (t *Tree) Leaf(features []float64) *Leaf {
	if t.root == noSlot {
		return nil
	}
	i := t.root
	for {
		switch n := t.slots[i].node.(type) {
		case *Leaf:
			return n
		case Decision:
			if n.GoesLeft(features) {
				i = t.slots[i].left
			} else {
				i = t.slots[i].right
			}
		default:
			panic(fmt.Sprintf("routing through unexpected node type %T", t.slots[i].node))
		}
	}
}

/*
Predict routes a feature vector to its leaf and returns the leaf's
prediction, or an error for a tree with zero nodes.
*/
func (t *Tree) Predict(features []float64) (float64, error) {
	l := t.Leaf(features)
	if l == nil {
		return 0, fmt.Errorf("empty tree cannot predict samples")
	}
	return l.Prediction(), nil
}

/*
SetRoot installs the given node as the root of a tree with zero
nodes. It panics if the tree already has nodes: installing a second
root is a caller bug.
*/
func (t *Tree) SetRoot(n Node) {
	if t.root != noSlot {
		panic("setting the root of a non-empty tree")
	}
	t.root = t.attach(n, noSlot)
}

/*
ReplaceRoot swaps the node at the root of the tree for the given one.
The root must currently be childless; its replacement starts
childless too. It panics on a tree with zero nodes.
*/
func (t *Tree) ReplaceRoot(n Node) {
	if t.root == noSlot {
		panic("replacing the root of an empty tree")
	}
	t.replaceAt(t.root, n)
}

/*
Replace swaps a current leaf of the tree for the given node,
retargeting its parent's child slot. It panics if old is not a node
of the tree or has children: replacing a non-leaf is a caller bug.
*/
func (t *Tree) Replace(old Node, n Node) {
	i, ok := t.index[old]
	if !ok {
		panic("replacing a node that is not on the tree")
	}
	t.replaceAt(i, n)
}

func (t *Tree) replaceAt(i int, n Node) {
	s := &t.slots[i]
	if s.left != noSlot || s.right != noSlot {
		panic("replacing a node that is not a current leaf")
	}
	delete(t.index, s.node)
	s.node = n
	t.index[n] = i
	t.assignID(n)
}

/*
InsertChildren attaches left and right as the two children of parent,
which must be a childless decision node already on the tree. The split
rule routing future points between the children lives on the parent
itself.
*/
func (t *Tree) InsertChildren(parent Node, left, right Node) {
	i, ok := t.index[parent]
	if !ok {
		panic("inserting children under a node that is not on the tree")
	}
	if _, ok := parent.(Decision); !ok {
		panic(fmt.Sprintf("inserting children under a %T node", parent))
	}
	if t.slots[i].left != noSlot || t.slots[i].right != noSlot {
		panic("inserting children under a node that already has children")
	}
	li := t.attach(left, i)
	ri := t.attach(right, i)
	t.slots[i].left, t.slots[i].right = li, ri
}

func (t *Tree) attach(n Node, parent int) int {
	if _, ok := t.index[n]; ok {
		panic("attaching a node that is already on the tree")
	}
	t.slots = append(t.slots, slot{node: n, parent: parent, left: noSlot, right: noSlot})
	i := len(t.slots) - 1
	t.index[n] = i
	t.assignID(n)
	return i
}

func (t *Tree) assignID(n Node) {
	switch d := n.(type) {
	case *OrderedNode:
		if d.id == 0 {
			t.lastID++
			d.id = t.lastID
		} else if d.id > t.lastID {
			t.lastID = d.id
		}
	case *CategoricalNode:
		if d.id == 0 {
			t.lastID++
			d.id = t.lastID
		} else if d.id > t.lastID {
			t.lastID = d.id
		}
	}
}

/*
Children returns the left and right child of the given node, or nil
values if the node is a leaf or not on the tree.
*/
func (t *Tree) Children(n Node) (Node, Node) {
	i, ok := t.index[n]
	if !ok {
		return nil, nil
	}
	s := t.slots[i]
	if s.left == noSlot {
		return nil, nil
	}
	return t.slots[s.left].node, t.slots[s.right].node
}

func (t *Tree) String() string {
	if t.root == noSlot {
		return "[empty]\n"
	}
	return t.subtreeString(t.root)
}

func (t *Tree) subtreeString(i int) string {
	s := t.slots[i]
	var result string
	switch n := s.node.(type) {
	case *Leaf:
		return fmt.Sprintf("{ predict %v (err %v) }\n", n.Prediction(), n.Error())
	case *OrderedNode:
		result = fmt.Sprintf("[%d]{ feature %d < %v }\n|\n", n.ID(), n.Feature(), n.Threshold())
	case *CategoricalNode:
		result = fmt.Sprintf("[%d]{ feature %d in %v }\n|\n", n.ID(), n.Feature(), n.LeftValues())
	}
	for j, child := range []int{s.left, s.right} {
		for k, line := range strings.Split(t.subtreeString(child), "\n") {
			if len(line) == 0 {
				continue
			}
			if k == 0 {
				result = fmt.Sprintf("%s|__%s\n", result, line)
			} else if j == 0 {
				result = fmt.Sprintf("%s|  %s\n", result, line)
			} else {
				result = fmt.Sprintf("%s   %s\n", result, line)
			}
		}
	}
	return result
}
