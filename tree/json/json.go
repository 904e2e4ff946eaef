/*
Package json provides serialization of grown trees to and from JSON
documents.

A tree is serialized as an object with a "capacity" field and a
"root" field holding its nodes nested recursively. A leaf that has
never been evaluated carries "unevaluated": true instead of its +Inf
error, which JSON cannot represent.
*/
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/colinsongf/Gradient-Boosted-Tree/tree"
)

type jsonNode struct {
	Kind        string     `json:"kind"`
	ID          int64      `json:"id,omitempty"`
	Feature     int        `json:"feature,omitempty"`
	Threshold   float64    `json:"threshold,omitempty"`
	LeftValues  []float64  `json:"leftValues,omitempty"`
	Prediction  float64    `json:"prediction"`
	Error       float64    `json:"error,omitempty"`
	Unevaluated bool       `json:"unevaluated,omitempty"`
	Left        *jsonNode  `json:"left,omitempty"`
	Right       *jsonNode  `json:"right,omitempty"`
}

type jsonTree struct {
	Capacity int       `json:"capacity"`
	Root     *jsonNode `json:"root,omitempty"`
}

const (
	kindLeaf        = "leaf"
	kindOrdered     = "ordered"
	kindCategorical = "categorical"
)

/*
WriteTree takes a tree and an io.Writer and serializes the tree as
JSON onto the io.Writer. An error is returned if the tree cannot be
serialized or written onto the io.Writer.
*/
func WriteTree(t *tree.Tree, w io.Writer) error {
	jt := &jsonTree{Capacity: t.Capacity()}
	if t.Size() > 0 {
		root, err := encodeNode(t, t.Root())
		if err != nil {
			return fmt.Errorf("serializing tree: %v", err)
		}
		jt.Root = root
	}
	if err := json.NewEncoder(w).Encode(jt); err != nil {
		return fmt.Errorf("serializing tree: %v", err)
	}
	return nil
}

/*
ReadTree takes an io.Reader and unmarshals its contents into a tree.
An error is returned if the JSON cannot be read from the io.Reader or
does not describe a valid tree.
*/
func ReadTree(r io.Reader) (*tree.Tree, error) {
	jt := &jsonTree{}
	if err := json.NewDecoder(r).Decode(jt); err != nil {
		return nil, fmt.Errorf("parsing tree: %v", err)
	}
	t := tree.New(jt.Capacity)
	if jt.Root == nil {
		return t, nil
	}
	root, err := decodeNode(jt.Root)
	if err != nil {
		return nil, fmt.Errorf("parsing tree: %v", err)
	}
	t.SetRoot(root)
	if err := insertChildren(t, jt.Root, root); err != nil {
		return nil, fmt.Errorf("parsing tree: %v", err)
	}
	return t, nil
}

func encodeNode(t *tree.Tree, n tree.Node) (*jsonNode, error) {
	jn := &jsonNode{Prediction: n.Prediction()}
	switch node := n.(type) {
	case *tree.Leaf:
		jn.Kind = kindLeaf
		if math.IsInf(node.Error(), 1) {
			jn.Unevaluated = true
		} else {
			jn.Error = node.Error()
		}
		return jn, nil
	case *tree.OrderedNode:
		jn.Kind = kindOrdered
		jn.ID = node.ID()
		jn.Feature = node.Feature()
		jn.Threshold = node.Threshold()
	case *tree.CategoricalNode:
		jn.Kind = kindCategorical
		jn.ID = node.ID()
		jn.Feature = node.Feature()
		jn.LeftValues = node.LeftValues()
	default:
		return nil, fmt.Errorf("unexpected node type %T", n)
	}
	left, right := t.Children(n)
	if left == nil || right == nil {
		return nil, fmt.Errorf("decision node %d has no children", jn.ID)
	}
	var err error
	if jn.Left, err = encodeNode(t, left); err != nil {
		return nil, err
	}
	if jn.Right, err = encodeNode(t, right); err != nil {
		return nil, err
	}
	return jn, nil
}

func decodeNode(jn *jsonNode) (tree.Node, error) {
	switch jn.Kind {
	case kindLeaf:
		err := jn.Error
		if jn.Unevaluated {
			err = math.Inf(1)
		}
		return tree.NewLeaf(jn.Prediction, err), nil
	case kindOrdered:
		return tree.RestoreOrderedNode(jn.ID, jn.Feature, jn.Threshold, jn.Prediction), nil
	case kindCategorical:
		return tree.RestoreCategoricalNode(jn.ID, jn.Feature, jn.LeftValues, jn.Prediction), nil
	}
	return nil, fmt.Errorf("unknown node kind %q", jn.Kind)
}

func insertChildren(t *tree.Tree, jn *jsonNode, n tree.Node) error {
	if jn.Kind == kindLeaf {
		return nil
	}
	if jn.Left == nil || jn.Right == nil {
		return fmt.Errorf("decision node %d is missing a child", jn.ID)
	}
	left, err := decodeNode(jn.Left)
	if err != nil {
		return err
	}
	right, err := decodeNode(jn.Right)
	if err != nil {
		return err
	}
	t.InsertChildren(n, left, right)
	if err := insertChildren(t, jn.Left, left); err != nil {
		return err
	}
	return insertChildren(t, jn.Right, right)
}
