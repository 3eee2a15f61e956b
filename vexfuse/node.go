package vexfuse

import (
	"github.com/reusee/vex/vexvec"
)

// DeferredNode is one node of the deferred operation graph: the vector it
// produces and, when that vector is itself deferred, the nodes producing
// its operands.
type DeferredNode struct {
	Vector   vexvec.Vector
	Operands []*DeferredNode
}

// NewGraph decomposes a vector into its operation graph. Materialized
// vectors become leaves.
func NewGraph(root vexvec.Vector) *DeferredNode {
	node := &DeferredNode{
		Vector: root,
	}
	if dv, ok := root.(*DeferredVector); ok {
		for _, operand := range dv.Operands {
			node.Operands = append(node.Operands, NewGraph(operand))
		}
	}
	return node
}

// Op returns the producing operation, or false for a leaf.
func (n *DeferredNode) Op() (*OpSpec, bool) {
	dv, ok := n.Vector.(*DeferredVector)
	if !ok {
		return nil, false
	}
	return dv.Op, true
}
