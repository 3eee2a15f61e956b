package vexfuse

import (
	"github.com/reusee/vex/vexvec"
)

// Accessor is a compiled element-access strategy for one node of the
// deferred graph. Init reserves scratch storage and emits one-time setup,
// PushLength emits code leaving the node's element count on the stack,
// and the PushElem variants emit code that consumes an element index from
// the stack and leave the element in the requested representation.
//
// When na is non-nil, integer element sources that encounter the missing
// sentinel transfer control to na instead of producing a value; every
// route into na must leave exactly one extra integer slot above the
// caller's stack base.
type Accessor interface {
	Init(e *Emitter)
	PushLength(e *Emitter)
	PushElemInt(e *Emitter, na *Label)
	PushElemDouble(e *Emitter, na *Label)
	MustCheckNA() bool
}

// Create builds the accessor tree for a node. It reports false when the
// node, or any node below it, has no compiled form; the caller then
// evaluates the whole subtree generically.
func Create(node *DeferredNode) (Accessor, bool) {
	if op, ok := node.Op(); ok {
		switch op.Arity {
		case 2:
			left, ok := Create(node.Operands[0])
			if !ok {
				return nil, false
			}
			right, ok := Create(node.Operands[1])
			if !ok {
				return nil, false
			}
			return &binaryAccessor{
				op:       op,
				children: [2]Accessor{left, right},
			}, true
		case 1:
			child, ok := Create(node.Operands[0])
			if !ok {
				return nil, false
			}
			return &unaryAccessor{
				op:    op,
				child: child,
			}, true
		}
		return nil, false
	}

	switch v := node.Vector.(type) {
	case *vexvec.IntSeq:
		return &seqAccessor{vec: v}, true
	case *vexvec.IntVector:
		return &intAccessor{vec: v}, true
	case *vexvec.LogicalVector:
		return &intAccessor{vec: v}, true
	case *vexvec.DoubleVector:
		return &doubleAccessor{vec: v}, true
	}
	return nil, false
}

// cast emits the single widen/narrow step from the kernel's declared
// return kind to the representation the caller asked for.
func cast(e *Emitter, from, to ArgKind) {
	if from == to {
		return
	}
	if from == ArgInt {
		e.I2D()
	} else {
		e.D2I()
	}
}
