package vexfuse

import (
	"github.com/reusee/vex/vexvec"
)

// DeferredVector is a vector whose elements have not been materialized:
// it records the producing operation and its operands. Element access
// interprets the tree recursively with recycling and NA propagation,
// which is the semantic reference the fused routine must agree with.
type DeferredVector struct {
	Op       *OpSpec
	Operands []vexvec.Vector
	length   int
	attrs    vexvec.Attrs
}

// Defer builds a deferred node. The element count follows the recycling
// rule: the maximum of the operand lengths.
func Defer(op *OpSpec, operands ...vexvec.Vector) *DeferredVector {
	if len(operands) != op.Arity {
		panic("operand count does not match kernel arity")
	}
	length := 0
	for _, o := range operands {
		if o.Len() > length {
			length = o.Len()
		}
	}
	return &DeferredVector{
		Op:       op,
		Operands: operands,
		length:   length,
	}
}

func (v *DeferredVector) Len() int { return v.length }

func (v *DeferredVector) Kind() vexvec.Kind {
	if v.Op.RetKind == ArgInt {
		return vexvec.KindInt
	}
	return vexvec.KindDouble
}

func (v *DeferredVector) Attributes() *vexvec.Attrs { return &v.attrs }

func (v *DeferredVector) ElemInt(i int) int32 {
	ival, dval, na := v.compute(i)
	if na {
		return vexvec.NAInt
	}
	if v.Op.RetKind == ArgDouble {
		return vexvec.DoubleToInt(dval)
	}
	return ival
}

func (v *DeferredVector) ElemDouble(i int) float64 {
	ival, dval, na := v.compute(i)
	if na {
		return vexvec.NADouble
	}
	if v.Op.RetKind == ArgInt {
		return vexvec.IntToDouble(ival)
	}
	return dval
}

// compute invokes the kernel at position i using its declared argument
// kind, reporting na when any input element is missing. The result is
// valid in the return slot matching RetKind.
func (v *DeferredVector) compute(i int) (ival int32, dval float64, na bool) {
	if v.Op.ArgKind == ArgInt {
		var a, b int32
		a = v.Operands[0].ElemInt(i % v.Operands[0].Len())
		if a == vexvec.NAInt {
			return 0, 0, true
		}
		if v.Op.Arity == 1 {
			return v.Op.Int1(a), 0, false
		}
		b = v.Operands[1].ElemInt(i % v.Operands[1].Len())
		if b == vexvec.NAInt {
			return 0, 0, true
		}
		return v.Op.Int2(a, b), 0, false
	}

	a := v.Operands[0].ElemDouble(i % v.Operands[0].Len())
	if vexvec.IsNADouble(a) {
		return 0, 0, true
	}
	if v.Op.Arity == 1 {
		return 0, v.Op.Double1(a), false
	}
	b := v.Operands[1].ElemDouble(i % v.Operands[1].Len())
	if vexvec.IsNADouble(b) {
		return 0, 0, true
	}
	return 0, v.Op.Double2(a, b), false
}
