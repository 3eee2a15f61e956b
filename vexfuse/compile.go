package vexfuse

import (
	"github.com/reusee/vex/vexvec"
)

// Routine is a compiled fused computation ready to run.
type Routine struct {
	Prog     *Program
	Operands []vexvec.Vector
	RetKind  ArgKind
	Length   int
}

// Compile builds one fused routine for the whole graph: setup, then a
// counted loop computing every output element, with a shared escape block
// writing NA for positions where any integer input is missing. It reports
// false when any node of the graph has no compiled accessor.
func Compile(root *DeferredNode) (*Routine, bool) {
	dv, ok := root.Vector.(*DeferredVector)
	if !ok {
		// leaves are already materialized, nothing to fuse
		return nil, false
	}
	acc, ok := Create(root)
	if !ok {
		return nil, false
	}

	e := NewEmitter()
	index := e.ReserveLocal(1)
	length := e.ReserveLocal(1)

	acc.Init(e)
	acc.PushLength(e)
	e.StoreLocal(length)
	e.PushConstI(0)
	e.StoreLocal(index)

	body := e.NewLabel()
	test := e.NewLabel()
	next := e.NewLabel()
	var na *Label
	if acc.MustCheckNA() {
		na = e.NewLabel()
	}

	e.Jump(test)

	e.Mark(body)
	e.LoadLocal(index) // output position for the store
	e.LoadLocal(index) // element index consumed by the accessor
	if dv.Op.RetKind == ArgDouble {
		acc.PushElemDouble(e, na)
		e.StoreElemD()
		if na != nil {
			e.Jump(next)
			e.Mark(na)
			e.Pop() // the escape's residual integer
			e.PushConstD(vexvec.NADouble)
			e.StoreElemD()
		}
	} else {
		acc.PushElemInt(e, na)
		e.StoreElemI()
		if na != nil {
			e.Jump(next)
			e.Mark(na)
			e.Pop()
			e.PushConstI(vexvec.NAInt)
			e.StoreElemI()
		}
	}

	e.Mark(next)
	e.IInc(index)

	e.Mark(test)
	e.LoadLocal(index)
	e.LoadLocal(length)
	e.Branch(KIfICmpLT, body)
	e.Return()

	return &Routine{
		Prog:     e.Finalize(),
		Operands: e.Operands(),
		RetKind:  dv.Op.RetKind,
		Length:   dv.Len(),
	}, true
}

// Run executes the routine, producing the materialized result.
func (r *Routine) Run() vexvec.Vector {
	if r.RetKind == ArgInt {
		out := make([]int32, r.Length)
		r.Prog.Run(r.Operands, out, nil)
		return &vexvec.IntVector{Values: out}
	}
	out := make([]float64, r.Length)
	r.Prog.Run(r.Operands, nil, out)
	return &vexvec.DoubleVector{Values: out}
}

// Materialize forces a vector. Deferred graphs run as one fused routine
// when every node has a compiled accessor, and fall back to interpreted
// elementwise evaluation otherwise; both produce identical results. The
// deferred node's attributes carry over to the materialized vector.
func Materialize(v vexvec.Vector) vexvec.Vector {
	dv, ok := v.(*DeferredVector)
	if !ok {
		return v
	}

	var out vexvec.Vector
	if routine, ok := Compile(NewGraph(dv)); ok {
		out = routine.Run()
	} else {
		out = interpret(dv)
	}
	out.Attributes().CopyFrom(dv.Attributes())
	return out
}

// interpret materializes a deferred vector elementwise through its own
// access methods, the generic path.
func interpret(dv *DeferredVector) vexvec.Vector {
	n := dv.Len()
	if dv.Op.RetKind == ArgInt {
		out := make([]int32, n)
		for i := 0; i < n; i++ {
			out[i] = dv.ElemInt(i)
		}
		return &vexvec.IntVector{Values: out}
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = dv.ElemDouble(i)
	}
	return &vexvec.DoubleVector{Values: out}
}
