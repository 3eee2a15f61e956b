package vexfuse

// unaryAccessor applies a one-argument kernel elementwise. Lengths and
// element indexes pass straight through to the operand, and so does the
// NA escape: the operand's own check already leaves the single residual
// integer the escape contract requires.
type unaryAccessor struct {
	op    *OpSpec
	child Accessor
}

func (a *unaryAccessor) Init(e *Emitter) {
	a.child.Init(e)
}

func (a *unaryAccessor) PushLength(e *Emitter) {
	a.child.PushLength(e)
}

func (a *unaryAccessor) MustCheckNA() bool {
	return a.child.MustCheckNA()
}

func (a *unaryAccessor) compute(e *Emitter, na *Label) {
	if a.op.ArgKind == ArgDouble {
		a.child.PushElemDouble(e, na)
		e.Apply1D(a.op)
	} else {
		a.child.PushElemInt(e, na)
		e.Apply1I(a.op)
	}
}

func (a *unaryAccessor) PushElemInt(e *Emitter, na *Label) {
	a.compute(e, na)
	cast(e, a.op.RetKind, ArgInt)
}

func (a *unaryAccessor) PushElemDouble(e *Emitter, na *Label) {
	a.compute(e, na)
	cast(e, a.op.RetKind, ArgDouble)
}
