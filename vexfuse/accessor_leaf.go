package vexfuse

import (
	"github.com/reusee/vex/vexvec"
)

// intAccessor reads a materialized integer-kinded buffer. Any buffer may
// hold the NA sentinel, so consumers must check.
type intAccessor struct {
	vec     vexvec.Vector
	operand int
}

func (a *intAccessor) Init(e *Emitter) {
	a.operand = e.AddOperand(a.vec)
}

func (a *intAccessor) PushLength(e *Emitter) {
	e.PushConstI(int32(a.vec.Len()))
}

func (a *intAccessor) MustCheckNA() bool { return true }

func (a *intAccessor) PushElemInt(e *Emitter, na *Label) {
	e.LoadElemI(a.operand)
	if na != nil {
		e.Dup()
		e.PushConstI(vexvec.NAInt)
		e.Branch(KIfICmpEq, na)
	}
}

func (a *intAccessor) PushElemDouble(e *Emitter, na *Label) {
	a.PushElemInt(e, na)
	e.I2D()
}

// doubleAccessor reads a materialized double buffer. NA doubles are
// ordinary values at this level; there is no integer sentinel to check.
type doubleAccessor struct {
	vec     *vexvec.DoubleVector
	operand int
}

func (a *doubleAccessor) Init(e *Emitter) {
	a.operand = e.AddOperand(a.vec)
}

func (a *doubleAccessor) PushLength(e *Emitter) {
	e.PushConstI(int32(a.vec.Len()))
}

func (a *doubleAccessor) MustCheckNA() bool { return false }

func (a *doubleAccessor) PushElemInt(e *Emitter, na *Label) {
	e.LoadElemD(a.operand)
	e.D2I()
}

func (a *doubleAccessor) PushElemDouble(e *Emitter, na *Label) {
	e.LoadElemD(a.operand)
}

// seqAccessor computes elements of a compact sequence arithmetically,
// never touching a buffer. Sequences cannot contain NA.
type seqAccessor struct {
	vec *vexvec.IntSeq
}

func (a *seqAccessor) Init(e *Emitter) {}

func (a *seqAccessor) PushLength(e *Emitter) {
	e.PushConstI(int32(a.vec.Len()))
}

func (a *seqAccessor) MustCheckNA() bool { return false }

func (a *seqAccessor) PushElemInt(e *Emitter, na *Label) {
	e.PushConstI(a.vec.From)
	e.IAdd()
}

func (a *seqAccessor) PushElemDouble(e *Emitter, na *Label) {
	a.PushElemInt(e, na)
	e.I2D()
}
