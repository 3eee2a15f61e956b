package vexfuse

import (
	"fmt"
	"strings"

	"github.com/reusee/vex/vexvec"
)

// Layout describes the slots on the simulated operand stack, bottom to
// top: 'i' for a one-word integer, 'd' for a two-word double.
type Layout string

func (l Layout) Words() int {
	words := 0
	for _, c := range l {
		if c == 'd' {
			words += 2
		} else {
			words++
		}
	}
	return words
}

type Label struct {
	id     int
	pos    int
	layout Layout
	bound  bool // layout has been established by a branch or a mark
	marked bool
}

type patch struct {
	ip    int
	label *Label
}

// Emitter is the code-emission session shared by all accessors of one
// fused routine. It owns scratch local allocation and the instruction
// sink, tracks the stack layout of every emitted instruction, and
// verifies at Finalize time that all control-flow edges into each label
// agree on the residual layout. Layout or lifecycle violations are
// programming errors and panic.
type Emitter struct {
	code      []KOp
	constsI   []int32
	constsD   []float64
	ops       []*OpSpec
	operands  []vexvec.Vector
	labels    []*Label
	patches   []patch
	nLocals   int
	cur       Layout
	maxStack  int
	reachable bool
	finalized bool
}

func NewEmitter() *Emitter {
	return &Emitter{
		reachable: true,
	}
}

func (e *Emitter) check() {
	if e.finalized {
		panic("emitter used after finalize")
	}
}

// ReserveLocal grants exclusive ownership of words scratch slots for the
// lifetime of the routine, returning the first slot index.
func (e *Emitter) ReserveLocal(words int) int {
	e.check()
	idx := e.nLocals
	e.nLocals += words
	return idx
}

// AddOperand registers a source vector and returns its operand index.
func (e *Emitter) AddOperand(v vexvec.Vector) int {
	e.check()
	for i, o := range e.operands {
		if o == v {
			return i
		}
	}
	e.operands = append(e.operands, v)
	return len(e.operands) - 1
}

func (e *Emitter) NewLabel() *Label {
	e.check()
	l := &Label{
		id:  len(e.labels),
		pos: -1,
	}
	e.labels = append(e.labels, l)
	return l
}

func (e *Emitter) addOp(spec *OpSpec) int {
	for i, o := range e.ops {
		if o == spec {
			return i
		}
	}
	e.ops = append(e.ops, spec)
	return len(e.ops) - 1
}

// effect applies op's stack effect to the simulated layout. pops is the
// expected top segment before the op, pushes replaces it.
func (e *Emitter) effect(op KOp, pops, pushes Layout) {
	if !e.reachable {
		panic(fmt.Errorf("emitting unreachable code: %v", op))
	}
	if !strings.HasSuffix(string(e.cur), string(pops)) {
		panic(fmt.Errorf("stack layout mismatch at %v: have %q, need top %q",
			op, e.cur, pops))
	}
	e.cur = e.cur[:len(e.cur)-len(pops)] + pushes
	if words := e.cur.Words(); words > e.maxStack {
		e.maxStack = words
	}
}

func (e *Emitter) emit(op KOp, pops, pushes Layout) {
	e.check()
	e.effect(op, pops, pushes)
	e.code = append(e.code, op)
}

func (e *Emitter) PushConstI(x int32) {
	e.emit(KConstI.With(e.internI(x)), "", "i")
}

func (e *Emitter) PushConstD(f float64) {
	e.emit(KConstD.With(e.internD(f)), "", "d")
}

func (e *Emitter) internI(x int32) int {
	for i, c := range e.constsI {
		if c == x {
			return i
		}
	}
	e.constsI = append(e.constsI, x)
	return len(e.constsI) - 1
}

func (e *Emitter) internD(f float64) int {
	e.constsD = append(e.constsD, f)
	return len(e.constsD) - 1
}

func (e *Emitter) LoadLocal(idx int)  { e.emit(KLoadLocal.With(idx), "", "i") }
func (e *Emitter) StoreLocal(idx int) { e.emit(KStoreLocal.With(idx), "i", "") }
func (e *Emitter) IInc(idx int)       { e.emit(KIInc.With(idx), "", "") }

func (e *Emitter) Dup()    { e.emit(KDup, "i", "ii") }
func (e *Emitter) Swap()   { e.emit(KSwap, "ii", "ii") }
func (e *Emitter) Pop()    { e.emit(KPop, "i", "") }
func (e *Emitter) Pop2()   { e.emit(KPop2, "d", "") }
func (e *Emitter) Dup2X1() { e.emit(KDup2X1, "id", "did") }
func (e *Emitter) IRem()   { e.emit(KIRem, "ii", "i") }
func (e *Emitter) IMax()   { e.emit(KIMax, "ii", "i") }
func (e *Emitter) IAdd()   { e.emit(KIAdd, "ii", "i") }
func (e *Emitter) I2D()    { e.emit(KI2D, "i", "d") }
func (e *Emitter) D2I()    { e.emit(KD2I, "d", "i") }

func (e *Emitter) LoadElemI(operand int)  { e.emit(KLoadElemI.With(operand), "i", "i") }
func (e *Emitter) LoadElemD(operand int)  { e.emit(KLoadElemD.With(operand), "i", "d") }
func (e *Emitter) StoreElemI() { e.emit(KStoreElemI, "ii", "") }
func (e *Emitter) StoreElemD() { e.emit(KStoreElemD, "id", "") }

func (e *Emitter) Apply1I(spec *OpSpec) { e.emit(KApply1I.With(e.addOp(spec)), "i", "i") }
func (e *Emitter) Apply1D(spec *OpSpec) { e.emit(KApply1D.With(e.addOp(spec)), "d", "d") }
func (e *Emitter) Apply2I(spec *OpSpec) { e.emit(KApply2I.With(e.addOp(spec)), "ii", "i") }
func (e *Emitter) Apply2D(spec *OpSpec) { e.emit(KApply2D.With(e.addOp(spec)), "dd", "d") }

// declareEdge records the residual layout carried into target by a
// branch. The first edge binds the label's layout; later edges must
// declare the identical layout.
func (e *Emitter) declareEdge(target *Label, layout Layout) {
	if !target.bound {
		target.layout = layout
		target.bound = true
		return
	}
	if target.layout != layout {
		panic(fmt.Errorf("residual layout mismatch at label %d: %q vs %q",
			target.id, target.layout, layout))
	}
}

// Jump emits an unconditional jump. Code until the next Mark is
// unreachable.
func (e *Emitter) Jump(target *Label) {
	e.check()
	if !e.reachable {
		panic("emitting unreachable jump")
	}
	e.declareEdge(target, e.cur)
	e.patches = append(e.patches, patch{ip: len(e.code), label: target})
	e.code = append(e.code, KJump)
	e.reachable = false
}

// Branch emits a conditional branch popping two integers.
func (e *Emitter) Branch(op KOp, target *Label) {
	e.check()
	e.effect(op, "ii", "")
	e.declareEdge(target, e.cur)
	e.patches = append(e.patches, patch{ip: len(e.code), label: target})
	e.code = append(e.code, op)
}

// Return ends the routine. Code until the next Mark is unreachable.
func (e *Emitter) Return() {
	e.emit(KReturn, "", "")
	e.reachable = false
}

// Mark binds a label to the current position. When reached by
// fall-through the current layout must match any layout already declared
// for the label; after unconditional control transfer the label's
// declared layout becomes the current one.
func (e *Emitter) Mark(target *Label) {
	e.check()
	if target.marked {
		panic(fmt.Errorf("label %d marked twice", target.id))
	}
	target.marked = true
	target.pos = len(e.code)
	if e.reachable {
		e.declareEdge(target, e.cur)
	} else {
		if !target.bound {
			// a label only reachable by later branches starts empty
			target.layout = ""
			target.bound = true
		}
		e.cur = target.layout
		e.reachable = true
	}
}

// Layout returns the current simulated stack layout.
func (e *Emitter) Layout() Layout {
	return e.cur
}

// Finalize resolves branch targets, validates every label, and returns
// the executable program. The emitter cannot be used afterwards.
func (e *Emitter) Finalize() *Program {
	e.check()
	e.finalized = true

	for _, l := range e.labels {
		if !l.marked && l.bound {
			panic(fmt.Errorf("branch to unmarked label %d", l.id))
		}
	}
	for _, p := range e.patches {
		offset := p.label.pos - p.ip - 1
		e.code[p.ip] = (e.code[p.ip] & 0xff).With(offset)
	}

	return &Program{
		Code:      e.code,
		ConstsI:   e.constsI,
		ConstsD:   e.constsD,
		Ops:       e.ops,
		NumLocals: e.nLocals,
		MaxStack:  e.maxStack,
	}
}

// Operands returns the source vectors the routine reads, in operand
// index order.
func (e *Emitter) Operands() []vexvec.Vector {
	return e.operands
}
