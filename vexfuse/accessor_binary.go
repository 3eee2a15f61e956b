package vexfuse

// binaryAccessor fuses two operand accessors under the recycling rule:
// the fused length is the maximum of the operand lengths, and element i
// reads operand k at position i mod length-k.
type binaryAccessor struct {
	op       *OpSpec
	children [2]Accessor
	len1     int
	len2     int
	length   int
}

func (a *binaryAccessor) Init(e *Emitter) {
	a.children[0].Init(e)
	a.children[1].Init(e)
	a.len1 = e.ReserveLocal(1)
	a.len2 = e.ReserveLocal(1)
	a.length = e.ReserveLocal(1)
	a.children[0].PushLength(e)
	e.Dup()
	e.StoreLocal(a.len1)
	a.children[1].PushLength(e)
	e.Dup()
	e.StoreLocal(a.len2)
	e.IMax()
	e.StoreLocal(a.length)
}

func (a *binaryAccessor) PushLength(e *Emitter) {
	e.LoadLocal(a.length)
}

func (a *binaryAccessor) MustCheckNA() bool {
	return a.children[0].MustCheckNA() || a.children[1].MustCheckNA()
}

func (a *binaryAccessor) PushElemInt(e *Emitter, na *Label) {
	if a.op.ArgKind == ArgDouble {
		a.computeDouble(e, na)
	} else {
		a.computeInt(e, na)
	}
	cast(e, a.op.RetKind, ArgInt)
}

func (a *binaryAccessor) PushElemDouble(e *Emitter, na *Label) {
	if a.op.ArgKind == ArgDouble {
		a.computeDouble(e, na)
	} else {
		a.computeInt(e, na)
	}
	cast(e, a.op.RetKind, ArgDouble)
}

// computeInt evaluates both operands as integers and applies the kernel.
//
// When NA checking is requested we route both operands' escapes through
// an internal block first: depending on which operand signals, the stack
// holds either {index, value1} or {value1, value2} — two integers either
// way — so one pop normalizes every route into the caller's na label to
// exactly one residual integer.
func (a *binaryAccessor) computeInt(e *Emitter, na *Label) {
	var argNa, done *Label
	if na != nil && a.MustCheckNA() {
		argNa = e.NewLabel()
		done = e.NewLabel()
	}

	// stack: { index }
	e.Dup()
	e.LoadLocal(a.len1)
	e.IRem()
	// stack: { index, index1 }
	a.children[0].PushElemInt(e, argNa)
	// stack: { index, value1 }
	e.Swap()
	e.LoadLocal(a.len2)
	e.IRem()
	// stack: { value1, index2 }
	a.children[1].PushElemInt(e, argNa)
	// stack: { value1, value2 }
	e.Apply2I(a.op)

	if done != nil {
		e.Jump(done)
	}
	if argNa != nil {
		e.Mark(argNa)
		e.Pop()
		e.Jump(na)
	}
	if done != nil {
		e.Mark(done)
	}
}

// computeDouble evaluates both operands as doubles. The escape paths are
// asymmetric: if operand 1 signals, the stack holds {index, value1::int},
// but if operand 2 signals, operand 1 has already been widened and the
// stack holds {value1::double, value2::int} — one more word. Each escape
// block discards its own shape and leaves a single integer before
// transferring to the caller's na label.
func (a *binaryAccessor) computeDouble(e *Emitter, na *Label) {
	var argNa1, argNa2, done *Label
	if na != nil && a.children[0].MustCheckNA() {
		argNa1 = e.NewLabel()
	}
	if na != nil && a.children[1].MustCheckNA() {
		argNa2 = e.NewLabel()
	}
	if argNa1 != nil || argNa2 != nil {
		done = e.NewLabel()
	}

	// stack: { index }
	e.Dup()
	e.LoadLocal(a.len1)
	e.IRem()
	// stack: { index, index1 }
	a.children[0].PushElemDouble(e, argNa1)
	// stack: { index, value1 }
	e.Dup2X1() // the next two instructions swap value1 under the index
	e.Pop2()
	// stack: { value1, index }
	e.LoadLocal(a.len2)
	e.IRem()
	// stack: { value1, index2 }
	a.children[1].PushElemDouble(e, argNa2)
	// stack: { value1, value2 }
	e.Apply2D(a.op)

	if done != nil {
		e.Jump(done)
	}
	if argNa1 != nil {
		e.Mark(argNa1)
		// stack: { index, value1::int }
		e.Pop()
		e.Jump(na)
	}
	if argNa2 != nil {
		e.Mark(argNa2)
		// stack: { value1::double, value2::int }
		e.Pop()
		e.Pop2()
		e.PushConstI(0)
		e.Jump(na)
	}
	if done != nil {
		e.Mark(done)
	}
}
