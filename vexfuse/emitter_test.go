package vexfuse

import (
	"testing"
)

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	fn()
}

func TestEdgeLayoutMismatch(t *testing.T) {
	e := NewEmitter()
	target := e.NewLabel()

	// first edge binds the label to an empty residual layout
	e.PushConstI(1)
	e.PushConstI(2)
	e.Branch(KIfICmpEq, target)

	// second edge arrives with one integer left over
	e.PushConstI(3)
	e.PushConstI(1)
	e.PushConstI(2)
	expectPanic(t, func() {
		e.Branch(KIfICmpEq, target)
	})
}

func TestMarkAfterJumpAdoptsLabelLayout(t *testing.T) {
	e := NewEmitter()
	merge := e.NewLabel()

	e.PushConstI(7) // residual value carried to the merge point
	e.Jump(merge)
	e.Mark(merge)

	// the merge point owes us exactly one integer
	e.Pop()
	e.Return()
	e.Finalize()
}

func TestStackUnderflow(t *testing.T) {
	e := NewEmitter()
	expectPanic(t, func() {
		e.Pop()
	})
}

func TestWordWidthMismatch(t *testing.T) {
	e := NewEmitter()
	e.PushConstD(1.5)
	// Pop removes a single word, the double occupies two
	expectPanic(t, func() {
		e.Pop()
	})
}

func TestDoubleMarkPanics(t *testing.T) {
	e := NewEmitter()
	l := e.NewLabel()
	e.Mark(l)
	e.Return()
	expectPanic(t, func() {
		e.Mark(l)
	})
}

func TestBranchToUnmarkedLabelFails(t *testing.T) {
	e := NewEmitter()
	l := e.NewLabel()
	e.PushConstI(0)
	e.PushConstI(0)
	e.Branch(KIfICmpEq, l)
	e.Return()
	expectPanic(t, func() {
		e.Finalize()
	})
}

func TestUseAfterFinalize(t *testing.T) {
	e := NewEmitter()
	e.Return()
	e.Finalize()
	expectPanic(t, func() {
		e.PushConstI(1)
	})
}

func TestUnreachableEmission(t *testing.T) {
	e := NewEmitter()
	e.Return()
	// no label marked, so nothing can reach this point
	expectPanic(t, func() {
		e.PushConstI(1)
	})
}

func TestDup2X1Layout(t *testing.T) {
	// {i d} -> {d i d}: the double is duplicated under the integer
	e := NewEmitter()
	e.PushConstI(3)
	e.PushConstD(2.5)
	e.Dup2X1()
	e.Pop2() // top double
	e.Pop()  // the integer
	e.Pop2() // the buried double copy
	e.Return()
	e.Finalize()
}

func TestMaxStackCountsWords(t *testing.T) {
	e := NewEmitter()
	e.PushConstD(1)
	e.PushConstD(2)
	e.PushConstI(3)
	e.Pop()
	e.Pop2()
	e.Pop2()
	e.Return()
	prog := e.Finalize()
	if prog.MaxStack != 5 {
		t.Fatalf("MaxStack = %d, want 5", prog.MaxStack)
	}
}
