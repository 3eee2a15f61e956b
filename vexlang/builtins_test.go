package vexlang

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/reusee/vex/vexfuse"
	"github.com/reusee/vex/vexvec"
)

func evalVec(t *testing.T, src string) vexvec.Vector {
	t.Helper()
	vm := newTestVM(false)
	v, err := vm.Eval("test.vex", src)
	if err != nil {
		t.Fatal(err)
	}
	vec, ok := v.(vexvec.Vector)
	if !ok {
		t.Fatalf("result is %T", v)
	}
	return vec
}

func TestVectorRecycling(t *testing.T) {
	v := evalVec(t, `c(1, 2, 3, 4) + c(10, 20)`)
	if !vexvec.Equal(v, vexvec.NewInt(11, 22, 13, 24)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}
}

func TestVectorArithmeticDefersAndFuses(t *testing.T) {
	vm := newTestVM(false)
	if _, err := vm.Eval("test.vex", `v = sqrt(seq(1, 10000)) * 2`); err != nil {
		t.Fatal(err)
	}
	// still deferred in the environment
	raw, _ := vm.env.Get("v")
	if _, ok := raw.(*vexfuse.DeferredVector); !ok {
		t.Fatalf("v is %T", raw)
	}
	s, err := vm.Eval("test.vex", `sum(v)`)
	if err != nil {
		t.Fatal(err)
	}
	total := s.(vexvec.Vector).ElemDouble(0)
	if math.Abs(total-2*666716.459) > 0.5 {
		t.Fatalf("sum = %v", total)
	}
}

func TestMixedKindPromotion(t *testing.T) {
	v := evalVec(t, `c(1, 2) + c(0.5, 0.5)`)
	if !vexvec.Equal(v, vexvec.NewDouble(1.5, 2.5)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}

	v = evalVec(t, `c(1, 2, 3.5)`)
	if !vexvec.Equal(v, vexvec.NewDouble(1, 2, 3.5)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}

	v = evalVec(t, `c("a", 1)`)
	if v.Kind() != vexvec.KindString {
		t.Fatalf("got kind %v", v.Kind())
	}
}

func TestNAInVectorArithmetic(t *testing.T) {
	v := evalVec(t, `c(1, None, 3) + c(10, 20, 30)`)
	if !vexvec.Equal(v, vexvec.NewInt(11, vexvec.NAInt, 33)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}
}

func TestDivisionIsDouble(t *testing.T) {
	v := evalVec(t, `c(1, 2) / c(2, 4)`)
	if !vexvec.Equal(v, vexvec.NewDouble(0.5, 0.5)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}
}

func TestModulo(t *testing.T) {
	v := evalVec(t, `c(7, -7) % c(3, 3)`)
	if !vexvec.Equal(v, vexvec.NewInt(1, 2)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}
}

func TestEmptyOperandShortCircuitsDeferral(t *testing.T) {
	v := evalVec(t, `seq(1, 0) + c(1, 2, 3)`)
	if v.Len() != 0 {
		t.Fatalf("len = %d", v.Len())
	}
}

func TestComparisonNA(t *testing.T) {
	v := evalVec(t, `c(1, None, 3) > 2`)
	if !vexvec.Equal(v, vexvec.NewLogical(0, vexvec.NAInt, 1)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}
}

func TestNot(t *testing.T) {
	v := evalVec(t, `!c(True, False, None)`)
	if !vexvec.Equal(v, vexvec.NewLogical(0, 1, vexvec.NAInt)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}
}

func TestIndexing(t *testing.T) {
	v := evalVec(t, `c(10, 20, 30)[2]`)
	if !vexvec.Equal(v, vexvec.NewInt(20)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}

	vm := newTestVM(false)
	_, err := vm.Eval("test.vex", `c(1, 2)[5]`)
	if err == nil || !strings.Contains(err.Error(), "subscript out of bounds") {
		t.Fatalf("got %v", err)
	}
}

func TestIndexedAssignment(t *testing.T) {
	v := evalVec(t, `
x = c(1, 2, 3)
x[2] = 9
x
`)
	if !vexvec.Equal(v, vexvec.NewInt(1, 9, 3)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}

	// replacing with a double widens the whole vector
	v = evalVec(t, `
x = c(1, 2, 3)
x[2] = 2.5
x
`)
	if !vexvec.Equal(v, vexvec.NewDouble(1, 2.5, 3)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}
}

func TestClassAndAttr(t *testing.T) {
	v := evalVec(t, `class(setClass(c(1), "money"))`)
	if !vexvec.Equal(v, vexvec.NewString("money")) {
		t.Fatalf("got %q", vexvec.Format(v))
	}

	v = evalVec(t, `class(c(1.5))`)
	if !vexvec.Equal(v, vexvec.NewString("double")) {
		t.Fatalf("got %q", vexvec.Format(v))
	}

	v = evalVec(t, `attr(setAttr(c(1), "dim", c(1)), "dim")`)
	if !vexvec.Equal(v, vexvec.NewInt(1)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	vm := NewVM(WithOutput(&buf))
	if _, err := vm.Eval("test.vex", `print(c(1, None, 3))`); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "1 NA 3" {
		t.Fatalf("printed %q", got)
	}
}

func TestLengthAndSum(t *testing.T) {
	v := evalVec(t, `length(seq(3, 7))`)
	if !vexvec.Equal(v, vexvec.NewInt(5)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}

	v = evalVec(t, `sum(seq(1, 100))`)
	if !vexvec.Equal(v, vexvec.NewInt(5050)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}

	v = evalVec(t, `sum(c(1, None))`)
	if !vexvec.Equal(v, vexvec.NewInt(vexvec.NAInt)) {
		t.Fatalf("got %q", vexvec.Format(v))
	}
}
