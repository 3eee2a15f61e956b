package vexvec

import (
	"math"
	"testing"
)

func TestSeq(t *testing.T) {
	s := NewSeq(1, 5)
	if s.Len() != 5 {
		t.Fatalf("len = %d", s.Len())
	}
	if s.ElemInt(0) != 1 || s.ElemInt(4) != 5 {
		t.Fatalf("bad elements: %d %d", s.ElemInt(0), s.ElemInt(4))
	}
	if s.ElemDouble(2) != 3.0 {
		t.Fatalf("bad double element: %v", s.ElemDouble(2))
	}

	empty := NewSeq(1, 0)
	if empty.Len() != 0 {
		t.Fatalf("empty seq len = %d", empty.Len())
	}

	one := NewSeq(3, 3)
	if one.Len() != 1 || one.ElemInt(0) != 3 {
		t.Fatalf("length-1 seq: len=%d elem=%d", one.Len(), one.ElemInt(0))
	}
}

func TestNAConversions(t *testing.T) {
	iv := NewInt(1, NAInt, 3)
	if !IsNADouble(iv.ElemDouble(1)) {
		t.Fatal("NA int should convert to NA double")
	}
	if iv.ElemDouble(0) != 1.0 {
		t.Fatalf("got %v", iv.ElemDouble(0))
	}

	dv := NewDouble(1.5, NADouble)
	if dv.ElemInt(1) != NAInt {
		t.Fatal("NA double should convert to NA int")
	}

	// plain NaN also maps to NA int, but is not NA double
	nan := NewDouble(math.NaN())
	if nan.ElemInt(0) != NAInt {
		t.Fatal("NaN should convert to NA int")
	}
	if IsNADouble(nan.ElemDouble(0)) {
		t.Fatal("plain NaN must stay distinguishable from NA")
	}
}

func TestAttrs(t *testing.T) {
	v := NewDouble(1)
	v.Attributes().Set("class", NewString("foo"))
	if !HasClass(v, "foo") {
		t.Fatal("class attribute not visible")
	}
	if HasClass(v, "bar") {
		t.Fatal("unexpected class")
	}

	w := NewDouble(2)
	w.Attributes().CopyFrom(v.Attributes())
	if !HasClass(w, "foo") {
		t.Fatal("CopyFrom lost class")
	}
}

func TestFormat(t *testing.T) {
	v := NewInt(1, NAInt, 3)
	if got := Format(v); got != "1 NA 3" {
		t.Fatalf("got %q", got)
	}
	l := NewLogical(1, 0, NAInt)
	if got := Format(l); got != "TRUE FALSE NA" {
		t.Fatalf("got %q", got)
	}
}

func TestEqual(t *testing.T) {
	if !Equal(NewDouble(1, NADouble), NewDouble(1, NADouble)) {
		t.Fatal("NA-aware equality failed")
	}
	if Equal(NewDouble(1, 2), NewDouble(1, NADouble)) {
		t.Fatal("NA should not equal 2")
	}
	if Equal(NewInt(1), NewDouble(1)) {
		t.Fatal("kind mismatch should not be equal")
	}
}
