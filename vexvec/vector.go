package vexvec

import "math"

type Kind int

const (
	KindInt Kind = iota
	KindDouble
	KindLogical
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindDouble:
		return "double"
	case KindLogical:
		return "logical"
	case KindString:
		return "character"
	}
	return "unknown"
}

// NAInt is the missing-value sentinel for integer elements.
const NAInt int32 = math.MinInt32

// naDoubleBits is a quiet NaN with a payload that ordinary arithmetic
// never produces, so NA stays distinguishable from computed NaN.
const naDoubleBits uint64 = 0x7FF00000000007A2

var NADouble = math.Float64frombits(naDoubleBits)

func IsNADouble(f float64) bool {
	return math.Float64bits(f) == naDoubleBits
}

type Vector interface {
	Len() int
	Kind() Kind

	// ElemInt returns element i as an integer, NAInt when missing.
	ElemInt(i int) int32

	// ElemDouble returns element i as a double, NADouble when missing.
	ElemDouble(i int) float64

	Attributes() *Attrs
}

func IntToDouble(x int32) float64 {
	if x == NAInt {
		return NADouble
	}
	return float64(x)
}

func DoubleToInt(f float64) int32 {
	if math.IsNaN(f) {
		return NAInt
	}
	return int32(f)
}

// Class returns the value of the "class" attribute, or nil.
func Class(v Vector) []string {
	attr, ok := v.Attributes().Get("class")
	if !ok {
		return nil
	}
	sv, ok := attr.(*StringVector)
	if !ok {
		return nil
	}
	return sv.Values
}

func HasClass(v Vector, class string) bool {
	for _, c := range Class(v) {
		if c == class {
			return true
		}
	}
	return false
}
