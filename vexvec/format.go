package vexvec

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a vector the way the print builtin shows it.
func Format(v Vector) string {
	var sb strings.Builder
	n := v.Len()
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(FormatElem(v, i))
	}
	return sb.String()
}

func FormatElem(v Vector, i int) string {
	switch v.Kind() {
	case KindInt:
		x := v.ElemInt(i)
		if x == NAInt {
			return "NA"
		}
		return strconv.Itoa(int(x))
	case KindLogical:
		switch v.ElemInt(i) {
		case 0:
			return "FALSE"
		case NAInt:
			return "NA"
		}
		return "TRUE"
	case KindString:
		sv := v.(*StringVector)
		return fmt.Sprintf("%q", sv.Values[i])
	}
	f := v.ElemDouble(i)
	if IsNADouble(f) {
		return "NA"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Equal reports elementwise equality of two vectors, NA-aware.
func Equal(a, b Vector) bool {
	if a.Kind() != b.Kind() || a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		switch a.Kind() {
		case KindInt, KindLogical:
			if a.ElemInt(i) != b.ElemInt(i) {
				return false
			}
		case KindString:
			if a.(*StringVector).Values[i] != b.(*StringVector).Values[i] {
				return false
			}
		default:
			x, y := a.ElemDouble(i), b.ElemDouble(i)
			if IsNADouble(x) != IsNADouble(y) {
				return false
			}
			if !IsNADouble(x) && x != y {
				return false
			}
		}
	}
	return true
}
