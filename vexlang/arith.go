package vexlang

import (
	"fmt"
	"math"

	"github.com/reusee/vex/vexfuse"
	"github.com/reusee/vex/vexir"
	"github.com/reusee/vex/vexrt"
	"github.com/reusee/vex/vexvec"
)

func asVec(name string, v vexrt.Value) (vexvec.Vector, error) {
	vec, ok := v.(vexvec.Vector)
	if !ok {
		return nil, vexir.Errorf("invalid argument to %q", name)
	}
	return vec, nil
}

func numericArg(name string, v vexrt.Value) (vexvec.Vector, error) {
	vec, err := asVec(name, v)
	if err != nil {
		return nil, err
	}
	if vec.Kind() == vexvec.KindString {
		return nil, vexir.Errorf("non-numeric argument to %q", name)
	}
	return vec, nil
}

func mustKernel(name string) *vexfuse.OpSpec {
	op, ok := vexfuse.Lookup(name)
	if !ok {
		panic(fmt.Errorf("kernel not registered: %s", name))
	}
	return op
}

// applyBinary runs one elementwise arithmetic operation. Vector results
// stay deferred so chained expressions build a fusable graph; scalar
// results materialize on the spot. Attributes come from the longer
// operand, the first one on ties.
func applyBinary(intKernel, dblKernel string, a, b vexvec.Vector) vexvec.Vector {
	kernel := dblKernel
	if intKernel != "" &&
		a.Kind() != vexvec.KindDouble && b.Kind() != vexvec.KindDouble {
		kernel = intKernel
	}
	op := mustKernel(kernel)

	if a.Len() == 0 || b.Len() == 0 {
		return emptyOf(op.RetKind)
	}

	dv := vexfuse.Defer(op, a, b)
	longer := a
	if b.Len() > a.Len() {
		longer = b
	}
	dv.Attributes().CopyFrom(longer.Attributes())
	if dv.Len() <= 1 {
		return vexfuse.Materialize(dv)
	}
	return dv
}

func applyUnary(intKernel, dblKernel string, a vexvec.Vector) vexvec.Vector {
	kernel := dblKernel
	if intKernel != "" && a.Kind() != vexvec.KindDouble {
		kernel = intKernel
	}
	op := mustKernel(kernel)

	if a.Len() == 0 {
		return emptyOf(op.RetKind)
	}
	dv := vexfuse.Defer(op, a)
	dv.Attributes().CopyFrom(a.Attributes())
	if dv.Len() <= 1 {
		return vexfuse.Materialize(dv)
	}
	return dv
}

func emptyOf(kind vexfuse.ArgKind) vexvec.Vector {
	if kind == vexfuse.ArgDouble {
		return vexvec.NewDouble()
	}
	return vexvec.NewInt()
}

func binaryArith(name, intKernel, dblKernel string) *vexrt.Builtin {
	return &vexrt.Builtin{
		Name:   name,
		Kernel: dblKernel,
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 2 {
				return nil, vexir.Errorf("%q: expected 2 arguments", name)
			}
			a, err := numericArg(name, args[0])
			if err != nil {
				return nil, err
			}
			b, err := numericArg(name, args[1])
			if err != nil {
				return nil, err
			}
			return applyBinary(intKernel, dblKernel, a, b), nil
		},
	}
}

// minusBuiltin serves both negation and subtraction.
func minusBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name:   "-",
		Kernel: "sub.dbl",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			switch len(args) {
			case 1:
				a, err := numericArg("-", args[0])
				if err != nil {
					return nil, err
				}
				return applyUnary("neg.int", "neg.dbl", a), nil
			case 2:
				a, err := numericArg("-", args[0])
				if err != nil {
					return nil, err
				}
				b, err := numericArg("-", args[1])
				if err != nil {
					return nil, err
				}
				return applyBinary("sub.int", "sub.dbl", a, b), nil
			}
			return nil, vexir.Errorf("%q: expected 1 or 2 arguments", "-")
		},
	}
}

func unaryMath(name, intKernel, dblKernel string) *vexrt.Builtin {
	return &vexrt.Builtin{
		Name:   name,
		Kernel: dblKernel,
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 1 {
				return nil, vexir.Errorf("%q: expected 1 argument", name)
			}
			a, err := numericArg(name, args[0])
			if err != nil {
				return nil, err
			}
			return applyUnary(intKernel, dblKernel, a), nil
		},
	}
}

// moduloBuiltin has no fusion kernel; it always computes eagerly.
func moduloBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "%",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 2 {
				return nil, vexir.Errorf("%q: expected 2 arguments", "%")
			}
			a, err := numericArg("%", args[0])
			if err != nil {
				return nil, err
			}
			b, err := numericArg("%", args[1])
			if err != nil {
				return nil, err
			}
			if a.Len() == 0 || b.Len() == 0 {
				return vexvec.NewInt(), nil
			}
			n := a.Len()
			if b.Len() > n {
				n = b.Len()
			}

			if a.Kind() != vexvec.KindDouble && b.Kind() != vexvec.KindDouble {
				out := make([]int32, n)
				for i := range out {
					x := a.ElemInt(i % a.Len())
					y := b.ElemInt(i % b.Len())
					if x == vexvec.NAInt || y == vexvec.NAInt || y == 0 {
						out[i] = vexvec.NAInt
						continue
					}
					out[i] = ((x % y) + y) % y
				}
				return &vexvec.IntVector{Values: out}, nil
			}

			out := make([]float64, n)
			for i := range out {
				x := a.ElemDouble(i % a.Len())
				y := b.ElemDouble(i % b.Len())
				if vexvec.IsNADouble(x) || vexvec.IsNADouble(y) {
					out[i] = vexvec.NADouble
					continue
				}
				m := math.Mod(x, y)
				if m != 0 && (m < 0) != (y < 0) {
					m += y
				}
				out[i] = m
			}
			return &vexvec.DoubleVector{Values: out}, nil
		},
	}
}

func comparison(name string, cmp func(a, b float64) bool) *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: name,
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 2 {
				return nil, vexir.Errorf("%q: expected 2 arguments", name)
			}
			a, err := asVec(name, args[0])
			if err != nil {
				return nil, err
			}
			b, err := asVec(name, args[1])
			if err != nil {
				return nil, err
			}
			if a.Kind() == vexvec.KindString || b.Kind() == vexvec.KindString {
				return stringCompare(name, a, b)
			}
			if a.Len() == 0 || b.Len() == 0 {
				return vexvec.NewLogical(), nil
			}
			n := a.Len()
			if b.Len() > n {
				n = b.Len()
			}
			out := make([]int32, n)
			for i := range out {
				x := a.ElemDouble(i % a.Len())
				y := b.ElemDouble(i % b.Len())
				if vexvec.IsNADouble(x) || vexvec.IsNADouble(y) {
					out[i] = vexvec.NAInt
					continue
				}
				if cmp(x, y) {
					out[i] = 1
				}
			}
			return &vexvec.LogicalVector{Values: out}, nil
		},
	}
}

func stringCompare(name string, a, b vexvec.Vector) (vexrt.Value, error) {
	if name != "==" && name != "!=" {
		return nil, vexir.Errorf("%q: comparison not supported for strings", name)
	}
	sa, okA := a.(*vexvec.StringVector)
	sb, okB := b.(*vexvec.StringVector)
	if !okA || !okB {
		return nil, vexir.Errorf("%q: cannot compare string and numeric", name)
	}
	if a.Len() == 0 || b.Len() == 0 {
		return vexvec.NewLogical(), nil
	}
	n := a.Len()
	if b.Len() > n {
		n = b.Len()
	}
	out := make([]int32, n)
	for i := range out {
		eq := sa.Values[i%a.Len()] == sb.Values[i%b.Len()]
		if eq == (name == "==") {
			out[i] = 1
		}
	}
	return &vexvec.LogicalVector{Values: out}, nil
}

func notBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "!",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 1 {
				return nil, vexir.Errorf("%q: expected 1 argument", "!")
			}
			a, err := numericArg("!", args[0])
			if err != nil {
				return nil, err
			}
			out := make([]int32, a.Len())
			for i := range out {
				d := a.ElemDouble(i)
				switch {
				case vexvec.IsNADouble(d):
					out[i] = vexvec.NAInt
				case d == 0:
					out[i] = 1
				}
			}
			return &vexvec.LogicalVector{Values: out}, nil
		},
	}
}
