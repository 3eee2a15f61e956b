package vexlang

import (
	"fmt"

	"github.com/reusee/vex/vexfuse"
	"github.com/reusee/vex/vexir"
	"github.com/reusee/vex/vexrt"
	"github.com/reusee/vex/vexvec"
)

// registerBuiltins loads the global environment. Arithmetic operators
// are installed as generics with a builtin default method, so user code
// can attach class-specific methods and dispatch will prefer them.
func (vm *VM) registerBuiltins() {
	def := func(b *vexrt.Builtin) {
		vm.env.Def(b.Name, b)
	}
	defOp := func(b *vexrt.Builtin) {
		g := vexrt.NewGeneric(b.Name)
		g.AddMethod("default", b)
		vm.env.Def(b.Name, g)
	}

	defOp(binaryArith("+", "add.int", "add.dbl"))
	defOp(minusBuiltin())
	defOp(binaryArith("*", "mul.int", "mul.dbl"))
	defOp(binaryArith("/", "", "div.dbl"))
	defOp(binaryArith("^", "", "pow.dbl"))
	def(moduloBuiltin())

	def(comparison("<", func(a, b float64) bool { return a < b }))
	def(comparison(">", func(a, b float64) bool { return a > b }))
	def(comparison("<=", func(a, b float64) bool { return a <= b }))
	def(comparison(">=", func(a, b float64) bool { return a >= b }))
	def(comparison("==", func(a, b float64) bool { return a == b }))
	def(comparison("!=", func(a, b float64) bool { return a != b }))
	def(notBuiltin())

	def(unaryMath("sqrt", "", "sqrt.dbl"))
	def(unaryMath("abs", "abs.int", "abs.dbl"))
	def(unaryMath("sin", "", "sin.dbl"))
	def(unaryMath("cos", "", "cos.dbl"))

	def(seqBuiltin())
	def(concatBuiltin())
	def(lengthBuiltin())
	def(sumBuiltin())
	def(indexBuiltin())
	def(replaceBuiltin())
	def(asDoubleBuiltin())
	def(asIntegerBuiltin())

	def(classBuiltin())
	def(setClassBuiltin())
	def(attrBuiltin())
	def(setAttrBuiltin())
	def(vm.setMethodBuiltin())

	def(stopBuiltin())
	def(vm.printBuiltin())
}

func scalarIntArg(name string, v vexrt.Value) (int32, error) {
	vec, err := numericArg(name, v)
	if err != nil {
		return 0, err
	}
	if vec.Len() == 0 {
		return 0, vexir.Errorf("%q: argument of length 0", name)
	}
	n := vec.ElemInt(0)
	if n == vexvec.NAInt {
		return 0, vexir.Errorf("%q: missing value argument", name)
	}
	return n, nil
}

func scalarStringArg(name string, v vexrt.Value) (string, error) {
	sv, ok := v.(*vexvec.StringVector)
	if !ok || len(sv.Values) == 0 {
		return "", vexir.Errorf("%q: expected a string argument", name)
	}
	return sv.Values[0], nil
}

func seqBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "seq",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 2 {
				return nil, vexir.Errorf("%q: expected 2 arguments", "seq")
			}
			from, err := scalarIntArg("seq", args[0])
			if err != nil {
				return nil, err
			}
			to, err := scalarIntArg("seq", args[1])
			if err != nil {
				return nil, err
			}
			return vexvec.NewSeq(from, to), nil
		},
	}
}

// concatBuiltin is c(): concatenation with kind promotion, string over
// double over integer over logical.
func concatBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "c",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			kind := vexvec.KindLogical
			total := 0
			vecs := make([]vexvec.Vector, 0, len(args))
			for _, a := range args {
				vec, err := asVec("c", a)
				if err != nil {
					return nil, err
				}
				vec = vexfuse.Materialize(vec)
				vecs = append(vecs, vec)
				total += vec.Len()
				if promotes(vec.Kind(), kind) {
					kind = vec.Kind()
				}
			}

			switch kind {
			case vexvec.KindString:
				out := make([]string, 0, total)
				for _, vec := range vecs {
					sv, ok := vec.(*vexvec.StringVector)
					if !ok {
						for i := 0; i < vec.Len(); i++ {
							out = append(out, vexvec.FormatElem(vec, i))
						}
						continue
					}
					out = append(out, sv.Values...)
				}
				return &vexvec.StringVector{Values: out}, nil
			case vexvec.KindDouble:
				out := make([]float64, 0, total)
				for _, vec := range vecs {
					for i := 0; i < vec.Len(); i++ {
						out = append(out, vec.ElemDouble(i))
					}
				}
				return &vexvec.DoubleVector{Values: out}, nil
			case vexvec.KindInt:
				out := make([]int32, 0, total)
				for _, vec := range vecs {
					for i := 0; i < vec.Len(); i++ {
						out = append(out, vec.ElemInt(i))
					}
				}
				return &vexvec.IntVector{Values: out}, nil
			default:
				out := make([]int32, 0, total)
				for _, vec := range vecs {
					for i := 0; i < vec.Len(); i++ {
						out = append(out, vec.ElemInt(i))
					}
				}
				return &vexvec.LogicalVector{Values: out}, nil
			}
		},
	}
}

func promotes(a, over vexvec.Kind) bool {
	rank := map[vexvec.Kind]int{
		vexvec.KindLogical: 0,
		vexvec.KindInt:     1,
		vexvec.KindDouble:  2,
		vexvec.KindString:  3,
	}
	return rank[a] > rank[over]
}

func lengthBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "length",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 1 {
				return nil, vexir.Errorf("%q: expected 1 argument", "length")
			}
			vec, err := asVec("length", args[0])
			if err != nil {
				return nil, err
			}
			return vexvec.NewInt(int32(vec.Len())), nil
		},
	}
}

// sumBuiltin materializes its argument, so a deferred chain built by
// vector arithmetic runs fused here.
func sumBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "sum",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 1 {
				return nil, vexir.Errorf("%q: expected 1 argument", "sum")
			}
			vec, err := numericArg("sum", args[0])
			if err != nil {
				return nil, err
			}
			vec = vexfuse.Materialize(vec)

			if vec.Kind() == vexvec.KindDouble {
				var total float64
				for i := 0; i < vec.Len(); i++ {
					d := vec.ElemDouble(i)
					if vexvec.IsNADouble(d) {
						return vexvec.NewDouble(vexvec.NADouble), nil
					}
					total += d
				}
				return vexvec.NewDouble(total), nil
			}

			var total int64
			for i := 0; i < vec.Len(); i++ {
				n := vec.ElemInt(i)
				if n == vexvec.NAInt {
					return vexvec.NewInt(vexvec.NAInt), nil
				}
				total += int64(n)
			}
			if int64(int32(total)) != total {
				return vexvec.NewDouble(float64(total)), nil
			}
			return vexvec.NewInt(int32(total)), nil
		},
	}
}

func indexBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "[",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 2 {
				return nil, vexir.Errorf("%q: expected 2 arguments", "[")
			}
			vec, err := asVec("[", args[0])
			if err != nil {
				return nil, err
			}
			i, err := scalarIntArg("[", args[1])
			if err != nil {
				return nil, err
			}
			if i < 1 || int(i) > vec.Len() {
				return nil, vexir.Errorf("subscript out of bounds")
			}
			return elemOf(vec, int(i)-1), nil
		},
	}
}

func elemOf(v vexvec.Vector, i int) vexvec.Vector {
	switch v.Kind() {
	case vexvec.KindDouble:
		return vexvec.NewDouble(v.ElemDouble(i))
	case vexvec.KindLogical:
		return vexvec.NewLogical(v.ElemInt(i))
	case vexvec.KindString:
		return vexvec.NewString(v.(*vexvec.StringVector).Values[i])
	default:
		return vexvec.NewInt(v.ElemInt(i))
	}
}

// replaceBuiltin is the replacement form behind x[i] = v: it returns a
// fresh vector, widening to double when the replacement value needs it.
func replaceBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "[<-",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 3 {
				return nil, vexir.Errorf("%q: expected 3 arguments", "[<-")
			}
			vec, err := asVec("[<-", args[0])
			if err != nil {
				return nil, err
			}
			vec = vexfuse.Materialize(vec)
			i, err := scalarIntArg("[<-", args[1])
			if err != nil {
				return nil, err
			}
			if i < 1 || int(i) > vec.Len() {
				return nil, vexir.Errorf("subscript out of bounds")
			}
			repl, err := asVec("[<-", args[2])
			if err != nil {
				return nil, err
			}
			if repl.Len() != 1 {
				return nil, vexir.Errorf("%q: replacement must be a single value", "[<-")
			}

			var out vexvec.Vector
			if vec.Kind() == vexvec.KindDouble || repl.Kind() == vexvec.KindDouble {
				values := make([]float64, vec.Len())
				for j := range values {
					values[j] = vec.ElemDouble(j)
				}
				values[i-1] = repl.ElemDouble(0)
				out = &vexvec.DoubleVector{Values: values}
			} else {
				values := make([]int32, vec.Len())
				for j := range values {
					values[j] = vec.ElemInt(j)
				}
				values[i-1] = repl.ElemInt(0)
				out = &vexvec.IntVector{Values: values}
			}
			out.Attributes().CopyFrom(vec.Attributes())
			return out, nil
		},
	}
}

func asDoubleBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "asDouble",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 1 {
				return nil, vexir.Errorf("%q: expected 1 argument", "asDouble")
			}
			vec, err := numericArg("asDouble", args[0])
			if err != nil {
				return nil, err
			}
			values := make([]float64, vec.Len())
			for i := range values {
				values[i] = vec.ElemDouble(i)
			}
			out := &vexvec.DoubleVector{Values: values}
			out.Attributes().CopyFrom(vec.Attributes())
			return out, nil
		},
	}
}

func asIntegerBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "asInteger",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 1 {
				return nil, vexir.Errorf("%q: expected 1 argument", "asInteger")
			}
			vec, err := numericArg("asInteger", args[0])
			if err != nil {
				return nil, err
			}
			values := make([]int32, vec.Len())
			for i := range values {
				values[i] = vec.ElemInt(i)
			}
			out := &vexvec.IntVector{Values: values}
			out.Attributes().CopyFrom(vec.Attributes())
			return out, nil
		},
	}
}

func classBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "class",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 1 {
				return nil, vexir.Errorf("%q: expected 1 argument", "class")
			}
			vec, err := asVec("class", args[0])
			if err != nil {
				return nil, err
			}
			if cls := vexvec.Class(vec); len(cls) > 0 {
				return vexvec.NewString(cls...), nil
			}
			return vexvec.NewString(vec.Kind().String()), nil
		},
	}
}

// setClassBuiltin tags a value in place; dispatch notices the class on
// the very next call that sees the value.
func setClassBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "setClass",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 2 {
				return nil, vexir.Errorf("%q: expected 2 arguments", "setClass")
			}
			vec, err := asVec("setClass", args[0])
			if err != nil {
				return nil, err
			}
			name, err := scalarStringArg("setClass", args[1])
			if err != nil {
				return nil, err
			}
			vec.Attributes().Set("class", vexvec.NewString(name))
			return vec, nil
		},
	}
}

func attrBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "attr",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 2 {
				return nil, vexir.Errorf("%q: expected 2 arguments", "attr")
			}
			vec, err := asVec("attr", args[0])
			if err != nil {
				return nil, err
			}
			name, err := scalarStringArg("attr", args[1])
			if err != nil {
				return nil, err
			}
			attr, ok := vec.Attributes().Get(name)
			if !ok {
				return vexvec.NewLogical(vexvec.NAInt), nil
			}
			return attr, nil
		},
	}
}

func setAttrBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "setAttr",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 3 {
				return nil, vexir.Errorf("%q: expected 3 arguments", "setAttr")
			}
			vec, err := asVec("setAttr", args[0])
			if err != nil {
				return nil, err
			}
			name, err := scalarStringArg("setAttr", args[1])
			if err != nil {
				return nil, err
			}
			attr, err := asVec("setAttr", args[2])
			if err != nil {
				return nil, err
			}
			vec.Attributes().Set(name, attr)
			return vec, nil
		},
	}
}

// setMethodBuiltin attaches a class-specific method to a named function,
// turning a plain builtin into a generic on first use. Both the
// binding write and the method-table bump invalidate any loop that
// specialized on the old definition.
func (vm *VM) setMethodBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "setMethod",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 3 {
				return nil, vexir.Errorf("%q: expected 3 arguments", "setMethod")
			}
			name, err := scalarStringArg("setMethod", args[0])
			if err != nil {
				return nil, err
			}
			class, err := scalarStringArg("setMethod", args[1])
			if err != nil {
				return nil, err
			}
			fn, ok := args[2].(vexrt.Function)
			if !ok {
				return nil, vexir.Errorf("%q: method must be a function", "setMethod")
			}

			existing, _ := vm.env.Get(name)
			switch g := existing.(type) {
			case *vexrt.Generic:
				g.AddMethod(class, fn)
			case *vexrt.Builtin:
				wrapped := vexrt.NewGeneric(name)
				wrapped.AddMethod("default", g)
				wrapped.AddMethod(class, fn)
				vm.env.Set(name, wrapped)
			case nil:
				fresh := vexrt.NewGeneric(name)
				fresh.AddMethod(class, fn)
				vm.env.Def(name, fresh)
			default:
				return nil, vexir.Errorf("%q: %q is not a function", "setMethod", name)
			}
			return vexvec.NewLogical(), nil
		},
	}
}

func stopBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "stop",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) == 0 {
				return nil, vexir.Errorf("stopped")
			}
			if sv, ok := args[0].(*vexvec.StringVector); ok && len(sv.Values) > 0 {
				return nil, &vexir.EvalError{Msg: sv.Values[0]}
			}
			return nil, vexir.Errorf("stopped")
		},
	}
}

func (vm *VM) printBuiltin() *vexrt.Builtin {
	return &vexrt.Builtin{
		Name: "print",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != 1 {
				return nil, vexir.Errorf("%q: expected 1 argument", "print")
			}
			switch v := args[0].(type) {
			case vexvec.Vector:
				fmt.Fprintln(vm.out, vexvec.Format(vexfuse.Materialize(v)))
			case vexrt.Function:
				fmt.Fprintf(vm.out, "function %s\n", v.FuncName())
			default:
				fmt.Fprintln(vm.out, v)
			}
			return args[0], nil
		},
	}
}
