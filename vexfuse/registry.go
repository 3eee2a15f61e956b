package vexfuse

import (
	"fmt"
	"math"
)

// ArgKind is the primitive numeric kind a kernel computes on.
type ArgKind int

const (
	ArgInt ArgKind = iota
	ArgDouble
)

func (k ArgKind) String() string {
	if k == ArgInt {
		return "int"
	}
	return "double"
}

// Words is the number of stack words a value of this kind occupies.
func (k ArgKind) Words() int {
	if k == ArgDouble {
		return 2
	}
	return 1
}

// OpSpec describes one fusable elementwise computation: a pure function
// over one or two arguments of a single declared primitive kind. Exactly
// one of the function fields matching Arity and ArgKind is set.
type OpSpec struct {
	Name    string
	Arity   int
	ArgKind ArgKind
	RetKind ArgKind

	Int1    func(a int32) int32
	Double1 func(a float64) float64
	Int2    func(a, b int32) int32
	Double2 func(a, b float64) float64
}

var registry = make(map[string]*OpSpec)

// Register installs a kernel descriptor. Called at init time; replacing
// an existing name is a programming error.
func Register(spec *OpSpec) {
	if _, ok := registry[spec.Name]; ok {
		panic(fmt.Errorf("kernel already registered: %s", spec.Name))
	}
	switch {
	case spec.Arity == 1 && spec.ArgKind == ArgInt && spec.Int1 == nil,
		spec.Arity == 1 && spec.ArgKind == ArgDouble && spec.Double1 == nil,
		spec.Arity == 2 && spec.ArgKind == ArgInt && spec.Int2 == nil,
		spec.Arity == 2 && spec.ArgKind == ArgDouble && spec.Double2 == nil:
		panic(fmt.Errorf("kernel %s missing %s function", spec.Name, spec.ArgKind))
	}
	registry[spec.Name] = spec
}

// Lookup is the acceptance test for fusion: an operation is fusable only
// if a registered kernel exists for it.
func Lookup(name string) (*OpSpec, bool) {
	spec, ok := registry[name]
	return spec, ok
}

func init() {
	Register(&OpSpec{Name: "add.int", Arity: 2, ArgKind: ArgInt, RetKind: ArgInt,
		Int2: func(a, b int32) int32 { return a + b }})
	Register(&OpSpec{Name: "sub.int", Arity: 2, ArgKind: ArgInt, RetKind: ArgInt,
		Int2: func(a, b int32) int32 { return a - b }})
	Register(&OpSpec{Name: "mul.int", Arity: 2, ArgKind: ArgInt, RetKind: ArgInt,
		Int2: func(a, b int32) int32 { return a * b }})

	Register(&OpSpec{Name: "add.dbl", Arity: 2, ArgKind: ArgDouble, RetKind: ArgDouble,
		Double2: func(a, b float64) float64 { return a + b }})
	Register(&OpSpec{Name: "sub.dbl", Arity: 2, ArgKind: ArgDouble, RetKind: ArgDouble,
		Double2: func(a, b float64) float64 { return a - b }})
	Register(&OpSpec{Name: "mul.dbl", Arity: 2, ArgKind: ArgDouble, RetKind: ArgDouble,
		Double2: func(a, b float64) float64 { return a * b }})
	Register(&OpSpec{Name: "div.dbl", Arity: 2, ArgKind: ArgDouble, RetKind: ArgDouble,
		Double2: func(a, b float64) float64 { return a / b }})
	Register(&OpSpec{Name: "pow.dbl", Arity: 2, ArgKind: ArgDouble, RetKind: ArgDouble,
		Double2: math.Pow})

	Register(&OpSpec{Name: "neg.int", Arity: 1, ArgKind: ArgInt, RetKind: ArgInt,
		Int1: func(a int32) int32 { return -a }})
	Register(&OpSpec{Name: "neg.dbl", Arity: 1, ArgKind: ArgDouble, RetKind: ArgDouble,
		Double1: func(a float64) float64 { return -a }})
	Register(&OpSpec{Name: "abs.int", Arity: 1, ArgKind: ArgInt, RetKind: ArgInt,
		Int1: func(a int32) int32 {
			if a < 0 {
				return -a
			}
			return a
		}})
	Register(&OpSpec{Name: "abs.dbl", Arity: 1, ArgKind: ArgDouble, RetKind: ArgDouble,
		Double1: math.Abs})
	Register(&OpSpec{Name: "sqrt.dbl", Arity: 1, ArgKind: ArgDouble, RetKind: ArgDouble,
		Double1: math.Sqrt})
	Register(&OpSpec{Name: "sin.dbl", Arity: 1, ArgKind: ArgDouble, RetKind: ArgDouble,
		Double1: math.Sin})
	Register(&OpSpec{Name: "cos.dbl", Arity: 1, ArgKind: ArgDouble, RetKind: ArgDouble,
		Double1: math.Cos})
}
