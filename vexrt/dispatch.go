package vexrt

import (
	"github.com/reusee/vex/vexvec"
)

// Generic is a function whose implementation is selected at call time by
// the runtime class of its first argument.
type Generic struct {
	Name    string
	methods map[string]Function
	version uint64
}

func NewGeneric(name string) *Generic {
	return &Generic{
		Name:    name,
		methods: make(map[string]Function),
	}
}

func (g *Generic) FuncName() string { return g.Name }

// Version changes whenever the method table changes, invalidating any
// specialization that resolved through this generic.
func (g *Generic) Version() uint64 { return g.version }

func (g *Generic) AddMethod(class string, fn Function) {
	g.methods[class] = fn
	g.version = nextGeneration()
}

func (g *Generic) Method(class string) (Function, bool) {
	fn, ok := g.methods[class]
	return fn, ok
}

// DispatchChain lists the classes applicable to a value, most specific
// first: explicit class attributes, then the kind class (integer or
// double), then numeric, then default.
func DispatchChain(v Value) []string {
	var chain []string
	vec, ok := v.(vexvec.Vector)
	if !ok {
		return []string{"default"}
	}
	chain = append(chain, vexvec.Class(vec)...)
	switch vec.Kind() {
	case vexvec.KindInt:
		chain = append(chain, "integer", "numeric")
	case vexvec.KindDouble:
		chain = append(chain, "double", "numeric")
	case vexvec.KindLogical:
		chain = append(chain, "logical")
	case vexvec.KindString:
		chain = append(chain, "character")
	}
	chain = append(chain, "default")
	return chain
}

// Dispatch selects the most specific applicable method for arg,
// returning the class it matched on.
func (g *Generic) Dispatch(arg Value) (Function, string, bool) {
	for _, class := range DispatchChain(arg) {
		if fn, ok := g.methods[class]; ok {
			return fn, class, true
		}
	}
	return nil, "", false
}
