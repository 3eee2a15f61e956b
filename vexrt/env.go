package vexrt

import "iter"

// Value is either a vexvec.Vector or a Function.
type Value any

type Binding struct {
	Value Value

	// Version is the global generation at which this binding was last
	// written. Compiled loops capture versions of the bindings they
	// specialize on and compare them before reuse.
	Version uint64
}

var generation uint64

func nextGeneration() uint64 {
	generation++
	return generation
}

type Env struct {
	Parent *Env
	vars   map[string]*Binding
}

func NewEnv() *Env {
	return &Env{}
}

func (e *Env) NewChild() *Env {
	return &Env{Parent: e}
}

func (e *Env) Get(name string) (Value, bool) {
	b, ok := e.Lookup(name)
	if !ok {
		return nil, false
	}
	return b.Value, true
}

// Lookup finds the nearest binding for name, walking parent scopes.
func (e *Env) Lookup(name string) (*Binding, bool) {
	for env := e; env != nil; env = env.Parent {
		if b, ok := env.vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// Def writes name in this scope, shadowing any outer binding.
func (e *Env) Def(name string, val Value) {
	if e.vars == nil {
		e.vars = make(map[string]*Binding)
	}
	if b, ok := e.vars[name]; ok {
		b.Value = val
		b.Version = nextGeneration()
		return
	}
	e.vars[name] = &Binding{
		Value:   val,
		Version: nextGeneration(),
	}
}

// Set assigns to the nearest existing binding, reporting false when no
// scope defines name.
func (e *Env) Set(name string, val Value) bool {
	b, ok := e.Lookup(name)
	if !ok {
		return false
	}
	b.Value = val
	b.Version = nextGeneration()
	return true
}

// Bindings iterates over this scope's own bindings, not parent scopes.
func (e *Env) Bindings() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for name, b := range e.vars {
			if !yield(name, b.Value) {
				return
			}
		}
	}
}
