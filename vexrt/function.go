package vexrt

type Function interface {
	FuncName() string
}

// Builtin is a primitive implemented in Go. Kernel names the fusable
// elementwise computation registered in the fusion op registry, empty
// when the builtin has no fast-path form.
type Builtin struct {
	Name   string
	Kernel string
	Fn     func(args []Value) (Value, error)
}

func (b *Builtin) FuncName() string { return b.Name }

// Closure is a user-defined function. Apply is installed by the front
// end and runs the lowered body in a child of Env.
type Closure struct {
	Name   string
	Params []string
	Env    *Env
	Apply  func(env *Env, args []Value) (Value, error)
}

func (c *Closure) FuncName() string { return c.Name }
