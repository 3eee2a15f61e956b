package vexlang

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/reusee/vex/vexfuse"
	"github.com/reusee/vex/vexir"
	"github.com/reusee/vex/vexrt"
	"github.com/reusee/vex/vexvec"
)

// VM is one interpreter session: a global environment preloaded with
// the builtins and the execution context that runs lowered routines.
type VM struct {
	ctx *vexir.Context
	env *vexrt.Env
	out io.Writer
}

type Option func(*VM)

// WithCompileLoops flips the process-wide loop compilation switch for
// this session. Off means every loop runs through generic evaluation.
func WithCompileLoops(on bool) Option {
	return func(vm *VM) {
		vm.ctx.CompileLoops = on
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(vm *VM) {
		vm.ctx.Log = log
	}
}

func WithOutput(w io.Writer) Option {
	return func(vm *VM) {
		vm.out = w
	}
}

func NewVM(options ...Option) *VM {
	vm := &VM{
		env: vexrt.NewEnv(),
		out: os.Stdout,
	}
	vm.ctx = &vexir.Context{
		CallValue: vm.callValue,
	}
	vm.registerBuiltins()
	for _, opt := range options {
		opt(vm)
	}
	return vm
}

func (vm *VM) Env() *vexrt.Env { return vm.env }

// Eval lowers and runs source against the session environment. A
// deferred result is forced before it is returned.
func (vm *VM) Eval(name, src string) (vexrt.Value, error) {
	r, err := vexir.Lower(name, strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	v, err := vm.ctx.Run(r, vm.env)
	if err != nil {
		return nil, err
	}
	return forced(v), nil
}

// Get reads a session global, forcing deferred computations.
func (vm *VM) Get(name string) (vexrt.Value, bool) {
	v, ok := vm.env.Get(name)
	if !ok {
		return nil, false
	}
	return forced(v), true
}

func forced(v vexrt.Value) vexrt.Value {
	if vec, ok := v.(vexvec.Vector); ok {
		return vexfuse.Materialize(vec)
	}
	return v
}
