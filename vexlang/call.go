package vexlang

import (
	"github.com/reusee/vex/vexir"
	"github.com/reusee/vex/vexrt"
	"github.com/reusee/vex/vexvec"
)

// callValue is the full dynamic call path: builtins apply directly,
// closures run their lowered body, generics dispatch on the first
// argument's class chain. The compiled loop path must agree with this
// exactly, so it reuses the same Dispatch and the same builtin Fn.
func (vm *VM) callValue(env *vexrt.Env, fn vexrt.Value, args []vexrt.Value) (vexrt.Value, error) {
	switch f := fn.(type) {
	case *vexrt.Builtin:
		return f.Fn(args)
	case *vexrt.Closure:
		return f.Apply(f.Env, args)
	case *vexrt.Generic:
		if len(args) == 0 {
			return nil, vexir.Errorf("no applicable method for %q", f.Name)
		}
		m, _, ok := f.Dispatch(args[0])
		if !ok {
			return nil, vexir.Errorf(
				"no applicable method for %q applied to an object of class %q",
				f.Name, classLabel(args[0]))
		}
		return vm.callValue(env, m, args)
	}
	return nil, vexir.Errorf("attempt to apply non-function")
}

func classLabel(v vexrt.Value) string {
	vec, ok := v.(vexvec.Vector)
	if !ok {
		return "function"
	}
	if cls := vexvec.Class(vec); len(cls) > 0 {
		return cls[0]
	}
	return vec.Kind().String()
}
