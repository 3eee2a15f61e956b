package vexir

import (
	"fmt"
	"log/slog"

	"github.com/reusee/vex/vexrt"
	"github.com/reusee/vex/vexvec"
)

// EvalError is a user-visible evaluation error. Compiled and generic
// execution raise identical EvalErrors at identical iterations.
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string { return e.Msg }

func Errorf(format string, args ...any) *EvalError {
	return &EvalError{Msg: fmt.Sprintf(format, args...)}
}

// Context carries the pieces instruction evaluation needs from the
// surrounding session: the loop-compilation switch, a logger, and the
// front end's full dynamic call semantics.
type Context struct {
	CompileLoops bool
	Log          *slog.Logger

	// CallValue applies a function value to arguments with full
	// dispatch semantics. Installed by the front end.
	CallValue func(env *vexrt.Env, fn vexrt.Value, args []vexrt.Value) (vexrt.Value, error)
}

type frame struct {
	ctx     *Context
	routine *Routine
	env     *vexrt.Env
	temps   []vexrt.Value
	specs   map[*Call]*SpecializedCall
}

// Run interprets a routine against env. The result is the value of the
// last expression statement executed, or the Return value.
func (c *Context) Run(r *Routine, env *vexrt.Env) (vexrt.Value, error) {
	f := &frame{
		ctx:     c,
		routine: r,
		env:     env,
		temps:   make([]vexrt.Value, r.NumTemps),
	}
	var last vexrt.Value = vexvec.NewLogical()

	ip := 0
	for ip < len(r.Instrs) {
		if c.CompileLoops {
			if info, ok := r.LoopAt(ip); ok {
				f.enterLoop(info)
			}
		}
		switch in := r.Instrs[ip].(type) {
		case *AssignVar:
			v, err := f.eval(in.RHS)
			if err != nil {
				return nil, err
			}
			env.Def(in.Name, v)
		case *AssignTemp:
			v, err := f.eval(in.RHS)
			if err != nil {
				return nil, err
			}
			f.temps[in.Temp] = v
		case *IncTemp:
			f.temps[in.Temp] = f.temps[in.Temp].(int) + 1
		case *ExprStmt:
			v, err := f.eval(in.X)
			if err != nil {
				return nil, err
			}
			last = v
		case *Goto:
			ip = in.Target.IP
			continue
		case *BranchFalse:
			v, err := f.eval(in.Cond)
			if err != nil {
				return nil, err
			}
			ok, err := Truthy(v)
			if err != nil {
				return nil, err
			}
			if !ok {
				ip = in.Target.IP
				continue
			}
		case *Return:
			return f.eval(in.X)
		default:
			panic(fmt.Errorf("unknown instruction %T", in))
		}
		ip++
	}
	return last, nil
}

func (f *frame) eval(x Expr) (vexrt.Value, error) {
	switch e := x.(type) {
	case *Const:
		return e.Value, nil
	case *IntLit:
		return e.N, nil
	case *ReadVar:
		v, ok := f.env.Get(e.Name)
		if !ok {
			return nil, Errorf("object %q not found", e.Name)
		}
		return v, nil
	case *ReadTemp:
		return f.temps[e.Temp], nil
	case *ElemAt:
		vec := f.temps[e.VecTemp].(vexvec.Vector)
		return elemAt(vec, f.temps[e.CounterTemp].(int)), nil
	case *LengthOf:
		v, err := f.eval(e.X)
		if err != nil {
			return nil, err
		}
		vec, ok := v.(vexvec.Vector)
		if !ok {
			return nil, Errorf("invalid for() loop sequence")
		}
		return vexvec.NewInt(int32(vec.Len())), nil
	case *CmpGE:
		counter := f.temps[e.CounterTemp].(int)
		length := f.temps[e.LengthTemp].(vexvec.Vector)
		return counter >= int(length.ElemInt(0)), nil
	case *MakeClosure:
		return f.makeClosure(e.Def), nil
	case *Call:
		return f.evalCall(e)
	default:
		panic(fmt.Errorf("unknown expression %T", x))
	}
}

func (f *frame) makeClosure(def *ClosureDef) *vexrt.Closure {
	ctx := f.ctx
	defEnv := f.env
	return &vexrt.Closure{
		Name:   def.Name,
		Params: def.Params,
		Env:    defEnv,
		Apply: func(env *vexrt.Env, args []vexrt.Value) (vexrt.Value, error) {
			if len(args) != len(def.Params) {
				return nil, Errorf("%s: expected %d arguments, got %d",
					def.Name, len(def.Params), len(args))
			}
			child := env.NewChild()
			for i, p := range def.Params {
				child.Def(p, args[i])
			}
			return ctx.Run(def.Body, child)
		},
	}
}

func (f *frame) evalCall(e *Call) (vexrt.Value, error) {
	if spec, ok := f.specs[e]; ok {
		return f.callSpecialized(e, spec)
	}

	fn, err := f.eval(e.Fn)
	if err != nil {
		if rv, ok := e.Fn.(*ReadVar); ok {
			return nil, Errorf("could not find function %q", rv.Name)
		}
		return nil, err
	}
	args, err := f.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}
	return f.ctx.CallValue(f.env, fn, args)
}

func (f *frame) evalArgs(exprs []Expr) ([]vexrt.Value, error) {
	args := make([]vexrt.Value, len(exprs))
	for i, x := range exprs {
		v, err := f.eval(x)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// Truthy reduces a value to the single definite logical a condition
// needs.
func Truthy(v vexrt.Value) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case vexvec.Vector:
		if x.Len() == 0 {
			return false, Errorf("argument is of length zero")
		}
		switch x.Kind() {
		case vexvec.KindString:
			return false, Errorf("argument is not interpretable as logical")
		case vexvec.KindDouble:
			d := x.ElemDouble(0)
			if vexvec.IsNADouble(d) {
				return false, Errorf("missing value where TRUE/FALSE needed")
			}
			return d != 0, nil
		default:
			n := x.ElemInt(0)
			if n == vexvec.NAInt {
				return false, Errorf("missing value where TRUE/FALSE needed")
			}
			return n != 0, nil
		}
	}
	return false, Errorf("argument is not interpretable as logical")
}

func elemAt(v vexvec.Vector, i int) vexvec.Vector {
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
