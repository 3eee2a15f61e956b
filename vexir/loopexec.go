package vexir

import (
	"github.com/reusee/vex/vexrt"
)

// LoopState is the compilation state of one loop call site.
type LoopState int

const (
	LoopUncompiled LoopState = iota
	LoopCompiling
	LoopCompiled
	LoopPermanentlyUncompiled
)

func (s LoopState) String() string {
	switch s {
	case LoopUncompiled:
		return "uncompiled"
	case LoopCompiling:
		return "compiling"
	case LoopCompiled:
		return "compiled"
	case LoopPermanentlyUncompiled:
		return "permanently-uncompiled"
	}
	return "invalid"
}

// LoopSite holds the per-call-site specialization produced by a
// successful compile attempt.
type LoopSite struct {
	State LoopState
	Calls map[*Call]*SpecializedCall
}

// SpecializedCall is one call inside a compiled loop body, bound
// directly to the function the name resolved to at compile time. The
// captured version stamps are revalidated on every use; a mismatch
// means the binding was redefined mid-loop and the specialization must
// not be reused.
type SpecializedCall struct {
	Name    string
	Site    *LoopSite
	Binding *vexrt.Binding
	Version uint64

	Builtin *vexrt.Builtin

	// set instead of Builtin when the name resolved to a generic;
	// method selection still happens per call, against the captured
	// method-table version
	Generic    *vexrt.Generic
	GenVersion uint64
}

// enterLoop runs the call site state machine at a loop's entry
// instruction: Uncompiled -> Compiling -> {Compiled |
// PermanentlyUncompiled}. A compiled site installs its specialized
// calls into the frame; the generic instruction path is used for
// everything else, so declining compilation is never an error.
func (f *frame) enterLoop(info *LoopInfo) {
	site := &info.Site
	switch site.State {
	case LoopPermanentlyUncompiled, LoopCompiling:
		return
	case LoopUncompiled:
		site.State = LoopCompiling
		calls, ok := f.compileLoop(site, info)
		if !ok {
			site.State = LoopPermanentlyUncompiled
			if f.ctx.Log != nil {
				f.ctx.Log.Debug("loop not compilable",
					"routine", f.routine.Name,
					"entry", info.EntryIP,
				)
			}
			return
		}
		site.State = LoopCompiled
		site.Calls = calls
		if f.ctx.Log != nil {
			f.ctx.Log.Debug("loop compiled",
				"routine", f.routine.Name,
				"entry", info.EntryIP,
				"calls", len(calls),
			)
		}
	}

	if f.specs == nil {
		f.specs = make(map[*Call]*SpecializedCall)
	}
	for c, spec := range site.Calls {
		f.specs[c] = spec
	}
}

// compileLoop resolves every call in the body to a builtin or generic
// binding. Computed callees, unresolvable names, and user closures
// force the site to stay uncompiled for good.
func (f *frame) compileLoop(site *LoopSite, info *LoopInfo) (map[*Call]*SpecializedCall, bool) {
	var calls []*Call
	for _, in := range f.routine.Instrs[info.BodyStart:info.NextIP] {
		switch i := in.(type) {
		case *AssignVar:
			collectCalls(i.RHS, &calls)
		case *AssignTemp:
			collectCalls(i.RHS, &calls)
		case *ExprStmt:
			collectCalls(i.X, &calls)
		case *BranchFalse:
			collectCalls(i.Cond, &calls)
		case *Return:
			collectCalls(i.X, &calls)
		}
	}

	specs := make(map[*Call]*SpecializedCall, len(calls))
	for _, c := range calls {
		rv, ok := c.Fn.(*ReadVar)
		if !ok {
			return nil, false
		}
		b, ok := f.env.Lookup(rv.Name)
		if !ok {
			return nil, false
		}
		spec := &SpecializedCall{
			Name:    rv.Name,
			Site:    site,
			Binding: b,
			Version: b.Version,
		}
		switch fn := b.Value.(type) {
		case *vexrt.Builtin:
			spec.Builtin = fn
		case *vexrt.Generic:
			spec.Generic = fn
			spec.GenVersion = fn.Version()
		default:
			return nil, false
		}
		specs[c] = spec
	}
	return specs, true
}

func collectCalls(x Expr, out *[]*Call) {
	switch e := x.(type) {
	case *Call:
		*out = append(*out, e)
		collectCalls(e.Fn, out)
		for _, a := range e.Args {
			collectCalls(a, out)
		}
	case *LengthOf:
		collectCalls(e.X, out)
	}
}

// callSpecialized is the fast path for a call inside a compiled loop.
// The captured stamps are compared before every use; when the binding
// or a generic's method table moved, the site reverts to uncompiled
// semantics and the call goes through full dynamic evaluation, so a
// rebound builtin takes effect at exactly the iteration it would under
// generic execution.
func (f *frame) callSpecialized(e *Call, spec *SpecializedCall) (vexrt.Value, error) {
	args, err := f.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}

	// identity first: an assignment in an inner scope shadows the name
	// with a fresh binding the captured stamp can't see
	b, ok := f.env.Lookup(spec.Name)
	if !ok {
		f.revert(spec.Site, LoopUncompiled, "binding removed", spec.Name)
		return nil, Errorf("could not find function %q", spec.Name)
	}
	if b != spec.Binding || b.Version != spec.Version ||
		(spec.Generic != nil && spec.Generic.Version() != spec.GenVersion) {
		f.revert(spec.Site, LoopUncompiled, "binding redefined", spec.Name)
		return f.ctx.CallValue(f.env, b.Value, args)
	}

	if spec.Builtin != nil {
		return spec.Builtin.Fn(args)
	}

	if len(args) > 0 {
		if m, _, ok := spec.Generic.Dispatch(args[0]); ok {
			if b, isBuiltin := m.(*vexrt.Builtin); isBuiltin {
				return b.Fn(args)
			}
			// dispatch picked a user method: the fast path is wrong
			// for this loop from here on
			f.revert(spec.Site, LoopPermanentlyUncompiled, "user method selected", spec.Name)
		}
	}
	return f.ctx.CallValue(f.env, spec.Generic, args)
}

// revert drops a site's specialization from this frame and flips its
// state, leaving the remainder of the loop to generic evaluation.
func (f *frame) revert(site *LoopSite, to LoopState, reason, name string) {
	site.State = to
	site.Calls = nil
	for c, spec := range f.specs {
		if spec.Site == site {
			delete(f.specs, c)
		}
	}
	if f.ctx.Log != nil {
		f.ctx.Log.Debug("loop specialization dropped",
			"routine", f.routine.Name,
			"name", name,
			"reason", reason,
			"state", to.String(),
		)
	}
}
