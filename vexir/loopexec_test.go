package vexir

import (
	"strings"
	"testing"

	"github.com/reusee/vex/vexrt"
	"github.com/reusee/vex/vexvec"
)

func lowerSrc(t *testing.T, src string) *Routine {
	t.Helper()
	r, err := Lower("test.vex", strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestLoopInfoLayout(t *testing.T) {
	r := lowerSrc(t, `
for i in seq(1, 3):
    x = i
`)
	if len(r.Loops) != 1 {
		t.Fatalf("%d loops", len(r.Loops))
	}
	info := r.Loops[0]
	if _, ok := r.LoopAt(info.EntryIP); !ok {
		t.Fatal("entry not indexed")
	}
	if _, ok := r.Instrs[info.EntryIP].(*Goto); !ok {
		t.Fatalf("entry is %T", r.Instrs[info.EntryIP])
	}
	if _, ok := r.Instrs[info.BodyStart].(*AssignVar); !ok {
		t.Fatalf("body start is %T", r.Instrs[info.BodyStart])
	}
	if _, ok := r.Instrs[info.NextIP].(*IncTemp); !ok {
		t.Fatalf("next is %T", r.Instrs[info.NextIP])
	}
	if info.ExitIP != len(r.Instrs) {
		t.Fatalf("exit = %d", info.ExitIP)
	}
	if info.ElemVar != "i" {
		t.Fatalf("elem var %q", info.ElemVar)
	}
	if info.Site.State != LoopUncompiled {
		t.Fatalf("fresh site state %v", info.Site.State)
	}
}

func TestLoopCompiles(t *testing.T) {
	r := lowerSrc(t, `
s = 0
for i in seq(1, 10):
    s = s + i
`)
	ctx, env := testContext(true)
	if _, err := ctx.Run(r, env); err != nil {
		t.Fatal(err)
	}
	if r.Loops[0].Site.State != LoopCompiled {
		t.Fatalf("state %v", r.Loops[0].Site.State)
	}
	checkInt(t, env, "s", 55)
}

func TestLoopCompilationSwitch(t *testing.T) {
	r := lowerSrc(t, `
s = 0
for i in seq(1, 10):
    s = s + i
`)
	ctx, env := testContext(false)
	if _, err := ctx.Run(r, env); err != nil {
		t.Fatal(err)
	}
	// the switch is off, so the site is never even attempted
	if r.Loops[0].Site.State != LoopUncompiled {
		t.Fatalf("state %v", r.Loops[0].Site.State)
	}
	checkInt(t, env, "s", 55)
}

func TestClosureCallStaysUncompiled(t *testing.T) {
	r := lowerSrc(t, `
def f(x):
    return x + 1

s = 0
for i in seq(1, 10):
    s = s + f(i)
`)
	ctx, env := testContext(true)
	if _, err := ctx.Run(r, env); err != nil {
		t.Fatal(err)
	}
	if r.Loops[0].Site.State != LoopPermanentlyUncompiled {
		t.Fatalf("state %v", r.Loops[0].Site.State)
	}
	checkInt(t, env, "s", 65)
}

func TestUnresolvableCallStaysUncompiled(t *testing.T) {
	r := lowerSrc(t, `
for i in seq(1, 3):
    if i > 5:
        ghost(i)
`)
	ctx, env := testContext(true)
	// ghost is never called, but it blocks specialization up front
	if _, err := ctx.Run(r, env); err != nil {
		t.Fatal(err)
	}
	if r.Loops[0].Site.State != LoopPermanentlyUncompiled {
		t.Fatalf("state %v", r.Loops[0].Site.State)
	}
}

// Rebinding a builtin mid-loop must take effect at the very next use.
// The compiled run's result has to match the generic run's.
func TestRebindingInvalidates(t *testing.T) {
	src := `
s = 0
for i in seq(1, 100):
    if i == 51:
        inc = big
    s = s + inc(i)
`
	results := make([]int32, 2)
	states := make([]LoopState, 2)
	for k, compile := range []bool{false, true} {
		r := lowerSrc(t, src)
		ctx, env := testContext(compile)
		env.Def("inc", &vexrt.Builtin{
			Name: "inc",
			Fn: func(args []vexrt.Value) (vexrt.Value, error) {
				n, err := scalarInt(args[0])
				if err != nil {
					return nil, err
				}
				return vexvec.NewInt(n + 1), nil
			},
		})
		env.Def("big", &vexrt.Builtin{
			Name: "big",
			Fn: func(args []vexrt.Value) (vexrt.Value, error) {
				n, err := scalarInt(args[0])
				if err != nil {
					return nil, err
				}
				return vexvec.NewInt(n + 1000), nil
			},
		})
		if _, err := ctx.Run(r, env); err != nil {
			t.Fatal(err)
		}
		v, _ := env.Get("s")
		results[k] = v.(vexvec.Vector).ElemInt(0)
		states[k] = r.Loops[0].Site.State
	}
	// 1..50 add i+1, 51..100 add i+1000
	want := int32(0)
	for i := int32(1); i <= 50; i++ {
		want += i + 1
	}
	for i := int32(51); i <= 100; i++ {
		want += i + 1000
	}
	if results[0] != want || results[1] != want {
		t.Fatalf("generic %d, compiled %d, want %d", results[0], results[1], want)
	}
	if states[1] != LoopUncompiled {
		t.Fatalf("compiled-run state %v", states[1])
	}
}

// A site that reverted recompiles on the next entry against the new
// bindings.
func TestRecompileAfterRevert(t *testing.T) {
	r := lowerSrc(t, `
def outer(flip):
    s = 0
    for i in seq(1, 10):
        if flip and i == 5:
            inc = big
        s = s + inc(i)
    return s

a = outer(True)
b = outer(False)
`)
	ctx, env := testContext(true)
	env.Def("inc", &vexrt.Builtin{
		Name: "inc",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			n, err := scalarInt(args[0])
			if err != nil {
				return nil, err
			}
			return vexvec.NewInt(n + 1), nil
		},
	})
	env.Def("big", &vexrt.Builtin{
		Name: "big",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			n, err := scalarInt(args[0])
			if err != nil {
				return nil, err
			}
			return vexvec.NewInt(n + 1000), nil
		},
	})
	if _, err := ctx.Run(r, env); err != nil {
		t.Fatal(err)
	}
	// first run flips at i=5: 1..4 add i+1, 5..10 add i+1000
	checkInt(t, env, "a", (2+3+4+5)+(5+6+7+8+9+10)+6*1000)
	// second run: rebinding happened in the first call's child scope,
	// so outer's lookup still finds the original builtin... unless the
	// first call shadowed it locally, which it did. The top-level inc
	// is untouched.
	checkInt(t, env, "b", 55+10)
}

func TestGenericDispatchInLoop(t *testing.T) {
	r := lowerSrc(t, `
s = 0
for i in seq(1, 10):
    s = s + f(i)
`)
	ctx, env := testContext(true)
	g := vexrt.NewGeneric("f")
	g.AddMethod("default", &vexrt.Builtin{
		Name: "f.default",
		Fn: func(args []vexrt.Value) (vexrt.Value, error) {
			n, err := scalarInt(args[0])
			if err != nil {
				return nil, err
			}
			return vexvec.NewInt(n * 2), nil
		},
	})
	env.Def("f", g)
	if _, err := ctx.Run(r, env); err != nil {
		t.Fatal(err)
	}
	if r.Loops[0].Site.State != LoopCompiled {
		t.Fatalf("state %v", r.Loops[0].Site.State)
	}
	checkInt(t, env, "s", 110)
}

// Adding a method mid-loop bumps the generic's version; the
// specialization is dropped and the new method is honored, same as
// generic evaluation.
func TestGenericMethodAddedMidLoop(t *testing.T) {
	src := `
s = 0
for i in seq(1, 10):
    if i == 6:
        upgrade()
    s = s + f(i)
`
	for _, compile := range []bool{false, true} {
		r := lowerSrc(t, src)
		ctx, env := testContext(compile)
		g := vexrt.NewGeneric("f")
		g.AddMethod("default", &vexrt.Builtin{
			Name: "f.default",
			Fn: func(args []vexrt.Value) (vexrt.Value, error) {
				n, err := scalarInt(args[0])
				if err != nil {
					return nil, err
				}
				return vexvec.NewInt(n), nil
			},
		})
		env.Def("f", g)
		env.Def("upgrade", &vexrt.Builtin{
			Name: "upgrade",
			Fn: func(args []vexrt.Value) (vexrt.Value, error) {
				g.AddMethod("integer", &vexrt.Builtin{
					Name: "f.integer",
					Fn: func(args []vexrt.Value) (vexrt.Value, error) {
						n, err := scalarInt(args[0])
						if err != nil {
							return nil, err
						}
						return vexvec.NewInt(n * 100), nil
					},
				})
				return vexvec.NewLogical(), nil
			},
		})
		if _, err := ctx.Run(r, env); err != nil {
			t.Fatal(err)
		}
		// 1..5 via default, 6..10 via the integer method
		checkInt(t, env, "s", 15+100*(6+7+8+9+10))
	}
}
