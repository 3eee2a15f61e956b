package vexrt

import (
	"testing"

	"github.com/reusee/vex/vexvec"
)

func TestEnvVersions(t *testing.T) {
	env := NewEnv()
	env.Def("x", vexvec.NewInt(1))
	b, ok := env.Lookup("x")
	if !ok {
		t.Fatal("x not found")
	}
	v1 := b.Version

	env.Def("x", vexvec.NewInt(2))
	if b.Version <= v1 {
		t.Fatal("redefinition must advance the version stamp")
	}

	child := env.NewChild()
	b2, ok := child.Lookup("x")
	if !ok || b2 != b {
		t.Fatal("child must see the parent binding")
	}

	child.Def("x", vexvec.NewInt(3))
	b3, _ := child.Lookup("x")
	if b3 == b {
		t.Fatal("Def in child must shadow, not overwrite")
	}
	if got, _ := env.Get("x"); !vexvec.Equal(got.(vexvec.Vector), vexvec.NewInt(2)) {
		t.Fatal("parent binding clobbered")
	}
}

func TestEnvSet(t *testing.T) {
	env := NewEnv()
	child := env.NewChild()
	if child.Set("missing", vexvec.NewInt(1)) {
		t.Fatal("Set on unbound name should fail")
	}
	env.Def("y", vexvec.NewInt(1))
	if !child.Set("y", vexvec.NewInt(2)) {
		t.Fatal("Set should reach the parent binding")
	}
	got, _ := env.Get("y")
	if !vexvec.Equal(got.(vexvec.Vector), vexvec.NewInt(2)) {
		t.Fatal("Set did not write through")
	}
}

func TestDispatchOrder(t *testing.T) {
	g := NewGeneric("f")
	deflt := &Builtin{Name: "f.default"}
	g.AddMethod("default", deflt)

	intArg := vexvec.NewInt(1)
	dblArg := vexvec.NewDouble(1)

	if fn, class, ok := g.Dispatch(intArg); !ok || fn != deflt || class != "default" {
		t.Fatalf("want default, got %v %q", fn, class)
	}

	numeric := &Builtin{Name: "f.numeric"}
	g.AddMethod("numeric", numeric)
	if fn, _, _ := g.Dispatch(intArg); fn != numeric {
		t.Fatal("numeric should beat default")
	}
	if fn, _, _ := g.Dispatch(dblArg); fn != numeric {
		t.Fatal("numeric should beat default for doubles")
	}

	intM := &Builtin{Name: "f.integer"}
	dblM := &Builtin{Name: "f.double"}
	g.AddMethod("integer", intM)
	g.AddMethod("double", dblM)
	if fn, _, _ := g.Dispatch(intArg); fn != intM {
		t.Fatal("integer method should win for integer args")
	}
	if fn, _, _ := g.Dispatch(dblArg); fn != dblM {
		t.Fatal("double method should win for double args")
	}

	classArg := vexvec.NewDouble(1)
	classArg.Attributes().Set("class", vexvec.NewString("foo"))
	classM := &Builtin{Name: "f.foo"}
	g.AddMethod("foo", classM)
	if fn, class, _ := g.Dispatch(classArg); fn != classM || class != "foo" {
		t.Fatal("exact class should win over double")
	}
}

func TestGenericVersion(t *testing.T) {
	g := NewGeneric("f")
	v0 := g.Version()
	g.AddMethod("default", &Builtin{Name: "f.default"})
	if g.Version() <= v0 {
		t.Fatal("AddMethod must advance the version")
	}
}
