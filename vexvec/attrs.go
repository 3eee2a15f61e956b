package vexvec

// Attrs is the attribute set attached to a vector. The zero value is an
// empty set.
type Attrs struct {
	m map[string]Vector
}

func (a *Attrs) Get(name string) (Vector, bool) {
	v, ok := a.m[name]
	return v, ok
}

func (a *Attrs) Set(name string, v Vector) {
	if a.m == nil {
		a.m = make(map[string]Vector)
	}
	a.m[name] = v
}

func (a *Attrs) Del(name string) {
	delete(a.m, name)
}

func (a *Attrs) Len() int {
	return len(a.m)
}

func (a *Attrs) Names() []string {
	names := make([]string, 0, len(a.m))
	for name := range a.m {
		names = append(names, name)
	}
	return names
}

// CopyFrom overwrites this set with the entries of src.
func (a *Attrs) CopyFrom(src *Attrs) {
	for name, v := range src.m {
		a.Set(name, v)
	}
}
