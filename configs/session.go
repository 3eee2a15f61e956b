package configs

import (
	"fmt"
	"reflect"

	"github.com/reusee/dscope"
	"github.com/reusee/vex/vexfuse"
	"github.com/reusee/vex/vexrt"
	"github.com/reusee/vex/vexvec"
)

// SessionFork forks scope with values read from a script environment.
// Every scope type implementing Configurable whose ConfigName is bound
// in env gets overridden by the bound vector, converted to the Go type.
func SessionFork(scope dscope.Scope, env *vexrt.Env) (dscope.Scope, error) {
	var defs []any
	for t := range scope.AllTypes() {
		if !t.Implements(configurableType) {
			continue
		}
		name := reflect.New(t).Elem().Interface().(Configurable).ConfigName()
		value, ok := env.Get(name)
		if !ok {
			continue
		}
		def, err := decodeConfigValue(t, value)
		if err != nil {
			return scope, fmt.Errorf("config %s: %w", name, err)
		}
		defs = append(defs, def)
	}
	return scope.Fork(defs...), nil
}

func decodeConfigValue(t reflect.Type, value vexrt.Value) (any, error) {
	vec, ok := value.(vexvec.Vector)
	if !ok {
		return nil, fmt.Errorf("not a vector: %T", value)
	}
	vec = vexfuse.Materialize(vec)
	if vec.Len() == 0 {
		return nil, fmt.Errorf("empty vector")
	}

	ret := reflect.New(t).Elem()
	switch t.Kind() {

	case reflect.Bool:
		n := vec.ElemInt(0)
		if n == vexvec.NAInt {
			return nil, fmt.Errorf("missing value")
		}
		ret.SetBool(n != 0)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := vec.ElemInt(0)
		if n == vexvec.NAInt {
			return nil, fmt.Errorf("missing value")
		}
		ret.SetInt(int64(n))

	case reflect.Float32, reflect.Float64:
		f := vec.ElemDouble(0)
		if vexvec.IsNADouble(f) {
			return nil, fmt.Errorf("missing value")
		}
		ret.SetFloat(f)

	case reflect.String:
		sv, ok := vec.(*vexvec.StringVector)
		if !ok {
			return nil, fmt.Errorf("not a character vector")
		}
		ret.SetString(sv.Values[0])

	default:
		return nil, fmt.Errorf("unsupported config type: %v", t)
	}

	return ret.Addr().Interface(), nil
}
