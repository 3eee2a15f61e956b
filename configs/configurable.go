package configs

import "reflect"

// Configurable marks a scope type that config scripts may override.
// ConfigName is the variable name a script binds to set it.
type Configurable interface {
	ConfigName() string
}

var configurableType = reflect.TypeFor[Configurable]()
