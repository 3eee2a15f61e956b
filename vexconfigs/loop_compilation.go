package vexconfigs

import (
	"errors"

	"github.com/reusee/vex/cmds"
	"github.com/reusee/vex/configs"
	"github.com/xyproto/env/v2"
)

// LoopCompilation gates the for-loop specializing compiler. Loops still
// run identically when it is off, on the generic dispatch path.
type LoopCompilation bool

var _ configs.Configurable = LoopCompilation(false)

func (LoopCompilation) ConfigName() string { return "loop_compilation" }

var noLoopJITFlag = cmds.Switch("-no-loop-jit")

func (Module) LoopCompilation(
	loader configs.Loader,
) LoopCompilation {
	on := true

	// config
	var configValue bool
	if err := loader.AssignFirst("loop_compilation", &configValue); err == nil {
		on = configValue
	} else if !errors.Is(err, configs.ErrValueNotFound) {
		panic(err)
	}

	// environment
	if env.Has("VEX_NO_LOOP_JIT") {
		on = !env.Bool("VEX_NO_LOOP_JIT")
	}

	// flag
	if *noLoopJITFlag {
		on = false
	}

	return LoopCompilation(on)
}
