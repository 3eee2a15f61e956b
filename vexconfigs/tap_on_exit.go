package vexconfigs

import (
	"errors"

	"github.com/reusee/vex/cmds"
	"github.com/reusee/vex/configs"
	"github.com/xyproto/env/v2"
)

// TapOnExit drops into an inspection REPL over the session globals
// after the script finishes.
type TapOnExit bool

var _ configs.Configurable = TapOnExit(false)

func (TapOnExit) ConfigName() string { return "tap_on_exit" }

var tapFlag = cmds.Switch("-tap")

func (Module) TapOnExit(
	loader configs.Loader,
) TapOnExit {
	on := false

	// config
	var configValue bool
	if err := loader.AssignFirst("tap_on_exit", &configValue); err == nil {
		on = configValue
	} else if !errors.Is(err, configs.ErrValueNotFound) {
		panic(err)
	}

	// environment
	if env.Has("VEX_TAP") {
		on = env.Bool("VEX_TAP")
	}

	// flag
	if *tapFlag {
		on = true
	}

	return TapOnExit(on)
}
