package main

import (
	"context"
	"io"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/vex/cmds"
	"github.com/reusee/vex/debugs"
	"github.com/reusee/vex/logs"
	"github.com/reusee/vex/modes"
	"github.com/reusee/vex/vexconfigs"
	"github.com/reusee/vex/vexlang"
)

var scriptPath = cmds.Var[string]("-f")

var evalSource = cmds.Var[string]("-e")

func main() {
	cmds.Execute(os.Args[1:])
	ctx := context.Background()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	scope, err := vexconfigs.SessionFork(scope)
	ce(err)

	scope.Call(func(
		logger logs.Logger,
		loopCompilation vexconfigs.LoopCompilation,
		tapOnExit vexconfigs.TapOnExit,
		tap debugs.Tap,
	) {

		name := "stdin"
		source := *evalSource
		switch {

		case source != "":
			name = "eval"

		case *scriptPath != "":
			content, err := os.ReadFile(*scriptPath)
			ce(err)
			name = *scriptPath
			source = string(content)

		default:
			content, err := io.ReadAll(os.Stdin)
			ce(err)
			source = string(content)
		}

		logger.InfoContext(ctx, "run",
			"name", name,
			"loop_compilation", bool(loopCompilation),
		)

		vm := vexlang.NewVM(
			vexlang.WithCompileLoops(bool(loopCompilation)),
			vexlang.WithLogger(logger),
		)
		if _, err := vm.Eval(name, source); err != nil {
			os.Stderr.WriteString(err.Error())
			os.Stderr.WriteString("\n")
			os.Exit(1)
		}

		if tapOnExit {
			globals := make(map[string]any)
			for name, value := range vm.Env().Bindings() {
				globals[name] = value
			}
			tap(ctx, name, globals)
		}

	})

}
