package vexconfigs

import (
	"os"
	"path/filepath"

	"github.com/reusee/dscope"
	"github.com/reusee/vex/configs"
	"github.com/reusee/vex/vexlang"
)

// SessionFork runs vex config scripts and forks scope with the
// Configurable values they bind. Scripts load system-wide first and
// working directory last, so more local definitions shadow earlier
// ones in the shared environment.
func SessionFork(scope dscope.Scope) (dscope.Scope, error) {
	var paths []string

	filenames := []string{
		"vex.vx",
		".vex.vx",
	}

	// system wide dir
	for _, filename := range filenames {
		path := filepath.Join("/etc", filename)
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}

	// user config dir
	configDir, err := os.UserConfigDir()
	if err == nil {
		for _, filename := range filenames {
			path := filepath.Join(configDir, filename)
			_, err := os.Stat(path)
			if err == nil {
				paths = append(paths, path)
			}
		}
	}

	// working directory
	workingDir, err := os.Getwd()
	if err == nil {
		for _, filename := range filenames {
			path := filepath.Join(workingDir, filename)
			_, err := os.Stat(path)
			if err == nil {
				paths = append(paths, path)
			}
		}
	}

	if len(paths) == 0 {
		return scope, nil
	}

	vm := vexlang.NewVM()
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return scope, err
		}
		if _, err := vm.Eval(path, string(content)); err != nil {
			return scope, err
		}
	}

	return configs.SessionFork(scope, vm.Env())
}
