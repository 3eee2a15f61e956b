package vexconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/vex/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
