package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/vex/debugs"
	"github.com/reusee/vex/vexconfigs"
)

type Module struct {
	dscope.Module
	Configs vexconfigs.Module
	Debugs  debugs.Module
}
