package entity

import (
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/clock"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	Grid() IGrid
	Registry() IRegistry
	Router() IRouter
	RuntimeConfig() *config.RuntimeConfig
}
