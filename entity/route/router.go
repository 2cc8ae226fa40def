package route

import (
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
)

// New 初始化导航服务
func New(grid entity.IGrid) entity.IRouter {
	return NewPlanner(grid)
}
