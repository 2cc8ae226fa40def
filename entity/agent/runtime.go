package agent

import (
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
)

// runtime 导航请求的运行时数据结构
// 功能：记录一次导航请求从开始到终态的全部离散状态
// 说明：渲染位置不在这里，由Motion单独持有，两者只通过"一步完成"信号联系
type runtime struct {
	Active      bool              // 是否存在导航请求
	Destination string            // 目的地名称
	Goal        entity.Cell       // 目的地格子
	State       entity.AgentState // 状态
	Path        entity.Path       // 当前路径，Path[0]为规划时所在格子
	StepIndex   int               // 下一个要前往的路径下标
	CurrentCell entity.Cell       // 当前所在格子（权威位置）

	AlertStart float64 // 进入ALERTED的时刻
	Notified   bool    // 终态是否已经通知过结果接收方
}

// target 当前要前往的格子，已经走完时返回false
func (rt *runtime) target() (entity.Cell, bool) {
	if rt.StepIndex < 0 || rt.StepIndex >= len(rt.Path) {
		return entity.Cell{}, false
	}
	return rt.Path[rt.StepIndex], true
}

// lookahead 前方第n格，超出路径时返回false
func (rt *runtime) lookahead(n int) (entity.Cell, bool) {
	i := rt.StepIndex + n
	if i >= len(rt.Path) {
		return entity.Cell{}, false
	}
	return rt.Path[i], true
}

// resetPath 用新规划结果替换路径
func (rt *runtime) resetPath(path entity.Path) {
	rt.Path = path
	rt.StepIndex = 0
}

// Stats 智能体累计统计数据
// 功能：记录整个会话内的到达次数、报警次数、重规划次数与移动距离
type Stats struct {
	NumArrived     int32   // 已到达的目的地数
	NumTrapped     int32   // 被困次数
	NumAlerts      int32   // 进入ALERTED的次数
	NumReplans     int32   // 重新规划次数（含失败）
	CellsTraversed int32   // 走过的格子数
	TravelTime     float64 // 处于MOVING状态的总时间
}
