package entity

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
)

// 四邻域方向，顺序固定（+x, -x, +y, -y），保证路径规划结果确定
var Neighbors = [4]Cell{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
}

// Cell 栅格坐标
// 功能：表示楼层平面图上的一个离散格子
// 说明：值类型，相等即同一格子，没有独立的生命周期
type Cell struct {
	X int `yaml:"x" json:"x" bson:"x"`
	Y int `yaml:"y" json:"y" bson:"y"`
}

// Add 坐标相加
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Path 从起点到终点的格子序列，相邻两格在且仅在一个坐标轴上相差1
// 长度为0表示不存在可达路径
type Path []Cell

// Empty 是否为空路径（不可达）
func (p Path) Empty() bool {
	return len(p) == 0
}

// Last 终点，空路径时返回false
func (p Path) Last() (Cell, bool) {
	if len(p) == 0 {
		return Cell{}, false
	}
	return p[len(p)-1], true
}

// AgentState 导航智能体状态
type AgentState int32

const (
	AgentState_MOVING  AgentState = iota // 沿路径前进
	AgentState_ALERTED                   // 前方检测到障碍物，原地报警等待
	AgentState_ARRIVED                   // 到达目的地（终态）
	AgentState_TRAPPED                   // 重新规划失败，被困（终态）
)

func (s AgentState) String() string {
	switch s {
	case AgentState_MOVING:
		return "MOVING"
	case AgentState_ALERTED:
		return "ALERTED"
	case AgentState_ARRIVED:
		return "ARRIVED"
	case AgentState_TRAPPED:
		return "TRAPPED"
	default:
		return fmt.Sprintf("AgentState(%d)", int32(s))
	}
}

// IsTerminal 是否为终态（ARRIVED/TRAPPED没有任何出边）
func (s AgentState) IsTerminal() bool {
	return s == AgentState_ARRIVED || s == AgentState_TRAPPED
}

// Frame 每步输出给渲染端的数据
// 功能：汇总一次tick后的展示信息
// 说明：Position只用于展示，不参与任何障碍物或到达判断
type Frame struct {
	Step        int32          `json:"step"`        // 仿真步数
	Destination string         `json:"destination"` // 当前目的地名称
	State       AgentState     `json:"state"`       // 智能体状态
	Cell        Cell           `json:"cell"`        // 当前所在格子（权威位置）
	Position    geometry.Point `json:"position"`    // 连续渲染位置
	Path        Path           `json:"path"`        // 当前路径（用于高亮）
	Obstacles   []Cell         `json:"obstacles"`   // 障碍物层快照
	Alert       bool           `json:"alert"`       // 是否处于报警状态
	Blink       bool           `json:"blink"`       // 报警闪烁相位
}

// entity/grid/grid.go的依赖倒置
type IGrid interface {
	Size() (cols, rows int)                   // 栅格列数、行数
	IsWall(c Cell) bool                       // 是否为墙（越界视为墙）
	IsTraversable(c Cell) bool                // 是否可通行：非墙且非障碍物
	ToggleObstacle(c Cell) bool               // 翻转障碍物标记，返回是否发生变化
	Obstacles() []Cell                        // 障碍物层快照（行优先有序）
	Corridor() []Cell                         // 所有非墙格子（行优先有序）
	CellAt(px, py, tile float64) (Cell, bool) // 将像素坐标转换为格子，越界返回false
}

// entity/grid/registry.go的依赖倒置
type IRegistry interface {
	Lookup(name string) (Cell, error) // 按名称查找目的地（大小写敏感）
	Names() []string                  // 所有目的地名称（有序）
}

// entity/route/planner.go的依赖倒置
type IRouter interface {
	// 在调用时刻的栅格快照上规划最短路径，不可达时返回空路径
	FindPath(start, goal Cell) Path
}

// 单调时钟，返回秒
type IClock interface {
	Time() float64
}
