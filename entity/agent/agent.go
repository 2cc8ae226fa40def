package agent

import (
	"errors"
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/config"
)

var (
	// 上一次导航请求尚未进入终态
	ErrAlreadyNavigating = errors.New("agent is still navigating")
	// 被困之后不再接受新的导航请求
	ErrTrapped = errors.New("agent is trapped")
)

// Sinks 智能体的外部协作方，为nil的成员不接收任何通知
type Sinks struct {
	Alert   entity.IAlertSink
	Render  entity.IRenderSink
	Outcome entity.IOutcomeSink
}

type nopSink struct{}

func (nopSink) SetAlert(bool) {}
func (nopSink) Render(entity.Frame) {}
func (nopSink) OnArrived(string) {}
func (nopSink) OnTrapped(string) {}

// Agent 导航智能体
// 功能：消费路径规划结果，逐格前进，监视前方窗口内的障碍物，在宽限期结束后重新规划或判定被困
// 说明：单线程，由外部驱动循环每个tick调用一次Update；状态只由Agent自身修改
type Agent struct {
	grid     entity.IGrid
	router   entity.IRouter
	registry entity.IRegistry
	clock    entity.IClock
	nav      config.Navigation

	alert   entity.IAlertSink
	render  entity.IRenderSink
	outcome entity.IOutcomeSink

	rt     runtime
	motion *Motion

	alerting bool // 是否已经向报警接收方发送了true
	tick     int32
	lastTime float64
	stats    Stats
}

// New 创建导航智能体
// 功能：在起点格子上创建一个空闲的智能体
// 参数：grid-栅格，router-路径规划器，registry-目的地表，clock-单调时钟，nav-导航参数，start-起点，sinks-外部协作方
// 返回：智能体指针
// 说明：起点必须是非墙格子，否则视为配置错误直接panic
func New(
	grid entity.IGrid,
	router entity.IRouter,
	registry entity.IRegistry,
	clock entity.IClock,
	nav config.Navigation,
	start entity.Cell,
	sinks Sinks,
) *Agent {
	if grid.IsWall(start) {
		log.Panicf("agent start %v is a wall or out of bounds", start)
	}
	if nav.Speed <= 0 || nav.TileSize <= 0 {
		log.Panicf("invalid navigation parameters: speed=%v tile_size=%v", nav.Speed, nav.TileSize)
	}
	a := &Agent{
		grid:     grid,
		router:   router,
		registry: registry,
		clock:    clock,
		nav:      nav,
		alert:    sinks.Alert,
		render:   sinks.Render,
		outcome:  sinks.Outcome,
		rt:       runtime{CurrentCell: start},
		motion:   NewMotion(start, nav.TileSize, nav.Speed),
		lastTime: clock.Time(),
	}
	if a.alert == nil {
		a.alert = nopSink{}
	}
	if a.render == nil {
		a.render = nopSink{}
	}
	if a.outcome == nil {
		a.outcome = nopSink{}
	}
	return a
}

// NewWithContext 从任务上下文创建导航智能体
// 功能：从ctx中取出栅格、路径规划器、目的地表、时钟与导航参数
func NewWithContext(ctx entity.ITaskContext, start entity.Cell, sinks Sinks) *Agent {
	return New(ctx.Grid(), ctx.Router(), ctx.Registry(), ctx.Clock(), ctx.RuntimeConfig().N, start, sinks)
}

// Navigate 开始一次导航请求
// 功能：查找目的地并从当前格子规划路径
// 参数：name-目的地名称（大小写敏感）
// 返回：目的地不存在时返回包装了grid.ErrInvalidDestination的错误，上一请求未结束时返回ErrAlreadyNavigating
// 说明：初始规划为空时智能体立即进入TRAPPED并通知结果接收方
func (a *Agent) Navigate(name string) error {
	if a.rt.Active {
		switch a.rt.State {
		case entity.AgentState_TRAPPED:
			return ErrTrapped
		case entity.AgentState_MOVING, entity.AgentState_ALERTED:
			return fmt.Errorf("navigate to %q: %w (destination %q)", name, ErrAlreadyNavigating, a.rt.Destination)
		}
	}
	goal, err := a.registry.Lookup(name)
	if err != nil {
		return err
	}
	a.rt = runtime{
		Active:      true,
		Destination: name,
		Goal:        goal,
		State:       entity.AgentState_MOVING,
		CurrentCell: a.rt.CurrentCell,
	}
	path := a.router.FindPath(a.rt.CurrentCell, goal)
	if path.Empty() {
		log.Warnf("no path from %v to %s %v", a.rt.CurrentCell, name, goal)
		a.trap()
		return nil
	}
	a.rt.resetPath(path)
	log.Infof("navigating to %s %v: %d steps", name, goal, len(path)-1)
	return nil
}

// Update 推进一个tick
// 功能：按状态机执行一次状态转移与运动插值，然后输出一帧
// 算法说明：
// 1. MOVING：前方第lookahead格不可通行则进入ALERTED；否则向path[stepIndex]推进，一步完成后更新当前格子与下标，走完路径进入ARRIVED
// 2. ALERTED：宽限期内保持不动，超过宽限期后从当前格子重新规划，成功回到MOVING，失败进入TRAPPED
// 3. ARRIVED/TRAPPED：不做任何事
func (a *Agent) Update() {
	now := a.clock.Time()
	a.tick++
	if a.rt.Active {
		switch a.rt.State {
		case entity.AgentState_MOVING:
			a.stats.TravelTime += now - a.lastTime
			a.updateMoving(now)
		case entity.AgentState_ALERTED:
			a.updateAlerted(now)
		}
	}
	a.lastTime = now
	a.render.Render(a.frame(now))
}

func (a *Agent) updateMoving(now float64) {
	if ahead, ok := a.rt.lookahead(a.nav.Lookahead); ok && !a.grid.IsTraversable(ahead) {
		a.rt.State = entity.AgentState_ALERTED
		a.rt.AlertStart = now
		a.stats.NumAlerts++
		a.setAlert(true)
		log.Infof("obstacle at %v ahead of %v, alerted at t=%.2f", ahead, a.rt.CurrentCell, now)
		return
	}
	target, ok := a.rt.target()
	if !ok {
		a.arrive()
		return
	}
	// 不主动驶入障碍物格子，已经开始的一步照常完成
	if target != a.rt.CurrentCell && a.motion.AtRest(a.rt.CurrentCell) && !a.grid.IsTraversable(target) {
		log.Debugf("next cell %v blocked, holding at %v", target, a.rt.CurrentCell)
		return
	}
	if !a.motion.Advance(target) {
		return
	}
	if target != a.rt.CurrentCell {
		a.stats.CellsTraversed++
	}
	a.rt.CurrentCell = target
	a.rt.StepIndex++
	if a.rt.StepIndex >= len(a.rt.Path) {
		a.arrive()
	}
}

func (a *Agent) updateAlerted(now float64) {
	if now-a.rt.AlertStart <= a.nav.GracePeriod {
		return
	}
	a.stats.NumReplans++
	path := a.router.FindPath(a.rt.CurrentCell, a.rt.Goal)
	a.setAlert(false)
	if path.Empty() {
		a.trap()
		return
	}
	a.rt.resetPath(path)
	a.rt.State = entity.AgentState_MOVING
	log.Infof("replanned from %v to %s: %d steps", a.rt.CurrentCell, a.rt.Destination, len(path)-1)
}

func (a *Agent) arrive() {
	a.rt.State = entity.AgentState_ARRIVED
	a.stats.NumArrived++
	log.Infof("arrived at %s %v", a.rt.Destination, a.rt.CurrentCell)
	if !a.rt.Notified {
		a.rt.Notified = true
		a.outcome.OnArrived(a.rt.Destination)
	}
}

func (a *Agent) trap() {
	a.rt.State = entity.AgentState_TRAPPED
	a.stats.NumTrapped++
	log.Warnf("trapped at %v on the way to %s", a.rt.CurrentCell, a.rt.Destination)
	if !a.rt.Notified {
		a.rt.Notified = true
		a.outcome.OnTrapped(a.rt.Destination)
	}
}

// setAlert 只在报警状态变化时通知接收方
func (a *Agent) setAlert(active bool) {
	if a.alerting == active {
		return
	}
	a.alerting = active
	a.alert.SetAlert(active)
}

// Stop 取消当前导航
// 功能：驱动方停止推进时调用，释放仍在进行的报警信号
// 说明：不改变智能体状态，也不通知结果接收方
func (a *Agent) Stop() {
	if a.alerting {
		log.Info("stopping with an active alert, releasing it")
	}
	a.setAlert(false)
}

func (a *Agent) frame(now float64) entity.Frame {
	alerted := a.rt.Active && a.rt.State == entity.AgentState_ALERTED
	blink := false
	if alerted && a.nav.BlinkPeriod > 0 {
		blink = int((now-a.rt.AlertStart)/a.nav.BlinkPeriod)%2 == 0
	}
	return entity.Frame{
		Step:        a.tick,
		Destination: a.rt.Destination,
		State:       a.rt.State,
		Cell:        a.rt.CurrentCell,
		Position:    a.motion.Position(),
		Path:        a.Path(),
		Obstacles:   a.grid.Obstacles(),
		Alert:       alerted,
		Blink:       blink,
	}
}

// State 当前状态，没有导航请求时为MOVING零值，需结合Active判断
func (a *Agent) State() entity.AgentState {
	return a.rt.State
}

// Active 是否存在导航请求
func (a *Agent) Active() bool {
	return a.rt.Active
}

// Destination 当前目的地名称
func (a *Agent) Destination() string {
	return a.rt.Destination
}

// Goal 当前目的地格子
func (a *Agent) Goal() entity.Cell {
	return a.rt.Goal
}

// CurrentCell 当前所在格子
func (a *Agent) CurrentCell() entity.Cell {
	return a.rt.CurrentCell
}

// StepIndex 下一个要前往的路径下标
func (a *Agent) StepIndex() int {
	return a.rt.StepIndex
}

// Path 当前路径的副本
func (a *Agent) Path() entity.Path {
	return append(entity.Path(nil), a.rt.Path...)
}

// Position 渲染位置
func (a *Agent) Position() geometry.Point {
	return a.motion.Position()
}

// Alerting 报警信号是否处于激活状态
func (a *Agent) Alerting() bool {
	return a.alerting
}

// Stats 累计统计数据
func (a *Agent) Stats() Stats {
	return a.stats
}
