package task

import (
	"flag"
	"time"

	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
)

const (
	SelfName = "indoor-nav" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
	realtime          = flag.Bool("realtime", true, "按control.step.interval的真实时间间隔推进，关闭后尽快推进")
)

// prepare 准备阶段，每步执行一次
// 功能：在每个仿真步骤开始时推进时钟并应用所有障碍物变化
// 算法说明：
// 1. 更新时钟：增加内部步数并计算当前时间
// 2. 心跳日志：定期输出系统状态信息
// 3. 障碍物脚本与随机触发方把本步的翻转请求加入队列
// 4. 把队列中的所有翻转请求应用到栅格
// 说明：障碍物层只在这里被修改，update阶段看到的总是一致的快照
func (ctx *Context) prepare() {
	ctx.clock.Advance()

	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		stats := ctx.agent.Stats()
		log.Infof(
			"STEP: %d(%v) state=%v cell=%v alerts=%d replans=%d",
			ctx.clock.InternalStep, ctx.clock,
			ctx.agent.State(), ctx.agent.CurrentCell(), stats.NumAlerts, stats.NumReplans,
		)
	}

	ctx.script.Fire(ctx.clock.InternalStep, ctx.toggles)
	if ctx.random != nil {
		ctx.random.Fire(ctx.toggles, ctx.agent.CurrentCell(), ctx.agent.Goal())
	}
	if applied := ctx.toggles.Drain(ctx.initRes.Grid); len(applied) > 0 {
		log.Debugf("step %d: toggled %v", ctx.clock.InternalStep, applied)
	}
}

// update 更新阶段，每步执行一次
// 功能：推进导航智能体一个tick，并在请求结束时决定会话的去向
// 算法说明：
// 1. 智能体执行一次状态转移与运动插值
// 2. ARRIVED：请求下一个目的地
// 3. TRAPPED：会话结束
func (ctx *Context) update() {
	ctx.agent.Update()
	if !ctx.agent.Active() {
		return
	}
	switch ctx.agent.State() {
	case entity.AgentState_ARRIVED:
		ctx.nextDestination()
	case entity.AgentState_TRAPPED:
		ctx.sessionDone = true
	}
}

// Run 运行
// 功能：初始化后按固定节拍推进，直到会话结束、到达结束步或被关闭
func (ctx *Context) Run() {
	// 初始化
	ctx.Init()
	// init syncer
	ctx.step(false)

	var tick <-chan time.Time
	if *realtime {
		ticker := time.NewTicker(time.Duration(ctx.clock.DT * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}
	var quit <-chan struct{}
	if ctx.term != nil {
		quit = ctx.term.Quit()
	}

	for !ctx.sessionDone {
		if tick != nil {
			select {
			case <-tick:
			case <-quit:
				log.Info("quit by user")
				ctx.sessionDone = true
				continue
			}
		}
		ctx.prepare()
		// 通知准备阶段完成
		ctx.notifyStepReady()
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		finished := ctx.clock.Finished() || ctx.sessionDone
		if ctx.step(finished) || ctx.closed.Load() || finished {
			break
		}
	}
	stats := ctx.agent.Stats()
	log.Infof("engine complete at step %d: arrived=%d trapped=%d alerts=%d replans=%d cells=%d",
		ctx.clock.InternalStep, stats.NumArrived, stats.NumTrapped, stats.NumAlerts, stats.NumReplans, stats.CellsTraversed)
	ctx.Close()
}

// step 与syncer同步，返回是否需要关闭
func (ctx *Context) step(close bool) bool {
	if ctx.sidecar == nil {
		return close
	}
	return ctx.sidecar.Step(close)
}

func (ctx *Context) notifyStepReady() {
	if ctx.sidecar != nil {
		ctx.sidecar.NotifyStepReady()
	}
}
