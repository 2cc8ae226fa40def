package task

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/clock"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/agent"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/grid"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/obstacle"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/route"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/output"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/output/audio"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/output/outcome"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/output/terminal"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/output/ws"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/input"
)

var log = logrus.WithField("module", "task")

// destinationSource 目的地来源
// 说明：返回io.EOF表示没有更多目的地
type destinationSource interface {
	Next(ctx context.Context, message string) (string, error)
}

// listSource 配置文件中依次前往的目的地
type listSource struct {
	names []string
	next  int
}

func (s *listSource) Next(_ context.Context, message string) (string, error) {
	if message != "" {
		log.Error(message)
	}
	if s.next >= len(s.names) {
		return "", io.EOF
	}
	name := s.names[s.next]
	s.next++
	return name, nil
}

// promptSource 由终端界面输入目的地
type promptSource struct {
	term *terminal.Terminal
}

func (s promptSource) Next(ctx context.Context, message string) (string, error) {
	return s.term.Prompt(ctx, message)
}

// Context 仿真任务上下文
// 功能：包含一次导航会话的所有变量和状态，替代全局变量
// 说明：管理时钟、栅格、路径规划器、智能体、障碍物触发方与所有外部协作方
type Context struct {
	// 关闭指令
	closed atomic.Bool
	// 会话是否结束（被困、目的地用完或用户退出）
	sessionDone bool

	// 时钟
	clock *clock.Clock

	// 辅助程序，处理与syncer、其他服务的交互，为nil时不对外提供RPC
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}
	// sidecar是否在提供服务
	serving bool

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
	// 用于初始化的输入
	initRes *input.Input
	// 导航服务
	router entity.IRouter

	// 导航智能体
	agent *agent.Agent

	// 障碍物翻转请求队列、脚本与随机触发方
	toggles *obstacle.Queue
	script  *obstacle.Script
	random  *obstacle.RandomActor

	// 外部协作方
	sinks    *output.Fanout
	recorder *outcome.Recorder
	term     *terminal.Terminal
	hub      *ws.Hub

	// 目的地来源
	source destinationSource
	// 取消阻塞中的目的地输入
	runCtx context.Context
	cancel context.CancelFunc
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化导航会话的所有组件
// 参数：
//   - c: 配置对象
//   - sidecar: 外部sidecar实例，为nil时不注册RPC服务
//   - startSidecarServe: 是否启动sidecar服务
//
// 返回：初始化完成的Context实例
// 算法说明：
// 1. 校验配置并填充默认值
// 2. 加载楼层平面图，构建栅格世界、目的地登记表与路径规划器
// 3. 创建障碍物翻转队列、脚本与随机触发方
// 4. 按配置创建外部协作方（终端界面、声音报警、websocket观察端），组合为一个分发器
// 5. 确定目的地来源：配置列表优先，否则由终端界面输入
// 6. 创建导航智能体，注册RPC服务到sidecar
func NewContext(c config.Config, sidecar *syncer.Sidecar, startSidecarServe bool) *Context {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		log.Panicf("invalid config: %v", err)
	}
	ctx := &Context{
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
		runtimeConfig:  rc,
	}
	ctx.runCtx, ctx.cancel = context.WithCancel(context.Background())
	ctx.clock = clock.New(rc.C.Step)

	// 下载所有模拟器启动所需的数据
	ctx.initRes = input.Init(c)
	ctx.router = route.New(ctx.initRes.Grid)

	ctx.toggles = obstacle.NewQueue()
	ctx.script = obstacle.NewScript(c.Obstacle.Script)
	if r := c.Obstacle.Random; r != nil && r.Probability > 0 {
		ctx.random = obstacle.NewRandomActor(*r, ctx.initRes.Grid.Corridor())
	}

	ctx.recorder = outcome.New(ctx.clock)
	ctx.sinks = output.NewFanout(ctx.recorder)
	if c.Output.Terminal {
		term, err := terminal.Open(ctx.initRes.Grid, ctx.initRes.Registry.Rooms(), ctx.toggles, rc.N.TileSize)
		if err != nil {
			log.Panicf("failed to open terminal: %v", err)
		}
		ctx.term = term
		ctx.sinks.Add(term)
		go term.Serve()
	}
	if c.Output.Audio {
		ctx.sinks.Add(audio.New())
	}
	if w := c.Output.Websocket; w != nil {
		ctx.hub = ws.NewHub(ctx.toggles)
		if err := ctx.hub.Start(w.Addr); err != nil {
			log.Panicf("failed to start websocket server: %v", err)
		}
		ctx.sinks.Add(ctx.hub)
	}

	switch {
	case len(rc.C.Destinations) > 0:
		ctx.source = &listSource{names: rc.C.Destinations}
	case ctx.term != nil:
		ctx.source = promptSource{term: ctx.term}
	default:
		log.Panic("no destinations configured and terminal disabled")
	}

	ctx.agent = agent.NewWithContext(ctx, ctx.initRes.Start, agent.Sinks{
		Alert:   ctx.sinks,
		Render:  ctx.sinks,
		Outcome: ctx.sinks,
	})

	if ctx.sidecar != nil {
		ctx.clock.Register(ctx.sidecar)
		// sidecar协程，用于提供RPC服务
		if startSidecarServe {
			ctx.serving = true
			go func() {
				err := ctx.sidecar.Serve()
				if err != nil {
					log.Panicf("failed to serve: %v", err)
				}
				ctx.sidecarCloseCh <- struct{}{}
			}()
		}
	}
	return ctx
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) Grid() entity.IGrid {
	return ctx.initRes.Grid
}

func (ctx *Context) Registry() entity.IRegistry {
	return ctx.initRes.Registry
}

func (ctx *Context) Router() entity.IRouter {
	return ctx.router
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Toggles 障碍物翻转请求队列，可在任意goroutine中使用
func (ctx *Context) Toggles() entity.IToggleQueue {
	return ctx.toggles
}

// Agent 导航智能体
func (ctx *Context) Agent() *agent.Agent {
	return ctx.agent
}

// Results 已结束的导航请求
func (ctx *Context) Results() []outcome.Result {
	return ctx.recorder.Results()
}

// Init 初始化时钟并请求第一个目的地
func (ctx *Context) Init() {
	ctx.clock.Init()
	ctx.nextDestination()
}

// nextDestination 从目的地来源取下一个目的地并开始导航
// 算法说明：
// 1. 目的地不存在时带着错误信息重新请求（终端界面重新提示，配置列表跳过）
// 2. 来源用尽或用户退出时结束会话
func (ctx *Context) nextDestination() {
	message := ""
	for {
		name, err := ctx.source.Next(ctx.runCtx, message)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Infof("stop requesting destinations: %v", err)
			}
			ctx.sessionDone = true
			return
		}
		err = ctx.agent.Navigate(name)
		switch {
		case err == nil:
			return
		case errors.Is(err, grid.ErrInvalidDestination):
			message = err.Error()
		default:
			log.Errorf("navigate to %q: %v", name, err)
			ctx.sessionDone = true
			return
		}
	}
}

// Close 停止智能体并释放所有资源
func (ctx *Context) Close() {
	if ctx.closed.Load() {
		return
	}
	ctx.closed.Store(true)
	ctx.cancel()
	ctx.agent.Stop()
	if err := ctx.sinks.Close(); err != nil {
		log.Warnf("close outputs: %v", err)
	}
	if ctx.sidecar != nil {
		ctx.sidecar.Close()
		if ctx.serving {
			// wait for graceful stop
			<-ctx.sidecarCloseCh
		}
	}
}
