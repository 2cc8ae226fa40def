// 障碍物触发方：把鼠标点击、远程观察端、脚本与随机事件产生的翻转请求排队，
// 由仿真主循环在两个tick之间统一应用到栅格上，保证一个tick内看到的障碍物层是一致的快照
package obstacle

import (
	"sync"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/container"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/randengine"
)

// Queue 障碍物翻转请求队列
// 功能：收集来自任意goroutine的翻转请求
// 说明：线程安全；Drain只能在主循环的prepare阶段调用
type Queue struct {
	mtx     sync.Mutex
	pending *container.Queue[entity.Cell]
}

// NewQueue 创建翻转请求队列
func NewQueue() *Queue {
	return &Queue{pending: container.NewQueue[entity.Cell](8)}
}

// Push 添加一次翻转请求
func (q *Queue) Push(c entity.Cell) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	q.pending.Push(c)
}

// Len 尚未应用的请求数
func (q *Queue) Len() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	return q.pending.Len()
}

// Drain 按到达顺序把所有请求应用到栅格
// 功能：清空队列并逐个调用ToggleObstacle
// 参数：grid-栅格
// 返回：实际发生翻转的格子（墙和越界格子被忽略）
// 说明：同一格子被翻转两次等价于没有翻转，这里不做合并，保持与逐次点击一致
func (q *Queue) Drain(grid entity.IGrid) []entity.Cell {
	q.mtx.Lock()
	cells := make([]entity.Cell, 0, q.pending.Len())
	for q.pending.Len() > 0 {
		c, _ := q.pending.Pop()
		cells = append(cells, c)
	}
	q.mtx.Unlock()

	return lo.Filter(cells, func(c entity.Cell, _ int) bool {
		if !grid.ToggleObstacle(c) {
			log.Debugf("ignore toggle on %v", c)
			return false
		}
		return true
	})
}

// Script 按步数触发的障碍物脚本
// 功能：在配置的步数把指定格子加入翻转队列，用于无界面运行与可复现的演示
type Script struct {
	byStep map[int32][]entity.Cell
}

// NewScript 根据配置创建脚本
func NewScript(toggles []config.ScriptedToggle) *Script {
	s := &Script{byStep: make(map[int32][]entity.Cell)}
	for _, t := range toggles {
		s.byStep[t.Step] = append(s.byStep[t.Step], entity.Cell{X: t.X, Y: t.Y})
	}
	return s
}

// Fire 把第step步需要翻转的格子加入队列
// 返回：加入的请求数
func (s *Script) Fire(step int32, q entity.IToggleQueue) int {
	cells := s.byStep[step]
	for _, c := range cells {
		log.Infof("scripted toggle at step %d: %v", step, c)
		q.Push(c)
	}
	return len(cells)
}

// Len 脚本中的翻转总数
func (s *Script) Len() int {
	return lo.SumBy(lo.Values(s.byStep), func(cells []entity.Cell) int { return len(cells) })
}

// RandomActor 随机障碍物触发方
// 功能：每步以概率p从走廊格子中等概率选一个翻转
// 说明：使用固定种子，相同配置下产生相同的事件序列
type RandomActor struct {
	p        float64
	corridor []entity.Cell
	engine   *randengine.Engine
}

// NewRandomActor 创建随机障碍物触发方
// 参数：cfg-随机障碍物配置，corridor-候选格子（通常为IGrid.Corridor()）
func NewRandomActor(cfg config.RandomObstacle, corridor []entity.Cell) *RandomActor {
	return &RandomActor{
		p:        cfg.Probability,
		corridor: corridor,
		engine:   randengine.New(cfg.Seed),
	}
}

// Fire 以概率p选一个不在exclude中的走廊格子加入队列
// 参数：q-翻转队列，exclude-不允许翻转的格子（如智能体当前所在格子和目的地）
// 返回：是否加入了请求
func (a *RandomActor) Fire(q entity.IToggleQueue, exclude ...entity.Cell) bool {
	if !a.engine.PTrue(a.p) {
		return false
	}
	c, ok := randengine.Pick(a.engine, a.corridor)
	if !ok || lo.Contains(exclude, c) {
		return false
	}
	log.Debugf("random toggle: %v", c)
	q.Push(c)
	return true
}
