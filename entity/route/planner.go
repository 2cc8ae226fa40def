package route

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/container"
)

// 栅格最短路径规划（广度优先搜索）
type Planner struct {
	grid entity.IGrid

	queue   *container.Queue[entity.Cell] // frontier，复用以减少分配
	parents map[entity.Cell]entity.Cell   // 首次访问时记录的父节点
}

// 创建路径规划器
func NewPlanner(grid entity.IGrid) *Planner {
	cols, rows := grid.Size()
	return &Planner{
		grid:    grid,
		queue:   container.NewQueue[entity.Cell](cols + rows),
		parents: make(map[entity.Cell]entity.Cell),
	}
}

// 在调用时刻的栅格快照上规划从start到goal的最短路径
// 起点总是被扩展（智能体正占据它），终点必须可通行才能到达
// start==goal 返回单格路径，不可达返回空路径
func (p *Planner) FindPath(start, goal entity.Cell) entity.Path {
	if start == goal {
		return entity.Path{start}
	}
	if p.grid.IsWall(start) || !p.grid.IsTraversable(goal) {
		log.Debugf("search %v->%v: start is wall or goal blocked", start, goal)
		return entity.Path{}
	}

	p.queue.Clear()
	clear(p.parents)
	p.queue.Push(start)
	p.parents[start] = start

	found := false
	expanded := 0
	for p.queue.Len() > 0 {
		cur, _ := p.queue.Pop()
		if cur == goal {
			found = true
			break
		}
		expanded++
		for _, d := range entity.Neighbors {
			next := cur.Add(d)
			if _, visited := p.parents[next]; visited {
				continue
			}
			if !p.grid.IsTraversable(next) {
				continue
			}
			p.parents[next] = cur
			p.queue.Push(next)
		}
	}
	if !found {
		log.Debugf("search %v->%v: unreachable after expanding %d cells", start, goal, expanded)
		return entity.Path{}
	}

	// 回溯父节点，再反转为 start->goal 顺序
	path := entity.Path{goal}
	for cur := goal; cur != start; {
		cur = p.parents[cur]
		path = append(path, cur)
	}
	path = lo.Reverse(path)
	log.Debugf("search %v->%v: %d steps, expanded %d cells", start, goal, len(path)-1, expanded)
	return path
}
