package route_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/grid"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/route"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/randengine"
)

// bruteForceDistances 不动点迭代求所有格子到start的步数（与BFS无关的参考实现）
func bruteForceDistances(g *grid.Grid, start entity.Cell) map[entity.Cell]int {
	cols, rows := g.Size()
	dist := map[entity.Cell]int{start: 0}
	for changed := true; changed; {
		changed = false
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				c := entity.Cell{X: x, Y: y}
				if !g.IsTraversable(c) {
					continue
				}
				best, ok := dist[c]
				if !ok {
					best = math.MaxInt
				}
				for _, d := range entity.Neighbors {
					if nd, ok := dist[c.Add(d)]; ok && nd+1 < best {
						best = nd + 1
					}
				}
				if best != math.MaxInt && (!ok || best < dist[c]) {
					dist[c] = best
					changed = true
				}
			}
		}
	}
	return dist
}

func assertValidPath(t *testing.T, g *grid.Grid, path entity.Path, start, goal entity.Cell) {
	t.Helper()
	require.NotEmpty(t, path)
	assert.Equal(t, start, path[0])
	assert.Equal(t, goal, path[len(path)-1])
	for i := 1; i < len(path); i++ {
		dx := path[i].X - path[i-1].X
		dy := path[i].Y - path[i-1].Y
		assert.Equal(t, 1, dx*dx+dy*dy, "step %d: %v -> %v", i, path[i-1], path[i])
		assert.True(t, g.IsTraversable(path[i]), "cell %v", path[i])
	}
}

func randomGrid(e *randengine.Engine, cols, rows int, density float64) *grid.Grid {
	walls := make([][]bool, rows)
	for y := range walls {
		walls[y] = make([]bool, cols)
		for x := range walls[y] {
			walls[y][x] = e.PTrue(density)
		}
	}
	g, _ := grid.New(walls)
	return g
}

func TestFindPathOpenGrid(t *testing.T) {
	g := grid.NewOpen(5, 5)
	p := route.NewPlanner(g)

	path := p.FindPath(entity.Cell{X: 0, Y: 0}, entity.Cell{X: 4, Y: 4})
	assert.Len(t, path, 9)
	assertValidPath(t, g, path, entity.Cell{X: 0, Y: 0}, entity.Cell{X: 4, Y: 4})
	// +x first: the path runs along row 0 before turning
	assert.Equal(t, entity.Cell{X: 1, Y: 0}, path[1])
}

func TestFindPathStartIsGoal(t *testing.T) {
	g := grid.NewOpen(3, 3)
	p := route.NewPlanner(g)
	c := entity.Cell{X: 1, Y: 1}
	assert.Equal(t, entity.Path{c}, p.FindPath(c, c))
}

func TestFindPathMatchesBruteForce(t *testing.T) {
	e := randengine.New(42)
	for trial := 0; trial < 30; trial++ {
		g := randomGrid(e, 4+e.Intn(4), 4+e.Intn(4), .3)
		p := route.NewPlanner(g)
		corridor := g.Corridor()
		if len(corridor) < 2 {
			continue
		}
		for i := 0; i < 5; i++ {
			start := corridor[e.Intn(len(corridor))]
			goal := corridor[e.Intn(len(corridor))]
			dist := bruteForceDistances(g, start)
			path := p.FindPath(start, goal)
			if want, ok := dist[goal]; ok {
				assert.Len(t, path, want+1, "trial %d %v->%v", trial, start, goal)
				assertValidPath(t, g, path, start, goal)
			} else {
				assert.Empty(t, path, "trial %d %v->%v", trial, start, goal)
			}
		}
	}
}

func TestFindPathUnreachable(t *testing.T) {
	// 0 1 0
	// 0 1 0
	// 0 1 0
	g, err := grid.New([][]bool{
		{false, true, false},
		{false, true, false},
		{false, true, false},
	})
	require.NoError(t, err)
	p := route.NewPlanner(g)

	assert.Empty(t, p.FindPath(entity.Cell{X: 0, Y: 0}, entity.Cell{X: 2, Y: 2}))
	// goal on a wall
	assert.Empty(t, p.FindPath(entity.Cell{X: 0, Y: 0}, entity.Cell{X: 1, Y: 1}))
	// goal out of bounds
	assert.Empty(t, p.FindPath(entity.Cell{X: 0, Y: 0}, entity.Cell{X: 7, Y: 0}))
}

func TestFindPathObstacles(t *testing.T) {
	g := grid.NewOpen(3, 3)
	p := route.NewPlanner(g)
	start, goal := entity.Cell{X: 0, Y: 0}, entity.Cell{X: 2, Y: 0}

	assert.Len(t, p.FindPath(start, goal), 3)
	g.ToggleObstacle(entity.Cell{X: 1, Y: 0})
	path := p.FindPath(start, goal)
	assert.Len(t, path, 5)
	assert.NotContains(t, path, entity.Cell{X: 1, Y: 0})

	// goal itself blocked
	g.ToggleObstacle(goal)
	assert.Empty(t, p.FindPath(start, goal))
	g.ToggleObstacle(goal)

	// start occupied by an obstacle is still expanded
	g.ToggleObstacle(start)
	assert.Len(t, p.FindPath(start, goal), 5)
}

func TestFindPathDeterministic(t *testing.T) {
	e := randengine.New(7)
	g := randomGrid(e, 8, 8, .2)
	corridor := g.Corridor()
	require.NotEmpty(t, corridor)
	start, goal := corridor[0], corridor[len(corridor)-1]

	first := route.NewPlanner(g).FindPath(start, goal)
	p := route.NewPlanner(g)
	for range 5 {
		assert.Equal(t, first, p.FindPath(start, goal))
	}
}
