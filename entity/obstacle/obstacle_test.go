package obstacle_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/grid"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/obstacle"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/config"
)

func TestQueueDrain(t *testing.T) {
	g, err := grid.New([][]bool{{false, true, false}})
	require.NoError(t, err)
	q := obstacle.NewQueue()

	q.Push(entity.Cell{X: 0, Y: 0})
	q.Push(entity.Cell{X: 1, Y: 0}) // wall
	q.Push(entity.Cell{X: 9, Y: 9}) // outside
	q.Push(entity.Cell{X: 2, Y: 0})
	q.Push(entity.Cell{X: 2, Y: 0})
	assert.Equal(t, 5, q.Len())

	// nothing is applied before Drain
	assert.Empty(t, g.Obstacles())
	applied := q.Drain(g)
	assert.Equal(t, []entity.Cell{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 0}}, applied)
	assert.Equal(t, []entity.Cell{{X: 0, Y: 0}}, g.Obstacles())
	assert.Zero(t, q.Len())
	assert.Empty(t, q.Drain(g))
}

func TestQueueConcurrentPush(t *testing.T) {
	g := grid.NewOpen(10, 10)
	q := obstacle.NewQueue()
	var wg sync.WaitGroup
	for y := 0; y < 10; y++ {
		wg.Add(1)
		go func(y int) {
			defer wg.Done()
			for x := 0; x < 10; x++ {
				q.Push(entity.Cell{X: x, Y: y})
			}
		}(y)
	}
	wg.Wait()
	assert.Len(t, q.Drain(g), 100)
	assert.Len(t, g.Obstacles(), 100)
}

func TestScript(t *testing.T) {
	s := obstacle.NewScript([]config.ScriptedToggle{
		{Step: 3, X: 4, Y: 0},
		{Step: 4, X: 4, Y: 0},
		{Step: 3, X: 1, Y: 1},
	})
	assert.Equal(t, 3, s.Len())

	q := obstacle.NewQueue()
	assert.Zero(t, s.Fire(1, q))
	assert.Equal(t, 2, s.Fire(3, q))
	g := grid.NewOpen(5, 5)
	assert.Equal(t, []entity.Cell{{X: 4, Y: 0}, {X: 1, Y: 1}}, q.Drain(g))
	assert.Equal(t, 1, s.Fire(4, q))
	q.Drain(g)
	assert.Equal(t, []entity.Cell{{X: 1, Y: 1}}, g.Obstacles())
}

func TestRandomActor(t *testing.T) {
	g := grid.NewOpen(4, 4)
	corridor := g.Corridor()
	home := entity.Cell{X: 0, Y: 0}

	run := func() []entity.Cell {
		a := obstacle.NewRandomActor(config.RandomObstacle{Probability: .5, Seed: 11}, corridor)
		q := obstacle.NewQueue()
		for range 200 {
			a.Fire(q, home)
		}
		return q.Drain(grid.NewOpen(4, 4))
	}
	first := run()
	assert.NotEmpty(t, first)
	assert.Less(t, len(first), 200)
	assert.NotContains(t, first, home)
	assert.Equal(t, first, run())

	never := obstacle.NewRandomActor(config.RandomObstacle{Probability: 0}, corridor)
	q := obstacle.NewQueue()
	for range 50 {
		assert.False(t, never.Fire(q))
	}
	assert.Zero(t, q.Len())
}
