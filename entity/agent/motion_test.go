package agent_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/agent"
)

func TestMotionConvergence(t *testing.T) {
	cases := []struct {
		tile, speed float64
		target      entity.Cell
		ticks       int
	}{
		{40, 8, entity.Cell{X: 1, Y: 0}, 5},
		{40, 40, entity.Cell{X: 1, Y: 0}, 1},
		{40, 50, entity.Cell{X: 0, Y: 1}, 1},
		{10, 3, entity.Cell{X: 1, Y: 0}, 4},
		{.3, .1, entity.Cell{X: -1, Y: 0}, 3},
		{30, 10, entity.Cell{X: 1, Y: 1}, 5}, // 42.43/10
		{40, 7, entity.Cell{X: 3, Y: 0}, 18},
	}
	for _, c := range cases {
		m := agent.NewMotion(entity.Cell{}, c.tile, c.speed)
		want := m.CanonicalPosition(c.target)
		d := math.Hypot(want.X, want.Y)
		ticks := 0
		for done := false; !done; {
			done = m.Advance(c.target)
			ticks++
			p := m.Position()
			assert.LessOrEqual(t, math.Hypot(p.X, p.Y), d+1e-9, "overshoot %+v", c)
			if ticks > 1000 {
				t.Fatalf("no convergence %+v", c)
			}
		}
		assert.Equal(t, c.ticks, ticks, "%+v", c)
		assert.Equal(t, want, m.Position(), "%+v", c)
		assert.True(t, m.AtRest(c.target))
	}
}

func TestMotionSameCell(t *testing.T) {
	m := agent.NewMotion(entity.Cell{X: 2, Y: 3}, 40, 8)
	assert.True(t, m.AtRest(entity.Cell{X: 2, Y: 3}))
	assert.True(t, m.Advance(entity.Cell{X: 2, Y: 3}))
	assert.Equal(t, 80.0, m.Position().X)
	assert.Equal(t, 120.0, m.Position().Y)
}

func TestMotionRetarget(t *testing.T) {
	m := agent.NewMotion(entity.Cell{}, 40, 10)
	assert.False(t, m.Advance(entity.Cell{X: 1, Y: 0}))
	assert.False(t, m.Advance(entity.Cell{X: 1, Y: 0}))
	assert.InDelta(t, 20, m.Position().X, 1e-9)
	assert.False(t, m.AtRest(entity.Cell{}))

	// back to the origin: 20 units left
	assert.False(t, m.Advance(entity.Cell{}))
	assert.True(t, m.Advance(entity.Cell{}))
	assert.True(t, m.AtRest(entity.Cell{}))

	m.Reset(entity.Cell{X: 4, Y: 4})
	assert.True(t, m.AtRest(entity.Cell{X: 4, Y: 4}))
}
