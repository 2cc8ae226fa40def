package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/output/outcome"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/config"
)

var _ entity.ITaskContext = (*Context)(nil)

func TestMain(m *testing.M) {
	*realtime = false
	os.Exit(m.Run())
}

const openPlan = `
name: open
matrix:
  - [0, 0, 0, 0, 0]
  - [0, 0, 0, 0, 0]
  - [0, 0, 0, 0, 0]
  - [0, 0, 0, 0, 0]
  - [0, 0, 0, 0, 0]
start: {x: 0, y: 0}
rooms:
  - name: Goal
    target: {x: 4, y: 4}
  - name: Corner
    target: {x: 4, y: 0}
`

const corridorPlan = `
name: corridor
matrix:
  - [0, 0, 0, 0, 0, 0, 1, 0]
start: {x: 0, y: 0}
rooms:
  - name: End
    target: {x: 5, y: 0}
  - name: Start
    target: {x: 0, y: 0}
  - name: Island
    target: {x: 7, y: 0}
`

func newConfig(t *testing.T, plan string, destinations ...string) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(plan), 0o644))
	var c config.Config
	c.Input.Map.File = path
	c.Control.Destinations = destinations
	// one cell per tick
	c.Control.Navigation.Speed = 40
	return c
}

func TestRunScenario(t *testing.T) {
	c := newConfig(t, openPlan, "Nowhere", "Goal", "Corner")
	c.Obstacle.Script = []config.ScriptedToggle{
		{Step: 3, X: 4, Y: 0},
		{Step: 5, X: 4, Y: 0},
	}
	ctx := NewContext(c, nil, false)
	ctx.Run()

	assert.Equal(t, []string{"Goal", "Corner"}, destinations(ctx.Results()))
	for _, r := range ctx.Results() {
		assert.Equal(t, entity.AgentState_ARRIVED, r.State)
	}
	stats := ctx.Agent().Stats()
	assert.EqualValues(t, 1, stats.NumAlerts)
	assert.EqualValues(t, 1, stats.NumReplans)
	assert.EqualValues(t, 12, stats.CellsTraversed)
	assert.Equal(t, entity.Cell{X: 4, Y: 0}, ctx.Agent().CurrentCell())
	assert.Empty(t, ctx.Grid().Obstacles())
	assert.True(t, ctx.closed.Load())
	assert.False(t, ctx.Agent().Alerting())
}

func TestRunTrapped(t *testing.T) {
	c := newConfig(t, corridorPlan, "End", "Start")
	c.Obstacle.Script = []config.ScriptedToggle{{Step: 2, X: 3, Y: 0}}
	ctx := NewContext(c, nil, false)
	ctx.Run()

	require.Len(t, ctx.Results(), 1)
	assert.Equal(t, outcome.Result{Destination: "End", State: entity.AgentState_TRAPPED, T: ctx.Clock().T}, ctx.Results()[0])
	assert.Equal(t, entity.AgentState_TRAPPED, ctx.Agent().State())
	assert.False(t, ctx.Agent().Alerting())
	// waited out the grace period before giving up
	assert.Greater(t, ctx.Clock().T, 5.0)
}

func TestRunInitiallyUnreachable(t *testing.T) {
	ctx := NewContext(newConfig(t, corridorPlan, "Island", "End"), nil, false)
	ctx.Run()
	assert.Equal(t, []string{"Island"}, destinations(ctx.Results()))
	assert.EqualValues(t, 1, ctx.Clock().InternalStep)
}

func TestRunEndStep(t *testing.T) {
	c := newConfig(t, openPlan, "Goal")
	c.Control.Step.Total = 4
	ctx := NewContext(c, nil, false)
	ctx.Run()
	assert.Empty(t, ctx.Results())
	assert.EqualValues(t, 3, ctx.Clock().InternalStep)
	assert.Equal(t, entity.AgentState_MOVING, ctx.Agent().State())
}

func TestRunRandomObstacles(t *testing.T) {
	c := newConfig(t, openPlan, "Goal")
	c.Control.Step.Total = 200
	c.Obstacle.Random = &config.RandomObstacle{Probability: .3, Seed: 5}
	ctx := NewContext(c, nil, false)
	ctx.Run()
	assert.LessOrEqual(t, len(ctx.Results()), 1)
	assert.NotContains(t, ctx.Grid().Obstacles(), entity.Cell{X: 4, Y: 4})
}

func TestExternalToggle(t *testing.T) {
	ctx := NewContext(newConfig(t, openPlan, "Corner"), nil, false)
	ctx.Init()
	ctx.Toggles().Push(entity.Cell{X: 2, Y: 2})
	assert.Empty(t, ctx.Grid().Obstacles())
	ctx.prepare()
	assert.Equal(t, []entity.Cell{{X: 2, Y: 2}}, ctx.Grid().Obstacles())
	ctx.update()
	ctx.Close()
}

func TestNoDestinationSource(t *testing.T) {
	c := newConfig(t, openPlan)
	assert.Panics(t, func() { NewContext(c, nil, false) })
}

func destinations(results []outcome.Result) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Destination
	}
	return names
}
