package output_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/output"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/output/outcome"
)

type fakeClock float64

func (c fakeClock) Time() float64 { return float64(c) }

type renderOnly struct{ frames int }

func (r *renderOnly) Render(entity.Frame) { r.frames++ }

type alertCloser struct {
	alerts []bool
	closed *[]string
	name   string
	err    error
}

func (a *alertCloser) SetAlert(active bool) { a.alerts = append(a.alerts, active) }
func (a *alertCloser) Close() error {
	*a.closed = append(*a.closed, a.name)
	return a.err
}

func TestFanout(t *testing.T) {
	var closed []string
	r := &renderOnly{}
	a1 := &alertCloser{closed: &closed, name: "a1"}
	a2 := &alertCloser{closed: &closed, name: "a2", err: errors.New("boom")}
	rec := outcome.New(fakeClock(3))

	f := output.NewFanout(r, a1, nil, a2, rec)
	f.Render(entity.Frame{})
	f.Render(entity.Frame{})
	f.SetAlert(true)
	f.OnArrived("ICU")
	f.OnTrapped("Pharmacy")

	assert.Equal(t, 2, r.frames)
	assert.Equal(t, []bool{true}, a1.alerts)
	assert.Equal(t, []bool{true}, a2.alerts)
	assert.Equal(t, []outcome.Result{
		{Destination: "ICU", State: entity.AgentState_ARRIVED, T: 3},
		{Destination: "Pharmacy", State: entity.AgentState_TRAPPED, T: 3},
	}, rec.Results())

	err := f.Close()
	assert.Error(t, err)
	assert.Equal(t, []string{"a2", "a1"}, closed)
	assert.NoError(t, f.Close())
}
