package clock_test

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	clockv1 "git.fiblab.net/sim/protos/v2/go/city/clock/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/clock"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/config"
)

func TestClockAdvance(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 10, Total: 3, Interval: .2})
	assert.Equal(t, int32(10), c.InternalStep)
	assert.InDelta(t, 2., c.Time(), 1e-12)
	assert.False(t, c.Finished())

	c.Advance()
	assert.InDelta(t, 2.2, c.Time(), 1e-12)
	assert.False(t, c.Finished())
	c.Advance()
	assert.True(t, c.Finished())

	c.Init()
	assert.Equal(t, int32(10), c.InternalStep)
}

func TestClockUnbounded(t *testing.T) {
	c := clock.New(config.ControlStep{Interval: 1})
	for range 1000 {
		c.Advance()
	}
	assert.False(t, c.Finished())
	assert.Equal(t, "00:16:40.00", c.String())
}

func TestClockNowRPC(t *testing.T) {
	c := clock.New(config.ControlStep{Interval: .5})
	c.Advance()
	res, err := c.Now(context.Background(), connect.NewRequest(&clockv1.NowRequest{}))
	require.NoError(t, err)
	assert.Equal(t, .5, res.Msg.T)
}
