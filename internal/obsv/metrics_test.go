package obsv

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fakeSampler struct {
	depth int
	count int
}

func (f fakeSampler) HubDepth() int     { return f.depth }
func (f fakeSampler) OngoingCount() int { return f.count }

func TestRun_SamplesGaugesPeriodicallyWithoutRedis(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Run(ctx, fakeSampler{depth: 7, count: 3}, nil, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(HubDepth) == 7 && testutil.ToFloat64(OngoingCount) == 3
	}, time.Second, 5*time.Millisecond)
}

func TestRun_StopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, fakeSampler{}, nil, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
