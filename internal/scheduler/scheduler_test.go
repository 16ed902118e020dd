package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/power-demand-snapshot/internal/power"
)

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(context.Context) (power.RunReport, error) {
	r.runs.Add(1)
	return power.RunReport{RunID: "test"}, nil
}

func TestSchedulerRunsImmediately(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, time.Hour, zerolog.Nop())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerRejectsZeroInterval(t *testing.T) {
	s := New(&countingRunner{}, 0, zerolog.Nop())
	assert.Error(t, s.Start(context.Background()))
}
