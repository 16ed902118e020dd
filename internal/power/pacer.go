package power

import (
	"context"
	"time"
)

// DelayPacer holds the run for a fixed delay between two region requests.
// The delay is counted from the end of the previous request.
type DelayPacer struct {
	delay time.Duration
}

// NewPacer returns a pacer sleeping delay between regions.
// A zero or negative delay disables pacing.
func NewPacer(delay time.Duration) *DelayPacer {
	return &DelayPacer{delay: delay}
}

// Wait blocks for the configured delay or until ctx is done.
func (p *DelayPacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
