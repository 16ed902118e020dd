package power

import (
	"context"
	"time"
)

// Fetcher retrieves a page. Implementations own the timeout, proxy and TLS policy.
// A non-2xx status is returned as-is with a nil error; the caller decides.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (status int, body []byte, err error)
}

// SnapshotWriter persists a non-empty batch and returns the names it wrote.
type SnapshotWriter interface {
	Write(ctx context.Context, batch Batch, runAt time.Time) ([]string, error)
}

// Pacer spaces out consecutive upstream requests. Wait is called between
// two regions, after the previous harvest has finished.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Observer receives run and harvest outcomes, e.g. for metrics.
type Observer interface {
	ObserveHarvest(result HarvestResult)
	ObserveRun(report RunReport, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveHarvest(HarvestResult) {}
func (nopObserver) ObserveRun(RunReport, error)  {}
