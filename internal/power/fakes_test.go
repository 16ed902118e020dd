package power

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeResponse struct {
	status int
	body   string
	err    error
}

// fakeFetcher serves canned responses keyed by URL and records call order.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{responses: map[string]fakeResponse{}}
}

func (f *fakeFetcher) set(url string, r fakeResponse) {
	f.responses[url] = r
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (int, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)

	r, ok := f.responses[url]
	if !ok {
		return 404, []byte("not found"), nil
	}
	if r.err != nil {
		return 0, nil, r.err
	}
	return r.status, []byte(r.body), nil
}

type panicFetcher struct{}

func (panicFetcher) Fetch(context.Context, string) (int, []byte, error) {
	panic("boom")
}

// memWriter records writes instead of persisting them.
type memWriter struct {
	batches []Batch
	runAts  []time.Time
	err     error
}

func (w *memWriter) Write(_ context.Context, b Batch, runAt time.Time) ([]string, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.batches = append(w.batches, b)
	w.runAts = append(w.runAts, runAt)
	return []string{"history.json", "latest.json"}, nil
}

type countingPacer struct{ waits int }

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

type recordingObserver struct {
	harvests []HarvestResult
	reports  []RunReport
	errs     []error
}

func (o *recordingObserver) ObserveHarvest(r HarvestResult) { o.harvests = append(o.harvests, r) }
func (o *recordingObserver) ObserveRun(r RunReport, err error) {
	o.reports = append(o.reports, r)
	o.errs = append(o.errs, err)
}

var errTimeout = errors.New("context deadline exceeded (Client.Timeout exceeded while awaiting headers)")

const testBase = "https://example.test/state-data"

func pageFor(timeBlock, yesterday, current string) string {
	return `<html><body><b>` + timeBlock + `</b><div><h3>State's Demand Met</h3>` +
		`<p>YESTERDAY <span>` + yesterday + `</span></p>` +
		`<p>CURRENT <span>` + current + `</span></p></div></body></html>`
}
