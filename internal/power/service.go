package power

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNothingToPersist is returned by Collect when no region produced a record.
var ErrNothingToPersist = errors.New("no region produced a record")

// Service drives the harvester over the configured regions and hands the
// resulting batch to the snapshot writer.
type Service struct {
	regions   []Region
	harvester *Harvester
	writer    SnapshotWriter
	pacer     Pacer
	now       func() time.Time
	observer  Observer
	log       zerolog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithPacer sets the spacing policy between region requests.
func WithPacer(p Pacer) Option {
	return func(s *Service) { s.pacer = p }
}

// WithClock sets the time source used for the batch date and artifact names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObserver registers an observer for harvest and run outcomes.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a new Service. The region list is copied.
func NewService(regions []Region, harvester *Harvester, writer SnapshotWriter, opts ...Option) *Service {
	s := &Service{
		regions:   append([]Region(nil), regions...),
		harvester: harvester,
		writer:    writer,
		pacer:     NewPacer(time.Second),
		now:       time.Now,
		observer:  nopObserver{},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Regions returns the configured regions in processing order.
func (s *Service) Regions() []Region {
	return append([]Region(nil), s.regions...)
}

// PageURL returns the status page URL for region.
func (s *Service) PageURL(region Region) string {
	return s.harvester.URL(region)
}

// Collect harvests every region in order and returns the successful records.
// It returns ErrNothingToPersist with the per-region results when the batch is empty,
// and ctx.Err() if the context ends mid-run.
func (s *Service) Collect(ctx context.Context, runAt time.Time) (Batch, []HarvestResult, error) {
	batch := make(Batch, 0, len(s.regions))
	results := make([]HarvestResult, 0, len(s.regions))

	for i, region := range s.regions {
		if err := ctx.Err(); err != nil {
			return nil, results, err
		}
		if i > 0 {
			if err := s.pacer.Wait(ctx); err != nil {
				return nil, results, err
			}
		}

		res := s.harvester.Harvest(ctx, region, runAt)
		s.observer.ObserveHarvest(res)
		results = append(results, res)

		if res.OK() {
			batch = append(batch, *res.Record)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, results, err
	}
	if len(batch) == 0 {
		return nil, results, ErrNothingToPersist
	}
	return batch, results, nil
}

// Run executes one batch end to end. An empty batch is reported, not returned
// as an error; only cancellation and persistence failures are.
func (s *Service) Run(ctx context.Context) (report RunReport, err error) {
	runAt := s.now()
	report = RunReport{
		RunID:     uuid.NewString(),
		StartedAt: runAt,
		Attempted: len(s.regions),
	}
	log := s.log.With().Str("run_id", report.RunID).Logger()

	defer func() {
		report.EndedAt = s.now()
		s.observer.ObserveRun(report, err)
	}()

	log.Info().Int("regions", len(s.regions)).Msg("batch run started")

	batch, results, err := s.Collect(ctx, runAt)
	for _, res := range results {
		if !res.OK() {
			report.Failures = append(report.Failures, RegionFailure{
				Region: res.Region.Name,
				URL:    res.URL,
				Reason: res.Err.Error(),
			})
		}
	}
	report.Succeeded = len(batch)

	switch {
	case errors.Is(err, ErrNothingToPersist):
		log.Warn().Int("failed", len(report.Failures)).Msg("no data was scraped on this run; no files were created")
		return report, nil
	case err != nil:
		log.Error().Err(err).Msg("batch run aborted")
		return report, fmt.Errorf("collect: %w", err)
	}

	names, err := s.writer.Write(ctx, batch, runAt)
	report.Artifacts = names
	if err != nil {
		log.Error().Err(err).Strs("written", names).Msg("saving snapshot failed")
		return report, fmt.Errorf("write snapshot: %w", err)
	}

	log.Info().
		Int("succeeded", report.Succeeded).
		Int("failed", len(report.Failures)).
		Strs("artifacts", names).
		Msg("batch saved")
	return report, nil
}
