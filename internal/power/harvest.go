package power

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the page prefix for state status pages.
const DefaultBaseURL = "https://vidyutpravah.in/state-data"

var (
	// ErrUnexpectedStatus is reported for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrParse is reported when the body cannot be parsed as HTML.
	ErrParse = errors.New("parse page")
)

// PageURL returns the status page URL for region under base.
func PageURL(base string, region Region) string {
	return strings.TrimRight(base, "/") + "/" + region.Slug()
}

// Harvester runs fetch, parse, extract and normalize for a single region.
type Harvester struct {
	fetcher Fetcher
	baseURL string
	log     zerolog.Logger
}

// NewHarvester creates a Harvester. An empty baseURL selects DefaultBaseURL.
func NewHarvester(fetcher Fetcher, baseURL string, log zerolog.Logger) *Harvester {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Harvester{
		fetcher: fetcher,
		baseURL: baseURL,
		log:     log,
	}
}

// URL returns the page URL this harvester uses for region.
func (h *Harvester) URL(region Region) string {
	return PageURL(h.baseURL, region)
}

// Harvest fetches and extracts one region. Failures of any stage end up in
// the result's Err; the result's Record is set only on success.
func (h *Harvester) Harvest(ctx context.Context, region Region, runAt time.Time) HarvestResult {
	url := h.URL(region)
	start := time.Now()

	log := h.log.With().
		Str("region", region.Name).
		Str("slug", region.Slug()).
		Str("url", url).
		Logger()

	log.Info().Msg("fetching region page")

	record, err := h.harvest(ctx, region, url, runAt)
	res := HarvestResult{
		Region:   region,
		URL:      url,
		Err:      err,
		Duration: time.Since(start),
	}
	if err != nil {
		log.Warn().Err(err).Dur("duration", res.Duration).Msg("region skipped")
		return res
	}

	res.Record = &record
	log.Info().
		Str("time_block", record.TimeBlock).
		Str("yesterday", record.DemandMetYesterday).
		Str("current", record.DemandMetCurrent).
		Dur("duration", res.Duration).
		Msg("region extracted")
	return res
}

func (h *Harvester) harvest(ctx context.Context, region Region, url string, runAt time.Time) (rec RegionRecord, err error) {
	// A misbehaving fetcher or parser must not take the batch down with it.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while harvesting: %v", p)
		}
	}()

	status, body, err := h.fetcher.Fetch(ctx, url)
	if err != nil {
		return RegionRecord{}, fmt.Errorf("fetch: %w", err)
	}
	if status < 200 || status >= 300 {
		return RegionRecord{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return RegionRecord{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return Normalize(region, url, runAt, Extract(doc))
}
