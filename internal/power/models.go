package power

import (
	"strings"
	"time"
)

const (
	// SourceKeyName identifies the upstream publisher in every record.
	SourceKeyName = "vidyutpravah"

	// DemandMetMarker is the phrase that identifies the demand container on a state page.
	DemandMetMarker = "State's Demand Met"

	// DateLayout is the day-granularity layout used for RegionRecord.Date (DD-MM-YYYY).
	DateLayout = "02-01-2006"
)

// Region represents one state for which a status page is published.
// Name is the canonical display name; the slug is derived from it.
type Region struct {
	Name string `json:"name" yaml:"name" validate:"required"`
}

// Slug returns the URL-safe identifier for this region.
func (r Region) Slug() string {
	return FormatSlug(r.Name)
}

// FormatSlug lowercases name, turns spaces into hyphens, "&" into "and" and trims.
// Applying it to its own output returns the same value.
func FormatSlug(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "&", "and")
	return strings.TrimSpace(s)
}

// ExtractedFields holds the values found on a page. Empty means absent.
type ExtractedFields struct {
	TimeBlock          string
	DemandMetYesterday string
	DemandMetCurrent   string
}

// Missing returns the names of fields that were not found.
func (f ExtractedFields) Missing() []string {
	var missing []string
	if f.TimeBlock == "" {
		missing = append(missing, "time_block")
	}
	if f.DemandMetYesterday == "" {
		missing = append(missing, "demand_met_yesterday")
	}
	if f.DemandMetCurrent == "" {
		missing = append(missing, "demand_met_current")
	}
	return missing
}

// Complete reports whether all three fields are present.
func (f ExtractedFields) Complete() bool {
	return len(f.Missing()) == 0
}

// RegionRecord is the normalized result for one successfully harvested region.
// The JSON form is defined in codec.go.
type RegionRecord struct {
	URL                string
	Key                string
	KeyName            string
	TimeBlock          string
	Date               string
	IsManual           int
	DemandMetYesterday string
	DemandMetCurrent   string
}

// Batch is the ordered set of records produced by one run, in region order.
type Batch []RegionRecord

// HarvestResult is the outcome of harvesting one region.
// Record is nil when the region produced nothing; Err then explains why.
type HarvestResult struct {
	Region   Region
	URL      string
	Record   *RegionRecord
	Err      error
	Duration time.Duration
}

// OK reports whether the harvest produced a record.
func (r HarvestResult) OK() bool {
	return r.Record != nil
}

// RegionFailure describes one skipped region in a RunReport.
type RegionFailure struct {
	Region string `json:"region"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// RunReport summarizes one batch run.
type RunReport struct {
	RunID     string          `json:"runId"`
	StartedAt time.Time       `json:"startedAt"`
	EndedAt   time.Time       `json:"endedAt"`
	Attempted int             `json:"attempted"`
	Succeeded int             `json:"succeeded"`
	Failures  []RegionFailure `json:"failures,omitempty"`
	Artifacts []string        `json:"artifacts,omitempty"`
}

// Persisted reports whether the run wrote any artifact.
func (r RunReport) Persisted() bool {
	return len(r.Artifacts) > 0
}
