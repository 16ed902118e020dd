package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// LatestName is the fixed name of the always-current artifact.
	LatestName = "latest.json"

	historyPrefix    = "all_state_power_data_"
	historySuffix    = ".json"
	historyTimestamp = "20060102_150405"
)

var (
	// ErrNotFound is returned when an artifact does not exist.
	ErrNotFound = errors.New("snapshot artifact not found")
	// ErrInvalidName is returned for names that are neither latest nor a historical artifact.
	ErrInvalidName = errors.New("invalid snapshot artifact name")
)

// Sink is a storage target holding named snapshot artifacts.
type Sink interface {
	// Put writes data under name, replacing existing content.
	Put(ctx context.Context, name string, data []byte) error
	// Get returns the content stored under name or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)
	// List returns historical artifact names in ascending (chronological) order.
	List(ctx context.Context) ([]string, error)
}

// HistoryName returns the unique artifact name for a run started at t.
func HistoryName(t time.Time) string {
	return historyPrefix + t.Format(historyTimestamp) + historySuffix
}

// ParseHistoryName returns the run timestamp encoded in name.
// The result carries no zone; it is interpreted in loc.
func ParseHistoryName(name string, loc *time.Location) (time.Time, error) {
	if !strings.HasPrefix(name, historyPrefix) || !strings.HasSuffix(name, historySuffix) {
		return time.Time{}, ErrInvalidName
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, historyPrefix), historySuffix)
	t, err := time.ParseInLocation(historyTimestamp, stamp, loc)
	if err != nil {
		return time.Time{}, ErrInvalidName
	}
	return t, nil
}

// IsHistoryName reports whether name is a historical artifact name.
func IsHistoryName(name string) bool {
	_, err := ParseHistoryName(name, time.UTC)
	return err == nil
}

// ValidName reports whether name may be read from or written to a sink.
func ValidName(name string) bool {
	return name == LatestName || IsHistoryName(name)
}
