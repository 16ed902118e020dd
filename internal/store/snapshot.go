package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/power-demand-snapshot/internal/power"
)

var errEmptyBatch = errors.New("refusing to write an empty batch")

// SnapshotWriter persists batches to a Sink as a historical artifact plus latest.json.
type SnapshotWriter struct {
	sink Sink
}

// NewSnapshotWriter creates a writer over sink.
func NewSnapshotWriter(sink Sink) *SnapshotWriter {
	return &SnapshotWriter{sink: sink}
}

// Write serializes batch once and stores the same bytes under the historical
// name for runAt and then under LatestName. It returns the names written, which
// may hold only the historical name when the second write fails.
func (w *SnapshotWriter) Write(ctx context.Context, batch power.Batch, runAt time.Time) ([]string, error) {
	if len(batch) == 0 {
		return nil, errEmptyBatch
	}

	data, err := power.EncodeBatch(batch)
	if err != nil {
		return nil, err
	}

	history := HistoryName(runAt)
	if err := w.sink.Put(ctx, history, data); err != nil {
		return nil, fmt.Errorf("write %s: %w", history, err)
	}

	if err := w.sink.Put(ctx, LatestName, data); err != nil {
		return []string{history}, fmt.Errorf("write %s: %w", LatestName, err)
	}

	return []string{history, LatestName}, nil
}
