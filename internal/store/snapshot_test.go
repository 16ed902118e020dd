package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/power-demand-snapshot/internal/power"
)

var runAt = time.Date(2024, time.March, 5, 10, 7, 30, 0, time.UTC)

func testBatch() power.Batch {
	return power.Batch{{
		URL: "https://vidyutpravah.in/state-data/delhi", Key: "delhi", KeyName: power.SourceKeyName,
		TimeBlock: "10:00-10:15 Hrs", Date: "05-03-2024", IsManual: 1,
		DemandMetYesterday: "150", DemandMetCurrent: "160",
	}}
}

func TestHistoryName(t *testing.T) {
	assert.Equal(t, "all_state_power_data_20240305_100730.json", HistoryName(runAt))

	ts, err := ParseHistoryName("all_state_power_data_20240305_100730.json", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, runAt, ts)

	for _, bad := range []string{"latest.json", "all_state_power_data_.json", "../etc/passwd", "all_state_power_data_20240305_100730.json.bak"} {
		assert.False(t, IsHistoryName(bad), bad)
	}
	assert.True(t, ValidName(LatestName))
}

func TestWriterLatestMatchesHistory(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirStore(dir)
	require.NoError(t, err)
	w := NewSnapshotWriter(sink)

	names, err := w.Write(context.Background(), testBatch(), runAt)
	require.NoError(t, err)
	assert.Equal(t, []string{"all_state_power_data_20240305_100730.json", LatestName}, names)

	history, err := os.ReadFile(filepath.Join(dir, names[0]))
	require.NoError(t, err)
	latest, err := os.ReadFile(filepath.Join(dir, LatestName))
	require.NoError(t, err)
	assert.Equal(t, history, latest)

	decoded, err := power.DecodeBatch(latest)
	require.NoError(t, err)
	assert.Equal(t, testBatch(), decoded)
}

func TestWriterOverwritesLatest(t *testing.T) {
	sink := NewMemoryStore(0, 0, nil)
	w := NewSnapshotWriter(sink)
	ctx := context.Background()

	_, err := w.Write(ctx, testBatch(), runAt)
	require.NoError(t, err)

	second := testBatch()
	second[0].DemandMetCurrent = "170"
	later := runAt.Add(15 * time.Minute)
	_, err = w.Write(ctx, second, later)
	require.NoError(t, err)

	latest, err := sink.Get(ctx, LatestName)
	require.NoError(t, err)
	newest, err := sink.Get(ctx, HistoryName(later))
	require.NoError(t, err)
	assert.Equal(t, newest, latest)

	names, err := sink.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{HistoryName(runAt), HistoryName(later)}, names)
}

func TestWriterRejectsEmptyBatch(t *testing.T) {
	sink := NewMemoryStore(0, 0, nil)
	_, err := NewSnapshotWriter(sink).Write(context.Background(), nil, runAt)
	assert.Error(t, err)

	names, _ := sink.List(context.Background())
	assert.Empty(t, names)
	_, err = sink.Get(context.Background(), LatestName)
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingSink struct {
	*MemoryStore
	failOn string
}

func (s failingSink) Put(ctx context.Context, name string, data []byte) error {
	if name == s.failOn {
		return errors.New("read-only file system")
	}
	return s.MemoryStore.Put(ctx, name, data)
}

func TestWriterLatestFailure(t *testing.T) {
	sink := failingSink{MemoryStore: NewMemoryStore(0, 0, nil), failOn: LatestName}

	names, err := NewSnapshotWriter(sink).Write(context.Background(), testBatch(), runAt)
	require.Error(t, err)
	assert.Equal(t, []string{HistoryName(runAt)}, names)
}

func TestWriterHistoryFailureLeavesLatestUntouched(t *testing.T) {
	sink := failingSink{MemoryStore: NewMemoryStore(0, 0, nil), failOn: HistoryName(runAt)}
	require.NoError(t, sink.MemoryStore.Put(context.Background(), LatestName, []byte("previous")))

	names, err := NewSnapshotWriter(sink).Write(context.Background(), testBatch(), runAt)
	require.Error(t, err)
	assert.Empty(t, names)

	latest, err := sink.Get(context.Background(), LatestName)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(latest))
}
