package power

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runAt = time.Date(2024, time.March, 5, 10, 7, 30, 0, time.UTC)

func TestPageURL(t *testing.T) {
	assert.Equal(t, "https://vidyutpravah.in/state-data/jammu-and-kashmir",
		PageURL(DefaultBaseURL, Region{Name: "Jammu & Kashmir"}))
	assert.Equal(t, "http://h/x/delhi", PageURL("http://h/x/", Region{Name: "Delhi"}))
}

func TestHarvestSuccess(t *testing.T) {
	f := newFakeFetcher()
	f.set(testBase+"/delhi", fakeResponse{status: 200, body: pageFor("10:00-10:15 Hrs", "150", "160")})
	h := NewHarvester(f, testBase, zerolog.Nop())

	res := h.Harvest(context.Background(), Region{Name: "Delhi"}, runAt)

	require.True(t, res.OK(), "err: %v", res.Err)
	assert.NoError(t, res.Err)
	assert.Equal(t, testBase+"/delhi", res.URL)
	assert.Equal(t, "delhi", res.Record.Key)
	assert.Equal(t, "10:00-10:15 Hrs", res.Record.TimeBlock)
	assert.Equal(t, "150", res.Record.DemandMetYesterday)
	assert.Equal(t, "160", res.Record.DemandMetCurrent)
	assert.Equal(t, "05-03-2024", res.Record.Date)
	assert.Equal(t, 1, res.Record.IsManual)
}

func TestHarvestFailuresAreContained(t *testing.T) {
	f := newFakeFetcher()
	f.set(testBase+"/sikkim", fakeResponse{err: errTimeout})
	f.set(testBase+"/assam", fakeResponse{status: 503, body: "down"})
	f.set(testBase+"/bihar", fakeResponse{status: 200, body: `<html><body><b>t</b></body></html>`})
	h := NewHarvester(f, testBase, zerolog.Nop())

	cases := []struct {
		region string
		check  func(t *testing.T, err error)
	}{
		{"Sikkim", func(t *testing.T, err error) { assert.ErrorIs(t, err, errTimeout) }},
		{"Assam", func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnexpectedStatus) }},
		{"Bihar", func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrIncomplete) }},
		{"Goa", func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnexpectedStatus) }},
	}
	for _, tc := range cases {
		t.Run(tc.region, func(t *testing.T) {
			res := h.Harvest(context.Background(), Region{Name: tc.region}, runAt)
			assert.False(t, res.OK())
			assert.Nil(t, res.Record)
			tc.check(t, res.Err)
		})
	}
}

func TestHarvestRecoversFromPanic(t *testing.T) {
	h := NewHarvester(panicFetcher{}, testBase, zerolog.Nop())

	res := h.Harvest(context.Background(), Region{Name: "Delhi"}, runAt)

	assert.False(t, res.OK())
	assert.ErrorContains(t, res.Err, "boom")
}

func TestNewHarvesterDefaultBase(t *testing.T) {
	h := NewHarvester(newFakeFetcher(), "", zerolog.Nop())
	assert.Equal(t, "https://vidyutpravah.in/state-data/delhi", h.URL(Region{Name: "Delhi"}))
}
