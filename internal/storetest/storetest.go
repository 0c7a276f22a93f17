// Package storetest provides fixtures for tests that need an on-disk store
// container.
package storetest

import (
	"testing"
	"time"

	"github.com/xtxerr/meterload/internal/store"
	"github.com/xtxerr/meterload/internal/types"
)

// Start is the first timestamp used by fixture series. It matches the start
// of the first experiment period so period-based tests line up.
var Start = time.Date(2004, 2, 1, 0, 0, 0, 0, time.UTC)

// Meter describes one meter in a fixture container.
type Meter struct {
	ID         types.MeterID
	Experiment bool
	Series     types.Series
}

// Hourly builds a series at hourly resolution starting at start.
func Hourly(start time.Time, values ...float64) types.Series {
	s := make(types.Series, len(values))
	for i, v := range values {
		s[i] = types.Point{
			TimestampMs: start.Add(time.Duration(i) * time.Hour).UnixMilli(),
			Value:       v,
		}
	}
	return s
}

// Build writes a container with the given meters into a temp directory and
// returns its path.
func Build(t *testing.T, meters ...Meter) string {
	t.Helper()
	dir := t.TempDir()

	w, err := store.NewWriter(dir, store.DefaultOptions())
	if err != nil {
		t.Fatalf("storetest: NewWriter: %v", err)
	}
	for _, m := range meters {
		w.WriteSeries(m.ID, m.Series, m.Experiment)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("storetest: Writer.Close: %v", err)
	}
	return dir
}
