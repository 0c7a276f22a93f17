package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriterKeepFirstDedup(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	ts := testStart.UnixMilli()
	w.AddPoint(7, ts, 1.5)
	w.AddPoint(7, ts, 9.9) // duplicate timestamp, must be dropped
	w.AddPoint(7, ts+3600_000, 2.5)

	if w.Duplicates() != 1 {
		t.Errorf("expected 1 duplicate, got %d", w.Duplicates())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	series, err := s.ReadSeries(7)
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if series.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", series.Len())
	}
	if series[0].Value != 1.5 {
		t.Errorf("duplicate policy must keep the first value, got %f", series[0].Value)
	}
}

func TestWriterAutoRegistersMeters(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	w.AddPoint(11, testStart.UnixMilli(), 3.0)
	w.AddMeter(12, true)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	all, _ := s.MeterIDs(SelectorAll)
	if !all.Contains(11) || !all.Contains(12) {
		t.Errorf("expected meters 11 and 12, got %v", all.Sorted())
	}

	exp, _ := s.MeterIDs(SelectorExperiment)
	if exp.Contains(11) {
		t.Error("auto-registered meter must not be in the experiment subset")
	}
	if !exp.Contains(12) {
		t.Error("meter 12 should be in the experiment subset")
	}

	// A registered meter with no points has an empty series, not an error.
	series, err := s.ReadSeries(12)
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if series.Len() != 0 {
		t.Errorf("expected empty series, got %d points", series.Len())
	}
}

func TestWriterCloseIdempotent(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	w.AddMeter(1, false)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	stat, err := os.Stat(filepath.Join(dir, MetersFile))
	if err != nil {
		t.Fatalf("meters file should exist: %v", err)
	}
	if stat.Size() == 0 {
		t.Error("meters file should not be empty")
	}
}

func TestWriterCloseRetryAfterFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "container")

	w, err := NewWriter(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	w.WriteSeries(1, hourly(testStart, 1, 2, 3), false)

	// Make the first Close fail by removing the container directory.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if err := w.Close(); err == nil {
		t.Fatal("expected Close to fail with the directory gone")
	}

	// A failed Close must not latch: after restoring the directory a retry
	// writes the full container.
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("retried Close: %v", err)
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	series, err := s.ReadSeries(1)
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if series.Len() != 3 {
		t.Errorf("expected 3 points, got %d", series.Len())
	}
}

func TestCompressionOptions(t *testing.T) {
	for _, name := range []string{"zstd", "snappy", "none"} {
		dir := t.TempDir()
		w, err := NewWriter(dir, Options{Compression: ParseCompressionType(name)})
		if err != nil {
			t.Fatalf("NewWriter(%s): %v", name, err)
		}
		w.WriteSeries(1, hourly(testStart, 1, 2, 3), false)
		if err := w.Close(); err != nil {
			t.Fatalf("Close(%s): %v", name, err)
		}

		s, err := Open(dir)
		if err != nil {
			t.Fatalf("Open(%s): %v", name, err)
		}
		series, err := s.ReadSeries(1)
		if err != nil {
			t.Fatalf("ReadSeries(%s): %v", name, err)
		}
		if series.Len() != 3 {
			t.Errorf("%s: expected 3 points, got %d", name, series.Len())
		}
		s.Close()
	}
}
