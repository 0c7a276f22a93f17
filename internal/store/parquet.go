package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/xtxerr/meterload/internal/types"
)

// Container file names inside a store directory.
const (
	MetersFile = "meters.parquet"
	LoadsFile  = "loads.parquet"
)

// Options configures the container writer.
type Options struct {
	// Compression algorithm
	Compression CompressionType
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
)

// DefaultOptions returns default writer options.
func DefaultOptions() Options {
	return Options{Compression: CompressionZstd}
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "none":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	default:
		return &parquet.Uncompressed
	}
}

// meterRow is the Parquet layout of one meters.parquet row.
type meterRow struct {
	MeterID    int64 `parquet:"meter_id"`
	Experiment bool  `parquet:"experiment"`
}

// loadRow is the Parquet layout of one loads.parquet row.
type loadRow struct {
	MeterID     int64   `parquet:"meter_id"`
	TimestampMs int64   `parquet:"timestamp_ms"`
	Value       float64 `parquet:"value"`
}

// Writer builds an immutable store container. Points are accumulated in
// memory and written out, sorted by meter then timestamp, on Close.
//
// Duplicate (meter, timestamp) pairs keep the first value encountered; later
// values for the same pair are dropped. That matches how the raw utility
// dumps are cleaned upstream.
type Writer struct {
	dir        string
	opts       Options
	experiment map[types.MeterID]bool
	points     map[types.MeterID]map[int64]float64
	duplicates int64
	closed     bool
}

// NewWriter creates a writer for a new container at dir.
func NewWriter(dir string, opts Options) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create container directory: %w", err)
	}
	return &Writer{
		dir:        dir,
		opts:       opts,
		experiment: make(map[types.MeterID]bool),
		points:     make(map[types.MeterID]map[int64]float64),
	}, nil
}

// AddMeter registers a meter and its experiment-subset membership.
func (w *Writer) AddMeter(id types.MeterID, experiment bool) {
	if _, ok := w.experiment[id]; !ok {
		w.experiment[id] = experiment
		return
	}
	if experiment {
		w.experiment[id] = true
	}
}

// AddPoint records one measurement. Unseen meters are registered outside the
// experiment subset. A point for an already-recorded timestamp is counted as
// a duplicate and dropped.
func (w *Writer) AddPoint(id types.MeterID, timestampMs int64, value float64) {
	if _, ok := w.experiment[id]; !ok {
		w.experiment[id] = false
	}
	pts := w.points[id]
	if pts == nil {
		pts = make(map[int64]float64)
		w.points[id] = pts
	}
	if _, ok := pts[timestampMs]; ok {
		w.duplicates++
		return
	}
	pts[timestampMs] = value
}

// WriteSeries records a whole series for one meter.
func (w *Writer) WriteSeries(id types.MeterID, s types.Series, experiment bool) {
	w.AddMeter(id, experiment)
	for _, p := range s {
		w.AddPoint(id, p.TimestampMs, p.Value)
	}
}

// Duplicates returns the number of dropped duplicate points so far.
func (w *Writer) Duplicates() int64 {
	return w.duplicates
}

// Close writes both container files. After a successful Close further calls
// are no-ops; a failed Close leaves the writer open so it can be retried.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	ids := make([]types.MeterID, 0, len(w.experiment))
	for id := range w.experiment {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	meters := make([]meterRow, 0, len(ids))
	var loads []loadRow
	for _, id := range ids {
		meters = append(meters, meterRow{MeterID: int64(id), Experiment: w.experiment[id]})

		pts := w.points[id]
		stamps := make([]int64, 0, len(pts))
		for ts := range pts {
			stamps = append(stamps, ts)
		}
		sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })
		for _, ts := range stamps {
			loads = append(loads, loadRow{MeterID: int64(id), TimestampMs: ts, Value: pts[ts]})
		}
	}

	if err := writeRows(filepath.Join(w.dir, MetersFile), meters, w.opts); err != nil {
		return fmt.Errorf("write meters: %w", err)
	}
	if err := writeRows(filepath.Join(w.dir, LoadsFile), loads, w.opts); err != nil {
		return fmt.Errorf("write loads: %w", err)
	}
	w.closed = true
	return nil
}

// writeRows writes a row slice to a Parquet file.
func writeRows[T any](path string, rows []T, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	writer := parquet.NewGenericWriter[T](f, parquet.Compression(getCompression(opts.Compression)))
	if _, err := writer.Write(rows); err != nil {
		writer.Close()
		f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close writer: %w", err)
	}
	return f.Close()
}

// checkParquet verifies that path is a readable Parquet file.
func checkParquet(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if _, err := parquet.OpenFile(f, stat.Size()); err != nil {
		return fmt.Errorf("open parquet: %w", err)
	}
	return nil
}

// readMeterRows reads the full meters file.
func readMeterRows(path string) ([]meterRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	// OpenFile up front so a malformed container is an error, not a panic
	// from the generic reader.
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[meterRow](pf)
	defer reader.Close()

	rows := make([]meterRow, reader.NumRows())
	if len(rows) == 0 {
		return nil, nil
	}
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows[:n], nil
}
