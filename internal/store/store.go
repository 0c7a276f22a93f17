package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/xtxerr/meterload/internal/errors"
	"github.com/xtxerr/meterload/internal/types"
)

// Selector names an identifier subset within a store.
type Selector int

const (
	// SelectorAll is the unrestricted identifier set.
	SelectorAll Selector = iota
	// SelectorExperiment is the curated subset selected for the prediction
	// experiments.
	SelectorExperiment
)

// String returns the selector name.
func (s Selector) String() string {
	switch s {
	case SelectorAll:
		return "all"
	case SelectorExperiment:
		return "experiment"
	default:
		return fmt.Sprintf("selector(%d)", int(s))
	}
}

// ParseSelector parses a selector name.
func ParseSelector(name string) (Selector, error) {
	switch name {
	case "all", "":
		return SelectorAll, nil
	case "experiment":
		return SelectorExperiment, nil
	default:
		return 0, errors.Wrapf(errors.ErrInvalidSelector, "%q", name)
	}
}

// Store is an open read-only container. It holds the meter identifier sets
// in memory and serves per-meter series through a DuckDB query over the
// loads file.
type Store struct {
	path      string
	loadsPath string
	db        *sql.DB

	all        types.MeterSet
	experiment types.MeterSet

	closed bool
}

// Open opens the container at path for read. It fails with ErrUnavailable if
// the directory or either container file is missing or unreadable.
func Open(path string) (*Store, error) {
	metersPath := filepath.Join(path, MetersFile)
	loadsPath := filepath.Join(path, LoadsFile)

	if _, err := os.Stat(metersPath); err != nil {
		return nil, errors.NewStoreUnavailable(path, err)
	}
	if _, err := os.Stat(loadsPath); err != nil {
		return nil, errors.NewStoreUnavailable(path, err)
	}

	rows, err := readMeterRows(metersPath)
	if err != nil {
		return nil, errors.NewStoreUnavailable(path, err)
	}
	// Validate the loads file footer up front so a malformed container fails
	// at Open, not at the first read.
	if err := checkParquet(loadsPath); err != nil {
		return nil, errors.NewStoreUnavailable(path, err)
	}

	all := make(types.MeterSet, len(rows))
	experiment := make(types.MeterSet)
	for _, r := range rows {
		all.Add(types.MeterID(r.MeterID))
		if r.Experiment {
			experiment.Add(types.MeterID(r.MeterID))
		}
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.NewStoreUnavailable(path, err)
	}

	return &Store{
		path:       path,
		loadsPath:  loadsPath,
		db:         db,
		all:        all,
		experiment: experiment,
	}, nil
}

// Path returns the container directory path.
func (s *Store) Path() string {
	return s.path
}

// MeterIDs returns the identifier set recognized under the given selector.
// The result is a fresh copy.
func (s *Store) MeterIDs(sel Selector) (types.MeterSet, error) {
	switch sel {
	case SelectorAll:
		return s.all.Clone(), nil
	case SelectorExperiment:
		return s.experiment.Clone(), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidSelector, "%v", sel)
	}
}

// Contains reports whether id is a valid identifier in this store.
func (s *Store) Contains(id types.MeterID) bool {
	return s.all.Contains(id)
}

// ReadSeries reads the full stored series for one meter. Every call returns
// a fresh copy, independent of previously returned series.
func (s *Store) ReadSeries(id types.MeterID) (types.Series, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if !s.all.Contains(id) {
		return nil, errors.NewUnknownMeter(int64(id))
	}

	const query = `
		SELECT timestamp_ms, value
		FROM read_parquet($1)
		WHERE meter_id = $2
		ORDER BY timestamp_ms
	`

	rows, err := s.db.Query(query, s.loadsPath, int64(id))
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "query loads for meter %d: %v", id, err)
	}
	defer rows.Close()

	var series types.Series
	for rows.Next() {
		var p types.Point
		if err := rows.Scan(&p.TimestampMs, &p.Value); err != nil {
			return nil, errors.Wrapf(ErrMalformed, "scan row: %v", err)
		}
		series = append(series, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "read loads for meter %d: %v", id, err)
	}
	return series, nil
}

// Close releases the query engine. It is safe to call more than once; reads
// after the first Close fail with ErrClosed.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
