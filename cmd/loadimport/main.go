// loadimport builds a store container from raw CSV meter dumps.
//
// Each input file is CSV with a header line and rows of
// meter_id,timestamp,value where timestamps use the "2006-01-02 15:04"
// layout. Files are parsed concurrently; rows are applied in argument order
// so the keep-first duplicate policy is deterministic.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/meterload/internal/config"
	"github.com/xtxerr/meterload/internal/logging"
	"github.com/xtxerr/meterload/internal/store"
	"github.com/xtxerr/meterload/internal/types"
)

const timestampLayout = "2006-01-02 15:04"

type rawPoint struct {
	id    types.MeterID
	tsMs  int64
	value float64
}

func main() {
	cfgPath := flag.String("config", "", "config file path")
	out := flag.String("out", "", "output container directory")
	experimentFile := flag.String("experiment-ids", "", "file with experiment meter IDs, one per line")
	compression := flag.String("compression", "", "parquet compression: zstd, snappy, none (overrides config)")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	}
	if *compression != "" {
		cfg.Import.Compression = *compression
	}

	level, err := cfg.LogLevel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logging.Init(level, cfg.Log.JSON)
	log := logging.Component("loadimport")

	files := flag.Args()
	if *out == "" || len(files) == 0 {
		log.Error("usage: loadimport -out DIR [flags] FILE...")
		os.Exit(1)
	}

	// Parse all dump files concurrently.
	parsed := make([][]rawPoint, len(files))
	var g errgroup.Group
	for i, file := range files {
		g.Go(func() error {
			pts, err := parseFile(file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			parsed[i] = pts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("parse dumps", "error", err)
		os.Exit(1)
	}

	w, err := store.NewWriter(*out, store.Options{
		Compression: store.ParseCompressionType(cfg.Import.Compression),
	})
	if err != nil {
		log.Error("create container", "error", err)
		os.Exit(1)
	}

	if *experimentFile != "" {
		ids, err := readIDFile(*experimentFile)
		if err != nil {
			log.Error("read experiment IDs", "error", err)
			os.Exit(1)
		}
		for _, id := range ids {
			w.AddMeter(id, true)
		}
		log.Info("experiment subset registered", "meters", len(ids))
	}

	var total int
	for i, pts := range parsed {
		for _, p := range pts {
			w.AddPoint(p.id, p.tsMs, p.value)
		}
		total += len(pts)
		log.Debug("file applied", "file", files[i], "points", len(pts))
	}

	if err := w.Close(); err != nil {
		log.Error("write container", "error", err)
		os.Exit(1)
	}
	log.Info("container written", "path", *out,
		"points", total, "duplicates_dropped", w.Duplicates())
}

// parseFile reads one CSV dump.
func parseFile(path string) ([]rawPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	// Header line.
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var pts []rawPoint
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		id, err := types.ParseMeterID(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: meter ID %q", line, rec[0])
		}
		ts, err := time.ParseInLocation(timestampLayout, strings.TrimSpace(rec[1]), time.UTC)
		if err != nil {
			return nil, fmt.Errorf("line %d: timestamp %q", line, rec[1])
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: value %q", line, rec[2])
		}
		pts = append(pts, rawPoint{id: id, tsMs: ts.UnixMilli(), value: value})
	}
	return pts, nil
}

// readIDFile reads meter IDs, one per line; blank lines and # comments are
// skipped.
func readIDFile(path string) ([]types.MeterID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ids []types.MeterID
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := types.ParseMeterID(line)
		if err != nil {
			return nil, fmt.Errorf("meter ID %q: %w", line, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
