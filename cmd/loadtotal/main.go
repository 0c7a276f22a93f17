// loadtotal prints aggregate load series from a meter load archive.
//
// By default it prints the total load of the selected meters for each
// experiment period as CSV on stdout. With -subset it draws a reproducible
// random meter subset and prints the per-meter mean load instead.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xtxerr/meterload/internal/analysis"
	"github.com/xtxerr/meterload/internal/config"
	"github.com/xtxerr/meterload/internal/loads"
	"github.com/xtxerr/meterload/internal/logging"
	"github.com/xtxerr/meterload/internal/types"
)

func main() {
	cfgPath := flag.String("config", "", "config file path")
	storePath := flag.String("store", "", "store container directory (overrides config)")
	selector := flag.String("selector", "", "identifier subset: all or experiment (overrides config)")
	idsFlag := flag.String("ids", "", "comma-separated meter IDs (default: every ID in the selector)")
	subset := flag.Int("subset", 0, "draw a random subset of this size and print per-meter means")
	seed := flag.Int64("seed", 0, "subset seed (0 draws a fresh one; the effective seed is logged)")
	nonzero := flag.Bool("nonzero", false, "list meters with no zero reading in the test period and exit")
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
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if *selector != "" {
		cfg.Store.Selector = *selector
	}

	level, err := cfg.LogLevel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logging.Init(level, cfg.Log.JSON)
	log := logging.Component("loadtotal")

	if cfg.Store.Path == "" {
		log.Error("no store path given (use -store or config)")
		os.Exit(1)
	}
	sel, err := cfg.Selector()
	if err != nil {
		log.Error("bad selector", "error", err)
		os.Exit(1)
	}

	cache, err := loads.Open(cfg.Store.Path, sel)
	if err != nil {
		log.Error("open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer cache.Close()
	log.Info("store opened", "path", cfg.Store.Path, "selector", sel.String(), "meters", cache.Len())

	if *nonzero {
		ids, err := analysis.NonZeroMeters(cache)
		if err != nil {
			log.Error("list non-zero meters", "error", err)
			os.Exit(1)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return
	}

	var totals []types.Series
	switch {
	case *subset > 0:
		var usedSeed int64
		totals, usedSeed, err = analysis.MeanSubsetLoad(cache, *subset, *seed)
		if err != nil {
			log.Error("mean subset load", "error", err)
			os.Exit(1)
		}
		log.Info("subset drawn", "size", *subset, "seed", usedSeed)

	case *idsFlag != "":
		ids, err := parseIDs(*idsFlag)
		if err != nil {
			log.Error("parse ids", "error", err)
			os.Exit(1)
		}
		totals, err = analysis.TotalLoadInExperimentPeriods(cache, ids)
		if err != nil {
			log.Error("total load", "error", err)
			os.Exit(1)
		}

	default:
		totals, err = analysis.TotalExperimentLoad(cache)
		if err != nil {
			log.Error("total load", "error", err)
			os.Exit(1)
		}
	}

	writeCSV(totals)
}

// parseIDs parses a comma-separated meter ID list.
func parseIDs(s string) ([]types.MeterID, error) {
	parts := strings.Split(s, ",")
	ids := make([]types.MeterID, 0, len(parts))
	for _, p := range parts {
		id, err := types.ParseMeterID(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("meter ID %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// writeCSV prints one row per point: period index, timestamp, value.
func writeCSV(totals []types.Series) {
	fmt.Println("period,timestamp,value")
	for i, total := range totals {
		for _, p := range total {
			fmt.Printf("%d,%s,%g\n", i+1,
				time.UnixMilli(p.TimestampMs).UTC().Format(time.RFC3339), p.Value)
		}
	}
}
