// loadshell is an interactive inspector for a meter load archive.
//
// It opens a lazy-loading cache over the container and exposes the read,
// overlay and aggregation operations as shell commands, which is handy for
// poking at the data without writing a program.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"golang.org/x/term"

	"github.com/xtxerr/meterload/internal/analysis"
	"github.com/xtxerr/meterload/internal/config"
	"github.com/xtxerr/meterload/internal/loads"
	"github.com/xtxerr/meterload/internal/logging"
	"github.com/xtxerr/meterload/internal/types"
)

var commands = []prompt.Suggest{
	{Text: "ids", Description: "list valid meter IDs"},
	{Text: "cached", Description: "list currently cached meter IDs"},
	{Text: "get", Description: "get ID - read a series (lazy, cached)"},
	{Text: "read", Description: "read ID - force re-read from the store"},
	{Text: "pop", Description: "pop ID - evict and show the cached series"},
	{Text: "total", Description: "total ID[,ID...] - total load per experiment period"},
	{Text: "mean", Description: "mean N [SEED] - mean load of a random subset"},
	{Text: "profile", Description: "profile ID [1|2] - load statistics for a period"},
	{Text: "nonzero", Description: "meters with no zero reading in the test period"},
	{Text: "periods", Description: "show the experiment periods"},
	{Text: "info", Description: "cache summary"},
	{Text: "exit", Description: "close the store and quit"},
}

type shell struct {
	cache *loads.Cache
}

func main() {
	cfgPath := flag.String("config", "", "config file path")
	storePath := flag.String("store", "", "store container directory (overrides config)")
	selector := flag.String("selector", "", "identifier subset: all or experiment (overrides config)")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "loadshell needs an interactive terminal")
		os.Exit(1)
	}

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

	if cfg.Store.Path == "" {
		fmt.Fprintln(os.Stderr, "no store path given (use -store or config)")
		os.Exit(1)
	}
	sel, err := cfg.Selector()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cache, err := loads.Open(cfg.Store.Path, sel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer cache.Close()

	sh := &shell{cache: cache}
	fmt.Printf("%s - %d meters under %q, type 'ids' or 'total'\n",
		cfg.Store.Path, cache.Len(), sel.String())

	prompt.New(sh.execute, completer,
		prompt.OptionTitle("loadshell"),
		prompt.OptionPrefix("loadshell> "),
	).Run()
}

func completer(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	return prompt.FilterHasPrefix(commands, d.GetWordBeforeCursor(), true)
}

func (sh *shell) execute(input string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "ids":
		for _, id := range sh.cache.MeterIDs().Sorted() {
			fmt.Println(id)
		}
	case "cached":
		n := 0
		for id := range sh.cache.Cached() {
			fmt.Println(id)
			n++
		}
		if n == 0 {
			fmt.Println("(nothing cached)")
		}
	case "get":
		err = sh.show(args, sh.cache.Get)
	case "read":
		err = sh.show(args, sh.cache.ForceRead)
	case "pop":
		err = sh.show(args, sh.cache.Pop)
	case "total":
		err = sh.total(args)
	case "mean":
		err = sh.mean(args)
	case "profile":
		err = sh.profile(args)
	case "nonzero":
		err = sh.nonzero()
	case "periods":
		for i, p := range analysis.ExperimentPeriods() {
			fmt.Printf("%d: %s\n", i+1, p)
		}
	case "info":
		fmt.Println(sh.cache)
	case "exit", "quit":
		sh.cache.Close()
		os.Exit(0)
	default:
		fmt.Printf("unknown command %q, try one of:\n", cmd)
		for _, c := range commands {
			fmt.Printf("  %-8s %s\n", c.Text, c.Description)
		}
	}
	if err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// show runs a single-ID series operation and prints a preview.
func (sh *shell) show(args []string, op func(types.MeterID) (types.Series, error)) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one meter ID")
	}
	id, err := types.ParseMeterID(args[0])
	if err != nil {
		return err
	}
	s, err := op(id)
	if err != nil {
		return err
	}
	printSeries(s)
	return nil
}

func (sh *shell) total(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: total ID[,ID...] | total all")
	}

	var ids []types.MeterID
	if args[0] == "all" {
		ids = sh.cache.MeterIDs().Sorted()
	} else {
		for _, part := range strings.Split(args[0], ",") {
			id, err := types.ParseMeterID(part)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
	}

	totals, err := analysis.TotalLoadInExperimentPeriods(sh.cache, ids)
	if err != nil {
		return err
	}
	for i, total := range totals {
		fmt.Printf("period %d: %s, sum %.2f\n", i+1, total, total.Sum())
	}
	return nil
}

func (sh *shell) mean(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: mean N [SEED]")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	var seed int64
	if len(args) == 2 {
		if seed, err = strconv.ParseInt(args[1], 10, 64); err != nil {
			return err
		}
	}

	means, usedSeed, err := analysis.MeanSubsetLoad(sh.cache, n, seed)
	if err != nil {
		return err
	}
	fmt.Printf("seed %d\n", usedSeed)
	for i, mean := range means {
		fmt.Printf("period %d: %s, sum %.2f\n", i+1, mean, mean.Sum())
	}
	return nil
}

func (sh *shell) profile(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: profile ID [1|2]")
	}
	id, err := types.ParseMeterID(args[0])
	if err != nil {
		return err
	}
	period := analysis.ExperimentPeriods()[0]
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 || n > 2 {
			return fmt.Errorf("period must be 1 or 2")
		}
		period = analysis.ExperimentPeriods()[n-1]
	}

	p, err := analysis.MeterProfile(sh.cache, id, period)
	if err != nil {
		return err
	}
	fmt.Printf("meter %d over %s\n", p.Meter, p.Period)
	fmt.Printf("  count %d, sum %.2f, min %.3f, max %.3f, avg %.3f\n",
		p.Count, p.Sum, p.Min, p.Max, p.Avg)
	if p.HasPercentiles() {
		fmt.Printf("  p50 %.3f, p90 %.3f, p95 %.3f, p99 %.3f\n",
			*p.P50, *p.P90, *p.P95, *p.P99)
	}
	return nil
}

func (sh *shell) nonzero() error {
	ids, err := analysis.NonZeroMeters(sh.cache)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Printf("%d of %d meters\n", len(ids), sh.cache.Len())
	return nil
}

// printSeries shows the first and last few points of a series.
func printSeries(s types.Series) {
	const edge = 3
	fmt.Println(s)
	for i, p := range s {
		if i >= edge && i < s.Len()-edge {
			if i == edge {
				fmt.Println("  ...")
			}
			continue
		}
		fmt.Printf("  %s  %g\n",
			time.UnixMilli(p.TimestampMs).UTC().Format("2006-01-02 15:04"), p.Value)
	}
}
