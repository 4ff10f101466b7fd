package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"expansion-prep/internal/analysis"
	"expansion-prep/internal/config"
	"expansion-prep/internal/data"
	"expansion-prep/internal/feasibility"
	"expansion-prep/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "prepare":
		os.Exit(cmdPrepare(os.Args[2:]))
	case "describe":
		os.Exit(cmdDescribe(os.Args[2:]))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli prepare --config run.yaml [--case-dir cases --case 9n] [--out results/warmstart.csv]")
	fmt.Println("  cli describe --config run.yaml [--case-dir cases --case 9n]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - prepare prints set sizes and writes the warm start dispatch as CSV")
	fmt.Println("  - exit status 1 when the case fails the feasibility pre-check")
}

// runFlags are shared by every subcommand.
type runFlags struct {
	config  string
	caseDir string
	name    string
	strict  bool
	enforce bool
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "Path to YAML config")
	fs.StringVar(&f.caseDir, "case-dir", "", "Directory holding case directories (overrides case.dir)")
	fs.StringVar(&f.name, "case", "", "Case name (overrides case.name)")
	fs.BoolVar(&f.strict, "strict", false, "Fail on topology warnings")
	fs.BoolVar(&f.enforce, "enforce-probability", false, "Require scenario probabilities to sum to 1 per period")
}

// prepare loads the config and the case and runs the pipeline.
func (f *runFlags) prepare() (*pipeline.Snapshot, *zap.Logger, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return nil, nil, err
		}
	}
	if f.caseDir != "" {
		cfg.Case.Dir = f.caseDir
	}
	if f.name != "" {
		cfg.Case.Name = f.name
	}
	if cfg.Case.Dir == "" || cfg.Case.Name == "" {
		return nil, nil, errors.New("a case is required: set case.dir and case.name or pass --case-dir and --case")
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		return nil, nil, err
	}

	c, err := data.LoadCase(cfg.Case.Dir, cfg.Case.Name)
	if err != nil {
		return nil, logger, err
	}
	c.Options = config.MergeOptions(c.Options, cfg.Options)

	checks := config.MergeChecks(cfg.Checks, config.Checks{
		EnforceScenarioProbability: f.enforce,
		StrictTopology:             f.strict,
	})
	snap, err := pipeline.New(logger).Run(context.Background(), c, checks)
	return snap, logger, err
}

func cmdPrepare(args []string) int {
	fs := pflag.NewFlagSet("prepare", pflag.ExitOnError)
	var rf runFlags
	rf.register(fs)
	outPath := fs.StringP("out", "o", "results/warmstart.csv", "Output CSV path for the warm start")
	summaryPath := fs.String("summary", "", "Optional path to write the run summary as JSON")
	_ = fs.Parse(args)

	snap, logger, err := rf.prepare()
	if logger != nil {
		defer logger.Sync() //nolint:errcheck
	}
	if err != nil {
		return report(err)
	}

	printCounts(snap)

	// ensure output dir exists
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		return report(err)
	}
	rows := snap.StateRows()
	if err := pipeline.WriteInitialStateCSV(*outPath, rows); err != nil {
		return report(err)
	}
	fmt.Printf("Wrote %d rows to %s\n", len(rows), *outPath)

	if *summaryPath != "" {
		if err := pipeline.WriteSummaryJSON(*summaryPath, snap.Summary()); err != nil {
			return report(err)
		}
		fmt.Printf("Wrote summary to %s\n", *summaryPath)
	}
	return 0
}

func cmdDescribe(args []string) int {
	fs := pflag.NewFlagSet("describe", pflag.ExitOnError)
	var rf runFlags
	rf.register(fs)
	_ = fs.Parse(args)

	snap, logger, err := rf.prepare()
	if logger != nil {
		defer logger.Sync() //nolint:errcheck
	}
	if err != nil {
		return report(err)
	}

	fmt.Printf("%-24s %-7s %-6s %-10s %-10s %-10s %-10s %-10s\n", "series", "count", "zeros", "mean", "std", "p05", "p95", "max")
	for _, s := range analysis.Describe(snap.Params) {
		fmt.Printf("%-24s %-7d %-6d %-10.4f %-10.4f %-10.4f %-10.4f %-10.4f\n",
			s.Name, s.Count, s.Zeros, s.Mean, s.Std, s.P05, s.P95, s.Max)
	}
	fmt.Println("")

	fmt.Printf("%-4s %-16s %-6s %-6s %-10s %-10s %-8s %-8s\n", "rank", "area", "nodes", "units", "peak_gw", "mean_gw", "lf", "margin")
	for i, r := range analysis.RankAreasByPeak(snap.Sets, snap.Params) {
		fmt.Printf("%-4d %-16s %-6d %-6d %-10.4f %-10.4f %-8.3f %-8.2f\n",
			i+1, r.Area, r.Nodes, r.Units, r.PeakGW, r.MeanGW, r.LoadFactor, r.Margin)
	}
	return 0
}

func printCounts(snap *pipeline.Snapshot) {
	n := snap.Counts()
	fmt.Printf("Run %s (%s)\n", snap.RunID, snap.Case)
	fmt.Printf("  periods=%d scenarios=%d stages=%d load_levels=%d steps=%d\n",
		n.Periods, n.PeriodScenarios, n.Stages, n.LoadLevels, n.Steps)
	fmt.Printf("  nodes=%d areas=%d units=%d (thermal=%d res=%d ess=%d candidates=%d) lines=%d (candidates=%d)\n",
		n.Nodes, n.Areas, n.Units, n.Thermal, n.Renewable, n.Storage, n.Candidates, n.Lines, n.CandidateLines)
	fmt.Printf("  fixed variables=%d\n", snap.FixedCount())
	for _, w := range snap.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

// report prints err and returns the exit status.
func report(err error) int {
	var inf *feasibility.InfeasibilityError
	if errors.As(err, &inf) {
		fmt.Fprintln(os.Stderr, "infeasible case:")
		for _, v := range inf.Violations {
			fmt.Fprintf(os.Stderr, "  %s\n", v)
		}
		return 1
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}
