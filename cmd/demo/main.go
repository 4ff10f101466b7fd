package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"expansion-prep/internal/analysis"
	"expansion-prep/internal/config"
	"expansion-prep/internal/pipeline"
	"expansion-prep/internal/sample"
)

// Demo:
// - Build the two-node sample case in memory
// - Run the preparation pipeline on it
// - Print the warm start of the first hours and the area summary
func main() {
	levels := pflag.IntP("levels", "n", 48, "Number of hourly load levels in the sample case")
	rows := pflag.Int("rows", 12, "Number of warm start rows to print")
	outCSV := pflag.StringP("out", "o", "", "Optional path to write the warm start CSV (e.g. results/warmstart.csv)")
	verbose := pflag.BoolP("verbose", "v", false, "Log every stage")
	pflag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			panic(err)
		}
	}

	c := sample.Case(*levels)
	snap, err := pipeline.New(logger).Run(context.Background(), c, config.Default().Checks)
	if err != nil {
		panic(err)
	}

	n := snap.Counts()
	fmt.Printf("Prepared %q: %d steps, %d units, %d lines\n", snap.Case, n.Steps, n.Units, n.Lines)
	fmt.Printf("Fixed variables=%d\n\n", snap.FixedCount())

	state := snap.StateRows()
	for i := 0; i < min(*rows, len(state)); i++ {
		r := state[i]
		fmt.Printf("%d %s %s  unit=%-8s  output=%7.4f GW  commit=%.0f\n",
			r.Period, r.Scenario, r.LoadLevel, r.Unit, r.OutputGW, r.Commit)
	}

	if *outCSV != "" {
		if err := pipeline.WriteInitialStateCSV(*outCSV, state); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	fmt.Println("")
	for _, a := range analysis.RankAreasByPeak(snap.Sets, snap.Params) {
		fmt.Printf("Area %s: peak=%.3f GW  mean=%.3f GW  capacity=%.3f GW  margin=%.2f\n",
			a.Area, a.PeakGW, a.MeanGW, a.CapacityGW, a.Margin)
	}
}
