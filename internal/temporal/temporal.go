// Package temporal collapses sub-step resolution into representative load
// levels and converts durations in hours into step counts.
package temporal

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"expansion-prep/internal/model"
)

// HoursPerYear is the nominal year used by cycle lengths.
const HoursPerYear = 8736

// Result is the aggregated view of a case's time-varying relations.
type Result struct {
	StepWidth int
	// Durations is the duration in hours of each dictionary load level;
	// non-representative levels are zero.
	Durations []float64

	Demand               *model.Series
	Inertia              *model.Series
	OperatingReserveUp   *model.Series
	OperatingReserveDown *model.Series
	VariableMinPower     *model.Series
	VariableMaxPower     *model.Series
	VariableMinCharge    *model.Series
	VariableMaxCharge    *model.Series
	VariableMinStorage   *model.Series
	VariableMaxStorage   *model.Series
	VariableMinEnergy    *model.Series
	VariableMaxEnergy    *model.Series
	EnergyInflows        *model.Series
	EnergyOutflows       *model.Series
}

// Aggregate applies the configured step width to every series of c.
// Non-positive values of bound, reserve, inertia and flow series are treated
// as absent before averaging; demand keeps its sign.
func Aggregate(c *model.Case) *Result {
	k := c.Scalars.TimeStep
	if k < 1 {
		k = 1
	}
	prep := func(s *model.Series) *model.Series { return AggregateSeries(clampNonPositive(s), k) }
	return &Result{
		StepWidth:            k,
		Durations:            RepresentativeDurations(c.Dict.LoadLevels, c.LoadLevels, k),
		Demand:               AggregateSeries(c.Demand, k),
		Inertia:              prep(c.Inertia),
		OperatingReserveUp:   prep(c.OperatingReserveUp),
		OperatingReserveDown: prep(c.OperatingReserveDown),
		VariableMinPower:     prep(c.VariableMinPower),
		VariableMaxPower:     prep(c.VariableMaxPower),
		VariableMinCharge:    prep(c.VariableMinCharge),
		VariableMaxCharge:    prep(c.VariableMaxCharge),
		VariableMinStorage:   prep(c.VariableMinStorage),
		VariableMaxStorage:   prep(c.VariableMaxStorage),
		VariableMinEnergy:    prep(c.VariableMinEnergy),
		VariableMaxEnergy:    prep(c.VariableMaxEnergy),
		EnergyInflows:        prep(c.EnergyInflows),
		EnergyOutflows:       prep(c.EnergyOutflows),
	}
}

// RollingMean is the trailing mean of width k. The first k-1 entries have no
// full window and are zero. k <= 1 returns a copy.
func RollingMean(values []float64, k int) []float64 {
	out := make([]float64, len(values))
	if k <= 1 {
		copy(out, values)
		return out
	}
	for i := k - 1; i < len(values); i++ {
		out[i] = floats.Sum(values[i-k+1:i+1]) / float64(k)
	}
	return out
}

// AggregateSeries replaces every column by its rolling mean, computed inside
// each (period, scenario) block. Width 1 returns s itself.
func AggregateSeries(s *model.Series, k int) *model.Series {
	if s == nil || k <= 1 {
		return s
	}
	out := s.Clone()
	for _, block := range s.Blocks() {
		for c := range s.Columns {
			vals := make([]float64, len(block))
			for i, r := range block {
				vals[i] = s.Values[r][c]
			}
			for i, v := range RollingMean(vals, k) {
				out.Values[block[i]][c] = v
			}
		}
	}
	return out
}

// RepresentativeDurations scales each level's duration by k and zeroes every
// level that is not the last of its group of k.
func RepresentativeDurations(order []string, levels []model.LoadLevel, k int) []float64 {
	if k < 1 {
		k = 1
	}
	byID := make(map[string]float64, len(levels))
	for _, l := range levels {
		byID[l.ID] = l.Duration
	}
	out := make([]float64, len(order))
	for i, id := range order {
		if (i+1)%k != 0 {
			continue
		}
		out[i] = byID[id] * float64(k)
	}
	return out
}

// StepCount converts a duration in hours into whole steps of width k.
// Rounding is half to even; a positive duration never becomes zero steps.
func StepCount(hours float64, k int) int {
	if hours <= 0 {
		return 0
	}
	if k < 1 {
		k = 1
	}
	n := int(math.RoundToEven(hours / float64(k)))
	if n < 1 {
		n = 1
	}
	return n
}

func clampNonPositive(s *model.Series) *model.Series {
	if s == nil {
		return nil
	}
	out := s.Clone()
	for _, row := range out.Values {
		for c, v := range row {
			if !(v > 0) {
				row[c] = 0
			}
		}
	}
	return out
}
