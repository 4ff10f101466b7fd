// Package feasibility rejects cases whose storage and energy data cannot be
// satisfied by any dispatch, before an optimizer is built.
package feasibility

import (
	"fmt"
	"math"
	"strings"

	"expansion-prep/internal/dimension"
	"expansion-prep/internal/model"
	"expansion-prep/internal/params"
)

// Violation kinds.
const (
	MinPowerAboveInflows = "min-power-above-inflows"
	ChargeBelowOutflows  = "charge-below-outflows"
	InventoryBelowMin    = "inventory-below-minimum"
	EnergyBelowMin       = "energy-below-minimum"
)

// Violation is one failed check.
type Violation struct {
	Kind      string
	Unit      string
	Period    int
	Scenario  string
	LoadLevel string
	Value     float64
	Limit     float64
}

func (v Violation) String() string {
	where := v.Unit
	if v.LoadLevel != "" {
		where = fmt.Sprintf("%s at (%d, %s, %s)", v.Unit, v.Period, v.Scenario, v.LoadLevel)
	}
	return fmt.Sprintf("%s: %s (%.6g vs %.6g)", v.Kind, where, v.Value, v.Limit)
}

// InfeasibilityError carries every violation found; Error reports the first.
type InfeasibilityError struct {
	Violations []Violation
}

func (e *InfeasibilityError) Error() string {
	if len(e.Violations) == 0 {
		return "infeasible case"
	}
	msg := "infeasible case: " + e.Violations[0].String()
	if n := len(e.Violations) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// ProbabilityError reports periods whose scenario probabilities do not sum to one.
type ProbabilityError struct {
	Periods []int
	Sums    []float64
}

func (e *ProbabilityError) Error() string {
	parts := make([]string, len(e.Periods))
	for i, p := range e.Periods {
		parts[i] = fmt.Sprintf("%d=%.6g", p, e.Sums[i])
	}
	return "scenario probabilities do not sum to 1: " + strings.Join(parts, ", ")
}

// Input is what the checks read. IniInventory and EnergyInflows are the
// warm-start adjusted matrices.
type Input struct {
	Sets          *dimension.Sets
	Params        *params.Parameters
	IniInventory  *model.Matrix
	EnergyInflows *model.Matrix
}

// Check runs every storage and energy check and returns an
// *InfeasibilityError listing all violations, or nil.
func Check(in Input) error {
	var out []Violation
	out = append(out, checkStorageBalance(in)...)
	out = append(out, checkInventory(in)...)
	out = append(out, checkMinEnergy(in)...)
	if len(out) > 0 {
		return &InfeasibilityError{Violations: out}
	}
	return nil
}

// CheckProbabilities verifies that, for each active period, the scenario
// probabilities sum to one within tol.
func CheckProbabilities(s *dimension.Sets, p *params.Parameters, tol float64) error {
	sums := map[int]float64{}
	for i, ps := range s.PeriodScenarios {
		sums[ps.Period] += p.ScenarioProbability[i]
	}
	var bad ProbabilityError
	for _, period := range s.Periods {
		if math.Abs(sums[period]-1) > tol {
			bad.Periods = append(bad.Periods, period)
			bad.Sums = append(bad.Sums, sums[period])
		}
	}
	if len(bad.Periods) > 0 {
		return &bad
	}
	return nil
}

func checkStorageBalance(in Input) []Violation {
	s, p := in.Sets, in.Params
	var out []Violation
	for _, es := range s.ESS.Members() {
		var minPower, inflow, maxCharge, outflow float64
		for row := range s.Steps {
			minPower += p.MinPower.At(row, es)
			inflow += in.EnergyInflows.At(row, es)
			maxCharge += p.MaxCharge.At(row, es)
			outflow += p.EnergyOutflows.At(row, es)
		}
		if minPower-inflow > 0 {
			out = append(out, Violation{Kind: MinPowerAboveInflows, Unit: s.Units[es].Name, Value: minPower, Limit: inflow})
		}
		if maxCharge-outflow < 0 {
			out = append(out, Violation{Kind: ChargeBelowOutflows, Unit: s.Units[es].Name, Value: maxCharge, Limit: outflow})
		}
	}
	return out
}

// checkInventory verifies that, over every inventory window, the best case
// balance starting from the anchored inventory stays above the minimum.
func checkInventory(in Input) []Violation {
	s, p := in.Sets, in.Params
	var out []Violation
	for _, es := range s.ESS.Members() {
		up := p.Units[es]
		w := up.InventoryWindow
		if w < 1 {
			continue
		}
		for ps := range s.PeriodScenarios {
			for n := range s.LoadLevels {
				ord := n + 1
				if ord < w || ord%w != 0 {
					continue
				}
				row := s.Step(ps, n)
				if p.MaxCharge.At(row, es)+p.MaxPower.At(row, es) == 0 {
					continue
				}
				var inventory float64
				if ord == w {
					inventory = in.IniInventory.At(row, es)
				} else {
					inventory = p.MaxStorage.At(s.Step(ps, n-w), es)
				}
				for m := ord - w; m < ord; m++ {
					r := s.Step(ps, m)
					inventory += p.Duration[m] * (in.EnergyInflows.At(r, es) - p.MinPower.At(r, es) + up.Efficiency*p.MaxCharge.At(r, es))
				}
				if floor := p.MinStorage.At(row, es); inventory < floor {
					key := s.Steps[row]
					out = append(out, Violation{
						Kind: InventoryBelowMin, Unit: s.Units[es].Name,
						Period: key.Period, Scenario: key.Scenario, LoadLevel: key.LoadLevel,
						Value: inventory, Limit: floor,
					})
				}
			}
		}
	}
	return out
}

// checkMinEnergy verifies that each energy window can deliver its minimum
// energy. A (period, scenario) is checked only when its minimum energy summed
// over all load levels is nonzero.
func checkMinEnergy(in Input) []Violation {
	s, p := in.Sets, in.Params
	var out []Violation
	for _, g := range s.Generators.Members() {
		w := p.Units[g].EnergySteps
		if w < 1 {
			continue
		}
		for ps := range s.PeriodScenarios {
			total := 0.0
			for n := range s.LoadLevels {
				total += p.MinEnergy.At(s.Step(ps, n), g)
			}
			if total == 0 {
				continue
			}
			for n := range s.LoadLevels {
				ord := n + 1
				if ord < w || ord%w != 0 {
					continue
				}
				var slack float64
				for m := ord - w; m < ord; m++ {
					r := s.Step(ps, m)
					slack += (p.MaxPower.At(r, g) - p.MinEnergy.At(r, g)) * p.Duration[m]
				}
				if slack < 0 {
					key := s.Steps[s.Step(ps, n)]
					out = append(out, Violation{
						Kind: EnergyBelowMin, Unit: s.Units[g].Name,
						Period: key.Period, Scenario: key.Scenario, LoadLevel: key.LoadLevel,
						Value: slack, Limit: 0,
					})
				}
			}
		}
	}
	return out
}
