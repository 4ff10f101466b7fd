// Package warmstart builds a merit-order operating point and the variable
// bounds and fixings handed to the optimizer.
package warmstart

import (
	"errors"
	"sort"

	"expansion-prep/internal/dimension"
	"expansion-prep/internal/model"
	"expansion-prep/internal/params"
)

// Result is the warm start together with the adjusted copies of the
// parameters it rewrites for units outside their installation window.
type Result struct {
	Initial       *model.InitialState
	Bounds        *model.Bounds
	IniInventory  *model.Matrix
	EnergyInflows *model.Matrix
}

type engine struct {
	s    *dimension.Sets
	p    *params.Parameters
	opts model.Options
	res  *Result
}

// Run computes the initial state and the bounds of every decision variable.
// p is not modified.
func Run(s *dimension.Sets, p *params.Parameters, opts model.Options) (*Result, error) {
	if s == nil || p == nil {
		return nil, errors.New("warm start: sets and parameters are required")
	}
	rows := len(s.Steps)
	e := &engine{
		s:    s,
		p:    p,
		opts: opts,
		res: &Result{
			Initial: &model.InitialState{
				Output: model.NewMatrix(rows, len(s.Units)),
				Commit: model.NewMatrix(rows, len(s.Units)),
				Switch: model.NewMatrix(rows, len(s.Lines)),
			},
			IniInventory:  p.IniInventory.Clone(),
			EnergyInflows: p.EnergyInflows.Clone(),
		},
	}

	e.res.Bounds = e.defaultBounds()
	e.applyDecisionModes()
	e.applyOperatingRules()
	e.applyStorageRules()
	e.initialState()
	e.fixCycles()
	e.applyZeroData()
	e.applyWindows()
	e.snapInvestment()
	return e.res, nil
}

// MeritOrder lists the generators that produce active power, cheapest
// variable cost first. Ties keep handle order.
func MeritOrder(s *dimension.Sets, p *params.Parameters) []int {
	order := s.Generators.Minus(s.SynchronousCondensers).Members()
	out := append([]int(nil), order...)
	sort.SliceStable(out, func(i, j int) bool {
		return p.Units[out[i]].LinearVarCost < p.Units[out[j]].LinearVarCost
	})
	return out
}

// initialState dispatches each (period, scenario, stage) against the demand of
// the stage's first level. Only that level carries a starting value; the
// remaining levels of the stage stay at zero.
func (e *engine) initialState() {
	s, p, init := e.s, e.p, e.res.Initial
	order := MeritOrder(s, p)
	for ps := range s.PeriodScenarios {
		for _, levels := range s.StageLevels {
			first := s.Step(ps, levels[0])
			demand := 0.0
			for _, v := range p.Demand.Row(first) {
				demand += v
			}

			dispatched := make([]bool, len(s.Units))
			output := 0.0
			for _, h := range order {
				if s.NonRES.Has(h) && s.Units[h].MustRun && output < demand {
					dispatched[h] = true
					output += p.MaxPower.At(first, h)
				}
			}
			for _, h := range order {
				if s.Units[h].MustRun || dispatched[h] || output >= demand {
					continue
				}
				dispatched[h] = true
				if s.RES.Has(h) {
					output += p.MaxPower.At(first, h)
				} else {
					output += p.MinPower.At(first, h)
				}
			}

			for h, on := range dispatched {
				if !on {
					continue
				}
				if s.RES.Has(h) || s.Units[h].MustRun {
					init.Output.Set(first, h, p.MaxPower.At(first, h))
				} else {
					init.Output.Set(first, h, p.MinPower.At(first, h))
				}
				init.Commit.Set(first, h, 1)
			}
			for _, l := range s.RealLines.Members() {
				if !s.CandidateLines.Has(l) {
					init.Switch.Set(first, l, 1)
				}
			}

			last := s.Step(ps, levels[len(levels)-1])
			for _, es := range s.ESS.Members() {
				e.fixInventory(last, es)
			}
		}
	}
}

// fixCycles anchors inventory at every cycle boundary.
func (e *engine) fixCycles() {
	for _, es := range e.s.ESS.Members() {
		cycle := e.p.Units[es].CycleSteps
		if cycle < 1 {
			continue
		}
		for row := range e.s.Steps {
			_, n := e.s.StepParts(row)
			if (n+1)%cycle == 0 {
				e.fixInventory(row, es)
			}
		}
	}
}

func (e *engine) fixInventory(row, es int) {
	v := e.res.IniInventory.At(row, es)
	if v >= e.p.MinStorage.At(row, es) && v <= e.p.MaxStorage.At(row, es) {
		e.res.Bounds.ESSInventory.At(row, es).Fix(v)
	}
}
