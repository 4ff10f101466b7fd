package warmstart

import (
	"math"

	"expansion-prep/internal/model"
	"expansion-prep/internal/params"
)

// InvestEpsilon snaps investment bounds to 0 or 1.
const InvestEpsilon = 1e-3

func domainFor(mode model.DecisionMode, binary bool) model.Domain {
	if mode == model.Binary && binary {
		return model.BinaryDomain
	}
	return model.UnitInterval
}

func fixAll(f *model.Family, col int, v float64) {
	for r := 0; r < f.Rows; r++ {
		f.At(r, col).Fix(v)
	}
}

func (e *engine) defaultBounds() *model.Bounds {
	s, p := e.s, e.p
	periods, pss, rows := len(s.Periods), len(s.PeriodScenarios), len(s.Steps)
	units, lines, nodes := len(s.Units), len(s.Lines), len(s.Nodes)

	b := &model.Bounds{
		GenerationInvest: model.NewFamily("GenerationInvest", periods, units, model.UnitInterval, 0, 1),
		GenerationRetire: model.NewFamily("GenerationRetire", periods, units, model.UnitInterval, 0, 1),
		NetworkInvest:    model.NewFamily("NetworkInvest", periods, lines, model.UnitInterval, 0, 1),
		Commitment:       model.NewFamily("Commitment", rows, units, model.UnitInterval, 0, 1),
		StartUp:          model.NewFamily("StartUp", rows, units, model.UnitInterval, 0, 1),
		ShutDown:         model.NewFamily("ShutDown", rows, units, model.UnitInterval, 0, 1),
		MaxCommitment:    model.NewFamily("MaxCommitment", pss, units, model.UnitInterval, 0, 1),
		TotalOutput:      model.NewFamily("TotalOutput", rows, units, model.NonNegativeReals, 0, 0),
		Output2ndBlock:   model.NewFamily("Output2ndBlock", rows, units, model.NonNegativeReals, 0, 0),
		ReserveUp:        model.NewFamily("ReserveUp", rows, units, model.NonNegativeReals, 0, 0),
		ReserveDown:      model.NewFamily("ReserveDown", rows, units, model.NonNegativeReals, 0, 0),
		EnergyInflows:    model.NewFamily("EnergyInflows", rows, units, model.NonNegativeReals, 0, 0),
		EnergyOutflows:   model.NewFamily("EnergyOutflows", rows, units, model.NonNegativeReals, 0, 0),
		ESSInventory:     model.NewFamily("ESSInventory", rows, units, model.NonNegativeReals, 0, 0),
		ESSSpillage:      model.NewFamily("ESSSpillage", rows, units, model.NonNegativeReals, 0, model.Inf),
		ESSTotalCharge:   model.NewFamily("ESSTotalCharge", rows, units, model.NonNegativeReals, 0, 0),
		Charge2ndBlock:   model.NewFamily("Charge2ndBlock", rows, units, model.NonNegativeReals, 0, 0),
		ESSReserveUp:     model.NewFamily("ESSReserveUp", rows, units, model.NonNegativeReals, 0, 0),
		ESSReserveDown:   model.NewFamily("ESSReserveDown", rows, units, model.NonNegativeReals, 0, 0),
		ENS:              model.NewFamily("ENS", rows, nodes, model.NonNegativeReals, 0, 0),
		Theta:            model.NewFamily("Theta", rows, nodes, model.Reals, -p.MaxTheta, p.MaxTheta),
		Flow:             model.NewFamily("Flow", rows, lines, model.Reals, -model.Inf, model.Inf),
		LineCommit:       model.NewFamily("LineCommit", rows, lines, model.UnitInterval, 0, 1),
		LineOnState:      model.NewFamily("LineOnState", rows, lines, model.UnitInterval, 0, 1),
		LineOffState:     model.NewFamily("LineOffState", rows, lines, model.UnitInterval, 0, 1),
		LineLosses:       model.NewFamily("LineLosses", rows, lines, model.NonNegativeReals, 0, 0),
	}

	for pi := 0; pi < periods; pi++ {
		for h := 0; h < units; h++ {
			if s.Candidate.Has(h) {
				inv := b.GenerationInvest.At(pi, h)
				inv.Lower, inv.Upper = p.Units[h].InvestLo, p.Units[h].InvestUp
			} else {
				b.GenerationInvest.At(pi, h).Fix(0)
			}
			if s.Retirement.Has(h) {
				ret := b.GenerationRetire.At(pi, h)
				ret.Lower, ret.Upper = p.Units[h].RetireLo, p.Units[h].RetireUp
			} else {
				b.GenerationRetire.At(pi, h).Fix(0)
			}
		}
		for l := 0; l < lines; l++ {
			if s.CandidateLines.Has(l) {
				inv := b.NetworkInvest.At(pi, l)
				inv.Lower, inv.Upper = p.Lines[l].InvestLo, p.Lines[l].InvestUp
			} else {
				b.NetworkInvest.At(pi, l).Fix(0)
			}
		}
	}

	for r := 0; r < rows; r++ {
		for h := 0; h < units; h++ {
			b.TotalOutput.At(r, h).Upper = p.MaxPower.At(r, h)
			b.Output2ndBlock.At(r, h).Upper = p.MaxPower2ndBlock.At(r, h)
			b.ReserveUp.At(r, h).Upper = p.MaxPower2ndBlock.At(r, h)
			b.ReserveDown.At(r, h).Upper = p.MaxPower2ndBlock.At(r, h)
			if !s.NonRES.Has(h) {
				b.Commitment.At(r, h).Fix(0)
				b.StartUp.At(r, h).Fix(0)
				b.ShutDown.At(r, h).Fix(0)
			}
			if !s.ESS.Has(h) {
				for _, f := range []*model.Family{b.EnergyOutflows, b.ESSInventory, b.ESSSpillage,
					b.ESSTotalCharge, b.Charge2ndBlock, b.ESSReserveUp, b.ESSReserveDown} {
					f.At(r, h).Fix(0)
				}
			} else {
				b.EnergyOutflows.At(r, h).Upper = math.Max(p.MaxPower.At(r, h), p.MaxCharge.At(r, h))
				inv := b.ESSInventory.At(r, h)
				inv.Lower, inv.Upper = p.MinStorage.At(r, h), p.MaxStorage.At(r, h)
				b.ESSTotalCharge.At(r, h).Upper = p.MaxCharge.At(r, h)
				b.Charge2ndBlock.At(r, h).Upper = p.MaxCharge2ndBlock.At(r, h)
				b.ESSReserveUp.At(r, h).Upper = p.MaxCharge2ndBlock.At(r, h)
				b.ESSReserveDown.At(r, h).Upper = p.MaxCharge2ndBlock.At(r, h)
			}
			if s.CandidateESS.Has(h) {
				b.EnergyInflows.At(r, h).Upper = p.EnergyInflows.At(r, h)
			} else {
				b.EnergyInflows.At(r, h).Fix(0)
			}
		}
		for n := 0; n < nodes; n++ {
			b.ENS.At(r, n).Upper = math.Max(0, p.Demand.At(r, n))
		}
		for l := 0; l < lines; l++ {
			lp := p.Lines[l]
			if !e.opts.SingleNode {
				flow := b.Flow.At(r, l)
				flow.Lower, flow.Upper = -lp.NTCBck, lp.NTCFrw
			}
			if s.LossyLines.Has(l) {
				b.LineLosses.At(r, l).Upper = lp.MaxLosses
			} else {
				b.LineLosses.At(r, l).Fix(0)
			}
			if !s.RealLines.Has(l) {
				b.Flow.At(r, l).Fix(0)
				b.LineCommit.At(r, l).Fix(0)
				b.LineOnState.At(r, l).Fix(0)
				b.LineOffState.At(r, l).Fix(0)
			}
		}
	}
	for ps := 0; ps < pss; ps++ {
		for h := 0; h < units; h++ {
			if !s.NonRES.Has(h) {
				b.MaxCommitment.At(ps, h).Fix(0)
			}
		}
	}
	return b
}

// applyDecisionModes sets integrality from the global modes and the per-asset
// indicators; a mode of NoDecision removes the decision. NoDecision fixes unit
// and line commitment to 1 (always on) rather than 0.
func (e *engine) applyDecisionModes() {
	s, o, b := e.s, e.opts, e.res.Bounds
	for h, u := range s.Units {
		if s.Candidate.Has(h) {
			setDomain(b.GenerationInvest, h, domainFor(o.GenInvest, u.BinaryInvestment))
			if o.GenInvest == model.NoDecision {
				fixAll(b.GenerationInvest, h, 0)
			}
		}
		if s.Retirement.Has(h) {
			setDomain(b.GenerationRetire, h, domainFor(o.GenRetire, u.BinaryRetirement))
			if o.GenRetire == model.NoDecision {
				fixAll(b.GenerationRetire, h, 0)
			}
		}
		if s.NonRES.Has(h) {
			d := domainFor(o.GenOperat, u.BinaryCommitment)
			for _, f := range []*model.Family{b.Commitment, b.StartUp, b.ShutDown, b.MaxCommitment} {
				setDomain(f, h, d)
			}
			if o.GenOperat == model.NoDecision {
				fixAll(b.Commitment, h, 1)
				fixAll(b.MaxCommitment, h, 1)
				fixAll(b.StartUp, h, 0)
				fixAll(b.ShutDown, h, 0)
			}
		}
	}
	for l, ln := range s.Lines {
		if s.CandidateLines.Has(l) {
			setDomain(b.NetworkInvest, l, domainFor(o.NetInvest, ln.BinaryInvestment))
			if o.NetInvest == model.NoDecision {
				fixAll(b.NetworkInvest, l, 0)
			}
		}
		if !s.RealLines.Has(l) {
			continue
		}
		d := domainFor(o.LineCommit, ln.Switching)
		for _, f := range []*model.Family{b.LineCommit, b.LineOnState, b.LineOffState} {
			setDomain(f, l, d)
		}
		switch {
		case s.ExistingLines.Has(l) && !s.SwitchLines.Has(l):
			fixAll(b.LineCommit, l, 1)
			fixAll(b.LineOnState, l, 0)
			fixAll(b.LineOffState, l, 0)
		case o.LineCommit == model.NoDecision:
			fixAll(b.LineCommit, l, 1)
			fixAll(b.LineOnState, l, 0)
			fixAll(b.LineOffState, l, 0)
		}
	}
}

func setDomain(f *model.Family, col int, d model.Domain) {
	for r := 0; r < f.Rows; r++ {
		f.At(r, col).Domain = d
	}
}

func (e *engine) applyOperatingRules() {
	s, p, b := e.s, e.p, e.res.Bounds
	for row := range s.Steps {
		ps, _ := s.StepParts(row)
		for _, h := range s.Generators.Members() {
			u := s.Units[h]
			out := b.TotalOutput.At(row, h)
			if s.NonRES.Has(h) && u.MustRun {
				out.Lower = p.MinPower.At(row, h)
			}
			if p.MaxPower.At(row, h) == 0 {
				out.Fix(0)
			}
			if p.MaxPower2ndBlock.At(row, h) == 0 {
				b.Output2ndBlock.At(row, h).Fix(0)
				b.ReserveUp.At(row, h).Fix(0)
				b.ReserveDown.At(row, h).Fix(0)
			}
			if u.NoOperatingReserve {
				b.ReserveUp.At(row, h).Fix(0)
				b.ReserveDown.At(row, h).Fix(0)
			}
		}
		for _, h := range s.NonRES.Members() {
			u := s.Units[h]
			always := u.MustRun || s.ESS.Has(h) ||
				(p.MinPower.At(row, h) == 0 && p.Units[h].ConstantVarCost == 0)
			if always && !s.CandidateESS.Has(h) && !s.HasExclusivePartner(h, s.NonRES) {
				b.Commitment.At(row, h).Fix(1)
				b.StartUp.At(row, h).Fix(0)
				b.ShutDown.At(row, h).Fix(0)
				b.MaxCommitment.At(ps, h).Fix(1)
			}
		}
	}
}

func (e *engine) applyStorageRules() {
	s, p, b := e.s, e.p, e.res.Bounds
	for _, es := range s.ESS.Members() {
		noInflow := params.ColumnSum(p.EnergyInflows, es) == 0
		noReserve := s.Units[es].NoOperatingReserve
		for row := range s.Steps {
			if p.MaxCharge.At(row, es) == 0 {
				b.ESSTotalCharge.At(row, es).Fix(0)
				if noInflow {
					b.TotalOutput.At(row, es).Fix(0)
					b.Output2ndBlock.At(row, es).Fix(0)
					b.ReserveUp.At(row, es).Fix(0)
					b.ReserveDown.At(row, es).Fix(0)
					b.ESSSpillage.At(row, es).Fix(0)
				}
			}
			if p.MaxCharge2ndBlock.At(row, es) == 0 || noReserve {
				if p.MaxCharge2ndBlock.At(row, es) == 0 {
					b.Charge2ndBlock.At(row, es).Fix(0)
				}
				b.ESSReserveUp.At(row, es).Fix(0)
				b.ESSReserveDown.At(row, es).Fix(0)
			}
			if p.MaxStorage.At(row, es) == 0 {
				b.ESSInventory.At(row, es).Fix(0)
			}
		}
	}
}

// applyZeroData fixes variables whose driving data is identically zero.
func (e *engine) applyZeroData() {
	s, p, b := e.s, e.p, e.res.Bounds
	for row := range s.Steps {
		for _, ec := range s.CandidateESS.Members() {
			if p.EnergyInflows.At(row, ec) == 0 {
				b.EnergyInflows.At(row, ec).Fix(0)
			}
		}
		for a := range s.Areas {
			up := p.OperatingReserveUp.At(row, a) == 0
			down := p.OperatingReserveDown.At(row, a) == 0
			for _, h := range s.UnitsInArea(s.NonRES, a) {
				if up {
					b.ReserveUp.At(row, h).Fix(0)
				}
				if down {
					b.ReserveDown.At(row, h).Fix(0)
				}
			}
			for _, h := range s.UnitsInArea(s.ESS, a) {
				if up {
					b.ESSReserveUp.At(row, h).Fix(0)
				}
				if down {
					b.ESSReserveDown.At(row, h).Fix(0)
				}
			}
		}
		if !e.opts.SingleNode {
			for _, n := range s.ReferenceNodes {
				b.Theta.At(row, n).Fix(0)
			}
		}
		for n := range s.Nodes {
			if p.Demand.At(row, n) == 0 {
				b.ENS.At(row, n).Fix(0)
			}
		}
	}
	for _, es := range s.ESS.Members() {
		if params.ColumnSum(p.EnergyOutflows, es) == 0 {
			fixAll(b.EnergyOutflows, es, 0)
		}
	}
}

// applyWindows removes assets outside their installation window. Candidates
// keep their operating variables, tied to the investment decision.
func (e *engine) applyWindows() {
	s, b := e.s, e.res.Bounds
	for pi, period := range s.Periods {
		for h, u := range s.Units {
			if !u.InWindow(period) {
				b.GenerationInvest.At(pi, h).Fix(0)
				b.GenerationRetire.At(pi, h).Fix(0)
			}
		}
		for l, ln := range s.Lines {
			if !ln.InWindow(period) {
				b.NetworkInvest.At(pi, l).Fix(0)
			}
		}
	}

	for row := range s.Steps {
		ps, _ := s.StepParts(row)
		period := s.PeriodScenarios[ps].Period
		for h, u := range s.Units {
			if s.Candidate.Has(h) || u.InWindow(period) {
				continue
			}
			b.TotalOutput.At(row, h).Fix(0)
			if s.NonRES.Has(h) {
				for _, f := range []*model.Family{b.Output2ndBlock, b.ReserveUp, b.ReserveDown,
					b.Commitment, b.StartUp, b.ShutDown} {
					f.At(row, h).Fix(0)
				}
				b.MaxCommitment.At(ps, h).Fix(0)
			}
			if s.ESS.Has(h) {
				for _, f := range []*model.Family{b.ESSTotalCharge, b.Charge2ndBlock, b.ESSReserveUp,
					b.ESSReserveDown, b.ESSSpillage, b.ESSInventory, b.EnergyInflows, b.EnergyOutflows} {
					f.At(row, h).Fix(0)
				}
				e.res.IniInventory.Set(row, h, 0)
				e.res.EnergyInflows.Set(row, h, 0)
			}
			e.res.Initial.Output.Set(row, h, 0)
			e.res.Initial.Commit.Set(row, h, 0)
		}
		for l, ln := range s.Lines {
			if s.CandidateLines.Has(l) || ln.InWindow(period) {
				continue
			}
			for _, f := range []*model.Family{b.Flow, b.LineCommit, b.LineOnState, b.LineOffState, b.LineLosses} {
				f.At(row, l).Fix(0)
			}
			e.res.Initial.Switch.Set(row, l, 0)
		}
	}
}

// snapInvestment rounds near-integral investment bounds and keeps lo <= up.
func (e *engine) snapInvestment() {
	for _, f := range []*model.Family{e.res.Bounds.GenerationInvest, e.res.Bounds.GenerationRetire, e.res.Bounds.NetworkInvest} {
		for r := 0; r < f.Rows; r++ {
			for c := 0; c < f.Cols; c++ {
				bd := f.At(r, c)
				if bd.Fixed {
					continue
				}
				bd.Lower = snapUnit(bd.Lower)
				bd.Upper = snapUnit(bd.Upper)
				if bd.Lower > bd.Upper {
					bd.Lower = bd.Upper
				}
			}
		}
	}
}

func snapUnit(v float64) float64 {
	switch {
	case v < InvestEpsilon:
		return 0
	case v > 1-InvestEpsilon:
		return 1
	}
	return v
}
