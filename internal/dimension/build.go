package dimension

import (
	"errors"
	"fmt"

	"expansion-prep/internal/model"
)

// Build derives every index set of c. durations holds the aggregated duration
// of each dictionary load level, in dictionary order; levels with zero
// duration are not active.
func Build(c *model.Case, durations []float64) (*Sets, []Warning, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	if len(durations) != len(c.Dict.LoadLevels) {
		return nil, nil, fmt.Errorf("got %d durations for %d load levels", len(durations), len(c.Dict.LoadLevels))
	}

	d := c.Dict
	s := &Sets{
		AllPeriods:    d.Periods,
		Scenarios:     d.Scenarios,
		AllStages:     d.Stages,
		AllLoadLevels: d.LoadLevels,
		Technologies:  d.Technologies,
		StorageTypes:  d.StorageTypes,
		Nodes:         d.Nodes,
		Zones:         d.Zones,
		Areas:         d.Areas,
		Regions:       d.Regions,
		Circuits:      d.Circuits,
		LineTypes:     d.LineTypes,
	}
	var warnings []Warning

	if err := s.buildCalendar(c, durations); err != nil {
		return nil, nil, err
	}
	s.buildTopology(c)
	if c.Scalars.ReferenceNode != "" && len(s.ReferenceNodes) == 0 {
		warnings = append(warnings, Warning{
			Kind:   MissingReferenceNode,
			Entity: c.Scalars.ReferenceNode,
			Detail: "reference node is not in the node set",
		})
	}
	warnings = append(warnings, s.buildUnits(c)...)
	warnings = append(warnings, s.buildLines(c)...)
	s.buildComposites()
	return s, warnings, nil
}

func (s *Sets) buildCalendar(c *model.Case, durations []float64) error {
	weight := make(map[int]float64, len(c.Periods))
	for _, p := range c.Periods {
		weight[p.ID] = p.Weight
	}
	s.periodIndex = map[int]int{}
	for _, p := range c.Dict.Periods {
		if weight[p] > 0 {
			s.periodIndex[p] = len(s.Periods)
			s.Periods = append(s.Periods, p)
		}
	}
	if len(s.Periods) == 0 {
		return errors.New("no period with positive weight")
	}

	prob := make(map[model.PeriodScenario]float64, len(c.Scenarios))
	for _, sp := range c.Scenarios {
		prob[model.PeriodScenario{Period: sp.Period, Scenario: sp.Scenario}] = sp.Probability
	}
	s.psIndex = map[model.PeriodScenario]int{}
	for _, p := range s.Periods {
		for _, sc := range s.Scenarios {
			ps := model.PeriodScenario{Period: p, Scenario: sc}
			if prob[ps] > 0 {
				s.psIndex[ps] = len(s.PeriodScenarios)
				s.PeriodScenarios = append(s.PeriodScenarios, ps)
			}
		}
	}
	if len(s.PeriodScenarios) == 0 {
		return errors.New("no (period, scenario) pair with positive probability")
	}

	levelStage := make(map[string]string, len(c.LoadLevels))
	for _, ll := range c.LoadLevels {
		levelStage[ll.ID] = ll.Stage
	}
	s.levelIndex = map[string]int{}
	for i, n := range c.Dict.LoadLevels {
		if durations[i] > 0 {
			s.levelIndex[n] = len(s.LoadLevels)
			s.LoadLevels = append(s.LoadLevels, n)
		}
	}
	if len(s.LoadLevels) == 0 {
		return errors.New("no load level with positive duration")
	}

	stageWeight := make(map[string]float64, len(c.Stages))
	for _, st := range c.Stages {
		stageWeight[st.ID] = st.Weight
	}
	stageIndex := map[string]int{}
	for _, st := range c.Dict.Stages {
		if stageWeight[st] <= 0 {
			continue
		}
		var levels []int
		for i, n := range s.LoadLevels {
			if levelStage[n] == st {
				levels = append(levels, i)
			}
		}
		if len(levels) == 0 {
			continue
		}
		stageIndex[st] = len(s.Stages)
		s.Stages = append(s.Stages, st)
		s.StageLevels = append(s.StageLevels, levels)
	}
	s.LevelStage = make([]int, len(s.LoadLevels))
	for i, n := range s.LoadLevels {
		if st, ok := stageIndex[levelStage[n]]; ok {
			s.LevelStage[i] = st
		} else {
			s.LevelStage[i] = -1
		}
	}

	s.Steps = make([]model.StepKey, 0, len(s.PeriodScenarios)*len(s.LoadLevels))
	for _, ps := range s.PeriodScenarios {
		for _, n := range s.LoadLevels {
			s.Steps = append(s.Steps, model.StepKey{Period: ps.Period, Scenario: ps.Scenario, LoadLevel: n})
		}
	}
	return nil
}

func (s *Sets) buildTopology(c *model.Case) {
	s.nodeIndex = indexOf(s.Nodes)
	s.areaIndex = indexOf(s.Areas)
	zoneIndex := indexOf(s.Zones)
	regionIndex := indexOf(s.Regions)

	zoneArea := make([]int, len(s.Zones))
	for i := range zoneArea {
		zoneArea[i] = -1
	}
	for _, p := range c.Dict.ZoneToArea {
		z, zok := zoneIndex[p.From]
		a, aok := s.areaIndex[p.To]
		if zok && aok && zoneArea[z] < 0 {
			zoneArea[z] = a
		}
	}
	s.AreaRegion = make([]int, len(s.Areas))
	for i := range s.AreaRegion {
		s.AreaRegion[i] = -1
	}
	for _, p := range c.Dict.AreaToRegion {
		a, aok := s.areaIndex[p.From]
		r, rok := regionIndex[p.To]
		if aok && rok && s.AreaRegion[a] < 0 {
			s.AreaRegion[a] = r
		}
	}

	s.NodeZone = make([]int, len(s.Nodes))
	s.NodeArea = make([]int, len(s.Nodes))
	for i := range s.Nodes {
		s.NodeZone[i] = -1
		s.NodeArea[i] = -1
	}
	for _, p := range c.Dict.NodeToZone {
		n, nok := s.nodeIndex[p.From]
		z, zok := zoneIndex[p.To]
		if nok && zok && s.NodeZone[n] < 0 {
			s.NodeZone[n] = z
			s.NodeArea[n] = zoneArea[z]
		}
	}
	s.AreaNodes = make([][]int, len(s.Areas))
	for n, a := range s.NodeArea {
		if a >= 0 {
			s.AreaNodes[a] = append(s.AreaNodes[a], n)
		}
	}

	for i, nd := range s.Nodes {
		if nd == c.Scalars.ReferenceNode {
			s.ReferenceNodes = append(s.ReferenceNodes, i)
		}
	}
}

func (s *Sets) buildUnits(c *model.Case) []Warning {
	var warnings []Warning
	byName := c.UnitByName()
	s.unitIndex = indexOf(c.Dict.Units)
	s.Units = make([]model.Unit, len(c.Dict.Units))
	for h, name := range c.Dict.Units {
		u, ok := byName[name]
		if !ok {
			u = model.Unit{Name: name}
		}
		s.Units[h] = u
	}
	for _, u := range c.Units {
		if _, ok := s.unitIndex[u.Name]; !ok {
			warnings = append(warnings, Warning{Kind: UnlistedUnit, Entity: u.Name, Detail: "unit is missing from the generation dictionary"})
		}
	}

	first, last := s.Periods[0], s.Periods[len(s.Periods)-1]
	n := len(s.Units)
	s.UnitNode = make([]int, n)
	s.UnitZone = make([]int, n)
	s.UnitArea = make([]int, n)
	s.UnitRegion = make([]int, n)
	for h, u := range s.Units {
		s.UnitNode[h], s.UnitZone[h], s.UnitArea[h], s.UnitRegion[h] = -1, -1, -1, -1
		nd, ok := s.nodeIndex[u.Node]
		if !ok {
			if u.RatedMaxPower() > 0 || u.RatedMaxCharge() > 0 {
				warnings = append(warnings, Warning{Kind: UnknownUnitNode, Entity: u.Name, Detail: fmt.Sprintf("node %q is not in the node set", u.Node)})
			}
			continue
		}
		s.UnitNode[h] = nd
		s.UnitZone[h] = s.NodeZone[nd]
		s.UnitArea[h] = s.NodeArea[nd]
		if a := s.NodeArea[nd]; a >= 0 {
			s.UnitRegion[h] = s.AreaRegion[a]
		}
	}

	co2 := c.Scalars.CO2Cost
	s.Generators = newSubset(n, func(h int) bool {
		u := s.Units[h]
		return (u.RatedMaxPower() > 0 || u.RatedMaxCharge() > 0) && u.Overlaps(first, last) && s.UnitNode[h] >= 0
	})
	g := s.Generators
	s.Thermal = newSubset(n, func(h int) bool { return g.Has(h) && s.Units[h].LinearOperCost(co2) > 0 })
	s.RES = newSubset(n, func(h int) bool {
		return g.Has(h) && s.Units[h].LinearOperCost(co2) == 0 && s.Units[h].MaximumStorage == 0
	})
	s.ESS = newSubset(n, func(h int) bool {
		return g.Has(h) && (s.Units[h].MaximumStorage > 0 || s.Units[h].RatedMaxCharge() > 0)
	})
	s.Candidate = newSubset(n, func(h int) bool { return g.Has(h) && s.Units[h].InvestCost() > 0 })
	s.Retirement = newSubset(n, func(h int) bool { return g.Has(h) && s.Units[h].RetireCost() != 0 })
	s.CandidateESS = s.ESS.Intersect(s.Candidate)
	s.NonRES = g.Minus(s.RES)
	s.Reactive = newSubset(n, func(h int) bool {
		return s.Units[h].MaximumReactivePower > 0 && s.Units[h].Overlaps(first, last)
	})
	s.SynchronousCondensers = newSubset(n, func(h int) bool {
		return s.Reactive.Has(h) && s.Units[h].Technology == SynchronousCondenser
	})
	s.ReactiveThermal = s.Reactive.Minus(s.SynchronousCondensers)

	s.TechnologyUnits = map[string][]int{}
	for _, h := range g.Members() {
		t := s.Units[h].Technology
		s.TechnologyUnits[t] = append(s.TechnologyUnits[t], h)
	}
	for _, t := range s.Technologies {
		var hasESS, hasRES bool
		for _, h := range s.TechnologyUnits[t] {
			hasESS = hasESS || s.ESS.Has(h)
			hasRES = hasRES || s.RES.Has(h)
		}
		if hasESS {
			s.ESSTechnologies = append(s.ESSTechnologies, t)
		}
		if hasRES {
			s.RESTechnologies = append(s.RESTechnologies, t)
		}
	}

	for _, h := range g.Members() {
		partner := s.Units[h].MutuallyExclusive
		if partner == "" || partner == "0" {
			continue
		}
		if ph, ok := s.unitIndex[partner]; ok {
			s.ExclusivePairs = append(s.ExclusivePairs, [2]int{ph, h})
		}
	}
	return warnings
}

func (s *Sets) buildLines(c *model.Case) []Warning {
	var warnings []Warning
	s.Lines = append([]model.Line(nil), c.Lines...)
	s.lineIndex = make(map[model.LineKey]int, len(s.Lines))
	for h, l := range s.Lines {
		s.lineIndex[l.Key] = h
	}
	first, last := s.Periods[0], s.Periods[len(s.Periods)-1]
	known := make([]bool, len(s.Lines))
	for h, l := range s.Lines {
		_, fok := s.nodeIndex[l.Key.From]
		_, tok := s.nodeIndex[l.Key.To]
		known[h] = fok && tok
		if !known[h] {
			warnings = append(warnings, Warning{Kind: UnknownLineNode, Entity: l.Key.String(), Detail: "line endpoint is not in the node set"})
		}
	}

	n := len(s.Lines)
	s.RealLines = newSubset(n, func(h int) bool {
		l := s.Lines[h]
		frw, bck := l.NTC()
		return known[h] && l.Reactance != 0 && frw > 0 && bck > 0 && l.Overlaps(first, last)
	})
	la := s.RealLines
	s.SwitchLines = newSubset(n, func(h int) bool { return la.Has(h) && s.Lines[h].Switching })
	s.CandidateLines = newSubset(n, func(h int) bool { return la.Has(h) && s.Lines[h].FixedCost() > 0 })
	s.ExistingLines = la.Minus(s.CandidateLines)
	s.CandidateDC = newSubset(n, func(h int) bool { return s.CandidateLines.Has(h) && s.Lines[h].IsDC() })
	s.ExistingDC = newSubset(n, func(h int) bool { return la.Has(h) && s.Lines[h].FixedCost() == 0 && s.Lines[h].IsDC() })
	s.LossyLines = newSubset(n, func(h int) bool {
		return la.Has(h) && s.Lines[h].LossFactor > 0 && c.Options.NetLosses
	})
	flexible := func(h int) bool { return s.Lines[h].Switching || s.Lines[h].FixedCost() > 0 }
	s.ExistingAC = newSubset(n, func(h int) bool { return s.ExistingLines.Has(h) && !s.Lines[h].Switching && !s.Lines[h].IsDC() })
	s.FlexibleAC = newSubset(n, func(h int) bool { return la.Has(h) && flexible(h) && !s.Lines[h].IsDC() })
	s.ExistingDCLine = newSubset(n, func(h int) bool { return s.ExistingLines.Has(h) && !s.Lines[h].Switching && s.Lines[h].IsDC() })
	s.FlexibleDC = newSubset(n, func(h int) bool { return la.Has(h) && flexible(h) && s.Lines[h].IsDC() })

	s.LineArea = make([]int, n)
	for h, l := range s.Lines {
		s.LineArea[h] = -1
		if !la.Has(h) {
			continue
		}
		from, to := s.NodeArea[s.nodeIndex[l.Key.From]], s.NodeArea[s.nodeIndex[l.Key.To]]
		if from >= 0 && from == to {
			s.LineArea[h] = from
		}
	}
	return warnings
}

func (s *Sets) buildComposites() {
	for p := range s.Periods {
		for _, h := range s.Candidate.Members() {
			s.PeriodCandidates = append(s.PeriodCandidates, PeriodHandle{Period: p, Handle: h})
		}
		for _, h := range s.Retirement.Members() {
			s.PeriodRetirements = append(s.PeriodRetirements, PeriodHandle{Period: p, Handle: h})
		}
		for _, h := range s.CandidateLines.Members() {
			s.PeriodCandidateLines = append(s.PeriodCandidateLines, PeriodHandle{Period: p, Handle: h})
		}
	}
}

func indexOf(names []string) map[string]int {
	out := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := out[n]; !dup {
			out[n] = i
		}
	}
	return out
}
