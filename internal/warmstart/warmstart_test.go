package warmstart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expansion-prep/internal/dimension"
	"expansion-prep/internal/model"
	"expansion-prep/internal/params"
	"expansion-prep/internal/sample"
	"expansion-prep/internal/temporal"
)

func prepare(t *testing.T, c *model.Case) (*dimension.Sets, *params.Parameters, *Result) {
	t.Helper()
	agg := temporal.Aggregate(c)
	s, _, err := dimension.Build(c, agg.Durations)
	require.NoError(t, err)
	p, err := params.Derive(c, s, agg)
	require.NoError(t, err)
	res, err := Run(s, p, c.Options)
	require.NoError(t, err)
	return s, p, res
}

func twoThermalCase() *model.Case {
	c := sample.Case(4)
	c.Units = []model.Unit{
		{Name: "A", Node: "N1", InitialPeriod: 2020, FinalPeriod: 2050, MinimumPower: 500, MaximumPower: 1000, LinearTerm: 10, FuelCost: 1, ConstantTerm: 1},
		{Name: "B", Node: "N1", InitialPeriod: 2020, FinalPeriod: 2050, MinimumPower: 500, MaximumPower: 1000, LinearTerm: 20, FuelCost: 1, ConstantTerm: 1},
	}
	c.Dict.Units = []string{"B", "A"}
	demand := model.NewSeries([]string{"N1", "N2"})
	for i := 0; i < 4; i++ {
		_ = demand.Append(model.StepKey{Period: sample.Period, Scenario: sample.Scenario, LoadLevel: sample.LevelName(i)}, []float64{1, 0})
	}
	c.Demand = demand
	return c
}

func TestMeritOrder(t *testing.T) {
	c := twoThermalCase()
	s, p, res := prepare(t, c)

	a, _ := s.UnitHandle("A")
	b, _ := s.UnitHandle("B")
	assert.Equal(t, []int{a, b}, MeritOrder(s, p))

	first := s.Step(0, 0)
	assert.Equal(t, 1.0, res.Initial.Commit.At(first, a))
	assert.Zero(t, res.Initial.Commit.At(first, b))
	assert.InDelta(t, 0.5, res.Initial.Output.At(first, a), 1e-12)
	assert.Zero(t, res.Initial.Output.At(first, b))

	for n := 1; n < len(s.LoadLevels); n++ {
		row := s.Step(0, n)
		assert.Zero(t, res.Initial.Commit.At(row, a), "level %d", n)
		assert.Zero(t, res.Initial.Output.At(row, a), "level %d", n)
	}
}

func TestInitialStatePerStage(t *testing.T) {
	c := twoThermalCase()
	c.Stages = append(c.Stages, model.Stage{ID: "st2", Weight: 1})
	c.Dict.Stages = append(c.Dict.Stages, "st2")
	c.LoadLevels[2].Stage = "st2"
	c.LoadLevels[3].Stage = "st2"
	s, _, res := prepare(t, c)
	require.Equal(t, [][]int{{0, 1}, {2, 3}}, s.StageLevels)

	a, _ := s.UnitHandle("A")
	want := map[int]float64{0: 1, 1: 0, 2: 1, 3: 0}
	for n, commit := range want {
		row := s.Step(0, n)
		assert.Equal(t, commit, res.Initial.Commit.At(row, a), "level %d", n)
		assert.InDelta(t, commit*0.5, res.Initial.Output.At(row, a), 1e-12, "level %d", n)
		assert.Equal(t, commit, res.Initial.Switch.At(row, 0), "level %d", n)
	}
}

func TestMustRunDispatchedFirst(t *testing.T) {
	c := twoThermalCase()
	c.Units[1].MustRun = true
	s, p, res := prepare(t, c)

	a, _ := s.UnitHandle("A")
	b, _ := s.UnitHandle("B")
	first := s.Step(0, 0)
	assert.Equal(t, 1.0, res.Initial.Commit.At(first, b))
	assert.InDelta(t, p.MaxPower.At(first, b), res.Initial.Output.At(first, b), 1e-12)
	assert.Positive(t, res.Initial.Output.At(first, b))
	assert.Zero(t, res.Initial.Commit.At(first, a))
	assert.Zero(t, res.Initial.Output.At(first, a))
}

func TestCandidateLinesStartOpen(t *testing.T) {
	c := sample.Case(4)
	cand := c.Lines[0]
	cand.Key.Circuit = "cand"
	cand.FixedInvestmentCost, cand.FixedChargeRate = 100, 0.1
	c.Lines = append(c.Lines, cand)
	c.Dict.Circuits = append(c.Dict.Circuits, "cand")
	s, _, res := prepare(t, c)

	existing, ok := s.LineHandle(c.Lines[0].Key)
	require.True(t, ok)
	candidate, ok := s.LineHandle(cand.Key)
	require.True(t, ok)
	require.True(t, s.CandidateLines.Has(candidate))

	first := s.Step(0, 0)
	assert.Equal(t, 1.0, res.Initial.Switch.At(first, existing))
	assert.Zero(t, res.Initial.Switch.At(first, candidate))
}

func TestMeritOrderSampleCase(t *testing.T) {
	s, p, _ := prepare(t, sample.Case(24))
	names := make([]string, 0, len(s.Units))
	for _, h := range MeritOrder(s, p) {
		names = append(names, s.Units[h].Name)
	}
	assert.Equal(t, []string{"Solar", "Hydro", "Battery", "Coal", "CCGT"}, names)
}

func TestDailyCycleFixing(t *testing.T) {
	s, _, res := prepare(t, sample.Case(48))
	hydro, _ := s.UnitHandle("Hydro")
	inv := res.Bounds.ESSInventory

	for _, n := range []int{23, 47} {
		b := inv.At(s.Step(0, n), hydro)
		assert.True(t, b.Fixed, "level %d", n)
		assert.Equal(t, 0.5, b.Value)
	}
	for _, n := range []int{0, 10, 24, 46} {
		assert.False(t, inv.At(s.Step(0, n), hydro).Fixed, "level %d", n)
	}
}

func TestBoundRules(t *testing.T) {
	c := sample.Case(24)
	s, p, res := prepare(t, c)
	b := res.Bounds

	ccgt, _ := s.UnitHandle("CCGT")
	hydro, _ := s.UnitHandle("Hydro")
	battery, _ := s.UnitHandle("Battery")
	solar, _ := s.UnitHandle("Solar")

	t.Run("domains", func(t *testing.T) {
		assert.Equal(t, model.BinaryDomain, b.Commitment.At(0, ccgt).Domain)
		assert.Equal(t, model.BinaryDomain, b.GenerationInvest.At(0, battery).Domain)
		assert.True(t, b.GenerationInvest.At(0, ccgt).Fixed)
	})
	t.Run("storage commitment fixed", func(t *testing.T) {
		assert.True(t, b.Commitment.At(0, hydro).Fixed)
		assert.Equal(t, 1.0, b.Commitment.At(0, hydro).Value)
		assert.False(t, b.Commitment.At(0, battery).Fixed)
		assert.True(t, b.Commitment.At(0, solar).Fixed)
	})
	t.Run("output band", func(t *testing.T) {
		out := b.TotalOutput.At(3, ccgt)
		assert.Zero(t, out.Lower)
		assert.Equal(t, p.MaxPower.At(3, ccgt), out.Upper)
	})
	t.Run("candidate storage without inflows", func(t *testing.T) {
		assert.True(t, b.EnergyInflows.At(0, battery).Fixed)
		assert.True(t, b.EnergyOutflows.At(0, hydro).Fixed)
	})
	t.Run("network", func(t *testing.T) {
		assert.True(t, b.LineCommit.At(0, 0).Fixed)
		assert.Equal(t, 1.0, b.LineCommit.At(0, 0).Value)
		assert.InDelta(t, -0.5, b.Flow.At(0, 0).Lower, 1e-12)
		assert.InDelta(t, 0.5, b.Flow.At(0, 0).Upper, 1e-12)
		ref, _ := s.NodeHandle("N1")
		assert.True(t, b.Theta.At(0, ref).Fixed)
		assert.Equal(t, 1.0, res.Initial.Switch.At(0, 0))
	})
	t.Run("unserved energy", func(t *testing.T) {
		n2, _ := s.NodeHandle("N2")
		assert.InDelta(t, 0.1, b.ENS.At(0, n2).Upper, 1e-12)
	})
	t.Run("reserves without requirement", func(t *testing.T) {
		assert.True(t, b.ReserveUp.At(0, ccgt).Fixed)
		assert.True(t, b.ESSReserveDown.At(0, hydro).Fixed)
	})
}

func TestNoOperatingDecision(t *testing.T) {
	c := sample.Case(4)
	c.Options.GenOperat = model.NoDecision
	s, _, res := prepare(t, c)
	coal, _ := s.UnitHandle("Coal")
	for row := range s.Steps {
		assert.Equal(t, 1.0, res.Bounds.Commitment.At(row, coal).Value)
		assert.Zero(t, res.Bounds.StartUp.At(row, coal).Value)
		assert.True(t, res.Bounds.StartUp.At(row, coal).Fixed)
	}
}

func TestNoLineCommitDecision(t *testing.T) {
	c := sample.Case(4)
	c.Options.LineCommit = model.NoDecision
	s, _, res := prepare(t, c)
	for row := range s.Steps {
		lc := res.Bounds.LineCommit.At(row, 0)
		assert.True(t, lc.Fixed)
		assert.Equal(t, 1.0, lc.Value)
	}
}

func TestOutsideInstallationWindow(t *testing.T) {
	c := sample.Case(4)
	c.Periods = append(c.Periods, model.Period{ID: 2040, Weight: 1})
	c.Scenarios = append(c.Scenarios, model.ScenarioProbability{Period: 2040, Scenario: sample.Scenario, Probability: 1})
	c.Dict.Periods = append(c.Dict.Periods, 2040)
	for i := 0; i < 4; i++ {
		_ = c.Demand.Append(model.StepKey{Period: 2040, Scenario: sample.Scenario, LoadLevel: sample.LevelName(i)}, []float64{300, 100})
	}
	for i := range c.Units {
		if c.Units[i].Name == "Coal" || c.Units[i].Name == "Hydro" {
			c.Units[i].FinalPeriod = 2035
		}
	}

	s, _, res := prepare(t, c)
	coal, _ := s.UnitHandle("Coal")
	hydro, _ := s.UnitHandle("Hydro")
	ps, ok := s.ScenarioIndex(model.PeriodScenario{Period: 2040, Scenario: sample.Scenario})
	require.True(t, ok)

	row := s.Step(ps, 0)
	assert.True(t, res.Bounds.TotalOutput.At(row, coal).Fixed)
	assert.True(t, res.Bounds.Commitment.At(row, coal).Fixed)
	assert.Zero(t, res.Bounds.Commitment.At(row, coal).Value)
	assert.True(t, res.Bounds.MaxCommitment.At(ps, coal).Fixed)
	assert.Zero(t, res.IniInventory.At(row, hydro))
	assert.True(t, res.Bounds.ESSInventory.At(row, hydro).Fixed)

	assert.False(t, res.Bounds.TotalOutput.At(s.Step(0, 0), coal).Fixed)
	assert.Equal(t, 0.5, res.IniInventory.At(s.Step(0, 0), hydro))
}

func TestRunRejectsNil(t *testing.T) {
	_, err := Run(nil, nil, model.Options{})
	assert.Error(t, err)
}
