package feasibility

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expansion-prep/internal/dimension"
	"expansion-prep/internal/model"
	"expansion-prep/internal/params"
	"expansion-prep/internal/sample"
	"expansion-prep/internal/temporal"
	"expansion-prep/internal/warmstart"
)

func input(t *testing.T, c *model.Case) Input {
	t.Helper()
	agg := temporal.Aggregate(c)
	s, _, err := dimension.Build(c, agg.Durations)
	require.NoError(t, err)
	p, err := params.Derive(c, s, agg)
	require.NoError(t, err)
	ws, err := warmstart.Run(s, p, c.Options)
	require.NoError(t, err)
	return Input{Sets: s, Params: p, IniInventory: ws.IniInventory, EnergyInflows: ws.EnergyInflows}
}

func editUnit(c *model.Case, name string, fn func(u *model.Unit)) {
	for i := range c.Units {
		if c.Units[i].Name == name {
			fn(&c.Units[i])
		}
	}
}

func TestSampleCaseIsFeasible(t *testing.T) {
	assert.NoError(t, Check(input(t, sample.Case(48))))
}

func TestMinPowerAboveInflows(t *testing.T) {
	c := sample.Case(24)
	editUnit(c, "Hydro", func(u *model.Unit) { u.MinimumPower = 50 })

	err := Check(input(t, c))
	require.Error(t, err)
	var inf *InfeasibilityError
	require.True(t, errors.As(err, &inf))
	assert.Equal(t, MinPowerAboveInflows, inf.Violations[0].Kind)
	assert.Equal(t, "Hydro", inf.Violations[0].Unit)
	assert.Contains(t, err.Error(), "Hydro")
}

func violationsOf(t *testing.T, err error, kind string) []Violation {
	t.Helper()
	var inf *InfeasibilityError
	require.True(t, errors.As(err, &inf), "got %v", err)
	var out []Violation
	for _, v := range inf.Violations {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

func unitSeries(c *model.Case, unit string, value func(n int) float64) *model.Series {
	s := model.NewSeries([]string{unit})
	for n, ll := range c.LoadLevels {
		_ = s.Append(model.StepKey{Period: sample.Period, Scenario: sample.Scenario, LoadLevel: ll.ID}, []float64{value(n)})
	}
	return s
}

func TestChargeBelowOutflows(t *testing.T) {
	c := sample.Case(24)
	c.EnergyOutflows = unitSeries(c, "Hydro", func(int) float64 { return 200 })

	found := violationsOf(t, Check(input(t, c)), ChargeBelowOutflows)
	require.Len(t, found, 1)
	assert.Equal(t, "Hydro", found[0].Unit)
	assert.Empty(t, found[0].LoadLevel)
	assert.InDelta(t, 2.4, found[0].Value, 1e-9)
	assert.InDelta(t, 4.8, found[0].Limit, 1e-9)
}

func TestEnergyBelowMinimum(t *testing.T) {
	c := sample.Case(48)
	editUnit(c, "Coal", func(u *model.Unit) { u.EnergyType = "Daily" })
	c.VariableMinEnergy = unitSeries(c, "Coal", func(n int) float64 {
		if n >= 24 {
			return 500
		}
		return 0
	})

	found := violationsOf(t, Check(input(t, c)), EnergyBelowMin)
	require.Len(t, found, 1)
	assert.Equal(t, "Coal", found[0].Unit)
	assert.Equal(t, sample.LevelName(47), found[0].LoadLevel)
	assert.InDelta(t, -4.8, found[0].Value, 1e-9)
	assert.Zero(t, found[0].Limit)
}

func TestEnergyWithinMaximumPower(t *testing.T) {
	c := sample.Case(24)
	editUnit(c, "Coal", func(u *model.Unit) { u.EnergyType = "Daily" })
	c.VariableMinEnergy = unitSeries(c, "Coal", func(int) float64 { return 250 })
	assert.NoError(t, Check(input(t, c)))
}

func TestInventoryBelowMinimum(t *testing.T) {
	c := sample.Case(24)
	editUnit(c, "Hydro", func(u *model.Unit) {
		u.MaximumCharge = 0
		u.MinimumStorage = 0.9
		u.InitialStorage = 0
	})

	err := Check(input(t, c))
	var inf *InfeasibilityError
	require.True(t, errors.As(err, &inf))
	var found *Violation
	for i := range inf.Violations {
		if inf.Violations[i].Kind == InventoryBelowMin {
			found = &inf.Violations[i]
			break
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Hydro", found.Unit)
	assert.Equal(t, sample.LevelName(23), found.LoadLevel)
	assert.InDelta(t, 0.9, found.Limit, 1e-12)
}

func TestCheckProbabilities(t *testing.T) {
	c := sample.Case(4)
	c.Scenarios[0].Probability = 0.7
	in := input(t, c)

	err := CheckProbabilities(in.Sets, in.Params, 1e-6)
	var pe *ProbabilityError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, []int{sample.Period}, pe.Periods)
	assert.InDelta(t, 0.7, pe.Sums[0], 1e-12)

	c.Scenarios[0].Probability = 1
	in = input(t, c)
	assert.NoError(t, CheckProbabilities(in.Sets, in.Params, 1e-6))
}

func TestInfeasibilityErrorMessage(t *testing.T) {
	err := &InfeasibilityError{Violations: []Violation{
		{Kind: EnergyBelowMin, Unit: "G1", Period: 2030, Scenario: "sc01", LoadLevel: "n1", Value: -1},
		{Kind: EnergyBelowMin, Unit: "G2"},
	}}
	assert.Equal(t, "infeasible case: energy-below-minimum: G1 at (2030, sc01, n1) (-1 vs 0) (and 1 more)", err.Error())
}
