// Package sample builds a small, self-consistent two-node case used by the
// demo command and by tests.
package sample

import (
	"fmt"

	"expansion-prep/internal/model"
)

const (
	Period   = 2030
	Scenario = "sc01"
	Stage    = "st1"
)

// LevelName is the identifier of the i-th (0-based) load level.
func LevelName(i int) string { return fmt.Sprintf("01-01 %02d:00:00+01:00", i) }

// Case returns a case with the given number of hourly load levels. Demand at
// N1 follows a simple daily shape; N2 is flat.
func Case(levels int) *model.Case {
	names := make([]string, levels)
	lls := make([]model.LoadLevel, levels)
	for i := range names {
		names[i] = LevelName(i)
		lls[i] = model.LoadLevel{ID: names[i], Duration: 1, Stage: Stage}
	}

	units := []model.Unit{
		{
			Name: "CCGT", Node: "N1", Technology: "Gas", BinaryCommitment: true,
			InitialPeriod: 2020, FinalPeriod: 2050, Availability: 1,
			MinimumPower: 100, MaximumPower: 400, LinearTerm: 7, ConstantTerm: 50, FuelCost: 5,
			OMVariableCost: 2, StartUpCost: 0.01, RampUp: 200, RampDown: 200, CO2EmissionRate: 0.35,
			UpTime: 4, DownTime: 4,
		},
		{
			Name: "Coal", Node: "N1", Technology: "Coal", BinaryCommitment: true,
			InitialPeriod: 2020, FinalPeriod: 2050, Availability: 1,
			MinimumPower: 150, MaximumPower: 300, LinearTerm: 9, ConstantTerm: 80, FuelCost: 3,
			OMVariableCost: 3, CO2EmissionRate: 0.9,
		},
		{
			Name: "Solar", Node: "N2", Technology: "Solar",
			InitialPeriod: 2020, FinalPeriod: 2050, Availability: 1,
			MaximumPower: 200,
		},
		{
			Name: "Hydro", Node: "N2", Technology: "Hydro",
			InitialPeriod: 2020, FinalPeriod: 2050, Availability: 1,
			MaximumPower: 100, MaximumCharge: 100, MaximumStorage: 1, InitialStorage: 0.5,
			Efficiency: 0.8, StorageType: "Daily", OutflowsType: "Daily", EnergyType: "Daily",
		},
		{
			Name: "Battery", Node: "N1", Technology: "BESS", BinaryInvestment: true,
			InitialPeriod: 2020, FinalPeriod: 2050, Availability: 1,
			MaximumPower: 50, MaximumCharge: 50, MaximumStorage: 0.2, Efficiency: 0.9,
			StorageType: "Daily", FixedInvestmentCost: 10, FixedChargeRate: 0.08,
		},
	}
	unitNames := make([]string, len(units))
	for i, u := range units {
		unitNames[i] = u.Name
	}

	demand := model.NewSeries([]string{"N1", "N2"})
	for i, n := range names {
		shape := 300 + 10*float64(i%24)
		_ = demand.Append(model.StepKey{Period: Period, Scenario: Scenario, LoadLevel: n}, []float64{shape, 100})
	}

	return &model.Case{
		Name:    "sample",
		Options: model.Options{GenInvest: model.Binary, GenRetire: model.Binary, NetInvest: model.Binary, GenOperat: model.Binary, LineCommit: model.Binary},
		Scalars: model.Scalars{
			ENSCost: 10000, CO2Cost: 50, EconomicBaseYear: 2020, AnnualDiscountRate: 0.04,
			UpReserveActivation: 0.25, DwReserveActivation: 0.3, MinRatioDwUp: 0, MaxRatioDwUp: 1,
			SBase: 100, ReferenceNode: "N1", TimeStep: 1,
		},
		Periods:    []model.Period{{ID: Period, Weight: 1}},
		Scenarios:  []model.ScenarioProbability{{Period: Period, Scenario: Scenario, Probability: 1}},
		Stages:     []model.Stage{{ID: Stage, Weight: 1}},
		LoadLevels: lls,
		Demand:     demand,
		Units:      units,
		Lines: []model.Line{{
			Key:           model.LineKey{From: "N1", To: "N2", Circuit: "eac1"},
			LineType:      "AC",
			Voltage:       400,
			InitialPeriod: 2020, FinalPeriod: 2050,
			LossFactor:     0.01,
			Reactance:      0.01,
			TTC:            500,
			SecurityFactor: 1,
		}},
		NodeLocations: map[string]model.Location{
			"N1": {Latitude: 40.4, Longitude: -3.7},
			"N2": {Latitude: 41.4, Longitude: 2.2},
		},
		Dict: model.Dictionaries{
			Periods:      []int{Period},
			Scenarios:    []string{Scenario},
			Stages:       []string{Stage},
			LoadLevels:   names,
			Units:        unitNames,
			Technologies: []string{"Gas", "Coal", "Solar", "Hydro", "BESS"},
			StorageTypes: []string{"Daily"},
			Nodes:        []string{"N1", "N2"},
			Zones:        []string{"Z1"},
			Areas:        []string{"A1"},
			Regions:      []string{"R1"},
			Circuits:     []string{"eac1"},
			LineTypes:    []string{"AC"},
			NodeToZone:   []model.Pair{{From: "N1", To: "Z1"}, {From: "N2", To: "Z1"}},
			ZoneToArea:   []model.Pair{{From: "Z1", To: "A1"}},
			AreaToRegion: []model.Pair{{From: "A1", To: "R1"}},
		},
	}
}
