package model

import "errors"

// Pair is one row of a two-column membership relation (node to zone, ...).
type Pair struct {
	From string
	To   string
}

// Dictionaries holds the membership relations that enumerate identifiers.
type Dictionaries struct {
	Periods      []int
	Scenarios    []string
	Stages       []string
	LoadLevels   []string
	Units        []string
	Technologies []string
	StorageTypes []string
	Nodes        []string
	Zones        []string
	Areas        []string
	Regions      []string
	Circuits     []string
	LineTypes    []string

	NodeToZone   []Pair
	ZoneToArea   []Pair
	AreaToRegion []Pair
}

// Case bundles every raw relation of one study. Series columns are nodes for
// Demand, areas for Inertia and reserves, and units for the rest.
type Case struct {
	Name string

	Options Options
	Scalars Scalars

	Periods    []Period
	Scenarios  []ScenarioProbability
	Stages     []Stage
	LoadLevels []LoadLevel

	ReserveMargin map[string]float64

	Demand               *Series
	Inertia              *Series
	OperatingReserveUp   *Series
	OperatingReserveDown *Series
	VariableMinPower     *Series
	VariableMaxPower     *Series
	VariableMinCharge    *Series
	VariableMaxCharge    *Series
	VariableMinStorage   *Series
	VariableMaxStorage   *Series
	VariableMinEnergy    *Series
	VariableMaxEnergy    *Series
	EnergyInflows        *Series
	EnergyOutflows       *Series

	Units         []Unit
	Lines         []Line
	NodeLocations map[string]Location

	Dict Dictionaries
}

func (c *Case) Validate() error {
	if c == nil {
		return errors.New("case is nil")
	}
	if err := c.Options.Validate(); err != nil {
		return err
	}
	if err := c.Scalars.Validate(); err != nil {
		return err
	}
	if len(c.Dict.Periods) == 0 {
		return errors.New("no periods in dictionary")
	}
	if len(c.Dict.LoadLevels) == 0 {
		return errors.New("no load levels in dictionary")
	}
	if c.Demand == nil {
		return errors.New("demand series is required")
	}
	return nil
}

// UnitByName indexes the Generation relation.
func (c *Case) UnitByName() map[string]Unit {
	out := make(map[string]Unit, len(c.Units))
	for _, u := range c.Units {
		out[u.Name] = u
	}
	return out
}
