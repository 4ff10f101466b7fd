package model

import (
	"errors"
	"fmt"
)

// DecisionMode is the three-valued setting of a decision category.
type DecisionMode int

const (
	// Continuous relaxes the decision to the unit interval.
	Continuous DecisionMode = 0
	// Binary keeps the decision integral.
	Binary DecisionMode = 1
	// NoDecision removes the decision: the variable is fixed.
	NoDecision DecisionMode = 2
)

func (m DecisionMode) String() string {
	switch m {
	case Continuous:
		return "continuous"
	case Binary:
		return "binary"
	case NoDecision:
		return "none"
	default:
		return fmt.Sprintf("DecisionMode(%d)", int(m))
	}
}

func (m DecisionMode) Valid() bool {
	return m == Continuous || m == Binary || m == NoDecision
}

// Options is the global Option relation.
type Options struct {
	GenInvest  DecisionMode
	GenRetire  DecisionMode
	NetInvest  DecisionMode
	GenOperat  DecisionMode
	LineCommit DecisionMode

	SingleNode bool
	GenRamps   bool
	GenMinTime bool
	NetLosses  bool
}

func (o Options) Validate() error {
	modes := []struct {
		name string
		m    DecisionMode
	}{
		{"IndBinGenInvest", o.GenInvest},
		{"IndBinGenRetirement", o.GenRetire},
		{"IndBinNetInvest", o.NetInvest},
		{"IndBinGenOperat", o.GenOperat},
		{"IndBinLineCommit", o.LineCommit},
	}
	for _, x := range modes {
		if !x.m.Valid() {
			return fmt.Errorf("%s must be 0, 1 or 2, got %d", x.name, int(x.m))
		}
	}
	return nil
}

// Scalars is the global Parameter relation, in input units.
// ENSCost is in EUR/MWh, CO2Cost in EUR/tCO2, SBase in MW, TimeStep in hours.
type Scalars struct {
	ENSCost             float64
	CO2Cost             float64
	EconomicBaseYear    float64
	AnnualDiscountRate  float64
	UpReserveActivation float64
	DwReserveActivation float64
	MinRatioDwUp        float64
	MaxRatioDwUp        float64
	SBase               float64
	ReferenceNode       string
	TimeStep            int
}

func (s Scalars) Validate() error {
	if s.TimeStep < 1 {
		return errors.New("TimeStep must be >= 1")
	}
	if s.AnnualDiscountRate < 0 {
		return errors.New("AnnualDiscountRate must be >= 0")
	}
	return nil
}
