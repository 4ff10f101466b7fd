package model

import "fmt"

// LineKey identifies a branch.
type LineKey struct {
	From    string
	To      string
	Circuit string
}

func (k LineKey) String() string { return fmt.Sprintf("%s-%s-%s", k.From, k.To, k.Circuit) }

// Line is one row of the Network relation, in input units.
type Line struct {
	Key LineKey

	LineType            string
	Length              float64
	Voltage             float64
	InitialPeriod       float64
	FinalPeriod         float64
	LossFactor          float64
	Resistance          float64
	Reactance           float64
	Susceptance         float64
	Tap                 float64
	TTC                 float64
	TTCBck              float64
	SecurityFactor      float64
	FixedInvestmentCost float64
	FixedChargeRate     float64
	Switching           bool
	BinaryInvestment    bool
	SwOnTime            float64
	SwOffTime           float64
	AngMin              float64
	AngMax              float64
	InvestmentLo        float64
	InvestmentUp        float64
}

// NTC returns the forward and backward transfer capacities in GW. A zero
// direction takes the value of the other one.
func (l Line) NTC() (frw, bck float64) {
	frw = l.TTC * MWToGW * l.SecurityFactor
	bck = l.TTCBck * MWToGW * l.SecurityFactor
	if bck <= 0 {
		bck = frw
	}
	if frw <= 0 {
		frw = bck
	}
	return frw, bck
}

func (l Line) FixedCost() float64 { return l.FixedInvestmentCost * l.FixedChargeRate }

func (l Line) IsDC() bool { return l.LineType == "DC" }

func (l Line) InWindow(p int) bool {
	return l.InitialPeriod <= float64(p) && l.FinalPeriod >= float64(p)
}

func (l Line) Overlaps(first, last int) bool {
	return l.InitialPeriod <= float64(last) && l.FinalPeriod >= float64(first)
}

// Location is a node's geographic position in degrees.
type Location struct {
	Latitude  float64
	Longitude float64
}
