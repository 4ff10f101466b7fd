package model

// MWToGW converts input powers and energies to model units.
const MWToGW = 1e-3

// Unit is one row of the Generation relation, in input units
// (MW, MWh storage given in GWh, EUR).
type Unit struct {
	Name              string
	Node              string
	Technology        string
	MutuallyExclusive string

	BinaryInvestment   bool
	BinaryRetirement   bool
	BinaryCommitment   bool
	StorageInvestment  bool
	NoOperatingReserve bool
	MustRun            bool

	Inertia       float64
	InitialPeriod float64
	FinalPeriod   float64
	Availability  float64
	EFOR          float64

	MinimumPower    float64
	MaximumPower    float64
	LinearTerm      float64
	ConstantTerm    float64
	FuelCost        float64
	OMVariableCost  float64
	OperReserveCost float64
	StartUpCost     float64
	ShutDownCost    float64
	RampUp          float64
	RampDown        float64
	CO2EmissionRate float64

	UpTime    float64
	DownTime  float64
	ShiftTime float64

	FixedInvestmentCost float64
	FixedRetirementCost float64
	FixedChargeRate     float64

	MinimumCharge  float64
	MaximumCharge  float64
	MinimumStorage float64
	MaximumStorage float64
	InitialStorage float64
	Efficiency     float64
	StorageType    string
	OutflowsType   string
	EnergyType     string

	MaximumReactivePower float64

	InvestmentLo float64
	InvestmentUp float64
	RetirementLo float64
	RetirementUp float64
}

// RatedMinPower is the derated minimum output in GW.
func (u Unit) RatedMinPower() float64 { return u.MinimumPower * MWToGW * (1 - u.EFOR) }

// RatedMaxPower is the derated maximum output in GW.
func (u Unit) RatedMaxPower() float64 { return u.MaximumPower * MWToGW * (1 - u.EFOR) }

func (u Unit) RatedMinCharge() float64 { return u.MinimumCharge * MWToGW }

func (u Unit) RatedMaxCharge() float64 { return u.MaximumCharge * MWToGW }

// LinearFuelCost is in MEUR/GWh.
func (u Unit) LinearFuelCost() float64 { return u.LinearTerm * 1e-3 * u.FuelCost }

func (u Unit) LinearOMCost() float64 { return u.OMVariableCost * 1e-3 }

func (u Unit) CO2EmissionCost(co2Cost float64) float64 { return u.CO2EmissionRate * 1e-3 * co2Cost }

// LinearOperCost drives the thermal classification.
func (u Unit) LinearOperCost(co2Cost float64) float64 {
	return u.LinearFuelCost() + u.CO2EmissionCost(co2Cost)
}

// LinearVarCost is the merit order key.
func (u Unit) LinearVarCost() float64 { return u.LinearFuelCost() + u.LinearOMCost() }

// ConstantVarCost is in MEUR/h.
func (u Unit) ConstantVarCost() float64 { return u.ConstantTerm * 1e-6 * u.FuelCost }

func (u Unit) InvestCost() float64 { return u.FixedInvestmentCost * u.FixedChargeRate }

func (u Unit) RetireCost() float64 { return u.FixedRetirementCost * u.FixedChargeRate }

// InWindow reports whether the unit exists in period p.
func (u Unit) InWindow(p int) bool {
	return u.InitialPeriod <= float64(p) && u.FinalPeriod >= float64(p)
}

// Overlaps reports whether the installation window meets [first, last].
func (u Unit) Overlaps(first, last int) bool {
	return u.InitialPeriod <= float64(last) && u.FinalPeriod >= float64(first)
}
