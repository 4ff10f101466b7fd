// Package params derives every numeric parameter the warm start and the
// optimizer consume. All powers are in GW, energies in GWh and costs in MEUR.
package params

import (
	"errors"
	"math"

	"expansion-prep/internal/dimension"
	"expansion-prep/internal/model"
	"expansion-prep/internal/temporal"
)

const (
	// AreaEpsilonFactor scales an area's peak demand into its noise threshold.
	AreaEpsilonFactor = 2.5e-5
	// CostEpsilon is the smallest cost kept as non-zero.
	CostEpsilon = 1e-4
	// BigMFlexibleFactor widens the disjunctive bound of candidate and switchable lines.
	BigMFlexibleFactor = 1.5
)

// UnitParams holds the static parameters of one unit.
type UnitParams struct {
	RatedMinPower   float64
	RatedMaxPower   float64
	RatedMinCharge  float64
	RatedMaxCharge  float64
	RatedMinStorage float64
	RatedMaxStorage float64

	LinearOperCost  float64
	LinearVarCost   float64
	LinearOMCost    float64
	ConstantVarCost float64
	OperReserveCost float64
	CO2EmissionCost float64
	StartUpCost     float64
	ShutDownCost    float64
	CO2EmissionRate float64
	InvestCost      float64
	RetireCost      float64

	RampUp           float64
	RampDown         float64
	Inertia          float64
	Availability     float64
	Efficiency       float64
	InitialInventory float64
	MaxReactivePower float64

	UpTime    int
	DownTime  int
	ShiftTime int

	// CycleSteps anchors inventory to its initial value; InventoryWindow is the
	// shortest of the cycle, outflow and energy windows.
	CycleSteps      int
	OutflowSteps    int
	EnergySteps     int
	InventoryWindow int

	InvestLo float64
	InvestUp float64
	RetireLo float64
	RetireUp float64
}

// LineParams holds the static parameters of one line.
type LineParams struct {
	NTCFrw    float64
	NTCBck    float64
	BigMFrw   float64
	BigMBck   float64
	Length    float64
	FixedCost float64
	SwOnTime  int
	SwOffTime int
	AngMin    float64
	AngMax    float64
	InvestLo  float64
	InvestUp  float64
	MaxLosses float64

	LossFactor  float64
	Resistance  float64
	Reactance   float64
	Susceptance float64
	Tap         float64
	Voltage     float64
}

// Parameters is the derived parameter table. Matrices are indexed by
// (row of Sets.Steps, node/area/unit handle).
type Parameters struct {
	ENSCost             float64
	CO2Cost             float64
	AnnualDiscountRate  float64
	EconomicBaseYear    float64
	UpReserveActivation float64
	DwReserveActivation float64
	MinRatioDwUp        float64
	MaxRatioDwUp        float64
	SBase               float64
	TimeStep            int
	MaxTheta            float64

	PeriodWeight        []float64
	DiscountFactor      []float64
	ScenarioProbability []float64
	PeriodProbability   []float64
	StageWeight         []float64
	Duration            []float64
	LoadLevelWeight     []float64
	LoadLevelDuration   []float64
	ReserveMargin       []float64
	PeakDemand          []float64
	AreaEpsilon         []float64

	Demand    *model.Matrix
	DemandPos *model.Matrix
	DemandNeg *model.Matrix

	SystemInertia        *model.Matrix
	OperatingReserveUp   *model.Matrix
	OperatingReserveDown *model.Matrix

	MinPower          *model.Matrix
	MaxPower          *model.Matrix
	MaxPower2ndBlock  *model.Matrix
	MinCharge         *model.Matrix
	MaxCharge         *model.Matrix
	MaxCharge2ndBlock *model.Matrix
	MinStorage        *model.Matrix
	MaxStorage        *model.Matrix
	MinEnergy         *model.Matrix
	MaxEnergy         *model.Matrix
	EnergyInflows     *model.Matrix
	EnergyOutflows    *model.Matrix
	IniInventory      *model.Matrix

	Units []UnitParams
	Lines []LineParams
}

// Derive builds the parameter table from the raw case, its index sets and
// the aggregated series.
func Derive(c *model.Case, s *dimension.Sets, agg *temporal.Result) (*Parameters, error) {
	if c == nil || s == nil || agg == nil {
		return nil, errors.New("derive: case, sets and aggregated series are required")
	}
	sc := c.Scalars
	p := &Parameters{
		ENSCost:             sc.ENSCost * 1e-3,
		CO2Cost:             sc.CO2Cost,
		AnnualDiscountRate:  sc.AnnualDiscountRate,
		EconomicBaseYear:    sc.EconomicBaseYear,
		UpReserveActivation: sc.UpReserveActivation,
		DwReserveActivation: sc.DwReserveActivation,
		MinRatioDwUp:        sc.MinRatioDwUp,
		MaxRatioDwUp:        sc.MaxRatioDwUp,
		SBase:               sc.SBase * model.MWToGW,
		TimeStep:            agg.StepWidth,
		MaxTheta:            math.Pi / 2,
	}

	p.deriveCalendar(c, s, agg)
	p.deriveUnits(c, s)
	p.deriveSeries(s, agg)
	p.deriveWindows(s)
	p.PeakDemand = PeakDemand(p.Demand, s.AreaNodes)
	p.suppressNoise(s)
	p.deriveSecondBlocks(s)
	p.snapCosts()
	p.deriveLines(c, s)
	return p, nil
}

func (p *Parameters) deriveCalendar(c *model.Case, s *dimension.Sets, agg *temporal.Result) {
	weight := map[int]float64{}
	for _, pr := range c.Periods {
		weight[pr.ID] = pr.Weight
	}
	p.PeriodWeight = make([]float64, len(s.Periods))
	p.DiscountFactor = make([]float64, len(s.Periods))
	for i, pr := range s.Periods {
		p.PeriodWeight[i] = weight[pr]
		p.DiscountFactor[i] = DiscountFactor(weight[pr], p.AnnualDiscountRate, pr, p.EconomicBaseYear)
	}

	prob := map[model.PeriodScenario]float64{}
	for _, x := range c.Scenarios {
		prob[model.PeriodScenario{Period: x.Period, Scenario: x.Scenario}] = x.Probability
	}
	p.ScenarioProbability = make([]float64, len(s.PeriodScenarios))
	p.PeriodProbability = make([]float64, len(s.PeriodScenarios))
	for i, ps := range s.PeriodScenarios {
		p.ScenarioProbability[i] = prob[ps]
		p.PeriodProbability[i] = weight[ps.Period] * prob[ps]
	}

	stageWeight := map[string]float64{}
	for _, st := range c.Stages {
		stageWeight[st.ID] = st.Weight
	}
	p.StageWeight = make([]float64, len(s.Stages))
	for i, st := range s.Stages {
		p.StageWeight[i] = stageWeight[st]
	}

	dictPos := map[string]int{}
	for i, n := range c.Dict.LoadLevels {
		dictPos[n] = i
	}
	p.Duration = make([]float64, len(s.LoadLevels))
	p.LoadLevelWeight = make([]float64, len(s.LoadLevels))
	p.LoadLevelDuration = make([]float64, len(s.LoadLevels))
	for i, n := range s.LoadLevels {
		p.Duration[i] = agg.Durations[dictPos[n]]
		if st := s.LevelStage[i]; st >= 0 {
			p.LoadLevelWeight[i] = p.StageWeight[st]
		}
		p.LoadLevelDuration[i] = p.LoadLevelWeight[i] * p.Duration[i]
	}

	p.ReserveMargin = make([]float64, len(s.Areas))
	for i, a := range s.Areas {
		if v := c.ReserveMargin[a]; v > 0 {
			p.ReserveMargin[i] = v
		}
	}
}

func (p *Parameters) deriveUnits(c *model.Case, s *dimension.Sets) {
	k := p.TimeStep
	p.Units = make([]UnitParams, len(s.Units))
	for h, u := range s.Units {
		up := UnitParams{
			RatedMinPower:    u.RatedMinPower(),
			RatedMaxPower:    u.RatedMaxPower(),
			RatedMinCharge:   u.RatedMinCharge(),
			RatedMaxCharge:   u.RatedMaxCharge(),
			RatedMinStorage:  u.MinimumStorage,
			RatedMaxStorage:  u.MaximumStorage,
			LinearOperCost:   u.LinearOperCost(c.Scalars.CO2Cost),
			LinearVarCost:    u.LinearVarCost(),
			LinearOMCost:     u.LinearOMCost(),
			ConstantVarCost:  u.ConstantVarCost(),
			OperReserveCost:  u.OperReserveCost * 1e-3,
			CO2EmissionCost:  u.CO2EmissionCost(c.Scalars.CO2Cost),
			StartUpCost:      u.StartUpCost,
			ShutDownCost:     u.ShutDownCost,
			CO2EmissionRate:  u.CO2EmissionRate,
			InvestCost:       u.InvestCost(),
			RetireCost:       u.RetireCost(),
			RampUp:           u.RampUp * model.MWToGW,
			RampDown:         u.RampDown * model.MWToGW,
			Inertia:          u.Inertia,
			Availability:     u.Availability,
			Efficiency:       u.Efficiency,
			InitialInventory: u.InitialStorage,
			MaxReactivePower: u.MaximumReactivePower * model.MWToGW,
			UpTime:           temporal.StepCount(u.UpTime, k),
			DownTime:         temporal.StepCount(u.DownTime, k),
			ShiftTime:        temporal.StepCount(u.ShiftTime, k),
			CycleSteps:       temporal.CycleSteps(u.StorageType, k),
			OutflowSteps:     temporal.WindowSteps(u.OutflowsType, k),
			EnergySteps:      temporal.WindowSteps(u.EnergyType, k),
			InvestLo:         u.InvestmentLo,
			InvestUp:         u.InvestmentUp,
			RetireLo:         u.RetirementLo,
			RetireUp:         u.RetirementUp,
		}
		if up.Availability == 0 {
			up.Availability = 1
		}
		if up.InvestUp <= 0 {
			up.InvestUp = 1
		}
		if up.RetireUp <= 0 {
			up.RetireUp = 1
		}
		p.Units[h] = up
	}
}

func (p *Parameters) deriveSeries(s *dimension.Sets, agg *temporal.Result) {
	rows := len(s.Steps)
	nodes, areas, units := len(s.Nodes), len(s.Areas), len(s.Units)

	p.Demand = model.NewMatrix(rows, nodes)
	p.SystemInertia = model.NewMatrix(rows, areas)
	p.OperatingReserveUp = model.NewMatrix(rows, areas)
	p.OperatingReserveDown = model.NewMatrix(rows, areas)
	for r, key := range s.Steps {
		for n, nd := range s.Nodes {
			p.Demand.Set(r, n, agg.Demand.Value(key, nd)*model.MWToGW)
		}
		for a, ar := range s.Areas {
			p.SystemInertia.Set(r, a, agg.Inertia.Value(key, ar))
			p.OperatingReserveUp.Set(r, a, agg.OperatingReserveUp.Value(key, ar)*model.MWToGW)
			p.OperatingReserveDown.Set(r, a, agg.OperatingReserveDown.Value(key, ar)*model.MWToGW)
		}
	}

	p.MinPower = model.NewMatrix(rows, units)
	p.MaxPower = model.NewMatrix(rows, units)
	p.MinCharge = model.NewMatrix(rows, units)
	p.MaxCharge = model.NewMatrix(rows, units)
	p.MinStorage = model.NewMatrix(rows, units)
	p.MaxStorage = model.NewMatrix(rows, units)
	p.MinEnergy = model.NewMatrix(rows, units)
	p.MaxEnergy = model.NewMatrix(rows, units)
	p.EnergyInflows = model.NewMatrix(rows, units)
	p.EnergyOutflows = model.NewMatrix(rows, units)
	p.IniInventory = model.NewMatrix(rows, units)
	for r, key := range s.Steps {
		for h, u := range s.Units {
			up := p.Units[h]
			lo, hi := EffectiveBand(up.RatedMinPower, up.RatedMaxPower,
				agg.VariableMinPower.Value(key, u.Name)*model.MWToGW,
				agg.VariableMaxPower.Value(key, u.Name)*model.MWToGW)
			p.MinPower.Set(r, h, lo)
			p.MaxPower.Set(r, h, hi)

			lo, hi = EffectiveBand(up.RatedMinCharge, up.RatedMaxCharge,
				agg.VariableMinCharge.Value(key, u.Name)*model.MWToGW,
				agg.VariableMaxCharge.Value(key, u.Name)*model.MWToGW)
			p.MinCharge.Set(r, h, lo)
			p.MaxCharge.Set(r, h, hi)

			lo, hi = EffectiveBand(up.RatedMinStorage, up.RatedMaxStorage,
				agg.VariableMinStorage.Value(key, u.Name),
				agg.VariableMaxStorage.Value(key, u.Name))
			p.MinStorage.Set(r, h, lo)
			p.MaxStorage.Set(r, h, hi)

			p.MinEnergy.Set(r, h, agg.VariableMinEnergy.Value(key, u.Name)*model.MWToGW)
			p.MaxEnergy.Set(r, h, agg.VariableMaxEnergy.Value(key, u.Name)*model.MWToGW)
			p.EnergyInflows.Set(r, h, agg.EnergyInflows.Value(key, u.Name)*model.MWToGW)
			p.EnergyOutflows.Set(r, h, agg.EnergyOutflows.Value(key, u.Name)*model.MWToGW)
			p.IniInventory.Set(r, h, up.InitialInventory)
		}
	}
}

// deriveWindows forces outflow and energy windows of units without any such
// series to the whole-horizon default, then combines the inventory window.
func (p *Parameters) deriveWindows(s *dimension.Sets) {
	for h := range p.Units {
		up := &p.Units[h]
		if ColumnSum(p.EnergyOutflows, h) <= 0 {
			up.OutflowSteps = temporal.HoursPerYear
		}
		if ColumnSum(p.MinEnergy, h)+ColumnSum(p.MaxEnergy, h) <= 0 {
			up.EnergySteps = temporal.HoursPerYear
		}
		up.InventoryWindow = min(up.CycleSteps, up.OutflowSteps, up.EnergySteps)
	}
}

func (p *Parameters) deriveLines(c *model.Case, s *dimension.Sets) {
	k := p.TimeStep
	p.Lines = make([]LineParams, len(s.Lines))
	for h, l := range s.Lines {
		frw, bck := l.NTC()
		lp := LineParams{
			NTCFrw:      frw,
			NTCBck:      bck,
			Length:      l.Length,
			FixedCost:   l.FixedCost(),
			SwOnTime:    temporal.StepCount(l.SwOnTime, k),
			SwOffTime:   temporal.StepCount(l.SwOffTime, k),
			AngMin:      l.AngMin * math.Pi / 180,
			AngMax:      l.AngMax * math.Pi / 180,
			InvestLo:    l.InvestmentLo,
			InvestUp:    l.InvestmentUp,
			LossFactor:  l.LossFactor,
			Resistance:  l.Resistance,
			Reactance:   l.Reactance,
			Susceptance: l.Susceptance,
			Tap:         l.Tap,
			Voltage:     l.Voltage,
		}
		if lp.InvestUp <= 0 {
			lp.InvestUp = 1
		}
		lp.BigMFrw, lp.BigMBck = BigM(frw, bck, s.FlexibleAC.Has(h) || s.FlexibleDC.Has(h))
		if s.RealLines.Has(h) && lp.Length == 0 {
			lp.Length = DefaultLineLength(c.NodeLocations[l.Key.From], c.NodeLocations[l.Key.To])
		}
		if s.LossyLines.Has(h) {
			lp.MaxLosses = 0.5 * lp.LossFactor * math.Max(frw, bck)
		}
		p.Lines[h] = lp
	}
}
