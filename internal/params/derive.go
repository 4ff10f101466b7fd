package params

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"expansion-prep/internal/dimension"
	"expansion-prep/internal/model"
)

// EarthRadiusKm is used by the great-circle line length.
const EarthRadiusKm = 6371.0

// EffectiveBand intersects a rated band with a time-varying one. A zero
// time-varying value means no override. The result is floored at zero and
// the lower end never exceeds the upper end.
func EffectiveBand(ratedLo, ratedHi, varLo, varHi float64) (lo, hi float64) {
	lo, hi = ratedLo, ratedHi
	if varLo != 0 && varLo > lo {
		lo = varLo
	}
	if varHi != 0 && varHi < hi {
		hi = varHi
	}
	lo = math.Max(lo, 0)
	hi = math.Max(hi, 0)
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// DiscountFactor is the present-value weight of a period.
func DiscountFactor(weight, rate float64, period int, baseYear float64) float64 {
	if rate == 0 {
		return weight
	}
	return (math.Pow(1+rate, weight) - 1) / (rate * math.Pow(1+rate, weight-1+float64(period)-baseYear))
}

// BigM is the disjunctive flow bound of a line. Candidate and switchable
// lines get the wider bound; a zero bound becomes 1.
func BigM(frw, bck float64, flexible bool) (float64, float64) {
	if flexible {
		frw *= BigMFlexibleFactor
		bck *= BigMFlexibleFactor
	}
	if frw == 0 {
		frw = 1
	}
	if bck == 0 {
		bck = 1
	}
	return frw, bck
}

// Haversine is the great-circle distance in km.
func Haversine(a, b model.Location) float64 {
	rad := math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * rad / 2
	dLon := (b.Longitude - a.Longitude) * rad / 2
	h := math.Pow(math.Sin(dLat), 2) + math.Cos(a.Latitude*rad)*math.Cos(b.Latitude*rad)*math.Pow(math.Sin(dLon), 2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// DefaultLineLength is the haversine distance with a 10% routing margin.
func DefaultLineLength(a, b model.Location) float64 {
	return 1.1 * Haversine(a, b)
}

// PeakDemand is, per area, the largest total demand of its nodes over all rows.
func PeakDemand(demand *model.Matrix, areaNodes [][]int) []float64 {
	rows, _ := demand.Dims()
	out := make([]float64, len(areaNodes))
	for a, nodes := range areaNodes {
		if rows == 0 || len(nodes) == 0 {
			continue
		}
		totals := make([]float64, rows)
		for r := 0; r < rows; r++ {
			row := demand.Row(r)
			for _, n := range nodes {
				totals[r] += row[n]
			}
		}
		out[a] = floats.Max(totals)
	}
	return out
}

// ColumnSum adds up column c.
func ColumnSum(m *model.Matrix, c int) float64 {
	return floats.Sum(m.Col(c))
}

// SnapBelow zeroes every value of column c strictly below eps.
func SnapBelow(m *model.Matrix, c int, eps float64) {
	m.Apply(c, func(_ int, v float64) float64 {
		if v < eps {
			return 0
		}
		return v
	})
}

func (p *Parameters) suppressNoise(s *dimension.Sets) {
	k := float64(p.TimeStep)
	p.AreaEpsilon = make([]float64, len(s.Areas))
	p.DemandPos = p.Demand.Clone()
	p.DemandNeg = p.Demand.Clone()
	for _, n := range allHandles(len(s.Nodes)) {
		p.DemandPos.Apply(n, func(_ int, v float64) float64 { return math.Max(v, 0) })
		p.DemandNeg.Apply(n, func(_ int, v float64) float64 { return math.Min(v, 0) })
	}

	for a := range s.Areas {
		eps := p.PeakDemand[a] * AreaEpsilonFactor
		p.AreaEpsilon[a] = eps
		for _, n := range s.AreaNodes[a] {
			SnapBelow(p.DemandPos, n, eps)
			p.DemandNeg.Apply(n, func(_ int, v float64) float64 {
				if v > -eps {
					return 0
				}
				return v
			})
		}
		SnapBelow(p.SystemInertia, a, eps)
		SnapBelow(p.OperatingReserveUp, a, eps)
		SnapBelow(p.OperatingReserveDown, a, eps)
		for _, g := range s.UnitsInArea(s.Generators, a) {
			SnapBelow(p.MinPower, g, eps)
			SnapBelow(p.MaxPower, g, eps)
		}
		for _, es := range s.UnitsInArea(s.ESS, a) {
			SnapBelow(p.MinCharge, es, eps)
			SnapBelow(p.MaxCharge, es, eps)
			SnapBelow(p.EnergyInflows, es, eps/k)
			SnapBelow(p.EnergyOutflows, es, eps/k)
			SnapBelow(p.MinStorage, es, eps)
			SnapBelow(p.MaxStorage, es, eps)
			SnapBelow(p.IniInventory, es, eps)
			if p.Units[es].InitialInventory < eps {
				p.Units[es].InitialInventory = 0
			}
		}
	}

	rows, nodes := p.Demand.Dims()
	for r := 0; r < rows; r++ {
		for n := 0; n < nodes; n++ {
			if neg := p.DemandNeg.At(r, n); neg < 0 {
				p.Demand.Set(r, n, neg)
			} else {
				p.Demand.Set(r, n, p.DemandPos.At(r, n))
			}
		}
	}
}

func (p *Parameters) deriveSecondBlocks(s *dimension.Sets) {
	p.MaxPower2ndBlock = p.MaxPower.Clone()
	p.MaxCharge2ndBlock = p.MaxCharge.Clone()
	rows, units := p.MaxPower.Dims()
	for r := 0; r < rows; r++ {
		for h := 0; h < units; h++ {
			p.MaxPower2ndBlock.Set(r, h, math.Max(p.MaxPower.At(r, h)-p.MinPower.At(r, h), 0))
			p.MaxCharge2ndBlock.Set(r, h, math.Max(p.MaxCharge.At(r, h)-p.MinCharge.At(r, h), 0))
		}
	}
	for a := range s.Areas {
		eps := p.AreaEpsilon[a]
		for _, g := range s.UnitsInArea(s.Generators, a) {
			SnapBelow(p.MaxPower2ndBlock, g, eps)
			SnapBelow(p.MaxCharge2ndBlock, g, eps)
		}
	}
}

func (p *Parameters) snapCosts() {
	snap := func(v *float64) {
		if *v < CostEpsilon {
			*v = 0
		}
	}
	for h := range p.Units {
		u := &p.Units[h]
		snap(&u.LinearOperCost)
		snap(&u.LinearVarCost)
		snap(&u.LinearOMCost)
		snap(&u.ConstantVarCost)
		snap(&u.OperReserveCost)
		snap(&u.CO2EmissionCost)
		snap(&u.StartUpCost)
		snap(&u.ShutDownCost)
	}
}

func allHandles(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
