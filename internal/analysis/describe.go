package analysis

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"expansion-prep/internal/model"
	"expansion-prep/internal/params"
)

// SeriesStats summarizes the values of one prepared matrix.
// Quantiles are linearly interpolated between order statistics.
type SeriesStats struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Zeros int     `json:"zeros"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	P05   float64 `json:"p05"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	P95   float64 `json:"p95"`

	SpreadP95P05 float64 `json:"spread_p95_p05"`
}

// DescribeMatrix summarizes every cell of m.
func DescribeMatrix(name string, m *model.Matrix) SeriesStats {
	s := SeriesStats{Name: name}
	if m == nil {
		return s
	}
	rows, cols := m.Dims()
	vals := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		vals = append(vals, m.Row(r)...)
	}
	return describe(name, vals)
}

func describe(name string, vals []float64) SeriesStats {
	s := SeriesStats{Name: name, Count: len(vals)}
	if len(vals) == 0 {
		return s
	}
	for _, v := range vals {
		if v == 0 {
			s.Zeros++
		}
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	s.P05 = stat.Quantile(0.05, stat.LinInterp, sorted, nil)
	s.P25 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	s.P50 = stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	s.P75 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	s.P95 = stat.Quantile(0.95, stat.LinInterp, sorted, nil)
	s.SpreadP95P05 = s.P95 - s.P05
	return s
}

// Describe summarizes the time-indexed parameters of a prepared case, in a
// fixed order. Values are in GW or GWh.
func Describe(p *params.Parameters) []SeriesStats {
	named := []struct {
		name string
		m    *model.Matrix
	}{
		{"demand", p.Demand},
		{"system_inertia", p.SystemInertia},
		{"operating_reserve_up", p.OperatingReserveUp},
		{"operating_reserve_down", p.OperatingReserveDown},
		{"min_power", p.MinPower},
		{"max_power", p.MaxPower},
		{"min_charge", p.MinCharge},
		{"max_charge", p.MaxCharge},
		{"min_storage", p.MinStorage},
		{"max_storage", p.MaxStorage},
		{"min_energy", p.MinEnergy},
		{"max_energy", p.MaxEnergy},
		{"energy_inflows", p.EnergyInflows},
		{"energy_outflows", p.EnergyOutflows},
	}
	out := make([]SeriesStats, 0, len(named))
	for _, n := range named {
		out = append(out, DescribeMatrix(n.name, n.m))
	}
	return out
}
