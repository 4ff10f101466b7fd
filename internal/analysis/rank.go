package analysis

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"expansion-prep/internal/dimension"
	"expansion-prep/internal/params"
)

// AreaRank is an area-level summary used to order areas by load.
type AreaRank struct {
	Area       string  `json:"area"`
	Nodes      int     `json:"nodes"`
	Units      int     `json:"units"`
	PeakGW     float64 `json:"peak_gw"`
	MeanGW     float64 `json:"mean_gw"`
	LoadFactor float64 `json:"load_factor"`
	Epsilon    float64 `json:"epsilon"`

	// CapacityGW is the sum over the area's generators of their largest
	// available output. Margin is CapacityGW over PeakGW, 0 without demand.
	CapacityGW float64 `json:"capacity_gw"`
	Margin     float64 `json:"margin"`
}

// RankAreasByPeak summarizes every area and sorts them by peak demand, largest first.
func RankAreasByPeak(s *dimension.Sets, p *params.Parameters) []AreaRank {
	rows, _ := p.Demand.Dims()
	out := make([]AreaRank, 0, len(s.Areas))
	for a, name := range s.Areas {
		r := AreaRank{
			Area:    name,
			Nodes:   len(s.AreaNodes[a]),
			PeakGW:  p.PeakDemand[a],
			Epsilon: p.AreaEpsilon[a],
		}
		totals := make([]float64, rows)
		for i := range totals {
			row := p.Demand.Row(i)
			for _, n := range s.AreaNodes[a] {
				totals[i] += row[n]
			}
		}
		if rows > 0 {
			r.MeanGW = stat.Mean(totals, nil)
		}
		if r.PeakGW > 0 {
			r.LoadFactor = r.MeanGW / r.PeakGW
		}
		for _, h := range s.Generators.Members() {
			if s.UnitArea[h] != a {
				continue
			}
			r.Units++
			if rows > 0 {
				r.CapacityGW += floats.Max(p.MaxPower.Col(h))
			}
		}
		if r.PeakGW > 0 {
			r.Margin = r.CapacityGW / r.PeakGW
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PeakGW > out[j].PeakGW
	})
	return out
}
