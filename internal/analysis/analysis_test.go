package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expansion-prep/internal/dimension"
	"expansion-prep/internal/model"
	"expansion-prep/internal/params"
	"expansion-prep/internal/sample"
	"expansion-prep/internal/temporal"
)

func prepare(t *testing.T, levels int) (*dimension.Sets, *params.Parameters) {
	t.Helper()
	c := sample.Case(levels)
	agg := temporal.Aggregate(c)
	s, _, err := dimension.Build(c, agg.Durations)
	require.NoError(t, err)
	p, err := params.Derive(c, s, agg)
	require.NoError(t, err)
	return s, p
}

func TestDescribeMatrix(t *testing.T) {
	m := model.NewMatrix(2, 2)
	m.Set(0, 0, 1)
	m.Set(0, 1, 3)
	m.Set(1, 0, 0)
	m.Set(1, 1, 4)

	got := DescribeMatrix("x", m)
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, 4, got.Count)
	assert.Equal(t, 1, got.Zeros)
	assert.Equal(t, 0.0, got.Min)
	assert.Equal(t, 4.0, got.Max)
	assert.InDelta(t, 2.0, got.Mean, 1e-12)
	assert.Positive(t, got.Std)
	assert.LessOrEqual(t, got.P05, got.P25)
	assert.LessOrEqual(t, got.P25, got.P50)
	assert.LessOrEqual(t, got.P50, got.P75)
	assert.LessOrEqual(t, got.P75, got.P95)
	assert.InDelta(t, got.P95-got.P05, got.SpreadP95P05, 1e-12)
}

func TestDescribeEmpty(t *testing.T) {
	assert.Equal(t, SeriesStats{Name: "nil"}, DescribeMatrix("nil", nil))
	assert.Equal(t, SeriesStats{Name: "empty"}, DescribeMatrix("empty", model.NewMatrix(0, 3)))
}

func TestDescribeSampleCase(t *testing.T) {
	_, p := prepare(t, 48)
	stats := Describe(p)
	require.Len(t, stats, 14)
	assert.Equal(t, "demand", stats[0].Name)

	d := stats[0]
	assert.Equal(t, 96, d.Count)
	assert.InDelta(t, 0.1, d.Min, 1e-9)
	assert.InDelta(t, 0.53, d.Max, 1e-9)
	assert.InDelta(t, 0.2575, d.Mean, 1e-9)
}

func TestRankAreasByPeak(t *testing.T) {
	s, p := prepare(t, 48)
	ranks := RankAreasByPeak(s, p)
	require.Len(t, ranks, 1)

	r := ranks[0]
	assert.Equal(t, "A1", r.Area)
	assert.Equal(t, 2, r.Nodes)
	assert.Equal(t, s.Generators.Len(), r.Units)
	assert.InDelta(t, 0.63, r.PeakGW, 1e-9)
	assert.InDelta(t, 0.515, r.MeanGW, 1e-9)
	assert.InDelta(t, 0.515/0.63, r.LoadFactor, 1e-9)
	assert.InDelta(t, 0.63*params.AreaEpsilonFactor, r.Epsilon, 1e-12)
	assert.Greater(t, r.Margin, 1.0)
}

func TestRankAreasOrder(t *testing.T) {
	s, p := prepare(t, 24)
	// Split the sample into two areas so that the ordering is observable.
	s.Areas = []string{"small", "big"}
	s.AreaNodes = [][]int{{1}, {0}}
	p.PeakDemand = []float64{0.1, 0.53}
	p.AreaEpsilon = []float64{0, 0}
	for h := range s.UnitArea {
		s.UnitArea[h] = 1
	}

	ranks := RankAreasByPeak(s, p)
	require.Len(t, ranks, 2)
	assert.Equal(t, "big", ranks[0].Area)
	assert.Equal(t, "small", ranks[1].Area)
	assert.Zero(t, ranks[1].Units)
	assert.Zero(t, ranks[1].CapacityGW)
}
