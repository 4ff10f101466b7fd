package model

import (
	"fmt"
)

// Series is a time-series relation: rows keyed by StepKey in input order,
// one column per node, area or unit.
type Series struct {
	Columns []string
	Keys    []StepKey
	Values  [][]float64

	rows map[StepKey]int
	cols map[string]int
}

func NewSeries(columns []string) *Series {
	s := &Series{
		Columns: append([]string(nil), columns...),
		rows:    make(map[StepKey]int),
		cols:    make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		s.cols[c] = i
	}
	return s
}

// Append adds one row. Keys must be unique.
func (s *Series) Append(key StepKey, values []float64) error {
	if len(values) != len(s.Columns) {
		return fmt.Errorf("row %v has %d values, want %d", key, len(values), len(s.Columns))
	}
	if _, dup := s.rows[key]; dup {
		return fmt.Errorf("duplicate row %v", key)
	}
	s.rows[key] = len(s.Keys)
	s.Keys = append(s.Keys, key)
	s.Values = append(s.Values, append([]float64(nil), values...))
	return nil
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Keys)
}

func (s *Series) HasColumn(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.cols[name]
	return ok
}

// Value returns the cell at (key, column), or 0 when either is absent.
func (s *Series) Value(key StepKey, column string) float64 {
	if s == nil {
		return 0
	}
	r, ok := s.rows[key]
	if !ok {
		return 0
	}
	c, ok := s.cols[column]
	if !ok {
		return 0
	}
	return s.Values[r][c]
}

// Column copies one column in row order.
func (s *Series) Column(name string) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	c, ok := s.cols[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(s.Keys))
	for r := range s.Keys {
		out[r] = s.Values[r][c]
	}
	return out, true
}

// SetColumn overwrites one column in row order.
func (s *Series) SetColumn(name string, values []float64) error {
	c, ok := s.cols[name]
	if !ok {
		return fmt.Errorf("unknown column %q", name)
	}
	if len(values) != len(s.Keys) {
		return fmt.Errorf("column %q has %d values, want %d", name, len(values), len(s.Keys))
	}
	for r := range s.Keys {
		s.Values[r][c] = values[r]
	}
	return nil
}

func (s *Series) Clone() *Series {
	if s == nil {
		return nil
	}
	out := NewSeries(s.Columns)
	for r, k := range s.Keys {
		// keys are unique in s
		_ = out.Append(k, s.Values[r])
	}
	return out
}

// Blocks splits the row indices into runs sharing (period, scenario), in input order.
func (s *Series) Blocks() [][]int {
	if s == nil {
		return nil
	}
	var out [][]int
	index := map[PeriodScenario]int{}
	for r, k := range s.Keys {
		ps := PeriodScenario{Period: k.Period, Scenario: k.Scenario}
		i, ok := index[ps]
		if !ok {
			i = len(out)
			index[ps] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], r)
	}
	return out
}
