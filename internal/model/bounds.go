package model

import "math"

// Domain of a decision variable.
type Domain int

const (
	NonNegativeReals Domain = iota
	Reals
	UnitInterval
	BinaryDomain
)

func (d Domain) String() string {
	switch d {
	case NonNegativeReals:
		return "nonnegative"
	case Reals:
		return "real"
	case UnitInterval:
		return "unit-interval"
	case BinaryDomain:
		return "binary"
	}
	return "unknown"
}

// Bound is the domain and box of one decision variable.
type Bound struct {
	Domain Domain
	Lower  float64
	Upper  float64
	Fixed  bool
	Value  float64
}

// Fix pins the variable to v.
func (b *Bound) Fix(v float64) {
	b.Fixed = true
	b.Value = v
	b.Lower = v
	b.Upper = v
}

// Family holds the bounds of one decision variable indexed by (row, entity).
// Rows are periods, (period, scenario) pairs or active steps depending on the family.
type Family struct {
	Name   string
	Rows   int
	Cols   int
	bounds []Bound
}

func NewFamily(name string, rows, cols int, domain Domain, lower, upper float64) *Family {
	f := &Family{Name: name, Rows: rows, Cols: cols, bounds: make([]Bound, rows*cols)}
	for i := range f.bounds {
		f.bounds[i] = Bound{Domain: domain, Lower: lower, Upper: upper}
	}
	return f
}

func (f *Family) At(r, c int) *Bound { return &f.bounds[r*f.Cols+c] }

// FixedCount is the number of pinned variables.
func (f *Family) FixedCount() int {
	n := 0
	for i := range f.bounds {
		if f.bounds[i].Fixed {
			n++
		}
	}
	return n
}

// Inf is the open upper bound.
var Inf = math.Inf(1)

// Bounds is the full set of decision variable families handed to the optimizer.
type Bounds struct {
	GenerationInvest *Family // period x unit
	GenerationRetire *Family // period x unit
	NetworkInvest    *Family // period x line

	Commitment    *Family // step x unit
	StartUp       *Family
	ShutDown      *Family
	MaxCommitment *Family // (period, scenario) x unit

	TotalOutput     *Family
	Output2ndBlock  *Family
	ReserveUp       *Family
	ReserveDown     *Family
	EnergyInflows   *Family
	EnergyOutflows  *Family
	ESSInventory    *Family
	ESSSpillage     *Family
	ESSTotalCharge  *Family
	Charge2ndBlock  *Family
	ESSReserveUp    *Family
	ESSReserveDown  *Family
	ENS             *Family // step x node
	Theta           *Family // step x node
	Flow            *Family // step x line
	LineCommit      *Family
	LineOnState     *Family
	LineOffState    *Family
	LineLosses      *Family
}

// Families lists every family, for reporting.
func (b *Bounds) Families() []*Family {
	return []*Family{
		b.GenerationInvest, b.GenerationRetire, b.NetworkInvest,
		b.Commitment, b.StartUp, b.ShutDown, b.MaxCommitment,
		b.TotalOutput, b.Output2ndBlock, b.ReserveUp, b.ReserveDown,
		b.EnergyInflows, b.EnergyOutflows, b.ESSInventory, b.ESSSpillage,
		b.ESSTotalCharge, b.Charge2ndBlock, b.ESSReserveUp, b.ESSReserveDown,
		b.ENS, b.Theta, b.Flow, b.LineCommit, b.LineOnState, b.LineOffState, b.LineLosses,
	}
}

// InitialState is the warm-start operating point, indexed by (active step, unit/line).
type InitialState struct {
	Output *Matrix
	Commit *Matrix
	Switch *Matrix
}
