package temporal

import "math"

// Storage cycle categories.
const (
	Hourly  = "Hourly"
	Daily   = "Daily"
	Weekly  = "Weekly"
	Monthly = "Monthly"
	Yearly  = "Yearly"
)

func steps(hours float64, k int) int {
	n := int(math.RoundToEven(hours / float64(k)))
	if n < 1 {
		n = 1
	}
	return n
}

// CycleSteps is the inventory anchoring period of a storage category.
// Weekly, Monthly and Yearly share the weekly window.
func CycleSteps(kind string, k int) int {
	if k < 1 {
		k = 1
	}
	switch kind {
	case Hourly:
		return 1
	case Daily:
		return steps(24, k)
	case Weekly, Monthly, Yearly:
		return steps(168, k)
	default:
		return HoursPerYear
	}
}

// WindowSteps is the length of an outflow or energy-limit window.
func WindowSteps(kind string, k int) int {
	if k < 1 {
		k = 1
	}
	switch kind {
	case Hourly:
		return 1
	case Daily:
		return steps(24, k)
	case Weekly:
		return steps(168, k)
	case Monthly:
		return steps(672, k)
	case Yearly:
		return steps(HoursPerYear, k)
	default:
		return HoursPerYear
	}
}
