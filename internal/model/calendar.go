package model

// Period is one investment year of the study.
type Period struct {
	ID     int
	Weight float64
}

// ScenarioProbability weights a scenario inside a period.
type ScenarioProbability struct {
	Period      int
	Scenario    string
	Probability float64
}

// Stage groups consecutive load levels.
type Stage struct {
	ID     string
	Weight float64
}

// LoadLevel is one row of the Duration relation. Duration is in time steps
// before aggregation.
type LoadLevel struct {
	ID       string
	Duration float64
	Stage    string
}

// StepKey identifies one (period, scenario, load level) row of a time series.
type StepKey struct {
	Period    int
	Scenario  string
	LoadLevel string
}

// PeriodScenario is an active (period, scenario) pair.
type PeriodScenario struct {
	Period   int
	Scenario string
}
