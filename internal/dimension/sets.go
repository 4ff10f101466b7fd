package dimension

import (
	"expansion-prep/internal/model"
)

// SynchronousCondenser is the technology name of reactive-only units.
const SynchronousCondenser = "SynchronousCondenser"

// PeriodHandle pairs an active period index with a unit or line handle.
type PeriodHandle struct {
	Period int // index into Sets.Periods
	Handle int
}

// Sets holds the canonical and derived index sets of a case. Units and lines
// live in arenas addressed by integer handles; subsets store handles.
type Sets struct {
	// canonical
	AllPeriods    []int
	Scenarios     []string
	AllStages     []string
	AllLoadLevels []string
	Technologies  []string
	StorageTypes  []string
	Nodes         []string
	Zones         []string
	Areas         []string
	Regions       []string
	Circuits      []string
	LineTypes     []string

	// calendar
	Periods         []int
	PeriodScenarios []model.PeriodScenario
	Stages          []string
	LoadLevels      []string
	LevelStage      []int   // active level -> index into Stages, -1 when the stage is inactive
	StageLevels     [][]int // active stage -> indices into LoadLevels
	Steps           []model.StepKey

	// units
	Units                 []model.Unit
	Generators            Subset // g
	Thermal               Subset // t
	RES                   Subset // r
	ESS                   Subset // es
	Candidate             Subset // gc
	Retirement            Subset // gd
	CandidateESS          Subset // ec
	NonRES                Subset // nr
	Reactive              Subset // gq
	SynchronousCondensers Subset // sq
	ReactiveThermal       Subset // tq
	UnitNode              []int
	UnitZone              []int
	UnitArea              []int
	UnitRegion            []int
	TechnologyUnits       map[string][]int
	ESSTechnologies       []string
	RESTechnologies       []string
	ExclusivePairs        [][2]int

	// topology
	NodeZone       []int
	NodeArea       []int
	AreaRegion     []int
	AreaNodes      [][]int
	ReferenceNodes []int

	// lines
	Lines          []model.Line
	RealLines      Subset // la
	SwitchLines    Subset // ls
	CandidateLines Subset // lc
	ExistingLines  Subset // le
	CandidateDC    Subset // cd
	ExistingDC     Subset // ed
	LossyLines     Subset // ll
	ExistingAC     Subset // lea
	FlexibleAC     Subset // lca
	ExistingDCLine Subset // led
	FlexibleDC     Subset // lcd
	LineArea       []int  // laar, -1 for cross-area lines

	// composite
	PeriodCandidates     []PeriodHandle // pgc
	PeriodRetirements    []PeriodHandle // pgd
	PeriodCandidateLines []PeriodHandle // plc

	periodIndex map[int]int
	psIndex     map[model.PeriodScenario]int
	levelIndex  map[string]int
	unitIndex   map[string]int
	nodeIndex   map[string]int
	areaIndex   map[string]int
	lineIndex   map[model.LineKey]int
}

func (s *Sets) PeriodIndex(p int) (int, bool) {
	i, ok := s.periodIndex[p]
	return i, ok
}

func (s *Sets) ScenarioIndex(ps model.PeriodScenario) (int, bool) {
	i, ok := s.psIndex[ps]
	return i, ok
}

func (s *Sets) LevelIndex(n string) (int, bool) {
	i, ok := s.levelIndex[n]
	return i, ok
}

func (s *Sets) UnitHandle(name string) (int, bool) {
	h, ok := s.unitIndex[name]
	return h, ok
}

func (s *Sets) NodeHandle(name string) (int, bool) {
	h, ok := s.nodeIndex[name]
	return h, ok
}

func (s *Sets) AreaHandle(name string) (int, bool) {
	h, ok := s.areaIndex[name]
	return h, ok
}

func (s *Sets) LineHandle(k model.LineKey) (int, bool) {
	h, ok := s.lineIndex[k]
	return h, ok
}

// Step returns the row of (ps, n) in Steps.
func (s *Sets) Step(ps, n int) int { return ps*len(s.LoadLevels) + n }

// StepParts splits a Steps row into its (ps, n) indices.
func (s *Sets) StepParts(row int) (ps, n int) {
	return row / len(s.LoadLevels), row % len(s.LoadLevels)
}

// StepPeriod returns the index into Periods of a Steps row.
func (s *Sets) StepPeriod(row int) int {
	ps, _ := s.StepParts(row)
	return s.periodIndex[s.PeriodScenarios[ps].Period]
}

// HasExclusivePartner reports whether unit h is paired with a member of within.
func (s *Sets) HasExclusivePartner(h int, within Subset) bool {
	for _, pair := range s.ExclusivePairs {
		if pair[0] == h && within.Has(pair[1]) {
			return true
		}
		if pair[1] == h && within.Has(pair[0]) {
			return true
		}
	}
	return false
}

// UnitsInArea lists the handles of subset members located in area a.
func (s *Sets) UnitsInArea(sub Subset, a int) []int {
	var out []int
	for _, h := range sub.Members() {
		if s.UnitArea[h] == a {
			out = append(out, h)
		}
	}
	return out
}
