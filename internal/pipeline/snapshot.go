package pipeline

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"expansion-prep/internal/dimension"
	"expansion-prep/internal/model"
	"expansion-prep/internal/params"
)

// Snapshot is the output of one run. It is not modified after Run returns
// and may be shared between readers.
type Snapshot struct {
	RunID     uuid.UUID
	Case      string
	CreatedAt time.Time
	Options   model.Options

	Sets    *dimension.Sets
	Params  *params.Parameters
	Initial *model.InitialState
	Bounds  *model.Bounds

	// Warm-start adjusted copies of the parameters of the same name.
	IniInventory  *model.Matrix
	EnergyInflows *model.Matrix

	Warnings []string
	// Timings holds the seconds spent per stage.
	Timings map[string]float64
}

// StateRow is one (step, unit) row of the warm start.
type StateRow struct {
	Period    int     `json:"period"`
	Scenario  string  `json:"scenario"`
	LoadLevel string  `json:"load_level"`
	Unit      string  `json:"unit"`
	OutputGW  float64 `json:"output_gw"`
	Commit    float64 `json:"commit"`
}

// Counts are the cardinalities of the active sets.
type Counts struct {
	Periods         int `json:"periods"`
	PeriodScenarios int `json:"period_scenarios"`
	Stages          int `json:"stages"`
	LoadLevels      int `json:"load_levels"`
	Steps           int `json:"steps"`
	Nodes           int `json:"nodes"`
	Areas           int `json:"areas"`
	Units           int `json:"units"`
	Thermal         int `json:"thermal"`
	Renewable       int `json:"renewable"`
	Storage         int `json:"storage"`
	Candidates      int `json:"candidates"`
	Lines           int `json:"lines"`
	CandidateLines  int `json:"candidate_lines"`
}

// FamilyStat reports how many variables of a family the warm start fixed.
type FamilyStat struct {
	Name  string `json:"name"`
	Size  int    `json:"size"`
	Fixed int    `json:"fixed"`
}

// Summary is the serializable digest of a snapshot.
type Summary struct {
	RunID     string             `json:"run_id"`
	Case      string             `json:"case"`
	CreatedAt time.Time          `json:"created_at"`
	Counts    Counts             `json:"counts"`
	Families  []FamilyStat       `json:"families"`
	Fixed     int                `json:"fixed"`
	Warnings  []string           `json:"warnings,omitempty"`
	Timings   map[string]float64 `json:"timings_seconds"`
}

func (s *Snapshot) Counts() Counts {
	sets := s.Sets
	return Counts{
		Periods:         len(sets.Periods),
		PeriodScenarios: len(sets.PeriodScenarios),
		Stages:          len(sets.Stages),
		LoadLevels:      len(sets.LoadLevels),
		Steps:           len(sets.Steps),
		Nodes:           len(sets.Nodes),
		Areas:           len(sets.Areas),
		Units:           sets.Generators.Len(),
		Thermal:         sets.Thermal.Len(),
		Renewable:       sets.RES.Len(),
		Storage:         sets.ESS.Len(),
		Candidates:      sets.Candidate.Len(),
		Lines:           sets.RealLines.Len(),
		CandidateLines:  sets.CandidateLines.Len(),
	}
}

// FixedCount is the number of fixed variables over every family.
func (s *Snapshot) FixedCount() int {
	if s.Bounds == nil {
		return 0
	}
	n := 0
	for _, f := range s.Bounds.Families() {
		n += f.FixedCount()
	}
	return n
}

func (s *Snapshot) Summary() Summary {
	out := Summary{
		RunID:     s.RunID.String(),
		Case:      s.Case,
		CreatedAt: s.CreatedAt,
		Counts:    s.Counts(),
		Fixed:     s.FixedCount(),
		Warnings:  s.Warnings,
		Timings:   s.Timings,
	}
	for _, f := range s.Bounds.Families() {
		out.Families = append(out.Families, FamilyStat{Name: f.Name, Size: f.Rows * f.Cols, Fixed: f.FixedCount()})
	}
	sort.SliceStable(out.Families, func(i, j int) bool { return out.Families[i].Fixed > out.Families[j].Fixed })
	return out
}

// StateRows lists the warm start of every active generator in step order.
func (s *Snapshot) StateRows() []StateRow {
	sets := s.Sets
	units := sets.Generators.Members()
	out := make([]StateRow, 0, len(sets.Steps)*len(units))
	for row, key := range sets.Steps {
		for _, h := range units {
			out = append(out, StateRow{
				Period:    key.Period,
				Scenario:  key.Scenario,
				LoadLevel: key.LoadLevel,
				Unit:      sets.Units[h].Name,
				OutputGW:  s.Initial.Output.At(row, h),
				Commit:    s.Initial.Commit.At(row, h),
			})
		}
	}
	return out
}
