package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"expansion-prep/internal/model"
)

// ParseError reports a cell that should hold a number but does not.
type ParseError struct {
	Table  string
	Row    string
	Column string
	Value  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: row %q column %q: %q is not a number", e.Table, e.Row, e.Column, e.Value)
}

type table struct {
	name   string
	header []string
	rows   [][]string
	cols   map[string]int
}

// readTable reads a headed CSV. A missing optional table yields (nil, nil).
func readTable(path, name string, optional bool) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "open %s", name)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err == io.EOF {
		return &table{name: name, cols: map[string]int{}}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s header", name)
	}
	t := &table{name: name, header: trimAll(header), cols: map[string]int{}}
	for i, h := range t.header {
		t.cols[h] = i
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		rec = trimAll(rec)
		if len(rec) == 0 || (len(rec) == 1 && rec[0] == "") {
			continue
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func trimAll(xs []string) []string {
	for i := range xs {
		xs[i] = strings.TrimSpace(xs[i])
	}
	return xs
}

func (t *table) cell(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// float parses a numeric cell; empty and missing cells are zero.
func (t *table) float(row []string, col string) (float64, error) {
	raw := t.cell(row, col)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ParseError{Table: t.name, Row: row[0], Column: col, Value: raw}
	}
	return v, nil
}

func (t *table) indicator(row []string, col string) (bool, error) {
	return model.DecodeIndicator(t.name, row[0], col, t.cell(row, col))
}

func parseInt(tableName, row, col, raw string) (int, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ParseError{Table: tableName, Row: row, Column: col, Value: raw}
	}
	return int(v), nil
}

type loader struct {
	dir  string
	name string
}

func (l loader) path(kind, relation string) string {
	return filepath.Join(l.dir, l.name, fmt.Sprintf("oT_%s_%s_%s.csv", kind, relation, l.name))
}

func (l loader) data(relation string, optional bool) (*table, error) {
	return readTable(l.path("Data", relation), relation, optional)
}

// dict reads a one-column membership relation.
func (l loader) dict(relation string) ([]string, error) {
	t, err := readTable(l.path("Dict", relation), "Dict_"+relation, false)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r[0])
	}
	return out, nil
}

func (l loader) pairs(relation string) ([]model.Pair, error) {
	t, err := readTable(l.path("Dict", relation), "Dict_"+relation, false)
	if err != nil {
		return nil, err
	}
	out := make([]model.Pair, 0, len(t.rows))
	for _, r := range t.rows {
		if len(r) < 2 {
			continue
		}
		out = append(out, model.Pair{From: r[0], To: r[1]})
	}
	return out, nil
}

// series reads a relation keyed by (period, scenario, load level) with one
// column per entity. An absent optional relation yields an empty series.
func (l loader) series(relation string, optional bool) (*model.Series, error) {
	t, err := l.data(relation, optional)
	if err != nil {
		return nil, err
	}
	if t == nil || len(t.header) < 3 {
		return model.NewSeries(nil), nil
	}
	cols := t.header[3:]
	s := model.NewSeries(cols)
	for _, r := range t.rows {
		if len(r) < 3 {
			continue
		}
		p, err := parseInt(t.name, r[2], t.header[0], r[0])
		if err != nil {
			return nil, err
		}
		vals := make([]float64, len(cols))
		for i, c := range cols {
			if 3+i >= len(r) || r[3+i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(r[3+i], 64)
			if err != nil {
				return nil, &ParseError{Table: t.name, Row: r[2], Column: c, Value: r[3+i]}
			}
			vals[i] = v
		}
		if err := s.Append(model.StepKey{Period: p, Scenario: r[1], LoadLevel: r[2]}, vals); err != nil {
			return nil, errors.Wrap(err, t.name)
		}
	}
	return s, nil
}

// LoadCase reads every relation of case name under dir.
func LoadCase(dir, name string) (*model.Case, error) {
	l := loader{dir: dir, name: name}
	c := &model.Case{Name: name, ReserveMargin: map[string]float64{}, NodeLocations: map[string]model.Location{}}

	steps := []func(loader, *model.Case) error{
		loadDictionaries,
		loadOptions,
		loadScalars,
		loadCalendar,
		loadSeries,
		loadUnits,
		loadNetwork,
	}
	for _, step := range steps {
		if err := step(l, c); err != nil {
			return nil, errors.Wrapf(err, "load case %s", name)
		}
	}
	return c, nil
}

func loadDictionaries(l loader, c *model.Case) error {
	periods, err := l.dict("Period")
	if err != nil {
		return err
	}
	for _, p := range periods {
		v, err := parseInt("Dict_Period", p, "Period", p)
		if err != nil {
			return err
		}
		c.Dict.Periods = append(c.Dict.Periods, v)
	}
	lists := []struct {
		relation string
		dst      *[]string
	}{
		{"Scenario", &c.Dict.Scenarios},
		{"Stage", &c.Dict.Stages},
		{"LoadLevel", &c.Dict.LoadLevels},
		{"Generation", &c.Dict.Units},
		{"Technology", &c.Dict.Technologies},
		{"Storage", &c.Dict.StorageTypes},
		{"Node", &c.Dict.Nodes},
		{"Zone", &c.Dict.Zones},
		{"Area", &c.Dict.Areas},
		{"Region", &c.Dict.Regions},
		{"Circuit", &c.Dict.Circuits},
		{"Line", &c.Dict.LineTypes},
	}
	for _, x := range lists {
		if *x.dst, err = l.dict(x.relation); err != nil {
			return err
		}
	}
	if c.Dict.NodeToZone, err = l.pairs("NodeToZone"); err != nil {
		return err
	}
	if c.Dict.ZoneToArea, err = l.pairs("ZoneToArea"); err != nil {
		return err
	}
	c.Dict.AreaToRegion, err = l.pairs("AreaToRegion")
	return err
}

func loadOptions(l loader, c *model.Case) error {
	t, err := l.data("Option", false)
	if err != nil {
		return err
	}
	if len(t.rows) == 0 {
		return errors.New("Option: no rows")
	}
	row := t.rows[0]
	modes := []struct {
		col string
		dst *model.DecisionMode
	}{
		{"IndBinGenInvest", &c.Options.GenInvest},
		{"IndBinGenRetirement", &c.Options.GenRetire},
		{"IndBinNetInvest", &c.Options.NetInvest},
		{"IndBinGenOperat", &c.Options.GenOperat},
		{"IndBinLineCommit", &c.Options.LineCommit},
	}
	for _, m := range modes {
		v, err := t.float(row, m.col)
		if err != nil {
			return err
		}
		*m.dst = model.DecisionMode(int(v))
	}
	flags := []struct {
		col string
		dst *bool
	}{
		{"IndBinSingleNode", &c.Options.SingleNode},
		{"IndBinGenRamps", &c.Options.GenRamps},
		{"IndBinGenMinTime", &c.Options.GenMinTime},
		{"IndBinNetLosses", &c.Options.NetLosses},
	}
	for _, f := range flags {
		v, err := t.float(row, f.col)
		if err != nil {
			return err
		}
		*f.dst = v != 0
	}
	return nil
}

func loadScalars(l loader, c *model.Case) error {
	t, err := l.data("Parameter", false)
	if err != nil {
		return err
	}
	if len(t.rows) == 0 {
		return errors.New("Parameter: no rows")
	}
	row := t.rows[0]
	sc := &c.Scalars
	fields := map[string]*float64{
		"ENSCost":             &sc.ENSCost,
		"CO2Cost":             &sc.CO2Cost,
		"EconomicBaseYear":    &sc.EconomicBaseYear,
		"AnnualDiscountRate":  &sc.AnnualDiscountRate,
		"UpReserveActivation": &sc.UpReserveActivation,
		"DwReserveActivation": &sc.DwReserveActivation,
		"MinRatioDwUp":        &sc.MinRatioDwUp,
		"MaxRatioDwUp":        &sc.MaxRatioDwUp,
		"SBase":               &sc.SBase,
	}
	for col, dst := range fields {
		if *dst, err = t.float(row, col); err != nil {
			return err
		}
	}
	step, err := t.float(row, "TimeStep")
	if err != nil {
		return err
	}
	sc.TimeStep = int(step)
	sc.ReferenceNode = t.cell(row, "ReferenceNode")
	return nil
}

func loadCalendar(l loader, c *model.Case) error {
	t, err := l.data("Period", false)
	if err != nil {
		return err
	}
	for _, r := range t.rows {
		id, err := parseInt(t.name, r[0], "Period", r[0])
		if err != nil {
			return err
		}
		w, err := t.float(r, "Weight")
		if err != nil {
			return err
		}
		c.Periods = append(c.Periods, model.Period{ID: id, Weight: w})
	}

	if t, err = l.data("Scenario", false); err != nil {
		return err
	}
	for _, r := range t.rows {
		if len(r) < 2 {
			continue
		}
		id, err := parseInt(t.name, r[0], "Period", r[0])
		if err != nil {
			return err
		}
		prob, err := t.float(r, "Probability")
		if err != nil {
			return err
		}
		c.Scenarios = append(c.Scenarios, model.ScenarioProbability{Period: id, Scenario: r[1], Probability: prob})
	}

	if t, err = l.data("Stage", false); err != nil {
		return err
	}
	for _, r := range t.rows {
		w, err := t.float(r, "Weight")
		if err != nil {
			return err
		}
		c.Stages = append(c.Stages, model.Stage{ID: r[0], Weight: w})
	}

	if t, err = l.data("Duration", false); err != nil {
		return err
	}
	for _, r := range t.rows {
		d, err := t.float(r, "Duration")
		if err != nil {
			return err
		}
		c.LoadLevels = append(c.LoadLevels, model.LoadLevel{ID: r[0], Duration: d, Stage: t.cell(r, "Stage")})
	}

	if t, err = l.data("ReserveMargin", true); err != nil || t == nil {
		return err
	}
	for _, r := range t.rows {
		v, err := t.float(r, "ReserveMargin")
		if err != nil {
			return err
		}
		c.ReserveMargin[r[0]] = v
	}
	return nil
}

func loadSeries(l loader, c *model.Case) error {
	relations := []struct {
		relation string
		optional bool
		dst      **model.Series
	}{
		{"Demand", false, &c.Demand},
		{"Inertia", true, &c.Inertia},
		{"OperatingReserveUp", true, &c.OperatingReserveUp},
		{"OperatingReserveDown", true, &c.OperatingReserveDown},
		{"VariableMinGeneration", true, &c.VariableMinPower},
		{"VariableMaxGeneration", true, &c.VariableMaxPower},
		{"VariableMinConsumption", true, &c.VariableMinCharge},
		{"VariableMaxConsumption", true, &c.VariableMaxCharge},
		{"VariableMinStorage", true, &c.VariableMinStorage},
		{"VariableMaxStorage", true, &c.VariableMaxStorage},
		{"VariableMinEnergy", true, &c.VariableMinEnergy},
		{"VariableMaxEnergy", true, &c.VariableMaxEnergy},
		{"EnergyInflows", true, &c.EnergyInflows},
		{"EnergyOutflows", true, &c.EnergyOutflows},
	}
	for _, x := range relations {
		s, err := l.series(x.relation, x.optional)
		if err != nil {
			return err
		}
		*x.dst = s
	}
	return nil
}

func loadUnits(l loader, c *model.Case) error {
	t, err := l.data("Generation", false)
	if err != nil {
		return err
	}
	for _, r := range t.rows {
		u := model.Unit{
			Name:              r[0],
			Node:              t.cell(r, "Node"),
			Technology:        t.cell(r, "Technology"),
			MutuallyExclusive: t.cell(r, "MutuallyExclusive"),
			StorageType:       t.cell(r, "StorageType"),
			OutflowsType:      t.cell(r, "OutflowsType"),
			EnergyType:        t.cell(r, "EnergyType"),
		}
		flags := map[string]*bool{
			"BinaryInvestment":   &u.BinaryInvestment,
			"BinaryRetirement":   &u.BinaryRetirement,
			"BinaryCommitment":   &u.BinaryCommitment,
			"StorageInvestment":  &u.StorageInvestment,
			"NoOperatingReserve": &u.NoOperatingReserve,
			"MustRun":            &u.MustRun,
		}
		for col, dst := range flags {
			if *dst, err = t.indicator(r, col); err != nil {
				return err
			}
		}
		nums := map[string]*float64{
			"Inertia":              &u.Inertia,
			"InitialPeriod":        &u.InitialPeriod,
			"FinalPeriod":          &u.FinalPeriod,
			"Availability":         &u.Availability,
			"EFOR":                 &u.EFOR,
			"MinimumPower":         &u.MinimumPower,
			"MaximumPower":         &u.MaximumPower,
			"LinearTerm":           &u.LinearTerm,
			"ConstantTerm":         &u.ConstantTerm,
			"FuelCost":             &u.FuelCost,
			"OMVariableCost":       &u.OMVariableCost,
			"OperReserveCost":      &u.OperReserveCost,
			"StartUpCost":          &u.StartUpCost,
			"ShutDownCost":         &u.ShutDownCost,
			"RampUp":               &u.RampUp,
			"RampDown":             &u.RampDown,
			"CO2EmissionRate":      &u.CO2EmissionRate,
			"UpTime":               &u.UpTime,
			"DownTime":             &u.DownTime,
			"ShiftTime":            &u.ShiftTime,
			"FixedInvestmentCost":  &u.FixedInvestmentCost,
			"FixedRetirementCost":  &u.FixedRetirementCost,
			"FixedChargeRate":      &u.FixedChargeRate,
			"MinimumCharge":        &u.MinimumCharge,
			"MaximumCharge":        &u.MaximumCharge,
			"MinimumStorage":       &u.MinimumStorage,
			"MaximumStorage":       &u.MaximumStorage,
			"InitialStorage":       &u.InitialStorage,
			"Efficiency":           &u.Efficiency,
			"MaximumReactivePower": &u.MaximumReactivePower,
			"InvestmentLo":         &u.InvestmentLo,
			"InvestmentUp":         &u.InvestmentUp,
			"RetirementLo":         &u.RetirementLo,
			"RetirementUp":         &u.RetirementUp,
		}
		for col, dst := range nums {
			if *dst, err = t.float(r, col); err != nil {
				return err
			}
		}
		c.Units = append(c.Units, u)
	}
	return nil
}

func loadNetwork(l loader, c *model.Case) error {
	t, err := l.data("Network", false)
	if err != nil {
		return err
	}
	for _, r := range t.rows {
		if len(r) < 3 {
			continue
		}
		ln := model.Line{
			Key:      model.LineKey{From: r[0], To: r[1], Circuit: r[2]},
			LineType: t.cell(r, "LineType"),
		}
		if ln.Switching, err = t.indicator(r, "Switching"); err != nil {
			return err
		}
		if ln.BinaryInvestment, err = t.indicator(r, "BinaryInvestment"); err != nil {
			return err
		}
		nums := map[string]*float64{
			"Length":              &ln.Length,
			"Voltage":             &ln.Voltage,
			"InitialPeriod":       &ln.InitialPeriod,
			"FinalPeriod":         &ln.FinalPeriod,
			"LossFactor":          &ln.LossFactor,
			"Resistance":          &ln.Resistance,
			"Reactance":           &ln.Reactance,
			"Susceptance":         &ln.Susceptance,
			"Tap":                 &ln.Tap,
			"TTC":                 &ln.TTC,
			"TTCBck":              &ln.TTCBck,
			"SecurityFactor":      &ln.SecurityFactor,
			"FixedInvestmentCost": &ln.FixedInvestmentCost,
			"FixedChargeRate":     &ln.FixedChargeRate,
			"SwOnTime":            &ln.SwOnTime,
			"SwOffTime":           &ln.SwOffTime,
			"AngMin":              &ln.AngMin,
			"AngMax":              &ln.AngMax,
			"InvestmentLo":        &ln.InvestmentLo,
			"InvestmentUp":        &ln.InvestmentUp,
		}
		for col, dst := range nums {
			if *dst, err = t.float(r, col); err != nil {
				return err
			}
		}
		c.Lines = append(c.Lines, ln)
	}

	if t, err = l.data("NodeLocation", true); err != nil || t == nil {
		return err
	}
	for _, r := range t.rows {
		lat, err := t.float(r, "Latitude")
		if err != nil {
			return err
		}
		lon, err := t.float(r, "Longitude")
		if err != nil {
			return err
		}
		c.NodeLocations[r[0]] = model.Location{Latitude: lat, Longitude: lon}
	}
	return nil
}

// ListCases returns the case directories under root that contain an Option table.
func ListCases(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, "list cases")
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		l := loader{dir: root, name: e.Name()}
		if _, err := os.Stat(l.path("Data", "Option")); err == nil {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
