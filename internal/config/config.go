package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"expansion-prep/internal/model"
)

const (
	DefaultProbabilityTolerance = 1e-6
	DefaultCacheTTL             = time.Hour
	DefaultPort                 = 8080
	DefaultLogLevel             = "info"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Case    CaseConfig      `yaml:"case"`
	Options OptionsOverride `yaml:"options"`
	Checks  Checks          `yaml:"checks"`
	Log     LogConfig       `yaml:"log"`
	Cache   CacheConfig     `yaml:"cache"`
	API     APIConfig       `yaml:"api"`
}

// CaseConfig locates a case: <dir>/<name>/oT_*_<name>.csv.
type CaseConfig struct {
	Dir  string `yaml:"dir"`
	Name string `yaml:"name"`
}

// OptionsOverride replaces fields of a case's Option relation. Nil fields
// keep the case value, so an explicit 0 is an override.
type OptionsOverride struct {
	GenInvest  *int `yaml:"gen_invest" json:"gen_invest,omitempty"`
	GenRetire  *int `yaml:"gen_retire" json:"gen_retire,omitempty"`
	NetInvest  *int `yaml:"net_invest" json:"net_invest,omitempty"`
	GenOperat  *int `yaml:"gen_operat" json:"gen_operat,omitempty"`
	LineCommit *int `yaml:"line_commit" json:"line_commit,omitempty"`
	SingleNode *int `yaml:"single_node" json:"single_node,omitempty"`
	GenRamps   *int `yaml:"gen_ramps" json:"gen_ramps,omitempty"`
	GenMinTime *int `yaml:"gen_min_time" json:"gen_min_time,omitempty"`
	NetLosses  *int `yaml:"net_losses" json:"net_losses,omitempty"`
}

// Checks toggles the optional validations of a run.
type Checks struct {
	EnforceScenarioProbability bool    `yaml:"enforce_scenario_probability" json:"enforce_scenario_probability"`
	ProbabilityTolerance       float64 `yaml:"probability_tolerance" json:"probability_tolerance"`
	StrictTopology             bool    `yaml:"strict_topology" json:"strict_topology"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

type APIConfig struct {
	Port      int    `yaml:"port"`
	CasesRoot string `yaml:"cases_root"`
}

// Default is the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked reads the file but neither defaults nor validates it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	// Relative case directories are taken relative to the config file when
	// that directory exists, otherwise relative to the working directory.
	for _, dir := range []*string{&c.Case.Dir, &c.API.CasesRoot} {
		if *dir == "" || filepath.IsAbs(*dir) {
			continue
		}
		cand := filepath.Join(filepath.Dir(path), *dir)
		if _, err := os.Stat(cand); err == nil {
			*dir = cand
		}
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Checks.ProbabilityTolerance == 0 {
		c.Checks.ProbabilityTolerance = DefaultProbabilityTolerance
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.API.Port == 0 {
		c.API.Port = DefaultPort
	}
	if c.API.CasesRoot == "" {
		c.API.CasesRoot = c.Case.Dir
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Options.Validate(); err != nil {
		return err
	}
	if c.Checks.ProbabilityTolerance < 0 {
		return errors.New("checks.probability_tolerance must be >= 0")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl must be >= 0")
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	return nil
}

func (o OptionsOverride) Validate() error {
	modes := []struct {
		name string
		v    *int
	}{
		{"gen_invest", o.GenInvest},
		{"gen_retire", o.GenRetire},
		{"net_invest", o.NetInvest},
		{"gen_operat", o.GenOperat},
		{"line_commit", o.LineCommit},
	}
	for _, m := range modes {
		if m.v != nil && !model.DecisionMode(*m.v).Valid() {
			return fmt.Errorf("options.%s must be 0, 1 or 2, got %d", m.name, *m.v)
		}
	}
	flags := []struct {
		name string
		v    *int
	}{
		{"single_node", o.SingleNode},
		{"gen_ramps", o.GenRamps},
		{"gen_min_time", o.GenMinTime},
		{"net_losses", o.NetLosses},
	}
	for _, f := range flags {
		if f.v != nil && *f.v != 0 && *f.v != 1 {
			return fmt.Errorf("options.%s must be 0 or 1, got %d", f.name, *f.v)
		}
	}
	return nil
}

// MergeOptions overlays the fields set in override onto base.
func MergeOptions(base model.Options, override OptionsOverride) model.Options {
	out := base
	if override.GenInvest != nil {
		out.GenInvest = model.DecisionMode(*override.GenInvest)
	}
	if override.GenRetire != nil {
		out.GenRetire = model.DecisionMode(*override.GenRetire)
	}
	if override.NetInvest != nil {
		out.NetInvest = model.DecisionMode(*override.NetInvest)
	}
	if override.GenOperat != nil {
		out.GenOperat = model.DecisionMode(*override.GenOperat)
	}
	if override.LineCommit != nil {
		out.LineCommit = model.DecisionMode(*override.LineCommit)
	}
	if override.SingleNode != nil {
		out.SingleNode = *override.SingleNode != 0
	}
	if override.GenRamps != nil {
		out.GenRamps = *override.GenRamps != 0
	}
	if override.GenMinTime != nil {
		out.GenMinTime = *override.GenMinTime != 0
	}
	if override.NetLosses != nil {
		out.NetLosses = *override.NetLosses != 0
	}
	return out
}

// MergeChecks overlays an override's enabled flags and non-zero tolerance onto base.
func MergeChecks(base, override Checks) Checks {
	out := base
	if override.EnforceScenarioProbability {
		out.EnforceScenarioProbability = true
	}
	if override.StrictTopology {
		out.StrictTopology = true
	}
	if override.ProbabilityTolerance != 0 {
		out.ProbabilityTolerance = override.ProbabilityTolerance
	}
	return out
}

// Build returns the logger described by l.
func (l LogConfig) Build() (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if l.Level != "" {
		if err := level.UnmarshalText([]byte(l.Level)); err != nil {
			return nil, errors.Wrap(err, "log.level")
		}
	}
	cfg := zap.NewProductionConfig()
	if l.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	return cfg.Build()
}
