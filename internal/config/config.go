package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Hermes      HermesConfig      `yaml:"hermes"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Calibration CalibrationConfig `yaml:"calibration"`
	PV          PVConfig          `yaml:"pv"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type AnalysisConfig struct {
	NrScenarios    int      `yaml:"nr_scenarios"`
	NrAlternatives int      `yaml:"nr_alternatives"`
	ScenarioNames  []string `yaml:"scenario_names"`

	InputPath         string `yaml:"input_path"`
	ContributionsPath string `yaml:"contributions_path"`
	PVProxyPath       string `yaml:"pv_proxy_path"`
	OutputDir         string `yaml:"output_dir"`

	Hierarchy           string  `yaml:"hierarchy"`
	CriteriaTreePath    string  `yaml:"criteria_tree_path"`
	BundlesPath         string  `yaml:"bundles_path"`
	DERStrategy         string  `yaml:"der_strategy"`
	MaxConsistencyRatio float64 `yaml:"max_consistency_ratio"`

	ReferenceAlternative int `yaml:"reference_alternative"`
	BaselineScenario     int `yaml:"baseline_scenario"`
	InflexibleGroup      int `yaml:"inflexible_group"`
	PVGroup              int `yaml:"pv_group"`
}

// CalibrationConfig is the status-quo split of network costs used to
// calibrate cost contributions when no precomputed table is given.
type CalibrationConfig struct {
	UsageRelated    float64 `yaml:"usage_related"`
	CapacityRelated float64 `yaml:"capacity_related"`
}

// PVConfig drives the offline PV proxy simulation.
type PVConfig struct {
	ProfilesPath string        `yaml:"profiles_path"`
	Start        string        `yaml:"start"`
	StepMinutes  int           `yaml:"step_minutes"`
	PVScale      float64       `yaml:"pv_scale"`
	Battery      BatteryConfig `yaml:"battery"`
	Tiers        []float64     `yaml:"tiers"`
}

type BatteryConfig struct {
	CapacityKWh float64 `yaml:"capacity_kwh"`
	PowerKW     float64 `yaml:"power_kw"`
	Efficiency  float64 `yaml:"efficiency"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) PVStep() time.Duration {
	return time.Duration(c.PV.StepMinutes) * time.Minute
}

func (c *Config) PVStart() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, c.PV.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("pv.start: %w", err)
	}
	return t, nil
}

// Validate checks the values the analysis cannot run without.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.NrScenarios < 1 {
		return fmt.Errorf("analysis.nr_scenarios must be positive, got %d", a.NrScenarios)
	}
	if a.NrAlternatives < 1 {
		return fmt.Errorf("analysis.nr_alternatives must be positive, got %d", a.NrAlternatives)
	}
	if len(a.ScenarioNames) != 0 && len(a.ScenarioNames) != a.NrScenarios {
		return fmt.Errorf("analysis.scenario_names has %d entries for %d scenarios", len(a.ScenarioNames), a.NrScenarios)
	}
	if a.InputPath == "" {
		return fmt.Errorf("analysis.input_path is required")
	}
	if a.MaxConsistencyRatio < 0 {
		return fmt.Errorf("analysis.max_consistency_ratio must not be negative")
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Analysis: AnalysisConfig{
			NrScenarios:          4,
			NrAlternatives:       4,
			OutputDir:            "results",
			Hierarchy:            "five",
			DERStrategy:          "blended",
			MaxConsistencyRatio:  0.1,
			ReferenceAlternative: 1,
			BaselineScenario:     1,
			InflexibleGroup:      1,
			PVGroup:              2,
		},
		Calibration: CalibrationConfig{
			UsageRelated:    0.41,
			CapacityRelated: 0.59,
		},
		PV: PVConfig{
			Start:       "2023-01-01T00:00:00Z",
			StepMinutes: 15,
			PVScale:     1,
			Battery: BatteryConfig{
				CapacityKWh: 10,
				PowerKW:     5,
				Efficiency:  0.95,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("EFFNETS_SERVER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.Enabled = b
		}
	}
	if v := os.Getenv("EFFNETS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("EFFNETS_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("EFFNETS_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("EFFNETS_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("EFFNETS_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("EFFNETS_INPUT_PATH"); v != "" {
		cfg.Analysis.InputPath = v
	}
	if v := os.Getenv("EFFNETS_OUTPUT_DIR"); v != "" {
		cfg.Analysis.OutputDir = v
	}
	if v := os.Getenv("EFFNETS_NR_SCENARIOS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.NrScenarios = n
		}
	}
	if v := os.Getenv("EFFNETS_NR_ALTERNATIVES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.NrAlternatives = n
		}
	}
	if v := os.Getenv("EFFNETS_SCENARIO_NAMES"); v != "" {
		names := strings.Split(v, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		cfg.Analysis.ScenarioNames = names
	}
	if v := os.Getenv("EFFNETS_HIERARCHY"); v != "" {
		cfg.Analysis.Hierarchy = v
	}
	if v := os.Getenv("EFFNETS_DER_STRATEGY"); v != "" {
		cfg.Analysis.DERStrategy = v
	}
	if v := os.Getenv("EFFNETS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EFFNETS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
