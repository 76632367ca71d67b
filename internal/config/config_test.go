package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"EFFNETS_SERVER_ENABLED", "EFFNETS_PORT", "EFFNETS_METRICS_PORT",
	"EFFNETS_DATABASE_URL", "EFFNETS_HERMES_URL", "EFFNETS_INPUT_PATH",
	"EFFNETS_OUTPUT_DIR", "EFFNETS_NR_SCENARIOS", "EFFNETS_NR_ALTERNATIVES",
	"EFFNETS_SCENARIO_NAMES", "EFFNETS_HIERARCHY", "EFFNETS_DER_STRATEGY",
	"EFFNETS_LOG_LEVEL", "EFFNETS_LOG_FORMAT", "EFFNETS_ADMIN_TOKEN",
}

func clearEnv(t *testing.T) {
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Enabled {
		t.Error("expected server disabled by default")
	}
	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Hermes.URL != "" {
		t.Errorf("expected no hermes URL, got %s", cfg.Hermes.URL)
	}
	a := cfg.Analysis
	if a.NrScenarios != 4 || a.NrAlternatives != 4 {
		t.Errorf("expected 4 scenarios x 4 alternatives, got %d x %d", a.NrScenarios, a.NrAlternatives)
	}
	if a.Hierarchy != "five" {
		t.Errorf("expected hierarchy 'five', got '%s'", a.Hierarchy)
	}
	if a.DERStrategy != "blended" {
		t.Errorf("expected DER strategy 'blended', got '%s'", a.DERStrategy)
	}
	if a.MaxConsistencyRatio != 0.1 {
		t.Errorf("expected max consistency ratio 0.1, got %f", a.MaxConsistencyRatio)
	}
	if a.ReferenceAlternative != 1 || a.BaselineScenario != 1 || a.InflexibleGroup != 1 || a.PVGroup != 2 {
		t.Errorf("unexpected group defaults %+v", a)
	}
	if cfg.Calibration.UsageRelated != 0.41 || cfg.Calibration.CapacityRelated != 0.59 {
		t.Errorf("unexpected calibration %+v", cfg.Calibration)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got '%s'", cfg.Logging.Format)
	}

	if cfg.PVStep() != 15*time.Minute {
		t.Errorf("expected PVStep 15m, got %v", cfg.PVStep())
	}
	start, err := cfg.PVStart()
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected PV start %v", start)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EFFNETS_SERVER_ENABLED", "true")
	t.Setenv("EFFNETS_PORT", "9000")
	t.Setenv("EFFNETS_METRICS_PORT", "9001")
	t.Setenv("EFFNETS_DATABASE_URL", "postgres://localhost/effnets_test")
	t.Setenv("EFFNETS_HERMES_URL", "nats://nats:4222")
	t.Setenv("EFFNETS_INPUT_PATH", "/data/input.csv")
	t.Setenv("EFFNETS_OUTPUT_DIR", "/tmp/out")
	t.Setenv("EFFNETS_NR_SCENARIOS", "2")
	t.Setenv("EFFNETS_NR_ALTERNATIVES", "3")
	t.Setenv("EFFNETS_SCENARIO_NAMES", "Base, High PV")
	t.Setenv("EFFNETS_HIERARCHY", "four")
	t.Setenv("EFFNETS_DER_STRATEGY", "proxy_only")
	t.Setenv("EFFNETS_LOG_LEVEL", "debug")
	t.Setenv("EFFNETS_LOG_FORMAT", "text")
	t.Setenv("EFFNETS_ADMIN_TOKEN", "s3cret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Server.Enabled {
		t.Error("expected server enabled")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected metrics port 9001, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "s3cret" {
		t.Errorf("expected admin token from env, got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Database.URL != "postgres://localhost/effnets_test" {
		t.Errorf("expected database URL, got '%s'", cfg.Database.URL)
	}
	if cfg.Hermes.URL != "nats://nats:4222" {
		t.Errorf("expected hermes URL, got '%s'", cfg.Hermes.URL)
	}
	if cfg.Analysis.InputPath != "/data/input.csv" {
		t.Errorf("expected input path, got '%s'", cfg.Analysis.InputPath)
	}
	if cfg.Analysis.OutputDir != "/tmp/out" {
		t.Errorf("expected output dir, got '%s'", cfg.Analysis.OutputDir)
	}
	if cfg.Analysis.NrScenarios != 2 || cfg.Analysis.NrAlternatives != 3 {
		t.Errorf("expected 2 x 3, got %d x %d", cfg.Analysis.NrScenarios, cfg.Analysis.NrAlternatives)
	}
	if len(cfg.Analysis.ScenarioNames) != 2 || cfg.Analysis.ScenarioNames[1] != "High PV" {
		t.Errorf("unexpected scenario names %q", cfg.Analysis.ScenarioNames)
	}
	if cfg.Analysis.Hierarchy != "four" {
		t.Errorf("expected hierarchy 'four', got '%s'", cfg.Analysis.Hierarchy)
	}
	if cfg.Analysis.DERStrategy != "proxy_only" {
		t.Errorf("expected DER strategy 'proxy_only', got '%s'", cfg.Analysis.DERStrategy)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected log format 'text', got '%s'", cfg.Logging.Format)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("EFFNETS_NR_ALTERNATIVES", "5")

	path := filepath.Join(t.TempDir(), "effnets.yaml")
	content := `
analysis:
  nr_scenarios: 2
  nr_alternatives: 3
  scenario_names: [Base, High PV]
  input_path: data/input.csv
  der_strategy: cost_ratio_only
pv:
  step_minutes: 60
  battery:
    capacity_kwh: 5
  tiers: [3, 5, 7]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analysis.NrScenarios != 2 {
		t.Errorf("expected 2 scenarios from file, got %d", cfg.Analysis.NrScenarios)
	}
	if cfg.Analysis.NrAlternatives != 5 {
		t.Errorf("expected env to override file, got %d", cfg.Analysis.NrAlternatives)
	}
	if cfg.Analysis.DERStrategy != "cost_ratio_only" {
		t.Errorf("expected der strategy from file, got %s", cfg.Analysis.DERStrategy)
	}
	if cfg.Analysis.Hierarchy != "five" {
		t.Errorf("expected default hierarchy kept, got %s", cfg.Analysis.Hierarchy)
	}
	if cfg.PVStep() != time.Hour {
		t.Errorf("expected 1h step, got %v", cfg.PVStep())
	}
	if cfg.PV.Battery.CapacityKWh != 5 || cfg.PV.Battery.PowerKW != 5 {
		t.Errorf("expected battery capacity override with default power, got %+v", cfg.PV.Battery)
	}
	if len(cfg.PV.Tiers) != 3 {
		t.Errorf("expected 3 tiers, got %v", cfg.PV.Tiers)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without input path")
	}

	cfg.Analysis.InputPath = "input.csv"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Analysis.ScenarioNames = []string{"only one"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for scenario name count")
	}

	cfg.Analysis.ScenarioNames = nil
	cfg.Analysis.NrAlternatives = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero alternatives")
	}
}
