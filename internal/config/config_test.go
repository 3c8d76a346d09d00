package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadJSONDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{"connection":{"warehouse":{"driver":"mysql","dsn":"u:p@tcp(localhost:3306)/stock"}}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Pipeline.Symbol != "NFLX" {
		t.Errorf("symbol = %q, want NFLX", cfg.Pipeline.Symbol)
	}
	if cfg.Target != (Target{Database: "STOCK", Schema: "RAW", Table: "STOCK_PRICES"}) {
		t.Errorf("target = %+v", cfg.Target)
	}
	if cfg.Schedule.Cron != DefaultCron {
		t.Errorf("cron = %q", cfg.Schedule.Cron)
	}
	if cfg.Connection.Warehouse.DSNVariable != "" {
		t.Errorf("dsn variable should stay empty when dsn is set, got %q", cfg.Connection.Warehouse.DSNVariable)
	}
	if err = cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
pipeline:
  symbol: IBM
  empty_series: error
provider:
  base_url: http://localhost:8080
target:
  table: prices
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Pipeline.Symbol != "IBM" || cfg.Pipeline.EmptySeries != EmptySeriesError {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Provider.BaseURL != "http://localhost:8080/" {
		t.Errorf("base url = %q", cfg.Provider.BaseURL)
	}
	if cfg.Target != (Target{Table: "prices"}) {
		t.Errorf("target = %+v", cfg.Target)
	}
	if cfg.Connection.Warehouse.Driver != "snowflake" || cfg.Connection.Warehouse.DSNVariable != "snowflake_conn" {
		t.Errorf("warehouse = %+v", cfg.Connection.Warehouse)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"blank symbol", func(c *Config) { c.Pipeline.Symbol = "  " }},
		{"empty series policy", func(c *Config) { c.Pipeline.EmptySeries = "ignore" }},
		{"driver", func(c *Config) { c.Connection.Warehouse.Driver = "oracle" }},
		{"table", func(c *Config) { c.Target.Table = "" }},
		{"log level", func(c *Config) { c.Log.Level = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.SetDefaults()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestVariables(t *testing.T) {
	t.Setenv("TEST_VAR_VANTAGE_API_KEY", "env-key")
	env := EnvVariables{Prefix: "TEST_VAR_"}

	v, err := env.Get("vantage_api_key")
	if err != nil || v != "env-key" {
		t.Fatalf("env get = %q, %v", v, err)
	}
	if _, err = env.Get("missing"); !errors.Is(err, ErrVariableNotFound) {
		t.Errorf("env missing err = %v", err)
	}

	path := writeFile(t, "variables.json", `{"snowflake_conn":"user:pass@account/STOCK/RAW","vantage_api_key":"file-key"}`)
	file, err := LoadFileVariables(path)
	if err != nil {
		t.Fatalf("load variables: %v", err)
	}

	chain := ChainVariables{env, file}
	if v, _ = chain.Get("vantage_api_key"); v != "env-key" {
		t.Errorf("chain should prefer env, got %q", v)
	}
	if v, _ = chain.Get("snowflake_conn"); v != "user:pass@account/STOCK/RAW" {
		t.Errorf("chain fallback = %q", v)
	}
	if _, err = chain.Get("nope"); !errors.Is(err, ErrVariableNotFound) {
		t.Errorf("chain missing err = %v", err)
	}
}
