package config

import (
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// AlphaVantageRESTBaseURL is the alpha vantage market data base REST url.
	AlphaVantageRESTBaseURL = "https://www.alphavantage.co/"

	// DefaultCron runs the pipeline every day at 02:30.
	DefaultCron = "30 2 * * *"

	// EmptySeriesSkip treats a daily series with no dated entries as "no data today".
	EmptySeriesSkip = "skip"
	// EmptySeriesError treats a daily series with no dated entries as a transform failure.
	EmptySeriesError = "error"
)

// Config contains config values for the app.
// Struct values are loaded from user defined JSON or YAML config file.
type Config struct {
	Pipeline   Pipeline   `json:"pipeline" yaml:"pipeline"`
	Provider   Provider   `json:"provider" yaml:"provider"`
	Connection Connection `json:"connection" yaml:"connection"`
	Target     Target     `json:"target" yaml:"target"`
	Schedule   Schedule   `json:"schedule" yaml:"schedule"`
	Variables  string     `json:"variables_file" yaml:"variables_file"`
	Log        Log        `json:"log" yaml:"log"`
}

// Pipeline contains config values for a single run.
type Pipeline struct {
	Symbol      string `json:"symbol" yaml:"symbol"`
	EmptySeries string `json:"empty_series" yaml:"empty_series"`
}

// Provider contains config values for the market data source.
type Provider struct {
	BaseURL        string `json:"base_url" yaml:"base_url"`
	APIKeyVariable string `json:"api_key_variable" yaml:"api_key_variable"`
}

// Connection contains config values for different API and storage connections.
type Connection struct {
	REST      REST      `json:"rest" yaml:"rest"`
	Terminal  Terminal  `json:"terminal" yaml:"terminal"`
	Warehouse Warehouse `json:"warehouse" yaml:"warehouse"`
}

// REST contains config values for REST API connection.
type REST struct {
	ReqTimeoutSec       int `json:"request_timeout_sec" yaml:"request_timeout_sec"`
	MaxIdleConns        int `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int `json:"max_idle_conns_per_host" yaml:"max_idle_conns_per_host"`
}

// Terminal contains config values for terminal display.
type Terminal struct {
	DisplayRecords bool `json:"display_records" yaml:"display_records"`
}

// Warehouse contains config values for the sql warehouse.
// DSN is used as is when set, otherwise it is read from DSNVariable.
type Warehouse struct {
	Driver             string `json:"driver" yaml:"driver"`
	DSN                string `json:"dsn" yaml:"dsn"`
	DSNVariable        string `json:"dsn_variable" yaml:"dsn_variable"`
	ReqTimeoutSec      int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
	ConnMaxLifetimeSec int    `json:"conn_max_lifetime_sec" yaml:"conn_max_lifetime_sec"`
	MaxOpenConns       int    `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns       int    `json:"max_idle_conns" yaml:"max_idle_conns"`
	CreateTable        bool   `json:"create_table" yaml:"create_table"`
}

// Target identifies the full refresh table.
type Target struct {
	Database string `json:"database" yaml:"database"`
	Schema   string `json:"schema" yaml:"schema"`
	Table    string `json:"table" yaml:"table"`
}

// Schedule contains config values for the in-process trigger.
type Schedule struct {
	Cron       string `json:"cron" yaml:"cron"`
	RunOnStart bool   `json:"run_on_start" yaml:"run_on_start"`
}

// Log contains config values for logging.
type Log struct {
	Level    string `json:"level" yaml:"level"`
	FilePath string `json:"file_path" yaml:"file_path"`
}

// Load reads config from a JSON or YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := &Config{}
	if err = decode(path, data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	cfg.SetDefaults()
	return cfg, nil
}

// decode picks the codec from the file extension. Anything which is not yaml is json.
func decode(path string, data []byte, v interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return jsoniter.Unmarshal(data, v)
	}
}

// SetDefaults fills unset values with the NFLX / STOCK.RAW.STOCK_PRICES daily job.
func (c *Config) SetDefaults() {
	if c.Pipeline.Symbol == "" {
		c.Pipeline.Symbol = "NFLX"
	}
	if c.Pipeline.EmptySeries == "" {
		c.Pipeline.EmptySeries = EmptySeriesSkip
	}
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = AlphaVantageRESTBaseURL
	}
	if !strings.HasSuffix(c.Provider.BaseURL, "/") {
		c.Provider.BaseURL += "/"
	}
	if c.Provider.APIKeyVariable == "" {
		c.Provider.APIKeyVariable = "vantage_api_key"
	}
	if c.Connection.Warehouse.Driver == "" {
		c.Connection.Warehouse.Driver = "snowflake"
	}
	if c.Connection.Warehouse.DSN == "" && c.Connection.Warehouse.DSNVariable == "" {
		c.Connection.Warehouse.DSNVariable = "snowflake_conn"
	}
	if c.Target.Database == "" && c.Target.Schema == "" && c.Target.Table == "" {
		c.Target = Target{Database: "STOCK", Schema: "RAW", Table: "STOCK_PRICES"}
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = DefaultCron
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks user defined values which can't be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Pipeline.Symbol) == "" {
		return errors.New("pipeline.symbol is required")
	}
	switch c.Pipeline.EmptySeries {
	case EmptySeriesSkip, EmptySeriesError:
	default:
		return errors.Errorf("pipeline.empty_series should be %q or %q, got %q", EmptySeriesSkip, EmptySeriesError, c.Pipeline.EmptySeries)
	}
	switch c.Connection.Warehouse.Driver {
	case "mysql", "snowflake", "pgx", "sqlite":
	default:
		return errors.Errorf("connection.warehouse.driver %q is not supported", c.Connection.Warehouse.Driver)
	}
	if c.Target.Table == "" {
		return errors.New("target.table is required")
	}
	switch c.Log.Level {
	case "error", "info", "debug":
	default:
		return errors.Errorf("log.level should be error, info or debug, got %q", c.Log.Level)
	}
	return nil
}
