// Package config centralizes process configuration. Every tunable is a
// command-line flag whose default is seeded from an environment variable
// (12-factor friendly), so `-help` shows all knobs and their effective
// defaults. Production code calls Load(); tests call LoadFromArgs with a
// private FlagSet and a map-backed getenv to stay hermetic.
package config

import (
	"flag"
	"os"
	"strconv"
)

// Config holds all process configuration. Fields are plain values so the
// struct can be copied freely after construction.
type Config struct {
	// Input/output paths.
	CustomersFile string // customers extract CSV
	ProductsFile  string // products extract CSV
	SalesFile     string // sales extract CSV
	ReportFile    string // run summary destination
	LogFile       string // log stream destination
	LogLevel      string // debug|info|warn|error

	// Store connectivity. Driver selects the backend; DSN wins when set,
	// otherwise the discrete parts build a Postgres URL. For sqlite, DSN
	// (or SQLitePath) is the database file.
	Driver     string // "postgres" or "sqlite"
	DSN        string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	SQLitePath string

	// Pipeline tunables.
	BatchSize   int    // rows per multi-row insert
	CountryCode string // phone normalization prefix

	// Metrics.
	MetricsBackend string // "pushgateway" or "none"
	PushgatewayURL string
}

// LoadFromArgs builds a Config by defining flags on fs with env-seeded
// defaults via getenv, then parsing args.
//
// Precedence: explicit CLI flags override environment values, which override
// built-in defaults.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) *Config {
	cfg := &Config{}

	envOr := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOr := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}

	fs.StringVar(&cfg.CustomersFile, "customers_file", envOr("CUSTOMERS_FILE", "customers_raw.csv"), "Path to customers CSV")
	fs.StringVar(&cfg.ProductsFile, "products_file", envOr("PRODUCTS_FILE", "products_raw.csv"), "Path to products CSV")
	fs.StringVar(&cfg.SalesFile, "sales_file", envOr("SALES_FILE", "sales_raw.csv"), "Path to sales CSV")
	fs.StringVar(&cfg.ReportFile, "report_file", envOr("REPORT_FILE", "data_quality_report.txt"), "Path to write the run summary")
	fs.StringVar(&cfg.LogFile, "log_file", envOr("LOG_FILE", "etl_pipeline.log"), "Path to the log file")
	fs.StringVar(&cfg.LogLevel, "log_level", envOr("LOG_LEVEL", "info"), "Log level: debug|info|warn|error")

	fs.StringVar(&cfg.Driver, "db_driver", envOr("DB_DRIVER", "postgres"), "Store backend: 'postgres' or 'sqlite'")
	fs.StringVar(&cfg.DSN, "dsn", getenv("DB_DSN"), "Full DSN (optional; built from parts when empty)")
	fs.StringVar(&cfg.DBHost, "db_host", envOr("DB_HOST", "localhost"), "DB host")
	fs.StringVar(&cfg.DBPort, "db_port", envOr("DB_PORT", "5432"), "DB port")
	fs.StringVar(&cfg.DBName, "db_name", envOr("DB_NAME", "fleximart"), "DB name")
	fs.StringVar(&cfg.DBUser, "db_user", envOr("DB_USER", "postgres"), "DB user")
	fs.StringVar(&cfg.DBPassword, "db_password", envOr("DB_PASS", ""), "DB password")
	fs.StringVar(&cfg.SQLitePath, "sqlite_path", envOr("SQLITE_PATH", "fleximart.db"), "SQLite database file (sqlite driver only)")

	fs.IntVar(&cfg.BatchSize, "batch_size", intEnvOr("BATCH_SIZE", 1000), "Rows per multi-row insert")
	fs.StringVar(&cfg.CountryCode, "country_code", envOr("COUNTRY_CODE", "+91-"), "Phone country-code prefix")

	fs.StringVar(&cfg.MetricsBackend, "metrics_backend", envOr("METRICS_BACKEND", "none"), "Metrics backend: 'pushgateway' or 'none'")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway_url", envOr("PUSHGATEWAY_URL", "http://localhost:9091"), "Pushgateway base URL")

	if args == nil {
		args = []string{}
	}
	_ = fs.Parse(args)
	return cfg
}

// Load is the production entry point: process flags, process environment.
func Load() *Config {
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// PostgresDSN returns the DSN to use for the postgres driver: the explicit
// DSN when set, otherwise one built from the discrete parts.
func (c *Config) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName
}

// SQLiteDSN returns the sqlite database path: the explicit DSN when set,
// otherwise the configured file path.
func (c *Config) SQLiteDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return c.SQLitePath
}
