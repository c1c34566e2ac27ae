package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store kinds accepted by the store option.
const (
	StoreNone     = "none"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the options of one pipeline run.
type Config struct {
	InputPath      string `mapstructure:"input_path"`
	TopN           int    `mapstructure:"top_n"`
	Bins           int    `mapstructure:"bins"`
	GenerateReport bool   `mapstructure:"generate_report"`
	OutputDir      string `mapstructure:"output_dir"`
	Parallel       bool   `mapstructure:"parallel"`
	Workers        int    `mapstructure:"workers"`
	Verbose        bool   `mapstructure:"verbose"`
	ChromeBin      string `mapstructure:"chrome_bin"`

	Store      string `mapstructure:"store"`
	SQLitePath string `mapstructure:"sqlite_path"`

	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     string `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDB       string `mapstructure:"postgres_db"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`
	PostgresDSN      string `mapstructure:"postgres_dsn"`
}

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"top-n":       "top_n",
	"bins":        "bins",
	"report":      "generate_report",
	"out":         "output_dir",
	"parallel":    "parallel",
	"workers":     "workers",
	"verbose":     "verbose",
	"store":       "store",
	"sqlite-path": "sqlite_path",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input_path", "")
	v.SetDefault("top_n", 10)
	v.SetDefault("bins", 20)
	v.SetDefault("generate_report", false)
	v.SetDefault("output_dir", "./output")
	v.SetDefault("parallel", false)
	v.SetDefault("workers", 4)
	v.SetDefault("verbose", false)
	v.SetDefault("chrome_bin", "")

	v.SetDefault("store", StoreNone)
	v.SetDefault("sqlite_path", "./output/restaurants.db")

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_user", "restaurants")
	v.SetDefault("postgres_password", "restaurants")
	v.SetDefault("postgres_db", "restaurants")
	v.SetDefault("postgres_sslmode", "disable")
	v.SetDefault("postgres_dsn", "")
}

// Load reads the configuration. Precedence: changed flags > RESTAURANT_*
// environment (CHROME_BIN is also read for chrome_bin) (a .env file in the working directory is loaded first) >
// config file > defaults. cfgFile may be empty, in which case an optional
// restaurant-insights.yaml in the working directory is used. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("RESTAURANT")
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.BindEnv("chrome_bin", "RESTAURANT_CHROME_BIN", "CHROME_BIN"); err != nil {
		return nil, fmt.Errorf("bind chrome_bin: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("restaurant-insights")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %q: %w", name, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate checks the options the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.TopN < 1 {
		return fmt.Errorf("%w: top_n must be at least 1, got %d", ErrInvalid, c.TopN)
	}
	if c.Bins < 1 {
		return fmt.Errorf("%w: bins must be at least 1, got %d", ErrInvalid, c.Bins)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	switch c.Store {
	case StoreNone, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("%w: unknown store %q (want none, postgres or sqlite)", ErrInvalid, c.Store)
	}
	if c.Store == StoreSQLite && c.SQLitePath == "" {
		return fmt.Errorf("%w: sqlite_path is required for the sqlite store", ErrInvalid)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is empty", ErrInvalid)
	}
	return nil
}

// DSN returns the PostgreSQL connection string. postgres_dsn, when set, wins
// over the individual fields.
func (c *Config) DSN() string {
	if c.PostgresDSN != "" {
		return c.PostgresDSN
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}
