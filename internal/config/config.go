package config

import (
	"errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Quotes   Quotes   `mapstructure:"quotes"`
	Risk     Risk     `mapstructure:"risk"`
	Reports  Reports  `mapstructure:"reports"`
	Presets  Presets  `mapstructure:"presets"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// Server holds the configuration for the web server.
type Server struct {
	Port          int           `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	AllowedOrigin string        `mapstructure:"allowed_origin"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Quotes holds the configuration for the live price provider.
type Quotes struct {
	BaseURL        string        `mapstructure:"base_url"`
	ApiKey         string        `mapstructure:"api_key"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	Instruments    []string      `mapstructure:"instruments"`
}

// Risk holds the thresholds of the trade risk validator.
type Risk struct {
	MaxRiskPct          float64 `mapstructure:"max_risk_pct"`
	WarnRiskPct         float64 `mapstructure:"warn_risk_pct"`
	DailyBudgetFraction float64 `mapstructure:"daily_budget_fraction"`
	MinRMultiple        float64 `mapstructure:"min_r_multiple"`
}

// Reports holds the configuration for the reports table.
type Reports struct {
	PageSize int `mapstructure:"page_size"`
}

// Presets points at the YAML file of prop-firm accounts and strategies to seed.
type Presets struct {
	Path string `mapstructure:"path"`
}

// apiKeyEnv is the variable the TraderMade key has always been read from.
const apiKeyEnv = "TRADERMADE_API_KEY"

// LoadConfig reads config.yml from path, with environment variables and a .env file
// taking precedence. A missing config file is not an error; defaults apply.
func LoadConfig(path string) (config Config, err error) {
	for _, envFile := range []string{filepath.Join(path, ".env"), ".env"} {
		if err = godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return
		}
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	if key := os.Getenv(apiKeyEnv); key != "" {
		config.Quotes.ApiKey = key
	}
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)

	v.SetDefault("server.port", 8001)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origin", "*")

	v.SetDefault("database.dsn", "journal.db")

	v.SetDefault("quotes.base_url", "https://marketdata.tradermade.com/api/v1")
	v.SetDefault("quotes.rate_limit", 2)      // requests per second
	v.SetDefault("quotes.rate_limit_burst", 1) // burst size
	v.SetDefault("quotes.poll_interval", 30*time.Second)

	v.SetDefault("risk.max_risk_pct", 2.0)
	v.SetDefault("risk.warn_risk_pct", 1.5)
	v.SetDefault("risk.daily_budget_fraction", 0.8)
	v.SetDefault("risk.min_r_multiple", -3.0)

	v.SetDefault("reports.page_size", 20)
}
