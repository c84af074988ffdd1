// Package config loads runtime settings from an env file and the process
// environment. Database credentials may also come from the OS keyring; a DSN
// resolved from the environment with an embedded password is rejected so
// secrets stay out of plain config files.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/workdeck/planner/internal/constants"
	"github.com/workdeck/planner/internal/keyring"
	"github.com/workdeck/planner/internal/storage"
)

// Config holds all runtime settings for the planner service.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	// DatabaseURL selects the storage backend: a postgres:// DSN or a
	// filesystem path for sqlite. Empty means sqlite at the default path.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	TaskSupplyURL       string        `mapstructure:"TASK_SUPPLY_URL"`
	TaskSupplyTimeout   time.Duration `mapstructure:"TASK_SUPPLY_TIMEOUT"`
	ScheduleCacheTTL    time.Duration `mapstructure:"SCHEDULE_CACHE_TTL"`
	PatternAlpha        float64       `mapstructure:"PATTERN_ALPHA"`
	WorkdayStart        string        `mapstructure:"WORKDAY_START"`
	WorkdayEnd          string        `mapstructure:"WORKDAY_END"`
	Debug               bool          `mapstructure:"DEBUG"`
	LogDir              string        `mapstructure:"LOG_DIR"`
	AllowKeyringStorage bool          `mapstructure:"ALLOW_KEYRING_STORAGE"`
}

// Load reads configuration from path/.env (optional) and the environment,
// then applies defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_PORT", constants.DefaultServerPort)
	v.SetDefault("TASK_SUPPLY_TIMEOUT", constants.DefaultTaskSupplyTimeout)
	v.SetDefault("SCHEDULE_CACHE_TTL", constants.DefaultScheduleCacheTTL)
	v.SetDefault("PATTERN_ALPHA", constants.DefaultSmoothingAlpha)
	v.SetDefault("WORKDAY_START", "09:00")
	v.SetDefault("WORKDAY_END", "17:00")
	v.SetDefault("ALLOW_KEYRING_STORAGE", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.PatternAlpha <= 0 || cfg.PatternAlpha >= 1 {
		return Config{}, fmt.Errorf("PATTERN_ALPHA must be in (0, 1), got %v", cfg.PatternAlpha)
	}
	return cfg, nil
}

// ResolveDSN determines the effective database connection string. Postgres
// DSNs with embedded credentials must come from the keyring, not the
// environment.
func (c *Config) ResolveDSN() (string, error) {
	if c.AllowKeyringStorage && keyring.IsAvailable() {
		if dsn, err := keyring.GetConnectionString(); err == nil {
			return dsn, nil
		}
	}
	if c.DatabaseURL == "" {
		return "", nil
	}
	if storage.IsPostgresDSN(c.DatabaseURL) && storage.HasEmbeddedCredentials(c.DatabaseURL) {
		return "", fmt.Errorf("postgres credentials must be stored in the OS keyring, not DATABASE_URL")
	}
	return c.DatabaseURL, nil
}
