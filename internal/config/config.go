// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// PrivacyMode controls which visitor attributes the event store exposes.
// The analyzers never inspect this value; they only see the resulting
// nil fields on the events they receive.
type PrivacyMode string

const (
	PrivacyModeStandard PrivacyMode = "standard"
	PrivacyModeStrict   PrivacyMode = "strict"
	PrivacyModeParanoid PrivacyMode = "paranoid"
)

// Database types
const (
	SQLiteDatabase = "sqlite"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// Privacy settings
	PrivacyMode       PrivacyMode `mapstructure:"privacymode"`
	HashRotationHours int         `mapstructure:"hashrotationhours"`

	// File paths
	DatabasePath string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseType         string `mapstructure:"dbtype"`
	DatabaseMaxOpenConns int    `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int    `mapstructure:"dbmaxidleconns"`

	// Analytics settings
	HeatmapLookbackDays int `mapstructure:"heatmaplookbackdays"`

	// Result cache settings
	CacheTTLSeconds int   `mapstructure:"cachettlseconds"`
	CacheMaxEntries int64 `mapstructure:"cachemaxentries"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("appname", "visitlens")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("privacymode", string(PrivacyModeStandard))
		v.SetDefault("hashrotationhours", 24)
		v.SetDefault("storagepath", "storage")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbtype", SQLiteDatabase)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("heatmaplookbackdays", 90)
		v.SetDefault("cachettlseconds", 60)
		v.SetDefault("cachemaxentries", 4096)

		v.BindEnv("appname", "VISITLENS_APP_NAME")
		v.BindEnv("appport", "VISITLENS_APP_PORT")
		v.BindEnv("environment", "VISITLENS_ENV")
		v.BindEnv("loglevel", "VISITLENS_LOG_LEVEL")
		v.BindEnv("privacymode", "VISITLENS_PRIVACY_MODE")
		v.BindEnv("hashrotationhours", "VISITLENS_HASH_ROTATION_HOURS")
		v.BindEnv("storagepath", "VISITLENS_STORAGE_PATH")
		v.BindEnv("logsdir", "VISITLENS_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "VISITLENS_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "VISITLENS_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "VISITLENS_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbtype", "VISITLENS_DB_TYPE")
		v.BindEnv("dbmaxopenconns", "VISITLENS_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "VISITLENS_DB_MAX_IDLE_CONNS")
		v.BindEnv("heatmaplookbackdays", "VISITLENS_HEATMAP_LOOKBACK_DAYS")
		v.BindEnv("cachettlseconds", "VISITLENS_CACHE_TTL_SECONDS")
		v.BindEnv("cachemaxentries", "VISITLENS_CACHE_MAX_ENTRIES")

		v.AutomaticEnv()

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("Unable to decode config: %v", err)
		}

		cfg.DatabaseName = deriveDatabaseName(cfg)
	})

	return cfg
}

func deriveDatabaseName(c *Config) string {
	switch c.Environment {
	case Test:
		return "file::memory:?cache=shared"
	default:
		return filepath.Join(c.DatabasePath, fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest reports whether the app runs in test mode
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetMaxOpenConns returns the configured max open DB connections
func (c *Config) GetMaxOpenConns() int {
	return c.DatabaseMaxOpenConns
}

// GetMaxIdleConns returns the configured max idle DB connections
func (c *Config) GetMaxIdleConns() int {
	return c.DatabaseMaxIdleConns
}

// CacheEnabled reports whether the result cache should be active
func (c *Config) CacheEnabled() bool {
	return c.CacheTTLSeconds > 0
}
