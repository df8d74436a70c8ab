// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Database connection
	SQLServer *SQLServerConfig

	// HTTP server
	ListenAddr string

	// Operating mode
	DisableSQL        bool   // simulation mode: fixtures and the JSON history store only
	AutoBootstrap     bool   // provision schema objects at startup
	AutoExportOnStart bool   // run one reconciliation for today at startup
	DataDir           string // JSON history store location
	FixturePath       string // optional YAML fixture for simulation mode

	// Query timeouts
	QueryTimeout time.Duration
	MergeTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Default values
		ListenAddr:        ":" + getEnv("PORT", "3000"),
		DisableSQL:        getEnvAsBool("DISABLE_SQL", false),
		AutoBootstrap:     getEnvAsBool("AUTO_BOOTSTRAP", false),
		AutoExportOnStart: getEnvAsBool("AUTO_EXPORT_ON_START", false),
		DataDir:           getEnv("DATA_DIR", "data"),
		FixturePath:       getEnv("FIXTURE_PATH", ""),
		QueryTimeout:      getEnvAsDuration("QUERY_TIMEOUT_SECONDS", 30),
		MergeTimeout:      getEnvAsDuration("MERGE_TIMEOUT_SECONDS", 120),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}

	// Load database configuration; optional in simulation mode
	sqlConfig, err := LoadSQLServerConfig()
	if err != nil {
		if !cfg.DisableSQL {
			return nil, errors.New("failed to load SQL Server configuration: " + err.Error())
		}
	}
	cfg.SQLServer = sqlConfig

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if !c.DisableSQL && c.SQLServer == nil {
		return errors.New("SQL Server configuration is required unless DISABLE_SQL=1")
	}

	if c.DataDir == "" {
		return errors.New("data directory cannot be empty")
	}

	if c.QueryTimeout <= 0 {
		return errors.New("query timeout must be positive")
	}

	if c.MergeTimeout <= 0 {
		return errors.New("merge timeout must be positive")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "1" || valueStr == "true"
}

func getEnvAsDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}
