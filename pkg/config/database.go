// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
)

// SQLServerConfig holds SQL Server connection parameters for both the
// application database and the ERP database on the same server.
type SQLServerConfig struct {
	Host     string
	Port     int
	User     string
	Password string

	Database    string // Default: SEDI_APP_INDEPENDANTE
	ERPDatabase string // Default: SEDI_ERP

	Encrypt                bool
	TrustServerCertificate bool

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadSQLServerConfig loads SQL Server configuration from environment variables
func LoadSQLServerConfig() (*SQLServerConfig, error) {
	host := os.Getenv("SQL_SERVER")
	if host == "" {
		return nil, errors.New("SQL_SERVER environment variable is required")
	}

	user := os.Getenv("SQL_USER")
	if user == "" {
		return nil, errors.New("SQL_USER environment variable is required")
	}

	password := os.Getenv("SQL_PASSWORD")
	if password == "" {
		return nil, errors.New("SQL_PASSWORD environment variable is required")
	}

	cfg := &SQLServerConfig{
		Host:     host,
		Port:     getEnvAsInt("SQL_PORT", 1433),
		User:     user,
		Password: password,

		Database:    getEnv("SQL_DATABASE", "SEDI_APP_INDEPENDANTE"),
		ERPDatabase: getEnv("SQL_ERP_DATABASE", "SEDI_ERP"),

		Encrypt:                getEnvAsBool("SQL_ENCRYPT", false),
		TrustServerCertificate: getEnvAsBool("SQL_TRUST_SERVER_CERTIFICATE", true),

		MaxOpenConns:    getEnvAsInt("SQL_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("SQL_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(getEnvAsInt("SQL_CONN_MAX_LIFETIME_SECONDS", 1800)) * time.Second,
		ConnMaxIdleTime: time.Duration(getEnvAsInt("SQL_CONN_MAX_IDLE_TIME_SECONDS", 600)) * time.Second,
	}

	return cfg, nil
}

// ConnectionString returns a formatted SQL Server DSN for the named database.
func (c *SQLServerConfig) ConnectionString(database string) string {
	query := url.Values{}
	query.Set("database", database)
	query.Set("encrypt", boolParam(c.Encrypt))
	query.Set("trustservercertificate", boolParam(c.TrustServerCertificate))

	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		RawQuery: query.Encode(),
	}

	return u.String()
}

// AppConnectionString returns the DSN for the application database.
func (c *SQLServerConfig) AppConnectionString() string {
	return c.ConnectionString(c.Database)
}

// ERPConnectionString returns the DSN for the ERP database.
func (c *SQLServerConfig) ERPConnectionString() string {
	return c.ConnectionString(c.ERPDatabase)
}

func boolParam(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
