// pkg/connector/mssql.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/config"
)

// SQLServerConnector implements the DatabaseConnector interface for SQL Server
type SQLServerConnector struct {
	db       *sqlx.DB
	logger   *zap.Logger
	cfg      *config.SQLServerConfig
	database string
}

// NewSQLServerConnector creates and initializes a new SQL Server connector
// against the named database on the configured server.
func NewSQLServerConnector(ctx context.Context, cfg *config.SQLServerConfig, database string) (*SQLServerConnector, error) {
	logger := zap.L().Named("mssql-connector")

	// Log connection attempt
	logger.Info("Connecting to SQL Server",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", database),
		zap.String("user", cfg.User))

	// Open database connection
	db, err := sqlx.Open("sqlserver", cfg.ConnectionString(database))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQL Server connection: %w", err)
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Verify connection
	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQL Server: %w", err)
	}

	connector := &SQLServerConnector{
		db:       db,
		logger:   logger,
		cfg:      cfg,
		database: database,
	}

	LogConnectionStats(logger, database, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *SQLServerConnector) DB() *sqlx.DB {
	return c.db
}

// Database returns the database name this connector is bound to
func (c *SQLServerConnector) Database() string {
	return c.database
}

// Validate verifies the SQL Server connection and required permissions
func (c *SQLServerConnector) Validate() error {
	// Check server version
	var version string
	err := c.db.QueryRow("SELECT @@VERSION").Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to query SQL Server version: %w", err)
	}
	c.logger.Info("Connected to SQL Server", zap.String("version", version))

	// Confirm the session landed in the expected database
	var current string
	if err := c.db.QueryRow("SELECT DB_NAME()").Scan(&current); err != nil {
		return fmt.Errorf("failed to query current database: %w", err)
	}
	if current != c.database {
		return fmt.Errorf("connected to database %q, expected %q", current, c.database)
	}

	c.logger.Info("SQL Server connection validated",
		zap.String("database", c.database),
		zap.String("host", c.cfg.Host),
		zap.Int("port", c.cfg.Port))

	return nil
}

// Close closes the database connection
func (c *SQLServerConnector) Close() error {
	c.logger.Info("Closing SQL Server connection", zap.String("database", c.database))
	LogConnectionStats(c.logger, c.database, c.db)
	return c.db.Close()
}

// ExecWithTimeout executes a statement with a timeout
func (c *SQLServerConnector) ExecWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (sql.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.ExecContext(queryCtx, query, args...)
}

// QueryWithTimeout executes a query with a timeout
func (c *SQLServerConnector) QueryWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (*sqlx.Rows, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.QueryxContext(queryCtx, query, args...)
}
