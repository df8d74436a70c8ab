package connector

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ DatabaseConnector = (*SQLServerConnector)(nil)

// openHandle returns an unconnected driver handle; nothing here dials out.
func openHandle(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlserver", "sqlserver://user:pw@localhost:1433?database=SEDI_APP_INDEPENDANTE")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApplyConnectionSettings_ConfiguresPool(t *testing.T) {
	db := openHandle(t)

	ApplyConnectionSettings(db, 7, 3, time.Hour, 30*time.Minute)

	stats := GetConnectionStats(db)
	assert.Equal(t, 7, stats.MaxOpenConns)
}

func TestApplyConnectionSettings_IgnoresZeroValues(t *testing.T) {
	db := openHandle(t)

	ApplyConnectionSettings(db, 5, 0, 0, 0)
	ApplyConnectionSettings(db, 0, 0, 0, 0)

	stats := GetConnectionStats(db)
	assert.Equal(t, 5, stats.MaxOpenConns)
}
