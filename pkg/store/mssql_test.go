package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/connector"
)

// stubConnector fails every statement with the configured error.
type stubConnector struct {
	queryErr error
	execErr  error
}

var _ connector.DatabaseConnector = (*stubConnector)(nil)

func (c *stubConnector) DB() *sqlx.DB    { return nil }
func (c *stubConnector) Validate() error { return nil }
func (c *stubConnector) Close() error    { return nil }

func (c *stubConnector) QueryWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (*sqlx.Rows, error) {
	return nil, c.queryErr
}

func (c *stubConnector) ExecWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (sql.Result, error) {
	return nil, c.execErr
}

func TestSQLLedger_CountTimeoutIsTransient(t *testing.T) {
	ledger := NewSQLLedger(&stubConnector{queryErr: context.DeadlineExceeded}, 0, zap.NewNop())

	_, err := ledger.Count(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestSQLLedger_ProvisionMapsMissingObjectError(t *testing.T) {
	ledger := NewSQLLedger(&stubConnector{queryErr: mssql.Error{Number: 208}}, 0, zap.NewNop())

	err := ledger.Provision(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMissing)
}

func TestSQLLedger_RecentWrapsConnectorError(t *testing.T) {
	ledger := NewSQLLedger(&stubConnector{queryErr: errors.New("connection reset")}, 0, zap.NewNop())

	_, err := ledger.Recent(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read ledger")
}

func TestSQLLedger_MergeBatchEmptyTouchesNothing(t *testing.T) {
	// The stub has no usable DB handle; an empty batch must return before
	// any statement runs.
	ledger := NewSQLLedger(&stubConnector{queryErr: errors.New("unreachable")}, 0, zap.NewNop())

	stats, err := ledger.MergeBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, MergeStats{}, stats)
}
