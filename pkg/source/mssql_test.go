package source

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/connector"
)

type failingConnector struct {
	err error
}

var _ connector.DatabaseConnector = (*failingConnector)(nil)

func (c *failingConnector) DB() *sqlx.DB    { return nil }
func (c *failingConnector) Validate() error { return nil }
func (c *failingConnector) Close() error    { return nil }

func (c *failingConnector) QueryWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (*sqlx.Rows, error) {
	return nil, c.err
}

func (c *failingConnector) ExecWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (sql.Result, error) {
	return nil, c.err
}

func TestSQLEvents_StartsWrapsFetchError(t *testing.T) {
	events := NewSQLEvents(&failingConnector{err: errors.New("login failed")}, 0, zap.NewNop())

	_, err := events.Starts(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "abetemps_temps")
}

func TestSQLEvents_EndsWrapsFetchError(t *testing.T) {
	events := NewSQLEvents(&failingConnector{err: errors.New("login failed")}, 0, zap.NewNop())

	_, err := events.Ends(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "abetemps_pause")
}
