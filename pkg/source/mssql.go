// pkg/source/mssql.go
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/connector"
	"github.com/sedi-apps/timetrack/pkg/model"
)

const (
	startTable = "GPSQL.dbo.abetemps_temps"
	endTable   = "GPSQL.dbo.abetemps_pause"
)

// SQLEvents reads the raw event streams from the GPSQL tables on the ERP
// server. Rows come back untrimmed; normalization is the reconciler's job.
type SQLEvents struct {
	conn    connector.DatabaseConnector
	logger  *zap.Logger
	timeout time.Duration
}

// NewSQLEvents creates an event source over an open ERP connection.
func NewSQLEvents(conn connector.DatabaseConnector, timeout time.Duration, logger *zap.Logger) *SQLEvents {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SQLEvents{
		conn:    conn,
		logger:  logger.Named("sql-events"),
		timeout: timeout,
	}
}

type rawEventRow struct {
	Identity   sql.NullString `db:"Ident"`
	LaunchCode sql.NullString `db:"CodeLanctImprod"`
	Phase      sql.NullString `db:"Phase"`
	RubricCode sql.NullString `db:"CodeRubrique"`
	Timestamp  sql.NullTime   `db:"EventTime"`
}

// Starts returns the start-event rows at or after the since date.
func (s *SQLEvents) Starts(ctx context.Context, since *time.Time) ([]model.RawEvent, error) {
	return s.fetch(ctx, startTable, "DateDebut", model.KindStart, since)
}

// Ends returns the pause/end-event rows at or after the since date.
func (s *SQLEvents) Ends(ctx context.Context, since *time.Time) ([]model.RawEvent, error) {
	return s.fetch(ctx, endTable, "DateFin", model.KindEnd, since)
}

func (s *SQLEvents) fetch(ctx context.Context, table, timeColumn string, kind model.Kind, since *time.Time) ([]model.RawEvent, error) {
	query := fmt.Sprintf(`
SELECT Ident, CodeLanctImprod, Phase, CodeRubrique, %s AS EventTime
FROM %s`, timeColumn, table)

	var args []interface{}
	if since != nil {
		query += fmt.Sprintf(" WHERE CONVERT(date, %s) >= @p1", timeColumn)
		args = append(args, since.Format("2006-01-02"))
	}

	rows, err := s.conn.QueryWithTimeout(ctx, query, s.timeout, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()

	var events []model.RawEvent
	for rows.Next() {
		var r rawEventRow
		if err := rows.StructScan(&r); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		ev := model.RawEvent{
			Identity:    r.Identity.String,
			LaunchCode:  r.LaunchCode.String,
			Phase:       r.Phase.String,
			RubricCode:  r.RubricCode.String,
			Kind:        kind,
			SourceTable: table,
		}
		if r.Timestamp.Valid {
			ev.Timestamp = r.Timestamp.Time
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s rows: %w", table, err)
	}

	s.logger.Debug("Fetched raw events",
		zap.String("table", table),
		zap.Int("rows", len(events)))

	return events, nil
}
