// pkg/directory/mssql.go
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/connector"
	"github.com/sedi-apps/timetrack/pkg/model"
)

const resourceTable = "SEDI_ERP.dbo.RESSOURC"

// SQLDirectory reads the operator directory from the ERP RESSOURC table and
// day activity from the GPSQL time tables.
type SQLDirectory struct {
	conn    connector.DatabaseConnector
	logger  *zap.Logger
	timeout time.Duration
}

// NewSQLDirectory creates a directory over an open ERP connection.
func NewSQLDirectory(conn connector.DatabaseConnector, timeout time.Duration, logger *zap.Logger) *SQLDirectory {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SQLDirectory{
		conn:    conn,
		logger:  logger.Named("directory"),
		timeout: timeout,
	}
}

type operatorRow struct {
	Code string         `db:"Coderessource"`
	Name sql.NullString `db:"Designation1"`
	Type sql.NullString `db:"Typeressource"`
}

// Operators returns the full resource directory, ordered by code.
func (d *SQLDirectory) Operators(ctx context.Context) ([]model.Operator, error) {
	queryCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	query := fmt.Sprintf(`
SELECT TOP (1000) Typeressource, Coderessource, Designation1
FROM %s
ORDER BY Coderessource`, resourceTable)

	var rows []operatorRow
	if err := d.conn.DB().SelectContext(queryCtx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to read operator directory: %w", err)
	}

	operators := make([]model.Operator, 0, len(rows))
	for _, r := range rows {
		op := model.Operator{
			Code: strings.TrimSpace(r.Code),
			Name: strings.TrimSpace(r.Name.String),
		}
		if r.Type.Valid {
			t := strings.TrimSpace(r.Type.String)
			op.Type = &t
		}
		operators = append(operators, op)
	}

	d.logger.Debug("Fetched operator directory", zap.Int("count", len(operators)))
	return operators, nil
}

type badgedRow struct {
	Code         string         `db:"operateur"`
	Name         sql.NullString `db:"nom"`
	Type         sql.NullString `db:"type"`
	SessionCount int            `db:"nombre_sessions"`
	LastActivity sql.NullTime   `db:"derniere_activite"`
	Launches     sql.NullString `db:"lancements"`
	Phases       sql.NullString `db:"phases"`
	Rubrics      sql.NullString `db:"postes"`
}

// Badged returns the operators that clocked activity on the given day.
func (d *SQLDirectory) Badged(ctx context.Context, day time.Time) ([]model.BadgedOperator, error) {
	queryCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	query := fmt.Sprintf(`
SELECT
    a.Ident                                                            AS operateur,
    ISNULL(r.Designation1, 'Opérateur ' + CAST(a.Ident AS VARCHAR(10))) AS nom,
    ISNULL(r.Typeressource, 'O')                                       AS type,
    COUNT(*)                                                           AS nombre_sessions,
    MAX(a.DateDebut)                                                   AS derniere_activite,
    STRING_AGG(a.CodeLanctImprod, ', ')                                AS lancements,
    STRING_AGG(a.Phase, ', ')                                          AS phases,
    STRING_AGG(a.CodeRubrique, ', ')                                   AS postes
FROM GPSQL.dbo.abetemps_temps a
LEFT JOIN %s r ON LTRIM(RTRIM(r.Coderessource)) = LTRIM(RTRIM(a.Ident))
WHERE CONVERT(date, a.DateDebut) = @p1
GROUP BY a.Ident, r.Designation1, r.Typeressource
ORDER BY COUNT(*) DESC, a.Ident`, resourceTable)

	var rows []badgedRow
	if err := d.conn.DB().SelectContext(queryCtx, &rows, query, day.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("failed to read badged operators: %w", err)
	}

	badged := make([]model.BadgedOperator, 0, len(rows))
	for _, r := range rows {
		b := model.BadgedOperator{
			Code:         strings.TrimSpace(r.Code),
			Name:         strings.TrimSpace(r.Name.String),
			Type:         strings.TrimSpace(r.Type.String),
			SessionCount: r.SessionCount,
			State:        "ACTIF",
			Launches:     strings.TrimSpace(r.Launches.String),
			Phases:       strings.TrimSpace(r.Phases.String),
			Stations:     strings.TrimSpace(r.Rubrics.String),
		}
		if r.LastActivity.Valid {
			b.LastActivity = r.LastActivity.Time.Format(time.RFC3339)
		}
		badged = append(badged, b)
	}

	return badged, nil
}

// LTCData resolves the phase and rubric for a launch code from the LCTC
// reference view. Returns (nil, nil) when the code is unknown.
func (d *SQLDirectory) LTCData(ctx context.Context, code string) (*model.LTCData, error) {
	queryCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	query := `
SELECT TOP 1
    ISNULL(NULLIF(LTRIM(RTRIM(Phase)), ''), '')               AS Phase,
    ISNULL(NULLIF(LTRIM(RTRIM(CodeRubrique)), ''), '')        AS CodeRubrique
FROM dbo.V_LCTC
WHERE LTRIM(RTRIM(CodeLancement)) = @p1`

	var data model.LTCData
	row := d.conn.DB().QueryRowxContext(queryCtx, query, code)
	if err := row.Scan(&data.Phase, &data.RubricCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve launch code %s: %w", code, err)
	}

	return &data, nil
}
