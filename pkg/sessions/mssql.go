// pkg/sessions/mssql.go
package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/connector"
	"github.com/sedi-apps/timetrack/pkg/model"
)

const (
	openTable    = "dbo.ABTEMPS_OPERATEURS"
	historyTable = "dbo.ABHISTORIQUE_OPERATEURS"
)

// SQLService is the SQL Server implementation of the work-session store.
// Open sessions live in ABTEMPS_OPERATEURS, finished ones in
// ABHISTORIQUE_OPERATEURS with their elapsed time in VarNumUtil8/9.
type SQLService struct {
	conn    connector.DatabaseConnector
	logger  *zap.Logger
	timeout time.Duration
}

// NewSQLService creates a session store over an open application-database
// connection.
func NewSQLService(conn connector.DatabaseConnector, timeout time.Duration, logger *zap.Logger) *SQLService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SQLService{
		conn:    conn,
		logger:  logger.Named("sessions"),
		timeout: timeout,
	}
}

// Provision creates the session tables if absent. Existing data is never altered.
func (s *SQLService) Provision(ctx context.Context) error {
	tables := []struct {
		name string
		ddl  string
	}{
		{openTable, `
CREATE TABLE dbo.ABTEMPS_OPERATEURS (
	NoEnreg INT IDENTITY(1,1) NOT NULL CONSTRAINT PK_ABTEMPS_OPERATEURS PRIMARY KEY,
	Ident NVARCHAR(50) NOT NULL,
	DateTravail DATETIME2(0) NOT NULL,
	CodeLanctImprod NVARCHAR(50) NOT NULL,
	Phase NVARCHAR(50) NULL,
	CodeRubrique NVARCHAR(50) NULL,
	VarNumUtil8 INT NOT NULL DEFAULT(0),
	VarNumUtil9 INT NOT NULL DEFAULT(0),
	Statut VARCHAR(20) NOT NULL,
	DateCreation DATETIME2(0) NOT NULL DEFAULT SYSDATETIME()
);
CREATE INDEX IX_ABTOP_Ident_Jour ON dbo.ABTEMPS_OPERATEURS (Ident, DateTravail);`},
		{historyTable, `
CREATE TABLE dbo.ABHISTORIQUE_OPERATEURS (
	NoEnreg INT IDENTITY(1,1) NOT NULL CONSTRAINT PK_ABHISTORIQUE_OPERATEURS PRIMARY KEY,
	Ident NVARCHAR(50) NOT NULL,
	DateTravail DATETIME2(0) NOT NULL,
	DateFin DATETIME2(0) NULL,
	CodeLanctImprod NVARCHAR(50) NOT NULL,
	Phase NVARCHAR(50) NULL,
	CodeRubrique NVARCHAR(50) NULL,
	VarNumUtil8 INT NOT NULL DEFAULT(0),
	VarNumUtil9 INT NOT NULL DEFAULT(0),
	Statut VARCHAR(20) NOT NULL,
	DateCreation DATETIME2(0) NOT NULL DEFAULT SYSDATETIME()
);
CREATE INDEX IX_ABHOP_Ident_Jour ON dbo.ABHISTORIQUE_OPERATEURS (Ident, DateTravail);`},
	}

	for _, t := range tables {
		exists, err := s.tableExists(ctx, t.name)
		if err != nil {
			return fmt.Errorf("failed to check %s existence: %w", t.name, err)
		}
		if exists {
			s.logger.Debug("Session table already exists", zap.String("table", t.name))
			continue
		}
		if _, err := s.conn.ExecWithTimeout(ctx, t.ddl, s.timeout); err != nil {
			return fmt.Errorf("failed to create %s: %w", t.name, err)
		}
		s.logger.Info("Created session table", zap.String("table", t.name))
	}

	return nil
}

func (s *SQLService) tableExists(ctx context.Context, table string) (bool, error) {
	rows, err := s.conn.QueryWithTimeout(ctx,
		"SELECT CASE WHEN OBJECT_ID(@p1) IS NULL THEN 0 ELSE 1 END", s.timeout, table)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var exists int
	if rows.Next() {
		if err := rows.Scan(&exists); err != nil {
			return false, err
		}
	}
	return exists == 1, rows.Err()
}

// StartWork opens an in-progress session.
func (s *SQLService) StartWork(ctx context.Context, req StartRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (Ident, DateTravail, CodeLanctImprod, Phase, CodeRubrique, VarNumUtil8, VarNumUtil9, Statut)
VALUES (@p1, @p2, @p3, @p4, @p5, 0, 0, 'EN_COURS')`, openTable)

	result, err := s.conn.ExecWithTimeout(ctx, query, s.timeout,
		req.OperatorID, req.WorkDay, req.LaunchCode, req.Phase, req.RubricCode)
	if err != nil {
		return 0, fmt.Errorf("failed to record work start: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	s.logger.Info("Work started",
		zap.String("operator", req.OperatorID),
		zap.String("launch", req.LaunchCode))

	return affected, nil
}

// FinishWork records a finished session and closes the matching open one.
func (s *SQLService) FinishWork(ctx context.Context, req FinishRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	execCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.conn.DB().BeginTxx(execCtx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin finish transaction: %w", err)
	}
	defer tx.Rollback()

	insert := fmt.Sprintf(`
INSERT INTO %s (Ident, DateTravail, DateFin, CodeLanctImprod, Phase, CodeRubrique, VarNumUtil8, VarNumUtil9, Statut)
VALUES (@p1, @p2, SYSDATETIME(), @p3, @p4, @p5, @p6, @p7, 'TERMINE')`, historyTable)

	result, err := tx.ExecContext(execCtx, insert,
		req.OperatorID, req.WorkDay, req.LaunchCode, req.Phase, req.RubricCode,
		req.Minutes, req.Seconds)
	if err != nil {
		return 0, fmt.Errorf("failed to record work end: %w", err)
	}

	// Close the matching open session, if any.
	closeOpen := fmt.Sprintf(`
DELETE FROM %s
WHERE Ident = @p1 AND CodeLanctImprod = @p2 AND Statut = 'EN_COURS'
  AND CONVERT(date, DateTravail) = CONVERT(date, @p3)`, openTable)

	if _, err := tx.ExecContext(execCtx, closeOpen, req.OperatorID, req.LaunchCode, req.WorkDay); err != nil {
		return 0, fmt.Errorf("failed to close open session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit finish transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	s.logger.Info("Work finished",
		zap.String("operator", req.OperatorID),
		zap.String("launch", req.LaunchCode),
		zap.Int("minutes", req.Minutes),
		zap.Int("seconds", req.Seconds))

	return affected, nil
}

type historyRow struct {
	RecordNo   int64          `db:"NoEnreg"`
	Operator   string         `db:"Ident"`
	WorkDay    time.Time      `db:"DateTravail"`
	LaunchCode sql.NullString `db:"CodeLanctImprod"`
	Phase      sql.NullString `db:"Phase"`
	RubricCode sql.NullString `db:"CodeRubrique"`
	Minutes    int            `db:"VarNumUtil8"`
	Seconds    int            `db:"VarNumUtil9"`
	State      sql.NullString `db:"Statut"`
}

// History returns an operator's finished sessions, newest first.
func (s *SQLService) History(ctx context.Context, operatorID string) ([]model.HistoryEntry, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := fmt.Sprintf(`
SELECT TOP (1000)
	NoEnreg, Ident, DateTravail, CodeLanctImprod, Phase, CodeRubrique,
	VarNumUtil8, VarNumUtil9, Statut
FROM %s
WHERE Ident = @p1
ORDER BY DateTravail DESC`, historyTable)

	var rows []historyRow
	if err := s.conn.DB().SelectContext(queryCtx, &rows, query, operatorID); err != nil {
		return nil, fmt.Errorf("failed to read operator history: %w", err)
	}

	entries := make([]model.HistoryEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, model.HistoryEntry{
			RecordNo:   fmt.Sprintf("%d", r.RecordNo),
			Operator:   r.Operator,
			LaunchCode: r.LaunchCode.String,
			Phase:      r.Phase.String,
			RubricCode: r.RubricCode.String,
			Minutes:    r.Minutes,
			Seconds:    r.Seconds,
			State:      r.State.String,
			WorkDay:    r.WorkDay,
		})
	}

	return entries, nil
}

type adminSessionRow struct {
	Operator   string         `db:"CodeOperateur"`
	Name       sql.NullString `db:"NomOperateur"`
	LaunchCode sql.NullString `db:"CodeLanctImprod"`
	Phase      sql.NullString `db:"Phase"`
	RubricCode sql.NullString `db:"CodeRubrique"`
	WorkDay    time.Time      `db:"DateTravail"`
	EndedAt    sql.NullTime   `db:"DateFin"`
	State      string         `db:"StatutSession"`
}

// AdminDaySessions returns every operator's sessions for the given day,
// in-progress and finished, grouped by operator and sorted by name.
func (s *SQLService) AdminDaySessions(ctx context.Context, day time.Time) ([]OperatorSessions, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := fmt.Sprintf(`
SELECT
	ab.Ident AS CodeOperateur,
	r.Designation1 AS NomOperateur,
	ab.CodeLanctImprod,
	ab.Phase,
	ab.CodeRubrique,
	ab.DateTravail,
	CAST(NULL AS DATETIME2(0)) AS DateFin,
	'EN_COURS' AS StatutSession
FROM %s ab
LEFT JOIN SEDI_ERP.dbo.RESSOURC r ON LTRIM(RTRIM(r.Coderessource)) = LTRIM(RTRIM(ab.Ident))
WHERE ab.Statut = 'EN_COURS'
  AND CONVERT(date, ab.DateTravail) = @p1

UNION ALL

SELECT
	ah.Ident AS CodeOperateur,
	r.Designation1 AS NomOperateur,
	ah.CodeLanctImprod,
	ah.Phase,
	ah.CodeRubrique,
	ah.DateTravail,
	ah.DateFin,
	'TERMINE' AS StatutSession
FROM %s ah
LEFT JOIN SEDI_ERP.dbo.RESSOURC r ON LTRIM(RTRIM(r.Coderessource)) = LTRIM(RTRIM(ah.Ident))
WHERE ah.Statut = 'TERMINE'
  AND CONVERT(date, ah.DateTravail) = @p1

ORDER BY CodeOperateur, CodeLanctImprod, Phase`, openTable, historyTable)

	var rows []adminSessionRow
	if err := s.conn.DB().SelectContext(queryCtx, &rows, query, day.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("failed to read admin day sessions: %w", err)
	}

	grouped := make(map[string]*OperatorSessions)
	var order []string
	for _, r := range rows {
		operator := strings.TrimSpace(r.Operator)
		g, ok := grouped[operator]
		if !ok {
			name := strings.TrimSpace(r.Name.String)
			if name == "" {
				name = "Nom inconnu"
			}
			g = &OperatorSessions{Operator: operator, Name: name}
			grouped[operator] = g
			order = append(order, operator)
		}

		launch := strings.TrimSpace(r.LaunchCode.String)
		phase := strings.TrimSpace(r.Phase.String)
		rec := model.SessionRecord{
			ID:         fmt.Sprintf("%s_%s_%s", operator, launch, phase),
			Operator:   operator,
			Name:       g.Name,
			LaunchCode: launch,
			Phase:      phase,
			RubricCode: strings.TrimSpace(r.RubricCode.String),
			State:      r.State,
			WorkDay:    r.WorkDay,
			Editable:   r.State == "TERMINE",
		}
		started := r.WorkDay
		rec.StartedAt = &started
		if r.EndedAt.Valid {
			ended := r.EndedAt.Time
			rec.EndedAt = &ended
		}
		g.Sessions = append(g.Sessions, rec)
	}

	out := make([]OperatorSessions, 0, len(order))
	for _, operator := range order {
		out = append(out, *grouped[operator])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

type launchStatusRow struct {
	LaunchCode   sql.NullString `db:"CodeLanctImprod"`
	Phase        sql.NullString `db:"Phase"`
	RubricCode   sql.NullString `db:"CodeRubrique"`
	LeadOperator sql.NullString `db:"CodeOperateur"`
	OperatorName sql.NullString `db:"NomOperateur"`
	OpenCount    int            `db:"NbEnCours"`
	DoneCount    int            `db:"NbTermines"`
	TotalSeconds int64          `db:"DureeTotale"`
}

// LaunchStatuses aggregates the day's sessions per launch code and phase.
// A launch is in progress while any of its sessions is still open.
func (s *SQLService) LaunchStatuses(ctx context.Context, day time.Time) ([]model.LaunchStatus, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := fmt.Sprintf(`
WITH DaySessions AS (
	SELECT Ident, CodeLanctImprod, Phase, CodeRubrique, 0 AS Seconds, 1 AS EnCours, 0 AS Termine
	FROM %s
	WHERE Statut = 'EN_COURS' AND CONVERT(date, DateTravail) = @p1
	UNION ALL
	SELECT Ident, CodeLanctImprod, Phase, CodeRubrique,
		VarNumUtil8 * 60 + VarNumUtil9 AS Seconds, 0 AS EnCours, 1 AS Termine
	FROM %s
	WHERE Statut = 'TERMINE' AND CONVERT(date, DateTravail) = @p1
)
SELECT
	d.CodeLanctImprod,
	d.Phase,
	MIN(d.CodeRubrique) AS CodeRubrique,
	MIN(d.Ident) AS CodeOperateur,
	MIN(r.Designation1) AS NomOperateur,
	SUM(d.EnCours) AS NbEnCours,
	SUM(d.Termine) AS NbTermines,
	SUM(CAST(d.Seconds AS BIGINT)) AS DureeTotale
FROM DaySessions d
LEFT JOIN SEDI_ERP.dbo.RESSOURC r ON LTRIM(RTRIM(r.Coderessource)) = LTRIM(RTRIM(d.Ident))
GROUP BY d.CodeLanctImprod, d.Phase
ORDER BY SUM(d.EnCours) DESC, d.CodeLanctImprod`, openTable, historyTable)

	var rows []launchStatusRow
	if err := s.conn.DB().SelectContext(queryCtx, &rows, query, day.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("failed to read launch statuses: %w", err)
	}

	statuses := make([]model.LaunchStatus, 0, len(rows))
	for _, r := range rows {
		total := r.OpenCount + r.DoneCount
		st := model.LaunchStatus{
			LaunchCode:     strings.TrimSpace(r.LaunchCode.String),
			Phase:          strings.TrimSpace(r.Phase.String),
			Station:        strings.TrimSpace(r.RubricCode.String),
			LeadOperator:   strings.TrimSpace(r.LeadOperator.String),
			OperatorName:   strings.TrimSpace(r.OperatorName.String),
			OperationCount: total,
			TotalSeconds:   r.TotalSeconds,
		}
		switch {
		case r.OpenCount > 0:
			st.State = "EN_COURS"
		case r.DoneCount > 0:
			st.State = "TERMINE"
		default:
			st.State = "INCONNU"
		}
		if total > 0 {
			st.PercentComplete = float64(r.DoneCount) * 100 / float64(total)
		}
		statuses = append(statuses, st)
	}

	return statuses, nil
}
