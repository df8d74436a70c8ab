// pkg/store/mssql.go
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/connector"
	"github.com/sedi-apps/timetrack/pkg/model"
)

// mergeChunkRows keeps each MERGE statement under the SQL Server parameter
// limit (2100); 12 parameters per row.
const mergeChunkRows = 150

const ledgerTable = "dbo.ABOPERATIONS_UNIFIEES"

// SQLLedger is the SQL Server implementation of the unified operations
// ledger. Uniqueness of the dedupe key is enforced by the UQ_ABOPU_Hash
// constraint; the merge runs as MERGE WITH (HOLDLOCK) so concurrent
// reconciliation runs cannot double-insert a key.
type SQLLedger struct {
	conn    connector.DatabaseConnector
	logger  *zap.Logger
	timeout time.Duration
}

// NewSQLLedger creates a ledger over an open SQL Server connection.
func NewSQLLedger(conn connector.DatabaseConnector, timeout time.Duration, logger *zap.Logger) *SQLLedger {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SQLLedger{
		conn:    conn,
		logger:  logger.Named("sql-ledger"),
		timeout: timeout,
	}
}

// Provision creates the ledger table, its uniqueness constraint and indexes
// if absent. Existence is checked first; existing data is never altered.
func (l *SQLLedger) Provision(ctx context.Context) error {
	exists, err := l.tableExists(ctx, ledgerTable)
	if err != nil {
		return classify(fmt.Errorf("failed to check ledger table existence: %w", err))
	}

	if exists {
		l.logger.Debug("Ledger table already exists", zap.String("table", ledgerTable))
		return nil
	}

	ddl := `
CREATE TABLE dbo.ABOPERATIONS_UNIFIEES (
	Id INT IDENTITY(1,1) NOT NULL CONSTRAINT PK_ABOPERATIONS_UNIFIEES PRIMARY KEY,
	Ident NVARCHAR(50) NOT NULL,
	CodeLanctImprod NVARCHAR(50) NULL,
	Phase NVARCHAR(50) NULL,
	CodeRubrique NVARCHAR(50) NULL,
	Statut VARCHAR(10) NOT NULL,
	DateDebut DATETIME2(0) NULL,
	DateFin DATETIME2(0) NULL,
	DureeSec AS (CASE WHEN DateDebut IS NOT NULL AND DateFin IS NOT NULL THEN DATEDIFF(SECOND, DateDebut, DateFin) ELSE NULL END) PERSISTED,
	Jour AS (CONVERT(date, ISNULL(DateDebut, DateFin))) PERSISTED,
	SourceSystem SYSNAME NOT NULL DEFAULT('GPSQL'),
	SourceTable SYSNAME NOT NULL DEFAULT(''),
	SourceRowId NVARCHAR(100) NULL,
	ImportBatchId UNIQUEIDENTIFIER NOT NULL DEFAULT NEWID(),
	HashKey VARBINARY(32) NOT NULL,
	CONSTRAINT UQ_ABOPU_Hash UNIQUE (HashKey),
	CreatedAtUtc DATETIME2(0) NOT NULL DEFAULT SYSUTCDATETIME(),
	RowVer ROWVERSION
);
CREATE INDEX IX_ABOPU_Jour_Ident ON dbo.ABOPERATIONS_UNIFIEES (Jour, Ident);
CREATE INDEX IX_ABOPU_CodeLanctImprod ON dbo.ABOPERATIONS_UNIFIEES (CodeLanctImprod);
CREATE INDEX IX_ABOPU_Statut ON dbo.ABOPERATIONS_UNIFIEES (Statut, Jour);
`
	if _, err := l.conn.ExecWithTimeout(ctx, ddl, l.timeout); err != nil {
		return classify(fmt.Errorf("failed to create ledger table: %w", err))
	}

	l.logger.Info("Created ledger table", zap.String("table", ledgerTable))
	return nil
}

func (l *SQLLedger) tableExists(ctx context.Context, table string) (bool, error) {
	rows, err := l.conn.QueryWithTimeout(ctx,
		"SELECT CASE WHEN OBJECT_ID(@p1) IS NULL THEN 0 ELSE 1 END", l.timeout, table)
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

// MergeBatch applies the batch inside one transaction. Each chunk is a single
// MERGE statement; the transaction makes the whole batch all-or-nothing.
func (l *SQLLedger) MergeBatch(ctx context.Context, ops []model.UnifiedOperation) (MergeStats, error) {
	var stats MergeStats
	if len(ops) == 0 {
		return stats, nil
	}

	mergeCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	tx, err := l.conn.DB().BeginTxx(mergeCtx, nil)
	if err != nil {
		return stats, classify(fmt.Errorf("failed to begin merge transaction: %w", err))
	}
	defer tx.Rollback()

	for start := 0; start < len(ops); start += mergeChunkRows {
		end := start + mergeChunkRows
		if end > len(ops) {
			end = len(ops)
		}

		chunkStats, err := l.mergeChunk(mergeCtx, tx, ops[start:end])
		if err != nil {
			return MergeStats{}, classify(err)
		}
		stats.Inserted += chunkStats.Inserted
		stats.Coalesced += chunkStats.Coalesced
	}

	if err := tx.Commit(); err != nil {
		return MergeStats{}, classify(fmt.Errorf("failed to commit merge transaction: %w", err))
	}

	l.logger.Debug("Merged batch into ledger",
		zap.Int("rows", len(ops)),
		zap.Int("inserted", stats.Inserted),
		zap.Int("coalesced", stats.Coalesced))

	return stats, nil
}

// mergeChunk runs one MERGE over a VALUES table of the chunk's rows and
// counts actions from the OUTPUT clause.
func (l *SQLLedger) mergeChunk(ctx context.Context, tx *sqlx.Tx, ops []model.UnifiedOperation) (MergeStats, error) {
	var stats MergeStats

	valueRows := make([]string, len(ops))
	args := make([]interface{}, 0, len(ops)*12)
	for i, op := range ops {
		base := i * 12
		placeholders := make([]string, 12)
		for j := 0; j < 12; j++ {
			placeholders[j] = fmt.Sprintf("@p%d", base+j+1)
		}
		valueRows[i] = "(" + strings.Join(placeholders, ", ") + ")"
		args = append(args,
			op.Identity,
			nullableString(op.LaunchCode),
			nullableString(op.Phase),
			nullableString(op.RubricCode),
			op.StatusWire,
			nullableTime(op.StartTime),
			nullableTime(op.EndTime),
			op.SourceSys,
			op.SourceTable,
			nullableString(op.SourceRowID),
			op.BatchID,
			op.DedupeKey,
		)
	}

	query := fmt.Sprintf(`
MERGE %s WITH (HOLDLOCK) AS tgt
USING (VALUES %s) AS src
	(Ident, CodeLanctImprod, Phase, CodeRubrique, Statut, DateDebut, DateFin, SourceSystem, SourceTable, SourceRowId, ImportBatchId, HashKey)
ON tgt.HashKey = src.HashKey
WHEN NOT MATCHED BY TARGET THEN
	INSERT (Ident, CodeLanctImprod, Phase, CodeRubrique, Statut, DateDebut, DateFin, SourceSystem, SourceTable, SourceRowId, ImportBatchId, HashKey)
	VALUES (src.Ident, src.CodeLanctImprod, src.Phase, src.CodeRubrique, src.Statut, src.DateDebut, src.DateFin, src.SourceSystem, src.SourceTable, src.SourceRowId, src.ImportBatchId, src.HashKey)
WHEN MATCHED THEN UPDATE SET
	tgt.DateDebut = COALESCE(tgt.DateDebut, src.DateDebut),
	tgt.DateFin = COALESCE(tgt.DateFin, src.DateFin)
OUTPUT $action;`,
		ledgerTable, strings.Join(valueRows, ", "))

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return stats, fmt.Errorf("merge statement failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return stats, fmt.Errorf("failed to scan merge action: %w", err)
		}
		switch action {
		case "INSERT":
			stats.Inserted++
		case "UPDATE":
			stats.Coalesced++
		}
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("error reading merge actions: %w", err)
	}

	return stats, nil
}

// Recent returns the newest ledger rows.
func (l *SQLLedger) Recent(ctx context.Context, limit int) ([]model.UnifiedOperation, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
SELECT TOP (@p1)
	Id, Ident, CodeLanctImprod, Phase, CodeRubrique, Statut,
	DateDebut, DateFin, DureeSec, Jour,
	SourceSystem, SourceTable, SourceRowId,
	CONVERT(NVARCHAR(36), ImportBatchId) AS ImportBatchId,
	HashKey, CreatedAtUtc
FROM %s
ORDER BY CreatedAtUtc DESC`, ledgerTable)

	rows, err := l.conn.QueryWithTimeout(ctx, query, l.timeout, limit)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to read ledger: %w", err))
	}
	defer rows.Close()

	var out []model.UnifiedOperation
	for rows.Next() {
		var op model.UnifiedOperation
		if err := rows.StructScan(&op); err != nil {
			return nil, classify(fmt.Errorf("failed to scan ledger row: %w", err))
		}
		status, err := model.ParseStatus(op.StatusWire)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", op.ID, err)
		}
		op.Status = status
		out = append(out, op)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("error reading ledger rows: %w", err))
	}

	return out, nil
}

// Count returns the total row count.
func (l *SQLLedger) Count(ctx context.Context) (int64, error) {
	rows, err := l.conn.QueryWithTimeout(ctx,
		fmt.Sprintf("SELECT COUNT_BIG(*) FROM %s", ledgerTable), l.timeout)
	if err != nil {
		return 0, classify(fmt.Errorf("failed to count ledger rows: %w", err))
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, classify(fmt.Errorf("failed to scan ledger count: %w", err))
		}
	}
	return count, rows.Err()
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
