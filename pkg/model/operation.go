// pkg/model/operation.go
package model

import (
	"database/sql"
	"time"
)

// UnifiedOperation is one deduplicated row of the unified operations ledger.
// Rows are created and updated only by the reconciler; the UI reads them.
type UnifiedOperation struct {
	ID          int64        `db:"Id" json:"id,omitempty"`
	Identity    string       `db:"Ident" json:"ident"`
	LaunchCode  *string      `db:"CodeLanctImprod" json:"codeLanctImprod"`
	Phase       *string      `db:"Phase" json:"phase"`
	RubricCode  *string      `db:"CodeRubrique" json:"codeRubrique"`
	Status      Status       `db:"-" json:"-"`
	StatusWire  string       `db:"Statut" json:"statut"`
	StartTime   *time.Time   `db:"DateDebut" json:"dateDebut"`
	EndTime     *time.Time   `db:"DateFin" json:"dateFin"`
	DurationSec *int64       `db:"DureeSec" json:"dureeSec"`
	Day         time.Time    `db:"Jour" json:"jour"`
	SourceSys   string       `db:"SourceSystem" json:"sourceSystem"`
	SourceTable string       `db:"SourceTable" json:"sourceTable"`
	SourceRowID *string      `db:"SourceRowId" json:"sourceRowId"`
	BatchID     string       `db:"ImportBatchId" json:"importBatchId"`
	DedupeKey   []byte       `db:"HashKey" json:"-"`
	CreatedAt   sql.NullTime `db:"CreatedAtUtc" json:"createdAtUtc"`
}

// DerivedDay returns the calendar date of whichever timestamp is present.
// Zero when neither side is set, which the reconciler never produces.
func (op *UnifiedOperation) DerivedDay() time.Time {
	t := op.StartTime
	if t == nil {
		t = op.EndTime
	}
	if t == nil {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DerivedDuration returns the start-to-end span in seconds, or nil when
// either side is missing.
func (op *UnifiedOperation) DerivedDuration() *int64 {
	if op.StartTime == nil || op.EndTime == nil {
		return nil
	}
	secs := int64(op.EndTime.Sub(*op.StartTime).Seconds())
	return &secs
}
