// pkg/reconcile/key.go
package reconcile

import (
	"crypto/sha256"
	"strings"
	"time"

	"github.com/sedi-apps/timetrack/pkg/model"
)

const (
	// AbsentToken substitutes for an absent classification field inside the
	// key material. It never occurs in real launch/phase/rubric codes.
	AbsentToken = "~"

	// keyDelimiter separates key fields. Also absent from real data.
	keyDelimiter = "|"

	// keyTimeLayout is the canonical second-precision timestamp encoding,
	// equivalent to SQL Server CONVERT(varchar(19), ..., 120).
	keyTimeLayout = "2006-01-02 15:04:05"
)

// Key computes the deduplication digest of a logical event: SHA-256 over the
// fields in fixed order. Two raw events with the same digest are the same
// fact. Status is part of the key, so a start and its matching end hash to
// two different rows.
//
// An absent timestamp contributes an empty string, not the absent token:
// the ledger was historically populated by a T-SQL CONCAT, which folds NULL
// to "", and keys computed here must keep matching those rows.
func Key(ev Event) [32]byte {
	var sb strings.Builder
	sb.WriteString(ev.Identity)
	sb.WriteString(keyDelimiter)
	sb.WriteString(orAbsent(ev.LaunchCode))
	sb.WriteString(keyDelimiter)
	sb.WriteString(orAbsent(ev.Phase))
	sb.WriteString(keyDelimiter)
	sb.WriteString(orAbsent(ev.RubricCode))
	sb.WriteString(keyDelimiter)
	sb.WriteString(ev.Status.String())
	sb.WriteString(keyDelimiter)
	sb.WriteString(formatKeyTime(ev.StartTime))
	sb.WriteString(keyDelimiter)
	sb.WriteString(formatKeyTime(ev.EndTime))

	return sha256.Sum256([]byte(sb.String()))
}

func orAbsent(s *string) string {
	if s == nil {
		return AbsentToken
	}
	return *s
}

func formatKeyTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(keyTimeLayout)
}

// Operation materializes a normalized event into a ledger row carrying its
// dedupe key, derived fields and the batch identity it arrived with.
func Operation(ev Event, batchID string) model.UnifiedOperation {
	key := Key(ev)
	op := model.UnifiedOperation{
		Identity:    ev.Identity,
		LaunchCode:  ev.LaunchCode,
		Phase:       ev.Phase,
		RubricCode:  ev.RubricCode,
		Status:      ev.Status,
		StatusWire:  ev.Status.String(),
		StartTime:   ev.StartTime,
		EndTime:     ev.EndTime,
		SourceSys:   "GPSQL",
		SourceTable: ev.SourceTable,
		BatchID:     batchID,
		DedupeKey:   key[:],
	}
	op.Day = op.DerivedDay()
	op.DurationSec = op.DerivedDuration()
	return op
}
