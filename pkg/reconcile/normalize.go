// pkg/reconcile/normalize.go
package reconcile

import (
	"strings"
	"time"

	"github.com/sedi-apps/timetrack/pkg/model"
)

// Event is a raw event after normalization: trimmed, with empty classification
// fields turned into explicit absence, ready for key computation and merging.
type Event struct {
	Identity    string
	LaunchCode  *string
	Phase       *string
	RubricCode  *string
	Status      model.Status
	StartTime   *time.Time
	EndTime     *time.Time
	SourceTable string
}

// Normalize converts a raw source row into canonical form. It is total: there
// is no malformed input, only fields that degrade to absent.
func Normalize(raw model.RawEvent) Event {
	ev := Event{
		Identity:    strings.TrimSpace(raw.Identity),
		LaunchCode:  optional(raw.LaunchCode),
		Phase:       optional(raw.Phase),
		RubricCode:  optional(raw.RubricCode),
		Status:      model.StatusFor(raw.Kind),
		SourceTable: strings.TrimSpace(raw.SourceTable),
	}

	if !raw.Timestamp.IsZero() {
		ts := raw.Timestamp
		if raw.Kind == model.KindEnd {
			ev.EndTime = &ts
		} else {
			ev.StartTime = &ts
		}
	}

	return ev
}

// optional trims s and maps empty-after-trim to absent.
func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
