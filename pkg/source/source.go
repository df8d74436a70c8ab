// pkg/source/source.go
package source

import (
	"context"
	"time"

	"github.com/sedi-apps/timetrack/pkg/model"
)

// Events exposes the two raw work-event streams of the source system. The
// since filter is an inclusive calendar-date cutoff; nil means all rows.
type Events interface {
	// Starts returns session-start rows (one start timestamp each).
	Starts(ctx context.Context, since *time.Time) ([]model.RawEvent, error)

	// Ends returns session-end/pause rows (one end timestamp each).
	Ends(ctx context.Context, since *time.Time) ([]model.RawEvent, error)
}

// onOrAfterDay reports whether ts falls on since's calendar date or later.
func onOrAfterDay(ts time.Time, since *time.Time) bool {
	if since == nil {
		return true
	}
	day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	cutoff := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, ts.Location())
	return !day.Before(cutoff)
}
