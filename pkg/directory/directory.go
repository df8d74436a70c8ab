// Package directory reads the operator directory and launch reference data
// from the ERP database.
package directory

import (
	"context"
	"time"

	"github.com/sedi-apps/timetrack/pkg/model"
)

// Directory exposes the ERP lookups the dashboard needs.
type Directory interface {
	// Operators returns the full resource directory, ordered by code.
	Operators(ctx context.Context) ([]model.Operator, error)

	// Badged returns the operators that clocked activity on the given day,
	// with per-operator session aggregates.
	Badged(ctx context.Context, day time.Time) ([]model.BadgedOperator, error)

	// LTCData resolves the phase and rubric for a launch code. Returns
	// (nil, nil) when the code is unknown.
	LTCData(ctx context.Context, code string) (*model.LTCData, error)
}
