// Package sessions manages the operator work-session tables: starting and
// finishing work, per-operator history, and the day views the admin and
// supervision screens read.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/sedi-apps/timetrack/pkg/model"
)

// StartRequest is a request to open a work session.
type StartRequest struct {
	OperatorID   string
	OperatorName string
	LaunchCode   string
	Phase        string
	RubricCode   string
	WorkDay      time.Time
}

// FinishRequest is a request to close a work session and record its elapsed time.
type FinishRequest struct {
	StartRequest
	Minutes int
	Seconds int
}

// OperatorSessions groups one operator's sessions for the admin day view.
type OperatorSessions struct {
	Operator string                `json:"operateur"`
	Name     string                `json:"nom"`
	Sessions []model.SessionRecord `json:"sessions"`
}

// Validate checks the fields every session write requires.
func (r *StartRequest) Validate() error {
	if r.OperatorID == "" {
		return errors.New("operator id is required")
	}
	if r.LaunchCode == "" {
		return errors.New("launch code is required")
	}
	if r.WorkDay.IsZero() {
		return errors.New("work day is required")
	}
	return nil
}

// Service is the work-session store.
type Service interface {
	// Provision creates the session tables if they do not exist.
	Provision(ctx context.Context) error

	// StartWork opens an in-progress session and returns the record count.
	StartWork(ctx context.Context, req StartRequest) (int64, error)

	// FinishWork records a finished session with its elapsed time.
	FinishWork(ctx context.Context, req FinishRequest) (int64, error)

	// History returns an operator's finished sessions, newest first.
	History(ctx context.Context, operatorID string) ([]model.HistoryEntry, error)

	// AdminDaySessions returns every operator's sessions for the given day,
	// in-progress and finished, grouped by operator.
	AdminDaySessions(ctx context.Context, day time.Time) ([]OperatorSessions, error)

	// LaunchStatuses aggregates the day's sessions per launch code and phase.
	LaunchStatuses(ctx context.Context, day time.Time) ([]model.LaunchStatus, error)
}
