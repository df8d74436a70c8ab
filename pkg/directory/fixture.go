// pkg/directory/fixture.go
package directory

import (
	"context"
	"strings"
	"time"

	"github.com/sedi-apps/timetrack/pkg/model"
)

// FixtureDirectory is the simulation-mode directory: the fixed operator list
// served when no database is reachable.
type FixtureDirectory struct{}

// NewFixtureDirectory returns the built-in operator directory.
func NewFixtureDirectory() *FixtureDirectory {
	return &FixtureDirectory{}
}

// Operators returns the built-in operator list.
func (d *FixtureDirectory) Operators(ctx context.Context) ([]model.Operator, error) {
	return []model.Operator{
		{Code: "001", Name: "Intérimaire 1"},
		{Code: "002", Name: "Intérimaire 2"},
		{Code: "003", Name: "Intérimaire 3"},
		{Code: "004", Name: "Intérimaire 4"},
		{Code: "140972", Name: "Opérateur Principal"},
	}, nil
}

// Badged returns the built-in active operators regardless of day.
func (d *FixtureDirectory) Badged(ctx context.Context, day time.Time) ([]model.BadgedOperator, error) {
	now := time.Now().Format(time.RFC3339)
	return []model.BadgedOperator{
		{Code: "001", Name: "Intérimaire 1", Type: "O", SessionCount: 2, LastActivity: now, State: "ACTIF"},
		{Code: "140972", Name: "Opérateur Principal", Type: "O", SessionCount: 1, LastActivity: now, State: "ACTIF"},
	}, nil
}

// LTCData derives a deterministic phase/rubric pair from the code so the
// operator screens stay usable offline.
func (d *FixtureDirectory) LTCData(ctx context.Context, code string) (*model.LTCData, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return &model.LTCData{Phase: "P1", RubricCode: "R1"}, nil
}
