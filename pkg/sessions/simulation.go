// pkg/sessions/simulation.go
package sessions

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/history"
	"github.com/sedi-apps/timetrack/pkg/model"
)

// SimulatedService is the simulation-mode session store. Finished sessions go
// to the JSON history store; open sessions live only in memory.
type SimulatedService struct {
	store  *history.Store
	logger *zap.Logger
}

// NewSimulatedService creates a session store backed by the JSON history store.
func NewSimulatedService(store *history.Store, logger *zap.Logger) *SimulatedService {
	return &SimulatedService{
		store:  store,
		logger: logger.Named("sessions-sim"),
	}
}

// Provision is a no-op; the history store initializes its own file.
func (s *SimulatedService) Provision(ctx context.Context) error {
	return nil
}

// StartWork validates and acknowledges the request without persisting it.
func (s *SimulatedService) StartWork(ctx context.Context, req StartRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	s.logger.Info("Simulated work start",
		zap.String("operator", req.OperatorID),
		zap.String("launch", req.LaunchCode))

	return time.Now().UnixMilli(), nil
}

// FinishWork appends a finished record to the operator's history.
func (s *SimulatedService) FinishWork(ctx context.Context, req FinishRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	entry := model.HistoryEntry{
		RecordNo:   fmt.Sprintf("%d", time.Now().UnixMilli()),
		Operator:   req.OperatorID,
		LaunchCode: req.LaunchCode,
		Phase:      req.Phase,
		RubricCode: req.RubricCode,
		Minutes:    req.Minutes,
		Seconds:    req.Seconds,
		State:      "TERMINE",
		WorkDay:    req.WorkDay,
	}
	if err := s.store.Append(req.OperatorID, entry); err != nil {
		return 0, err
	}

	s.logger.Info("Simulated work end",
		zap.String("operator", req.OperatorID),
		zap.String("launch", req.LaunchCode),
		zap.Int("minutes", req.Minutes),
		zap.Int("seconds", req.Seconds))

	return 1, nil
}

// History returns the operator's recorded history.
func (s *SimulatedService) History(ctx context.Context, operatorID string) ([]model.HistoryEntry, error) {
	return s.store.Records(operatorID)
}

// AdminDaySessions rebuilds the day view from the recorded histories.
func (s *SimulatedService) AdminDaySessions(ctx context.Context, day time.Time) ([]OperatorSessions, error) {
	all, err := s.store.All()
	if err != nil {
		return nil, err
	}

	out := make([]OperatorSessions, 0, len(all))
	for operator, entries := range all {
		g := OperatorSessions{Operator: operator, Name: "Opérateur " + operator}
		for _, e := range entries {
			if !sameDay(e.WorkDay, day) {
				continue
			}
			started := e.WorkDay
			g.Sessions = append(g.Sessions, model.SessionRecord{
				ID:         fmt.Sprintf("%s_%s_%s", operator, e.LaunchCode, e.Phase),
				Operator:   operator,
				Name:       g.Name,
				LaunchCode: e.LaunchCode,
				Phase:      e.Phase,
				RubricCode: e.RubricCode,
				StartedAt:  &started,
				State:      e.State,
				WorkDay:    e.WorkDay,
				Editable:   e.State == "TERMINE",
			})
		}
		if len(g.Sessions) > 0 {
			out = append(out, g)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// LaunchStatuses aggregates the recorded histories per launch code and phase.
func (s *SimulatedService) LaunchStatuses(ctx context.Context, day time.Time) ([]model.LaunchStatus, error) {
	all, err := s.store.All()
	if err != nil {
		return nil, err
	}

	type agg struct {
		status *model.LaunchStatus
		done   int
	}
	groups := make(map[string]*agg)
	var order []string

	for operator, entries := range all {
		for _, e := range entries {
			if !sameDay(e.WorkDay, day) {
				continue
			}
			key := e.LaunchCode + "|" + e.Phase
			g, ok := groups[key]
			if !ok {
				g = &agg{status: &model.LaunchStatus{
					LaunchCode:   e.LaunchCode,
					Phase:        e.Phase,
					Station:      e.RubricCode,
					LeadOperator: operator,
					OperatorName: "Opérateur " + operator,
				}}
				groups[key] = g
				order = append(order, key)
			}
			g.status.OperationCount++
			g.status.TotalSeconds += int64(e.Minutes)*60 + int64(e.Seconds)
			if e.State == "TERMINE" {
				g.done++
			}
		}
	}

	sort.Strings(order)
	statuses := make([]model.LaunchStatus, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.done == g.status.OperationCount {
			g.status.State = "TERMINE"
		} else {
			g.status.State = "EN_COURS"
		}
		if g.status.OperationCount > 0 {
			g.status.PercentComplete = float64(g.done) * 100 / float64(g.status.OperationCount)
		}
		statuses = append(statuses, *g.status)
	}

	return statuses, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
