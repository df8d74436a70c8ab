package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sedi-apps/timetrack/pkg/model"
	"github.com/sedi-apps/timetrack/pkg/sessions"
)

type workRequest struct {
	OperatorID   string `json:"operateurId"`
	OperatorName string `json:"operateurNom"`
	LaunchCode   string `json:"codeLancement"`
	Phase        string `json:"phase"`
	RubricCode   string `json:"codeRubrique"`
	Minutes      int    `json:"tempsMinutes"`
	Seconds      int    `json:"tempsSecondes"`
	WorkDay      string `json:"dateTravail"`
}

func (req *workRequest) toStart() (sessions.StartRequest, error) {
	start := sessions.StartRequest{
		OperatorID:   strings.TrimSpace(req.OperatorID),
		OperatorName: strings.TrimSpace(req.OperatorName),
		LaunchCode:   strings.TrimSpace(req.LaunchCode),
		Phase:        strings.TrimSpace(req.Phase),
		RubricCode:   strings.TrimSpace(req.RubricCode),
	}

	if req.WorkDay != "" {
		day, err := time.Parse(time.RFC3339, req.WorkDay)
		if err != nil {
			// Accept a bare date as well
			day, err = time.Parse("2006-01-02", req.WorkDay)
			if err != nil {
				return start, err
			}
		}
		start.WorkDay = day
	}

	return start, nil
}

// StartWork opens a work session for an operator.
func (h *Handlers) StartWork(w http.ResponseWriter, r *http.Request) {
	var req workRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return
	}

	start, err := req.toStart()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid dateTravail", err)
		return
	}
	if start.OperatorID == "" || start.LaunchCode == "" || start.WorkDay.IsZero() {
		h.writeError(w, http.StatusBadRequest,
			"missing required fields: operateurId, codeLancement, dateTravail", nil)
		return
	}

	recordNo, err := h.sessions.StartWork(r.Context(), start)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to start work", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Travail démarré",
		"noEnreg": recordNo,
	})
}

// FinishWork closes a work session and records its elapsed time.
func (h *Handlers) FinishWork(w http.ResponseWriter, r *http.Request) {
	var req workRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return
	}

	start, err := req.toStart()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid dateTravail", err)
		return
	}
	if start.OperatorID == "" || start.LaunchCode == "" || start.WorkDay.IsZero() {
		h.writeError(w, http.StatusBadRequest,
			"missing required fields: operateurId, codeLancement, dateTravail", nil)
		return
	}

	finish := sessions.FinishRequest{
		StartRequest: start,
		Minutes:      req.Minutes,
		Seconds:      req.Seconds,
	}

	recordNo, err := h.sessions.FinishWork(r.Context(), finish)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to finish work", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Travail terminé",
		"noEnreg": recordNo,
	})
}

// OperatorHistory returns an operator's finished sessions, newest first.
func (h *Handlers) OperatorHistory(w http.ResponseWriter, r *http.Request) {
	operatorID := strings.TrimSpace(chi.URLParam(r, "operateurId"))
	if operatorID == "" {
		h.writeError(w, http.StatusBadRequest, "operator id is required", nil)
		return
	}

	entries, err := h.sessions.History(r.Context(), operatorID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to read operator history", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"enregistrements": entries,
	})
}

// AdminSessions returns today's sessions grouped by operator.
func (h *Handlers) AdminSessions(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	grouped, err := h.sessions.AdminDaySessions(r.Context(), now)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to read admin sessions", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"date":             now.Format("2006-01-02"),
		"nombreOperateurs": len(grouped),
		"operateurs":       grouped,
	})
}

// LaunchStatuses returns today's per-launch aggregates split by state.
func (h *Handlers) LaunchStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.sessions.LaunchStatuses(r.Context(), time.Now())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to read launch statuses", err)
		return
	}

	inProgress := make([]model.LaunchStatus, 0, len(statuses))
	finished := make([]model.LaunchStatus, 0, len(statuses))
	var totalSeconds int64
	for _, st := range statuses {
		totalSeconds += st.TotalSeconds
		switch st.State {
		case "EN_COURS":
			inProgress = append(inProgress, st)
		case "TERMINE":
			finished = append(finished, st)
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"enCours":  inProgress,
		"termines": finished,
		"total":    len(statuses),
		"statistiques": map[string]interface{}{
			"nbLancementsEnCours":  len(inProgress),
			"nbLancementsTermines": len(finished),
			"tempsTotal":           totalSeconds,
		},
	})
}
