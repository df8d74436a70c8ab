package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sedi-apps/timetrack/pkg/store"
)

type exportRequest struct {
	SinceDate string `json:"sinceDate"`
}

// RunExport runs one reconciliation of the raw event streams into the unified
// ledger, optionally restricted to rows at or after sinceDate (YYYY-MM-DD).
func (h *Handlers) RunExport(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		h.writeError(w, http.StatusServiceUnavailable, "export unavailable in simulation mode", nil)
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return
	}

	var since *time.Time
	if req.SinceDate != "" {
		day, err := time.Parse("2006-01-02", req.SinceDate)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid sinceDate, expected YYYY-MM-DD", err)
			return
		}
		since = &day
	}

	result, err := h.exporter.Run(r.Context(), since)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrSchemaMissing) {
			status = http.StatusConflict
		}
		h.writeError(w, status, "export failed", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"batchId":       result.BatchID,
		"rowsFetched":   result.RowsFetched,
		"rowsInserted":  result.RowsInserted,
		"rowsCoalesced": result.RowsCoalesced,
		"durationMs":    result.Duration.Milliseconds(),
	})
}

// UnifiedOperations lists the newest unified ledger rows.
func (h *Handlers) UnifiedOperations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid top parameter", err)
			return
		}
		limit = n
	}

	rows, err := h.ledger.Recent(r.Context(), limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrSchemaMissing) {
			status = http.StatusConflict
		}
		h.writeError(w, status, "failed to read unified operations", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"rows":    rows,
	})
}

// Bootstrap provisions the ledger and session tables if absent.
func (h *Handlers) Bootstrap(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Provision(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to provision ledger schema", err)
		return
	}
	if err := h.sessions.Provision(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to provision session schema", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Schéma unifié prêt",
	})
}
