package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// Operators returns the full operator directory.
func (h *Handlers) Operators(w http.ResponseWriter, r *http.Request) {
	operators, err := h.directory.Operators(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to read operator directory", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"operateurs": operators,
	})
}

// BadgedOperators returns the operators that clocked activity today.
func (h *Handlers) BadgedOperators(w http.ResponseWriter, r *http.Request) {
	badged, err := h.directory.Badged(r.Context(), time.Now())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to read badged operators", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"operateurs_badges": badged,
	})
}

// LTCData resolves the phase and rubric for a launch code.
func (h *Handlers) LTCData(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		h.writeError(w, http.StatusBadRequest, "launch code is required", nil)
		return
	}

	data, err := h.directory.LTCData(r.Context(), code)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to resolve launch code", err)
		return
	}
	if data == nil {
		h.writeError(w, http.StatusNotFound, "unknown launch code", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"ltcData": data,
	})
}
