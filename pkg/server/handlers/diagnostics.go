package handlers

import (
	"net/http"
	"time"
)

// DatabaseStats returns coarse row counts for the dashboard footer.
func (h *Handlers) DatabaseStats(w http.ResponseWriter, r *http.Request) {
	operators, err := h.directory.Operators(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to read operator directory", err)
		return
	}

	stats := map[string]interface{}{
		"total_operateurs": len(operators),
		"derniere_maj":     time.Now().Format(time.RFC3339),
	}

	if count, err := h.ledger.Count(r.Context()); err == nil {
		stats["operations_unifiees"] = count
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// TestConnection reports database reachability.
func (h *Handlers) TestConnection(w http.ResponseWriter, r *http.Request) {
	if h.simulated || h.ping == nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Connexion simulée réussie",
		})
		return
	}

	if err := h.ping(r.Context()); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "database unreachable", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Connexion réussie",
	})
}
