// Package handlers implements the HTTP request handlers of the dashboard API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sedi-apps/timetrack/pkg/directory"
	"github.com/sedi-apps/timetrack/pkg/reconcile"
	"github.com/sedi-apps/timetrack/pkg/sessions"
	"github.com/sedi-apps/timetrack/pkg/store"
)

// Exporter runs one reconciliation of the raw event streams into the ledger.
type Exporter interface {
	Run(ctx context.Context, since *time.Time) (*reconcile.RunResult, error)
}

// Pinger reports database connectivity.
type Pinger func(ctx context.Context) error

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	directory directory.Directory
	sessions  sessions.Service
	ledger    store.Ledger
	exporter  Exporter
	ping      Pinger
	logger    *zap.Logger
	simulated bool
}

// Options configures a handler set.
type Options struct {
	Directory directory.Directory
	Sessions  sessions.Service
	Ledger    store.Ledger
	Exporter  Exporter
	Ping      Pinger
	Logger    *zap.Logger
	Simulated bool
}

// New creates a new Handlers instance.
func New(opts Options) *Handlers {
	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	return &Handlers{
		directory: opts.Directory,
		sessions:  opts.Sessions,
		ledger:    opts.Ledger,
		exporter:  opts.Exporter,
		ping:      opts.Ping,
		logger:    logger.Named("handlers"),
		simulated: opts.Simulated,
	}
}

// writeJSON encodes a JSON response with the given status.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError logs the internal error and returns a sanitized JSON error to the client.
func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, zap.Error(err), zap.Int("status", status))
	}
	h.writeJSON(w, status, map[string]interface{}{"success": false, "error": msg})
}
