package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/sedi-apps/timetrack/pkg/metrics"
)

func (s *Server) registerRoutes(r chi.Router) {
	h := s.handlers

	r.Get("/health", h.Health)
	r.Method("GET", "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// Operator directory
		r.Get("/operateurs", h.Operators)
		r.Get("/operateurs-badges", h.BadgedOperators)
		r.Get("/ltc-data/{code}", h.LTCData)

		// Work sessions
		r.Post("/demarrer-travail", h.StartWork)
		r.Post("/terminer-travail", h.FinishWork)
		r.Get("/historique-operateur/{operateurId}", h.OperatorHistory)
		r.Get("/admin-operateurs-sessions", h.AdminSessions)
		r.Get("/lancements-status", h.LaunchStatuses)

		// Unified ledger
		r.Post("/export/unifie", h.RunExport)
		r.Get("/operations-unifiees", h.UnifiedOperations)
		r.Post("/bootstrap/unifie-schema", h.Bootstrap)

		// Diagnostics
		r.Get("/database-stats", h.DatabaseStats)
		r.Get("/test-connection", h.TestConnection)
	})
}
