package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)
	mux.HandleFunc("GET /v1/health", s.handleSheetHealth)

	// Table views.
	mux.HandleFunc("GET /v1/table/summary", s.handleSummary)
	mux.HandleFunc("GET /v1/table/data", s.handleData)
	mux.HandleFunc("GET /v1/table/filters", s.handleFilterOptions)

	// Sprint analytics.
	mux.HandleFunc("GET /v1/sprints", s.handleSprints)
	mux.HandleFunc("GET /v1/sprints/progress", s.handleSprintProgress)
	mux.HandleFunc("GET /v1/sprints/{name}/burndown", s.handleBurndown)

	// Admin.
	mux.HandleFunc("POST /v1/admin/refresh", s.handleAdminRefresh)
	mux.HandleFunc("GET /v1/admin/snapshots", s.handleAdminSnapshots)

	return mux
}
