package server

import (
	"net/http"

	"sheetdash/internal/api"
	"sheetdash/internal/store"
)

func (s *Server) handleAdminRefresh(w http.ResponseWriter, r *http.Request) {
	s.withLimiter(w, r, s.refreshLimiter, "refresh", func() {
		resp, err := s.service.Refresh(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.log().Info("sheet refreshed on request", "rows", resp.Rows, "columns", resp.Columns)
		s.writeJSON(w, http.StatusOK, resp)
	})
}

func (s *Server) handleAdminSnapshots(w http.ResponseWriter, r *http.Request) {
	limit, err := queryIntDefault(r, "limit", defaultSnapshotLimit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := api.SnapshotListResponse{Snapshots: []store.Snapshot{}}
	if s.archive == nil {
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	snaps, err := s.archive.List(r.Context(), limit)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	resp.Enabled = true
	if snaps != nil {
		resp.Snapshots = snaps
	}
	s.writeJSON(w, http.StatusOK, resp)
}
