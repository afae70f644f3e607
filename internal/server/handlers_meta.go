package server

import (
	"net/http"

	"sheetdash/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	state := s.service.CacheState()
	resp := api.InfoResponse{
		Version:         s.version,
		DocumentID:      state.DocumentID,
		SheetName:       state.SheetName,
		CacheTTLSeconds: state.TTL.Seconds(),
		ArchiveEnabled:  s.archive != nil,
	}
	if state.Loaded {
		fetchedAt := state.FetchedAt
		age := s.now().Sub(fetchedAt).Seconds()
		resp.CachedAt = &fetchedAt
		resp.CacheAgeSeconds = &age
	}

	if s.catalog != nil {
		info, err := s.catalog.StoreInfo(r.Context())
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		resp.SchemaVersion = info.SchemaVersion
		resp.Snapshots = info.Snapshots
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleSheetHealth reads the sheet summary; the service stays up when the
// sheet is unreachable and reports the cause instead.
func (s *Server) handleSheetHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{Status: "healthy", SheetConnection: "ok", Timestamp: s.now().UTC()}
	if _, err := s.service.Summary(r.Context()); err != nil {
		s.log().Warn("sheet health probe failed", "error", err)
		resp.SheetConnection = "error: " + err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}
