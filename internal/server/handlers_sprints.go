package server

import (
	"net/http"
)

func (s *Server) handleSprints(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.Sprints(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSprintProgress(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.SprintProgress(r.Context(), queryString(r, "sprint_name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBurndown(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.Burndown(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
