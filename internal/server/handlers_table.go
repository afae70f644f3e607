package server

import (
	"net/http"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.Summary(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	params, err := parseDataQuery(r, s.service.DefaultPageSize(), s.service.MaxPageSize())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.withLimiter(w, r, s.dataLimiter, "data", func() {
		resp, err := s.service.PaginatedData(r.Context(), params)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, resp)
	})
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.FilterOptions(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
