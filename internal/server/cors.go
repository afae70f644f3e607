package server

import (
	"net/http"
	"strings"
)

const (
	corsAllowedMethods = "GET, POST, OPTIONS"
	corsDefaultHeaders = "Content-Type, Accept"
	corsMaxAgeSeconds  = "600"
)

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := s.allowedOrigins["*"]; ok {
		return true
	}
	_, ok := s.allowedOrigins[strings.TrimRight(origin, "/")]
	return ok
}

// withCORS answers preflight requests and tags responses for allowed origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := s.originAllowed(origin)
		if allowed {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}

		if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
			next.ServeHTTP(w, r)
			return
		}

		if allowed {
			h := w.Header()
			h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
			headers := r.Header.Get("Access-Control-Request-Headers")
			if headers == "" {
				headers = corsDefaultHeaders
			}
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Max-Age", corsMaxAgeSeconds)
		} else if origin != "" {
			s.log().Debug("cors preflight rejected", "origin", origin, "path", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
