package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sheetdash/internal/api"
)

const defaultSnapshotLimit = 50

func (s *Server) writeErrorReq(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}

	code, numericCode := classifyError(status, err)
	message := err.Error()

	fields := []any{"status", status, "code", code, "error_code", numericCode, "error", err}
	if r != nil {
		fields = append(fields, "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
	}

	switch {
	case code == codeSourceUnavailable:
		s.log().Warn("sheet unavailable", fields...)
	case status >= 500:
		s.log().Error("request error", fields...)
		message = "internal error"
	case status == http.StatusTooManyRequests:
		s.log().Warn("request throttled", fields...)
	case status >= 400:
		s.log().Debug("request rejected", fields...)
	}

	s.writeJSON(w, status, api.ErrorResponse{Error: message, Code: code, ErrorCode: numericCode})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("write json response", "status", status, "error", err)
	}
}

type apiError struct {
	status  int
	code    string
	errCode int
	err     error
}

func (e apiError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e apiError) Unwrap() error {
	return e.err
}

// makeAPIError tags err with HTTP and error codes. An error that is already
// tagged keeps its original classification.
func makeAPIError(status int, code string, errCode int, err error) error {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	if existing := (apiError{}); errors.As(err, &existing) && existing.status != 0 {
		return existing
	}
	return apiError{status: status, code: code, errCode: errCode, err: err}
}

func badRequestCode(err error, code int) error {
	return makeAPIError(http.StatusBadRequest, codeInvalidArgument, code, err)
}

func notFoundCode(err error, code int) error {
	return makeAPIError(http.StatusNotFound, codeNotFound, code, err)
}

func internalError(err error) error {
	return makeAPIError(http.StatusInternalServerError, codeInternal, ErrCodeInternal, err)
}

func storeFailure(err error) error {
	return makeAPIError(http.StatusInternalServerError, codeInternal, ErrCodeStoreFailure, err)
}

func sourceUnavailable(err error) error {
	return makeAPIError(http.StatusServiceUnavailable, codeSourceUnavailable, ErrCodeSourceUnavailable, err)
}

func httpStatusFromError(err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr.status
	}
	return http.StatusInternalServerError
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorReq(w, r, httpStatusFromError(err), err)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorReq(w, r, http.StatusInternalServerError, storeFailure(err))
}

func (s *Server) withLimiter(w http.ResponseWriter, r *http.Request, limiter chan struct{}, name string, fn func()) {
	if !s.acquireLimiter(limiter, w, r, name) {
		return
	}
	defer s.releaseLimiter(limiter)
	fn()
}

func queryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// queryIntDefault reads a non-negative integer parameter.
func queryIntDefault(r *http.Request, key string, def int) (int, error) {
	value := queryString(r, key)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, badRequestCode(fmt.Errorf("%s must be a non-negative integer", key), ErrCodeInvalidQuery)
	}
	return parsed, nil
}
