package server

import "errors"

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument  = 1000
	ErrCodeInvalidQuery     = 1003
	ErrCodeInvalidPage      = 1015
	ErrCodeInvalidPageSize  = 1016
	ErrCodeInvalidSortOrder = 1017
	ErrCodeInvalidSprint    = 1018

	// Domain state (2xxx)
	ErrCodeNotFound       = 2000
	ErrCodeSprintNotFound = 2005

	// Limits (3xxx)
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal          = 4001
	ErrCodeStoreFailure      = 4002
	ErrCodeNotImplemented    = 4005
	ErrCodeSourceUnavailable = 4006
)

const (
	codeInvalidArgument   = "invalid_argument"
	codeNotFound          = "not_found"
	codeResourceExhausted = "resource_exhausted"
	codeInternal          = "internal"
	codeNotImplemented    = "not_implemented"
	codeSourceUnavailable = "source_unavailable"
)

type statusCodes struct {
	name    string
	numeric int
}

// codesByStatus fills in codes for errors that carry only an HTTP status.
var codesByStatus = map[int]statusCodes{
	400: {codeInvalidArgument, ErrCodeInvalidArgument},
	404: {codeNotFound, ErrCodeNotFound},
	429: {codeResourceExhausted, ErrCodeResourceExhausted},
	500: {codeInternal, ErrCodeInternal},
	501: {codeNotImplemented, ErrCodeNotImplemented},
	503: {codeSourceUnavailable, ErrCodeSourceUnavailable},
}

// classifyError returns the string and numeric codes reported for err.
func classifyError(status int, err error) (string, int) {
	codes := codesByStatus[status]
	var apiErr apiError
	if errors.As(err, &apiErr) {
		if apiErr.code != "" {
			codes.name = apiErr.code
		}
		if apiErr.errCode > 0 {
			codes.numeric = apiErr.errCode
		}
	}
	return codes.name, codes.numeric
}
