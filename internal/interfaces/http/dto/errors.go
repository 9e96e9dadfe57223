package dto

import (
	"net/http"

	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
)

// Transport error codes. Domain errors keep the code of the DomainError
// that produced them.
const (
	ErrCodeInternal         = "ERR_INTERNAL"
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeInvalidJSON      = "ERR_INVALID_JSON"
	ErrCodeBadRequest       = "ERR_BAD_REQUEST"
	ErrCodeNotFound         = "ERR_NOT_FOUND"
	ErrCodeRequestTooLarge  = "ERR_REQUEST_TOO_LARGE"
	ErrCodeIdempotencyInUse = "ERR_IDEMPOTENCY_KEY_IN_USE"
	ErrCodeUnavailable      = "ERR_UNAVAILABLE"
)

// Shared domain codes
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeIntegrityViolation  = "INTEGRITY_VIOLATION"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeIdempotencyInUse: http.StatusConflict,
	ErrCodeUnavailable:      http.StatusServiceUnavailable,

	CodeNotFound:            http.StatusNotFound,
	CodeInvalidInput:        http.StatusBadRequest,
	CodeConcurrencyConflict: http.StatusConflict,
	CodeIntegrityViolation:  http.StatusBadRequest,

	ledger.CodeMissingFields:     http.StatusBadRequest,
	ledger.CodeDuplicatePeriod:   http.StatusConflict,
	ledger.CodeMultiMonthPayload: http.StatusBadRequest,
	ledger.CodeInvalidSplit:      http.StatusBadRequest,
	ledger.CodeInvalidUnit:       http.StatusBadRequest,
	ledger.CodeInvalidKind:       http.StatusBadRequest,
	ledger.CodeInvalidMonth:      http.StatusBadRequest,
	ledger.CodeInvalidProgramID:  http.StatusBadRequest,
	ledger.CodeInvalidUnitID:     http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
