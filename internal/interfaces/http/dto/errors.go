package dto

import (
	"net/http"

	"github.com/spares/backend/internal/domain/shared"
)

// Error codes returned in the response envelope.
// Domain codes pass through unchanged; the rest are raised by the HTTP layer.
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"

	ErrCodeValidation   = shared.CodeValidation
	ErrCodeInvalidInput = shared.CodeInvalidInput

	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"

	ErrCodeNotFound      = shared.CodeNotFound
	ErrCodeAlreadyExists = shared.CodeAlreadyExists
)

// Ledger rule violations. All of them are 422: the request was well formed
// but the record's counters do not allow it.
const (
	ErrCodeInvalidQuantity         = shared.CodeInvalidQuantity
	ErrCodeInsufficientStock       = shared.CodeInsufficientStock
	ErrCodeInsufficientReservation = shared.CodeInsufficientReservation
	ErrCodeNegativeStock           = shared.CodeNegativeStock
	ErrCodeInvalidTransactionType  = shared.CodeInvalidTransactionType
	ErrCodeReferenceProtected      = shared.CodeReferenceProtected
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	// Ledger rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidQuantity:         http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientReservation: http.StatusUnprocessableEntity,
	ErrCodeNegativeStock:           http.StatusUnprocessableEntity,
	ErrCodeInvalidTransactionType:  http.StatusUnprocessableEntity,
	ErrCodeReferenceProtected:      http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
