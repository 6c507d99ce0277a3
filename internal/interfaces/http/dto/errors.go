package dto

import (
	"net/http"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
)

// Wire error codes. Domain codes pass through unchanged; the rest are
// raised by the HTTP layer itself.
const (
	ErrCodeValidation             = shared.CodeValidation
	ErrCodeInvalidState           = shared.CodeInvalidState
	ErrCodeInvalidTransition      = shared.CodeInvalidTransition
	ErrCodeNotFound               = shared.CodeNotFound
	ErrCodeUnauthorized           = shared.CodeUnauthorized
	ErrCodeForbidden              = shared.CodeForbidden
	ErrCodeConflict               = shared.CodeConflict
	ErrCodeConcurrentModification = shared.CodeConcurrentModification
	ErrCodePreconditionFailed     = shared.CodePreconditionFailed
	ErrCodeKYBRequired            = shared.CodeKYBRequired
	ErrCodeManualReviewRequired   = shared.CodeManualReviewRequired
	ErrCodeInternal               = shared.CodeInternal

	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

var errorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:             http.StatusBadRequest,
	ErrCodeBadRequest:             http.StatusBadRequest,
	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition:      http.StatusUnprocessableEntity,
	ErrCodeUnauthorized:           http.StatusUnauthorized,
	ErrCodeTokenExpired:           http.StatusUnauthorized,
	ErrCodeTokenInvalid:           http.StatusUnauthorized,
	ErrCodeForbidden:              http.StatusForbidden,
	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeConflict:               http.StatusConflict,
	ErrCodeConcurrentModification: http.StatusConflict,
	ErrCodePreconditionFailed:     http.StatusUnprocessableEntity,
	ErrCodeKYBRequired:            http.StatusUnprocessableEntity,
	ErrCodeManualReviewRequired:   http.StatusUnprocessableEntity,
	ErrCodeRequestTooLarge:        http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:            http.StatusTooManyRequests,
	ErrCodeInternal:               http.StatusInternalServerError,
}

// HTTPStatus returns the status for an error code; unknown codes are 500
func HTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
