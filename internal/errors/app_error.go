package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code           string
	Message        string
	Detail         string
	StatusCode     int
	UpstreamStatus int
	Err            error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

func (e *AppError) WithUpstreamStatus(status int) *AppError {
	e.UpstreamStatus = status

	return e
}

const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeDatabaseError = "DATABASE_ERROR"
	ErrCodeRequest       = "REQUEST_ERROR"
	ErrCodeTransport     = "TRANSPORT_ERROR"
	ErrCodeStateConflict = "STATE_CONFLICT"
	ErrCodeSettlementGap = "SETTLEMENT_GAP"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, http.StatusForbidden)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

// TransportError covers network failures, timeouts and open circuit breakers
// on calls to an upstream API. The request never produced an HTTP status.
func TransportError(message string) *AppError {
	return NewAppError(ErrCodeTransport, message, http.StatusBadGateway)
}

// StateConflictError rejects an operation that is not valid in the current
// checkout state, e.g. a second order submission while one is outstanding.
func StateConflictError(message string) *AppError {
	return NewAppError(ErrCodeStateConflict, message, http.StatusConflict)
}

// SettlementGapError marks the one failure that must never be conflated with
// ordinary submission errors: the payment was captured by the external
// provider but the local order could not be created.
func SettlementGapError(message string) *AppError {
	return NewAppError(ErrCodeSettlementGap, message, http.StatusInternalServerError)
}

// UpstreamError maps a non-2xx status from an upstream API to a
// human-readable cause. The upstream status is kept on the error so callers
// can tell a malformed request apart from a server-side failure.
func UpstreamError(api string, status int) *AppError {
	var appErr *AppError

	switch {
	case status == http.StatusBadRequest:
		appErr = NewAppError(ErrCodeRequest, fmt.Sprintf("%s rejected the request as invalid", api), http.StatusBadGateway)
	case status == http.StatusNotFound:
		appErr = NewAppError(ErrCodeNotFound, fmt.Sprintf("%s could not find the referenced resource", api), http.StatusNotFound)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		appErr = NewAppError(ErrCodeUnauthorized, fmt.Sprintf("%s refused the credentials", api), http.StatusUnauthorized)
	case status >= http.StatusInternalServerError:
		appErr = NewAppError(ErrCodeRequest, fmt.Sprintf("%s failed with a server error", api), http.StatusBadGateway)
	default:
		appErr = NewAppError(ErrCodeRequest, fmt.Sprintf("%s returned an unexpected status", api), http.StatusBadGateway)
	}

	return appErr.WithUpstreamStatus(status)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := IsAppError(err)

	return ok && appErr.Code == code
}
