package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	EntityAlreadyExists    ErrorCode = "entity_already_exists"
	EntityNotFound         ErrorCode = "entity_not_found"
	InvalidAccount         ErrorCode = "invalid_account"
	InsufficientBalance    ErrorCode = "insufficient_balance"
	SameAccountTransaction ErrorCode = "same_account_transaction"
	InvalidArgument        ErrorCode = "invalid_argument"
	InternalError          ErrorCode = "internal_error"
)

// AppError is the tagged error carried from the point of detection to the
// HTTP boundary, where Code selects the status. Internal errors additionally
// carry a TrackingID surfaced to the caller while Details stays in the logs.
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	TrackingID string    `json:"trackingId,omitempty"`

	cause error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause so errors.As can reach driver errors
// through an internal AppError.
func (e *AppError) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error kind onto the status code the boundary returns.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case EntityAlreadyExists:
		return http.StatusConflict
	case EntityNotFound:
		return http.StatusNotFound
	case InvalidAccount, InsufficientBalance, SameAccountTransaction, InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsBusiness reports whether the error represents a business rejection
// rather than an infrastructure failure. Business errors are never retried.
func (e *AppError) IsBusiness() bool {
	return e.Code != InternalError
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewInternalError wraps an unexpected failure. The caller-facing message is
// generic; cause and tracking id are for the boundary log.
func NewInternalError(message string, cause error) *AppError {
	e := &AppError{
		Code:       InternalError,
		Message:    message,
		TrackingID: uuid.New().String(),
	}
	if cause != nil {
		e.Details = cause.Error()
		e.cause = cause
	}
	return e
}

// AsAppError unwraps err into an *AppError when it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if goerrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Predefined errors for common cases
var (
	ErrAccountNotFound     = NewAppError(EntityNotFound, "account not found")
	ErrDuplicateCustomer   = NewAppError(EntityAlreadyExists, "an account with this customer name already exists")
	ErrInsufficientBalance = NewAppError(InsufficientBalance, "insufficient balance for the requested amount")
	ErrSameAccountTransfer = NewAppError(SameAccountTransaction, "transfer source and destination accounts must differ")
)
