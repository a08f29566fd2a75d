package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")

	// ErrUnreadableInput marks a source file that cannot be decoded or
	// opened. Per-file: callers skip the file and report it.
	ErrUnreadableInput = errors.New("unreadable input file")

	// ErrMissingDependency marks an absent external binary or language
	// pack. Fatal at startup scope, not per-request.
	ErrMissingDependency = errors.New("missing external dependency")

	// ErrReferenceData marks an IFSC or transaction table lacking the
	// expected columns. Fatal for the whole letter-generation run.
	ErrReferenceData = errors.New("malformed reference data")

	// ErrTemplateShape marks a letter template without the expected
	// table. Per-bank-group skip, never a hard failure.
	ErrTemplateShape = errors.New("template missing expected table")

	// ErrDuplicate marks an insert whose primary key already exists.
	ErrDuplicate = errors.New("duplicate record")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus maps an error to the response status the handlers should use.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnreadableInput), errors.Is(err, ErrReferenceData):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
