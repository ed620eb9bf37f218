package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST    ErrCode = "REQUEST_FAILED"
	BAD_REQUEST       ErrCode = "FAILED_TO_DECODE"
	INVALID_INPUT     ErrCode = "INVALID_INPUT"
	NOT_FOUND         ErrCode = "NOT_FOUND"
	FORBIDDEN         ErrCode = "FORBIDDEN"
	UNAUTHORIZED      ErrCode = "UNAUTHORIZED"
	LOCKED            ErrCode = "LOCKED"
	SLOT_CONFLICT     ErrCode = "SLOT_CONFLICT"
	CAPACITY_EXCEEDED ErrCode = "CAPACITY_EXCEEDED"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("not allowed to act on this resource")
	ErrInvalidInput     = errors.New("invalid input")
	ErrLocked           = errors.New("resource is locked")
	ErrSlotConflict     = errors.New("slot is already taken")
	ErrCapacityExceeded = errors.New("curriculum hours exceeded")
)

// CapacityError reports a duration that does not fit the remaining curriculum hours.
type CapacityError struct {
	Requested int
	Remaining int
}

func (e *CapacityError) Deficit() int {
	return e.Requested - e.Remaining
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("cannot schedule %dh, only %dh remain (%dh over)", e.Requested, e.Remaining, e.Deficit())
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// SlotConflictError names the lesson already holding the slot, when known.
type SlotConflictError struct {
	LessonID int64
}

func (e *SlotConflictError) Error() string {
	if e.LessonID == 0 {
		return ErrSlotConflict.Error()
	}
	return fmt.Sprintf("slot is already taken by lesson %d", e.LessonID)
}

func (e *SlotConflictError) Unwrap() error { return ErrSlotConflict }

type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func Invalid(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// FromError maps a service error to an HTTP status and envelope.
// The bool is false for unexpected errors, whose detail must not reach the client.
func FromError(err error, fallback string) (int, Response, bool) {
	var capErr *CapacityError
	var invErr *InvalidInputError

	switch {
	case errors.As(err, &capErr):
		return http.StatusUnprocessableEntity, Error(string(CAPACITY_EXCEEDED), capErr.Error()), true
	case errors.Is(err, ErrCapacityExceeded):
		return http.StatusUnprocessableEntity, Error(string(CAPACITY_EXCEEDED), ErrCapacityExceeded.Error()), true
	case errors.Is(err, ErrSlotConflict):
		return http.StatusConflict, Error(string(SLOT_CONFLICT), ErrSlotConflict.Error()), true
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, Error(string(NOT_FOUND), ErrNotFound.Error()), true
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, Error(string(FORBIDDEN), ErrForbidden.Error()), true
	case errors.As(err, &invErr):
		return http.StatusBadRequest, Error(string(INVALID_INPUT), invErr.Error()), true
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, Error(string(INVALID_INPUT), ErrInvalidInput.Error()), true
	case errors.Is(err, ErrLocked):
		return http.StatusLocked, Error(string(LOCKED), ErrLocked.Error()), true
	default:
		return http.StatusInternalServerError, Error(string(FAILED_REQUEST), fallback), false
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsg []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is required", err.Field()))
		case "min":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at least %s", err.Field(), err.Param()))
		case "max":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at most %s", err.Field(), err.Param()))
		case "oneof":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be one of [%s]", err.Field(), err.Param()))
		default:
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is invalid", err.Field()))
		}
	}

	return Error(string(INVALID_INPUT), strings.Join(errMsg, ", "))
}
