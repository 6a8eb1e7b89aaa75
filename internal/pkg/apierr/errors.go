package apierr

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeTimeConflict   = "TIME_CONFLICT"
	CodeSuperseded     = "SUPERSEDED"
	CodeQueryTimeout   = "QUERY_TIMEOUT"
	CodeCanceled       = "REQUEST_CANCELED"
)

// StatusClientClosedRequest is the nginx status for a request the client abandoned.
const StatusClientClosedRequest = 499

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = New(fiber.StatusNotFound, CodeNotFound, "resource not found with given parameters")

	// ErrInvalidReq is returned when a request is invalid.
	ErrInvalidReq = New(fiber.StatusBadRequest, CodeInvalidRequest, "invalid request: some or all request parameters are invalid")

	// ErrInternalError is returned when an internal error occurs.
	ErrInternalError = New(fiber.StatusInternalServerError, CodeInternalError, "internal server error occurred")

	// ErrTimeConflict is returned when a new interval intersects an existing one on the same machine and date.
	ErrTimeConflict = New(fiber.StatusConflict, CodeTimeConflict, "time interval conflicts with an existing entry")

	// ErrSuperseded is returned when a newer request for the same view has replaced this one.
	ErrSuperseded = New(fiber.StatusConflict, CodeSuperseded, "request superseded by a newer request for the same view")

	// ErrQueryTimeout is returned when a view could not be computed within the configured query timeout.
	ErrQueryTimeout = New(fiber.StatusGatewayTimeout, CodeQueryTimeout, "query did not finish in time")

	// ErrCanceled is returned when the caller went away before its view was computed.
	ErrCanceled = New(StatusClientClosedRequest, CodeCanceled, "request canceled before the view was computed")
)

type Extras map[string]any

type Error struct {
	StatusCode int     `json:"-"`
	ErrorCode  string  `json:"code" example:"INVALID_REQUEST"`
	Message    string  `json:"message" example:"invalid request: some or all request parameters are invalid"`
	Extras     *Extras `json:"-"`
}

func New(statusCode int, errorCode string, message string) *Error {
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func (e Error) Msg(format string, parts ...any) *Error {
	e.Message = fmt.Sprintf(format, parts...)
	return &e
}

func (e Error) WithExtras(extras Extras) *Error {
	e.Extras = &extras
	return &e
}

func NewInvalidViolations(violations any) *Error {
	e := *ErrInvalidReq
	e.Extras = &Extras{
		"violations": violations,
	}
	return &e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// Is lets errors.Is match on the error code, so that copies made by Msg and
// WithExtras still compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.ErrorCode == t.ErrorCode
}
