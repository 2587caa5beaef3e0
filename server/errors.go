package server

import (
	"fmt"
	"maps"
	"net/http"
)

// IAPIError is the contract for errors a handler returns to be rendered
// through the standard response envelope: a stable machine code, a
// human-readable message, the HTTP status, and optional detail entries
// (binding failures put their itemized error list here).
type IAPIError interface {
	ErrorCode() string
	Message() string
	HTTPStatus() int
	Details() map[string]any
}

// BaseAPIError is the default IAPIError carrier; the New*Error
// constructors below cover the common cases.
type BaseAPIError struct {
	code       string
	message    string
	httpStatus int
	details    map[string]any
}

// NewBaseAPIError creates an error with an explicit code and status, for
// cases the prebuilt constructors do not cover.
func NewBaseAPIError(code, message string, httpStatus int) *BaseAPIError {
	return &BaseAPIError{
		code:       code,
		message:    message,
		httpStatus: httpStatus,
		details:    make(map[string]any),
	}
}

// ErrorCode returns the machine-readable code.
func (e *BaseAPIError) ErrorCode() string { return e.code }

// Message returns the human-readable message.
func (e *BaseAPIError) Message() string { return e.message }

// HTTPStatus returns the status the response is rendered with.
func (e *BaseAPIError) HTTPStatus() int { return e.httpStatus }

// Details returns a copy of the detail entries, nil when there are none.
func (e *BaseAPIError) Details() map[string]any {
	if len(e.details) == 0 {
		return nil
	}
	cp := make(map[string]any, len(e.details))
	maps.Copy(cp, e.details)
	return cp
}

// WithDetails attaches a detail entry and returns the error for chaining.
func (e *BaseAPIError) WithDetails(key string, value any) *BaseAPIError {
	e.details[key] = value
	return e
}

// Error implements the error interface.
func (e *BaseAPIError) Error() string {
	if e == nil {
		return ""
	}
	if e.code == "" {
		return e.message
	}
	return e.code + ": " + e.message
}

// NewBadRequestError is the 400 used when binding or validation rejects a
// request; the handler wrapper attaches the field errors as details.
func NewBadRequestError(message string) *BaseAPIError {
	return NewBaseAPIError("BAD_REQUEST", message, http.StatusBadRequest)
}

// NewNotFoundError is the 404 for a missing resource, named in the message.
func NewNotFoundError(resource string) *BaseAPIError {
	return NewBaseAPIError("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// NewInternalError is the 500 returned when no more specific error applies.
func NewInternalError(message string) *BaseAPIError {
	return NewBaseAPIError("INTERNAL_ERROR", message, http.StatusInternalServerError)
}
