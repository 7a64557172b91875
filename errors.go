package nouvelles

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code carried by domain errors.
type Code string

const (
	CodeValidation       Code = "VALIDATION"
	CodeConflict         Code = "CONFLICT"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeUnknownTag       Code = "UNKNOWN_TAG"
	CodeUnsupportedMedia Code = "UNSUPPORTED_MEDIA"
	CodeNotFound         Code = "NOT_FOUND"
	CodeInternal         Code = "INTERNAL"
)

// HTTPStatus maps an error code to the status the API responds with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeUnknownTag:
		return http.StatusUnprocessableEntity
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, a human-readable message, and
// optional per-field details for validation failures.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldError
	cause   error
}

// FieldError is one field-scoped validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error carrying the same code, so handlers can test
// errors.Is(err, ErrConflict) regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status for this error.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// Sentinels for errors.Is checks.
var (
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrUnauthorized     = &Error{Code: CodeUnauthorized, Message: "not authenticated"}
	ErrUnknownTag       = &Error{Code: CodeUnknownTag, Message: "unknown tag"}
	ErrUnsupportedMedia = &Error{Code: CodeUnsupportedMedia, Message: "unsupported media type"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
)

// Validation creates a validation error with field details.
func Validation(msg string, fields []FieldError) *Error {
	return &Error{Code: CodeValidation, Message: msg, Fields: fields}
}

// Conflict creates a uniqueness-conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Unauthorized creates an authentication error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// UnknownTag creates the strict-policy rejection for an unrecognized slug.
func UnknownTag(slug string) *Error {
	return &Error{Code: CodeUnknownTag, Message: "Unknown tag: " + slug}
}

// UnsupportedMedia creates an unsupported-upload error.
func UnsupportedMedia(msg string) *Error {
	return &Error{Code: CodeUnsupportedMedia, Message: msg}
}

// Internal wraps an unexpected failure.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}
