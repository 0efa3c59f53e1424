package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the pokemon and seed services matches
// exactly one of these with errors.Is.
var (
	ErrNotFound   = errors.New("not_found")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad_request")
	ErrInternal   = errors.New("internal_error")
)

// Validation errors are bad requests.
var (
	ErrInvalidName       = &Error{Kind: ErrBadRequest, Code: "invalid_name"}
	ErrInvalidNo         = &Error{Kind: ErrBadRequest, Code: "invalid_no"}
	ErrInvalidPagination = &Error{Kind: ErrBadRequest, Code: "invalid_pagination"}
)

type Error struct {
	Kind error
	// Code is a stable machine-readable reason.
	Code string
	// Term is the caller input that could not be resolved or removed.
	Term string
	// KeyValue holds the colliding unique keys of a conflict.
	KeyValue map[string]any

	cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrNotFound:
		return fmt.Sprintf("pokemon with id, name or no %q not found", e.Term)
	case ErrConflict:
		if len(e.KeyValue) == 0 {
			return e.Code
		}
		b, _ := json.Marshal(e.KeyValue)
		return fmt.Sprintf("pokemon already exists %s", b)
	case ErrBadRequest:
		if e.Term != "" {
			return fmt.Sprintf("pokemon with id %q not found", e.Term)
		}
		return e.Code
	default:
		return "internal error"
	}
}

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind && e.Code == t.Code
	}
	return e.Kind == target
}

// Unwrap exposes the cause for logging. Transport code must not render it.
func (e *Error) Unwrap() error { return e.cause }

func NotFound(term string) error {
	return &Error{Kind: ErrNotFound, Code: "not_found", Term: term}
}

func Conflict(keyValue map[string]any) error {
	return &Error{Kind: ErrConflict, Code: "already_exists", KeyValue: keyValue}
}

func MissingID(id string) error {
	return &Error{Kind: ErrBadRequest, Code: "not_found", Term: id}
}

func Internal(cause error) error {
	return &Error{Kind: ErrInternal, Code: "internal_error", cause: cause}
}
