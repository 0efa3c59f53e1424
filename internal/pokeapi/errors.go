package pokeapi

import (
	"errors"
	"fmt"
)

var ErrInvalidResourceURL = errors.New("invalid_resource_url")

// APIError describes a failed call to PokeAPI.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("pokeapi %s: %d %s", e.Endpoint, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("pokeapi %s: %s: %v", e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("pokeapi %s: %s", e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }
