package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	KeyValue map[string]any    `json:"key_value,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, internalPayload()
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var domErr *pokemondomain.Error
	if !errors.As(err, &domErr) {
		return http.StatusInternalServerError, internalPayload()
	}

	switch domErr.Kind {
	case pokemondomain.ErrNotFound:
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: domErr.Error(),
		}
	case pokemondomain.ErrConflict:
		return http.StatusConflict, errorPayload{
			Type:     "conflict",
			Message:  domErr.Error(),
			KeyValue: domErr.KeyValue,
		}
	case pokemondomain.ErrBadRequest:
		if domErr.Term != "" {
			return http.StatusBadRequest, errorPayload{
				Type:    "bad_request",
				Message: domErr.Error(),
			}
		}
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(domErr.Code),
					Code:    domErr.Code,
					Message: "invalid value",
				},
			},
		}
	default:
		return http.StatusInternalServerError, internalPayload()
	}
}

func internalPayload() errorPayload {
	return errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	var domErr *pokemondomain.Error
	if errors.As(err, &domErr) {
		return payload.Type, domErr.Code
	}
	if vErr := asValidationErrors(err); vErr != nil && len(vErr.Errors) > 0 {
		return payload.Type, vErr.Errors[0].Code
	}
	return payload.Type, ""
}
