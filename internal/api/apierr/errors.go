package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/services/auth"
)

// APIError is the JSON error body
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// Messages shared by more than one route
const (
	MessageUnauthorized       = "Unauthorized"
	MessageInvalidCredentials = "Invalid username or password"
	MessageInternal           = "Internal server error"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(he.apiError)
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{MessageInvalidCredentials, CodeInvalidCredentials}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{MessageUnauthorized, CodeUnauthorized}}

	// Model errors
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{"Username already exists", CodeUsernameExists}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{"User not found", CodeUserNotFound}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{"Game not found", CodeGameNotFound}}
	case errors.Is(err, model.ErrMissingUsername):
		return &httpError{http.StatusBadRequest, APIError{"Username is required", CodeInvalidRequest}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{MessageInternal, CodeInternalError}}
	}
}

// Describe keeps the mapping for errors with a specific status and replaces
// the generic 500 body with message
func Describe(err error, message string) error {
	he := toHTTPError(err)
	if he.status != http.StatusInternalServerError {
		return he
	}
	return &httpError{http.StatusInternalServerError, APIError{message, CodeInternalError}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{message, CodeInvalidRequest}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{MessageUnauthorized, CodeUnauthorized}}
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(message string) error {
	return &httpError{http.StatusServiceUnavailable, APIError{message, CodeUnavailable}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{MessageInternal, CodeInternalError}}
}
