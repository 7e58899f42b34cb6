package common

import (
	"errors"
	"net/http"
)

// Terminal failure kinds surfaced by the account and session services.
// InvalidCredentials and InvalidSession each merge two causes on purpose:
// unknown email vs. wrong password, and unknown token vs. expired token.
// Keeping them merged prevents account and token enumeration.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrUserNotFound       = errors.New("user not found")
)

// HTTPStatusFor maps a service failure to a transport status code.
// Unrecognized errors are internal; their detail never reaches the client.
func HTTPStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidSession),
		errors.Is(err, ErrAccountInactive),
		errors.Is(err, ErrIncorrectPassword):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccountDeactivated):
		return http.StatusForbidden
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse represents a standardized error response body.
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}
