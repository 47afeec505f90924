package models

import "net/http"

// Error codes
const (
	// General errors
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// Authentication errors
	ErrCodeNoToken            = "NO_TOKEN"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInsufficientRole   = "INSUFFICIENT_ROLE"

	// Lead errors
	ErrCodeLeadNotFound = "LEAD_NOT_FOUND"
)

// Client-facing messages. Token failures all share MsgInvalidToken.
const (
	MsgNoToken            = "No token provided"
	MsgInvalidToken       = "Invalid token"
	MsgInsufficientRole   = "Insufficient permissions"
	MsgInvalidCredentials = "Invalid credentials"
	MsgMissingCredentials = "Username or email and password are required"
	MsgMethodNotAllowed   = "Method not allowed"
	MsgNotFound           = "Not found"
	MsgAuthUnavailable    = "Authentication unavailable"
	MsgServiceUnavailable = "Service temporarily unavailable"
	MsgInternalError      = "Internal server error"
)

// APIError represents a structured API error
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Response returns the client-facing body for the error
func (e *APIError) Response() ErrorResponse {
	return ErrorResponse{Success: false, Error: e.Message}
}

var (
	ErrNoToken            = NewAPIError(ErrCodeNoToken, MsgNoToken, http.StatusUnauthorized)
	ErrInvalidToken       = NewAPIError(ErrCodeInvalidToken, MsgInvalidToken, http.StatusUnauthorized)
	ErrInsufficientRole   = NewAPIError(ErrCodeInsufficientRole, MsgInsufficientRole, http.StatusForbidden)
	ErrInvalidCredentials = NewAPIError(ErrCodeInvalidCredentials, MsgInvalidCredentials, http.StatusUnauthorized)
	ErrMissingCredentials = NewAPIError(ErrCodeInvalidRequest, MsgMissingCredentials, http.StatusBadRequest)
	ErrMethodNotAllowed   = NewAPIError(ErrCodeMethodNotAllowed, MsgMethodNotAllowed, http.StatusMethodNotAllowed)
	ErrNotFound           = NewAPIError(ErrCodeNotFound, MsgNotFound, http.StatusNotFound)
	ErrAuthUnavailable    = NewAPIError(ErrCodeInternalError, MsgAuthUnavailable, http.StatusInternalServerError)
	ErrServiceUnavailable = NewAPIError(ErrCodeServiceUnavailable, MsgServiceUnavailable, http.StatusServiceUnavailable)
	ErrInternal           = NewAPIError(ErrCodeInternalError, MsgInternalError, http.StatusInternalServerError)
	ErrLeadNotFound       = NewAPIError(ErrCodeLeadNotFound, "Lead not found", http.StatusNotFound)
)
