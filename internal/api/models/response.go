package models

import "github.com/DMHCAIT/crm-backend-sub002/internal/auth"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Invalid token"`
}

// DataResponse wraps successful non-auth payloads
type DataResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message,omitempty" example:"Lead created"`
	Data    interface{} `json:"data,omitempty"`
}

// UserResponse represents the public view of an authenticated user
type UserResponse struct {
	ID        string `json:"id" example:"5f1c7a9e-3b2d-4c1e-9a8f-1d2e3f4a5b6c"`
	Username  string `json:"username" example:"admin"`
	Email     string `json:"email" example:"admin@crm.local"`
	Name      string `json:"name" example:"Super Admin"`
	Role      string `json:"role" example:"super_admin"`
	RoleLevel int    `json:"roleLevel" example:"100"`
}

// NewUserResponse builds the user view from token claims
func NewUserResponse(id auth.Identity) *UserResponse {
	return &UserResponse{
		ID:        id.UserID,
		Username:  id.Username,
		Email:     id.Email,
		Name:      id.Name,
		Role:      id.Role.String(),
		RoleLevel: id.RoleLevel,
	}
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Success   bool          `json:"success" example:"true"`
	Token     string        `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresIn int64         `json:"expiresIn" example:"86400"`
	User      *UserResponse `json:"user"`
}

// VerifyResponse represents a successful token verification
type VerifyResponse struct {
	Success bool          `json:"success" example:"true"`
	User    *UserResponse `json:"user"`
}

// PaginationInfo represents pagination information
type PaginationInfo struct {
	Limit  int `json:"limit" example:"50"`
	Offset int `json:"offset" example:"0"`
	Count  int `json:"count" example:"12"`
}

// LeadListResponse represents a page of leads
type LeadListResponse struct {
	Success    bool           `json:"success" example:"true"`
	Data       interface{}    `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// HealthCheckResponse represents health check response
type HealthCheckResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Timestamp int64                  `json:"timestamp" example:"1640995200"`
	Version   string                 `json:"version" example:"1.0.0"`
	Uptime    int64                  `json:"uptime,omitempty" example:"86400"`
	Checks    map[string]HealthCheck `json:"checks,omitempty"`
}

// HealthCheck represents individual health check
type HealthCheck struct {
	Status  string `json:"status" example:"healthy"`
	Message string `json:"message,omitempty" example:"Service is running normally"`
	Latency string `json:"latency,omitempty" example:"5ms"`
}
