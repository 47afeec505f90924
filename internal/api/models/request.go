package models

import "strings"

// LoginRequest represents authentication login request. Either Username or
// Email identifies the user.
type LoginRequest struct {
	Username string `json:"username" example:"admin"`
	Email    string `json:"email" example:"admin@crm.local"`
	Password string `json:"password" example:"admin123"`
}

// Identifier returns the username, or the email when no username was sent
func (r LoginRequest) Identifier() string {
	if id := strings.TrimSpace(r.Username); id != "" {
		return id
	}
	return strings.TrimSpace(r.Email)
}

// CreateLeadRequest represents lead creation request
type CreateLeadRequest struct {
	FullName   string `json:"fullName" binding:"required" example:"Priya Sharma"`
	Email      string `json:"email" binding:"omitempty,email" example:"priya@example.com"`
	Phone      string `json:"phone" example:"+91 98765 43210"`
	Course     string `json:"course" example:"MD Pediatrics"`
	Source     string `json:"source" example:"website"`
	AssignedTo string `json:"assignedTo" example:"5f1c7a9e-3b2d-4c1e-9a8f-1d2e3f4a5b6c"`
	Notes      string `json:"notes"`
}

// UpdateLeadStatusRequest represents a lead status change
type UpdateLeadStatusRequest struct {
	Status string `json:"status" binding:"required" example:"contacted"`
}
