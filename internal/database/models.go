package database

import "time"

// User represents a CRM user account
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	RoleLevel    int        `db:"role_level" json:"role_level"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Lead statuses
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusEnrolled  = "enrolled"
	LeadStatusLost      = "lost"
)

// ValidLeadStatus reports whether status is one of the lead statuses
func ValidLeadStatus(status string) bool {
	switch status {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusEnrolled, LeadStatusLost:
		return true
	}
	return false
}

// Lead represents a prospective customer tracked by the CRM
type Lead struct {
	ID         string    `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"fullName"`
	Email      string    `db:"email" json:"email"`
	Phone      string    `db:"phone" json:"phone"`
	Course     string    `db:"course" json:"course"`
	Source     string    `db:"source" json:"source"`
	Status     string    `db:"status" json:"status"`
	AssignedTo string    `db:"assigned_to" json:"assignedTo"`
	Notes      string    `db:"notes" json:"notes"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// LeadFilter narrows lead listings
type LeadFilter struct {
	AssignedTo string
	Status     string
	Limit      int
	Offset     int
}
