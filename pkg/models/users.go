package models

import (
	"time"
)

// Platform roles. Editeur is the elevated role allowed to approve or reject
// governance evolutions.
const (
	RoleCitoyen = "citoyen"
	RoleExpert  = "expert"
	RoleEditeur = "editeur"
)

// User represents a platform user
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsEditor reports whether the user holds the elevated editor role
func (u User) IsEditor() bool {
	return u.Role == RoleEditeur
}
