package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level carried in a session token. The role on a
// token is a snapshot taken at login.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStandard:
		return true
	}
	return false
}

// User is an identity record. PasswordHash is the only stored form of the
// password; raw passwords never leave the registration path.
type User struct {
	ID           uuid.UUID
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Unit         string
	Sector       string
	Role         Role
	CreatedAt    time.Time
}
