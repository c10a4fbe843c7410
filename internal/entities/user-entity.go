package entities

import (
	"strings"

	"github.com/aarondl/null/v8"

	"reservation-system/pkg/types"
)

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleTechnician Role = "TECHNICIAN"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTechnician
}

type User struct {
	ID           string      `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Email        null.String `json:"email" db:"email"`
	Role         Role        `json:"role" db:"role"`
	PasswordHash null.String `json:"-" db:"password_hash"`
	DisplayColor null.String `json:"displayColor" db:"display_color"`

	types.BaseEntity
}

// HasCredential reports whether the user can authenticate at all.
func (u *User) HasCredential() bool {
	return u.PasswordHash.Valid && u.PasswordHash.String != ""
}

// NormalizedEmail is the uniqueness key for Email; empty when absent.
func (u *User) NormalizedEmail() string {
	if !u.Email.Valid {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(u.Email.String))
}
