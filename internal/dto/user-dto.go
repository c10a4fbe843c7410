package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateUserDTO struct {
	Name         string      `json:"name" validate:"required,max=200"`
	Email        null.String `json:"email" validate:"omitempty,email"`
	Role         string      `json:"role" validate:"required,role"`
	DisplayColor null.String `json:"displayColor" validate:"omitempty,hexcolor_or_empty"`
}

// UpdateUserDTO replaces the profile. The credential is changed only
// through SetCredentialDTO.
type UpdateUserDTO struct {
	Name         string      `json:"name" validate:"required,max=200"`
	Email        null.String `json:"email" validate:"omitempty,email"`
	Role         string      `json:"role" validate:"required,role"`
	DisplayColor null.String `json:"displayColor" validate:"omitempty,hexcolor_or_empty"`
}

type SetCredentialDTO struct {
	Secret string `json:"secret" validate:"required,min=8,max=72"`
}

// UserDTO is the only shape users leave the service in; it never carries
// credential material.
type UserDTO struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         null.String `json:"email"`
	Role          string      `json:"role"`
	DisplayColor  string      `json:"displayColor"`
	CustomColor   bool        `json:"customColor"`
	HasCredential bool        `json:"hasCredential"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// TechnicianRefDTO is the slice of a user shown next to a booking.
type TechnicianRefDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayColor string `json:"displayColor"`
}
