// Package transport defines request/response DTOs for the auth module.
package transport

import (
	"github.com/google/uuid"
)

// LoginRequest is the email/password credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginResponse carries the access token and the caller's identity.
type LoginResponse struct {
	OK          bool       `json:"ok"`
	AccessToken string     `json:"accessToken"`
	Role        string     `json:"role"`
	ClinicID    *uuid.UUID `json:"clinicId,omitempty"`
}

// CreateUserRequest registers a panel or admin user. Admin only.
type CreateUserRequest struct {
	Email    string     `json:"email" validate:"required,email,max=254"`
	Password string     `json:"password" validate:"required,min=8,max=128"`
	Role     string     `json:"role" validate:"required,oneof=admin clinic"`
	ClinicID *uuid.UUID `json:"clinicId"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	OK       bool       `json:"ok"`
	ID       uuid.UUID  `json:"id"`
	Email    string     `json:"email"`
	Role     string     `json:"role"`
	ClinicID *uuid.UUID `json:"clinicId,omitempty"`
}
