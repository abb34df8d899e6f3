package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is an account that can sign in: a marketplace admin or a clinic
// panel user bound to its clinic.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	ClinicID     *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateParams registers a user. ClinicID is required for the clinic role.
type CreateParams struct {
	Email        string
	PasswordHash string
	Role         string
	ClinicID     *uuid.UUID
}

// Repository is the persistence port of the auth module.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, params CreateParams) (User, error)
}
