// Package account handles identity: OTP-verified registration, password reset,
// login by username or email, and the user profile.
package account

import (
	"context"

	"github.com/bwise1/upzunction/internal/model"
	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetUserByLogin matches login case-insensitively against username, then email.
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UsernameTaken and EmailTaken compare case-insensitively and ignore the user except.
	UsernameTaken(ctx context.Context, username string, except uuid.UUID) (bool, error)
	EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error)
	UpdateUserIdentity(ctx context.Context, id uuid.UUID, username, email string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	// UpsertProfile creates the profile or replaces its phone number.
	UpsertProfile(ctx context.Context, profile *model.Profile) error
}

type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
