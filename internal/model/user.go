package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	DateJoined   time.Time `json:"date_joined"`
}

// Profile is the one-to-one extension of a User holding contact details.
type Profile struct {
	UserID      uuid.UUID `json:"user_id"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
}

type ProfileResponse struct {
	User    User    `json:"user"`
	Profile Profile `json:"profile"`
}

type UpdateProfileRequest struct {
	Username    string  `json:"username" validate:"required,max=150,username"`
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,phone"`
}
