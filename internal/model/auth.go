package model

import "github.com/google/uuid"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,email"`
}

type RegisterVerifyRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	OTP       string `json:"otp" validate:"required,len=6,numeric"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetOTPRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	OTP       string `json:"otp" validate:"required,len=6,numeric"`
}

type PasswordResetNewRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

// OTPSessionResponse hands the client the id it must echo back on the next step.
type OTPSessionResponse struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
}

type LoginUserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type LoginResponse struct {
	User  *LoginUserResponse `json:"user"`
	Token string             `json:"token"`
}
