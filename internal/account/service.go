package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwise1/upzunction/internal/apperr"
	"github.com/bwise1/upzunction/internal/logger"
	"github.com/bwise1/upzunction/internal/mailer"
	"github.com/bwise1/upzunction/internal/model"
	"github.com/bwise1/upzunction/util"
	"github.com/google/uuid"
	"github.com/lucsky/cuid"
)

const (
	RegistrationOTPLifetime  = 10 * time.Minute
	PasswordResetOTPLifetime = 5 * time.Minute

	// Sessions outlive their OTP so an expired code is reported as expired rather than unknown.
	sessionGrace = 30 * time.Minute
)

type Service struct {
	users    UserRepository
	profiles ProfileRepository
	tx       Transactor
	sessions SessionStore
	mail     mailer.Sender
	logger   *logger.Logger

	Now         func() time.Time
	GenerateOTP func() (string, error)
}

type Config struct {
	Users    UserRepository
	Profiles ProfileRepository
	Tx       Transactor
	Sessions SessionStore
	Mail     mailer.Sender
	Logger   *logger.Logger
}

func NewService(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &Service{
		users:       cfg.Users,
		profiles:    cfg.Profiles,
		tx:          cfg.Tx,
		sessions:    cfg.Sessions,
		mail:        cfg.Mail,
		logger:      cfg.Logger,
		Now:         time.Now,
		GenerateOTP: util.GenerateOTP,
	}
}

// RequestRegistration reserves nothing: it checks the identity is free, mails an
// OTP and returns the session the client must confirm it against.
func (s *Service) RequestRegistration(ctx context.Context, req model.RegisterRequest) (*model.OTPSessionResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if err := validateIdentity(username, email); err != nil {
		return nil, err
	}
	if err := s.checkIdentityFree(ctx, username, email, uuid.Nil); err != nil {
		return nil, err
	}

	otp, err := s.GenerateOTP()
	if err != nil {
		return nil, err
	}
	sessionID := cuid.New()
	key := registrationKeyPrefix + sessionID
	session := RegistrationSession{
		PendingUsername: username,
		PendingEmail:    email,
		OTP:             otp,
		OTPExpiresAt:    s.Now().Add(RegistrationOTPLifetime),
	}
	if err := s.sessions.Save(ctx, key, session, RegistrationOTPLifetime+sessionGrace); err != nil {
		return nil, apperr.Transient("could not start registration", err)
	}

	body, err := mailer.RegistrationBody(mailer.OTPMail{Username: username, OTP: otp, Minutes: int(RegistrationOTPLifetime.Minutes())})
	if err != nil {
		return nil, err
	}
	if err := s.mail.Send(ctx, mailer.RegistrationSubject, body, email); err != nil {
		s.logger.Error("failed to send registration otp", "email", email, "error", err)
		_ = s.sessions.Delete(ctx, key)
		return nil, apperr.Transient("could not send the verification email, please try again", err)
	}

	s.logger.Info("registration otp sent", "session_id", sessionID)
	return &model.OTPSessionResponse{SessionID: sessionID, Email: email}, nil
}

// CompleteRegistration checks the OTP and password and creates the user with an empty profile.
func (s *Service) CompleteRegistration(ctx context.Context, req model.RegisterVerifyRequest) (*model.User, error) {
	key := registrationKeyPrefix + req.SessionID
	var session RegistrationSession
	if err := s.sessions.Load(ctx, key, &session); err != nil {
		if errors.Is(err, apperr.ErrRecordNotFound) {
			return nil, apperr.NotFound("Your registration session has expired. Please start over.")
		}
		return nil, apperr.Transient("could not load registration", err)
	}

	if s.Now().After(session.OTPExpiresAt) {
		_ = s.sessions.Delete(ctx, key)
		return nil, apperr.State("OTP has expired. Please request a new one.")
	}
	if strings.TrimSpace(req.OTP) != session.OTP {
		return nil, apperr.Validation("Invalid OTP. Please try again.")
	}
	if req.Password != req.Password2 {
		return nil, apperr.Validation("Passwords do not match.")
	}
	if err := ValidatePassword(req.Password, session.PendingUsername, session.PendingEmail); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:           uuid.New(),
		Username:     session.PendingUsername,
		Email:        session.PendingEmail,
		PasswordHash: hash,
		IsActive:     true,
		DateJoined:   s.Now().UTC(),
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.checkIdentityFree(ctx, user.Username, user.Email, uuid.Nil); err != nil {
			return err
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		if err := s.profiles.UpsertProfile(ctx, &model.Profile{UserID: user.ID}); err != nil {
			return fmt.Errorf("creating profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to drop registration session", "session_id", req.SessionID, "error", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*model.OTPSessionResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperr.ErrRecordNotFound) {
			return nil, apperr.NotFound("No user found with that email address.")
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}

	otp, err := s.GenerateOTP()
	if err != nil {
		return nil, err
	}
	sessionID := cuid.New()
	key := resetKeyPrefix + sessionID
	session := ResetSession{
		Email:        user.Email,
		OTP:          otp,
		OTPExpiresAt: s.Now().Add(PasswordResetOTPLifetime),
	}
	if err := s.sessions.Save(ctx, key, session, PasswordResetOTPLifetime+sessionGrace); err != nil {
		return nil, apperr.Transient("could not start password reset", err)
	}

	body, err := mailer.PasswordResetBody(mailer.OTPMail{Username: user.Username, OTP: otp, Minutes: int(PasswordResetOTPLifetime.Minutes())})
	if err != nil {
		return nil, err
	}
	if err := s.mail.Send(ctx, mailer.PasswordResetSubject, body, user.Email); err != nil {
		s.logger.Error("failed to send password reset otp", "user_id", user.ID, "error", err)
		_ = s.sessions.Delete(ctx, key)
		return nil, apperr.Transient("could not send the reset email, please try again", err)
	}

	return &model.OTPSessionResponse{SessionID: sessionID, Email: user.Email}, nil
}

func (s *Service) VerifyPasswordReset(ctx context.Context, sessionID, otp string) error {
	key := resetKeyPrefix + sessionID
	session, err := s.resetSession(ctx, key)
	if err != nil {
		return err
	}
	if s.Now().After(session.OTPExpiresAt) {
		_ = s.sessions.Delete(ctx, key)
		return apperr.State("OTP has expired. Please request a new one.")
	}
	if strings.TrimSpace(otp) != session.OTP {
		return apperr.Validation("Invalid OTP. Please try again.")
	}

	session.Verified = true
	if err := s.sessions.Save(ctx, key, session, PasswordResetOTPLifetime+sessionGrace); err != nil {
		return apperr.Transient("could not verify OTP", err)
	}
	return nil
}

func (s *Service) CompletePasswordReset(ctx context.Context, sessionID, password, password2 string) error {
	key := resetKeyPrefix + sessionID
	session, err := s.resetSession(ctx, key)
	if err != nil {
		return err
	}
	if !session.Verified {
		return apperr.State("Please verify your OTP first.")
	}

	user, err := s.users.GetUserByEmail(ctx, session.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrRecordNotFound) {
			_ = s.sessions.Delete(ctx, key)
			return apperr.NotFound("No user found with that email address.")
		}
		return fmt.Errorf("fetching user: %w", err)
	}
	if password != password2 {
		return apperr.Validation("Passwords do not match.")
	}
	if err := ValidatePassword(password, user.Username, user.Email); err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	if err := s.sessions.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to drop reset session", "session_id", sessionID, "error", err)
	}
	s.logger.Info("password reset", "user_id", user.ID)
	return nil
}

// Authenticate accepts a username or an email address. Inactive users cannot log in.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.users.GetUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, apperr.ErrRecordNotFound) {
			return nil, apperr.Unauthenticated("Please enter a correct username and password.")
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) || !user.IsActive {
		return nil, apperr.Unauthenticated("Please enter a correct username and password.")
	}
	return user, nil
}

// ActiveUser returns the user behind an access token. Blocked or deleted users are rejected.
func (s *Service) ActiveUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.user(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Unauthenticated("this account has been disabled")
	}
	return user, nil
}

// GetProfile returns the user with their profile, creating an empty profile when missing.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.ProfileResponse, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperr.ErrRecordNotFound) {
			return nil, fmt.Errorf("fetching profile: %w", err)
		}
		profile = &model.Profile{UserID: userID}
		if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("creating profile: %w", err)
		}
	}
	return &model.ProfileResponse{User: *user, Profile: *profile}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.ProfileResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if err := validateIdentity(username, email); err != nil {
		return nil, err
	}
	phone := util.TrimmedPtr(req.PhoneNumber)
	if phone != nil && !util.IsPhone(*phone) {
		return nil, apperr.Validation("phone number is invalid")
	}

	var resp *model.ProfileResponse
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.user(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.checkIdentityFree(ctx, username, email, userID); err != nil {
			return err
		}
		if err := s.users.UpdateUserIdentity(ctx, userID, username, email); err != nil {
			return fmt.Errorf("updating user: %w", err)
		}
		profile := &model.Profile{UserID: userID, PhoneNumber: phone}
		if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
			return fmt.Errorf("updating profile: %w", err)
		}
		user.Username = username
		user.Email = email
		resp = &model.ProfileResponse{User: *user, Profile: *profile}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) user(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return user, nil
}

func (s *Service) resetSession(ctx context.Context, key string) (*ResetSession, error) {
	var session ResetSession
	if err := s.sessions.Load(ctx, key, &session); err != nil {
		if errors.Is(err, apperr.ErrRecordNotFound) {
			return nil, apperr.NotFound("Your reset session has expired. Please start over.")
		}
		return nil, apperr.Transient("could not load reset session", err)
	}
	return &session, nil
}

func (s *Service) checkIdentityFree(ctx context.Context, username, email string, except uuid.UUID) error {
	taken, err := s.users.UsernameTaken(ctx, username, except)
	if err != nil {
		return fmt.Errorf("checking username: %w", err)
	}
	if taken {
		return apperr.Conflict("This username is already taken. Please choose another.")
	}
	taken, err = s.users.EmailTaken(ctx, email, except)
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if taken {
		return apperr.Conflict("An account with this email already exists.")
	}
	return nil
}

func validateIdentity(username, email string) error {
	if username == "" || len(username) > 150 || !util.RgxUsername.MatchString(username) {
		return apperr.Validation("Enter a valid username. It may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if !util.IsEmail(email) || util.ValidEmail(email) != nil {
		return apperr.Validation("Enter a valid email address.")
	}
	return nil
}
