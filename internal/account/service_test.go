package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/bwise1/upzunction/internal/account"
	"github.com/bwise1/upzunction/internal/apperr"
	"github.com/bwise1/upzunction/internal/model"
	"github.com/bwise1/upzunction/internal/repository/memory"
	"github.com/bwise1/upzunction/util"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, subject, body string, to ...string) error {
	args := m.Called(ctx, subject, body, to)
	return args.Error(0)
}

type AccountSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	sessions *account.MemorySessionStore
	mail     *mockSender
	service  *account.Service
	now      time.Time
}

func TestAccountSuite(t *testing.T) {
	suite.Run(t, new(AccountSuite))
}

func (s *AccountSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.sessions = account.NewMemorySessionStore()
	s.mail = new(mockSender)
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	s.service = account.NewService(account.Config{
		Users:    s.store,
		Profiles: s.store,
		Tx:       s.store,
		Sessions: s.sessions,
		Mail:     s.mail,
	})
	s.service.Now = func() time.Time { return s.now }
	s.service.GenerateOTP = func() (string, error) { return "123456", nil }
	s.sessions.Now = func() time.Time { return s.now }
}

func (s *AccountSuite) register(username, email, password string) *model.User {
	s.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, []string{email}).Return(nil).Once()
	sess, err := s.service.RequestRegistration(s.ctx, model.RegisterRequest{Username: username, Email: email})
	s.Require().NoError(err)
	user, err := s.service.CompleteRegistration(s.ctx, model.RegisterVerifyRequest{
		SessionID: sess.SessionID,
		OTP:       "123456",
		Password:  password,
		Password2: password,
	})
	s.Require().NoError(err)
	return user
}

func (s *AccountSuite) TestRegistrationCreatesUserAndProfile() {
	user := s.register("asha", "asha@example.com", "bright-lantern-42")

	s.True(user.IsActive)
	s.NotEqual("bright-lantern-42", user.PasswordHash)

	profile, err := s.store.GetProfile(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Nil(profile.PhoneNumber)

	logged, err := s.service.Authenticate(s.ctx, "ASHA@example.com", "bright-lantern-42")
	s.Require().NoError(err)
	s.Equal(user.ID, logged.ID)
	s.mail.AssertExpectations(s.T())
}

func (s *AccountSuite) TestRegistrationRejections() {
	s.register("asha", "asha@example.com", "bright-lantern-42")

	s.Run("username taken", func() {
		_, err := s.service.RequestRegistration(s.ctx, model.RegisterRequest{Username: "Asha", Email: "other@example.com"})
		s.ErrorIs(err, apperr.ErrConflict)
	})

	s.Run("email taken", func() {
		_, err := s.service.RequestRegistration(s.ctx, model.RegisterRequest{Username: "ravi", Email: "asha@example.com"})
		s.ErrorIs(err, apperr.ErrConflict)
	})

	s.Run("bad username", func() {
		_, err := s.service.RequestRegistration(s.ctx, model.RegisterRequest{Username: "no spaces", Email: "ravi@example.com"})
		s.ErrorIs(err, apperr.ErrValidation)
	})

	s.Run("malformed email", func() {
		_, err := s.service.RequestRegistration(s.ctx, model.RegisterRequest{Username: "ravi", Email: "ravi.@example.com"})
		s.ErrorIs(err, apperr.ErrValidation)
	})

	s.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, []string{"ravi@example.com"}).Return(nil)
	sess, err := s.service.RequestRegistration(s.ctx, model.RegisterRequest{Username: "ravi", Email: "ravi@example.com"})
	s.Require().NoError(err)

	s.Run("wrong otp", func() {
		_, err := s.service.CompleteRegistration(s.ctx, model.RegisterVerifyRequest{
			SessionID: sess.SessionID, OTP: "000000", Password: "bright-lantern-42", Password2: "bright-lantern-42",
		})
		s.ErrorIs(err, apperr.ErrValidation)
	})

	s.Run("password mismatch", func() {
		_, err := s.service.CompleteRegistration(s.ctx, model.RegisterVerifyRequest{
			SessionID: sess.SessionID, OTP: "123456", Password: "bright-lantern-42", Password2: "bright-lantern-43",
		})
		s.ErrorIs(err, apperr.ErrValidation)
	})

	s.Run("weak password", func() {
		_, err := s.service.CompleteRegistration(s.ctx, model.RegisterVerifyRequest{
			SessionID: sess.SessionID, OTP: "123456", Password: "12345678", Password2: "12345678",
		})
		s.ErrorIs(err, apperr.ErrValidation)
	})

	s.Run("expired otp drops the session", func() {
		s.now = s.now.Add(account.RegistrationOTPLifetime + time.Second)
		_, err := s.service.CompleteRegistration(s.ctx, model.RegisterVerifyRequest{
			SessionID: sess.SessionID, OTP: "123456", Password: "bright-lantern-42", Password2: "bright-lantern-42",
		})
		s.ErrorIs(err, apperr.ErrState)

		_, err = s.service.CompleteRegistration(s.ctx, model.RegisterVerifyRequest{
			SessionID: sess.SessionID, OTP: "123456", Password: "bright-lantern-42", Password2: "bright-lantern-42",
		})
		s.ErrorIs(err, apperr.ErrNotFound)
	})
}

func (s *AccountSuite) TestMailFailureIsTransient() {
	s.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := s.service.RequestRegistration(s.ctx, model.RegisterRequest{Username: "asha", Email: "asha@example.com"})
	s.ErrorIs(err, apperr.ErrTransient)
}

func (s *AccountSuite) TestPasswordReset() {
	user := s.register("asha", "asha@example.com", "bright-lantern-42")

	_, err := s.service.RequestPasswordReset(s.ctx, "nobody@example.com")
	s.ErrorIs(err, apperr.ErrNotFound)

	s.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, []string{"asha@example.com"}).Return(nil).Once()
	sess, err := s.service.RequestPasswordReset(s.ctx, "asha@example.com")
	s.Require().NoError(err)

	err = s.service.CompletePasswordReset(s.ctx, sess.SessionID, "quiet-harbor-77", "quiet-harbor-77")
	s.ErrorIs(err, apperr.ErrState)

	s.ErrorIs(s.service.VerifyPasswordReset(s.ctx, sess.SessionID, "999999"), apperr.ErrValidation)
	s.Require().NoError(s.service.VerifyPasswordReset(s.ctx, sess.SessionID, "123456"))

	err = s.service.CompletePasswordReset(s.ctx, sess.SessionID, "quiet-harbor-77", "quiet-harbor-78")
	s.ErrorIs(err, apperr.ErrValidation)

	s.Require().NoError(s.service.CompletePasswordReset(s.ctx, sess.SessionID, "quiet-harbor-77", "quiet-harbor-77"))

	_, err = s.service.Authenticate(s.ctx, "asha", "bright-lantern-42")
	s.ErrorIs(err, apperr.ErrUnauthenticated)
	logged, err := s.service.Authenticate(s.ctx, "asha", "quiet-harbor-77")
	s.Require().NoError(err)
	s.Equal(user.ID, logged.ID)

	err = s.service.CompletePasswordReset(s.ctx, sess.SessionID, "quiet-harbor-77", "quiet-harbor-77")
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *AccountSuite) TestPasswordResetOTPExpires() {
	s.register("asha", "asha@example.com", "bright-lantern-42")
	s.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sess, err := s.service.RequestPasswordReset(s.ctx, "asha@example.com")
	s.Require().NoError(err)

	s.now = s.now.Add(account.PasswordResetOTPLifetime + time.Second)
	s.ErrorIs(s.service.VerifyPasswordReset(s.ctx, sess.SessionID, "123456"), apperr.ErrState)
}

func (s *AccountSuite) TestBlockedUserCannotLogIn() {
	user := s.register("asha", "asha@example.com", "bright-lantern-42")
	s.store.SetUserActive(user.ID, false)

	_, err := s.service.Authenticate(s.ctx, "asha", "bright-lantern-42")
	s.ErrorIs(err, apperr.ErrUnauthenticated)
}

func (s *AccountSuite) TestProfile() {
	user := s.register("asha", "asha@example.com", "bright-lantern-42")
	s.register("ravi", "ravi@example.com", "bright-lantern-42")

	got, err := s.service.GetProfile(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("asha", got.User.Username)

	updated, err := s.service.UpdateProfile(s.ctx, user.ID, model.UpdateProfileRequest{
		Username:    "asha.k",
		Email:       "asha.k@example.com",
		PhoneNumber: util.StringPtr("8877665544"),
	})
	s.Require().NoError(err)
	s.Equal("asha.k", updated.User.Username)
	s.Equal("8877665544", *updated.Profile.PhoneNumber)

	_, err = s.service.UpdateProfile(s.ctx, user.ID, model.UpdateProfileRequest{Username: "RAVI", Email: "asha.k@example.com"})
	s.ErrorIs(err, apperr.ErrConflict)

	_, err = s.service.GetProfile(s.ctx, uuid.New())
	s.ErrorIs(err, apperr.ErrNotFound)
}
