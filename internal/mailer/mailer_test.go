package mailer

import (
	"bytes"
	"testing"

	"github.com/bwise1/upzunction/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPSender(t *testing.T) {
	_, err := NewSMTPSender(&config.Config{SMTPPort: 587})
	assert.Error(t, err)

	_, err = NewSMTPSender(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587})
	assert.Error(t, err)

	s, err := NewSMTPSender(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "board@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "board@example.com", s.from)
}

func TestMessageHeaders(t *testing.T) {
	s, err := NewSMTPSender(&config.Config{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		SMTPUser: "user",
		SMTPFrom: "noreply@example.com",
	})
	require.NoError(t, err)

	m, err := s.message(RegistrationSubject, "hello", "asha@example.com")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "From: noreply@example.com")
	assert.Contains(t, raw, "To: asha@example.com")
	assert.Contains(t, raw, "Subject: Verify your email for upzunction")

	_, err = s.message("subject", "body")
	assert.Error(t, err)
}

func TestOTPBodies(t *testing.T) {
	body, err := RegistrationBody(OTPMail{Username: "asha", OTP: "123456", Minutes: 10})
	require.NoError(t, err)
	assert.Contains(t, body, "Hello asha")
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "10 minutes")

	body, err = PasswordResetBody(OTPMail{Username: "asha", OTP: "654321", Minutes: 5})
	require.NoError(t, err)
	assert.Contains(t, body, "654321")
	assert.Contains(t, body, "5 minutes")
}
