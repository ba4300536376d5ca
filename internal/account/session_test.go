package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwise1/upzunction/internal/apperr"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore()
	store.Now = func() time.Time { return now }

	want := RegistrationSession{PendingUsername: "asha", PendingEmail: "asha@example.com", OTP: "123456", OTPExpiresAt: now.Add(RegistrationOTPLifetime)}
	require.NoError(t, store.Save(ctx, "otp:registration:abc", want, time.Minute))

	var got RegistrationSession
	require.NoError(t, store.Load(ctx, "otp:registration:abc", &got))
	assert.Equal(t, want, got)

	now = now.Add(time.Minute)
	assert.ErrorIs(t, store.Load(ctx, "otp:registration:abc", &got), apperr.ErrRecordNotFound)

	require.NoError(t, store.Save(ctx, "otp:reset:abc", ResetSession{Email: "asha@example.com"}, time.Minute))
	require.NoError(t, store.Delete(ctx, "otp:reset:abc"))
	var reset ResetSession
	assert.ErrorIs(t, store.Load(ctx, "otp:reset:abc", &reset), apperr.ErrRecordNotFound)
}
