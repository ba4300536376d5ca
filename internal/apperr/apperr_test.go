package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("approving: %w", State("message already approved"))

	assert.ErrorIs(t, err, ErrState)
	assert.NotErrorIs(t, err, ErrPermission)
	assert.Equal(t, "message already approved", Message(err, "fallback"))
}

func TestTransientKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Transient("could not send email", cause)

	assert.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, "fallback", Message(errors.New("boom"), "fallback"))
}
