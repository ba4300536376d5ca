package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"strong", "bright-lantern-42", true},
		{"too short", "ab3$", false},
		{"numeric", "9876543210", false},
		{"common", "password123", false},
		{"similar to username", "ashasharma1", false},
		{"similar to email local part", "sharma.asha", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, "ashasharma", "sharma.asha@example.com")
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("bright-lantern-42")
	assert.NoError(t, err)
	assert.True(t, CheckPassword(hash, "bright-lantern-42"))
	assert.False(t, CheckPassword(hash, "bright-lantern-43"))
}

func TestQuickRatio(t *testing.T) {
	assert.Equal(t, 1.0, quickRatio("abc", "cba"))
	assert.Equal(t, 0.0, quickRatio("abc", "xyz"))
}
