package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var (
	RgxEmail = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
	RgxPhone = regexp.MustCompile(`^\+?[0-9][0-9 \-]*$`)
	// Django's username charset.
	RgxUsername = regexp.MustCompile(`^[\w.@+-]+$`)
)

// MaxPhoneLength is the longest phone or whatsapp number a listing, message or profile may carry.
const MaxPhoneLength = 15

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

func IsEmail(value string) bool {
	if len(value) > 254 {
		return false
	}

	return RgxEmail.MatchString(value)
}

// IsPhone reports whether value looks like a phone number short enough to store.
func IsPhone(value string) bool {
	return len(value) <= MaxPhoneLength && RgxPhone.MatchString(value)
}

// GenerateOTP returns a six digit numeric one-time code in the range 100000-999999.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// TrimmedPtr returns nil for nil or blank input and a pointer to the trimmed value otherwise.
func TrimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}

// Int64Ptr returns a pointer to the given integer.
func Int64Ptr(i int64) *int64 {
	return &i
}
