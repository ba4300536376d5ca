package account

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/bwise1/upzunction/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxSimilarity     = 0.7
)

var attributeSplit = regexp.MustCompile(`\W+`)

var commonPasswords = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
		password password1 password12 password123 passw0rd 12345678 123456789 1234567890
		qwerty123 qwertyuiop 1q2w3e4r 1qaz2wsx iloveyou princess sunshine football
		baseball welcome welcome1 letmein monkey123 dragon123 superman abc12345
		abcd1234 trustno1 starwars whatever michelle jennifer computer internet
		11111111 00000000 88888888 87654321 asdfghjk zxcvbnm1 secret123 admin123
		changeme qwerty12 hello123 freedom1 shadow12 master12 football1 lucknow123
	`) {
		commonPasswords[p] = struct{}{}
	}
}

// ValidatePassword applies the password rules: minimum length, not entirely
// numeric, not a common password, and not too similar to the username or email.
func ValidatePassword(password, username, email string) error {
	var problems []string
	if len([]rune(password)) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		problems = append(problems, "This password is too common.")
	}
	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	if similarTo(password, username) {
		problems = append(problems, "The password is too similar to the username.")
	} else if similarTo(password, email) {
		problems = append(problems, "The password is too similar to the email address.")
	}

	if len(problems) > 0 {
		return apperr.Validation("Password is not strong enough: " + strings.Join(problems, " "))
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// similarTo compares the password with the attribute and each of its word parts.
func similarTo(password, attribute string) bool {
	if attribute == "" {
		return false
	}
	pw := strings.ToLower(password)
	value := strings.ToLower(attribute)
	parts := append([]string{value}, attributeSplit.Split(value, -1)...)
	for _, part := range parts {
		if part == "" || len(pw) >= 10*len(part) {
			continue
		}
		if quickRatio(pw, part) >= maxSimilarity {
			return true
		}
	}
	return false
}

// quickRatio is 2*M/T where M counts the characters the strings share as multisets.
func quickRatio(a, b string) float64 {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 1
	}
	avail := make(map[rune]int)
	for _, r := range b {
		avail[r]++
	}
	matches := 0
	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}
