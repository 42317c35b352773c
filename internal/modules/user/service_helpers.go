package user

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// hashPassword uses bcrypt to generate a hash from a plaintext password.
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// checkPasswordHash compares a plaintext password with a bcrypt hash. A nil or
// malformed hash simply fails the comparison rather than erroring, so accounts
// without a password behave like any wrong-password attempt.
func checkPasswordHash(password string, hash *string) bool {
	if hash == nil || *hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password)) == nil
}

// generateSecureToken creates a random, URL-safe string from n random bytes.
func generateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// newID returns a time-ordered UUID string for primary keys.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// usernameFromEmail derives a username candidate from the email local part,
// with a short random suffix to keep collisions rare.
func usernameFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	local = strings.ToLower(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, local))
	if local == "" {
		local = "user"
	}

	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err == nil {
		return fmt.Sprintf("%s_%s", local, hex.EncodeToString(suffix))
	}
	return local
}

// nameAvatar builds a one or two letter monogram from a display name.
func nameAvatar(name string) string {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "?"
	case 1:
		return strings.ToUpper(firstRune(fields[0]))
	default:
		return strings.ToUpper(firstRune(fields[0]) + firstRune(fields[len(fields)-1]))
	}
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
