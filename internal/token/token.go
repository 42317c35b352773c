package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validation failures, ordered by the check that produced them. Handlers map
// all of these to 401 but keep the distinct detail messages.
var (
	ErrEmptyToken    = errors.New("no authentication token provided")
	ErrRevoked       = errors.New("token has been invalidated")
	ErrMalformed     = errors.New("invalid token format")
	ErrExpired       = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// Issuer creates signed access and refresh tokens. Issuance is a pure function
// of the user ID, the current time, and the signing secret; nothing is persisted.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer creates an Issuer signing with HS256.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccess creates a short-lived access token for the given user.
func (i *Issuer) IssueAccess(userID string) (string, error) {
	return i.sign(userID, i.accessTTL)
}

// IssueRefresh creates a longer-lived refresh token for the given user.
func (i *Issuer) IssueRefresh(userID string) (string, error) {
	return i.sign(userID, i.refreshTTL)
}

func (i *Issuer) sign(userID string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Validator checks bearer tokens before any protected request is trusted.
type Validator struct {
	secret     []byte
	revocation RevocationStore
}

// NewValidator creates a Validator that consults the given revocation store.
func NewValidator(secret string, revocation RevocationStore) *Validator {
	return &Validator{secret: []byte(secret), revocation: revocation}
}

// Validate runs the checks in a fixed order: empty token, revocation list,
// signature and expiry, then subject extraction. The revocation check comes
// before signature verification so an expired-but-revoked token still reports
// "invalidated", consistent with tokens revoked proactively at logout.
// The caller resolves the returned subject against the credential store.
func (v *Validator) Validate(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	revoked, err := v.revocation.IsRevoked(ctx, tokenString)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrRevoked
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrMalformed
	}

	if claims.Subject == "" {
		return "", ErrInvalidClaims
	}
	return claims.Subject, nil
}
