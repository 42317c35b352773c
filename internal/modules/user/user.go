package user

import "time"

// Roles assignable to an account. New signups always start as RoleUser.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the canonical account record. PasswordHash is nil for accounts
// created through a social provider that never set a password.
type User struct {
	ID                   string     `db:"id" json:"id"`
	Name                 string     `db:"name" json:"name"`
	Username             string     `db:"username" json:"username"`
	Email                string     `db:"email" json:"email"`
	Phone                *string    `db:"phone" json:"phone,omitempty"`
	PasswordHash         *string    `db:"password_hash" json:"-"`
	ProfileImage         *string    `db:"profile_image" json:"profile_image,omitempty"`
	NameAvatar           string     `db:"name_avatar" json:"name_avatar"`
	Role                 string     `db:"role" json:"role"`
	IsActive             bool       `db:"is_active" json:"is_active"`
	IsVerified           bool       `db:"is_verified" json:"is_verified"`
	VerificationToken    *string    `db:"verification_token" json:"-"`
	VerificationSentAt   *time.Time `db:"verification_sent_at" json:"-"`
	PasswordResetToken   *string    `db:"password_reset_token" json:"-"`
	PasswordResetExpires *time.Time `db:"password_reset_expires" json:"-"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// SocialAccount links a user to an external identity provider. The pair
// (provider, provider_user_id) is unique across all users.
type SocialAccount struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Provider       string    `db:"provider" json:"provider"`
	ProviderUserID string    `db:"provider_user_id" json:"provider_user_id"`
	Email          string    `db:"email" json:"email"`
	Name           string    `db:"name" json:"name"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Supported social providers.
const (
	ProviderGoogle   = "google"
	ProviderLinkedIn = "linkedin"
)

// VerificationRecord is an audit row kept for every verification token ever
// issued. It lets the verify endpoint distinguish a token that was already
// consumed from one that never existed, after the live token on the user row
// has been cleared.
type VerificationRecord struct {
	ID         string     `db:"id"`
	Token      string     `db:"token"`
	UserID     string     `db:"user_id"`
	Verified   bool       `db:"verified"`
	CreatedAt  time.Time  `db:"created_at"`
	VerifiedAt *time.Time `db:"verified_at"`
}

// AuthTokens is the credential pair returned by login-family operations.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// SocialProfile is the normalized identity returned by a provider exchange.
type SocialProfile struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
}
