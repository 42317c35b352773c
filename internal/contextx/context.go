package contextx

// Key is a private type to avoid collisions in request context keys.
type Key string

// UserIDKey is the context key used to store the authenticated user's ID (string).
const UserIDKey Key = "userID"

// BearerTokenKey is the context key used to store the raw bearer token that
// authenticated the current request. Logout needs it to revoke the token.
const BearerTokenKey Key = "bearerToken"

// UserKey is the context key under which the auth middleware stores the full
// authenticated user record, so handlers avoid a second lookup.
const UserKey Key = "user"
