package auth

import (
	"context"
	"time"
)

// Logger is the logging contract used across the package. Arguments
// after the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Clock returns the current instant. Tests inject a fixed clock.
type Clock func() time.Time

// Principal kinds carried in tokens.
const (
	KindUser   = "user"
	KindPerson = "person"
)

// Identity holds the public attributes of a verified principal.
type Identity interface {
	ID() int64
	Kind() string
	Username() string
	Email() string
	Role() string
}

// NamedIdentity is implemented by identities that carry a first
// and last name, i.e. persons.
type NamedIdentity interface {
	Identity
	Vorname() string
	Nachname() string
}

// IdentityProvider verifies username/password credentials.
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
}

// PersonVerifier verifies the id, first name and password triple
// used to mint person tokens.
type PersonVerifier interface {
	VerifyPerson(ctx context.Context, rawID, vorname, password string) (Identity, error)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*TokenResult, error)
	GenerateToken(ctx context.Context, rawID, vorname, password string) (*TokenResult, error)
	TokenService() TokenService
}

// TokenService issues and validates signed access tokens.
type TokenService interface {
	Generate(identity Identity) (*TokenResult, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the principal decoded from a valid token.
type AuthClaims interface {
	Subject() string
	UserID() int64
	Kind() string
	Role() string
	Email() string
	Expires() time.Time
	IssuedAt() time.Time
}

// TokenResult is what a successful login or token generation returns.
type TokenResult struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Identity  Identity
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Config holds the settings the auth components need.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAuthScheme() string
	GetContextKey() string
	GetStoreTimeout() time.Duration
}
