package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims is the concrete implementation of AuthClaims. It carries
// only public attributes of the principal, never secrets.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID           int64  `json:"id"`
	PrincipalKind string `json:"kind"`
	UserName      string `json:"username,omitempty"`
	Vorname       string `json:"vorname,omitempty"`
	Nachname      string `json:"nachname,omitempty"`
	UserEmail     string `json:"email,omitempty"`
	UserRole      string `json:"role,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// NewClaims builds the claim set for identity. Times are filled in by
// the TokenService.
func NewClaims(identity Identity) *JWTClaims {
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(identity.ID(), 10),
		},
		UID:           identity.ID(),
		PrincipalKind: identity.Kind(),
		UserName:      identity.Username(),
		UserEmail:     identity.Email(),
		UserRole:      identity.Role(),
	}

	if named, ok := identity.(NamedIdentity); ok {
		claims.Vorname = named.Vorname()
		claims.Nachname = named.Nachname()
	}

	return claims
}

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the principal id
func (c *JWTClaims) UserID() int64 {
	return c.UID
}

// Kind returns whether the principal is a user or a person
func (c *JWTClaims) Kind() string {
	return c.PrincipalKind
}

// Role returns the global role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

func (c *JWTClaims) Email() string {
	return c.UserEmail
}

func (c *JWTClaims) Username() string {
	return c.UserName
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.IssuedAt.Time
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
