package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed validity window of every issued token.
const TokenTTL = time.Hour

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	issuer     string
	now        Clock
	logger     Logger
}

// TokenServiceOption configures a TokenServiceImpl.
type TokenServiceOption func(*TokenServiceImpl)

// WithClock overrides the time source used to stamp and validate tokens.
func WithClock(now Clock) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithTokenLogger sets the logger used by the token service.
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.logger = normalizeLogger(logger)
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, issuer string, opts ...TokenServiceOption) *TokenServiceImpl {
	ts := &TokenServiceImpl{
		signingKey: signingKey,
		issuer:     issuer,
		now:        time.Now,
		logger:     defaultLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}
	return ts
}

// Generate creates a JWT for identity expiring exactly TokenTTL after
// issuance.
func (ts *TokenServiceImpl) Generate(identity Identity) (*TokenResult, error) {
	if identity == nil {
		return nil, ErrIdentityNotFound
	}

	// JWT NumericDate has second precision
	now := ts.now().Truncate(time.Second)
	claims := NewClaims(identity)
	claims.Issuer = ts.issuer
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(TokenTTL))

	ensureTokenID(&claims.RegisteredClaims)

	token, err := ts.SignClaims(claims)
	if err != nil {
		return nil, err
	}

	return &TokenResult{
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(TokenTTL),
		Identity:  identity,
	}, nil
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", NewError("claims must not be nil", CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", WrapError(err, CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured
// claims. It never consults the store: a token for a deleted principal
// stays valid until it expires.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token service encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired.WithSource(err)
		}
		return nil, ErrTokenMalformed.WithSource(err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("token service could not decode claims")
	return nil, ErrTokenMalformed
}

var _ TokenService = (*TokenServiceImpl)(nil)
