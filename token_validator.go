package auth

import "strings"

// DefaultAuthScheme is the scheme expected in the Authorization header.
const DefaultAuthScheme = "Bearer"

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// BearerToken extracts the token from an Authorization header value of
// the form "<scheme> <token>". A missing header, a different scheme or
// an empty token segment yield ErrMissingToken.
func BearerToken(header, scheme string) (string, error) {
	if scheme == "" {
		scheme = DefaultAuthScheme
	}

	header = strings.TrimSpace(header)
	l := len(scheme)
	if len(header) <= l+1 || !strings.EqualFold(header[:l], scheme) || header[l] != ' ' {
		return "", ErrMissingToken
	}

	token := strings.TrimSpace(header[l+1:])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// ValidateHeader runs BearerToken and then validator on the result.
// Missing credentials map to 401, bad tokens to 403.
func ValidateHeader(validator TokenValidator, header, scheme string) (AuthClaims, error) {
	token, err := BearerToken(header, scheme)
	if err != nil {
		return nil, err
	}
	return validator.Validate(token)
}
