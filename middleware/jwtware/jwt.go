// Package jwtware is a fiber middleware that extracts a bearer token,
// validates it and stores the resulting claims for downstream handlers.
package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	defaultTokenLookup = "header:" + fiber.HeaderAuthorization

	// ErrJWTMissingOrMalformed is returned when no token could be extracted.
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// ValidateFunc validates a raw token and returns the decoded claims.
// The claims type belongs to the caller, which keeps this package free
// of any dependency on a specific claims implementation.
type ValidateFunc func(tokenString string) (any, error)

// ValidationListener is invoked after a token has been validated.
type ValidationListener func(c *fiber.Ctx, claims any) error

type Config struct {
	// Filter skips the middleware when it returns true.
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler
	ContextKey     string
	// TokenLookup is a comma separated list of source:name pairs, e.g.
	// "header:Authorization,query:token,cookie:jwt".
	TokenLookup string
	AuthScheme  string
	// Validate is required.
	Validate ValidateFunc

	// ContextEnricher propagates claims to the request's standard context.
	ContextEnricher func(ctx context.Context, claims any) context.Context

	ValidationListeners []ValidationListener
}

func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if err := cfg.runValidationListeners(c, claims); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return cfg.SuccessHandler(c)
	}
}

// ExtractRawToken tries extractors in order and returns the first token found.
func ExtractRawToken(c *fiber.Ctx, extractors []JWTExtractor) (string, error) {
	err := ErrJWTMissingOrMalformed
	for _, extractor := range extractors {
		raw, e := extractor(c)
		if raw != "" && e == nil {
			return raw, nil
		}
		if e != nil {
			err = e
		}
	}
	return "", err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.Validate == nil {
		panic("AUTH: JWT middleware configuration: Validate is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// DefaultErrorHandler answers 401 when no token was presented and 403
// when a token was presented but rejected.
func DefaultErrorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrJWTMissingOrMalformed) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
	}
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid token"})
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(c *fiber.Ctx, claims any) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(c, claims); err != nil {
			return err
		}
	}
	return nil
}

type JWTExtractor func(c *fiber.Ctx) (string, error)

func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 && authSchemes[0] != "" {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}
		source, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

		switch source {
		case "header":
			extractors = append(extractors, jwtFromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(name))
		case "param":
			extractors = append(extractors, jwtFromParam(name))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(name))
		}
	}

	return extractors
}

// jwtFromHeader returns a function that extracts token from the request header.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	authScheme = strings.TrimSpace(authScheme)
	l := len(authScheme)
	return func(c *fiber.Ctx) (string, error) {
		a := strings.TrimSpace(c.Get(header))
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			if token := strings.TrimSpace(a[l+1:]); token != "" {
				return token, nil
			}
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromParam returns a function that extracts token from the url param string.
func jwtFromParam(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Params(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
