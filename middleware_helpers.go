package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-person-auth/middleware/jwtware"
)

// ContextEnricherAdapter stores validated claims in the standard
// context so services reached through c.UserContext() can read them.
func ContextEnricherAdapter(ctx context.Context, claims any) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return ctx
	}
	return WithClaimsContext(ctx, authClaims)
}

// RequireKnownPrincipal rejects tokens that verify but do not name a
// user or a person, or carry a role outside the known set.
func RequireKnownPrincipal(_ *fiber.Ctx, claims any) error {
	authClaims, ok := claims.(AuthClaims)
	if !ok || authClaims == nil {
		return ErrTokenMalformed
	}
	switch authClaims.Kind() {
	case KindUser, KindPerson:
	default:
		return ErrTokenMalformed.WithMetadata(map[string]any{"kind": authClaims.Kind()})
	}
	if !UserRole(authClaims.Role()).IsValid() {
		return ErrTokenMalformed.WithMetadata(map[string]any{"role": authClaims.Role()})
	}
	return nil
}

// RegisterValidationListeners appends listeners to a jwtware.Config.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...jwtware.ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}
