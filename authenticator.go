package auth

import (
	"context"
	"reflect"
	"strconv"
	"time"
)

type Auther struct {
	provider       IdentityProvider
	personVerifier PersonVerifier
	logger         Logger
	tokenService   TokenService
	activitySink   ActivitySink
	now            Clock
}

// NewAuthenticator returns a new Authenticator. persons may be nil when
// the generate-token flow is not used.
func NewAuthenticator(provider IdentityProvider, persons PersonVerifier, opts Config) *Auther {
	return &Auther{
		provider:       provider,
		personVerifier: persons,
		logger:         defaultLogger(),
		tokenService:   NewTokenService([]byte(opts.GetSigningKey()), opts.GetIssuer()),
		activitySink:   noopActivitySink{},
		now:            time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	return s
}

// WithTokenService replaces the token service, e.g. to inject a clock.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithClock sets the clock used to stamp activity events.
func (s *Auther) WithClock(now Clock) *Auther {
	if now != nil {
		s.now = now
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies username/password credentials and issues a token.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenResult, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Warn("login verify identity error", "identifier", identifier, "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, 0, map[string]any{
			"identifier": identifier,
			"reason":     textCode(err),
		})
		return nil, err
	}

	if isZeroIdentity(identity) {
		s.logger.Error("login identity is nil or zero value")
		return nil, ErrIdentityNotFound
	}

	res, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("login failed to generate token", "error", err)
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, actorFromIdentity(identity), identity.ID(), map[string]any{
		"identifier": identifier,
	})

	return res, nil
}

// GenerateToken verifies a person by id, first name and password and
// issues a token for it.
func (s *Auther) GenerateToken(ctx context.Context, rawID, vorname, password string) (*TokenResult, error) {
	if s.personVerifier == nil {
		return nil, NewError("person verification is not configured", CategoryInternal)
	}

	identity, err := s.personVerifier.VerifyPerson(ctx, rawID, vorname, password)
	if err != nil {
		s.logger.Warn("generate token verify person error", "id", rawID, "error", err)
		s.emitAuthEvent(ctx, ActivityEventTokenFailure, ActorRef{Type: "unknown"}, 0, map[string]any{
			"id":     rawID,
			"reason": textCode(err),
		})
		return nil, err
	}

	if isZeroIdentity(identity) {
		return nil, ErrIdentityNotFound
	}

	res, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("generate token failed to sign", "error", err)
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventTokenGenerated, actorFromIdentity(identity), identity.ID(), nil)

	return res, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID int64, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actor,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: s.now(),
	}
	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("failed to record activity event", "event", eventType, "error", err)
	}
}

func actorFromIdentity(identity Identity) ActorRef {
	return ActorRef{
		ID:   strconv.FormatInt(identity.ID(), 10),
		Type: identity.Kind(),
	}
}

func isZeroIdentity(identity Identity) bool {
	return identity == nil || reflect.ValueOf(identity).IsZero()
}

func textCode(err error) string {
	if e, ok := AsError(err); ok && e.TextCode != "" {
		return e.TextCode
	}
	return "UNKNOWN"
}

var _ Authenticator = (*Auther)(nil)
