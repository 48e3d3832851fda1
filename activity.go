package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess   ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure   ActivityEventType = "auth.login.failure"
	ActivityEventTokenGenerated ActivityEventType = "auth.token.generated"
	ActivityEventTokenFailure   ActivityEventType = "auth.token.failure"
	ActivityEventUserRegistered ActivityEventType = "auth.user.registered"
	ActivityEventCodeIssued     ActivityEventType = "auth.code.issued"
	ActivityEventPersonCreated  ActivityEventType = "person.created"
	ActivityEventPersonUpdated  ActivityEventType = "person.updated"
	ActivityEventPersonDeleted  ActivityEventType = "person.deleted"
)

// ActorRef identifies who triggered an event.
type ActorRef struct {
	ID   string
	Type string
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	UserID     int64
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// NewLoggerActivitySink writes every event to logger at info level.
func NewLoggerActivitySink(logger Logger) ActivitySink {
	logger = normalizeLogger(logger)
	return ActivitySinkFunc(func(_ context.Context, event ActivityEvent) error {
		args := []any{
			"event", string(event.EventType),
			"actor_type", event.Actor.Type,
			"actor_id", event.Actor.ID,
			"user_id", event.UserID,
			"occurred_at", event.OccurredAt,
		}
		for k, v := range event.Metadata {
			args = append(args, k, v)
		}
		logger.Info("activity", args...)
		return nil
	})
}

// MultiActivitySink fans events out to every sink and returns the
// first error.
func MultiActivitySink(sinks ...ActivitySink) ActivitySink {
	return ActivitySinkFunc(func(ctx context.Context, event ActivityEvent) error {
		var first error
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.Record(ctx, event); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}

func actorFromClaims(claims AuthClaims) ActorRef {
	if claims == nil {
		return ActorRef{Type: "unknown"}
	}
	return ActorRef{ID: claims.Subject(), Type: claims.Kind()}
}
