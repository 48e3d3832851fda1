package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Username   string                           `json:"username"`
	Email      string                           `json:"email"`
	Password   string                           `json:"password"`
	OnResponse func(resp *RegisterUserResponse) `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate runs before any store access. Self registration always
// yields the default role.
func (e RegisterUserMessage) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Username, validation.Required, validation.Length(3, 64)),
		validation.Field(&e.Email, validation.Required, is.EmailFormat, validation.Length(3, 255)),
		validation.Field(&e.Password, validation.Required, validation.Length(1, maxPasswordBytes)),
	)
	return validationFailure(err)
}

type RegisterUserResponse struct {
	User *User
}

type RegisterUserHandler struct {
	repo         RepositoryManager
	timeout      time.Duration
	logger       Logger
	activitySink ActivitySink
}

func NewRegisterUserHandler(repo RepositoryManager, timeout time.Duration) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:         repo,
		timeout:      timeout,
		logger:       defaultLogger(),
		activitySink: noopActivitySink{},
	}
}

func (h *RegisterUserHandler) WithLogger(l Logger) *RegisterUserHandler {
	h.logger = normalizeLogger(l)
	return h
}

func (h *RegisterUserHandler) WithActivitySink(s ActivitySink) *RegisterUserHandler {
	h.activitySink = normalizeActivitySink(s)
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return WrapError(ctx.Err(), CategoryInternal, "context cancelled during user registration")
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	if err := event.Validate(); err != nil {
		return err
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		return err
	}

	user := &User{
		Username:     strings.TrimSpace(event.Username),
		Email:        NormalizeEmail(event.Email),
		PasswordHash: hash,
		Role:         DefaultRole,
		IsActive:     true,
	}

	ctx, cancel := withStoreTimeout(ctx, h.timeout)
	defer cancel()

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := h.repo.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return err
		}
		user = created
		return nil
	})

	if err != nil {
		mapped := mapStoreError(err, "users.register")
		if IsCategory(mapped, CategoryStore) {
			h.logger.Error("user registration failed", "error", err)
		}
		return mapped
	}

	if err := h.activitySink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventUserRegistered,
		Actor:      ActorRef{ID: strconv.FormatInt(user.ID, 10), Type: KindUser},
		UserID:     user.ID,
		OccurredAt: user.CreatedAt,
	}); err != nil {
		h.logger.Warn("failed to record activity event", "event", ActivityEventUserRegistered, "error", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{User: user})
	}

	return nil
}
