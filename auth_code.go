package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	// AuthCodeTTL is how long an issued code stays valid.
	AuthCodeTTL = time.Hour

	authCodeMin  = 100000
	authCodeSpan = 900000
)

// AuthCodeIssuer generates and persists six digit one-time codes.
type AuthCodeIssuer struct {
	store        AuthCodes
	now          Clock
	random       io.Reader
	timeout      time.Duration
	logger       Logger
	activitySink ActivitySink
}

// AuthCodeOption configures an AuthCodeIssuer.
type AuthCodeOption func(*AuthCodeIssuer)

func WithAuthCodeClock(now Clock) AuthCodeOption {
	return func(a *AuthCodeIssuer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithAuthCodeRandom replaces crypto/rand.Reader. Only tests should
// need this.
func WithAuthCodeRandom(r io.Reader) AuthCodeOption {
	return func(a *AuthCodeIssuer) {
		if r != nil {
			a.random = r
		}
	}
}

func WithAuthCodeTimeout(d time.Duration) AuthCodeOption {
	return func(a *AuthCodeIssuer) {
		a.timeout = d
	}
}

func WithAuthCodeLogger(l Logger) AuthCodeOption {
	return func(a *AuthCodeIssuer) {
		a.logger = normalizeLogger(l)
	}
}

func WithAuthCodeActivitySink(s ActivitySink) AuthCodeOption {
	return func(a *AuthCodeIssuer) {
		a.activitySink = normalizeActivitySink(s)
	}
}

func NewAuthCodeIssuer(store AuthCodes, opts ...AuthCodeOption) *AuthCodeIssuer {
	a := &AuthCodeIssuer{
		store:        store,
		now:          time.Now,
		random:       rand.Reader,
		timeout:      DefaultStoreTimeout,
		logger:       defaultLogger(),
		activitySink: noopActivitySink{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// IssueFor authorizes claims against rawUserID and issues a code.
func (a *AuthCodeIssuer) IssueFor(ctx context.Context, claims AuthClaims, rawUserID string) (*AuthCode, error) {
	userID, err := AuthorizeSelf(claims, rawUserID)
	if err != nil {
		return nil, err
	}

	code, err := a.Issue(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := a.activitySink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventCodeIssued,
		Actor:      actorFromClaims(claims),
		UserID:     userID,
		Metadata:   map[string]any{"expires_at": code.ExpiresAt},
		OccurredAt: code.CreatedAt,
	}); err != nil {
		a.logger.Warn("failed to record activity event", "event", ActivityEventCodeIssued, "error", err)
	}

	return code, nil
}

// Issue stores a new code for userID expiring AuthCodeTTL from now.
// Earlier codes for the same user stay valid.
func (a *AuthCodeIssuer) Issue(ctx context.Context, userID int64) (*AuthCode, error) {
	code, err := GenerateAuthCode(a.random)
	if err != nil {
		return nil, WrapError(err, CategoryInternal, "failed to generate auth code")
	}

	now := a.now()
	record := &AuthCode{
		UserID:    userID,
		Code:      code,
		ExpiresAt: now.Add(AuthCodeTTL),
		CreatedAt: now,
	}

	ctx, cancel := withStoreTimeout(ctx, a.timeout)
	defer cancel()

	if _, err := a.store.Create(ctx, record); err != nil {
		a.logger.Error("failed to persist auth code", "user_id", userID, "error", err)
		return nil, mapStoreError(err, "auth_codes.create")
	}

	return record, nil
}

// GenerateAuthCode draws a code uniformly from [100000, 999999] using r.
func GenerateAuthCode(r io.Reader) (string, error) {
	n, err := rand.Int(r, big.NewInt(authCodeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+authCodeMin), nil
}
