package auth_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	auth "github.com/goliatone/go-person-auth"
	"github.com/goliatone/go-person-auth/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-test-secret-test-secret"

func TestMain(m *testing.M) {
	if err := auth.SetHashCost(bcrypt.MinCost); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func fixedClock(t time.Time) auth.Clock {
	return func() time.Time { return t }
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func testUserIdentity(id int64, role auth.UserRole) auth.Identity {
	return auth.UserIdentity(&auth.User{
		ID:       id,
		Username: fmt.Sprintf("user%d", id),
		Email:    fmt.Sprintf("user%d@example.com", id),
		Role:     role,
		IsActive: true,
	})
}

// testConfig implements auth.Config
type testConfig struct {
	timeout time.Duration
}

func (c testConfig) GetSigningKey() string          { return testSecret }
func (c testConfig) GetIssuer() string              { return "test-issuer" }
func (c testConfig) GetAuthScheme() string          { return "Bearer" }
func (c testConfig) GetContextKey() string          { return "user" }
func (c testConfig) GetStoreTimeout() time.Duration { return c.timeout }

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := storage.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestRepo(t *testing.T, now time.Time) auth.RepositoryManager {
	t.Helper()
	return auth.NewRepositoryManager(newTestDB(t), fixedClock(now))
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return hash
}

// MockUserTracker implements auth.UserTracker
type MockUserTracker struct {
	mock.Mock
}

func (m *MockUserTracker) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserTracker) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockPersonFinder implements auth.PersonFinder
type MockPersonFinder struct {
	mock.Mock
}

func (m *MockPersonFinder) GetByID(ctx context.Context, id int64) (*auth.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Person), args.Error(1)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

// MockPersonVerifier implements auth.PersonVerifier
type MockPersonVerifier struct {
	mock.Mock
}

func (m *MockPersonVerifier) VerifyPerson(ctx context.Context, rawID, vorname, password string) (auth.Identity, error) {
	args := m.Called(ctx, rawID, vorname, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

// MockPersons implements auth.Persons
type MockPersons struct {
	mock.Mock
}

func (m *MockPersons) List(ctx context.Context) ([]*auth.Person, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auth.Person), args.Error(1)
}

func (m *MockPersons) GetByID(ctx context.Context, id int64) (*auth.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Person), args.Error(1)
}

func (m *MockPersons) Create(ctx context.Context, record *auth.Person) (*auth.Person, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Person), args.Error(1)
}

func (m *MockPersons) UpdateColumns(ctx context.Context, id int64, values []auth.ColumnValue) error {
	args := m.Called(ctx, id, values)
	return args.Error(0)
}

func (m *MockPersons) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRepositoryManager implements auth.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	return m.Called().Error(0)
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return m.Called(ctx, opts, f).Error(0)
}

func (m *MockRepositoryManager) Users() auth.Users {
	return m.Called().Get(0).(auth.Users)
}

func (m *MockRepositoryManager) Persons() auth.Persons {
	return m.Called().Get(0).(auth.Persons)
}

func (m *MockRepositoryManager) AuthCodes() auth.AuthCodes {
	return m.Called().Get(0).(auth.AuthCodes)
}

// recordingSink collects activity events.
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) types() []auth.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

type logCall struct {
	level   string
	message string
	args    []any
}

// captureLogger implements auth.Logger and keeps every call.
type captureLogger struct {
	mu    sync.Mutex
	calls []logCall
}

func (l *captureLogger) record(level, message string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, logCall{level: level, message: message, args: args})
}

func (l *captureLogger) Debug(message string, args ...any) { l.record("debug", message, args...) }
func (l *captureLogger) Info(message string, args ...any)  { l.record("info", message, args...) }
func (l *captureLogger) Warn(message string, args ...any)  { l.record("warn", message, args...) }
func (l *captureLogger) Error(message string, args ...any) { l.record("error", message, args...) }

func (l *captureLogger) has(level, message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.calls {
		if c.level == level && c.message == message {
			return true
		}
	}
	return false
}
