package auth

import (
	"context"
)

// UserTracker is a store we can use to retrieve users
type UserTracker interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// UserProvider verifies username/password credentials against the
// users table.
type UserProvider struct {
	store  UserTracker
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserTracker) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defaultLogger(),
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.logger = normalizeLogger(l)
	return u
}

// VerifyIdentity will find the user, compare to the password, and return identity.
// Unknown users, inactive accounts and wrong passwords all fail with an
// authentication error. Recording last_login is best effort.
func (u *UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, mapStoreError(err, "users.verify")
	}

	if user == nil {
		return nil, ErrMismatchedHashAndPassword
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	if !user.IsActive {
		return nil, ErrAccountInactive.WithMetadata(map[string]any{"user_id": user.ID})
	}

	if err := u.store.TrackSuccessfulLogin(ctx, user); err != nil {
		u.logger.Error("failed to track successful login", "user_id", user.ID, "error", err)
	}

	return UserIdentity(user), nil
}

var _ IdentityProvider = (*UserProvider)(nil)
