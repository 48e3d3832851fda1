package auth

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Users is the account store.
type Users interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	TrackSuccessfulLogin(ctx context.Context, user *User) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error
}

type users struct {
	db  *bun.DB
	now Clock
}

var _ Users = (*users)(nil)

// UsersOption configures the users repository.
type UsersOption func(*users)

// WithUsersClock overrides the clock used for last_login.
func WithUsersClock(now Clock) UsersOption {
	return func(u *users) {
		if now != nil {
			u.now = now
		}
	}
}

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := &users{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapStoreError(err, "users.get_by_id")
	}
	return record, nil
}

// GetByIdentifier looks up exactly one user by username. Identifiers
// containing an @ are matched against email instead.
func (a *users) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	column := "username"
	if strings.Contains(identifier, "@") {
		column = "email"
	}

	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.? = ?", bun.Ident(column), identifier).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapStoreError(err, "users.get_by_identifier")
	}
	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record, a.now())
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, mapStoreError(err, "users.create")
	}
	return record, nil
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	loggedInAt := a.now()
	_, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("last_login = ?", loggedInAt).
		Where("id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return mapStoreError(err, "users.track_login")
	}
	user.LastLogin = &loggedInAt
	return nil
}

func prepareUserDefaults(u *User, now time.Time) {
	if u.Role == "" {
		u.Role = DefaultRole
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
}
