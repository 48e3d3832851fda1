package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() Users
	Persons() Persons
	AuthCodes() AuthCodes
}

type mngr struct {
	db        *bun.DB
	users     Users
	persons   Persons
	authCodes AuthCodes
}

// NewRepositoryManager wires every repository to db. The caller keeps
// ownership of db and closes it on shutdown.
func NewRepositoryManager(db *bun.DB, clock Clock) RepositoryManager {
	return &mngr{
		db:        db,
		users:     NewUsersRepository(db, WithUsersClock(clock)),
		persons:   NewPersonsRepository(db, WithPersonsClock(clock)),
		authCodes: NewAuthCodesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository manager requires a database handle")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.persons == nil {
		return errors.New("repository persons should be initialized")
	}

	if m.authCodes == nil {
		return errors.New("repository authCodes should be initialized")
	}

	return nil
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Persons() Persons {
	return m.persons
}

func (m mngr) AuthCodes() AuthCodes {
	return m.authCodes
}
