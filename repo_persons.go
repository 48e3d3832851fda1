package auth

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// ColumnValue is a single column assignment of a partial update.
type ColumnValue struct {
	Column string
	Value  any
}

// Persons is the person store.
type Persons interface {
	List(ctx context.Context) ([]*Person, error)
	GetByID(ctx context.Context, id int64) (*Person, error)
	Create(ctx context.Context, record *Person) (*Person, error)
	UpdateColumns(ctx context.Context, id int64, values []ColumnValue) error
	Delete(ctx context.Context, id int64) error
}

type persons struct {
	db  *bun.DB
	now Clock
}

var _ Persons = (*persons)(nil)

// PersonsOption configures the persons repository.
type PersonsOption func(*persons)

// WithPersonsClock overrides the clock used for timestamps.
func WithPersonsClock(now Clock) PersonsOption {
	return func(p *persons) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPersonsRepository(db *bun.DB, opts ...PersonsOption) Persons {
	repo := &persons{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (r *persons) List(ctx context.Context) ([]*Person, error) {
	records := make([]*Person, 0)
	if err := r.db.NewSelect().Model(&records).Order("id ASC").Scan(ctx); err != nil {
		return nil, mapStoreError(err, "persons.list")
	}
	return records, nil
}

func (r *persons) GetByID(ctx context.Context, id int64) (*Person, error) {
	record := &Person{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapStoreError(err, "persons.get_by_id")
	}
	return record, nil
}

func (r *persons) Create(ctx context.Context, record *Person) (*Person, error) {
	now := r.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, mapStoreError(err, "persons.create")
	}
	return record, nil
}

// UpdateColumns applies values in a single UPDATE statement. It returns
// ErrNotFound when no row matched id.
func (r *persons) UpdateColumns(ctx context.Context, id int64, values []ColumnValue) error {
	if len(values) == 0 {
		return ErrNoFieldsToUpdate
	}

	q := r.db.NewUpdate().Model((*Person)(nil))
	for _, v := range values {
		q = q.Set("? = ?", bun.Ident(v.Column), v.Value)
	}
	q = q.Set("updated_at = ?", r.now()).Where("id = ?", id)

	res, err := q.Exec(ctx)
	if err != nil {
		return mapStoreError(err, "persons.update")
	}
	return requireAffected(res, id, "persons.update")
}

func (r *persons) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*Person)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return mapStoreError(err, "persons.delete")
	}
	return requireAffected(res, id, "persons.delete")
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func requireAffected(res rowsAffected, id int64, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapStoreError(err, op)
	}
	if n == 0 {
		return ErrNotFound.WithMetadata(map[string]any{"id": id, "operation": op})
	}
	return nil
}
