package auth

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// AuthCodes is the one-time code store.
type AuthCodes interface {
	Create(ctx context.Context, record *AuthCode) (*AuthCode, error)
	ListActive(ctx context.Context, userID int64, now time.Time) ([]*AuthCode, error)
}

type authCodes struct {
	db *bun.DB
}

var _ AuthCodes = (*authCodes)(nil)

func NewAuthCodesRepository(db *bun.DB) AuthCodes {
	return &authCodes{db: db}
}

func (r *authCodes) Create(ctx context.Context, record *AuthCode) (*AuthCode, error) {
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, mapStoreError(err, "auth_codes.create")
	}
	return record, nil
}

// ListActive returns codes of userID that have not expired at now,
// newest first.
func (r *authCodes) ListActive(ctx context.Context, userID int64, now time.Time) ([]*AuthCode, error) {
	records := make([]*AuthCode, 0)
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.expires_at > ?", now).
		Order("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, mapStoreError(err, "auth_codes.list_active")
	}
	return records, nil
}
