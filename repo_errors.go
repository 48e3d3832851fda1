package auth

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

var sqliteUniqueColumn = regexp.MustCompile(`UNIQUE constraint failed: [a-z_]+\.([a-z_]+)`)

// isUniqueViolation reports whether err comes from a unique constraint
// and, if known, which column caused it.
func isUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return columnFromConstraint(pgErr.ConstraintName), true
	}

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		if m := sqliteUniqueColumn.FindStringSubmatch(err.Error()); len(m) == 2 {
			return m[1], true
		}
		return "", true
	}

	return "", false
}

// constraints are named uq_<table>_<column>
func columnFromConstraint(name string) string {
	for _, table := range []string{"uq_personen_", "uq_users_"} {
		if strings.HasPrefix(name, table) {
			return strings.TrimPrefix(name, table)
		}
	}
	return ""
}

// mapStoreError translates driver errors into the package taxonomy.
// Driver messages are kept as the error source only.
func mapStoreError(err error, op string) error {
	if err == nil {
		return nil
	}

	if _, ok := AsError(err); ok {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound.WithSource(err).WithMetadata(map[string]any{"operation": op})
	}

	if field, ok := isUniqueViolation(err); ok {
		conflict := ErrConflict.WithSource(err).WithMetadata(map[string]any{"operation": op})
		if field != "" {
			conflict = conflict.WithDetails(map[string]any{"field": field})
		}
		return conflict
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return StoreError(err, op).WithMetadata(map[string]any{"timeout": true})
	}

	return StoreError(err, op)
}
