// Package repositories provides the SQLite persistence layer.
//
// [StorageRepository] is a small key/value table standing in for browser local storage: the session store
// persists the session id and serialized user under [SessionKey] and [UserKey].
// [ExportRepository] records bulk export runs.
//
// Repositories hold a *sql.DB, wrap driver errors as "failed to <op>: %w", and return [ErrNotFound] for missing rows.
// Schemas live in internal/shared/sql and are applied by shared.RunMigrations.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// notFound maps [sql.ErrNoRows] onto [ErrNotFound], wrapping every other error with op.
func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
