// Package metadata keeps the client's local state in SQLite: the persisted
// session plus any other small key/value pairs.
package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tunekeeper/internal/dbx"
)

const (
	keyEmail        = "email"
	keyRefreshToken = "refresh_token"
)

var _ Repository = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	const upsert = `INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := r.db.ExecContext(ctx, upsert, key, value); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Clear forgets everything, the stored session included.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("clear local state: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadSession(ctx context.Context) (Session, bool, error) {
	refresh, err := r.Get(ctx, keyRefreshToken)
	if err != nil || len(refresh) == 0 {
		return Session{}, false, err
	}

	email, err := r.Email(ctx)
	if err != nil {
		return Session{}, false, err
	}

	return Session{Email: email, RefreshToken: string(refresh)}, true, nil
}

func (r *SQLiteRepository) SaveSession(ctx context.Context, s Session) error {
	if err := r.Set(ctx, keyEmail, []byte(s.Email)); err != nil {
		return err
	}
	return r.Set(ctx, keyRefreshToken, []byte(s.RefreshToken))
}

// Email returns the address of the stored session, or "" without one.
func (r *SQLiteRepository) Email(ctx context.Context) (string, error) {
	v, err := r.Get(ctx, keyEmail)
	return string(v), err
}
