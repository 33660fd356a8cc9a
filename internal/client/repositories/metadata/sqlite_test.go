package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/tunekeeper/internal/client/migrations"
	"github.com/dmitrijs2005/tunekeeper/internal/dbx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "."))
	return db
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestClear_RemovesAllKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Clear(ctx))

	for _, k := range []string{"a", "b"} {
		v, err := r.Get(ctx, k)
		require.NoError(t, err)
		require.Nil(t, v)
	}
}

func TestSet_InsideRolledBackTx(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := NewSQLiteRepository(tx).Set(ctx, "k", []byte("v")); err != nil {
			return err
		}
		return sql.ErrTxDone
	})
	require.ErrorIs(t, err, sql.ErrTxDone)

	v, err := NewSQLiteRepository(db).Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "read k")
	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "write k")
	require.ErrorContains(t, r.Delete(ctx, "k"), "delete k")
	require.ErrorContains(t, r.Clear(ctx), "clear local state")

	_, _, err = r.LoadSession(ctx)
	require.ErrorContains(t, err, "read refresh_token")
	require.ErrorContains(t, r.SaveSession(ctx, Session{Email: "a@x.com"}), "write email")
}

func TestSession_SaveLoadClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, ok, err := r.LoadSession(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	want := Session{Email: "a@x.com", RefreshToken: "r1"}
	require.NoError(t, r.SaveSession(ctx, want))

	got, ok, err := r.LoadSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)

	email, err := r.Email(ctx)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", email)

	require.NoError(t, r.Clear(ctx))
	_, ok, err = r.LoadSession(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSession_EmptyRefreshTokenIsNoSession(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SaveSession(ctx, Session{Email: "a@x.com"}))

	_, ok, err := r.LoadSession(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSession_UsesFixedKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "refresh_token", []byte("r9")))
	require.NoError(t, r.Set(ctx, "email", []byte("b@x.com")))

	got, ok, err := r.LoadSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Session{Email: "b@x.com", RefreshToken: "r9"}, got)
}
