package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tunekeeper/internal/common"
	"github.com/dmitrijs2005/tunekeeper/internal/dbx"
	"github.com/dmitrijs2005/tunekeeper/internal/logging"
	"github.com/dmitrijs2005/tunekeeper/internal/server/auth"
	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
	"github.com/dmitrijs2005/tunekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/tunekeeper/internal/server/repositories/songs"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionTTL = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

// memAccounts is an in-memory accounts.Repository. It hands out copies so
// callers cannot mutate stored state behind its back.
type memAccounts struct {
	mu   sync.Mutex
	byID map[string]models.Account

	getErr    error
	createErr error
	updateErr error
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[string]models.Account{}}
}

func (m *memAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, existing := range m.byID {
		if existing.Email == a.Email || existing.Username == a.Username {
			return nil, common.ErrorAlreadyExists
		}
	}
	a.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.byID[a.ID] = *a
	out := *a
	return &out, nil
}

func (m *memAccounts) find(match func(models.Account) bool) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, a := range m.byID {
		if match(a) {
			out := a
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	return m.find(func(a models.Account) bool { return a.ID == id })
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	return m.find(func(a models.Account) bool { return a.Email == email })
}

func (m *memAccounts) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	return m.find(func(a models.Account) bool { return a.Username == username })
}

func (m *memAccounts) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	a, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.LastLoginAt = &at
	m.byID[id] = a
	return nil
}

func (m *memAccounts) mutate(t *testing.T, id string, fn func(*models.Account)) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	require.True(t, ok, "no account %s", id)
	fn(&a)
	m.byID[id] = a
}

func (m *memAccounts) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

func (m *memAccounts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type fakeRepoManager struct {
	accounts *memAccounts
	songs    *memSongs
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return f.accounts }
func (f *fakeRepoManager) Songs(dbx.DBTX) songs.Repository              { return f.songs }

// spyHasher records how many database connections were checked out each
// time a password operation started. A transaction pins one connection, so
// a non-zero entry means hashing ran inside a transaction.
type spyHasher struct {
	Hasher
	db *sql.DB

	mu       sync.Mutex
	inUse    []int
	onVerify func()
}

func (s *spyHasher) record() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inUse = append(s.inUse, s.db.Stats().InUse)
}

func (s *spyHasher) calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.inUse...)
}

func (s *spyHasher) Hash(ctx context.Context, password string) (string, error) {
	s.record()
	return s.Hasher.Hash(ctx, password)
}

func (s *spyHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	s.record()
	if s.onVerify != nil {
		s.onVerify()
	}
	return s.Hasher.Verify(ctx, password, hash)
}

func (s *spyHasher) VerifyNothing(ctx context.Context, password string) error {
	s.record()
	return s.Hasher.VerifyNothing(ctx, password)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// env wires the real hasher, codec and issuer around an in-memory store and
// a sqlmock database that records transaction boundaries.
type env struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	hasher   *spyHasher
	accounts *memAccounts
	clock    *fakeClock
	codec    *auth.TokenCodec
	svc      *AuthService
	resolver *IdentityResolver
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	clock := &fakeClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	codec := auth.NewTokenCodec([]byte("test-secret"), clock.Now)
	issuer := auth.NewSessionIssuer(codec, sessionTTL, refreshTTL)
	hasher := &spyHasher{Hasher: auth.NewPasswordHasher(bcrypt.MinCost, 4), db: db}

	store := newMemAccounts()
	rm := &fakeRepoManager{accounts: store, songs: newMemSongs()}

	var seq int
	svc := NewAuthService(db, rm, hasher, codec, issuer, logging.Nop{})
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("acc-%d", seq)
	}

	return &env{
		db:       db,
		mock:     mock,
		hasher:   hasher,
		accounts: store,
		clock:    clock,
		codec:    codec,
		svc:      svc,
		resolver: NewIdentityResolver(db, rm, codec, nil),
	}
}

func (e *env) expectCommit() {
	e.mock.ExpectBegin()
	e.mock.ExpectCommit()
}

func (e *env) expectRollback() {
	e.mock.ExpectBegin()
	e.mock.ExpectRollback()
}

// register is a happy-path shortcut that also sets the tx expectations: one
// read-only uniqueness check, then the insert.
func (e *env) register(t *testing.T, email, username, password string) (*models.Account, models.TokenPair) {
	t.Helper()
	e.expectCommit()
	e.expectCommit()
	a, pair, err := e.svc.Register(context.Background(), email, username, password)
	require.NoError(t, err)
	return a, pair
}

var errStorage = errors.New("connection reset")
