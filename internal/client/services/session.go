// Package services contains application services for the TuneKeeper client.
// SessionService drives register/login/refresh/logout and keeps the refresh
// token in the local store so a later run can resume without a password.
// LibraryService browses and edits the caller's songs.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/tunekeeper/internal/client/client"
	"github.com/dmitrijs2005/tunekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tunekeeper/internal/dbx"
	pb "github.com/dmitrijs2005/tunekeeper/internal/proto"
)

// SessionService defines the session operations of the CLI.
//
//   - Register / Login: authenticate against the server and persist the session.
//   - Resume: continue a persisted session by refreshing it; reports false when
//     nothing was stored.
//   - WhoAmI: fetch the live account behind the current session.
//   - Refresh: rotate the token pair explicitly.
//   - Logout: forget the session locally and in memory.
type SessionService interface {
	Register(ctx context.Context, email, username, password string) (pb.Account, error)
	Login(ctx context.Context, email, password string) (pb.Account, error)
	Resume(ctx context.Context) (pb.Account, bool, error)
	WhoAmI(ctx context.Context) (pb.Account, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	Close() error
}

type sessionService struct {
	client client.Client
	db     *sql.DB
}

// NewSessionService binds the service to an API client and the local DB.
func NewSessionService(c client.Client, db *sql.DB) SessionService {
	return &sessionService{client: c, db: db}
}

func (s *sessionService) Register(ctx context.Context, email, username, password string) (pb.Account, error) {
	acc, err := s.client.Register(ctx, email, username, password)
	if err != nil {
		return pb.Account{}, err
	}
	return acc, s.save(ctx, acc.Email)
}

func (s *sessionService) Login(ctx context.Context, email, password string) (pb.Account, error) {
	acc, err := s.client.Login(ctx, email, password)
	if err != nil {
		return pb.Account{}, err
	}
	return acc, s.save(ctx, acc.Email)
}

func (s *sessionService) Resume(ctx context.Context) (pb.Account, bool, error) {
	stored, ok, err := metadata.NewSQLiteRepository(s.db).LoadSession(ctx)
	if err != nil || !ok {
		return pb.Account{}, false, err
	}

	s.client.SetTokens(pb.Tokens{RefreshToken: stored.RefreshToken})

	if err := s.client.Refresh(ctx); err != nil {
		if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrAccountDisabled) {
			_ = s.Logout(ctx)
		}
		return pb.Account{}, false, err
	}

	acc, err := s.client.Me(ctx)
	if err != nil {
		return pb.Account{}, false, err
	}
	return acc, true, s.save(ctx, acc.Email)
}

func (s *sessionService) WhoAmI(ctx context.Context) (pb.Account, error) {
	acc, err := s.client.Me(ctx)
	if err != nil {
		return pb.Account{}, err
	}
	// Me may have rotated the pair behind the scenes.
	return acc, s.save(ctx, acc.Email)
}

func (s *sessionService) Refresh(ctx context.Context) error {
	if err := s.client.Refresh(ctx); err != nil {
		return err
	}
	email, err := metadata.NewSQLiteRepository(s.db).Email(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, email)
}

func (s *sessionService) Logout(ctx context.Context) error {
	s.client.SetTokens(pb.Tokens{})
	return metadata.NewSQLiteRepository(s.db).Clear(ctx)
}

func (s *sessionService) Close() error {
	return s.client.Close()
}

// save persists the email and current refresh token in one transaction.
func (s *sessionService) save(ctx context.Context, email string) error {
	refresh := s.client.Tokens().RefreshToken

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SaveSession(ctx, metadata.Session{Email: email, RefreshToken: refresh})
	})
}
