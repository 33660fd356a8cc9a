package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tunekeeper/internal/common"
	"github.com/dmitrijs2005/tunekeeper/internal/dbx"
	"github.com/dmitrijs2005/tunekeeper/internal/logging"
	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
	"github.com/dmitrijs2005/tunekeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var readOnly = &sql.TxOptions{ReadOnly: true}

// AuthService registers accounts, logs them in and rotates token pairs.
type AuthService struct {
	db          dbx.TxBeginner
	repomanager repomanager.RepositoryManager
	hasher      Hasher
	tokens      TokenVerifier
	issuer      PairIssuer
	log         logging.Logger
	newID       func() string
}

func NewAuthService(db dbx.TxBeginner, m repomanager.RepositoryManager, hasher Hasher,
	tokens TokenVerifier, issuer PairIssuer, log logging.Logger) *AuthService {
	if log == nil {
		log = logging.Nop{}
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		issuer:      issuer,
		log:         log.With("module", "auth"),
		newID:       uuid.NewString,
	}
}

// Register creates an active account and returns it with its first token
// pair. Uniqueness is checked in a short read-only transaction, the password
// is hashed with no transaction open, and the insert runs in a second
// transaction. A race that slips between the two is caught by the unique
// constraints and still reported as ErrAccountConflict.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*models.Account, models.TokenPair, error) {
	account, pair, err := s.register(ctx, email, username, password)
	if err != nil {
		s.logFailure(ctx, "register", err)
		return nil, models.TokenPair{}, err
	}

	s.log.Info(ctx, "account registered", "account_id", account.ID)
	return account, pair, nil
}

func (s *AuthService) register(ctx context.Context, email, username, password string) (*models.Account, models.TokenPair, error) {
	err := dbx.WithTx(ctx, s.db, readOnly, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		if err := ensureFree(repo.GetByEmail(ctx, email)); err != nil {
			return err
		}
		return ensureFree(repo.GetByUsername(ctx, username))
	})
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	var (
		account *models.Account
		pair    models.TokenPair
	)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Accounts(tx).Create(ctx, &models.Account{
			ID:           s.newID(),
			Email:        email,
			Username:     username,
			PasswordHash: hash,
			Active:       true,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrAccountConflict
			}
			return fmt.Errorf("create account: %w", err)
		}

		pair, err = s.issuer.IssuePair(created.ID)
		if err != nil {
			return err
		}

		account = created
		return nil
	})
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	return account, pair, nil
}

// ensureFree turns a uniqueness lookup into a conflict or a pass.
func ensureFree(_ *models.Account, err error) error {
	switch {
	case err == nil:
		return common.ErrAccountConflict
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return fmt.Errorf("lookup account: %w", err)
	}
}

// Login checks credentials and, only once they verify, the active flag.
// An unknown email still pays for one password verification so it cannot be
// told apart from a wrong password. No transaction is open while the
// password is verified: the lookup and the last-login stamp each run in
// their own short transaction.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Account, models.TokenPair, error) {
	account, pair, err := s.login(ctx, email, password)
	if err != nil {
		s.logFailure(ctx, "login", err)
		return nil, models.TokenPair{}, err
	}

	s.log.Info(ctx, "account logged in", "account_id", account.ID)
	return account, pair, nil
}

func (s *AuthService) login(ctx context.Context, email, password string) (*models.Account, models.TokenPair, error) {
	var found *models.Account
	err := dbx.WithTx(ctx, s.db, readOnly, func(ctx context.Context, tx dbx.DBTX) error {
		a, err := s.repomanager.Accounts(tx).GetByEmail(ctx, email)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil
		case err != nil:
			return fmt.Errorf("lookup account: %w", err)
		}
		found = a
		return nil
	})
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	if found == nil {
		if err := s.hasher.VerifyNothing(ctx, password); err != nil {
			return nil, models.TokenPair{}, err
		}
		return nil, models.TokenPair{}, common.ErrAuthFailure
	}

	ok, err := s.hasher.Verify(ctx, password, found.PasswordHash)
	if err != nil {
		return nil, models.TokenPair{}, err
	}
	if !ok {
		return nil, models.TokenPair{}, common.ErrAuthFailure
	}

	var (
		account *models.Account
		pair    models.TokenPair
	)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		// Re-read so a disable or delete that landed during verification wins.
		a, err := repo.GetByID(ctx, found.ID)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrAuthFailure
		case err != nil:
			return fmt.Errorf("lookup account: %w", err)
		}
		if a.PasswordHash != found.PasswordHash {
			return common.ErrAuthFailure
		}
		if !a.Active {
			return common.ErrAccountDisabled
		}

		now := s.tokens.Now().UTC()
		if err := repo.UpdateLastLogin(ctx, a.ID, now); err != nil {
			return fmt.Errorf("update last login: %w", err)
		}
		a.LastLoginAt = &now

		pair, err = s.issuer.IssuePair(a.ID)
		if err != nil {
			return err
		}

		account = a
		return nil
	})
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	return account, pair, nil
}

// Refresh exchanges a refresh token for a brand-new pair. The presented token
// is not revoked and stays usable until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var pair models.TokenPair

	err := dbx.WithTx(ctx, s.db, readOnly, func(ctx context.Context, tx dbx.DBTX) error {
		account, err := resolveSubject(ctx, s.repomanager.Accounts(tx), s.tokens, refreshToken, models.PurposeRefresh)
		if err != nil {
			return err
		}

		pair, err = s.issuer.IssuePair(account.ID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "refresh", err)
		return models.TokenPair{}, err
	}

	return pair, nil
}

func (s *AuthService) logFailure(ctx context.Context, op string, err error) {
	if common.IsIdentityFailure(err) {
		s.log.Info(ctx, op+" rejected", "reason", err.Error())
		return
	}
	s.log.Error(ctx, op+" failed", "error", err)
}
