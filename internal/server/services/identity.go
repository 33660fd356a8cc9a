package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tunekeeper/internal/common"
	"github.com/dmitrijs2005/tunekeeper/internal/dbx"
	"github.com/dmitrijs2005/tunekeeper/internal/logging"
	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
	"github.com/dmitrijs2005/tunekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/tunekeeper/internal/server/repositories/repomanager"
)

// IdentityResolver turns a session token into the live account behind it.
type IdentityResolver struct {
	db          dbx.TxBeginner
	repomanager repomanager.RepositoryManager
	tokens      TokenVerifier
	log         logging.Logger
}

func NewIdentityResolver(db dbx.TxBeginner, m repomanager.RepositoryManager, tokens TokenVerifier, log logging.Logger) *IdentityResolver {
	if log == nil {
		log = logging.Nop{}
	}
	return &IdentityResolver{db: db, repomanager: m, tokens: tokens, log: log.With("module", "identity")}
}

// Resolve accepts only session tokens. The account is read fresh on every
// call, so disabling an account takes effect for tokens already issued.
func (r *IdentityResolver) Resolve(ctx context.Context, sessionToken string) (*models.Account, error) {
	var account *models.Account

	err := dbx.WithTx(ctx, r.db, readOnly, func(ctx context.Context, tx dbx.DBTX) error {
		a, err := resolveSubject(ctx, r.repomanager.Accounts(tx), r.tokens, sessionToken, models.PurposeSession)
		if err != nil {
			return err
		}
		account = a
		return nil
	})
	if err != nil {
		if !common.IsIdentityFailure(err) {
			r.log.Error(ctx, "resolve failed", "error", err)
		}
		return nil, err
	}

	return account, nil
}

// resolveSubject decodes raw, insists on the wanted purpose and loads the
// subject, which must exist and be active.
func resolveSubject(ctx context.Context, repo accounts.Repository, tokens TokenVerifier, raw string, want models.Purpose) (*models.Account, error) {
	claims, err := tokens.Decode(raw)
	if err != nil {
		return nil, common.ErrTokenInvalid
	}
	if claims.Purpose != want {
		return nil, common.ErrTokenInvalid
	}

	account, err := repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if !account.Active {
		return nil, common.ErrAccountDisabled
	}

	return account, nil
}
