package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tunekeeper/internal/dbx"
	"github.com/dmitrijs2005/tunekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/tunekeeper/internal/server/repositories/songs"
)

// RepositoryManager vends repositories bound to a connection or transaction
// and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Songs(db dbx.DBTX) songs.Repository
}
