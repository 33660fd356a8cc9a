package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
)

// Repository persists accounts. Lookups that match nothing return
// common.ErrorNotFound; a Create that collides with an existing email or
// username returns common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
