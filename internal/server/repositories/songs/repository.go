package songs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
)

// Repository persists songs. Every read and write is scoped to an owner: a
// song that exists under another owner behaves exactly like a missing one
// and yields common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, song *models.Song) (*models.Song, error)
	Get(ctx context.Context, ownerID, id string) (*models.Song, error)
	List(ctx context.Context, ownerID string, q models.SongQuery) ([]*models.Song, int64, error)
	Update(ctx context.Context, song *models.Song) error
	Delete(ctx context.Context, ownerID, id string) (*models.Song, error)
	IncrementPlayCount(ctx context.Context, ownerID, id string, at time.Time) (*models.Song, error)
}
