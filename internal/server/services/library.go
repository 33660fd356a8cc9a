package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/common"
	"github.com/dmitrijs2005/tunekeeper/internal/dbx"
	"github.com/dmitrijs2005/tunekeeper/internal/logging"
	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
	"github.com/dmitrijs2005/tunekeeper/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// LibraryService manages the songs of one owner at a time. The owner is
// always the account resolved from the caller's session token, never a
// value taken from the request body.
type LibraryService struct {
	db          dbx.TxBeginner
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	newID       func() string
	now         func() time.Time
}

func NewLibraryService(db dbx.TxBeginner, m repomanager.RepositoryManager, log logging.Logger) *LibraryService {
	if log == nil {
		log = logging.Nop{}
	}
	return &LibraryService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "library"),
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// AddSong records a song whose audio the storage collaborator has already
// stored under in.FilePath.
func (s *LibraryService) AddSong(ctx context.Context, ownerID string, in models.SongInput) (*models.Song, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.FileFormat = strings.ToLower(strings.TrimSpace(in.FileFormat))
	if err := validateSongInput(in); err != nil {
		return nil, err
	}

	song := &models.Song{
		ID:              s.newID(),
		OwnerID:         ownerID,
		Title:           in.Title,
		Artist:          in.Artist,
		Album:           in.Album,
		Genre:           in.Genre,
		Year:            in.Year,
		DurationSeconds: in.DurationSeconds,
		FileFormat:      in.FileFormat,
		FilePath:        in.FilePath,
		Lyrics:          in.Lyrics,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.repomanager.Songs(tx).Create(ctx, song)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "add song", err)
	}

	s.log.Info(ctx, "song added", "owner_id", ownerID, "song_id", song.ID)
	return song, nil
}

func (s *LibraryService) GetSong(ctx context.Context, ownerID, id string) (*models.Song, error) {
	var song *models.Song
	err := dbx.WithTx(ctx, s.db, readOnly, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		song, err = s.repomanager.Songs(tx).Get(ctx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "get song", err)
	}
	return song, nil
}

// ListSongs returns one page of the owner's library. Zero values in q fall
// back to page 1, 20 per page, newest first.
func (s *LibraryService) ListSongs(ctx context.Context, ownerID string, q models.SongQuery) (models.SongPage, error) {
	q, err := normalizeQuery(q)
	if err != nil {
		return models.SongPage{}, err
	}

	page := models.SongPage{Page: q.Page, Limit: q.Limit}
	err = dbx.WithTx(ctx, s.db, readOnly, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		page.Items, page.Total, err = s.repomanager.Songs(tx).List(ctx, ownerID, q)
		return err
	})
	if err != nil {
		return models.SongPage{}, s.fail(ctx, "list songs", err)
	}
	return page, nil
}

// UpdateSong applies the set fields of patch and returns the stored result.
func (s *LibraryService) UpdateSong(ctx context.Context, ownerID, id string, patch models.SongPatch) (*models.Song, error) {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}
	if err := validateSongPatch(patch); err != nil {
		return nil, err
	}

	var song *models.Song
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Songs(tx)

		current, err := repo.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}

		patch.Apply(current)
		if err := repo.Update(ctx, current); err != nil {
			return err
		}

		song = current
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "update song", err)
	}
	return song, nil
}

// DeleteSong removes the song and returns its last state. Dropping the
// audio file is left to the storage collaborator.
func (s *LibraryService) DeleteSong(ctx context.Context, ownerID, id string) (*models.Song, error) {
	var song *models.Song
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		song, err = s.repomanager.Songs(tx).Delete(ctx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "delete song", err)
	}

	s.log.Info(ctx, "song deleted", "owner_id", ownerID, "song_id", id)
	return song, nil
}

// PlaySong bumps the play counter and stamps the play time.
func (s *LibraryService) PlaySong(ctx context.Context, ownerID, id string) (*models.Song, error) {
	var song *models.Song
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		song, err = s.repomanager.Songs(tx).IncrementPlayCount(ctx, ownerID, id, s.now().UTC())
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "play song", err)
	}
	return song, nil
}

// fail maps repository misses onto ErrSongNotFound and logs anything that
// is not the caller's fault.
func (s *LibraryService) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrSongNotFound
	}
	s.log.Error(ctx, op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func validateSongInput(in models.SongInput) error {
	return invalid(validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Artist, validation.Length(0, 255)),
		validation.Field(&in.Album, validation.Length(0, 255)),
		validation.Field(&in.Genre, validation.Length(0, 100)),
		validation.Field(&in.Year, validation.NilOrNotEmpty, validation.Min(1000), validation.Max(9999)),
		validation.Field(&in.DurationSeconds, validation.Min(0)),
		validation.Field(&in.FileFormat, validation.Required, validation.Length(1, 16)),
		validation.Field(&in.FilePath, validation.Required, validation.Length(1, 1024)),
	))
}

func validateSongPatch(p models.SongPatch) error {
	return invalid(validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&p.Artist, validation.Length(0, 255)),
		validation.Field(&p.Album, validation.Length(0, 255)),
		validation.Field(&p.Genre, validation.Length(0, 100)),
		validation.Field(&p.Year, validation.NilOrNotEmpty, validation.Min(1000), validation.Max(9999)),
		validation.Field(&p.Rating, validation.NilOrNotEmpty, validation.Min(1), validation.Max(5)),
	))
}

func normalizeQuery(q models.SongQuery) (models.SongQuery, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = defaultPageLimit
	}
	if q.Sort == "" {
		q.Sort = models.SortCreatedAt
	}
	if q.Order == "" {
		q.Order = models.OrderDesc
	}
	q.Filter.Search = strings.TrimSpace(q.Filter.Search)

	err := validation.ValidateStruct(&q,
		validation.Field(&q.Page, validation.Min(1)),
		validation.Field(&q.Limit, validation.Min(1), validation.Max(maxPageLimit)),
		validation.Field(&q.Sort, validation.In(models.SortTitle, models.SortArtist, models.SortAlbum,
			models.SortCreatedAt, models.SortPlayCount, models.SortLastPlayedAt)),
		validation.Field(&q.Order, validation.In(models.OrderAsc, models.OrderDesc)),
	)
	return q, invalid(err)
}

// invalid tags a validation failure with common.ErrValidation while keeping
// the per-field message.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", common.ErrValidation, err)
}
