// Package songs provides the PostgreSQL-backed song library repository.
package songs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/common"
	"github.com/dmitrijs2005/tunekeeper/internal/dbx"
	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
)

const songColumns = `id::text, owner_id::text, title, artist, album, genre, year, duration_seconds,
		file_format, file_path, lyrics, is_favorite, rating, play_count, last_played_at, created_at, updated_at`

const ownedBy = ` WHERE id::text = $1 AND owner_id::text = $2`

// sortColumns maps the accepted sort keys onto columns. Anything else sorts
// by creation time.
var sortColumns = map[string]string{
	models.SortTitle:        "title",
	models.SortArtist:       "artist",
	models.SortAlbum:        "album",
	models.SortCreatedAt:    "created_at",
	models.SortPlayCount:    "play_count",
	models.SortLastPlayedAt: "last_played_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts song under its pre-assigned ID and fills the timestamps
// from the database.
func (r *PostgresRepository) Create(ctx context.Context, song *models.Song) (*models.Song, error) {
	query :=
		`INSERT INTO songs (id, owner_id, title, artist, album, genre, year, duration_seconds, file_format, file_path, lyrics)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		song.ID, song.OwnerID, song.Title, song.Artist, song.Album, song.Genre, nullInt(song.Year),
		song.DurationSeconds, song.FileFormat, song.FilePath, song.Lyrics,
	).Scan(&song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return song, nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (*models.Song, error) {
	return scanOne(r.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs`+ownedBy, id, ownerID))
}

// List returns one page of the owner's songs and the number of songs that
// match the filter across all pages.
func (r *PostgresRepository) List(ctx context.Context, ownerID string, q models.SongQuery) ([]*models.Song, int64, error) {
	where, args := songFilter(ownerID, q.Filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count songs: %w", err)
	}
	if total == 0 || int64(q.Offset()) >= total {
		return nil, total, nil
	}

	query := `SELECT ` + songColumns + ` FROM songs WHERE ` + where +
		` ORDER BY ` + orderBy(q) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select songs: %w", err)
	}
	defer rows.Close()

	var result []*models.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan song: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate songs: %w", err)
	}

	return result, total, nil
}

// Update writes the editable fields of song and refreshes UpdatedAt.
func (r *PostgresRepository) Update(ctx context.Context, song *models.Song) error {
	query :=
		`UPDATE songs SET title = $3, artist = $4, album = $5, genre = $6, year = $7,
		 lyrics = $8, is_favorite = $9, rating = $10, updated_at = now()` + ownedBy + `
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		song.ID, song.OwnerID, song.Title, song.Artist, song.Album, song.Genre, nullInt(song.Year),
		song.Lyrics, song.IsFavorite, nullInt(song.Rating),
	).Scan(&song.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Delete removes the song and returns the row as it was, so the caller can
// tell the storage collaborator which file to drop.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) (*models.Song, error) {
	return scanOne(r.db.QueryRowContext(ctx, `DELETE FROM songs`+ownedBy+` RETURNING `+songColumns, id, ownerID))
}

func (r *PostgresRepository) IncrementPlayCount(ctx context.Context, ownerID, id string, at time.Time) (*models.Song, error) {
	query := `UPDATE songs SET play_count = play_count + 1, last_played_at = $3` + ownedBy + ` RETURNING ` + songColumns
	return scanOne(r.db.QueryRowContext(ctx, query, id, ownerID, at))
}

// songFilter renders the WHERE clause for ownerID and f. Placeholders are
// numbered from $1 in the order of the returned args.
func songFilter(ownerID string, f models.SongFilter) (string, []any) {
	conds := []string{"owner_id::text = $1"}
	args := []any{ownerID}

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Search != "" {
		add("(title ILIKE $%[1]d OR artist ILIKE $%[1]d OR album ILIKE $%[1]d)", "%"+likeEscaper.Replace(f.Search)+"%")
	}
	if f.Artist != "" {
		add("artist = $%d", f.Artist)
	}
	if f.Album != "" {
		add("album = $%d", f.Album)
	}
	if f.Genre != "" {
		add("genre = $%d", f.Genre)
	}
	if f.IsFavorite != nil {
		add("is_favorite = $%d", *f.IsFavorite)
	}
	if f.YearFrom != nil {
		add("year >= $%d", *f.YearFrom)
	}
	if f.YearTo != nil {
		add("year <= $%d", *f.YearTo)
	}

	return strings.Join(conds, " AND "), args
}

// orderBy breaks ties on id so pages never overlap.
func orderBy(q models.SongQuery) string {
	col, ok := sortColumns[q.Sort]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if q.Order == models.OrderAsc {
		dir = "ASC"
	}
	return col + " " + dir + " NULLS LAST, id " + dir
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row scanner) (*models.Song, error) {
	s, err := scanSong(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func scanSong(row scanner) (*models.Song, error) {
	s := &models.Song{}
	var (
		year, rating sql.NullInt32
		lastPlayed   sql.NullTime
	)

	err := row.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Artist, &s.Album, &s.Genre, &year, &s.DurationSeconds,
		&s.FileFormat, &s.FilePath, &s.Lyrics, &s.IsFavorite, &rating, &s.PlayCount, &lastPlayed,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if year.Valid {
		y := int(year.Int32)
		s.Year = &y
	}
	if rating.Valid {
		v := int(rating.Int32)
		s.Rating = &v
	}
	if lastPlayed.Valid {
		t := lastPlayed.Time
		s.LastPlayedAt = &t
	}

	return s, nil
}

func nullInt(p *int) sql.NullInt32 {
	if p == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*p), Valid: true}
}
