package models

import "time"

// Song is one track in an owner's library. The audio itself lives with the
// storage collaborator; FilePath is the key it handed back.
type Song struct {
	ID              string
	OwnerID         string
	Title           string
	Artist          string
	Album           string
	Genre           string
	Year            *int
	DurationSeconds int
	FileFormat      string
	FilePath        string
	Lyrics          string
	IsFavorite      bool
	Rating          *int
	PlayCount       int64
	LastPlayedAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SongInput is what a caller supplies when adding a song.
type SongInput struct {
	Title           string
	Artist          string
	Album           string
	Genre           string
	Year            *int
	DurationSeconds int
	FileFormat      string
	FilePath        string
	Lyrics          string
}

// SongPatch changes only the fields that are set. ClearYear and ClearRating
// reset the nullable columns.
type SongPatch struct {
	Title       *string
	Artist      *string
	Album       *string
	Genre       *string
	Year        *int
	ClearYear   bool
	Lyrics      *string
	IsFavorite  *bool
	Rating      *int
	ClearRating bool
}

// Apply copies the set fields of p onto s.
func (p SongPatch) Apply(s *Song) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Artist != nil {
		s.Artist = *p.Artist
	}
	if p.Album != nil {
		s.Album = *p.Album
	}
	if p.Genre != nil {
		s.Genre = *p.Genre
	}
	switch {
	case p.ClearYear:
		s.Year = nil
	case p.Year != nil:
		y := *p.Year
		s.Year = &y
	}
	if p.Lyrics != nil {
		s.Lyrics = *p.Lyrics
	}
	if p.IsFavorite != nil {
		s.IsFavorite = *p.IsFavorite
	}
	switch {
	case p.ClearRating:
		s.Rating = nil
	case p.Rating != nil:
		r := *p.Rating
		s.Rating = &r
	}
}

// Sort columns accepted by SongQuery.
const (
	SortTitle        = "title"
	SortArtist       = "artist"
	SortAlbum        = "album"
	SortCreatedAt    = "created_at"
	SortPlayCount    = "play_count"
	SortLastPlayedAt = "last_played_at"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// SongFilter narrows a listing. Search matches title, artist or album
// case-insensitively; the other string fields match exactly.
type SongFilter struct {
	Search     string
	Artist     string
	Album      string
	Genre      string
	IsFavorite *bool
	YearFrom   *int
	YearTo     *int
}

// SongQuery is one page request over an owner's library. Page is 1-based.
type SongQuery struct {
	Filter SongFilter
	Sort   string
	Order  string
	Page   int
	Limit  int
}

// Offset is the number of rows skipped before this page.
func (q SongQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// SongPage is one page of results plus the total across all pages.
type SongPage struct {
	Items []*Song
	Total int64
	Page  int
	Limit int
}

// Pages is the number of pages Total spans at this Limit.
func (p SongPage) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}
