package proto

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	FieldSong            = "song"
	FieldTitle           = "title"
	FieldArtist          = "artist"
	FieldAlbum           = "album"
	FieldGenre           = "genre"
	FieldYear            = "year"
	FieldDurationSeconds = "duration_seconds"
	FieldFileFormat      = "file_format"
	FieldFilePath        = "file_path"
	FieldLyrics          = "lyrics"
	FieldIsFavorite      = "is_favorite"
	FieldRating          = "rating"
	FieldPlayCount       = "play_count"
	FieldLastPlayedAt    = "last_played_at"
	FieldUpdatedAt       = "updated_at"

	FieldSearch   = "search"
	FieldYearFrom = "year_from"
	FieldYearTo   = "year_to"
	FieldSort     = "sort"
	FieldOrder    = "order"
	FieldPage     = "page"
	FieldLimit    = "limit"
	FieldItems    = "items"
	FieldTotal    = "total"
	FieldPages    = "pages"
)

// Song is the wire view of one library entry.
type Song struct {
	ID              string
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

func (s Song) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldID:              structpb.NewStringValue(s.ID),
		FieldTitle:           structpb.NewStringValue(s.Title),
		FieldArtist:          structpb.NewStringValue(s.Artist),
		FieldAlbum:           structpb.NewStringValue(s.Album),
		FieldGenre:           structpb.NewStringValue(s.Genre),
		FieldYear:            intOrNull(s.Year),
		FieldDurationSeconds: structpb.NewNumberValue(float64(s.DurationSeconds)),
		FieldFileFormat:      structpb.NewStringValue(s.FileFormat),
		FieldFilePath:        structpb.NewStringValue(s.FilePath),
		FieldLyrics:          structpb.NewStringValue(s.Lyrics),
		FieldIsFavorite:      structpb.NewBoolValue(s.IsFavorite),
		FieldRating:          intOrNull(s.Rating),
		FieldPlayCount:       structpb.NewNumberValue(float64(s.PlayCount)),
		FieldLastPlayedAt:    timeOrNull(s.LastPlayedAt),
		FieldCreatedAt:       structpb.NewStringValue(s.CreatedAt.UTC().Format(time.RFC3339)),
		FieldUpdatedAt:       structpb.NewStringValue(s.UpdatedAt.UTC().Format(time.RFC3339)),
	})
}

func SongFrom(s *structpb.Struct) Song {
	out := Song{
		ID:              String(s, FieldID),
		Title:           String(s, FieldTitle),
		Artist:          String(s, FieldArtist),
		Album:           String(s, FieldAlbum),
		Genre:           String(s, FieldGenre),
		Year:            OptionalInt(s, FieldYear),
		DurationSeconds: int(Number(s, FieldDurationSeconds)),
		FileFormat:      String(s, FieldFileFormat),
		FilePath:        String(s, FieldFilePath),
		Lyrics:          String(s, FieldLyrics),
		IsFavorite:      s.GetFields()[FieldIsFavorite].GetBoolValue(),
		Rating:          OptionalInt(s, FieldRating),
		PlayCount:       int64(Number(s, FieldPlayCount)),
	}
	if t, err := time.Parse(time.RFC3339, String(s, FieldLastPlayedAt)); err == nil {
		out.LastPlayedAt = &t
	}
	if t, err := time.Parse(time.RFC3339, String(s, FieldCreatedAt)); err == nil {
		out.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, String(s, FieldUpdatedAt)); err == nil {
		out.UpdatedAt = t
	}
	return out
}

// AddSongRequest registers a song whose audio is already stored at FilePath.
type AddSongRequest struct {
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

func (r AddSongRequest) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{
		FieldTitle:           structpb.NewStringValue(r.Title),
		FieldArtist:          structpb.NewStringValue(r.Artist),
		FieldAlbum:           structpb.NewStringValue(r.Album),
		FieldGenre:           structpb.NewStringValue(r.Genre),
		FieldYear:            intOrNull(r.Year),
		FieldDurationSeconds: structpb.NewNumberValue(float64(r.DurationSeconds)),
		FieldFileFormat:      structpb.NewStringValue(r.FileFormat),
		FieldFilePath:        structpb.NewStringValue(r.FilePath),
		FieldLyrics:          structpb.NewStringValue(r.Lyrics),
	})
}

func AddSongRequestFrom(s *structpb.Struct) AddSongRequest {
	return AddSongRequest{
		Title:           String(s, FieldTitle),
		Artist:          String(s, FieldArtist),
		Album:           String(s, FieldAlbum),
		Genre:           String(s, FieldGenre),
		Year:            OptionalInt(s, FieldYear),
		DurationSeconds: int(Number(s, FieldDurationSeconds)),
		FileFormat:      String(s, FieldFileFormat),
		FilePath:        String(s, FieldFilePath),
		Lyrics:          String(s, FieldLyrics),
	}
}

// SongRequest names one song, for GetSong, DeleteSong and PlaySong.
type SongRequest struct {
	ID string
}

func (r SongRequest) Struct() *structpb.Struct {
	return fields(map[string]*structpb.Value{FieldID: structpb.NewStringValue(r.ID)})
}

func SongRequestFrom(s *structpb.Struct) SongRequest {
	return SongRequest{ID: String(s, FieldID)}
}

// UpdateSongRequest changes only the keys present on the wire. A null year
// or rating clears it; an absent key leaves the field alone.
type UpdateSongRequest struct {
	ID          string
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

func (r UpdateSongRequest) Struct() *structpb.Struct {
	f := map[string]*structpb.Value{FieldID: structpb.NewStringValue(r.ID)}
	putString(f, FieldTitle, r.Title)
	putString(f, FieldArtist, r.Artist)
	putString(f, FieldAlbum, r.Album)
	putString(f, FieldGenre, r.Genre)
	putString(f, FieldLyrics, r.Lyrics)
	if r.IsFavorite != nil {
		f[FieldIsFavorite] = structpb.NewBoolValue(*r.IsFavorite)
	}
	putClearable(f, FieldYear, r.Year, r.ClearYear)
	putClearable(f, FieldRating, r.Rating, r.ClearRating)
	return fields(f)
}

func UpdateSongRequestFrom(s *structpb.Struct) UpdateSongRequest {
	r := UpdateSongRequest{
		ID:     String(s, FieldID),
		Title:  OptionalString(s, FieldTitle),
		Artist: OptionalString(s, FieldArtist),
		Album:  OptionalString(s, FieldAlbum),
		Genre:  OptionalString(s, FieldGenre),
		Lyrics: OptionalString(s, FieldLyrics),
		Year:   OptionalInt(s, FieldYear),
		Rating: OptionalInt(s, FieldRating),
	}
	if v, ok := s.GetFields()[FieldIsFavorite].GetKind().(*structpb.Value_BoolValue); ok {
		r.IsFavorite = &v.BoolValue
	}
	r.ClearYear = isNull(s, FieldYear)
	r.ClearRating = isNull(s, FieldRating)
	return r
}

// ListSongsRequest asks for one page of the caller's library. Zero values
// are left for the server to default.
type ListSongsRequest struct {
	Search     string
	Artist     string
	Album      string
	Genre      string
	IsFavorite *bool
	YearFrom   *int
	YearTo     *int
	Sort       string
	Order      string
	Page       int
	Limit      int
}

func (r ListSongsRequest) Struct() *structpb.Struct {
	f := map[string]*structpb.Value{
		FieldSearch: structpb.NewStringValue(r.Search),
		FieldArtist: structpb.NewStringValue(r.Artist),
		FieldAlbum:  structpb.NewStringValue(r.Album),
		FieldGenre:  structpb.NewStringValue(r.Genre),
		FieldSort:   structpb.NewStringValue(r.Sort),
		FieldOrder:  structpb.NewStringValue(r.Order),
		FieldPage:   structpb.NewNumberValue(float64(r.Page)),
		FieldLimit:  structpb.NewNumberValue(float64(r.Limit)),
	}
	if r.IsFavorite != nil {
		f[FieldIsFavorite] = structpb.NewBoolValue(*r.IsFavorite)
	}
	if r.YearFrom != nil {
		f[FieldYearFrom] = structpb.NewNumberValue(float64(*r.YearFrom))
	}
	if r.YearTo != nil {
		f[FieldYearTo] = structpb.NewNumberValue(float64(*r.YearTo))
	}
	return fields(f)
}

func ListSongsRequestFrom(s *structpb.Struct) ListSongsRequest {
	r := ListSongsRequest{
		Search:   String(s, FieldSearch),
		Artist:   String(s, FieldArtist),
		Album:    String(s, FieldAlbum),
		Genre:    String(s, FieldGenre),
		YearFrom: OptionalInt(s, FieldYearFrom),
		YearTo:   OptionalInt(s, FieldYearTo),
		Sort:     String(s, FieldSort),
		Order:    String(s, FieldOrder),
		Page:     int(Number(s, FieldPage)),
		Limit:    int(Number(s, FieldLimit)),
	}
	if v, ok := s.GetFields()[FieldIsFavorite].GetKind().(*structpb.Value_BoolValue); ok {
		r.IsFavorite = &v.BoolValue
	}
	return r
}

// ListSongsResponse is one page plus the paging totals.
type ListSongsResponse struct {
	Items []Song
	Total int64
	Page  int
	Limit int
	Pages int
}

func (r ListSongsResponse) Struct() *structpb.Struct {
	items := make([]*structpb.Value, 0, len(r.Items))
	for _, s := range r.Items {
		items = append(items, structpb.NewStructValue(s.Struct()))
	}
	return fields(map[string]*structpb.Value{
		FieldItems: structpb.NewListValue(&structpb.ListValue{Values: items}),
		FieldTotal: structpb.NewNumberValue(float64(r.Total)),
		FieldPage:  structpb.NewNumberValue(float64(r.Page)),
		FieldLimit: structpb.NewNumberValue(float64(r.Limit)),
		FieldPages: structpb.NewNumberValue(float64(r.Pages)),
	})
}

func ListSongsResponseFrom(s *structpb.Struct) ListSongsResponse {
	r := ListSongsResponse{
		Total: int64(Number(s, FieldTotal)),
		Page:  int(Number(s, FieldPage)),
		Limit: int(Number(s, FieldLimit)),
		Pages: int(Number(s, FieldPages)),
	}
	for _, v := range s.GetFields()[FieldItems].GetListValue().GetValues() {
		r.Items = append(r.Items, SongFrom(v.GetStructValue()))
	}
	return r
}

// OptionalString returns a pointer to the string at key, or nil when the key
// is absent or holds another kind.
func OptionalString(s *structpb.Struct, key string) *string {
	v, ok := s.GetFields()[key].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil
	}
	return &v.StringValue
}

// OptionalInt is OptionalString for whole numbers.
func OptionalInt(s *structpb.Struct, key string) *int {
	v, ok := s.GetFields()[key].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil
	}
	n := int(v.NumberValue)
	return &n
}

func isNull(s *structpb.Struct, key string) bool {
	_, ok := s.GetFields()[key].GetKind().(*structpb.Value_NullValue)
	return ok
}

func intOrNull(v *int) *structpb.Value {
	if v == nil {
		return structpb.NewNullValue()
	}
	return structpb.NewNumberValue(float64(*v))
}

func timeOrNull(t *time.Time) *structpb.Value {
	if t == nil {
		return structpb.NewNullValue()
	}
	return structpb.NewStringValue(t.UTC().Format(time.RFC3339))
}

func putString(f map[string]*structpb.Value, key string, v *string) {
	if v != nil {
		f[key] = structpb.NewStringValue(*v)
	}
}

func putClearable(f map[string]*structpb.Value, key string, v *int, reset bool) {
	switch {
	case reset:
		f[key] = structpb.NewNullValue()
	case v != nil:
		f[key] = structpb.NewNumberValue(float64(*v))
	}
}
