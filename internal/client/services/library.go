package services

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/tunekeeper/internal/client/client"
	pb "github.com/dmitrijs2005/tunekeeper/internal/proto"
)

const browsePageSize = 20

// LibraryService is the CLI's view of the caller's songs.
//
//   - Add: record a song already stored at a path; title and format fall
//     back to the file name when left blank.
//   - Browse: one page of songs, optionally filtered by a search string.
//   - Show / Play / Delete: act on one song by id.
//   - Favorite: mark or unmark a song.
//   - Rate: set a 1..5 rating, or clear it with 0.
type LibraryService interface {
	Add(ctx context.Context, req pb.AddSongRequest) (pb.Song, error)
	Browse(ctx context.Context, search string, page int) (pb.ListSongsResponse, error)
	Show(ctx context.Context, id string) (pb.Song, error)
	Play(ctx context.Context, id string) (pb.Song, error)
	Favorite(ctx context.Context, id string, on bool) (pb.Song, error)
	Rate(ctx context.Context, id string, rating int) (pb.Song, error)
	Delete(ctx context.Context, id string) (pb.Song, error)
}

type libraryService struct {
	client client.Client
}

func NewLibraryService(c client.Client) LibraryService {
	return &libraryService{client: c}
}

func (s *libraryService) Add(ctx context.Context, req pb.AddSongRequest) (pb.Song, error) {
	base := filepath.Base(req.FilePath)
	ext := filepath.Ext(base)
	if strings.TrimSpace(req.Title) == "" {
		req.Title = strings.TrimSuffix(base, ext)
	}
	if strings.TrimSpace(req.FileFormat) == "" {
		req.FileFormat = strings.TrimPrefix(ext, ".")
	}
	return s.client.AddSong(ctx, req)
}

func (s *libraryService) Browse(ctx context.Context, search string, page int) (pb.ListSongsResponse, error) {
	return s.client.ListSongs(ctx, pb.ListSongsRequest{
		Search: search,
		Page:   max(page, 1),
		Limit:  browsePageSize,
		Sort:   "title",
		Order:  "asc",
	})
}

func (s *libraryService) Show(ctx context.Context, id string) (pb.Song, error) {
	return s.client.GetSong(ctx, id)
}

func (s *libraryService) Play(ctx context.Context, id string) (pb.Song, error) {
	return s.client.PlaySong(ctx, id)
}

func (s *libraryService) Favorite(ctx context.Context, id string, on bool) (pb.Song, error) {
	return s.client.UpdateSong(ctx, pb.UpdateSongRequest{ID: id, IsFavorite: &on})
}

func (s *libraryService) Rate(ctx context.Context, id string, rating int) (pb.Song, error) {
	if rating == 0 {
		return s.client.UpdateSong(ctx, pb.UpdateSongRequest{ID: id, ClearRating: true})
	}
	return s.client.UpdateSong(ctx, pb.UpdateSongRequest{ID: id, Rating: &rating})
}

func (s *libraryService) Delete(ctx context.Context, id string) (pb.Song, error) {
	return s.client.DeleteSong(ctx, id)
}
