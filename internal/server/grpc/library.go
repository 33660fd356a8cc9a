package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/tunekeeper/internal/proto"
	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// owner returns the account id the interceptor resolved for this call.
func owner(ctx context.Context) (string, error) {
	account, ok := accountFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing session token")
	}
	return account.ID, nil
}

// songID reads and checks the id of GetSong, DeleteSong, PlaySong and
// UpdateSong requests.
func songID(id string) error {
	if err := validation.Validate(id, validation.Required); err != nil {
		return status.Error(codes.InvalidArgument, "id: "+err.Error())
	}
	return nil
}

func (s *GRPCServer) AddSong(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	req := pb.AddSongRequestFrom(in)
	song, err := s.library.AddSong(ctx, ownerID, models.SongInput{
		Title:           req.Title,
		Artist:          req.Artist,
		Album:           req.Album,
		Genre:           req.Genre,
		Year:            req.Year,
		DurationSeconds: req.DurationSeconds,
		FileFormat:      req.FileFormat,
		FilePath:        req.FilePath,
		Lyrics:          req.Lyrics,
	})
	return songResponse(song, err)
}

func (s *GRPCServer) GetSong(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.bySongID(ctx, in, s.library.GetSong)
}

func (s *GRPCServer) DeleteSong(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.bySongID(ctx, in, s.library.DeleteSong)
}

func (s *GRPCServer) PlaySong(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.bySongID(ctx, in, s.library.PlaySong)
}

func (s *GRPCServer) bySongID(ctx context.Context, in *structpb.Struct,
	fn func(ctx context.Context, ownerID, id string) (*models.Song, error)) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	req := pb.SongRequestFrom(in)
	if err := songID(req.ID); err != nil {
		return nil, err
	}

	return songResponse(fn(ctx, ownerID, req.ID))
}

func (s *GRPCServer) ListSongs(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	req := pb.ListSongsRequestFrom(in)
	page, err := s.library.ListSongs(ctx, ownerID, models.SongQuery{
		Filter: models.SongFilter{
			Search:     req.Search,
			Artist:     req.Artist,
			Album:      req.Album,
			Genre:      req.Genre,
			IsFavorite: req.IsFavorite,
			YearFrom:   req.YearFrom,
			YearTo:     req.YearTo,
		},
		Sort:  req.Sort,
		Order: req.Order,
		Page:  req.Page,
		Limit: req.Limit,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	resp := pb.ListSongsResponse{Total: page.Total, Page: page.Page, Limit: page.Limit, Pages: page.Pages()}
	for _, song := range page.Items {
		resp.Items = append(resp.Items, songView(song))
	}
	return resp.Struct(), nil
}

func (s *GRPCServer) UpdateSong(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	req := pb.UpdateSongRequestFrom(in)
	if err := songID(req.ID); err != nil {
		return nil, err
	}

	song, err := s.library.UpdateSong(ctx, ownerID, req.ID, models.SongPatch{
		Title:       req.Title,
		Artist:      req.Artist,
		Album:       req.Album,
		Genre:       req.Genre,
		Year:        req.Year,
		ClearYear:   req.ClearYear,
		Lyrics:      req.Lyrics,
		IsFavorite:  req.IsFavorite,
		Rating:      req.Rating,
		ClearRating: req.ClearRating,
	})
	return songResponse(song, err)
}

func songResponse(song *models.Song, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return pb.Wrap(pb.FieldSong, songView(song).Struct()), nil
}

func songView(s *models.Song) pb.Song {
	return pb.Song{
		ID:              s.ID,
		Title:           s.Title,
		Artist:          s.Artist,
		Album:           s.Album,
		Genre:           s.Genre,
		Year:            s.Year,
		DurationSeconds: s.DurationSeconds,
		FileFormat:      s.FileFormat,
		FilePath:        s.FilePath,
		Lyrics:          s.Lyrics,
		IsFavorite:      s.IsFavorite,
		Rating:          s.Rating,
		PlayCount:       s.PlayCount,
		LastPlayedAt:    s.LastPlayedAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
