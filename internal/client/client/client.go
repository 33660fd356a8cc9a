package client

import (
	"context"

	pb "github.com/dmitrijs2005/tunekeeper/internal/proto"
)

// Client is the API the CLI needs from the server.
type Client interface {
	Close() error
	Register(ctx context.Context, email, username, password string) (pb.Account, error)
	Login(ctx context.Context, email, password string) (pb.Account, error)
	Refresh(ctx context.Context) error
	Me(ctx context.Context) (pb.Account, error)
	Tokens() pb.Tokens
	SetTokens(t pb.Tokens)

	AddSong(ctx context.Context, req pb.AddSongRequest) (pb.Song, error)
	GetSong(ctx context.Context, id string) (pb.Song, error)
	ListSongs(ctx context.Context, req pb.ListSongsRequest) (pb.ListSongsResponse, error)
	UpdateSong(ctx context.Context, req pb.UpdateSongRequest) (pb.Song, error)
	DeleteSong(ctx context.Context, id string) (pb.Song, error)
	PlaySong(ctx context.Context, id string) (pb.Song, error)
}
