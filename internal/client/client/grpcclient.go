package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/tunekeeper/internal/common"
	pb "github.com/dmitrijs2005/tunekeeper/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// invalidTokenMessage is what the server answers for a lapsed or rejected
// session token; only this case is worth a refresh.
const invalidTokenMessage = "invalid token"

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *pb.AuthServiceClient
	library     *pb.LibraryServiceClient

	mu     sync.Mutex
	tokens pb.Tokens
}

func withSessionToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.SessionTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

// sessionTokenInterceptor attaches the session token to protected calls and
// refreshes once when the server reports it invalid.
func (s *GRPCClient) sessionTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if !pb.SessionMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	tokens := s.Tokens()
	if tokens.SessionToken == "" {
		return ErrNotLoggedIn
	}

	err := invoker(withSessionToken(ctx, tokens.SessionToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != invalidTokenMessage {
		return err
	}
	if tokens.RefreshToken == "" {
		return err
	}

	if err := s.Refresh(ctx); err != nil {
		return err
	}

	return invoker(withSessionToken(ctx, s.Tokens().SessionToken), method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL. Extra options are appended after the
// defaults, which tests use to plug in an in-memory dialer.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.sessionTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewAuthServiceClient(conn)
	c.library = pb.NewLibraryServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// Tokens returns the current pair.
func (s *GRPCClient) Tokens() pb.Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// SetTokens replaces the current pair; the zero value logs out.
func (s *GRPCClient) SetTokens(t pb.Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
}

func (s *GRPCClient) Register(ctx context.Context, email, username, password string) (pb.Account, error) {
	req := pb.RegisterRequest{Email: email, Username: username, Password: password}
	return s.authenticate(ctx, s.client.Register, req.Struct())
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (pb.Account, error) {
	req := pb.LoginRequest{Email: email, Password: password}
	return s.authenticate(ctx, s.client.Login, req.Struct())
}

type authCall func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error)

func (s *GRPCClient) authenticate(ctx context.Context, call authCall, in *structpb.Struct) (pb.Account, error) {
	out, err := call(ctx, in)
	if err != nil {
		return pb.Account{}, s.mapError(err)
	}

	resp := pb.AuthResponseFrom(out)
	s.SetTokens(resp.Tokens)
	return resp.Account, nil
}

// Refresh exchanges the stored refresh token for a new pair.
func (s *GRPCClient) Refresh(ctx context.Context) error {
	refresh := s.Tokens().RefreshToken
	if refresh == "" {
		return ErrNotLoggedIn
	}

	out, err := s.client.Refresh(ctx, pb.RefreshRequest{RefreshToken: refresh}.Struct())
	if err != nil {
		return s.mapError(err)
	}

	s.SetTokens(pb.TokensFrom(pb.Nested(out, pb.FieldTokens)))
	return nil
}

func (s *GRPCClient) Me(ctx context.Context) (pb.Account, error) {
	out, err := s.client.Me(ctx, &structpb.Struct{})
	if err != nil {
		return pb.Account{}, s.mapError(err)
	}
	return pb.AccountFrom(pb.Nested(out, pb.FieldAccount)), nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return ErrAccountDisabled
	case codes.AlreadyExists:
		return ErrAccountExists
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) AddSong(ctx context.Context, req pb.AddSongRequest) (pb.Song, error) {
	return s.song(s.library.AddSong(ctx, req.Struct()))
}

func (s *GRPCClient) GetSong(ctx context.Context, id string) (pb.Song, error) {
	return s.song(s.library.GetSong(ctx, pb.SongRequest{ID: id}.Struct()))
}

func (s *GRPCClient) UpdateSong(ctx context.Context, req pb.UpdateSongRequest) (pb.Song, error) {
	return s.song(s.library.UpdateSong(ctx, req.Struct()))
}

func (s *GRPCClient) DeleteSong(ctx context.Context, id string) (pb.Song, error) {
	return s.song(s.library.DeleteSong(ctx, pb.SongRequest{ID: id}.Struct()))
}

func (s *GRPCClient) PlaySong(ctx context.Context, id string) (pb.Song, error) {
	return s.song(s.library.PlaySong(ctx, pb.SongRequest{ID: id}.Struct()))
}

func (s *GRPCClient) ListSongs(ctx context.Context, req pb.ListSongsRequest) (pb.ListSongsResponse, error) {
	out, err := s.library.ListSongs(ctx, req.Struct())
	if err != nil {
		return pb.ListSongsResponse{}, s.mapError(err)
	}
	return pb.ListSongsResponseFrom(out), nil
}

// song unwraps the {song: ...} response shared by the single-song methods.
func (s *GRPCClient) song(out *structpb.Struct, err error) (pb.Song, error) {
	if err != nil {
		return pb.Song{}, s.mapError(err)
	}
	return pb.SongFrom(pb.Nested(out, pb.FieldSong)), nil
}
