package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/dmitrijs2005/tunekeeper/internal/common"
	pb "github.com/dmitrijs2005/tunekeeper/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// fakeServer accepts the session tokens in valid and rotates to next on
// Refresh.
type fakeServer struct {
	mu           sync.Mutex
	valid        map[string]bool
	next         pb.Tokens
	refreshErr   error
	refreshCalls int
	seenTokens   []string
	library      *fakeLibrary
}

var alice = pb.Account{ID: "acc-1", Email: "a@x.com", Username: "alice", Active: true}

func (f *fakeServer) Register(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := pb.RegisterRequestFrom(in)
	if req.Email == "taken@x.com" {
		return nil, status.Error(codes.AlreadyExists, "account already exists")
	}
	return pb.AuthResponse{Account: alice, Tokens: pb.Tokens{SessionToken: "s1", RefreshToken: "r1", SessionTTLSeconds: 60}}.Struct(), nil
}

func (f *fakeServer) Login(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := pb.LoginRequestFrom(in)
	switch req.Password {
	case "disabled":
		return nil, status.Error(codes.PermissionDenied, "account disabled")
	case "Passw0rd1":
		return pb.AuthResponse{Account: alice, Tokens: pb.Tokens{SessionToken: "s1", RefreshToken: "r1"}}.Struct(), nil
	default:
		return nil, status.Error(codes.Unauthenticated, "invalid email or password")
	}
}

func (f *fakeServer) Refresh(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	f.valid[f.next.SessionToken] = true
	return pb.Wrap(pb.FieldTokens, f.next.Struct()), nil
}

// checkToken records the session token of ctx and rejects unknown ones.
func (f *fakeServer) checkToken(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	md, _ := metadata.FromIncomingContext(ctx)
	var token string
	if v := md.Get(common.SessionTokenHeaderName); len(v) > 0 {
		token = v[0]
	}
	f.seenTokens = append(f.seenTokens, token)
	if !f.valid[token] {
		return status.Error(codes.Unauthenticated, "invalid token")
	}
	return nil
}

func (f *fakeServer) Me(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := f.checkToken(ctx); err != nil {
		return nil, err
	}
	return pb.Wrap(pb.FieldAccount, alice.Struct()), nil
}

func newTestClient(t *testing.T, srv *fakeServer) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	pb.RegisterAuthServiceServer(gs, srv)
	srv.library = &fakeLibrary{fakeServer: srv}
	pb.RegisterLibraryServiceServer(gs, srv.library)
	go func() { _ = gs.Serve(lis) }()

	c, err := NewGRPCClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		gs.Stop()
	})
	return c
}

func TestRegister_StoresTokens(t *testing.T) {
	c := newTestClient(t, &fakeServer{valid: map[string]bool{}})

	acc, err := c.Register(context.Background(), "a@x.com", "alice", "Passw0rd1")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", acc.ID)
	assert.Equal(t, pb.Tokens{SessionToken: "s1", RefreshToken: "r1", SessionTTLSeconds: 60}, c.Tokens())

	_, err = c.Register(context.Background(), "taken@x.com", "bob", "Passw0rd1")
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestLogin_MapsErrors(t *testing.T) {
	c := newTestClient(t, &fakeServer{valid: map[string]bool{}})

	_, err := c.Login(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Login(context.Background(), "a@x.com", "disabled")
	assert.ErrorIs(t, err, ErrAccountDisabled)

	assert.Empty(t, c.Tokens().SessionToken)

	_, err = c.Login(context.Background(), "a@x.com", "Passw0rd1")
	require.NoError(t, err)
	assert.Equal(t, "s1", c.Tokens().SessionToken)
}

func TestMe_RequiresLogin(t *testing.T) {
	c := newTestClient(t, &fakeServer{valid: map[string]bool{}})

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestMe_SendsSessionToken(t *testing.T) {
	srv := &fakeServer{valid: map[string]bool{"s1": true}}
	c := newTestClient(t, srv)
	c.SetTokens(pb.Tokens{SessionToken: "s1", RefreshToken: "r1"})

	acc, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.Username)
	assert.Equal(t, []string{"s1"}, srv.seenTokens)
	assert.Zero(t, srv.refreshCalls)
}

func TestMe_RefreshesOnceAndRetries(t *testing.T) {
	srv := &fakeServer{
		valid: map[string]bool{},
		next:  pb.Tokens{SessionToken: "s2", RefreshToken: "r2", SessionTTLSeconds: 60},
	}
	c := newTestClient(t, srv)
	c.SetTokens(pb.Tokens{SessionToken: "expired", RefreshToken: "r1"})

	acc, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-1", acc.ID)
	assert.Equal(t, 1, srv.refreshCalls)
	assert.Equal(t, []string{"expired", "s2"}, srv.seenTokens)
	assert.Equal(t, "r2", c.Tokens().RefreshToken)
}

func TestMe_RefreshFailureSurfaces(t *testing.T) {
	srv := &fakeServer{
		valid:      map[string]bool{},
		refreshErr: status.Error(codes.PermissionDenied, "account disabled"),
	}
	c := newTestClient(t, srv)
	c.SetTokens(pb.Tokens{SessionToken: "expired", RefreshToken: "r1"})

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrAccountDisabled)
	assert.Equal(t, 1, srv.refreshCalls)
}

func TestRefresh_NeedsToken(t *testing.T) {
	c := newTestClient(t, &fakeServer{valid: map[string]bool{}})
	assert.ErrorIs(t, c.Refresh(context.Background()), ErrNotLoggedIn)
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	tests := []struct {
		in   error
		want error
	}{
		{status.Error(codes.Unauthenticated, "x"), ErrUnauthorized},
		{status.Error(codes.PermissionDenied, "x"), ErrAccountDisabled},
		{status.Error(codes.AlreadyExists, "x"), ErrAccountExists},
		{status.Error(codes.NotFound, "song not found"), ErrNotFound},
		{status.Error(codes.InvalidArgument, "x"), ErrInvalidInput},
		{status.Error(codes.Unavailable, "x"), ErrUnavailable},
		{status.Error(codes.DeadlineExceeded, "x"), ErrUnavailable},
		{ErrNotLoggedIn, ErrNotLoggedIn},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, c.mapError(tt.in), tt.want)
	}

	other := c.mapError(status.Error(codes.Internal, "internal error"))
	assert.False(t, errors.Is(other, ErrUnauthorized))
	assert.Contains(t, other.Error(), "rpc error")
	assert.NoError(t, c.mapError(nil))
}
