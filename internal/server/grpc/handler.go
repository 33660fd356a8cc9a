package grpc

import (
	"context"
	"strings"

	pb "github.com/dmitrijs2005/tunekeeper/internal/proto"
	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// normalizeEmail trims and lowercases so lookups and the uniqueness check see
// one spelling per address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := pb.RegisterRequestFrom(in)
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	if req.Email == "" || req.Username == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email, username and password are required")
	}

	account, pair, err := s.auth.Register(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	return authResponse(account, pair), nil
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := pb.LoginRequestFrom(in)
	req.Email = normalizeEmail(req.Email)

	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	account, pair, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	return authResponse(account, pair), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := pb.RefreshRequestFrom(in)
	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token is required")
	}

	pair, err := s.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}

	return pb.Wrap(pb.FieldTokens, tokens(pair).Struct()), nil
}

// Me returns the account resolved by the session-token interceptor.
func (s *GRPCServer) Me(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	account, ok := accountFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing session token")
	}
	return pb.Wrap(pb.FieldAccount, accountView(account).Struct()), nil
}

func authResponse(a *models.Account, pair models.TokenPair) *structpb.Struct {
	return pb.AuthResponse{Account: accountView(a), Tokens: tokens(pair)}.Struct()
}

func accountView(a *models.Account) pb.Account {
	return pb.Account{
		ID:          a.ID,
		Email:       a.Email,
		Username:    a.Username,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
		LastLoginAt: a.LastLoginAt,
	}
}

func tokens(p models.TokenPair) pb.Tokens {
	return pb.Tokens{
		SessionToken:      p.SessionToken,
		RefreshToken:      p.RefreshToken,
		SessionTTLSeconds: p.SessionTTLSeconds,
	}
}
