package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/common"
	pb "github.com/dmitrijs2005/tunekeeper/internal/proto"
	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accountKey ctxKey = "account"

// protected lists the methods that need a session token.
var protected = pb.SessionMethods

// sessionTokenInterceptor resolves the session token of protected calls and
// stores the live account in the context.
func (s *GRPCServer) sessionTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protected[info.FullMethod] {
		return handler(ctx, req)
	}

	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.SessionTokenHeaderName); len(values) > 0 {
			token = values[0]
		}
	}
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing session token")
	}

	account, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		return nil, toStatus(err)
	}

	return handler(context.WithValue(ctx, accountKey, account), req)
}

func accountFromContext(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(accountKey).(*models.Account)
	return a, ok && a != nil
}

// loggingInterceptor logs one line per call: method, resulting code and
// duration. Requests and responses are not logged since they carry
// credentials and tokens.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "grpc call", args...)
	} else {
		s.logger.Debug(ctx, "grpc call", args...)
	}

	return resp, err
}
