package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/tunekeeper/internal/common"
	"github.com/dmitrijs2005/tunekeeper/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrAccountConflict, codes.AlreadyExists},
		{common.ErrAuthFailure, codes.Unauthenticated},
		{common.ErrTokenInvalid, codes.Unauthenticated},
		{common.ErrIdentityNotFound, codes.Unauthenticated},
		{common.ErrAccountDisabled, codes.PermissionDenied},
		{fmt.Errorf("hash password: %w", auth.ErrEmptyPassword), codes.InvalidArgument},
		{fmt.Errorf("hash password: %w", bcrypt.ErrPasswordTooLong), codes.InvalidArgument},
		{common.ErrSongNotFound, codes.NotFound},
		{fmt.Errorf("%w: Title: cannot be blank.", common.ErrValidation), codes.InvalidArgument},
		{fmt.Errorf("lookup account: %w", errors.New("dial tcp: refused")), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			st, ok := status.FromError(toStatus(tt.err))
			assert.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.NotContains(t, st.Message(), "dial tcp")
		})
	}
}

func TestSessionTokenInterceptor_PassesUnprotected(t *testing.T) {
	s := newTestServer(&fakeAuth{}, &fakeResolver{err: errors.New("must not be called")})

	called := false
	h := func(ctx context.Context, req any) (any, error) {
		called = true
		_, ok := accountFromContext(ctx)
		assert.False(t, ok)
		return "ok", nil
	}

	resp, err := s.sessionTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/pkg.Service/Other"}, h)
	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
}
