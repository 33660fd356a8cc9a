package grpc

import (
	"errors"

	"github.com/dmitrijs2005/tunekeeper/internal/common"
	"github.com/dmitrijs2005/tunekeeper/internal/server/auth"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus translates a core error into a gRPC status. Messages for the
// identity kinds are fixed strings and validation failures keep their
// per-field text. Anything unrecognised becomes a generic Internal error so
// storage details never reach the caller.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrAccountConflict):
		return status.Error(codes.AlreadyExists, "account already exists")
	case errors.Is(err, common.ErrAuthFailure):
		return status.Error(codes.Unauthenticated, "invalid email or password")
	case errors.Is(err, common.ErrTokenInvalid):
		return status.Error(codes.Unauthenticated, "invalid token")
	case errors.Is(err, common.ErrIdentityNotFound):
		return status.Error(codes.Unauthenticated, "identity not found")
	case errors.Is(err, common.ErrAccountDisabled):
		return status.Error(codes.PermissionDenied, "account disabled")
	case errors.Is(err, auth.ErrEmptyPassword):
		return status.Error(codes.InvalidArgument, "password is required")
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return status.Error(codes.InvalidArgument, "password is too long")
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrSongNotFound):
		return status.Error(codes.NotFound, "song not found")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
