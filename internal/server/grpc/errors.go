package grpc

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service error kinds to gRPC statuses. Unauthorized never
// carries detail; store and crypto failures hide their cause.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorInvalidInput):
		return invalidArgument(err)
	case errors.Is(err, common.ErrorConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorStoreFailure):
		return status.Error(codes.Unavailable, "store unavailable")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func invalidArgument(err error) error {
	st := status.New(codes.InvalidArgument, err.Error())
	br := &errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{{
			Field:       fieldOf(err.Error()),
			Description: err.Error(),
		}},
	}
	if withDetails, derr := st.WithDetails(br); derr == nil {
		st = withDetails
	}
	return st.Err()
}

func fieldOf(msg string) string {
	for _, f := range []string{"email", "password", "role", "account id"} {
		if strings.Contains(msg, f) {
			return strings.ReplaceAll(f, " ", "_")
		}
	}
	return ""
}
