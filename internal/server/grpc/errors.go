package grpc

import (
	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a classified service error onto a gRPC status. Unclassified
// errors become a bare Internal status without details.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var code codes.Code
	switch common.KindOf(err) {
	case common.KindValidation:
		code = codes.InvalidArgument
	case common.KindAuthentication:
		code = codes.Unauthenticated
	case common.KindAuthorization:
		code = codes.PermissionDenied
	case common.KindDependency:
		code = codes.Unavailable
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
	return status.Error(code, common.MessageOf(err))
}
