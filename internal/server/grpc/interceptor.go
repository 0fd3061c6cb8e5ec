package grpc

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/authrpc"
	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// protectedMethods require a valid bearer credential.
var protectedMethods = map[string]bool{
	authrpc.FullMethod("Me"):            true,
	authrpc.FullMethod("ListAccounts"):  true,
	authrpc.FullMethod("GetAccount"):    true,
	authrpc.FullMethod("CreateAccount"): true,
	authrpc.FullMethod("UpdateAccount"): true,
	authrpc.FullMethod("DeleteAccount"): true,
}

// ClaimsFromContext returns the claims placed by the access token interceptor.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

// bearerFromMetadata reads the credential from the authorization entry, or
// failing that from the token cookie.
func bearerFromMetadata(md metadata.MD) (string, bool) {
	var header, cookie string
	if v := md.Get(common.AuthorizationHeaderName); len(v) > 0 {
		header = v[0]
	}
	for _, line := range md.Get("cookie") {
		cookies, err := http.ParseCookie(line)
		if err != nil {
			continue
		}
		for _, c := range cookies {
			if c.Name == common.TokenCookieName {
				cookie = c.Value
			}
		}
	}
	return auth.PickBearer(header, cookie)
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	md, _ := metadata.FromIncomingContext(ctx)
	token, ok := bearerFromMetadata(md)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, toStatus(err)
	}

	ctx = context.WithValue(ctx, claimsKey, claims)
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start).String())
	return resp, err
}
