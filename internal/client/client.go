// Package client is a gRPC client for the auth service. It keeps the session
// credential returned by Login and attaches it to subsequent calls.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/medmind-auth/internal/authrpc"
	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// RemoteError carries the server's message for rejected requests.
type RemoteError struct {
	Code    codes.Code
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *authrpc.AuthServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// New dials endpointURL. Extra options are appended to the defaults
// (insecure transport, token interceptor).
func New(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = authrpc.NewAuthServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// Token returns the current session credential, if any.
func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetToken replaces the session credential.
func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &authrpc.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, req *authrpc.RegisterRequest) (*authrpc.RegisterResponse, error) {
	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

// Login authenticates and keeps the returned credential for later calls.
func (s *GRPCClient) Login(ctx context.Context, identifier, password string) (*authrpc.Account, error) {
	resp, err := s.client.Login(ctx, &authrpc.LoginRequest{Identifier: identifier, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.SetToken(resp.Token)
	return resp.Account, nil
}

func (s *GRPCClient) VerifyEmail(ctx context.Context, token string) (*authrpc.Account, error) {
	resp, err := s.client.VerifyEmail(ctx, &authrpc.VerifyEmailRequest{Token: token})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Account, nil
}

func (s *GRPCClient) ForgotPassword(ctx context.Context, email string) (*authrpc.MailResponse, error) {
	resp, err := s.client.ForgotPassword(ctx, &authrpc.EmailRequest{Email: email})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) ResetPassword(ctx context.Context, token, password string) error {
	_, err := s.client.ResetPassword(ctx, &authrpc.ResetPasswordRequest{Token: token, Password: password})
	return s.mapError(err)
}

func (s *GRPCClient) Me(ctx context.Context) (*authrpc.Session, error) {
	resp, err := s.client.Me(ctx, &authrpc.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) ListAccounts(ctx context.Context) ([]*authrpc.Account, error) {
	resp, err := s.client.ListAccounts(ctx, &authrpc.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Accounts, nil
}

func (s *GRPCClient) CreateAccount(ctx context.Context, req *authrpc.CreateAccountRequest) (*authrpc.Account, error) {
	resp, err := s.client.CreateAccount(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Account, nil
}

func (s *GRPCClient) UpdateAccount(ctx context.Context, req *authrpc.UpdateAccountRequest) (*authrpc.Account, error) {
	resp, err := s.client.UpdateAccount(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Account, nil
}

func (s *GRPCClient) DeleteAccount(ctx context.Context, id int64) error {
	_, err := s.client.DeleteAccount(ctx, &authrpc.DeleteAccountRequest{ID: id})
	return s.mapError(err)
}

// mapError turns transport failures into ErrUnavailable, credential and
// permission failures into wrapped ErrUnauthorized / ErrForbidden and
// anything else into a *RemoteError.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	remote := &RemoteError{Code: st.Code(), Message: st.Message()}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %w", ErrUnavailable, remote)
	default:
		return remote
	}
}
