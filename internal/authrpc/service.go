package authrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "medmind.auth.v1.AuthService"

// FullMethod returns the "/service/method" path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AuthServiceServer is the server API for the auth service.
type AuthServiceServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*VerifyEmailResponse, error)
	ResendVerification(context.Context, *EmailRequest) (*MailResponse, error)
	ForgotPassword(context.Context, *EmailRequest) (*MailResponse, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*MessageResponse, error)
	Me(context.Context, *Empty) (*Session, error)
	ListAccounts(context.Context, *Empty) (*ListAccountsResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*AccountResponse, error)
	CreateAccount(context.Context, *CreateAccountRequest) (*AccountResponse, error)
	UpdateAccount(context.Context, *UpdateAccountRequest) (*AccountResponse, error)
	DeleteAccount(context.Context, *DeleteAccountRequest) (*MessageResponse, error)
}

// UnimplementedAuthServiceServer answers every method with codes.Unimplemented.
type UnimplementedAuthServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedAuthServiceServer) Ping(context.Context, *Empty) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedAuthServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedAuthServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedAuthServiceServer) VerifyEmail(context.Context, *VerifyEmailRequest) (*VerifyEmailResponse, error) {
	return nil, unimplemented("VerifyEmail")
}
func (UnimplementedAuthServiceServer) ResendVerification(context.Context, *EmailRequest) (*MailResponse, error) {
	return nil, unimplemented("ResendVerification")
}
func (UnimplementedAuthServiceServer) ForgotPassword(context.Context, *EmailRequest) (*MailResponse, error) {
	return nil, unimplemented("ForgotPassword")
}
func (UnimplementedAuthServiceServer) ResetPassword(context.Context, *ResetPasswordRequest) (*MessageResponse, error) {
	return nil, unimplemented("ResetPassword")
}
func (UnimplementedAuthServiceServer) Me(context.Context, *Empty) (*Session, error) {
	return nil, unimplemented("Me")
}
func (UnimplementedAuthServiceServer) ListAccounts(context.Context, *Empty) (*ListAccountsResponse, error) {
	return nil, unimplemented("ListAccounts")
}
func (UnimplementedAuthServiceServer) GetAccount(context.Context, *GetAccountRequest) (*AccountResponse, error) {
	return nil, unimplemented("GetAccount")
}
func (UnimplementedAuthServiceServer) CreateAccount(context.Context, *CreateAccountRequest) (*AccountResponse, error) {
	return nil, unimplemented("CreateAccount")
}
func (UnimplementedAuthServiceServer) UpdateAccount(context.Context, *UpdateAccountRequest) (*AccountResponse, error) {
	return nil, unimplemented("UpdateAccount")
}
func (UnimplementedAuthServiceServer) DeleteAccount(context.Context, *DeleteAccountRequest) (*MessageResponse, error) {
	return nil, unimplemented("DeleteAccount")
}

// unary builds a method descriptor that decodes Req and dispatches to call,
// passing through the server's interceptor chain.
func unary[Req, Resp any](name string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc is the grpc.ServiceDesc for AuthServiceServer.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", AuthServiceServer.Ping),
		unary("Register", AuthServiceServer.Register),
		unary("Login", AuthServiceServer.Login),
		unary("VerifyEmail", AuthServiceServer.VerifyEmail),
		unary("ResendVerification", AuthServiceServer.ResendVerification),
		unary("ForgotPassword", AuthServiceServer.ForgotPassword),
		unary("ResetPassword", AuthServiceServer.ResetPassword),
		unary("Me", AuthServiceServer.Me),
		unary("ListAccounts", AuthServiceServer.ListAccounts),
		unary("GetAccount", AuthServiceServer.GetAccount),
		unary("CreateAccount", AuthServiceServer.CreateAccount),
		unary("UpdateAccount", AuthServiceServer.UpdateAccount),
		unary("DeleteAccount", AuthServiceServer.DeleteAccount),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "medmind/auth/v1",
}

// RegisterAuthServiceServer registers srv on s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// AuthServiceClient is the client API for the auth service. Every call uses
// the JSON codec.
type AuthServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) *AuthServiceClient {
	return &AuthServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}

func (c *AuthServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, "Register", in, opts)
}

func (c *AuthServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, "Login", in, opts)
}

func (c *AuthServiceClient) VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*VerifyEmailResponse, error) {
	return invoke[VerifyEmailResponse](ctx, c.cc, "VerifyEmail", in, opts)
}

func (c *AuthServiceClient) ResendVerification(ctx context.Context, in *EmailRequest, opts ...grpc.CallOption) (*MailResponse, error) {
	return invoke[MailResponse](ctx, c.cc, "ResendVerification", in, opts)
}

func (c *AuthServiceClient) ForgotPassword(ctx context.Context, in *EmailRequest, opts ...grpc.CallOption) (*MailResponse, error) {
	return invoke[MailResponse](ctx, c.cc, "ForgotPassword", in, opts)
}

func (c *AuthServiceClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, "ResetPassword", in, opts)
}

func (c *AuthServiceClient) Me(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, "Me", in, opts)
}

func (c *AuthServiceClient) ListAccounts(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListAccountsResponse, error) {
	return invoke[ListAccountsResponse](ctx, c.cc, "ListAccounts", in, opts)
}

func (c *AuthServiceClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, "GetAccount", in, opts)
}

func (c *AuthServiceClient) CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, "CreateAccount", in, opts)
}

func (c *AuthServiceClient) UpdateAccount(ctx context.Context, in *UpdateAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, "UpdateAccount", in, opts)
}

func (c *AuthServiceClient) DeleteAccount(ctx context.Context, in *DeleteAccountRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, "DeleteAccount", in, opts)
}
