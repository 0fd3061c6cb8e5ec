package grpc

import (
	"context"

	"github.com/dmitrijs2005/medmind-auth/internal/authrpc"
	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
	"github.com/dmitrijs2005/medmind-auth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	msgRegistered   = "account created, check your email to verify it"
	msgMailAccepted = "if the address is registered, an email is on its way"
	msgPasswordSet  = "password updated"
	msgDeleted      = "account deleted"
)

func toAccount(a *models.Account) *authrpc.Account {
	if a == nil {
		return nil
	}
	return &authrpc.Account{
		ID:            a.ID,
		Name:          a.Name,
		Username:      a.Username,
		Email:         a.Email,
		Role:          a.Role.String(),
		EmailVerified: a.EmailVerified,
		CompanyID:     a.CompanyID,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// fail logs unexpected errors and converts err to a status.
func (s *GRPCServer) fail(ctx context.Context, method string, err error) error {
	switch common.KindOf(err) {
	case common.KindDependency, common.KindUnknown:
		s.logger.Error(ctx, "request failed", "method", method, "error", err.Error())
	}
	return toStatus(err)
}

func (s *GRPCServer) actor(ctx context.Context) (services.Actor, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return services.Actor{}, status.Error(codes.Unauthenticated, "missing token")
	}
	return services.ActorFromClaims(claims), nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *authrpc.Empty) (*authrpc.PingResponse, error) {
	return &authrpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *authrpc.RegisterRequest) (*authrpc.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request")

	res, err := s.auth.Register(ctx, services.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, s.fail(ctx, "Register", err)
	}

	return &authrpc.RegisterResponse{
		Account:     toAccount(res.Account),
		Message:     msgRegistered,
		MailWarning: res.MailWarning,
	}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *authrpc.LoginRequest) (*authrpc.LoginResponse, error) {

	res, err := s.auth.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		return nil, s.fail(ctx, "Login", err)
	}

	return &authrpc.LoginResponse{Token: res.Token, Account: toAccount(res.Account)}, nil
}

func (s *GRPCServer) VerifyEmail(ctx context.Context, req *authrpc.VerifyEmailRequest) (*authrpc.VerifyEmailResponse, error) {

	a, err := s.auth.VerifyEmail(ctx, req.Token)
	if err != nil {
		return nil, s.fail(ctx, "VerifyEmail", err)
	}

	return &authrpc.VerifyEmailResponse{Account: toAccount(a)}, nil
}

func (s *GRPCServer) ResendVerification(ctx context.Context, req *authrpc.EmailRequest) (*authrpc.MailResponse, error) {

	if err := s.auth.ResendVerification(ctx, req.Email); err != nil {
		return nil, s.fail(ctx, "ResendVerification", err)
	}

	return &authrpc.MailResponse{Message: msgMailAccepted}, nil
}

func (s *GRPCServer) ForgotPassword(ctx context.Context, req *authrpc.EmailRequest) (*authrpc.MailResponse, error) {

	if err := s.auth.ForgotPassword(ctx, req.Email); err != nil {
		return nil, s.fail(ctx, "ForgotPassword", err)
	}

	return &authrpc.MailResponse{Message: msgMailAccepted}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *authrpc.ResetPasswordRequest) (*authrpc.MessageResponse, error) {

	if err := s.auth.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return nil, s.fail(ctx, "ResetPassword", err)
	}

	return &authrpc.MessageResponse{Message: msgPasswordSet}, nil
}

func (s *GRPCServer) Me(ctx context.Context, req *authrpc.Empty) (*authrpc.Session, error) {

	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	return &authrpc.Session{
		AccountID: claims.AccountID,
		Name:      claims.Name,
		Username:  claims.Username,
		Email:     claims.Email,
		Role:      claims.Role.String(),
		CompanyID: claims.CompanyID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *GRPCServer) ListAccounts(ctx context.Context, req *authrpc.Empty) (*authrpc.ListAccountsResponse, error) {

	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.accounts.List(ctx, actor)
	if err != nil {
		return nil, s.fail(ctx, "ListAccounts", err)
	}

	out := make([]*authrpc.Account, 0, len(list))
	for _, a := range list {
		out = append(out, toAccount(a))
	}
	return &authrpc.ListAccountsResponse{Accounts: out}, nil
}

func (s *GRPCServer) GetAccount(ctx context.Context, req *authrpc.GetAccountRequest) (*authrpc.AccountResponse, error) {

	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}

	a, err := s.accounts.Get(ctx, actor, req.ID)
	if err != nil {
		return nil, s.fail(ctx, "GetAccount", err)
	}

	return &authrpc.AccountResponse{Account: toAccount(a)}, nil
}

func (s *GRPCServer) CreateAccount(ctx context.Context, req *authrpc.CreateAccountRequest) (*authrpc.AccountResponse, error) {

	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}

	a, err := s.accounts.Create(ctx, actor, services.CreateAccountInput{
		Name:      req.Name,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		return nil, s.fail(ctx, "CreateAccount", err)
	}

	return &authrpc.AccountResponse{Account: toAccount(a)}, nil
}

func (s *GRPCServer) UpdateAccount(ctx context.Context, req *authrpc.UpdateAccountRequest) (*authrpc.AccountResponse, error) {

	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}

	a, err := s.accounts.Update(ctx, actor, req.ID, services.UpdateAccountInput{
		Name:      req.Name,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		return nil, s.fail(ctx, "UpdateAccount", err)
	}

	return &authrpc.AccountResponse{Account: toAccount(a)}, nil
}

func (s *GRPCServer) DeleteAccount(ctx context.Context, req *authrpc.DeleteAccountRequest) (*authrpc.MessageResponse, error) {

	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Delete(ctx, actor, req.ID); err != nil {
		return nil, s.fail(ctx, "DeleteAccount", err)
	}

	return &authrpc.MessageResponse{Message: msgDeleted}, nil
}
