package authrpc

import "time"

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// Account is the public view of an account. It never carries the password hash.
type Account struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Username      *string   `json:"username,omitempty"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CompanyID     *int64    `json:"company_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Account     *Account `json:"account"`
	Message     string   `json:"message"`
	MailWarning string   `json:"mail_warning,omitempty"`
}

// LoginRequest identifies the account by username or email.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type VerifyEmailResponse struct {
	Account *Account `json:"account"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

// MailResponse is the generic answer of the flows that only send email.
type MailResponse struct {
	Message string `json:"message"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Session describes the caller's validated credential.
type Session struct {
	AccountID int64     `json:"account_id"`
	Name      string    `json:"name"`
	Username  *string   `json:"username,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CompanyID *int64    `json:"company_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ListAccountsResponse struct {
	Accounts []*Account `json:"accounts"`
}

type GetAccountRequest struct {
	ID int64 `json:"id"`
}

type CreateAccountRequest struct {
	Name      string `json:"name"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
	CompanyID *int64 `json:"company_id,omitempty"`
}

type UpdateAccountRequest struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Role      string `json:"role,omitempty"`
	CompanyID *int64 `json:"company_id,omitempty"`
}

type AccountResponse struct {
	Account *Account `json:"account"`
}

type DeleteAccountRequest struct {
	ID int64 `json:"id"`
}
