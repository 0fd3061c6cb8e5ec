// Package common defines shared constants and sentinel errors used across
// the auth core. Callers should use errors.Is to match these values and
// KindOf to classify an error for presentation.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("invalid credentials")
	ErrorEmailNotVerified = errors.New("email not verified")

	// Email token errors. Wrong token, wrong purpose, used and expired
	// all collapse into this one value.
	ErrInvalidEmailToken = errors.New("invalid or expired token")

	// Bearer credential rejection reasons, in validation order.
	ErrTokenMalformed     = errors.New("token malformed")
	ErrTokenBadSignature  = errors.New("token signature invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalidClaims = errors.New("token claims invalid")

	// Authorization policy denials.
	ErrInsufficientPrivilege  = errors.New("only administrators can assign manager or admin roles")
	ErrCannotDemoteOtherAdmin = errors.New("cannot remove the admin role from another account")
	ErrForbidden              = errors.New("not allowed to manage other accounts")

	// Mail dispatch.
	ErrMailerNotConfigured = errors.New("mailer not configured")
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Error is a classified error. Message is what a caller may show to the
// end user; Err keeps the underlying cause for errors.Is and logging.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidationError reports malformed input with a specific message.
func NewValidationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NewAuthenticationError reports a failed credential or token check.
func NewAuthenticationError(msg string, err error) error {
	return &Error{Kind: KindAuthentication, Message: msg, Err: err}
}

// NewAuthorizationError reports a policy denial; the reason is the cause.
func NewAuthorizationError(reason error) error {
	return &Error{Kind: KindAuthorization, Message: reason.Error(), Err: reason}
}

// NewDependencyError reports an unavailable collaborator (store, mailer).
func NewDependencyError(msg string, err error) error {
	return &Error{Kind: KindDependency, Message: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-facing message of the first *Error in err's chain,
// falling back to a generic text for unclassified errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return ErrorInternal.Error()
}
