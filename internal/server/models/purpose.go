package models

import "fmt"

// Purpose scopes an email token to the flow that may consume it.
type Purpose string

const (
	PurposeEmailVerification Purpose = "email_verification"
	PurposePasswordReset     Purpose = "password_reset"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeEmailVerification, PurposePasswordReset:
		return true
	default:
		return false
	}
}

func (p Purpose) String() string { return string(p) }

// ParsePurpose accepts only the stored purpose names.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown token purpose %q", s)
	}
	return p, nil
}
