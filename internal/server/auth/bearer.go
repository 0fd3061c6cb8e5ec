package auth

import (
	"strings"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
)

// BearerFromHeader extracts the credential from an "Authorization: Bearer x"
// header value. The scheme is matched case-insensitively.
func BearerFromHeader(header string) (string, bool) {
	header = strings.TrimSpace(header)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// PickBearer returns the header credential when present, else the cookie value.
func PickBearer(header, cookie string) (string, bool) {
	if t, ok := BearerFromHeader(header); ok {
		return t, true
	}
	if c := CleanToken(cookie); c != "" {
		return c, true
	}
	return "", false
}
