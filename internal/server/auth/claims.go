// Package auth contains the security primitives of the service: password
// hashing, signed session credentials, bearer extraction and the role
// assignment policy.
package auth

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
	"github.com/dmitrijs2005/medmind-auth/internal/timex"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an issued session credential stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Claim names carried in the token payload.
const (
	claimAccountID = "id"
	claimName      = "name"
	claimUsername  = "username"
	claimEmail     = "email"
	claimRole      = "role"
	claimCompanyID = "company_id"
)

var errEmptySecret = errors.New("signing secret must not be empty")

// Claims is the decoded identity carried by a session credential.
type Claims struct {
	ID        string
	AccountID int64
	Name      string
	Username  *string
	Email     string
	Role      models.Role
	CompanyID *int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ClaimsCodec issues and validates HS256 session credentials.
// It is safe for concurrent use; the secret is fixed at construction.
type ClaimsCodec struct {
	secret []byte
	ttl    time.Duration
	now    timex.Clock
	newID  func() string
}

// CodecOption customizes a ClaimsCodec.
type CodecOption func(*ClaimsCodec)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(clock timex.Clock) CodecOption {
	return func(c *ClaimsCodec) { c.now = clock }
}

// WithTTL overrides DefaultSessionTTL.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *ClaimsCodec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewClaimsCodec returns an HS256 codec keyed by secret. An empty secret is rejected.
func NewClaimsCodec(secret string, opts ...CodecOption) (*ClaimsCodec, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	c := &ClaimsCodec{
		secret: []byte(secret),
		ttl:    DefaultSessionTTL,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue mints a signed credential for account, expiring after the codec TTL.
func (c *ClaimsCodec) Issue(account *models.Account) (string, error) {
	now := c.now()

	mc := jwt.MapClaims{
		"jti":          c.newID(),
		"iat":          jwt.NewNumericDate(now),
		"exp":          jwt.NewNumericDate(now.Add(c.ttl)),
		claimAccountID: account.ID,
		claimName:      account.Name,
		claimUsername:  account.Username,
		claimEmail:     account.Email,
		claimRole:      account.Role.String(),
		claimCompanyID: account.CompanyID,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(c.secret)
}

// CleanToken trims surrounding whitespace and strips one layer of wrapping
// quotes, which transports and cookie jars tend to add.
func CleanToken(raw string) string {
	t := strings.TrimSpace(raw)
	if len(t) >= 2 {
		first, last := t[0], t[len(t)-1]
		if (first == '"' || first == '\'') && first == last {
			t = strings.TrimSpace(t[1 : len(t)-1])
		}
	}
	return t
}

// Validate decodes raw and returns its claims. Checks run in a fixed order
// and each failure maps to its own sentinel: ErrTokenMalformed,
// ErrTokenBadSignature, ErrTokenExpired, ErrTokenInvalidClaims.
func (c *ClaimsCodec) Validate(raw string) (*Claims, error) {
	token := CleanToken(raw)
	if token == "" || len(strings.Split(token, ".")) != 3 {
		return nil, common.ErrTokenMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithJSONNumber(),
		jwt.WithoutClaimsValidation(),
	)

	mc := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(token, mc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, common.ErrTokenMalformed
		}
		return nil, common.ErrTokenBadSignature
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, common.ErrTokenInvalidClaims
	}
	if !c.now().Before(exp.Time) {
		return nil, common.ErrTokenExpired
	}

	return decodeClaims(mc, exp.Time)
}

func decodeClaims(mc jwt.MapClaims, expiresAt time.Time) (*Claims, error) {
	id, ok := int64Claim(mc[claimAccountID])
	if !ok {
		return nil, common.ErrTokenInvalidClaims
	}

	email, _ := mc[claimEmail].(string)
	if email == "" {
		return nil, common.ErrTokenInvalidClaims
	}

	role := models.RoleRegular
	if v, present := mc[claimRole]; present && v != nil {
		s, isString := v.(string)
		if !isString {
			return nil, common.ErrTokenInvalidClaims
		}
		r, err := models.ParseRole(s)
		if err != nil {
			return nil, common.ErrTokenInvalidClaims
		}
		role = r
	}

	claims := &Claims{
		AccountID: id,
		Email:     email,
		Role:      role,
		ExpiresAt: expiresAt,
	}
	claims.ID, _ = mc["jti"].(string)
	claims.Name, _ = mc[claimName].(string)

	if s, ok := mc[claimUsername].(string); ok {
		claims.Username = &s
	}
	if cid, ok := int64Claim(mc[claimCompanyID]); ok {
		claims.CompanyID = &cid
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	return claims, nil
}

func int64Claim(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}
