package common

// AuthorizationHeaderName is the HTTP header / gRPC metadata key that carries
// the bearer credential.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the authorization scheme prefix expected in front of the token.
const BearerScheme = "Bearer"

// TokenCookieName is the cookie channel equivalent of the authorization header.
const TokenCookieName = "token"
