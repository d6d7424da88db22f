// Package tokens issues and validates the two JWT families of the
// authentication service: short-lived RSA-signed access tokens and
// long-lived HMAC-signed refresh tokens.
//
// The two families never share a verification path. An access token can
// only be checked against the RSA public key and a refresh token only
// against the symmetric secret, so presenting one where the other is
// expected always fails.
package tokens

import "time"

// Type selects which token family an operation works on.
type Type string

const (
	Access  Type = "ACCESS"
	Refresh Type = "REFRESH"
)

// Default lifetimes for the two token families.
const (
	// DefaultAccessTTL keeps access tokens short-lived so a leaked token
	// ages out quickly.
	DefaultAccessTTL = time.Hour

	// DefaultRefreshTTL bounds how long a session can go idle before the
	// user has to sign in again.
	DefaultRefreshTTL = 10 * 24 * time.Hour
)

// DefaultIssuer is stamped into the "iss" claim unless overridden.
const DefaultIssuer = "auth-backend"

// TokenInfo describes one token, either freshly issued or extracted from
// a presented string. Valid is false whenever the token failed signature,
// expiry, type or issuer checks; the other fields are zero in that case
// so callers cannot accidentally trust claims from a bad token.
type TokenInfo struct {
	// Token is the compact JWT string.
	Token string

	// ID is the unique token identifier from the "jti" claim.
	ID string

	// Subject is the username the token was issued to.
	Subject string

	// Valid reports whether the token passed verification.
	Valid bool
}

// Provider issues and inspects both token families. Implementations must
// be safe for concurrent use.
type Provider interface {
	// Issue signs a new token of the given type for subject.
	Issue(subject string, typ Type) (TokenInfo, error)

	// Extract parses and verifies a presented token against the given
	// type. It never returns an error: a token that fails any check comes
	// back with Valid set to false.
	Extract(token string, typ Type) TokenInfo
}

// Validator verifies access tokens only. It needs no private material, so
// resource services can check tokens without being able to mint them.
type Validator interface {
	// Validate parses and verifies a presented access token.
	Validate(token string) TokenInfo
}
