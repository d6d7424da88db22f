package tokens

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
)

// AccessValidator verifies access tokens with nothing but the RSA public
// key. It cannot mint tokens and it cannot check refresh tokens, which is
// exactly the capability a resource service should hold.
type AccessValidator struct {
	publicKey *rsa.PublicKey
	issuer    string
}

var _ Validator = (*AccessValidator)(nil)

// NewAccessValidator builds a verify-only validator. An empty issuer falls
// back to the package default.
func NewAccessValidator(publicKey *rsa.PublicKey, issuer string) (*AccessValidator, error) {
	if publicKey == nil {
		return nil, errors.New("tokens: missing access token public key")
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &AccessValidator{publicKey: publicKey, issuer: issuer}, nil
}

// Validate parses and verifies a presented access token. Failures come
// back as a zero TokenInfo with Valid false.
func (v *AccessValidator) Validate(token string) TokenInfo {
	info, err := extract(token, v.issuer, v.keyFunc)
	if err != nil {
		slog.Debug("access token rejected", "error", err)
		return TokenInfo{}
	}
	return info
}

func (v *AccessValidator) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("tokens: unexpected signing method %q", t.Method.Alg())
	}
	return v.publicKey, nil
}
