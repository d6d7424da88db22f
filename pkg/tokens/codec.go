package tokens

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/enotes/enotes/pkg/ident"
)

// Keys carries the signing material for both token families.
type Keys struct {
	// Secret signs and verifies refresh tokens (HS512).
	Secret []byte

	// PrivateKey signs access tokens (RS256).
	PrivateKey *rsa.PrivateKey

	// PublicKey verifies access tokens.
	PublicKey *rsa.PublicKey
}

// Options tunes the issued claims. Zero values fall back to the package
// defaults.
type Options struct {
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec is the full-capability Provider: it holds both the private and
// symmetric key material, so it can mint tokens as well as verify them.
type Codec struct {
	keys   Keys
	issuer string

	accessTTL  time.Duration
	refreshTTL time.Duration
}

var _ Provider = (*Codec)(nil)

// NewCodec validates the key material and builds a Codec.
func NewCodec(keys Keys, opts Options) (*Codec, error) {
	if len(keys.Secret) == 0 {
		return nil, errors.New("tokens: missing refresh token secret")
	}
	if keys.PrivateKey == nil {
		return nil, errors.New("tokens: missing access token private key")
	}
	if keys.PublicKey == nil {
		keys.PublicKey = &keys.PrivateKey.PublicKey
	}

	c := &Codec{
		keys:       keys,
		issuer:     opts.Issuer,
		accessTTL:  opts.AccessTTL,
		refreshTTL: opts.RefreshTTL,
	}
	if c.issuer == "" {
		c.issuer = DefaultIssuer
	}
	if c.accessTTL <= 0 {
		c.accessTTL = DefaultAccessTTL
	}
	if c.refreshTTL <= 0 {
		c.refreshTTL = DefaultRefreshTTL
	}
	return c, nil
}

// Issue signs a fresh token of the given type for subject. Every issued
// token gets its own "jti", which is what lets the caller pin a session to
// one specific refresh token.
func (c *Codec) Issue(subject string, typ Type) (TokenInfo, error) {
	now := time.Now().UTC()

	ttl := c.accessTTL
	if typ == Refresh {
		ttl = c.refreshTTL
	}

	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   subject,
		ID:        ident.New(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	var (
		signed string
		err    error
	)
	switch typ {
	case Access:
		signed, err = jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.keys.PrivateKey)
	case Refresh:
		signed, err = jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(c.keys.Secret)
	default:
		return TokenInfo{}, fmt.Errorf("tokens: unknown token type %q", typ)
	}
	if err != nil {
		return TokenInfo{}, fmt.Errorf("tokens: failed to sign %s token: %w", typ, err)
	}

	return TokenInfo{
		Token:   signed,
		ID:      claims.ID,
		Subject: subject,
		Valid:   true,
	}, nil
}

// Extract parses and verifies token against the given type. Verification
// failures are not errors to the caller: they come back as a zero
// TokenInfo with Valid false, and the reason is logged for operators.
func (c *Codec) Extract(token string, typ Type) TokenInfo {
	info, err := extract(token, c.issuer, c.verifyKey(typ))
	if err != nil {
		slog.Debug("token rejected", "type", typ, "error", err)
		return TokenInfo{}
	}
	return info
}

// Valid reports whether token verifies as the given type.
func (c *Codec) Valid(token string, typ Type) bool {
	return c.Extract(token, typ).Valid
}

func (c *Codec) verifyKey(typ Type) func(*jwt.Token) (any, error) {
	return func(t *jwt.Token) (any, error) {
		switch typ {
		case Access:
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("tokens: unexpected signing method %q", t.Method.Alg())
			}
			return c.keys.PublicKey, nil
		case Refresh:
			if t.Method != jwt.SigningMethodHS512 {
				return nil, fmt.Errorf("tokens: unexpected signing method %q", t.Method.Alg())
			}
			return c.keys.Secret, nil
		default:
			return nil, fmt.Errorf("tokens: unknown token type %q", typ)
		}
	}
}

func extract(token, issuer string, keyFunc jwt.Keyfunc) (TokenInfo, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, keyFunc,
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return TokenInfo{}, err
	}
	if !parsed.Valid {
		return TokenInfo{}, errors.New("tokens: token is not valid")
	}
	if claims.Subject == "" || claims.ID == "" {
		return TokenInfo{}, errors.New("tokens: token is missing required claims")
	}

	return TokenInfo{
		Token:   token,
		ID:      claims.ID,
		Subject: claims.Subject,
		Valid:   true,
	}, nil
}
