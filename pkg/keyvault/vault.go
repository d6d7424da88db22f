// Package keyvault creates, persists and reloads the token-signing key
// material: one symmetric secret for refresh tokens, and one RSA key pair
// for access tokens together with a self-signed certificate carrying the
// public key.
//
// Everything lives in a single password-protected container file. The file
// is opened with the container password; the secret and private key inside
// are additionally protected by the key password, so reading the
// certificate (and so the public key) never requires the key password.
package keyvault

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/enotes/enotes/pkg/cryptox"
)

// Entry aliases inside the container.
const (
	aliasSecretKey   = "secretKey"
	aliasPrivateKey  = "privateKey"
	aliasCertificate = "certificate"

	metaSalt  = "salt"
	metaCheck = "check"
)

const (
	secretSize   = 64 // HMAC-SHA512 grade
	rsaBits      = 2048
	saltSize     = 16
	certName     = "auth"
	certValidity = 365 * 24 * time.Hour
)

// checkValue is sealed under the container password on creation; failing to
// open it on load distinguishes a wrong password from corrupt key material.
var checkValue = []byte("enotes/keyvault v1")

// ErrConfig reports missing required vault configuration. It is fatal: the
// service cannot run without a configured container.
var ErrConfig = errors.New("keyvault: missing required configuration")

// Config locates and unlocks the key container.
type Config struct {
	// Path is the container file location.
	Path string

	// StorePassword protects the container as a whole.
	StorePassword string

	// KeyPassword additionally protects the secret and private key entries.
	KeyPassword string
}

func (c Config) validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: container path", ErrConfig)
	}
	if c.StorePassword == "" {
		return fmt.Errorf("%w: container password", ErrConfig)
	}
	if c.KeyPassword == "" {
		return fmt.Errorf("%w: key password", ErrConfig)
	}
	return nil
}

// Material is the loaded key material. It is read-only after startup and
// safe to share across concurrent token operations.
type Material struct {
	// Secret signs and verifies refresh tokens (HMAC).
	Secret []byte

	// PrivateKey signs access tokens.
	PrivateKey *rsa.PrivateKey

	// PublicKey verifies access tokens; derived from Certificate.
	PublicKey *rsa.PublicKey

	// Certificate is the self-signed wrapper around the public key.
	Certificate *x509.Certificate
}

// LoadOrCreate opens the container at cfg.Path and returns its key material.
//
// A missing container file is not an error: fresh keys are generated,
// sealed and persisted exactly once, so every later process pointed at the
// same path and passwords reloads identical material. Any other failure
// (wrong password, corrupt entries, unusable path) is returned to the
// caller and should abort startup.
func LoadOrCreate(ctx context.Context, cfg Config) (*Material, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return create(ctx, cfg)
		}
		return nil, fmt.Errorf("keyvault: failed to stat container: %w", err)
	}
	return load(ctx, cfg)
}

func load(ctx context.Context, cfg Config) (*Material, error) {
	c, err := openContainer(cfg.Path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	salt, err := c.meta(ctx, metaSalt)
	if err != nil {
		return nil, fmt.Errorf("keyvault: container is missing its salt: %w", err)
	}

	storeKey := cryptox.DeriveKey(cfg.StorePassword, salt)
	keyKey := cryptox.DeriveKey(cfg.KeyPassword, salt)

	check, err := c.meta(ctx, metaCheck)
	if err != nil {
		return nil, fmt.Errorf("keyvault: container is missing its check value: %w", err)
	}
	if opened, err := cryptox.Open(storeKey, check); err != nil || string(opened) != string(checkValue) {
		return nil, errors.New("keyvault: incorrect container password")
	}

	secret, err := readSealedEntry(ctx, c, aliasSecretKey, storeKey, keyKey)
	if err != nil {
		return nil, err
	}

	keyPEM, err := readSealedEntry(ctx, c, aliasPrivateKey, storeKey, keyKey)
	if err != nil {
		return nil, err
	}
	privateKey, err := cryptox.ParseRSAKey(keyPEM)
	if err != nil {
		return nil, fmt.Errorf("keyvault: stored private key is unusable: %w", err)
	}

	certSealed, err := c.entry(ctx, aliasCertificate)
	if err != nil {
		return nil, fmt.Errorf("keyvault: failed to read certificate: %w", err)
	}
	certDER, err := cryptox.Open(storeKey, certSealed)
	if err != nil {
		return nil, fmt.Errorf("keyvault: failed to unseal certificate: %w", err)
	}

	return assemble(secret, privateKey, certDER)
}

func create(ctx context.Context, cfg Config) (*Material, error) {
	secret, err := cryptox.GenerateSecret(secretSize)
	if err != nil {
		return nil, err
	}

	keyPEM, err := cryptox.GenerateRSAKey(rsaBits)
	if err != nil {
		return nil, err
	}
	privateKey, err := cryptox.ParseRSAKey(keyPEM)
	if err != nil {
		return nil, err
	}

	certDER, err := cryptox.SelfSignedCertificate(privateKey, certName, certValidity)
	if err != nil {
		return nil, err
	}

	salt, err := cryptox.GenerateSecret(saltSize)
	if err != nil {
		return nil, err
	}
	storeKey := cryptox.DeriveKey(cfg.StorePassword, salt)
	keyKey := cryptox.DeriveKey(cfg.KeyPassword, salt)

	c, err := openContainer(cfg.Path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	check, err := cryptox.Seal(storeKey, checkValue)
	if err != nil {
		return nil, err
	}
	if err := c.setMeta(ctx, metaSalt, salt); err != nil {
		return nil, fmt.Errorf("keyvault: failed to persist salt: %w", err)
	}
	if err := c.setMeta(ctx, metaCheck, check); err != nil {
		return nil, fmt.Errorf("keyvault: failed to persist check value: %w", err)
	}

	if err := writeSealedEntry(ctx, c, aliasSecretKey, storeKey, keyKey, secret); err != nil {
		return nil, err
	}
	if err := writeSealedEntry(ctx, c, aliasPrivateKey, storeKey, keyKey, keyPEM); err != nil {
		return nil, err
	}

	certSealed, err := cryptox.Seal(storeKey, certDER)
	if err != nil {
		return nil, err
	}
	if err := c.putEntry(ctx, aliasCertificate, certSealed); err != nil {
		return nil, fmt.Errorf("keyvault: failed to persist certificate: %w", err)
	}

	return assemble(secret, privateKey, certDER)
}

// readSealedEntry unwraps the two protection layers of a key entry: the
// outer seal under the container password, then the inner seal under the
// key password.
func readSealedEntry(ctx context.Context, c *container, alias string, storeKey, keyKey []byte) ([]byte, error) {
	sealed, err := c.entry(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("keyvault: failed to read %s: %w", alias, err)
	}
	inner, err := cryptox.Open(storeKey, sealed)
	if err != nil {
		return nil, fmt.Errorf("keyvault: failed to unseal %s: %w", alias, err)
	}
	plain, err := cryptox.Open(keyKey, inner)
	if err != nil {
		return nil, fmt.Errorf("keyvault: incorrect key password for %s: %w", alias, err)
	}
	return plain, nil
}

func writeSealedEntry(ctx context.Context, c *container, alias string, storeKey, keyKey, plain []byte) error {
	inner, err := cryptox.Seal(keyKey, plain)
	if err != nil {
		return err
	}
	sealed, err := cryptox.Seal(storeKey, inner)
	if err != nil {
		return err
	}
	if err := c.putEntry(ctx, alias, sealed); err != nil {
		return fmt.Errorf("keyvault: failed to persist %s: %w", alias, err)
	}
	return nil
}

func assemble(secret []byte, privateKey *rsa.PrivateKey, certDER []byte) (*Material, error) {
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("keyvault: stored certificate is unusable: %w", err)
	}
	publicKey, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("keyvault: certificate does not carry an RSA public key")
	}

	return &Material{
		Secret:      secret,
		PrivateKey:  privateKey,
		PublicKey:   publicKey,
		Certificate: cert,
	}, nil
}
