// Package ident generates unique string identifiers for tokens and notes.
//
// Identifiers are ULIDs: lexicographically sortable, 26 characters, and safe
// to mint concurrently thanks to a shared monotonic entropy source.
package ident

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrInvalid reports a malformed identifier string.
var ErrInvalid = errors.New("ident: invalid id")

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID string based on the current UTC time.
func New() string {
	return NewAt(time.Now().UTC())
}

// NewAt returns a ULID string for the provided timestamp. Mostly useful in
// tests that need deterministic ordering.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Validate checks that s is a well-formed ULID.
func Validate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return ErrInvalid
	}
	return nil
}
