// Package store defines the repository contracts the services depend on.
// Concrete drivers live in subpackages; the reference driver is the
// in-memory one under store/memory.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// UserRecord is the per-user credential state. The refresh token fields
// together decide whether a presented refresh token is still live: it must
// carry the current RefreshTokenID and TokenValid must be true.
type UserRecord struct {
	Username     string
	PasswordHash string // argon2 encoded

	// RefreshTokenID identifies the single refresh token currently live
	// for this user. Overwritten on every signin.
	RefreshTokenID string

	// TokenValid is flipped to false on signout, revoking the current
	// refresh token without touching RefreshTokenID.
	TokenValid bool
}

// NoteRecord is one stored note, owned by the user who created it.
type NoteRecord struct {
	ID        string
	Owner     string
	Title     string
	Body      string
	CreatedAt time.Time
}

// Users is the credential store. Per-key operations must be atomic with
// respect to each other so concurrent signin/signout/refresh for one
// username cannot interleave partial updates.
type Users interface {
	// PutIfAbsent inserts the record only when the username is free and
	// reports whether it inserted. This is the signup primitive: a single
	// conditional insert instead of check-then-act.
	PutIfAbsent(ctx context.Context, record UserRecord) (bool, error)

	// Get returns the record for username or ErrNotFound.
	Get(ctx context.Context, username string) (UserRecord, error)

	// Put unconditionally replaces the record for record.Username.
	Put(ctx context.Context, record UserRecord) error
}

// Notes is the note store. Ownership filtering is the caller's concern;
// the store is plain keyed access.
type Notes interface {
	// Put inserts or replaces a note by id.
	Put(ctx context.Context, record NoteRecord) error

	// Get returns the note with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (NoteRecord, error)

	// ListByOwner returns all notes owned by username, oldest first.
	ListByOwner(ctx context.Context, username string) ([]NoteRecord, error)

	// Delete removes the note with the given id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}
