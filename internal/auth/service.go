// Package auth implements the authentication service: signup, signin,
// access-token refresh and signout over the credential store and the
// token provider.
//
// Refresh token lifecycle: each user has at most one live refresh token,
// identified by the RefreshTokenID on their credential record. Signin
// mints a new one and overwrites the id, which silently supersedes the
// previous token. Signout flips TokenValid to false. A plain refresh
// never rotates the refresh token; it only mints a new access token.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/enotes/enotes/internal/store"
	"github.com/enotes/enotes/pkg/cryptox"
	"github.com/enotes/enotes/pkg/slogx"
	"github.com/enotes/enotes/pkg/tokens"
)

type Service struct {
	users    store.Users
	provider tokens.Provider
}

func NewService(users store.Users, provider tokens.Provider) *Service {
	return &Service{users: users, provider: provider}
}

// SignUp registers a new user and returns their first token pair. The
// tokens are minted before the insert; if the username turns out to be
// taken they are simply discarded, never stored.
func (s *Service) SignUp(ctx context.Context, creds Credentials) (AuthenticationToken, error) {
	hash, err := cryptox.HashPassword(creds.Password)
	if err != nil {
		return AuthenticationToken{}, fmt.Errorf("auth: failed to hash password: %w", err)
	}

	pair, refreshID, err := s.issuePair(creds.Username)
	if err != nil {
		return AuthenticationToken{}, err
	}

	inserted, err := s.users.PutIfAbsent(ctx, store.UserRecord{
		Username:       creds.Username,
		PasswordHash:   hash,
		RefreshTokenID: refreshID,
		TokenValid:     true,
	})
	if err != nil {
		return AuthenticationToken{}, fmt.Errorf("auth: failed to store credentials: %w", err)
	}
	if !inserted {
		return AuthenticationToken{}, &AlreadyExistsError{Username: creds.Username}
	}

	slogx.FromContext(ctx).Info("user signed up", "username", creds.Username)
	return pair, nil
}

// SignIn verifies the password and rotates the refresh token: the pair it
// returns carries a fresh refresh token id, and the record overwrite is
// what invalidates whatever refresh token was live before.
func (s *Service) SignIn(ctx context.Context, creds Credentials) (AuthenticationToken, error) {
	record, err := s.users.Get(ctx, creds.Username)
	if errors.Is(err, store.ErrNotFound) {
		return AuthenticationToken{}, errBadCredentials
	}
	if err != nil {
		return AuthenticationToken{}, fmt.Errorf("auth: failed to load credentials: %w", err)
	}

	if err := cryptox.VerifyPassword(creds.Password, record.PasswordHash); err != nil {
		return AuthenticationToken{}, errBadCredentials
	}

	pair, refreshID, err := s.issuePair(creds.Username)
	if err != nil {
		return AuthenticationToken{}, err
	}

	record.RefreshTokenID = refreshID
	record.TokenValid = true
	if err := s.users.Put(ctx, record); err != nil {
		return AuthenticationToken{}, fmt.Errorf("auth: failed to store credentials: %w", err)
	}

	slogx.FromContext(ctx).Info("user signed in", "username", creds.Username)
	return pair, nil
}

// Refresh exchanges a live refresh token for a new access token. The
// refresh token itself is echoed back unchanged.
func (s *Service) Refresh(ctx context.Context, token AuthenticationToken) (AuthenticationToken, error) {
	record, err := s.checkRefreshToken(ctx, token)
	if err != nil {
		return AuthenticationToken{}, err
	}

	access, err := s.provider.Issue(record.Username, tokens.Access)
	if err != nil {
		return AuthenticationToken{}, fmt.Errorf("auth: failed to issue access token: %w", err)
	}

	return AuthenticationToken{
		AccessToken:  access.Token,
		RefreshToken: token.RefreshToken,
	}, nil
}

// SignOut revokes the presented refresh token by flipping TokenValid on
// the credential record. RefreshTokenID is left alone; it is meaningless
// while the record is invalid.
func (s *Service) SignOut(ctx context.Context, token AuthenticationToken) (UserStatus, error) {
	record, err := s.checkRefreshToken(ctx, token)
	if err != nil {
		return UserStatus{}, err
	}

	record.TokenValid = false
	if err := s.users.Put(ctx, record); err != nil {
		return UserStatus{}, fmt.Errorf("auth: failed to store credentials: %w", err)
	}

	slogx.FromContext(ctx).Info("user signed out", "username", record.Username)
	return UserStatus{Username: record.Username, LoggedOut: true}, nil
}

// checkRefreshToken performs the full acceptance check for a presented
// refresh token and returns the matching credential record. All three
// conditions must hold: the codec accepts the token, the record still has
// TokenValid set, and the token id matches the record's current id. The
// id check is what rejects tokens superseded by a later signin.
func (s *Service) checkRefreshToken(ctx context.Context, token AuthenticationToken) (store.UserRecord, error) {
	info := s.provider.Extract(token.RefreshToken, tokens.Refresh)
	if !info.Valid {
		return store.UserRecord{}, errTokenRevoked
	}

	record, err := s.users.Get(ctx, info.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return store.UserRecord{}, errUnknownSubject
	}
	if err != nil {
		return store.UserRecord{}, fmt.Errorf("auth: failed to load credentials: %w", err)
	}

	if !record.TokenValid || record.RefreshTokenID != info.ID {
		return store.UserRecord{}, errTokenRevoked
	}
	return record, nil
}

func (s *Service) issuePair(username string) (AuthenticationToken, string, error) {
	access, err := s.provider.Issue(username, tokens.Access)
	if err != nil {
		return AuthenticationToken{}, "", fmt.Errorf("auth: failed to issue access token: %w", err)
	}
	refresh, err := s.provider.Issue(username, tokens.Refresh)
	if err != nil {
		return AuthenticationToken{}, "", fmt.Errorf("auth: failed to issue refresh token: %w", err)
	}

	return AuthenticationToken{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
	}, refresh.ID, nil
}
