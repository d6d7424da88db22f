package auth

import "fmt"

// AlreadyExistsError reports a signup against a username that is taken.
// No state is mutated when it is returned.
type AlreadyExistsError struct {
	Username string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("Account with user name %s already exist", e.Username)
}

// AuthenticationError covers every credential and refresh token failure.
// Reason is the user-facing message; it deliberately never distinguishes
// "unknown user" from "wrong password" on signin.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string { return e.Reason }

var (
	errBadCredentials = &AuthenticationError{Reason: "The username or password is incorrect"}
	errUnknownSubject = &AuthenticationError{Reason: "The object you requested does not exist"}
	errTokenRevoked   = &AuthenticationError{Reason: "The provided Refresh Token is either expired or has been revoked"}
)
