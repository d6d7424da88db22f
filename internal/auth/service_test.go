package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enotes/enotes/internal/auth"
	"github.com/enotes/enotes/internal/store/memory"
	"github.com/enotes/enotes/pkg/cryptox"
	"github.com/enotes/enotes/pkg/tokens"
)

func newService(t *testing.T) *auth.Service {
	t.Helper()

	secret, err := cryptox.GenerateSecret(64)
	require.NoError(t, err)
	keyPEM, err := cryptox.GenerateRSAKey(2048)
	require.NoError(t, err)
	privateKey, err := cryptox.ParseRSAKey(keyPEM)
	require.NoError(t, err)

	codec, err := tokens.NewCodec(tokens.Keys{
		Secret:     secret,
		PrivateKey: privateKey,
	}, tokens.Options{})
	require.NoError(t, err)

	return auth.NewService(memory.NewUserStore(), codec)
}

func TestSignUpIssuesTokenPair(t *testing.T) {
	svc := newService(t)

	pair, err := svc.SignUp(context.Background(), auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
}

func TestSignUpRejectsDuplicateUsername(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	// A second signup fails regardless of the password used.
	_, err = svc.SignUp(ctx, auth.Credentials{Username: "alice", Password: "different"})
	var exists *auth.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	require.Equal(t, "alice", exists.Username)
	require.EqualError(t, err, "Account with user name alice already exist")
}

func TestSignInMintsFreshTokens(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	signup, err := svc.SignUp(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	signin, err := svc.SignIn(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)
	require.NotEqual(t, signup.AccessToken, signin.AccessToken)
	require.NotEqual(t, signup.RefreshToken, signin.RefreshToken)
}

func TestSignInFailuresAreIndistinguishable(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	_, errWrong := svc.SignIn(ctx, auth.Credentials{Username: "alice", Password: "nope"})
	_, errUnknown := svc.SignIn(ctx, auth.Credentials{Username: "nobody", Password: "nope"})

	require.EqualError(t, errWrong, "The username or password is incorrect")
	require.EqualError(t, errUnknown, "The username or password is incorrect")
}

func TestRefreshEchoesRefreshToken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	pair, err := svc.SignUp(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, pair)
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, refreshed.AccessToken)
	require.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc := newService(t)

	_, err := svc.Refresh(context.Background(), auth.AuthenticationToken{RefreshToken: "not-a-token"})
	require.EqualError(t, err, "The provided Refresh Token is either expired or has been revoked")
}

func TestRefreshRejectsForeignSignature(t *testing.T) {
	svc := newService(t)
	other := newService(t)
	ctx := context.Background()

	// Same username on both services, so only the signature differs.
	_, err := svc.SignUp(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)
	foreign, err := other.SignUp(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, foreign)
	require.EqualError(t, err, "The provided Refresh Token is either expired or has been revoked")
}

func TestSignInSupersedesPreviousRefreshToken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	first, err := svc.SignIn(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)
	second, err := svc.SignIn(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, first)
	require.EqualError(t, err, "The provided Refresh Token is either expired or has been revoked")

	refreshed, err := svc.Refresh(ctx, second)
	require.NoError(t, err)
	require.Equal(t, second.RefreshToken, refreshed.RefreshToken)
}

func TestSignOutRevokesRefreshToken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	pair, err := svc.SignUp(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	status, err := svc.SignOut(ctx, pair)
	require.NoError(t, err)
	require.Equal(t, auth.UserStatus{Username: "alice", LoggedOut: true}, status)

	_, err = svc.Refresh(ctx, pair)
	require.EqualError(t, err, "The provided Refresh Token is either expired or has been revoked")
}

func TestSignOutRejectsRevokedToken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	pair, err := svc.SignUp(ctx, auth.Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	_, err = svc.SignOut(ctx, pair)
	require.NoError(t, err)

	_, err = svc.SignOut(ctx, pair)
	require.EqualError(t, err, "The provided Refresh Token is either expired or has been revoked")
}

// Full session walk-through: signup, signin rotates the refresh token, the
// superseded token dies, the live one refreshes, signout kills it.
func TestSessionLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	creds := auth.Credentials{Username: "John", Password: "122334"}

	signup, err := svc.SignUp(ctx, creds)
	require.NoError(t, err)

	signin, err := svc.SignIn(ctx, creds)
	require.NoError(t, err)
	require.NotEqual(t, signup.AccessToken, signin.AccessToken)
	require.NotEqual(t, signup.RefreshToken, signin.RefreshToken)

	_, err = svc.Refresh(ctx, auth.AuthenticationToken{RefreshToken: signup.RefreshToken})
	require.EqualError(t, err, "The provided Refresh Token is either expired or has been revoked")

	refreshed, err := svc.Refresh(ctx, auth.AuthenticationToken{RefreshToken: signin.RefreshToken})
	require.NoError(t, err)
	require.Equal(t, signin.RefreshToken, refreshed.RefreshToken)
	require.NotEqual(t, signin.AccessToken, refreshed.AccessToken)

	status, err := svc.SignOut(ctx, auth.AuthenticationToken{RefreshToken: signin.RefreshToken})
	require.NoError(t, err)
	require.Equal(t, "John", status.Username)
	require.True(t, status.LoggedOut)

	_, err = svc.Refresh(ctx, auth.AuthenticationToken{RefreshToken: signin.RefreshToken})
	require.EqualError(t, err, "The provided Refresh Token is either expired or has been revoked")
}
