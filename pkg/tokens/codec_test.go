package tokens_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/enotes/enotes/pkg/cryptox"
	"github.com/enotes/enotes/pkg/tokens"
)

func testKeys(t *testing.T) tokens.Keys {
	t.Helper()

	secret, err := cryptox.GenerateSecret(64)
	require.NoError(t, err)

	keyPEM, err := cryptox.GenerateRSAKey(2048)
	require.NoError(t, err)
	privateKey, err := cryptox.ParseRSAKey(keyPEM)
	require.NoError(t, err)

	return tokens.Keys{
		Secret:     secret,
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
	}
}

func newCodec(t *testing.T, opts tokens.Options) *tokens.Codec {
	t.Helper()
	c, err := tokens.NewCodec(testKeys(t), opts)
	require.NoError(t, err)
	return c
}

func TestIssueAndExtractRoundTrip(t *testing.T) {
	codec := newCodec(t, tokens.Options{})

	for _, typ := range []tokens.Type{tokens.Access, tokens.Refresh} {
		t.Run(string(typ), func(t *testing.T) {
			issued, err := codec.Issue("alice", typ)
			require.NoError(t, err)
			require.True(t, issued.Valid)
			require.NotEmpty(t, issued.Token)
			require.NotEmpty(t, issued.ID)
			require.Equal(t, "alice", issued.Subject)

			extracted := codec.Extract(issued.Token, typ)
			require.True(t, extracted.Valid)
			require.Equal(t, issued.ID, extracted.ID)
			require.Equal(t, "alice", extracted.Subject)
		})
	}
}

func TestIssuedTokensHaveUniqueIDs(t *testing.T) {
	codec := newCodec(t, tokens.Options{})

	seen := make(map[string]bool)
	for range 50 {
		issued, err := codec.Issue("alice", tokens.Refresh)
		require.NoError(t, err)
		require.False(t, seen[issued.ID], "duplicate token id %q", issued.ID)
		seen[issued.ID] = true
	}
}

func TestExtractRejectsCrossTypeTokens(t *testing.T) {
	codec := newCodec(t, tokens.Options{})

	access, err := codec.Issue("alice", tokens.Access)
	require.NoError(t, err)
	refresh, err := codec.Issue("alice", tokens.Refresh)
	require.NoError(t, err)

	require.False(t, codec.Extract(access.Token, tokens.Refresh).Valid)
	require.False(t, codec.Extract(refresh.Token, tokens.Access).Valid)
}

func TestExtractRejectsExpiredTokens(t *testing.T) {
	codec := newCodec(t, tokens.Options{
		AccessTTL:  time.Millisecond,
		RefreshTTL: time.Millisecond,
	})

	access, err := codec.Issue("alice", tokens.Access)
	require.NoError(t, err)
	refresh, err := codec.Issue("alice", tokens.Refresh)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	require.False(t, codec.Extract(access.Token, tokens.Access).Valid)
	require.False(t, codec.Extract(refresh.Token, tokens.Refresh).Valid)
}

func TestExtractRejectsGarbage(t *testing.T) {
	codec := newCodec(t, tokens.Options{})

	issued, err := codec.Issue("alice", tokens.Access)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "definitely-not-a-token"},
		{"tampered signature", issued.Token + "x"},
		{"truncated", issued.Token[:len(issued.Token)/2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := codec.Extract(tt.token, tokens.Access)
			require.False(t, info.Valid)
			require.Empty(t, info.ID)
			require.Empty(t, info.Subject)
		})
	}
}

func TestExtractRejectsForeignKeys(t *testing.T) {
	codec := newCodec(t, tokens.Options{})
	other := newCodec(t, tokens.Options{})

	access, err := other.Issue("alice", tokens.Access)
	require.NoError(t, err)
	refresh, err := other.Issue("alice", tokens.Refresh)
	require.NoError(t, err)

	require.False(t, codec.Extract(access.Token, tokens.Access).Valid)
	require.False(t, codec.Extract(refresh.Token, tokens.Refresh).Valid)
}

func TestExtractRejectsForeignIssuer(t *testing.T) {
	keys := testKeys(t)

	issuerA, err := tokens.NewCodec(keys, tokens.Options{Issuer: "auth-backend"})
	require.NoError(t, err)
	issuerB, err := tokens.NewCodec(keys, tokens.Options{Issuer: "someone-else"})
	require.NoError(t, err)

	issued, err := issuerB.Issue("alice", tokens.Access)
	require.NoError(t, err)

	require.False(t, issuerA.Extract(issued.Token, tokens.Access).Valid)
}

// Two codecs sharing key material must accept each other's tokens. This is
// the property that lets a restarted process keep validating tokens issued
// before the restart, as long as the key container survives.
func TestCodecsSharingKeysInteroperate(t *testing.T) {
	keys := testKeys(t)

	first, err := tokens.NewCodec(keys, tokens.Options{})
	require.NoError(t, err)
	second, err := tokens.NewCodec(keys, tokens.Options{})
	require.NoError(t, err)

	access, err := first.Issue("alice", tokens.Access)
	require.NoError(t, err)
	refresh, err := first.Issue("alice", tokens.Refresh)
	require.NoError(t, err)

	require.True(t, second.Extract(access.Token, tokens.Access).Valid)
	require.True(t, second.Extract(refresh.Token, tokens.Refresh).Valid)
}

func TestAccessValidator(t *testing.T) {
	keys := testKeys(t)

	codec, err := tokens.NewCodec(keys, tokens.Options{})
	require.NoError(t, err)
	validator, err := tokens.NewAccessValidator(keys.PublicKey, "")
	require.NoError(t, err)

	access, err := codec.Issue("alice", tokens.Access)
	require.NoError(t, err)
	refresh, err := codec.Issue("alice", tokens.Refresh)
	require.NoError(t, err)

	info := validator.Validate(access.Token)
	require.True(t, info.Valid)
	require.Equal(t, "alice", info.Subject)

	// A refresh token must never pass as an access token, even though the
	// validator holds no refresh secret to check it against.
	require.False(t, validator.Validate(refresh.Token).Valid)
}

func TestNewCodecRequiresKeys(t *testing.T) {
	keys := testKeys(t)

	_, err := tokens.NewCodec(tokens.Keys{PrivateKey: keys.PrivateKey}, tokens.Options{})
	require.Error(t, err)

	_, err = tokens.NewCodec(tokens.Keys{Secret: keys.Secret}, tokens.Options{})
	require.Error(t, err)
}
