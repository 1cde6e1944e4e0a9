package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

func testProvider() *LocalProvider {
	cfg := config.IdentityConfig{
		JWTSecret:              "test-secret",
		AccessTokenTTLMinutes:  5,
		RefreshTokenTTLMinutes: 60,
		BcryptCost:             4,
	}
	return NewLocalProvider(cfg, NewMemoryUserRepository())
}

func TestSignUpAndSignIn(t *testing.T) {
	provider := testProvider()
	ctx := context.Background()

	created, err := provider.SignUp(ctx, "a@x.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, created.UserID)
	require.NotEmpty(t, created.AccessToken)
	require.NotEmpty(t, created.RefreshToken)

	session, err := provider.SignIn(ctx, "a@x.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, created.UserID, session.UserID)
	require.Equal(t, "a@x.com", session.Email)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	provider := testProvider()
	ctx := context.Background()

	_, err := provider.SignUp(ctx, "a@x.com", "hunter2")
	require.NoError(t, err)

	_, err = provider.SignUp(ctx, "a@x.com", "other")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInFailures(t *testing.T) {
	provider := testProvider()
	ctx := context.Background()

	_, err := provider.SignIn(ctx, "missing@x.com", "hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = provider.SignUp(ctx, "a@x.com", "hunter2")
	require.NoError(t, err)

	_, err = provider.SignIn(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshValidatesTokenUseAndEmail(t *testing.T) {
	provider := testProvider()
	ctx := context.Background()

	session, err := provider.SignUp(ctx, "a@x.com", "hunter2")
	require.NoError(t, err)

	next, err := provider.Refresh(ctx, "a@x.com", session.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, session.UserID, next.UserID)

	// an access token is not a refresh token
	_, err = provider.Refresh(ctx, "a@x.com", session.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// a token minted for one aggregate cannot refresh another
	_, err = provider.Refresh(ctx, "b@x.com", session.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = provider.Refresh(ctx, "a@x.com", "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5, 60)

	token, expires, err := tm.GenerateToken("user-1", "a@x.com", TokenUseAccess)
	require.NoError(t, err)
	require.False(t, expires.IsZero())

	claims, err := tm.ParseToken(token, TokenUseAccess)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "a@x.com", claims.Email)

	_, err = tm.ParseToken(token, TokenUseRefresh)
	require.Error(t, err)

	other := NewTokenManager("different-secret", 5, 60)
	_, err = other.ParseToken(token, TokenUseAccess)
	require.Error(t, err)
}
