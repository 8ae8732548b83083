package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func googleOAuthHandler(t *testing.T, tokenStatus int) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if tokenStatus != http.StatusOK {
			w.WriteHeader(tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "authorization_code":
			_, _ = w.Write([]byte(`{"access_token":"access-1","refresh_token":"refresh-1","expires_in":3600}`))
		case "refresh_token":
			_, _ = w.Write([]byte(`{"access_token":"access-refreshed","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"owner@example.com"}`))
	})
	return mux
}

func TestOAuthCompleteStoresSealedTokens(t *testing.T) {
	e := newEnv(t, googleOAuthHandler(t, http.StatusOK), nil)

	email, err := e.oauth.Complete(context.Background(), "user-1", "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", email)

	settings, err := e.store.GetByUserID("user-1")
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.True(t, settings.Connected())
	require.NotNil(t, settings.RefreshTokenEncrypted)
	require.NotNil(t, settings.TokenExpiry)
	require.NotNil(t, settings.ConnectedEmail)
	assert.Equal(t, "owner@example.com", *settings.ConnectedEmail)

	// Tokens are stored sealed, never in the clear.
	assert.NotContains(t, *settings.AccessTokenEncrypted, "access-1")
	assert.NotContains(t, *settings.RefreshTokenEncrypted, "refresh-1")

	opened, err := e.sealer.OpenEncoded(*settings.AccessTokenEncrypted)
	require.NoError(t, err)
	assert.Equal(t, "access-1", opened)
}

func TestOAuthCompleteExchangeFailure(t *testing.T) {
	e := newEnv(t, googleOAuthHandler(t, http.StatusBadRequest), nil)

	_, err := e.oauth.Complete(context.Background(), "user-1", "bad-code")
	assert.ErrorIs(t, err, ErrExternalService)

	settings, err := e.store.GetByUserID("user-1")
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestOAuthDisconnectClearsTokenFields(t *testing.T) {
	e := newEnv(t, googleOAuthHandler(t, http.StatusOK), nil)

	_, err := e.oauth.Complete(context.Background(), "user-1", "auth-code")
	require.NoError(t, err)

	require.NoError(t, e.oauth.Disconnect("user-1"))

	settings, err := e.store.GetByUserID("user-1")
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.False(t, settings.Connected())
	assert.Nil(t, settings.RefreshTokenEncrypted)
	assert.Nil(t, settings.TokenExpiry)
	assert.Nil(t, settings.ConnectedEmail)
	assert.Nil(t, settings.ConnectedAt)

	_, err = e.oauth.ResolveAccessToken(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolveAccessTokenNotConnected(t *testing.T) {
	e := newEnv(t, nil, nil)

	_, err := e.oauth.ResolveAccessToken(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolveAccessTokenUnexpired(t *testing.T) {
	e := newEnv(t, nil, nil)
	e.connectGoogle("user-1", "access-valid", time.Now().Add(time.Hour))

	token, err := e.oauth.ResolveAccessToken(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "access-valid", token)
}

func TestResolveAccessTokenRefreshesExpired(t *testing.T) {
	e := newEnv(t, googleOAuthHandler(t, http.StatusOK), nil)
	e.connectGoogle("user-1", "access-stale", time.Now().Add(-time.Hour))
	e.setRefreshToken("user-1", "refresh-1")

	token, err := e.oauth.ResolveAccessToken(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "access-refreshed", token)

	// The refreshed token and its new expiry are persisted sealed.
	settings, err := e.store.GetByUserID("user-1")
	require.NoError(t, err)
	opened, err := e.sealer.OpenEncoded(*settings.AccessTokenEncrypted)
	require.NoError(t, err)
	assert.Equal(t, "access-refreshed", opened)
	require.NotNil(t, settings.TokenExpiry)
	assert.True(t, settings.TokenExpiry.After(time.Now()))
}

func TestResolveAccessTokenKeepsStaleOnRefreshFailure(t *testing.T) {
	e := newEnv(t, googleOAuthHandler(t, http.StatusInternalServerError), nil)
	e.connectGoogle("user-1", "access-stale", time.Now().Add(-time.Hour))
	e.setRefreshToken("user-1", "refresh-1")

	token, err := e.oauth.ResolveAccessToken(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "access-stale", token)
}

func TestResolveAccessTokenExpiredWithoutRefreshToken(t *testing.T) {
	e := newEnv(t, nil, nil)
	e.connectGoogle("user-1", "access-stale", time.Now().Add(-time.Hour))

	token, err := e.oauth.ResolveAccessToken(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "access-stale", token)
}

func TestInitiateURLContainsOfflineConsent(t *testing.T) {
	e := newEnv(t, nil, nil)

	authURL := e.oauth.InitiateURL()
	assert.Contains(t, authURL, "access_type=offline")
	assert.Contains(t, authURL, "prompt=consent")
	assert.Contains(t, authURL, "business.manage")
	assert.Contains(t, authURL, "client_id=client-id")
}
