package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth-gateway/internal/config"
)

func testConfig(tokenURL, userinfoURL string) config.ProviderConfig {
	return config.ProviderConfig{
		Name:         "kakao",
		AuthURL:      "https://kauth.example.com/oauth/authorize",
		TokenURL:     tokenURL,
		UserinfoURL:  userinfoURL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/auth/kakao/callback",
		IdentityPath: []string{"id"},
	}
}

func TestNewRequiresEndpointsAndCredentials(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://t", "http://u")
	cfg.ClientID = ""
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig("", "http://u")
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestAuthCodeURL(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://t", "http://u")
	cfg.Scopes = []string{"openid", "email"}
	c, err := New(cfg)
	require.NoError(t, err)

	u, err := url.Parse(c.AuthCodeURL("ignored"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:8080/auth/kakao/callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid email", q.Get("scope"))
	// Providers without state must not carry an empty state param.
	assert.False(t, q.Has("state"))
}

func TestAuthCodeURLWithState(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://t", "http://u")
	cfg.UsesState = true
	c, err := New(cfg)
	require.NoError(t, err)

	u, err := url.Parse(c.AuthCodeURL("random-state"))
	require.NoError(t, err)
	assert.Equal(t, "random-state", u.Query().Get("state"))
}

func TestExchangeCode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "abc", r.Form.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"provider-token","token_type":"bearer"}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL, "http://unused"))
	require.NoError(t, err)

	tok, err := c.ExchangeCode(context.Background(), "abc", "")
	require.NoError(t, err)
	assert.Equal(t, "provider-token", tok)
}

func TestExchangeCodeUpstreamFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL, "http://unused"))
	require.NoError(t, err)

	_, err = c.ExchangeCode(context.Background(), "bad-code", "")
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}

func TestExchangeCodeMissingAccessToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL, "http://unused"))
	require.NoError(t, err)

	_, err = c.ExchangeCode(context.Background(), "abc", "")
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}

func TestFetchIdentityNumericID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer provider-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1234567890123,"kakao_account":{}}`))
	}))
	defer srv.Close()

	c, err := New(testConfig("http://unused", srv.URL))
	require.NoError(t, err)

	identity, err := c.FetchIdentity(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, "kakao", identity.Provider)
	assert.Equal(t, "1234567890123", identity.ID)
}

func TestFetchIdentityNestedPath(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"resultcode":"00","response":{"id":"naver-user-1"}}`))
	}))
	defer srv.Close()

	cfg := testConfig("http://unused", srv.URL)
	cfg.Name = "naver"
	cfg.IdentityPath = []string{"response", "id"}
	c, err := New(cfg)
	require.NoError(t, err)

	identity, err := c.FetchIdentity(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, "naver", identity.Provider)
	assert.Equal(t, "naver-user-1", identity.ID)
}

func TestFetchIdentityNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(testConfig("http://unused", srv.URL))
	require.NoError(t, err)

	_, err = c.FetchIdentity(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}

func TestFetchIdentityMissingField(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"something_else":true}`))
	}))
	defer srv.Close()

	c, err := New(testConfig("http://unused", srv.URL))
	require.NoError(t, err)

	_, err = c.FetchIdentity(context.Background(), "provider-token")
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	kakao, err := New(testConfig("http://t", "http://u"))
	require.NoError(t, err)

	reg := NewRegistry(kakao)

	got, err := reg.Get("kakao")
	require.NoError(t, err)
	assert.Same(t, kakao, got)

	_, err = reg.Get("github")
	assert.Error(t, err)

	assert.ElementsMatch(t, []string{"kakao"}, reg.Names())
}
