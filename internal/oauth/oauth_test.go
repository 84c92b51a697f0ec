package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"todo-collab/pkg/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// fakeProvider serves a token endpoint and a userinfo endpoint.
func fakeProvider(t *testing.T, profile map[string]any) *Provider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return New(&oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, srv.URL+"/userinfo", "state-key")
}

func TestNewGoogle(t *testing.T) {
	p := NewGoogle("client-id", "client-secret", "http://localhost/callback", "state-key")

	u, err := url.Parse(p.AuthCodeURL("abc"))
	require.NoError(t, err)
	assert.Equal(t, google.Endpoint.AuthURL, u.Scheme+"://"+u.Host+u.Path)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "abc", q.Get("state"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
}

func TestStateRoundTrip(t *testing.T) {
	p := NewGoogle("id", "secret", "http://localhost/cb", "state-key")

	state, cookie, err := p.NewState()
	require.NoError(t, err)
	assert.NoError(t, p.VerifyState(cookie, state))

	assert.ErrorIs(t, p.VerifyState(cookie, state+"x"), ErrStateMismatch)
	assert.ErrorIs(t, p.VerifyState("", state), ErrStateMismatch)
	assert.ErrorIs(t, p.VerifyState("garbage", state), ErrStateMismatch)

	other := NewGoogle("id", "secret", "http://localhost/cb", "other-key")
	assert.ErrorIs(t, other.VerifyState(cookie, state), ErrStateMismatch)

	u, err := url.Parse(p.AuthCodeURL(state))
	require.NoError(t, err)
	assert.Equal(t, state, u.Query().Get("state"))
	assert.Equal(t, "id", u.Query().Get("client_id"))
}

func TestExpiredState(t *testing.T) {
	p := NewGoogle("id", "secret", "http://localhost/cb", "state-key")
	past := strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10)
	cookie, err := crypto.Seal("abc|"+past, "state-key")
	require.NoError(t, err)
	assert.ErrorIs(t, p.VerifyState(cookie, "abc"), ErrStateExpired)
}

func TestExchange(t *testing.T) {
	ctx := context.Background()
	p := fakeProvider(t, map[string]any{
		"email":          "gee@example.com",
		"email_verified": true,
		"name":           "Gee",
		"picture":        "https://img/gee.png",
	})

	profile, err := p.Exchange(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "gee@example.com", profile.Email)
	assert.Equal(t, "Gee", profile.Name)

	_, err = p.Exchange(ctx, "bad-code")
	assert.Error(t, err)
}

func TestExchangeRequiresVerifiedEmail(t *testing.T) {
	p := fakeProvider(t, map[string]any{"email": "gee@example.com", "email_verified": false})
	_, err := p.Exchange(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrUnverifiedEmail)
}
