// Package oauth implements the authorization code flow against Google (or
// any provider with a compatible userinfo endpoint).
package oauth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"todo-collab/pkg/crypto"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// StateCookie holds the sealed state between redirect and callback.
	StateCookie = "oauth_state"
	StateTTL    = 10 * time.Minute

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

var (
	ErrStateMismatch   = errors.New("oauth: state mismatch")
	ErrStateExpired    = errors.New("oauth: state expired")
	ErrUnverifiedEmail = errors.New("oauth: email not verified")
)

// Profile is the subset of the userinfo response we use.
type Profile struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type Provider struct {
	config      *oauth2.Config
	userInfoURL string
	stateKey    string
}

func New(config *oauth2.Config, userInfoURL, stateKey string) *Provider {
	return &Provider{config: config, userInfoURL: userInfoURL, stateKey: stateKey}
}

func NewGoogle(clientID, clientSecret, redirectURL, stateKey string) *Provider {
	return New(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}, googleUserInfoURL, stateKey)
}

// NewState returns a fresh state parameter and the sealed cookie value that
// proves it was issued here.
func (p *Provider) NewState() (state, cookie string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generating state: %w", err)
	}
	state = base64.RawURLEncoding.EncodeToString(buf)

	expires := time.Now().Add(StateTTL).Unix()
	cookie, err = crypto.Seal(state+"|"+strconv.FormatInt(expires, 10), p.stateKey)
	if err != nil {
		return "", "", fmt.Errorf("sealing state: %w", err)
	}
	return state, cookie, nil
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// VerifyState checks the callback's state against the sealed cookie.
func (p *Provider) VerifyState(cookie, state string) error {
	if cookie == "" || state == "" {
		return ErrStateMismatch
	}
	payload, err := crypto.Open(cookie, p.stateKey)
	if err != nil {
		return ErrStateMismatch
	}
	want, expiry, ok := strings.Cut(payload, "|")
	if !ok {
		return ErrStateMismatch
	}
	expires, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return ErrStateMismatch
	}
	if time.Now().Unix() > expires {
		return ErrStateExpired
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(state)) != 1 {
		return ErrStateMismatch
	}
	return nil
}

// Exchange trades the authorization code for a token and fetches the
// profile. Only verified emails are accepted.
func (p *Provider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching userinfo: unexpected status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	if profile.Email == "" || !profile.EmailVerified {
		return nil, ErrUnverifiedEmail
	}
	return &profile, nil
}
