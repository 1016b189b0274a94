package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
	secureTokenURL     = "https://securetoken.googleapis.com/v1/token"
)

var ErrNotSignedIn = errors.New("client: not signed in")

// FirebaseAuth signs in with email and password over the Firebase Auth REST
// API and refreshes ID tokens with the returned refresh token.
type FirebaseAuth struct {
	apiKey     string
	http       *http.Client
	signInURL  string
	refreshURL string

	mu           sync.Mutex
	refreshToken string
}

func NewFirebaseAuth(apiKey string, hc *http.Client) *FirebaseAuth {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &FirebaseAuth{
		apiKey:     apiKey,
		http:       hc,
		signInURL:  identityToolkitURL,
		refreshURL: secureTokenURL,
	}
}

// RefreshToken is the long-lived credential to persist between runs.
func (f *FirebaseAuth) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshToken
}

// Resume restores a refresh token saved by an earlier sign-in.
func (f *FirebaseAuth) Resume(refreshToken string) {
	f.mu.Lock()
	f.refreshToken = refreshToken
	f.mu.Unlock()
}

func (f *FirebaseAuth) SignIn(ctx context.Context, email, password string) (*oauth2.Token, error) {
	var out struct {
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    string `json:"expiresIn"`
	}
	body := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	if err := postJSON(ctx, f.http, f.endpoint(f.signInURL), body, &out); err != nil {
		return nil, fmt.Errorf("firebase sign-in: %w", err)
	}

	f.Resume(out.RefreshToken)
	return newToken(out.IDToken, out.RefreshToken, out.ExpiresIn), nil
}

// FetchToken exchanges the refresh token for a new ID token. It makes
// *FirebaseAuth a session.Provider.
func (f *FirebaseAuth) FetchToken(ctx context.Context) (*oauth2.Token, error) {
	refresh := f.RefreshToken()
	if refresh == "" {
		return nil, ErrNotSignedIn
	}

	form := url.Values{"grant_type": {"refresh_token"}, "refresh_token": {refresh}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint(f.refreshURL), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := doJSON(f.http, req, &out); err != nil {
		return nil, fmt.Errorf("firebase token refresh: %w", err)
	}

	f.Resume(out.RefreshToken)
	return newToken(out.IDToken, out.RefreshToken, out.ExpiresIn), nil
}

func (f *FirebaseAuth) endpoint(base string) string {
	return base + "?key=" + url.QueryEscape(f.apiKey)
}

// LocalProvider refreshes tokens of the local admin account through the API.
type LocalProvider struct {
	c *Client
}

func (c *Client) LocalProvider() *LocalProvider {
	return &LocalProvider{c: c}
}

func (p *LocalProvider) FetchToken(ctx context.Context) (*oauth2.Token, error) {
	if p.c.Token() == "" {
		return nil, ErrNotSignedIn
	}
	sess, err := p.c.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: sess.Token, TokenType: "Bearer", Expiry: sess.ExpiresAt}, nil
}

func newToken(idToken, refreshToken, expiresIn string) *oauth2.Token {
	tok := &oauth2.Token{AccessToken: idToken, RefreshToken: refreshToken, TokenType: "Bearer"}
	if secs, err := strconv.Atoi(expiresIn); err == nil {
		tok.Expiry = time.Now().Add(time.Duration(secs) * time.Second)
	}
	return tok
}
