// Package client talks to the portfolio API on behalf of portfolioctl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/internal/auth"
	"github.com/devfolio/portfolio-backend/internal/session"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Session struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token,omitempty"`
}

type Me struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

type Contact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
	Status      string    `json:"status"`
}

// Client keeps the session token both as a bearer credential and in the
// cookie jar, mirroring what a browser session holds.
type Client struct {
	base    *url.URL
	http    *http.Client
	cookies *session.CookieStore
	log     *zap.Logger

	mu    sync.RWMutex
	token string
}

func New(baseURL string, log *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		base:    base,
		http:    &http.Client{Timeout: defaultTimeout, Jar: jar},
		cookies: session.NewCookieStore(jar, base, auth.DefaultCookieName),
		log:     log,
	}, nil
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetAuthCookie stores token as the current credential. It makes *Client a
// session.Sink.
func (c *Client) SetAuthCookie(token string, ttl time.Duration) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	c.cookies.SetAuthCookie(token, ttl)
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	c.cookies.RemoveAuthCookie()
}

// LoginLocal signs in with the local admin account.
func (c *Client) LoginLocal(ctx context.Context, username, password string) (*Session, error) {
	var sess Session
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &sess); err != nil {
		return nil, err
	}
	c.SetAuthCookie(sess.Token, time.Until(sess.ExpiresAt))
	return &sess, nil
}

// ExchangeIDToken turns a provider ID token into an API session.
func (c *Client) ExchangeIDToken(ctx context.Context, idToken string) (*Session, error) {
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/session", map[string]string{"idToken": idToken}, &sess); err != nil {
		return nil, err
	}
	sess.Token = idToken
	c.SetAuthCookie(idToken, time.Until(sess.ExpiresAt))
	return &sess, nil
}

// LoginFirebase signs in against Firebase Auth and opens an API session with
// the resulting ID token.
func (c *Client) LoginFirebase(ctx context.Context, fa *FirebaseAuth, email, password string) (*Session, error) {
	tok, err := fa.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.ExchangeIDToken(ctx, tok.AccessToken)
}

// Refresh re-issues the local provider token.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, &sess); err != nil {
		return nil, err
	}
	c.SetAuthCookie(sess.Token, time.Until(sess.ExpiresAt))
	return &sess, nil
}

// Logout revokes the session server side and always forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodDelete, "/api/auth/session", nil, nil)
	c.clearSession()
	return err
}

func (c *Client) Me(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// Contacts lists contact submissions, newest first.
func (c *Client) Contacts(ctx context.Context) ([]Contact, error) {
	var out struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out.Contacts, nil
}

// KeepFresh refreshes the session token from id on a schedule until the
// returned cancel is called. onToken, when set, sees every refreshed token.
func (c *Client) KeepFresh(ctx context.Context, id session.TokenGetter, interval, ttl time.Duration, onToken func(token string)) (func(), error) {
	var sink session.Sink = c
	if onToken != nil {
		sink = notifyingSink{next: c, fn: onToken}
	}
	return session.SetupTokenRefresh(ctx, id, sink, interval, ttl, c.log)
}

type notifyingSink struct {
	next session.Sink
	fn   func(string)
}

func (s notifyingSink) SetAuthCookie(token string, ttl time.Duration) {
	s.next.SetAuthCookie(token, ttl)
	s.fn(token)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &e); err != nil || e.Error == "" {
		e.Error = strings.TrimSpace(string(raw))
	}
	return &APIError{Status: resp.StatusCode, Message: e.Error}
}
