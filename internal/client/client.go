// Package client talks to the portfolio server's auth and admin API and
// keeps the signed-in session. It implements session.Backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/session"
)

// refreshLeeway refreshes a session slightly before it actually expires.
const refreshLeeway = 30 * time.Second

const maxResponseBytes = 1 << 20

// SessionStore persists the session between runs.
// Load returns nil, nil when nothing is stored.
type SessionStore interface {
	Load() (*domain.Session, error)
	Save(s *domain.Session) error
	Clear() error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore
	logger     *slog.Logger
	now        func() time.Time

	// mu is the session lock. Listeners run while it is held.
	mu      sync.Mutex
	session *domain.Session
	loaded  bool

	lmu       sync.Mutex
	listeners map[int]func(session.Event)
	nextID    int
}

// New returns a client for the server at baseURL. store may be nil, in
// which case the session lives only in memory.
func New(baseURL string, httpClient *http.Client, store SessionStore, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		store:      store,
		logger:     logger.With("component", "auth_client"),
		now:        time.Now,
		listeners:  make(map[int]func(session.Event)),
	}
}

func (c *Client) OnAuthStateChange(fn func(session.Event)) func() {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.lmu.Lock()
			defer c.lmu.Unlock()
			delete(c.listeners, id)
		})
	}
}

// CurrentSession returns the session, refreshing it first if it has
// expired. A refresh the server rejects signs the client out and yields nil.
func (c *Client) CurrentSession(ctx context.Context) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.currentLocked(ctx)
	if err != nil || sess == nil {
		return nil, err
	}
	cp := *sess
	return &cp, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var sess domain.Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &sess); err != nil {
		return nil, err
	}
	return c.replaceSession(&sess, session.EventSignedIn)
}

func (c *Client) SignUp(ctx context.Context, email, password, inviteCode string) (*domain.Session, error) {
	var sess domain.Session
	body := map[string]string{"email": email, "password": password, "invite_code": inviteCode}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &sess); err != nil {
		return nil, err
	}
	return c.replaceSession(&sess, session.EventSignedIn)
}

// SignOut revokes the session on the server and forgets it locally. The
// local session is dropped even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(); err != nil {
		return err
	}
	if c.session == nil {
		return nil
	}

	var remoteErr error
	if err := c.do(ctx, http.MethodPost, "/auth/v1/logout", c.session.AccessToken, nil, nil); err != nil && !isAuthFailure(err) {
		remoteErr = fmt.Errorf("sign out: %w", err)
	}
	if err := c.setLocked(nil, session.EventSignedOut); err != nil {
		return err
	}
	return remoteErr
}

// ResetPassword asks the server to email a recovery link. The server
// answers the same whether or not the address is known.
func (c *Client) ResetPassword(ctx context.Context, email, redirectTo string) error {
	body := map[string]string{"email": email}
	if redirectTo != "" {
		body["redirect_to"] = redirectTo
	}
	return c.do(ctx, http.MethodPost, "/auth/v1/recover", "", body, nil)
}

// VerifyRecovery exchanges a recovery token from an emailed link for a
// session that may set a new password.
func (c *Client) VerifyRecovery(ctx context.Context, token string) (*domain.Session, error) {
	var sess domain.Session
	body := map[string]string{"type": "recovery", "token": token}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/verify", "", body, &sess); err != nil {
		return nil, err
	}
	return c.replaceSession(&sess, session.EventPasswordRecovery)
}

func (c *Client) UpdatePassword(ctx context.Context, newPassword string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.currentLocked(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return domain.ErrUnauthorized
	}

	var identity domain.Identity
	body := map[string]string{"password": newPassword}
	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", sess.AccessToken, body, &identity); err != nil {
		return err
	}

	updated := *sess
	updated.User = identity
	updated.Recovery = false
	return c.setLocked(&updated, session.EventUserUpdated)
}

// HasRole asks the server whether the signed-in user holds role. The server
// only answers for the caller, so userID must be the session's user.
func (c *Client) HasRole(ctx context.Context, userID string, role domain.Role) (bool, error) {
	sess, err := c.CurrentSession(ctx)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, domain.ErrUnauthorized
	}
	if sess.User.ID != userID {
		return false, fmt.Errorf("role lookup for %s: not the signed-in user", userID)
	}

	var resp struct {
		Role    domain.Role `json:"role"`
		Granted bool        `json:"granted"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/v1/roles/"+url.PathEscape(string(role)), sess.AccessToken, nil, &resp); err != nil {
		return false, err
	}
	return resp.Granted, nil
}

// User fetches the signed-in identity from the server.
func (c *Client) User(ctx context.Context) (domain.Identity, error) {
	var identity domain.Identity
	err := c.authed(ctx, http.MethodGet, "/auth/v1/user", nil, &identity)
	return identity, err
}

func (c *Client) replaceSession(sess *domain.Session, ev session.EventType) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	if err := c.setLocked(sess, ev); err != nil {
		return nil, err
	}
	cp := *sess
	return &cp, nil
}

func (c *Client) loadLocked() error {
	if c.loaded {
		return nil
	}
	c.loaded = true
	if c.store == nil {
		return nil
	}
	sess, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	c.session = sess
	return nil
}

func (c *Client) currentLocked(ctx context.Context) (*domain.Session, error) {
	if err := c.loadLocked(); err != nil {
		return nil, err
	}
	if c.session == nil {
		return nil, nil
	}
	if c.now().Add(refreshLeeway).Before(c.session.ExpiresAt) {
		return c.session, nil
	}

	var refreshed domain.Session
	body := map[string]string{"refresh_token": c.session.RefreshToken}
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", body, &refreshed)
	if err != nil {
		if isAuthFailure(err) {
			c.logger.InfoContext(ctx, "session refresh rejected, signing out", "error", err)
			return nil, c.setLocked(nil, session.EventSignedOut)
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if err := c.setLocked(&refreshed, session.EventTokenRefreshed); err != nil {
		return nil, err
	}
	return c.session, nil
}

// setLocked stores sess and notifies listeners. The caller holds mu.
func (c *Client) setLocked(sess *domain.Session, ev session.EventType) error {
	c.session = sess

	var storeErr error
	if c.store != nil {
		if sess == nil {
			storeErr = c.store.Clear()
		} else {
			storeErr = c.store.Save(sess)
		}
		if storeErr != nil {
			storeErr = fmt.Errorf("persist session: %w", storeErr)
		}
	}

	c.emitLocked(ev)
	return storeErr
}

func (c *Client) emitLocked(ev session.EventType) {
	event := session.Event{Type: ev}
	if c.session != nil {
		cp := *c.session
		event.Session = &cp
	}

	c.lmu.Lock()
	fns := make([]func(session.Event), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.lmu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// authed sends a request with the current access token.
func (c *Client) authed(ctx context.Context, method, path string, in, out any) error {
	sess, err := c.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return domain.ErrUnauthorized
	}
	return c.do(ctx, method, path, sess.AccessToken, in, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ session.Backend = (*Client)(nil)
