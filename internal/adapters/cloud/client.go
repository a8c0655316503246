// Package cloud implements app.Cloud against the REST API served by `kanban serve`.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
)

const defaultTimeout = 15 * time.Second

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes int64 = 8 << 20

// Client talks to one sync server.
type Client struct {
	base *url.URL
	http *http.Client
}

var _ app.Cloud = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New builds a client for the API rooted at baseURL, e.g. http://127.0.0.1:8080/api/v1.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("cloud url is required")
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse cloud url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("cloud url %q must be http or https", baseURL)
	}
	c := &Client{base: base, http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts credentials and returns the new session.
func (c *Client) Login(ctx context.Context, email, password string) (app.Session, error) {
	var session app.Session
	err := c.doJSON(ctx, http.MethodPost, "auth/login", "", credentials{Email: email, Password: password}, &session)
	return session, err
}

// SignUp creates an account and returns its session.
func (c *Client) SignUp(ctx context.Context, email, password string) (app.Session, error) {
	var session app.Session
	err := c.doJSON(ctx, http.MethodPost, "auth/signup", "", credentials{Email: email, Password: password}, &session)
	return session, err
}

// SendResetLink asks the server to email a reset token.
func (c *Client) SendResetLink(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.doJSON(ctx, http.MethodPost, "auth/reset-link", "", body, nil)
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, email, token, password string) error {
	body := map[string]string{"email": email, "token": token, "password": password}
	return c.doJSON(ctx, http.MethodPost, "auth/reset", "", body, nil)
}

// Sync uploads data as the account's next save.
func (c *Client) Sync(ctx context.Context, session app.Session, data []byte) (app.CloudSave, error) {
	var saved app.CloudSave
	resp, err := c.do(ctx, http.MethodPost, "saves", session.Token, bytes.NewReader(data))
	if err != nil {
		return app.CloudSave{}, err
	}
	defer resp.Body.Close()
	if err := decodeBody(resp, &saved); err != nil {
		return app.CloudSave{}, err
	}
	return saved, nil
}

// ListSaves returns the user's uploaded saves.
func (c *Client) ListSaves(ctx context.Context, session app.Session) ([]app.CloudSave, error) {
	var out struct {
		Saves []app.CloudSave `json:"saves"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "saves", session.Token, nil, &out); err != nil {
		return nil, err
	}
	return out.Saves, nil
}

// FetchSave returns the raw save file.
func (c *Client) FetchSave(ctx context.Context, session app.Session, id string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "saves/"+id, session.Token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}
	return data, nil
}

// Logout ends the session on the server.
func (c *Client) Logout(ctx context.Context, session app.Session) error {
	return c.doJSON(ctx, http.MethodPost, "auth/logout", session.Token, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	resp, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}
	return decodeBody(resp, out)
}

// do sends one request and converts non-2xx responses into errors.
func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader) (*http.Response, error) {
	target := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, errorFrom(resp)
}

func decodeBody(resp *http.Response, out any) error {
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type apiError struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Context map[string]any `json:"context"`
	} `json:"error"`
}

// errorFrom maps a server error envelope back onto the app error kinds.
func errorFrom(resp *http.Response) error {
	var env apiError
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env)
	msg := env.Error.Message
	if msg == "" {
		msg = resp.Status
	}
	switch env.Error.Code {
	case "rate_limited":
		wait := retryAfter(resp, env.Error.Context)
		return &app.RateLimitedError{Op: "send reset link", RetryAfter: wait, Until: time.Now().Add(wait)}
	case "invalid_credentials":
		return app.ErrInvalidCredentials
	case "unauthorized":
		return app.ErrUnauthorized
	case "account_exists":
		return app.ErrAccountExists
	case "invalid_reset_token":
		return app.ErrInvalidResetToken
	case "not_found":
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	case "invalid_request":
		return fmt.Errorf("%w: %s", domain.ErrInputValidation, msg)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		wait := retryAfter(resp, nil)
		return &app.RateLimitedError{Op: "cloud request", RetryAfter: wait, Until: time.Now().Add(wait)}
	}
	return fmt.Errorf("%w: server returned %d: %s", app.ErrIOFailure, resp.StatusCode, msg)
}

func retryAfter(resp *http.Response, ctx map[string]any) time.Duration {
	if v, ok := ctx["retry_after_seconds"].(float64); ok && v > 0 {
		return time.Duration(v) * time.Second
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return app.ResetLinkInterval
}
