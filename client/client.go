// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/thinkshare/thinkshare/models"
)

// DefaultRetryDelay is the pause before the single retry of a failed call.
const DefaultRetryDelay = 600 * time.Millisecond

// ErrNotSignedIn is returned by calls that need an access token when the
// session has none.
var ErrNotSignedIn = errors.New("not signed in")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d", e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsTokenExpired reports whether err is the server rejecting an expired
// access token, the only 401 a refresh can cure.
func IsTokenExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.Status == http.StatusUnauthorized &&
		apiErr.Message == models.ExpiredAccessTokenMessage
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the API and keeps the session and article cache current.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
	articles   *ArticleCache
	retryDelay time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client. A cookie jar is added if it has
// none, since the refresh token travels as a cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// New creates a client for the API mounted at baseURL, for example
// http://localhost:8001/api/v1. A nil session starts signed out.
func New(baseURL string, session *Session, opts ...Option) (*Client, error) {
	if session == nil {
		session = NewSession()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    session,
		articles:   &ArticleCache{},
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, oops.Code("CLIENT_INIT_FAILED").Wrap(err)
		}
		c.httpClient.Jar = jar
	}
	if c.retryDelay <= 0 {
		c.retryDelay = DefaultRetryDelay
	}

	return c, nil
}

func (c *Client) Session() *Session { return c.session }

func (c *Client) Articles() *ArticleCache { return c.articles }

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// retryOnce allows a single retry after the configured delay.
func (c *Client) retryOnce() retry.Backoff {
	return retry.WithMaxRetries(1, retry.NewConstant(c.retryDelay))
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	bearer      bool
}

func jsonRequest(method, path string, v any, bearer bool) (request, error) {
	req := request{method: method, path: path, bearer: bearer}
	if v != nil {
		raw, err := json.Marshal(v)
		if err != nil {
			return request{}, oops.Code("CLIENT_ENCODE_FAILED").With("path", path).Wrap(err)
		}
		req.body = bytes.NewReader(raw)
		req.contentType = "application/json"
	}
	return req, nil
}

// FileField is a file attached to a multipart request.
type FileField struct {
	Field    string
	Filename string
	Content  io.Reader
}

func multipartRequest(method, path string, fields map[string]string, file *FileField) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return request{}, oops.Code("CLIENT_ENCODE_FAILED").With("path", path).Wrap(err)
		}
	}
	if file != nil && file.Content != nil {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return request{}, oops.Code("CLIENT_ENCODE_FAILED").With("path", path).Wrap(err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return request{}, oops.Code("CLIENT_ENCODE_FAILED").With("path", path).Wrap(err)
		}
	}
	if err := w.Close(); err != nil {
		return request{}, oops.Code("CLIENT_ENCODE_FAILED").With("path", path).Wrap(err)
	}
	return request{method: method, path: path, body: &buf, contentType: w.FormDataContentType(), bearer: true}, nil
}

// do sends req and decodes the data field of the success envelope into out.
func (c *Client) do(ctx context.Context, req request, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		return oops.Code("CLIENT_REQUEST_FAILED").With("path", req.path).Wrap(err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.bearer {
		token := c.session.AccessToken()
		if token == "" {
			return ErrNotSignedIn
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return oops.Code("CLIENT_REQUEST_FAILED").With("method", req.method).With("path", req.path).Wrap(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return oops.Code("CLIENT_READ_FAILED").With("path", req.path).Wrap(err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body models.ErrorResponse
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return oops.Code("CLIENT_DECODE_FAILED").With("path", req.path).Wrap(err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return oops.Code("CLIENT_DECODE_FAILED").With("path", req.path).Wrap(err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any, bearer bool, out any) error {
	req, err := jsonRequest(method, path, body, bearer)
	if err != nil {
		return err
	}
	return c.do(ctx, req, out)
}

// RegisterParams are the fields of a new account. Avatar is required.
type RegisterParams struct {
	FullName  string
	Email     string
	Password  string
	Bio       string
	Instagram string
	LinkedIn  string
	Avatar    *FileField
}

// Register creates an account and signs in.
func (c *Client) Register(ctx context.Context, p RegisterParams) (*models.User, error) {
	var avatar *FileField
	if p.Avatar != nil {
		a := *p.Avatar
		a.Field = "avatar"
		avatar = &a
	}
	req, err := multipartRequest(http.MethodPost, "/auth/register", map[string]string{
		"fullName":  p.FullName,
		"email":     p.Email,
		"password":  p.Password,
		"bio":       p.Bio,
		"instagram": p.Instagram,
		"linkedin":  p.LinkedIn,
	}, avatar)
	if err != nil {
		return nil, err
	}
	req.bearer = false

	var out models.AuthResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	c.session.Set(&out.User, out.AccessToken)
	return &out.User, nil
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var out models.AuthResponse
	if err := c.send(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, false, &out); err != nil {
		return nil, err
	}
	c.session.Set(&out.User, out.AccessToken)
	return &out.User, nil
}

// Refresh exchanges the refresh cookie for a new access token.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var out models.RefreshResponse
	if err := c.send(ctx, http.MethodPost, "/auth/refresh-token", nil, false, &out); err != nil {
		return "", err
	}
	c.session.SetAccessToken(out.AccessToken)
	return out.AccessToken, nil
}

// Logout revokes the session on the server and clears it locally. An
// expired access token is refreshed and the logout retried once; other
// 401s are returned as is.
func (c *Client) Logout(ctx context.Context) error {
	refreshed := false
	err := retry.Do(ctx, c.retryOnce(), func(ctx context.Context) error {
		err := c.send(ctx, http.MethodPost, "/auth/logout", nil, true, nil)
		if !IsTokenExpired(err) || refreshed {
			return err
		}
		refreshed = true
		slog.DebugContext(ctx, "access token expired, refreshing before logout")
		if _, rerr := c.Refresh(ctx); rerr != nil {
			return rerr
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return err
	}

	c.session.Clear()
	return nil
}

// Me reloads the signed-in user, for session init on start.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.send(ctx, http.MethodGet, "/auth/me", nil, true, &user); err != nil {
		return nil, err
	}
	c.session.SetUser(&user)
	return &user, nil
}

// UpdateProfile sends only the non-nil fields.
func (c *Client) UpdateProfile(ctx context.Context, upd models.UpdateProfileRequest) (*models.User, error) {
	var user models.User
	if err := c.send(ctx, http.MethodPut, "/auth/profile", upd, true, &user); err != nil {
		return nil, err
	}
	c.session.SetUser(&user)
	return &user, nil
}

func (c *Client) UpdateAvatar(ctx context.Context, avatar FileField) (*models.User, error) {
	avatar.Field = "avatar"
	req, err := multipartRequest(http.MethodPost, "/auth/update-avatar", nil, &avatar)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := c.do(ctx, req, &user); err != nil {
		return nil, err
	}
	c.session.SetUser(&user)
	return &user, nil
}
