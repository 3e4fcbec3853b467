// Package bridge talks to an Azuriom-compatible remote identity service.
//
// Every call is bounded by a concurrency cap and a per-call timeout. Transport
// failures, timeouts and server errors surface as common.ErrProviderUnavailable;
// rejected credentials surface as common.ErrInvalidCredentials.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const (
	authenticatePath = "/api/auth/authenticate"
	verifyPath       = "/api/auth/verify"

	maxResponseSize = 1 << 20
)

var ErrNoBaseURL = errors.New("identity bridge base URL is not configured")

// Identity is a remotely confirmed user.
type Identity struct {
	ID          int64
	Username    string
	UUID        uuid.UUID
	AccessToken string
	Role        string
}

// LoginResult is either a confirmed identity or a pending second factor.
type LoginResult struct {
	Identity   *Identity
	Pending2FA bool
}

type remoteUser struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	UUID        string `json:"uuid"`
	AccessToken string `json:"access_token"`
	Role        *struct {
		Name string `json:"name"`
	} `json:"role"`
}

type remoteStatus struct {
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type Client struct {
	baseURL string
	http    *http.Client
	sem     *semaphore.Weighted
	timeout time.Duration
	logger  logging.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }

func WithTimeout(d time.Duration) Option { return func(cl *Client) { cl.timeout = d } }

func WithMaxConcurrent(n int64) Option {
	return func(cl *Client) { cl.sem = semaphore.NewWeighted(n) }
}

func WithLogger(l logging.Logger) Option { return func(cl *Client) { cl.logger = l } }

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("bad identity bridge URL: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		sem:     semaphore.NewWeighted(16),
		timeout: 10 * time.Second,
		logger:  logging.NopLogger{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Login checks a username/password pair and an optional TOTP code.
func (c *Client) Login(ctx context.Context, login, password, code string) (*LoginResult, error) {
	body := map[string]string{"email": login, "password": password}
	if code != "" {
		body["code"] = code
	}

	u, st, err := c.post(ctx, authenticatePath, body)
	if err != nil {
		return nil, err
	}
	if st != nil {
		if st.Status == "pending" && st.Reason == "2fa" {
			return &LoginResult{Pending2FA: true}, nil
		}
		return nil, c.rejected(ctx, "authenticate", st)
	}

	id, err := u.identity()
	if err != nil {
		return nil, err
	}
	return &LoginResult{Identity: id}, nil
}

// Verify asks the remote service whether a remote access token is still valid.
func (c *Client) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	u, st, err := c.post(ctx, verifyPath, map[string]string{"access_token": accessToken})
	if err != nil {
		return nil, err
	}
	if st != nil {
		return nil, c.rejected(ctx, "verify", st)
	}
	return u.identity()
}

func (c *Client) rejected(ctx context.Context, op string, st *remoteStatus) error {
	c.logger.Debug(ctx, "remote rejected request", "op", op, "reason", st.Reason, "message", st.Message)
	if st.Reason == "maintenance" {
		return fmt.Errorf("%w: remote maintenance", common.ErrProviderUnavailable)
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidCredentials, st.Reason)
}

func (u *remoteUser) identity() (*Identity, error) {
	id, err := uuid.Parse(u.UUID)
	if err != nil || u.Username == "" {
		return nil, fmt.Errorf("%w: malformed remote user", common.ErrProviderUnavailable)
	}
	ident := &Identity{ID: u.ID, Username: u.Username, UUID: id, AccessToken: u.AccessToken}
	if u.Role != nil {
		ident.Role = u.Role.Name
	}
	return ident, nil
}

// post returns either the decoded user or the remote status object.
func (c *Client) post(ctx context.Context, path string, payload any) (*remoteUser, *remoteStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}
	defer c.sem.Release(1)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "identity service unreachable", "path", path, "error", err)
		return nil, nil, fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn(ctx, "identity service error", "path", path, "status", resp.StatusCode)
		return nil, nil, fmt.Errorf("%w: remote status %d", common.ErrProviderUnavailable, resp.StatusCode)
	}

	var st remoteStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}
	if st.Status != "" && st.Status != "success" {
		return nil, &st, nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &remoteStatus{Status: "error", Reason: http.StatusText(resp.StatusCode)}, nil
	}

	var u remoteUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}
	return &u, nil, nil
}
