// Package backendhttp talks to the pentopublic REST backend.
package backendhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"

	domainauth "github.com/pentopublic/pentopublic-client/internal/domain/auth"
	apperrors "github.com/pentopublic/pentopublic-client/internal/errors"
	"github.com/pentopublic/pentopublic-client/internal/ports"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"

	defaultTimeout      = 15 * time.Second
	defaultMessagePath  = "message"
	defaultUserAgent    = "pentopublic-client"
	maxResponseBodySize = 1 << 20

	msgUnreachable = "Unable to reach the server. Please try again."
)

var _ ports.Backend = (*Client)(nil)

// Config configures the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// ErrorMessagePath is a JMESPath expression selecting the displayable message
	// from an error payload.
	ErrorMessagePath string
	UserAgent        string
	HTTPClient       *http.Client
	Logger           *slog.Logger
}

// Client implements ports.Backend over HTTP.
type Client struct {
	base      *url.URL
	http      *http.Client
	msgPath   jmespath.JMESPath
	userAgent string
	logger    *slog.Logger
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL scheme: %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, errors.New("backend URL must include a host")
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	expr := strings.TrimSpace(cfg.ErrorMessagePath)
	if expr == "" {
		expr = defaultMessagePath
	}
	msgPath, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid error message path %q: %w", expr, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("cookie jar: %w", jarErr)
		}
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:      base,
		http:      httpClient,
		msgPath:   msgPath,
		userAgent: userAgent,
		logger:    logger.With("component", "backend"),
	}, nil
}

type loginResponse struct {
	Token string               `json:"token"`
	User  *domainauth.Identity `json:"user"`
}

// Login posts the credentials and decodes the token and user.
// Completeness of the answer is checked by the caller.
func (c *Client) Login(ctx context.Context, in domainauth.LoginInput) (domainauth.SessionRecord, error) {
	body, err := c.post(ctx, loginPath, in, domainauth.MsgLoginFailed)
	if err != nil {
		return domainauth.SessionRecord{}, err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domainauth.SessionRecord{}, apperrors.Transport(domainauth.MsgLoginFailed,
			fmt.Errorf("decode login response: %w", err))
	}
	rec := domainauth.SessionRecord{Token: resp.Token}
	if resp.User != nil {
		rec.Identity = *resp.User
	}
	return rec, nil
}

// Register posts the registration payload. Any JSON answer is kept as Raw.
func (c *Client) Register(ctx context.Context, reg domainauth.Registration) (domainauth.Confirmation, error) {
	body, err := c.post(ctx, registerPath, reg, domainauth.MsgRegistrationFailed)
	if err != nil {
		return domainauth.Confirmation{}, err
	}

	var conf domainauth.Confirmation
	if len(bytes.TrimSpace(body)) > 0 && json.Valid(body) {
		// Plain strings and arrays are acceptable confirmations too.
		_ = json.Unmarshal(body, &conf)
		conf.Raw = json.RawMessage(body)
	}
	return conf, nil
}

// Authorized returns an HTTP client that sends token as a bearer credential
// on every request and shares this client's transport.
func (c *Client) Authorized(ctx context.Context, token string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

// Fetch performs an authorised GET against a backend path and returns the raw answer.
func (c *Client) Fetch(ctx context.Context, token, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	c.decorate(req)

	resp, err := c.Authorized(ctx, token).Do(req)
	if err != nil {
		return 0, nil, apperrors.Transport(msgUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return resp.StatusCode, nil, apperrors.Transport(msgUnreachable, fmt.Errorf("read body: %w", err))
	}
	return resp.StatusCode, body, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, fallback string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, fallback)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, fallback)
	}
	req.Header.Set("Content-Type", "application/json")
	reqID := c.decorate(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed",
			"path", path, "request_id", reqID, "error", err)
		return nil, apperrors.Transport(fallback, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, apperrors.Transport(fallback, fmt.Errorf("read body: %w", err))
	}
	c.logger.DebugContext(ctx, "backend request",
		"path", path, "status", resp.StatusCode, "request_id", reqID,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.AppError{
			Code:    apperrors.ErrCodeCredential,
			Message: c.errorMessage(body, fallback),
			Cause:   fmt.Errorf("%s returned status %d", path, resp.StatusCode),
		}
	}
	return body, nil
}

// errorMessage extracts the displayable message from an error payload.
func (c *Client) errorMessage(body []byte, fallback string) string {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fallback
	}
	v, err := c.msgPath.Search(doc)
	if err != nil {
		return fallback
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return fallback
}

func (c *Client) endpoint(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := *c.base
	rel, err := url.Parse(path)
	if err != nil {
		u.Path += path
		return u.String()
	}
	u.Path += rel.Path
	u.RawQuery = rel.RawQuery
	return u.String()
}

func (c *Client) decorate(req *http.Request) string {
	id := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", id)
	return id
}
