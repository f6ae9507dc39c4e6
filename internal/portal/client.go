package portal

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/Undertone0809/ecjtu/internal/domain"
)

// maxRetries is how many times a failed resource request is re-issued after
// the initial attempt. Failures past the budget surface unchanged.
const maxRetries = 5

const requestTimeout = 30 * time.Second

// Credentials bind a client to a student account so lapsed sessions can be
// re-established transparently.
type Credentials struct {
	StudentID string
	Password  string
}

// Client is an authenticated portal client. It owns a cookie jar shared by a
// redirect-following and a redirect-suppressed http client, re-logs in when
// the single-sign-on cookie lapses (if credentials are bound), and retries
// transient request failures a bounded number of times.
//
// Methods are safe for sequential use; a session serves one student.
type Client struct {
	endpoints Endpoints
	jar       *cookiejar.Jar
	creds     *Credentials
	httpc     *http.Client
	bare      *http.Client
	auth      *Authenticator
	logger    *slog.Logger
}

// Option configures a Client during construction.
type Option func(*clientConfig)

type clientConfig struct {
	endpoints Endpoints
	creds     *Credentials
	cookies   []domain.Cookie
	transport http.RoundTripper
	logger    *slog.Logger
}

// WithCredentials binds a student account so the client can log in and
// recover lapsed sessions on its own.
func WithCredentials(studentID, password string) Option {
	return func(cfg *clientConfig) {
		cfg.creds = &Credentials{StudentID: studentID, Password: password}
	}
}

// WithEndpoints overrides the upstream URLs, mainly for tests.
func WithEndpoints(e Endpoints) Option {
	return func(cfg *clientConfig) { cfg.endpoints = e }
}

// WithCookies seeds the jar from a persisted session snapshot. A client built
// from cookies alone cannot re-login; combine with WithCredentials for that.
func WithCookies(cookies []domain.Cookie) Option {
	return func(cfg *clientConfig) { cfg.cookies = cookies }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *clientConfig) { cfg.transport = rt }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = l }
}

// New builds a Client. Without options the client targets the production
// endpoints, holds no credentials and an empty jar.
func New(opts ...Option) (*Client, error) {
	cfg := clientConfig{
		endpoints: DefaultEndpoints(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.transport == nil {
		cfg.transport = &http.Transport{
			// The records host serves a self-signed certificate.
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		endpoints: cfg.endpoints,
		jar:       jar,
		creds:     cfg.creds,
		logger:    cfg.logger,
	}
	c.httpc = &http.Client{
		Jar:       jar,
		Transport: cfg.transport,
		Timeout:   requestTimeout,
	}
	c.bare = &http.Client{
		Jar:       jar,
		Transport: cfg.transport,
		Timeout:   requestTimeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	c.auth = &Authenticator{
		endpoints: cfg.endpoints,
		enc:       &PasswordEncryptor{httpc: c.httpc, url: cfg.endpoints.PasswordEnc},
		redirect:  c.httpc,
		bare:      c.bare,
		logger:    cfg.logger,
	}
	if len(cfg.cookies) > 0 {
		c.SetCookies(cfg.cookies)
	}
	return c, nil
}

// Login runs the full authentication flow with the bound credentials.
func (c *Client) Login(ctx context.Context) error {
	if c.creds == nil {
		return ErrNoCredentials
	}
	return c.auth.Login(ctx, c.creds.StudentID, c.creds.Password)
}

// StudentID returns the bound student id, or "" for a cookie-only client.
func (c *Client) StudentID() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.StudentID
}

// Get issues an authenticated GET against a resource URL, re-establishing the
// session first if needed.
func (c *Client) Get(ctx context.Context, rawurl string) ([]byte, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}
	return c.doWithRetry(ctx, http.MethodGet, rawurl, nil)
}

// PostForm issues an authenticated form POST against a resource URL,
// re-establishing the session first if needed.
func (c *Client) PostForm(ctx context.Context, rawurl string, form url.Values) ([]byte, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}
	return c.doWithRetry(ctx, http.MethodPost, rawurl, form)
}

// ensureSession verifies the single-sign-on cookie is still present and
// re-runs the login flow when it is not. Auth failures here are final; the
// retry budget never applies to them.
func (c *Client) ensureSession(ctx context.Context) error {
	if c.hasTicketGrant() {
		return nil
	}
	if c.creds == nil {
		return ErrSessionExpired
	}
	c.logger.InfoContext(ctx, "session cookie missing, re-running login",
		slog.String("student_id", c.creds.StudentID))
	return c.auth.Login(ctx, c.creds.StudentID, c.creds.Password)
}

// doWithRetry issues the request up to 1+maxRetries times sequentially with
// no backoff and returns the last failure unchanged when the budget runs out.
func (c *Client) doWithRetry(ctx context.Context, method, rawurl string, form url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		body, err := c.doOnce(ctx, method, rawurl, form)
		if err == nil {
			return body, nil
		}
		lastErr = err
		c.logger.WarnContext(ctx, "portal request failed",
			slog.String("method", method),
			slog.String("url", rawurl),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err))
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, method, rawurl string, form url.Values) ([]byte, error) {
	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, rawurl, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: rawurl}
	}
	return io.ReadAll(resp.Body)
}
