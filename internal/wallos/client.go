// Package wallos implements the HTTP client for a Wallos-style
// subscription backend: authentication, resource reads, and the write
// endpoints used by the mutation engine. All backend payloads are
// decoded into the typed entities of internal/core at this boundary.
package wallos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"subbridge/internal/config"
	"subbridge/internal/core"
	"subbridge/internal/log"
)

// Client talks to one Wallos instance. It is safe for concurrent use:
// session and API-key state sit behind a mutex, and concurrent logins
// collapse into one in-flight exchange via singleflight.
type Client struct {
	baseURL  string
	username string
	password string

	httpClient *http.Client
	log        *log.Logger

	mu      sync.Mutex
	apiKey  string
	session *session
	login   singleflight.Group
}

// sessionTTL is the fixed lifetime of a login session. The backend does
// not report an expiry, so each login is trusted for one hour.
const sessionTTL = time.Hour

type session struct {
	cookies   []*http.Cookie
	expiresAt time.Time
}

func (s *session) valid(now time.Time) bool {
	return s != nil && now.Before(s.expiresAt)
}

// New creates a client from configuration. If httpClient is nil, a
// pooled client with the configured request timeout is used.
func New(cfg *config.Config, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = newPooledHTTPClient(cfg.RequestTimeout)
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		log:        logger.WithComponent("wallos"),
	}
}

// newPooledHTTPClient creates an HTTP client with connection pooling,
// proper timeouts, and keep-alive settings for repeated round trips to
// the same host.
func newPooledHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		DisableKeepAlives: false,
		ForceAttemptHTTP2: true,
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// endpoint joins the base URL with a path and query string.
func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// getJSON performs an authenticated GET and decodes the JSON body into
// out. Reads authenticate with the API key; writes shaped as GETs pass
// the session cookies instead via withSession.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, withSession bool, out any) error {
	if query == nil {
		query = url.Values{}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return core.WrapErr(core.KindNetwork, err, "build request for %s", path)
	}
	if withSession {
		c.attachSession(req)
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return core.WrapErr(core.KindRemoteValidation, err, "unexpected response shape from %s", path)
	}
	return nil
}

// postForm performs a session-authenticated POST with a URL-encoded
// body and returns the raw response bytes.
func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, core.WrapErr(core.KindNetwork, err, "build request for %s", path)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.attachSession(req)

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.WrapErr(core.KindNetwork, err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.WrapErr(core.KindNetwork, err, "read response from %s", req.URL.Path)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, core.Errorf(core.KindNetwork, "%s returned HTTP %d", req.URL.Path, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		// 4xx bodies still carry the backend's rejection envelope when
		// the endpoint produced one; let the caller's decode surface it.
		if len(body) == 0 {
			return nil, core.Errorf(core.KindNetwork, "%s returned HTTP %d", req.URL.Path, resp.StatusCode)
		}
	}
	return body, nil
}

// attachSession copies the current session cookies onto req. Callers
// must have run EnsureSession first; a missing session simply sends no
// cookies and the backend rejects the write.
func (c *Client) attachSession(req *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return
	}
	for _, ck := range c.session.cookies {
		req.AddCookie(ck)
	}
}

// apiKeyQuery returns a query with the api_key parameter set, minting a
// key through the session when none is configured.
func (c *Client) apiKeyQuery(ctx context.Context, query url.Values) (url.Values, error) {
	if err := c.EnsureAPIKey(ctx); err != nil {
		return nil, err
	}
	if query == nil {
		query = url.Values{}
	}
	c.mu.Lock()
	query.Set("api_key", c.apiKey)
	c.mu.Unlock()
	return query, nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}
