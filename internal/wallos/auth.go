package wallos

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"subbridge/internal/core"
)

const (
	loginPath  = "/login.php"
	apiKeyPath = "/endpoints/user/generateapikey.php"
)

// EnsureSession guarantees a valid write session. Within the TTL window
// it is a no-op; otherwise it performs one login exchange. Concurrent
// callers that all observe an expired session share a single in-flight
// login instead of racing.
func (c *Client) EnsureSession(ctx context.Context) error {
	c.mu.Lock()
	valid := c.session.valid(time.Now())
	c.mu.Unlock()
	if valid {
		return nil
	}

	_, err, _ := c.login.Do("login", func() (any, error) {
		// Re-check under the group: the winner may have refreshed the
		// session while this call waited.
		c.mu.Lock()
		valid := c.session.valid(time.Now())
		c.mu.Unlock()
		if valid {
			return nil, nil
		}
		return nil, c.doLogin(ctx)
	})
	return err
}

func (c *Client) doLogin(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return core.Errorf(core.KindConfiguration,
			"write operations require WALLOS_USERNAME and WALLOS_PASSWORD")
	}

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(loginPath, nil),
		strings.NewReader(form.Encode()))
	if err != nil {
		return core.WrapErr(core.KindNetwork, err, "build login request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.WrapErr(core.KindNetwork, err, "login exchange")
	}
	defer resp.Body.Close()

	cookies := sessionCookies(resp.Cookies())
	if len(cookies) == 0 {
		return core.Errorf(core.KindAuthentication,
			"login returned no session token; check username and password")
	}

	c.mu.Lock()
	c.session = &session{cookies: cookies, expiresAt: time.Now().Add(sessionTTL)}
	c.mu.Unlock()

	c.log.DebugContext(ctx, "session established", "cookies", len(cookies))
	return nil
}

// sessionCookies filters Set-Cookie values down to usable tokens.
func sessionCookies(in []*http.Cookie) []*http.Cookie {
	var out []*http.Cookie
	for _, ck := range in {
		if ck.Name != "" && ck.Value != "" && ck.Value != "deleted" {
			out = append(out, ck)
		}
	}
	return out
}

// EnsureAPIKey guarantees an API key for read access. A configured key
// is used as-is; otherwise a fresh key is minted through an
// authenticated session.
func (c *Client) EnsureAPIKey(ctx context.Context) error {
	c.mu.Lock()
	have := c.apiKey != ""
	c.mu.Unlock()
	if have {
		return nil
	}

	if c.username == "" || c.password == "" {
		return core.Errorf(core.KindConfiguration,
			"no API key configured and no credentials to mint one; set WALLOS_API_KEY or WALLOS_USERNAME+WALLOS_PASSWORD")
	}
	if err := c.EnsureSession(ctx); err != nil {
		return err
	}

	var payload struct {
		Success bool   `json:"success"`
		APIKey  string `json:"apiKey"`
		Message string `json:"message"`
	}
	query := url.Values{}
	query.Set("regenerate", "true")
	if err := c.getJSON(ctx, apiKeyPath, query, true, &payload); err != nil {
		return err
	}
	if !payload.Success || payload.APIKey == "" {
		msg := payload.Message
		if msg == "" {
			msg = "backend refused to issue an API key"
		}
		return core.Errorf(core.KindAuthentication, "%s", msg)
	}

	c.mu.Lock()
	c.apiKey = payload.APIKey
	c.mu.Unlock()

	c.log.InfoContext(ctx, "minted API key through session")
	return nil
}
