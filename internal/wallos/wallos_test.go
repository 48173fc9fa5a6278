package wallos

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"subbridge/internal/config"
	"subbridge/internal/log"
)

// fakeWallos is a minimal in-process stand-in for the remote backend.
// It records every request path and serves canned JSON per path.
type fakeWallos struct {
	mu         sync.Mutex
	loginCalls int
	hits       []string
	queries    map[string][]string // path -> raw queries seen

	// responses maps a path to its canned JSON body.
	responses map[string]string
	// withCookie controls whether login issues a session token.
	withCookie bool

	srv *httptest.Server
}

func newFakeWallos() *fakeWallos {
	f := &fakeWallos{
		responses:  make(map[string]string),
		queries:    make(map[string][]string),
		withCookie: true,
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakeWallos) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits = append(f.hits, r.URL.Path)
	f.queries[r.URL.Path] = append(f.queries[r.URL.Path], r.URL.RawQuery)
	if r.URL.Path == loginPath {
		f.loginCalls++
	}
	body, ok := f.responses[r.URL.Path]
	withCookie := f.withCookie
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == loginPath:
		if withCookie {
			http.SetCookie(w, &http.Cookie{Name: "wallos_session", Value: "tok-123"})
		}
		io.WriteString(w, `{"success":true}`)
	case ok:
		io.WriteString(w, body)
	default:
		io.WriteString(w, `{"success":false,"errorMessage":"not found"}`)
	}
}

func (f *fakeWallos) close() { f.srv.Close() }

func (f *fakeWallos) logins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}

func (f *fakeWallos) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.hits...)
}

func (f *fakeWallos) lastQuery(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	qs := f.queries[path]
	if len(qs) == 0 {
		return ""
	}
	return qs[len(qs)-1]
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

// testClient builds a client against the fake backend with full
// credentials unless overridden by mutate.
func testClient(f *fakeWallos, mutate func(*config.Config)) *Client {
	cfg := &config.Config{
		BaseURL:        f.srv.URL,
		Username:       "admin",
		Password:       "secret",
		RequestTimeout: 5 * time.Second,
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg, f.srv.Client(), quietLogger())
}
