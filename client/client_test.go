package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itportal/go-portal-client/client"
	"github.com/itportal/go-portal-client/session"
	"github.com/itportal/go-portal-client/storage"
	"github.com/itportal/go-portal-client/tabid"
	"github.com/stretchr/testify/require"
)

// testConfig satisfies config.Config against a test server.
type testConfig struct {
	baseURL string
}

func (c testConfig) GetAPIBaseURL() string { return c.baseURL }
func (testConfig) GetAppName() string      { return "Portal Client Test" }
func (testConfig) GetStateDir() string     { return "" }
func (testConfig) GetEnv() string          { return "TEST" }

func (testConfig) GetRequestTimeout() time.Duration { return 5 * time.Second }
func (testConfig) GetUploadTimeout() time.Duration  { return 5 * time.Second }

// fixture wires a client with an in-memory tab identity and the cookie
// strategy against the given base URL.
type fixture struct {
	client *client.Client
	tabs   *tabid.Manager
}

func newFixture(t *testing.T, baseURL string) *fixture {
	t.Helper()

	tabs, err := tabid.NewManager(storage.NewInMemoryStore())
	require.NoError(t, err)
	strategy, err := session.NewCookieTabStrategy(tabs)
	require.NoError(t, err)
	c, err := client.New(testConfig{baseURL: baseURL}, tabs, strategy)
	require.NoError(t, err)

	return &fixture{client: c, tabs: tabs}
}

func writeSessionInfo(w http.ResponseWriter) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"isAuthenticated": true,
		"user": map[string]any{
			"user_id":  7,
			"username": "somchai",
			"role":     "student",
		},
	})
}

func write401(w http.ResponseWriter) {
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "session expired"})
}

func TestRefreshAndReplayAfter401(t *testing.T) {
	var protectedCalls, refreshCalls atomic.Int32
	var refreshed atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/check-session", func(w http.ResponseWriter, r *http.Request) {
		protectedCalls.Add(1)
		if !refreshed.Load() {
			write401(w)
			return
		}
		writeSessionInfo(w)
	})
	mux.HandleFunc("GET /auth/refresh-session", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		refreshed.Store(true)
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)
	f.tabs.Ensure()

	// The caller sees the replayed 200 transparently.
	info, err := f.client.CheckSession(context.Background())
	require.NoError(t, err)
	require.True(t, info.IsAuthenticated)
	require.Equal(t, "somchai", info.User.Username)

	// Original + refresh + replay: exactly three calls on the wire.
	require.Equal(t, int32(2), protectedCalls.Load())
	require.Equal(t, int32(1), refreshCalls.Load())
}

func TestSecond401IsNotRetried(t *testing.T) {
	var protectedCalls, refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/check-session", func(w http.ResponseWriter, r *http.Request) {
		protectedCalls.Add(1)
		write401(w)
	})
	mux.HandleFunc("GET /auth/refresh-session", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)
	f.tabs.Ensure()

	_, err := f.client.CheckSession(context.Background())

	var herr *client.HTTPError
	require.ErrorAs(t, err, &herr)
	require.Equal(t, http.StatusUnauthorized, herr.StatusCode)

	// One replay, then the failure surfaces; no refresh loop.
	require.Equal(t, int32(2), protectedCalls.Load())
	require.Equal(t, int32(1), refreshCalls.Load())
}

func TestLoginIsExemptFromRefresh(t *testing.T) {
	var loginCalls, refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		loginCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	})
	mux.HandleFunc("GET /auth/refresh-session", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)

	_, err := f.client.Login(context.Background(), "somchai@example.com", "wrong")

	var herr *client.HTTPError
	require.ErrorAs(t, err, &herr)
	require.Equal(t, http.StatusUnauthorized, herr.StatusCode)
	require.Equal(t, "invalid credentials", herr.Message)

	// A bad-credential 401 is never masked as a session issue.
	require.Equal(t, int32(1), loginCalls.Load())
	require.Equal(t, int32(0), refreshCalls.Load())
}

func TestFailedRefreshClearsIdentityAndKeepsOriginal401(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/check-session", func(w http.ResponseWriter, r *http.Request) {
		write401(w)
	})
	mux.HandleFunc("GET /auth/refresh-session", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "refresh denied"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)
	f.tabs.Ensure()
	require.NotEmpty(t, f.tabs.Current())

	_, err := f.client.CheckSession(context.Background())

	// The refresh failure is folded into the original 401.
	var herr *client.HTTPError
	require.ErrorAs(t, err, &herr)
	require.Equal(t, http.StatusUnauthorized, herr.StatusCode)
	require.Equal(t, "session expired", herr.Message)

	// Local session evidence is gone; the guard redirects from here on.
	require.Empty(t, f.tabs.Current())
}

func TestNon401ErrorsPropagateWithoutRefresh(t *testing.T) {
	var refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/check-session", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "database unavailable"})
	})
	mux.HandleFunc("GET /auth/refresh-session", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)
	f.tabs.Ensure()

	_, err := f.client.CheckSession(context.Background())

	var herr *client.HTTPError
	require.ErrorAs(t, err, &herr)
	require.Equal(t, http.StatusInternalServerError, herr.StatusCode)
	require.Equal(t, "database unavailable", herr.Message)
	require.Equal(t, int32(0), refreshCalls.Load())
}

func TestNetworkErrorWhenServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing listens here anymore

	f := newFixture(t, server.URL)

	_, err := f.client.CheckSession(context.Background())

	var nerr *client.NetworkError
	require.ErrorAs(t, err, &nerr)
}

func TestDecodeErrorOnMalformedPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/check-session", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)
	f.tabs.Ensure()

	_, err := f.client.CheckSession(context.Background())

	var derr *client.DecodeError
	require.ErrorAs(t, err, &derr)
}

func TestDecodeErrorOnShapeMismatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/check-session", func(w http.ResponseWriter, r *http.Request) {
		// Authenticated but no user: the schema check rejects it before
		// it can reach caller state.
		_ = json.NewEncoder(w).Encode(map[string]any{"isAuthenticated": true})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)
	f.tabs.Ensure()

	_, err := f.client.CheckSession(context.Background())

	var derr *client.DecodeError
	require.ErrorAs(t, err, &derr)
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	const concurrency = 5

	var unauthorizedServed, refreshCalls atomic.Int32
	var refreshed atomic.Bool
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/check-session", func(w http.ResponseWriter, r *http.Request) {
		if !refreshed.Load() {
			unauthorizedServed.Add(1)
			write401(w)
			return
		}
		writeSessionInfo(w)
	})
	mux.HandleFunc("GET /auth/refresh-session", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		// Hold the refresh open until every request has seen its 401 so
		// all handlers are waiting on the same in-flight refresh.
		<-release
		refreshed.Store(true)
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)
	f.tabs.Ensure()

	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.CheckSession(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool {
		return unauthorizedServed.Load() == concurrency
	}, 2*time.Second, 5*time.Millisecond)
	// Give the last handlers time to join the in-flight refresh before
	// letting it complete.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), refreshCalls.Load(), "concurrent refreshes must collapse into one")
}

func TestRequestsCarryTabIdentifier(t *testing.T) {
	var seenTabID string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/check-session", func(w http.ResponseWriter, r *http.Request) {
		seenTabID = r.Header.Get(session.TabIDHeader)
		writeSessionInfo(w)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(t, server.URL)
	id := f.tabs.Ensure()

	_, err := f.client.CheckSession(context.Background())
	require.NoError(t, err)
	require.Equal(t, id, seenTabID)
}
