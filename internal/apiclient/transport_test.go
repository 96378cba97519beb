package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/logging"
	"marketplace-admin/internal/repository/memory"
)

const unauthorizedBody = `{"status":401,"message":"Unauthorized","success":false,"data":null}`

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func meBody(name string) string {
	return `{"status":200,"message":"ok","success":true,"data":{"_id":"u1","full_name":"` + name + `","role":"admin"}}`
}

// refreshHandler answers the refresh endpoint with a new pair and counts calls.
func refreshHandler(calls *atomic.Int32, access, refresh string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, `{"status":200,"message":"Token refreshed","success":true,"data":{"accessToken":"`+access+`","refreshToken":"`+refresh+`"}}`)
	}
}

type harness struct {
	client   *apiclient.Client
	sessions *memory.SessionRepository
	expired  atomic.Int32
}

func newHarness(t *testing.T, mux *http.ServeMux, session domain.Session) *harness {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	h := &harness{sessions: memory.NewSessionRepository()}
	require.NoError(t, h.sessions.Save(context.Background(), &session))

	client, err := apiclient.New(apiclient.Options{
		BaseURL:          srv.URL,
		Sessions:         h.sessions,
		Logger:           logging.Discard(),
		OnSessionExpired: func() { h.expired.Add(1) },
	})
	require.NoError(t, err)
	h.client = client
	return h
}

func (h *harness) session(t *testing.T) *domain.Session {
	t.Helper()
	s, err := h.sessions.Load(context.Background())
	require.NoError(t, err)
	return s
}

func TestTransportSetsBearerHeader(t *testing.T) {
	var got string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, meBody("Ada"))
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "access-1", RefreshToken: "refresh-1"})

	user, err := h.client.Users.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-1", got)
	assert.Equal(t, "Ada", user.FullName)
}

func TestTransportSendsWithoutToken(t *testing.T) {
	var hits atomic.Int32
	var header []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		header = r.Header.Values("Authorization")
		writeJSON(w, http.StatusOK, meBody("Ada"))
	})
	h := newHarness(t, mux, domain.Session{})

	_, err := h.client.Users.Me(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())
	assert.Empty(t, header)
}

func TestTransportRefreshesOnceAndReplays(t *testing.T) {
	var refreshes, hits atomic.Int32
	var headers []string
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", refreshHandler(&refreshes, "access-2", "refresh-2"))
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		mu.Lock()
		headers = append(headers, r.Header.Get("Authorization"))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer access-2" {
			writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
			return
		}
		writeJSON(w, http.StatusOK, meBody("Ada"))
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "access-1", RefreshToken: "refresh-1"})

	user, err := h.client.Users.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FullName)
	assert.EqualValues(t, 1, refreshes.Load())
	assert.EqualValues(t, 2, hits.Load())
	assert.Equal(t, []string{"Bearer access-1", "Bearer access-2"}, headers)

	s := h.session(t)
	assert.Equal(t, "access-2", s.AccessToken)
	assert.Equal(t, "refresh-2", s.RefreshToken)
	assert.Zero(t, h.expired.Load())
}

func TestTransportWithoutRefreshTokenExpiresSession(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", refreshHandler(&refreshes, "access-2", "refresh-2"))
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
	})
	h := newHarness(t, mux, domain.Session{
		User:        &domain.SessionUser{ID: "u1", Email: "ada@example.com"},
		AccessToken: "access-1",
	})

	_, err := h.client.Users.Me(context.Background())
	require.Error(t, err)
	assert.True(t, apiclient.IsUnauthorized(err))
	assert.Zero(t, refreshes.Load())
	assert.EqualValues(t, 1, h.expired.Load())

	s := h.session(t)
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User)
}

func TestTransportRefreshFailureReturnsOriginal401(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeJSON(w, http.StatusUnauthorized, `{"status":401,"message":"Invalid refresh token","success":false,"data":null}`)
	})
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "access-1", RefreshToken: "refresh-1"})

	_, err := h.client.Users.Me(context.Background())
	require.Error(t, err)

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Unauthorized", apiErr.Message)
	assert.NotErrorIs(t, err, apiclient.ErrSessionExpired)

	assert.EqualValues(t, 1, refreshes.Load())
	assert.EqualValues(t, 1, h.expired.Load())
	assert.False(t, h.session(t).Authenticated())
}

func TestTransportRefreshMissingTokensExpiresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":200,"success":true,"data":{"accessToken":"access-2"}}`)
	})
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "access-1", RefreshToken: "refresh-1"})

	_, err := h.client.Users.Me(context.Background())
	assert.True(t, apiclient.IsUnauthorized(err))
	assert.EqualValues(t, 1, h.expired.Load())
	assert.False(t, h.session(t).Authenticated())
}

func TestTransportDoesNotRetryReplay(t *testing.T) {
	var refreshes, hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", refreshHandler(&refreshes, "access-2", "refresh-2"))
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "access-1", RefreshToken: "refresh-1"})

	_, err := h.client.Users.Me(context.Background())
	require.Error(t, err)
	assert.True(t, apiclient.IsUnauthorized(err))
	assert.EqualValues(t, 1, refreshes.Load())
	assert.EqualValues(t, 2, hits.Load())
	assert.Zero(t, h.expired.Load())
	assert.Equal(t, "access-2", h.session(t).AccessToken)
}

func TestTransportCoalescesConcurrentRefreshes(t *testing.T) {
	const callers = 2
	var refreshes atomic.Int32
	var arrived sync.WaitGroup
	arrived.Add(callers)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", refreshHandler(&refreshes, "access-2", "refresh-2"))
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer access-1" {
			// both callers are rejected before either can refresh
			arrived.Done()
			arrived.Wait()
			writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
			return
		}
		writeJSON(w, http.StatusOK, meBody("Ada"))
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "access-1", RefreshToken: "refresh-1"})

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.client.Users.Me(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, refreshes.Load())
	assert.Equal(t, "access-2", h.session(t).AccessToken)
}

func TestTransportCoalescesConcurrentRefreshFailure(t *testing.T) {
	const callers = 4
	var refreshes atomic.Int32
	var arrived sync.WaitGroup
	arrived.Add(callers)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeJSON(w, http.StatusUnauthorized, `{"status":401,"message":"Invalid refresh token","success":false,"data":null}`)
	})
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		arrived.Done()
		arrived.Wait()
		writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "access-1", RefreshToken: "refresh-1"})

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.client.Users.Me(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.True(t, apiclient.IsUnauthorized(err), "%v", err)
		assert.EqualError(t, err, "Unauthorized")
	}
	assert.EqualValues(t, 1, refreshes.Load())
	assert.EqualValues(t, 1, h.expired.Load())
	assert.False(t, h.session(t).Authenticated())
}

func TestTransportReplaysRequestBody(t *testing.T) {
	var refreshes atomic.Int32
	var bodies []string
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", refreshHandler(&refreshes, "access-2", "refresh-2"))
	mux.HandleFunc("/location", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer access-2" {
			writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
			return
		}
		writeJSON(w, http.StatusCreated, `{"status":201,"success":true,"data":{"_id":"l1","name":"Lagos","state":"Lagos"}}`)
	})
	h := newHarness(t, mux, domain.Session{AccessToken: "access-1", RefreshToken: "refresh-1"})

	loc, err := h.client.Locations.Create(context.Background(), apiclient.LocationInput{Name: "Lagos", State: "Lagos"})
	require.NoError(t, err)
	assert.Equal(t, "l1", loc.ID)
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(bodies[1]), &sent))
	assert.Equal(t, "Lagos", sent["name"])
}

// onceReader hides the concrete reader so http.NewRequest cannot derive GetBody.
type onceReader struct{ io.Reader }

func TestTransportBuffersBodyWithoutGetBody(t *testing.T) {
	var refreshes atomic.Int32
	var bodies []string
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", refreshHandler(&refreshes, "access-2", "refresh-2"))
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer access-2" {
			writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
			return
		}
		writeJSON(w, http.StatusOK, `{}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	sessions := memory.NewSessionRepository()
	require.NoError(t, sessions.SetTokens(context.Background(), "access-1", "refresh-1"))
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Sessions: sessions, Logger: logging.Discard()})
	require.NoError(t, err)

	tr := &apiclient.Transport{Sessions: sessions, Refresher: client.Auth, Logger: logging.Discard()}
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/echo", onceReader{strings.NewReader("payload")})
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"payload", "payload"}, bodies)
	assert.EqualValues(t, 1, refreshes.Load())
}

func TestTransportReplaysWithRotatedToken(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", refreshHandler(&refreshes, "access-3", "refresh-3"))
	var h *harness
	mux.HandleFunc("/api/user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer access-1" {
			// another caller rotated the pair while this request was in flight
			_ = h.sessions.SetTokens(r.Context(), "access-2", "refresh-2")
			writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
			return
		}
		writeJSON(w, http.StatusOK, meBody("Ada"))
	})
	h = newHarness(t, mux, domain.Session{AccessToken: "access-1", RefreshToken: "refresh-1"})

	_, err := h.client.Users.Me(context.Background())
	require.NoError(t, err)
	assert.Zero(t, refreshes.Load())
	assert.Equal(t, "access-2", h.session(t).AccessToken)
}
