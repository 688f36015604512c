package opslog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	mu      sync.Mutex
	logins  int
	entries []Entry
	got     chan struct{}
}

func newSink(t *testing.T) (*sink, *httptest.Server) {
	s := &sink{got: make(chan struct{}, 8)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			s.mu.Lock()
			s.logins++
			s.mu.Unlock()
			exp := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
			_, _ = w.Write([]byte(`{"token":"tok","expires_at":"` + exp + `"}`))
		case "/api/v1/logs":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var e Entry
			_ = json.NewDecoder(r.Body).Decode(&e)
			s.mu.Lock()
			s.entries = append(s.entries, e)
			s.mu.Unlock()
			s.got <- struct{}{}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return s, srv
}

func TestClient_SendLogsInOnce(t *testing.T) {
	s, srv := newSink(t)
	c := &Client{BaseURL: srv.URL, APIKey: "k", Agent: "hub-test"}

	require.NoError(t, c.Send(context.Background(), Entry{Action: "a", Level: "info"}))
	require.NoError(t, c.Send(context.Background(), Entry{Action: "b", Level: "warn"}))

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Equal(t, 1, s.logins)
	require.Len(t, s.entries, 2)
	assert.Equal(t, "hub-test", s.entries[0].Agent)
}

func TestClient_LoginRequiresConfig(t *testing.T) {
	assert.Error(t, (&Client{APIKey: "k"}).Login(context.Background()))
	assert.Error(t, (&Client{BaseURL: "http://x"}).Login(context.Background()))
}

func TestWriteAuditMiddleware_OnlyWrites(t *testing.T) {
	s, srv := newSink(t)
	c := &Client{BaseURL: srv.URL, APIKey: "k"}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WriteAuditMiddleware(c, nil))
	r.GET("/api/v1/things", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/v1/things", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	for _, m := range []string{http.MethodGet, http.MethodPost} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(m, "/api/v1/things", nil))
	}

	select {
	case <-s.got:
	case <-time.After(3 * time.Second):
		t.Fatalf("no audit entry")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.entries, 1)
	assert.Equal(t, "warn", s.entries[0].Level)
	assert.Equal(t, "POST", s.entries[0].Details["method"])
}

func TestLogBestEffort_NoClientIsNoop(t *testing.T) {
	LogBestEffort(context.Background(), "x", "info", nil)
}
