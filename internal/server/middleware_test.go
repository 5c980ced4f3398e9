package server

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"rulegate/internal/config"
	"rulegate/internal/core"
)

func TestRequestLoggerLogsLifecycle(t *testing.T) {
	observed, logs := observer.New(zap.InfoLevel)

	var seen *core.RequestContext
	h := RequestLogger(zap.New(observed))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = core.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rules", nil))

	require.NotNil(t, seen)
	assert.Equal(t, seen.RequestID, rec.Header().Get("X-Request-ID"))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "Request Started", entries[0].Message)
	assert.Equal(t, "GET", entries[0].ContextMap()["method"])
	assert.Equal(t, "/api/rules", entries[0].ContextMap()["path"])
	assert.Equal(t, seen.RequestID, entries[0].ContextMap()["request_id"])

	assert.Equal(t, "Request Finished", entries[1].Message)
	assert.Equal(t, int64(http.StatusTeapot), entries[1].ContextMap()["status"])
	assert.Contains(t, entries[1].ContextMap(), "latency")
}

func TestRecovererReturns500(t *testing.T) {
	observed, logs := observer.New(zap.ErrorLevel)

	h := RequestLogger(zap.New(observed))(Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestListenRetriesThenFails(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	port := busy.Addr().(*net.TCPAddr).Port
	observed, logs := observer.New(zap.WarnLevel)
	s := New(config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           port,
		BindAttempts:   2,
		BindRetryDelay: 10 * time.Millisecond,
	}, http.NotFoundHandler(), zap.New(observed))

	_, err = s.Listen()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 2, logs.FilterMessage("address busy").Len())
}

func TestListenSucceeds(t *testing.T) {
	s := New(config.ServerConfig{Host: "127.0.0.1", Port: 0, BindAttempts: 1}, http.NotFoundHandler(), nil)

	ln, err := s.Listen()
	require.NoError(t, err)
	ln.Close()
}
