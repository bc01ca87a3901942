package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"comanda/pkg/config"
	"comanda/pkg/logger"
)

type echoHandler struct{}

func (echoHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/echo", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
	router.POST("/api/v1/echo", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusCreated)
	})
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context, *readpref.ReadPref) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{
		ServiceName:       "test",
		Port:              "0",
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1024,
		ShutdownTimeout:   time.Second,
		Log:               logger.NewNop(),
	}
}

func TestApplication_Routes(t *testing.T) {
	a := NewApplication(testConfig())
	a.SetApp(echoHandler{})
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	h := a.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "no database configured")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/echo", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "comanda_http_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestApplication_RateLimitsWrites(t *testing.T) {
	a := NewApplication(testConfig())
	a.SetApp(echoHandler{})
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	h := a.Handler()

	post := func() int {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "application/json")
		r.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, post())
	assert.Equal(t, http.StatusCreated, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/echo", nil))
		assert.Equal(t, http.StatusOK, w.Code, "reads are not limited")
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	router := httprouter.New()
	NewHealthHandler(stubPinger{}, logger.NewNop()).RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","database":"ok"}`, w.Body.String())

	router = httprouter.New()
	NewHealthHandler(stubPinger{err: errors.New("no primary")}, logger.NewNop()).RegisterRoutes(router)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type countingCloser struct {
	order *[]string
	name  string
}

func (c countingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return nil
}

func TestApplication_ClosersRunInReverse(t *testing.T) {
	a := NewApplication(testConfig())
	var order []string
	a.AddCloser("producer", countingCloser{order: &order, name: "producer"})
	a.AddCloser("consumer", countingCloser{order: &order, name: "consumer"})
	a.runClosers()
	assert.Equal(t, []string{"consumer", "producer"}, order)
}

func TestApplication_WorkersStopOnCancel(t *testing.T) {
	a := NewApplication(testConfig())
	started := make(chan struct{})
	a.AddWorker(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	g := a.startWorkers(ctx)
	<-started
	cancel()
	assert.NoError(t, g.Wait())
}
