package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	rhttp "github.com/aretw0/rapidhire/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	h := rhttp.NewHandler(rhttp.Info{App: "rapidhire"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestInfo(t *testing.T) {
	h := rhttp.NewHandler(rhttp.Info{App: "rapidhire", Version: "1.2.3", Mode: "webhook", StartedAt: "t0"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))

	var info rhttp.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, rhttp.Info{App: "rapidhire", Version: "1.2.3", Mode: "webhook", StartedAt: "t0"}, info)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "rapidhire_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := rhttp.NewHandler(rhttp.Info{}, rhttp.WithGatherer(reg))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rapidhire_test_total 1")
}

func TestWebhookRoute(t *testing.T) {
	var body string
	webhook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	})

	h := rhttp.NewHandler(rhttp.Info{}, rhttp.WithWebhook("", webhook))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, rhttp.DefaultWebhookPath, strings.NewReader(`{"update_id":1}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"update_id":1}`, body)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, rhttp.DefaultWebhookPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNoWebhookByDefault(t *testing.T) {
	h := rhttp.NewHandler(rhttp.Info{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, rhttp.DefaultWebhookPath, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoversPanics(t *testing.T) {
	h := rhttp.NewHandler(rhttp.Info{}, rhttp.WithWebhook("/hook", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hook", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
