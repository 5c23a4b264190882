package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvlabs/docproc/internal/api/middleware"
	"github.com/hvlabs/docproc/internal/document"
	"github.com/hvlabs/docproc/internal/function"
	"github.com/hvlabs/docproc/internal/logging"
	"github.com/hvlabs/docproc/internal/monitoring"
	"github.com/hvlabs/docproc/internal/telemetry"
	"github.com/hvlabs/docproc/internal/telemetry/telemetrytest"
)

// failingHandler returns a fixed error from Handle
type failingHandler struct {
	err error
}

func (f *failingHandler) OnStart(ctx context.Context) error { return nil }
func (f *failingHandler) OnStop(ctx context.Context) error  { return nil }
func (f *failingHandler) Handle(ctx context.Context, req function.Request) (*function.Result, error) {
	return nil, f.err
}

type testServer struct {
	router   *gin.Engine
	recorder *telemetrytest.Recorder
}

// newTestServer wires the real processing stack behind a router; pass a
// handler to substitute the workload
func newTestServer(t *testing.T, handler function.Handler) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := telemetrytest.NewRecorder()
	tctx, err := telemetry.New(context.Background(), telemetry.Config{
		ServiceName: "docproc-test",
		Environment: "test",
		Version:     "0.0.1",
		Exporter:    "none",
		SampleRate:  1,
	}, telemetry.DetectRuntime("test", "0.0.1"), logging.NewNop(), telemetry.WithSpanProcessor(recorder))
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetricsWith(registry)

	if handler == nil {
		handler = document.New(tctx, logging.NewNop(),
			document.WithSleep(func(ctx context.Context, d time.Duration) error { return nil }),
			document.WithSlowProbabilities(0, 0),
		)
	}
	harness := function.New(handler, tctx, metrics, logging.NewNop())
	handlers := NewHandlers(harness, tctx, metrics, logging.NewNop())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.POST("/process", handlers.Process)
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &testServer{router: router, recorder: recorder}
}

func (ts *testServer) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestProcessSuccess(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.post(t, `{"work_id":"doc-1","strategy":"strategy-A"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result function.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, function.Result{
		WorkID:   "doc-1",
		Strategy: "strategy-A",
		Status:   function.StatusSuccess,
		Pages:    10,
	}, result)

	assert.Equal(t, 1, ts.recorder.Flushes())
	assert.True(t, strings.HasPrefix(w.Header().Get(middleware.RequestIDHeader), "req_"))
}

func TestProcessDefaultsStrategy(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.post(t, `{"work_id":"doc-2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result function.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, document.DefaultStrategy, result.Strategy)
}

func TestProcessMissingWorkID(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.post(t, `{"strategy":"strategy-A"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "WorkID")

	// Rejected requests never reach the harness
	assert.Equal(t, 0, ts.recorder.Flushes())
	assert.Empty(t, ts.recorder.Ended())
}

func TestProcessInvalidJSON(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.post(t, `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessWorkErrorSurfaced(t *testing.T) {
	sentinel := errors.New("llm backend unavailable")
	ts := newTestServer(t, &failingHandler{err: sentinel})

	w := ts.post(t, `{"work_id":"doc-3"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "llm backend unavailable", resp["error"])

	// Failed invocations still flush
	assert.Equal(t, 1, ts.recorder.Flushes())
}

func TestRoot(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.get(t, "/")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "online", resp["status"])
	assert.Equal(t, "docproc-test", resp["service"])
	assert.Equal(t, "test", resp["environment"])
	assert.Equal(t, "0.0.1", resp["version"])
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	require.Equal(t, http.StatusOK, ts.post(t, `{"work_id":"doc-4"}`).Code)

	w := ts.get(t, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])

	invocations, ok := resp["invocations"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1.0, invocations["total"])
	assert.Equal(t, 0.0, invocations["in_flight"])

	runtime, ok := resp["runtime"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, runtime["boot_id"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	require.Equal(t, http.StatusOK, ts.post(t, `{"work_id":"doc-5"}`).Code)

	w := ts.get(t, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docproc_uptime_seconds")
	assert.Contains(t, w.Body.String(), "docproc_invocations_total")
}
