package main

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Station-Manager/webservice/config"
	"github.com/Station-Manager/webservice/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testApp(env, level string) *config.App {
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.TimeZone = "UTC"
	logCfg.ShutdownTimeoutMS = 100
	logCfg.ForceConsole = true
	return &config.App{
		Env:     env,
		Server:  config.Server{Port: 3000, ShutdownTimeout: time.Second},
		Logging: logCfg,
	}
}

func newTestService(t *testing.T, cfg *config.App) (*logging.Service, *syncBuffer) {
	t.Helper()
	console := &syncBuffer{}
	svc := &logging.Service{
		WorkingDir:    t.TempDir(),
		LoggingConfig: &cfg.Logging,
		Production:    cfg.Production(),
		Console:       console,
	}
	require.NoError(t, svc.Initialize())
	t.Cleanup(func() { _ = svc.Close() })
	return svc, console
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouter_Development(t *testing.T) {
	cfg := testApp(config.EnvDevelopment, "http")
	svc, console := newTestService(t, cfg)
	h := newRouter(cfg, svc, prometheus.NewRegistry())

	rec := get(h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Empty(t, console.String(), "healthy probes are not access-logged")

	rec = get(h, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var body statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, config.EnvDevelopment, body.Env)

	rec = get(h, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	out := console.String()
	assert.Contains(t, out, `"message":"GET /api/status 200 `)
	assert.Contains(t, out, `"message":"GET /nope 404 `)
	assert.Contains(t, out, `"level":"http"`)
}

func TestRouter_ProductionAccessLine(t *testing.T) {
	cfg := testApp(config.EnvProduction, "http")
	svc, console := newTestService(t, cfg)
	h := newRouter(cfg, svc, prometheus.NewRegistry())

	get(h, "/api/status")

	var line map[string]any
	for _, l := range strings.Split(strings.TrimSpace(console.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &rec))
		if rec["level"] == "http" {
			line = rec
		}
	}
	require.NotNil(t, line)

	var access map[string]any
	require.NoError(t, json.Unmarshal([]byte(line["message"].(string)), &access))
	assert.Equal(t, "/api/status", access["url"])
	assert.NotEqual(t, "-", access["requestId"])
}

func TestRouter_DumpOnlyAtDebug(t *testing.T) {
	for _, level := range []string{"debug", "info"} {
		t.Run(level, func(t *testing.T) {
			cfg := testApp(config.EnvDevelopment, level)
			svc, console := newTestService(t, cfg)
			h := newRouter(cfg, svc, prometheus.NewRegistry())

			get(h, "/api/status")

			if level == "debug" {
				assert.Contains(t, console.String(), "Incoming request")
			} else {
				assert.NotContains(t, console.String(), "Incoming request")
			}
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	cfg := testApp(config.EnvDevelopment, "info")
	svc, console := newTestService(t, cfg)
	h := newRouter(cfg, svc, prometheus.NewRegistry())

	get(h, "/api/status")
	rec := get(h, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/api/status",status="200"} 1`)
	assert.NotContains(t, console.String(), "/metrics")
}

func TestServer_ShutdownBeforeListen(t *testing.T) {
	cfg := testApp(config.EnvDevelopment, "info")
	svc, _ := newTestService(t, cfg)
	srv := newServer(cfg, svc, prometheus.NewRegistry())
	srv.http.Addr = "127.0.0.1:0"

	require.NoError(t, srv.shutdown())
	assert.NoError(t, srv.listen())
}

func TestServer_ListenAndShutdown(t *testing.T) {
	cfg := testApp(config.EnvDevelopment, "info")
	svc, console := newTestService(t, cfg)
	srv := newServer(cfg, svc, prometheus.NewRegistry())
	srv.http.Addr = "127.0.0.1:0"

	done := make(chan error, 1)
	go func() { done <- srv.listen() }()

	require.Eventually(t, func() bool {
		return strings.Contains(console.String(), "Server started")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.shutdown())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listen did not return after shutdown")
	}
}

func TestServer_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testApp(config.EnvDevelopment, "info")
	svc, _ := newTestService(t, cfg)
	srv := newServer(cfg, svc, prometheus.NewRegistry())
	srv.http.Addr = ln.Addr().String()

	assert.Error(t, srv.listen())
}
