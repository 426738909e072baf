package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Station-Manager/webservice/config"
	"github.com/Station-Manager/webservice/httplog"
	"github.com/Station-Manager/webservice/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const maxLoggedBody = 64 << 10

func newRouter(cfg *config.App, svc *logging.Service, reg *prometheus.Registry) http.Handler {
	metrics := httplog.NewMetrics(reg, reg)
	onErr := httplog.LogErrors(svc, httplog.RespondError(cfg.Production()))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metrics.Middleware)
	r.Use(httplog.AccessLog(svc.Stream(), httplog.AccessOptions{Production: cfg.Production()}))
	r.Use(httplog.CaptureBody(maxLoggedBody))
	if svc.Enabled(logging.DebugLevel) {
		r.Use(httplog.Dump(svc, httplog.DumpOptions{MaxBody: maxLoggedBody}))
	}
	r.Use(httplog.Recover(onErr))

	r.Get("/health", health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Method(http.MethodGet, "/api/status", httplog.Handle(status(cfg, time.Now()), onErr))

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

type statusResponse struct {
	Status string `json:"status"`
	Env    string `json:"env"`
	Uptime string `json:"uptime"`
}

func status(cfg *config.App, started time.Time) httplog.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(statusResponse{
			Status: "ok",
			Env:    cfg.Env,
			Uptime: time.Since(started).Round(time.Second).String(),
		})
	}
}
