package main

import (
	"context"
	stderrs "errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/Station-Manager/webservice/config"
	"github.com/Station-Manager/webservice/logging"
	"github.com/prometheus/client_golang/prometheus"
)

const readHeaderTimeout = 10 * time.Second

type server struct {
	cfg  *config.App
	log  logging.Logger
	http *http.Server
}

func newServer(cfg *config.App, svc *logging.Service, reg *prometheus.Registry) *server {
	return &server{
		cfg: cfg,
		log: svc,
		http: &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.Server.Port),
			Handler:           newRouter(cfg, svc, reg),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// listen serves until shutdown. Any other outcome is returned as an error so
// the caller can treat it as fatal.
func (s *server) listen() error {
	const op errors.Op = "server.listen"

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return errors.New(op).Err(err).Msg("Failed to bind " + s.http.Addr)
	}

	s.log.InfoWith().
		Str("addr", ln.Addr().String()).
		Str("env", s.cfg.Env).
		Msg("Server started")

	if err = s.http.Serve(ln); err != nil && !stderrs.Is(err, http.ErrServerClosed) {
		return errors.New(op).Err(err).Msg("HTTP server failed")
	}
	return nil
}

func (s *server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
