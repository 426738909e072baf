// Command server boots the web service: configuration, the process-wide
// logger, the HTTP router and signal-driven shutdown.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Station-Manager/webservice/config"
	"github.com/Station-Manager/webservice/logging"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load(config.LoadOptions{Dir: os.Getenv("APP_CONFIG_DIR")})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	svc := &logging.Service{
		LoggingConfig: &cfg.Logging,
		Production:    cfg.Production(),
	}
	if err = svc.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer svc.RecoverAndExit()

	svc.InfoWith().
		Str("env", cfg.Env).
		Str("log_level", cfg.Logging.Level).
		Str("log_dir", cfg.Logging.Directory).
		Msg("Configuration loaded")

	srv := newServer(cfg, svc, prometheus.NewRegistry())
	svc.Go(srv.listen)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	svc.InfoWith().Str("signal", sig.String()).Msg("Shutdown signal received")

	if err = srv.shutdown(); err != nil {
		svc.ErrorWith().Err(err).Msg("Graceful shutdown failed")
	}
	svc.Log(logging.InfoLevel, "Server stopped", nil)

	if err = svc.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close logger: %v\n", err)
	}
}
