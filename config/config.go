// Package config loads the application configuration: built-in defaults,
// then config/default.yaml, then config/<env>.yaml, then environment
// variables.
package config

import (
	"time"

	"github.com/Station-Manager/webservice/logging"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type App struct {
	Env     string         `mapstructure:"env" validate:"required"`
	Server  Server         `mapstructure:"server"`
	Logging logging.Config `mapstructure:"logging"`
}

type Server struct {
	Port int `mapstructure:"port" validate:"gt=0,lt=65536"`
	// ShutdownTimeout bounds graceful HTTP shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout" validate:"gt=0"`
}

// Production reports whether the service runs with production behaviour:
// no console log, JSON access lines, generic error bodies.
func (a *App) Production() bool {
	return a.Env == EnvProduction
}
