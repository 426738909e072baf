package config

import (
	stderrs "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Station-Manager/errors"
	"github.com/Station-Manager/webservice/logging"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	defaultDir  = "config"
	defaultFile = "default"
	envPrefix   = "APP"
	fileType    = "yaml"
)

// explicit environment variables understood besides the APP_ prefixed ones.
var envBindings = map[string][]string{
	"env":                  {"APP_ENV"},
	"server.port":          {"PORT", "APP_SERVER_PORT"},
	"logging.level":        {"LOG_LEVEL", "APP_LOGGING_LEVEL"},
	"logging.format":       {"LOG_FORMAT", "APP_LOGGING_FORMAT"},
	"logging.directory":    {"LOG_DIR", "APP_LOGGING_DIRECTORY"},
	"logging.forceConsole": {"LOG_TO_CONSOLE", "APP_LOGGING_FORCECONSOLE"},
}

type LoadOptions struct {
	// Dir holds default.yaml and <env>.yaml. Empty means "config".
	Dir string
	// Env selects the environment file. Empty means $APP_ENV, then
	// "development".
	Env string
}

// Load assembles, validates and returns the configuration. A malformed file
// or an invalid value is an error; missing files are not.
func Load(opts LoadOptions) (*App, error) {
	const op errors.Op = "config.Load"

	env := resolveEnv(opts.Env)
	dir := opts.Dir
	if dir == "" {
		dir = defaultDir
	}

	v := viper.New()
	v.SetConfigType(fileType)
	setDefaults(v, env)

	if err := mergeFile(v, filepath.Join(dir, defaultFile+"."+fileType)); err != nil {
		return nil, errors.New(op).Err(err).Msg("Failed to read default configuration")
	}
	if err := mergeFile(v, filepath.Join(dir, env+"."+fileType)); err != nil {
		return nil, errors.New(op).Err(err).Msg("Failed to read " + env + " configuration")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, errors.New(op).Err(err).Msg("Failed to bind environment")
		}
	}

	var app App
	if err := v.Unmarshal(&app); err != nil {
		return nil, errors.New(op).Err(err).Msg("Failed to decode configuration")
	}
	// The selected environment wins over an env key inside a file.
	if opts.Env != "" {
		app.Env = env
	}

	if err := validateApp(&app); err != nil {
		return nil, errors.New(op).Err(err).Msg("Invalid configuration")
	}
	return &app, nil
}

func resolveEnv(env string) string {
	if env != "" {
		return env
	}
	if env = os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return EnvDevelopment
}

func setDefaults(v *viper.Viper, env string) {
	def := logging.DefaultConfig()

	v.SetDefault("env", env)
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.shutdownTimeout", "10s")

	v.SetDefault("logging.level", def.Level)
	v.SetDefault("logging.format", def.Format)
	v.SetDefault("logging.directory", def.Directory)
	v.SetDefault("logging.maxSize", def.MaxSize)
	v.SetDefault("logging.maxFiles", def.MaxFiles)
	v.SetDefault("logging.compress", def.Compress)
	v.SetDefault("logging.forceConsole", def.ForceConsole)
	v.SetDefault("logging.timeZone", def.TimeZone)
	v.SetDefault("logging.shutdownTimeoutMs", def.ShutdownTimeoutMS)
	v.SetDefault("logging.faultExitDelayMs", def.FaultExitDelayMS)
	v.SetDefault("logging.bufferSize", def.BufferSize)
}

// mergeFile layers path over what v already holds. A missing file is skipped.
func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); stderrs.Is(err, fs.ErrNotExist) {
		return nil
	}
	v.SetConfigFile(path)
	return v.MergeInConfig()
}

func validateApp(app *App) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := logging.RegisterValidations(validate); err != nil {
		return err
	}
	return validate.Struct(app)
}
