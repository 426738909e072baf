package logging

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config describes the destinations of a Service. It is loaded once at process
// start and treated as read-only afterwards.
type Config struct {
	Level     string `mapstructure:"level" validate:"required,oneof=error warn info http debug"`
	Format    string `mapstructure:"format" validate:"required,oneof=pretty json"`
	Directory string `mapstructure:"directory" validate:"required"`
	// MaxSize is the size at which a file is rotated, e.g. "20m", "512k", "1g".
	MaxSize string `mapstructure:"maxSize" validate:"required,logsize"`
	// MaxFiles bounds history either by age ("14d") or by file count ("10").
	MaxFiles string `mapstructure:"maxFiles" validate:"required,logretention"`
	Compress bool   `mapstructure:"compress"`
	// ForceConsole enables the console destination in production.
	ForceConsole bool   `mapstructure:"forceConsole"`
	TimeZone     string `mapstructure:"timeZone" validate:"omitempty,timezone"`

	ShutdownTimeoutMS int `mapstructure:"shutdownTimeoutMs" validate:"gte=0"`
	FaultExitDelayMS  int `mapstructure:"faultExitDelayMs" validate:"gte=0"`
	// BufferSize is the number of lines each file destination queues before
	// dropping.
	BufferSize int `mapstructure:"bufferSize" validate:"gte=0"`
}

// DefaultConfig is used when no logging configuration is supplied.
func DefaultConfig() Config {
	return Config{
		Level:             "info",
		Format:            FormatJSON,
		Directory:         "logs",
		MaxSize:           "20m",
		MaxFiles:          "14d",
		ShutdownTimeoutMS: 1000,
		FaultExitDelayMS:  1000,
		BufferSize:        1000,
	}
}

func (c *Config) shutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

func (c *Config) faultExitDelay() time.Duration {
	if c.FaultExitDelayMS <= 0 {
		return time.Second
	}
	return time.Duration(c.FaultExitDelayMS) * time.Millisecond
}

func (c *Config) bufferSize() int {
	if c.BufferSize <= 0 {
		return 1000
	}
	return c.BufferSize
}

// parseSize converts "20m"-style sizes to whole megabytes, rounding up. A bare
// number is a byte count.
func parseSize(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == emptyString {
		return 0, fmt.Errorf("empty size")
	}

	mult := int64(1)
	switch s[len(s)-1] {
	case 'k':
		mult = 1 << 10
	case 'm':
		mult = 1 << 20
	case 'g':
		mult = 1 << 30
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	const mb = 1 << 20
	bytes := n * mult
	megabytes := int((bytes + mb - 1) / mb)
	if megabytes < 1 {
		megabytes = 1
	}
	return megabytes, nil
}

// retention bounds the history of one destination. Exactly one field is set.
type retention struct {
	days  int
	files int
}

func parseRetention(s string) (retention, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n <= 0 {
			return retention{}, fmt.Errorf("invalid retention %q", s)
		}
		return retention{days: n}, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return retention{}, fmt.Errorf("invalid retention %q", s)
	}
	return retention{files: n}, nil
}
