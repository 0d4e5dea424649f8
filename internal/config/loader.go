package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Load reads configuration from environment variables, applies defaults
// for unset values and validates the result.
func Load() (*Config, error) {
	var env envReader

	cfg := &Config{
		Server: ServerConfig{
			Host:            env.str("SERVER_HOST", "127.0.0.1"),
			Port:            env.integer("SERVER_PORT", 8080),
			ReadTimeout:     env.duration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.duration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     env.duration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: env.duration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			RequestTimeout:  env.duration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
		},
		Upload: UploadConfig{
			MaxFileSize: env.size("UPLOAD_MAX_FILE_SIZE", 50<<20),
			MaxFiles:    env.integer("UPLOAD_MAX_FILES", 20),
			Workers:     env.integer("UPLOAD_WORKERS", 1),
		},
		Preview: PreviewConfig{
			Rows:        env.integer("PREVIEW_ROWS", 5),
			ChartSeries: env.integer("CHART_SERIES", 2),
			ChartRows:   env.integer("CHART_ROWS", 20),
		},
		Logging: LoggingConfig{
			Level:  env.str("LOG_LEVEL", "info"),
			Format: env.str("LOG_FORMAT", "text"),
			File:   env.str("SWEEPER_LOG_FILE", "sweeper.log"),
		},
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envReader looks up settings and remembers every value it could not
// parse, so one bad variable does not hide the next.
type envReader struct {
	errs []error
}

func (r *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return v, ok && v != ""
}

func (r *envReader) fail(key, value, what string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q: invalid %s: %w", key, value, what, err))
}

func (r *envReader) str(key, def string) string {
	if v, ok := r.lookup(key); ok {
		return v
	}
	return def
}

func (r *envReader) integer(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, "integer", err)
		return def
	}
	return n
}

// size reads a byte count.
func (r *envReader) size(key string, def int64) int64 {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.fail(key, v, "integer", err)
		return def
	}
	return n
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, "duration", err)
		return def
	}
	return d
}
