package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(50<<20), cfg.Upload.MaxFileSize)
	assert.Equal(t, 20, cfg.Upload.MaxFiles)
	assert.Equal(t, 1, cfg.Upload.Workers)
	assert.Equal(t, 5, cfg.Preview.Rows)
	assert.Equal(t, 2, cfg.Preview.ChartSeries)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "sweeper.log", cfg.Logging.File)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_REQUEST_TIMEOUT", "2m")
	t.Setenv("UPLOAD_WORKERS", "4")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
	assert.Equal(t, 4, cfg.Upload.Workers)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		contains string
	}{
		{"Bad integer", "SERVER_PORT", "http", "invalid integer"},
		{"Bad duration", "SERVER_READ_TIMEOUT", "soon", "invalid duration"},
		{"Port out of range", "SERVER_PORT", "70000", "SERVER_PORT"},
		{"Zero workers", "UPLOAD_WORKERS", "0", "UPLOAD_WORKERS"},
		{"Unknown level", "LOG_LEVEL", "loud", "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Server.Port = 0
	cfg.Upload.MaxFileSize = 0
	cfg.Logging.Format = "xml"

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "UPLOAD_MAX_FILE_SIZE")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestLoad_ReportsEveryBadValue(t *testing.T) {
	t.Setenv("SERVER_PORT", "http")
	t.Setenv("SERVER_IDLE_TIMEOUT", "later")
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "big")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "SERVER_IDLE_TIMEOUT")
	assert.Contains(t, err.Error(), "UPLOAD_MAX_FILE_SIZE")
}

func TestLoad_EmptyValueUsesDefault(t *testing.T) {
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
