package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "expsim/internal/errors"
)

var envVars = []string{
	"LDS_SERIES_START_TIME", "LDS_SERIES_STRIDE", "LDS_SERIES_RESAMPLE_COUNT",
	"LDS_SERIES_INTERPOLATION_POINTS", "LDS_SERIES_DESCENDING_END",
	"LDS_PATHS_BASE_DIR", "LDS_PATHS_DIR_NAME", "LDS_LOGGING_LEVEL",
	"LDS_SERVER_ADDR", "LDS_SERVER_RATE_LIMIT_ENABLED",
	"LDS_TELEMETRY_ENABLE_METRICS", "LDS_TELEMETRY_ENABLE_TRACING",
}

// clearEnv unsets every variable the tests touch and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		if val, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, val) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ldseries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     error
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default().Series, cfg.Series)
				assert.Equal(t, "load_deflection", cfg.Paths.SubDir)
				assert.Equal(t, "load_deflection.csv", cfg.Paths.FileName)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, ":8080", cfg.Server.Addr)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.True(t, cfg.Server.RateLimit.Enabled)
				assert.True(t, cfg.Telemetry.EnableMetrics)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"LDS_SERIES_STRIDE":     "2",
				"LDS_SERIES_START_TIME": "1.5",
				"LDS_LOGGING_LEVEL":     "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2, cfg.Series.Stride)
				assert.Equal(t, 1.5, cfg.Series.StartTime)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "file values apply where env is unset",
			env:  map[string]string{"LDS_SERIES_STRIDE": "3"},
			file: `
series:
  stride: 7
  resample_count: 40
  descending_end: post-peak
paths:
  base_dir: /data/shear_zone
  dir_name: B7
server:
  read_timeout: 5s
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.Series.Stride, "env wins over file")
				assert.Equal(t, 40, cfg.Series.ResampleCount)
				assert.Equal(t, "post-peak", cfg.Series.DescendingEnd)
				assert.Equal(t, "/data/shear_zone", cfg.Paths.BaseDir)
				assert.Equal(t, "B7", cfg.Paths.DirName)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
			},
		},
		{
			name: "file disables switches that default on",
			file: `
server:
  rate_limit:
    enabled: false
telemetry:
  enable_metrics: false
  enable_tracing: true
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Server.RateLimit.Enabled)
				assert.False(t, cfg.Telemetry.EnableMetrics)
				assert.True(t, cfg.Telemetry.EnableTracing)
				assert.Equal(t, 50.0, cfg.Server.RateLimit.RPS)
			},
		},
		{
			name: "env switch wins over file",
			env:  map[string]string{"LDS_TELEMETRY_ENABLE_METRICS": "true"},
			file: "telemetry:\n  enable_metrics: false\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Telemetry.EnableMetrics)
				assert.True(t, cfg.Server.RateLimit.Enabled, "absent key keeps the default")
			},
		},
		{
			name:    "stride below one fails validation",
			env:     map[string]string{"LDS_SERIES_STRIDE": "0"},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "resample count below two fails validation",
			env:     map[string]string{"LDS_SERIES_RESAMPLE_COUNT": "1"},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "unknown descending mode fails validation",
			env:     map[string]string{"LDS_SERIES_DESCENDING_END": "sideways"},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"LDS_SERIES_STRIDE": "ten"},
			wantErr: apperrors.ErrConfig,
		},
		{
			name:    "unknown yaml key",
			file:    "series:\n  strde: 3\n",
			wantErr: apperrors.ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			var path string
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidate_NegativeStartTime(t *testing.T) {
	cfg := Default()
	cfg.Series.StartTime = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
