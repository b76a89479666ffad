package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
scope:
  months:
    - "2025-09"
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-09"}, cfg.Scope.Months)
	assert.Equal(t, []string{"Saturday", "Sunday"}, cfg.Scope.WeeklyOff)
	assert.Equal(t, "https://www.hkex.com.hk", cfg.Source.BaseURL)
	assert.Equal(t, "dayquot", cfg.Source.ReportFamily)
	assert.Equal(t, "e", cfg.Source.Segment)
	assert.Equal(t, 3, cfg.Fetch.MaxConcurrent)
	assert.Equal(t, 30, cfg.Fetch.RequestsPerMinute)
	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.Fetch.Headless)
	assert.True(t, cfg.Output.DedupeMerged)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
scope:
  months:
    - "2025-09"
    - "2025-10"
  holidays:
    - "2025-09-01"
  weekly_off:
    - "Sunday"
source:
  locale: chi
  segment: c
fetch:
  max_concurrent: 5
  requests_per_minute: 12
  timeout: 30s
output:
  dir: /tmp/hkex-out
  dedupe_merged: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-09", "2025-10"}, cfg.Scope.Months)
	assert.Equal(t, []string{"2025-09-01"}, cfg.Scope.Holidays)
	assert.Equal(t, []string{"Sunday"}, cfg.Scope.WeeklyOff)
	assert.Equal(t, "chi", cfg.Source.Locale)
	assert.Equal(t, "c", cfg.Source.Segment)
	assert.Equal(t, 5, cfg.Fetch.MaxConcurrent)
	assert.Equal(t, 12, cfg.Fetch.RequestsPerMinute)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "/tmp/hkex-out", cfg.Output.Dir)
	assert.False(t, cfg.Output.DedupeMerged)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HKX_FETCH_MAX_CONCURRENT", "7")
	t.Setenv("HKX_SCOPE_MONTHS", "2025-11,2025-12")

	cfg, err := Load(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Fetch.MaxConcurrent)
	assert.Equal(t, []string{"2025-11", "2025-12"}, cfg.Scope.Months)
}

func TestLoad_MissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("HKX_SCOPE_MONTHS", "2025-09")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-09"}, cfg.Scope.Months)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no months", content: `
output:
  dir: data
`},
		{name: "zero concurrency", content: minimalConfig + `
fetch:
  max_concurrent: 0
`},
		{name: "bad segment", content: minimalConfig + `
source:
  segment: "ee"
`},
		{name: "bad logging output", content: minimalConfig + `
logging:
  output: syslog
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}
