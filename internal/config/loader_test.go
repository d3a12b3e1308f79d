package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgconfig "github.com/goran-ethernal/FlashBatcher/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile_Examples(t *testing.T) {
	for _, path := range []string{
		"../../config.example.yaml",
		"../../config.example.json",
		"../../config.example.toml",
	} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			cfg, err := LoadFromFile(path)
			require.NoError(t, err)
			validateConfig(t, cfg)
		})
	}
}

func TestLoadFromFile_UnsupportedFormat(t *testing.T) {
	_, err := LoadFromFile("config.txt")
	require.ErrorContains(t, err, "unsupported config file format")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load([]byte(`
db:
  path: /tmp/batches.db
source:
  rpc_url: http://localhost:8545
`), FormatYAML)
	require.NoError(t, err)

	require.Equal(t, uint64(1), cfg.Batcher.BatchSize)
	require.Equal(t, "WAL", cfg.DB.JournalMode)
	require.Equal(t, "latest", cfg.Source.Finality)
	require.Equal(t, 2*time.Second, cfg.Source.PollInterval.Duration)
	require.Equal(t, pkgconfig.SinkTypeStub, cfg.Submitter.Sink.Type)
	require.Zero(t, cfg.Submitter.Interval.Duration)
	require.Nil(t, cfg.Maintenance)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "missing db path",
			data:    "source:\n  rpc_url: http://x\n",
			wantErr: "db.path is required",
		},
		{
			name:    "missing rpc url",
			data:    "db:\n  path: a.db\n",
			wantErr: "source.rpc_url is required",
		},
		{
			name:    "unknown sink",
			data:    "db:\n  path: a.db\nsource:\n  rpc_url: http://x\nsubmitter:\n  sink:\n    type: celestia\n",
			wantErr: "unsupported sink",
		},
		{
			name:    "unknown component level",
			data:    "db:\n  path: a.db\nsource:\n  rpc_url: http://x\nlogging:\n  component_levels:\n    downloader: debug\n",
			wantErr: "unknown component 'downloader'",
		},
		{
			name:    "unknown field",
			data:    "db:\n  path: a.db\n  colour: red\nsource:\n  rpc_url: http://x\n",
			wantErr: "failed to parse YAML config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.data), FormatYAML)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_TOMLUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[db]
path = "a.db"
bogus = 1

[source]
rpc_url = "http://x"
`), 0o600))

	_, err := LoadFromFile(path)
	require.ErrorContains(t, err, "unknown keys")
}

// validateConfig checks that the loaded example config has expected values
func validateConfig(t *testing.T, cfg *pkgconfig.Config) {
	t.Helper()

	require.Equal(t, uint64(10), cfg.Batcher.BatchSize)
	require.Equal(t, uint64(1000), cfg.Batcher.MaxPendingBlocks)
	require.Equal(t, "./data/flashbatcher.db", cfg.DB.Path)
	require.Equal(t, "FULL", cfg.DB.Synchronous)

	require.NotNil(t, cfg.Maintenance)
	require.Equal(t, 30*time.Minute, cfg.Maintenance.CheckInterval.Duration)

	require.Equal(t, 30*time.Second, cfg.Submitter.Interval.Duration)
	require.Equal(t, 10, cfg.Submitter.DeliveriesPerSecond)
	require.Equal(t, uint64(1), cfg.Submitter.Sink.StartHeight)

	require.Equal(t, "http://localhost:8545", cfg.Source.RPCURL)
	require.True(t, cfg.Source.ResumeFromStore)
	require.NotNil(t, cfg.Source.Retry)
	require.Equal(t, 5, cfg.Source.Retry.MaxAttempts)

	require.NotNil(t, cfg.Logging)
	require.Equal(t, "debug", cfg.Logging.GetComponentLevel("driver"))
	require.Equal(t, "info", cfg.Logging.GetComponentLevel("submitter"))

	require.NotNil(t, cfg.Metrics)
	require.Equal(t, "/metrics", cfg.Metrics.Path)

	require.NotNil(t, cfg.API)
	require.Equal(t, ":8080", cfg.API.ListenAddress)
	require.Equal(t, 15*time.Second, cfg.API.ReadTimeout.Duration)
}

func TestLoad_Durations(t *testing.T) {
	tests := []struct {
		format Format
		data   string
	}{
		{
			format: FormatYAML,
			data: `
db:
  path: /tmp/batches.db
maintenance:
  enabled: true
  check_interval: 45m
submitter:
  interval: 15s
source:
  rpc_url: http://localhost:8545
  poll_interval: 750ms
  retry:
    initial_backoff: 250ms
    max_backoff: 1m
api:
  read_timeout: 5s
`,
		},
		{
			format: FormatJSON,
			data: `{
  "db": {"path": "/tmp/batches.db"},
  "maintenance": {"enabled": true, "check_interval": "45m"},
  "submitter": {"interval": "15s"},
  "source": {
    "rpc_url": "http://localhost:8545",
    "poll_interval": "750ms",
    "retry": {"initial_backoff": "250ms", "max_backoff": "1m"}
  },
  "api": {"read_timeout": "5s"}
}`,
		},
		{
			format: FormatTOML,
			data: `
[db]
path = "/tmp/batches.db"

[maintenance]
enabled = true
check_interval = "45m"

[submitter]
interval = "15s"

[source]
rpc_url = "http://localhost:8545"
poll_interval = "750ms"

[source.retry]
initial_backoff = "250ms"
max_backoff = "1m"

[api]
read_timeout = "5s"
`,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			cfg, err := Load([]byte(tt.data), tt.format)
			require.NoError(t, err)

			require.NotNil(t, cfg.Maintenance)
			require.Equal(t, 45*time.Minute, cfg.Maintenance.CheckInterval.Duration)
			require.Equal(t, 15*time.Second, cfg.Submitter.Interval.Duration)
			require.Equal(t, 750*time.Millisecond, cfg.Source.PollInterval.Duration)
			require.NotNil(t, cfg.Source.Retry)
			require.Equal(t, 250*time.Millisecond, cfg.Source.Retry.InitialBackoff.Duration)
			require.Equal(t, time.Minute, cfg.Source.Retry.MaxBackoff.Duration)
			require.NotNil(t, cfg.API)
			require.Equal(t, 5*time.Second, cfg.API.ReadTimeout.Duration)
		})
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load([]byte(`
db:
  path: /tmp/batches.db
source:
  rpc_url: http://localhost:8545
  poll_interval: every block
`), FormatYAML)
	require.ErrorContains(t, err, `invalid duration "every block"`)
}
