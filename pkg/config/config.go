package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/goran-ethernal/FlashBatcher/internal/common"
	"github.com/goran-ethernal/FlashBatcher/internal/logger"
)

// Config represents the complete configuration for FlashBatcher.
type Config struct {
	// Batcher contains the accumulation and batch sizing configuration
	Batcher BatcherConfig `yaml:"batcher" json:"batcher" toml:"batcher"`

	// DB contains the durable store configuration
	DB DatabaseConfig `yaml:"db" json:"db" toml:"db"`

	// Maintenance contains optional database maintenance settings
	Maintenance *MaintenanceConfig `yaml:"maintenance,omitempty" json:"maintenance,omitempty" toml:"maintenance,omitempty"`

	// Submitter contains the batch submission configuration
	Submitter SubmitterConfig `yaml:"submitter" json:"submitter" toml:"submitter"`

	// Source contains the upstream notification source configuration
	Source SourceConfig `yaml:"source" json:"source" toml:"source"`

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`

	// API contains the read-only REST API configuration
	API *APIConfig `yaml:"api,omitempty" json:"api,omitempty" toml:"api,omitempty"`
}

// BatcherConfig configures how committed blocks are grouped into batches.
type BatcherConfig struct {
	// BatchSize is the number of blocks per batch. Zero is treated as 1.
	BatchSize uint64 `yaml:"batch_size" json:"batch_size" toml:"batch_size"`

	// MaxPendingBlocks is a soft limit on the in-memory queue length.
	// Exceeding it is logged and reported as a metric; blocks are never dropped.
	// Zero disables the check.
	MaxPendingBlocks uint64 `yaml:"max_pending_blocks" json:"max_pending_blocks" toml:"max_pending_blocks"`
}

// ApplyDefaults sets default values for optional batcher configuration fields.
func (b *BatcherConfig) ApplyDefaults() {
	if b.BatchSize == 0 {
		b.BatchSize = 1
	}
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	// Path is the file path to the SQLite database
	Path string `yaml:"path" json:"path" toml:"path"`

	// JournalMode sets the SQLite journal mode (e.g., "WAL", "DELETE")
	// WAL mode is recommended for better concurrency
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode" jsonschema:"enum=WAL,enum=DELETE,enum=TRUNCATE,enum=PERSIST,enum=MEMORY"`

	// Synchronous sets the synchronization level ("FULL", "NORMAL", "OFF")
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous" jsonschema:"enum=FULL,enum=NORMAL,enum=OFF"`

	// BusyTimeout is the time in milliseconds to wait when the database is locked
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize is the size of the page cache (negative = KB, positive = pages)
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	// MaxOpenConnections is the maximum number of open database connections
	MaxOpenConnections int `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`

	// MaxIdleConnections is the maximum number of idle connections in the pool
	MaxIdleConnections int `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`
}

// ApplyDefaults sets default values for optional database configuration fields.
func (d *DatabaseConfig) ApplyDefaults() {
	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		// batches must survive a power loss once insert_batch returned
		d.Synchronous = "FULL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 5000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 1
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 1
	}
}

// Validate checks the database settings.
func (d *DatabaseConfig) Validate() error {
	if d.Path == "" {
		return fmt.Errorf("db.path is required")
	}

	if d.JournalMode != "" &&
		!slices.Contains([]string{"WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY"}, d.JournalMode) {
		return fmt.Errorf("db.journal_mode must be one of: WAL, DELETE, TRUNCATE, PERSIST, MEMORY")
	}

	if d.Synchronous != "" && !slices.Contains([]string{"FULL", "NORMAL", "OFF"}, d.Synchronous) {
		return fmt.Errorf("db.synchronous must be one of: FULL, NORMAL, OFF")
	}

	return nil
}

// MaintenanceConfig configures database maintenance behavior.
type MaintenanceConfig struct {
	// Enabled controls whether background maintenance runs
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// CheckInterval is how often to run maintenance (e.g., "30m", "1h")
	CheckInterval common.Duration `yaml:"check_interval" json:"check_interval" toml:"check_interval"`

	// VacuumOnStartup runs maintenance immediately on startup
	VacuumOnStartup bool `yaml:"vacuum_on_startup" json:"vacuum_on_startup" toml:"vacuum_on_startup"`

	// WALCheckpointMode controls the WAL checkpoint aggressiveness
	// Options: PASSIVE, FULL, RESTART, TRUNCATE
	WALCheckpointMode string `yaml:"wal_checkpoint_mode" json:"wal_checkpoint_mode" toml:"wal_checkpoint_mode"`
}

// ApplyDefaults sets default values for optional maintenance configuration fields.
func (m *MaintenanceConfig) ApplyDefaults() {
	if m.CheckInterval.Duration == 0 {
		m.CheckInterval = common.NewDuration(30 * time.Minute) //nolint:mnd
	}
	if m.WALCheckpointMode == "" {
		m.WALCheckpointMode = "TRUNCATE"
	}
}

// Validate checks if the maintenance configuration is valid.
func (m *MaintenanceConfig) Validate() error {
	if m.WALCheckpointMode != "" {
		validModes := []string{"PASSIVE", "FULL", "RESTART", "TRUNCATE"}
		if !slices.Contains(validModes, m.WALCheckpointMode) {
			return fmt.Errorf("maintenance.wal_checkpoint_mode: must be one of: PASSIVE, FULL, RESTART, TRUNCATE")
		}
	}

	return nil
}

// SinkType names a submission sink implementation.
type SinkType string

const (
	// SinkTypeStub accepts every batch without any network call.
	SinkTypeStub SinkType = "stub"
)

// SinkConfig selects and configures the external submission sink.
type SinkConfig struct {
	// Type is the sink implementation. Only "stub" exists today.
	Type SinkType `yaml:"type" json:"type" toml:"type" jsonschema:"enum=stub"`

	// StartHeight is the first external reference handed out by the stub sink
	StartHeight uint64 `yaml:"start_height" json:"start_height" toml:"start_height"`
}

// SubmitterConfig configures the sweep over pending batches.
type SubmitterConfig struct {
	// Interval runs an independent periodic sweep. Zero means sweeps only
	// happen right after a batch is written.
	Interval common.Duration `yaml:"interval" json:"interval" toml:"interval"`

	// MaxRetries moves a batch to Failed once its retry count reaches this value.
	// Zero retries forever.
	MaxRetries uint32 `yaml:"max_retries" json:"max_retries" toml:"max_retries"`

	// DeliveriesPerSecond caps calls to the sink. Zero means unlimited.
	DeliveriesPerSecond int `yaml:"deliveries_per_second" json:"deliveries_per_second" toml:"deliveries_per_second"`

	// Sink configures the delivery target
	Sink SinkConfig `yaml:"sink" json:"sink" toml:"sink"`
}

// ApplyDefaults sets default values for optional submitter configuration fields.
func (s *SubmitterConfig) ApplyDefaults() {
	if s.Sink.Type == "" {
		s.Sink.Type = SinkTypeStub
	}
}

// Validate checks if the submitter configuration is valid.
func (s *SubmitterConfig) Validate() error {
	if s.Sink.Type != SinkTypeStub {
		return fmt.Errorf("submitter.sink.type: unsupported sink %q (supported: stub)", s.Sink.Type)
	}
	if s.DeliveriesPerSecond < 0 {
		return fmt.Errorf("submitter.deliveries_per_second must not be negative")
	}
	if s.Interval.Duration < 0 {
		return fmt.Errorf("submitter.interval must not be negative")
	}
	return nil
}

// SourceConfig configures the JSON-RPC polling notification source.
type SourceConfig struct {
	// RPCURL is the Ethereum RPC endpoint URL
	RPCURL string `yaml:"rpc_url" json:"rpc_url" toml:"rpc_url"`

	// StartBlock is the first block to ingest on a fresh store
	StartBlock uint64 `yaml:"start_block" json:"start_block" toml:"start_block"`

	// Finality specifies which head to follow: "finalized", "safe", or "latest"
	Finality string `yaml:"finality" json:"finality" toml:"finality" jsonschema:"enum=latest,enum=safe,enum=finalized"`

	// PollInterval is how long to wait when no new block is available
	PollInterval common.Duration `yaml:"poll_interval" json:"poll_interval" toml:"poll_interval"`

	// MaxBlocksPerPoll caps the number of blocks in a single commit notification
	MaxBlocksPerPoll uint64 `yaml:"max_blocks_per_poll" json:"max_blocks_per_poll" toml:"max_blocks_per_poll"`

	// ReorgWindow is the number of recent blocks kept for parent hash checks
	ReorgWindow uint64 `yaml:"reorg_window" json:"reorg_window" toml:"reorg_window"`

	// ResumeFromStore starts one block past the highest batched block when the store has batches
	ResumeFromStore bool `yaml:"resume_from_store" json:"resume_from_store" toml:"resume_from_store"`

	// Retry contains RPC retry configuration with exponential backoff
	Retry *RetryConfig `yaml:"retry,omitempty" json:"retry,omitempty" toml:"retry,omitempty"`
}

// ApplyDefaults sets default values for optional source configuration fields.
func (s *SourceConfig) ApplyDefaults() {
	if s.Finality == "" {
		s.Finality = "latest"
	}
	if s.PollInterval.Duration == 0 {
		s.PollInterval = common.NewDuration(2 * time.Second) //nolint:mnd
	}
	if s.MaxBlocksPerPoll == 0 {
		s.MaxBlocksPerPoll = 50
	}
	if s.ReorgWindow == 0 {
		s.ReorgWindow = 64
	}
	if s.Retry != nil {
		s.Retry.ApplyDefaults()
	}
}

// Validate checks if the source configuration is valid.
func (s *SourceConfig) Validate() error {
	if s.RPCURL == "" {
		return fmt.Errorf("source.rpc_url is required")
	}
	if !slices.Contains([]string{"finalized", "safe", "latest"}, s.Finality) {
		return fmt.Errorf("source.finality must be one of: 'finalized', 'safe', or 'latest'")
	}
	return nil
}

// RetryConfig represents RPC retry configuration with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial request)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// InitialBackoff is the initial backoff duration before first retry
	InitialBackoff common.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`

	// MaxBackoff is the maximum backoff duration
	MaxBackoff common.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`

	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`
}

// ApplyDefaults sets default values for retry configuration.
func (r *RetryConfig) ApplyDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 5
	}
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = common.NewDuration(1 * time.Second)
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = common.NewDuration(30 * time.Second) //nolint:mnd
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2.0
	}
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels sets log levels for specific components
	// Available components:
	//   - driver: notification stream loop
	//   - accumulator: in-memory block queue
	//   - batch-writer: batch persistence
	//   - batch-store: durable store
	//   - submitter: pending batch sweeps
	//   - source: JSON-RPC notification source
	//   - maintenance: database maintenance
	//   - api: REST API
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		if _, validComponent := common.AllComponents[common.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if level, ok := l.ComponentLevels[component]; ok {
		return common.ToLowerWithTrim(level)
	}
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l.Development
}

// IsNil reports whether the config pointer is nil.
func (l *LoggingConfig) IsNil() bool {
	return l == nil
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	// Format: "host:port" or ":port"
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" {
			return fmt.Errorf("path is required when metrics are enabled")
		}
		if m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// APIConfig configures the read-only REST API.
type APIConfig struct {
	// Enabled controls whether the API server is started
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the API server to
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout common.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout common.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout common.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`

	// CORS contains cross-origin settings
	CORS CORSConfig `yaml:"cors" json:"cors" toml:"cors"`
}

// CORSConfig configures cross-origin resource sharing for the API.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled" toml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
}

// ApplyDefaults sets default values for optional API configuration fields.
func (a *APIConfig) ApplyDefaults() {
	if a.ListenAddress == "" {
		a.ListenAddress = ":8080"
	}
	if a.ReadTimeout.Duration == 0 {
		a.ReadTimeout = common.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.WriteTimeout.Duration == 0 {
		a.WriteTimeout = common.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.IdleTimeout.Duration == 0 {
		a.IdleTimeout = common.NewDuration(60 * time.Second) //nolint:mnd
	}
	if a.CORS.Enabled && len(a.CORS.AllowedOrigins) == 0 {
		a.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate checks if the API configuration is valid.
func (a *APIConfig) Validate() error {
	if a.Enabled && a.ListenAddress == "" {
		return fmt.Errorf("listen_address is required when the API is enabled")
	}
	return nil
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	c.Batcher.ApplyDefaults()
	c.DB.ApplyDefaults()
	c.Submitter.ApplyDefaults()
	c.Source.ApplyDefaults()

	if c.Maintenance != nil {
		c.Maintenance.ApplyDefaults()
	}

	if c.Logging != nil {
		c.Logging.ApplyDefaults()
	}

	if c.Metrics != nil {
		c.Metrics.ApplyDefaults()
	}

	if c.API != nil {
		c.API.ApplyDefaults()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.DB.Validate(); err != nil {
		return err
	}

	if err := c.Submitter.Validate(); err != nil {
		return err
	}

	if err := c.Source.Validate(); err != nil {
		return err
	}

	if c.Maintenance != nil {
		if err := c.Maintenance.Validate(); err != nil {
			return fmt.Errorf("maintenance: %w", err)
		}
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if c.API != nil {
		if err := c.API.Validate(); err != nil {
			return fmt.Errorf("api: %w", err)
		}
	}

	return nil
}
