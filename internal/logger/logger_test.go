package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		development bool
		wantErr     bool
	}{
		{name: "debug level production", level: "debug"},
		{name: "info level production", level: "info"},
		{name: "warn level development", level: "warn", development: true},
		{name: "error level development", level: "error", development: true},
		{name: "invalid level", level: "invalid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.development)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, logger)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, logger.SugaredLogger)
			require.Equal(t, tt.level, logger.GetLevel())
		})
	}
}

func TestLogger_SetLevel(t *testing.T) {
	logger, err := NewLogger("info", false)
	require.NoError(t, err)

	require.NoError(t, logger.SetLevel("error"))
	require.Equal(t, "error", logger.GetLevel())

	require.Error(t, logger.SetLevel("loud"))
	require.Equal(t, "error", logger.GetLevel())
}

func TestLogger_WithComponentSharesLevel(t *testing.T) {
	base, err := NewLogger("info", false)
	require.NoError(t, err)
	require.Equal(t, "", base.GetComponent())

	driver := base.WithComponent("driver")
	submitter := base.WithComponent("submitter")
	require.Equal(t, "driver", driver.GetComponent())
	require.Equal(t, "submitter", submitter.GetComponent())

	require.NoError(t, base.SetLevel("debug"))
	require.Equal(t, "debug", driver.GetLevel())
	require.Equal(t, "debug", submitter.GetLevel())
	require.True(t, driver.atomicLevel.Enabled(zapcore.DebugLevel))
}

func TestNewComponentLogger_InvalidLevelPanics(t *testing.T) {
	require.Panics(t, func() {
		_ = NewComponentLogger("batch-store", "nope", false)
	})

	l := NewComponentLogger("batch-store", "warn", true)
	require.Equal(t, "batch-store", l.GetComponent())
	require.Equal(t, "warn", l.GetLevel())
}

type mockLoggingConfig struct {
	defaultLevel    string
	development     bool
	componentLevels map[string]string
}

func (m *mockLoggingConfig) GetComponentLevel(component string) string {
	if level, ok := m.componentLevels[component]; ok {
		return level
	}
	return m.defaultLevel
}

func (m *mockLoggingConfig) GetDefaultLevel() string {
	return m.defaultLevel
}

func (m *mockLoggingConfig) IsDevelopment() bool {
	return m.development
}

func TestNewComponentLoggerFromConfig(t *testing.T) {
	tests := []struct {
		name          string
		component     string
		config        LoggingConfig
		expectedLevel string
	}{
		{
			name:      "component with specific level",
			component: "driver",
			config: &mockLoggingConfig{
				defaultLevel:    "info",
				componentLevels: map[string]string{"driver": "debug"},
			},
			expectedLevel: "debug",
		},
		{
			name:      "component using default level",
			component: "submitter",
			config: &mockLoggingConfig{
				defaultLevel:    "warn",
				componentLevels: map[string]string{},
			},
			expectedLevel: "warn",
		},
		{
			name:          "nil config uses defaults",
			component:     "maintenance",
			config:        nil,
			expectedLevel: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewComponentLoggerFromConfig(tt.component, tt.config)
			require.NotNil(t, logger)
			require.Equal(t, tt.component, logger.GetComponent())
			require.Equal(t, tt.expectedLevel, logger.GetLevel())
		})
	}
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	require.NotNil(t, logger.SugaredLogger)

	logger.Debug("test")
	logger.Info("test")
	logger.Warn("test")
	logger.Error("test")
}
