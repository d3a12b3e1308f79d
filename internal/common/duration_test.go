package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// schedule mirrors how services embed durations in their config sections.
type schedule struct {
	Interval     Duration `yaml:"interval" json:"interval" toml:"interval"`
	PollInterval Duration `yaml:"poll_interval" json:"poll_interval" toml:"poll_interval"`
}

func TestDuration_DecodeConfigFormats(t *testing.T) {
	tests := []struct {
		name   string
		decode func(s *schedule) error
	}{
		{
			name: "yaml",
			decode: func(s *schedule) error {
				return yaml.Unmarshal([]byte("interval: 30s\npoll_interval: 1h30m\n"), s)
			},
		},
		{
			name: "json",
			decode: func(s *schedule) error {
				return json.Unmarshal([]byte(`{"interval":"30s","poll_interval":"1h30m"}`), s)
			},
		},
		{
			name: "toml",
			decode: func(s *schedule) error {
				_, err := toml.Decode("interval = \"30s\"\npoll_interval = \"1h30m\"\n", s)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s schedule
			require.NoError(t, tt.decode(&s))
			require.Equal(t, 30*time.Second, s.Interval.Duration)
			require.Equal(t, 90*time.Minute, s.PollInterval.Duration)
		})
	}
}

func TestDuration_OmittedStaysZero(t *testing.T) {
	var s schedule
	require.NoError(t, yaml.Unmarshal([]byte("poll_interval: 2s\n"), &s))

	// zero means "only sweep after each batch" for the submitter, so an absent key must not error
	require.Zero(t, s.Interval.Duration)
	require.Equal(t, 2*time.Second, s.PollInterval.Duration)
}

func TestDuration_RejectsValuesWithoutUnit(t *testing.T) {
	var s schedule

	err := yaml.Unmarshal([]byte("interval: soon\n"), &s)
	require.ErrorContains(t, err, `invalid duration "soon"`)

	err = json.Unmarshal([]byte(`{"poll_interval":"2"}`), &s)
	require.ErrorContains(t, err, `invalid duration "2"`)

	_, err = toml.Decode(`interval = "-"`, &s)
	require.Error(t, err)
}

func TestDuration_MarshalText(t *testing.T) {
	s := schedule{
		Interval:     NewDuration(90 * time.Second),
		PollInterval: NewDuration(500 * time.Millisecond),
	}

	out, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{"interval":"1m30s","poll_interval":"500ms"}`, string(out))

	out, err = yaml.Marshal(s)
	require.NoError(t, err)
	require.Equal(t, "interval: 1m30s\npoll_interval: 500ms\n", string(out))
}

func TestDuration_JSONSchema(t *testing.T) {
	schema := Duration{}.JSONSchema()
	require.Equal(t, "string", schema.Type)
	require.Equal(t, "Duration", schema.Title)
	require.Contains(t, schema.Examples, "300ms")

	r := jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	reflected := r.Reflect(&schedule{})

	for _, key := range []string{"interval", "poll_interval"} {
		prop, ok := reflected.Properties.Get(key)
		require.True(t, ok, key)
		require.Equal(t, "string", prop.Type, key)
		require.Equal(t, "Duration", prop.Title, key)
	}
}
