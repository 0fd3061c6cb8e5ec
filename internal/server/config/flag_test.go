package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-u", "https://app.example.com", "-l", "debug"},
			expected: &Config{
				EndpointAddrGRPC: "127.0.0.1:9090",
				DatabaseDSN:      "db",
				SecretKey:        "secret",
				BaseURL:          "https://app.example.com",
				LogLevel:         "debug",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-c", "cfg.json", "-x", "1", "-a", ":7000"},
			expected: &Config{EndpointAddrGRPC: ":7000"},
		},
		{
			name:        "flag without value panics",
			args:        []string{"-a"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config, tt.args) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config, tt.args) })
			}
		})
	}
}
