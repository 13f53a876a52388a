package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK",
			args:        []string{"cmd", "-a", ":9090", "-d", "postgres://flag:flag@db:5432/flag", "-r", "redis://cache:6379/2", "-s", "30"},
			expectPanic: false,
			expected: &Config{
				HTTPAddr:        ":9090",
				DatabaseDSN:     "postgres://flag:flag@db:5432/flag",
				RedisURL:        "redis://cache:6379/2",
				ShutdownTimeout: 30 * time.Second,
			}},
		{name: "Test2 incorrect shutdown timeout", args: []string{"cmd", "-a", ":9090", "-s", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Equal(t, tt.expected, config)
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
