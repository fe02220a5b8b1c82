package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "set", value: ":8080", expected: ":8080"},
		{name: "unset uses default", value: "", expected: ":9090"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LISTEN_ADDR", tt.value)
			assert.Equal(t, tt.expected, GetEnvString("LISTEN_ADDR", ":9090"))
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{name: "set", value: "8080", expected: 8080},
		{name: "unset uses default", value: "", expected: 9090},
		{name: "invalid uses default", value: "not-a-number", expected: 9090},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("METRICS_PORT", tt.value)
			assert.Equal(t, tt.expected, GetEnvInt("METRICS_PORT", 9090))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback bool
		expected bool
	}{
		{name: "true", value: "true", fallback: false, expected: true},
		{name: "one", value: "1", fallback: false, expected: true},
		{name: "false", value: "false", fallback: true, expected: false},
		{name: "zero", value: "0", fallback: true, expected: false},
		{name: "unset uses default", value: "", fallback: true, expected: true},
		{name: "invalid uses default", value: "yes please", fallback: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PUSH_ENABLED", tt.value)
			assert.Equal(t, tt.expected, GetEnvBool("PUSH_ENABLED", tt.fallback))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "set", value: "30s", expected: 30 * time.Second},
		{name: "compound", value: "1h30m", expected: 90 * time.Minute},
		{name: "unset uses default", value: "", expected: 10 * time.Second},
		{name: "invalid uses default", value: "soon", expected: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PUSH_TIMEOUT", tt.value)
			assert.Equal(t, tt.expected, GetEnvDuration("PUSH_TIMEOUT", 10*time.Second))
		})
	}
}
