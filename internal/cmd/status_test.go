package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatus(t *testing.T) {
	env := withTestApp(t, nil, "")
	seedRun(t, env, "one", sampleRows())

	out := captureStdout(t, func() {
		require.NoError(t, runStatus(statusCmd, nil))
	})

	assert.Contains(t, out, "methodmap Status")
	assert.Contains(t, out, "(not found, using defaults)")
	assert.Contains(t, out, "Preferred: auto")
	assert.Contains(t, out, "* stub")
	assert.Contains(t, out, "available")
	assert.Contains(t, out, "Dir:      "+env.dir)
	assert.Contains(t, out, "Saved:    1")
	assert.Contains(t, out, "Redact:   enabled")
}

func TestProviderOrder(t *testing.T) {
	got := providerOrder(map[string]bool{
		"zz":         true,
		"ollama-api": false,
		"process":    true,
		"aa":         false,
	})
	assert.Equal(t, []string{"process", "ollama-api", "aa", "zz"}, got)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.expected {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.expected)
		}
	}
}

func TestFormatBool(t *testing.T) {
	noColors(t)
	assert.Equal(t, "enabled", formatBool(true))
	assert.Equal(t, "disabled", formatBool(false))
}
