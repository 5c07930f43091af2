package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lockbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvData, "")

	opts, err := Parse(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, Default(), opts)
}

func TestParseFlags(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvData, "")

	opts, err := Parse([]string{
		"-f", "/tmp/secrets.data", "--interval", "10s", "--mask=false", "--plain",
		"--log-file", "/tmp/lockbox.log", "--log-level", "debug", "--version",
	}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, &Options{
		Data:     "/tmp/secrets.data",
		Interval: 10 * time.Second,
		Mask:     false,
		Plain:    true,
		LogFile:  "/tmp/lockbox.log",
		LogLevel: "debug",
		Version:  true,
	}, opts)
}

func TestParsePrecedence(t *testing.T) {
	path := writeConfig(t, `
data: from-file.data
interval: 1m
mask: false
plain: true
logLevel: warn
`)

	t.Setenv(EnvData, "")
	opts, err := Parse([]string{"-c", path}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "from-file.data", opts.Data)
	assert.Equal(t, time.Minute, opts.Interval)
	assert.False(t, opts.Mask)
	assert.True(t, opts.Plain)
	assert.Equal(t, "warn", opts.LogLevel)
	assert.Equal(t, path, opts.Config)

	// The environment overrides the file.
	t.Setenv(EnvData, "from-env.data")
	opts, err = Parse([]string{"-c", path}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "from-env.data", opts.Data)

	// Flags override both.
	opts, err = Parse([]string{"-c", path, "--data", "from-flag.data", "--interval", "0s", "--mask"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.data", opts.Data)
	assert.Equal(t, time.Duration(0), opts.Interval)
	assert.True(t, opts.Mask)
	assert.True(t, opts.Plain, "not given on the command line")
}

func TestParseConfigFromEnvironment(t *testing.T) {
	t.Setenv(EnvData, "")
	t.Setenv(EnvConfig, writeConfig(t, "data: env-config.data\n"))

	opts, err := Parse(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "env-config.data", opts.Data)
}

func TestParseErrors(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvData, "")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nope"}},
		{"bad duration", []string{"--interval", "soon"}},
		{"negative interval", []string{"--interval", "-1s"}},
		{"empty data", []string{"--data", ""}},
		{"missing config file", []string{"-c", filepath.Join(t.TempDir(), "absent.yaml")}},
		{"unknown config key", []string{"-c", writeConfig(t, "colour: blue\n")}},
		{"bad config duration", []string{"-c", writeConfig(t, "interval: soon\n")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestParseHelp(t *testing.T) {
	_, err := Parse([]string{"--help"}, io.Discard)
	assert.ErrorIs(t, err, pflag.ErrHelp)
}
