package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("settings", DefaultSettingsPath, "")
	fs.String("tokens", DefaultTokensPath, "")
	fs.Bool("verbose", false, "")
	fs.Bool("slow-mode", false, "")
	fs.Int("poll-interval", DefaultPollIntervalMS, "")
	fs.Int("repeat-threshold", DefaultRepeatThreshold, "")
	return fs
}

func TestLoadOptionsDefaults(t *testing.T) {
	opts, err := LoadOptions(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultSettingsPath, opts.SettingsPath)
	assert.Equal(t, DefaultTokensPath, opts.TokensPath)
	assert.Equal(t, DefaultPollIntervalMS*time.Millisecond, opts.PollInterval)
	assert.Equal(t, DefaultRepeatThreshold, opts.RepeatThreshold)
	assert.Equal(t, DefaultReleaseRepo, opts.ReleaseRepo)
	assert.Empty(t, opts.MetricsAddr)
}

func TestLoadOptionsFlags(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--tokens", "my.json", "--verbose", "--repeat-threshold", "3"}))

	opts, err := LoadOptions(fs)
	require.NoError(t, err)
	assert.Equal(t, "my.json", opts.TokensPath)
	assert.True(t, opts.Verbose)
	assert.Equal(t, 3, opts.RepeatThreshold)
}

func TestLoadOptionsEnv(t *testing.T) {
	t.Setenv("LIMITBOT_SETTINGS", "/etc/bot/settings.json")
	t.Setenv("LIMITBOT_POLL_INTERVAL", "1000")

	opts, err := LoadOptions(newFlagSet())
	require.NoError(t, err)
	assert.Equal(t, "/etc/bot/settings.json", opts.SettingsPath)
	assert.Equal(t, time.Second, opts.PollInterval)
}

func TestLoadOptionsSlowMode(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--slow-mode", "--poll-interval", "100"}))

	opts, err := LoadOptions(fs)
	require.NoError(t, err)
	assert.Equal(t, SlowModePollIntervalMS*time.Millisecond, opts.PollInterval)
}

func TestLoadOptionsInvalid(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--poll-interval", "0"}))

	_, err := LoadOptions(fs)
	assert.Error(t, err)
}
