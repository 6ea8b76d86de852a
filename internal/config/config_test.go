package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OUTREACH_HOME", home)

	cfg := DefaultConfig()

	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, filepath.Join(home, "outreach.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, "templates"), cfg.Templates.Dir)
	assert.Equal(t, "info", cfg.LogLevel)

	assert.Equal(t, 35, cfg.Quota.Follows)
	assert.Equal(t, 8, cfg.Quota.DirectMessages)
	assert.Equal(t, 45*time.Second, cfg.Runner.StepDelay)
	assert.Equal(t, 3, cfg.Runner.MaxAttempts)
	assert.Equal(t, 100, cfg.Qualify.MinFollowers)
	assert.Equal(t, 50000, cfg.Qualify.MaxFollowers)
	assert.True(t, cfg.LinkedIn.Simulate)
	assert.False(t, cfg.Discord.Enabled)
}

func TestLoadWithoutConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OUTREACH_HOME", home)

	cfg, err := Load("", zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, 15, cfg.Quota.Replies)
	assert.Equal(t, "default", cfg.TUI.Theme)
}

func TestLoadFromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OUTREACH_HOME", home)

	path := filepath.Join(home, "outreach.yaml")
	content := `log_level: debug
quota:
  follows: 5
runner:
  step_delay: 90s
twitter:
  simulate: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.Quota.Follows)
	assert.Equal(t, 90*time.Second, cfg.Runner.StepDelay)
	assert.True(t, cfg.Twitter.Simulate)

	// Keys the file leaves out keep their defaults.
	assert.Equal(t, 45, cfg.Quota.Likes)
	assert.Equal(t, 30*time.Second, cfg.Runner.Jitter)
}

func TestLoadMalformedFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OUTREACH_HOME", home)

	path := filepath.Join(home, "outreach.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quota: [not a map"), 0644))

	_, err := Load(path, zerolog.Nop())
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OUTREACH_HOME", home)
	t.Setenv("OUTREACH_QUOTA_FOLLOWS", "10")
	t.Setenv("OUTREACH_LOG_LEVEL", "warn")

	path := filepath.Join(home, "outreach.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quota:\n  follows: 5\n"), 0644))

	cfg, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Quota.Follows)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestCredentialEnvBindings(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OUTREACH_HOME", home)
	t.Setenv("TWITTER_BEARER_TOKEN", "tw-token")
	t.Setenv("LINKEDIN_ACCESS_TOKEN", "li-token")
	t.Setenv("DISCORD_BOT_TOKEN", "disc-token")
	t.Setenv("DISCORD_CHANNEL_ID", "123456")

	cfg, err := Load("", zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "tw-token", cfg.Twitter.BearerToken)
	assert.Equal(t, "li-token", cfg.LinkedIn.AccessToken)
	assert.Equal(t, "disc-token", cfg.Discord.Token)
	assert.Equal(t, "123456", cfg.Discord.ChannelID)
}

func TestApplyDerivedDefaults(t *testing.T) {
	cfg := &Config{Home: filepath.Join("custom", "dir")}
	cfg.applyDerivedDefaults()

	assert.Equal(t, filepath.Join("custom", "dir", "outreach.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("custom", "dir", "templates"), cfg.Templates.Dir)
}

func TestEnsureHome(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".outreach")
	cfg := &Config{
		Home:      home,
		Templates: TemplatesConfig{Dir: filepath.Join(home, "templates")},
	}

	require.NoError(t, cfg.EnsureHome())

	for _, dir := range []string{home, filepath.Join(home, "templates"), filepath.Join(home, "campaigns"), filepath.Join(home, "credentials")} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
