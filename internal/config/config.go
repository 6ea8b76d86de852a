// Package config loads tool configuration from the outreach home
// directory, environment variables, and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultDirName is the outreach home directory under $HOME.
const DefaultDirName = ".outreach"

// ConfigFileName is the config file name without extension.
const ConfigFileName = "outreach"

// Config is the root configuration for the tool.
type Config struct {
	// Home is the outreach home directory.
	Home string `mapstructure:"home" yaml:"home"`

	// DBPath is the sqlite database path. Defaults to <home>/outreach.db.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// LogLevel controls zerolog verbosity.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	Quota     QuotaConfig     `mapstructure:"quota" yaml:"quota"`
	Qualify   QualifyConfig   `mapstructure:"qualify" yaml:"qualify"`
	Templates TemplatesConfig `mapstructure:"templates" yaml:"templates"`
	Runner    RunnerConfig    `mapstructure:"runner" yaml:"runner"`
	Twitter   TwitterConfig   `mapstructure:"twitter" yaml:"twitter"`
	LinkedIn  LinkedInConfig  `mapstructure:"linkedin" yaml:"linkedin"`
	Discord   DiscordConfig   `mapstructure:"discord" yaml:"discord"`
	TUI       TUIConfig       `mapstructure:"tui" yaml:"tui"`
}

// QuotaConfig sets the per-action daily caps. The defaults sit well
// below the platform limits on purpose; this tool is meant to stay
// quiet enough that no account ever trips a platform review.
type QuotaConfig struct {
	UserLookups    int `mapstructure:"user_lookups" yaml:"user_lookups"`
	TweetLookups   int `mapstructure:"tweet_lookups" yaml:"tweet_lookups"`
	Follows        int `mapstructure:"follows" yaml:"follows"`
	Likes          int `mapstructure:"likes" yaml:"likes"`
	Replies        int `mapstructure:"replies" yaml:"replies"`
	DirectMessages int `mapstructure:"direct_messages" yaml:"direct_messages"`
}

// QualifyConfig tunes the qualification predicates.
type QualifyConfig struct {
	// ExcludeMarkers are spam markers; any hit disqualifies research.
	ExcludeMarkers []string `mapstructure:"exclude_markers" yaml:"exclude_markers"`

	// RelevantTopics is the broad topic list research matching uses.
	RelevantTopics []string `mapstructure:"relevant_topics" yaml:"relevant_topics"`

	// PerfectFitTopics is the narrower list the strict predicate uses.
	PerfectFitTopics []string `mapstructure:"perfect_fit_topics" yaml:"perfect_fit_topics"`

	// RecencyWindowDays bounds "recent activity" for engagement checks.
	RecencyWindowDays int `mapstructure:"recency_window_days" yaml:"recency_window_days"`

	// TightRecencyWindowDays bounds recency for the strict predicate.
	TightRecencyWindowDays int `mapstructure:"tight_recency_window_days" yaml:"tight_recency_window_days"`

	// MinFollowers and MaxFollowers bound the follower band.
	MinFollowers int `mapstructure:"min_followers" yaml:"min_followers"`
	MaxFollowers int `mapstructure:"max_followers" yaml:"max_followers"`

	// MinEngagementRate is the floor for the engagement criterion.
	MinEngagementRate float64 `mapstructure:"min_engagement_rate" yaml:"min_engagement_rate"`

	// HighEngagementRate is the floor for the strict predicate.
	HighEngagementRate float64 `mapstructure:"high_engagement_rate" yaml:"high_engagement_rate"`
}

// TemplatesConfig tunes message rendering.
type TemplatesConfig struct {
	// Dir holds user template overrides. Defaults to <home>/templates.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Strict turns unmatched placeholders into errors instead of
	// leaving them as literal text.
	Strict bool `mapstructure:"strict" yaml:"strict"`

	// Solution fills the {{solution}} placeholder.
	Solution string `mapstructure:"solution" yaml:"solution"`

	// Value fills the {{value}} placeholder.
	Value string `mapstructure:"value" yaml:"value"`
}

// RunnerConfig tunes the campaign runner.
type RunnerConfig struct {
	// TickInterval is how often the runner polls the outbox.
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`

	// StepDelay is the base pause between executed steps.
	StepDelay time.Duration `mapstructure:"step_delay" yaml:"step_delay"`

	// Jitter is the maximum random addition to StepDelay.
	Jitter time.Duration `mapstructure:"jitter" yaml:"jitter"`

	// LeaseFor is how long a claimed outbox item stays leased.
	LeaseFor time.Duration `mapstructure:"lease_for" yaml:"lease_for"`

	// MaxAttempts bounds retries per step before it is marked failed.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`

	// MaxProspectsPerRun caps how many prospects one run plans.
	MaxProspectsPerRun int `mapstructure:"max_prospects_per_run" yaml:"max_prospects_per_run"`
}

// TwitterConfig configures the Twitter client.
type TwitterConfig struct {
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	BearerToken string        `mapstructure:"bearer_token" yaml:"bearer_token"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// Simulate forces the simulated client even when a token is set.
	Simulate bool `mapstructure:"simulate" yaml:"simulate"`
}

// LinkedInConfig configures the LinkedIn client. Messaging endpoints
// stay simulated regardless; the real API needs partner approval.
type LinkedInConfig struct {
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	AccessToken string        `mapstructure:"access_token" yaml:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Simulate    bool          `mapstructure:"simulate" yaml:"simulate"`
}

// DiscordConfig configures operator notifications.
type DiscordConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Token     string `mapstructure:"token" yaml:"token"`
	ChannelID string `mapstructure:"channel_id" yaml:"channel_id"`
}

// TUIConfig configures the dashboard.
type TUIConfig struct {
	Theme        string        `mapstructure:"theme" yaml:"theme"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	home := DefaultHome()
	return &Config{
		Home:     home,
		DBPath:   filepath.Join(home, "outreach.db"),
		LogLevel: "info",
		Quota: QuotaConfig{
			UserLookups:    90,
			TweetLookups:   280,
			Follows:        35,
			Likes:          45,
			Replies:        15,
			DirectMessages: 8,
		},
		Qualify: QualifyConfig{
			ExcludeMarkers: []string{
				"bot", "fake", "spam", "buy followers", "get rich quick",
			},
			RelevantTopics: []string{
				"ai", "automation", "saas", "software", "tech", "startup",
				"founder", "marketing", "growth", "product", "engineering",
				"developer", "b2b",
			},
			PerfectFitTopics: []string{
				"ai", "automation", "b2b", "saas founder", "lead generation",
			},
			RecencyWindowDays:      7,
			TightRecencyWindowDays: 3,
			MinFollowers:           100,
			MaxFollowers:           50000,
			MinEngagementRate:      0.005,
			HighEngagementRate:     0.01,
		},
		Templates: TemplatesConfig{
			Dir:      filepath.Join(home, "templates"),
			Strict:   false,
			Solution: "an automation toolkit",
			Value:    "save hours every week",
		},
		Runner: RunnerConfig{
			TickInterval:       5 * time.Second,
			StepDelay:          45 * time.Second,
			Jitter:             30 * time.Second,
			LeaseFor:           2 * time.Minute,
			MaxAttempts:        3,
			MaxProspectsPerRun: 25,
		},
		Twitter: TwitterConfig{
			BaseURL: "https://api.twitter.com/2",
			Timeout: 15 * time.Second,
		},
		LinkedIn: LinkedInConfig{
			BaseURL:  "https://api.linkedin.com/v2",
			Timeout:  15 * time.Second,
			Simulate: true,
		},
		TUI: TUIConfig{
			Theme:        "default",
			PollInterval: 2 * time.Second,
		},
	}
}

// DefaultHome returns the outreach home directory.
func DefaultHome() string {
	if env := os.Getenv("OUTREACH_HOME"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// Load reads configuration from the given file, or from the default
// locations when path is empty. Environment variables prefixed with
// OUTREACH_ override file values; .env files are overlaid first.
func Load(path string, logger zerolog.Logger) (*Config, error) {
	LoadEnv(logger)

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(DefaultHome())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindCredentialEnv(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine; defaults and env apply.
	} else {
		logger.Debug().Str("file", v.ConfigFileUsed()).Msg("loaded config file")
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDerivedDefaults()
	return cfg, nil
}

// LoadEnv overlays .env files onto the process environment. Later
// files win, matching local-override conventions.
func LoadEnv(logger zerolog.Logger) {
	files := []string{".env", ".env.local"}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			logger.Warn().Err(err).Str("file", file).Msg("failed to load env file")
			continue
		}
		logger.Debug().Str("file", file).Msg("loaded env file")
	}
}

// EnsureHome creates the home directory tree the tool expects.
func (c *Config) EnsureHome() error {
	dirs := []string{
		c.Home,
		c.Templates.Dir,
		filepath.Join(c.Home, "campaigns"),
		filepath.Join(c.Home, "credentials"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// applyDerivedDefaults fills fields whose defaults depend on Home when
// the config file overrode Home but left them empty.
func (c *Config) applyDerivedDefaults() {
	if c.Home == "" {
		c.Home = DefaultHome()
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.Home, "outreach.db")
	}
	if c.Templates.Dir == "" {
		c.Templates.Dir = filepath.Join(c.Home, "templates")
	}
}

func bindCredentialEnv(v *viper.Viper) {
	// Credentials use their conventional env names rather than the
	// OUTREACH_ prefix so existing .env files keep working.
	_ = v.BindEnv("twitter.bearer_token", "TWITTER_BEARER_TOKEN")
	_ = v.BindEnv("linkedin.access_token", "LINKEDIN_ACCESS_TOKEN")
	_ = v.BindEnv("discord.token", "DISCORD_BOT_TOKEN")
	_ = v.BindEnv("discord.channel_id", "DISCORD_CHANNEL_ID")
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("home", def.Home)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("log_level", def.LogLevel)

	v.SetDefault("quota.user_lookups", def.Quota.UserLookups)
	v.SetDefault("quota.tweet_lookups", def.Quota.TweetLookups)
	v.SetDefault("quota.follows", def.Quota.Follows)
	v.SetDefault("quota.likes", def.Quota.Likes)
	v.SetDefault("quota.replies", def.Quota.Replies)
	v.SetDefault("quota.direct_messages", def.Quota.DirectMessages)

	v.SetDefault("qualify.exclude_markers", def.Qualify.ExcludeMarkers)
	v.SetDefault("qualify.relevant_topics", def.Qualify.RelevantTopics)
	v.SetDefault("qualify.perfect_fit_topics", def.Qualify.PerfectFitTopics)
	v.SetDefault("qualify.recency_window_days", def.Qualify.RecencyWindowDays)
	v.SetDefault("qualify.tight_recency_window_days", def.Qualify.TightRecencyWindowDays)
	v.SetDefault("qualify.min_followers", def.Qualify.MinFollowers)
	v.SetDefault("qualify.max_followers", def.Qualify.MaxFollowers)
	v.SetDefault("qualify.min_engagement_rate", def.Qualify.MinEngagementRate)
	v.SetDefault("qualify.high_engagement_rate", def.Qualify.HighEngagementRate)

	v.SetDefault("templates.dir", def.Templates.Dir)
	v.SetDefault("templates.strict", def.Templates.Strict)
	v.SetDefault("templates.solution", def.Templates.Solution)
	v.SetDefault("templates.value", def.Templates.Value)

	v.SetDefault("runner.tick_interval", def.Runner.TickInterval)
	v.SetDefault("runner.step_delay", def.Runner.StepDelay)
	v.SetDefault("runner.jitter", def.Runner.Jitter)
	v.SetDefault("runner.lease_for", def.Runner.LeaseFor)
	v.SetDefault("runner.max_attempts", def.Runner.MaxAttempts)
	v.SetDefault("runner.max_prospects_per_run", def.Runner.MaxProspectsPerRun)

	v.SetDefault("twitter.base_url", def.Twitter.BaseURL)
	v.SetDefault("twitter.timeout", def.Twitter.Timeout)
	v.SetDefault("twitter.simulate", def.Twitter.Simulate)

	v.SetDefault("linkedin.base_url", def.LinkedIn.BaseURL)
	v.SetDefault("linkedin.timeout", def.LinkedIn.Timeout)
	v.SetDefault("linkedin.simulate", def.LinkedIn.Simulate)

	v.SetDefault("discord.enabled", def.Discord.Enabled)

	v.SetDefault("tui.theme", def.TUI.Theme)
	v.SetDefault("tui.poll_interval", def.TUI.PollInterval)
}
