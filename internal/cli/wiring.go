// Package cli provides shared service wiring for commands.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/config"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/logging"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/notify"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/outreach"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/platform"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/prospects"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/quota"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/templates"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/vault"
)

// buildClients registers one client per platform. Tokens resolve from
// config (which covers the conventional env variables) first, then the
// active vault profile. A platform without a token runs simulated.
func buildClients(cfg *config.Config) *platform.Registry {
	log := logging.Component("clients")
	registry := platform.NewRegistry()

	twitterToken := strings.TrimSpace(cfg.Twitter.BearerToken)
	if twitterToken == "" {
		twitterToken = vaultToken(cfg.Home, models.PlatformTwitter)
	}
	if cfg.Twitter.Simulate || twitterToken == "" {
		registry.MustRegister(platform.NewSimulatedClient(models.PlatformTwitter))
		log.Debug().Str("platform", "twitter").Msg("using simulated client")
	} else {
		registry.MustRegister(platform.NewTwitterClient(
			cfg.Twitter.BaseURL,
			twitterToken,
			platform.WithTwitterTimeout(cfg.Twitter.Timeout),
		))
		log.Debug().Str("platform", "twitter").Msg("using live client")
	}

	linkedinToken := strings.TrimSpace(cfg.LinkedIn.AccessToken)
	if linkedinToken == "" {
		linkedinToken = vaultToken(cfg.Home, models.PlatformLinkedIn)
	}
	linkedinOpts := []platform.LinkedInOption{
		platform.WithLinkedInTimeout(cfg.LinkedIn.Timeout),
	}
	if cfg.LinkedIn.Simulate {
		linkedinOpts = append(linkedinOpts, platform.WithLinkedInSimulation())
	}
	registry.MustRegister(platform.NewLinkedInClient(cfg.LinkedIn.BaseURL, linkedinToken, linkedinOpts...))

	return registry
}

// vaultToken reads the active credential profile's token, or empty
// when none applies.
func vaultToken(home string, p models.Platform) string {
	creds, err := vault.Active(home, p)
	if err != nil {
		log := logging.Component("clients")
		log.Warn().Err(err).
			Str("platform", string(p)).
			Msg("failed to read credential vault")
		return ""
	}
	if creds == nil {
		return ""
	}
	return creds.Token()
}

// buildEngine constructs the qualification engine from config.
func buildEngine(cfg *config.Config) *outreach.Engine {
	q := cfg.Qualify
	return outreach.NewEngine(outreach.Config{
		ExcludeMarkers:     q.ExcludeMarkers,
		RelevantTopics:     q.RelevantTopics,
		PerfectFitTopics:   q.PerfectFitTopics,
		RecencyWindow:      time.Duration(q.RecencyWindowDays) * 24 * time.Hour,
		TightRecencyWindow: time.Duration(q.TightRecencyWindowDays) * 24 * time.Hour,
		MinFollowers:       q.MinFollowers,
		MaxFollowers:       q.MaxFollowers,
		MinEngagementRate:  q.MinEngagementRate,
		HighEngagementRate: q.HighEngagementRate,
	})
}

// buildTracker constructs a quota tracker seeded with today's recorded
// usage, so separate invocations share the same daily budget.
func buildTracker(ctx context.Context, cfg *config.Config, usage *db.UsageRepository) (*quota.Tracker, error) {
	tracker := quota.New(quota.WithLimits(quotaLimits(cfg.Quota)))

	counts, err := usage.CountsForDay(ctx, tracker.Day())
	if err != nil {
		return nil, fmt.Errorf("failed to load today's usage: %w", err)
	}
	tracker.Restore(counts)
	return tracker, nil
}

func quotaLimits(q config.QuotaConfig) quota.Limits {
	return quota.Limits{
		UserLookups:    q.UserLookups,
		TweetLookups:   q.TweetLookups,
		Follows:        q.Follows,
		Likes:          q.Likes,
		Replies:        q.Replies,
		DirectMessages: q.DirectMessages,
	}
}

// buildNotifier returns the Discord notifier when notifications are
// enabled and configured, a Noop otherwise.
func buildNotifier(cfg *config.Config) notify.Notifier {
	if !cfg.Discord.Enabled {
		return notify.Noop{}
	}
	notifier, err := notify.NewDiscord(notify.Config{
		Token:     cfg.Discord.Token,
		ChannelID: cfg.Discord.ChannelID,
	})
	if err != nil {
		log := logging.Component("notify")
		log.Warn().Err(err).Msg("discord notifications unavailable")
		return notify.Noop{}
	}
	return notifier
}

// buildRenderer loads the template catalog (builtins plus the user
// directory) and wraps it in a renderer.
func buildRenderer(cfg *config.Config) (*templates.Renderer, error) {
	catalog, err := templates.LoadCatalog(cfg.Templates.Dir)
	if err != nil {
		return nil, err
	}
	return templates.NewRenderer(catalog, templates.Options{
		Strict:   cfg.Templates.Strict,
		Solution: cfg.Templates.Solution,
		Value:    cfg.Templates.Value,
	}), nil
}

func parsePlatform(name string) (models.Platform, error) {
	p := models.Platform(strings.ToLower(strings.TrimSpace(name)))
	if p == "" {
		return models.PlatformTwitter, nil
	}
	if !models.ValidPlatform(p) {
		return "", fmt.Errorf("unknown platform %q (expected twitter or linkedin)", name)
	}
	return p, nil
}

// prospectsFromFile parses a list file into prospect rows without
// touching the store.
func prospectsFromFile(path string, p models.Platform) ([]*models.Prospect, error) {
	records, err := prospects.ReadFile(path)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]*models.Prospect, 0, len(records))
	for i, record := range records {
		prospect, err := record.ToProspect(now, p)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		out = append(out, prospect)
	}
	return out, nil
}

// prospectsFromStore loads the named handles, or a platform listing
// when no handles are given.
func prospectsFromStore(ctx context.Context, repo *db.ProspectRepository, p models.Platform, handles []string, limit int) ([]*models.Prospect, error) {
	if len(handles) > 0 {
		out := make([]*models.Prospect, 0, len(handles))
		for _, handle := range handles {
			prospect, err := repo.GetByHandle(ctx, p, strings.TrimPrefix(strings.TrimSpace(handle), "@"))
			if err != nil {
				return nil, fmt.Errorf("prospect %s: %w", handle, err)
			}
			out = append(out, prospect)
		}
		return out, nil
	}
	return repo.List(ctx, db.ProspectQuery{Platform: &p, Limit: limit})
}
