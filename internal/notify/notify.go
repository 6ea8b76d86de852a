// Package notify posts campaign lifecycle updates to an operator
// channel. The Discord notifier is REST-only and never opens a
// gateway connection.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/campaign"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/logging"
)

// ErrNotConfigured is returned when a Discord notifier is requested
// without a token and channel.
var ErrNotConfigured = errors.New("discord notifier is not configured")

// Embed colors.
const (
	colorInfo    = 0x0099ff // blue
	colorSuccess = 0x00ff00 // green
	colorWarning = 0xffff00 // yellow
	colorError   = 0xff0000 // red
)

// Notifier receives campaign lifecycle updates.
type Notifier interface {
	CampaignStarted(ctx context.Context, name string, prospects int) error
	CampaignCompleted(ctx context.Context, summary campaign.Summary) error
	CampaignFailed(ctx context.Context, name string, runErr error) error
}

// Noop discards every notification.
type Noop struct{}

func (Noop) CampaignStarted(context.Context, string, int) error        { return nil }
func (Noop) CampaignCompleted(context.Context, campaign.Summary) error { return nil }
func (Noop) CampaignFailed(context.Context, string, error) error       { return nil }

// Config holds the Discord connection settings.
type Config struct {
	// Token is the bot token.
	Token string

	// ChannelID is the channel notifications are posted to.
	ChannelID string
}

// Enabled reports whether both the token and the channel are set.
func (c Config) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

// embedSender is the slice of the Discord session the notifier uses.
type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts notifications as embeds to a single channel.
type Discord struct {
	sender    embedSender
	channelID string
	log       zerolog.Logger
}

// NewDiscord returns a notifier backed by a Discord bot session.
func NewDiscord(cfg Config) (*Discord, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &Discord{
		sender:    session,
		channelID: cfg.ChannelID,
		log:       logging.Component("notify"),
	}, nil
}

// FromConfig returns a Discord notifier when one is configured and a
// Noop otherwise.
func FromConfig(cfg Config) (Notifier, error) {
	if !cfg.Enabled() {
		return Noop{}, nil
	}
	return NewDiscord(cfg)
}

// CampaignStarted announces a run before planning begins.
func (d *Discord) CampaignStarted(ctx context.Context, name string, prospects int) error {
	return d.send(ctx, &discordgo.MessageEmbed{
		Title:       "Campaign started",
		Description: fmt.Sprintf("**%s** is planning outreach for up to %d prospects.", name, prospects),
		Color:       colorInfo,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer:      embedFooter(),
	})
}

// CampaignCompleted posts the run summary. The embed turns yellow when
// any step failed.
func (d *Discord) CampaignCompleted(ctx context.Context, summary campaign.Summary) error {
	color := colorSuccess
	if summary.Failed > 0 {
		color = colorWarning
	}

	return d.send(ctx, &discordgo.MessageEmbed{
		Title:       "Campaign completed",
		Description: fmt.Sprintf("**%s** finished in %s.", summary.Campaign, summary.Duration.Round(time.Second)),
		Color:       color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer:      embedFooter(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Planned", Value: strconv.Itoa(summary.Planned), Inline: true},
			{Name: "Sent", Value: strconv.Itoa(summary.Sent), Inline: true},
			{Name: "Failed", Value: strconv.Itoa(summary.Failed), Inline: true},
			{Name: "Skipped", Value: strconv.Itoa(summary.Skipped), Inline: true},
		},
	})
}

// CampaignFailed alerts that a run stopped before completing.
func (d *Discord) CampaignFailed(ctx context.Context, name string, runErr error) error {
	return d.send(ctx, &discordgo.MessageEmbed{
		Title:       "Campaign failed",
		Description: fmt.Sprintf("**%s** stopped: %v", name, runErr),
		Color:       colorError,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer:      embedFooter(),
	})
}

func (d *Discord) send(ctx context.Context, embed *discordgo.MessageEmbed) error {
	if _, err := d.sender.ChannelMessageSendEmbed(d.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send discord notification: %w", err)
	}
	d.log.Debug().Str("title", embed.Title).Msg("notification sent")
	return nil
}

func embedFooter() *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: "outreach"}
}
