// Package campaign defines outreach campaigns and the runner that
// executes them: plan sequences for each prospect, queue the steps, and
// drain the queue at a conservative pace.
package campaign

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

var (
	// ErrCampaignNameRequired is returned when a campaign has no name.
	ErrCampaignNameRequired = errors.New("campaign name is required")
	// ErrCampaignNotFound is returned when a campaign is not found.
	ErrCampaignNotFound = errors.New("campaign not found")
)

// ValidationError describes a validation error in a campaign.
type ValidationError struct {
	Field   string
	Index   int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("campaign %s[%d]: %s", e.Field, e.Index, e.Message)
	}
	return fmt.Sprintf("campaign %s: %s", e.Field, e.Message)
}

// Campaign defines one outreach run: which prospects to work, on which
// platform, with which message templates. Prospects come from an
// explicit handle list when given, otherwise from the store.
type Campaign struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Platform is the network the campaign runs on. Empty means twitter.
	Platform string `yaml:"platform,omitempty"`

	// Handles restricts the run to these stored prospects. Empty means
	// every stored prospect on the platform.
	Handles []string `yaml:"handles,omitempty"`

	// ProspectsFile is an optional list file imported before planning.
	ProspectsFile string `yaml:"prospects_file,omitempty"`

	// Query is an optional discovery search run before planning.
	Query string `yaml:"query,omitempty"`

	// MaxProspects caps how many prospects this run plans. Zero falls
	// back to the runner configuration.
	MaxProspects int `yaml:"max_prospects,omitempty"`

	// StepDelay and Jitter override the runner pacing, as Go duration
	// strings ("45s", "2m").
	StepDelay string `yaml:"step_delay,omitempty"`
	Jitter    string `yaml:"jitter,omitempty"`

	// Templates names the catalog templates used for rendered steps.
	Templates TemplateSet `yaml:"templates,omitempty"`

	// DryRun plans and logs every step without calling the platform.
	DryRun bool `yaml:"dry_run,omitempty"`

	Source string // file path or "builtin"
}

// TemplateSet names the message templates a campaign renders, one per
// action that carries text. Empty fields fall back to the builtins.
type TemplateSet struct {
	Reply          string `yaml:"reply,omitempty"`
	DirectMessage  string `yaml:"direct_message,omitempty"`
	ConnectionNote string `yaml:"connection_note,omitempty"`
}

// Default template names per rendered action.
const (
	defaultReplyTemplate          = "reply-insight"
	defaultDirectMessageTemplate  = "initial-dm"
	defaultConnectionNoteTemplate = "warm-dm"
)

// ReplyTemplate returns the template name for reply steps.
func (t TemplateSet) ReplyTemplate() string {
	if t.Reply != "" {
		return t.Reply
	}
	return defaultReplyTemplate
}

// DirectMessageTemplate returns the template name for DM steps.
func (t TemplateSet) DirectMessageTemplate() string {
	if t.DirectMessage != "" {
		return t.DirectMessage
	}
	return defaultDirectMessageTemplate
}

// ConnectionNoteTemplate returns the template name for connection notes.
func (t TemplateSet) ConnectionNoteTemplate() string {
	if t.ConnectionNote != "" {
		return t.ConnectionNote
	}
	return defaultConnectionNoteTemplate
}

// PlatformKind returns the campaign's platform, defaulting to twitter.
func (c *Campaign) PlatformKind() models.Platform {
	if c.Platform == "" {
		return models.PlatformTwitter
	}
	return models.Platform(strings.ToLower(strings.TrimSpace(c.Platform)))
}

// StepDelayDuration returns the parsed pacing override, zero when unset.
func (c *Campaign) StepDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.StepDelay)
	return d
}

// JitterDuration returns the parsed jitter override, zero when unset.
func (c *Campaign) JitterDuration() time.Duration {
	d, _ := time.ParseDuration(c.Jitter)
	return d
}

// Validate checks that the campaign has valid configuration.
func (c *Campaign) Validate() error {
	if c.Name == "" {
		return ErrCampaignNameRequired
	}
	if !models.ValidPlatform(c.PlatformKind()) {
		return &ValidationError{
			Field:   "platform",
			Index:   -1,
			Message: fmt.Sprintf("unknown platform %q", c.Platform),
		}
	}
	for i, handle := range c.Handles {
		if strings.TrimSpace(handle) == "" {
			return &ValidationError{
				Field:   "handles",
				Index:   i,
				Message: "handle must not be blank",
			}
		}
	}
	if c.MaxProspects < 0 {
		return &ValidationError{
			Field:   "max_prospects",
			Index:   -1,
			Message: "max_prospects must not be negative",
		}
	}
	if err := validateDuration(c.StepDelay); err != nil {
		return &ValidationError{Field: "step_delay", Index: -1, Message: err.Error()}
	}
	if err := validateDuration(c.Jitter); err != nil {
		return &ValidationError{Field: "jitter", Index: -1, Message: err.Error()}
	}
	return nil
}

func validateDuration(value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration %q", value)
	}
	if d < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}
