// Package outreach implements the qualification and sequencing engine:
// given a prospect record and a quota snapshot, it decides whether the
// prospect merits any action and which ordered steps to take.
package outreach

import (
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// Voting thresholds for the checklist predicates.
const (
	// engagingRequired is how many of the six engagement criteria must
	// hold for WorthEngaging.
	engagingRequired = 3

	// qualifiedRequired is how many of the five strict criteria must
	// hold for IsHighlyQualified.
	qualifiedRequired = 2
)

// Config tunes the qualification predicates. Zero values fall back to
// the defaults from DefaultConfig.
type Config struct {
	// ExcludeMarkers disqualify a prospect from research when any of
	// them appears in the handle, name, bio, or keywords.
	ExcludeMarkers []string

	// RelevantTopics is the broad topic list; research requires at
	// least one keyword match against it.
	RelevantTopics []string

	// PerfectFitTopics is the narrower list the strict predicate uses.
	PerfectFitTopics []string

	// RecencyWindow bounds "recent activity" for the engagement vote.
	RecencyWindow time.Duration

	// TightRecencyWindow bounds recency for the strict predicate.
	TightRecencyWindow time.Duration

	// MinFollowers and MaxFollowers bound the follower band.
	MinFollowers int
	MaxFollowers int

	// MinEngagementRate is the engagement-rate floor for the vote.
	MinEngagementRate float64

	// HighEngagementRate is the floor for the strict predicate.
	HighEngagementRate float64
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
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
		RecencyWindow:      7 * 24 * time.Hour,
		TightRecencyWindow: 3 * 24 * time.Hour,
		MinFollowers:       100,
		MaxFollowers:       50000,
		MinEngagementRate:  0.005,
		HighEngagementRate: 0.01,
	}
}

// Engine evaluates prospects. It is stateless apart from its
// configuration and clock, and safe for concurrent use.
type Engine struct {
	cfg Config
	now func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithNow overrides the clock, primarily for tests.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine with the given configuration. Zero-value
// fields are replaced with defaults.
func NewEngine(cfg Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if len(cfg.ExcludeMarkers) == 0 {
		cfg.ExcludeMarkers = def.ExcludeMarkers
	}
	if len(cfg.RelevantTopics) == 0 {
		cfg.RelevantTopics = def.RelevantTopics
	}
	if len(cfg.PerfectFitTopics) == 0 {
		cfg.PerfectFitTopics = def.PerfectFitTopics
	}
	if cfg.RecencyWindow <= 0 {
		cfg.RecencyWindow = def.RecencyWindow
	}
	if cfg.TightRecencyWindow <= 0 {
		cfg.TightRecencyWindow = def.TightRecencyWindow
	}
	if cfg.MinFollowers <= 0 {
		cfg.MinFollowers = def.MinFollowers
	}
	if cfg.MaxFollowers <= 0 {
		cfg.MaxFollowers = def.MaxFollowers
	}
	if cfg.MinEngagementRate <= 0 {
		cfg.MinEngagementRate = def.MinEngagementRate
	}
	if cfg.HighEngagementRate <= 0 {
		cfg.HighEngagementRate = def.HighEngagementRate
	}

	e := &Engine{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective configuration after normalization.
func (e *Engine) Config() Config {
	return e.cfg
}

// Evaluation is the full qualification picture for one prospect,
// suitable for audit logging and operator reports.
type Evaluation struct {
	Handle           string          `json:"handle"`
	WorthResearching bool            `json:"worth_researching"`
	WorthEngaging    bool            `json:"worth_engaging"`
	HighlyQualified  bool            `json:"highly_qualified"`
	Engagement       Checklist       `json:"engagement"`
	Qualification    Checklist       `json:"qualification"`
	EngagementRate   float64         `json:"engagement_rate"`
	Sequence         models.Sequence `json:"sequence,omitempty"`
}

// Evaluate runs all three predicates independently and, when quota is
// provided, plans the resulting sequence. Each predicate is computed
// from scratch; none is derived from another.
func (e *Engine) Evaluate(p *models.Prospect, quota *models.QuotaSnapshot) Evaluation {
	ev := Evaluation{
		Handle:           p.Handle,
		WorthResearching: e.WorthResearching(p),
		Engagement:       e.EngagementChecklist(p),
		Qualification:    e.QualificationChecklist(p),
		EngagementRate:   p.EngagementRate(),
	}
	ev.WorthEngaging = ev.Engagement.Passed()
	ev.HighlyQualified = ev.Qualification.Passed()
	if quota != nil {
		ev.Sequence = e.BuildSequence(p, *quota)
	}
	return ev
}
