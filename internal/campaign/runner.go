package campaign

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/events"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/logging"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/outreach"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/platform"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/quota"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/templates"
)

var (
	// ErrRunnerBusy is returned when Run is called while a campaign is
	// already executing.
	ErrRunnerBusy = errors.New("runner is already executing a campaign")

	// ErrNoClient is returned when no platform client is registered for
	// the platform an outbox item targets.
	ErrNoClient = errors.New("no client registered for platform")
)

// Config holds runner tuning knobs.
type Config struct {
	// TickInterval is how often the drain loop polls the outbox after
	// finding it momentarily unclaimable.
	TickInterval time.Duration

	// StepDelay is the base pause between consecutive sends. Zero sends
	// steps back to back.
	StepDelay time.Duration

	// Jitter is the maximum random duration added to StepDelay.
	Jitter time.Duration

	// LeaseFor is how long a claimed outbox item stays invisible to
	// other claimers.
	LeaseFor time.Duration

	// MaxAttempts is how many executions an item gets before it is
	// marked failed.
	MaxAttempts int

	// MaxProspects caps how many prospects a single run plans.
	MaxProspects int
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{
		TickInterval: 5 * time.Second,
		StepDelay:    45 * time.Second,
		Jitter:       30 * time.Second,
		LeaseFor:     2 * time.Minute,
		MaxAttempts:  3,
		MaxProspects: 25,
	}
}

// DispatchEvent describes one executed outbox item. Events are emitted
// on a buffered channel for observers; slow observers drop events
// rather than stall the run.
type DispatchEvent struct {
	ItemID    string
	Handle    string
	Action    models.ActionKind
	Status    models.OutboxStatus
	Error     string
	Timestamp time.Time
	Duration  time.Duration
}

// Stats is a point-in-time snapshot of runner counters.
type Stats struct {
	Running    bool
	Campaign   string
	StartedAt  *time.Time
	Planned    int64
	Sent       int64
	Failed     int64
	Skipped    int64
	LastSentAt *time.Time
}

// Summary reports the outcome of one campaign run.
type Summary struct {
	Campaign string        `json:"campaign"`
	Planned  int           `json:"planned"`
	Sent     int           `json:"sent"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// ProspectStore is the prospect persistence the runner depends on.
type ProspectStore interface {
	GetByHandle(ctx context.Context, platform models.Platform, handle string) (*models.Prospect, error)
	List(ctx context.Context, q db.ProspectQuery) ([]*models.Prospect, error)
	Update(ctx context.Context, prospect *models.Prospect) error
}

// Outbox is the durable step queue the runner plans into and drains.
type Outbox interface {
	Enqueue(ctx context.Context, items ...*models.OutboxItem) error
	ClaimNext(ctx context.Context, campaignID string, leaseFor time.Duration) (*models.OutboxItem, error)
	UpdateStatus(ctx context.Context, id string, status models.OutboxStatus, errorMessage string) error
	HasAction(ctx context.Context, prospectID string, action models.ActionKind) (bool, error)
}

// UsageLog persists per-action spend for quota restoration across
// process restarts.
type UsageLog interface {
	Record(ctx context.Context, record *models.ActionUsage) error
}

// Runner executes campaigns: it qualifies prospects, plans their
// sequences into the outbox, then drains the outbox one step at a
// time with a pause between sends. A Runner executes one campaign at
// a time.
type Runner struct {
	cfg      Config
	engine   *outreach.Engine
	tracker  *quota.Tracker
	store    ProspectStore
	outbox   Outbox
	clients  *platform.Registry
	renderer *templates.Renderer
	usage    UsageLog
	events   events.Repository
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool

	statsMu sync.RWMutex
	stats   Stats

	dispatchCh chan DispatchEvent
}

// RunnerOption configures optional runner dependencies.
type RunnerOption func(*Runner)

// WithRenderer supplies the template renderer used to write reply,
// direct-message, and connection-note text during planning. Without
// one, message-bearing steps are dropped at planning time.
func WithRenderer(r *templates.Renderer) RunnerOption {
	return func(run *Runner) {
		run.renderer = r
	}
}

// WithUsageLog records every real send for day-scoped quota
// restoration.
func WithUsageLog(log UsageLog) RunnerOption {
	return func(run *Runner) {
		run.usage = log
	}
}

// WithRunnerEvents records audit events for planning and execution.
func WithRunnerEvents(repo events.Repository) RunnerOption {
	return func(run *Runner) {
		run.events = repo
	}
}

// NewRunner creates a campaign runner. Zero config values fall back to
// defaults, except StepDelay and Jitter which may deliberately be zero.
func NewRunner(cfg Config, engine *outreach.Engine, tracker *quota.Tracker, store ProspectStore, outbox Outbox, clients *platform.Registry, opts ...RunnerOption) *Runner {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.LeaseFor <= 0 {
		cfg.LeaseFor = def.LeaseFor
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.MaxProspects <= 0 {
		cfg.MaxProspects = def.MaxProspects
	}

	r := &Runner{
		cfg:        cfg,
		engine:     engine,
		tracker:    tracker,
		store:      store,
		outbox:     outbox,
		clients:    clients,
		logger:     logging.Component("campaign"),
		dispatchCh: make(chan DispatchEvent, 100),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the campaign to completion: plan every resolved
// prospect, then drain the outbox until it is empty or the context is
// cancelled. Returns the run summary alongside any terminal error.
func (r *Runner) Run(ctx context.Context, c *Campaign) (*Summary, error) {
	if c == nil {
		return nil, errors.New("campaign is required")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrRunnerBusy
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	started := time.Now().UTC()
	r.statsMu.Lock()
	r.stats = Stats{Running: true, Campaign: c.Name, StartedAt: &started}
	r.statsMu.Unlock()
	defer func() {
		r.statsMu.Lock()
		r.stats.Running = false
		r.statsMu.Unlock()
	}()

	cfg := r.effectiveConfig(c)

	prospects, err := r.resolveProspects(ctx, c, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve prospects: %w", err)
	}

	r.logger.Info().
		Str("campaign", c.Name).
		Int("prospects", len(prospects)).
		Bool("dry_run", c.DryRun).
		Msg("campaign starting")
	if r.events != nil {
		r.logEventErr(events.LogCampaignStarted(ctx, r.events, c.Name, models.CampaignStartedPayload{
			Name:      c.Name,
			Platform:  c.PlatformKind(),
			Prospects: len(prospects),
			DryRun:    c.DryRun,
		}))
	}

	summary := &Summary{Campaign: c.Name}
	for _, p := range prospects {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		items, err := r.planProspect(ctx, c, p)
		if err != nil {
			return summary, fmt.Errorf("plan %s: %w", p.Handle, err)
		}
		if len(items) == 0 {
			continue
		}
		if err := r.outbox.Enqueue(ctx, items...); err != nil {
			return summary, fmt.Errorf("enqueue steps for %s: %w", p.Handle, err)
		}
		for _, item := range items {
			if r.events != nil {
				r.logEventErr(events.LogStepQueued(ctx, r.events, item))
			}
		}
		summary.Planned += len(items)
		r.statsMu.Lock()
		r.stats.Planned = int64(summary.Planned)
		r.statsMu.Unlock()
	}

	r.drain(ctx, c, cfg, summary)
	summary.Duration = time.Since(started)

	if r.events != nil {
		r.logEventErr(events.LogCampaignCompleted(ctx, r.events, c.Name, models.CampaignCompletedPayload{
			Name:     c.Name,
			Planned:  summary.Planned,
			Sent:     summary.Sent,
			Failed:   summary.Failed,
			Skipped:  summary.Skipped,
			Duration: summary.Duration.Round(time.Millisecond).String(),
		}))
	}
	r.logger.Info().
		Str("campaign", c.Name).
		Int("planned", summary.Planned).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Dur("duration", summary.Duration).
		Msg("campaign finished")

	return summary, ctx.Err()
}

// Stats returns a snapshot of the runner counters.
func (r *Runner) Stats() Stats {
	r.statsMu.RLock()
	defer r.statsMu.RUnlock()
	return r.stats
}

// DispatchEvents returns the channel execution results are emitted on.
func (r *Runner) DispatchEvents() <-chan DispatchEvent {
	return r.dispatchCh
}

// effectiveConfig overlays campaign-level overrides onto the runner
// defaults.
func (r *Runner) effectiveConfig(c *Campaign) Config {
	cfg := r.cfg
	if d := c.StepDelayDuration(); d > 0 {
		cfg.StepDelay = d
	}
	if d := c.JitterDuration(); d > 0 {
		cfg.Jitter = d
	}
	if c.MaxProspects > 0 {
		cfg.MaxProspects = c.MaxProspects
	}
	return cfg
}

// resolveProspects loads the campaign's targets: explicitly named
// handles when given, otherwise stored prospects for the campaign
// platform, capped at the prospect limit.
func (r *Runner) resolveProspects(ctx context.Context, c *Campaign, cfg Config) ([]*models.Prospect, error) {
	kind := c.PlatformKind()

	if len(c.Handles) > 0 {
		prospects := make([]*models.Prospect, 0, len(c.Handles))
		for _, raw := range c.Handles {
			handle := strings.TrimPrefix(strings.TrimSpace(raw), "@")
			p, err := r.store.GetByHandle(ctx, kind, handle)
			if err != nil {
				if errors.Is(err, db.ErrProspectNotFound) {
					r.logger.Warn().Str("handle", handle).Msg("campaign handle not in store, skipping")
					continue
				}
				return nil, fmt.Errorf("load %s: %w", handle, err)
			}
			prospects = append(prospects, p)
			if len(prospects) >= cfg.MaxProspects {
				break
			}
		}
		return prospects, nil
	}

	return r.store.List(ctx, db.ProspectQuery{Platform: &kind, Limit: cfg.MaxProspects})
}

// planProspect qualifies one prospect and turns the planned sequence
// into outbox items. Steps whose action already exists in the outbox
// are skipped so re-running a campaign never duplicates work.
func (r *Runner) planProspect(ctx context.Context, c *Campaign, p *models.Prospect) ([]*models.OutboxItem, error) {
	snapshot := r.tracker.Snapshot()
	eval := r.engine.Evaluate(p, &snapshot)

	if r.events != nil {
		r.logEventErr(events.LogProspectQualified(ctx, r.events, p.ID, models.QualifiedPayload{
			Handle:            eval.Handle,
			WorthResearching:  eval.WorthResearching,
			WorthEngaging:     eval.WorthEngaging,
			HighlyQualified:   eval.HighlyQualified,
			EngagingCriteria:  eval.Engagement.Met(),
			QualifiedCriteria: eval.Qualification.Met(),
			EngagementRate:    eval.EngagementRate,
		}))
	}

	if len(eval.Sequence) == 0 {
		r.logger.Debug().Str("handle", p.Handle).Msg("no sequence planned")
		return nil, nil
	}

	if r.events != nil {
		r.logEventErr(events.LogSequencePlanned(ctx, r.events, p.ID, models.SequencePlannedPayload{
			Handle:   eval.Handle,
			Actions:  eval.Sequence.Actions(),
			Steps:    len(eval.Sequence),
			Campaign: c.Name,
			DryRun:   c.DryRun,
		}))
	}

	items := make([]*models.OutboxItem, 0, len(eval.Sequence))
	for _, step := range eval.Sequence {
		exists, err := r.outbox.HasAction(ctx, p.ID, step.Action)
		if err != nil {
			return nil, err
		}
		if exists {
			r.logger.Debug().
				Str("handle", p.Handle).
				Str("action", string(step.Action)).
				Msg("step already planned or sent, skipping")
			continue
		}

		item := &models.OutboxItem{
			CampaignID: c.Name,
			ProspectID: p.ID,
			Handle:     p.Handle,
			Platform:   p.Platform,
			Action:     step.Action,
			Priority:   step.Priority,
			Reason:     step.Reason,
		}
		if !r.prepareItem(c, p, item) {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// prepareItem fills in the action-specific fields: target post for
// likes, rendered text for messages, and the optional connection note
// for LinkedIn follows. Returns false when the step cannot be planned.
func (r *Runner) prepareItem(c *Campaign, p *models.Prospect, item *models.OutboxItem) bool {
	switch item.Action {
	case models.ActionLike, models.ActionReply:
		post := p.NewestPost()
		if post == nil || post.ID == "" {
			r.logger.Warn().
				Str("handle", p.Handle).
				Str("action", string(item.Action)).
				Msg("no target post recorded, dropping step")
			return false
		}
		item.PostID = post.ID
		if item.Action == models.ActionReply {
			msg, err := r.renderMessage(c.Templates.ReplyTemplate(), p)
			if err != nil {
				r.logger.Warn().Err(err).Str("handle", p.Handle).Msg("reply text unavailable, dropping step")
				return false
			}
			item.Message = msg
		}
	case models.ActionDirectMessage:
		msg, err := r.renderMessage(c.Templates.DirectMessageTemplate(), p)
		if err != nil {
			r.logger.Warn().Err(err).Str("handle", p.Handle).Msg("message text unavailable, dropping step")
			return false
		}
		item.Message = msg
	case models.ActionFollow:
		if p.Platform == models.PlatformLinkedIn && r.renderer != nil {
			msg, err := r.renderMessage(c.Templates.ConnectionNoteTemplate(), p)
			if err != nil {
				r.logger.Warn().Err(err).Str("handle", p.Handle).Msg("connection note unavailable, sending without one")
			} else {
				item.Message = msg
			}
		}
	}
	return true
}

func (r *Runner) renderMessage(name string, p *models.Prospect) (string, error) {
	if r.renderer == nil {
		return "", errors.New("no template renderer configured")
	}
	return r.renderer.Render(name, p, p.NewestPost())
}

// drain claims and executes outbox items for the campaign until the
// outbox is empty or the context is cancelled. Items left leased by a
// crashed run become claimable again once their lease expires.
func (r *Runner) drain(ctx context.Context, c *Campaign, cfg Config, summary *Summary) {
	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()

	for {
		for {
			if ctx.Err() != nil {
				return
			}
			item, err := r.outbox.ClaimNext(ctx, c.Name, cfg.LeaseFor)
			if err != nil {
				if errors.Is(err, db.ErrOutboxEmpty) {
					return
				}
				r.logger.Error().Err(err).Msg("failed to claim outbox item")
				break
			}
			r.executeItem(ctx, item, cfg, c.DryRun, summary)
			if !c.DryRun {
				if err := sleepCtx(ctx, stepPause(cfg)); err != nil {
					return
				}
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// executeItem runs a single claimed item: quota gate, platform call,
// then the terminal status transition. Transient failures go back to
// pending until the attempt budget is spent.
func (r *Runner) executeItem(ctx context.Context, item *models.OutboxItem, cfg Config, dryRun bool, summary *Summary) {
	start := time.Now().UTC()

	bucket := quota.BucketFor(item.Action)
	if dryRun {
		if !r.tracker.Allow(bucket) {
			r.skipItem(ctx, item, bucket, summary)
			return
		}
	} else {
		if !r.tracker.Record(bucket) {
			r.skipItem(ctx, item, bucket, summary)
			return
		}
		if item.Action == models.ActionResearch {
			// Research pulls the prospect's timeline along with the
			// profile, which spends a tweet lookup too.
			r.tracker.Record(quota.BucketTweetLookup)
		}
	}

	err := r.send(ctx, item, dryRun)
	took := time.Since(start)
	if err != nil {
		r.failItem(ctx, item, cfg, err, took, summary)
		return
	}

	if !dryRun {
		r.recordUsage(ctx, item)
	}
	if err := r.outbox.UpdateStatus(ctx, item.ID, models.OutboxStatusSent, ""); err != nil {
		r.logger.Error().Err(err).Str("outbox_id", item.ID).Msg("failed to mark step sent")
	}
	if r.events != nil {
		r.logEventErr(events.LogStepSent(ctx, r.events, item, took, dryRun))
	}

	now := time.Now().UTC()
	r.statsMu.Lock()
	r.stats.Sent++
	r.stats.LastSentAt = &now
	r.statsMu.Unlock()
	summary.Sent++

	r.emit(DispatchEvent{
		ItemID:    item.ID,
		Handle:    item.Handle,
		Action:    item.Action,
		Status:    models.OutboxStatusSent,
		Timestamp: start,
		Duration:  took,
	})
	r.logger.Info().
		Str("handle", item.Handle).
		Str("action", string(item.Action)).
		Bool("dry_run", dryRun).
		Dur("took", took).
		Msg("step sent")
}

// send performs the platform call for one item. Dry runs skip the call
// entirely and report success.
func (r *Runner) send(ctx context.Context, item *models.OutboxItem, dryRun bool) error {
	if dryRun {
		r.logger.Info().
			Str("handle", item.Handle).
			Str("action", string(item.Action)).
			Msg("dry run, skipping platform call")
		return nil
	}

	client := r.clients.Get(item.Platform)
	if client == nil {
		return fmt.Errorf("%w: %s", ErrNoClient, item.Platform)
	}
	prospect, err := r.store.GetByHandle(ctx, item.Platform, item.Handle)
	if err != nil {
		return fmt.Errorf("load prospect %s: %w", item.Handle, err)
	}

	refreshed, err := platform.Execute(ctx, client, item, prospect)
	if err != nil {
		return err
	}
	if refreshed != nil {
		r.applyProfile(ctx, prospect, refreshed)
	}
	return nil
}

// applyProfile merges a freshly researched profile into the stored
// prospect. Persistence failures are logged and do not fail the step,
// since the platform call itself succeeded.
func (r *Runner) applyProfile(ctx context.Context, stored, fresh *models.Prospect) {
	if fresh.PlatformID != "" {
		stored.PlatformID = fresh.PlatformID
	}
	if fresh.Name != "" {
		stored.Name = fresh.Name
	}
	if fresh.Bio != "" {
		stored.Bio = fresh.Bio
	}
	if fresh.Location != "" {
		stored.Location = fresh.Location
	}
	if fresh.FollowerCount > 0 {
		stored.FollowerCount = fresh.FollowerCount
	}
	if len(fresh.RecentPosts) > 0 {
		stored.RecentPosts = fresh.RecentPosts
	}
	if !fresh.LastActivityAt.IsZero() {
		stored.LastActivityAt = fresh.LastActivityAt
	}
	if err := r.store.Update(ctx, stored); err != nil {
		r.logger.Warn().Err(err).Str("handle", stored.Handle).Msg("failed to persist refreshed profile")
	}
}

func (r *Runner) recordUsage(ctx context.Context, item *models.OutboxItem) {
	if r.usage == nil {
		return
	}
	record := &models.ActionUsage{
		Action:     item.Action,
		Platform:   item.Platform,
		CampaignID: item.CampaignID,
		ProspectID: item.ProspectID,
	}
	if err := r.usage.Record(ctx, record); err != nil {
		r.logger.Warn().Err(err).Str("outbox_id", item.ID).Msg("failed to record usage")
	}
}

// skipItem marks an item skipped because its quota pool for the day is
// spent. The item is terminal; tomorrow's run plans it afresh.
func (r *Runner) skipItem(ctx context.Context, item *models.OutboxItem, bucket quota.Bucket, summary *Summary) {
	const reason = "daily quota exhausted"

	if err := r.outbox.UpdateStatus(ctx, item.ID, models.OutboxStatusSkipped, reason); err != nil {
		r.logger.Error().Err(err).Str("outbox_id", item.ID).Msg("failed to mark step skipped")
	}
	if r.events != nil {
		r.logEventErr(events.LogStepSkipped(ctx, r.events, item, reason))
		limit := r.tracker.Limits().For(bucket)
		r.logEventErr(events.LogQuotaExhausted(ctx, r.events, item.Action, limit, limit-r.tracker.Remaining(bucket)))
	}

	r.statsMu.Lock()
	r.stats.Skipped++
	r.statsMu.Unlock()
	summary.Skipped++

	r.emit(DispatchEvent{
		ItemID:    item.ID,
		Handle:    item.Handle,
		Action:    item.Action,
		Status:    models.OutboxStatusSkipped,
		Error:     reason,
		Timestamp: time.Now().UTC(),
	})
	r.logger.Warn().
		Str("handle", item.Handle).
		Str("action", string(item.Action)).
		Msg("quota exhausted, step skipped")
}

// failItem handles a send error: requeue while attempts remain,
// otherwise mark the item failed for good.
func (r *Runner) failItem(ctx context.Context, item *models.OutboxItem, cfg Config, sendErr error, took time.Duration, summary *Summary) {
	if item.Attempts < cfg.MaxAttempts {
		if err := r.outbox.UpdateStatus(ctx, item.ID, models.OutboxStatusPending, sendErr.Error()); err != nil {
			r.logger.Error().Err(err).Str("outbox_id", item.ID).Msg("failed to requeue step")
		}
		r.logger.Warn().
			Err(sendErr).
			Str("handle", item.Handle).
			Str("action", string(item.Action)).
			Int("attempts", item.Attempts).
			Msg("step errored, will retry")
		return
	}

	if err := r.outbox.UpdateStatus(ctx, item.ID, models.OutboxStatusFailed, sendErr.Error()); err != nil {
		r.logger.Error().Err(err).Str("outbox_id", item.ID).Msg("failed to mark step failed")
	}
	if r.events != nil {
		r.logEventErr(events.LogStepFailed(ctx, r.events, item, sendErr))
	}

	r.statsMu.Lock()
	r.stats.Failed++
	r.statsMu.Unlock()
	summary.Failed++

	r.emit(DispatchEvent{
		ItemID:    item.ID,
		Handle:    item.Handle,
		Action:    item.Action,
		Status:    models.OutboxStatusFailed,
		Error:     sendErr.Error(),
		Timestamp: time.Now().UTC(),
		Duration:  took,
	})
	r.logger.Error().
		Err(sendErr).
		Str("handle", item.Handle).
		Str("action", string(item.Action)).
		Int("attempts", item.Attempts).
		Msg("step failed")
}

// emit sends a dispatch event without blocking. If no observer is
// draining the channel the event is dropped.
func (r *Runner) emit(event DispatchEvent) {
	select {
	case r.dispatchCh <- event:
	default:
		r.logger.Debug().Msg("dispatch event channel full, dropping event")
	}
}

func (r *Runner) logEventErr(err error) {
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to record audit event")
	}
}

// stepPause returns the base delay plus random jitter.
func stepPause(cfg Config) time.Duration {
	pause := cfg.StepDelay
	if cfg.Jitter > 0 {
		pause += time.Duration(rand.Int63n(int64(cfg.Jitter)))
	}
	return pause
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
