package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/outreach"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/platform"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/quota"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/templates"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeProspects is an in-memory ProspectStore.
type fakeProspects struct {
	mu      sync.Mutex
	order   []string
	byKey   map[string]*models.Prospect
	updates int
}

func newFakeProspects(prospects ...*models.Prospect) *fakeProspects {
	f := &fakeProspects{byKey: make(map[string]*models.Prospect)}
	for _, p := range prospects {
		key := prospectKey(p.Platform, p.Handle)
		f.order = append(f.order, key)
		f.byKey[key] = cloneTestProspect(p)
	}
	return f
}

func prospectKey(platform models.Platform, handle string) string {
	return string(platform) + "/" + strings.ToLower(handle)
}

func (f *fakeProspects) GetByHandle(ctx context.Context, platform models.Platform, handle string) (*models.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byKey[prospectKey(platform, handle)]
	if !ok {
		return nil, db.ErrProspectNotFound
	}
	return cloneTestProspect(p), nil
}

func (f *fakeProspects) List(ctx context.Context, q db.ProspectQuery) ([]*models.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Prospect, 0, len(f.order))
	for _, key := range f.order {
		p := f.byKey[key]
		if q.Platform != nil && p.Platform != *q.Platform {
			continue
		}
		out = append(out, cloneTestProspect(p))
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeProspects) Update(ctx context.Context, prospect *models.Prospect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.byKey[prospectKey(prospect.Platform, prospect.Handle)] = cloneTestProspect(prospect)
	return nil
}

func (f *fakeProspects) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

func cloneTestProspect(p *models.Prospect) *models.Prospect {
	clone := *p
	clone.Keywords = append([]string(nil), p.Keywords...)
	clone.RecentPosts = append([]models.Post(nil), p.RecentPosts...)
	clone.MutualConnections = append([]string(nil), p.MutualConnections...)
	return &clone
}

// memOutbox is an in-memory Outbox with the repository's claim
// semantics: oldest pending first, attempts incremented on claim.
// Lease expiry is the repository's concern and is covered by its own
// tests.
type memOutbox struct {
	mu    sync.Mutex
	seq   int
	items []*models.OutboxItem
}

func newMemOutbox() *memOutbox {
	return &memOutbox{}
}

func (m *memOutbox) Enqueue(ctx context.Context, items ...*models.OutboxItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		m.seq++
		item.ID = fmt.Sprintf("outbox-%d", m.seq)
		item.Status = models.OutboxStatusPending
		item.CreatedAt = time.Now().UTC()
		stored := *item
		m.items = append(m.items, &stored)
	}
	return nil
}

func (m *memOutbox) ClaimNext(ctx context.Context, campaignID string, leaseFor time.Duration) (*models.OutboxItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.CampaignID != campaignID || item.Status != models.OutboxStatusPending {
			continue
		}
		item.Status = models.OutboxStatusLeased
		item.Attempts++
		until := time.Now().UTC().Add(leaseFor)
		item.LeaseUntil = &until
		claimed := *item
		return &claimed, nil
	}
	return nil, db.ErrOutboxEmpty
}

func (m *memOutbox) UpdateStatus(ctx context.Context, id string, status models.OutboxStatus, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID != id {
			continue
		}
		item.Status = status
		item.LastError = errorMessage
		item.LeaseUntil = nil
		if status == models.OutboxStatusSent {
			now := time.Now().UTC()
			item.SentAt = &now
		}
		return nil
	}
	return fmt.Errorf("outbox item %s not found", id)
}

func (m *memOutbox) HasAction(ctx context.Context, prospectID string, action models.ActionKind) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ProspectID != prospectID || item.Action != action {
			continue
		}
		switch item.Status {
		case models.OutboxStatusPending, models.OutboxStatusLeased, models.OutboxStatusSent:
			return true, nil
		}
	}
	return false, nil
}

func (m *memOutbox) byStatus(status models.OutboxStatus) []*models.OutboxItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.OutboxItem
	for _, item := range m.items {
		if item.Status == status {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out
}

func (m *memOutbox) findByAction(action models.ActionKind) *models.OutboxItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.Action == action {
			copied := *item
			return &copied
		}
	}
	return nil
}

// recordingEvents is an in-memory events.Repository.
type recordingEvents struct {
	mu     sync.Mutex
	events []*models.Event
}

func (r *recordingEvents) Append(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) countOf(eventType models.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, event := range r.events {
		if event.Type == eventType {
			count++
		}
	}
	return count
}

// fakeUsage is an in-memory UsageLog.
type fakeUsage struct {
	mu      sync.Mutex
	records []*models.ActionUsage
}

func (f *fakeUsage) Record(ctx context.Context, record *models.ActionUsage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeUsage) all() []*models.ActionUsage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.ActionUsage(nil), f.records...)
}

// qualifiedProspect builds a prospect that passes all three predicates:
// topical keywords, follower band, fresh activity, engaged posts, and
// prior engagement with us. Sequence planning yields all four steps.
func qualifiedProspect(id, handle string) *models.Prospect {
	now := time.Now().UTC()
	return &models.Prospect{
		ID:               id,
		PlatformID:       "net-" + id,
		Platform:         models.PlatformTwitter,
		Name:             "Sarah Chen",
		Handle:           handle,
		FollowerCount:    3200,
		Bio:              "Building AI automation for B2B teams",
		Keywords:         []string{"ai", "automation", "b2b"},
		HasEngagedWithUs: true,
		LastActivityAt:   now.Add(-24 * time.Hour),
		RecentPosts: []models.Post{
			{ID: "post-" + id, Text: "Shipping a new AI workflow today", Likes: 42, Comments: 6, PostedAt: now.Add(-24 * time.Hour)},
		},
	}
}

type runnerHarness struct {
	store   *fakeProspects
	outbox  *memOutbox
	events  *recordingEvents
	usage   *fakeUsage
	tracker *quota.Tracker
	client  *platform.SimulatedClient
	runner  *Runner
}

func testRunnerConfig() Config {
	return Config{
		TickInterval: 10 * time.Millisecond,
		LeaseFor:     time.Minute,
		MaxAttempts:  3,
		MaxProspects: 25,
	}
}

func builtinRenderer(t *testing.T) *templates.Renderer {
	t.Helper()
	tmpls, err := templates.LoadBuiltinTemplates()
	if err != nil {
		t.Fatalf("loading builtin templates: %v", err)
	}
	return templates.NewRenderer(templates.NewCatalog(tmpls...), templates.Options{})
}

func newHarness(t *testing.T, cfg Config, limits quota.Limits, prospects []*models.Prospect, clientOpts ...platform.SimulatedOption) *runnerHarness {
	t.Helper()
	if limits == (quota.Limits{}) {
		limits = quota.DefaultLimits()
	}

	h := &runnerHarness{
		store:   newFakeProspects(prospects...),
		outbox:  newMemOutbox(),
		events:  &recordingEvents{},
		usage:   &fakeUsage{},
		tracker: quota.New(quota.WithLimits(limits)),
		client:  platform.NewSimulatedClient(models.PlatformTwitter, clientOpts...),
	}
	registry := platform.NewRegistry()
	registry.MustRegister(h.client)

	h.runner = NewRunner(cfg, outreach.NewEngine(outreach.Config{}), h.tracker, h.store, h.outbox, registry,
		WithRenderer(builtinRenderer(t)),
		WithUsageLog(h.usage),
		WithRunnerEvents(h.events),
	)
	return h
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestRunnerDryRunPlansWithoutSending(t *testing.T) {
	h := newHarness(t, testRunnerConfig(), quota.Limits{}, []*models.Prospect{
		qualifiedProspect("p1", "sarah_tech"),
		{ID: "p2", Platform: models.PlatformTwitter, Handle: "quiet_account", FollowerCount: 12},
	})

	summary, err := h.runner.Run(context.Background(), &Campaign{Name: "founders", DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Planned != 4 {
		t.Errorf("Planned = %d, want 4", summary.Planned)
	}
	if summary.Sent != 4 {
		t.Errorf("Sent = %d, want 4", summary.Sent)
	}
	if summary.Failed != 0 || summary.Skipped != 0 {
		t.Errorf("unexpected failures or skips: %+v", summary)
	}

	if sent := h.outbox.byStatus(models.OutboxStatusSent); len(sent) != 4 {
		t.Errorf("expected 4 sent outbox items, got %d", len(sent))
	}

	// Dry runs never touch the platform or the quota.
	if calls := h.client.Calls(); len(calls) != 0 {
		t.Errorf("dry run made %d platform calls", len(calls))
	}
	if got := h.tracker.Remaining(quota.BucketFollow); got != quota.DefaultLimits().Follows {
		t.Errorf("dry run consumed follow quota: remaining %d", got)
	}
	if len(h.usage.all()) != 0 {
		t.Error("dry run recorded usage")
	}

	dm := h.outbox.findByAction(models.ActionDirectMessage)
	if dm == nil {
		t.Fatal("expected a planned direct message")
	}
	if dm.Message == "" || strings.Contains(dm.Message, "{{") {
		t.Errorf("direct message not fully rendered: %q", dm.Message)
	}
	like := h.outbox.findByAction(models.ActionLike)
	if like == nil || like.PostID != "post-p1" {
		t.Errorf("like step should target the newest post, got %+v", like)
	}

	if got := h.events.countOf(models.EventTypeCampaignStarted); got != 1 {
		t.Errorf("campaign.started events = %d", got)
	}
	if got := h.events.countOf(models.EventTypeProspectQualified); got != 2 {
		t.Errorf("prospect.qualified events = %d", got)
	}
	if got := h.events.countOf(models.EventTypeStepSent); got != 4 {
		t.Errorf("step.sent events = %d", got)
	}
	if got := h.events.countOf(models.EventTypeCampaignCompleted); got != 1 {
		t.Errorf("campaign.completed events = %d", got)
	}

	stats := h.runner.Stats()
	if stats.Running {
		t.Error("runner should not report running after completion")
	}
	if stats.Sent != 4 {
		t.Errorf("stats.Sent = %d, want 4", stats.Sent)
	}
}

func TestRunnerSendsSequenceInOrder(t *testing.T) {
	seed := qualifiedProspect("p1", "sarah_tech")
	refreshed := cloneTestProspect(seed)
	refreshed.FollowerCount = 4100

	h := newHarness(t, testRunnerConfig(), quota.Limits{}, []*models.Prospect{seed},
		platform.WithSeedProfiles(refreshed))

	summary, err := h.runner.Run(context.Background(), &Campaign{Name: "founders"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Sent != 4 {
		t.Fatalf("Sent = %d, want 4: %+v", summary.Sent, summary)
	}

	var ops []string
	for _, call := range h.client.Calls() {
		ops = append(ops, call.Op)
	}
	want := []string{platform.OpLookupProfile, platform.OpFollow, platform.OpLike, platform.OpDirectMessage}
	if len(ops) != len(want) {
		t.Fatalf("platform calls = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("platform calls out of order: %v, want %v", ops, want)
		}
	}

	// Research refreshes the stored profile.
	stored, err := h.store.GetByHandle(context.Background(), models.PlatformTwitter, "sarah_tech")
	if err != nil {
		t.Fatal(err)
	}
	if stored.FollowerCount != 4100 {
		t.Errorf("profile not refreshed after research: followers %d", stored.FollowerCount)
	}
	if h.store.updateCount() == 0 {
		t.Error("expected the store to be updated with the refreshed profile")
	}

	// Each sent step debits quota and records usage.
	if got := h.tracker.Remaining(quota.BucketFollow); got != quota.DefaultLimits().Follows-1 {
		t.Errorf("follow quota remaining = %d", got)
	}
	if got := h.tracker.Remaining(quota.BucketDirectMessage); got != quota.DefaultLimits().DirectMessages-1 {
		t.Errorf("direct message quota remaining = %d", got)
	}
	records := h.usage.all()
	if len(records) != 4 {
		t.Fatalf("usage records = %d, want 4", len(records))
	}
	if records[0].Action != models.ActionResearch || records[0].CampaignID != "founders" {
		t.Errorf("unexpected first usage record: %+v", records[0])
	}

	// Dispatch events were emitted for every send.
	sentEvents := 0
	for {
		select {
		case event := <-h.runner.DispatchEvents():
			if event.Status == models.OutboxStatusSent {
				sentEvents++
			}
			continue
		default:
		}
		break
	}
	if sentEvents != 4 {
		t.Errorf("dispatch events for sent steps = %d, want 4", sentEvents)
	}
}

func TestRunnerSkipsWhenQuotaExhausted(t *testing.T) {
	limits := quota.DefaultLimits()
	limits.Follows = 1

	h := newHarness(t, testRunnerConfig(), limits, []*models.Prospect{
		qualifiedProspect("p1", "sarah_tech"),
		qualifiedProspect("p2", "mike_builds"),
	})

	summary, err := h.runner.Run(context.Background(), &Campaign{Name: "founders"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Planned != 8 {
		t.Errorf("Planned = %d, want 8", summary.Planned)
	}
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
	if summary.Sent != 7 {
		t.Errorf("Sent = %d, want 7", summary.Sent)
	}

	skipped := h.outbox.byStatus(models.OutboxStatusSkipped)
	if len(skipped) != 1 || skipped[0].Action != models.ActionFollow {
		t.Fatalf("expected exactly the second follow to be skipped, got %+v", skipped)
	}
	if h.client.CallCount(platform.OpFollow) != 1 {
		t.Errorf("follow calls = %d, want 1", h.client.CallCount(platform.OpFollow))
	}
	if got := h.events.countOf(models.EventTypeQuotaExhausted); got != 1 {
		t.Errorf("quota.exhausted events = %d, want 1", got)
	}
	if got := h.events.countOf(models.EventTypeStepSkipped); got != 1 {
		t.Errorf("step.skipped events = %d, want 1", got)
	}
}

func TestRunnerRetriesThenFails(t *testing.T) {
	cfg := testRunnerConfig()
	cfg.MaxAttempts = 2

	h := newHarness(t, cfg, quota.Limits{}, []*models.Prospect{qualifiedProspect("p1", "sarah_tech")},
		platform.WithScriptedFailure(platform.OpFollow, errors.New("rate limited")))

	summary, err := h.runner.Run(context.Background(), &Campaign{Name: "founders"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if summary.Sent != 3 {
		t.Errorf("Sent = %d, want 3", summary.Sent)
	}

	follow := h.outbox.findByAction(models.ActionFollow)
	if follow == nil {
		t.Fatal("follow item missing")
	}
	if follow.Status != models.OutboxStatusFailed {
		t.Errorf("follow status = %q, want failed", follow.Status)
	}
	if follow.Attempts != 2 {
		t.Errorf("follow attempts = %d, want 2", follow.Attempts)
	}
	if !strings.Contains(follow.LastError, "rate limited") {
		t.Errorf("follow last error = %q", follow.LastError)
	}
	if got := h.client.CallCount(platform.OpFollow); got != 2 {
		t.Errorf("follow was tried %d times, want 2", got)
	}
	if got := h.events.countOf(models.EventTypeStepFailed); got != 1 {
		t.Errorf("step.failed events = %d, want 1", got)
	}
}

func TestRunnerSecondRunPlansNothing(t *testing.T) {
	h := newHarness(t, testRunnerConfig(), quota.Limits{}, []*models.Prospect{qualifiedProspect("p1", "sarah_tech")})

	camp := &Campaign{Name: "founders", DryRun: true}
	first, err := h.runner.Run(context.Background(), camp)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Planned != 4 {
		t.Fatalf("first run planned %d, want 4", first.Planned)
	}

	second, err := h.runner.Run(context.Background(), camp)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Planned != 0 {
		t.Errorf("second run planned %d steps, want 0", second.Planned)
	}
	if second.Sent != 0 {
		t.Errorf("second run sent %d steps, want 0", second.Sent)
	}
}

func TestRunnerResolvesNamedHandles(t *testing.T) {
	h := newHarness(t, testRunnerConfig(), quota.Limits{}, []*models.Prospect{
		qualifiedProspect("p1", "sarah_tech"),
		qualifiedProspect("p2", "mike_builds"),
	})

	camp := &Campaign{
		Name:    "founders",
		Handles: []string{"@sarah_tech", "ghost_account"},
		DryRun:  true,
	}
	summary, err := h.runner.Run(context.Background(), camp)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Only the stored handle plans; the unknown one is skipped with a
	// warning, and mike_builds is not named so not touched.
	if summary.Planned != 4 {
		t.Errorf("Planned = %d, want 4", summary.Planned)
	}
	if item := h.outbox.findByAction(models.ActionResearch); item == nil || item.Handle != "sarah_tech" {
		t.Errorf("unexpected research target: %+v", item)
	}
}

func TestRunnerWithoutRendererDropsMessageSteps(t *testing.T) {
	store := newFakeProspects(qualifiedProspect("p1", "sarah_tech"))
	outbox := newMemOutbox()
	registry := platform.NewRegistry()
	registry.MustRegister(platform.NewSimulatedClient(models.PlatformTwitter))

	runner := NewRunner(testRunnerConfig(), outreach.NewEngine(outreach.Config{}), quota.New(), store, outbox, registry)

	summary, err := runner.Run(context.Background(), &Campaign{Name: "founders", DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Planned != 3 {
		t.Errorf("Planned = %d, want 3 (direct message dropped)", summary.Planned)
	}
	if item := outbox.findByAction(models.ActionDirectMessage); item != nil {
		t.Errorf("direct message should not be planned without a renderer: %+v", item)
	}
}

func TestRunnerLinkedInFollowCarriesConnectionNote(t *testing.T) {
	seed := qualifiedProspect("p1", "maya-ops")
	seed.Platform = models.PlatformLinkedIn

	store := newFakeProspects(seed)
	outbox := newMemOutbox()
	client := platform.NewSimulatedClient(models.PlatformLinkedIn, platform.WithSeedProfiles(cloneTestProspect(seed)))
	registry := platform.NewRegistry()
	registry.MustRegister(client)

	runner := NewRunner(testRunnerConfig(), outreach.NewEngine(outreach.Config{}), quota.New(), store, outbox, registry,
		WithRenderer(builtinRenderer(t)))

	summary, err := runner.Run(context.Background(), &Campaign{Name: "li-founders", Platform: "linkedin"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Sent != 4 {
		t.Fatalf("Sent = %d, want 4", summary.Sent)
	}

	if got := client.CallCount(platform.OpConnectionRequest); got != 1 {
		t.Fatalf("connection requests = %d, want 1", got)
	}
	if got := client.CallCount(platform.OpFollow); got != 0 {
		t.Errorf("plain follows = %d, want 0", got)
	}
	for _, call := range client.Calls() {
		if call.Op == platform.OpConnectionRequest && call.Text == "" {
			t.Error("connection request sent without a note")
		}
	}
}

func TestRunnerRejectsInvalidCampaign(t *testing.T) {
	h := newHarness(t, testRunnerConfig(), quota.Limits{}, nil)

	if _, err := h.runner.Run(context.Background(), nil); err == nil {
		t.Error("expected error for nil campaign")
	}
	if _, err := h.runner.Run(context.Background(), &Campaign{}); !errors.Is(err, ErrCampaignNameRequired) {
		t.Errorf("expected ErrCampaignNameRequired, got %v", err)
	}
}

// gatedOutbox blocks ClaimNext until the gate is closed, keeping a run
// in flight for as long as the test needs.
type gatedOutbox struct {
	*memOutbox
	gate chan struct{}
}

func (g *gatedOutbox) ClaimNext(ctx context.Context, campaignID string, leaseFor time.Duration) (*models.OutboxItem, error) {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.memOutbox.ClaimNext(ctx, campaignID, leaseFor)
}

func TestRunnerRefusesConcurrentRuns(t *testing.T) {
	gate := make(chan struct{})
	outbox := &gatedOutbox{memOutbox: newMemOutbox(), gate: gate}
	registry := platform.NewRegistry()
	registry.MustRegister(platform.NewSimulatedClient(models.PlatformTwitter))

	runner := NewRunner(testRunnerConfig(), outreach.NewEngine(outreach.Config{}), quota.New(), newFakeProspects(), outbox, registry)

	done := make(chan struct{})
	var firstErr error
	go func() {
		defer close(done)
		_, firstErr = runner.Run(context.Background(), &Campaign{Name: "slow", DryRun: true})
	}()

	waitFor(t, 2*time.Second, func() bool { return runner.Stats().Running }, "runner never reported running")

	if _, err := runner.Run(context.Background(), &Campaign{Name: "second"}); !errors.Is(err, ErrRunnerBusy) {
		t.Errorf("expected ErrRunnerBusy, got %v", err)
	}

	close(gate)
	<-done
	if firstErr != nil {
		t.Fatalf("first run failed: %v", firstErr)
	}
}

func TestRunnerStopsOnContextCancel(t *testing.T) {
	h := newHarness(t, testRunnerConfig(), quota.Limits{}, []*models.Prospect{qualifiedProspect("p1", "sarah_tech")})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A huge step delay parks the runner between sends.
	camp := &Campaign{Name: "founders", StepDelay: "1h"}

	done := make(chan struct{})
	var (
		summary *Summary
		runErr  error
	)
	go func() {
		defer close(done)
		summary, runErr = h.runner.Run(ctx, camp)
	}()

	waitFor(t, 2*time.Second, func() bool { return h.runner.Stats().Sent >= 1 }, "no step was sent")
	cancel()
	<-done

	if !errors.Is(runErr, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", runErr)
	}
	if summary == nil || summary.Sent != 1 {
		t.Fatalf("expected exactly one sent step before cancel, got %+v", summary)
	}
	if pending := h.outbox.byStatus(models.OutboxStatusPending); len(pending) != 3 {
		t.Errorf("expected 3 steps left pending, got %d", len(pending))
	}
}

func TestStepPause(t *testing.T) {
	cfg := Config{StepDelay: 10 * time.Millisecond, Jitter: 5 * time.Millisecond}
	for i := 0; i < 100; i++ {
		pause := stepPause(cfg)
		if pause < 10*time.Millisecond || pause >= 15*time.Millisecond {
			t.Fatalf("pause %v outside [10ms, 15ms)", pause)
		}
	}

	fixed := Config{StepDelay: 20 * time.Millisecond}
	if got := stepPause(fixed); got != 20*time.Millisecond {
		t.Errorf("pause without jitter = %v, want 20ms", got)
	}
}
