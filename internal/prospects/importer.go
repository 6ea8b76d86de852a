package prospects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/events"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/logging"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/platform"
)

// Store is the prospect persistence the importer writes through.
type Store interface {
	GetByHandle(ctx context.Context, platform models.Platform, handle string) (*models.Prospect, error)
	Create(ctx context.Context, prospect *models.Prospect) error
	Update(ctx context.Context, prospect *models.Prospect) error
}

// Result summarizes one import run.
type Result struct {
	// Imported counts newly created prospects.
	Imported int
	// Updated counts prospects that already existed and were refreshed.
	Updated int
	// Skipped counts invalid records and in-file duplicates.
	Skipped int
}

// Total returns how many records the run looked at.
func (r *Result) Total() int {
	return r.Imported + r.Updated + r.Skipped
}

// Importer upserts prospect records into the store, deduplicating by
// platform and handle.
type Importer struct {
	store           Store
	events          events.Repository
	logger          zerolog.Logger
	defaultPlatform models.Platform
	now             func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithEvents records audit events for each imported or updated
// prospect. Event failures are logged, never fatal.
func WithEvents(repo events.Repository) Option {
	return func(im *Importer) {
		im.events = repo
	}
}

// WithDefaultPlatform sets the platform used for records that do not
// name one.
func WithDefaultPlatform(p models.Platform) Option {
	return func(im *Importer) {
		im.defaultPlatform = p
	}
}

// WithNow overrides the clock used to resolve relative activity.
func WithNow(now func() time.Time) Option {
	return func(im *Importer) {
		im.now = now
	}
}

// NewImporter creates an importer writing through the given store.
func NewImporter(store Store, opts ...Option) *Importer {
	im := &Importer{
		store:           store,
		logger:          logging.Component("import"),
		defaultPlatform: models.PlatformTwitter,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import converts records and upserts them. Invalid records are
// skipped with a warning; storage errors abort the run with the counts
// accumulated so far.
func (im *Importer) Import(ctx context.Context, records []Record) (*Result, error) {
	result := &Result{}
	now := im.now()
	prospects := make([]*models.Prospect, 0, len(records))

	for i, record := range records {
		prospect, err := record.ToProspect(now, im.defaultPlatform)
		if err != nil {
			im.logger.Warn().Err(err).Int("record", i+1).Msg("skipping invalid record")
			result.Skipped++
			continue
		}
		prospects = append(prospects, prospect)
	}

	return im.upsertAll(ctx, prospects, result)
}

// Discover searches the platform for prospects matching the query and
// imports the results.
func (im *Importer) Discover(ctx context.Context, client platform.Client, query string, limit int) (*Result, error) {
	if client == nil {
		return nil, errors.New("client is nil")
	}

	found, err := client.SearchProspects(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	im.logger.Debug().
		Str("platform", string(client.Platform())).
		Str("query", query).
		Int("found", len(found)).
		Msg("discovery search finished")

	return im.upsertAll(ctx, found, &Result{})
}

func (im *Importer) upsertAll(ctx context.Context, prospects []*models.Prospect, result *Result) (*Result, error) {
	seen := make(map[string]bool, len(prospects))

	for _, prospect := range prospects {
		key := string(prospect.Platform) + "/" + strings.ToLower(prospect.Handle)
		if seen[key] {
			result.Skipped++
			continue
		}
		seen[key] = true

		existing, err := im.store.GetByHandle(ctx, prospect.Platform, prospect.Handle)
		switch {
		case err == nil:
			merged := mergeProspect(existing, prospect)
			if err := im.store.Update(ctx, merged); err != nil {
				return result, fmt.Errorf("update %s: %w", prospect.Handle, err)
			}
			im.audit(ctx, events.LogProspectUpdated, merged)
			result.Updated++

		case errors.Is(err, db.ErrProspectNotFound):
			if err := im.store.Create(ctx, prospect); err != nil {
				return result, fmt.Errorf("create %s: %w", prospect.Handle, err)
			}
			im.audit(ctx, events.LogProspectImported, prospect)
			result.Imported++

		default:
			return result, fmt.Errorf("lookup %s: %w", prospect.Handle, err)
		}
	}

	im.logger.Info().
		Int("imported", result.Imported).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Msg("import finished")
	return result, nil
}

type auditFunc func(ctx context.Context, repo events.Repository, prospectID, handle string, platform models.Platform) error

func (im *Importer) audit(ctx context.Context, log auditFunc, prospect *models.Prospect) {
	if im.events == nil {
		return
	}
	if err := log(ctx, im.events, prospect.ID, prospect.Handle, prospect.Platform); err != nil {
		im.logger.Warn().Err(err).Str("handle", prospect.Handle).Msg("failed to record audit event")
	}
}

// mergeProspect refreshes a stored prospect with incoming data.
// Identity and creation time stay with the stored row. The engagement
// flag is sticky; a list export that omits it must not erase known
// engagement history.
func mergeProspect(existing, incoming *models.Prospect) *models.Prospect {
	merged := *incoming
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.HasEngagedWithUs = existing.HasEngagedWithUs || incoming.HasEngagedWithUs

	if merged.PlatformID == "" {
		merged.PlatformID = existing.PlatformID
	}
	if merged.Name == "" {
		merged.Name = existing.Name
	}
	if merged.Bio == "" {
		merged.Bio = existing.Bio
	}
	if merged.Industry == "" {
		merged.Industry = existing.Industry
	}
	if merged.Location == "" {
		merged.Location = existing.Location
	}
	if len(merged.Keywords) == 0 {
		merged.Keywords = existing.Keywords
	}
	if len(merged.RecentPosts) == 0 {
		merged.RecentPosts = existing.RecentPosts
	}
	if len(merged.MutualConnections) == 0 {
		merged.MutualConnections = existing.MutualConnections
	}
	if merged.FollowerCount == 0 {
		merged.FollowerCount = existing.FollowerCount
	}
	if merged.LastActivityAt.IsZero() {
		merged.LastActivityAt = existing.LastActivityAt
	}
	return &merged
}
