package platform

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/logging"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// Operation names recorded by the simulated client.
const (
	OpLookupProfile     = "lookup_profile"
	OpSearch            = "search"
	OpFollow            = "follow"
	OpLike              = "like"
	OpReply             = "reply"
	OpDirectMessage     = "direct_message"
	OpConnectionRequest = "connection_request"
)

// SimulatedCall records one operation executed against the simulated
// client, in execution order.
type SimulatedCall struct {
	Op     string
	Handle string
	PostID string
	Text   string
}

// SimulatedClient is an in-memory client for dry runs and tests. Sends
// are recorded instead of executed, lookups answer from seeded profiles
// or a deterministic synthetic profile, and failures can be scripted
// per operation.
type SimulatedClient struct {
	platform models.Platform
	logger   zerolog.Logger

	mu         sync.Mutex
	profiles   map[string]*models.Prospect
	calls      []SimulatedCall
	failures   map[string]error
	seededOnly bool
}

// SimulatedOption configures a SimulatedClient.
type SimulatedOption func(*SimulatedClient)

// WithSeedProfiles preloads profiles the client answers lookups from.
func WithSeedProfiles(prospects ...*models.Prospect) SimulatedOption {
	return func(c *SimulatedClient) {
		for _, p := range prospects {
			if p == nil || p.Handle == "" {
				continue
			}
			c.profiles[strings.ToLower(p.Handle)] = p
		}
	}
}

// WithScriptedFailure makes the named operation return err.
func WithScriptedFailure(op string, err error) SimulatedOption {
	return func(c *SimulatedClient) {
		c.failures[op] = err
	}
}

// WithSeededProfilesOnly disables synthetic profiles; lookups for
// unseeded handles return ErrProfileNotFound.
func WithSeededProfilesOnly() SimulatedOption {
	return func(c *SimulatedClient) {
		c.seededOnly = true
	}
}

// NewSimulatedClient creates a simulated client for the given platform.
func NewSimulatedClient(platform models.Platform, opts ...SimulatedOption) *SimulatedClient {
	c := &SimulatedClient{
		platform: platform,
		logger:   logging.Component("simulated"),
		profiles: make(map[string]*models.Prospect),
		failures: make(map[string]error),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Platform identifies the network this client simulates.
func (c *SimulatedClient) Platform() models.Platform {
	return c.platform
}

// LookupProfile answers from seeded profiles, synthesizing a
// deterministic profile for unknown handles unless seeded-only is set.
func (c *SimulatedClient) LookupProfile(ctx context.Context, handle string) (*models.Prospect, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if err := c.record(SimulatedCall{Op: OpLookupProfile, Handle: handle}); err != nil {
		return nil, err
	}

	c.mu.Lock()
	seeded, ok := c.profiles[strings.ToLower(handle)]
	seededOnly := c.seededOnly
	c.mu.Unlock()

	if ok {
		return cloneProspect(seeded), nil
	}
	if seededOnly {
		return nil, fmt.Errorf("%s: %w", handle, ErrProfileNotFound)
	}
	return syntheticProfile(c.platform, handle), nil
}

// SearchProspects returns seeded profiles matching the query, topping
// up with synthetic results until limit is reached.
func (c *SimulatedClient) SearchProspects(ctx context.Context, query string, limit int) ([]*models.Prospect, error) {
	if err := c.record(SimulatedCall{Op: OpSearch, Text: query}); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	c.mu.Lock()
	var matches []*models.Prospect
	for _, p := range c.profiles {
		if prospectMatches(p, query) {
			matches = append(matches, cloneProspect(p))
		}
	}
	seededOnly := c.seededOnly
	c.mu.Unlock()

	if len(matches) > limit {
		matches = matches[:limit]
	}
	if seededOnly {
		return matches, nil
	}
	for i := len(matches); i < limit; i++ {
		handle := fmt.Sprintf("%s_%02d", querySlug(query), i+1)
		matches = append(matches, syntheticProfile(c.platform, handle))
	}
	return matches, nil
}

// Follow records a simulated follow.
func (c *SimulatedClient) Follow(ctx context.Context, prospect *models.Prospect) error {
	return c.record(SimulatedCall{Op: OpFollow, Handle: handleOf(prospect)})
}

// Like records a simulated like.
func (c *SimulatedClient) Like(ctx context.Context, postID string) error {
	return c.record(SimulatedCall{Op: OpLike, PostID: postID})
}

// Reply records a simulated reply.
func (c *SimulatedClient) Reply(ctx context.Context, postID, text string) error {
	return c.record(SimulatedCall{Op: OpReply, PostID: postID, Text: text})
}

// SendDirectMessage records a simulated direct message.
func (c *SimulatedClient) SendDirectMessage(ctx context.Context, prospect *models.Prospect, text string) error {
	return c.record(SimulatedCall{Op: OpDirectMessage, Handle: handleOf(prospect), Text: text})
}

// SendConnectionRequest records a simulated connection request.
func (c *SimulatedClient) SendConnectionRequest(ctx context.Context, prospect *models.Prospect, note string) error {
	return c.record(SimulatedCall{Op: OpConnectionRequest, Handle: handleOf(prospect), Text: note})
}

// Calls returns a copy of the recorded operations.
func (c *SimulatedClient) Calls() []SimulatedCall {
	c.mu.Lock()
	defer c.mu.Unlock()

	calls := make([]SimulatedCall, len(c.calls))
	copy(calls, c.calls)
	return calls
}

// CallCount returns how many times the named operation ran.
func (c *SimulatedClient) CallCount(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, call := range c.calls {
		if call.Op == op {
			count++
		}
	}
	return count
}

// record appends the call and applies any scripted failure. Attempts
// are recorded even when scripted to fail, so tests can assert that a
// failing operation actually ran.
func (c *SimulatedClient) record(call SimulatedCall) error {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	err := c.failures[call.Op]
	c.mu.Unlock()

	event := c.logger.Info().
		Str("platform", string(c.platform)).
		Str("op", call.Op).
		Bool("simulated", true)
	if call.Handle != "" {
		event = event.Str("handle", call.Handle)
	}
	if call.PostID != "" {
		event = event.Str("post_id", call.PostID)
	}
	if err != nil {
		event.Err(err).Msg("simulated operation failed")
		return err
	}
	event.Msg("simulated operation")
	return nil
}

func handleOf(prospect *models.Prospect) string {
	if prospect == nil {
		return ""
	}
	return prospect.Handle
}

func prospectMatches(p *models.Prospect, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Bio), query) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Industry), query) {
		return true
	}
	for _, keyword := range p.Keywords {
		if strings.Contains(strings.ToLower(keyword), query) {
			return true
		}
	}
	return false
}

func querySlug(query string) string {
	slug := strings.ToLower(strings.TrimSpace(query))
	slug = strings.Join(strings.Fields(slug), "_")
	if slug == "" {
		return "prospect"
	}
	if len(slug) > 20 {
		slug = slug[:20]
	}
	return slug
}

var syntheticKeywords = []string{
	"ai", "automation", "saas", "startup", "marketing",
	"growth", "b2b", "product",
}

// syntheticProfile derives a stable profile from the handle so repeated
// lookups agree with each other. Post timestamps track the wall clock
// so recency checks see a live-looking account.
func syntheticProfile(platform models.Platform, handle string) *models.Prospect {
	hasher := fnv.New32a()
	hasher.Write([]byte(strings.ToLower(handle)))
	seed := hasher.Sum32()

	first := syntheticKeywords[seed%uint32(len(syntheticKeywords))]
	second := syntheticKeywords[(seed>>3)%uint32(len(syntheticKeywords))]
	followers := 500 + int(seed%9500)
	now := time.Now().UTC()

	posts := make([]models.Post, 0, 3)
	for i := 0; i < 3; i++ {
		shift := seed >> (4 * i)
		posts = append(posts, models.Post{
			ID:       fmt.Sprintf("sim-%s-%d", handle, i+1),
			Text:     fmt.Sprintf("Thoughts on %s after another week of building. The hard part is never the %s itself.", first, second),
			Likes:    5 + int(shift%120),
			Comments: int(shift % 7),
			PostedAt: now.AddDate(0, 0, -(i*2 + int(seed%3))),
		})
	}

	return &models.Prospect{
		PlatformID:     fmt.Sprintf("sim-%08x", seed),
		Platform:       platform,
		Name:           displayName(handle),
		Handle:         handle,
		FollowerCount:  followers,
		Bio:            fmt.Sprintf("Building in %s. Writing about %s and %s.", first, first, second),
		Keywords:       []string{first, second},
		RecentPosts:    posts,
		LastActivityAt: posts[0].PostedAt,
	}
}

func displayName(handle string) string {
	words := strings.Fields(strings.ReplaceAll(handle, "_", " "))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func cloneProspect(p *models.Prospect) *models.Prospect {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Keywords = append([]string(nil), p.Keywords...)
	clone.RecentPosts = append([]models.Post(nil), p.RecentPosts...)
	clone.MutualConnections = append([]string(nil), p.MutualConnections...)
	return &clone
}
