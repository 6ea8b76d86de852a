package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/logging"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

const (
	defaultLinkedInBaseURL = "https://api.linkedin.com/v2"
	defaultLinkedInTimeout = 15 * time.Second
)

// LinkedInClient covers the LinkedIn surface. Profile lookup uses the
// open REST endpoints when a token is configured; messaging, connection
// requests, and search run against the simulated client because the
// real endpoints require partner approval. Simulated operations are
// logged as such.
type LinkedInClient struct {
	rest     *restClient
	sim      *SimulatedClient
	logger   zerolog.Logger
	simulate bool
}

// LinkedInOption configures a LinkedInClient.
type LinkedInOption func(*LinkedInClient)

// WithLinkedInTimeout overrides the request timeout. Non-positive
// values are ignored.
func WithLinkedInTimeout(timeout time.Duration) LinkedInOption {
	return func(c *LinkedInClient) {
		if timeout > 0 {
			c.rest.client.Timeout = timeout
		}
	}
}

// WithLinkedInSimulation forces every operation through the simulated
// client, token or not.
func WithLinkedInSimulation() LinkedInOption {
	return func(c *LinkedInClient) {
		c.simulate = true
	}
}

// WithLinkedInSeedProfiles preloads simulated lookup answers.
func WithLinkedInSeedProfiles(prospects ...*models.Prospect) LinkedInOption {
	return func(c *LinkedInClient) {
		WithSeedProfiles(prospects...)(c.sim)
	}
}

// NewLinkedInClient constructs a client with defaults applied. Without
// an access token the client runs fully simulated.
func NewLinkedInClient(baseURL, accessToken string, opts ...LinkedInOption) *LinkedInClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultLinkedInBaseURL
	}
	headers := map[string]string{
		"X-Restli-Protocol-Version": "2.0.0",
	}
	token := strings.TrimSpace(accessToken)
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	c := &LinkedInClient{
		rest:     newRESTClient(baseURL, defaultLinkedInTimeout, headers),
		sim:      NewSimulatedClient(models.PlatformLinkedIn),
		logger:   logging.Component("linkedin"),
		simulate: token == "",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Platform identifies the network this client talks to.
func (c *LinkedInClient) Platform() models.Platform {
	return models.PlatformLinkedIn
}

// Simulated reports whether lookups run against the simulated client.
func (c *LinkedInClient) Simulated() bool {
	return c.simulate
}

type linkedinProfile struct {
	ID                 string `json:"id"`
	VanityName         string `json:"vanityName"`
	LocalizedFirstName string `json:"localizedFirstName"`
	LocalizedLastName  string `json:"localizedLastName"`
	LocalizedHeadline  string `json:"localizedHeadline"`
}

func (p *linkedinProfile) toProspect(handle string) *models.Prospect {
	name := strings.TrimSpace(p.LocalizedFirstName + " " + p.LocalizedLastName)
	if p.VanityName != "" {
		handle = p.VanityName
	}
	// The open profile endpoints expose no follower counts or posts;
	// those signals come from imported lists.
	return &models.Prospect{
		PlatformID: p.ID,
		Platform:   models.PlatformLinkedIn,
		Name:       name,
		Handle:     handle,
		Bio:        p.LocalizedHeadline,
	}
}

// LookupProfile resolves a vanity name through the REST API, or the
// simulated client when simulation is on.
func (c *LinkedInClient) LookupProfile(ctx context.Context, handle string) (*models.Prospect, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, errors.New("handle is empty")
	}
	if c.simulate {
		return c.sim.LookupProfile(ctx, handle)
	}

	var profile linkedinProfile
	path := "/people/(vanityName:" + handle + ")"
	if err := c.rest.getJSON(ctx, path, nil, &profile); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%s: %w", handle, ErrProfileNotFound)
		}
		return nil, fmt.Errorf("lookup %s: %w", handle, err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%s: %w", handle, ErrProfileNotFound)
	}
	return profile.toProspect(handle), nil
}

// SearchProspects always answers from the simulated client; the people
// search API is partner-gated.
func (c *LinkedInClient) SearchProspects(ctx context.Context, query string, limit int) ([]*models.Prospect, error) {
	c.logger.Debug().Str("query", query).Msg("people search runs simulated")
	return c.sim.SearchProspects(ctx, query, limit)
}

// Follow maps to a connection request; that is LinkedIn's analogue.
func (c *LinkedInClient) Follow(ctx context.Context, prospect *models.Prospect) error {
	return c.SendConnectionRequest(ctx, prospect, "")
}

// Like records a simulated like.
func (c *LinkedInClient) Like(ctx context.Context, postID string) error {
	return c.sim.Like(ctx, postID)
}

// Reply records a simulated comment.
func (c *LinkedInClient) Reply(ctx context.Context, postID, text string) error {
	return c.sim.Reply(ctx, postID, text)
}

// SendDirectMessage records a simulated message.
func (c *LinkedInClient) SendDirectMessage(ctx context.Context, prospect *models.Prospect, text string) error {
	return c.sim.SendDirectMessage(ctx, prospect, text)
}

// SendConnectionRequest records a simulated connection request.
func (c *LinkedInClient) SendConnectionRequest(ctx context.Context, prospect *models.Prospect, note string) error {
	return c.sim.SendConnectionRequest(ctx, prospect, note)
}

// Sim exposes the simulated client so callers can inspect recorded
// operations after a dry run.
func (c *LinkedInClient) Sim() *SimulatedClient {
	return c.sim
}
