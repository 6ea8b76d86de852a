package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/logging"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

const (
	defaultTwitterBaseURL = "https://api.twitter.com/2"
	defaultTwitterTimeout = 15 * time.Second
)

// TwitterClient talks to the Twitter v2 REST API with bearer auth.
// Follow and like act as the authenticated account, whose id is
// resolved once and cached.
type TwitterClient struct {
	rest   *restClient
	logger zerolog.Logger

	mu     sync.Mutex
	selfID string
}

// TwitterOption configures a TwitterClient.
type TwitterOption func(*TwitterClient)

// WithTwitterHTTPClient replaces the HTTP client, mostly for tests.
// A nil client is ignored.
func WithTwitterHTTPClient(hc *http.Client) TwitterOption {
	return func(c *TwitterClient) {
		if hc != nil {
			c.rest.client = hc
		}
	}
}

// WithTwitterRetry overrides the retry bounds.
func WithTwitterRetry(cfg RetryConfig) TwitterOption {
	return func(c *TwitterClient) {
		c.rest.executor = newExecutor(cfg)
	}
}

// WithTwitterTimeout overrides the request timeout. Non-positive
// values are ignored.
func WithTwitterTimeout(timeout time.Duration) TwitterOption {
	return func(c *TwitterClient) {
		if timeout > 0 {
			c.rest.client.Timeout = timeout
		}
	}
}

// NewTwitterClient constructs a client with defaults applied.
func NewTwitterClient(baseURL, bearerToken string, opts ...TwitterOption) *TwitterClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultTwitterBaseURL
	}
	headers := map[string]string{}
	if token := strings.TrimSpace(bearerToken); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	c := &TwitterClient{
		rest:   newRESTClient(baseURL, defaultTwitterTimeout, headers),
		logger: logging.Component("twitter"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Platform identifies the network this client talks to.
func (c *TwitterClient) Platform() models.Platform {
	return models.PlatformTwitter
}

type twitterUser struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	PublicMetrics struct {
		Followers int `json:"followers_count"`
	} `json:"public_metrics"`
}

func (u *twitterUser) toProspect() *models.Prospect {
	return &models.Prospect{
		PlatformID:    u.ID,
		Platform:      models.PlatformTwitter,
		Name:          u.Name,
		Handle:        u.Username,
		FollowerCount: u.PublicMetrics.Followers,
		Bio:           u.Description,
		Location:      u.Location,
	}
}

type twitterTweet struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	AuthorID      string    `json:"author_id"`
	CreatedAt     time.Time `json:"created_at"`
	PublicMetrics struct {
		Likes   int `json:"like_count"`
		Replies int `json:"reply_count"`
	} `json:"public_metrics"`
}

func (t *twitterTweet) toPost() models.Post {
	return models.Post{
		ID:       t.ID,
		Text:     t.Text,
		Likes:    t.PublicMetrics.Likes,
		Comments: t.PublicMetrics.Replies,
		PostedAt: t.CreatedAt,
	}
}

type twitterAPIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// LookupProfile fetches the user and their recent tweets. A failed
// timeline fetch degrades to a profile without posts rather than
// failing the lookup.
func (c *TwitterClient) LookupProfile(ctx context.Context, handle string) (*models.Prospect, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, errors.New("handle is empty")
	}

	params := url.Values{}
	params.Set("user.fields", "description,location,public_metrics")

	var resp struct {
		Data   *twitterUser      `json:"data"`
		Errors []twitterAPIError `json:"errors"`
	}
	if err := c.rest.getJSON(ctx, "/users/by/username/"+url.PathEscape(handle), params, &resp); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%s: %w", handle, ErrProfileNotFound)
		}
		return nil, fmt.Errorf("lookup %s: %w", handle, err)
	}
	if resp.Data == nil || resp.Data.ID == "" {
		// The v2 API reports unknown usernames inside an errors array
		// on a 200 response.
		return nil, fmt.Errorf("%s: %w", handle, ErrProfileNotFound)
	}

	prospect := resp.Data.toProspect()
	posts, err := c.recentTweets(ctx, resp.Data.ID)
	if err != nil {
		c.logger.Warn().Err(err).Str("handle", handle).Msg("timeline fetch failed")
	} else {
		prospect.RecentPosts = posts
		if len(posts) > 0 {
			prospect.LastActivityAt = posts[0].PostedAt
		}
	}
	return prospect, nil
}

func (c *TwitterClient) recentTweets(ctx context.Context, userID string) ([]models.Post, error) {
	params := url.Values{}
	params.Set("max_results", "10")
	params.Set("tweet.fields", "public_metrics,created_at")

	var resp struct {
		Data []twitterTweet `json:"data"`
	}
	if err := c.rest.getJSON(ctx, "/users/"+url.PathEscape(userID)+"/tweets", params, &resp); err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(resp.Data))
	for i := range resp.Data {
		posts = append(posts, resp.Data[i].toPost())
	}
	return posts, nil
}

// SearchProspects runs a recent-tweet search and folds the matched
// tweets into prospects keyed by author.
func (c *TwitterClient) SearchProspects(ctx context.Context, query string, limit int) ([]*models.Prospect, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if limit <= 0 {
		limit = 10
	}

	// The recent-search endpoint accepts 10 to 100 results per page.
	pageSize := limit
	if pageSize < 10 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(pageSize))
	params.Set("expansions", "author_id")
	params.Set("tweet.fields", "public_metrics,created_at")
	params.Set("user.fields", "description,location,public_metrics")

	var resp struct {
		Data     []twitterTweet `json:"data"`
		Includes struct {
			Users []twitterUser `json:"users"`
		} `json:"includes"`
	}
	if err := c.rest.getJSON(ctx, "/tweets/search/recent", params, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	users := make(map[string]*twitterUser, len(resp.Includes.Users))
	for i := range resp.Includes.Users {
		users[resp.Includes.Users[i].ID] = &resp.Includes.Users[i]
	}

	byAuthor := make(map[string]*models.Prospect)
	var prospects []*models.Prospect
	for i := range resp.Data {
		tweet := &resp.Data[i]
		prospect, seen := byAuthor[tweet.AuthorID]
		if !seen {
			user, ok := users[tweet.AuthorID]
			if !ok {
				continue
			}
			if len(prospects) >= limit {
				continue
			}
			prospect = user.toProspect()
			byAuthor[tweet.AuthorID] = prospect
			prospects = append(prospects, prospect)
		}
		prospect.RecentPosts = append(prospect.RecentPosts, tweet.toPost())
		if prospect.LastActivityAt.Before(tweet.CreatedAt) {
			prospect.LastActivityAt = tweet.CreatedAt
		}
	}
	return prospects, nil
}

// Follow follows the prospect as the authenticated account.
func (c *TwitterClient) Follow(ctx context.Context, prospect *models.Prospect) error {
	targetID, err := c.resolveUserID(ctx, prospect)
	if err != nil {
		return err
	}
	selfID, err := c.self(ctx)
	if err != nil {
		return err
	}

	payload := map[string]string{"target_user_id": targetID}
	if err := c.rest.postJSON(ctx, "/users/"+url.PathEscape(selfID)+"/following", payload, nil); err != nil {
		return fmt.Errorf("follow %s: %w", prospect.Handle, err)
	}
	return nil
}

// Like likes the given tweet as the authenticated account.
func (c *TwitterClient) Like(ctx context.Context, postID string) error {
	if postID == "" {
		return errors.New("post id is empty")
	}
	selfID, err := c.self(ctx)
	if err != nil {
		return err
	}

	payload := map[string]string{"tweet_id": postID}
	if err := c.rest.postJSON(ctx, "/users/"+url.PathEscape(selfID)+"/likes", payload, nil); err != nil {
		return fmt.Errorf("like %s: %w", postID, err)
	}
	return nil
}

// Reply posts a reply to the given tweet.
func (c *TwitterClient) Reply(ctx context.Context, postID, text string) error {
	if postID == "" {
		return errors.New("post id is empty")
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("reply text is empty")
	}

	payload := map[string]any{
		"text":  text,
		"reply": map[string]string{"in_reply_to_tweet_id": postID},
	}
	if err := c.rest.postJSON(ctx, "/tweets", payload, nil); err != nil {
		return fmt.Errorf("reply to %s: %w", postID, err)
	}
	return nil
}

// SendDirectMessage opens or continues a DM conversation with the
// prospect.
func (c *TwitterClient) SendDirectMessage(ctx context.Context, prospect *models.Prospect, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("message text is empty")
	}
	targetID, err := c.resolveUserID(ctx, prospect)
	if err != nil {
		return err
	}

	payload := map[string]string{"text": text}
	path := "/dm_conversations/with/" + url.PathEscape(targetID) + "/messages"
	if err := c.rest.postJSON(ctx, path, payload, nil); err != nil {
		return fmt.Errorf("message %s: %w", prospect.Handle, err)
	}
	return nil
}

// SendConnectionRequest is not a Twitter concept.
func (c *TwitterClient) SendConnectionRequest(ctx context.Context, prospect *models.Prospect, note string) error {
	return fmt.Errorf("connection requests: %w", ErrNotSupported)
}

// resolveUserID returns the prospect's platform id, looking the handle
// up when an imported record carries none.
func (c *TwitterClient) resolveUserID(ctx context.Context, prospect *models.Prospect) (string, error) {
	if prospect == nil {
		return "", errors.New("prospect is nil")
	}
	if prospect.PlatformID != "" {
		return prospect.PlatformID, nil
	}
	refreshed, err := c.LookupProfile(ctx, prospect.Handle)
	if err != nil {
		return "", err
	}
	return refreshed.PlatformID, nil
}

// self resolves and caches the authenticated account's id.
func (c *TwitterClient) self(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selfID != "" {
		return c.selfID, nil
	}

	var resp struct {
		Data *twitterUser `json:"data"`
	}
	if err := c.rest.getJSON(ctx, "/users/me", nil, &resp); err != nil {
		return "", fmt.Errorf("resolve own account: %w", err)
	}
	if resp.Data == nil || resp.Data.ID == "" {
		return "", errors.New("resolve own account: empty response")
	}
	c.selfID = resp.Data.ID
	return c.selfID, nil
}
