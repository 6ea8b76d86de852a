package models

import (
	"strings"
	"time"
)

// Platform identifies the social network a prospect lives on.
type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformLinkedIn Platform = "linkedin"
)

// ValidPlatform reports whether p is a known platform.
func ValidPlatform(p Platform) bool {
	switch p {
	case PlatformTwitter, PlatformLinkedIn:
		return true
	}
	return false
}

// AllPlatforms returns every known platform.
func AllPlatforms() []Platform {
	return []Platform{PlatformTwitter, PlatformLinkedIn}
}

// Post is a single recent post or tweet attributed to a prospect.
type Post struct {
	// ID is the platform-specific post identifier.
	ID string `json:"id,omitempty"`

	// Text is the post body.
	Text string `json:"text,omitempty"`

	// Likes is the like count observed at collection time.
	Likes int `json:"likes"`

	// Comments is the comment/reply count observed at collection time.
	Comments int `json:"comments"`

	// PostedAt is when the post was published, if known.
	PostedAt time.Time `json:"posted_at,omitempty"`
}

// Prospect is a candidate outreach target. It is treated as immutable
// during a single evaluation; missing fields are legal and simply fail
// whichever criteria read them.
type Prospect struct {
	// ID is the store identifier.
	ID string `json:"id"`

	// PlatformID is the network's identifier for the account, when
	// known. Send operations resolve it from the handle when absent.
	PlatformID string `json:"platform_id,omitempty"`

	// Platform is the network the prospect was found on.
	Platform Platform `json:"platform"`

	// Name is the display name.
	Name string `json:"name,omitempty"`

	// Handle is the username without any @ prefix.
	Handle string `json:"handle"`

	// FollowerCount is the follower count at collection time.
	FollowerCount int `json:"follower_count"`

	// Bio is the profile description text.
	Bio string `json:"bio,omitempty"`

	// Industry is a free-text industry label, if known.
	Industry string `json:"industry,omitempty"`

	// Location is a free-text location, if known.
	Location string `json:"location,omitempty"`

	// Keywords are free-text tags associated with the prospect.
	Keywords []string `json:"keywords,omitempty"`

	// RecentPosts is an ordered list of recent posts, newest first.
	RecentPosts []Post `json:"recent_posts,omitempty"`

	// LastActivityAt is the most recent observed activity.
	LastActivityAt time.Time `json:"last_activity_at,omitempty"`

	// HasEngagedWithUs records whether the prospect has previously
	// interacted with the operator's content.
	HasEngagedWithUs bool `json:"has_engaged_with_us"`

	// MutualConnections lists shared connection identifiers.
	MutualConnections []string `json:"mutual_connections,omitempty"`

	// CreatedAt is when the prospect was first stored.
	CreatedAt time.Time `json:"created_at,omitempty"`

	// UpdatedAt is when the stored record was last refreshed.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Validate checks the fields the store requires. Signal fields may be
// absent; only identity is mandatory.
func (p *Prospect) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(p.Handle) == "" {
		validation.AddMessage("handle", "handle is required")
	}
	if p.Platform == "" {
		validation.AddMessage("platform", "platform is required")
	} else if !ValidPlatform(p.Platform) {
		validation.AddMessage("platform", "unknown platform")
	}
	if p.FollowerCount < 0 {
		validation.AddMessage("follower_count", "follower_count must be non-negative")
	}
	return validation.Err()
}

// EngagementRate is the sum of recent-post like counts divided by the
// follower count. Returns 0 when the follower count is zero so callers
// never divide by zero; the corresponding criteria simply fail.
//
// The denominator is the current follower count while the numerator
// comes from posts collected earlier. The two time bases differ; the
// computation is kept as collected.
func (p *Prospect) EngagementRate() float64 {
	if p.FollowerCount <= 0 {
		return 0
	}
	total := 0
	for _, post := range p.RecentPosts {
		total += post.Likes
	}
	return float64(total) / float64(p.FollowerCount)
}

// NewestPost returns the first recent post, or nil when there are none.
func (p *Prospect) NewestPost() *Post {
	if len(p.RecentPosts) == 0 {
		return nil
	}
	return &p.RecentPosts[0]
}
