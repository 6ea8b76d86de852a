// Package prospects imports prospect lists and discovery results into
// the store.
package prospects

import (
	"fmt"
	"strings"
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// Record is one prospect row in an import file. The shape follows what
// list exports carry; activity can arrive as an absolute timestamp or
// as a relative day count, with the timestamp winning when both are
// present.
type Record struct {
	ID                  string       `json:"id,omitempty" yaml:"id,omitempty"`
	PlatformID          string       `json:"platform_id,omitempty" yaml:"platform_id,omitempty"`
	Platform            string       `json:"platform,omitempty" yaml:"platform,omitempty"`
	Name                string       `json:"name,omitempty" yaml:"name,omitempty"`
	Handle              string       `json:"handle" yaml:"handle"`
	FollowerCount       int          `json:"follower_count,omitempty" yaml:"follower_count,omitempty"`
	Bio                 string       `json:"bio,omitempty" yaml:"bio,omitempty"`
	Industry            string       `json:"industry,omitempty" yaml:"industry,omitempty"`
	Location            string       `json:"location,omitempty" yaml:"location,omitempty"`
	Keywords            []string     `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	RecentPosts         []PostRecord `json:"recent_posts,omitempty" yaml:"recent_posts,omitempty"`
	LastActivityAt      *time.Time   `json:"last_activity_at,omitempty" yaml:"last_activity_at,omitempty"`
	LastActivityDaysAgo *int         `json:"last_activity_days_ago,omitempty" yaml:"last_activity_days_ago,omitempty"`
	HasEngagedWithUs    bool         `json:"has_engaged_with_us,omitempty" yaml:"has_engaged_with_us,omitempty"`
	MutualConnections   []string     `json:"mutual_connections,omitempty" yaml:"mutual_connections,omitempty"`
}

// PostRecord is one recent post inside a Record.
type PostRecord struct {
	ID       string     `json:"id,omitempty" yaml:"id,omitempty"`
	Text     string     `json:"text,omitempty" yaml:"text,omitempty"`
	Likes    int        `json:"likes" yaml:"likes"`
	Comments int        `json:"comments" yaml:"comments"`
	PostedAt *time.Time `json:"posted_at,omitempty" yaml:"posted_at,omitempty"`
}

// ToProspect converts the record into a model, normalizing the handle
// and resolving relative activity against now.
func (r Record) ToProspect(now time.Time, defaultPlatform models.Platform) (*models.Prospect, error) {
	handle := strings.TrimPrefix(strings.TrimSpace(r.Handle), "@")
	if handle == "" {
		return nil, fmt.Errorf("record has no handle")
	}

	platform := defaultPlatform
	if r.Platform != "" {
		platform = models.Platform(strings.ToLower(strings.TrimSpace(r.Platform)))
	}
	if !models.ValidPlatform(platform) {
		return nil, fmt.Errorf("unknown platform %q for %s", r.Platform, handle)
	}

	prospect := &models.Prospect{
		ID:                r.ID,
		PlatformID:        r.PlatformID,
		Platform:          platform,
		Name:              strings.TrimSpace(r.Name),
		Handle:            handle,
		FollowerCount:     r.FollowerCount,
		Bio:               r.Bio,
		Industry:          r.Industry,
		Location:          r.Location,
		Keywords:          r.Keywords,
		HasEngagedWithUs:  r.HasEngagedWithUs,
		MutualConnections: r.MutualConnections,
	}

	for _, post := range r.RecentPosts {
		converted := models.Post{
			ID:       post.ID,
			Text:     post.Text,
			Likes:    post.Likes,
			Comments: post.Comments,
		}
		if post.PostedAt != nil {
			converted.PostedAt = *post.PostedAt
		}
		prospect.RecentPosts = append(prospect.RecentPosts, converted)
	}

	switch {
	case r.LastActivityAt != nil:
		prospect.LastActivityAt = *r.LastActivityAt
	case r.LastActivityDaysAgo != nil && *r.LastActivityDaysAgo >= 0:
		prospect.LastActivityAt = now.AddDate(0, 0, -*r.LastActivityDaysAgo)
	}

	if err := prospect.Validate(); err != nil {
		return nil, fmt.Errorf("record for %s: %w", handle, err)
	}
	return prospect, nil
}
