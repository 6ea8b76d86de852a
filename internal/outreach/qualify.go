package outreach

import (
	"strings"
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// Criterion is one named boolean check inside a checklist.
type Criterion struct {
	Name string `json:"name"`
	Met  bool   `json:"met"`
}

// Checklist is the outcome of a voting predicate: a list of independent
// criteria and how many of them must hold.
type Checklist struct {
	Criteria []Criterion `json:"criteria"`
	Required int         `json:"required"`
}

// Met counts the criteria that held.
func (c Checklist) Met() int {
	n := 0
	for _, crit := range c.Criteria {
		if crit.Met {
			n++
		}
	}
	return n
}

// Passed reports whether enough criteria held.
func (c Checklist) Passed() bool {
	return c.Met() >= c.Required
}

func (c *Checklist) add(name string, met bool) {
	c.Criteria = append(c.Criteria, Criterion{Name: name, Met: met})
}

// WorthResearching is the entry predicate: every condition must hold.
// A prospect that fails here gets no actions at all.
func (e *Engine) WorthResearching(p *models.Prospect) bool {
	if p == nil || strings.TrimSpace(p.Handle) == "" {
		return false
	}
	if e.hasSpamMarker(p) {
		return false
	}
	return e.matchesAnyTopic(p.Keywords, e.cfg.RelevantTopics)
}

// EngagementChecklist evaluates the six engagement criteria. Absent
// fields fail their criterion; they never raise an error.
func (e *Engine) EngagementChecklist(p *models.Prospect) Checklist {
	cl := Checklist{Required: engagingRequired}
	if p == nil {
		p = &models.Prospect{}
	}

	cl.add("has_recent_posts", len(p.RecentPosts) > 0)
	cl.add("engaged_posts", hasEngagedPost(p.RecentPosts))
	cl.add("has_keywords", len(p.Keywords) > 0)
	cl.add("recent_activity", e.activeWithin(p, e.cfg.RecencyWindow))
	cl.add("follower_band", p.FollowerCount >= e.cfg.MinFollowers && p.FollowerCount <= e.cfg.MaxFollowers)
	cl.add("engagement_rate", p.EngagementRate() >= e.cfg.MinEngagementRate)
	return cl
}

// WorthEngaging holds when a simple majority of cheap, independent
// signals agree. Tolerates missing data without over-fitting to any
// single signal.
func (e *Engine) WorthEngaging(p *models.Prospect) bool {
	return e.EngagementChecklist(p).Passed()
}

// QualificationChecklist evaluates the five strict criteria used to
// gate direct messages.
func (e *Engine) QualificationChecklist(p *models.Prospect) Checklist {
	cl := Checklist{Required: qualifiedRequired}
	if p == nil {
		p = &models.Prospect{}
	}

	cl.add("engaged_with_us", p.HasEngagedWithUs)
	cl.add("mutual_connections", len(p.MutualConnections) > 0)
	cl.add("high_engagement_rate", p.EngagementRate() >= e.cfg.HighEngagementRate)
	cl.add("very_recent_activity", e.activeWithin(p, e.cfg.TightRecencyWindow))
	cl.add("perfect_fit_topic", e.matchesAnyTopic(p.Keywords, e.cfg.PerfectFitTopics))
	return cl
}

// IsHighlyQualified gates the direct-message step. Its criteria set is
// deliberately different from WorthEngaging; neither predicate is
// derived from the other.
func (e *Engine) IsHighlyQualified(p *models.Prospect) bool {
	return e.QualificationChecklist(p).Passed()
}

// hasSpamMarker scans the prospect's text fields and keywords for any
// exclude-list marker, case-insensitively.
func (e *Engine) hasSpamMarker(p *models.Prospect) bool {
	fields := []string{p.Handle, p.Name, p.Bio}
	fields = append(fields, p.Keywords...)
	for _, field := range fields {
		lower := strings.ToLower(field)
		for _, marker := range e.cfg.ExcludeMarkers {
			if marker == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(marker)) {
				return true
			}
		}
	}
	return false
}

// matchesAnyTopic reports whether any keyword matches any topic as a
// case-insensitive substring, in either direction, so "AI Automation"
// matches the topic "automation" and "saas" matches "saas founder".
func (e *Engine) matchesAnyTopic(keywords, topics []string) bool {
	for _, kw := range keywords {
		lower := strings.ToLower(strings.TrimSpace(kw))
		if lower == "" {
			continue
		}
		for _, topic := range topics {
			t := strings.ToLower(topic)
			if t == "" {
				continue
			}
			if strings.Contains(lower, t) || strings.Contains(t, lower) {
				return true
			}
		}
	}
	return false
}

// activeWithin reports whether the prospect's last activity falls
// inside the window. A zero timestamp fails the check.
func (e *Engine) activeWithin(p *models.Prospect, window time.Duration) bool {
	if p.LastActivityAt.IsZero() {
		return false
	}
	return e.now().Sub(p.LastActivityAt) <= window
}

// hasEngagedPost reports whether any recent post clears the small
// engagement floor: more than 3 likes or at least one comment.
func hasEngagedPost(posts []models.Post) bool {
	for _, post := range posts {
		if post.Likes > 3 || post.Comments > 0 {
			return true
		}
	}
	return false
}
