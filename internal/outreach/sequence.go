package outreach

import (
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// BuildSequence plans the ordered actions for one prospect against the
// given quota snapshot. A prospect that fails WorthResearching gets no
// actions at all, whatever the other predicates say. Within the gate,
// construction is deterministic and evaluated in a fixed order: cheap,
// low-risk actions first, and a direct message only when at least two
// cheaper steps precede it AND the prospect independently passes the
// strict predicate. That gating is a hard invariant, not an
// optimization.
//
// The returned sequence may be empty. Identical inputs always produce
// identical output; nothing is mutated.
func (e *Engine) BuildSequence(p *models.Prospect, quota models.QuotaSnapshot) models.Sequence {
	var steps models.Sequence

	if !e.WorthResearching(p) {
		return steps
	}

	if quota.UserLookups > 0 {
		steps = append(steps, models.Step{
			Action:   models.ActionResearch,
			Priority: len(steps) + 1,
			Reason:   "relevant topics present, no spam markers",
			Cost:     models.ActionResearch.Cost(),
		})
	}

	if quota.Follows > 0 && quota.Likes > 0 && e.WorthEngaging(p) {
		steps = append(steps, models.Step{
			Action:   models.ActionFollow,
			Priority: len(steps) + 1,
			Reason:   "majority of engagement signals hold",
			Cost:     models.ActionFollow.Cost(),
		})
		if len(p.RecentPosts) > 0 && quota.Likes > 0 {
			steps = append(steps, models.Step{
				Action:   models.ActionLike,
				Priority: len(steps) + 1,
				Reason:   "recent post available to acknowledge",
				Cost:     models.ActionLike.Cost(),
			})
		}
	}

	if quota.DirectMessages > 0 && e.IsHighlyQualified(p) && len(steps) >= 2 {
		steps = append(steps, models.Step{
			Action:   models.ActionDirectMessage,
			Priority: len(steps) + 1,
			Reason:   "strictly qualified with warm-up steps in place",
			Cost:     models.ActionDirectMessage.Cost(),
		})
	}

	return steps
}
