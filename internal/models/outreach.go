package models

// ActionKind identifies one kind of outreach action.
type ActionKind string

const (
	// ActionResearch is a profile lookup that costs a user-lookup call.
	ActionResearch ActionKind = "research"
	// ActionFollow follows the prospect.
	ActionFollow ActionKind = "follow"
	// ActionLike likes one of the prospect's recent posts.
	ActionLike ActionKind = "like"
	// ActionReply replies to one of the prospect's recent posts.
	ActionReply ActionKind = "reply"
	// ActionDirectMessage sends a direct message or connection note.
	ActionDirectMessage ActionKind = "direct_message"
)

// AllActionKinds returns every action kind in escalation order.
func AllActionKinds() []ActionKind {
	return []ActionKind{
		ActionResearch,
		ActionFollow,
		ActionLike,
		ActionReply,
		ActionDirectMessage,
	}
}

// CostTier is the relative API cost and risk of an action.
type CostTier string

const (
	CostLow    CostTier = "low"
	CostMedium CostTier = "medium"
	CostHigh   CostTier = "high"
)

// Cost returns the fixed cost tier for an action kind.
func (a ActionKind) Cost() CostTier {
	switch a {
	case ActionReply:
		return CostMedium
	case ActionDirectMessage:
		return CostHigh
	default:
		return CostLow
	}
}

// Step is one planned outreach action for a prospect.
type Step struct {
	// Action is what to do.
	Action ActionKind `json:"action"`

	// Priority is the 1-based rank within the sequence. Priorities are
	// strictly increasing in sequence order.
	Priority int `json:"priority"`

	// Reason is a short human-readable justification.
	Reason string `json:"reason"`

	// Cost is the relative API cost tier of the action.
	Cost CostTier `json:"cost"`
}

// Sequence is the ordered list of steps planned for one prospect.
// It may be empty.
type Sequence []Step

// Contains reports whether the sequence includes the given action.
func (s Sequence) Contains(kind ActionKind) bool {
	for _, step := range s {
		if step.Action == kind {
			return true
		}
	}
	return false
}

// Actions returns the action kinds in sequence order.
func (s Sequence) Actions() []ActionKind {
	kinds := make([]ActionKind, 0, len(s))
	for _, step := range s {
		kinds = append(kinds, step.Action)
	}
	return kinds
}

// Validate checks the structural invariants every sequence must hold:
// priorities strictly increasing from 1, and a direct message only
// after at least two preceding steps.
func (s Sequence) Validate() error {
	validation := &ValidationErrors{}
	for i, step := range s {
		if step.Priority != i+1 {
			validation.AddMessage("priority", "priorities must increase strictly from 1")
			break
		}
	}
	for i, step := range s {
		if step.Action == ActionDirectMessage && i < 2 {
			validation.AddMessage("steps", "direct_message requires at least two preceding steps")
			break
		}
	}
	return validation.Err()
}

// QuotaSnapshot holds the remaining call counts for the current day,
// one per action family. Snapshots are read-only inputs to sequence
// building; the tracker that produced them owns the live counters.
type QuotaSnapshot struct {
	UserLookups    int `json:"user_lookups"`
	TweetLookups   int `json:"tweet_lookups"`
	Follows        int `json:"follows"`
	Likes          int `json:"likes"`
	Replies        int `json:"replies"`
	DirectMessages int `json:"direct_messages"`
}

// Remaining returns the remaining count for an action kind. Research
// draws on the user-lookup pool.
func (q QuotaSnapshot) Remaining(kind ActionKind) int {
	switch kind {
	case ActionResearch:
		return q.UserLookups
	case ActionFollow:
		return q.Follows
	case ActionLike:
		return q.Likes
	case ActionReply:
		return q.Replies
	case ActionDirectMessage:
		return q.DirectMessages
	default:
		return 0
	}
}

// Allows reports whether at least one call remains for the action.
func (q QuotaSnapshot) Allows(kind ActionKind) bool {
	return q.Remaining(kind) > 0
}

// Exhausted reports whether every per-action counter has reached zero.
func (q QuotaSnapshot) Exhausted() bool {
	return q.UserLookups <= 0 &&
		q.TweetLookups <= 0 &&
		q.Follows <= 0 &&
		q.Likes <= 0 &&
		q.Replies <= 0 &&
		q.DirectMessages <= 0
}
