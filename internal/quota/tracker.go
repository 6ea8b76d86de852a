// Package quota tracks daily per-action API spend against conservative
// caps. Counters reset at local-midnight calendar boundaries, not on a
// sliding 24-hour window.
package quota

import (
	"sync"
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// Bucket identifies one daily quota pool. Buckets are finer-grained
// than action kinds: timeline fetches draw on the tweet-lookup pool
// without a corresponding outreach action.
type Bucket string

const (
	BucketUserLookup    Bucket = "user_lookup"
	BucketTweetLookup   Bucket = "tweet_lookup"
	BucketFollow        Bucket = "follow"
	BucketLike          Bucket = "like"
	BucketReply         Bucket = "reply"
	BucketDirectMessage Bucket = "direct_message"
)

// AllBuckets returns every quota pool in display order.
func AllBuckets() []Bucket {
	return []Bucket{
		BucketUserLookup,
		BucketTweetLookup,
		BucketFollow,
		BucketLike,
		BucketReply,
		BucketDirectMessage,
	}
}

// BucketFor maps an outreach action to the pool it spends from.
// Research costs a user lookup.
func BucketFor(kind models.ActionKind) Bucket {
	switch kind {
	case models.ActionResearch:
		return BucketUserLookup
	case models.ActionFollow:
		return BucketFollow
	case models.ActionLike:
		return BucketLike
	case models.ActionReply:
		return BucketReply
	case models.ActionDirectMessage:
		return BucketDirectMessage
	default:
		return Bucket(kind)
	}
}

// Limits defines the per-day cap for each pool.
type Limits struct {
	UserLookups    int `json:"user_lookups"`
	TweetLookups   int `json:"tweet_lookups"`
	Follows        int `json:"follows"`
	Likes          int `json:"likes"`
	Replies        int `json:"replies"`
	DirectMessages int `json:"direct_messages"`
}

// DefaultLimits provides conservative caps, set well below platform
// enforcement so a bug cannot burn an account.
func DefaultLimits() Limits {
	return Limits{
		UserLookups:    90,
		TweetLookups:   280,
		Follows:        35,
		Likes:          45,
		Replies:        15,
		DirectMessages: 8,
	}
}

// For returns the cap for a pool.
func (l Limits) For(b Bucket) int {
	switch b {
	case BucketUserLookup:
		return l.UserLookups
	case BucketTweetLookup:
		return l.TweetLookups
	case BucketFollow:
		return l.Follows
	case BucketLike:
		return l.Likes
	case BucketReply:
		return l.Replies
	case BucketDirectMessage:
		return l.DirectMessages
	default:
		return 0
	}
}

// Tracker owns the live daily counters. It is the single injected
// quota dependency: sequence building reads a Snapshot, execution
// debits through Record. All methods are safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	limits Limits
	used   map[Bucket]int
	denied map[Bucket]int64
	day    string
	now    func() time.Time
}

// Option configures the Tracker.
type Option func(*Tracker)

// WithLimits overrides the default caps wholesale.
func WithLimits(limits Limits) Option {
	return func(t *Tracker) {
		t.limits = limits
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New creates a tracker with default limits, counters starting from
// zero for the current calendar day.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		limits: DefaultLimits(),
		used:   make(map[Bucket]int),
		denied: make(map[Bucket]int64),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.day = dayKey(t.now())
	return t
}

// dayKey returns the calendar date in the clock's own location.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// rollover resets counters when the calendar day has changed.
// Callers must hold mu.
func (t *Tracker) rollover() {
	day := dayKey(t.now())
	if day != t.day {
		t.day = day
		t.used = make(map[Bucket]int)
		t.denied = make(map[Bucket]int64)
	}
}

// remaining returns the pool's remaining count. Callers must hold mu.
func (t *Tracker) remaining(b Bucket) int {
	left := t.limits.For(b) - t.used[b]
	if left < 0 {
		return 0
	}
	return left
}

// Allow reports whether at least one call remains in the pool. It
// does not consume.
func (t *Tracker) Allow(b Bucket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.remaining(b) > 0
}

// Record atomically debits one call from the pool. It returns false,
// without debiting, when the pool is exhausted.
func (t *Tracker) Record(b Bucket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()

	if t.remaining(b) <= 0 {
		t.denied[b]++
		return false
	}
	t.used[b]++
	return true
}

// RecordAction debits the pool the action spends from.
func (t *Tracker) RecordAction(kind models.ActionKind) bool {
	return t.Record(BucketFor(kind))
}

// Remaining returns the pool's remaining count for today.
func (t *Tracker) Remaining(b Bucket) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.remaining(b)
}

// Snapshot returns the remaining counts as a read-only value for
// sequence building.
func (t *Tracker) Snapshot() models.QuotaSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()

	return models.QuotaSnapshot{
		UserLookups:    t.remaining(BucketUserLookup),
		TweetLookups:   t.remaining(BucketTweetLookup),
		Follows:        t.remaining(BucketFollow),
		Likes:          t.remaining(BucketLike),
		Replies:        t.remaining(BucketReply),
		DirectMessages: t.remaining(BucketDirectMessage),
	}
}

// Restore seeds today's consumed counts from persisted usage, so a
// restart within the day does not reset spend. Counts are keyed by
// action kind because that is what the usage log stores; pools with
// no action kind (tweet lookups) stay process-local.
func (t *Tracker) Restore(counts map[models.ActionKind]int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()

	for kind, count := range counts {
		if count <= 0 {
			continue
		}
		b := BucketFor(kind)
		if t.used[b] < count {
			t.used[b] = count
		}
	}
}

// Limits returns the configured caps.
func (t *Tracker) Limits() Limits {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limits
}

// Day returns the local calendar date the counters belong to.
func (t *Tracker) Day() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.day
}

// Stat describes one pool's spend for the current day.
type Stat struct {
	Bucket    Bucket
	Limit     int
	Used      int
	Remaining int
	Denied    int64
}

// Stats returns per-pool spend in AllBuckets order.
func (t *Tracker) Stats() []Stat {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()

	stats := make([]Stat, 0, 6)
	for _, b := range AllBuckets() {
		stats = append(stats, Stat{
			Bucket:    b,
			Limit:     t.limits.For(b),
			Used:      t.used[b],
			Remaining: t.remaining(b),
			Denied:    t.denied[b],
		})
	}
	return stats
}
