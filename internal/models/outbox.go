package models

import (
	"time"
)

// OutboxStatus tracks a queued step through its lifecycle.
type OutboxStatus string

const (
	// OutboxStatusPending means the step is waiting to be claimed.
	OutboxStatusPending OutboxStatus = "pending"
	// OutboxStatusLeased means a runner holds the step under a lease.
	OutboxStatusLeased OutboxStatus = "leased"
	// OutboxStatusSent means the platform call succeeded.
	OutboxStatusSent OutboxStatus = "sent"
	// OutboxStatusFailed means the step exhausted its attempts.
	OutboxStatusFailed OutboxStatus = "failed"
	// OutboxStatusSkipped means the step was dropped before sending,
	// usually because quota ran out mid-campaign.
	OutboxStatusSkipped OutboxStatus = "skipped"
)

// OutboxItem is one planned step persisted for execution. The campaign
// runner claims items under short leases so a crashed run never strands
// a step in limbo; expired leases fall back to pending.
type OutboxItem struct {
	// ID is the unique identifier for the item.
	ID string `json:"id"`

	// CampaignID is the campaign run this step belongs to.
	CampaignID string `json:"campaign_id"`

	// ProspectID identifies the target prospect.
	ProspectID string `json:"prospect_id"`

	// Handle is the prospect handle, denormalized for reporting.
	Handle string `json:"handle"`

	// Platform is the network the step executes on.
	Platform Platform `json:"platform"`

	// Action is the planned action kind.
	Action ActionKind `json:"action"`

	// Priority is the step's rank within its sequence.
	Priority int `json:"priority"`

	// Reason is the justification carried over from planning.
	Reason string `json:"reason,omitempty"`

	// Message is the rendered text for reply and direct-message steps.
	Message string `json:"message,omitempty"`

	// PostID is the target post for like and reply steps.
	PostID string `json:"post_id,omitempty"`

	// Status is the current lifecycle state.
	Status OutboxStatus `json:"status"`

	// Attempts counts how many executions have been tried.
	Attempts int `json:"attempts"`

	// LastError holds the most recent failure message.
	LastError string `json:"last_error,omitempty"`

	// LeaseUntil is when the current lease expires, if leased.
	LeaseUntil *time.Time `json:"lease_until,omitempty"`

	// SentAt is when the step was successfully executed.
	SentAt *time.Time `json:"sent_at,omitempty"`

	// CreatedAt is when the step was enqueued.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the row last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the outbox item is valid.
func (i *OutboxItem) Validate() error {
	validation := &ValidationErrors{}
	if i.ProspectID == "" {
		validation.AddMessage("prospect_id", "prospect_id is required")
	}
	if i.Action == "" {
		validation.AddMessage("action", "action is required")
	}
	if i.Platform == "" {
		validation.AddMessage("platform", "platform is required")
	}
	if i.Priority <= 0 {
		validation.AddMessage("priority", "priority must be positive")
	}
	return validation.Err()
}

// Terminal reports whether the item has reached a final status.
func (i *OutboxItem) Terminal() bool {
	switch i.Status {
	case OutboxStatusSent, OutboxStatusFailed, OutboxStatusSkipped:
		return true
	}
	return false
}
