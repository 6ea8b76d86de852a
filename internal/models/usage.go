package models

import (
	"time"
)

// ActionUsage represents a single consumed API action, appended each
// time the quota tracker records a send. Rows are never updated.
type ActionUsage struct {
	// ID is the unique identifier for the record.
	ID string `json:"id"`

	// Action is the action kind that consumed quota.
	Action ActionKind `json:"action"`

	// Platform is the network the action ran against.
	Platform Platform `json:"platform"`

	// CampaignID links the usage to a campaign run (optional).
	CampaignID string `json:"campaign_id,omitempty"`

	// ProspectID links the usage to a prospect (optional).
	ProspectID string `json:"prospect_id,omitempty"`

	// RecordedAt is when the action was consumed.
	RecordedAt time.Time `json:"recorded_at"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the usage record is valid.
func (r *ActionUsage) Validate() error {
	validation := &ValidationErrors{}
	if r.Action == "" {
		validation.AddMessage("action", "action is required")
	}
	if r.Platform == "" {
		validation.AddMessage("platform", "platform is required")
	}
	return validation.Err()
}

// DailyActionUsage aggregates consumed actions for one calendar day.
type DailyActionUsage struct {
	// Date is the local calendar day (YYYY-MM-DD).
	Date string `json:"date"`

	// Action is the action kind.
	Action ActionKind `json:"action"`

	// Count is how many actions of this kind were consumed that day.
	Count int `json:"count"`
}

// UsageQuery defines filters for querying usage records.
type UsageQuery struct {
	// Action filters by action kind.
	Action *ActionKind

	// Platform filters by platform.
	Platform *Platform

	// CampaignID filters by campaign.
	CampaignID *string

	// Since filters to records after this time (inclusive).
	Since *time.Time

	// Until filters to records before this time (exclusive).
	Until *time.Time

	// Limit is the maximum records to return.
	Limit int
}
