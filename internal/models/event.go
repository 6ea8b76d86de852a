package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes events in the audit log.
type EventType string

const (
	// Prospect events
	EventTypeProspectImported  EventType = "prospect.imported"
	EventTypeProspectUpdated   EventType = "prospect.updated"
	EventTypeProspectQualified EventType = "prospect.qualified"

	// Sequence events
	EventTypeSequencePlanned EventType = "sequence.planned"

	// Step events
	EventTypeStepQueued  EventType = "step.queued"
	EventTypeStepSent    EventType = "step.sent"
	EventTypeStepFailed  EventType = "step.failed"
	EventTypeStepSkipped EventType = "step.skipped"

	// Quota events
	EventTypeQuotaExhausted EventType = "quota.exhausted"

	// Campaign events
	EventTypeCampaignStarted   EventType = "campaign.started"
	EventTypeCampaignCompleted EventType = "campaign.completed"

	// System events
	EventTypeError   EventType = "error"
	EventTypeWarning EventType = "warning"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeProspect EntityType = "prospect"
	EntityTypeCampaign EntityType = "campaign"
	EntityTypeStep     EntityType = "step"
	EntityTypeQuota    EntityType = "quota"
	EntityTypeSystem   EntityType = "system"
)

// Event represents an append-only audit log entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// QualifiedPayload is the payload for prospect.qualified events. It
// records which predicates held at evaluation time so later analytics
// can replay qualification decisions.
type QualifiedPayload struct {
	Handle            string  `json:"handle"`
	WorthResearching  bool    `json:"worth_researching"`
	WorthEngaging     bool    `json:"worth_engaging"`
	HighlyQualified   bool    `json:"highly_qualified"`
	EngagingCriteria  int     `json:"engaging_criteria"`
	QualifiedCriteria int     `json:"qualified_criteria"`
	EngagementRate    float64 `json:"engagement_rate"`
}

// SequencePlannedPayload is the payload for sequence.planned events.
type SequencePlannedPayload struct {
	Handle   string       `json:"handle"`
	Actions  []ActionKind `json:"actions"`
	Steps    int          `json:"steps"`
	Campaign string       `json:"campaign,omitempty"`
	DryRun   bool         `json:"dry_run,omitempty"`
}

// StepQueuedPayload is the payload for step.queued events.
type StepQueuedPayload struct {
	OutboxID string     `json:"outbox_id"`
	Handle   string     `json:"handle"`
	Action   ActionKind `json:"action"`
	Priority int        `json:"priority"`
}

// StepSentPayload is the payload for step.sent events.
type StepSentPayload struct {
	OutboxID string     `json:"outbox_id"`
	Handle   string     `json:"handle"`
	Action   ActionKind `json:"action"`
	Platform Platform   `json:"platform"`
	Message  string     `json:"message,omitempty"`
	Duration string     `json:"duration,omitempty"`
	DryRun   bool       `json:"dry_run,omitempty"`
}

// StepFailedPayload is the payload for step.failed events.
type StepFailedPayload struct {
	OutboxID string     `json:"outbox_id"`
	Handle   string     `json:"handle"`
	Action   ActionKind `json:"action"`
	Error    string     `json:"error"`
	Attempts int        `json:"attempts"`
}

// StepSkippedPayload is the payload for step.skipped events.
type StepSkippedPayload struct {
	Handle string     `json:"handle"`
	Action ActionKind `json:"action"`
	Reason string     `json:"reason"`
}

// QuotaExhaustedPayload is the payload for quota.exhausted events.
type QuotaExhaustedPayload struct {
	Action ActionKind `json:"action"`
	Limit  int        `json:"limit"`
	Used   int        `json:"used"`
}

// CampaignStartedPayload is the payload for campaign.started events.
type CampaignStartedPayload struct {
	Name      string   `json:"name"`
	Platform  Platform `json:"platform"`
	Prospects int      `json:"prospects"`
	DryRun    bool     `json:"dry_run"`
}

// CampaignCompletedPayload is the payload for campaign.completed events.
type CampaignCompletedPayload struct {
	Name     string `json:"name"`
	Planned  int    `json:"planned"`
	Sent     int    `json:"sent"`
	Failed   int    `json:"failed"`
	Skipped  int    `json:"skipped"`
	Duration string `json:"duration"`
}

// ErrorPayload is the payload for error events.
type ErrorPayload struct {
	Error   string `json:"error"`
	Context string `json:"context,omitempty"`
}
