// Package events provides helper functions for writing audit events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Append(ctx context.Context, event *models.Event) error
}

func appendEvent(ctx context.Context, repo Repository, eventType models.EventType, entityType models.EntityType, entityID string, payload any) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if entityID == "" {
		return fmt.Errorf("entity id is required")
	}

	event := &models.Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
		}
		event.Payload = data
	}

	return repo.Append(ctx, event)
}

// LogProspectImported records that a prospect entered the store.
func LogProspectImported(ctx context.Context, repo Repository, prospectID, handle string, platform models.Platform) error {
	payload := map[string]string{
		"handle":   handle,
		"platform": string(platform),
	}
	return appendEvent(ctx, repo, models.EventTypeProspectImported, models.EntityTypeProspect, prospectID, payload)
}

// LogProspectUpdated records a refresh of an existing prospect.
func LogProspectUpdated(ctx context.Context, repo Repository, prospectID, handle string, platform models.Platform) error {
	payload := map[string]string{
		"handle":   handle,
		"platform": string(platform),
	}
	return appendEvent(ctx, repo, models.EventTypeProspectUpdated, models.EntityTypeProspect, prospectID, payload)
}

// LogProspectQualified records which qualification flags held at
// evaluation time, the raw material for later analytics.
func LogProspectQualified(ctx context.Context, repo Repository, prospectID string, payload models.QualifiedPayload) error {
	return appendEvent(ctx, repo, models.EventTypeProspectQualified, models.EntityTypeProspect, prospectID, payload)
}

// LogSequencePlanned records the sequence computed for a prospect.
func LogSequencePlanned(ctx context.Context, repo Repository, prospectID string, payload models.SequencePlannedPayload) error {
	return appendEvent(ctx, repo, models.EventTypeSequencePlanned, models.EntityTypeProspect, prospectID, payload)
}

// LogStepQueued records a planned step landing in the outbox.
func LogStepQueued(ctx context.Context, repo Repository, item *models.OutboxItem) error {
	if item == nil {
		return fmt.Errorf("outbox item is required")
	}
	return appendEvent(ctx, repo, models.EventTypeStepQueued, models.EntityTypeStep, item.ID, models.StepQueuedPayload{
		OutboxID: item.ID,
		Handle:   item.Handle,
		Action:   item.Action,
		Priority: item.Priority,
	})
}

// LogStepSent records a successfully executed step.
func LogStepSent(ctx context.Context, repo Repository, item *models.OutboxItem, took time.Duration, dryRun bool) error {
	if item == nil {
		return fmt.Errorf("outbox item is required")
	}
	return appendEvent(ctx, repo, models.EventTypeStepSent, models.EntityTypeStep, item.ID, models.StepSentPayload{
		OutboxID: item.ID,
		Handle:   item.Handle,
		Action:   item.Action,
		Platform: item.Platform,
		Message:  item.Message,
		Duration: took.Round(time.Millisecond).String(),
		DryRun:   dryRun,
	})
}

// LogStepFailed records a step execution failure.
func LogStepFailed(ctx context.Context, repo Repository, item *models.OutboxItem, stepErr error) error {
	if item == nil {
		return fmt.Errorf("outbox item is required")
	}
	message := ""
	if stepErr != nil {
		message = stepErr.Error()
	}
	return appendEvent(ctx, repo, models.EventTypeStepFailed, models.EntityTypeStep, item.ID, models.StepFailedPayload{
		OutboxID: item.ID,
		Handle:   item.Handle,
		Action:   item.Action,
		Error:    message,
		Attempts: item.Attempts,
	})
}

// LogStepSkipped records a step dropped before sending.
func LogStepSkipped(ctx context.Context, repo Repository, item *models.OutboxItem, reason string) error {
	if item == nil {
		return fmt.Errorf("outbox item is required")
	}
	return appendEvent(ctx, repo, models.EventTypeStepSkipped, models.EntityTypeStep, item.ID, models.StepSkippedPayload{
		Handle: item.Handle,
		Action: item.Action,
		Reason: reason,
	})
}

// LogQuotaExhausted records an action pool hitting its daily cap.
func LogQuotaExhausted(ctx context.Context, repo Repository, action models.ActionKind, limit, used int) error {
	return appendEvent(ctx, repo, models.EventTypeQuotaExhausted, models.EntityTypeQuota, string(action), models.QuotaExhaustedPayload{
		Action: action,
		Limit:  limit,
		Used:   used,
	})
}

// LogCampaignStarted records a campaign run starting.
func LogCampaignStarted(ctx context.Context, repo Repository, campaignID string, payload models.CampaignStartedPayload) error {
	return appendEvent(ctx, repo, models.EventTypeCampaignStarted, models.EntityTypeCampaign, campaignID, payload)
}

// LogCampaignCompleted records a campaign run finishing.
func LogCampaignCompleted(ctx context.Context, repo Repository, campaignID string, payload models.CampaignCompletedPayload) error {
	return appendEvent(ctx, repo, models.EventTypeCampaignCompleted, models.EntityTypeCampaign, campaignID, payload)
}

// LogError records a system-level error worth keeping.
func LogError(ctx context.Context, repo Repository, errContext string, sysErr error) error {
	message := ""
	if sysErr != nil {
		message = sysErr.Error()
	}
	return appendEvent(ctx, repo, models.EventTypeError, models.EntityTypeSystem, "system", models.ErrorPayload{
		Error:   message,
		Context: errContext,
	})
}
