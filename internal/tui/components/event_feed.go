// Package components provides reusable TUI components.
package components

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/tui/styles"
)

const maxDetailLength = 48

// RenderEventRow renders one audit event as a single feed line.
func RenderEventRow(styleSet styles.Styles, event *models.Event) string {
	ts := styleSet.Muted.Render(event.Timestamp.Local().Format("15:04:05"))
	icon, style := eventDescriptor(styleSet, event.Type)
	label := style.Render(fmt.Sprintf("%-4s", icon))
	kind := styleSet.Text.Render(fmt.Sprintf("%-19s", string(event.Type)))
	detail := styleSet.Muted.Render(truncate(eventDetail(event), maxDetailLength))

	return fmt.Sprintf("%s %s %s %s", ts, label, kind, detail)
}

func eventDescriptor(styleSet styles.Styles, eventType models.EventType) (string, lipgloss.Style) {
	switch eventType {
	case models.EventTypeStepSent:
		return "OK", styleSet.StatusSent
	case models.EventTypeStepFailed, models.EventTypeError:
		return "ERR", styleSet.StatusFailed
	case models.EventTypeStepSkipped, models.EventTypeQuotaExhausted, models.EventTypeWarning:
		return "WARN", styleSet.StatusSkipped
	case models.EventTypeStepQueued:
		return "Q", styleSet.StatusPending
	case models.EventTypeCampaignStarted, models.EventTypeCampaignCompleted:
		return ">", styleSet.Accent
	case models.EventTypeProspectImported, models.EventTypeProspectUpdated:
		return "+", styleSet.Info
	case models.EventTypeProspectQualified, models.EventTypeSequencePlanned:
		return "*", styleSet.Info
	default:
		return "-", styleSet.Muted
	}
}

// eventDetail pulls the fields feed lines care about out of the
// payload. Unknown payloads fall back to the entity reference.
func eventDetail(event *models.Event) string {
	var brief struct {
		Handle   string `json:"handle"`
		Action   string `json:"action"`
		Name     string `json:"name"`
		Error    string `json:"error"`
		Sent     *int   `json:"sent"`
		Planned  *int   `json:"planned"`
		Duration string `json:"duration"`
	}
	if len(event.Payload) > 0 {
		_ = json.Unmarshal(event.Payload, &brief)
	}

	var parts []string
	if brief.Name != "" {
		parts = append(parts, brief.Name)
	}
	if brief.Handle != "" {
		parts = append(parts, "@"+brief.Handle)
	}
	if brief.Action != "" {
		parts = append(parts, brief.Action)
	}
	if brief.Sent != nil && brief.Planned != nil {
		parts = append(parts, fmt.Sprintf("%d/%d sent", *brief.Sent, *brief.Planned))
	}
	if brief.Error != "" {
		parts = append(parts, brief.Error)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if event.EntityID != "" {
		return fmt.Sprintf("%s %s", event.EntityType, event.EntityID)
	}
	return string(event.EntityType)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 3 || len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
