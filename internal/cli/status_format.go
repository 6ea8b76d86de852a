// Package cli provides status formatting helpers.
package cli

import (
	"fmt"
	"strings"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

func formatOutboxStatus(status models.OutboxStatus) string {
	label, color := statusLabelForOutbox(status)
	return colorize(formatStatusLabel(label, string(status)), color)
}

func formatActionKind(kind models.ActionKind) string {
	return strings.ReplaceAll(string(kind), "_", " ")
}

// formatVerdict renders a predicate outcome as PASS/FAIL.
func formatVerdict(passed bool) string {
	if passed {
		return colorize("PASS", colorGreen)
	}
	return colorize("FAIL", colorRed)
}

// formatCheck renders one checklist criterion marker.
func formatCheck(met bool) string {
	if met {
		return colorize("[x]", colorGreen)
	}
	return "[ ]"
}

func statusLabelForOutbox(status models.OutboxStatus) (string, string) {
	switch status {
	case models.OutboxStatusSent:
		return "OK", colorGreen
	case models.OutboxStatusFailed:
		return "ERR", colorRed
	case models.OutboxStatusLeased:
		return "BUSY", colorCyan
	case models.OutboxStatusSkipped:
		return "WARN", colorMagenta
	case models.OutboxStatusPending:
		return "WAIT", colorYellow
	default:
		return "WARN", colorYellow
	}
}

func formatStatusLabel(label, status string) string {
	normalized := strings.TrimSpace(status)
	if normalized != "" {
		normalized = strings.ReplaceAll(normalized, "_", " ")
	}
	if normalized == "" {
		return label
	}
	return fmt.Sprintf("%s %s", label, normalized)
}
