package cli

import (
	"testing"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

func TestFormatStatusLabel(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		status string
		want   string
	}{
		{"plain status", "OK", "sent", "OK sent"},
		{"underscores become spaces", "WAIT", "in_flight", "WAIT in flight"},
		{"empty status keeps label", "ERR", "", "ERR"},
		{"whitespace-only status keeps label", "ERR", "   ", "ERR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatStatusLabel(tt.label, tt.status); got != tt.want {
				t.Errorf("formatStatusLabel(%q, %q) = %q, want %q", tt.label, tt.status, got, tt.want)
			}
		})
	}
}

func TestStatusLabelForOutbox(t *testing.T) {
	tests := []struct {
		status models.OutboxStatus
		label  string
	}{
		{models.OutboxStatusSent, "OK"},
		{models.OutboxStatusFailed, "ERR"},
		{models.OutboxStatusLeased, "BUSY"},
		{models.OutboxStatusSkipped, "WARN"},
		{models.OutboxStatusPending, "WAIT"},
		{models.OutboxStatus("bogus"), "WARN"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			label, _ := statusLabelForOutbox(tt.status)
			if label != tt.label {
				t.Errorf("statusLabelForOutbox(%q) = %q, want %q", tt.status, label, tt.label)
			}
		})
	}
}

func TestFormatActionKind(t *testing.T) {
	if got := formatActionKind(models.ActionDirectMessage); got != "direct message" {
		t.Errorf("formatActionKind(direct_message) = %q, want %q", got, "direct message")
	}
	if got := formatActionKind(models.ActionFollow); got != "follow" {
		t.Errorf("formatActionKind(follow) = %q, want %q", got, "follow")
	}
}
