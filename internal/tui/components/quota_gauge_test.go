package components

import (
	"strings"
	"testing"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/tui/styles"
)

func TestRenderQuotaGauge(t *testing.T) {
	s := styles.DefaultStyles()

	tests := []struct {
		name     string
		gauge    QuotaGauge
		width    int
		contains []string
	}{
		{
			name:     "label replaces underscores",
			gauge:    QuotaGauge{Action: "direct_message", Used: 0, Limit: 10, Remaining: 10},
			width:    10,
			contains: []string{"direct message", "0/10"},
		},
		{
			name:     "full pool",
			gauge:    QuotaGauge{Action: "follow", Used: 8, Limit: 8, Remaining: 0},
			width:    8,
			contains: []string{"########", "8/8"},
		},
		{
			name:     "untouched pool renders no fill",
			gauge:    QuotaGauge{Action: "like", Used: 0, Limit: 24, Remaining: 24},
			width:    12,
			contains: []string{"------------"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderQuotaGauge(s, tt.gauge, tt.width)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("RenderQuotaGauge() = %q, want to contain %q", result, want)
				}
			}
		})
	}
}

func TestRenderQuotaGaugeFill(t *testing.T) {
	s := styles.DefaultStyles()

	tests := []struct {
		name   string
		gauge  QuotaGauge
		width  int
		filled int
	}{
		{"half spent", QuotaGauge{Action: "reply", Used: 5, Limit: 10, Remaining: 5}, 10, 5},
		{"rounds down", QuotaGauge{Action: "reply", Used: 1, Limit: 3, Remaining: 2}, 10, 3},
		{"minimum one cell when used", QuotaGauge{Action: "reply", Used: 1, Limit: 100, Remaining: 99}, 10, 1},
		{"caps at bar width", QuotaGauge{Action: "reply", Used: 20, Limit: 10, Remaining: 0}, 10, 10},
		{"zero limit", QuotaGauge{Action: "reply", Used: 0, Limit: 0, Remaining: 0}, 10, 0},
		{"narrow width floor", QuotaGauge{Action: "reply", Used: 4, Limit: 4, Remaining: 0}, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderQuotaGauge(s, tt.gauge, tt.width)
			if got := strings.Count(result, "#"); got != tt.filled {
				t.Errorf("RenderQuotaGauge() filled %d cells, want %d", got, tt.filled)
			}
		})
	}
}
