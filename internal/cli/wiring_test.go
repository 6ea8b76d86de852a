package cli

import (
	"testing"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    models.Platform
		wantErr bool
	}{
		{"twitter", "twitter", models.PlatformTwitter, false},
		{"linkedin", "linkedin", models.PlatformLinkedIn, false},
		{"uppercase normalized", "Twitter", models.PlatformTwitter, false},
		{"surrounding spaces trimmed", "  linkedin  ", models.PlatformLinkedIn, false},
		{"empty defaults to twitter", "", models.PlatformTwitter, false},
		{"unknown rejected", "mastodon", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePlatform(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parsePlatform(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePlatform(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parsePlatform(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
