package campaign

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

func TestCampaignValidate(t *testing.T) {
	tests := []struct {
		name     string
		campaign Campaign
		wantErr  bool
	}{
		{
			name:     "minimal valid",
			campaign: Campaign{Name: "founders"},
		},
		{
			name: "full valid",
			campaign: Campaign{
				Name:         "founders",
				Platform:     "linkedin",
				Handles:      []string{"sarah_tech", "@mike_builds"},
				MaxProspects: 10,
				StepDelay:    "45s",
				Jitter:       "30s",
			},
		},
		{
			name:     "unknown platform",
			campaign: Campaign{Name: "founders", Platform: "myspace"},
			wantErr:  true,
		},
		{
			name:     "blank handle",
			campaign: Campaign{Name: "founders", Handles: []string{"sarah_tech", "  "}},
			wantErr:  true,
		},
		{
			name:     "negative max prospects",
			campaign: Campaign{Name: "founders", MaxProspects: -1},
			wantErr:  true,
		},
		{
			name:     "malformed step delay",
			campaign: Campaign{Name: "founders", StepDelay: "45 seconds"},
			wantErr:  true,
		},
		{
			name:     "negative jitter",
			campaign: Campaign{Name: "founders", Jitter: "-10s"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.campaign.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCampaignValidateMissingName(t *testing.T) {
	c := Campaign{Platform: "twitter"}
	if err := c.Validate(); !errors.Is(err, ErrCampaignNameRequired) {
		t.Fatalf("expected ErrCampaignNameRequired, got %v", err)
	}
}

func TestValidationErrorIncludesIndex(t *testing.T) {
	c := Campaign{Name: "founders", Handles: []string{"ok", ""}}
	err := c.Validate()

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "handles" || verr.Index != 1 {
		t.Errorf("unexpected error target: field=%q index=%d", verr.Field, verr.Index)
	}
	if !strings.Contains(err.Error(), "handles[1]") {
		t.Errorf("error should name the offending entry: %v", err)
	}
}

func TestPlatformKind(t *testing.T) {
	tests := []struct {
		platform string
		want     models.Platform
	}{
		{"", models.PlatformTwitter},
		{"twitter", models.PlatformTwitter},
		{" LinkedIn ", models.PlatformLinkedIn},
	}

	for _, tt := range tests {
		c := Campaign{Name: "c", Platform: tt.platform}
		if got := c.PlatformKind(); got != tt.want {
			t.Errorf("PlatformKind(%q) = %q, want %q", tt.platform, got, tt.want)
		}
	}
}

func TestDurationAccessors(t *testing.T) {
	c := Campaign{Name: "c", StepDelay: "90s", Jitter: "1m"}
	if got := c.StepDelayDuration(); got != 90*time.Second {
		t.Errorf("StepDelayDuration = %v, want 90s", got)
	}
	if got := c.JitterDuration(); got != time.Minute {
		t.Errorf("JitterDuration = %v, want 1m", got)
	}

	empty := Campaign{Name: "c"}
	if got := empty.StepDelayDuration(); got != 0 {
		t.Errorf("unset StepDelayDuration = %v, want 0", got)
	}
}

func TestTemplateSetDefaults(t *testing.T) {
	var zero TemplateSet
	if got := zero.ReplyTemplate(); got != "reply-insight" {
		t.Errorf("default reply template = %q", got)
	}
	if got := zero.DirectMessageTemplate(); got != "initial-dm" {
		t.Errorf("default direct message template = %q", got)
	}
	if got := zero.ConnectionNoteTemplate(); got != "warm-dm" {
		t.Errorf("default connection note template = %q", got)
	}

	set := TemplateSet{Reply: "custom-reply", DirectMessage: "custom-dm", ConnectionNote: "custom-note"}
	if got := set.ReplyTemplate(); got != "custom-reply" {
		t.Errorf("configured reply template = %q", got)
	}
	if got := set.DirectMessageTemplate(); got != "custom-dm" {
		t.Errorf("configured direct message template = %q", got)
	}
	if got := set.ConnectionNoteTemplate(); got != "custom-note" {
		t.Errorf("configured connection note template = %q", got)
	}
}

func TestLoadCampaign(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "founders.yaml")
	content := `name: founders
description: Reach out to technical founders
platform: twitter
max_prospects: 5
step_delay: 10s
dry_run: true
templates:
  direct_message: warm-dm
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCampaign(path)
	if err != nil {
		t.Fatalf("LoadCampaign failed: %v", err)
	}
	if c.Name != "founders" {
		t.Errorf("Name = %q", c.Name)
	}
	if c.MaxProspects != 5 {
		t.Errorf("MaxProspects = %d", c.MaxProspects)
	}
	if !c.DryRun {
		t.Error("expected DryRun to be set")
	}
	if got := c.Templates.DirectMessageTemplate(); got != "warm-dm" {
		t.Errorf("direct message template = %q", got)
	}
	if c.Source != path {
		t.Errorf("Source = %q, want %q", c.Source, path)
	}
}

func TestLoadCampaignRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "platform: twitter\n"},
		{"bad yaml", "name: [unclosed\n"},
		{"bad platform", "name: c\nplatform: myspace\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadCampaign(path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoadCampaignsFromDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"zeta.yaml":  "name: zeta\n",
		"alpha.yml":  "name: alpha\n",
		"notes.txt":  "not a campaign",
		"other.json": "{}",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	campaigns, err := LoadCampaignsFromDir(dir)
	if err != nil {
		t.Fatalf("LoadCampaignsFromDir failed: %v", err)
	}
	if len(campaigns) != 2 {
		t.Fatalf("expected 2 campaigns, got %d", len(campaigns))
	}
	if campaigns[0].Name != "alpha" || campaigns[1].Name != "zeta" {
		t.Errorf("campaigns not sorted by name: %q, %q", campaigns[0].Name, campaigns[1].Name)
	}
}

func TestLoadCampaignsFromMissingDir(t *testing.T) {
	campaigns, err := LoadCampaignsFromDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(campaigns) != 0 {
		t.Fatalf("expected empty list, got %d", len(campaigns))
	}
}

func TestLoadBuiltinCampaigns(t *testing.T) {
	campaigns, err := LoadBuiltinCampaigns()
	if err != nil {
		t.Fatalf("LoadBuiltinCampaigns failed: %v", err)
	}
	if len(campaigns) == 0 {
		t.Fatal("expected at least one builtin campaign")
	}

	var founder *Campaign
	for _, c := range campaigns {
		if c.Source != "builtin" {
			t.Errorf("builtin campaign %q has Source %q", c.Name, c.Source)
		}
		if err := c.Validate(); err != nil {
			t.Errorf("builtin campaign %q is invalid: %v", c.Name, err)
		}
		if c.Name == "founder-outreach" {
			founder = c
		}
	}
	if founder == nil {
		t.Fatal("expected builtin founder-outreach campaign")
	}
	if !founder.DryRun {
		t.Error("founder-outreach should default to dry run")
	}
}

func TestLoadAllUserOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	override := "name: founder-outreach\ndescription: customized\n"
	if err := os.WriteFile(filepath.Join(dir, "founder-outreach.yaml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	campaigns, err := LoadAll(dir)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	count := 0
	for _, c := range campaigns {
		if c.Name == "founder-outreach" {
			count++
			if c.Description != "customized" {
				t.Errorf("expected user campaign to win, got description %q", c.Description)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one founder-outreach, got %d", count)
	}
}

func TestFind(t *testing.T) {
	c, err := Find(t.TempDir(), "founder-outreach")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if c.Source != "builtin" {
		t.Errorf("expected builtin source, got %q", c.Source)
	}

	if _, err := Find(t.TempDir(), "does-not-exist"); !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("expected ErrCampaignNotFound, got %v", err)
	}
}
