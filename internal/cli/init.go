// Package cli provides the init command for first-time setup.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/config"
)

var initForce bool

// homeDirFunc returns the outreach home; a variable so tests can
// redirect it.
var homeDirFunc = func() string {
	return requireConfig().Home
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up the outreach home directory",
	Long: `Create the outreach home directory with a default config file, an
example campaign, and a credentials stub. Existing files are left
alone unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		results := []initResult{
			createHomeDirs(),
			createConfigFile(),
			createExampleCampaign(),
			createCredentialsStub(),
		}

		if IsJSONOutput() || IsJSONLOutput() {
			type step struct {
				Name    string `json:"name"`
				Status  string `json:"status"`
				Message string `json:"message"`
			}
			payload := make([]step, 0, len(results))
			for _, r := range results {
				payload = append(payload, step{Name: r.name, Status: r.status, Message: r.message})
			}
			if err := WriteOutput(os.Stdout, payload); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				fmt.Fprintf(os.Stdout, "%s %s: %s\n", formatInitStatus(r.status), r.name, r.message)
			}
		}

		for _, r := range results {
			if r.status == "failed" {
				return fmt.Errorf("init completed with failures")
			}
		}

		if !IsJSONOutput() && !IsJSONLOutput() {
			fmt.Fprintln(os.Stdout)
			fmt.Fprintln(os.Stdout, "Next steps:")
			fmt.Fprintln(os.Stdout, "  outreach credentials add --platform twitter   # or stay simulated")
			fmt.Fprintln(os.Stdout, "  outreach import prospects.jsonl")
			fmt.Fprintln(os.Stdout, "  outreach run example --dry-run")
		}
		return nil
	},
}

type initResult struct {
	name    string
	status  string // done, skipped, failed
	message string
}

func formatInitStatus(status string) string {
	switch status {
	case "done":
		return colorize("[done]", colorGreen)
	case "skipped":
		return colorize("[skip]", colorYellow)
	default:
		return colorize("[fail]", colorRed)
	}
}

func createHomeDirs() initResult {
	home := homeDirFunc()
	dirs := []string{
		home,
		filepath.Join(home, "templates"),
		filepath.Join(home, "campaigns"),
		filepath.Join(home, "credentials"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return initResult{name: "Home directory", status: "failed", message: err.Error()}
		}
	}
	return initResult{name: "Home directory", status: "done", message: home}
}

func createConfigFile() initResult {
	path := filepath.Join(homeDirFunc(), config.ConfigFileName+".yaml")
	return writeInitFile("Config file", path, configTemplate)
}

func createExampleCampaign() initResult {
	path := filepath.Join(homeDirFunc(), "campaigns", "example.yaml")
	return writeInitFile("Example campaign", path, exampleCampaign)
}

func createCredentialsStub() initResult {
	path := filepath.Join(homeDirFunc(), "credentials", "README.md")
	return writeInitFile("Credentials stub", path, credentialsStub)
}

func writeInitFile(name, path, content string) initResult {
	if _, err := os.Stat(path); err == nil && !initForce {
		return initResult{name: name, status: "skipped", message: fmt.Sprintf("%s already exists", path)}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return initResult{name: name, status: "failed", message: err.Error()}
	}
	return initResult{name: name, status: "done", message: path}
}

const configTemplate = `# Outreach Configuration File
#
# Every value here has a conservative default; delete anything you do
# not want to override. Environment variables prefixed with OUTREACH_
# win over this file (OUTREACH_QUOTA_FOLLOWS=10, for example), and
# credentials also read their conventional names: TWITTER_BEARER_TOKEN,
# LINKEDIN_ACCESS_TOKEN, DISCORD_BOT_TOKEN, DISCORD_CHANNEL_ID.

log_level: info

# Daily action caps. These sit well below the platform limits on
# purpose; raise them slowly, if at all.
quota:
  user_lookups: 90
  tweet_lookups: 280
  follows: 35
  likes: 45
  replies: 15
  direct_messages: 8

# Qualification thresholds.
qualify:
  min_followers: 100
  max_followers: 50000
  min_engagement_rate: 0.005
  high_engagement_rate: 0.01
  recency_window_days: 7
  tight_recency_window_days: 3

# Message rendering.
templates:
  solution: "an automation toolkit"
  value: "save hours every week"
  # strict: true   # fail on unmatched placeholders

# Campaign pacing.
runner:
  step_delay: 45s
  jitter: 30s
  max_attempts: 3
  max_prospects_per_run: 25

# Platform clients. Without a token a platform runs fully simulated.
twitter:
  # bearer_token: ""
  # simulate: true
linkedin:
  simulate: true

# Operator notifications (off unless enabled).
discord:
  enabled: false
  # token: ""
  # channel_id: ""

tui:
  theme: default
  poll_interval: 2s
`

const exampleCampaign = `# An example campaign. Run it with:
#   outreach run example --dry-run
name: example
description: First campaign, dry run by default
platform: twitter

# Restrict the run to specific stored prospects, or delete this list
# to cover every stored prospect on the platform.
handles: []

# Import a list file before planning (JSONL, JSON, or YAML).
# prospects_file: prospects.jsonl

# Or discover prospects with a platform search before planning.
# query: "b2b founder automation"

max_prospects: 5
step_delay: 45s
jitter: 30s

templates:
  reply: reply-insight
  direct_message: initial-dm
  connection_note: warm-dm

# Keep dry_run until the plan output looks right.
dry_run: true
`

const credentialsStub = `# Credentials

Platform tokens live here as one JSON profile per platform, written by:

    outreach credentials add --platform twitter --name main

Files are created with 0600 permissions. Nothing in this directory is
required: without a token, a platform runs fully simulated. Tokens can
also come from the environment (TWITTER_BEARER_TOKEN,
LINKEDIN_ACCESS_TOKEN) or from the config file.
`
