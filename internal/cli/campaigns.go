package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/campaign"
)

func init() {
	rootCmd.AddCommand(campaignsCmd)
	campaignsCmd.AddCommand(campaignsListCmd)
	campaignsCmd.AddCommand(campaignsShowCmd)
}

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "List and inspect campaign definitions",
	Long:  "Campaigns are YAML files in <home>/campaigns. Builtins fill in until you write your own; a user campaign with the same name wins.",
}

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available campaigns",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := requireConfig()

		campaigns, err := campaign.LoadAll(filepath.Join(cfg.Home, "campaigns"))
		if err != nil {
			return fmt.Errorf("failed to load campaigns: %w", err)
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, campaigns)
		}

		if len(campaigns) == 0 {
			fmt.Fprintln(os.Stdout, "No campaigns found. Create one with: outreach init")
			return nil
		}

		rows := make([][]string, 0, len(campaigns))
		for _, c := range campaigns {
			rows = append(rows, []string{
				c.Name,
				string(c.PlatformKind()),
				campaignTargets(c),
				formatYesNo(c.DryRun),
				campaignSource(c),
			})
		}
		return writeTable(os.Stdout, []string{"NAME", "PLATFORM", "TARGETS", "DRY RUN", "SOURCE"}, rows)
	},
}

var campaignsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one campaign in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := requireConfig()

		c, err := campaign.Find(filepath.Join(cfg.Home, "campaigns"), args[0])
		if err != nil {
			if errors.Is(err, campaign.ErrCampaignNotFound) {
				return fmt.Errorf("campaign %q not found", args[0])
			}
			return err
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, c)
		}

		pairs := [][2]string{
			{"Name", c.Name},
			{"Description", orDash(c.Description)},
			{"Platform", string(c.PlatformKind())},
			{"Targets", campaignTargets(c)},
			{"Max prospects", strconv.Itoa(c.MaxProspects)},
			{"Step delay", orDash(c.StepDelay)},
			{"Jitter", orDash(c.Jitter)},
			{"Reply template", c.Templates.ReplyTemplate()},
			{"DM template", c.Templates.DirectMessageTemplate()},
			{"Note template", c.Templates.ConnectionNoteTemplate()},
			{"Dry run", formatYesNo(c.DryRun)},
			{"Source", campaignSource(c)},
		}
		return writeKeyValues(os.Stdout, pairs)
	},
}

// campaignTargets summarizes where a campaign's prospects come from.
func campaignTargets(c *campaign.Campaign) string {
	switch {
	case len(c.Handles) > 0:
		return fmt.Sprintf("%d handles", len(c.Handles))
	case c.ProspectsFile != "":
		return "file " + c.ProspectsFile
	case c.Query != "":
		return fmt.Sprintf("query %q", c.Query)
	default:
		return "stored prospects"
	}
}

func campaignSource(c *campaign.Campaign) string {
	if c.Source == "" || c.Source == "builtin" {
		return "builtin"
	}
	return filepath.Base(c.Source)
}
