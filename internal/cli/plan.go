// Package cli provides sequence planning commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/outreach"
)

var (
	planFile     string
	planPlatform string
	planHandles  []string
	planLimit    int
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planFile, "file", "f", "", "read prospects from a list file instead of the store")
	planCmd.Flags().StringVar(&planPlatform, "platform", "", "platform (twitter, linkedin)")
	planCmd.Flags().StringSliceVar(&planHandles, "handle", nil, "restrict to these stored handles")
	planCmd.Flags().IntVar(&planLimit, "limit", 50, "max prospects read from the store")
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the sequences a run would plan today",
	Long: `Build the outreach sequence each prospect would get against today's
remaining quota. Nothing is queued, sent, or debited; this is the
read-only view of what a run would do right now.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		p, err := parsePlatform(planPlatform)
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		cfg := requireConfig()
		tracker, err := buildTracker(ctx, cfg, db.NewUsageRepository(database))
		if err != nil {
			return err
		}

		var list []*models.Prospect
		if planFile != "" {
			list, err = prospectsFromFile(planFile, p)
		} else {
			list, err = prospectsFromStore(ctx, db.NewProspectRepository(database), p, planHandles, planLimit)
		}
		if err != nil {
			return err
		}
		if len(list) == 0 {
			if IsJSONOutput() || IsJSONLOutput() {
				return WriteOutput(os.Stdout, []outreach.Evaluation{})
			}
			fmt.Fprintln(os.Stdout, "No prospects found.")
			return nil
		}

		engine := buildEngine(cfg)
		snapshot := tracker.Snapshot()
		evaluations := make([]outreach.Evaluation, 0, len(list))
		for _, prospect := range list {
			evaluations = append(evaluations, engine.Evaluate(prospect, &snapshot))
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, evaluations)
		}

		planned := 0
		for _, ev := range evaluations {
			fmt.Fprintf(os.Stdout, "@%s\n", ev.Handle)
			if len(ev.Sequence) == 0 {
				fmt.Fprintln(os.Stdout, "  no actions planned")
				continue
			}
			planned++
			for _, step := range ev.Sequence {
				fmt.Fprintf(os.Stdout, "  %d. %-14s %s\n", step.Priority, formatActionKind(step.Action), step.Reason)
			}
		}

		fmt.Fprintf(os.Stdout, "\n%d of %d prospects have actions planned (quota day %s)\n",
			planned, len(evaluations), tracker.Day())
		return nil
	},
}
