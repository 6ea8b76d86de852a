// Package cli provides prospect discovery commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/prospects"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/quota"
)

var (
	discoverPlatform string
	discoverLimit    int
)

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&discoverPlatform, "platform", "", "platform to search (twitter, linkedin)")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 10, "max prospects to pull in")
}

var discoverCmd = &cobra.Command{
	Use:   "discover <query>",
	Short: "Search a platform and import matching prospects",
	Long: `Run a free-text people search on a platform and upsert the results
into the prospect store. The search debits one user lookup from
today's quota. Without credentials the search answers from the
simulated client.`,
	Example: `  outreach discover "b2b founder automation"
  outreach discover "indie saas" --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		query := strings.Join(args, " ")

		p, err := parsePlatform(discoverPlatform)
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		cfg := requireConfig()
		usageRepo := db.NewUsageRepository(database)
		tracker, err := buildTracker(ctx, cfg, usageRepo)
		if err != nil {
			return err
		}
		if !tracker.Record(quota.BucketUserLookup) {
			return fmt.Errorf("daily user-lookup quota exhausted (%d used)", tracker.Limits().UserLookups)
		}

		registry := buildClients(cfg)
		client := registry.Get(p)
		if client == nil {
			return fmt.Errorf("no client registered for %s", p)
		}

		importer := prospects.NewImporter(
			db.NewProspectRepository(database),
			prospects.WithEvents(db.NewEventRepository(database)),
			prospects.WithDefaultPlatform(p),
		)

		progress := startProgress(fmt.Sprintf("Searching %s for %q", p, query))
		result, err := importer.Discover(ctx, client, query, discoverLimit)
		if err != nil {
			progress.Fail(err)
			return err
		}
		progress.Done()

		// The lookup happened regardless of what it returned.
		if err := usageRepo.Record(ctx, &models.ActionUsage{
			Action:   models.ActionResearch,
			Platform: p,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record usage: %v\n", err)
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, map[string]any{
				"query":    query,
				"platform": p,
				"imported": result.Imported,
				"updated":  result.Updated,
				"skipped":  result.Skipped,
			})
		}

		fmt.Fprintf(os.Stdout, "Discovered %d new prospects (%d updated, %d skipped).\n",
			result.Imported, result.Updated, result.Skipped)
		fmt.Fprintln(os.Stdout, "Inspect them with: outreach prospects list")
		return nil
	},
}
