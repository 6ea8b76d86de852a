// Package cli provides prospect list import commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/prospects"
)

var importPlatform string

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importPlatform, "platform", "", "default platform for records that omit one")
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import prospects from a list file",
	Long: `Import prospects from a JSONL, JSON, or YAML list file into the
store. Records that already exist (same platform and handle) are
refreshed in place; invalid records and in-file duplicates are
skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		p, err := parsePlatform(importPlatform)
		if err != nil {
			return err
		}

		records, err := prospects.ReadFile(args[0])
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		importer := prospects.NewImporter(
			db.NewProspectRepository(database),
			prospects.WithEvents(db.NewEventRepository(database)),
			prospects.WithDefaultPlatform(p),
		)

		progress := startProgress(fmt.Sprintf("Importing %d records", len(records)))
		result, err := importer.Import(ctx, records)
		if err != nil {
			progress.Fail(err)
			return err
		}
		progress.Done()

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, map[string]int{
				"imported": result.Imported,
				"updated":  result.Updated,
				"skipped":  result.Skipped,
				"total":    result.Total(),
			})
		}

		fmt.Fprintf(os.Stdout, "Imported %d new prospects (%d updated, %d skipped).\n",
			result.Imported, result.Updated, result.Skipped)
		return nil
	},
}
