// Package cli provides export commands for outreach data.
package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

var (
	exportEventsSince string
	exportEventsType  string
	exportEventsLimit int
	exportEventsCSV   bool
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportStatusCmd)
	exportCmd.AddCommand(exportEventsCmd)

	exportEventsCmd.Flags().StringVar(&exportEventsSince, "since", "", "start of the window (RFC3339, YYYY-MM-DD, or a duration like 24h)")
	exportEventsCmd.Flags().StringVar(&exportEventsType, "type", "", "filter by event type (step.sent, campaign.completed, ...)")
	exportEventsCmd.Flags().IntVar(&exportEventsLimit, "limit", 0, "max events to export (0 = all)")
	exportEventsCmd.Flags().BoolVar(&exportEventsCSV, "csv", false, "write CSV instead of JSON lines")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export outreach data",
	Long:  "Export outreach state for automation or reporting.",
}

var exportStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Export full status",
	Long:  "Export full status as JSON: prospects, outbox, quota, recent events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		prospectRepo := db.NewProspectRepository(database)
		outboxRepo := db.NewOutboxRepository(database)
		eventRepo := db.NewEventRepository(database)
		usageRepo := db.NewUsageRepository(database)

		prospects, err := prospectRepo.List(ctx, db.ProspectQuery{Limit: 1000})
		if err != nil {
			return fmt.Errorf("failed to list prospects: %w", err)
		}

		outbox, err := outboxRepo.List(ctx, db.OutboxQuery{Limit: 1000})
		if err != nil {
			return fmt.Errorf("failed to list outbox items: %w", err)
		}

		statusCounts, err := outboxRepo.CountByStatus(ctx, "")
		if err != nil {
			return fmt.Errorf("failed to count outbox items: %w", err)
		}

		recent, err := eventRepo.ListRecent(ctx, 100)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}

		tracker, err := buildTracker(ctx, requireConfig(), usageRepo)
		if err != nil {
			return err
		}

		status := ExportStatus{
			Prospects: prospects,
			Outbox:    outbox,
			Quota:     tracker.Snapshot(),
			Events:    recent,
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, status)
		}

		writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintf(writer, "Prospects:\t%d\n", len(prospects))
		fmt.Fprintf(writer, "Outbox items:\t%d\n", len(outbox))
		for _, s := range []models.OutboxStatus{
			models.OutboxStatusPending,
			models.OutboxStatusLeased,
			models.OutboxStatusSent,
			models.OutboxStatusFailed,
			models.OutboxStatusSkipped,
		} {
			if statusCounts[s] > 0 {
				fmt.Fprintf(writer, "  %s:\t%d\n", s, statusCounts[s])
			}
		}
		fmt.Fprintf(writer, "Recent events:\t%d\n", len(recent))
		fmt.Fprintf(writer, "Quota day:\t%s\n", tracker.Day())
		if err := writer.Flush(); err != nil {
			return err
		}

		fmt.Println("Use --json or --jsonl for full export output.")
		return nil
	},
}

var exportEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Export the audit log",
	Long:  "Export audit events as JSON lines (or CSV), newest first, paging through the full log.",
	Example: `  outreach export events --since 24h
  outreach export events --type step.sent --csv > sent.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		query := db.EventQuery{}
		if exportEventsSince != "" {
			since, err := parseSince(exportEventsSince)
			if err != nil {
				return err
			}
			query.Since = &since
		}
		if exportEventsType != "" {
			eventType := models.EventType(exportEventsType)
			query.Type = &eventType
		}

		eventRepo := db.NewEventRepository(database)

		var csvWriter *csv.Writer
		var encoder *json.Encoder
		if exportEventsCSV {
			csvWriter = csv.NewWriter(os.Stdout)
			if err := csvWriter.Write([]string{"id", "timestamp", "type", "entity_type", "entity_id", "payload"}); err != nil {
				return err
			}
		} else {
			encoder = json.NewEncoder(os.Stdout)
		}

		exported := 0
		for {
			query.Limit = 500
			if exportEventsLimit > 0 && exportEventsLimit-exported < query.Limit {
				query.Limit = exportEventsLimit - exported
			}
			if query.Limit <= 0 {
				break
			}

			page, err := eventRepo.Query(ctx, query)
			if err != nil {
				return fmt.Errorf("failed to query events: %w", err)
			}
			for _, event := range page.Events {
				if csvWriter != nil {
					if err := writeEventCSV(csvWriter, event); err != nil {
						return err
					}
				} else {
					if err := encoder.Encode(event); err != nil {
						return err
					}
				}
			}
			exported += len(page.Events)
			if page.NextCursor == "" {
				break
			}
			query.Cursor = page.NextCursor
		}

		if csvWriter != nil {
			csvWriter.Flush()
			if err := csvWriter.Error(); err != nil {
				return err
			}
		}
		fmt.Fprintf(os.Stderr, "Exported %d events.\n", exported)
		return nil
	},
}

// ExportStatus is the payload returned by `outreach export status`.
type ExportStatus struct {
	Prospects []*models.Prospect   `json:"prospects"`
	Outbox    []*models.OutboxItem `json:"outbox"`
	Quota     models.QuotaSnapshot `json:"quota"`
	Events    []*models.Event      `json:"events"`
}

func writeEventCSV(w *csv.Writer, event *models.Event) error {
	return w.Write([]string{
		event.ID,
		event.Timestamp.UTC().Format(time.RFC3339),
		string(event.Type),
		string(event.EntityType),
		event.EntityID,
		string(event.Payload),
	})
}

// parseSince accepts a duration back from now, an RFC3339 timestamp,
// or a plain date.
func parseSince(value string) (time.Time, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return time.Now().Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since %q (want RFC3339, YYYY-MM-DD, or a duration like %q)", value, "24h")
}
