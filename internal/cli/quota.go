package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
)

var quotaDays int

func init() {
	rootCmd.AddCommand(quotaCmd)

	quotaCmd.Flags().IntVar(&quotaDays, "days", 0, "also show a per-day breakdown for the last N days")
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show today's action budget",
	Long: `Show how much of today's per-action budget is spent. The budget
resets at local midnight; spend recorded by earlier invocations today
counts against it.`,
	Example: `  outreach quota
  outreach quota --days 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

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

		stats := tracker.Stats()
		day := tracker.Day()

		if IsJSONOutput() || IsJSONLOutput() {
			type poolStat struct {
				Action    string `json:"action"`
				Limit     int    `json:"limit"`
				Used      int    `json:"used"`
				Remaining int    `json:"remaining"`
			}
			payload := struct {
				Day   string     `json:"day"`
				Pools []poolStat `json:"pools"`
			}{Day: day}
			for _, s := range stats {
				payload.Pools = append(payload.Pools, poolStat{
					Action:    string(s.Bucket),
					Limit:     s.Limit,
					Used:      s.Used,
					Remaining: s.Remaining,
				})
			}
			return WriteOutput(os.Stdout, payload)
		}

		fmt.Fprintf(os.Stdout, "Quota for %s\n\n", day)
		rows := make([][]string, 0, len(stats))
		for _, s := range stats {
			rows = append(rows, []string{
				strings.ReplaceAll(string(s.Bucket), "_", " "),
				strconv.Itoa(s.Used),
				strconv.Itoa(s.Limit),
				formatRemaining(s.Remaining),
			})
		}
		if err := writeTable(os.Stdout, []string{"ACTION", "USED", "LIMIT", "REMAINING"}, rows); err != nil {
			return err
		}

		if quotaDays > 0 {
			return printDailyBreakdown(ctx, usageRepo, quotaDays)
		}
		return nil
	},
}

func formatRemaining(remaining int) string {
	label := strconv.Itoa(remaining)
	if remaining == 0 {
		return colorize(label, colorRed)
	}
	return label
}

// printDailyBreakdown prints per-day action counts for the last N days.
func printDailyBreakdown(ctx context.Context, usageRepo *db.UsageRepository, days int) error {
	until := time.Now()
	since := until.AddDate(0, 0, -days)
	breakdown, err := usageRepo.DailyBreakdown(ctx, since, until, days*8)
	if err != nil {
		return fmt.Errorf("failed to load usage history: %w", err)
	}
	if len(breakdown) == 0 {
		fmt.Fprintf(os.Stdout, "\nNo usage recorded in the last %d days.\n", days)
		return nil
	}

	fmt.Fprintf(os.Stdout, "\nLast %d days\n\n", days)
	rows := make([][]string, 0, len(breakdown))
	for _, d := range breakdown {
		rows = append(rows, []string{
			d.Date,
			strings.ReplaceAll(string(d.Action), "_", " "),
			strconv.Itoa(d.Count),
		})
	}
	return writeTable(os.Stdout, []string{"DAY", "ACTION", "COUNT"}, rows)
}
