// Package cli provides TUI launch commands.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/quota"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/tui"
)

func init() {
	rootCmd.AddCommand(uiCmd)
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the outreach dashboard",
	Long:  "Launch the terminal dashboard: quota gauges, outbox state, and the audit feed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	if IsNonInteractive() || !hasTTY() {
		return &PreflightError{
			Message:  "the dashboard requires an interactive terminal",
			Hint:     "Run without --non-interactive and with a TTY, or use CLI subcommands",
			NextStep: "outreach --help",
		}
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	cfg := requireConfig()
	prospectRepo := db.NewProspectRepository(database)
	outboxRepo := db.NewOutboxRepository(database)
	eventRepo := db.NewEventRepository(database)
	usageRepo := db.NewUsageRepository(database)
	limits := quotaLimits(cfg.Quota)

	snapshot := func(ctx context.Context) (*tui.Snapshot, error) {
		tracker := quota.New(quota.WithLimits(limits))
		counts, err := usageRepo.CountsForDay(ctx, tracker.Day())
		if err != nil {
			return nil, err
		}
		tracker.Restore(counts)

		prospects, err := prospectRepo.Count(ctx)
		if err != nil {
			return nil, err
		}
		outbox, err := outboxRepo.CountByStatus(ctx, "")
		if err != nil {
			return nil, err
		}
		events, err := eventRepo.ListRecent(ctx, 50)
		if err != nil {
			return nil, err
		}

		return &tui.Snapshot{
			Day:       tracker.Day(),
			Quota:     tracker.Stats(),
			Prospects: prospects,
			Outbox:    outbox,
			Events:    events,
		}, nil
	}

	return tui.Run(tui.Config{
		Snapshot:     snapshot,
		Theme:        cfg.TUI.Theme,
		PollInterval: cfg.TUI.PollInterval,
	})
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
