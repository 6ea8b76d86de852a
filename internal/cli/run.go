package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/campaign"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/logging"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/platform"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/prospects"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/quota"
)

var (
	runDryRun       bool
	runMaxProspects int
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "plan and log every step without calling the platform")
	runCmd.Flags().IntVar(&runMaxProspects, "max-prospects", 0, "override the campaign prospect cap")
}

var runCmd = &cobra.Command{
	Use:   "run <campaign>",
	Short: "Execute a campaign end to end",
	Long: `Execute a named campaign: import or discover its prospects, qualify
each one, queue the planned steps, and drain the queue with a pause
between sends. Interrupting the run leaves queued steps in place; the
next run picks them up.

Campaigns are YAML files in <home>/campaigns, plus the builtins.`,
	Example: `  outreach run example --dry-run
  outreach run warm-founders
  outreach run warm-founders --max-prospects 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := requireConfig()

		c, err := campaign.Find(filepath.Join(cfg.Home, "campaigns"), args[0])
		if err != nil {
			if errors.Is(err, campaign.ErrCampaignNotFound) {
				return &PreflightError{
					Message:  fmt.Sprintf("campaign %q not found", args[0]),
					Hint:     fmt.Sprintf("campaign files live in %s", filepath.Join(cfg.Home, "campaigns")),
					NextStep: "outreach campaigns list",
				}
			}
			return err
		}
		if cmd.Flags().Changed("dry-run") {
			c.DryRun = runDryRun
		}
		if runMaxProspects > 0 {
			c.MaxProspects = runMaxProspects
		}

		releaseLock, err := acquireRunLock(cfg.Home)
		if err != nil {
			return err
		}
		defer releaseLock()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		prospectRepo := db.NewProspectRepository(database)
		outboxRepo := db.NewOutboxRepository(database)
		eventRepo := db.NewEventRepository(database)
		usageRepo := db.NewUsageRepository(database)

		registry := buildClients(cfg)
		tracker, err := buildTracker(ctx, cfg, usageRepo)
		if err != nil {
			return err
		}
		renderer, err := buildRenderer(cfg)
		if err != nil {
			return err
		}

		if err := runPreSteps(ctx, c, cfg.Runner.MaxProspectsPerRun, prospectRepo, eventRepo, registry, tracker); err != nil {
			return err
		}

		runner := campaign.NewRunner(
			campaign.Config{
				TickInterval: cfg.Runner.TickInterval,
				StepDelay:    cfg.Runner.StepDelay,
				Jitter:       cfg.Runner.Jitter,
				LeaseFor:     cfg.Runner.LeaseFor,
				MaxAttempts:  cfg.Runner.MaxAttempts,
				MaxProspects: cfg.Runner.MaxProspectsPerRun,
			},
			buildEngine(cfg),
			tracker,
			prospectRepo,
			outboxRepo,
			registry,
			campaign.WithRenderer(renderer),
			campaign.WithUsageLog(usageRepo),
			campaign.WithRunnerEvents(eventRepo),
		)

		notifier := buildNotifier(cfg)
		prospectCap := c.MaxProspects
		if prospectCap <= 0 {
			prospectCap = cfg.Runner.MaxProspectsPerRun
		}
		if len(c.Handles) > 0 && len(c.Handles) < prospectCap {
			prospectCap = len(c.Handles)
		}
		if err := notifier.CampaignStarted(ctx, c.Name, prospectCap); err != nil {
			log := logging.Component("notify")
			log.Warn().Err(err).Msg("failed to announce campaign start")
		}

		// Stream dispatch results as they happen in human mode. The
		// goroutine stops when told to and drains what is already
		// buffered so no result is lost.
		stopProgress := make(chan struct{})
		var wg sync.WaitGroup
		if !IsJSONOutput() && !IsJSONLOutput() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case event := <-runner.DispatchEvents():
						printDispatch(event)
					case <-stopProgress:
						for {
							select {
							case event := <-runner.DispatchEvents():
								printDispatch(event)
							default:
								return
							}
						}
					}
				}
			}()
			if c.DryRun {
				fmt.Fprintf(os.Stdout, "Running %s (dry run)\n", c.Name)
			} else {
				fmt.Fprintf(os.Stdout, "Running %s\n", c.Name)
			}
		}

		summary, runErr := runner.Run(ctx, c)
		close(stopProgress)
		wg.Wait()

		// The run context may already be cancelled; notifications get a
		// short window of their own.
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			if err := notifier.CampaignFailed(notifyCtx, c.Name, runErr); err != nil {
				log := logging.Component("notify")
				log.Warn().Err(err).Msg("failed to send failure notification")
			}
		} else if summary != nil {
			if err := notifier.CampaignCompleted(notifyCtx, *summary); err != nil {
				log := logging.Component("notify")
				log.Warn().Err(err).Msg("failed to send summary notification")
			}
		}

		if summary != nil {
			if IsJSONOutput() || IsJSONLOutput() {
				if err := WriteOutput(os.Stdout, summary); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(os.Stdout)
				pairs := [][2]string{
					{"Campaign", summary.Campaign},
					{"Planned", strconv.Itoa(summary.Planned)},
					{"Sent", strconv.Itoa(summary.Sent)},
					{"Failed", strconv.Itoa(summary.Failed)},
					{"Skipped", strconv.Itoa(summary.Skipped)},
					{"Duration", summary.Duration.Round(time.Millisecond).String()},
				}
				if err := writeKeyValues(os.Stdout, pairs); err != nil {
					return err
				}
			}
		}

		if runErr != nil && errors.Is(runErr, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Run interrupted; queued steps stay pending for the next run.")
			return nil
		}
		return runErr
	},
}

// runPreSteps performs the campaign's optional prospect intake: a list
// file import and a discovery search.
func runPreSteps(ctx context.Context, c *campaign.Campaign, defaultLimit int, prospectRepo *db.ProspectRepository, eventRepo *db.EventRepository, registry *platform.Registry, tracker *quota.Tracker) error {
	if c.ProspectsFile == "" && c.Query == "" {
		return nil
	}

	importer := prospects.NewImporter(
		prospectRepo,
		prospects.WithEvents(eventRepo),
		prospects.WithDefaultPlatform(c.PlatformKind()),
	)
	human := !IsJSONOutput() && !IsJSONLOutput()

	if c.ProspectsFile != "" {
		// Relative list files resolve next to the campaign file.
		path := c.ProspectsFile
		if !filepath.IsAbs(path) && c.Source != "" && c.Source != "builtin" {
			path = filepath.Join(filepath.Dir(c.Source), path)
		}
		records, err := prospects.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		result, err := importer.Import(ctx, records)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		if human {
			fmt.Fprintf(os.Stdout, "Imported %d new prospects from %s (%d updated).\n",
				result.Imported, c.ProspectsFile, result.Updated)
		}
	}

	if c.Query != "" {
		client := registry.Get(c.PlatformKind())
		if client == nil {
			return fmt.Errorf("no client registered for %s", c.PlatformKind())
		}
		if !tracker.Record(quota.BucketUserLookup) {
			log := logging.Component("campaign")
			log.Warn().
				Str("query", c.Query).
				Msg("user-lookup quota exhausted, skipping discovery")
			return nil
		}
		limit := c.MaxProspects
		if limit <= 0 {
			limit = defaultLimit
		}
		result, err := importer.Discover(ctx, client, c.Query, limit)
		if err != nil {
			return fmt.Errorf("discovery search failed: %w", err)
		}
		if human {
			fmt.Fprintf(os.Stdout, "Discovered %d new prospects for %q (%d updated).\n",
				result.Imported, c.Query, result.Updated)
		}
	}
	return nil
}

func printDispatch(event campaign.DispatchEvent) {
	status := formatOutboxStatus(event.Status)
	if event.Error != "" {
		fmt.Fprintf(os.Stdout, "  %s %-14s @%s (%s)\n", status, formatActionKind(event.Action), event.Handle, event.Error)
		return
	}
	fmt.Fprintf(os.Stdout, "  %s %-14s @%s\n", status, formatActionKind(event.Action), event.Handle)
}
