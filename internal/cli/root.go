// Package cli provides the outreach command tree.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/config"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/logging"
)

var (
	cfgFile        string
	logLevel       string
	jsonOutput     bool
	jsonlOutput    bool
	noColor        bool
	noProgress     bool
	nonInteractive bool

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Conservative lead outreach automation",
	Long: `Outreach qualifies prospects, plans small engagement sequences, and
executes them against Twitter and LinkedIn under strict daily quotas.

Every action is planned through an outbox, gated by per-day caps, and
recorded in an audit log. Without credentials the tool runs fully
simulated, so campaigns can be rehearsed end to end before a single
real request is sent.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeApp()
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var preflight *PreflightError
		if errors.As(err, &preflight) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", preflight.Message)
			if preflight.Hint != "" {
				fmt.Fprintf(os.Stderr, "Hint: %s\n", preflight.Hint)
			}
			if preflight.NextStep != "" {
				fmt.Fprintf(os.Stderr, "Next: %s\n", preflight.NextStep)
			}
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default <home>/outreach.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.BoolVar(&jsonOutput, "json", false, "output JSON")
	flags.BoolVar(&jsonlOutput, "jsonl", false, "output JSON Lines")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&noProgress, "no-progress", false, "disable progress output")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "skip prompts and use defaults")
}

// initializeApp loads configuration and configures logging. It runs
// before every command.
func initializeApp() error {
	cfg, err := config.Load(cfgFile, logging.Component("config"))
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	pretty := !IsJSONOutput() && !IsJSONLOutput() && hasTTY()
	logging.Setup(cfg.LogLevel, pretty)

	appConfig = cfg
	return nil
}

// GetConfig returns the loaded configuration, or nil before
// initialization.
func GetConfig() *config.Config {
	return appConfig
}

// requireConfig returns the loaded configuration, falling back to
// defaults so helpers never dereference nil.
func requireConfig() *config.Config {
	if appConfig != nil {
		return appConfig
	}
	return config.DefaultConfig()
}

// openDatabase opens the sqlite store at the configured path, creating
// the parent directory when missing.
func openDatabase() (*db.DB, error) {
	cfg := requireConfig()

	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", cfg.DBPath, err)
	}
	return database, nil
}

// PreflightError is a command precondition failure with operator
// guidance attached.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

func (e *PreflightError) Error() string {
	return e.Message
}
