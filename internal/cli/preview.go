// Package cli provides template preview commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

var (
	previewFile     string
	previewPlatform string
)

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewFile, "file", "f", "", "take the prospect from a list file instead of the store")
	previewCmd.Flags().StringVar(&previewPlatform, "platform", "", "platform (twitter, linkedin)")
}

var previewCmd = &cobra.Command{
	Use:   "preview <template> <handle>",
	Short: "Render a message template for a prospect",
	Long: `Render a catalog template against a prospect's data, using their
newest post as the reply context. The output is exactly what a run
would send.`,
	Example: `  outreach preview initial-dm sarah_builds
  outreach preview reply-insight mike_saas --file prospects.jsonl`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		templateName := args[0]
		handle := strings.TrimPrefix(args[1], "@")

		p, err := parsePlatform(previewPlatform)
		if err != nil {
			return err
		}

		prospect, err := previewProspect(ctx, p, handle)
		if err != nil {
			return err
		}

		renderer, err := buildRenderer(requireConfig())
		if err != nil {
			return err
		}

		text, err := renderer.Render(templateName, prospect, prospect.NewestPost())
		if err != nil {
			return fmt.Errorf("failed to render %s for @%s: %w", templateName, handle, err)
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, map[string]any{
				"template": templateName,
				"handle":   prospect.Handle,
				"platform": prospect.Platform,
				"text":     text,
				"length":   len(text),
			})
		}

		fmt.Fprintln(os.Stdout, text)
		fmt.Fprintf(os.Stderr, "\n(%d characters, template %s, prospect @%s)\n", len(text), templateName, prospect.Handle)
		return nil
	},
}

func previewProspect(ctx context.Context, p models.Platform, handle string) (*models.Prospect, error) {
	if previewFile != "" {
		list, err := prospectsFromFile(previewFile, p)
		if err != nil {
			return nil, err
		}
		for _, prospect := range list {
			if strings.EqualFold(prospect.Handle, handle) {
				return prospect, nil
			}
		}
		return nil, fmt.Errorf("prospect @%s not found in %s", handle, previewFile)
	}

	database, err := openDatabase()
	if err != nil {
		return nil, err
	}
	defer database.Close()

	prospect, err := db.NewProspectRepository(database).GetByHandle(ctx, p, handle)
	if err != nil {
		return nil, fmt.Errorf("prospect @%s: %w", handle, err)
	}
	return prospect, nil
}
