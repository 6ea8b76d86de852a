// Package cli provides prospect qualification commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/db"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/outreach"
)

var (
	qualifyFile     string
	qualifyPlatform string
	qualifyHandles  []string
	qualifyLimit    int
	qualifyVerbose  bool
)

func init() {
	rootCmd.AddCommand(qualifyCmd)

	qualifyCmd.Flags().StringVarP(&qualifyFile, "file", "f", "", "read prospects from a list file instead of the store")
	qualifyCmd.Flags().StringVar(&qualifyPlatform, "platform", "", "platform (twitter, linkedin)")
	qualifyCmd.Flags().StringSliceVar(&qualifyHandles, "handle", nil, "restrict to these stored handles")
	qualifyCmd.Flags().IntVar(&qualifyLimit, "limit", 50, "max prospects read from the store")
	qualifyCmd.Flags().BoolVarP(&qualifyVerbose, "verbose", "v", false, "show every criterion per prospect")
}

var qualifyCmd = &cobra.Command{
	Use:   "qualify",
	Short: "Report qualification predicates for prospects",
	Long: `Evaluate each prospect against the three qualification predicates:
worth researching, worth engaging, and highly qualified. Prospects come
from the store, or from a list file with --file. No quota is consumed
and nothing is planned.`,
	Example: `  # Every stored twitter prospect
  outreach qualify

  # Specific prospects, with the full criteria breakdown
  outreach qualify --handle sarah_builds --handle mike_saas -v

  # Straight from a list file, before importing anything
  outreach qualify --file prospects.jsonl`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		p, err := parsePlatform(qualifyPlatform)
		if err != nil {
			return err
		}

		list, err := qualifyProspects(ctx, p)
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

		engine := buildEngine(requireConfig())
		evaluations := make([]outreach.Evaluation, 0, len(list))
		for _, prospect := range list {
			evaluations = append(evaluations, engine.Evaluate(prospect, nil))
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, evaluations)
		}

		headers := []string{"HANDLE", "RATE", "RESEARCH", "ENGAGE", "QUALIFY"}
		rows := make([][]string, 0, len(evaluations))
		for _, ev := range evaluations {
			rows = append(rows, []string{
				"@" + ev.Handle,
				fmt.Sprintf("%.2f%%", ev.EngagementRate*100),
				formatVerdict(ev.WorthResearching),
				fmt.Sprintf("%s %d/%d", formatVerdict(ev.WorthEngaging), ev.Engagement.Met(), ev.Engagement.Required),
				fmt.Sprintf("%s %d/%d", formatVerdict(ev.HighlyQualified), ev.Qualification.Met(), ev.Qualification.Required),
			})
		}
		if err := writeTable(os.Stdout, headers, rows); err != nil {
			return err
		}

		if qualifyVerbose {
			for _, ev := range evaluations {
				fmt.Fprintln(os.Stdout)
				printChecklists(ev)
			}
		}
		return nil
	},
}

func qualifyProspects(ctx context.Context, p models.Platform) ([]*models.Prospect, error) {
	if qualifyFile != "" {
		return prospectsFromFile(qualifyFile, p)
	}

	database, err := openDatabase()
	if err != nil {
		return nil, err
	}
	defer database.Close()

	return prospectsFromStore(ctx, db.NewProspectRepository(database), p, qualifyHandles, qualifyLimit)
}

func printChecklists(ev outreach.Evaluation) {
	fmt.Fprintf(os.Stdout, "@%s\n", ev.Handle)
	printChecklist("engagement", ev.Engagement)
	printChecklist("qualification", ev.Qualification)
}

func printChecklist(name string, cl outreach.Checklist) {
	fmt.Fprintf(os.Stdout, "  %s (needs %d of %d):\n", name, cl.Required, len(cl.Criteria))
	for _, crit := range cl.Criteria {
		label := strings.ReplaceAll(crit.Name, "_", " ")
		fmt.Fprintf(os.Stdout, "    %s %s\n", formatCheck(crit.Met), label)
	}
}
