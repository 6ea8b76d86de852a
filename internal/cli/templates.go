package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/templates"
)

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List and inspect message templates",
	Long:  "Templates are YAML files in <home>/templates. A user template with a builtin's name replaces the builtin.",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := requireConfig()

		catalog, err := templates.LoadCatalog(cfg.Templates.Dir)
		if err != nil {
			return err
		}

		all := catalog.All()
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, all)
		}

		rows := make([][]string, 0, len(all))
		for _, t := range all {
			rows = append(rows, []string{
				t.Name,
				truncate(t.Description, 44),
				strings.Join(t.Placeholders(), ", "),
				templateSource(t),
			})
		}
		return writeTable(os.Stdout, []string{"NAME", "DESCRIPTION", "PLACEHOLDERS", "SOURCE"}, rows)
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a template's message text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := requireConfig()

		catalog, err := templates.LoadCatalog(cfg.Templates.Dir)
		if err != nil {
			return err
		}
		tmpl, err := catalog.Get(args[0])
		if err != nil {
			return err
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, tmpl)
		}

		pairs := [][2]string{
			{"Name", tmpl.Name},
			{"Description", orDash(tmpl.Description)},
			{"Tags", orDash(strings.Join(tmpl.Tags, ", "))},
			{"Placeholders", orDash(strings.Join(tmpl.Placeholders(), ", "))},
			{"Source", templateSource(tmpl)},
		}
		if err := writeKeyValues(os.Stdout, pairs); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\n%s\n", tmpl.Message)
		return nil
	},
}

func templateSource(t *templates.Template) string {
	if t.Source == "" || t.Source == "builtin" {
		return "builtin"
	}
	return "user"
}
