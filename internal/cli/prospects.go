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

var (
	prospectsListPlatform     string
	prospectsListMinFollowers int
	prospectsListEngaged      bool
	prospectsListHandleLike   string
	prospectsListLimit        int

	prospectsShowPlatform string
)

func init() {
	rootCmd.AddCommand(prospectsCmd)
	prospectsCmd.AddCommand(prospectsListCmd)
	prospectsCmd.AddCommand(prospectsShowCmd)

	prospectsListCmd.Flags().StringVar(&prospectsListPlatform, "platform", "", "filter by platform (twitter, linkedin)")
	prospectsListCmd.Flags().IntVar(&prospectsListMinFollowers, "min-followers", 0, "only prospects with at least this many followers")
	prospectsListCmd.Flags().BoolVar(&prospectsListEngaged, "engaged", false, "only prospects that engaged with us")
	prospectsListCmd.Flags().StringVar(&prospectsListHandleLike, "handle-like", "", "filter handles by substring")
	prospectsListCmd.Flags().IntVar(&prospectsListLimit, "limit", 50, "max prospects to list")

	prospectsShowCmd.Flags().StringVar(&prospectsShowPlatform, "platform", "", "platform the handle lives on (twitter, linkedin)")
}

var prospectsCmd = &cobra.Command{
	Use:   "prospects",
	Short: "Inspect the prospect store",
	Long:  "List and inspect prospects imported from files or discovered on a platform.",
}

var prospectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored prospects",
	Example: `  outreach prospects list
  outreach prospects list --platform linkedin --min-followers 500
  outreach prospects list --engaged --limit 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		query := db.ProspectQuery{
			HandleLike: prospectsListHandleLike,
			Limit:      prospectsListLimit,
		}
		if prospectsListPlatform != "" {
			p, err := parsePlatform(prospectsListPlatform)
			if err != nil {
				return err
			}
			query.Platform = &p
		}
		if prospectsListMinFollowers > 0 {
			query.MinFollowers = &prospectsListMinFollowers
		}
		if cmd.Flags().Changed("engaged") {
			query.EngagedWithUs = &prospectsListEngaged
		}

		repo := db.NewProspectRepository(database)
		list, err := repo.List(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to list prospects: %w", err)
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, list)
		}

		if len(list) == 0 {
			fmt.Fprintln(os.Stdout, "No prospects found. Import some with: outreach import <file>")
			return nil
		}

		rows := make([][]string, 0, len(list))
		for _, p := range list {
			rows = append(rows, []string{
				"@" + p.Handle,
				truncate(p.Name, 24),
				strconv.Itoa(p.FollowerCount),
				fmt.Sprintf("%.2f%%", p.EngagementRate()*100),
				formatYesNo(p.HasEngagedWithUs),
				formatTimestamp(p.LastActivityAt),
			})
		}
		return writeTable(os.Stdout, []string{"HANDLE", "NAME", "FOLLOWERS", "RATE", "ENGAGED", "LAST ACTIVITY"}, rows)
	},
}

var prospectsShowCmd = &cobra.Command{
	Use:   "show <handle>",
	Short: "Show one prospect in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		handle := strings.TrimPrefix(args[0], "@")

		p, err := parsePlatform(prospectsShowPlatform)
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		repo := db.NewProspectRepository(database)
		prospect, err := repo.GetByHandle(ctx, p, handle)
		if err != nil {
			if err == db.ErrProspectNotFound {
				return fmt.Errorf("no prospect @%s on %s", handle, p)
			}
			return fmt.Errorf("failed to load prospect @%s: %w", handle, err)
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, prospect)
		}

		pairs := [][2]string{
			{"Handle", "@" + prospect.Handle},
			{"Platform", string(prospect.Platform)},
			{"Name", orDash(prospect.Name)},
			{"Followers", strconv.Itoa(prospect.FollowerCount)},
			{"Engagement rate", fmt.Sprintf("%.2f%%", prospect.EngagementRate()*100)},
			{"Bio", orDash(truncate(prospect.Bio, 72))},
			{"Industry", orDash(prospect.Industry)},
			{"Location", orDash(prospect.Location)},
			{"Keywords", orDash(strings.Join(prospect.Keywords, ", "))},
			{"Engaged with us", formatYesNo(prospect.HasEngagedWithUs)},
			{"Mutual connections", strconv.Itoa(len(prospect.MutualConnections))},
			{"Last activity", formatTimestamp(prospect.LastActivityAt)},
			{"Updated", formatTimestamp(prospect.UpdatedAt)},
		}
		if err := writeKeyValues(os.Stdout, pairs); err != nil {
			return err
		}

		if len(prospect.RecentPosts) > 0 {
			fmt.Fprintf(os.Stdout, "\nRecent posts (%d):\n", len(prospect.RecentPosts))
			for _, post := range prospect.RecentPosts {
				fmt.Fprintf(os.Stdout, "  %s  %3d likes  %s\n",
					formatTimestamp(post.PostedAt), post.Likes, truncate(post.Text, 60))
			}
		}
		return nil
	},
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
