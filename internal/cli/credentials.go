// Package cli provides credential vault commands.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/vault"
)

var (
	credentialsAddPlatform    string
	credentialsAddName        string
	credentialsAddBearerToken string
	credentialsAddAccessToken string
	credentialsAddAPIKey      string
	credentialsAddAPISecret   string
	credentialsAddFromEnv     string

	credentialsListPlatform string

	credentialsPlatform string
)

func init() {
	rootCmd.AddCommand(credentialsCmd)
	credentialsCmd.AddCommand(credentialsAddCmd)
	credentialsCmd.AddCommand(credentialsListCmd)
	credentialsCmd.AddCommand(credentialsActivateCmd)
	credentialsCmd.AddCommand(credentialsDeactivateCmd)
	credentialsCmd.AddCommand(credentialsRemoveCmd)

	credentialsAddCmd.Flags().StringVar(&credentialsAddPlatform, "platform", "", "platform the credentials belong to (twitter, linkedin)")
	credentialsAddCmd.Flags().StringVar(&credentialsAddName, "name", "main", "profile name")
	credentialsAddCmd.Flags().StringVar(&credentialsAddBearerToken, "bearer-token", "", "OAuth2 bearer token")
	credentialsAddCmd.Flags().StringVar(&credentialsAddAccessToken, "access-token", "", "OAuth access token")
	credentialsAddCmd.Flags().StringVar(&credentialsAddAPIKey, "api-key", "", "API key")
	credentialsAddCmd.Flags().StringVar(&credentialsAddAPISecret, "api-secret", "", "API key secret")
	credentialsAddCmd.Flags().StringVar(&credentialsAddFromEnv, "from-env", "", "read the bearer token from this environment variable")

	credentialsListCmd.Flags().StringVar(&credentialsListPlatform, "platform", "", "filter by platform (twitter, linkedin)")

	credentialsActivateCmd.Flags().StringVar(&credentialsPlatform, "platform", "", "platform of the profile (twitter, linkedin)")
	credentialsDeactivateCmd.Flags().StringVar(&credentialsPlatform, "platform", "", "platform to deactivate (twitter, linkedin)")
	credentialsRemoveCmd.Flags().StringVar(&credentialsPlatform, "platform", "", "platform of the profile (twitter, linkedin)")
}

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage platform credentials",
	Long: `Manage the credential vault. Profiles are JSON files under
<home>/credentials/<platform>/, written with owner-only permissions.
The active profile supplies the token when the config and environment
do not.`,
}

var credentialsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a credential profile",
	Long:  "Store a credential profile. Prompts for the secret when no flag provides one.",
	Example: `  outreach credentials add --platform twitter --name main
  outreach credentials add --platform twitter --from-env TWITTER_BEARER_TOKEN
  outreach credentials add --platform linkedin --access-token "$TOKEN"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := requireConfig()

		p, err := getCredentialPlatform()
		if err != nil {
			return err
		}

		creds := &vault.Credentials{
			Platform:    p,
			Name:        credentialsAddName,
			BearerToken: credentialsAddBearerToken,
			AccessToken: credentialsAddAccessToken,
			APIKey:      credentialsAddAPIKey,
			APISecret:   credentialsAddAPISecret,
		}

		if credentialsAddFromEnv != "" {
			value, ok := os.LookupEnv(credentialsAddFromEnv)
			if !ok {
				return fmt.Errorf("environment variable %q not set", credentialsAddFromEnv)
			}
			creds.BearerToken = value
		}

		if creds.Empty() {
			secret, err := promptSecret(fmt.Sprintf("%s token for profile %q: ", p, creds.Name))
			if err != nil {
				return err
			}
			if p == models.PlatformLinkedIn {
				creds.AccessToken = secret
			} else {
				creds.BearerToken = secret
			}
		}

		saved, err := vault.Save(cfg.Home, creds)
		if err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		// Pin the platform's first profile as active.
		existing, err := vault.List(cfg.Home, p)
		if err == nil && len(existing) == 1 {
			if err := vault.Activate(cfg.Home, p, saved.Name); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to mark profile active: %v\n", err)
			}
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, maskedProfile(saved))
		}

		fmt.Fprintf(os.Stdout, "Stored %s profile %q.\n", p, saved.Name)
		return nil
	},
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credential profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := requireConfig()

		var p models.Platform
		if strings.TrimSpace(credentialsListPlatform) != "" {
			parsed, err := parsePlatform(credentialsListPlatform)
			if err != nil {
				return err
			}
			p = parsed
		}

		profiles, err := vault.List(cfg.Home, p)
		if err != nil {
			return fmt.Errorf("failed to list credentials: %w", err)
		}

		active := make(map[models.Platform]string)
		for _, known := range models.AllPlatforms() {
			if creds, err := vault.Active(cfg.Home, known); err == nil && creds != nil {
				active[known] = creds.Name
			}
		}

		if IsJSONOutput() || IsJSONLOutput() {
			masked := make([]map[string]any, 0, len(profiles))
			for _, profile := range profiles {
				entry := maskedProfile(profile)
				entry["active"] = active[profile.Platform] == profile.Name
				masked = append(masked, entry)
			}
			return WriteOutput(os.Stdout, masked)
		}

		if len(profiles) == 0 {
			fmt.Fprintln(os.Stdout, "No credentials stored. Add some with: outreach credentials add")
			return nil
		}

		rows := make([][]string, 0, len(profiles))
		for _, profile := range profiles {
			rows = append(rows, []string{
				string(profile.Platform),
				profile.Name,
				formatYesNo(active[profile.Platform] == profile.Name),
				maskToken(profile.Token()),
				formatTimestamp(profile.UpdatedAt),
			})
		}
		return writeTable(os.Stdout, []string{"PLATFORM", "NAME", "ACTIVE", "TOKEN", "UPDATED"}, rows)
	},
}

var credentialsActivateCmd = &cobra.Command{
	Use:   "activate <name>",
	Short: "Mark a profile as the one to use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := requireConfig()

		p, err := parsePlatform(credentialsPlatform)
		if err != nil {
			return err
		}
		if err := vault.Activate(cfg.Home, p, args[0]); err != nil {
			if errors.Is(err, vault.ErrProfileNotFound) {
				return fmt.Errorf("no %s profile named %q", p, args[0])
			}
			return err
		}

		fmt.Fprintf(os.Stdout, "Activated %s profile %q.\n", p, args[0])
		return nil
	},
}

var credentialsDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Clear the active profile for a platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := requireConfig()

		p, err := parsePlatform(credentialsPlatform)
		if err != nil {
			return err
		}
		if err := vault.Deactivate(cfg.Home, p); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Deactivated %s credentials.\n", p)
		return nil
	},
}

var credentialsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a credential profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := requireConfig()

		p, err := parsePlatform(credentialsPlatform)
		if err != nil {
			return err
		}
		if err := vault.Delete(cfg.Home, p, args[0]); err != nil {
			if errors.Is(err, vault.ErrProfileNotFound) {
				return fmt.Errorf("no %s profile named %q", p, args[0])
			}
			return err
		}

		fmt.Fprintf(os.Stdout, "Removed %s profile %q.\n", p, args[0])
		return nil
	},
}

// getCredentialPlatform returns the --platform flag, prompting when the
// session is interactive and the flag is absent.
func getCredentialPlatform() (models.Platform, error) {
	if credentialsAddPlatform != "" {
		return parsePlatform(credentialsAddPlatform)
	}

	if IsNonInteractive() {
		return "", fmt.Errorf("--platform is required in non-interactive mode")
	}

	platforms := models.AllPlatforms()
	fmt.Fprintln(os.Stderr, "Select platform:")
	for i, p := range platforms {
		fmt.Fprintf(os.Stderr, "  %d) %s\n", i+1, p)
	}
	fmt.Fprintf(os.Stderr, "Platform [1-%d]: ", len(platforms))

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(platforms) {
		return "", fmt.Errorf("invalid selection")
	}
	return platforms[choice-1], nil
}

// promptSecret reads a secret without echoing it. Falls back to an
// error when stdin is not a terminal, so scripts fail loudly instead
// of hanging.
func promptSecret(prompt string) (string, error) {
	if IsNonInteractive() || !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no token given; pass --bearer-token, --access-token, or --from-env")
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	value := strings.TrimSpace(string(secret))
	if value == "" {
		return "", fmt.Errorf("token is required")
	}
	return value, nil
}

// maskToken keeps the first and last four characters of a secret.
func maskToken(token string) string {
	if token == "" {
		return "-"
	}
	runes := []rune(token)
	if len(runes) <= 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:4]) + strings.Repeat("*", 4) + string(runes[len(runes)-4:])
}

func maskedProfile(creds *vault.Credentials) map[string]any {
	return map[string]any{
		"platform":   creds.Platform,
		"name":       creds.Name,
		"token":      maskToken(creds.Token()),
		"created_at": creds.CreatedAt,
		"updated_at": creds.UpdatedAt,
	}
}
