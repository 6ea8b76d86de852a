package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// Profile errors.
var (
	ErrProfileNotFound    = errors.New("credential profile not found")
	ErrInvalidProfileName = errors.New("invalid profile name")
	ErrNoCredentials      = errors.New("profile has no credentials")
)

// Credentials is one saved credential profile. Which fields are set
// depends on the platform: the Twitter client reads the bearer token,
// the LinkedIn client the access token.
type Credentials struct {
	// Platform is the network these credentials authenticate against.
	Platform models.Platform `json:"platform"`

	// Name is the profile name (e.g., "main", "staging").
	Name string `json:"name"`

	// BearerToken is an app-only API token.
	BearerToken string `json:"bearer_token,omitempty"`

	// AccessToken is a user-context OAuth token.
	AccessToken string `json:"access_token,omitempty"`

	// APIKey and APISecret are consumer credentials, for platforms
	// that split them from the token.
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`

	// CreatedAt is when the profile was first saved.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the profile was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}

// Empty reports whether no credential field is set.
func (c *Credentials) Empty() bool {
	return c.BearerToken == "" && c.AccessToken == "" && c.APIKey == "" && c.APISecret == ""
}

// Token returns the first usable token, bearer first.
func (c *Credentials) Token() string {
	if c.BearerToken != "" {
		return c.BearerToken
	}
	return c.AccessToken
}

// Save writes a profile to the vault. Overwriting an existing profile
// preserves its CreatedAt.
func Save(home string, creds *Credentials) (*Credentials, error) {
	if creds == nil || !validName(creds.Name) {
		return nil, ErrInvalidProfileName
	}
	if !models.ValidPlatform(creds.Platform) {
		return nil, fmt.Errorf("unknown platform %q", creds.Platform)
	}
	if creds.Empty() {
		return nil, ErrNoCredentials
	}

	if err := os.MkdirAll(PlatformDir(home, creds.Platform), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	now := time.Now().UTC()
	saved := *creds
	saved.CreatedAt = now
	saved.UpdatedAt = now

	path := ProfilePath(home, creds.Platform, creds.Name)
	if existing, err := readProfile(path); err == nil {
		saved.CreatedAt = existing.CreatedAt
	}

	data, err := json.MarshalIndent(&saved, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write profile: %w", err)
	}
	return &saved, nil
}

// Load reads a named profile.
func Load(home string, platform models.Platform, name string) (*Credentials, error) {
	if !validName(name) {
		return nil, ErrInvalidProfileName
	}

	creds, err := readProfile(ProfilePath(home, platform, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return creds, nil
}

// List returns the profiles for a platform, or for every platform when
// platform is empty, sorted by platform then name. Unreadable profile
// files are skipped.
func List(home string, platform models.Platform) ([]*Credentials, error) {
	platforms := []models.Platform{platform}
	if platform == "" {
		platforms = models.AllPlatforms()
	}

	var profiles []*Credentials
	for _, p := range platforms {
		dir := PlatformDir(home, p)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read profiles for %s: %w", p, err)
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			creds, err := readProfile(filepath.Join(dir, name))
			if err != nil {
				continue
			}
			profiles = append(profiles, creds)
		}
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].Platform != profiles[j].Platform {
			return profiles[i].Platform < profiles[j].Platform
		}
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

// Delete removes a profile. The active marker is cleared when it
// pointed at the deleted profile.
func Delete(home string, platform models.Platform, name string) error {
	if !validName(name) {
		return ErrInvalidProfileName
	}

	path := ProfilePath(home, platform, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ErrProfileNotFound
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if active, err := activeName(home, platform); err == nil && active == name {
		if err := os.Remove(activeMarkerPath(home, platform)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to clear active marker: %w", err)
		}
	}
	return nil
}

// Activate marks the named profile as the one clients read.
func Activate(home string, platform models.Platform, name string) error {
	if !validName(name) {
		return ErrInvalidProfileName
	}
	if _, err := os.Stat(ProfilePath(home, platform, name)); os.IsNotExist(err) {
		return ErrProfileNotFound
	}
	if err := os.WriteFile(activeMarkerPath(home, platform), []byte(name+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write active marker: %w", err)
	}
	return nil
}

// Deactivate clears the active marker for a platform.
func Deactivate(home string, platform models.Platform) error {
	if err := os.Remove(activeMarkerPath(home, platform)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear active marker: %w", err)
	}
	return nil
}

// Active returns the profile clients should use: the marked one, or
// the only stored profile when nothing is marked. Returns nil without
// error when no profile is active.
func Active(home string, platform models.Platform) (*Credentials, error) {
	if name, err := activeName(home, platform); err == nil && name != "" {
		creds, err := Load(home, platform, name)
		if err == nil {
			return creds, nil
		}
		if !errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		// Stale marker; fall through to the single-profile rule.
	}

	profiles, err := List(home, platform)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 1 {
		return profiles[0], nil
	}
	return nil, nil
}

func activeName(home string, platform models.Platform) (string, error) {
	data, err := os.ReadFile(activeMarkerPath(home, platform))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readProfile(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return &creds, nil
}
