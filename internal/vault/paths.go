// Package vault stores named credential profiles for the platform
// clients: bearer tokens and API keys, one JSON file per profile,
// grouped by platform under the outreach home.
package vault

import (
	"path/filepath"
	"strings"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// activeMarker is the per-platform file naming the active profile.
const activeMarker = ".active"

// CredentialsDir returns the credentials root under the outreach home.
func CredentialsDir(home string) string {
	return filepath.Join(home, "credentials")
}

// PlatformDir returns the directory holding one platform's profiles.
func PlatformDir(home string, platform models.Platform) string {
	return filepath.Join(CredentialsDir(home), string(platform))
}

// ProfilePath returns the file path for a named profile.
func ProfilePath(home string, platform models.Platform, name string) string {
	return filepath.Join(PlatformDir(home, platform), name+".json")
}

func activeMarkerPath(home string, platform models.Platform) string {
	return filepath.Join(PlatformDir(home, platform), activeMarker)
}

// validName rejects names that would escape the platform directory or
// shadow the active marker. Profile names become file names.
func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return true
}
