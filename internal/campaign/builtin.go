package campaign

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// LoadBuiltinCampaigns returns the example campaigns bundled with the
// tool.
func LoadBuiltinCampaigns() ([]*Campaign, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin campaigns: %w", err)
	}

	campaigns := make([]*Campaign, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := "builtin/" + entry.Name()
		data, err := builtinFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read builtin campaign %s: %w", entry.Name(), err)
		}
		c, err := parseCampaign(data)
		if err != nil {
			return nil, fmt.Errorf("parse builtin campaign %s: %w", entry.Name(), err)
		}
		c.Source = "builtin"
		campaigns = append(campaigns, c)
	}

	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].Name < campaigns[j].Name
	})

	return campaigns, nil
}
