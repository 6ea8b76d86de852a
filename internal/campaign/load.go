package campaign

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadCampaign reads a single campaign from disk.
func LoadCampaign(path string) (*Campaign, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("campaign path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read campaign %s: %w", path, err)
	}

	c, err := parseCampaign(data)
	if err != nil {
		return nil, fmt.Errorf("parse campaign %s: %w", path, err)
	}
	c.Source = path
	return c, nil
}

// LoadCampaignsFromDir loads all campaigns from a directory. A missing
// directory yields an empty list, not an error.
func LoadCampaignsFromDir(dir string) ([]*Campaign, error) {
	if strings.TrimSpace(dir) == "" {
		return []*Campaign{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Campaign{}, nil
		}
		return nil, fmt.Errorf("read campaigns dir %s: %w", dir, err)
	}

	campaigns := make([]*Campaign, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, name)
		c, err := LoadCampaign(path)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].Name < campaigns[j].Name
	})

	return campaigns, nil
}

func parseCampaign(data []byte) (*Campaign, error) {
	var c Campaign
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}

	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}
