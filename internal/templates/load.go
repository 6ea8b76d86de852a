package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadTemplate reads a single template from disk.
func LoadTemplate(path string) (*Template, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("template path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}

	tmpl, err := parseTemplate(data)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	tmpl.Source = path
	return tmpl, nil
}

// LoadTemplatesFromDir loads all templates from a directory. A missing
// directory yields an empty list, not an error.
func LoadTemplatesFromDir(dir string) ([]*Template, error) {
	if strings.TrimSpace(dir) == "" {
		return []*Template{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Template{}, nil
		}
		return nil, fmt.Errorf("read templates dir %s: %w", dir, err)
	}

	templates := make([]*Template, 0)
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
		tmpl, err := LoadTemplate(path)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})

	return templates, nil
}

func parseTemplate(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, err
	}

	tmpl.Name = strings.TrimSpace(tmpl.Name)
	if tmpl.Name == "" {
		return nil, fmt.Errorf("template name is required")
	}
	tmpl.Description = strings.TrimSpace(tmpl.Description)

	tmpl.Message = strings.TrimSpace(tmpl.Message)
	if tmpl.Message == "" {
		return nil, fmt.Errorf("template message is required")
	}

	return &tmpl, nil
}
