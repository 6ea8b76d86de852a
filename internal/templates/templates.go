// Package templates provides the outreach message catalog and
// placeholder rendering.
package templates

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTemplateNotFound is returned when a template id is not in the
// catalog. Unknown ids fail loudly; a silently empty message could end
// up in front of a real person.
var ErrTemplateNotFound = errors.New("template not found")

// Template represents a single message template.
type Template struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Message     string   `yaml:"message"`
	Tags        []string `yaml:"tags,omitempty"`
	Source      string   // file path or "builtin"
}

// Placeholders lists the {{...}} names referenced by the message, in
// order of first appearance.
func (t *Template) Placeholders() []string {
	var names []string
	seen := make(map[string]struct{})
	rest := t.Message
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			break
		}
		name := strings.TrimSpace(rest[start+2 : start+2+end])
		if name != "" {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
		rest = rest[start+2+end+2:]
	}
	return names
}

// Catalog holds the resolved template set, user overrides first.
type Catalog struct {
	byName map[string]*Template
	order  []string
}

// NewCatalog builds a catalog from templates in precedence order: the
// first template with a given name wins.
func NewCatalog(templates ...*Template) *Catalog {
	c := &Catalog{byName: make(map[string]*Template)}
	for _, tmpl := range templates {
		if tmpl == nil || tmpl.Name == "" {
			continue
		}
		if _, exists := c.byName[tmpl.Name]; exists {
			continue
		}
		c.byName[tmpl.Name] = tmpl
		c.order = append(c.order, tmpl.Name)
	}
	return c
}

// Get returns the template with the given id.
func (c *Catalog) Get(name string) (*Template, error) {
	tmpl, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return tmpl, nil
}

// Names returns the catalog's template ids, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	sort.Strings(names)
	return names
}

// All returns every template in the catalog, sorted by name.
func (c *Catalog) All() []*Template {
	all := make([]*Template, 0, len(c.byName))
	for _, name := range c.Names() {
		all = append(all, c.byName[name])
	}
	return all
}

// Len returns the number of templates in the catalog.
func (c *Catalog) Len() int {
	return len(c.byName)
}
