package templates

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// ErrUnknownPlaceholder is returned in strict mode when a message
// references a placeholder no resolver covers.
var ErrUnknownPlaceholder = errors.New("unknown placeholder")

// Fallbacks used when prospect or post data cannot fill a placeholder.
const (
	fallbackTopic       = "your industry"
	fallbackInsight     = "your recent insights"
	fallbackThreadTopic = "tech trends"

	// insightMaxLen caps the excerpt pulled from a context post.
	insightMaxLen = 50
)

// threadTopics is scanned in order against the context post; the first
// case-insensitive hit names the thread's topic.
var threadTopics = []string{
	"AI", "automation", "startup", "SaaS", "marketing",
	"growth", "productivity", "tech",
}

// Options tune rendering behavior.
type Options struct {
	// Strict turns unmatched placeholders into errors. Off by default:
	// unmatched placeholders stay as literal text.
	Strict bool

	// Solution fills {{solution}}. A fixed pitch constant, not derived
	// from prospect data.
	Solution string

	// Value fills {{value}}. Same caveat as Solution.
	Value string
}

// DefaultOptions returns the stock rendering options.
func DefaultOptions() Options {
	return Options{
		Solution: "an automation toolkit",
		Value:    "save hours every week",
	}
}

// Renderer renders catalog templates for prospects.
type Renderer struct {
	catalog *Catalog
	opts    Options
}

// NewRenderer creates a renderer over the given catalog. Empty option
// fields fall back to defaults.
func NewRenderer(catalog *Catalog, opts Options) *Renderer {
	def := DefaultOptions()
	if strings.TrimSpace(opts.Solution) == "" {
		opts.Solution = def.Solution
	}
	if strings.TrimSpace(opts.Value) == "" {
		opts.Value = def.Value
	}
	return &Renderer{catalog: catalog, opts: opts}
}

// Render renders the named template for a prospect. contextPost may be
// nil; post-derived placeholders then use their fallbacks.
//
// Substitution is a single pass over the message: each placeholder is
// resolved at most once and resolved values are never re-scanned, so a
// value containing "{{...}}" text cannot trigger a second substitution.
func (r *Renderer) Render(name string, p *models.Prospect, contextPost *models.Post) (string, error) {
	tmpl, err := r.catalog.Get(name)
	if err != nil {
		return "", err
	}
	return r.RenderTemplate(tmpl, p, contextPost)
}

// RenderTemplate renders an already-resolved template.
func (r *Renderer) RenderTemplate(tmpl *Template, p *models.Prospect, contextPost *models.Post) (string, error) {
	if tmpl == nil {
		return "", fmt.Errorf("template is required")
	}
	if p == nil {
		p = &models.Prospect{}
	}

	resolvers := map[string]func() string{
		"topic":       func() string { return firstKeyword(p) },
		"field":       func() string { return firstKeyword(p) },
		"insight":     func() string { return insightFrom(contextPost) },
		"username":    func() string { return p.Handle },
		"threadTopic": func() string { return threadTopicFrom(contextPost) },
		"solution":    func() string { return r.opts.Solution },
		"value":       func() string { return r.opts.Value },
	}

	var out strings.Builder
	rest := tmpl.Message
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:start])

		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			// Unterminated marker; keep the tail as-is.
			out.WriteString(rest[start:])
			break
		}

		name := strings.TrimSpace(rest[start+2 : start+2+end])
		token := rest[start : start+2+end+2]
		if resolve, ok := resolvers[name]; ok {
			out.WriteString(resolve())
		} else if r.opts.Strict {
			return "", fmt.Errorf("%w: %q in template %q", ErrUnknownPlaceholder, name, tmpl.Name)
		} else {
			out.WriteString(token)
		}

		rest = rest[start+2+end+2:]
	}

	return out.String(), nil
}

// firstKeyword returns the prospect's first keyword tag, or the topic
// fallback when none exists.
func firstKeyword(p *models.Prospect) string {
	for _, kw := range p.Keywords {
		if trimmed := strings.TrimSpace(kw); trimmed != "" {
			return trimmed
		}
	}
	return fallbackTopic
}

// insightFrom extracts a short excerpt from the post: the first
// "."-separated fragment longer than 10 characters, cut to 50
// characters with a trailing ellipsis.
func insightFrom(post *models.Post) string {
	if post == nil {
		return fallbackInsight
	}
	for _, fragment := range strings.Split(post.Text, ".") {
		sentence := strings.TrimSpace(fragment)
		if len(sentence) <= 10 {
			continue
		}
		runes := []rune(sentence)
		if len(runes) > insightMaxLen {
			runes = runes[:insightMaxLen]
		}
		return string(runes) + "..."
	}
	return fallbackInsight
}

// threadTopicFrom scans the post text against the ordered topic list
// and returns the first case-insensitive match.
func threadTopicFrom(post *models.Post) string {
	if post == nil {
		return fallbackThreadTopic
	}
	lower := strings.ToLower(post.Text)
	for _, topic := range threadTopics {
		if strings.Contains(lower, strings.ToLower(topic)) {
			return topic
		}
	}
	return fallbackThreadTopic
}
