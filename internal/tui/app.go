// Package tui implements the outreach terminal dashboard.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/tui/components"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/tui/styles"
)

// Config wires the dashboard to the rest of the application.
type Config struct {
	// Snapshot is polled for fresh data on every tick.
	Snapshot SnapshotFunc

	// Theme selects the palette. Unknown names fall back to the default.
	Theme string

	// PollInterval is the refresh cadence. Zero or negative means 2s.
	PollInterval time.Duration
}

// Run launches the dashboard program and blocks until it exits.
func Run(cfg Config) error {
	program := tea.NewProgram(initialModel(cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type model struct {
	cfg         Config
	width       int
	height      int
	styles      styles.Styles
	view        viewID
	snapshot    *Snapshot
	err         error
	lastUpdated time.Time
	now         time.Time
}

const (
	minWidth            = 60
	minHeight           = 15
	staleAfter          = 30 * time.Second
	defaultPollInterval = 2 * time.Second
)

func initialModel(cfg Config) model {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return model{
		cfg:    cfg,
		styles: styles.BuildStyles(styles.ForName(cfg.Theme)),
		view:   viewDashboard,
		now:    time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(fetchSnapshot(m.cfg.Snapshot), tickCmd(m.cfg.PollInterval))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "1":
			m.view = viewDashboard
		case "2":
			m.view = viewAudit
		case "g", "tab":
			m.view = nextView(m.view)
		case "r":
			return m, fetchSnapshot(m.cfg.Snapshot)
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.snapshot = msg.snapshot
		m.lastUpdated = time.Now()
	case tickMsg:
		m.now = time.Time(msg)
		return m, tea.Batch(fetchSnapshot(m.cfg.Snapshot), tickCmd(m.cfg.PollInterval))
	}
	return m, nil
}

func (m model) View() string {
	if m.width > 0 && m.height > 0 {
		if m.width < minWidth || m.height < minHeight {
			return fmt.Sprintf("%s\n", joinLines(m.smallViewLines()))
		}
	}

	lines := []string{
		m.styles.Title.Render("Outreach"),
		m.styles.Muted.Render(m.headerLine()),
		"",
	}

	if m.err != nil {
		lines = append(lines, m.styles.Error.Render(fmt.Sprintf("Refresh failed: %v", m.err)), "")
	}

	lines = append(lines, m.viewLines()...)
	lines = append(lines, "", m.styles.Muted.Render(m.lastUpdatedLine()))
	lines = append(lines, m.styles.Muted.Render("Shortcuts: q quit | g next view | r refresh | 1 dashboard | 2 audit"))

	return fmt.Sprintf("%s\n", joinLines(lines))
}

func (m model) smallViewLines() []string {
	message := fmt.Sprintf("Terminal too small (%dx%d).", m.width, m.height)
	hint := fmt.Sprintf("Resize to at least %dx%d.", minWidth, minHeight)

	return []string{
		m.styles.Warning.Render(message),
		m.styles.Muted.Render(hint),
		m.styles.Muted.Render("Press q to quit."),
	}
}

func (m model) headerLine() string {
	if m.snapshot == nil {
		return "Loading..."
	}
	return fmt.Sprintf("Day %s | %d prospects | outbox: %s", m.snapshot.Day, m.snapshot.Prospects, outboxSummary(m.snapshot.Outbox))
}

type viewID int

const (
	viewDashboard viewID = iota
	viewAudit
)

func nextView(current viewID) viewID {
	if current == viewDashboard {
		return viewAudit
	}
	return viewDashboard
}

func (m model) viewLines() []string {
	if m.view == viewAudit {
		return m.auditLines()
	}
	return m.dashboardLines()
}

func (m model) dashboardLines() []string {
	if m.snapshot == nil {
		return []string{m.styles.Muted.Render("Waiting for the first refresh...")}
	}
	if m.snapshot.Prospects == 0 && len(m.snapshot.Events) == 0 {
		return []string{components.EmptyDashboard().Render(m.styles)}
	}

	lines := []string{m.styles.Accent.Render("Daily quota")}
	width := m.gaugeWidth()
	for _, stat := range m.snapshot.Quota {
		lines = append(lines, components.RenderQuotaGauge(m.styles, components.QuotaGauge{
			Action:    string(stat.Bucket),
			Used:      stat.Used,
			Limit:     stat.Limit,
			Remaining: stat.Remaining,
		}, width))
	}

	lines = append(lines, "", m.styles.Accent.Render("Outbox"))
	lines = append(lines, m.outboxLines()...)
	return lines
}

func (m model) auditLines() []string {
	if m.snapshot == nil {
		return []string{m.styles.Muted.Render("Waiting for the first refresh...")}
	}
	if len(m.snapshot.Events) == 0 {
		return []string{components.EmptyAudit().Render(m.styles)}
	}

	rows := len(m.snapshot.Events)
	if m.height > 0 {
		// Leave room for the header and footer chrome.
		if available := m.height - 8; available > 0 && rows > available {
			rows = available
		}
	}

	lines := []string{m.styles.Accent.Render("Recent activity")}
	for _, event := range m.snapshot.Events[:rows] {
		lines = append(lines, components.RenderEventRow(m.styles, event))
	}
	return lines
}

// outboxStatusOrder fixes the display order of queue statuses.
var outboxStatusOrder = []models.OutboxStatus{
	models.OutboxStatusPending,
	models.OutboxStatusLeased,
	models.OutboxStatusSent,
	models.OutboxStatusFailed,
	models.OutboxStatusSkipped,
}

func (m model) outboxLines() []string {
	counts := m.snapshot.Outbox
	if len(counts) == 0 {
		return []string{m.styles.Muted.Render("  No queued steps.")}
	}

	lines := make([]string, 0, len(outboxStatusOrder))
	for _, status := range outboxStatusOrder {
		count, ok := counts[status]
		if !ok || count == 0 {
			continue
		}
		style := m.styles.Text
		switch status {
		case models.OutboxStatusPending, models.OutboxStatusLeased:
			style = m.styles.StatusPending
		case models.OutboxStatusSent:
			style = m.styles.StatusSent
		case models.OutboxStatusFailed:
			style = m.styles.StatusFailed
		case models.OutboxStatusSkipped:
			style = m.styles.StatusSkipped
		}
		lines = append(lines, style.Render(fmt.Sprintf("  %-8s %d", status, count)))
	}
	if len(lines) == 0 {
		return []string{m.styles.Muted.Render("  No queued steps.")}
	}
	return lines
}

func outboxSummary(counts map[models.OutboxStatus]int) string {
	total := 0
	for _, count := range counts {
		total += count
	}
	if total == 0 {
		return "empty"
	}
	sent := counts[models.OutboxStatusSent]
	failed := counts[models.OutboxStatusFailed]
	return fmt.Sprintf("%d items (%d sent, %d failed)", total, sent, failed)
}

func (m model) gaugeWidth() int {
	// Action label, counts, and brackets take roughly 30 columns.
	width := m.width - 30
	switch {
	case m.width == 0:
		return 24
	case width < 10:
		return 10
	case width > 40:
		return 40
	}
	return width
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	out := lines[0]
	for _, line := range lines[1:] {
		out += "\n" + line
	}
	return out
}

type tickMsg time.Time

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) lastUpdatedLine() string {
	if m.lastUpdated.IsZero() {
		return "Last updated: --"
	}
	label := m.lastUpdated.Format("15:04:05")
	if m.isStale() {
		label += " (stale)"
	}
	return fmt.Sprintf("Last updated: %s", label)
}

func (m model) isStale() bool {
	if m.lastUpdated.IsZero() || m.now.IsZero() {
		return false
	}
	return m.now.Sub(m.lastUpdated) > staleAfter
}
