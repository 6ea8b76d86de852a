package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/quota"
)

// Snapshot is one poll of everything the dashboard shows.
type Snapshot struct {
	// Day is the local calendar day the quota stats cover.
	Day string

	// Quota is per-pool spend, in display order.
	Quota []quota.Stat

	// Prospects is the store count.
	Prospects int

	// Outbox counts queue items by lifecycle status.
	Outbox map[models.OutboxStatus]int

	// Events is the recent audit feed, newest first.
	Events []*models.Event
}

// SnapshotFunc produces a fresh snapshot. The dashboard polls it on a
// fixed interval.
type SnapshotFunc func(ctx context.Context) (*Snapshot, error)

// snapshotMsg carries a completed poll back into the update loop.
type snapshotMsg struct {
	snapshot *Snapshot
	err      error
}

const fetchTimeout = 5 * time.Second

func fetchSnapshot(fetch SnapshotFunc) tea.Cmd {
	return func() tea.Msg {
		if fetch == nil {
			return snapshotMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		snapshot, err := fetch(ctx)
		return snapshotMsg{snapshot: snapshot, err: err}
	}
}
