package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

func newOutboxItem(p *models.Prospect, campaignID string, action models.ActionKind, priority int) *models.OutboxItem {
	return &models.OutboxItem{
		CampaignID: campaignID,
		ProspectID: p.ID,
		Handle:     p.Handle,
		Platform:   p.Platform,
		Action:     action,
		Priority:   priority,
	}
}

func TestOutboxRepository_EnqueueAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	p := createTestProspect(t, db, "outbox_target")
	research := newOutboxItem(p, "c1", models.ActionResearch, 1)
	follow := newOutboxItem(p, "c1", models.ActionFollow, 2)

	if err := repo.Enqueue(ctx, research, follow); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if research.ID == "" || follow.ID == "" {
		t.Fatal("expected IDs to be set")
	}
	if research.Status != models.OutboxStatusPending {
		t.Fatalf("status = %q, want pending", research.Status)
	}

	items, err := repo.List(ctx, OutboxQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Action != models.ActionResearch || items[1].Action != models.ActionFollow {
		t.Fatalf("unexpected order: %s, %s", items[0].Action, items[1].Action)
	}

	pending := models.OutboxStatusPending
	items, err = repo.List(ctx, OutboxQuery{Status: &pending, ProspectID: &p.ID})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 filtered items, got %d", len(items))
	}
}

func TestOutboxRepository_ClaimNext(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	p := createTestProspect(t, db, "claim_target")
	item := newOutboxItem(p, "c1", models.ActionResearch, 1)
	if err := repo.Enqueue(ctx, item); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	claimed, err := repo.ClaimNext(ctx, "", 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	if claimed.ID != item.ID {
		t.Fatalf("claimed %q, want %q", claimed.ID, item.ID)
	}
	if claimed.Status != models.OutboxStatusLeased {
		t.Errorf("status = %q, want leased", claimed.Status)
	}
	if claimed.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", claimed.Attempts)
	}
	if claimed.LeaseUntil == nil || !claimed.LeaseUntil.After(time.Now().UTC()) {
		t.Errorf("expected a future lease, got %v", claimed.LeaseUntil)
	}

	// The leased item is not claimable while its lease holds.
	if _, err := repo.ClaimNext(ctx, "", 2*time.Minute); !errors.Is(err, ErrOutboxEmpty) {
		t.Fatalf("expected ErrOutboxEmpty, got %v", err)
	}
}

func TestOutboxRepository_ExpiredLeaseReclaim(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	p := createTestProspect(t, db, "reclaim_target")
	item := newOutboxItem(p, "c1", models.ActionFollow, 1)
	if err := repo.Enqueue(ctx, item); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// A negative lease duration expires immediately, standing in for a
	// crashed runner that never released its claim.
	if _, err := repo.ClaimNext(ctx, "", -time.Second); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	reclaimed, err := repo.ClaimNext(ctx, "", 2*time.Minute)
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if reclaimed.ID != item.ID {
		t.Fatalf("reclaimed %q, want %q", reclaimed.ID, item.ID)
	}
	if reclaimed.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", reclaimed.Attempts)
	}
}

func TestOutboxRepository_ClaimScopedToCampaign(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	p := createTestProspect(t, db, "scoped_target")
	first := newOutboxItem(p, "c1", models.ActionResearch, 1)
	second := newOutboxItem(p, "c2", models.ActionFollow, 1)
	if err := repo.Enqueue(ctx, first, second); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	claimed, err := repo.ClaimNext(ctx, "c2", time.Minute)
	if err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	if claimed.CampaignID != "c2" {
		t.Fatalf("claimed campaign %q, want c2", claimed.CampaignID)
	}
}

func TestOutboxRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	p := createTestProspect(t, db, "status_target")
	item := newOutboxItem(p, "c1", models.ActionDirectMessage, 4)
	item.Message = "Hey, saw your recent thread."
	if err := repo.Enqueue(ctx, item); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := repo.ClaimNext(ctx, "", time.Minute); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := repo.UpdateStatus(ctx, item.ID, models.OutboxStatusSent, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	sent, err := repo.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sent.Status != models.OutboxStatusSent {
		t.Errorf("status = %q, want sent", sent.Status)
	}
	if sent.SentAt == nil {
		t.Error("expected sent_at set")
	}
	if sent.LeaseUntil != nil {
		t.Error("expected lease released")
	}
	if sent.Message != "Hey, saw your recent thread." {
		t.Errorf("unexpected message: %q", sent.Message)
	}
	if !sent.Terminal() {
		t.Error("expected sent item to be terminal")
	}

	if err := repo.UpdateStatus(ctx, "missing", models.OutboxStatusFailed, "x"); !errors.Is(err, ErrOutboxItemNotFound) {
		t.Errorf("expected ErrOutboxItemNotFound, got %v", err)
	}
}

func TestOutboxRepository_FailureKeepsError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	p := createTestProspect(t, db, "fail_target")
	item := newOutboxItem(p, "c1", models.ActionReply, 1)
	if err := repo.Enqueue(ctx, item); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if err := repo.UpdateStatus(ctx, item.ID, models.OutboxStatusFailed, "rate limited"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	failed, err := repo.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if failed.LastError != "rate limited" {
		t.Errorf("LastError = %q, want rate limited", failed.LastError)
	}
}

func TestOutboxRepository_HasAction(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	p := createTestProspect(t, db, "dedupe_target")
	item := newOutboxItem(p, "c1", models.ActionFollow, 1)
	if err := repo.Enqueue(ctx, item); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	has, err := repo.HasAction(ctx, p.ID, models.ActionFollow)
	if err != nil {
		t.Fatalf("HasAction: %v", err)
	}
	if !has {
		t.Error("expected pending follow to count")
	}

	has, err = repo.HasAction(ctx, p.ID, models.ActionDirectMessage)
	if err != nil {
		t.Fatalf("HasAction: %v", err)
	}
	if has {
		t.Error("expected no direct message planned")
	}

	// Failed steps do not block replanning.
	if err := repo.UpdateStatus(ctx, item.ID, models.OutboxStatusFailed, "boom"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	has, err = repo.HasAction(ctx, p.ID, models.ActionFollow)
	if err != nil {
		t.Fatalf("HasAction: %v", err)
	}
	if has {
		t.Error("expected failed follow to not count")
	}
}

func TestOutboxRepository_CountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	p := createTestProspect(t, db, "count_target")
	a := newOutboxItem(p, "c1", models.ActionResearch, 1)
	b := newOutboxItem(p, "c1", models.ActionFollow, 2)
	c := newOutboxItem(p, "c2", models.ActionLike, 1)
	if err := repo.Enqueue(ctx, a, b, c); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := repo.UpdateStatus(ctx, a.ID, models.OutboxStatusSent, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	counts, err := repo.CountByStatus(ctx, "c1")
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[models.OutboxStatusSent] != 1 {
		t.Errorf("sent = %d, want 1", counts[models.OutboxStatusSent])
	}
	if counts[models.OutboxStatusPending] != 1 {
		t.Errorf("pending = %d, want 1", counts[models.OutboxStatusPending])
	}

	all, err := repo.CountByStatus(ctx, "")
	if err != nil {
		t.Fatalf("CountByStatus all: %v", err)
	}
	if all[models.OutboxStatusPending] != 2 {
		t.Errorf("pending all = %d, want 2", all[models.OutboxStatusPending])
	}
}
