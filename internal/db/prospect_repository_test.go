package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

func TestProspectRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProspectRepository(db)
	ctx := context.Background()

	activity := time.Date(2025, 6, 8, 9, 30, 0, 0, time.UTC)
	p := &models.Prospect{
		PlatformID:    "123456",
		Platform:      models.PlatformTwitter,
		Handle:        "sarah_tech",
		Name:          "Sarah",
		FollowerCount: 2500,
		Bio:           "Building AI tools",
		Keywords:      []string{"AI", "automation"},
		RecentPosts: []models.Post{
			{ID: "t1", Text: "Shipping weekly.", Likes: 45, Comments: 8},
		},
		MutualConnections: []string{"m1", "m2"},
		LastActivityAt:    activity,
		HasEngagedWithUs:  true,
	}

	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected ID to be set")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Handle != "sarah_tech" {
		t.Errorf("Handle = %q, want sarah_tech", got.Handle)
	}
	if got.PlatformID != "123456" {
		t.Errorf("PlatformID = %q, want 123456", got.PlatformID)
	}
	if got.FollowerCount != 2500 {
		t.Errorf("FollowerCount = %d, want 2500", got.FollowerCount)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "AI" {
		t.Errorf("unexpected keywords: %v", got.Keywords)
	}
	if len(got.RecentPosts) != 1 || got.RecentPosts[0].Likes != 45 {
		t.Errorf("unexpected posts: %+v", got.RecentPosts)
	}
	if len(got.MutualConnections) != 2 {
		t.Errorf("unexpected mutual connections: %v", got.MutualConnections)
	}
	if !got.LastActivityAt.Equal(activity) {
		t.Errorf("LastActivityAt = %v, want %v", got.LastActivityAt, activity)
	}
	if !got.HasEngagedWithUs {
		t.Error("expected HasEngagedWithUs to round-trip")
	}
}

func TestProspectRepository_GetByHandle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProspectRepository(db)
	ctx := context.Background()

	created := createTestProspect(t, db, "handle_lookup")

	got, err := repo.GetByHandle(ctx, models.PlatformTwitter, "handle_lookup")
	if err != nil {
		t.Fatalf("GetByHandle: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}

	if _, err := repo.GetByHandle(ctx, models.PlatformLinkedIn, "handle_lookup"); !errors.Is(err, ErrProspectNotFound) {
		t.Errorf("expected ErrProspectNotFound on other platform, got %v", err)
	}
}

func TestProspectRepository_DuplicateHandle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProspectRepository(db)
	ctx := context.Background()

	createTestProspect(t, db, "dup_handle")

	dup := &models.Prospect{
		Platform: models.PlatformTwitter,
		Handle:   "dup_handle",
	}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrDuplicateProspect) {
		t.Fatalf("expected ErrDuplicateProspect, got %v", err)
	}

	// The same handle on another platform is a distinct prospect.
	other := &models.Prospect{
		Platform: models.PlatformLinkedIn,
		Handle:   "dup_handle",
	}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("create on other platform: %v", err)
	}
}

func TestProspectRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProspectRepository(db)
	ctx := context.Background()

	p := createTestProspect(t, db, "update_me")

	p.FollowerCount = 9000
	p.HasEngagedWithUs = true
	p.Keywords = append(p.Keywords, "saas")
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FollowerCount != 9000 {
		t.Errorf("FollowerCount = %d, want 9000", got.FollowerCount)
	}
	if len(got.Keywords) != 3 {
		t.Errorf("Keywords = %v, want 3 entries", got.Keywords)
	}

	missing := &models.Prospect{ID: "nope", Platform: models.PlatformTwitter, Handle: "x"}
	if err := repo.Update(ctx, missing); !errors.Is(err, ErrProspectNotFound) {
		t.Errorf("expected ErrProspectNotFound, got %v", err)
	}
}

func TestProspectRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProspectRepository(db)
	ctx := context.Background()

	createTestProspect(t, db, "list_small")

	big := &models.Prospect{
		Platform:      models.PlatformLinkedIn,
		Handle:        "list_big",
		FollowerCount: 40000,
	}
	if err := repo.Create(ctx, big); err != nil {
		t.Fatalf("create big: %v", err)
	}

	linkedin := models.PlatformLinkedIn
	results, err := repo.List(ctx, ProspectQuery{Platform: &linkedin})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 1 || results[0].Handle != "list_big" {
		t.Fatalf("unexpected platform filter results: %+v", results)
	}

	minFollowers := 10000
	results, err = repo.List(ctx, ProspectQuery{MinFollowers: &minFollowers})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 1 || results[0].Handle != "list_big" {
		t.Fatalf("unexpected follower filter results: %+v", results)
	}

	results, err = repo.List(ctx, ProspectQuery{HandleLike: "list_"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 handle matches, got %d", len(results))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}

func TestProspectRepository_DeleteCascadesOutbox(t *testing.T) {
	db := setupTestDB(t)
	prospectRepo := NewProspectRepository(db)
	outboxRepo := NewOutboxRepository(db)
	ctx := context.Background()

	p := createTestProspect(t, db, "cascade_me")

	item := &models.OutboxItem{
		ProspectID: p.ID,
		Handle:     p.Handle,
		Platform:   p.Platform,
		Action:     models.ActionFollow,
		Priority:   1,
	}
	if err := outboxRepo.Enqueue(ctx, item); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := prospectRepo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := outboxRepo.Get(ctx, item.ID); !errors.Is(err, ErrOutboxItemNotFound) {
		t.Errorf("expected outbox item to cascade, got %v", err)
	}
	if err := prospectRepo.Delete(ctx, p.ID); !errors.Is(err, ErrProspectNotFound) {
		t.Errorf("expected ErrProspectNotFound on second delete, got %v", err)
	}
}
