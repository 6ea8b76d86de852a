package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// Outbox repository errors.
var (
	ErrOutboxItemNotFound = errors.New("outbox item not found")
	ErrOutboxEmpty        = errors.New("no claimable outbox item")
)

// OutboxRepository persists planned steps awaiting execution. The
// campaign runner claims items under short leases; an expired lease
// makes the item claimable again, so a crashed run never strands work.
type OutboxRepository struct {
	db *DB
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db *DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// OutboxQuery defines filters for listing outbox items.
type OutboxQuery struct {
	CampaignID *string              // Filter by campaign
	ProspectID *string              // Filter by prospect
	Status     *models.OutboxStatus // Filter by lifecycle status
	Limit      int                  // Max results to return
}

// Enqueue inserts planned steps as pending items, all in one
// transaction.
func (r *OutboxRepository) Enqueue(ctx context.Context, items ...*models.OutboxItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin enqueue: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if item.Status == "" {
			item.Status = models.OutboxStatusPending
		}
		item.CreatedAt = now
		item.UpdatedAt = now

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO outbox_items (
				id, campaign_id, prospect_id, handle, platform, action, priority,
				reason, message, post_id, status, attempts, last_error,
				lease_until, sent_at, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			item.ID,
			nullString(item.CampaignID),
			item.ProspectID,
			item.Handle,
			string(item.Platform),
			string(item.Action),
			item.Priority,
			nullString(item.Reason),
			nullString(item.Message),
			nullString(item.PostID),
			string(item.Status),
			item.Attempts,
			nullString(item.LastError),
			nil,
			nil,
			item.CreatedAt.Format(time.RFC3339),
			item.UpdatedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to insert outbox item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit enqueue: %w", err)
	}
	return nil
}

// ClaimNext atomically claims the next executable item: the oldest
// pending item, or one whose lease has expired. The claim increments
// attempts and holds the item under a lease until now+leaseFor.
// Returns ErrOutboxEmpty when nothing is claimable.
func (r *OutboxRepository) ClaimNext(ctx context.Context, campaignID string, leaseFor time.Duration) (*models.OutboxItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	query := `
		SELECT id FROM outbox_items
		WHERE (status = ? OR (status = ? AND lease_until < ?))`
	args := []any{
		string(models.OutboxStatusPending),
		string(models.OutboxStatusLeased),
		now.Format(time.RFC3339),
	}
	if campaignID != "" {
		query += ` AND campaign_id = ?`
		args = append(args, campaignID)
	}
	query += ` ORDER BY created_at, priority LIMIT 1`

	var id string
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOutboxEmpty
		}
		return nil, fmt.Errorf("failed to select claimable item: %w", err)
	}

	leaseUntil := now.Add(leaseFor)
	if _, err := tx.ExecContext(ctx, `
		UPDATE outbox_items
		SET status = ?, lease_until = ?, attempts = attempts + 1, updated_at = ?
		WHERE id = ?
	`,
		string(models.OutboxStatusLeased),
		leaseUntil.Format(time.RFC3339),
		now.Format(time.RFC3339),
		id,
	); err != nil {
		return nil, fmt.Errorf("failed to lease outbox item: %w", err)
	}

	item, err := r.getWithQuerier(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}
	return item, nil
}

// UpdateStatus moves an item to the given status, recording the error
// message for failures. Sent items get sent_at; every transition
// releases the lease.
func (r *OutboxRepository) UpdateStatus(ctx context.Context, id string, status models.OutboxStatus, errorMessage string) error {
	now := time.Now().UTC()

	var sentAt *string
	if status == models.OutboxStatusSent {
		s := now.Format(time.RFC3339)
		sentAt = &s
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE outbox_items
		SET status = ?, last_error = ?, lease_until = NULL,
			sent_at = COALESCE(?, sent_at), updated_at = ?
		WHERE id = ?
	`,
		string(status),
		nullString(errorMessage),
		sentAt,
		now.Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update outbox item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrOutboxItemNotFound
	}
	return nil
}

// Get retrieves an outbox item by ID.
func (r *OutboxRepository) Get(ctx context.Context, id string) (*models.OutboxItem, error) {
	return r.getWithQuerier(ctx, r.db, id)
}

type querier interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func (r *OutboxRepository) getWithQuerier(ctx context.Context, q querier, id string) (*models.OutboxItem, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, campaign_id, prospect_id, handle, platform, action, priority,
			reason, message, post_id, status, attempts, last_error,
			lease_until, sent_at, created_at, updated_at
		FROM outbox_items WHERE id = ?
	`, id)

	item, err := r.scanItemRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOutboxItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// List retrieves outbox items matching the given filters, oldest
// first within priority order.
func (r *OutboxRepository) List(ctx context.Context, q OutboxQuery) ([]*models.OutboxItem, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, campaign_id, prospect_id, handle, platform, action, priority,
		reason, message, post_id, status, attempts, last_error,
		lease_until, sent_at, created_at, updated_at
		FROM outbox_items WHERE 1=1`
	args := []any{}

	if q.CampaignID != nil {
		query += ` AND campaign_id = ?`
		args = append(args, *q.CampaignID)
	}
	if q.ProspectID != nil {
		query += ` AND prospect_id = ?`
		args = append(args, *q.ProspectID)
	}
	if q.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*q.Status))
	}

	query += ` ORDER BY created_at, priority LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox items: %w", err)
	}
	defer rows.Close()

	var items []*models.OutboxItem
	for rows.Next() {
		item, err := r.scanItemRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox items: %w", err)
	}

	return items, nil
}

// HasAction reports whether a live or sent step of the given kind
// already exists for the prospect. Planning uses this to stay
// idempotent across repeated runs.
func (r *OutboxRepository) HasAction(ctx context.Context, prospectID string, action models.ActionKind) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM outbox_items
		WHERE prospect_id = ? AND action = ? AND status IN (?, ?, ?)
	`,
		prospectID,
		string(action),
		string(models.OutboxStatusPending),
		string(models.OutboxStatusLeased),
		string(models.OutboxStatusSent),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check outbox action: %w", err)
	}
	return count > 0, nil
}

// CountByStatus returns item counts per status, optionally scoped to a
// campaign.
func (r *OutboxRepository) CountByStatus(ctx context.Context, campaignID string) (map[models.OutboxStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM outbox_items WHERE 1=1`
	args := []any{}
	if campaignID != "" {
		query += ` AND campaign_id = ?`
		args = append(args, campaignID)
	}
	query += ` GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count outbox items: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.OutboxStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outbox count: %w", err)
		}
		counts[models.OutboxStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox counts: %w", err)
	}

	return counts, nil
}

// Remove deletes an outbox item by ID.
func (r *OutboxRepository) Remove(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM outbox_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete outbox item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrOutboxItemNotFound
	}
	return nil
}

func (r *OutboxRepository) scanItemRow(row rowScanner) (*models.OutboxItem, error) {
	var item models.OutboxItem
	var platform, action, status string
	var campaignID, reason, message, postID, lastError sql.NullString
	var leaseUntil, sentAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&item.ID,
		&campaignID,
		&item.ProspectID,
		&item.Handle,
		&platform,
		&action,
		&item.Priority,
		&reason,
		&message,
		&postID,
		&status,
		&item.Attempts,
		&lastError,
		&leaseUntil,
		&sentAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan outbox item: %w", err)
	}

	item.CampaignID = campaignID.String
	item.Platform = models.Platform(platform)
	item.Action = models.ActionKind(action)
	item.Status = models.OutboxStatus(status)
	item.Reason = reason.String
	item.Message = message.String
	item.PostID = postID.String
	item.LastError = lastError.String

	if leaseUntil.Valid {
		if t, err := time.Parse(time.RFC3339, leaseUntil.String); err == nil {
			item.LeaseUntil = &t
		}
	}
	if sentAt.Valid {
		if t, err := time.Parse(time.RFC3339, sentAt.String); err == nil {
			item.SentAt = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		item.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		item.UpdatedAt = t
	}

	return &item, nil
}
