package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// Usage repository errors.
var (
	ErrUsageRecordNotFound = errors.New("usage record not found")
	ErrInvalidUsageRecord  = errors.New("invalid usage record")
)

// UsageRepository persists the append-only log of consumed API actions.
// The quota tracker restores today's spend from it on startup.
type UsageRepository struct {
	db *DB
}

// NewUsageRepository creates a new UsageRepository.
func NewUsageRepository(db *DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Record appends a consumed action. The day column is derived from the
// record's own clock so counts group by the operator's calendar day.
func (r *UsageRepository) Record(ctx context.Context, record *models.ActionUsage) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUsageRecord, err)
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}
	day := record.RecordedAt.Format("2006-01-02")

	var metadataJSON *string
	if record.Metadata != nil {
		data, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		s := string(data)
		metadataJSON = &s
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO action_usage (
			id, action, platform, campaign_id, prospect_id, day, recorded_at, metadata_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		string(record.Action),
		string(record.Platform),
		nullString(record.CampaignID),
		nullString(record.ProspectID),
		day,
		record.RecordedAt.UTC().Format(time.RFC3339),
		metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}

	return nil
}

// Get retrieves a usage record by ID.
func (r *UsageRepository) Get(ctx context.Context, id string) (*models.ActionUsage, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, action, platform, campaign_id, prospect_id, recorded_at, metadata_json
		FROM action_usage WHERE id = ?
	`, id)

	record, err := r.scanUsageRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUsageRecordNotFound
		}
		return nil, err
	}
	return record, nil
}

// Query retrieves usage records matching the given filters, newest
// first.
func (r *UsageRepository) Query(ctx context.Context, q models.UsageQuery) ([]*models.ActionUsage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, action, platform, campaign_id, prospect_id, recorded_at, metadata_json
		FROM action_usage WHERE 1=1`
	args := []any{}

	if q.Action != nil {
		query += ` AND action = ?`
		args = append(args, string(*q.Action))
	}
	if q.Platform != nil {
		query += ` AND platform = ?`
		args = append(args, string(*q.Platform))
	}
	if q.CampaignID != nil {
		query += ` AND campaign_id = ?`
		args = append(args, *q.CampaignID)
	}
	if q.Since != nil {
		query += ` AND recorded_at >= ?`
		args = append(args, q.Since.UTC().Format(time.RFC3339))
	}
	if q.Until != nil {
		query += ` AND recorded_at < ?`
		args = append(args, q.Until.UTC().Format(time.RFC3339))
	}

	query += ` ORDER BY recorded_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer rows.Close()

	var records []*models.ActionUsage
	for rows.Next() {
		record, err := r.scanUsageRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage records: %w", err)
	}

	return records, nil
}

// CountsForDay returns per-action consumed counts for one calendar day
// (YYYY-MM-DD). The tracker seeds its counters with this at startup.
func (r *UsageRepository) CountsForDay(ctx context.Context, day string) (map[models.ActionKind]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT action, COUNT(*) FROM action_usage WHERE day = ? GROUP BY action
	`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to count usage for day: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ActionKind]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("failed to scan usage count: %w", err)
		}
		counts[models.ActionKind(action)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage counts: %w", err)
	}

	return counts, nil
}

// DailyBreakdown returns consumed counts grouped by day and action,
// newest day first.
func (r *UsageRepository) DailyBreakdown(ctx context.Context, since, until time.Time, limit int) ([]*models.DailyActionUsage, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT day, action, COUNT(*)
		FROM action_usage
		WHERE recorded_at >= ? AND recorded_at < ?
		GROUP BY day, action
		ORDER BY day DESC, action
		LIMIT ?
	`, since.UTC().Format(time.RFC3339), until.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily usage: %w", err)
	}
	defer rows.Close()

	var breakdown []*models.DailyActionUsage
	for rows.Next() {
		var du models.DailyActionUsage
		var action string
		if err := rows.Scan(&du.Date, &action, &du.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		du.Action = models.ActionKind(action)
		breakdown = append(breakdown, &du)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily usage: %w", err)
	}

	return breakdown, nil
}

// DeleteOlderThan removes usage records older than the given time, at
// most limit rows per call.
func (r *UsageRepository) DeleteOlderThan(ctx context.Context, before time.Time, limit int) (int64, error) {
	if limit <= 0 {
		limit = 1000
	}

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM action_usage WHERE id IN (
			SELECT id FROM action_usage WHERE recorded_at < ? ORDER BY recorded_at LIMIT ?
		)
	`, before.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old usage records: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted count: %w", err)
	}
	return count, nil
}

func (r *UsageRepository) scanUsageRow(row rowScanner) (*models.ActionUsage, error) {
	var record models.ActionUsage
	var action, platform, recordedAt string
	var campaignID, prospectID, metadataJSON sql.NullString

	err := row.Scan(
		&record.ID,
		&action,
		&platform,
		&campaignID,
		&prospectID,
		&recordedAt,
		&metadataJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan usage record: %w", err)
	}

	record.Action = models.ActionKind(action)
	record.Platform = models.Platform(platform)
	record.CampaignID = campaignID.String
	record.ProspectID = prospectID.String
	if t, err := time.Parse(time.RFC3339, recordedAt); err == nil {
		record.RecordedAt = t
	}
	if metadataJSON.Valid {
		if err := json.Unmarshal([]byte(metadataJSON.String), &record.Metadata); err != nil {
			r.db.logger.Warn().Err(err).Str("usage_id", record.ID).Msg("failed to parse usage metadata")
		}
	}

	return &record, nil
}
