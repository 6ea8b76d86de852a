package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// Prospect repository errors.
var (
	ErrProspectNotFound  = errors.New("prospect not found")
	ErrDuplicateProspect = errors.New("prospect already exists")
)

// ProspectRepository handles prospect persistence.
type ProspectRepository struct {
	db *DB
}

// NewProspectRepository creates a new ProspectRepository.
func NewProspectRepository(db *DB) *ProspectRepository {
	return &ProspectRepository{db: db}
}

// ProspectQuery defines filters for listing prospects.
type ProspectQuery struct {
	Platform      *models.Platform // Filter by platform
	MinFollowers  *int             // Follower count at or above this value
	HandleLike    string           // Substring match on handle
	EngagedWithUs *bool            // Filter by prior engagement
	Limit         int              // Max results to return
}

// Create inserts a new prospect. Returns ErrDuplicateProspect when the
// (platform, handle) pair is already stored.
func (r *ProspectRepository) Create(ctx context.Context, p *models.Prospect) error {
	return r.createWithExecutor(ctx, r.db, p)
}

// CreateWithTx inserts a new prospect using an existing transaction.
func (r *ProspectRepository) CreateWithTx(ctx context.Context, tx *sql.Tx, p *models.Prospect) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	return r.createWithExecutor(ctx, tx, p)
}

type execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

func (r *ProspectRepository) createWithExecutor(ctx context.Context, ex execer, p *models.Prospect) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	keywordsJSON, postsJSON, mutualsJSON, err := marshalProspectColumns(p)
	if err != nil {
		return err
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO prospects (
			id, platform_user_id, platform, name, handle, follower_count, bio,
			industry, location, keywords_json, recent_posts_json,
			mutual_connections_json, last_activity_at, has_engaged_with_us,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		nullString(p.PlatformID),
		string(p.Platform),
		nullString(p.Name),
		p.Handle,
		p.FollowerCount,
		nullString(p.Bio),
		nullString(p.Industry),
		nullString(p.Location),
		keywordsJSON,
		postsJSON,
		mutualsJSON,
		nullTime(p.LastActivityAt),
		boolToInt(p.HasEngagedWithUs),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s on %s", ErrDuplicateProspect, p.Handle, p.Platform)
		}
		return fmt.Errorf("failed to insert prospect: %w", err)
	}

	return nil
}

// Update rewrites a stored prospect's mutable fields.
func (r *ProspectRepository) Update(ctx context.Context, p *models.Prospect) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		return fmt.Errorf("prospect id is required")
	}
	p.UpdatedAt = time.Now().UTC()

	keywordsJSON, postsJSON, mutualsJSON, err := marshalProspectColumns(p)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE prospects SET
			platform_user_id = ?, platform = ?, name = ?, handle = ?,
			follower_count = ?, bio = ?, industry = ?, location = ?,
			keywords_json = ?, recent_posts_json = ?,
			mutual_connections_json = ?, last_activity_at = ?,
			has_engaged_with_us = ?, updated_at = ?
		WHERE id = ?
	`,
		nullString(p.PlatformID),
		string(p.Platform),
		nullString(p.Name),
		p.Handle,
		p.FollowerCount,
		nullString(p.Bio),
		nullString(p.Industry),
		nullString(p.Location),
		keywordsJSON,
		postsJSON,
		mutualsJSON,
		nullTime(p.LastActivityAt),
		boolToInt(p.HasEngagedWithUs),
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prospect: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrProspectNotFound
	}
	return nil
}

// Get retrieves a prospect by ID.
func (r *ProspectRepository) Get(ctx context.Context, id string) (*models.Prospect, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, platform_user_id, platform, name, handle, follower_count,
			bio, industry, location, keywords_json, recent_posts_json,
			mutual_connections_json, last_activity_at, has_engaged_with_us,
			created_at, updated_at
		FROM prospects WHERE id = ?
	`, id)
	return r.scanProspect(row)
}

// GetByHandle retrieves a prospect by its (platform, handle) identity.
func (r *ProspectRepository) GetByHandle(ctx context.Context, platform models.Platform, handle string) (*models.Prospect, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, platform_user_id, platform, name, handle, follower_count,
			bio, industry, location, keywords_json, recent_posts_json,
			mutual_connections_json, last_activity_at, has_engaged_with_us,
			created_at, updated_at
		FROM prospects WHERE platform = ? AND handle = ?
	`, string(platform), handle)
	return r.scanProspect(row)
}

// List retrieves prospects matching the given filters, newest first.
func (r *ProspectRepository) List(ctx context.Context, q ProspectQuery) ([]*models.Prospect, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, platform_user_id, platform, name, handle, follower_count,
		bio, industry, location, keywords_json, recent_posts_json,
		mutual_connections_json, last_activity_at, has_engaged_with_us,
		created_at, updated_at
		FROM prospects WHERE 1=1`
	args := []any{}

	if q.Platform != nil {
		query += ` AND platform = ?`
		args = append(args, string(*q.Platform))
	}
	if q.MinFollowers != nil {
		query += ` AND follower_count >= ?`
		args = append(args, *q.MinFollowers)
	}
	if q.HandleLike != "" {
		query += ` AND handle LIKE ?`
		args = append(args, "%"+q.HandleLike+"%")
	}
	if q.EngagedWithUs != nil {
		query += ` AND has_engaged_with_us = ?`
		args = append(args, boolToInt(*q.EngagedWithUs))
	}

	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prospects: %w", err)
	}
	defer rows.Close()

	var prospects []*models.Prospect
	for rows.Next() {
		p, err := r.scanProspectFromRows(rows)
		if err != nil {
			return nil, err
		}
		prospects = append(prospects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prospects: %w", err)
	}

	return prospects, nil
}

// Count returns the number of stored prospects.
func (r *ProspectRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prospects`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count prospects: %w", err)
	}
	return count, nil
}

// Delete removes a prospect by ID. Outbox items cascade.
func (r *ProspectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM prospects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete prospect: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrProspectNotFound
	}
	return nil
}

func marshalProspectColumns(p *models.Prospect) (keywords, posts, mutuals *string, err error) {
	if len(p.Keywords) > 0 {
		data, err := json.Marshal(p.Keywords)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal keywords: %w", err)
		}
		s := string(data)
		keywords = &s
	}
	if len(p.RecentPosts) > 0 {
		data, err := json.Marshal(p.RecentPosts)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal recent posts: %w", err)
		}
		s := string(data)
		posts = &s
	}
	if len(p.MutualConnections) > 0 {
		data, err := json.Marshal(p.MutualConnections)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal mutual connections: %w", err)
		}
		s := string(data)
		mutuals = &s
	}
	return keywords, posts, mutuals, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ProspectRepository) scanProspect(row *sql.Row) (*models.Prospect, error) {
	p, err := r.scanProspectRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProspectNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProspectRepository) scanProspectFromRows(rows *sql.Rows) (*models.Prospect, error) {
	return r.scanProspectRow(rows)
}

func (r *ProspectRepository) scanProspectRow(row rowScanner) (*models.Prospect, error) {
	var p models.Prospect
	var platform string
	var platformUserID, name, bio, industry, location sql.NullString
	var keywordsJSON, postsJSON, mutualsJSON sql.NullString
	var lastActivity sql.NullString
	var engaged int
	var createdAt, updatedAt string

	err := row.Scan(
		&p.ID,
		&platformUserID,
		&platform,
		&name,
		&p.Handle,
		&p.FollowerCount,
		&bio,
		&industry,
		&location,
		&keywordsJSON,
		&postsJSON,
		&mutualsJSON,
		&lastActivity,
		&engaged,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan prospect: %w", err)
	}

	p.PlatformID = platformUserID.String
	p.Platform = models.Platform(platform)
	p.Name = name.String
	p.Bio = bio.String
	p.Industry = industry.String
	p.Location = location.String
	p.HasEngagedWithUs = engaged != 0

	if keywordsJSON.Valid {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &p.Keywords); err != nil {
			r.db.logger.Warn().Err(err).Str("prospect_id", p.ID).Msg("failed to parse prospect keywords")
		}
	}
	if postsJSON.Valid {
		if err := json.Unmarshal([]byte(postsJSON.String), &p.RecentPosts); err != nil {
			r.db.logger.Warn().Err(err).Str("prospect_id", p.ID).Msg("failed to parse prospect posts")
		}
	}
	if mutualsJSON.Valid {
		if err := json.Unmarshal([]byte(mutualsJSON.String), &p.MutualConnections); err != nil {
			r.db.logger.Warn().Err(err).Str("prospect_id", p.ID).Msg("failed to parse mutual connections")
		}
	}
	if lastActivity.Valid {
		if t, err := time.Parse(time.RFC3339, lastActivity.String); err == nil {
			p.LastActivityAt = t
		}
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = t
	}

	return &p, nil
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
