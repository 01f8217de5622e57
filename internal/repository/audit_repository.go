package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ingenzi/console-gateway/internal/models"
)

// AuditRepository persists the console action trail.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert writes one trail entry. ID and CreatedAt are filled in when absent.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, username, action, resource, resource_id, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Username, entry.Action, entry.Resource, entry.ResourceID,
		entry.Details, entry.IPAddress, entry.UserAgent, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries, optionally scoped to a username.
func (r *AuditRepository) ListRecent(ctx context.Context, username string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	entries := make([]models.AuditLog, 0, limit)
	if username != "" {
		const query = `SELECT id, username, action, resource, resource_id, details, ip_address, user_agent, created_at
			FROM audit_logs WHERE username = $1 ORDER BY created_at DESC LIMIT $2`
		if err := r.db.SelectContext(ctx, &entries, query, username, limit); err != nil {
			return nil, fmt.Errorf("list audit logs: %w", err)
		}
		return entries, nil
	}
	const query = `SELECT id, username, action, resource, resource_id, details, ip_address, user_agent, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return entries, nil
}

// PurgeOlderThan removes entries past the retention window.
func (r *AuditRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM audit_logs WHERE created_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge audit logs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}
