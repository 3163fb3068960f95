package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classgrid/classgrid-backend/internal/model"
)

// AuditStore persists audit events. Writes arrive in batches from the
// audit worker.
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// InsertBatch writes a batch of audit events in one round trip.
func (s *AuditStore) InsertBatch(ctx context.Context, events []model.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		created := e.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		batch.Queue(
			`INSERT INTO audit_events (kind, subject_id, scope_type, scope_id, detail, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			e.Kind, e.SubjectID, e.ScopeType, e.ScopeID, e.Detail, created,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return translateError(err)
		}
	}
	return nil
}

// ListByScope retrieves recent audit events for a scope, newest first.
func (s *AuditStore) ListByScope(ctx context.Context, scopeType, scopeID string, limit int) ([]model.AuditEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, subject_id, scope_type, scope_id, COALESCE(detail, ''), created_at
		 FROM audit_events
		 WHERE scope_type = $1 AND scope_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3`, scopeType, scopeID, limit)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var events []model.AuditEvent
	for rows.Next() {
		var e model.AuditEvent
		if err := rows.Scan(&e.ID, &e.Kind, &e.SubjectID, &e.ScopeType, &e.ScopeID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, translateError(rows.Err())
}
