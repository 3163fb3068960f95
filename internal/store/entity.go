// Package store is the persistence layer. Besides the per-entity query
// types it exposes EntityStore, a small generic mutate surface (create
// with a caller-supplied id, full-field update, delete, link, unlink)
// that the undo log replays inverses through. Every call is one atomic
// statement or transaction.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classgrid/classgrid-backend/internal/model"
)

// entityColumns whitelists, per entity type, the columns the generic
// mutate surface may touch. Anything else in a data map is rejected.
var entityColumns = map[string]map[string]bool{
	"organizations": {
		"name": true, "description": true, "icon": true,
		"owner_id": true, "join_code": true,
		"admin_ids": true, "teacher_ids": true, "student_ids": true,
		"parent_ids": true, "member_ids": true,
	},
	"classes": {
		"name": true, "description": true, "icon": true,
		"owner_id": true, "organization_id": true,
		"join_code_student": true, "join_code_teacher": true, "join_code_parent": true,
		"admin_ids": true, "teacher_ids": true, "student_ids": true, "parent_ids": true,
	},
	"users": {
		"email": true, "first_name": true, "last_name": true,
		"password_hash": true, "child_ids": true,
	},
}

// linkColumns maps (entity type, link label) to the jsonb membership
// column holding the relation.
var linkColumns = map[string]map[string]string{
	"organizations": {
		"admins":   "admin_ids",
		"teachers": "teacher_ids",
		"students": "student_ids",
		"parents":  "parent_ids",
		"members":  "member_ids",
	},
	"classes": {
		"admins":   "admin_ids",
		"teachers": "teacher_ids",
		"students": "student_ids",
		"parents":  "parent_ids",
	},
	"users": {
		"children": "child_ids",
	},
}

// EntityStore executes generic entity mutations. It satisfies
// undo.Mutator.
type EntityStore struct {
	pool *pgxpool.Pool
}

// NewEntityStore creates a new EntityStore.
func NewEntityStore(pool *pgxpool.Pool) *EntityStore {
	return &EntityStore{pool: pool}
}

func columnsFor(entityType string) (map[string]bool, error) {
	cols, ok := entityColumns[entityType]
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}
	return cols, nil
}

func linkColumnFor(entityType, label string) (string, error) {
	labels, ok := linkColumns[entityType]
	if !ok {
		return "", fmt.Errorf("unknown entity type %q", entityType)
	}
	col, ok := labels[label]
	if !ok {
		return "", fmt.Errorf("unknown link label %q on %s", label, entityType)
	}
	return col, nil
}

// CreateWithID inserts an entity under a caller-supplied id. Used both
// for normal creation (ids are minted by the caller) and for restoring a
// deleted entity under its original id.
func (s *EntityStore) CreateWithID(ctx context.Context, entityType, id string, data map[string]any) error {
	allowed, err := columnsFor(entityType)
	if err != nil {
		return err
	}

	cols := []string{"id"}
	placeholders := []string{"$1"}
	args := []any{id}
	for col, val := range data {
		if !allowed[col] {
			return fmt.Errorf("column %q not allowed on %s", col, entityType)
		}
		cols = append(cols, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, val)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		entityType, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)
	_, err = s.pool.Exec(ctx, query, args...)
	return translateError(err)
}

// Update replaces the named fields of an entity. The data map is a full
// snapshot of the fields being set, not a diff.
func (s *EntityStore) Update(ctx context.Context, entityType, id string, data map[string]any) error {
	allowed, err := columnsFor(entityType)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	sets := make([]string, 0, len(data)+1)
	args := []any{id}
	for col, val := range data {
		if !allowed[col] {
			return fmt.Errorf("column %q not allowed on %s", col, entityType)
		}
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", entityType, strings.Join(sets, ", "))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an entity by id.
func (s *EntityStore) Delete(ctx context.Context, entityType, id string) error {
	if _, err := columnsFor(entityType); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", entityType), id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Link attaches targetIDs under the named relation, skipping ids already
// present. The row is locked for the read-modify-write.
func (s *EntityStore) Link(ctx context.Context, entityType, id, label string, targetIDs []string) error {
	return s.mutateMembers(ctx, entityType, id, label, func(members []model.Member) []model.Member {
		for _, target := range targetIDs {
			if !model.ContainsMember(members, target) {
				members = append(members, model.Member{ID: target})
			}
		}
		return members
	})
}

// Unlink detaches targetIDs from the named relation. Absent ids are
// ignored.
func (s *EntityStore) Unlink(ctx context.Context, entityType, id, label string, targetIDs []string) error {
	drop := make(map[string]bool, len(targetIDs))
	for _, target := range targetIDs {
		drop[target] = true
	}
	return s.mutateMembers(ctx, entityType, id, label, func(members []model.Member) []model.Member {
		kept := members[:0]
		for _, m := range members {
			if !drop[m.ID] {
				kept = append(kept, m)
			}
		}
		return kept
	})
}

func (s *EntityStore) mutateMembers(ctx context.Context, entityType, id, label string, apply func([]model.Member) []model.Member) error {
	col, err := linkColumnFor(entityType, label)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return translateError(err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 FOR UPDATE", col, entityType)
	if err := tx.QueryRow(ctx, query, id).Scan(&raw); err != nil {
		return translateError(err)
	}

	members, err := decodeMembers(raw)
	if err != nil {
		return fmt.Errorf("decode %s.%s: %w", entityType, col, err)
	}

	members = apply(members)

	encoded, err := json.Marshal(model.MemberIDs(members))
	if err != nil {
		return fmt.Errorf("encode %s.%s: %w", entityType, col, err)
	}

	update := fmt.Sprintf("UPDATE %s SET %s = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1", entityType, col)
	if _, err := tx.Exec(ctx, update, id, encoded); err != nil {
		return translateError(err)
	}

	return translateError(tx.Commit(ctx))
}

// Snapshot reads the whitelisted columns of an entity into a data map
// suitable for CreateWithID. Captured at delete time so the undo log can
// restore the entity under its original id.
func (s *EntityStore) Snapshot(ctx context.Context, entityType, id string) (map[string]any, error) {
	allowed, err := columnsFor(entityType)
	if err != nil {
		return nil, err
	}

	cols := make([]string, 0, len(allowed))
	for col := range allowed {
		cols = append(cols, col)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", strings.Join(cols, ", "), entityType)
	row := s.pool.QueryRow(ctx, query, id)

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := row.Scan(ptrs...); err != nil {
		return nil, translateError(err)
	}

	snapshot := make(map[string]any, len(cols))
	for i, col := range cols {
		if vals[i] != nil {
			snapshot[col] = vals[i]
		}
	}
	return snapshot, nil
}

// decodeMembers parses a jsonb membership array that may contain bare id
// strings, objects with an id field, or be NULL.
func decodeMembers(raw []byte) ([]model.Member, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var members []model.Member
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, err
	}
	return members, nil
}
