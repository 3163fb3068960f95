package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classgrid/classgrid-backend/internal/model"
)

// OrgStore handles organization data access.
type OrgStore struct {
	pool *pgxpool.Pool
}

// NewOrgStore creates a new OrgStore.
func NewOrgStore(pool *pgxpool.Pool) *OrgStore {
	return &OrgStore{pool: pool}
}

const orgColumns = `id, name, COALESCE(description, ''), COALESCE(icon, ''), owner_id,
	COALESCE(join_code, ''), admin_ids, teacher_ids, student_ids, parent_ids, member_ids,
	created_at, updated_at`

func scanOrg(row interface{ Scan(...any) error }) (*model.Organization, error) {
	org := &model.Organization{}
	var adminRaw, teacherRaw, studentRaw, parentRaw, memberRaw []byte
	err := row.Scan(
		&org.ID, &org.Name, &org.Description, &org.Icon, &org.OwnerID,
		&org.JoinCode, &adminRaw, &teacherRaw, &studentRaw, &parentRaw, &memberRaw,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	if org.Admins, err = decodeMembers(adminRaw); err != nil {
		return nil, err
	}
	if org.Teachers, err = decodeMembers(teacherRaw); err != nil {
		return nil, err
	}
	if org.Students, err = decodeMembers(studentRaw); err != nil {
		return nil, err
	}
	if org.Parents, err = decodeMembers(parentRaw); err != nil {
		return nil, err
	}
	if org.Members, err = decodeMembers(memberRaw); err != nil {
		return nil, err
	}
	return org, nil
}

// GetByID retrieves an organization with its owner reference and
// membership sets loaded.
func (s *OrgStore) GetByID(ctx context.Context, id string) (*model.Organization, error) {
	return scanOrg(s.pool.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id))
}

// GetByJoinCode retrieves an organization by its general join code.
func (s *OrgStore) GetByJoinCode(ctx context.Context, code string) (*model.Organization, error) {
	return scanOrg(s.pool.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE join_code = $1`, code))
}

// ListForUser retrieves organizations the user owns or is a member of.
func (s *OrgStore) ListForUser(ctx context.Context, userID string) ([]model.Organization, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+orgColumns+` FROM organizations
		 WHERE owner_id = $1
		    OR member_ids @> to_jsonb($1::text)
		    OR admin_ids @> to_jsonb($1::text)
		    OR teacher_ids @> to_jsonb($1::text)
		    OR student_ids @> to_jsonb($1::text)
		    OR parent_ids @> to_jsonb($1::text)
		 ORDER BY created_at`, userID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		org, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, *org)
	}
	return orgs, translateError(rows.Err())
}

// Create inserts a new organization. A join-code collision that slipped
// past the generator's precheck comes back as ErrUniqueViolation.
func (s *OrgStore) Create(ctx context.Context, org *model.Organization) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO organizations (id, name, description, icon, owner_id, join_code)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		org.ID, org.Name, org.Description, org.Icon, org.OwnerID, org.JoinCode,
	).Scan(&org.CreatedAt, &org.UpdatedAt)
	return translateError(err)
}

// Delete removes an organization; classes and their join codes cascade.
func (s *OrgStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
