package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classgrid/classgrid-backend/internal/model"
)

// ClassStore handles class data access.
type ClassStore struct {
	pool *pgxpool.Pool
}

// NewClassStore creates a new ClassStore.
func NewClassStore(pool *pgxpool.Pool) *ClassStore {
	return &ClassStore{pool: pool}
}

const classColumns = `id, name, COALESCE(description, ''), COALESCE(icon, ''), owner_id, organization_id,
	COALESCE(join_code_student, ''), COALESCE(join_code_teacher, ''), COALESCE(join_code_parent, ''),
	admin_ids, teacher_ids, student_ids, parent_ids, created_at, updated_at`

func scanClass(row interface{ Scan(...any) error }) (*model.Class, error) {
	class := &model.Class{}
	var adminRaw, teacherRaw, studentRaw, parentRaw []byte
	err := row.Scan(
		&class.ID, &class.Name, &class.Description, &class.Icon, &class.OwnerID, &class.OrganizationID,
		&class.JoinCodeStudent, &class.JoinCodeTeacher, &class.JoinCodeParent,
		&adminRaw, &teacherRaw, &studentRaw, &parentRaw, &class.CreatedAt, &class.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	if class.Admins, err = decodeMembers(adminRaw); err != nil {
		return nil, err
	}
	if class.Teachers, err = decodeMembers(teacherRaw); err != nil {
		return nil, err
	}
	if class.Students, err = decodeMembers(studentRaw); err != nil {
		return nil, err
	}
	if class.Parents, err = decodeMembers(parentRaw); err != nil {
		return nil, err
	}
	return class, nil
}

// GetByID retrieves a class with its owner reference and membership sets
// loaded.
func (s *ClassStore) GetByID(ctx context.Context, id string) (*model.Class, error) {
	return scanClass(s.pool.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1`, id))
}

// GetByJoinCode retrieves a class matching the code on any of its three
// role channels.
func (s *ClassStore) GetByJoinCode(ctx context.Context, code string) (*model.Class, error) {
	return scanClass(s.pool.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes
		 WHERE join_code_student = $1 OR join_code_teacher = $1 OR join_code_parent = $1`, code))
}

// ListByOrganization retrieves all classes of an organization.
func (s *ClassStore) ListByOrganization(ctx context.Context, orgID string) ([]model.Class, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+classColumns+` FROM classes WHERE organization_id = $1 ORDER BY created_at`, orgID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *class)
	}
	return classes, translateError(rows.Err())
}

// Create inserts a new class with its three join codes. Any code
// collision that slipped past the generator's precheck comes back as
// ErrUniqueViolation; no code is persisted in that case.
func (s *ClassStore) Create(ctx context.Context, class *model.Class) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO classes (id, name, description, icon, owner_id, organization_id,
		                      join_code_student, join_code_teacher, join_code_parent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		class.ID, class.Name, class.Description, class.Icon, class.OwnerID, class.OrganizationID,
		class.JoinCodeStudent, class.JoinCodeTeacher, class.JoinCodeParent,
	).Scan(&class.CreatedAt, &class.UpdatedAt)
	return translateError(err)
}

// UpdateJoinCodes replaces the three role-channel codes of a class.
func (s *ClassStore) UpdateJoinCodes(ctx context.Context, id, studentCode, teacherCode, parentCode string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE classes
		 SET join_code_student = $2, join_code_teacher = $3, join_code_parent = $4,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1`,
		id, studentCode, teacherCode, parentCode)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a class; its join codes are revoked with it.
func (s *ClassStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// JoinCodeExists answers whether code is present in any join-code field
// across organizations and classes. This is the generator's best-effort
// precheck; the unique indexes remain the authority.
func (s *ClassStore) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM organizations WHERE join_code = $1)
		     OR EXISTS (SELECT 1 FROM classes
		                WHERE join_code_student = $1 OR join_code_teacher = $1 OR join_code_parent = $1)`,
		code,
	).Scan(&exists)
	return exists, translateError(err)
}
