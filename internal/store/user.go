package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classgrid/classgrid-backend/internal/model"
)

// UserStore handles user data access.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, email, first_name, last_name, password_hash, child_ids, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	var childRaw []byte
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &childRaw,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	if u.Children, err = decodeMembers(childRaw); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by id, children loaded.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

// Create inserts a new user. Duplicate emails surface as
// ErrUniqueViolation.
func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, first_name, last_name, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return translateError(err)
}

// Children retrieves the students linked to a parent subject. Read-only
// here; the links are written through the generic Link surface.
func (s *UserStore) Children(ctx context.Context, parentID string) ([]model.Member, error) {
	var childRaw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT child_ids FROM users WHERE id = $1`, parentID,
	).Scan(&childRaw)
	if err != nil {
		return nil, translateError(err)
	}
	return decodeMembers(childRaw)
}
