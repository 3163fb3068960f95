package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrUniqueViolation is the store's authoritative rejection of a
	// duplicate — join-code collisions the generator's best-effort
	// check missed surface as this. Callers retry the whole
	// generate+insert cycle, never reinsert the same value.
	ErrUniqueViolation = errors.New("store: unique constraint violated")
)

// translateError maps driver errors onto the store's error taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrUniqueViolation
	}
	return err
}
