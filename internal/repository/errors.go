package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Sentinel errors surfaced by all repositories. Services and handlers branch
// on these instead of inspecting driver errors.
var (
	// ErrNotFound — the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict — the transaction lost a concurrency race (serialization
	// failure, deadlock, lock timeout). Callers may retry.
	ErrConflict = errors.New("concurrent modification")
	// ErrDuplicate — a unique constraint (position code) was violated.
	ErrDuplicate = errors.New("duplicate key")
)

// Postgres SQLSTATEs worth distinguishing.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
)

// translate maps driver-level errors onto the repository sentinels.
// Anything unrecognized passes through as a storage failure.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return ErrConflict
		case pgUniqueViolation:
			return ErrDuplicate
		}
	}
	return err
}
