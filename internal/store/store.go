package store

import (
	"context"
	"errors"

	"github.com/Undertone0809/ecjtu/internal/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Sessions() Sessions

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Sessions interface {
	// Upsert writes the session for a student, replacing any existing record.
	// One record per student, last write wins.
	Upsert(ctx context.Context, s domain.StoredSession) error

	// GetByStudentID returns the persisted session for a student.
	GetByStudentID(ctx context.Context, studentID string) (domain.StoredSession, error)

	// GetByAccessToken returns the session whose current access token matches
	// exactly. Rotated-away tokens match nothing.
	GetByAccessToken(ctx context.Context, token string) (domain.StoredSession, error)
}
