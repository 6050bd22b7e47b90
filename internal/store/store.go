// internal/store/store.go
//
// Persistence interface for game sessions.
// Implementations:
//   - memory (memory.go): map + RWMutex, lost on restart.
//   - sqlite (sqlite.go): one JSON row per live session, survives restarts.
//
// All implementations hand out copies; a *game.Session returned by Get is
// owned by the caller. Mutations go through Update, which runs fn on a copy
// and stores it only when fn succeeds.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/wordle/apps/grid-server/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a copy of a session by ID.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Update applies fn to the session atomically with respect to other
	// Updates of the same ID. If fn returns an error nothing is stored and
	// the error is returned unchanged. The stored result is returned.
	Update(ctx context.Context, id string, fn func(*game.Session) error) (*game.Session, error)

	// Delete removes a session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Prune removes sessions not updated since before; it returns how many.
	Prune(ctx context.Context, before time.Time) (int, error)

	// Close releases resources.
	Close() error
}
