package recordstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
)

// Entry is one persisted error record.
type Entry struct {
	ID     string
	Record errors.Record
}

// Store persists error records for later inspection.
type Store interface {
	// Append stores rec under id. A zero record timestamp is stamped with the current time.
	Append(ctx context.Context, id string, rec errors.Record) error

	// GetByRequestID retrieves every record correlated to one request, oldest first.
	GetByRequestID(ctx context.Context, requestID string) ([]Entry, error)

	// GetRange retrieves records whose timestamp lies within [start, end].
	GetRange(ctx context.Context, start, end time.Time) ([]Entry, error)

	// CountByCode counts records per code since the given time.
	CountByCode(ctx context.Context, since time.Time) (map[errors.Code]int, error)

	// Prune deletes records older than before and reports how many were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}
