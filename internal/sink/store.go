package sink

import (
	"context"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/recordstore"
)

// StoreSink persists records in a recordstore.Store under fresh ids.
type StoreSink struct {
	store recordstore.Store
	newID func() string
}

// NewStoreSink returns a sink appending to store. Closing the sink closes the store.
func NewStoreSink(store recordstore.Store) *StoreSink {
	return &StoreSink{store: store, newID: recordstore.NewID}
}

func (s *StoreSink) Emit(ctx context.Context, rec errors.Record) error {
	return s.store.Append(ctx, s.newID(), Stamp(rec))
}

func (s *StoreSink) Close() error { return s.store.Close() }
