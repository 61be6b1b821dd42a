package recordstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreAppendAndGetByRequestID(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	first := errors.New(errors.KindNetwork).RequestID("req-1").With("host", "api").Build().Record()
	second := errors.New(errors.KindTimeout).RequestID("req-1").Operation("orders.get").Build().Record()
	other := errors.New(errors.KindBusiness).RequestID("req-2").Build().Record()

	for _, rec := range []errors.Record{first, second, other} {
		if err := store.Append(ctx, NewID(), rec); err != nil {
			t.Fatalf("failed to append record: %v", err)
		}
	}

	entries, err := store.GetByRequestID(ctx, "req-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "network", entries[0].Record.Kind)
	assert.Equal(t, errors.CodeConnectionFailed, entries[0].Record.Code)
	assert.Equal(t, map[string]string{"host": "api"}, entries[0].Record.Context)
	assert.False(t, entries[0].Record.Timestamp.IsZero(), "append should stamp the timestamp")
	assert.Equal(t, "timeout", entries[1].Record.Kind)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)

	none, err := store.GetByRequestID(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStoreRejectsEmptyID(t *testing.T) {
	store := newTestStore(t)

	err := store.Append(t.Context(), "", errors.New(errors.KindInternal).Build().Record())
	require.Error(t, err)

	var e errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.KindValidation, e.Kind())
}

func TestSQLiteStoreDuplicateIDIsInternal(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	rec := errors.New(errors.KindInternal).Build().Record()

	require.NoError(t, store.Append(ctx, "same", rec))
	err := store.Append(ctx, "same", rec)
	require.Error(t, err)

	var e errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.KindInternal, e.Kind())
	assert.Equal(t, "append", e.Context().Operation().Unwrap())
}

func TestSQLiteStoreGetRange(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := range 5 {
		rec := errors.New(errors.KindRateLimit).Build().Record()
		rec.Timestamp = base.Add(time.Duration(i) * time.Minute)
		if err := store.Append(ctx, NewID(), rec); err != nil {
			t.Fatalf("failed to append record %d: %v", i, err)
		}
	}

	entries, err := store.GetRange(ctx, base.Add(time.Minute), base.Add(3*time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Record.Timestamp.Equal(base.Add(time.Minute)))
	assert.True(t, entries[2].Record.Timestamp.Equal(base.Add(3*time.Minute)))

	_, err = store.GetRange(ctx, base, base.Add(-time.Second))
	assert.Error(t, err)
}

func TestSQLiteStoreCountByCodeAndPrune(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(48 * time.Hour)

	add := func(kind errors.Kind, at time.Time) {
		rec := errors.New(kind).Build().Record()
		rec.Timestamp = at
		require.NoError(t, store.Append(ctx, NewID(), rec))
	}
	add(errors.KindTimeout, old)
	add(errors.KindTimeout, recent)
	add(errors.KindTimeout, recent)
	add(errors.KindValidation, recent)

	counts, err := store.CountByCode(ctx, recent)
	require.NoError(t, err)
	assert.Equal(t, map[errors.Code]int{errors.CodeTimeout: 2, errors.CodeInvalidInput: 1}, counts)

	removed, err := store.Prune(ctx, recent)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	all, err := store.CountByCode(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, all[errors.CodeTimeout])
}
