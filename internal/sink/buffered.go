package sink

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/logfields"
	"git.home.luguber.info/inful/svcerr/internal/metrics"
)

const bufferedSinkName = "buffer"

// ErrSinkClosed is returned when emitting to a closed Buffered sink.
var ErrSinkClosed = stdErrors.New("sink closed")

// Buffered collects records and hands them to the next sink in batches.
// A batch is flushed when it reaches size records and on every interval tick.
type Buffered struct {
	next     Sink
	size     int
	timeout  time.Duration
	recorder metrics.Recorder

	mu      sync.Mutex
	pending []errors.Record
	closed  bool

	scheduler gocron.Scheduler
}

// NewBuffered starts a scheduler that flushes into next every interval.
func NewBuffered(next Sink, interval time.Duration, size int, recorder metrics.Recorder) (*Buffered, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("buffered sink: interval must be positive, got %s", interval)
	}
	if size <= 0 {
		return nil, fmt.Errorf("buffered sink: size must be positive, got %d", size)
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	b := &Buffered{
		next:      next,
		size:      size,
		timeout:   interval,
		recorder:  recorder,
		pending:   make([]errors.Record, 0, size),
		scheduler: s,
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(b.flushScheduled),
		gocron.WithName("sink-flush"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create flush job: %w", err)
	}

	s.Start()
	return b, nil
}

func (b *Buffered) Emit(ctx context.Context, rec errors.Record) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrSinkClosed
	}
	b.pending = append(b.pending, Stamp(rec))
	var batch []errors.Record
	if len(b.pending) >= b.size {
		batch = b.take()
	}
	b.mu.Unlock()

	return b.deliver(ctx, batch)
}

// Pending reports how many records wait for the next flush.
func (b *Buffered) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Flush delivers all pending records now.
func (b *Buffered) Flush(ctx context.Context) error {
	b.mu.Lock()
	batch := b.take()
	b.mu.Unlock()
	return b.deliver(ctx, batch)
}

// take must be called with mu held.
func (b *Buffered) take() []errors.Record {
	if len(b.pending) == 0 {
		return nil
	}
	batch := b.pending
	b.pending = make([]errors.Record, 0, b.size)
	return batch
}

func (b *Buffered) deliver(ctx context.Context, batch []errors.Record) error {
	var errs []error
	for _, rec := range batch {
		if err := b.next.Emit(ctx, rec); err != nil {
			b.recorder.IncSinkResult(bufferedSinkName, metrics.ResultDropped)
			errs = append(errs, err)
		}
	}
	return stdErrors.Join(errs...)
}

func (b *Buffered) flushScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if err := b.Flush(ctx); err != nil {
		slog.Warn("Scheduled sink flush failed", logfields.Sink(bufferedSinkName), logfields.Error(err))
	}
}

// Close stops the scheduler, flushes what is left and closes the next sink.
func (b *Buffered) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var errs []error
	if err := b.scheduler.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop flush scheduler: %w", err))
	}
	if err := b.Flush(context.Background()); err != nil {
		errs = append(errs, err)
	}
	if err := b.next.Close(); err != nil {
		errs = append(errs, err)
	}
	return stdErrors.Join(errs...)
}
