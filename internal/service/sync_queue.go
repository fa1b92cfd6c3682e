package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/infra/observability"
	"github.com/boddenberg/commission-desk-go/internal/infra/resilience"
	"github.com/boddenberg/commission-desk-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const syncWriteTimeout = 30 * time.Second

// SyncQueue is the write-behind persistence path. Each collection change is
// applied in memory first; the queue keeps only the latest value per
// collection and writes it after the debounce interval. A failed write is
// logged and leaves the collection in the failed state with memory ahead
// of the store; the next change or a reload closes the gap.
type SyncQueue struct {
	store    port.Store
	bulkhead *resilience.Bulkhead
	debounce time.Duration
	metrics  *observability.Metrics
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[domain.Collection]*syncEntry
}

type syncEntry struct {
	writeMu sync.Mutex // serialises writes of one collection

	value     any
	dirty     bool
	timer     *time.Timer
	state     domain.SyncState
	lastErr   string
	updatedAt time.Time
}

// NewSyncQueue creates a queue writing to store with at most maxConcurrent
// collection writes in flight.
func NewSyncQueue(store port.Store, debounce time.Duration, maxConcurrent int, metrics *observability.Metrics, logger *zap.Logger) *SyncQueue {
	return &SyncQueue{
		store:    store,
		bulkhead: resilience.NewBulkhead(maxConcurrent),
		debounce: debounce,
		metrics:  metrics,
		logger:   logger,
		entries:  make(map[domain.Collection]*syncEntry),
	}
}

// Enqueue records the latest value of a collection and (re)arms its
// debounce timer. It never blocks on the store. Matches ChangeFunc.
func (q *SyncQueue) Enqueue(name domain.Collection, value any) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.entry(name)
	e.value = value
	e.dirty = true
	e.state = domain.SyncPending
	e.updatedAt = time.Now()
	q.metrics.SetSyncPending(string(name), true)

	if e.timer == nil {
		e.timer = time.AfterFunc(q.debounce, func() { q.fire(name) })
		return
	}
	e.timer.Reset(q.debounce)
}

// Flush writes every dirty collection now and waits for writes already in
// flight. Returns the joined write errors.
func (q *SyncQueue) Flush(ctx context.Context) error {
	q.mu.Lock()
	names := make([]domain.Collection, 0, len(q.entries))
	for _, name := range domain.AllCollections {
		if e, ok := q.entries[name]; ok {
			if e.timer != nil {
				e.timer.Stop()
			}
			names = append(names, name)
		}
	}
	q.mu.Unlock()

	var errs []error
	for _, name := range names {
		if err := q.write(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Status reports the sync state of every collection that has changed
// since startup.
func (q *SyncQueue) Status() []domain.CollectionSync {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.CollectionSync, 0, len(q.entries))
	for _, name := range domain.AllCollections {
		e, ok := q.entries[name]
		if !ok {
			continue
		}
		out = append(out, domain.CollectionSync{
			Collection: name,
			State:      e.state,
			LastError:  e.lastErr,
			UpdatedAt:  e.updatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// Pending reports whether any collection has changes not yet stored.
func (q *SyncQueue) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e.state != domain.SyncSynced {
			return true
		}
	}
	return false
}

func (q *SyncQueue) entry(name domain.Collection) *syncEntry {
	e, ok := q.entries[name]
	if !ok {
		e = &syncEntry{state: domain.SyncSynced}
		q.entries[name] = e
	}
	return e
}

func (q *SyncQueue) fire(name domain.Collection) {
	ctx, cancel := context.WithTimeout(context.Background(), syncWriteTimeout)
	defer cancel()
	_ = q.write(ctx, name)
}

func (q *SyncQueue) write(ctx context.Context, name domain.Collection) error {
	q.mu.Lock()
	e, ok := q.entries[name]
	q.mu.Unlock()
	if !ok {
		return nil
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	q.mu.Lock()
	if !e.dirty {
		q.mu.Unlock()
		return nil
	}
	value := e.value
	e.dirty = false
	q.mu.Unlock()

	ctx, span := deskTracer.Start(ctx, "SyncQueue.write")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", string(name)),
		attribute.String("backend", q.store.Name()),
	)

	err := q.bulkhead.Acquire(ctx)
	if err == nil {
		err = q.store.SaveCollection(ctx, name, value)
		q.bulkhead.Release()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	e.updatedAt = time.Now()
	if err != nil {
		span.RecordError(err)
		q.metrics.IncrStoreError(q.store.Name(), string(name))
		e.lastErr = err.Error()
		if !e.dirty {
			e.state = domain.SyncFailed
		}
		q.logger.Error("sync: collection write failed, memory kept ahead of store",
			zap.String("collection", string(name)),
			zap.String("backend", q.store.Name()),
			zap.Error(err),
		)
		return err
	}

	q.metrics.IncrStoreWrite(q.store.Name(), string(name))
	e.lastErr = ""
	if !e.dirty {
		e.state = domain.SyncSynced
		q.metrics.SetSyncPending(string(name), false)
	}
	q.logger.Debug("sync: collection written",
		zap.String("collection", string(name)),
		zap.String("backend", q.store.Name()),
	)
	return nil
}
