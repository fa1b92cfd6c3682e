package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/port"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const reloadTimeout = time.Minute

// Reloader periodically replaces the desk state with the store's copy,
// closing any divergence left by failed writes. Pending changes are flushed
// first so a reload never discards local edits that could still be saved.
type Reloader struct {
	desk   *Desk
	queue  *SyncQueue
	store  port.Store
	cron   *cron.Cron
	logger *zap.Logger
}

// NewReloader schedules Reload on spec (standard five-field cron syntax or
// descriptors such as "@every 10m").
func NewReloader(spec string, loc *time.Location, desk *Desk, queue *SyncQueue, store port.Store, logger *zap.Logger) (*Reloader, error) {
	r := &Reloader{
		desk:   desk,
		queue:  queue,
		store:  store,
		cron:   cron.New(cron.WithLocation(loc)),
		logger: logger,
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("parse reload schedule %q: %w", spec, err)
	}
	return r, nil
}

// Start begins the schedule in the background.
func (r *Reloader) Start() {
	r.cron.Start()
	r.logger.Info("reload schedule started", zap.Int("entries", len(r.cron.Entries())))
}

// Stop halts the schedule and waits for a running reload to finish.
func (r *Reloader) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (r *Reloader) run() {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()
	if err := r.Reload(ctx); err != nil {
		r.logger.Error("scheduled reload failed", zap.Error(err))
	}
}

// Reload flushes the queue and swaps in a fresh snapshot. When the flush
// leaves collections unsaved the reload is skipped, keeping memory as the
// newer copy.
func (r *Reloader) Reload(ctx context.Context) error {
	ctx, span := deskTracer.Start(ctx, "Reloader.Reload")
	defer span.End()

	if err := r.queue.Flush(ctx); err != nil {
		return fmt.Errorf("flush before reload: %w", err)
	}
	snap, err := r.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if r.queue.Pending() {
		r.logger.Info("reload skipped: changes arrived during load")
		return nil
	}
	r.desk.Replace(snap)
	r.logger.Info("desk reloaded from store", zap.String("backend", r.store.Name()))
	return nil
}
