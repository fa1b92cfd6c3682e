// Package service holds the desk's application state and the use cases
// that mutate it: commission bookkeeping, client reconciliation, user and
// notice management, authentication, dashboards and background sync.
package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/infra/observability"
	"github.com/boddenberg/commission-desk-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var deskTracer = otel.Tracer("service/desk")

// timestampLayout renders record timestamps the way the stored data
// already has them: UTC, millisecond precision, trailing Z.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ChangeFunc receives the full current value of a collection after it
// changed. It must not block.
type ChangeFunc func(name domain.Collection, value any)

// Desk is the single owner of the working set. Every exported method takes
// the desk lock for its whole duration, so mutations apply one at a time in
// arrival order.
type Desk struct {
	mu          sync.Mutex
	users       []domain.User
	commissions []domain.Commission
	clients     []domain.Client
	notices     []domain.Notice
	goal        int

	audit      *AuditRecorder
	onChange   ChangeFunc
	chartCache port.Cache[*domain.CommercialChart]
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// DeskOption customises a Desk at construction.
type DeskOption func(*Desk)

// WithClock overrides the wall clock (tests, fixed time zones).
func WithClock(now func() time.Time) DeskOption {
	return func(d *Desk) { d.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(newID func() string) DeskOption {
	return func(d *Desk) { d.newID = newID }
}

// WithChartCache enables caching of the commercial chart per month.
func WithChartCache(c port.Cache[*domain.CommercialChart]) DeskOption {
	return func(d *Desk) { d.chartCache = c }
}

// NewDesk builds the desk from a loaded snapshot. onChange may be nil, in
// which case changes stay in memory.
func NewDesk(snap *domain.Snapshot, onChange ChangeFunc, metrics *observability.Metrics, logger *zap.Logger, opts ...DeskOption) *Desk {
	d := &Desk{
		onChange: onChange,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.audit = NewAuditRecorder(nil, d.newID, d.timestamp, d.emit)
	d.Replace(snap)
	return d
}

// Replace swaps the whole working set, applying load-time normalisation.
// Used at startup and by the scheduled reload.
func (d *Desk) Replace(snap *domain.Snapshot) {
	if snap == nil {
		snap = &domain.Snapshot{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.users = domain.NormalizeUsers(slices.Clone(snap.Users))
	d.commissions = domain.NormalizeCommissions(slices.Clone(snap.Commissions))
	d.metrics.IncrRecompute()
	if snap.Clients == nil {
		d.clients = domain.DeriveClients(d.commissions)
	} else {
		d.clients = domain.NormalizeClients(slices.Clone(snap.Clients))
	}
	d.notices = slices.Clone(snap.Notices)
	d.goal = domain.ClampGoal(float64(snap.Goal))
	d.audit.Replace(snap.AuditLogs)
	d.purgeChartCache()

	d.logger.Info("desk state loaded",
		zap.Int("users", len(d.users)),
		zap.Int("commissions", len(d.commissions)),
		zap.Int("clients", len(d.clients)),
		zap.Int("notices", len(d.notices)),
		zap.Int("goal", d.goal),
	)
}

// Snapshot returns a deep-enough copy of the working set.
func (d *Desk) Snapshot() *domain.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return &domain.Snapshot{
		Users:       slices.Clone(d.users),
		Commissions: slices.Clone(d.commissions),
		Clients:     slices.Clone(d.clients),
		AuditLogs:   d.audit.Logs(),
		Notices:     slices.Clone(d.notices),
		Goal:        d.goal,
	}
}

// UserByID resolves a user fresh from the working set.
func (d *Desk) UserByID(id string) (domain.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.IndexFunc(d.users, func(u domain.User) bool { return u.ID == id })
	if i < 0 {
		return domain.User{}, false
	}
	return d.users[i], true
}

// userByUsername is used by login. Usernames compare case-insensitively.
func (d *Desk) userByUsername(username string) (domain.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return domain.User{}, false
}

// AuditLogs returns the audit trail, newest first. Admin only.
func (d *Desk) AuditLogs(ctx context.Context, actor domain.User) ([]domain.AuditLog, error) {
	_, span := deskTracer.Start(ctx, "Desk.AuditLogs")
	defer span.End()

	if !domain.CanViewAudit(actor) {
		return nil, &domain.ErrForbidden{Action: "view audit log"}
	}
	return d.audit.Logs(), nil
}

// Record writes an audit entry outside a desk mutation (login, logout).
func (d *Desk) Record(actor domain.User, e AuditEntry) {
	d.audit.Record(actor, e)
}

// ============================================================
// Internal helpers (callers hold d.mu)
// ============================================================

func (d *Desk) timestamp() string {
	return d.now().UTC().Format(timestampLayout)
}

func (d *Desk) today() string {
	return d.now().Format(domain.DateLayout)
}

func (d *Desk) emit(name domain.Collection, value any) {
	if d.onChange != nil {
		d.onChange(name, value)
	}
}

func (d *Desk) emitCommissions() {
	d.emit(domain.CollectionCommissions, slices.Clone(d.commissions))
}

func (d *Desk) emitClients() {
	d.emit(domain.CollectionClients, slices.Clone(d.clients))
}

func (d *Desk) emitUsers() {
	d.emit(domain.CollectionUsers, slices.Clone(d.users))
}

func (d *Desk) emitNotices() {
	d.emit(domain.CollectionNotices, slices.Clone(d.notices))
}

// recompute re-derives every commission value over the whole list.
func (d *Desk) recompute() {
	d.commissions = domain.Recompute(d.commissions)
	d.metrics.IncrRecompute()
	d.purgeChartCache()
}

func (d *Desk) purgeChartCache() {
	if d.chartCache != nil {
		d.chartCache.Purge()
	}
}

func (d *Desk) mutated(action string) {
	d.metrics.IncrMutation(action)
}

func (d *Desk) commissionIndex(id string) int {
	return slices.IndexFunc(d.commissions, func(c domain.Commission) bool { return c.ID == id })
}

func (d *Desk) clientIndex(id string) int {
	return slices.IndexFunc(d.clients, func(c domain.Client) bool { return c.ID == id })
}

func (d *Desk) userIndex(id string) int {
	return slices.IndexFunc(d.users, func(u domain.User) bool { return u.ID == id })
}

// containsFold reports whether needle occurs in s ignoring case.
func containsFold(s, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(domain.NameKey(s), domain.NameKey(needle))
}
