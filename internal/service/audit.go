package service

import (
	"sync"

	"github.com/boddenberg/commission-desk-go/internal/domain"
)

// AuditCap is the number of audit entries retained, newest first.
const AuditCap = 500

// AuditEntry is the caller-supplied part of an audit record.
type AuditEntry struct {
	Action     string
	TargetType string
	TargetID   string
	Details    string
}

// AuditRecorder keeps the capped audit trail. Recording never fails: the
// entry is applied in memory and handed to the change callback, whose
// persistence errors stay with the sync queue. The callback runs while the
// recorder is locked and must not call back into it.
type AuditRecorder struct {
	mu       sync.Mutex
	logs     []domain.AuditLog
	newID    func() string
	now      func() string
	onChange ChangeFunc
}

// NewAuditRecorder creates a recorder seeded with previously persisted logs.
func NewAuditRecorder(initial []domain.AuditLog, newID func() string, now func() string, onChange ChangeFunc) *AuditRecorder {
	if len(initial) > AuditCap {
		initial = initial[:AuditCap]
	}
	logs := make([]domain.AuditLog, len(initial))
	copy(logs, initial)
	return &AuditRecorder{logs: logs, newID: newID, now: now, onChange: onChange}
}

// Record prepends one entry attributed to actor and truncates to AuditCap.
// A zero actor records an anonymous entry.
func (a *AuditRecorder) Record(actor domain.User, e AuditEntry) domain.AuditLog {
	entry := domain.AuditLog{
		ID:         a.newID(),
		Timestamp:  a.now(),
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Details:    e.Details,
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	next := make([]domain.AuditLog, 0, min(len(a.logs)+1, AuditCap))
	next = append(next, entry)
	next = append(next, a.logs...)
	if len(next) > AuditCap {
		next = next[:AuditCap]
	}
	a.logs = next

	// Emitted under the lock so snapshots reach onChange in recording order.
	if a.onChange != nil {
		a.onChange(domain.CollectionAuditLogs, a.snapshotLocked())
	}
	return entry
}

// Logs returns a copy of the trail, newest first.
func (a *AuditRecorder) Logs() []domain.AuditLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Replace swaps the trail wholesale after a reload.
func (a *AuditRecorder) Replace(logs []domain.AuditLog) {
	if len(logs) > AuditCap {
		logs = logs[:AuditCap]
	}
	a.mu.Lock()
	a.logs = append([]domain.AuditLog(nil), logs...)
	a.mu.Unlock()
}

func (a *AuditRecorder) snapshotLocked() []domain.AuditLog {
	out := make([]domain.AuditLog, len(a.logs))
	copy(out, a.logs)
	return out
}
