package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/infra/observability"
	"github.com/boddenberg/commission-desk-go/internal/service"

	"go.uber.org/zap"
)

// --- Mock store ---

type savedValue struct {
	name  domain.Collection
	value any
}

type mockStore struct {
	mu       sync.Mutex
	saves    []savedValue
	saveErr  error
	snapshot *domain.Snapshot
	loadErr  error
	loads    int
}

func (m *mockStore) Name() string { return "mock" }

func (m *mockStore) LoadAll(ctx context.Context) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.snapshot, nil
}

func (m *mockStore) SaveCollection(ctx context.Context, name domain.Collection, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves = append(m.saves, savedValue{name: name, value: value})
	return nil
}

func (m *mockStore) setSaveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *mockStore) saved() []savedValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]savedValue(nil), m.saves...)
}

func newTestQueue(store *mockStore, debounce time.Duration) *service.SyncQueue {
	return service.NewSyncQueue(store, debounce, 2, observability.NewMetrics(), zap.NewNop())
}

func stateOf(q *service.SyncQueue, name domain.Collection) (domain.CollectionSync, bool) {
	for _, s := range q.Status() {
		if s.Collection == name {
			return s, true
		}
	}
	return domain.CollectionSync{}, false
}

// --- Tests ---

func TestSyncQueue_FlushWritesLatestValueOnce(t *testing.T) {
	store := &mockStore{}
	q := newTestQueue(store, time.Hour)

	q.Enqueue(domain.CollectionGoal, 3)
	q.Enqueue(domain.CollectionGoal, 7)
	q.Enqueue(domain.CollectionNotices, []domain.Notice{})

	if !q.Pending() {
		t.Fatal("expected pending changes before flush")
	}
	if s, _ := stateOf(q, domain.CollectionGoal); s.State != domain.SyncPending {
		t.Errorf("goal state = %s, want pending", s.State)
	}

	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	saves := store.saved()
	if len(saves) != 2 {
		t.Fatalf("expected 2 writes, got %+v", saves)
	}
	for _, s := range saves {
		if s.name == domain.CollectionGoal && s.value != 7 {
			t.Errorf("goal written as %v, want the latest value 7", s.value)
		}
	}
	if q.Pending() {
		t.Error("nothing should be pending after a successful flush")
	}

	// A second flush has nothing to write.
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	if n := len(store.saved()); n != 2 {
		t.Errorf("clean collections were written again: %d writes", n)
	}
}

func TestSyncQueue_DebouncedWrite(t *testing.T) {
	store := &mockStore{}
	q := newTestQueue(store, 5*time.Millisecond)

	q.Enqueue(domain.CollectionUsers, []domain.User{admin})

	deadline := time.Now().Add(2 * time.Second)
	for len(store.saved()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("debounced write never happened")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// The state flips right after the store returns.
	for q.Pending() {
		if time.Now().After(deadline) {
			t.Fatal("collection never reported synced")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if s, ok := stateOf(q, domain.CollectionUsers); !ok || s.State != domain.SyncSynced || s.LastError != "" {
		t.Errorf("status = %+v", s)
	}
}

func TestSyncQueue_FailedWriteKeepsMemoryAhead(t *testing.T) {
	store := &mockStore{saveErr: errors.New("connection refused")}
	q := newTestQueue(store, time.Hour)

	q.Enqueue(domain.CollectionCommissions, []domain.Commission{{ID: "c1"}})

	err := q.Flush(context.Background())
	if err == nil {
		t.Fatal("expected the write error to be returned")
	}
	s, _ := stateOf(q, domain.CollectionCommissions)
	if s.State != domain.SyncFailed || s.LastError == "" {
		t.Errorf("status = %+v, want failed with an error", s)
	}
	if !q.Pending() {
		t.Error("a failed collection is still pending")
	}

	// The next change retries the write with the newest value.
	store.setSaveErr(nil)
	q.Enqueue(domain.CollectionCommissions, []domain.Commission{{ID: "c1"}, {ID: "c2"}})
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("flush after recovery: %v", err)
	}
	saves := store.saved()
	if len(saves) != 1 || len(saves[0].value.([]domain.Commission)) != 2 {
		t.Errorf("saves = %+v", saves)
	}
	if q.Pending() {
		t.Error("expected synced after recovery")
	}
}

func TestSyncQueue_WiredToDesk(t *testing.T) {
	store := &mockStore{}
	q := newTestQueue(store, time.Hour)
	d := service.NewDesk(&domain.Snapshot{Users: testUsers(), Clients: []domain.Client{}}, q.Enqueue,
		observability.NewMetrics(), zap.NewNop(), service.WithClock(func() time.Time { return fixedNow }))

	mustAdd(t, d, collab, domain.CommissionInput{ClientName: "Maria", ContractDate: today})
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	written := map[domain.Collection]bool{}
	for _, s := range store.saved() {
		written[s.name] = true
	}
	for _, name := range []domain.Collection{domain.CollectionCommissions, domain.CollectionClients, domain.CollectionAuditLogs} {
		if !written[name] {
			t.Errorf("%s was not written", name)
		}
	}
}
