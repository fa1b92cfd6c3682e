package service_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/service"
)

func TestAuditRecorder_NewestFirstAndCapped(t *testing.T) {
	var emitted []domain.AuditLog
	ids := sequentialIDs()
	clock := func() string { return "2026-01-15T13:00:00.000Z" }
	rec := service.NewAuditRecorder(nil, ids, clock, func(name domain.Collection, value any) {
		if name != domain.CollectionAuditLogs {
			t.Errorf("unexpected collection %s", name)
		}
		emitted = value.([]domain.AuditLog)
	})

	for i := 0; i < service.AuditCap+1; i++ {
		rec.Record(collab, service.AuditEntry{Action: "login", TargetType: "auth", Details: fmt.Sprint(i)})
	}

	logs := rec.Logs()
	if len(logs) != service.AuditCap {
		t.Fatalf("expected %d entries, got %d", service.AuditCap, len(logs))
	}
	if logs[0].Details != fmt.Sprint(service.AuditCap) {
		t.Errorf("newest entry should come first, got %q", logs[0].Details)
	}
	if logs[len(logs)-1].Details != "1" {
		t.Errorf("oldest entry should have been dropped, last = %q", logs[len(logs)-1].Details)
	}
	if len(emitted) != service.AuditCap {
		t.Errorf("emitted %d entries", len(emitted))
	}
	if logs[0].ActorID != collab.ID || logs[0].ActorName != collab.Name || logs[0].Timestamp == "" {
		t.Errorf("actor not recorded: %+v", logs[0])
	}
}

func TestAuditRecorder_AnonymousAndCopies(t *testing.T) {
	rec := service.NewAuditRecorder([]domain.AuditLog{{ID: "old"}}, sequentialIDs(), func() string { return "t" }, nil)

	e := rec.Record(domain.User{}, service.AuditEntry{Action: "login_failed", TargetType: "auth"})
	if e.ActorID != "" || e.ActorName != "" {
		t.Errorf("expected anonymous entry, got %+v", e)
	}

	logs := rec.Logs()
	logs[0].Action = "tampered"
	if rec.Logs()[0].Action != "login_failed" {
		t.Error("Logs must return a copy")
	}
	if len(logs) != 2 || logs[1].ID != "old" {
		t.Errorf("initial entries lost: %+v", logs)
	}
}

func TestAuditRecorder_ConcurrentRecordsEmitLatestLast(t *testing.T) {
	const writers = 8
	const perWriter = 25

	var mu sync.Mutex
	var last []domain.AuditLog
	emits := 0
	rec := service.NewAuditRecorder(nil, sequentialIDs(), func() string { return "t" }, func(_ domain.Collection, value any) {
		mu.Lock()
		defer mu.Unlock()
		last = value.([]domain.AuditLog)
		emits++
	})

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				rec.Record(collab, service.AuditEntry{Action: "login", TargetType: "auth", Details: fmt.Sprintf("%d-%d", w, i)})
			}
		}(w)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if emits != writers*perWriter {
		t.Fatalf("emitted %d times, want %d", emits, writers*perWriter)
	}
	if len(last) != writers*perWriter {
		t.Fatalf("last emitted trail has %d entries, want %d", len(last), writers*perWriter)
	}
	logs := rec.Logs()
	for i := range logs {
		if logs[i].ID != last[i].ID {
			t.Fatalf("position %d: emitted %s, stored %s", i, last[i].ID, logs[i].ID)
		}
	}
}
