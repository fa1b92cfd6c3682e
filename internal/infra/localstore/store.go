// Package localstore persists the desk as one JSON document per collection
// in a key/value store: a data directory or Redis. Keys and document shapes
// match the browser storage of the web dashboard, so exported state
// loads as-is.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/boddenberg/commission-desk-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("localstore")

// Storage keys per collection.
const (
	KeyUsers       = "ss_comm_users"
	KeyCommissions = "ss_comm_entries"
	KeyClients     = "ss_comm_clients"
	KeyAuditLogs   = "ss_comm_audit"
	KeyNotices     = "ss_comm_notices"
	KeyGoal        = "ss_comm_goal_contracts"
)

// Key returns the storage key of a collection.
func Key(c domain.Collection) (string, bool) {
	switch c {
	case domain.CollectionUsers:
		return KeyUsers, true
	case domain.CollectionCommissions:
		return KeyCommissions, true
	case domain.CollectionClients:
		return KeyClients, true
	case domain.CollectionAuditLogs:
		return KeyAuditLogs, true
	case domain.CollectionNotices:
		return KeyNotices, true
	case domain.CollectionGoal:
		return KeyGoal, true
	}
	return "", false
}

// Store implements port.Store over a KV.
type Store struct {
	kv     KV
	name   string
	logger *zap.Logger
}

// NewStore creates a store. name is reported by Name ("file" or "redis").
func NewStore(kv KV, name string, logger *zap.Logger) *Store {
	return &Store{kv: kv, name: name, logger: logger}
}

// Name identifies the backend.
func (s *Store) Name() string { return s.name }

// Ping delegates to the KV when it supports it.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.kv.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// LoadAll reads every key. Missing users and commissions are seeded with the
// demo data and written back. A value that cannot be parsed is logged and
// replaced by its default; only a failing KV fails the load.
func (s *Store) LoadAll(ctx context.Context) (*domain.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "LocalStore.LoadAll")
	defer span.End()
	span.SetAttributes(attribute.String("desk.backend", s.name))

	raw := make(map[string][]byte, 6)
	for _, key := range []string{KeyUsers, KeyCommissions, KeyClients, KeyAuditLogs, KeyNotices, KeyGoal} {
		b, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			span.RecordError(err)
			return nil, &domain.ErrExternalService{Service: s.name, Err: fmt.Errorf("read %s: %w", key, err)}
		}
		if ok {
			raw[key] = b
		}
	}

	snap := &domain.Snapshot{}

	if b, ok := raw[KeyUsers]; ok {
		if err := json.Unmarshal(b, &snap.Users); err != nil {
			s.logger.Warn("localstore: failed to parse users, using demo users", zap.Error(err))
			snap.Users = nil
		}
	}
	if snap.Users == nil {
		snap.Users = seedUsers()
		s.writeSeed(ctx, KeyUsers, snap.Users)
	}

	if b, ok := raw[KeyCommissions]; ok {
		if err := json.Unmarshal(b, &snap.Commissions); err != nil {
			s.logger.Warn("localstore: failed to parse commissions, using demo entries", zap.Error(err))
			snap.Commissions = nil
		}
	}
	if snap.Commissions == nil {
		snap.Commissions = seedCommissions()
		s.writeSeed(ctx, KeyCommissions, snap.Commissions)
	}

	clients, shape, err := domain.DecodeClients(raw[KeyClients])
	switch {
	case err != nil:
		s.logger.Warn("localstore: failed to parse clients, deriving from commissions", zap.Error(err))
	case shape == domain.ClientsLegacy:
		s.logger.Info("localstore: upgrading legacy client names", zap.Int("count", len(clients)))
		snap.Clients = clients
	case shape == domain.ClientsRecords:
		snap.Clients = clients
	}

	snap.AuditLogs = []domain.AuditLog{}
	if b, ok := raw[KeyAuditLogs]; ok {
		if err := json.Unmarshal(b, &snap.AuditLogs); err != nil || snap.AuditLogs == nil {
			s.logger.Warn("localstore: failed to parse audit log", zap.Error(err))
			snap.AuditLogs = []domain.AuditLog{}
		}
	}

	snap.Notices = []domain.Notice{}
	if b, ok := raw[KeyNotices]; ok {
		if err := json.Unmarshal(b, &snap.Notices); err != nil || snap.Notices == nil {
			s.logger.Warn("localstore: failed to parse notices", zap.Error(err))
			snap.Notices = []domain.Notice{}
		}
	}

	if b, ok := raw[KeyGoal]; ok {
		snap.Goal = parseGoal(b)
	}

	return snap, nil
}

// SaveCollection writes the JSON document of one collection. The goal is a
// bare number string.
func (s *Store) SaveCollection(ctx context.Context, name domain.Collection, value any) error {
	ctx, span := tracer.Start(ctx, "LocalStore.SaveCollection")
	defer span.End()
	span.SetAttributes(attribute.String("desk.collection", string(name)))

	key, ok := Key(name)
	if !ok {
		return &domain.ErrValidation{Field: string(name), Message: "unknown collection"}
	}

	var b []byte
	if name == domain.CollectionGoal {
		goal, ok := value.(int)
		if !ok {
			return &domain.ErrValidation{Field: string(name), Message: fmt.Sprintf("unsupported value %T", value)}
		}
		b = []byte(strconv.Itoa(goal))
	} else {
		var err error
		if b, err = json.Marshal(value); err != nil {
			return &domain.ErrValidation{Field: string(name), Message: err.Error()}
		}
	}

	if err := s.kv.Set(ctx, key, b); err != nil {
		span.RecordError(err)
		return &domain.ErrExternalService{Service: s.name, Err: fmt.Errorf("write %s: %w", key, err)}
	}
	return nil
}

func (s *Store) writeSeed(ctx context.Context, key string, value any) {
	b, err := json.Marshal(value)
	if err == nil {
		err = s.kv.Set(ctx, key, b)
	}
	if err != nil {
		s.logger.Warn("localstore: failed to write seed", zap.String("key", key), zap.Error(err))
	}
}

// parseGoal reads a stored number; anything non-finite reads as zero.
func parseGoal(b []byte) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0
	}
	return domain.ClampGoal(v)
}
