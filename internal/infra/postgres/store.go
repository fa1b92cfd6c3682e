package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/infra/resilience"
	"github.com/boddenberg/commission-desk-go/internal/infra/rows"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("postgres")

// Store implements port.Store and port.Pinger over a pgx pool.
type Store struct {
	pool   *pgxpool.Pool
	cb     *gobreaker.CircuitBreaker
	cfg    resilience.Config
	logger *zap.Logger
}

// NewStore creates a Postgres-backed store.
func NewStore(pool *pgxpool.Pool, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Store {
	return &Store{pool: pool, cb: cb, cfg: cfg, logger: logger}
}

// Name identifies the backend.
func (s *Store) Name() string { return "postgres" }

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// LoadAll reads every table in parallel as JSON row arrays and decodes them
// with the same row mapping the Supabase backend uses.
func (s *Store) LoadAll(ctx context.Context) (*domain.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Postgres.LoadAll")
	defer span.End()

	tables := []string{
		rows.TableUsers, rows.TableCommissions, rows.TableClients,
		rows.TableAuditLogs, rows.TableNotices, rows.TableSettings,
	}
	results := make([][]byte, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	for i, table := range tables {
		i, table := i, table
		g.Go(func() error {
			query, args := selectSQL(table)
			return resilience.Guarded(gctx, s.cb, s.cfg, "postgres", func() error {
				var raw []byte
				if err := s.pool.QueryRow(gctx, query, args...).Scan(&raw); err != nil {
					return fmt.Errorf("load %s: %w", table, err)
				}
				results[i] = raw
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		s.logger.Error("postgres: load failed", zap.Error(err))
		return nil, &domain.ErrExternalService{Service: "postgres", Err: err}
	}

	snap := &domain.Snapshot{}
	var err error
	if snap.Users, err = rows.DecodeUsers(results[0]); err != nil {
		s.logger.Warn("postgres: using default users", zap.Error(err))
		snap.Users = []domain.User{}
	}
	var bad []string
	if snap.Commissions, bad, err = rows.DecodeCommissions(results[1]); err != nil {
		s.logger.Warn("postgres: using default commissions", zap.Error(err))
		snap.Commissions = []domain.Commission{}
	}
	if len(bad) > 0 {
		s.logger.Warn("postgres: dropped malformed observation history", zap.Strings("commission_ids", bad))
	}
	if snap.Clients, err = rows.DecodeClients(results[2]); err != nil {
		s.logger.Warn("postgres: deriving clients from commissions", zap.Error(err))
		snap.Clients = nil
	}
	if snap.AuditLogs, err = rows.DecodeAuditLogs(results[3]); err != nil {
		s.logger.Warn("postgres: using empty audit log", zap.Error(err))
		snap.AuditLogs = []domain.AuditLog{}
	}
	if snap.Notices, err = rows.DecodeNotices(results[4]); err != nil {
		s.logger.Warn("postgres: using default notices", zap.Error(err))
		snap.Notices = []domain.Notice{}
	}
	if snap.Goal, err = rows.DecodeGoal(results[5]); err != nil {
		s.logger.Warn("postgres: using default goal", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int("desk.users", len(snap.Users)),
		attribute.Int("desk.commissions", len(snap.Commissions)),
	)
	return snap, nil
}

// SaveCollection upserts the collection and prunes removed rows in one
// transaction.
func (s *Store) SaveCollection(ctx context.Context, name domain.Collection, value any) error {
	ctx, span := tracer.Start(ctx, "Postgres.SaveCollection")
	defer span.End()
	span.SetAttributes(attribute.String("desk.collection", string(name)))

	batch, err := rows.Encode(name, value, time.Now())
	if err != nil {
		return &domain.ErrValidation{Field: string(name), Message: err.Error()}
	}
	payload, err := json.Marshal(batch.Rows)
	if err != nil {
		return &domain.ErrValidation{Field: string(name), Message: err.Error()}
	}

	err = resilience.Guarded(ctx, s.cb, s.cfg, "postgres", func() error {
		return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, upsertSQL(batch.Table, batch.Key), string(payload)); err != nil {
				return fmt.Errorf("upsert %s: %w", batch.Table, err)
			}
			if batch.Prune {
				ids := batch.IDs
				if ids == nil {
					ids = []string{}
				}
				if _, err := tx.Exec(ctx, pruneSQL(batch.Table), ids); err != nil {
					return fmt.Errorf("prune %s: %w", batch.Table, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		return &domain.ErrExternalService{Service: "postgres/" + batch.Table, Err: err}
	}
	return nil
}

// ============================================================
// SQL builders
// ============================================================

// selectSQL aggregates a table into one JSON array in load order.
func selectSQL(table string) (string, []any) {
	cols := strings.Join(rows.Columns[table], ", ")
	inner := fmt.Sprintf("SELECT %s FROM %s", cols, table)
	var args []any
	if table == rows.TableSettings {
		inner += " WHERE key = $1"
		args = append(args, rows.GoalSettingKey)
	}
	if order, ok := rows.Order[table]; ok {
		inner += " ORDER BY " + order
	}
	if table == rows.TableAuditLogs {
		inner += fmt.Sprintf(" LIMIT %d", rows.AuditLoadLimit)
	}
	return fmt.Sprintf("SELECT coalesce(json_agg(t), '[]'::json) FROM (%s) t", inner), args
}

// upsertSQL inserts the rows of a JSON array parameter, updating every
// non-key column on conflict.
func upsertSQL(table, key string) string {
	cols := rows.Columns[table]
	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == key {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	list := strings.Join(cols, ", ")
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM json_populate_recordset(NULL::%s, $1::json) ON CONFLICT (%s) DO UPDATE SET %s",
		table, list, list, table, key, strings.Join(sets, ", "),
	)
}

// pruneSQL deletes every row whose id is not in the $1 array. An empty
// array deletes all rows.
func pruneSQL(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE id <> ALL($1::text[])", table)
}
