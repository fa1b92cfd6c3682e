package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/infra/resilience"
	"github.com/boddenberg/commission-desk-go/internal/infra/rows"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// --- Store API (implements port.Store and port.Pinger) ---

// Name identifies the backend.
func (c *Client) Name() string { return "supabase" }

// Ping checks that PostgREST answers for the users table.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "users?select=id&limit=1")
	return err
}

// LoadAll fetches every table in parallel. A table that answers but cannot
// be decoded is logged and left empty; a table that cannot be fetched fails
// the whole load.
func (c *Client) LoadAll(ctx context.Context) (*domain.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Supabase.LoadAll")
	defer span.End()

	paths := map[string]string{
		rows.TableUsers:       "users?select=*&order=" + restOrder(rows.Order[rows.TableUsers]),
		rows.TableClients:     "clients?select=*&order=" + restOrder(rows.Order[rows.TableClients]),
		rows.TableCommissions: "commissions?select=*&order=" + restOrder(rows.Order[rows.TableCommissions]),
		rows.TableAuditLogs:   fmt.Sprintf("audit_logs?select=*&order=%s&limit=%d", restOrder(rows.Order[rows.TableAuditLogs]), rows.AuditLoadLimit),
		rows.TableNotices:     "notices?select=*&order=" + restOrder(rows.Order[rows.TableNotices]),
		rows.TableSettings:    "settings?select=*&key=eq." + rows.GoalSettingKey,
	}

	bodies := make(map[string][]byte, len(paths))
	results := make([][]byte, len(paths))
	tables := make([]string, 0, len(paths))
	for t := range paths {
		tables = append(tables, t)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, table := range tables {
		i, table := i, table
		g.Go(func() error {
			return resilience.Guarded(gctx, c.cb, c.cfg, "supabase", func() error {
				body, err := c.doRequest(gctx, http.MethodGet, paths[table])
				if err != nil {
					return err
				}
				results[i] = body
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		c.logger.Error("supabase: load failed", zap.Error(err))
		return nil, &domain.ErrExternalService{Service: "supabase", Err: err}
	}
	for i, table := range tables {
		bodies[table] = results[i]
	}

	snap := &domain.Snapshot{}
	var err error
	if snap.Users, err = rows.DecodeUsers(bodies[rows.TableUsers]); err != nil {
		c.logger.Warn("supabase: using default users", zap.Error(err))
		snap.Users = []domain.User{}
	}
	var bad []string
	if snap.Commissions, bad, err = rows.DecodeCommissions(bodies[rows.TableCommissions]); err != nil {
		c.logger.Warn("supabase: using default commissions", zap.Error(err))
		snap.Commissions = []domain.Commission{}
	}
	if len(bad) > 0 {
		c.logger.Warn("supabase: dropped malformed observation history", zap.Strings("commission_ids", bad))
	}
	if snap.Clients, err = rows.DecodeClients(bodies[rows.TableClients]); err != nil {
		// nil lets the desk derive clients from commissions
		c.logger.Warn("supabase: deriving clients from commissions", zap.Error(err))
		snap.Clients = nil
	}
	if snap.AuditLogs, err = rows.DecodeAuditLogs(bodies[rows.TableAuditLogs]); err != nil {
		c.logger.Warn("supabase: using empty audit log", zap.Error(err))
		snap.AuditLogs = []domain.AuditLog{}
	}
	if snap.Notices, err = rows.DecodeNotices(bodies[rows.TableNotices]); err != nil {
		c.logger.Warn("supabase: using default notices", zap.Error(err))
		snap.Notices = []domain.Notice{}
	}
	if snap.Goal, err = rows.DecodeGoal(bodies[rows.TableSettings]); err != nil {
		c.logger.Warn("supabase: using default goal", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int("desk.users", len(snap.Users)),
		attribute.Int("desk.commissions", len(snap.Commissions)),
		attribute.Int("desk.clients", len(snap.Clients)),
	)
	return snap, nil
}

// SaveCollection upserts the full collection, then deletes the rows that
// are no longer part of it.
func (c *Client) SaveCollection(ctx context.Context, name domain.Collection, value any) error {
	ctx, span := tracer.Start(ctx, "Supabase.SaveCollection")
	defer span.End()
	span.SetAttributes(attribute.String("desk.collection", string(name)))

	batch, err := rows.Encode(name, value, time.Now())
	if err != nil {
		return &domain.ErrValidation{Field: string(name), Message: err.Error()}
	}

	err = resilience.Guarded(ctx, c.cb, c.cfg, "supabase", func() error {
		if batch.Key != "id" || hasRows(batch) {
			path := fmt.Sprintf("%s?on_conflict=%s", batch.Table, batch.Key)
			if err := c.doPost(ctx, path, batch.Rows, preferUpsert); err != nil {
				return err
			}
		}
		if batch.Prune {
			return c.doDelete(ctx, batch.Table+"?"+pruneFilter(batch.IDs))
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return &domain.ErrExternalService{Service: "supabase/" + batch.Table, Err: err}
	}
	return nil
}

func hasRows(b *rows.Batch) bool {
	switch v := b.Rows.(type) {
	case []rows.User:
		return len(v) > 0
	case []rows.Commission:
		return len(v) > 0
	case []rows.Client:
		return len(v) > 0
	case []rows.AuditLog:
		return len(v) > 0
	case []rows.Notice:
		return len(v) > 0
	}
	return true
}

// pruneFilter selects every row whose id is not in ids. PostgREST requires
// values holding reserved characters to be double quoted.
func pruneFilter(ids []string) string {
	if len(ids) == 0 {
		return "id=not.is.null"
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		id = strings.ReplaceAll(id, `\`, `\\`)
		id = strings.ReplaceAll(id, `"`, `\"`)
		quoted[i] = `"` + id + `"`
	}
	return "id=" + url.QueryEscape("not.in.("+strings.Join(quoted, ",")+")")
}

// restOrder turns "a desc, b asc" into PostgREST's "a.desc,b.asc".
func restOrder(order string) string {
	parts := strings.Split(order, ",")
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(p), ".")
	}
	return strings.Join(parts, ",")
}
