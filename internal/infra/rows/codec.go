package rows

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"
)

// Columns lists the columns of each table, primary key first.
var Columns = map[string][]string{
	TableUsers: {"id", "username", "password", "name", "role", "department", "avatar_initials"},
	TableClients: {
		"id", "name", "status", "responsible_department", "responsible_user_id",
		"responsible_user_name", "note", "last_contact_date", "birth_date", "gps_due_date",
		"cpf", "gov_password", "contract_signature_date", "phone_number",
		"expected_birth_date", "has_kids_under_5", "work_status", "has_lawyer",
		"created_at", "updated_at",
	},
	TableCommissions: {
		"id", "lawyer_name", "lawyer_id", "department", "client_name", "case_type",
		"case_value", "commission_percentage", "commission_value", "status", "date",
		"contract_date", "observations", "observation_history", "approved_by_id",
		"approved_at", "updated_at", "no_commission", "lead_phone_number",
		"lead_expected_birth_date", "lead_has_kids_under_5", "lead_work_status",
		"lead_has_lawyer",
	},
	TableAuditLogs: {"id", "timestamp", "actor_id", "actor_name", "action", "target_type", "target_id", "details"},
	TableNotices:   {"id", "title", "message", "visible_to_roles", "visible_to_departments", "created_by", "created_at"},
	TableSettings:  {"key", "value", "updated_at"},
}

// Order is the load ordering of each table. Commissions come back in the
// order they were logged, which is the order Commercial tiers are counted in.
var Order = map[string]string{
	TableUsers:       "name asc",
	TableClients:     "name asc",
	TableCommissions: "date asc, id asc",
	TableAuditLogs:   "timestamp desc",
	TableNotices:     "created_at desc",
}

// AuditLoadLimit bounds the audit rows read back; older rows stay in the
// table but never re-enter the working set.
const AuditLoadLimit = 500

// Batch is the encoded full value of one collection.
type Batch struct {
	Table string
	// Key is the conflict column of the upsert.
	Key  string
	Rows any
	// IDs holds the keys of Rows. When Prune is set, every other row of the
	// table is deleted.
	IDs   []string
	Prune bool
}

// Encode converts a collection value handed to SaveCollection into rows.
// Audit rows are append-only and never pruned.
func Encode(name domain.Collection, value any, now time.Time) (*Batch, error) {
	b := &Batch{Table: Table(name), Key: "id", Prune: true}
	ok := true
	switch name {
	case domain.CollectionUsers:
		var v []domain.User
		if v, ok = value.([]domain.User); ok {
			b.Rows = FromUsers(v)
			for _, u := range v {
				b.IDs = append(b.IDs, u.ID)
			}
		}
	case domain.CollectionCommissions:
		var v []domain.Commission
		if v, ok = value.([]domain.Commission); ok {
			rs, err := FromCommissions(v)
			if err != nil {
				return nil, fmt.Errorf("encode commissions: %w", err)
			}
			b.Rows = rs
			for _, c := range v {
				b.IDs = append(b.IDs, c.ID)
			}
		}
	case domain.CollectionClients:
		var v []domain.Client
		if v, ok = value.([]domain.Client); ok {
			b.Rows = FromClients(v)
			for _, c := range v {
				b.IDs = append(b.IDs, c.ID)
			}
		}
	case domain.CollectionAuditLogs:
		var v []domain.AuditLog
		if v, ok = value.([]domain.AuditLog); ok {
			b.Rows = FromAuditLogs(v)
			b.Prune = false
		}
	case domain.CollectionNotices:
		var v []domain.Notice
		if v, ok = value.([]domain.Notice); ok {
			b.Rows = FromNotices(v)
			for _, n := range v {
				b.IDs = append(b.IDs, n.ID)
			}
		}
	case domain.CollectionGoal:
		var v int
		if v, ok = value.(int); ok {
			b.Key = "key"
			b.Prune = false
			b.Rows = []Setting{{
				Key:       GoalSettingKey,
				Value:     strconv.Itoa(v),
				UpdatedAt: now.UTC().Format(time.RFC3339),
			}}
		}
	default:
		return nil, fmt.Errorf("encode %s: unknown collection", name)
	}
	if !ok {
		return nil, fmt.Errorf("encode %s: unsupported value %T", name, value)
	}
	return b, nil
}

// ============================================================
// Decoding of JSON row arrays
// ============================================================

func decodeList[T any](raw []byte) ([]T, error) {
	out := make([]T, 0)
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = make([]T, 0)
	}
	return out, nil
}

func DecodeUsers(raw []byte) ([]domain.User, error) {
	rs, err := decodeList[User](raw)
	if err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]domain.User, len(rs))
	for i, r := range rs {
		out[i] = r.Domain()
	}
	return out, nil
}

// DecodeCommissions returns the commissions and the ids of entries whose
// observation history could not be parsed.
func DecodeCommissions(raw []byte) ([]domain.Commission, []string, error) {
	rs, err := decodeList[Commission](raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode commissions: %w", err)
	}
	out := make([]domain.Commission, len(rs))
	var bad []string
	for i, r := range rs {
		c, err := r.Domain()
		if err != nil {
			bad = append(bad, r.ID)
		}
		out[i] = c
	}
	return out, bad, nil
}

func DecodeClients(raw []byte) ([]domain.Client, error) {
	rs, err := decodeList[Client](raw)
	if err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	out := make([]domain.Client, len(rs))
	for i, r := range rs {
		out[i] = r.Domain()
	}
	return domain.NormalizeClients(out), nil
}

func DecodeAuditLogs(raw []byte) ([]domain.AuditLog, error) {
	rs, err := decodeList[AuditLog](raw)
	if err != nil {
		return nil, fmt.Errorf("decode audit logs: %w", err)
	}
	out := make([]domain.AuditLog, len(rs))
	for i, r := range rs {
		out[i] = r.Domain()
	}
	return out, nil
}

func DecodeNotices(raw []byte) ([]domain.Notice, error) {
	rs, err := decodeList[Notice](raw)
	if err != nil {
		return nil, fmt.Errorf("decode notices: %w", err)
	}
	out := make([]domain.Notice, len(rs))
	for i, r := range rs {
		out[i] = r.Domain()
	}
	return out, nil
}

// DecodeGoal reads the goal from the settings rows. No row means zero.
func DecodeGoal(raw []byte) (int, error) {
	rs, err := decodeList[Setting](raw)
	if err != nil {
		return 0, fmt.Errorf("decode goal: %w", err)
	}
	for _, r := range rs {
		if r.Key != GoalSettingKey {
			continue
		}
		v, err := strconv.ParseFloat(r.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("decode goal %q: %w", r.Value, err)
		}
		return domain.ClampGoal(v), nil
	}
	return 0, nil
}
