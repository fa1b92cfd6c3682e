package postgres

import "context"

// schema creates the desk tables when missing. Column names match the
// Supabase project of the dashboard.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	username        TEXT NOT NULL UNIQUE,
	password        TEXT NOT NULL,
	name            TEXT NOT NULL,
	role            TEXT NOT NULL,
	department      TEXT NOT NULL,
	avatar_initials TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS commissions (
	id                       TEXT PRIMARY KEY,
	lawyer_name              TEXT NOT NULL,
	lawyer_id                TEXT,
	department               TEXT NOT NULL,
	client_name              TEXT NOT NULL,
	case_type                TEXT NOT NULL DEFAULT '-',
	case_value               DOUBLE PRECISION NOT NULL DEFAULT 0,
	commission_percentage    DOUBLE PRECISION NOT NULL DEFAULT 0,
	commission_value         DOUBLE PRECISION NOT NULL DEFAULT 0,
	status                   TEXT NOT NULL,
	date                     TEXT NOT NULL,
	contract_date            TEXT NOT NULL,
	observations             TEXT,
	observation_history      TEXT,
	approved_by_id           TEXT,
	approved_at              TEXT,
	updated_at               TEXT,
	no_commission            BOOLEAN NOT NULL DEFAULT FALSE,
	lead_phone_number        TEXT,
	lead_expected_birth_date TEXT,
	lead_has_kids_under_5    BOOLEAN,
	lead_work_status         TEXT,
	lead_has_lawyer          BOOLEAN
);

CREATE TABLE IF NOT EXISTS clients (
	id                      TEXT PRIMARY KEY,
	name                    TEXT NOT NULL,
	status                  TEXT NOT NULL DEFAULT 'Lead',
	responsible_department  TEXT,
	responsible_user_id     TEXT,
	responsible_user_name   TEXT,
	note                    TEXT,
	last_contact_date       TEXT,
	birth_date              TEXT,
	gps_due_date            TEXT,
	cpf                     TEXT,
	gov_password            TEXT,
	contract_signature_date TEXT,
	phone_number            TEXT,
	expected_birth_date     TEXT,
	has_kids_under_5        BOOLEAN,
	work_status             TEXT,
	has_lawyer              BOOLEAN,
	created_at              TEXT,
	updated_at              TEXT
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id          TEXT PRIMARY KEY,
	timestamp   TEXT NOT NULL,
	actor_id    TEXT,
	actor_name  TEXT,
	action      TEXT NOT NULL,
	target_type TEXT NOT NULL,
	target_id   TEXT,
	details     TEXT
);

CREATE TABLE IF NOT EXISTS notices (
	id                     TEXT PRIMARY KEY,
	title                  TEXT NOT NULL,
	message                TEXT NOT NULL,
	visible_to_roles       TEXT[] NOT NULL DEFAULT '{}',
	visible_to_departments TEXT[],
	created_by             TEXT,
	created_at             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT
);
`

// EnsureSchema creates missing tables. Existing tables are left untouched.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}
