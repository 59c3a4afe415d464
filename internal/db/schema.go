package db

import (
	"context"
	"fmt"

	"github.com/expotoworld/programs-service/internal/logging"
)

// schemaStatements create the programs schema. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS programs (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		subtitle TEXT,
		category TEXT NOT NULL CHECK (category IN ('xseries')),
		status TEXT NOT NULL DEFAULT 'unpublished'
			CHECK (status IN ('unpublished', 'active', 'retired', 'deleted')),
		banner_image_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT programs_name_key UNIQUE (name)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_programs_status ON programs(status);`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id BIGSERIAL PRIMARY KEY,
		key TEXT NOT NULL,
		display_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT organizations_key_key UNIQUE (key)
	);`,
	`CREATE TABLE IF NOT EXISTS course_codes (
		id BIGSERIAL PRIMARY KEY,
		organization_id BIGINT NOT NULL REFERENCES organizations(id) ON DELETE RESTRICT,
		key TEXT NOT NULL,
		display_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT course_codes_org_key_key UNIQUE (organization_id, key)
	);`,
	`CREATE TABLE IF NOT EXISTS course_code_run_modes (
		id BIGSERIAL PRIMARY KEY,
		course_code_id BIGINT NOT NULL REFERENCES course_codes(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		course_key TEXT NOT NULL,
		mode_slug TEXT NOT NULL,
		sku TEXT,
		start_date TIMESTAMPTZ,
		CONSTRAINT course_code_run_modes_position_key UNIQUE (course_code_id, position)
	);`,
	`CREATE TABLE IF NOT EXISTS program_organizations (
		id BIGSERIAL PRIMARY KEY,
		program_id BIGINT NOT NULL REFERENCES programs(id) ON DELETE CASCADE,
		organization_id BIGINT NOT NULL REFERENCES organizations(id) ON DELETE RESTRICT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT program_organizations_pair_key UNIQUE (program_id, organization_id)
	);`,
	`CREATE TABLE IF NOT EXISTS program_course_codes (
		id BIGSERIAL PRIMARY KEY,
		program_id BIGINT NOT NULL REFERENCES programs(id) ON DELETE CASCADE,
		course_code_id BIGINT NOT NULL REFERENCES course_codes(id) ON DELETE RESTRICT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT program_course_codes_pair_key UNIQUE (program_id, course_code_id)
	);`,
}

// InitSchema creates/verifies the programs tables.
// Safe to call at startup; idempotent.
func (db *Database) InitSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("nil pool")
	}
	for i, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logging.LogKV("info", "schema ready", map[string]interface{}{"statements": len(schemaStatements)})
	return nil
}
