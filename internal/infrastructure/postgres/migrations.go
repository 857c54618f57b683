package postgres

import (
	"context"
	"fmt"
)

// schema crea las tablas del libro escolar. ledger_event_seq ordena recepciones, movimientos,
// consumos y traslados con un mismo contador para desempatar eventos con igual fecha.
var schema = []string{
	`CREATE SEQUENCE IF NOT EXISTS ledger_event_seq`,
	`CREATE TABLE IF NOT EXISTS schools (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		purchasing_group_id TEXT,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id            TEXT PRIMARY KEY,
		school_id     TEXT NOT NULL,
		supplier_name TEXT NOT NULL DEFAULT '',
		number        TEXT NOT NULL DEFAULT '',
		issued_at     TIMESTAMPTZ NOT NULL,
		status        TEXT NOT NULL,
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_items (
		id           TEXT PRIMARY KEY,
		invoice_id   TEXT NOT NULL REFERENCES invoices(id),
		product_key  TEXT NOT NULL,
		description  TEXT NOT NULL,
		unit_measure TEXT NOT NULL,
		quantity     NUMERIC(20,6) NOT NULL,
		unit_price   NUMERIC(20,6) NOT NULL,
		seq          BIGINT NOT NULL DEFAULT nextval('ledger_event_seq')
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_items_product ON invoice_items (product_key)`,
	`CREATE TABLE IF NOT EXISTS inventory_movements (
		id           TEXT PRIMARY KEY,
		seq          BIGINT NOT NULL DEFAULT nextval('ledger_event_seq'),
		product_key  TEXT NOT NULL,
		description  TEXT NOT NULL,
		unit_measure TEXT NOT NULL,
		type         TEXT NOT NULL,
		quantity     NUMERIC(20,6) NOT NULL,
		unit_cost    NUMERIC(20,6) NOT NULL,
		total_cost   NUMERIC(24,6) NOT NULL,
		occurred_at  TIMESTAMPTZ NOT NULL,
		origin       TEXT NOT NULL,
		destination  TEXT,
		reason       TEXT,
		school_id    TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_by   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_product ON inventory_movements (school_id, product_key)`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id            TEXT PRIMARY KEY,
		school_id     TEXT NOT NULL,
		supplier_name TEXT NOT NULL DEFAULT '',
		number        TEXT NOT NULL DEFAULT '',
		valid_from    TIMESTAMPTZ NOT NULL,
		valid_until   TIMESTAMPTZ NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS contract_items (
		id                  TEXT PRIMARY KEY,
		contract_id         TEXT NOT NULL REFERENCES contracts(id),
		school_id           TEXT NOT NULL,
		description         TEXT NOT NULL,
		unit_measure        TEXT NOT NULL,
		unit_price          NUMERIC(20,6) NOT NULL,
		contracted_quantity NUMERIC(20,6) NOT NULL,
		available_balance   NUMERIC(20,6) NOT NULL CHECK (available_balance >= 0),
		version             BIGINT NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contract_items_school ON contract_items (school_id)`,
	`CREATE TABLE IF NOT EXISTS transfers (
		id               TEXT PRIMARY KEY,
		seq              BIGINT NOT NULL DEFAULT nextval('ledger_event_seq'),
		contract_item_id TEXT NOT NULL,
		from_school_id   TEXT NOT NULL,
		to_school_id     TEXT NOT NULL,
		quantity         NUMERIC(20,6) NOT NULL,
		justification    TEXT NOT NULL,
		actor            TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_item ON transfers (contract_item_id)`,
	`CREATE TABLE IF NOT EXISTS contract_consumptions (
		id               TEXT PRIMARY KEY,
		seq              BIGINT NOT NULL DEFAULT nextval('ledger_event_seq'),
		contract_item_id TEXT NOT NULL,
		school_id        TEXT NOT NULL,
		quantity         NUMERIC(20,6) NOT NULL,
		reason           TEXT NOT NULL,
		actor            TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_consumptions_item ON contract_consumptions (contract_item_id)`,
}

// Migrate aplica el esquema; es idempotente.
func Migrate(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migración %d: %w", i, err)
		}
	}
	return nil
}
