package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id             UUID PRIMARY KEY,
	aggregate_id   TEXT        NOT NULL,
	aggregate_type TEXT        NOT NULL,
	event_type     TEXT        NOT NULL,
	data           JSONB       NOT NULL,
	version        INTEGER     NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	UNIQUE (aggregate_id, version)
);

CREATE TABLE IF NOT EXISTS snapshots (
	aggregate_id   TEXT PRIMARY KEY,
	aggregate_type TEXT        NOT NULL,
	version        INTEGER     NOT NULL,
	state          JSONB       NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS read_models (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	data       JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (collection, id)
);

CREATE TABLE IF NOT EXISTS catalog_products (
	id           TEXT PRIMARY KEY,
	name         TEXT        NOT NULL,
	category     TEXT        NOT NULL,
	brand        TEXT        NOT NULL DEFAULT '',
	price        INTEGER     NOT NULL,
	sale_price   INTEGER,
	rating       REAL        NOT NULL DEFAULT 0,
	review_count INTEGER     NOT NULL DEFAULT 0,
	in_stock     BOOLEAN     NOT NULL DEFAULT TRUE,
	is_new       BOOLEAN     NOT NULL DEFAULT FALSE,
	tags         TEXT[]      NOT NULL DEFAULT '{}',
	image_url    TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate creates the tables used by the Postgres stores and catalog provider.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
