package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrUnknownCollection = errors.New("unknown read model collection")

// PostgresReadStore implements ReadStoreInterface over the read_models table.
// Each collection is registered with a constructor for its model type so
// that rows decode back into the same type the projector stored.
type PostgresReadStore struct {
	db *sql.DB

	mu          sync.RWMutex
	collections map[string]func() any
}

func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db, collections: make(map[string]func() any)}
}

// RegisterCollection sets the model constructor for collection. newModel
// must return a pointer.
func (rs *PostgresReadStore) RegisterCollection(collection string, newModel func() any) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.collections[collection] = newModel
}

func (rs *PostgresReadStore) Set(ctx context.Context, collection, id string, data any) error {
	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", collection, id, err)
	}
	_, err = rs.db.ExecContext(ctx, `
		INSERT INTO read_models (collection, id, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`, collection, id, doc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (rs *PostgresReadStore) Get(ctx context.Context, collection, id string) (any, bool, error) {
	var doc []byte
	err := rs.db.QueryRowContext(ctx,
		`SELECT data FROM read_models WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	model, err := rs.decode(collection, doc)
	if err != nil {
		return nil, false, err
	}
	return model, true, nil
}

func (rs *PostgresReadStore) GetAll(ctx context.Context, collection string) ([]any, error) {
	rows, err := rs.db.QueryContext(ctx,
		`SELECT data FROM read_models WHERE collection = $1 ORDER BY id ASC`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	items := []any{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
		}
		model, err := rs.decode(collection, doc)
		if err != nil {
			return nil, err
		}
		items = append(items, model)
	}
	return items, rows.Err()
}

func (rs *PostgresReadStore) Delete(ctx context.Context, collection, id string) error {
	_, err := rs.db.ExecContext(ctx,
		`DELETE FROM read_models WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (rs *PostgresReadStore) decode(collection string, doc []byte) (any, error) {
	rs.mu.RLock()
	newModel, ok := rs.collections[collection]
	rs.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	model := newModel()
	if err := json.Unmarshal(doc, model); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return model, nil
}
