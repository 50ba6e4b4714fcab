package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// PostgresRepository stores entities in a single table keyed by
// (domain, handle) with a JSONB data column.
type PostgresRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresRepository creates a PostgresRepository.
func NewPostgresRepository(db *sql.DB, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger}
}

func (r *PostgresRepository) Find(ctx context.Context, domain, handle string) (*Entity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT domain, handle, data, created_at, updated_at
		FROM entities
		WHERE domain = $1 AND handle = $2
	`, domain, handle)

	ent, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Find: %w", err)
	}
	return ent, nil
}

func (r *PostgresRepository) List(ctx context.Context, domain string, filter Filter) ([]*Entity, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT domain, handle, data, created_at, updated_at
		FROM entities
		WHERE domain = $1 AND handle LIKE $2 || '%'
		ORDER BY handle
		LIMIT $3
	`, domain, filter.HandlePrefix, limit)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var out []*Entity
	for rows.Next() {
		ent, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		out = append(out, ent)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, domain, handle string, data map[string]any) (*Entity, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("Create: marshal data: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO entities (domain, handle, data, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (domain, handle) DO NOTHING
		RETURNING domain, handle, data, created_at, updated_at
	`, domain, handle, raw)

	ent, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s %q: %w", singular(domain), handle, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	return ent, nil
}

func (r *PostgresRepository) Update(ctx context.Context, domain, handle string, patch map[string]any) (*Entity, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("Update: marshal patch: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE entities
		SET data = data || $3::jsonb, updated_at = now()
		WHERE domain = $1 AND handle = $2
		RETURNING domain, handle, data, created_at, updated_at
	`, domain, handle, raw)

	ent, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s %q: %w", singular(domain), handle, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	return ent, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, domain, handle string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM entities WHERE domain = $1 AND handle = $2
	`, domain, handle)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %q: %w", singular(domain), handle, ErrNotFound)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(s scanner) (*Entity, error) {
	var ent Entity
	var raw []byte
	if err := s.Scan(&ent.Domain, &ent.Handle, &raw, &ent.CreatedAt, &ent.UpdatedAt); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ent.Data); err != nil {
			return nil, fmt.Errorf("scanEntity: data: %w", err)
		}
	}
	if ent.Data == nil {
		ent.Data = map[string]any{}
	}
	return &ent, nil
}
