package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

const contextColumns = `id, name, type, created_at`

func scanContext(s rowScanner) (core.Context, error) {
	var c core.Context
	var typ string
	err := s.Scan(&c.ID, &c.Name, &typ, &c.CreatedAt)
	c.Type = core.ContextType(typ)
	return c, err
}

func (r *SQLiteRepository) ListContexts(ctx context.Context) ([]core.Context, error) {
	out, err := queryList(ctx, r.db, scanContext,
		`SELECT `+contextColumns+` FROM contexts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list contexts: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetContext(ctx context.Context, id int64) (core.Context, error) {
	c, err := queryOne(ctx, r.db, scanContext,
		`SELECT `+contextColumns+` FROM contexts WHERE id = ?`, id)
	if err != nil {
		return c, fmt.Errorf("get context %d: %w", id, err)
	}
	return c, nil
}

// ContextExists reports whether a context with id exists.
func (r *SQLiteRepository) ContextExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM contexts WHERE id = ?`, id).Scan(&one)
	if err != nil {
		return false, fmt.Errorf("check context %d: %w", id, err)
	}
	return one > 0, nil
}

func (r *SQLiteRepository) CreateContext(ctx context.Context, c core.Context) (core.Context, error) {
	id, err := r.insert(ctx, `INSERT INTO contexts (name, type) VALUES (?, ?)`, c.Name, string(c.Type))
	if err != nil {
		return c, fmt.Errorf("create context: %w", err)
	}
	return r.GetContext(ctx, id)
}

func (r *SQLiteRepository) UpdateContext(ctx context.Context, c core.Context) (core.Context, error) {
	if err := r.execAffecting(ctx, `UPDATE contexts SET name = ?, type = ? WHERE id = ?`,
		c.Name, string(c.Type), c.ID); err != nil {
		return c, fmt.Errorf("update context %d: %w", c.ID, err)
	}
	return r.GetContext(ctx, c.ID)
}

// DeleteContext removes the context and, through ON DELETE CASCADE, every
// record that references it.
func (r *SQLiteRepository) DeleteContext(ctx context.Context, id int64) error {
	if err := r.execAffecting(ctx, `DELETE FROM contexts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete context %d: %w", id, err)
	}
	return nil
}
