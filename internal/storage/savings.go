package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

const savingsColumns = `id, context_id, account, date, amount_cents, goal_cents, description, created_at`

func scanSavings(s rowScanner) (core.Savings, error) {
	var sv core.Savings
	var date, desc sql.NullString
	err := s.Scan(&sv.ID, &sv.ContextID, &sv.Account, &date, &sv.Amount.Cents, &sv.Goal.Cents, &desc, &sv.CreatedAt)
	sv.Date = date.String
	sv.Description = desc.String
	return sv, err
}

func (r *SQLiteRepository) ListSavings(ctx context.Context, contextID int64) ([]core.Savings, error) {
	out, err := queryList(ctx, r.db, scanSavings,
		`SELECT `+savingsColumns+` FROM savings
		 WHERE context_id = ?
		 ORDER BY date DESC, created_at DESC, id DESC`, contextID)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetSavings(ctx context.Context, id int64) (core.Savings, error) {
	sv, err := queryOne(ctx, r.db, scanSavings,
		`SELECT `+savingsColumns+` FROM savings WHERE id = ?`, id)
	if err != nil {
		return sv, fmt.Errorf("get savings %d: %w", id, err)
	}
	return sv, nil
}

func (r *SQLiteRepository) CreateSavings(ctx context.Context, sv core.Savings) (core.Savings, error) {
	id, err := r.insert(ctx,
		`INSERT INTO savings (context_id, account, date, amount_cents, goal_cents, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sv.ContextID, sv.Account, nullString(sv.Date), sv.Amount.Cents, sv.Goal.Cents, nullString(sv.Description))
	if err != nil {
		return sv, fmt.Errorf("create savings: %w", err)
	}
	return r.GetSavings(ctx, id)
}

func (r *SQLiteRepository) UpdateSavings(ctx context.Context, sv core.Savings) (core.Savings, error) {
	if err := r.execAffecting(ctx,
		`UPDATE savings SET account = ?, date = ?, amount_cents = ?, goal_cents = ?, description = ? WHERE id = ?`,
		sv.Account, nullString(sv.Date), sv.Amount.Cents, sv.Goal.Cents, nullString(sv.Description), sv.ID); err != nil {
		return sv, fmt.Errorf("update savings %d: %w", sv.ID, err)
	}
	return r.GetSavings(ctx, sv.ID)
}

func (r *SQLiteRepository) DeleteSavings(ctx context.Context, id int64) error {
	if err := r.execAffecting(ctx, `DELETE FROM savings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete savings %d: %w", id, err)
	}
	return nil
}
