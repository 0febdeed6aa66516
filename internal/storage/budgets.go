package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

const budgetColumns = `id, context_id, category, monthly_limit_cents, month, spent_cents, created_at`

func scanBudget(s rowScanner) (core.Budget, error) {
	var b core.Budget
	err := s.Scan(&b.ID, &b.ContextID, &b.Category, &b.MonthlyLimit.Cents, &b.Month, &b.Spent.Cents, &b.CreatedAt)
	return b, err
}

// ListBudgets returns the budgets of one month ordered by category.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, contextID int64, month string) ([]core.Budget, error) {
	out, err := queryList(ctx, r.db, scanBudget,
		`SELECT `+budgetColumns+` FROM budgets
		 WHERE context_id = ? AND month = ?
		 ORDER BY category ASC`, contextID, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	b, err := queryOne(ctx, r.db, scanBudget,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	if err != nil {
		return b, fmt.Errorf("get budget %d: %w", id, err)
	}
	return b, nil
}

// FindBudget looks a budget up by its natural key. Returns core.ErrNotFound
// when no budget covers that category and month.
func (r *SQLiteRepository) FindBudget(ctx context.Context, contextID int64, category, month string) (core.Budget, error) {
	b, err := queryOne(ctx, r.db, scanBudget,
		`SELECT `+budgetColumns+` FROM budgets
		 WHERE context_id = ? AND category = ? AND month = ?
		 ORDER BY id LIMIT 1`, contextID, category, month)
	if err != nil {
		return b, fmt.Errorf("find budget %s/%s: %w", category, month, err)
	}
	return b, nil
}

// CreateBudget inserts b. Spent is written as given; API creates pass zero.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	id, err := r.insert(ctx,
		`INSERT INTO budgets (context_id, category, monthly_limit_cents, month, spent_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		b.ContextID, b.Category, b.MonthlyLimit.Cents, b.Month, b.Spent.Cents)
	if err != nil {
		return b, fmt.Errorf("create budget: %w", err)
	}
	return r.GetBudget(ctx, id)
}

// UpdateBudget changes category, limit and month. Spent is left alone.
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := r.execAffecting(ctx,
		`UPDATE budgets SET category = ?, monthly_limit_cents = ?, month = ? WHERE id = ?`,
		b.Category, b.MonthlyLimit.Cents, b.Month, b.ID); err != nil {
		return b, fmt.Errorf("update budget %d: %w", b.ID, err)
	}
	return r.GetBudget(ctx, b.ID)
}

// SetBudgetSpent overwrites the cached spent counter.
func (r *SQLiteRepository) SetBudgetSpent(ctx context.Context, id int64, spent core.Money) error {
	if err := r.execAffecting(ctx, `UPDATE budgets SET spent_cents = ? WHERE id = ?`, spent.Cents, id); err != nil {
		return fmt.Errorf("set budget %d spent: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	if err := r.execAffecting(ctx, `DELETE FROM budgets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	return nil
}
