package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

// MonthTotals sums Income and Expense transactions dated in month (YYYY-MM).
func (r *SQLiteRepository) MonthTotals(ctx context.Context, contextID int64, month string) (income, expenses core.Money, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN type = 'Income' THEN amount_cents END), 0),
			COALESCE(SUM(CASE WHEN type = 'Expense' THEN amount_cents END), 0)
		 FROM transactions
		 WHERE context_id = ? AND strftime('%Y-%m', date) = ?`, contextID, month).
		Scan(&income.Cents, &expenses.Cents)
	if err != nil {
		err = fmt.Errorf("month totals: %w", err)
	}
	return income, expenses, err
}

func (r *SQLiteRepository) SpendingByCategory(ctx context.Context, contextID int64, month string) ([]core.CategoryAmount, error) {
	out, err := queryList(ctx, r.db, func(s rowScanner) (core.CategoryAmount, error) {
		var c core.CategoryAmount
		err := s.Scan(&c.Category, &c.Total.Cents)
		return c, err
	},
		`SELECT category, SUM(amount_cents) AS total
		 FROM transactions
		 WHERE context_id = ? AND type = 'Expense' AND strftime('%Y-%m', date) = ?
		 GROUP BY category
		 ORDER BY total DESC, category ASC`, contextID, month)
	if err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}
	return out, nil
}

// ActiveSubscriptionTotal sums the amounts of Active subscriptions regardless
// of billing frequency.
func (r *SQLiteRepository) ActiveSubscriptionTotal(ctx context.Context, contextID int64) (core.Money, error) {
	var total core.Money
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM subscriptions WHERE context_id = ? AND status = 'Active'`,
		contextID).Scan(&total.Cents)
	if err != nil {
		return total, fmt.Errorf("active subscription total: %w", err)
	}
	return total, nil
}

func (r *SQLiteRepository) InvestmentTotals(ctx context.Context, contextID int64) (invested, current core.Money, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_invested_cents), 0), COALESCE(SUM(current_value_cents), 0)
		 FROM investments WHERE context_id = ?`, contextID).
		Scan(&invested.Cents, &current.Cents)
	if err != nil {
		err = fmt.Errorf("investment totals: %w", err)
	}
	return invested, current, err
}

// SavingsProgress groups savings rows by account name.
func (r *SQLiteRepository) SavingsProgress(ctx context.Context, contextID int64) ([]core.SavingsProgress, error) {
	out, err := queryList(ctx, r.db, func(s rowScanner) (core.SavingsProgress, error) {
		var p core.SavingsProgress
		err := s.Scan(&p.Account, &p.Amount.Cents, &p.Goal.Cents)
		return p, err
	},
		`SELECT account, SUM(amount_cents), MAX(goal_cents)
		 FROM savings
		 WHERE context_id = ?
		 GROUP BY account
		 ORDER BY account ASC`, contextID)
	if err != nil {
		return nil, fmt.Errorf("savings progress: %w", err)
	}
	return out, nil
}

// BudgetVsActual recomputes each budget's spending from Expense transactions
// and reports it next to the cached spent counter.
func (r *SQLiteRepository) BudgetVsActual(ctx context.Context, contextID int64, month string) ([]core.BudgetVsActual, error) {
	out, err := queryList(ctx, r.db, func(s rowScanner) (core.BudgetVsActual, error) {
		var b core.BudgetVsActual
		err := s.Scan(&b.Category, &b.MonthlyLimit.Cents, &b.Spent.Cents, &b.ActualSpending.Cents)
		return b, err
	},
		`SELECT b.category, b.monthly_limit_cents, b.spent_cents, COALESCE(SUM(t.amount_cents), 0)
		 FROM budgets b
		 LEFT JOIN transactions t
		   ON t.context_id = b.context_id
		  AND t.category = b.category
		  AND t.type = 'Expense'
		  AND strftime('%Y-%m', t.date) = b.month
		 WHERE b.context_id = ? AND b.month = ?
		 GROUP BY b.id
		 ORDER BY b.category ASC`, contextID, month)
	if err != nil {
		return nil, fmt.Errorf("budget vs actual: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) RecentTransactions(ctx context.Context, contextID int64, limit int) ([]core.Transaction, error) {
	out, err := queryList(ctx, r.db, scanTransaction,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE context_id = ?
		 ORDER BY date DESC, created_at DESC, id DESC
		 LIMIT ?`, contextID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return out, nil
}

// UpcomingRenewals lists Active subscriptions billing on or before through
// (YYYY-MM-DD), soonest first. Overdue ones are included.
func (r *SQLiteRepository) UpcomingRenewals(ctx context.Context, contextID int64, through string, limit int) ([]core.Subscription, error) {
	out, err := queryList(ctx, r.db, scanSubscription,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE context_id = ? AND status = 'Active' AND next_billing_date <= ?
		 ORDER BY next_billing_date ASC
		 LIMIT ?`, contextID, through, limit)
	if err != nil {
		return nil, fmt.Errorf("upcoming renewals: %w", err)
	}
	return out, nil
}
