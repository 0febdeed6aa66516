package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"
)

// ExportBundle reads every record of a context in export order.
func (r *SQLiteRepository) ExportBundle(ctx context.Context, contextID int64) (core.ExportBundle, error) {
	var b core.ExportBundle
	var err error

	if b.Transactions, err = queryList(ctx, r.db, scanTransaction,
		`SELECT `+transactionColumns+` FROM transactions WHERE context_id = ? ORDER BY date DESC, id DESC`, contextID); err != nil {
		return b, fmt.Errorf("export transactions: %w", err)
	}
	if b.Subscriptions, err = queryList(ctx, r.db, scanSubscription,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE context_id = ? ORDER BY service`, contextID); err != nil {
		return b, fmt.Errorf("export subscriptions: %w", err)
	}
	if b.Savings, err = queryList(ctx, r.db, scanSavings,
		`SELECT `+savingsColumns+` FROM savings WHERE context_id = ? ORDER BY account`, contextID); err != nil {
		return b, fmt.Errorf("export savings: %w", err)
	}
	if b.Budgets, err = queryList(ctx, r.db, scanBudget,
		`SELECT `+budgetColumns+` FROM budgets WHERE context_id = ? ORDER BY month DESC, category`, contextID); err != nil {
		return b, fmt.Errorf("export budgets: %w", err)
	}
	if b.Investments, err = queryList(ctx, r.db, scanInvestment,
		`SELECT `+investmentColumns+` FROM investments WHERE context_id = ? ORDER BY asset_name`, contextID); err != nil {
		return b, fmt.Errorf("export investments: %w", err)
	}
	return b, nil
}

// Backup writes a consistent copy of the whole database into dir using
// VACUUM INTO, which is safe while the database is in use.
func (r *SQLiteRepository) Backup(ctx context.Context, dir string, now time.Time) (core.Backup, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return core.Backup{}, fmt.Errorf("create backup directory: %w", err)
	}
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(now.UTC().Format("2006-01-02T15:04:05.000Z"))
	name := "finance-backup-" + stamp + ".db"
	full, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return core.Backup{}, fmt.Errorf("resolve backup path: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `VACUUM INTO ?`, full); err != nil {
		return core.Backup{}, fmt.Errorf("vacuum into %s: %w", full, err)
	}

	return core.Backup{
		Message:    "Backup created successfully",
		BackupFile: name,
		BackupPath: full,
		Timestamp:  now.UTC().Format(time.RFC3339Nano),
	}, nil
}
