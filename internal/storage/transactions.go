package storage

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

const transactionColumns = `id, context_id, description, date, category, type, amount_cents, account, notes, created_at`

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var typ string
	err := s.Scan(&t.ID, &t.ContextID, &t.Description, &t.Date, &t.Category,
		&typ, &t.Amount.Cents, &t.Account, &t.Notes, &t.CreatedAt)
	t.Type = core.TransactionType(typ)
	return t, err
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, contextID int64) ([]core.Transaction, error) {
	out, err := queryList(ctx, r.db, scanTransaction,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE context_id = ?
		 ORDER BY date DESC, created_at DESC, id DESC`, contextID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := queryOne(ctx, r.db, scanTransaction,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	if err != nil {
		return t, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	id, err := r.insert(ctx,
		`INSERT INTO transactions (context_id, description, date, category, type, amount_cents, account, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ContextID, t.Description, t.Date, t.Category, string(t.Type), t.Amount.Cents, t.Account, t.Notes)
	if err != nil {
		return t, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"context_id", t.ContextID,
		"type", t.Type,
		"category", t.Category,
		"amount_cents", t.Amount.Cents)

	return r.GetTransaction(ctx, id)
}

// UpdateTransaction rewrites every editable field. Budgets are not touched.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := r.execAffecting(ctx,
		`UPDATE transactions
		 SET description = ?, date = ?, category = ?, type = ?, amount_cents = ?, account = ?, notes = ?
		 WHERE id = ?`,
		t.Description, t.Date, t.Category, string(t.Type), t.Amount.Cents, t.Account, t.Notes, t.ID); err != nil {
		return t, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return r.GetTransaction(ctx, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	if err := r.execAffecting(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}
