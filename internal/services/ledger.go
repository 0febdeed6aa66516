package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// BudgetStore is what the ledger reads and writes.
type BudgetStore interface {
	FindBudget(ctx context.Context, contextID int64, category, month string) (core.Budget, error)
	SetBudgetSpent(ctx context.Context, id int64, spent core.Money) error
}

// BudgetLedger keeps each budget's spent counter in step with the Expense
// transactions recorded against it.
//
// The counter only ever grows: it is bumped when an Expense is created and
// left alone when transactions are edited or deleted. The lookup and the
// write are two statements with no lock between them, so two concurrent
// expenses on one budget can lose an increment.
type BudgetLedger struct {
	store  BudgetStore
	logger *log.StructuredLogger
}

func NewBudgetLedger(store BudgetStore, logger *log.Logger) *BudgetLedger {
	if logger == nil {
		logger = log.Discard()
	}
	return &BudgetLedger{store: store, logger: log.NewStructuredLogger(logger.WithComponent(log.ComponentLedger))}
}

// Record books t against its budget and returns a warning when the budget
// is now over its limit. Income, and expenses with no matching budget, are
// ignored. t must already be validated.
func (l *BudgetLedger) Record(ctx context.Context, t core.Transaction) (*core.BudgetWarning, error) {
	if t.Type != core.Expense {
		return nil, nil
	}
	month, err := core.MonthOf(t.Date)
	if err != nil {
		return nil, err
	}

	budget, err := l.store.FindBudget(ctx, t.ContextID, t.Category, month)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger lookup: %w", err)
	}

	spent := budget.Spent.Add(t.Amount)
	if err := l.store.SetBudgetSpent(ctx, budget.ID, spent); err != nil {
		return nil, fmt.Errorf("ledger update: %w", err)
	}

	warning := core.NewBudgetWarning(budget.Category, spent, budget.MonthlyLimit)
	if warning != nil {
		l.logger.LogBudgetExceeded(ctx, t.ContextID, budget.Category, month, spent.Cents, budget.MonthlyLimit.Cents)
	}
	return warning, nil
}
