// Package reconcile derives the offsetting transaction that keeps the
// transaction log consistent with budget and savings edits.
//
// Every function is pure: it returns a draft and whether one is needed. The
// caller decides how to persist it.
package reconcile

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// BudgetCreated allocates the full monthly limit of a new budget.
func BudgetCreated(b core.Budget, now time.Time) (core.Transaction, bool) {
	if b.MonthlyLimit.Cents <= 0 {
		return core.Transaction{}, false
	}
	return core.Transaction{
		ContextID:   b.ContextID,
		Description: fmt.Sprintf("Initial budget allocation for %s", b.Category),
		Date:        now.UTC().Format(time.DateOnly),
		Category:    core.CategoryBudget,
		Type:        core.Expense,
		Amount:      b.MonthlyLimit,
		Account:     b.Category,
		Notes:       fmt.Sprintf("Initial budget allocation: %s", b.Category),
	}, true
}

// BudgetUpdated books the change in monthly limit between old and updated.
func BudgetUpdated(old, updated core.Budget, now time.Time) (core.Transaction, bool) {
	diff := updated.MonthlyLimit.Sub(old.MonthlyLimit)
	if diff.IsZero() {
		return core.Transaction{}, false
	}
	txType, direction := core.Expense, "increased"
	if diff.Cents < 0 {
		txType, direction = core.Income, "decreased"
	}
	return core.Transaction{
		ContextID:   updated.ContextID,
		Description: fmt.Sprintf("Budget adjustment for %s", updated.Category),
		Date:        now.UTC().Format(time.DateOnly),
		Category:    core.CategoryBudget,
		Type:        txType,
		Amount:      diff.Abs(),
		Account:     updated.Category,
		Notes:       fmt.Sprintf("Automatic transaction from budget adjustment. Budget %s.", direction),
	}, true
}

// SavingsCreated moves the opening amount into savings. A zero opening amount
// books nothing.
func SavingsCreated(s core.Savings, now time.Time) (core.Transaction, bool) {
	if s.Amount.Cents <= 0 {
		return core.Transaction{}, false
	}
	return core.Transaction{
		ContextID:   s.ContextID,
		Description: fmt.Sprintf("Initial savings for %s", s.Account),
		Date:        now.UTC().Format(time.DateOnly),
		Category:    core.CategorySavings,
		Type:        core.Expense,
		Amount:      s.Amount,
		Account:     s.Account,
		Notes:       fmt.Sprintf("Initial deposit to savings goal: %s", s.Account),
	}, true
}

// SavingsUpdated books a deposit or a withdrawal for the change in amount.
func SavingsUpdated(old, updated core.Savings, now time.Time) (core.Transaction, bool) {
	diff := updated.Amount.Sub(old.Amount)
	if diff.IsZero() {
		return core.Transaction{}, false
	}
	txType, note := core.Expense, "Added to savings."
	if diff.Cents < 0 {
		txType, note = core.Income, "Withdrawn from savings."
	}
	return core.Transaction{
		ContextID:   updated.ContextID,
		Description: fmt.Sprintf("Savings adjustment for %s", updated.Account),
		Date:        now.UTC().Format(time.DateOnly),
		Category:    core.CategorySavings,
		Type:        txType,
		Amount:      diff.Abs(),
		Account:     updated.Account,
		Notes:       "Automatic transaction from savings goal adjustment. " + note,
	}, true
}
