package client

import (
	"context"
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/reconcile"
)

// PartialSaveError reports a budget or savings record that was saved while
// the transaction explaining the change was not. Nothing is rolled back.
type PartialSaveError struct {
	Record any // core.Budget or core.Savings as stored
	Draft  core.Transaction
	Err    error
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("record saved but %q was not recorded: %v", e.Draft.Description, e.Err)
}

func (e *PartialSaveError) Unwrap() error { return e.Err }

// BudgetSave is a stored budget and the transaction booked for it, if any.
type BudgetSave struct {
	Budget      core.Budget
	Transaction *CreatedTransaction
}

// SavingsSave is a stored savings record and the transaction booked for it,
// if any.
type SavingsSave struct {
	Savings     core.Savings
	Transaction *CreatedTransaction
}

// CreateBudget stores b and books its monthly limit as an Expense.
func (c *Client) CreateBudget(ctx context.Context, b core.Budget) (BudgetSave, error) {
	var saved core.Budget
	if err := c.do(ctx, http.MethodPost, "/api/budgets", nil, b, &saved); err != nil {
		return BudgetSave{}, err
	}
	c.publish(ctx, events.EntityBudget, events.ActionCreated, saved.ContextID, saved.ID)

	draft, ok := reconcile.BudgetCreated(saved, c.now())
	tx, err := c.book(ctx, saved, draft, ok)
	return BudgetSave{Budget: saved, Transaction: tx}, err
}

// UpdateBudget replaces previous with updated and books the change in limit.
// previous must be the budget as last read from the server.
func (c *Client) UpdateBudget(ctx context.Context, previous, updated core.Budget) (BudgetSave, error) {
	var saved core.Budget
	if err := c.do(ctx, http.MethodPut, idPath("budgets", previous.ID), nil, updated, &saved); err != nil {
		return BudgetSave{}, err
	}
	c.publish(ctx, events.EntityBudget, events.ActionUpdated, saved.ContextID, saved.ID)

	draft, ok := reconcile.BudgetUpdated(previous, saved, c.now())
	tx, err := c.book(ctx, saved, draft, ok)
	return BudgetSave{Budget: saved, Transaction: tx}, err
}

// CreateSavings stores s and books its opening amount as an Expense. An
// opening amount of zero books nothing.
func (c *Client) CreateSavings(ctx context.Context, s core.Savings) (SavingsSave, error) {
	var saved core.Savings
	if err := c.do(ctx, http.MethodPost, "/api/savings", nil, s, &saved); err != nil {
		return SavingsSave{}, err
	}
	c.publish(ctx, events.EntitySavings, events.ActionCreated, saved.ContextID, saved.ID)

	draft, ok := reconcile.SavingsCreated(saved, c.now())
	tx, err := c.book(ctx, saved, draft, ok)
	return SavingsSave{Savings: saved, Transaction: tx}, err
}

// UpdateSavings replaces previous with updated and books the deposit or
// withdrawal. previous must be the record as last read from the server.
func (c *Client) UpdateSavings(ctx context.Context, previous, updated core.Savings) (SavingsSave, error) {
	var saved core.Savings
	if err := c.do(ctx, http.MethodPut, idPath("savings", previous.ID), nil, updated, &saved); err != nil {
		return SavingsSave{}, err
	}
	c.publish(ctx, events.EntitySavings, events.ActionUpdated, saved.ContextID, saved.ID)

	draft, ok := reconcile.SavingsUpdated(previous, saved, c.now())
	tx, err := c.book(ctx, saved, draft, ok)
	return SavingsSave{Savings: saved, Transaction: tx}, err
}

// book posts draft when needed. A failure is wrapped in PartialSaveError
// since the record itself is already stored.
func (c *Client) book(ctx context.Context, record any, draft core.Transaction, needed bool) (*CreatedTransaction, error) {
	if !needed {
		return nil, nil
	}
	tx, err := c.CreateTransaction(ctx, draft)
	if err != nil {
		c.logger.ErrorContext(ctx, "Synthesized transaction not recorded",
			"description", draft.Description, "error", err)
		return nil, &PartialSaveError{Record: record, Draft: draft, Err: err}
	}
	return &tx, nil
}
