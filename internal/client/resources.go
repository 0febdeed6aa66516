package client

import (
	"context"
	"errors"
	"io"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/events"
)

// ErrLastContext is returned when deleting the only remaining context.
var ErrLastContext = errors.New("cannot delete the last context")

type message struct {
	Message string `json:"message"`
}

func (c *Client) ListContexts(ctx context.Context) ([]core.Context, error) {
	var out []core.Context
	err := c.do(ctx, http.MethodGet, "/api/contexts", nil, nil, &out)
	return out, err
}

func (c *Client) CreateContext(ctx context.Context, in core.Context) (core.Context, error) {
	var out core.Context
	if err := c.do(ctx, http.MethodPost, "/api/contexts", nil, in, &out); err != nil {
		return core.Context{}, err
	}
	c.publish(ctx, events.EntityContext, events.ActionCreated, out.ID, out.ID)
	return out, nil
}

func (c *Client) UpdateContext(ctx context.Context, id int64, in core.Context) (core.Context, error) {
	var out core.Context
	if err := c.do(ctx, http.MethodPut, idPath("contexts", id), nil, in, &out); err != nil {
		return core.Context{}, err
	}
	c.publish(ctx, events.EntityContext, events.ActionUpdated, id, id)
	return out, nil
}

// DeleteContext removes a context and, on the server, everything in it. The
// last remaining context is never deleted.
func (c *Client) DeleteContext(ctx context.Context, id int64) error {
	all, err := c.ListContexts(ctx)
	if err != nil {
		return err
	}
	if len(all) <= 1 {
		return ErrLastContext
	}
	if err := c.do(ctx, http.MethodDelete, idPath("contexts", id), nil, nil, &message{}); err != nil {
		return err
	}
	c.publish(ctx, events.EntityContext, events.ActionDeleted, id, id)
	return nil
}

// CreatedTransaction is a stored transaction plus the budget warning the
// server attaches when it pushed a budget over its limit.
type CreatedTransaction struct {
	core.Transaction
	BudgetWarning *core.BudgetWarning `json:"budgetWarning,omitempty"`
}

func (c *Client) ListTransactions(ctx context.Context, contextID int64) ([]core.Transaction, error) {
	var out []core.Transaction
	err := c.do(ctx, http.MethodGet, "/api/transactions", contextQuery(contextID), nil, &out)
	return out, err
}

func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (CreatedTransaction, error) {
	var out CreatedTransaction
	if err := c.do(ctx, http.MethodPost, "/api/transactions", nil, t, &out); err != nil {
		return CreatedTransaction{}, err
	}
	if out.BudgetWarning != nil {
		c.logger.WarnContext(ctx, out.BudgetWarning.Message, "details", out.BudgetWarning.Details)
	}
	c.publish(ctx, events.EntityTransaction, events.ActionCreated, out.ContextID, out.ID)
	return out, nil
}

// UpdateTransaction edits a transaction. Budgets and savings are not touched.
func (c *Client) UpdateTransaction(ctx context.Context, id int64, t core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	if err := c.do(ctx, http.MethodPut, idPath("transactions", id), nil, t, &out); err != nil {
		return core.Transaction{}, err
	}
	c.publish(ctx, events.EntityTransaction, events.ActionUpdated, out.ContextID, id)
	return out, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, contextID, id int64) error {
	return c.deleteRecord(ctx, "transactions", events.EntityTransaction, contextID, id)
}

func (c *Client) ListBudgets(ctx context.Context, contextID int64, month string) ([]core.Budget, error) {
	q := contextQuery(contextID)
	q.Set("month", month)
	var out []core.Budget
	err := c.do(ctx, http.MethodGet, "/api/budgets", q, nil, &out)
	return out, err
}

func (c *Client) DeleteBudget(ctx context.Context, contextID, id int64) error {
	return c.deleteRecord(ctx, "budgets", events.EntityBudget, contextID, id)
}

func (c *Client) ListSavings(ctx context.Context, contextID int64) ([]core.Savings, error) {
	var out []core.Savings
	err := c.do(ctx, http.MethodGet, "/api/savings", contextQuery(contextID), nil, &out)
	return out, err
}

func (c *Client) DeleteSavings(ctx context.Context, contextID, id int64) error {
	return c.deleteRecord(ctx, "savings", events.EntitySavings, contextID, id)
}

func (c *Client) ListSubscriptions(ctx context.Context, contextID int64) ([]core.Subscription, error) {
	var out []core.Subscription
	err := c.do(ctx, http.MethodGet, "/api/subscriptions", contextQuery(contextID), nil, &out)
	return out, err
}

func (c *Client) CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	var out core.Subscription
	if err := c.do(ctx, http.MethodPost, "/api/subscriptions", nil, s, &out); err != nil {
		return core.Subscription{}, err
	}
	c.publish(ctx, events.EntitySubscription, events.ActionCreated, out.ContextID, out.ID)
	return out, nil
}

func (c *Client) UpdateSubscription(ctx context.Context, id int64, s core.Subscription) (core.Subscription, error) {
	var out core.Subscription
	if err := c.do(ctx, http.MethodPut, idPath("subscriptions", id), nil, s, &out); err != nil {
		return core.Subscription{}, err
	}
	c.publish(ctx, events.EntitySubscription, events.ActionUpdated, out.ContextID, id)
	return out, nil
}

func (c *Client) DeleteSubscription(ctx context.Context, contextID, id int64) error {
	return c.deleteRecord(ctx, "subscriptions", events.EntitySubscription, contextID, id)
}

func (c *Client) ListInvestments(ctx context.Context, contextID int64) ([]core.Investment, error) {
	var out []core.Investment
	err := c.do(ctx, http.MethodGet, "/api/investments", contextQuery(contextID), nil, &out)
	return out, err
}

func (c *Client) CreateInvestment(ctx context.Context, i core.Investment) (core.Investment, error) {
	var out core.Investment
	if err := c.do(ctx, http.MethodPost, "/api/investments", nil, i, &out); err != nil {
		return core.Investment{}, err
	}
	c.publish(ctx, events.EntityInvestment, events.ActionCreated, out.ContextID, out.ID)
	return out, nil
}

func (c *Client) UpdateInvestment(ctx context.Context, id int64, i core.Investment) (core.Investment, error) {
	var out core.Investment
	if err := c.do(ctx, http.MethodPut, idPath("investments", id), nil, i, &out); err != nil {
		return core.Investment{}, err
	}
	c.publish(ctx, events.EntityInvestment, events.ActionUpdated, out.ContextID, id)
	return out, nil
}

func (c *Client) DeleteInvestment(ctx context.Context, contextID, id int64) error {
	return c.deleteRecord(ctx, "investments", events.EntityInvestment, contextID, id)
}

func (c *Client) deleteRecord(ctx context.Context, collection string, entity events.Entity, contextID, id int64) error {
	if err := c.do(ctx, http.MethodDelete, idPath(collection, id), nil, nil, &message{}); err != nil {
		return err
	}
	c.publish(ctx, entity, events.ActionDeleted, contextID, id)
	return nil
}

func (c *Client) Dashboard(ctx context.Context, contextID int64) (core.Dashboard, error) {
	var out core.Dashboard
	err := c.do(ctx, http.MethodGet, "/api/dashboard", contextQuery(contextID), nil, &out)
	return out, err
}

func (c *Client) Export(ctx context.Context, contextID int64) (core.Export, error) {
	var out core.Export
	err := c.do(ctx, http.MethodGet, "/api/export", contextQuery(contextID), nil, &out)
	return out, err
}

// ExportXLSX copies the workbook of contextID to w.
func (c *Client) ExportXLSX(ctx context.Context, contextID int64, w io.Writer) error {
	return c.do(ctx, http.MethodGet, "/api/export/xlsx", contextQuery(contextID), nil, w)
}

type importRequest struct {
	ContextID int64             `json:"context_id"`
	Data      core.ExportBundle `json:"data"`
}

type importResponse struct {
	Message string             `json:"message"`
	Results core.ImportResults `json:"results"`
}

// Import loads a previous export into contextID.
func (c *Client) Import(ctx context.Context, contextID int64, data core.ExportBundle) (core.ImportResults, error) {
	var out importResponse
	if err := c.do(ctx, http.MethodPost, "/api/export/import", nil, importRequest{ContextID: contextID, Data: data}, &out); err != nil {
		return core.ImportResults{}, err
	}
	c.publish(ctx, events.EntityContext, events.ActionImported, contextID, contextID)
	return out.Results, nil
}

func (c *Client) Backup(ctx context.Context) (core.Backup, error) {
	var out core.Backup
	err := c.do(ctx, http.MethodGet, "/api/export/backup", nil, nil, &out)
	return out, err
}
