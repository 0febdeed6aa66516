package services

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/events"
)

// Store is the persistence the services need. *storage.SQLiteRepository
// satisfies it.
type Store interface {
	BudgetStore
	DashboardStore

	ListContexts(ctx context.Context) ([]core.Context, error)
	GetContext(ctx context.Context, id int64) (core.Context, error)
	ContextExists(ctx context.Context, id int64) (bool, error)
	CreateContext(ctx context.Context, c core.Context) (core.Context, error)
	UpdateContext(ctx context.Context, c core.Context) (core.Context, error)
	DeleteContext(ctx context.Context, id int64) error

	ListTransactions(ctx context.Context, contextID int64) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error

	ListBudgets(ctx context.Context, contextID int64, month string) ([]core.Budget, error)
	GetBudget(ctx context.Context, id int64) (core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, id int64) error

	ListSavings(ctx context.Context, contextID int64) ([]core.Savings, error)
	GetSavings(ctx context.Context, id int64) (core.Savings, error)
	CreateSavings(ctx context.Context, s core.Savings) (core.Savings, error)
	UpdateSavings(ctx context.Context, s core.Savings) (core.Savings, error)
	DeleteSavings(ctx context.Context, id int64) error

	ListSubscriptions(ctx context.Context, contextID int64) ([]core.Subscription, error)
	GetSubscription(ctx context.Context, id int64) (core.Subscription, error)
	CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
	UpdateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
	DeleteSubscription(ctx context.Context, id int64) error

	ListInvestments(ctx context.Context, contextID int64) ([]core.Investment, error)
	GetInvestment(ctx context.Context, id int64) (core.Investment, error)
	CreateInvestment(ctx context.Context, i core.Investment) (core.Investment, error)
	UpdateInvestment(ctx context.Context, i core.Investment) (core.Investment, error)
	DeleteInvestment(ctx context.Context, id int64) error

	ExportBundle(ctx context.Context, contextID int64) (core.ExportBundle, error)
	Backup(ctx context.Context, dir string, now time.Time) (core.Backup, error)
}

// Publisher receives committed change events. *events.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, e events.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, events.Event) {}
