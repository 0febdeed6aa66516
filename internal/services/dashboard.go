package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/events"
)

const (
	recentTransactionsLimit = 5
	upcomingRenewalsLimit   = 5
	renewalWindow           = 30 * 24 * time.Hour
)

// DashboardStore holds the aggregate queries behind the dashboard.
type DashboardStore interface {
	MonthTotals(ctx context.Context, contextID int64, month string) (income, expenses core.Money, err error)
	SpendingByCategory(ctx context.Context, contextID int64, month string) ([]core.CategoryAmount, error)
	ActiveSubscriptionTotal(ctx context.Context, contextID int64) (core.Money, error)
	InvestmentTotals(ctx context.Context, contextID int64) (invested, current core.Money, err error)
	SavingsProgress(ctx context.Context, contextID int64) ([]core.SavingsProgress, error)
	BudgetVsActual(ctx context.Context, contextID int64, month string) ([]core.BudgetVsActual, error)
	RecentTransactions(ctx context.Context, contextID int64, limit int) ([]core.Transaction, error)
	UpcomingRenewals(ctx context.Context, contextID int64, through string, limit int) ([]core.Subscription, error)
}

// DashboardService assembles the per-context dashboard for the current month.
type DashboardService struct {
	store DashboardStore
	cache cache.Cache[core.Dashboard]
	now   func() time.Time
}

// NewDashboardService builds the service. A nil cache disables caching.
func NewDashboardService(store DashboardStore, c cache.Cache[core.Dashboard], now func() time.Time) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{store: store, cache: c, now: now}
}

func dashboardKey(contextID int64, month string) string {
	return fmt.Sprintf("%s%s", dashboardPrefix(contextID), month)
}

func dashboardPrefix(contextID int64) string {
	return fmt.Sprintf("dashboard:%d:", contextID)
}

// Invalidate drops cached dashboards of the event's context. Register it on
// the event bus.
func (s *DashboardService) Invalidate(_ context.Context, e events.Event) {
	if s.cache != nil {
		s.cache.DeletePrefix(dashboardPrefix(e.ContextID))
	}
}

// Get returns the dashboard of contextID. The queries run concurrently.
func (s *DashboardService) Get(ctx context.Context, contextID int64) (core.Dashboard, error) {
	now := s.now().UTC()
	month := core.CurrentMonth(now)
	key := dashboardKey(contextID, month)

	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			return d, nil
		}
	}

	d := core.Dashboard{CurrentMonth: month}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		d.Summary.TotalIncome, d.Summary.TotalExpenses, err = s.store.MonthTotals(gctx, contextID, month)
		return err
	})
	g.Go(func() error {
		var err error
		d.Summary.TotalSubscriptions, err = s.store.ActiveSubscriptionTotal(gctx, contextID)
		return err
	})
	g.Go(func() error {
		var err error
		d.Summary.TotalInvested, d.Summary.TotalCurrentValue, err = s.store.InvestmentTotals(gctx, contextID)
		return err
	})
	g.Go(func() error {
		var err error
		d.SpendingByCategory, err = s.store.SpendingByCategory(gctx, contextID, month)
		return err
	})
	g.Go(func() error {
		var err error
		d.SavingsProgress, err = s.store.SavingsProgress(gctx, contextID)
		return err
	})
	g.Go(func() error {
		var err error
		d.BudgetVsActual, err = s.store.BudgetVsActual(gctx, contextID, month)
		return err
	})
	g.Go(func() error {
		var err error
		d.RecentTransactions, err = s.store.RecentTransactions(gctx, contextID, recentTransactionsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		through := now.Add(renewalWindow).Format(time.DateOnly)
		d.UpcomingRenewals, err = s.store.UpcomingRenewals(gctx, contextID, through, upcomingRenewalsLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return core.Dashboard{}, fmt.Errorf("dashboard %d: %w", contextID, err)
	}
	d.Summary.ComputeSummaryTotals()

	if s.cache != nil {
		s.cache.Set(key, d)
	}
	return d, nil
}
