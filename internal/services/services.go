// Package services holds the application logic between the HTTP layer and
// the store: validation, the budget ledger, change events, the dashboard and
// export/import.
package services

import (
	"fmt"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
)

// Options configures Finance. Zero values are usable.
type Options struct {
	Bus            *events.Bus
	DashboardCache cache.Cache[core.Dashboard]
	BackupDir      string
	Now            func() time.Time
	Logger         *log.Logger
}

// Finance bundles the services the API server exposes.
type Finance struct {
	Transactions *TransactionService
	Records      *RecordService
	Dashboard    *DashboardService
	Export       *ExportService
	Ledger       *BudgetLedger

	store       Store
	unsubscribe func()
}

func NewFinance(store Store, opts Options) *Finance {
	if opts.Bus == nil {
		opts.Bus = events.NewBus()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.BackupDir == "" {
		opts.BackupDir = "backups"
	}

	ledger := NewBudgetLedger(store, opts.Logger)
	dashboard := NewDashboardService(store, opts.DashboardCache, opts.Now)

	return &Finance{
		Transactions: NewTransactionService(store, ledger, opts.Bus, opts.Logger),
		Records:      NewRecordService(store, opts.Bus, opts.Logger),
		Dashboard:    dashboard,
		Export:       NewExportService(store, opts.Bus, opts.BackupDir, opts.Now, opts.Logger),
		Ledger:       ledger,
		store:        store,
		unsubscribe:  opts.Bus.SubscribeAll(dashboard.Invalidate),
	}
}

// Close detaches from the event bus and closes the store if it can be closed.
func (f *Finance) Close() error {
	if f.unsubscribe != nil {
		f.unsubscribe()
	}
	if c, ok := f.store.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}
	return nil
}
