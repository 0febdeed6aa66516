package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
)

// ExportService dumps, restores and backs up ledger data.
type ExportService struct {
	store     Store
	bus       Publisher
	backupDir string
	now       func() time.Time
	logger    *log.Logger
}

func NewExportService(store Store, bus Publisher, backupDir string, now func() time.Time, logger *log.Logger) *ExportService {
	if bus == nil {
		bus = nopPublisher{}
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportService{
		store:     store,
		bus:       bus,
		backupDir: backupDir,
		now:       now,
		logger:    logger.WithComponent(log.ComponentExport),
	}
}

// Export returns every record of a context. Unknown contexts give
// core.ErrNotFound.
func (s *ExportService) Export(ctx context.Context, contextID int64) (core.Export, error) {
	c, err := s.store.GetContext(ctx, contextID)
	if err != nil {
		return core.Export{}, err
	}
	bundle, err := s.store.ExportBundle(ctx, contextID)
	if err != nil {
		return core.Export{}, err
	}
	return core.Export{
		ExportDate: s.now().UTC().Format(time.RFC3339Nano),
		Context:    c,
		Data:       bundle,
		Summary:    bundle.Summarize(),
	}, nil
}

// Import inserts every row of data into contextID. See ImportRaw.
func (s *ExportService) Import(ctx context.Context, contextID int64, data core.ExportBundle) (core.ImportResults, error) {
	raw, err := data.Raw()
	if err != nil {
		return core.ImportResults{}, fmt.Errorf("encode import rows: %w", err)
	}
	return s.ImportRaw(ctx, contextID, raw)
}

// ImportRaw decodes and inserts every row of data into contextID, ignoring
// the ids and context ids carried by the rows. A row that cannot be decoded
// or stored is reported in the result and skipped. Budgets keep their spent
// value; the ledger does not run for imported transactions.
func (s *ExportService) ImportRaw(ctx context.Context, contextID int64, data core.RawExportBundle) (core.ImportResults, error) {
	if _, err := s.store.GetContext(ctx, contextID); err != nil {
		return core.ImportResults{}, err
	}

	res := core.ImportResults{Errors: []string{}}

	res.Imported.Transactions = importRows(&res, "Transaction", data.Transactions, func(t core.Transaction) error {
		t.ContextID = contextID
		if err := t.Validate(); err != nil {
			return err
		}
		_, err := s.store.CreateTransaction(ctx, t)
		return err
	})
	res.Imported.Subscriptions = importRows(&res, "Subscription", data.Subscriptions, func(sub core.Subscription) error {
		sub.ContextID = contextID
		if err := sub.Validate(); err != nil {
			return err
		}
		_, err := s.store.CreateSubscription(ctx, sub)
		return err
	})
	res.Imported.Savings = importRows(&res, "Savings", data.Savings, func(sv core.Savings) error {
		sv.ContextID = contextID
		if err := sv.Validate(); err != nil {
			return err
		}
		_, err := s.store.CreateSavings(ctx, sv)
		return err
	})
	res.Imported.Budgets = importRows(&res, "Budget", data.Budgets, func(b core.Budget) error {
		b.ContextID = contextID
		if err := b.Validate(); err != nil {
			return err
		}
		if b.Spent.Cents < 0 {
			b.Spent = core.Money{}
		}
		_, err := s.store.CreateBudget(ctx, b)
		return err
	})
	res.Imported.Investments = importRows(&res, "Investment", data.Investments, func(inv core.Investment) error {
		inv.ContextID = contextID
		if err := inv.Validate(); err != nil {
			return err
		}
		_, err := s.store.CreateInvestment(ctx, inv)
		return err
	})

	s.logger.InfoContext(ctx, "Import completed",
		log.FieldContextID, contextID,
		"transactions", res.Imported.Transactions,
		"subscriptions", res.Imported.Subscriptions,
		"savings", res.Imported.Savings,
		"budgets", res.Imported.Budgets,
		"investments", res.Imported.Investments,
		"errors", len(res.Errors))
	s.bus.Publish(ctx, events.New(events.EntityContext, events.ActionImported, contextID, contextID))

	return res, nil
}

// importRows decodes each row into a T and hands it to insert, returning how
// many made it. Failures are appended to res.Errors as "<kind> import error".
func importRows[T any](res *core.ImportResults, kind string, rows []json.RawMessage, insert func(T) error) int {
	n := 0
	for _, raw := range rows {
		var row T
		err := json.Unmarshal(raw, &row)
		if err == nil {
			err = insert(row)
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s import error: %v", kind, err))
			continue
		}
		n++
	}
	return n
}

// Backup snapshots the whole database into the backup directory.
func (s *ExportService) Backup(ctx context.Context) (core.Backup, error) {
	b, err := s.store.Backup(ctx, s.backupDir, s.now())
	if err != nil {
		return core.Backup{}, err
	}
	s.logger.InfoContext(ctx, "Backup created", log.FieldBackupFile, b.BackupPath)
	return b, nil
}
