package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
)

// CreatedTransaction is a stored transaction plus the warning raised by the
// ledger, if any.
type CreatedTransaction struct {
	core.Transaction
	BudgetWarning *core.BudgetWarning `json:"budgetWarning,omitempty"`
}

// TransactionService records transactions and drives the budget ledger.
type TransactionService struct {
	store  Store
	ledger *BudgetLedger
	bus    Publisher
	logger *log.StructuredLogger
}

func NewTransactionService(store Store, ledger *BudgetLedger, bus Publisher, logger *log.Logger) *TransactionService {
	if bus == nil {
		bus = nopPublisher{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionService{
		store:  store,
		ledger: ledger,
		bus:    bus,
		logger: log.NewStructuredLogger(logger),
	}
}

func (s *TransactionService) List(ctx context.Context, contextID int64) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, contextID)
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// Create validates t, runs the ledger and then inserts the row. The ledger
// write is not rolled back if the insert fails.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (CreatedTransaction, error) {
	if err := t.Validate(); err != nil {
		return CreatedTransaction{}, err
	}
	if err := requireContext(ctx, s.store, t.ContextID); err != nil {
		return CreatedTransaction{}, err
	}

	warning, err := s.ledger.Record(ctx, t)
	if err != nil {
		return CreatedTransaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return CreatedTransaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.logger.LogTransactionCreated(ctx, created.ContextID, created.ID, string(created.Type), created.Category, created.Date[:7], created.Amount.Cents)
	s.bus.Publish(ctx, events.New(events.EntityTransaction, events.ActionCreated, created.ContextID, created.ID))

	return CreatedTransaction{Transaction: created, BudgetWarning: warning}, nil
}

// Update rewrites a transaction in place. Budgets are not touched.
func (s *TransactionService) Update(ctx context.Context, id int64, t core.Transaction) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = id
	t.ContextID = existing.ContextID
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.bus.Publish(ctx, events.New(events.EntityTransaction, events.ActionUpdated, updated.ContextID, id))
	return updated, nil
}

// Delete removes a transaction. Budget spent counters are not decremented.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.bus.Publish(ctx, events.New(events.EntityTransaction, events.ActionDeleted, existing.ContextID, id))
	return nil
}

func requireContext(ctx context.Context, store Store, contextID int64) error {
	ok, err := store.ContextExists(ctx, contextID)
	if err != nil {
		return fmt.Errorf("check context %d: %w", contextID, err)
	}
	if !ok {
		return core.NewValidationError("context_id", fmt.Sprintf("Context with ID %d does not exist", contextID))
	}
	return nil
}
