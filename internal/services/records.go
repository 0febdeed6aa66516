package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
)

// RecordService handles the entities that are plain CRUD from the server's
// point of view: contexts, budgets, savings, subscriptions and investments.
// Reconciliation transactions for budget and savings edits are synthesized
// by the caller (see package reconcile and the API client).
type RecordService struct {
	store  Store
	bus    Publisher
	logger *log.Logger
}

func NewRecordService(store Store, bus Publisher, logger *log.Logger) *RecordService {
	if bus == nil {
		bus = nopPublisher{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &RecordService{store: store, bus: bus, logger: logger}
}

func (s *RecordService) publish(ctx context.Context, entity events.Entity, action events.Action, contextID, id int64) {
	s.bus.Publish(ctx, events.New(entity, action, contextID, id))
}

// Contexts

func (s *RecordService) ListContexts(ctx context.Context) ([]core.Context, error) {
	return s.store.ListContexts(ctx)
}

func (s *RecordService) GetContext(ctx context.Context, id int64) (core.Context, error) {
	return s.store.GetContext(ctx, id)
}

func (s *RecordService) CreateContext(ctx context.Context, c core.Context) (core.Context, error) {
	if err := c.Validate(); err != nil {
		return core.Context{}, err
	}
	created, err := s.store.CreateContext(ctx, c)
	if err != nil {
		return core.Context{}, err
	}
	s.publish(ctx, events.EntityContext, events.ActionCreated, created.ID, created.ID)
	return created, nil
}

func (s *RecordService) UpdateContext(ctx context.Context, id int64, c core.Context) (core.Context, error) {
	c.ID = id
	if err := c.Validate(); err != nil {
		return core.Context{}, err
	}
	updated, err := s.store.UpdateContext(ctx, c)
	if err != nil {
		return core.Context{}, err
	}
	s.publish(ctx, events.EntityContext, events.ActionUpdated, id, id)
	return updated, nil
}

// DeleteContext removes the context and, through the foreign keys, every
// record that belongs to it.
func (s *RecordService) DeleteContext(ctx context.Context, id int64) error {
	if err := s.store.DeleteContext(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Context deleted", log.FieldContextID, id)
	s.publish(ctx, events.EntityContext, events.ActionDeleted, id, id)
	return nil
}

// Budgets

func (s *RecordService) ListBudgets(ctx context.Context, contextID int64, month string) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, contextID, month)
}

func (s *RecordService) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	return s.store.GetBudget(ctx, id)
}

// CreateBudget stores a new budget with spent at zero. Only one budget may
// exist per context, category and month.
func (s *RecordService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := requireContext(ctx, s.store, b.ContextID); err != nil {
		return core.Budget{}, err
	}
	if err := s.checkBudgetUnique(ctx, b, 0); err != nil {
		return core.Budget{}, err
	}
	b.Spent = core.Money{}
	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	s.publish(ctx, events.EntityBudget, events.ActionCreated, created.ContextID, created.ID)
	return created, nil
}

// UpdateBudget changes category, limit or month. The spent counter is kept.
func (s *RecordService) UpdateBudget(ctx context.Context, id int64, b core.Budget) (core.Budget, error) {
	existing, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	b.ID = id
	b.ContextID = existing.ContextID
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.checkBudgetUnique(ctx, b, id); err != nil {
		return core.Budget{}, err
	}
	updated, err := s.store.UpdateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	s.publish(ctx, events.EntityBudget, events.ActionUpdated, updated.ContextID, id)
	return updated, nil
}

func (s *RecordService) checkBudgetUnique(ctx context.Context, b core.Budget, self int64) error {
	found, err := s.store.FindBudget(ctx, b.ContextID, b.Category, b.Month)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check budget: %w", err)
	case found.ID == self:
		return nil
	}
	return &core.ConflictError{Message: "Budget already exists for this category and month"}
}

func (s *RecordService) DeleteBudget(ctx context.Context, id int64) error {
	existing, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EntityBudget, events.ActionDeleted, existing.ContextID, id)
	return nil
}

// Savings

func (s *RecordService) ListSavings(ctx context.Context, contextID int64) ([]core.Savings, error) {
	return s.store.ListSavings(ctx, contextID)
}

func (s *RecordService) GetSavings(ctx context.Context, id int64) (core.Savings, error) {
	return s.store.GetSavings(ctx, id)
}

func (s *RecordService) CreateSavings(ctx context.Context, sv core.Savings) (core.Savings, error) {
	if err := sv.Validate(); err != nil {
		return core.Savings{}, err
	}
	if err := requireContext(ctx, s.store, sv.ContextID); err != nil {
		return core.Savings{}, err
	}
	created, err := s.store.CreateSavings(ctx, sv)
	if err != nil {
		return core.Savings{}, err
	}
	s.publish(ctx, events.EntitySavings, events.ActionCreated, created.ContextID, created.ID)
	return created, nil
}

func (s *RecordService) UpdateSavings(ctx context.Context, id int64, sv core.Savings) (core.Savings, error) {
	existing, err := s.store.GetSavings(ctx, id)
	if err != nil {
		return core.Savings{}, err
	}
	sv.ID = id
	sv.ContextID = existing.ContextID
	if err := sv.Validate(); err != nil {
		return core.Savings{}, err
	}
	updated, err := s.store.UpdateSavings(ctx, sv)
	if err != nil {
		return core.Savings{}, err
	}
	s.publish(ctx, events.EntitySavings, events.ActionUpdated, updated.ContextID, id)
	return updated, nil
}

func (s *RecordService) DeleteSavings(ctx context.Context, id int64) error {
	existing, err := s.store.GetSavings(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSavings(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EntitySavings, events.ActionDeleted, existing.ContextID, id)
	return nil
}

// Subscriptions

func (s *RecordService) ListSubscriptions(ctx context.Context, contextID int64) ([]core.Subscription, error) {
	return s.store.ListSubscriptions(ctx, contextID)
}

func (s *RecordService) GetSubscription(ctx context.Context, id int64) (core.Subscription, error) {
	return s.store.GetSubscription(ctx, id)
}

func (s *RecordService) CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	if err := requireContext(ctx, s.store, sub.ContextID); err != nil {
		return core.Subscription{}, err
	}
	created, err := s.store.CreateSubscription(ctx, sub)
	if err != nil {
		return core.Subscription{}, err
	}
	s.publish(ctx, events.EntitySubscription, events.ActionCreated, created.ContextID, created.ID)
	return created, nil
}

func (s *RecordService) UpdateSubscription(ctx context.Context, id int64, sub core.Subscription) (core.Subscription, error) {
	existing, err := s.store.GetSubscription(ctx, id)
	if err != nil {
		return core.Subscription{}, err
	}
	sub.ID = id
	sub.ContextID = existing.ContextID
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	updated, err := s.store.UpdateSubscription(ctx, sub)
	if err != nil {
		return core.Subscription{}, err
	}
	s.publish(ctx, events.EntitySubscription, events.ActionUpdated, updated.ContextID, id)
	return updated, nil
}

func (s *RecordService) DeleteSubscription(ctx context.Context, id int64) error {
	existing, err := s.store.GetSubscription(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSubscription(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EntitySubscription, events.ActionDeleted, existing.ContextID, id)
	return nil
}

// Investments

func (s *RecordService) ListInvestments(ctx context.Context, contextID int64) ([]core.Investment, error) {
	return s.store.ListInvestments(ctx, contextID)
}

func (s *RecordService) GetInvestment(ctx context.Context, id int64) (core.Investment, error) {
	return s.store.GetInvestment(ctx, id)
}

func (s *RecordService) CreateInvestment(ctx context.Context, inv core.Investment) (core.Investment, error) {
	if err := inv.Validate(); err != nil {
		return core.Investment{}, err
	}
	if err := requireContext(ctx, s.store, inv.ContextID); err != nil {
		return core.Investment{}, err
	}
	created, err := s.store.CreateInvestment(ctx, inv)
	if err != nil {
		return core.Investment{}, err
	}
	s.publish(ctx, events.EntityInvestment, events.ActionCreated, created.ContextID, created.ID)
	return created, nil
}

func (s *RecordService) UpdateInvestment(ctx context.Context, id int64, inv core.Investment) (core.Investment, error) {
	existing, err := s.store.GetInvestment(ctx, id)
	if err != nil {
		return core.Investment{}, err
	}
	inv.ID = id
	inv.ContextID = existing.ContextID
	if err := inv.Validate(); err != nil {
		return core.Investment{}, err
	}
	updated, err := s.store.UpdateInvestment(ctx, inv)
	if err != nil {
		return core.Investment{}, err
	}
	s.publish(ctx, events.EntityInvestment, events.ActionUpdated, updated.ContextID, id)
	return updated, nil
}

func (s *RecordService) DeleteInvestment(ctx context.Context, id int64) error {
	existing, err := s.store.GetInvestment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteInvestment(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EntityInvestment, events.ActionDeleted, existing.ContextID, id)
	return nil
}
