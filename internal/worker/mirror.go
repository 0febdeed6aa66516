// Package worker mirrors committed transactions to an external ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// TransactionStore is the read side the worker needs.
type TransactionStore interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, contextID int64) ([]core.Transaction, error)
}

// EventConsumer delivers change events until ctx is cancelled.
type EventConsumer interface {
	ConsumeEvents(ctx context.Context, handler func(context.Context, *amqp.EventMessage) error) error
}

// MirrorWorker appends every created transaction to the ledger sheet.
type MirrorWorker struct {
	store  TransactionStore
	ledger sheets.LedgerWriter
	logger *log.Logger

	mirrored atomic.Int64
	skipped  atomic.Int64
}

func NewMirrorWorker(store TransactionStore, ledger sheets.LedgerWriter, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{
		store:  store,
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentMirror),
	}
}

// Run consumes events until ctx is done.
func (w *MirrorWorker) Run(ctx context.Context, consumer EventConsumer) error {
	w.logger.InfoContext(ctx, "Mirror worker started")
	err := consumer.ConsumeEvents(ctx, w.HandleEvent)
	w.logger.InfoContext(ctx, "Mirror worker stopped",
		"mirrored", w.mirrored.Load(), "skipped", w.skipped.Load())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HandleEvent mirrors one transaction.created event. Other events are
// acknowledged and ignored, as are transactions deleted before the worker
// got to them. A returned error requeues the message.
func (w *MirrorWorker) HandleEvent(ctx context.Context, msg *amqp.EventMessage) error {
	if msg.Entity != events.EntityTransaction || msg.Action != events.ActionCreated {
		w.skipped.Add(1)
		return nil
	}

	t, err := w.store.GetTransaction(ctx, msg.EntityID)
	if errors.Is(err, core.ErrNotFound) {
		w.logger.WarnContext(ctx, "Transaction vanished before mirroring",
			log.FieldEntityID, msg.EntityID, log.FieldEventID, msg.ID)
		w.skipped.Add(1)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", msg.EntityID, err)
	}

	return w.mirror(ctx, t, msg.ID)
}

// Backfill appends every transaction of contextID, oldest first. It is
// meant for seeding an empty sheet; rows already mirrored are duplicated.
func (w *MirrorWorker) Backfill(ctx context.Context, contextID int64) (int, error) {
	txs, err := w.store.ListTransactions(ctx, contextID)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	n := 0
	// Listed newest first.
	for i := len(txs) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := w.mirror(ctx, txs[i], ""); err != nil {
			return n, err
		}
		n++
	}
	w.logger.InfoContext(ctx, "Backfill completed", log.FieldContextID, contextID, "rows", n)
	return n, nil
}

func (w *MirrorWorker) mirror(ctx context.Context, t core.Transaction, eventID string) error {
	ref, err := w.ledger.AppendTransaction(ctx, t)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to mirror transaction",
			log.FieldEntityID, t.ID, log.FieldContextID, t.ContextID, log.FieldError, err.Error())
		return fmt.Errorf("append transaction %d: %w", t.ID, err)
	}
	w.mirrored.Add(1)
	w.logger.InfoContext(ctx, "Transaction mirrored",
		log.FieldEntityID, t.ID,
		log.FieldContextID, t.ContextID,
		log.FieldEventID, eventID,
		log.FieldSheetsRef, ref)
	return nil
}

// Stats returns how many events were mirrored and skipped so far.
func (w *MirrorWorker) Stats() (mirrored, skipped int64) {
	return w.mirrored.Load(), w.skipped.Load()
}
