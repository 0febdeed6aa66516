package worker

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/sheets/memory"
)

type fakeStore struct {
	txs map[int64]core.Transaction
	err error
}

func (f *fakeStore) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	t, ok := f.txs[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, contextID int64) ([]core.Transaction, error) {
	var out []core.Transaction
	for id := int64(len(f.txs)); id >= 1; id-- {
		if t, ok := f.txs[id]; ok && t.ContextID == contextID {
			out = append(out, t)
		}
	}
	return out, f.err
}

func sampleTx(id int64, desc string) core.Transaction {
	return core.Transaction{
		ID: id, ContextID: 1, Description: desc, Date: "2024-03-10", Category: "Food",
		Type: core.Expense, Amount: core.Money{Cents: 2500}, Account: "Card",
	}
}

func msg(entity events.Entity, action events.Action, id int64) *amqp.EventMessage {
	return amqp.NewEventMessage(events.New(entity, action, 1, id))
}

func TestHandleEvent(t *testing.T) {
	store := &fakeStore{txs: map[int64]core.Transaction{7: sampleTx(7, "Lunch")}}

	tests := []struct {
		name     string
		msg      *amqp.EventMessage
		storeErr error
		wantErr  bool
		wantRows int
	}{
		{"created transaction is mirrored", msg(events.EntityTransaction, events.ActionCreated, 7), nil, false, 1},
		{"updates are ignored", msg(events.EntityTransaction, events.ActionUpdated, 7), nil, false, 0},
		{"other entities are ignored", msg(events.EntityBudget, events.ActionCreated, 7), nil, false, 0},
		{"deleted transaction is skipped", msg(events.EntityTransaction, events.ActionCreated, 99), nil, false, 0},
		{"store failure requeues", msg(events.EntityTransaction, events.ActionCreated, 7), errors.New("db locked"), true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := memory.New()
			store.err = tt.storeErr
			w := NewMirrorWorker(store, ledger, nil)

			err := w.HandleEvent(context.Background(), tt.msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if ledger.Len() != tt.wantRows {
				t.Errorf("rows = %d, want %d", ledger.Len(), tt.wantRows)
			}
		})
	}
}

type failingLedger struct{}

func (failingLedger) AppendTransaction(context.Context, core.Transaction) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestHandleEventLedgerFailure(t *testing.T) {
	store := &fakeStore{txs: map[int64]core.Transaction{1: sampleTx(1, "Lunch")}}
	w := NewMirrorWorker(store, failingLedger{}, nil)
	if err := w.HandleEvent(context.Background(), msg(events.EntityTransaction, events.ActionCreated, 1)); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
}

func TestBackfillOldestFirst(t *testing.T) {
	store := &fakeStore{txs: map[int64]core.Transaction{
		1: sampleTx(1, "First"),
		2: sampleTx(2, "Second"),
		3: sampleTx(3, "Third"),
	}}
	ledger := memory.New()
	w := NewMirrorWorker(store, ledger, nil)

	n, err := w.Backfill(context.Background(), 1)
	if err != nil || n != 3 {
		t.Fatalf("Backfill = %d, %v", n, err)
	}
	rows := ledger.Rows()
	if rows[0][4] != "First" || rows[2][4] != "Third" {
		t.Errorf("rows = %v", rows)
	}
	if mirrored, _ := w.Stats(); mirrored != 3 {
		t.Errorf("mirrored = %d", mirrored)
	}
}

// fakeConsumer delivers its messages then blocks until ctx is cancelled.
type fakeConsumer struct {
	msgs    []*amqp.EventMessage
	results []error
}

func (f *fakeConsumer) ConsumeEvents(ctx context.Context, handler func(context.Context, *amqp.EventMessage) error) error {
	for _, m := range f.msgs {
		f.results = append(f.results, handler(ctx, m))
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunStopsCleanly(t *testing.T) {
	store := &fakeStore{txs: map[int64]core.Transaction{1: sampleTx(1, "Lunch")}}
	ledger := memory.New()
	w := NewMirrorWorker(store, ledger, nil)
	consumer := &fakeConsumer{msgs: []*amqp.EventMessage{
		msg(events.EntityTransaction, events.ActionCreated, 1),
		msg(events.EntityTransaction, events.ActionDeleted, 1),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, consumer) }()
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	mirrored, skipped := w.Stats()
	if mirrored != 1 || skipped != 1 {
		t.Errorf("mirrored=%d skipped=%d", mirrored, skipped)
	}
}
