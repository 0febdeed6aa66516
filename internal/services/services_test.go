package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/storage"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestFinance(t *testing.T) (*Finance, *storage.SQLiteRepository, *events.Bus) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "finance.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	bus := events.NewBus()
	f := NewFinance(repo, Options{
		Bus:            bus,
		DashboardCache: cache.NewLRUCache[core.Dashboard](16, time.Minute),
		BackupDir:      filepath.Join(t.TempDir(), "backups"),
		Now:            func() time.Time { return testNow },
	})
	t.Cleanup(func() { f.Close() })
	return f, repo, bus
}

func cents(c int64) core.Money { return core.Money{Cents: c} }

func expense(contextID int64, category, date string, amount int64) core.Transaction {
	return core.Transaction{
		ContextID:   contextID,
		Description: "Groceries",
		Date:        date,
		Category:    category,
		Type:        core.Expense,
		Amount:      cents(amount),
		Account:     "Checking",
	}
}

func TestLedgerExceedingBudgetWarns(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)

	b, err := f.Records.CreateBudget(ctx, core.Budget{ContextID: 1, Category: "Groceries", MonthlyLimit: cents(50000), Month: "2024-03"})
	if err != nil {
		t.Fatal(err)
	}

	res, err := f.Transactions.Create(ctx, expense(1, "Groceries", "2024-03-10", 60000))
	if err != nil {
		t.Fatal(err)
	}
	if res.ID == 0 {
		t.Fatal("transaction not stored")
	}
	w := res.BudgetWarning
	if w == nil {
		t.Fatal("expected a budget warning")
	}
	if w.Spent.Cents != 60000 || w.Limit.Cents != 50000 || w.Overage.Cents != 10000 {
		t.Fatalf("warning = %+v", w)
	}
	if w.Message != "Budget exceeded for Groceries!" || w.Details != "Spent $600.00 of $500.00 budget ($100.00 over)" {
		t.Fatalf("warning text = %q / %q", w.Message, w.Details)
	}

	got, err := f.Records.GetBudget(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Spent.Cents != 60000 {
		t.Fatalf("spent = %d", got.Spent.Cents)
	}
}

func TestLedgerAccumulatesUnderLimit(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)
	b, _ := f.Records.CreateBudget(ctx, core.Budget{ContextID: 1, Category: "Food", MonthlyLimit: cents(50000), Month: "2024-03"})

	for _, amt := range []int64{10000, 20000} {
		res, err := f.Transactions.Create(ctx, expense(1, "Food", "2024-03-02", amt))
		if err != nil {
			t.Fatal(err)
		}
		if res.BudgetWarning != nil {
			t.Fatalf("unexpected warning %+v", res.BudgetWarning)
		}
	}
	got, _ := f.Records.GetBudget(ctx, b.ID)
	if got.Spent.Cents != 30000 {
		t.Fatalf("spent = %d", got.Spent.Cents)
	}
}

func TestLedgerIgnoresUnbudgetedAndIncome(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)
	b, _ := f.Records.CreateBudget(ctx, core.Budget{ContextID: 1, Category: "Food", MonthlyLimit: cents(100), Month: "2024-03"})

	tests := []core.Transaction{
		expense(1, "Travel", "2024-03-10", 99999), // no budget for the category
		expense(1, "Food", "2024-04-01", 99999),   // other month
		{ContextID: 1, Description: "Refund", Date: "2024-03-10", Category: "Food", Type: core.Income, Amount: cents(99999), Account: "Checking"},
	}
	for _, tx := range tests {
		res, err := f.Transactions.Create(ctx, tx)
		if err != nil {
			t.Fatal(err)
		}
		if res.BudgetWarning != nil {
			t.Fatalf("%s/%s: unexpected warning", tx.Category, tx.Date)
		}
	}
	got, _ := f.Records.GetBudget(ctx, b.ID)
	if got.Spent.Cents != 0 {
		t.Fatalf("spent = %d", got.Spent.Cents)
	}
}

func TestLedgerUsesTransactionMonthFromTimestamp(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)
	b, _ := f.Records.CreateBudget(ctx, core.Budget{ContextID: 1, Category: "Food", MonthlyLimit: cents(100), Month: "2024-03"})

	res, err := f.Transactions.Create(ctx, expense(1, "Food", "2024-03-31T18:00:00Z", 500))
	if err != nil {
		t.Fatal(err)
	}
	if res.Date != "2024-03-31" || res.BudgetWarning == nil {
		t.Fatalf("res = %+v", res)
	}
	got, _ := f.Records.GetBudget(ctx, b.ID)
	if got.Spent.Cents != 500 {
		t.Fatalf("spent = %d", got.Spent.Cents)
	}
}

// spent is only ever incremented; deleting a transaction leaves it behind
// while the dashboard's recomputed figure drops.
func TestSpentDivergesAfterDelete(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)
	b, _ := f.Records.CreateBudget(ctx, core.Budget{ContextID: 1, Category: "Food", MonthlyLimit: cents(50000), Month: "2024-03"})

	res, err := f.Transactions.Create(ctx, expense(1, "Food", "2024-03-10", 20000))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Transactions.Delete(ctx, res.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := f.Records.GetBudget(ctx, b.ID)
	if got.Spent.Cents != 20000 {
		t.Fatalf("spent = %d, want 20000", got.Spent.Cents)
	}

	d, err := f.Dashboard.Get(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.BudgetVsActual) != 1 {
		t.Fatalf("budgetVsActual = %+v", d.BudgetVsActual)
	}
	if bva := d.BudgetVsActual[0]; bva.Spent.Cents != 20000 || bva.ActualSpending.Cents != 0 {
		t.Fatalf("budgetVsActual = %+v", bva)
	}
}

func TestUpdateTransactionDoesNotTouchBudget(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)
	b, _ := f.Records.CreateBudget(ctx, core.Budget{ContextID: 1, Category: "Food", MonthlyLimit: cents(50000), Month: "2024-03"})
	res, _ := f.Transactions.Create(ctx, expense(1, "Food", "2024-03-10", 1000))

	upd := expense(0, "Food", "2024-03-10", 9000)
	updated, err := f.Transactions.Update(ctx, res.ID, upd)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Amount.Cents != 9000 || updated.ContextID != 1 {
		t.Fatalf("updated = %+v", updated)
	}
	got, _ := f.Records.GetBudget(ctx, b.ID)
	if got.Spent.Cents != 1000 {
		t.Fatalf("spent = %d", got.Spent.Cents)
	}
}

func TestCreateTransactionUnknownContext(t *testing.T) {
	f, _, _ := newTestFinance(t)
	_, err := f.Transactions.Create(context.Background(), expense(99, "Food", "2024-03-10", 100))
	if !core.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if err.Error() != "Context with ID 99 does not exist" {
		t.Fatalf("err = %q", err)
	}
}

func TestBudgetDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)
	b := core.Budget{ContextID: 1, Category: "Food", MonthlyLimit: cents(100), Month: "2024-03"}
	if _, err := f.Records.CreateBudget(ctx, b); err != nil {
		t.Fatal(err)
	}
	_, err := f.Records.CreateBudget(ctx, b)
	if !errors.Is(err, core.ErrConflict) || err.Error() != "Budget already exists for this category and month" {
		t.Fatalf("err = %v", err)
	}

	other, err := f.Records.CreateBudget(ctx, core.Budget{ContextID: 1, Category: "Rent", MonthlyLimit: cents(100), Month: "2024-03"})
	if err != nil {
		t.Fatal(err)
	}
	other.Category = "Food"
	if _, err := f.Records.UpdateBudget(ctx, other.ID, other); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("update into existing key: err = %v", err)
	}
}

func TestUpdateBudgetKeepsSpent(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)
	b, _ := f.Records.CreateBudget(ctx, core.Budget{ContextID: 1, Category: "Food", MonthlyLimit: cents(50000), Month: "2024-03"})
	f.Transactions.Create(ctx, expense(1, "Food", "2024-03-10", 7000))

	b.MonthlyLimit = cents(30000)
	b.Spent = cents(0)
	updated, err := f.Records.UpdateBudget(ctx, b.ID, b)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Spent.Cents != 7000 || updated.MonthlyLimit.Cents != 30000 {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestNotFoundPropagates(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)
	checks := map[string]error{
		"transaction":  f.Transactions.Delete(ctx, 404),
		"budget":       f.Records.DeleteBudget(ctx, 404),
		"savings":      f.Records.DeleteSavings(ctx, 404),
		"subscription": f.Records.DeleteSubscription(ctx, 404),
		"investment":   f.Records.DeleteInvestment(ctx, 404),
		"context":      f.Records.DeleteContext(ctx, 404),
	}
	for name, err := range checks {
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestDashboardTotals(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)

	income := core.Transaction{ContextID: 1, Description: "Salary", Date: "2024-03-01", Category: "Salary", Type: core.Income, Amount: cents(100000), Account: "Checking"}
	if _, err := f.Transactions.Create(ctx, income); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Transactions.Create(ctx, expense(1, "Food", "2024-03-02", 40000)); err != nil {
		t.Fatal(err)
	}
	// previous month, not counted
	if _, err := f.Transactions.Create(ctx, expense(1, "Food", "2024-02-20", 5000)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Records.CreateInvestment(ctx, core.Investment{ContextID: 1, AssetName: "ACME", Type: "Stock",
		AmountInvested: cents(10000), CurrentValue: cents(12500), DateInvested: "2024-01-01"}); err != nil {
		t.Fatal(err)
	}

	d, err := f.Dashboard.Get(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	s := d.Summary
	if s.TotalIncome.Cents != 100000 || s.TotalExpenses.Cents != 40000 || s.NetIncome.Cents != 60000 {
		t.Fatalf("summary = %+v", s)
	}
	if s.ProfitLoss.Cents != 2500 || s.ProfitLossPercentage != 25 {
		t.Fatalf("profit = %+v", s)
	}
	if d.CurrentMonth != "2024-03" || len(d.RecentTransactions) != 3 {
		t.Fatalf("dashboard = %+v", d)
	}
}

func TestDashboardRenewalsIncludeOverdue(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)

	for _, sub := range []core.Subscription{
		{ContextID: 1, Service: "Missed", Amount: cents(500), Frequency: core.Monthly, NextBillingDate: "2024-02-28", Status: core.StatusActive},
		{ContextID: 1, Service: "Next week", Amount: cents(900), Frequency: core.Monthly, NextBillingDate: "2024-03-22", Status: core.StatusActive},
		{ContextID: 1, Service: "Summer", Amount: cents(2000), Frequency: core.Yearly, NextBillingDate: "2024-06-01", Status: core.StatusActive},
		{ContextID: 1, Service: "Stopped", Amount: cents(300), Frequency: core.Monthly, NextBillingDate: "2024-03-01", Status: core.StatusCancelled},
	} {
		if _, err := f.Records.CreateSubscription(ctx, sub); err != nil {
			t.Fatal(err)
		}
	}

	d, err := f.Dashboard.Get(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, sub := range d.UpcomingRenewals {
		got = append(got, sub.Service)
	}
	if strings.Join(got, ",") != "Missed,Next week" {
		t.Fatalf("renewals = %v", got)
	}
}

func TestDashboardCacheInvalidatedByEvents(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)

	d, err := f.Dashboard.Get(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if d.Summary.TotalExpenses.Cents != 0 {
		t.Fatalf("expenses = %d", d.Summary.TotalExpenses.Cents)
	}

	if _, err := f.Transactions.Create(ctx, expense(1, "Food", "2024-03-02", 1234)); err != nil {
		t.Fatal(err)
	}
	d, err = f.Dashboard.Get(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if d.Summary.TotalExpenses.Cents != 1234 {
		t.Fatalf("stale dashboard: expenses = %d", d.Summary.TotalExpenses.Cents)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	ctx := context.Background()
	f, _, bus := newTestFinance(t)

	var mu sync.Mutex
	var got []string
	bus.SubscribeAll(func(_ context.Context, e events.Event) {
		mu.Lock()
		got = append(got, string(e.Entity)+"."+string(e.Action))
		mu.Unlock()
	})

	res, _ := f.Transactions.Create(ctx, expense(1, "Food", "2024-03-02", 100))
	sv, _ := f.Records.CreateSavings(ctx, core.Savings{ContextID: 1, Account: "Trip", Goal: cents(1000)})
	f.Records.DeleteSavings(ctx, sv.ID)
	f.Transactions.Delete(ctx, res.ID)

	want := []string{"transaction.created", "savings.created", "savings.deleted", "transaction.deleted"}
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)

	f.Transactions.Create(ctx, expense(1, "Food", "2024-03-02", 100))
	f.Transactions.Create(ctx, expense(1, "Rent", "2024-03-03", 200))
	f.Records.CreateSubscription(ctx, core.Subscription{ContextID: 1, Service: "Music", Amount: cents(999),
		Frequency: core.Monthly, NextBillingDate: "2024-04-01", Status: core.StatusActive})
	f.Records.CreateSavings(ctx, core.Savings{ContextID: 1, Account: "Trip", Amount: cents(0), Goal: cents(1000)})
	f.Records.CreateBudget(ctx, core.Budget{ContextID: 1, Category: "Food", MonthlyLimit: cents(500), Month: "2024-03"})
	f.Records.CreateInvestment(ctx, core.Investment{ContextID: 1, AssetName: "ACME", Type: "ETF",
		AmountInvested: cents(100), CurrentValue: cents(0), DateInvested: "2024-01-01"})

	exp, err := f.Export.Export(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := core.ExportSummary{TotalTransactions: 2, TotalSubscriptions: 1, TotalSavings: 1, TotalBudgets: 1, TotalInvestments: 1}
	if exp.Summary != want {
		t.Fatalf("summary = %+v", exp.Summary)
	}
	if exp.Context.ID != 1 || exp.ExportDate == "" {
		t.Fatalf("export = %+v", exp)
	}

	target, err := f.Records.CreateContext(ctx, core.Context{Name: "Copy", Type: core.ContextWork})
	if err != nil {
		t.Fatal(err)
	}
	res, err := f.Export.Import(ctx, target.ID, exp.Data)
	if err != nil {
		t.Fatal(err)
	}
	counts := core.ImportCounts{Transactions: 2, Subscriptions: 1, Savings: 1, Budgets: 1, Investments: 1}
	if res.Imported != counts || len(res.Errors) != 0 {
		t.Fatalf("results = %+v", res)
	}

	copied, err := f.Export.Export(ctx, target.ID)
	if err != nil {
		t.Fatal(err)
	}
	if copied.Summary != want {
		t.Fatalf("copied summary = %+v", copied.Summary)
	}
	// spent carried over as-is
	if copied.Data.Budgets[0].Spent.Cents != exp.Data.Budgets[0].Spent.Cents {
		t.Fatalf("budget spent %d != %d", copied.Data.Budgets[0].Spent.Cents, exp.Data.Budgets[0].Spent.Cents)
	}
}

func TestImportReportsBadRows(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)

	data := core.ExportBundle{
		Transactions: []core.Transaction{
			expense(0, "Food", "2024-03-02", 100),
			{Description: "broken", Date: "someday", Category: "Food", Type: core.Expense, Amount: cents(1), Account: "X"},
		},
		Budgets: []core.Budget{{Category: "Food", Month: "2024-03", MonthlyLimit: cents(0)}},
	}
	res, err := f.Export.Import(ctx, 1, data)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported.Transactions != 1 || res.Imported.Budgets != 0 || len(res.Errors) != 2 {
		t.Fatalf("results = %+v", res)
	}
	if res.Errors[0] != "Transaction import error: date must be a valid ISO 8601 date" {
		t.Fatalf("errors = %q", res.Errors)
	}
	if res.Errors[1] != "Budget import error: Monthly limit must be greater than 0" {
		t.Fatalf("errors = %q", res.Errors)
	}
}

func TestImportRawSkipsUndecodableRows(t *testing.T) {
	good := json.RawMessage(`{"date":"2024-03-02","description":"Lunch","category":"Food","type":"Expense","amount":12.5,"account":"Cash"}`)
	tests := []struct {
		name string
		bad  json.RawMessage
	}{
		{"amount not a number", json.RawMessage(`{"date":"2024-03-02","category":"Food","type":"Expense","amount":"ten","account":"Cash"}`)},
		{"amount out of range", json.RawMessage(`{"date":"2024-03-02","category":"Food","type":"Expense","amount":1e20,"account":"Cash"}`)},
		{"context id not a number", json.RawMessage(`{"context_id":"x","date":"2024-03-02","category":"Food","type":"Expense","amount":1,"account":"Cash"}`)},
		{"row not an object", json.RawMessage(`[1,2]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, _ := newTestFinance(t)
			res, err := f.Export.ImportRaw(context.Background(), 1, core.RawExportBundle{
				Transactions: []json.RawMessage{good, tt.bad},
			})
			if err != nil {
				t.Fatal(err)
			}
			if res.Imported.Transactions != 1 || len(res.Errors) != 1 {
				t.Fatalf("results = %+v", res)
			}
			if !strings.HasPrefix(res.Errors[0], "Transaction import error: ") {
				t.Fatalf("errors = %q", res.Errors)
			}
		})
	}
}

func TestImportUnknownContext(t *testing.T) {
	f, _, _ := newTestFinance(t)
	_, err := f.Export.Import(context.Background(), 77, core.ExportBundle{})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := f.Export.Export(context.Background(), 77); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("export err = %v", err)
	}
}

func TestDeleteContextCascades(t *testing.T) {
	ctx := context.Background()
	f, _, _ := newTestFinance(t)
	c, _ := f.Records.CreateContext(ctx, core.Context{Name: "Side gig", Type: core.ContextBusiness})
	f.Transactions.Create(ctx, expense(c.ID, "Food", "2024-03-02", 100))
	f.Records.CreateBudget(ctx, core.Budget{ContextID: c.ID, Category: "Food", MonthlyLimit: cents(500), Month: "2024-03"})

	if err := f.Records.DeleteContext(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	txs, err := f.Transactions.List(ctx, c.ID)
	if err != nil || len(txs) != 0 {
		t.Fatalf("transactions = %v, %v", txs, err)
	}
	budgets, err := f.Records.ListBudgets(ctx, c.ID, "2024-03")
	if err != nil || len(budgets) != 0 {
		t.Fatalf("budgets = %v, %v", budgets, err)
	}
}

func TestBackup(t *testing.T) {
	f, _, _ := newTestFinance(t)
	b, err := f.Export.Backup(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b.BackupFile != "finance-backup-2024-03-15T12-00-00-000Z.db" {
		t.Fatalf("backup = %+v", b)
	}
}

type recordingPublisher struct {
	mu  sync.Mutex
	ids []string
}

func (p *recordingPublisher) PublishEvent(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, e.ID)
	return nil
}

func TestForwarderRelaysEvents(t *testing.T) {
	pub := &recordingPublisher{}
	fw := NewForwarder(pub, 4, nil)
	fw.Start(context.Background())

	bus := events.NewBus()
	bus.SubscribeAll(fw.Handle)
	e := events.New(events.EntityTransaction, events.ActionCreated, 1, 1)
	bus.Publish(context.Background(), e)
	fw.Stop()

	if len(pub.ids) != 1 || pub.ids[0] != e.ID {
		t.Fatalf("published = %v", pub.ids)
	}
}
