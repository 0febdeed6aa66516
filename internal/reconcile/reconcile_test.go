package reconcile

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func cents(c int64) core.Money { return core.Money{Cents: c} }

func TestBudgetCreated(t *testing.T) {
	tx, ok := BudgetCreated(core.Budget{ContextID: 2, Category: "Food", MonthlyLimit: cents(50000), Month: "2024-03"}, now)
	if !ok {
		t.Fatal("expected a transaction")
	}
	want := core.Transaction{
		ContextID:   2,
		Description: "Initial budget allocation for Food",
		Date:        "2024-03-15",
		Category:    "Budget",
		Type:        core.Expense,
		Amount:      cents(50000),
		Account:     "Food",
		Notes:       "Initial budget allocation: Food",
	}
	if tx != want {
		t.Fatalf("got %+v\nwant %+v", tx, want)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("draft does not validate: %v", err)
	}
}

func TestBudgetUpdated(t *testing.T) {
	old := core.Budget{ContextID: 1, Category: "Food", MonthlyLimit: cents(50000)}

	tests := []struct {
		name     string
		newLimit int64
		wantOK   bool
		wantType core.TransactionType
		wantAmt  int64
		wantNote string
	}{
		{"increase", 70000, true, core.Expense, 20000, "Automatic transaction from budget adjustment. Budget increased."},
		{"decrease", 30000, true, core.Income, 20000, "Automatic transaction from budget adjustment. Budget decreased."},
		{"unchanged", 50000, false, "", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := old
			updated.MonthlyLimit = cents(tt.newLimit)
			tx, ok := BudgetUpdated(old, updated, now)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v", ok)
			}
			if !ok {
				return
			}
			if tx.Type != tt.wantType || tx.Amount.Cents != tt.wantAmt || tx.Notes != tt.wantNote {
				t.Fatalf("got %+v", tx)
			}
			if tx.Description != "Budget adjustment for Food" || tx.Category != core.CategoryBudget {
				t.Fatalf("got %+v", tx)
			}
		})
	}
}

func TestSavingsCreated(t *testing.T) {
	if _, ok := SavingsCreated(core.Savings{Account: "Vacation", Goal: cents(100000)}, now); ok {
		t.Fatal("zero opening amount must not book a transaction")
	}

	tx, ok := SavingsCreated(core.Savings{ContextID: 1, Account: "Vacation", Amount: cents(15000), Goal: cents(100000)}, now)
	if !ok {
		t.Fatal("expected a transaction")
	}
	if tx.Type != core.Expense || tx.Amount.Cents != 15000 || tx.Category != core.CategorySavings {
		t.Fatalf("got %+v", tx)
	}
	if tx.Description != "Initial savings for Vacation" || tx.Notes != "Initial deposit to savings goal: Vacation" {
		t.Fatalf("got %+v", tx)
	}
}

func TestSavingsUpdated(t *testing.T) {
	old := core.Savings{ContextID: 1, Account: "Vacation", Amount: cents(15000), Goal: cents(100000)}

	tests := []struct {
		name     string
		amount   int64
		wantOK   bool
		wantType core.TransactionType
		wantAmt  int64
		wantNote string
	}{
		{"withdraw", 10000, true, core.Income, 5000, "Automatic transaction from savings goal adjustment. Withdrawn from savings."},
		{"deposit", 20000, true, core.Expense, 5000, "Automatic transaction from savings goal adjustment. Added to savings."},
		{"to zero", 0, true, core.Income, 15000, "Automatic transaction from savings goal adjustment. Withdrawn from savings."},
		{"unchanged", 15000, false, "", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := old
			updated.Amount = cents(tt.amount)
			tx, ok := SavingsUpdated(old, updated, now)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v", ok)
			}
			if !ok {
				return
			}
			if tx.Type != tt.wantType || tx.Amount.Cents != tt.wantAmt || tx.Notes != tt.wantNote {
				t.Fatalf("got %+v", tx)
			}
			if tx.Description != "Savings adjustment for Vacation" || tx.Date != "2024-03-15" {
				t.Fatalf("got %+v", tx)
			}
		})
	}
}

func TestDraftDatesAreUTC(t *testing.T) {
	// 23:30 at UTC-2 is already April 1st in UTC.
	late := time.Date(2024, 3, 31, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	budget := core.Budget{ContextID: 1, Category: "Food", MonthlyLimit: cents(1000)}
	savings := core.Savings{ContextID: 1, Account: "Vacation", Amount: cents(1000), Goal: cents(5000)}
	bigger := func(b core.Budget) core.Budget { b.MonthlyLimit = cents(2000); return b }
	deposit := func(s core.Savings) core.Savings { s.Amount = cents(2000); return s }

	tests := []struct {
		name  string
		draft func() (core.Transaction, bool)
	}{
		{"budget created", func() (core.Transaction, bool) { return BudgetCreated(budget, late) }},
		{"budget updated", func() (core.Transaction, bool) { return BudgetUpdated(budget, bigger(budget), late) }},
		{"savings created", func() (core.Transaction, bool) { return SavingsCreated(savings, late) }},
		{"savings updated", func() (core.Transaction, bool) { return SavingsUpdated(savings, deposit(savings), late) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, ok := tt.draft()
			if !ok {
				t.Fatal("expected a transaction")
			}
			if tx.Date != "2024-04-01" {
				t.Fatalf("date = %q, want 2024-04-01", tx.Date)
			}
		})
	}
}
