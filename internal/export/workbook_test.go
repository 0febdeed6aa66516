package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

func sampleExport() core.Export {
	data := core.ExportBundle{
		Transactions: []core.Transaction{
			{Date: "2024-03-01", Type: core.Expense, Category: "Food", Description: "Groceries", Amount: core.Money{Cents: 4550}, Account: "Checking"},
		},
		Budgets: []core.Budget{
			{Month: "2024-03", Category: "Food", MonthlyLimit: core.Money{Cents: 50000}, Spent: core.Money{Cents: 4550}},
		},
		Investments: []core.Investment{
			{AssetName: "VTI", Type: "ETF", AmountInvested: core.Money{Cents: 100000}, CurrentValue: core.Money{Cents: 125000}, DateInvested: "2023-01-10"},
		},
	}
	return core.Export{
		ExportDate: "2024-03-15T12:00:00Z",
		Context:    core.Context{ID: 3, Name: "Personal", Type: core.ContextHome},
		Data:       data,
		Summary:    data.Summarize(),
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, sampleExport()); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	want := []string{SheetSummary, SheetTransactions, SheetBudgets, SheetSavings, SheetSubscriptions, SheetInvestments}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, got[i], want[i])
		}
	}

	tests := []struct {
		sheet, cell, want string
	}{
		{SheetSummary, "B2", "Personal"},
		{SheetTransactions, "A1", "Date"},
		{SheetTransactions, "D2", "Groceries"},
		{SheetTransactions, "E2", "45.5"},
		{SheetBudgets, "D2", "45.5"},
		{SheetInvestments, "E2", "250"},
	}
	for _, tt := range tests {
		v, err := f.GetCellValue(tt.sheet, tt.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s, %s): %v", tt.sheet, tt.cell, err)
		}
		if v != tt.want {
			t.Errorf("%s!%s = %q, want %q", tt.sheet, tt.cell, v, tt.want)
		}
	}

	rows, err := f.GetRows(SheetSavings)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("savings rows = %d, want header only", len(rows))
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(sampleExport()); got != "finance-export-3-2024-03-15.xlsx" {
		t.Errorf("FileName = %q", got)
	}
}
