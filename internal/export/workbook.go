// Package export renders a context dump as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

// ContentType is the media type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names in workbook order.
const (
	SheetSummary       = "Summary"
	SheetTransactions  = "Transactions"
	SheetBudgets       = "Budgets"
	SheetSavings       = "Savings"
	SheetSubscriptions = "Subscriptions"
	SheetInvestments   = "Investments"
)

type sheet struct {
	name   string
	header []any
	widths []float64
	rows   [][]any
}

// WriteWorkbook writes one sheet per entity plus a summary sheet to w.
// Amounts are written as numbers in currency units.
func WriteWorkbook(w io.Writer, e core.Export) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets(e) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// FileName is the attachment name for a workbook of e.
func FileName(e core.Export) string {
	date := e.ExportDate
	if len(date) >= 10 {
		date = date[:10]
	}
	return fmt.Sprintf("finance-export-%d-%s.xlsx", e.Context.ID, date)
}

func writeSheet(f *excelize.File, s sheet) error {
	rows := append([][]any{s.header}, s.rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", s.name, i+1, err)
		}
	}
	for i, width := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func sheets(e core.Export) []sheet {
	d := e.Data
	sum := e.Summary

	summary := sheet{
		name:   SheetSummary,
		header: []any{"Field", "Value"},
		widths: []float64{22, 30},
		rows: [][]any{
			{"Context", e.Context.Name},
			{"Context type", string(e.Context.Type)},
			{"Export date", e.ExportDate},
			{"Transactions", sum.TotalTransactions},
			{"Subscriptions", sum.TotalSubscriptions},
			{"Savings", sum.TotalSavings},
			{"Budgets", sum.TotalBudgets},
			{"Investments", sum.TotalInvestments},
		},
	}

	tx := sheet{
		name:   SheetTransactions,
		header: []any{"Date", "Type", "Category", "Description", "Amount", "Account", "Notes"},
		widths: []float64{12, 10, 18, 32, 12, 18, 30},
	}
	for _, t := range d.Transactions {
		tx.rows = append(tx.rows, []any{t.Date, string(t.Type), t.Category, t.Description, t.Amount.Float64(), t.Account, t.Notes})
	}

	budgets := sheet{
		name:   SheetBudgets,
		header: []any{"Month", "Category", "Monthly limit", "Spent"},
		widths: []float64{10, 18, 14, 12},
	}
	for _, b := range d.Budgets {
		budgets.rows = append(budgets.rows, []any{b.Month, b.Category, b.MonthlyLimit.Float64(), b.Spent.Float64()})
	}

	savings := sheet{
		name:   SheetSavings,
		header: []any{"Date", "Account", "Amount", "Goal", "Description"},
		widths: []float64{12, 18, 12, 12, 30},
	}
	for _, s := range d.Savings {
		savings.rows = append(savings.rows, []any{s.Date, s.Account, s.Amount.Float64(), s.Goal.Float64(), s.Description})
	}

	subs := sheet{
		name:   SheetSubscriptions,
		header: []any{"Service", "Amount", "Frequency", "Next billing date", "Status"},
		widths: []float64{22, 12, 12, 18, 12},
	}
	for _, s := range d.Subscriptions {
		subs.rows = append(subs.rows, []any{s.Service, s.Amount.Float64(), string(s.Frequency), s.NextBillingDate, string(s.Status)})
	}

	inv := sheet{
		name:   SheetInvestments,
		header: []any{"Asset", "Type", "Invested", "Current value", "Profit/loss", "Date invested", "Notes"},
		widths: []float64{22, 14, 12, 14, 12, 14, 30},
	}
	for _, i := range d.Investments {
		inv.rows = append(inv.rows, []any{i.AssetName, string(i.Type), i.AmountInvested.Float64(), i.CurrentValue.Float64(), i.ProfitLoss().Float64(), i.DateInvested, i.Notes})
	}

	return []sheet{summary, tx, budgets, savings, subs, inv}
}
