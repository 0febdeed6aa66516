package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"fintrack/internal/client"
	"fintrack/internal/core"
)

func runContexts(ctx context.Context, c *client.Client, _ []string) error {
	list, err := c.ListContexts(ctx)
	if err != nil {
		return err
	}
	return printJSON(list)
}

func runTxList(ctx context.Context, c *client.Client, args []string) error {
	fs, contextID := newFlagSet("tx-list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := c.ListTransactions(ctx, *contextID)
	if err != nil {
		return err
	}
	return printJSON(list)
}

func runTxAdd(ctx context.Context, c *client.Client, args []string) error {
	fs, contextID := newFlagSet("tx-add")
	txType := fs.String("type", string(core.Expense), "Income or Expense")
	category := fs.String("category", "", "category")
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	date := fs.String("date", time.Now().Format(time.DateOnly), "date (YYYY-MM-DD)")
	description := fs.String("description", "", "description")
	account := fs.String("account", "", "account")
	notes := fs.String("notes", "", "notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	money, err := parseAmount(*amount, false)
	if err != nil {
		return err
	}
	created, err := c.CreateTransaction(ctx, core.Transaction{
		ContextID:   *contextID,
		Description: *description,
		Date:        *date,
		Category:    *category,
		Type:        core.TransactionType(*txType),
		Amount:      money,
		Account:     *account,
		Notes:       *notes,
	})
	if err != nil {
		return err
	}
	if created.BudgetWarning != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", created.BudgetWarning.Details)
	}
	return printJSON(created.Transaction)
}

func runBudgetList(ctx context.Context, c *client.Client, args []string) error {
	fs, contextID := newFlagSet("budget-list")
	month := fs.String("month", time.Now().Format("2006-01"), "month (YYYY-MM)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := c.ListBudgets(ctx, *contextID, *month)
	if err != nil {
		return err
	}
	return printJSON(list)
}

// runBudgetSet creates the budget or, when one already exists for the
// category and month, changes its limit.
func runBudgetSet(ctx context.Context, c *client.Client, args []string) error {
	fs, contextID := newFlagSet("budget-set")
	category := fs.String("category", "", "category")
	month := fs.String("month", time.Now().Format("2006-01"), "month (YYYY-MM)")
	limit := fs.String("limit", "", "monthly limit, e.g. 400")
	if err := fs.Parse(args); err != nil {
		return err
	}
	money, err := parseAmount(*limit, false)
	if err != nil {
		return err
	}

	existing, err := c.ListBudgets(ctx, *contextID, *month)
	if err != nil {
		return err
	}
	updated := core.Budget{ContextID: *contextID, Category: *category, Month: *month, MonthlyLimit: money}

	var saved client.BudgetSave
	if previous, ok := findBudget(existing, *category); ok {
		saved, err = c.UpdateBudget(ctx, previous, updated)
	} else {
		saved, err = c.CreateBudget(ctx, updated)
	}
	if err != nil {
		return err
	}
	return printJSON(saved)
}

func findBudget(list []core.Budget, category string) (core.Budget, bool) {
	for _, b := range list {
		if b.Category == category {
			return b, true
		}
	}
	return core.Budget{}, false
}

func runSavingsList(ctx context.Context, c *client.Client, args []string) error {
	fs, contextID := newFlagSet("savings-list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := c.ListSavings(ctx, *contextID)
	if err != nil {
		return err
	}
	return printJSON(list)
}

// runSavingsSet creates a savings record, or updates the one named by --id.
// Flags left unset keep the stored values on update.
func runSavingsSet(ctx context.Context, c *client.Client, args []string) error {
	fs, contextID := newFlagSet("savings-set")
	id := fs.Int64("id", 0, "savings record to change; 0 creates a new one")
	account := fs.String("account", "", "account")
	amount := fs.String("amount", "", "current balance, e.g. 150")
	goal := fs.String("goal", "", "goal amount")
	date := fs.String("date", time.Now().Format(time.DateOnly), "date (YYYY-MM-DD)")
	description := fs.String("description", "", "description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	record := core.Savings{ContextID: *contextID, Date: *date}
	var previous core.Savings
	if *id > 0 {
		list, err := c.ListSavings(ctx, *contextID)
		if err != nil {
			return err
		}
		found := false
		for _, s := range list {
			if s.ID == *id {
				previous, found = s, true
				break
			}
		}
		if !found {
			return fmt.Errorf("savings record %d not found in context %d", *id, *contextID)
		}
		record = previous
	}

	if set["account"] || *id == 0 {
		record.Account = *account
	}
	if set["description"] || *id == 0 {
		record.Description = *description
	}
	if set["date"] {
		record.Date = *date
	}
	if set["amount"] || *id == 0 {
		m, err := parseAmount(*amount, true)
		if err != nil {
			return err
		}
		record.Amount = m
	}
	if set["goal"] || *id == 0 {
		m, err := parseAmount(*goal, false)
		if err != nil {
			return err
		}
		record.Goal = m
	}

	var (
		saved client.SavingsSave
		err   error
	)
	if *id > 0 {
		saved, err = c.UpdateSavings(ctx, previous, record)
	} else {
		saved, err = c.CreateSavings(ctx, record)
	}
	if err != nil {
		return err
	}
	return printJSON(saved)
}

func runDashboard(ctx context.Context, c *client.Client, args []string) error {
	fs, contextID := newFlagSet("dashboard")
	if err := fs.Parse(args); err != nil {
		return err
	}
	d, err := c.Dashboard(ctx, *contextID)
	if err != nil {
		return err
	}
	return printJSON(d)
}

// output opens path for writing, with "-" or "" meaning stdout.
func output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func runExport(ctx context.Context, c *client.Client, args []string) error {
	fs, contextID := newFlagSet("export")
	out := fs.String("out", "-", "file to write, - for stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	e, err := c.Export(ctx, *contextID)
	if err != nil {
		return err
	}
	w, err := output(*out)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func runXLSX(ctx context.Context, c *client.Client, args []string) error {
	fs, contextID := newFlagSet("xlsx")
	out := fs.String("out", "", "file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("--out is required")
	}
	w, err := output(*out)
	if err != nil {
		return err
	}
	if err := c.ExportXLSX(ctx, *contextID, w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// runImport reads either a full export document or a bare data bundle.
func runImport(ctx context.Context, c *client.Client, args []string) error {
	fs, contextID := newFlagSet("import")
	in := fs.String("in", "", "export file to import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("--in is required")
	}
	raw, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	var doc struct {
		Data *core.ExportBundle `json:"data"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("read %s: %w", *in, err)
	}
	bundle := doc.Data
	if bundle == nil {
		bundle = &core.ExportBundle{}
		if err := json.Unmarshal(raw, bundle); err != nil {
			return fmt.Errorf("read %s: %w", *in, err)
		}
	}

	results, err := c.Import(ctx, *contextID, *bundle)
	if err != nil {
		return err
	}
	return printJSON(results)
}

func runBackup(ctx context.Context, c *client.Client, _ []string) error {
	b, err := c.Backup(ctx)
	if err != nil {
		return err
	}
	return printJSON(b)
}
