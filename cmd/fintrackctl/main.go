package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/client"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
)

const usage = `fintrackctl - command line client for the fintrack API

Usage:
  fintrackctl <command> [options]

Commands:
  contexts        List contexts
  tx-list         List transactions of a context
  tx-add          Record a transaction
  budget-list     List budgets of a context for a month
  budget-set      Create or change a monthly category budget
  savings-list    List savings records of a context
  savings-set     Create or change a savings record
  dashboard       Print the dashboard of a context
  export          Write the JSON export of a context
  xlsx            Write the spreadsheet export of a context
  import          Import a JSON export into a context
  backup          Ask the server to snapshot its database

The API address is read from FINTRACK_API_URL (default http://localhost:8080).

Examples:
  fintrackctl tx-add --context=1 --type=Expense --category=Food --amount=12.50 --description=Lunch
  fintrackctl budget-set --context=1 --category=Food --month=2024-03 --limit=400
  fintrackctl export --context=1 --out=export.json
`

type command func(ctx context.Context, c *client.Client, args []string) error

var commands = map[string]command{
	"contexts":     runContexts,
	"tx-list":      runTxList,
	"tx-add":       runTxAdd,
	"budget-list":  runBudgetList,
	"budget-set":   runBudgetSet,
	"savings-list": runSavingsList,
	"savings-set":  runSavingsSet,
	"dashboard":    runDashboard,
	"export":       runExport,
	"xlsx":         runXLSX,
	"import":       runImport,
	"backup":       runBackup,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	name := os.Args[1]
	switch name {
	case "help", "-h", "--help":
		fmt.Println(usage)
		return
	}
	run, ok := commands[name]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", name)
		fmt.Println(usage)
		os.Exit(1)
	}

	cli.LoadEnvFile()
	cfg := config.Load()
	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), Component: log.ComponentClient, Output: os.Stderr})

	c := client.New(cfg.APIURL, client.WithLogger(logger))
	c.Events().SubscribeAll(func(_ context.Context, e events.Event) {
		logger.Debug("Change applied", log.FieldEntity, e.Entity, "action", e.Action, log.FieldEntityID, e.EntityID)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, c, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

// describe renders API errors with their field details.
func describe(err error) string {
	var partial *client.PartialSaveError
	if errors.As(err, &partial) {
		return fmt.Sprintf("Error: the record was saved but its balancing transaction was not: %v", partial.Err)
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := "Error: " + apiErr.Message
		for _, d := range apiErr.Details {
			msg += fmt.Sprintf("\n  %s: %s", d.Field, d.Message)
		}
		return msg
	}
	return "Error: " + err.Error()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseAmount(s string, allowZero bool) (core.Money, error) {
	parse := core.ParseDecimalToCents
	if allowZero {
		parse = core.ParseNonNegativeDecimalToCents
	}
	cents, err := parse(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return core.Money{Cents: cents}, nil
}

// newFlagSet returns a flag set with the --context flag every command takes.
func newFlagSet(name string) (*flag.FlagSet, *int64) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	contextID := fs.Int64("context", 1, "context id")
	return fs, contextID
}
