// Package sheets mirrors ledger rows to a spreadsheet.
package sheets

import (
	"context"
	"strconv"

	"fintrack/internal/core"
)

// LedgerWriter appends one transaction per row and returns a reference to
// the written row.
type LedgerWriter interface {
	AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
}

// Header names the mirror columns in order.
var Header = []any{"Date", "Context", "Type", "Category", "Description", "Amount", "Account"}

// Row renders t in Header order. Amounts are in currency units.
func Row(t core.Transaction) []any {
	return []any{
		t.Date,
		strconv.FormatInt(t.ContextID, 10),
		string(t.Type),
		t.Category,
		t.Description,
		t.Amount.Float64(),
		t.Account,
	}
}
