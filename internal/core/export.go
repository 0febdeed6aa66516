package core

import "encoding/json"

// ExportBundle holds every record of one context.
type ExportBundle struct {
	Transactions  []Transaction  `json:"transactions"`
	Subscriptions []Subscription `json:"subscriptions"`
	Savings       []Savings      `json:"savings"`
	Budgets       []Budget       `json:"budgets"`
	Investments   []Investment   `json:"investments"`
}

// RawExportBundle is an ExportBundle whose rows are still undecoded, so a
// malformed row can be rejected on its own.
type RawExportBundle struct {
	Transactions  []json.RawMessage `json:"transactions"`
	Subscriptions []json.RawMessage `json:"subscriptions"`
	Savings       []json.RawMessage `json:"savings"`
	Budgets       []json.RawMessage `json:"budgets"`
	Investments   []json.RawMessage `json:"investments"`
}

// Raw encodes every row of b.
func (b ExportBundle) Raw() (RawExportBundle, error) {
	var raw RawExportBundle
	data, err := json.Marshal(b)
	if err != nil {
		return raw, err
	}
	err = json.Unmarshal(data, &raw)
	return raw, err
}

type ExportSummary struct {
	TotalTransactions  int `json:"totalTransactions"`
	TotalSubscriptions int `json:"totalSubscriptions"`
	TotalSavings       int `json:"totalSavings"`
	TotalBudgets       int `json:"totalBudgets"`
	TotalInvestments   int `json:"totalInvestments"`
}

type Export struct {
	ExportDate string        `json:"exportDate"`
	Context    Context       `json:"context"`
	Data       ExportBundle  `json:"data"`
	Summary    ExportSummary `json:"summary"`
}

// Summarize counts the rows of b.
func (b ExportBundle) Summarize() ExportSummary {
	return ExportSummary{
		TotalTransactions:  len(b.Transactions),
		TotalSubscriptions: len(b.Subscriptions),
		TotalSavings:       len(b.Savings),
		TotalBudgets:       len(b.Budgets),
		TotalInvestments:   len(b.Investments),
	}
}

type ImportCounts struct {
	Transactions  int `json:"transactions"`
	Subscriptions int `json:"subscriptions"`
	Savings       int `json:"savings"`
	Budgets       int `json:"budgets"`
	Investments   int `json:"investments"`
}

// ImportResults reports per-entity counts. Rows that fail are skipped and
// described in Errors; the import itself never aborts on a bad row.
type ImportResults struct {
	Imported ImportCounts `json:"imported"`
	Errors   []string     `json:"errors"`
}

type Backup struct {
	Message    string `json:"message"`
	BackupFile string `json:"backupFile"`
	BackupPath string `json:"backupPath"`
	Timestamp  string `json:"timestamp"`
}
