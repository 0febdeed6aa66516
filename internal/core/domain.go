package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	ContextHome     ContextType = "Home"
	ContextWork     ContextType = "Work"
	ContextBusiness ContextType = "Business"

	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"

	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
	Weekly  Frequency = "weekly"
	Daily   Frequency = "daily"

	StatusActive    SubscriptionStatus = "Active"
	StatusPaused    SubscriptionStatus = "Paused"
	StatusCancelled SubscriptionStatus = "Cancelled"
)

// InvestmentTypes lists the accepted investment categories in display order.
var InvestmentTypes = []InvestmentType{
	"Stock", "Bond", "Mutual Fund", "ETF", "Crypto", "Real Estate",
	"Commodity", "REIT", "Options", "Futures", "Forex", "Other",
}

// Categories used by transactions synthesized from budget and savings changes.
const (
	CategoryBudget  = "Budget"
	CategorySavings = "Savings"
)

type (
	ContextType        string
	TransactionType    string
	Frequency          string
	SubscriptionStatus string
	InvestmentType     string

	Money struct {
		Cents int64
	}

	// Context partitions every other record. Deleting one cascades.
	Context struct {
		ID        int64       `json:"id"`
		Name      string      `json:"name"`
		Type      ContextType `json:"type"`
		CreatedAt string      `json:"created_at,omitempty"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		ContextID   int64           `json:"context_id"`
		Description string          `json:"description"`
		Date        string          `json:"date"`
		Category    string          `json:"category"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Account     string          `json:"account"`
		Notes       string          `json:"notes"`
		CreatedAt   string          `json:"created_at,omitempty"`
	}

	// Budget is a monthly per-category limit. Spent is a cache maintained by
	// the ledger on transaction creation only.
	Budget struct {
		ID           int64  `json:"id"`
		ContextID    int64  `json:"context_id"`
		Category     string `json:"category"`
		MonthlyLimit Money  `json:"monthly_limit"`
		Month        string `json:"month"`
		Spent        Money  `json:"spent"`
		CreatedAt    string `json:"created_at,omitempty"`
	}

	Savings struct {
		ID          int64  `json:"id"`
		ContextID   int64  `json:"context_id"`
		Account     string `json:"account"`
		Date        string `json:"date"`
		Amount      Money  `json:"amount"`
		Goal        Money  `json:"goal"`
		Description string `json:"description"`
		CreatedAt   string `json:"created_at,omitempty"`
	}

	Subscription struct {
		ID              int64              `json:"id"`
		ContextID       int64              `json:"context_id"`
		Service         string             `json:"service"`
		Amount          Money              `json:"amount"`
		Frequency       Frequency          `json:"frequency"`
		NextBillingDate string             `json:"next_billing_date"`
		Status          SubscriptionStatus `json:"status"`
		CreatedAt       string             `json:"created_at,omitempty"`
	}

	Investment struct {
		ID             int64          `json:"id"`
		ContextID      int64          `json:"context_id"`
		AssetName      string         `json:"asset_name"`
		Type           InvestmentType `json:"type"`
		AmountInvested Money          `json:"amount_invested"`
		CurrentValue   Money          `json:"current_value"`
		DateInvested   string         `json:"date_invested"`
		Notes          string         `json:"notes"`
		CreatedAt      string         `json:"created_at,omitempty"`
	}
)

func (t ContextType) Valid() bool {
	switch t {
	case ContextHome, ContextWork, ContextBusiness:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool { return t == Income || t == Expense }

func (f Frequency) Valid() bool {
	switch f {
	case Monthly, Yearly, Weekly, Daily:
		return true
	}
	return false
}

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCancelled:
		return true
	}
	return false
}

func (t InvestmentType) Valid() bool {
	for _, v := range InvestmentTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NormalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Format(time.DateOnly), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(time.DateOnly), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// MonthOf returns the YYYY-MM month a normalized or RFC 3339 date falls in.
func MonthOf(date string) (string, error) {
	d, err := NormalizeDate(date)
	if err != nil {
		return "", err
	}
	return d[:7], nil
}

// ValidMonth reports whether s is a YYYY-MM month.
func ValidMonth(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil && len(s) == 7
}

// CurrentMonth formats t as YYYY-MM in UTC.
func CurrentMonth(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Validate checks the context and normalizes whitespace in place.
func (c *Context) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	v := newValidator()
	v.check(c.Name != "" && string(c.Type) != "", "name", "Name and type are required")
	v.check(c.Type == "" || c.Type.Valid(), "type", "Type must be Home, Work, or Business")
	return v.err()
}

// Validate checks the transaction and normalizes its date to YYYY-MM-DD.
func (t *Transaction) Validate() error {
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	t.Account = strings.TrimSpace(t.Account)
	t.Notes = strings.TrimSpace(t.Notes)

	v := newValidator()
	v.check(t.ContextID > 0, "context_id", "context_id must be a positive integer")
	v.check(between(t.Description, 1, 255), "description", "description must be between 1 and 255 characters")
	if d, err := NormalizeDate(t.Date); err != nil {
		v.add("date", "date must be a valid ISO 8601 date")
	} else {
		t.Date = d
	}
	v.check(between(t.Category, 1, 100), "category", "category must be between 1 and 100 characters")
	v.check(t.Type.Valid(), "type", "type must be either Income or Expense")
	v.check(t.Amount.Cents > 0, "amount", "amount must be a positive number")
	v.check(between(t.Account, 1, 100), "account", "account must be between 1 and 100 characters")
	v.check(len(t.Notes) <= 500, "notes", "notes must be less than 500 characters")
	return v.err()
}

// Validate checks the budget. The month must be YYYY-MM.
func (b *Budget) Validate() error {
	b.Category = strings.TrimSpace(b.Category)
	b.Month = strings.TrimSpace(b.Month)
	v := newValidator()
	v.check(b.ContextID > 0, "context_id", "context_id must be a positive integer")
	v.check(b.Category != "" && b.Month != "", "category", "All fields are required")
	v.check(b.Month == "" || ValidMonth(b.Month), "month", "month must be in YYYY-MM format")
	v.check(b.MonthlyLimit.Cents > 0, "monthly_limit", "Monthly limit must be greater than 0")
	return v.err()
}

// Validate checks the savings record. Amount may be zero; date is optional.
func (s *Savings) Validate() error {
	s.Account = strings.TrimSpace(s.Account)
	s.Description = strings.TrimSpace(s.Description)
	v := newValidator()
	v.check(s.ContextID > 0, "context_id", "context_id must be a positive integer")
	v.check(s.Account != "", "account", "account, amount, and goal are required")
	v.check(s.Amount.Cents >= 0, "amount", "Amount cannot be negative")
	v.check(s.Goal.Cents > 0, "goal", "Goal must be greater than 0")
	if strings.TrimSpace(s.Date) != "" {
		if d, err := NormalizeDate(s.Date); err != nil {
			v.add("date", "date must be a valid ISO 8601 date")
		} else {
			s.Date = d
		}
	}
	return v.err()
}

func (s *Subscription) Validate() error {
	s.Service = strings.TrimSpace(s.Service)
	v := newValidator()
	v.check(s.ContextID > 0, "context_id", "context_id must be a positive integer")
	v.check(s.Service != "" && s.NextBillingDate != "", "service", "All fields are required")
	v.check(s.Frequency.Valid(), "frequency", "Frequency must be monthly, yearly, weekly, or daily")
	v.check(s.Status.Valid(), "status", "Status must be Active, Paused, or Cancelled")
	v.check(s.Amount.Cents > 0, "amount", "Amount must be greater than 0")
	if s.NextBillingDate != "" {
		if d, err := NormalizeDate(s.NextBillingDate); err != nil {
			v.add("next_billing_date", "next_billing_date must be a valid ISO 8601 date")
		} else {
			s.NextBillingDate = d
		}
	}
	return v.err()
}

func (i *Investment) Validate() error {
	i.AssetName = strings.TrimSpace(i.AssetName)
	i.Notes = strings.TrimSpace(i.Notes)
	v := newValidator()
	v.check(i.ContextID > 0, "context_id", "context_id must be a positive integer")
	v.check(i.AssetName != "" && i.DateInvested != "", "asset_name", "All fields except notes are required")
	v.check(i.Type.Valid(), "type", "Type must be Stock, Bond, Mutual Fund, ETF, Crypto, Real Estate, Commodity, REIT, Options, Futures, Forex, or Other")
	v.check(i.AmountInvested.Cents > 0, "amount_invested", "Amount invested must be greater than 0")
	v.check(i.CurrentValue.Cents >= 0, "current_value", "Current value cannot be negative")
	if i.DateInvested != "" {
		if d, err := NormalizeDate(i.DateInvested); err != nil {
			v.add("date_invested", "date_invested must be a valid ISO 8601 date")
		} else {
			i.DateInvested = d
		}
	}
	return v.err()
}

// ProfitLoss is current value minus amount invested.
func (i Investment) ProfitLoss() Money {
	return i.CurrentValue.Sub(i.AmountInvested)
}

func between(s string, min, max int) bool {
	n := len([]rune(s))
	return n >= min && n <= max
}
