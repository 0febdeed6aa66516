package core

import "fmt"

// BudgetWarning is attached to a created Expense that pushes its budget over
// the monthly limit.
type BudgetWarning struct {
	Message  string `json:"message"`
	Details  string `json:"details"`
	Category string `json:"category"`
	Spent    Money  `json:"spent"`
	Limit    Money  `json:"limit"`
	Overage  Money  `json:"overage"`
}

// NewBudgetWarning returns nil unless spent exceeds limit.
func NewBudgetWarning(category string, spent, limit Money) *BudgetWarning {
	if spent.Cents <= limit.Cents {
		return nil
	}
	overage := spent.Sub(limit)
	return &BudgetWarning{
		Message:  fmt.Sprintf("Budget exceeded for %s!", category),
		Details:  fmt.Sprintf("Spent $%s of $%s budget ($%s over)", spent, limit, overage),
		Category: category,
		Spent:    spent,
		Limit:    limit,
		Overage:  overage,
	}
}

type DashboardSummary struct {
	TotalIncome          Money   `json:"totalIncome"`
	TotalExpenses        Money   `json:"totalExpenses"`
	NetIncome            Money   `json:"netIncome"`
	TotalSubscriptions   Money   `json:"totalSubscriptions"`
	TotalInvested        Money   `json:"totalInvested"`
	TotalCurrentValue    Money   `json:"totalCurrentValue"`
	ProfitLoss           Money   `json:"profitLoss"`
	ProfitLossPercentage float64 `json:"profitLossPercentage"`
}

type CategoryAmount struct {
	Category string `json:"category"`
	Total    Money  `json:"total"`
}

// SavingsProgress aggregates every savings row sharing an account name.
type SavingsProgress struct {
	Account string `json:"account"`
	Amount  Money  `json:"amount"`
	Goal    Money  `json:"goal"`
}

// BudgetVsActual reports both the cached spent counter and the spending
// recomputed from transactions. The two diverge after edits or deletes.
type BudgetVsActual struct {
	Category       string `json:"category"`
	MonthlyLimit   Money  `json:"monthly_limit"`
	Spent          Money  `json:"spent"`
	ActualSpending Money  `json:"actual_spending"`
}

type Dashboard struct {
	Summary            DashboardSummary  `json:"summary"`
	SpendingByCategory []CategoryAmount  `json:"spendingByCategory"`
	SavingsProgress    []SavingsProgress `json:"savingsProgress"`
	BudgetVsActual     []BudgetVsActual  `json:"budgetVsActual"`
	RecentTransactions []Transaction     `json:"recentTransactions"`
	UpcomingRenewals   []Subscription    `json:"upcomingRenewals"`
	CurrentMonth       string            `json:"currentMonth"`
}

// ComputeSummaryTotals fills the derived fields of s from its base totals.
func (s *DashboardSummary) ComputeSummaryTotals() {
	s.NetIncome = s.TotalIncome.Sub(s.TotalExpenses)
	s.ProfitLoss = s.TotalCurrentValue.Sub(s.TotalInvested)
	s.ProfitLossPercentage = 0
	if s.TotalInvested.Cents != 0 {
		s.ProfitLossPercentage = float64(s.ProfitLoss.Cents) / float64(s.TotalInvested.Cents) * 100
	}
}
