package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	listHandler(s, transactionText, s.finance.Transactions.List)(w, r)
}

// handleCreateTransaction stores the transaction and runs the budget ledger.
// A budget warning travels in the 201 body; it never fails the request.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.Transaction
	if err := DecodeJSON(w, r, maxBodyBytes, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	created, err := s.finance.Transactions.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, log.OpCreate, transactionText.notFound, "Failed to create transaction")
		return
	}
	if created.BudgetWarning != nil && s.metrics != nil {
		s.metrics.BudgetWarning()
	}
	NewJSONResponse().Created().JSON(created).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	updateHandler(s, transactionText, s.finance.Transactions.Update)(w, r)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	deleteHandler(s, transactionText, s.finance.Transactions.Delete)(w, r)
}

// handleListBudgets needs both the context and the month.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	contextID, err := ParseContextID(r)
	if month == "" || err != nil {
		BadRequestError("context_id and month are required").Write(w)
		return
	}
	if !core.ValidMonth(month) {
		BadRequestError("month must be in YYYY-MM format").Write(w)
		return
	}
	budgets, err := s.finance.Records.ListBudgets(r.Context(), contextID, month)
	if err != nil {
		s.writeError(w, r, err, log.OpList, budgetText.notFound, "Failed to fetch budgets")
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	NewJSONResponse().JSON(budgets).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	createHandler(s, budgetText, s.finance.Records.CreateBudget)(w, r)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	updateHandler(s, budgetText, s.finance.Records.UpdateBudget)(w, r)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	deleteHandler(s, budgetText, s.finance.Records.DeleteBudget)(w, r)
}
