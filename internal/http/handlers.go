package http

import (
	"context"
	"errors"
	"net/http"

	"fintrack/internal/log"
)

// entityText holds the user-facing strings of one resource.
type entityText struct {
	name     string // "transaction", "savings record"
	plural   string // "transactions", "savings records"
	notFound string
	deleted  string
}

var (
	contextText      = entityText{"context", "contexts", "Context not found", "Context deleted successfully"}
	transactionText  = entityText{"transaction", "transactions", "Transaction not found", "Transaction deleted successfully"}
	budgetText       = entityText{"budget", "budgets", "Budget not found", "Budget deleted successfully"}
	savingsText      = entityText{"savings record", "savings records", "Savings record not found", "Savings record deleted successfully"}
	subscriptionText = entityText{"subscription", "subscriptions", "Subscription not found", "Subscription deleted successfully"}
	investmentText   = entityText{"investment", "investments", "Investment not found", "Investment deleted successfully"}
)

// requireContextID writes the 400 itself and reports false when
// ?context_id= is missing or not a positive integer.
func requireContextID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := ParseContextID(r)
	if err != nil {
		if errors.Is(err, errMissingParam) {
			BadRequestError("context_id is required").Write(w)
		} else {
			BadRequestError("context_id must be a positive integer").Write(w)
		}
		return 0, false
	}
	return id, true
}

func requirePathID(w http.ResponseWriter, r *http.Request, text entityText) (int64, bool) {
	id, err := ParsePathID(r)
	if err != nil {
		// Ids that cannot exist are reported like unknown ones.
		NotFoundError(text.notFound).Write(w)
		return 0, false
	}
	return id, true
}

// listHandler serves GET /api/<plural>?context_id=.
func listHandler[T any](s *Server, text entityText, list func(context.Context, int64) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contextID, ok := requireContextID(w, r)
		if !ok {
			return
		}
		items, err := list(r.Context(), contextID)
		if err != nil {
			s.writeError(w, r, err, log.OpList, text.notFound, "Failed to fetch "+text.plural)
			return
		}
		if items == nil {
			items = []T{}
		}
		NewJSONResponse().JSON(items).Write(w)
	}
}

// createHandler decodes a T from the body and answers 201 with the result.
func createHandler[T, R any](s *Server, text entityText, create func(context.Context, T) (R, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := DecodeJSON(w, r, maxBodyBytes, &in); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		out, err := create(r.Context(), in)
		if err != nil {
			s.writeError(w, r, err, log.OpCreate, text.notFound, "Failed to create "+text.name)
			return
		}
		NewJSONResponse().Created().JSON(out).Write(w)
	}
}

// updateHandler replaces the row named by {id} with the decoded body.
func updateHandler[T any](s *Server, text entityText, update func(context.Context, int64, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requirePathID(w, r, text)
		if !ok {
			return
		}
		var in T
		if err := DecodeJSON(w, r, maxBodyBytes, &in); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		out, err := update(r.Context(), id, in)
		if err != nil {
			s.writeError(w, r, err, log.OpUpdate, text.notFound, "Failed to update "+text.name)
			return
		}
		NewJSONResponse().JSON(out).Write(w)
	}
}

func deleteHandler(s *Server, text entityText, del func(context.Context, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requirePathID(w, r, text)
		if !ok {
			return
		}
		if err := del(r.Context(), id); err != nil {
			s.writeError(w, r, err, log.OpDelete, text.notFound, "Failed to delete "+text.name)
			return
		}
		NewJSONResponse().Message(text.deleted).Write(w)
	}
}
