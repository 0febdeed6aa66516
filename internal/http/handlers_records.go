package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleListContexts(w http.ResponseWriter, r *http.Request) {
	contexts, err := s.finance.Records.ListContexts(r.Context())
	if err != nil {
		s.writeError(w, r, err, log.OpList, contextText.notFound, "Failed to fetch contexts")
		return
	}
	if contexts == nil {
		contexts = []core.Context{}
	}
	NewJSONResponse().JSON(contexts).Write(w)
}

func (s *Server) handleCreateContext(w http.ResponseWriter, r *http.Request) {
	createHandler(s, contextText, s.finance.Records.CreateContext)(w, r)
}

func (s *Server) handleUpdateContext(w http.ResponseWriter, r *http.Request) {
	updateHandler(s, contextText, s.finance.Records.UpdateContext)(w, r)
}

// handleDeleteContext cascades to every record of the context.
func (s *Server) handleDeleteContext(w http.ResponseWriter, r *http.Request) {
	deleteHandler(s, contextText, s.finance.Records.DeleteContext)(w, r)
}

func (s *Server) handleListSavings(w http.ResponseWriter, r *http.Request) {
	listHandler(s, savingsText, s.finance.Records.ListSavings)(w, r)
}

func (s *Server) handleCreateSavings(w http.ResponseWriter, r *http.Request) {
	createHandler(s, savingsText, s.finance.Records.CreateSavings)(w, r)
}

func (s *Server) handleUpdateSavings(w http.ResponseWriter, r *http.Request) {
	updateHandler(s, savingsText, s.finance.Records.UpdateSavings)(w, r)
}

func (s *Server) handleDeleteSavings(w http.ResponseWriter, r *http.Request) {
	deleteHandler(s, savingsText, s.finance.Records.DeleteSavings)(w, r)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	listHandler(s, subscriptionText, s.finance.Records.ListSubscriptions)(w, r)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	createHandler(s, subscriptionText, s.finance.Records.CreateSubscription)(w, r)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	updateHandler(s, subscriptionText, s.finance.Records.UpdateSubscription)(w, r)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	deleteHandler(s, subscriptionText, s.finance.Records.DeleteSubscription)(w, r)
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	listHandler(s, investmentText, s.finance.Records.ListInvestments)(w, r)
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	createHandler(s, investmentText, s.finance.Records.CreateInvestment)(w, r)
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	updateHandler(s, investmentText, s.finance.Records.UpdateInvestment)(w, r)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	deleteHandler(s, investmentText, s.finance.Records.DeleteInvestment)(w, r)
}
