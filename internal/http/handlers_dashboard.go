package http

import (
	"net/http"

	"fintrack/internal/log"
)

// handleDashboard serves the current-month overview of one context.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	contextID, ok := requireContextID(w, r)
	if !ok {
		return
	}
	d, err := s.finance.Dashboard.Get(r.Context(), contextID)
	if err != nil {
		s.writeError(w, r, err, log.OpRead, contextText.notFound, "Failed to fetch dashboard data")
		return
	}
	NewJSONResponse().JSON(d).Write(w)
}
