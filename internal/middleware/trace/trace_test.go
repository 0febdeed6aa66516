package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type observation struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	got []observation
}

func (f *fakeRecorder) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.got = append(f.got, observation{method, route, status})
}

func TestMiddlewareRecordsRouteAndStatus(t *testing.T) {
	rec := &fakeRecorder{}
	var seenID string
	h := NewMiddleware(nil, rec, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		SetRoute(r.Context(), "POST /api/budgets")
		w.WriteHeader(http.StatusCreated)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/budgets", nil))

	if !strings.HasPrefix(seenID, "req_") || w.Header().Get(RequestIDHeader) != seenID {
		t.Fatalf("request id = %q, header = %q", seenID, w.Header().Get(RequestIDHeader))
	}
	if len(rec.got) != 1 || rec.got[0] != (observation{"POST", "POST /api/budgets", 201}) {
		t.Fatalf("observations = %+v", rec.got)
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	h := NewMiddleware(nil, nil, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("header = %q", w.Header().Get(RequestIDHeader))
	}
}
