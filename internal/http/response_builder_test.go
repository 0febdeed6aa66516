package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Created().
		Header("X-Custom", "value").
		JSON(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("X-Custom"); got != "value" {
		t.Errorf("X-Custom = %q", got)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"id":7}` {
		t.Errorf("Body = %q", got)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *JSONResponseBuilder
		code    int
		body    string
	}{
		{"bad request", BadRequestError("nope"), 400, `{"error":"nope"}`},
		{"not found", NotFoundError("Budget not found"), 404, `{"error":"Budget not found"}`},
		{"internal", InternalServerError("Failed to fetch budgets"), 500, `{"error":"Failed to fetch budgets"}`},
		{"rate limited", TooManyRequestsError(), 429, `{"error":"Too many requests, please try again later."}`},
		{"message", NewJSONResponse().Message("Budget deleted successfully"), 200, `{"message":"Budget deleted successfully"}`},
		{
			"validation",
			ValidationErrorResponse(&core.ValidationError{Fields: []core.FieldError{{Field: "amount", Message: "amount must be a positive number"}}}),
			400,
			`{"error":"amount must be a positive number","details":[{"field":"amount","message":"amount must be a positive number"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("Status code = %d, want %d", w.Code, tt.code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.body {
				t.Errorf("Body = %s, want %s", got, tt.body)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		limit   int64
		wantErr string
	}{
		{"valid", `{"name":"Home"}`, 0, ""},
		{"empty", ``, 0, "request body is empty"},
		{"trailing", `{"name":"a"} {"name":"b"}`, 0, "trailing data"},
		{"too large", `{"name":"` + strings.Repeat("x", 64) + `"}`, 16, "exceeds 16 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v struct{ Name string }
			err := DecodeJSON(httptest.NewRecorder(), r, tt.limit, &v)
			if tt.wantErr == "" {
				if err != nil || v.Name != "Home" {
					t.Fatalf("err = %v, v = %+v", err, v)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseContextID(t *testing.T) {
	tests := []struct {
		query string
		want  int64
		err   error
	}{
		{"context_id=3", 3, nil},
		{"", 0, errMissingParam},
		{"context_id=0", 0, errInvalidParam},
		{"context_id=x", 0, errInvalidParam},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		got, err := ParseContextID(r)
		if got != tt.want || err != tt.err {
			t.Errorf("ParseContextID(%q) = %d, %v; want %d, %v", tt.query, got, err, tt.want, tt.err)
		}
	}
}
