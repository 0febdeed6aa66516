package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
)

// fakeSheets records the value ranges written to it.
type fakeSheets struct {
	mu      sync.Mutex
	rows    [][]any
	header  [][]any
	methods []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methods = append(f.methods, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, vr.Values...)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Ledger!A2:G2", "updatedRows": 1},
		})
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Ledger!A1:G1", "values": f.header})
	case r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.header = vr.Values
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRows": 1})
	default:
		http.NotFound(w, r)
	}
}

func newFakeClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{}
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	c, err := New(context.Background(),
		Config{SpreadsheetID: "sheet-id", SheetName: "Ledger"},
		goption.WithEndpoint(ts.URL+"/"),
		goption.WithHTTPClient(ts.Client()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, fake
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("err = %v", err)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("err = %v", err)
	}
}

func TestAppendTransaction(t *testing.T) {
	c, fake := newFakeClient(t)

	ref, err := c.AppendTransaction(context.Background(), core.Transaction{
		ContextID: 2, Description: "Groceries", Date: "2024-03-10", Category: "Food",
		Type: core.Expense, Amount: core.Money{Cents: 4550}, Account: "Checking",
	})
	if err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}
	if ref != "Ledger!A2:G2" {
		t.Errorf("ref = %q", ref)
	}
	if len(fake.rows) != 1 {
		t.Fatalf("rows = %v", fake.rows)
	}
	want := []any{"2024-03-10", "2", "Expense", "Food", "Groceries", 45.5, "Checking"}
	got := fake.rows[0]
	if len(got) != len(want) {
		t.Fatalf("row = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("col %d = %v (%T), want %v", i, got[i], got[i], want[i])
		}
	}
}

func TestAppendTransactionRejectsInvalid(t *testing.T) {
	c, fake := newFakeClient(t)
	if _, err := c.AppendTransaction(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(fake.methods) != 0 {
		t.Errorf("unexpected calls: %v", fake.methods)
	}
}

func TestAppendWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "id", sheetName: "Ledger"}
	_, err := c.AppendTransaction(context.Background(), core.Transaction{
		ContextID: 1, Description: "x", Date: "2024-01-01", Category: "c",
		Type: core.Income, Amount: core.Money{Cents: 1}, Account: "a",
	})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("err = %v", err)
	}
}

func TestEnsureHeader(t *testing.T) {
	c, fake := newFakeClient(t)
	ctx := context.Background()

	if err := c.EnsureHeader(ctx); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}
	if len(fake.header) != 1 || fake.header[0][0] != "Date" {
		t.Fatalf("header = %v", fake.header)
	}

	calls := len(fake.methods)
	if err := c.EnsureHeader(ctx); err != nil {
		t.Fatal(err)
	}
	// Second call only reads.
	if len(fake.methods) != calls+1 {
		t.Errorf("calls = %v", fake.methods[calls:])
	}
}

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func TestOAuthCredentials(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name        string
		cfg         Config
		errorString string
	}{
		{
			name:        "invalid client",
			cfg:         Config{SpreadsheetID: "id", OAuthClientJSON: "invalid-json", OAuthTokenJSON: `{"access_token":"test"}`},
			errorString: "oauth config",
		},
		{
			name:        "missing token",
			cfg:         Config{SpreadsheetID: "id", OAuthClientJSON: testOAuthClient},
			errorString: "missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)",
		},
		{
			name:        "unreadable token file",
			cfg:         Config{SpreadsheetID: "id", OAuthClientJSON: testOAuthClient, OAuthTokenFile: "/does/not/exist.json"},
			errorString: "read oauth token file",
		},
		{
			name:        "malformed token",
			cfg:         Config{SpreadsheetID: "id", OAuthClientJSON: testOAuthClient, OAuthTokenJSON: "{"},
			errorString: "parse oauth token",
		},
		{
			name: "valid client and token",
			cfg:  Config{SpreadsheetID: "id", OAuthClientJSON: testOAuthClient, OAuthTokenJSON: `{"access_token":"test"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ctx, tt.cfg)
			if tt.errorString == "" {
				if err != nil {
					t.Fatalf("New() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("New() = %v, want error containing %q", err, tt.errorString)
			}
		})
	}
}

func TestOAuthTokenSourceUsesStoredToken(t *testing.T) {
	ts, err := OAuthTokenSource(context.Background(), Config{
		OAuthClientJSON: testOAuthClient,
		OAuthTokenJSON:  `{"access_token":"test","token_type":"Bearer","expiry":"2999-01-01T00:00:00Z"}`,
	})
	if err != nil {
		t.Fatalf("OAuthTokenSource: %v", err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "test" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}
}
