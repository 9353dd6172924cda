package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/balances"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/bai2"
)

func TestNew(t *testing.T) {
	cfg := DefaultConfig()
	server := New(cfg)

	if server == nil {
		t.Fatal("Expected server to be created")
	}
	if server.mux == nil {
		t.Fatal("Expected mux to be initialized")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Expected port ':8080', got '%s'", cfg.Port)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := New(DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response["status"])
	}
}

func TestGenerateEndpoint_MethodNotAllowed(t *testing.T) {
	server := New(DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/statements/generate", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestGenerateEndpoint_NoAccounts(t *testing.T) {
	server := New(DefaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/statements/generate", strings.NewReader(`{"count":3}`))
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGenerateEndpoint_BuildsDecodableFile(t *testing.T) {
	server := New(DefaultConfig())

	body := `{
		"accounts": [{
			"account_id": "300100",
			"account_number": "10271980",
			"account_name": "Operating Account",
			"currency": "USD",
			"opening_balance": "5000",
			"target_balance": "7500"
		}],
		"count": 3,
		"min_amount": "100",
		"max_amount": "2000",
		"statement_date": "2025-06-15",
		"seed": 42
	}`

	req := httptest.NewRequest(http.MethodPost, "/statements/generate", strings.NewReader(body))
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response GenerateResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.RunID == "" {
		t.Error("Expected a run id")
	}
	if len(response.Statements) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(response.Statements))
	}

	stmt := response.Statements[0]
	if !stmt.OpeningBalance.Equal(stmt.ClosingBalance.Sub(stmt.Nett)) {
		t.Errorf("Opening %s + nett %s != closing %s", stmt.OpeningBalance, stmt.Nett, stmt.ClosingBalance)
	}
	if stmt.ClosingBalance.String() != "7500" {
		t.Errorf("Expected closing balance 7500, got %s", stmt.ClosingBalance)
	}

	decoded, err := bai2.Decode(response.File)
	if err != nil {
		t.Fatalf("Returned file does not decode: %v", err)
	}
	if len(decoded.Statements) != 1 || len(decoded.Statements[0].Transactions) != 3 {
		t.Errorf("Decoded file shape mismatch: %+v", decoded)
	}
}

func TestGenerateEndpoint_InfeasibleRequest(t *testing.T) {
	server := New(DefaultConfig())

	// Max amount below min amount cannot produce transactions
	body := `{
		"accounts": [{"account_id": "1", "account_number": "1", "account_name": "A", "opening_balance": "100", "target_balance": "200"}],
		"count": 2,
		"min_amount": "500",
		"max_amount": "100"
	}`

	req := httptest.NewRequest(http.MethodPost, "/statements/generate", strings.NewReader(body))
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestResolveEndpoint(t *testing.T) {
	server := New(DefaultConfig())

	body := `{
		"account_ids": ["300100", "300200"],
		"direct_balances": [{"account_id": "300100", "balance": "950"}],
		"report_rows": [{"account_id": "300100", "balance_code": "OPBD", "balance_date": "2025-06-01T00:00:00Z", "amount": "1000"}]
	}`

	req := httptest.NewRequest(http.MethodPost, "/balances/resolve", strings.NewReader(body))
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resolved []balances.Resolved
	if err := json.NewDecoder(w.Body).Decode(&resolved); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(resolved) != 2 {
		t.Fatalf("Expected 2 resolutions, got %d", len(resolved))
	}
	if resolved[0].Source != balances.SourceReport || resolved[0].Opening.String() != "1000" {
		t.Errorf("Unexpected first resolution: %+v", resolved[0])
	}
	if !resolved[0].Discrepancy {
		t.Error("Expected discrepancy flag when sources disagree")
	}
	if resolved[1].Source != balances.SourceDefault || !resolved[1].Unmatched {
		t.Errorf("Unexpected second resolution: %+v", resolved[1])
	}
}

func TestExportEndpoint(t *testing.T) {
	server := New(DefaultConfig())

	for _, kind := range []string{"ap", "ar", "gl", "cash"} {
		t.Run(kind, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/exports/"+kind+"?count=5&seed=7", nil)
			w := httptest.NewRecorder()

			server.Handler().ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
				t.Errorf("Content-Type = %q", ct)
			}

			lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
			if len(lines) < 2 {
				t.Fatalf("Expected header plus data rows, got %d lines", len(lines))
			}
		})
	}
}

func TestExportEndpoint_UnknownKind(t *testing.T) {
	server := New(DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/exports/fx", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
