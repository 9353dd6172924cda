// Package api provides HTTP API capabilities for the demo data generator.
// This is a capability module that can be enabled via the CLI or used programmatically.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/balances"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/exporter"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/bai2"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/transactions"
)

// Config holds the API server configuration
type Config struct {
	Port      string
	LogPrefix string
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:      ":8080",
		LogPrefix: "API: ",
	}
}

// Server represents the HTTP API server
type Server struct {
	config Config
	mux    *http.ServeMux
}

// New creates a new API server with the given configuration
func New(cfg Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up the API endpoints
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/statements/generate", s.handleGenerate)
	s.mux.HandleFunc("/balances/resolve", s.handleResolve)
	s.mux.HandleFunc("/exports/", s.handleExport)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	log.Printf("%sStarting server on %s", s.config.LogPrefix, s.config.Port)
	return http.ListenAndServe(s.config.Port, s.mux)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// GenerateAccount pairs an account with its opening balance and the closing
// balance the generated transactions must reach. A missing target keeps the
// account flat (closing equals opening).
type GenerateAccount struct {
	common.Account
	Opening decimal.Decimal  `json:"opening_balance"`
	Target  *decimal.Decimal `json:"target_balance,omitempty"`
}

// GenerateRequest is the body of POST /statements/generate
type GenerateRequest struct {
	Accounts      []GenerateAccount `json:"accounts"`
	Count         int               `json:"count"`
	MinAmount     decimal.Decimal   `json:"min_amount"`
	MaxAmount     decimal.Decimal   `json:"max_amount"`
	StatementDate string            `json:"statement_date"`
	Seed          int64             `json:"seed"`
}

// GenerateResponse carries the encoded file and its statements
type GenerateResponse struct {
	RunID      string             `json:"run_id"`
	File       string             `json:"file"`
	Statements []common.Statement `json:"statements"`
}

// handleGenerate builds a balanced statement file for the requested accounts
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log.Printf("%sReceived generate request from %s", s.config.LogPrefix, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Could not parse request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Accounts) == 0 {
		http.Error(w, "At least one account is required", http.StatusBadRequest)
		return
	}

	opts := generator.DefaultOptions()
	if req.Count > 0 {
		opts.Count = req.Count
	}
	if req.MinAmount.IsPositive() {
		opts.MinAmount = req.MinAmount
	}
	if req.MaxAmount.IsPositive() {
		opts.MaxAmount = req.MaxAmount
	}
	if req.StatementDate != "" {
		date, err := time.Parse("2006-01-02", req.StatementDate)
		if err != nil {
			http.Error(w, "Invalid statement_date, want YYYY-MM-DD: "+err.Error(), http.StatusBadRequest)
			return
		}
		opts.StatementDate = date
	}

	requests := make([]generator.Request, 0, len(req.Accounts))
	for _, acct := range req.Accounts {
		target := acct.Opening
		if acct.Target != nil {
			target = *acct.Target
		}
		requests = append(requests, generator.Request{
			Account: acct.Account,
			Opening: acct.Opening,
			Target:  target,
		})
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	file, err := generator.BuildFile(requests, opts, rng)
	if err != nil {
		log.Printf("%sGeneration failed: %v", s.config.LogPrefix, err)
		http.Error(w, "Generation failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	encoded, err := bai2.Encode(file)
	if err != nil {
		log.Printf("%sEncoding failed: %v", s.config.LogPrefix, err)
		http.Error(w, "Encoding failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GenerateResponse{
		RunID:      file.Statements[0].RunID,
		File:       encoded,
		Statements: file.Statements,
	})
}

// ResolveRequest is the body of POST /balances/resolve
type ResolveRequest struct {
	AccountIDs     []string                 `json:"account_ids"`
	Direct         []balances.DirectBalance `json:"direct_balances"`
	Report         []balances.ReportRow     `json:"report_rows"`
	DefaultOpening *decimal.Decimal         `json:"default_opening,omitempty"`
	BalanceCode    string                   `json:"balance_code,omitempty"`
}

// handleResolve picks one opening balance per account from the posted sources
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Could not parse request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.AccountIDs) == 0 {
		http.Error(w, "At least one account id is required", http.StatusBadRequest)
		return
	}

	cfg := balances.DefaultConfig()
	if req.DefaultOpening != nil {
		cfg.DefaultOpening = *req.DefaultOpening
	}
	if req.BalanceCode != "" {
		cfg.BalanceCode = req.BalanceCode
	}

	resolved := balances.NewResolver(cfg).ResolveAll(req.AccountIDs, req.Direct, req.Report)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resolved)
}

// handleExport renders a demo export table as CSV.
// Kinds: ap (payables invoices), ar (receivables invoices), gl (journals),
// cash (external cash transactions).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind := strings.TrimPrefix(r.URL.Path, "/exports/")
	count := queryInt(r, "count", 10)
	seed := int64(queryInt(r, "seed", 0))
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	cfg := transactions.DefaultConfig()

	var items []exporter.Tabular
	switch kind {
	case "ap":
		for _, inv := range transactions.GenerateAPInvoices(cfg, count, rng) {
			items = append(items, inv)
		}
	case "ar":
		for _, inv := range transactions.GenerateARInvoices(cfg, count, rng) {
			items = append(items, inv)
		}
	case "gl":
		for _, j := range transactions.GenerateJournals(cfg, count, 4, rng) {
			items = append(items, j)
		}
	case "cash":
		accounts := []common.Account{{
			AccountID:     "DEMO",
			AccountNumber: "00000000",
			AccountName:   "Demo Account",
			Currency:      cfg.Currency,
		}}
		for _, tx := range transactions.GenerateCashTransactions(cfg, accounts, count, rng) {
			items = append(items, tx)
		}
	default:
		http.Error(w, fmt.Sprintf("Unknown export kind %q, want ap, ar, gl or cash", kind), http.StatusNotFound)
		return
	}

	table, err := exporter.Assemble(kind, items)
	if err != nil {
		http.Error(w, "Export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	csvText, err := table.CSV()
	if err != nil {
		http.Error(w, "Export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_export.csv", kind))
	fmt.Fprint(w, csvText)
}

// queryInt reads an integer query parameter with a fallback
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
