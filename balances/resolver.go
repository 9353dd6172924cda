// Package balances resolves one opening balance per bank account out of two
// differently-shaped Fusion sources: the cash-management account listing and
// the BIP balance report. The report is the authoritative balance ledger, so
// it wins whenever the two disagree.
package balances

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoBalanceFound reports that neither source carried a balance for the
	// account. Non-fatal: the resolver substitutes the configured default.
	ErrNoBalanceFound = errors.New("balances: no balance found for account")
	// ErrAmbiguousMatch reports multiple report rows matching one account.
	// Recovered locally: the most recent row by balance date wins.
	ErrAmbiguousMatch = errors.New("balances: multiple report rows match account")
)

// DirectBalance is one row of the cash-management account listing.
type DirectBalance struct {
	AccountID string          `json:"account_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
}

// ReportRow is one row of the BIP balance report.
type ReportRow struct {
	AccountID   string          `json:"account_id"`
	BalanceCode string          `json:"balance_code"`
	BalanceDate time.Time       `json:"balance_date"`
	Amount      decimal.Decimal `json:"amount"`
}

// Source names which input supplied the resolved value.
type Source string

const (
	SourceReport  Source = "report"
	SourceDirect  Source = "direct"
	SourceDefault Source = "default"
)

// Resolved is the single opening balance chosen for one account.
type Resolved struct {
	AccountID   string          `json:"account_id"`
	Opening     decimal.Decimal `json:"opening_balance"`
	BalanceDate time.Time       `json:"balance_date,omitempty"`
	Source      Source          `json:"source"`
	Strategy    string          `json:"matched_by,omitempty"`
	Discrepancy bool            `json:"discrepancy"`
	Unmatched   bool            `json:"unmatched"`
}

// Config holds the resolution policy knobs.
type Config struct {
	// DefaultOpening is substituted when neither source has the account.
	DefaultOpening decimal.Decimal
	// BalanceCode filters report rows; OPBD is the opening booked balance.
	BalanceCode string
}

// DefaultConfig returns the resolution defaults.
func DefaultConfig() Config {
	return Config{
		DefaultOpening: decimal.NewFromInt(50000),
		BalanceCode:    "OPBD",
	}
}

// Resolver picks one opening balance per account. It holds no mutable state;
// Resolve is a pure function over its inputs.
type Resolver struct {
	cfg Config
}

// NewResolver creates a resolver with the given policy.
func NewResolver(cfg Config) *Resolver {
	if cfg.BalanceCode == "" {
		cfg.BalanceCode = "OPBD"
	}
	return &Resolver{cfg: cfg}
}

// Resolve produces the opening balance for one account identifier.
func (r *Resolver) Resolve(accountID string, direct []DirectBalance, report []ReportRow) Resolved {
	out := Resolved{AccountID: accountID, Source: SourceDefault}

	var directVal *decimal.Decimal
	for _, row := range direct {
		if strategy, ok := Match(accountID, row.AccountID); ok {
			v := row.Balance
			directVal = &v
			out.Strategy = strategy
			break
		}
	}

	reportRow, err := r.lookupReport(accountID, report)
	switch {
	case err == nil:
		out.Opening = reportRow.row.Amount
		out.BalanceDate = reportRow.row.BalanceDate
		out.Source = SourceReport
		out.Strategy = reportRow.strategy
		if directVal != nil && !directVal.Equal(reportRow.row.Amount) {
			// The report is the balance ledger of record; keep its value and
			// flag that the account listing disagreed.
			out.Discrepancy = true
			log.Printf("WARN: account %s: direct balance %s disagrees with report balance %s, report wins",
				accountID, directVal, reportRow.row.Amount)
		}
	case directVal != nil:
		out.Opening = *directVal
		out.Source = SourceDirect
	default:
		out.Opening = r.cfg.DefaultOpening
		out.Unmatched = true
		log.Printf("WARN: account %s: %v, using default opening balance %s",
			accountID, ErrNoBalanceFound, r.cfg.DefaultOpening)
	}

	return out
}

// ResolveAll resolves every identifier in order.
func (r *Resolver) ResolveAll(accountIDs []string, direct []DirectBalance, report []ReportRow) []Resolved {
	out := make([]Resolved, 0, len(accountIDs))
	for _, id := range accountIDs {
		out = append(out, r.Resolve(id, direct, report))
	}
	return out
}

type reportMatch struct {
	row      ReportRow
	strategy string
}

// lookupReport returns the single best report row for the account: matching
// rows with the configured balance code and a non-zero amount, most recent
// balance date first. Ties on the same latest date break by largest amount,
// then by original row order, so the pick is deterministic.
func (r *Resolver) lookupReport(accountID string, report []ReportRow) (reportMatch, error) {
	type candidate struct {
		reportMatch
		index int
	}

	var matches []candidate
	for i, row := range report {
		if row.BalanceCode != r.cfg.BalanceCode || row.Amount.IsZero() {
			continue
		}
		if strategy, ok := Match(accountID, row.AccountID); ok {
			matches = append(matches, candidate{reportMatch{row, strategy}, i})
		}
	}

	if len(matches) == 0 {
		return reportMatch{}, ErrNoBalanceFound
	}
	if len(matches) == 1 {
		return matches[0].reportMatch, nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].row, matches[j].row
		if !a.BalanceDate.Equal(b.BalanceDate) {
			return a.BalanceDate.After(b.BalanceDate)
		}
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return matches[i].index < matches[j].index
	})

	for _, discarded := range matches[1:] {
		log.Printf("WARN: account %s: %v, discarding row dated %s amount %s",
			accountID, ErrAmbiguousMatch,
			discarded.row.BalanceDate.Format("2006-01-02"), discarded.row.Amount)
	}
	return matches[0].reportMatch, nil
}
