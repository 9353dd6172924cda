package balances

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	out, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return out
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolve_ReportWinsOverDirect(t *testing.T) {
	r := NewResolver(DefaultConfig())

	direct := []DirectBalance{{AccountID: "10271980", Currency: "USD", Balance: dec("1000.00")}}
	report := []ReportRow{{AccountID: "10271980", BalanceCode: "OPBD", BalanceDate: day("2025-06-01"), Amount: dec("950.00")}}

	got := r.Resolve("10271980", direct, report)

	if !got.Opening.Equal(dec("950.00")) {
		t.Errorf("Opening = %s, want 950.00", got.Opening)
	}
	if got.Source != SourceReport {
		t.Errorf("Source = %q, want report", got.Source)
	}
	if !got.Discrepancy {
		t.Error("Expected discrepancy flag when direct and report disagree")
	}
}

func TestResolve_AgreementIsNotADiscrepancy(t *testing.T) {
	r := NewResolver(DefaultConfig())

	direct := []DirectBalance{{AccountID: "10271980", Balance: dec("950.00")}}
	report := []ReportRow{{AccountID: "10271980", BalanceCode: "OPBD", BalanceDate: day("2025-06-01"), Amount: dec("950.00")}}

	got := r.Resolve("10271980", direct, report)

	if got.Discrepancy {
		t.Error("Matching values must not raise the discrepancy flag")
	}
	if got.Source != SourceReport {
		t.Errorf("Source = %q, want report", got.Source)
	}
}

func TestResolve_DirectOnly(t *testing.T) {
	r := NewResolver(DefaultConfig())

	direct := []DirectBalance{{AccountID: "10271980", Balance: dec("1234.56")}}

	got := r.Resolve("10271980", direct, nil)

	if !got.Opening.Equal(dec("1234.56")) {
		t.Errorf("Opening = %s, want 1234.56", got.Opening)
	}
	if got.Source != SourceDirect {
		t.Errorf("Source = %q, want direct", got.Source)
	}
	if got.Unmatched || got.Discrepancy {
		t.Error("Unexpected flags for a clean direct-only resolution")
	}
}

func TestResolve_UnmatchedFallsBackToDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultOpening = dec("50000.00")
	r := NewResolver(cfg)

	got := r.Resolve("99999999", nil, nil)

	if !got.Opening.Equal(dec("50000.00")) {
		t.Errorf("Opening = %s, want configured default 50000.00", got.Opening)
	}
	if got.Source != SourceDefault {
		t.Errorf("Source = %q, want default", got.Source)
	}
	if !got.Unmatched {
		t.Error("Expected unmatched flag")
	}
}

func TestResolve_AmbiguousPicksLatestDate(t *testing.T) {
	r := NewResolver(DefaultConfig())

	report := []ReportRow{
		{AccountID: "10271980", BalanceCode: "OPBD", BalanceDate: day("2025-05-01"), Amount: dec("100.00")},
		{AccountID: "10271980", BalanceCode: "OPBD", BalanceDate: day("2025-06-01"), Amount: dec("200.00")},
		{AccountID: "10271980", BalanceCode: "OPBD", BalanceDate: day("2025-04-01"), Amount: dec("300.00")},
	}

	got := r.Resolve("10271980", nil, report)

	if !got.Opening.Equal(dec("200.00")) {
		t.Errorf("Opening = %s, want latest-dated 200.00", got.Opening)
	}
}

func TestResolve_SameDateTieBreaksByAmountThenOrder(t *testing.T) {
	r := NewResolver(DefaultConfig())

	report := []ReportRow{
		{AccountID: "10271980", BalanceCode: "OPBD", BalanceDate: day("2025-06-01"), Amount: dec("150.00")},
		{AccountID: "10271980", BalanceCode: "OPBD", BalanceDate: day("2025-06-01"), Amount: dec("400.00")},
	}

	got := r.Resolve("10271980", nil, report)
	if !got.Opening.Equal(dec("400.00")) {
		t.Errorf("Opening = %s, want 400.00 (largest amount on the shared latest date)", got.Opening)
	}

	// Identical rows: original order decides, so resolution stays stable.
	report[1].Amount = dec("150.00")
	again := r.Resolve("10271980", nil, report)
	if !again.Opening.Equal(dec("150.00")) {
		t.Errorf("Opening = %s, want 150.00", again.Opening)
	}
}

func TestResolve_IgnoresOtherBalanceCodesAndZeroRows(t *testing.T) {
	r := NewResolver(DefaultConfig())

	report := []ReportRow{
		{AccountID: "10271980", BalanceCode: "CLBD", BalanceDate: day("2025-06-02"), Amount: dec("999.00")},
		{AccountID: "10271980", BalanceCode: "OPBD", BalanceDate: day("2025-06-02"), Amount: dec("0")},
		{AccountID: "10271980", BalanceCode: "OPBD", BalanceDate: day("2025-06-01"), Amount: dec("750.00")},
	}

	got := r.Resolve("10271980", nil, report)
	if !got.Opening.Equal(dec("750.00")) {
		t.Errorf("Opening = %s, want 750.00", got.Opening)
	}
}

func TestResolve_NormalizedIdentifierMatch(t *testing.T) {
	r := NewResolver(DefaultConfig())

	// Report keys the account with stripped leading zeros.
	report := []ReportRow{{AccountID: "10271980", BalanceCode: "OPBD", BalanceDate: day("2025-06-01"), Amount: dec("800.00")}}

	got := r.Resolve("0010271980", nil, report)
	if !got.Opening.Equal(dec("800.00")) {
		t.Errorf("Opening = %s, want 800.00 via zero-stripping strategy", got.Opening)
	}
	if got.Strategy != "no-leading-zeros" {
		t.Errorf("Strategy = %q, want no-leading-zeros", got.Strategy)
	}
}

func TestMatch_StrategyOrder(t *testing.T) {
	cases := []struct {
		a, b     string
		strategy string
		ok       bool
	}{
		{"10271980", "10271980", "exact", true},
		{" 10271980 ", "10271980", "trimmed", true},
		{"abc123", "ABC123", "casefold", true},
		{"0012345", "12345", "no-leading-zeros", true},
		{"12-345", "12345", "digits-only", true},
		{"12345", "54321", "", false},
		{"", "12345", "", false},
	}

	for _, tc := range cases {
		strategy, ok := Match(tc.a, tc.b)
		if ok != tc.ok || strategy != tc.strategy {
			t.Errorf("Match(%q, %q) = (%q, %v), want (%q, %v)", tc.a, tc.b, strategy, ok, tc.strategy, tc.ok)
		}
	}
}
