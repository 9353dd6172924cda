package transactions

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	return cfg
}

func TestGenerateAPInvoices_LinesSumToHeader(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for _, inv := range GenerateAPInvoices(testConfig(), 20, rng) {
		total := decimal.Zero
		for _, line := range inv.Lines {
			if !line.Amount.IsPositive() {
				t.Errorf("Invoice %s line %d has non-positive amount %s", inv.InvoiceNumber, line.LineNumber, line.Amount)
			}
			total = total.Add(line.Amount)
		}
		if !total.Equal(inv.Amount) {
			t.Errorf("Invoice %s lines sum to %s, header says %s", inv.InvoiceNumber, total, inv.Amount)
		}
		if !inv.DueDate.Equal(inv.InvoiceDate.AddDate(0, 0, 30)) {
			t.Errorf("Invoice %s due date is not NET30", inv.InvoiceNumber)
		}
	}
}

func TestGenerateARInvoices_UsesCustomerPool(t *testing.T) {
	rng := rand.New(rand.NewSource(4))

	for _, inv := range GenerateARInvoices(testConfig(), 10, rng) {
		if inv.Kind != "AR" {
			t.Errorf("Kind = %q, want AR", inv.Kind)
		}
		found := false
		for _, c := range customers {
			if inv.Party == c {
				found = true
			}
		}
		if !found {
			t.Errorf("Party %q is not in the customer pool", inv.Party)
		}
	}
}

func TestGenerateJournals_DebitsEqualCredits(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	for _, j := range GenerateJournals(testConfig(), 25, 3, rng) {
		if !j.TotalDebit.Equal(j.TotalCredit) {
			t.Errorf("Journal %s: debits %s != credits %s", j.JournalID, j.TotalDebit, j.TotalCredit)
		}
		if len(j.Lines) != 3 {
			t.Errorf("Journal %s has %d lines, want 3", j.JournalID, len(j.Lines))
		}

		var debits, credits decimal.Decimal
		for _, line := range j.Lines {
			debits = debits.Add(line.Debit)
			credits = credits.Add(line.Credit)
			if line.Debit.IsZero() && line.Credit.IsZero() {
				t.Errorf("Journal %s line %d carries no amount", j.JournalID, line.LineNumber)
			}
		}
		if !debits.Equal(j.TotalDebit) || !credits.Equal(j.TotalCredit) {
			t.Errorf("Journal %s header totals disagree with lines", j.JournalID)
		}
	}
}

func TestGenerateJournals_TwoLineJournalsBalance(t *testing.T) {
	rng := rand.New(rand.NewSource(6))

	// Two lines leave no slack: the single random line must be offset
	// exactly by the balancing line.
	for _, j := range GenerateJournals(testConfig(), 30, 2, rng) {
		if !j.TotalDebit.Equal(j.TotalCredit) {
			t.Errorf("Journal %s: debits %s != credits %s", j.JournalID, j.TotalDebit, j.TotalCredit)
		}
		if j.TotalDebit.IsZero() {
			t.Errorf("Journal %s balances at zero", j.JournalID)
		}
	}
}

func TestGenerateCashTransactions_PerAccount(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	accounts := []common.Account{
		{AccountName: "Operating Account", Currency: "USD"},
		{AccountName: "Payroll Account", Currency: "USD"},
	}

	txns := GenerateCashTransactions(testConfig(), accounts, 5, rng)
	if len(txns) != 10 {
		t.Fatalf("Expected 10 transactions, got %d", len(txns))
	}

	for _, tx := range txns {
		if tx.Amount.IsZero() {
			t.Error("Cash transaction amount must be non-zero")
		}
		valid := false
		for _, k := range cashTransactionTypes {
			if tx.TransactionType == k {
				valid = true
			}
		}
		if !valid {
			t.Errorf("Unexpected transaction type %q", tx.TransactionType)
		}
	}
}

func TestGenerate_FixedSeedIsReproducible(t *testing.T) {
	first := GenerateAPInvoices(testConfig(), 5, rand.New(rand.NewSource(11)))
	second := GenerateAPInvoices(testConfig(), 5, rand.New(rand.NewSource(11)))

	for i := range first {
		if first[i].InvoiceNumber != second[i].InvoiceNumber || !first[i].Amount.Equal(second[i].Amount) {
			t.Errorf("Invoice %d differs between identically seeded runs", i)
		}
	}
}
