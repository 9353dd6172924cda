package generator

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/bai2"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
)

func dec(s string) decimal.Decimal {
	out, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return out
}

func testOptions(count int) Options {
	opts := DefaultOptions()
	opts.Count = count
	opts.MinAmount = dec("100")
	opts.MaxAmount = dec("2000")
	opts.StatementDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	return opts
}

func testAccount() common.Account {
	return common.Account{
		AccountID:     "300100",
		AccountNumber: "10271980",
		AccountName:   "Operating Account",
		Currency:      "USD",
		Active:        true,
	}
}

func TestBuildStatement_DrivesOpeningToTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	stmt, err := BuildStatement(Request{
		Account: testAccount(),
		Opening: dec("5000.00"),
		Target:  dec("7500.00"),
	}, testOptions(3), rng)
	if err != nil {
		t.Fatalf("BuildStatement failed: %v", err)
	}

	if !stmt.ClosingBalance.Equal(dec("7500.00")) {
		t.Errorf("Closing = %s, want 7500.00", stmt.ClosingBalance)
	}
	if !stmt.Nett.Equal(dec("2500.00")) {
		t.Errorf("Nett = %s, want 2500.00", stmt.Nett)
	}
	if len(stmt.Transactions) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(stmt.Transactions))
	}

	balance := stmt.OpeningBalance
	for i, tx := range stmt.Transactions {
		balance = balance.Add(tx.Amount)
		if !tx.Balance.Equal(balance) {
			t.Errorf("Transaction %d running balance %s, want %s", i, tx.Balance, balance)
		}
		if tx.Sequence != i+1 {
			t.Errorf("Transaction %d sequence = %d", i, tx.Sequence)
		}
		if tx.Amount.IsNegative() != (tx.Type == "debit") {
			t.Errorf("Transaction %d type %q disagrees with sign of %s", i, tx.Type, tx.Amount)
		}
	}
}

func TestBuildStatement_InvalidBoundsSurface(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	_, err := BuildStatement(Request{
		Account: testAccount(),
		Opening: dec("0"),
		Target:  dec("100000.00"),
	}, testOptions(2), rng)
	if err == nil {
		t.Fatal("Expected error when bounds cannot reach the target")
	}
}

func TestBuildFile_EncodesWithMatchingControlTotals(t *testing.T) {
	rng := rand.New(rand.NewSource(12))

	file, err := BuildFile([]Request{
		{Account: testAccount(), Opening: dec("5000.00"), Target: dec("7500.00")},
	}, testOptions(3), rng)
	if err != nil {
		t.Fatalf("BuildFile failed: %v", err)
	}

	if file.Statements[0].RunID == "" {
		t.Error("Expected statements to carry a run ID")
	}

	text, err := bai2.Encode(file)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if got := lines[len(lines)-1]; got != "99,250000,1,3/" {
		t.Errorf("File trailer = %q, want 99,250000,1,3/", got)
	}

	decoded, err := bai2.Decode(text)
	if err != nil {
		t.Fatalf("Round trip failed: %v", err)
	}
	if !decoded.Statements[0].ClosingBalance.Equal(dec("7500.00")) {
		t.Errorf("Round-tripped closing = %s", decoded.Statements[0].ClosingBalance)
	}
}

func TestBuildFile_MultipleAccountsShareRunID(t *testing.T) {
	rng := rand.New(rand.NewSource(13))

	second := testAccount()
	second.AccountNumber = "20553311"

	file, err := BuildFile([]Request{
		{Account: testAccount(), Opening: dec("1000.00"), Target: dec("1500.00")},
		{Account: second, Opening: dec("2000.00"), Target: dec("1000.00")},
	}, testOptions(4), rng)
	if err != nil {
		t.Fatalf("BuildFile failed: %v", err)
	}

	if file.Statements[0].RunID != file.Statements[1].RunID {
		t.Error("Statements from one run must share a run ID")
	}
}
