// Package transactions generates demo AP invoices, AR invoices, GL journals
// and external cash transactions for loading into a Fusion demo instance.
// Every amount is exact decimal and all randomness comes from the caller's
// rand source, so a fixed seed reproduces a run.
package transactions

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/exporter"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
)

var (
	suppliers = []string{
		"ABC Supplies Inc.", "XYZ Corporation", "Global Services Ltd.",
		"Tech Solutions Co.", "Office Equipment Corp.", "Marketing Partners LLC",
	}
	customers = []string{
		"Acme Corporation", "Beta Industries", "Gamma Solutions",
		"Delta Technologies", "Epsilon Services", "Zeta Enterprises",
	}
	cashTransactionTypes = []string{"CHK", "EFT", "MSC", "WIR", "ACH"}
	businessUnits        = []string{"US1 Business Unit", "UK Business Unit", "CA Business Unit"}
	journalSources       = []string{"MANUAL", "AP", "AR", "CASH", "INVENTORY", "PAYROLL"}
	journalCategories    = []string{"GENERAL", "ADJUSTMENT", "RECLASSIFICATION", "REVERSAL"}
	ledgers              = []string{"US Primary Ledger", "UK Primary Ledger", "CA Primary Ledger"}

	glAccounts = map[string][]string{
		"ASSET":     {"1000", "1100", "1200", "1300", "1400", "1500"},
		"LIABILITY": {"2000", "2100", "2200", "2300", "2400"},
		"EQUITY":    {"3000", "3100", "3200", "3300"},
		"REVENUE":   {"4000", "4100", "4200", "4300", "4400"},
		"EXPENSE":   {"5000", "5100", "5200", "5300", "5400", "5500"},
	}
	accountTypes = []string{"ASSET", "LIABILITY", "EQUITY", "REVENUE", "EXPENSE"}
)

// Config holds the generation knobs shared by all entity generators.
type Config struct {
	// BaseDate anchors every generated date; dates fall within
	// [BaseDate - DateRangeDays, BaseDate].
	BaseDate      time.Time
	DateRangeDays int
	MinAmount     decimal.Decimal
	MaxAmount     decimal.Decimal
	Currency      string
}

// DefaultConfig mirrors the embedded application defaults.
func DefaultConfig() Config {
	return Config{
		BaseDate:      time.Now(),
		DateRangeDays: 30,
		MinAmount:     decimal.NewFromInt(100),
		MaxAmount:     decimal.NewFromInt(5000),
		Currency:      "USD",
	}
}

// LineItem is one invoice distribution line. Line amounts always sum exactly
// to the invoice header amount.
type LineItem struct {
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice is a generated AP or AR invoice. Kind is "AP" or "AR"; Party is
// the supplier or customer respectively.
type Invoice struct {
	Kind          string          `json:"kind"`
	InvoiceNumber string          `json:"invoice_number"`
	Party         string          `json:"party"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentTerms  string          `json:"payment_terms"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	Lines         []LineItem      `json:"lines"`
}

// JournalLine is one side of a GL journal entry.
type JournalLine struct {
	LineNumber  int             `json:"line_number"`
	AccountType string          `json:"account_type"`
	GLAccount   string          `json:"gl_account"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// Journal is a generated GL journal entry. TotalDebit always equals
// TotalCredit exactly; the last line forces the balance.
type Journal struct {
	JournalID    string          `json:"journal_id"`
	JournalName  string          `json:"journal_name"`
	JournalDate  time.Time       `json:"journal_date"`
	Category     string          `json:"category"`
	Source       string          `json:"source"`
	Ledger       string          `json:"ledger"`
	BusinessUnit string          `json:"business_unit"`
	Currency     string          `json:"currency"`
	PeriodName   string          `json:"period_name"`
	Status       string          `json:"status"`
	TotalDebit   decimal.Decimal `json:"total_debit"`
	TotalCredit  decimal.Decimal `json:"total_credit"`
	Lines        []JournalLine   `json:"lines"`
}

// CashTransaction is an external cash-management transaction used for
// auto-reconciliation against generated statements.
type CashTransaction struct {
	BankAccountName string          `json:"bank_account_name"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	TransactionType string          `json:"transaction_type"`
	Reference       string          `json:"reference"`
	BusinessUnit    string          `json:"business_unit"`
	Reconciled      bool            `json:"reconciled"`
}

// GenerateAPInvoices produces count payables invoices.
func GenerateAPInvoices(cfg Config, count int, rng *rand.Rand) []Invoice {
	return generateInvoices(cfg, "AP", suppliers, count, rng)
}

// GenerateARInvoices produces count receivables invoices.
func GenerateARInvoices(cfg Config, count int, rng *rand.Rand) []Invoice {
	return generateInvoices(cfg, "AR", customers, count, rng)
}

func generateInvoices(cfg Config, kind string, parties []string, count int, rng *rand.Rand) []Invoice {
	invoices := make([]Invoice, 0, count)
	for i := 0; i < count; i++ {
		date := randomDate(cfg, rng)
		amount := randomAmount(cfg.MinAmount, cfg.MaxAmount, rng)

		inv := Invoice{
			Kind:          kind,
			InvoiceNumber: fmt.Sprintf("%s-INV-%05d", kind, 10000+rng.Intn(90000)),
			Party:         parties[rng.Intn(len(parties))],
			InvoiceDate:   date,
			DueDate:       date.AddDate(0, 0, 30),
			Amount:        amount,
			Currency:      cfg.Currency,
			PaymentTerms:  "NET30",
			Status:        "PENDING",
			Description:   fmt.Sprintf("Demo %s invoice %d", kind, i+1),
			Lines:         splitLines(amount, 1+rng.Intn(5), rng),
		}
		invoices = append(invoices, inv)
	}
	return invoices
}

// splitLines partitions the invoice amount into n lines summing exactly to
// the header amount; the last line absorbs the remainder.
func splitLines(amount decimal.Decimal, n int, rng *rand.Rand) []LineItem {
	cent := decimal.New(1, -2)
	if cents := amount.Shift(2).IntPart(); cents < int64(n) {
		n = 1
	}

	lines := make([]LineItem, 0, n)
	remaining := amount
	for j := 0; j < n; j++ {
		var lineAmount decimal.Decimal
		if j == n-1 {
			lineAmount = remaining
		} else {
			// Take 10-50% of the remainder, leaving at least one cent for
			// every line still to come.
			pct := decimal.New(int64(10+rng.Intn(41)), -2)
			lineAmount = remaining.Mul(pct).Round(2)
			ceiling := remaining.Sub(cent.Mul(decimal.NewFromInt(int64(n - j - 1))))
			if lineAmount.GreaterThan(ceiling) {
				lineAmount = ceiling
			}
			if lineAmount.LessThan(cent) {
				lineAmount = cent
			}
			remaining = remaining.Sub(lineAmount)
		}
		qty := 1 + rng.Intn(10)
		lines = append(lines, LineItem{
			LineNumber:  j + 1,
			Description: fmt.Sprintf("Item %d", j+1),
			Quantity:    qty,
			UnitPrice:   lineAmount.Div(decimal.NewFromInt(int64(qty))).Round(2),
			Amount:      lineAmount,
		})
	}
	return lines
}

// GenerateJournals produces count GL journals with linesPerJournal lines
// each. Debits equal credits exactly on every journal.
func GenerateJournals(cfg Config, count, linesPerJournal int, rng *rand.Rand) []Journal {
	if linesPerJournal < 2 {
		linesPerJournal = 2
	}
	journals := make([]Journal, 0, count)
	for i := 0; i < count; i++ {
		date := randomDate(cfg, rng)
		j := Journal{
			JournalID:    fmt.Sprintf("GL-DEMO-%03d", i+1),
			JournalName:  fmt.Sprintf("Demo GL Journal %d", i+1),
			JournalDate:  date,
			Category:     journalCategories[rng.Intn(len(journalCategories))],
			Source:       journalSources[rng.Intn(len(journalSources))],
			Ledger:       ledgers[rng.Intn(len(ledgers))],
			BusinessUnit: businessUnits[rng.Intn(len(businessUnits))],
			Currency:     cfg.Currency,
			PeriodName:   date.Format("Jan-2006"),
			Status:       "DRAFT",
		}

		for line := 0; line < linesPerJournal-1; line++ {
			amount := randomAmount(cfg.MinAmount, cfg.MaxAmount, rng)
			debit := rng.Intn(2) == 0
			// Keep the running totals unequal so the forced balancing line
			// is never zero.
			if line == linesPerJournal-2 {
				post := j.TotalDebit.Sub(j.TotalCredit)
				if debit {
					post = post.Add(amount)
				} else {
					post = post.Sub(amount)
				}
				if post.IsZero() {
					debit = !debit
				}
			}
			j.Lines = append(j.Lines, newJournalLine(line+1, amount, debit, rng))
			if debit {
				j.TotalDebit = j.TotalDebit.Add(amount)
			} else {
				j.TotalCredit = j.TotalCredit.Add(amount)
			}
		}

		diff := j.TotalDebit.Sub(j.TotalCredit)
		balancing := newJournalLine(linesPerJournal, diff.Abs(), diff.IsNegative(), rng)
		j.Lines = append(j.Lines, balancing)
		if diff.IsNegative() {
			j.TotalDebit = j.TotalDebit.Add(diff.Abs())
		} else {
			j.TotalCredit = j.TotalCredit.Add(diff.Abs())
		}

		journals = append(journals, j)
	}
	return journals
}

func newJournalLine(number int, amount decimal.Decimal, debit bool, rng *rand.Rand) JournalLine {
	accountType := accountTypes[rng.Intn(len(accountTypes))]
	line := JournalLine{
		LineNumber:  number,
		AccountType: accountType,
		GLAccount:   glAccounts[accountType][rng.Intn(len(glAccounts[accountType]))],
		Description: fmt.Sprintf("Demo GL line %d", number),
	}
	if debit {
		line.Debit = amount
	} else {
		line.Credit = amount
	}
	return line
}

// GenerateCashTransactions produces perAccount external cash transactions
// for every account, roughly 70% credits and 70% pre-reconciled.
func GenerateCashTransactions(cfg Config, accounts []common.Account, perAccount int, rng *rand.Rand) []CashTransaction {
	out := make([]CashTransaction, 0, len(accounts)*perAccount)
	for _, account := range accounts {
		for i := 0; i < perAccount; i++ {
			amount := randomAmount(cfg.MinAmount, cfg.MaxAmount, rng)
			if rng.Float64() <= 0.3 {
				amount = amount.Neg()
			}
			name := []rune(account.AccountName + "ACC")
			out = append(out, CashTransaction{
				BankAccountName: account.AccountName,
				Amount:          amount,
				TransactionDate: randomDate(cfg, rng),
				TransactionType: cashTransactionTypes[rng.Intn(len(cashTransactionTypes))],
				Reference:       fmt.Sprintf("EXT-%s-%02d%c", string(name[:3]), i+1, 'A'+rune(i%26)),
				BusinessUnit:    businessUnits[rng.Intn(len(businessUnits))],
				Reconciled:      rng.Float64() > 0.3,
			})
		}
	}
	return out
}

func randomDate(cfg Config, rng *rand.Rand) time.Time {
	days := cfg.DateRangeDays
	if days < 1 {
		days = 1
	}
	d := cfg.BaseDate.AddDate(0, 0, -rng.Intn(days+1))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// randomAmount draws a cent-granular amount uniformly from [min, max].
func randomAmount(min, max decimal.Decimal, rng *rand.Rand) decimal.Decimal {
	lo := min.Shift(2).Ceil().IntPart()
	hi := max.Shift(2).Floor().IntPart()
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return decimal.New(lo+rng.Int63n(hi-lo+1), -2)
}

// Tabular views for the export assembler.

// Row flattens the invoice header for tabular export.
func (inv Invoice) Row() []exporter.Field {
	partyColumn := "SupplierName"
	if inv.Kind == "AR" {
		partyColumn = "CustomerName"
	}
	return []exporter.Field{
		{Name: "InvoiceNumber", Value: inv.InvoiceNumber},
		{Name: partyColumn, Value: inv.Party},
		{Name: "InvoiceDate", Value: inv.InvoiceDate.Format("2006-01-02")},
		{Name: "DueDate", Value: inv.DueDate.Format("2006-01-02")},
		{Name: "Amount", Value: inv.Amount.StringFixed(2)},
		{Name: "Currency", Value: inv.Currency},
		{Name: "PaymentTerms", Value: inv.PaymentTerms},
		{Name: "Status", Value: inv.Status},
		{Name: "Description", Value: inv.Description},
	}
}

// Row flattens the journal header for tabular export.
func (j Journal) Row() []exporter.Field {
	return []exporter.Field{
		{Name: "JournalId", Value: j.JournalID},
		{Name: "JournalName", Value: j.JournalName},
		{Name: "JournalDate", Value: j.JournalDate.Format("2006/01/02")},
		{Name: "Category", Value: j.Category},
		{Name: "Source", Value: j.Source},
		{Name: "Ledger", Value: j.Ledger},
		{Name: "BusinessUnit", Value: j.BusinessUnit},
		{Name: "Currency", Value: j.Currency},
		{Name: "PeriodName", Value: j.PeriodName},
		{Name: "Status", Value: j.Status},
		{Name: "TotalDebit", Value: j.TotalDebit.StringFixed(2)},
		{Name: "TotalCredit", Value: j.TotalCredit.StringFixed(2)},
	}
}

// Row flattens the cash transaction for tabular export.
func (c CashTransaction) Row() []exporter.Field {
	reconciled := "N"
	if c.Reconciled {
		reconciled = "Y"
	}
	return []exporter.Field{
		{Name: "BankAccountName", Value: c.BankAccountName},
		{Name: "Amount", Value: c.Amount.StringFixed(2)},
		{Name: "TransactionDate", Value: c.TransactionDate.Format("01/02/2006")},
		{Name: "TransactionType", Value: c.TransactionType},
		{Name: "Reference", Value: c.Reference},
		{Name: "BusinessUnit", Value: c.BusinessUnit},
		{Name: "Reconciled", Value: reconciled},
	}
}
