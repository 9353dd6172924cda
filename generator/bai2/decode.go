package bai2

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
)

// Decode parses BAI2 text back into a File. Declared control totals and
// record counts are checked against the embedded detail records; any
// disagreement rejects the whole file instead of being silently corrected.
func Decode(text string) (File, error) {
	var (
		file        File
		current     *common.Statement
		sawHeader   bool
		sawTrailer  bool
		grandTotal  decimal.Decimal
		grandCount  int
		accumulated decimal.Decimal
		balance     decimal.Decimal
	)

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for no, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, "/") {
			return File{}, fmt.Errorf("%w: line %d missing record terminator", ErrMalformedRecord, no+1)
		}
		line = strings.TrimSuffix(line, "/")

		code := line
		if i := strings.Index(line, ","); i >= 0 {
			code = line[:i]
		}

		if sawTrailer {
			return File{}, fmt.Errorf("%w: line %d after file trailer", ErrMalformedRecord, no+1)
		}

		switch code {
		case recordFileHeader:
			fields := strings.Split(line, ",")
			if len(fields) < 4 {
				return File{}, fmt.Errorf("%w: line %d file header has %d fields", ErrMalformedRecord, no+1, len(fields))
			}
			created, err := time.Parse(dateLayout+timeLayout, fields[1]+fields[2])
			if err != nil {
				return File{}, fmt.Errorf("%w: line %d bad file header date: %v", ErrMalformedRecord, no+1, err)
			}
			file.Created = created
			file.FileID = fields[3]
			sawHeader = true

		case recordAccountHeader:
			if !sawHeader {
				return File{}, fmt.Errorf("%w: line %d account record before file header", ErrMalformedRecord, no+1)
			}
			if current != nil {
				return File{}, fmt.Errorf("%w: line %d account record inside open account group", ErrMalformedRecord, no+1)
			}
			fields := strings.Split(line, ",")
			if len(fields) < 7 {
				return File{}, fmt.Errorf("%w: line %d account header has %d fields", ErrMalformedRecord, no+1, len(fields))
			}
			if fields[3] != balanceCodeOpening || fields[5] != balanceCodeClosing {
				return File{}, fmt.Errorf("%w: line %d unexpected balance codes %s/%s", ErrMalformedRecord, no+1, fields[3], fields[5])
			}
			opening, err := parseCents(fields[4])
			if err != nil {
				return File{}, fmt.Errorf("line %d: %w", no+1, err)
			}
			closing, err := parseCents(fields[6])
			if err != nil {
				return File{}, fmt.Errorf("line %d: %w", no+1, err)
			}
			current = &common.Statement{
				Account: common.Account{
					AccountNumber: fields[1],
					Currency:      fields[2],
				},
				StatementDate:  file.Created,
				OpeningBalance: fromCents(opening),
				ClosingBalance: fromCents(closing),
				Transactions:   []common.Transaction{},
			}
			accumulated = decimal.Zero
			balance = current.OpeningBalance

		case recordTransaction:
			if current == nil {
				return File{}, fmt.Errorf("%w: line %d transaction outside account group", ErrMalformedRecord, no+1)
			}
			// Description is the trailing field and may itself contain commas.
			fields := strings.SplitN(line, ",", 6)
			if len(fields) < 6 {
				return File{}, fmt.Errorf("%w: line %d transaction has %d fields", ErrMalformedRecord, no+1, len(fields))
			}
			cents, err := parseCents(fields[2])
			if err != nil {
				return File{}, fmt.Errorf("line %d: %w", no+1, err)
			}
			date, err := time.Parse(dateLayout, fields[3])
			if err != nil {
				return File{}, fmt.Errorf("%w: line %d bad transaction date: %v", ErrMalformedRecord, no+1, err)
			}

			var amount decimal.Decimal
			var txType string
			switch fields[1] {
			case typeCodeCredit:
				amount = fromCents(cents)
				txType = "credit"
				current.TotalCredit = current.TotalCredit.Add(amount)
			case typeCodeDebit:
				amount = fromCents(-cents)
				txType = "debit"
				current.TotalDebit = current.TotalDebit.Add(amount)
			default:
				return File{}, fmt.Errorf("%w: line %d transaction type code %q", ErrMalformedRecord, no+1, fields[1])
			}

			accumulated = accumulated.Add(amount)
			balance = balance.Add(amount)
			current.Transactions = append(current.Transactions, common.Transaction{
				Sequence:    len(current.Transactions) + 1,
				Date:        date,
				Description: fields[5],
				Type:        txType,
				Amount:      amount,
				Balance:     balance,
				Reference:   fields[4],
			})

		case recordAccountTrailer:
			if current == nil {
				return File{}, fmt.Errorf("%w: line %d account trailer without open account group", ErrMalformedRecord, no+1)
			}
			fields := strings.Split(line, ",")
			if len(fields) < 3 {
				return File{}, fmt.Errorf("%w: line %d account trailer has %d fields", ErrMalformedRecord, no+1, len(fields))
			}
			declared, err := parseCents(fields[1])
			if err != nil {
				return File{}, fmt.Errorf("line %d: %w", no+1, err)
			}
			declaredCount, err := parseCents(fields[2])
			if err != nil {
				return File{}, fmt.Errorf("line %d: %w", no+1, err)
			}
			if !fromCents(declared).Equal(accumulated) {
				return File{}, fmt.Errorf("%w: account %s declares %s, transactions sum to %s",
					ErrControlTotalMismatch, current.Account.AccountNumber, fromCents(declared), accumulated)
			}
			if int(declaredCount) != len(current.Transactions) {
				return File{}, fmt.Errorf("%w: account %s declares %d records, found %d",
					ErrControlTotalMismatch, current.Account.AccountNumber, declaredCount, len(current.Transactions))
			}
			if !current.OpeningBalance.Add(accumulated).Equal(current.ClosingBalance) {
				return File{}, fmt.Errorf("%w: account %s balances declare %s, transactions sum to %s",
					ErrControlTotalMismatch, current.Account.AccountNumber,
					current.ClosingBalance.Sub(current.OpeningBalance), accumulated)
			}

			current.Nett = accumulated
			file.Statements = append(file.Statements, *current)
			grandTotal = grandTotal.Add(accumulated)
			grandCount += len(current.Transactions)
			current = nil

		case recordFileTrailer:
			if !sawHeader {
				return File{}, fmt.Errorf("%w: line %d file trailer before file header", ErrMalformedRecord, no+1)
			}
			if current != nil {
				return File{}, fmt.Errorf("%w: line %d file trailer inside open account group", ErrMalformedRecord, no+1)
			}
			fields := strings.Split(line, ",")
			if len(fields) < 4 {
				return File{}, fmt.Errorf("%w: line %d file trailer has %d fields", ErrMalformedRecord, no+1, len(fields))
			}
			declared, err := parseCents(fields[1])
			if err != nil {
				return File{}, fmt.Errorf("line %d: %w", no+1, err)
			}
			declaredAccounts, err := parseCents(fields[2])
			if err != nil {
				return File{}, fmt.Errorf("line %d: %w", no+1, err)
			}
			declaredTx, err := parseCents(fields[3])
			if err != nil {
				return File{}, fmt.Errorf("line %d: %w", no+1, err)
			}
			if !fromCents(declared).Equal(grandTotal) {
				return File{}, fmt.Errorf("%w: file trailer declares %s, accounts sum to %s",
					ErrControlTotalMismatch, fromCents(declared), grandTotal)
			}
			if int(declaredAccounts) != len(file.Statements) {
				return File{}, fmt.Errorf("%w: file trailer declares %d accounts, found %d",
					ErrControlTotalMismatch, declaredAccounts, len(file.Statements))
			}
			if int(declaredTx) != grandCount {
				return File{}, fmt.Errorf("%w: file trailer declares %d transactions, found %d",
					ErrControlTotalMismatch, declaredTx, grandCount)
			}
			sawTrailer = true

		default:
			return File{}, fmt.Errorf("%w: line %d record code %q", ErrUnknownRecordType, no+1, code)
		}
	}

	if !sawHeader {
		return File{}, fmt.Errorf("%w: missing file header", ErrMalformedRecord)
	}
	if current != nil {
		return File{}, fmt.Errorf("%w: account group %s never closed", ErrMalformedRecord, current.Account.AccountNumber)
	}
	if !sawTrailer {
		return File{}, fmt.Errorf("%w: missing file trailer", ErrMalformedRecord)
	}

	return file, nil
}
