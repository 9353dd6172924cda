package bai2

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Encode renders the file as BAI2 text. Control totals and record counts are
// computed from the transaction detail lines, never taken from the caller;
// a statement whose balances disagree with its own transactions is rejected
// rather than encoded with totals the consuming system would bounce.
func Encode(f File) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s,%s,%s,%s/\n",
		recordFileHeader,
		f.Created.Format(dateLayout),
		f.Created.Format(timeLayout),
		f.FileID,
	)

	grandTotal := decimal.Zero
	grandCount := 0

	for _, stmt := range f.Statements {
		opening, err := toCents(stmt.OpeningBalance)
		if err != nil {
			return "", err
		}
		closing, err := toCents(stmt.ClosingBalance)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&b, "%s,%s,%s,%s,%d,%s,%d/\n",
			recordAccountHeader,
			stmt.Account.AccountNumber,
			stmt.Account.Currency,
			balanceCodeOpening, opening,
			balanceCodeClosing, closing,
		)

		accountTotal := decimal.Zero
		for _, tx := range stmt.Transactions {
			cents, err := toCents(tx.Amount)
			if err != nil {
				return "", err
			}
			code := typeCodeCredit
			if cents < 0 {
				code = typeCodeDebit
				cents = -cents
			}
			fmt.Fprintf(&b, "%s,%s,%d,%s,%s,%s/\n",
				recordTransaction,
				code,
				cents,
				tx.Date.Format(dateLayout),
				tx.Reference,
				tx.Description,
			)
			accountTotal = accountTotal.Add(tx.Amount)
		}

		if !stmt.OpeningBalance.Add(accountTotal).Equal(stmt.ClosingBalance) {
			return "", fmt.Errorf("%w: account %s transactions sum to %s, balances declare %s",
				ErrControlTotalMismatch,
				stmt.Account.AccountNumber,
				accountTotal,
				stmt.ClosingBalance.Sub(stmt.OpeningBalance),
			)
		}

		totalCents, err := toCents(accountTotal)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s,%d,%d/\n", recordAccountTrailer, totalCents, len(stmt.Transactions))

		grandTotal = grandTotal.Add(accountTotal)
		grandCount += len(stmt.Transactions)
	}

	grandCents, err := toCents(grandTotal)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "%s,%d,%d,%d/\n", recordFileTrailer, grandCents, len(f.Statements), grandCount)

	return b.String(), nil
}

// toCents converts a decimal amount to implied-decimal cents. Sub-cent
// amounts have no representation in the format and are rejected.
func toCents(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: amount %s is not cent-granular", ErrMalformedRecord, d)
	}
	return shifted.IntPart(), nil
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func parseCents(field string) (int64, error) {
	cents, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad amount field %q", ErrMalformedRecord, field)
	}
	return cents, nil
}
