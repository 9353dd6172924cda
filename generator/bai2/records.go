// Package bai2 encodes and decodes BAI2-style fixed-format bank statement
// files. Records are comma-delimited, "/"-terminated lines carrying a leading
// record type code:
//
//	01  file header        01,MMDDYY,HHMM,fileID/
//	03  account identifier 03,account,currency,010,openingCents,015,closingCents/
//	16  transaction detail 16,typeCode,amountCents,MMDDYY,reference,description/
//	49  account trailer    49,controlTotalCents,transactionCount/
//	99  file trailer       99,grandTotalCents,accountCount,transactionCount/
//
// Amounts are implied-decimal cents. Detail amounts are unsigned; direction
// comes from the type code (165 credit, 475 debit). Control totals are the
// signed sum of the transaction amounts they close out and are recomputed on
// decode; a declared total that disagrees with the embedded detail records
// rejects the whole file.
package bai2

import (
	"errors"
	"time"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
)

const (
	recordFileHeader     = "01"
	recordAccountHeader  = "03"
	recordTransaction    = "16"
	recordAccountTrailer = "49"
	recordFileTrailer    = "99"

	typeCodeCredit = "165"
	typeCodeDebit  = "475"

	balanceCodeOpening = "010"
	balanceCodeClosing = "015"

	dateLayout = "010206"
	timeLayout = "1504"
)

var (
	// ErrMalformedRecord reports a line shorter than its required field layout
	// or a field that cannot be parsed.
	ErrMalformedRecord = errors.New("bai2: malformed record")
	// ErrControlTotalMismatch reports a declared control total or record count
	// that differs from the embedded detail records.
	ErrControlTotalMismatch = errors.New("bai2: control total mismatch")
	// ErrUnknownRecordType reports a leading record code outside the defined set.
	ErrUnknownRecordType = errors.New("bai2: unknown record type")
)

// File is one encodable statement file: a header identity plus one statement
// record set per account.
type File struct {
	Created    time.Time          `json:"created"`
	FileID     string             `json:"file_id"`
	Statements []common.Statement `json:"statements"`
}
