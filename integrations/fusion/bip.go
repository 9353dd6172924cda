package fusion

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/balances"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
)

// openingBalanceSQL selects the latest non-zero opening booked balance per
// bank account from the statement balances ledger.
const openingBalanceSQL = `
SELECT
    'LATEST_OPENING_BALANCES' as source_type,
    bank_account_id,
    'OPBD' as balance_code,
    TO_CHAR(balance_date,'YYYY-MM-DD') as balance_date,
    balance_amount as opening_balance
FROM
    CE_STMT_BALANCES ce1
WHERE
    balance_code = 'OPBD'
    AND balance_amount != 0
    AND balance_date = (
        SELECT MAX(balance_date)
        FROM CE_STMT_BALANCES ce2
        WHERE ce2.bank_account_id = ce1.bank_account_id
        AND ce2.balance_code = 'OPBD'
        AND ce2.balance_amount != 0
    )
ORDER BY
    bank_account_id`

// BIPClient runs ad hoc SQL through a BIP Publisher report that accepts the
// query as a gzip+base64 parameter.
type BIPClient struct {
	endpoint   string
	reportPath string
	username   string
	password   string
	httpClient *http.Client
}

// NewBIPClient creates a report client for the instance's ReportService.
func NewBIPClient(creds Credentials) *BIPClient {
	return &BIPClient{
		endpoint:   creds.BIPEndpoint,
		reportPath: creds.ReportPath,
		username:   creds.Username,
		password:   creds.Password,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

var (
	lineCommentRegex  = regexp.MustCompile(`--[^\n]*`)
	blockCommentRegex = regexp.MustCompile(`(?s)/\*.*?\*/`)
	whitespaceRegex   = regexp.MustCompile(`\s+`)
)

// minifySQL strips comments and collapses whitespace so the encoded query
// stays inside the report parameter limits.
func minifySQL(sql string) string {
	sql = lineCommentRegex.ReplaceAllString(sql, "")
	sql = blockCommentRegex.ReplaceAllString(sql, "")
	sql = whitespaceRegex.ReplaceAllString(sql, " ")
	return strings.TrimSpace(sql)
}

// encodeSQL compresses and base64-encodes the query for the B64 report
// parameter.
func encodeSQL(sql string) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(minifySQL(sql))); err != nil {
		return "", fmt.Errorf("fusion: compress sql: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("fusion: compress sql: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

const soapEnvelope = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"
                  xmlns:v2="http://xmlns.oracle.com/oxp/service/v2">
   <soapenv:Header/>
   <soapenv:Body>
      <v2:runReport>
         <v2:reportRequest>
            <v2:reportAbsolutePath>%s</v2:reportAbsolutePath>
            <v2:attributeFormat>csv</v2:attributeFormat>
            <v2:sizeOfDataChunkDownload>-1</v2:sizeOfDataChunkDownload>
            <v2:parameterNameValues>
               <v2:listOfParamNameValues>
                  <v2:item>
                     <v2:name>P_B64_CONTENT</v2:name>
                     <v2:values>
                        <v2:item>%s</v2:item>
                     </v2:values>
                  </v2:item>
               </v2:listOfParamNameValues>
            </v2:parameterNameValues>
         </v2:reportRequest>
         <v2:userID>%s</v2:userID>
         <v2:password>%s</v2:password>
      </v2:runReport>
   </soapenv:Body>
</soapenv:Envelope>`

// RunReport executes a SQL query through the report and returns the rows of
// the pipe-delimited CSV payload, header row first.
func (c *BIPClient) RunReport(ctx context.Context, sql string) ([][]string, error) {
	encoded, err := encodeSQL(sql)
	if err != nil {
		return nil, err
	}

	envelope := fmt.Sprintf(soapEnvelope, c.reportPath, encoded, c.username, c.password)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("fusion: build report request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "runReport")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fusion: run report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fusion: run report: unexpected status %s: %s", resp.Status, snippet)
	}

	var parsed struct {
		ReportBytes string `xml:"Body>runReportResponse>runReportReturn>reportBytes"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fusion: read report response: %w", err)
	}
	if err := xml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("fusion: parse report response: %w", err)
	}
	if parsed.ReportBytes == "" {
		return nil, fmt.Errorf("fusion: report response carried no data")
	}

	data, err := base64.StdEncoding.DecodeString(parsed.ReportBytes)
	if err != nil {
		return nil, fmt.Errorf("fusion: decode report payload: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = '|'
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("fusion: parse report csv: %w", err)
	}
	return rows, nil
}

// FetchOpeningBalances runs the opening balance query and maps the result
// into resolver report rows.
func (c *BIPClient) FetchOpeningBalances(ctx context.Context) ([]balances.ReportRow, error) {
	rows, err := c.RunReport(ctx, openingBalanceSQL)
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	requireColumn := func(name string) (int, error) {
		i, ok := col[name]
		if !ok {
			return 0, fmt.Errorf("fusion: report is missing %s column", name)
		}
		return i, nil
	}
	idAt, err := requireColumn("bank_account_id")
	if err != nil {
		return nil, err
	}
	codeAt, err := requireColumn("balance_code")
	if err != nil {
		return nil, err
	}
	dateAt, err := requireColumn("balance_date")
	if err != nil {
		return nil, err
	}
	amountAt, err := requireColumn("opening_balance")
	if err != nil {
		return nil, err
	}

	out := make([]balances.ReportRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if idAt >= len(row) || codeAt >= len(row) || dateAt >= len(row) || amountAt >= len(row) {
			log.Printf("WARN: skipping short report row %v", row)
			continue
		}
		amount, err := common.ParseAmount(row[amountAt])
		if err != nil {
			log.Printf("WARN: skipping report row with bad amount %q", row[amountAt])
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[dateAt]))
		if err != nil {
			log.Printf("WARN: skipping report row with bad date %q", row[dateAt])
			continue
		}
		out = append(out, balances.ReportRow{
			AccountID:   strings.TrimSpace(row[idAt]),
			BalanceCode: strings.TrimSpace(row[codeAt]),
			BalanceDate: date,
			Amount:      amount,
		})
	}
	log.Printf("BIP report returned %d opening balance rows", len(out))
	return out, nil
}
