// Package fusion talks to an Oracle Fusion Financials instance: the
// cash-management REST resources for accounts and transaction entry, the
// erpintegrations resource for file upload and ESS job submission, and the
// BIP ReportService for the balance report.
package fusion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/balances"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/common"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/transactions"
)

const restPath = "/fscmRestApi/resources/11.13.18.05"

// Client is a REST client for one Fusion instance.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// NewClient creates a Fusion REST client with basic authentication.
func NewClient(creds Credentials) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(creds.BaseURL, "/"),
		username:   creds.Username,
		password:   creds.Password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("fusion: marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+restPath+path, body)
	if err != nil {
		return fmt.Errorf("fusion: build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fusion: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fusion: %s %s: unexpected status %s: %s", method, path, resp.Status, snippet)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("fusion: decode response: %w", err)
		}
	}
	return nil
}

// Authenticate verifies the credentials against the erpintegrations resource.
func (c *Client) Authenticate(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/erpintegrations", nil, nil)
}

type bankAccountItem struct {
	AccountID       json.Number `json:"AccountId"`
	AccountName     string      `json:"AccountName"`
	AccountNumber   string      `json:"AccountNumber"`
	CurrencyCode    string      `json:"CurrencyCode"`
	BankName        string      `json:"BankName"`
	LegalEntityName string      `json:"LegalEntityName"`
	ActiveFlag      bool        `json:"ActiveFlag"`
}

type bankAccountsResponse struct {
	Items []bankAccountItem `json:"items"`
}

// GetBankAccounts lists the cash bank accounts of the instance.
func (c *Client) GetBankAccounts(ctx context.Context) ([]common.Account, error) {
	var resp bankAccountsResponse
	if err := c.do(ctx, http.MethodGet, "/cashBankAccounts", nil, &resp); err != nil {
		return nil, err
	}

	accounts := make([]common.Account, 0, len(resp.Items))
	for _, item := range resp.Items {
		currency := item.CurrencyCode
		if currency == "" {
			currency = "USD"
		}
		accounts = append(accounts, common.Account{
			AccountID:     item.AccountID.String(),
			AccountNumber: item.AccountNumber,
			AccountName:   item.AccountName,
			BankName:      item.BankName,
			Currency:      currency,
			LegalEntity:   item.LegalEntityName,
			Active:        item.ActiveFlag,
		})
	}
	log.Printf("Fetched %d bank accounts from %s", len(accounts), c.baseURL)
	return accounts, nil
}

type uploadRequest struct {
	OperationName   string `json:"OperationName"`
	DocumentContent string `json:"DocumentContent"`
	DocumentAccount string `json:"DocumentAccount"`
	FileName        string `json:"FileName"`
	ContentType     string `json:"ContentType"`
}

type uploadResponse struct {
	DocumentID json.Number `json:"DocumentId"`
}

// UploadStatement pushes a BAI2 file to UCM and returns the document ID used
// to submit the processing job.
func (c *Client) UploadStatement(ctx context.Context, filename string, content []byte) (string, error) {
	payload := uploadRequest{
		OperationName:   "uploadFileToUCM",
		DocumentContent: base64.StdEncoding.EncodeToString(content),
		DocumentAccount: "fin$/cashManagement$/import$",
		FileName:        filename,
		ContentType:     "txt",
	}

	var resp uploadResponse
	if err := c.do(ctx, http.MethodPost, "/erpintegrations", payload, &resp); err != nil {
		return "", err
	}
	if resp.DocumentID.String() == "" {
		return "", fmt.Errorf("fusion: upload of %s returned no document id", filename)
	}
	log.Printf("Uploaded %s as document %s", filename, resp.DocumentID)
	return resp.DocumentID.String(), nil
}

type essJobRequest struct {
	OperationName  string `json:"OperationName"`
	JobPackageName string `json:"JobPackageName"`
	JobDefName     string `json:"JobDefName"`
	ESSParameters  string `json:"ESSParameters"`
}

type essJobResponse struct {
	ReqstID json.Number `json:"ReqstId"`
}

// SubmitStatementProcessing launches the bank statement processing job for
// an uploaded document and returns the ESS request ID.
func (c *Client) SubmitStatementProcessing(ctx context.Context, documentID string) (string, error) {
	payload := essJobRequest{
		OperationName:  "submitESSJobRequest",
		JobPackageName: "/oracle/apps/ess/financials/cashManagement/statements/",
		JobDefName:     "BankStatementProcessingForCloud",
		ESSParameters:  documentID,
	}

	var resp essJobResponse
	if err := c.do(ctx, http.MethodPost, "/erpintegrations", payload, &resp); err != nil {
		return "", err
	}
	log.Printf("Submitted statement processing job, request %s", resp.ReqstID)
	return resp.ReqstID.String(), nil
}

// GetDirectBalances maps the account listing into direct balance rows for
// the resolver. Accounts without a balance attribute are skipped.
func (c *Client) GetDirectBalances(ctx context.Context) ([]balances.DirectBalance, error) {
	var resp struct {
		Items []struct {
			AccountID    json.Number `json:"AccountId"`
			CurrencyCode string      `json:"CurrencyCode"`
			Balance      string      `json:"LedgerBalance"`
		} `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/cashBankAccounts", nil, &resp); err != nil {
		return nil, err
	}

	rows := make([]balances.DirectBalance, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Balance == "" {
			continue
		}
		amount, err := common.ParseAmount(item.Balance)
		if err != nil {
			log.Printf("WARN: account %s: unparseable ledger balance %q, skipping", item.AccountID, item.Balance)
			continue
		}
		rows = append(rows, balances.DirectBalance{
			AccountID: item.AccountID.String(),
			Currency:  item.CurrencyCode,
			Balance:   amount,
		})
	}
	return rows, nil
}

// CreateCashTransaction posts one external cash transaction.
func (c *Client) CreateCashTransaction(ctx context.Context, tx transactions.CashTransaction) error {
	payload := map[string]any{
		"bankAccountName": tx.BankAccountName,
		"amount":          tx.Amount,
		"transactionDate": tx.TransactionDate.Format("2006-01-02"),
		"transactionType": tx.TransactionType,
		"reference":       tx.Reference,
		"businessUnit":    tx.BusinessUnit,
		"reconciled":      tx.Reconciled,
		"source":          "External Cash Management",
	}
	return c.do(ctx, http.MethodPost, "/cashExternalTransactions", payload, nil)
}

// CreateInvoice posts one generated invoice to the payables or receivables
// resource depending on its kind.
func (c *Client) CreateInvoice(ctx context.Context, inv transactions.Invoice) error {
	path := "/invoices"
	if inv.Kind == "AR" {
		path = "/receivablesInvoices"
	}
	return c.do(ctx, http.MethodPost, path, inv, nil)
}

// CreateJournal posts one generated GL journal.
func (c *Client) CreateJournal(ctx context.Context, j transactions.Journal) error {
	return c.do(ctx, http.MethodPost, "/journalEntries", j, nil)
}
