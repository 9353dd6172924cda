package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/transactions"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/integrations/fusion"
)

var (
	seedEnvFile string
	seedCount   int
	seedSeed    int64
	seedKind    string
	seedTimeout int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo transactions directly in the Fusion instance",
	Long: `Generates demo records and posts them to the Fusion REST API one by one:

  invoices  payables and receivables invoices
  journals  general ledger journals
  cash      external cash transactions against the instance's bank accounts

Slower than a file-based import but needs no import job. Use --kind to
restrict what gets created.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(seedTimeout)*time.Second)
		defer cancel()

		creds, err := fusion.LoadCredentials(seedEnvFile)
		if err != nil {
			fatal("error: %v", err)
		}
		client := fusion.NewClient(creds)

		seed := seedSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		cfg := transactions.DefaultConfig()

		created, failed := 0, 0

		if seedKind == "" || seedKind == "invoices" {
			invoices := transactions.GenerateAPInvoices(cfg, seedCount, rng)
			invoices = append(invoices, transactions.GenerateARInvoices(cfg, seedCount, rng)...)
			for _, inv := range invoices {
				if err := client.CreateInvoice(ctx, inv); err != nil {
					fmt.Printf("FAIL invoice %s: %v\n", inv.InvoiceNumber, err)
					failed++
					continue
				}
				created++
			}
		}

		if seedKind == "" || seedKind == "journals" {
			for _, j := range transactions.GenerateJournals(cfg, seedCount, 4, rng) {
				if err := client.CreateJournal(ctx, j); err != nil {
					fmt.Printf("FAIL journal %s: %v\n", j.JournalName, err)
					failed++
					continue
				}
				created++
			}
		}

		if seedKind == "" || seedKind == "cash" {
			accounts, err := client.GetBankAccounts(ctx)
			if err != nil {
				fatal("error: %v", err)
			}
			for _, tx := range transactions.GenerateCashTransactions(cfg, accounts, seedCount, rng) {
				if err := client.CreateCashTransaction(ctx, tx); err != nil {
					fmt.Printf("FAIL cash transaction %s: %v\n", tx.Reference, err)
					failed++
					continue
				}
				created++
			}
		}

		fmt.Printf("\nComplete: %d created, %d failed\n", created, failed)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedEnvFile, "env", "", "Fusion credentials env file (default fusion.env)")
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 10, "Records per kind")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 0, "Random seed for reproducible data")
	seedCmd.Flags().StringVarP(&seedKind, "kind", "k", "", "Restrict to one kind: invoices, journals or cash")
	seedCmd.Flags().IntVar(&seedTimeout, "timeout", 600, "Operation timeout in seconds")
}
