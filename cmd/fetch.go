package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/balances"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/integrations/fusion"
)

var (
	fetchEnvFile string
	fetchTimeout int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch-balances",
	Short: "Fetch and resolve opening balances from the Fusion instance",
	Long: `Pulls the cash bank account listing and the opening balance report from
the Fusion instance, resolves one opening balance per account, and prints the
result as JSON. Useful to inspect what a --from-fusion generation would use.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(fetchTimeout)*time.Second)
		defer cancel()

		creds, err := fusion.LoadCredentials(fetchEnvFile)
		if err != nil {
			fatal("error: %v", err)
		}
		client := fusion.NewClient(creds)

		accounts, err := client.GetBankAccounts(ctx)
		if err != nil {
			fatal("error: %v", err)
		}
		direct, err := client.GetDirectBalances(ctx)
		if err != nil {
			fatal("error: %v", err)
		}
		report, err := fusion.NewBIPClient(creds).FetchOpeningBalances(ctx)
		if err != nil {
			log.Printf("WARN: opening balance report unavailable: %v", err)
			report = nil
		}

		ids := make([]string, 0, len(accounts))
		for _, a := range accounts {
			ids = append(ids, a.AccountID)
		}
		resolved := balances.NewResolver(resolutionConfig()).ResolveAll(ids, direct, report)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resolved); err != nil {
			fatal("error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchEnvFile, "env", "", "Fusion credentials env file (default fusion.env)")
	fetchCmd.Flags().IntVar(&fetchTimeout, "timeout", 120, "Operation timeout in seconds")
}
