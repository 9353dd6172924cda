package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Embedded default configuration (from .fusion-demo.yaml)
const defaultConfigYAML = `
generation:
  count: 10
  min_amount: 100
  max_amount: 5000
balances:
  default_opening: 50000
  balance_code: OPBD
exports:
  count: 25
  journal_lines: 4
accounts:
  - account_id: "DEMO-001"
    account_number: "10271980"
    account_name: "Operating Account"
    currency: USD
  - account_id: "DEMO-002"
    account_number: "20553311"
    account_name: "Payroll Account"
    currency: USD
  - account_id: "DEMO-003"
    account_number: "30997645"
    account_name: "Treasury Account"
    currency: USD`

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "fusion-demo-gen",
		Short: "Generate demo financial data for Oracle Fusion instances",
		Long: `fusion-demo-gen produces balanced demo bank statements, payables and
receivables invoices, journals and cash transactions for an Oracle Fusion
Financials demo environment. Statements encode as BAI2 files ready for the
bank statement import job.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	// Add config flag to root command
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.fusion-demo.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	if !verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetFlags(log.Ltime | log.Lmsgprefix)
		log.SetPrefix("INFO: ")
	}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory and home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Add config paths in order of priority
		viper.AddConfigPath(".")  // First check current directory
		viper.AddConfigPath(home) // Then check home directory
		viper.SetConfigName(".fusion-demo")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found, use embedded default configuration
			if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
				fmt.Printf("Error loading embedded configuration: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
