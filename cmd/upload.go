package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/generator/bai2"
	"github.com/mambamota/oracle-fusion-demo-transaction-generator/integrations/fusion"
)

var (
	uploadEnvFile string
	uploadNoCheck bool
	uploadTimeout int
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a BAI2 file to Fusion and submit the import job",
	Long: `Uploads an existing BAI2 statement file to UCM and submits the bank
statement processing job. The file is decoded first so malformed files or
control total mismatches are caught before they reach the instance; skip
that with --no-check.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(uploadTimeout)*time.Second)
		defer cancel()

		content, err := os.ReadFile(args[0])
		if err != nil {
			fatal("error: %v", err)
		}

		if !uploadNoCheck {
			file, err := bai2.Decode(string(content))
			if err != nil {
				fatal("error: %s does not decode: %v", args[0], err)
			}
			txCount := 0
			for _, stmt := range file.Statements {
				txCount += len(stmt.Transactions)
			}
			fmt.Printf("Validated %s: %d statements, %d transactions\n",
				args[0], len(file.Statements), txCount)
		}

		creds, err := fusion.LoadCredentials(uploadEnvFile)
		if err != nil {
			fatal("error: %v", err)
		}
		client := fusion.NewClient(creds)

		docID, err := client.UploadStatement(ctx, filepath.Base(args[0]), content)
		if err != nil {
			fatal("error: upload failed: %v", err)
		}
		fmt.Printf("Uploaded to UCM as document %s\n", docID)

		reqID, err := client.SubmitStatementProcessing(ctx, docID)
		if err != nil {
			fatal("error: job submission failed: %v", err)
		}
		fmt.Printf("Submitted bank statement processing job %s\n", reqID)
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVar(&uploadEnvFile, "env", "", "Fusion credentials env file (default fusion.env)")
	uploadCmd.Flags().BoolVar(&uploadNoCheck, "no-check", false, "Skip decoding the file before upload")
	uploadCmd.Flags().IntVar(&uploadTimeout, "timeout", 120, "Operation timeout in seconds")
}
