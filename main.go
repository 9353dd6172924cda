package main

import (
	"fmt"
	"os"

	"github.com/mambamota/oracle-fusion-demo-transaction-generator/cmd"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("fusion-demo-gen version %s\n", version)
		os.Exit(0)
	}

	cmd.Execute()
}
