// Command ledgerctl is the operator CLI for the Ledger Store: chain
// verification, checkpointing, and rebuilding the disposable
// ledger_tx_index derived table.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operate on the Ledger Store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(verifyCmd(), checkpointCmd(), rebuildTxIndexCmd())

	return root
}
