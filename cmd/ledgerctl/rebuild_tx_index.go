package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func rebuildTxIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-tx-index",
		Short: "Truncate and replay the disposable ledger_tx_index derived table",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLedgerStore()
			if err != nil {
				return err
			}

			report, err := store.RebuildTxIndex(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed=%d last_seq=%d\n", report.IndexedCount, report.LastSeq)

			lastSeq, err := store.LastSeq(cmd.Context())
			if err != nil {
				return err
			}

			chain, err := store.VerifyChain(cmd.Context())
			if err != nil {
				return err
			}

			if report.LastSeq != lastSeq || !chain.OK {
				return fmt.Errorf("tx index not aligned: index last_seq=%d, ledger last_seq=%d, chain ok=%t", report.LastSeq, lastSeq, chain.OK)
			}

			return nil
		},
	}
}
