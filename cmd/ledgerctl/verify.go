package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Walk the ledger chain and report the first broken link, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openLedgerStore()
			if err != nil {
				return err
			}

			report, err := store.VerifyChain(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "entries=%d first_seq=%d last_seq=%d ok=%v\n",
				report.EntryCount, report.FirstSeq, report.LastSeq, report.OK)

			if !report.OK {
				fmt.Fprintf(cmd.OutOrStdout(), "broken at seq=%d: %s\n", report.BrokenAt, report.Reason)
				return errChainBroken
			}

			return nil
		},
	}
}
