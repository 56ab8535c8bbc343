package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"strainchain/logx"
)

var rootCmd = &cobra.Command{
	Use:   "strainchain",
	Short: "Proof-of-work breeding ledger CLI",
	Long:  "Command line interface for managing a strain breeding lineage ledger.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
