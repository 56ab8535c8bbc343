package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strainchain/logx"
	"strainchain/utils"
)

var lineageCmd = &cobra.Command{
	Use:   "lineage [strain]",
	Short: "Print the root-to-target ancestry path of a strain",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLineage(args[0]); err != nil {
			logx.Error("CMD", "lineage failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(lineageCmd)
}

func runLineage(ref string) error {
	env, err := openEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	genomeDigest, err := resolveStrain(env.chain, ref)
	if err != nil {
		return err
	}
	path, err := env.chain.Lineage(genomeDigest)
	if err != nil {
		return err
	}
	for i, rec := range path {
		fmt.Printf("%2d  F%-3d %-28s %s\n", i, rec.Generation, rec.StrainName, utils.ShortenDigest(rec.BlockDigest))
	}
	return nil
}
