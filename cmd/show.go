package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strainchain/breeding"
	"strainchain/jsonx"
	"strainchain/logx"
	"strainchain/utils"
)

var showVerify string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the chain, or one strain's verification panel",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runShow(); err != nil {
			logx.Error("CMD", "show failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showVerify, "verify", "", "Strain name or digest to build verification info for")
}

func runShow() error {
	env, err := openEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	if showVerify != "" {
		genomeDigest, err := resolveStrain(env.chain, showVerify)
		if err != nil {
			return err
		}
		info, err := breeding.BuildVerificationInfo(env.chain, genomeDigest)
		if err != nil {
			return err
		}
		out, err := jsonx.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	for i, rec := range env.chain.Records() {
		marker := fmt.Sprintf("F%d", rec.Generation)
		fmt.Printf("%4d  %-4s %-28s %-18s %s\n",
			i, marker, rec.StrainName, rec.BreederSignature, utils.ShortenDigest(rec.BlockDigest))
	}
	return nil
}
