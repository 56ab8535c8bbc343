package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strainchain/logx"
	"strainchain/utils"
)

var (
	breedParent1 string
	breedParent2 string
	breedName    string
	breedBreeder string
)

var breedCmd = &cobra.Command{
	Use:   "breed",
	Short: "Breed two strains and append the mined record to the ledger",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runBreed(); err != nil {
			logx.Error("CMD", "breed failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(breedCmd)
	breedCmd.Flags().StringVar(&breedParent1, "parent1", "", "First parent (strain name or digest)")
	breedCmd.Flags().StringVar(&breedParent2, "parent2", "", "Second parent (strain name or digest)")
	breedCmd.Flags().StringVar(&breedName, "name", "", "Name for the offspring strain")
	breedCmd.Flags().StringVar(&breedBreeder, "breeder", "", "Breeder identity (defaults to config breeder)")
	breedCmd.MarkFlagRequired("parent1")
	breedCmd.MarkFlagRequired("parent2")
	breedCmd.MarkFlagRequired("name")
}

func runBreed() error {
	env, err := openEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	parent1, err := resolveStrain(env.chain, breedParent1)
	if err != nil {
		return err
	}
	parent2, err := resolveStrain(env.chain, breedParent2)
	if err != nil {
		return err
	}
	breeder := breedBreeder
	if breeder == "" {
		breeder = env.cfg.Breeder
	}

	tx, err := env.orch.Breed(context.Background(), parent1, parent2, breedName, breeder)
	if err != nil {
		return fmt.Errorf("transaction %s failed in state %s: %w", tx.ID, tx.State(), err)
	}

	rec := tx.Record
	fmt.Printf("bred %q (gen %d)\n", rec.StrainName, rec.Generation)
	fmt.Printf("  block digest: %s\n", rec.BlockDigest)
	fmt.Printf("  genome:       %s\n", utils.ShortenDigest(rec.OffspringDigest))
	fmt.Printf("  nonce:        %d\n", rec.Nonce)
	return nil
}
