package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"strainchain/logx"
)

var initDataDir string

const sampleGenesisYml = `config:
  chain_name: strainchain
  breeder: local-breeder
  store:
    type: bolt
    directory: data
  genesis_strains:
    - name: OG Kush
      traits:
        potency: 19.0
        yield: 450.0
        flowering_days: 63.0
    - name: Blue Dream
      traits:
        potency: 17.5
        yield: 520.0
        flowering_days: 67.0
`

const sampleMiningIni = `[mining]
difficulty      = 4
max_attempts    = 50000000
batch_size      = 65536
max_batches     = 1024
workers         = 0
enable_parallel = true
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter genesis.yml and mining.ini",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeStarterConfigs(); err != nil {
			logx.Error("CMD", "init failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDataDir, "dir", ".", "Directory to place the config folder in")
}

func writeStarterConfigs() error {
	configDir := filepath.Join(initDataDir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	genesisPath := filepath.Join(configDir, "genesis.yml")
	if _, err := os.Stat(genesisPath); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", genesisPath)
	}
	if err := os.WriteFile(genesisPath, []byte(sampleGenesisYml), 0o644); err != nil {
		return err
	}
	miningPath := filepath.Join(configDir, "mining.ini")
	if err := os.WriteFile(miningPath, []byte(sampleMiningIni), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s and %s\n", genesisPath, miningPath)
	return nil
}
