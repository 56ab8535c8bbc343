package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"strainchain/logx"
	"strainchain/mining"
)

// LoadChainConfig reads and parses the genesis.yml file
func LoadChainConfig(path string) (*ChainConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chain config: %w", err)
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("failed to decode chain config: %w", err)
	}
	logx.Info("CONFIG", fmt.Sprintf("loaded chain config | chain=%s genesis_strains=%d store=%s",
		cfgFile.Config.ChainName, len(cfgFile.Config.GenesisStrains), cfgFile.Config.Store.Type))
	return &cfgFile.Config, nil
}

// MiningConfig is the proof-of-work configuration surface, read from
// the [mining] section of an .ini file
type MiningConfig struct {
	Difficulty     int    `ini:"difficulty"`
	MaxAttempts    uint64 `ini:"max_attempts"`
	BatchSize      uint64 `ini:"batch_size"`
	MaxBatches     uint64 `ini:"max_batches"`
	Workers        int    `ini:"workers"`
	EnableParallel bool   `ini:"enable_parallel"`
}

// LoadMiningConfig reads mining config from an .ini file
func LoadMiningConfig(path string) (*MiningConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	miningSection := cfg.Section("mining")
	miningCfg := DefaultMiningConfig()
	if err := miningSection.MapTo(miningCfg); err != nil {
		return nil, err
	}
	if err := miningCfg.Validate(); err != nil {
		return nil, err
	}
	return miningCfg, nil
}

// Validate rejects ceilings and shapes the search cannot run with
func (c *MiningConfig) Validate() error {
	if c.Difficulty < 0 || c.Difficulty > 64 {
		return fmt.Errorf("difficulty %d out of range [0,64]", c.Difficulty)
	}
	if c.MaxAttempts == 0 {
		return fmt.Errorf("max_attempts must be positive")
	}
	if c.MaxBatches == 0 {
		return fmt.Errorf("max_batches must be positive")
	}
	return nil
}

// ToMinerConfig converts the file form into the mining package's config
func (c *MiningConfig) ToMinerConfig() mining.Config {
	return mining.Config{
		Difficulty:     c.Difficulty,
		MaxAttempts:    c.MaxAttempts,
		MaxBatches:     c.MaxBatches,
		BatchSize:      c.BatchSize,
		Workers:        c.Workers,
		EnableParallel: c.EnableParallel,
	}
}
