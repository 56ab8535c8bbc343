package config

import "strainchain/mining"

const (
	// DefaultDifficulty is the leading-zero-nibble count bred records
	// must clear. Expected search cost is 16^4 attempts.
	DefaultDifficulty = 4

	DefaultMaxAttempts uint64 = 50_000_000
	DefaultMaxBatches  uint64 = 1024
	DefaultBatchSize          = mining.DefaultBatchSize
)

// DefaultMiningConfig is the configuration used when no mining.ini is
// present
func DefaultMiningConfig() *MiningConfig {
	return &MiningConfig{
		Difficulty:     DefaultDifficulty,
		MaxAttempts:    DefaultMaxAttempts,
		BatchSize:      DefaultBatchSize,
		MaxBatches:     DefaultMaxBatches,
		Workers:        0, // one per CPU
		EnableParallel: true,
	}
}
