package config

import "strainchain/store"

// GenesisStrain seeds the ledger with a strain introduced without
// breeding
type GenesisStrain struct {
	Name   string             `yaml:"name"`
	Traits map[string]float64 `yaml:"traits"`
}

// ChainConfig holds the configuration from genesis.yml
type ChainConfig struct {
	ChainName      string            `yaml:"chain_name"`
	Breeder        string            `yaml:"breeder"`
	GenesisStrains []GenesisStrain   `yaml:"genesis_strains"`
	Store          store.StoreConfig `yaml:"store"`
}

// ConfigFile wraps the top-level yaml document
type ConfigFile struct {
	Config ChainConfig `yaml:"config"`
}
