package store

import (
	"fmt"
	"os"
	"path/filepath"

	"strainchain/db"
)

// StoreType represents the type of ledger store backend
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB provider
	LevelDBStoreType StoreType = "leveldb"
	// BoltStoreType uses the bbolt provider
	BoltStoreType StoreType = "bolt"
)

// StoreConfig holds configuration for creating ledger store instances
type StoreConfig struct {
	// Type specifies which provider to use
	Type StoreType `json:"type" yaml:"type"`

	// Directory is the database directory path
	Directory string `json:"directory" yaml:"directory"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	if sc.Type == "" {
		return fmt.Errorf("store type cannot be empty")
	}
	if sc.Directory == "" {
		return fmt.Errorf("directory cannot be empty")
	}
	switch sc.Type {
	case LevelDBStoreType, BoltStoreType:
		return nil
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// CreateStore builds a LedgerStore on the configured provider.
func CreateStore(config *StoreConfig) (*LedgerStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var provider db.DatabaseProvider
	var err error
	switch config.Type {
	case LevelDBStoreType:
		provider, err = db.NewLevelDBProvider(filepath.Clean(config.Directory))
	case BoltStoreType:
		dir := filepath.Clean(config.Directory)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		provider, err = db.NewBoltProvider(filepath.Join(dir, "ledger.db"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return NewLedgerStore(provider)
}
