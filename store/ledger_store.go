package store

import (
	"encoding/binary"
	"fmt"
	"sync"

	"strainchain/block"
	"strainchain/db"
	"strainchain/jsonx"
	"strainchain/logx"
)

const (
	// Key prefixes
	prefixRecord = "rec:"
	prefixMeta   = "meta:"

	// Metadata keys
	keyLength = "length"

	heightKeySize = 8
)

// LedgerStore persists the ledger's record sequence as a flat ordered
// list: one entry per chain height, big-endian keyed so the provider's
// key order is the chain order.
type LedgerStore struct {
	mu       sync.RWMutex
	provider db.DatabaseProvider
}

func NewLedgerStore(provider db.DatabaseProvider) (*LedgerStore, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &LedgerStore{provider: provider}, nil
}

func heightToKey(height uint64) []byte {
	heightBytes := make([]byte, heightKeySize)
	binary.BigEndian.PutUint64(heightBytes, height)
	return append([]byte(prefixRecord), heightBytes...)
}

// PutRecord stores rec at the given chain height and advances the
// persisted length when the append extends the chain.
func (s *LedgerStore) PutRecord(height uint64, rec *block.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := jsonx.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := s.provider.Put(heightToKey(height), raw); err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}

	length, err := s.lengthLocked()
	if err != nil {
		return err
	}
	if height+1 > length {
		lengthBytes := make([]byte, heightKeySize)
		binary.BigEndian.PutUint64(lengthBytes, height+1)
		if err := s.provider.Put([]byte(prefixMeta+keyLength), lengthBytes); err != nil {
			return fmt.Errorf("failed to store length: %w", err)
		}
	}
	return nil
}

// Record loads the record at a chain height, nil when absent.
func (s *LedgerStore) Record(height uint64) (*block.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := s.provider.Get(heightToKey(height))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var rec block.Record
	if err := jsonx.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record at height %d: %w", height, err)
	}
	return &rec, nil
}

// Length returns the persisted chain length.
func (s *LedgerStore) Length() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lengthLocked()
}

func (s *LedgerStore) lengthLocked() (uint64, error) {
	raw, err := s.provider.Get([]byte(prefixMeta + keyLength))
	if err != nil {
		return 0, err
	}
	if len(raw) != heightKeySize {
		return 0, nil
	}
	return binary.BigEndian.Uint64(raw), nil
}

// LoadAll returns the full record sequence in chain order. Callers must
// run ValidateChain over the result before trusting it for appends.
func (s *LedgerStore) LoadAll() ([]*block.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*block.Record
	err := s.provider.IteratePrefix([]byte(prefixRecord), func(key, value []byte) bool {
		var rec block.Record
		if err := jsonx.Unmarshal(value, &rec); err != nil {
			logx.Error("STORE", fmt.Sprintf("skipping undecodable record | key=%x err=%v", key, err))
			return true
		}
		records = append(records, &rec)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}
	return records, nil
}

// Close closes the underlying provider.
func (s *LedgerStore) Close() error {
	return s.provider.Close()
}
