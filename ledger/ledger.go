package ledger

import (
	"encoding/hex"
	"fmt"
	"sync"

	"strainchain/block"
	"strainchain/errors"
	"strainchain/events"
	"strainchain/logx"
	"strainchain/monitoring"
	"strainchain/store"
	"strainchain/utils"
)

// Ledger is the append-only, hash-linked sequence of breeding records.
// Two indexes hang off the chain: block digests for chain operations and
// genome (offspring) digests for lineage walks. Records are immutable
// the instant they are appended and are never removed.
type Ledger struct {
	mu             sync.RWMutex
	records        []*block.Record
	byBlockDigest  map[string]*block.Record
	byGenomeDigest map[string]*block.Record
	difficulty     int

	store    *store.LedgerStore // optional persistence
	eventBus *events.EventBus   // optional notifications
}

// NewLedger builds an empty ledger. store and eventBus may be nil.
func NewLedger(difficulty int, ledgerStore *store.LedgerStore, eventBus *events.EventBus) *Ledger {
	return &Ledger{
		byBlockDigest:  make(map[string]*block.Record),
		byGenomeDigest: make(map[string]*block.Record),
		difficulty:     difficulty,
		store:          ledgerStore,
		eventBus:       eventBus,
	}
}

// LoadLedger rebuilds a ledger from its persisted flat record list and
// refuses to hand it back unless the full chain re-validates.
func LoadLedger(difficulty int, ledgerStore *store.LedgerStore, eventBus *events.EventBus) (*Ledger, error) {
	records, err := ledgerStore.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger records: %w", err)
	}

	l := NewLedger(difficulty, ledgerStore, eventBus)
	for _, rec := range records {
		l.records = append(l.records, rec)
		l.byBlockDigest[rec.BlockDigest] = rec
		l.byGenomeDigest[rec.OffspringDigest] = rec
	}
	if !l.ValidateChain() {
		return nil, errors.Wrap(errors.ErrChainIntegrity, "persisted chain of %d records failed validation", len(records))
	}
	logx.Info("LEDGER", fmt.Sprintf("loaded %d records, chain valid", len(records)))
	monitoring.SetChainHeight(len(records))
	return l, nil
}

// Difficulty returns the difficulty this ledger admits records under.
func (l *Ledger) Difficulty() int {
	return l.difficulty
}

// AppendBlock is the single compare-and-append gate onto the chain. The
// record must link to the current tail, reproduce its own digest, and
// (for non-genesis records) satisfy the difficulty predicate. A
// violating record is rejected outright; the ledger never repairs it.
func (l *Ledger) AppendBlock(rec *block.Record) error {
	if rec == nil {
		return errors.Wrap(errors.ErrInput, "record is nil")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tail := l.tailDigestLocked()
	if rec.PreviousBlockDigest != tail {
		return errors.Wrap(errors.ErrChainIntegrity,
			"previous digest %s does not match tail %s",
			utils.ShortenDigest(rec.PreviousBlockDigest), utils.ShortenDigest(tail))
	}

	if rec.IsGenesis() {
		if rec.BlockDigest != block.GenesisDigestPrefix+rec.CalculateDigest() {
			return errors.Wrap(errors.ErrChainIntegrity, "genesis record digest does not match its fields")
		}
	} else {
		if block.IsGenesisDigest(rec.BlockDigest) {
			return errors.Wrap(errors.ErrChainIntegrity, "bred record carries the genesis sentinel")
		}
		sum := rec.DigestBytes()
		if hex.EncodeToString(sum[:]) != rec.BlockDigest {
			return errors.Wrap(errors.ErrChainIntegrity, "stored digest does not match record fields")
		}
		if !block.MeetsDifficulty(sum, l.difficulty) {
			return errors.Wrap(errors.ErrChainIntegrity, "digest fails proof-of-work at difficulty %d", l.difficulty)
		}
	}

	if l.store != nil {
		if err := l.store.PutRecord(uint64(len(l.records)), rec); err != nil {
			return fmt.Errorf("failed to persist record: %w", err)
		}
	}

	l.records = append(l.records, rec)
	l.byBlockDigest[rec.BlockDigest] = rec
	l.byGenomeDigest[rec.OffspringDigest] = rec

	height := len(l.records)
	monitoring.SetChainHeight(height)
	logx.Info("LEDGER", fmt.Sprintf("appended record | strain=%s gen=%d digest=%s height=%d",
		rec.StrainName, rec.Generation, utils.ShortenDigest(rec.BlockDigest), height))

	if l.eventBus != nil {
		l.eventBus.Publish(events.NewRecordAppended(rec, height))
	}
	return nil
}

// TailDigest returns the digest of the last appended record, empty when
// the ledger is empty.
func (l *Ledger) TailDigest() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tailDigestLocked()
}

func (l *Ledger) tailDigestLocked() string {
	if len(l.records) == 0 {
		return ""
	}
	return l.records[len(l.records)-1].BlockDigest
}

// Lookup resolves a digest to its record; block digests and genome
// digests both answer. Absence is reported, never invented.
func (l *Ledger) Lookup(digest string) (*block.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lookupLocked(digest)
}

func (l *Ledger) lookupLocked(digest string) (*block.Record, error) {
	if rec, ok := l.byBlockDigest[digest]; ok {
		return rec, nil
	}
	if rec, ok := l.byGenomeDigest[digest]; ok {
		return rec, nil
	}
	return nil, errors.Wrap(errors.ErrRecordNotFound, "digest %s", utils.ShortenDigest(digest))
}

// Length returns the number of records in the chain.
func (l *Ledger) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Records returns a snapshot copy of the chain in order.
func (l *Ledger) Records() []*block.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*block.Record, len(l.records))
	copy(out, l.records)
	return out
}

// StrainsBySigner filters records by breeder signature, in chain order.
func (l *Ledger) StrainsBySigner(signature string) []*block.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []*block.Record
	for _, rec := range l.records {
		if rec.BreederSignature == signature {
			out = append(out, rec)
		}
	}
	return out
}

// ValidateChain re-verifies every adjacent-pair linkage and, for every
// non-genesis record, recomputes the digest and re-tests the difficulty
// predicate. Genesis records are checked for linkage and field
// integrity only; they are deliberately exempt from proof-of-work.
// Returns false on the first violation and never repairs anything.
func (l *Ledger) ValidateChain() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i, rec := range l.records {
		if i == 0 {
			if rec.PreviousBlockDigest != "" {
				logx.Warn("LEDGER", "first record links to a non-empty previous digest")
				return false
			}
		} else if rec.PreviousBlockDigest != l.records[i-1].BlockDigest {
			logx.Warn("LEDGER", fmt.Sprintf("linkage break at height %d", i))
			return false
		}

		if rec.IsGenesis() {
			if rec.BlockDigest != block.GenesisDigestPrefix+rec.CalculateDigest() {
				logx.Warn("LEDGER", fmt.Sprintf("genesis record tampered at height %d", i))
				return false
			}
			continue
		}

		sum := rec.DigestBytes()
		if hex.EncodeToString(sum[:]) != rec.BlockDigest {
			logx.Warn("LEDGER", fmt.Sprintf("digest mismatch at height %d", i))
			return false
		}
		if !block.MeetsDifficulty(sum, l.difficulty) {
			logx.Warn("LEDGER", fmt.Sprintf("proof-of-work failure at height %d", i))
			return false
		}
	}
	return true
}
