package breeding

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"strainchain/block"
	"strainchain/errors"
	"strainchain/events"
	"strainchain/exception"
	"strainchain/genotype"
	"strainchain/ledger"
	"strainchain/logx"
	"strainchain/mining"
	"strainchain/monitoring"
	"strainchain/utils"
)

// Breeding transaction states, in the order a healthy transaction
// passes through them. Any stage failure jumps to StateFailed and the
// ledger is left untouched.
type TxState string

const (
	StateRequested         TxState = "Requested"
	StateOffspringObtained TxState = "OffspringObtained"
	StateRecordAssembled   TxState = "RecordAssembled"
	StateMining            TxState = "Mining"
	StateMined             TxState = "Mined"
	StateAppended          TxState = "Appended"
	StateComplete          TxState = "Complete"
	StateFailed            TxState = "Failed"
)

// Transaction tracks one breeding request through the state machine.
type Transaction struct {
	ID         string
	StrainName string

	state  atomic.Value // TxState
	reason atomic.Value // string, set on failure

	Record *block.Record // set once Complete
}

func newTransaction(strainName string) *Transaction {
	tx := &Transaction{
		ID:         uuid.New().String(),
		StrainName: strainName,
	}
	tx.state.Store(StateRequested)
	return tx
}

func (t *Transaction) State() TxState {
	return t.state.Load().(TxState)
}

// FailureReason is empty unless State is Failed.
func (t *Transaction) FailureReason() string {
	if r, ok := t.reason.Load().(string); ok {
		return r
	}
	return ""
}

func (t *Transaction) advance(next TxState) {
	t.state.Store(next)
}

func (t *Transaction) fail(reason string) {
	t.reason.Store(reason)
	t.state.Store(StateFailed)
}

// Orchestrator coordinates one breeding event end to end: parent
// validation, offspring production by the trait engine, record
// assembly, proof-of-work, and the single append onto the ledger.
type Orchestrator struct {
	ledger *ledger.Ledger
	miner  *mining.Miner
	engine TraitEngine
	bus    *events.EventBus

	mu      sync.RWMutex
	genomes map[string]*genotype.Genotype // genome digest -> genotype
}

func NewOrchestrator(chain *ledger.Ledger, miner *mining.Miner, engine TraitEngine, bus *events.EventBus) *Orchestrator {
	return &Orchestrator{
		ledger:  chain,
		miner:   miner,
		engine:  engine,
		bus:     bus,
		genomes: make(map[string]*genotype.Genotype),
	}
}

// Genotype resolves a genome digest registered with this orchestrator.
func (o *Orchestrator) Genotype(digest string) (*genotype.Genotype, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	g, ok := o.genomes[digest]
	return g, ok
}

func (o *Orchestrator) registerGenome(digest string, g *genotype.Genotype) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.genomes[digest] = g
}

// RegisterGenotype makes a genotype addressable as a breeding parent
// and returns its genome digest. Used when rebuilding the registry
// after a ledger reload; the ledger itself never stores genotypes.
func (o *Orchestrator) RegisterGenotype(g *genotype.Genotype) string {
	digest := genotype.ComputeGenomeDigest(g)
	o.registerGenome(digest, g)
	return digest
}

// RegisterGenesisStrain introduces a strain without breeding: the
// record links to the current tail, carries no parents, and is sealed
// with the genesis sentinel instead of a mined digest.
func (o *Orchestrator) RegisterGenesisStrain(name string, traits map[string]float64, breeder string) (*block.Record, error) {
	if name == "" {
		return nil, errors.Wrap(errors.ErrInput, "strain name is empty")
	}

	g := genotype.New(name, traits)
	genomeDigest := genotype.ComputeGenomeDigest(g)

	rec := &block.Record{
		PacketID:            uuid.New().String(),
		OffspringDigest:     genomeDigest,
		Timestamp:           time.Now().Unix(),
		BreederSignature:    breeder,
		PreviousBlockDigest: o.ledger.TailDigest(),
		StrainName:          name,
		Generation:          0,
	}
	rec.SealGenesis()

	if err := o.ledger.AppendBlock(rec); err != nil {
		return nil, err
	}
	o.registerGenome(genomeDigest, g)
	logx.Info("BREEDING", fmt.Sprintf("registered genesis strain | name=%s genome=%s", name, utils.ShortenDigest(genomeDigest)))
	return rec, nil
}

// Breed runs the full breeding transaction synchronously. Either
// exactly one valid record is appended or the ledger is unchanged.
func (o *Orchestrator) Breed(ctx context.Context, parent1Digest, parent2Digest, strainName, breeder string) (*Transaction, error) {
	tx := newTransaction(strainName)

	// Parents are validated before anything is hashed.
	parent1, ok1 := o.Genotype(parent1Digest)
	parent2, ok2 := o.Genotype(parent2Digest)
	if parent1Digest == "" || parent2Digest == "" || !ok1 || !ok2 {
		return o.abort(tx, monitoring.BreedInvalidParent,
			errors.Wrap(errors.ErrInvalidParent, "unknown parent genome"))
	}
	parentRec1, err1 := o.ledger.Lookup(parent1Digest)
	parentRec2, err2 := o.ledger.Lookup(parent2Digest)
	if err1 != nil || err2 != nil {
		return o.abort(tx, monitoring.BreedInvalidParent,
			errors.Wrap(errors.ErrInvalidParent, "parent has no ledger record"))
	}

	seed := newMutationSeed()
	offspring, err := o.engine.Breed(parent1, parent2, seed)
	if err != nil {
		return o.abort(tx, monitoring.BreedTraitEngine, fmt.Errorf("trait engine rejected breeding: %w", err))
	}
	offspringDigest := genotype.ComputeGenomeDigest(offspring)
	tx.advance(StateOffspringObtained)

	generation := parentRec1.Generation
	if parentRec2.Generation > generation {
		generation = parentRec2.Generation
	}
	generation++

	rec := &block.Record{
		PacketID:            tx.ID,
		ParentDigest1:       parent1Digest,
		ParentDigest2:       parent2Digest,
		OffspringDigest:     offspringDigest,
		MutationSeed:        seed,
		Timestamp:           time.Now().Unix(),
		BreederSignature:    breeder,
		PreviousBlockDigest: o.ledger.TailDigest(),
		StrainName:          strainName,
		Generation:          generation,
	}
	tx.advance(StateRecordAssembled)

	tx.advance(StateMining)
	start := time.Now()
	res, err := o.miner.Mine(ctx, rec)
	if err != nil {
		return o.abort(tx, monitoring.BreedMiningExhausted, err)
	}
	monitoring.RecordMiningDuration(time.Since(start))
	rec.Nonce = res.Nonce
	rec.BlockDigest = res.Digest
	tx.advance(StateMined)

	if err := o.ledger.AppendBlock(rec); err != nil {
		return o.abort(tx, monitoring.BreedChainIntegrity, err)
	}
	tx.advance(StateAppended)

	o.registerGenome(offspringDigest, offspring)
	tx.Record = rec
	tx.advance(StateComplete)
	monitoring.IncreaseBreedCompleted()
	logx.Info("BREEDING", fmt.Sprintf("bred strain | name=%s gen=%d nonce=%d backend=%s attempts=%d",
		strainName, generation, res.Nonce, res.Backend, res.Attempts))
	return tx, nil
}

// BreedAsync runs Breed on its own goroutine and hands the finished
// transaction to done. Concurrent requests share no mining state; the
// ledger tail is the only contention point and AppendBlock serializes it.
func (o *Orchestrator) BreedAsync(ctx context.Context, parent1Digest, parent2Digest, strainName, breeder string, done func(*Transaction, error)) {
	exception.SafeGo("breed-"+strainName, func() {
		tx, err := o.Breed(ctx, parent1Digest, parent2Digest, strainName, breeder)
		if done != nil {
			done(tx, err)
		}
	})
}

func (o *Orchestrator) abort(tx *Transaction, reason monitoring.BreedRejectedReason, err error) (*Transaction, error) {
	tx.fail(err.Error())
	monitoring.RecordBreedRejected(reason)
	if o.bus != nil {
		o.bus.Publish(events.NewBreedingFailed(tx.StrainName, err.Error()))
	}
	logx.Warn("BREEDING", fmt.Sprintf("breeding failed | strain=%s state=%s err=%v", tx.StrainName, tx.State(), err))
	return tx, err
}

func newMutationSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Timestamp fallback keeps breeding alive if the entropy pool fails.
		return uint64(time.Now().UnixNano())
	}
	return binary.BigEndian.Uint64(buf[:])
}
