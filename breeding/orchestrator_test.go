package breeding

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strainchain/errors"
	"strainchain/events"
	"strainchain/genotype"
	"strainchain/ledger"
	"strainchain/mining"
)

const testDifficulty = 2

// stubEngine is a deterministic trait engine double: offspring traits
// are parent averages keyed by the mutation seed.
type stubEngine struct {
	fail bool
}

func (e stubEngine) Breed(parent1, parent2 *genotype.Genotype, seed uint64) (*genotype.Genotype, error) {
	if e.fail {
		return nil, fmt.Errorf("trait engine offline")
	}
	traits := map[string]float64{"seed_mark": float64(seed % 4096)}
	for k, v := range parent1.Traits {
		traits[k] = (v + parent2.Traits[k]) / 2
	}
	return genotype.New(parent1.StrainName+" x "+parent2.StrainName, traits), nil
}

type fixture struct {
	chain *ledger.Ledger
	orch  *Orchestrator
	bus   *events.EventBus

	ogDigest string
	bdDigest string
}

func newFixture(t *testing.T, engine TraitEngine, minerCfg mining.Config) *fixture {
	t.Helper()
	bus := events.NewEventBus()
	chain := ledger.NewLedger(testDifficulty, nil, bus)
	orch := NewOrchestrator(chain, mining.NewMiner(minerCfg), engine, bus)

	og, err := orch.RegisterGenesisStrain("OG Kush", map[string]float64{"potency": 19}, "landrace")
	require.NoError(t, err)
	bd, err := orch.RegisterGenesisStrain("Blue Dream", map[string]float64{"potency": 17.5}, "landrace")
	require.NoError(t, err)

	return &fixture{
		chain:    chain,
		orch:     orch,
		bus:      bus,
		ogDigest: og.OffspringDigest,
		bdDigest: bd.OffspringDigest,
	}
}

func quickMinerCfg() mining.Config {
	return mining.Config{
		Difficulty:     testDifficulty,
		MaxAttempts:    1 << 24,
		EnableParallel: false,
	}
}

func TestRegisterGenesisStrain(t *testing.T) {
	f := newFixture(t, stubEngine{}, quickMinerCfg())

	assert.Equal(t, 2, f.chain.Length())
	rec, err := f.chain.Lookup(f.ogDigest)
	require.NoError(t, err)
	assert.True(t, rec.IsGenesis())
	assert.Equal(t, uint32(0), rec.Generation)

	_, ok := f.orch.Genotype(f.ogDigest)
	assert.True(t, ok, "genesis genotype must be registered for breeding")

	_, err = f.orch.RegisterGenesisStrain("", nil, "landrace")
	assert.True(t, stderrors.Is(err, errors.ErrInput))
}

func TestBreedHappyPath(t *testing.T) {
	f := newFixture(t, stubEngine{}, quickMinerCfg())
	tailBefore := f.chain.TailDigest()

	tx, err := f.orch.Breed(context.Background(), f.ogDigest, f.bdDigest, "Kush Dream", "breeder-1")
	require.NoError(t, err)
	require.NotNil(t, tx.Record)
	assert.Equal(t, StateComplete, tx.State())
	assert.Empty(t, tx.FailureReason())

	rec := tx.Record
	assert.Equal(t, tx.ID, rec.PacketID)
	assert.Equal(t, uint32(1), rec.Generation)
	assert.Equal(t, f.ogDigest, rec.ParentDigest1)
	assert.Equal(t, f.bdDigest, rec.ParentDigest2)
	assert.Equal(t, tailBefore, rec.PreviousBlockDigest)
	assert.True(t, rec.ValidateProofOfWork(testDifficulty))
	assert.Equal(t, rec.CalculateDigest(), rec.BlockDigest)

	assert.Equal(t, 3, f.chain.Length())
	assert.True(t, f.chain.ValidateChain())

	path, err := f.chain.Lineage(rec.OffspringDigest)
	require.NoError(t, err)
	assert.Len(t, path, 3)

	_, ok := f.orch.Genotype(rec.OffspringDigest)
	assert.True(t, ok, "offspring genotype becomes breedable")
}

func TestBreedRejectsUnknownParent(t *testing.T) {
	f := newFixture(t, stubEngine{}, quickMinerCfg())

	tx, err := f.orch.Breed(context.Background(), "no-such-genome", f.bdDigest, "X", "b")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidParent))
	assert.Equal(t, StateFailed, tx.State())
	assert.NotEmpty(t, tx.FailureReason())
	assert.Equal(t, 2, f.chain.Length(), "failed breeding must not touch the ledger")
}

func TestBreedRejectsEmptyParent(t *testing.T) {
	f := newFixture(t, stubEngine{}, quickMinerCfg())

	_, err := f.orch.Breed(context.Background(), "", f.bdDigest, "X", "b")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidParent))
	assert.Equal(t, 2, f.chain.Length())
}

func TestBreedTraitEngineFailureLeavesLedgerUntouched(t *testing.T) {
	f := newFixture(t, stubEngine{fail: true}, quickMinerCfg())

	tx, err := f.orch.Breed(context.Background(), f.ogDigest, f.bdDigest, "X", "b")
	require.Error(t, err)
	assert.Equal(t, StateFailed, tx.State())
	assert.Equal(t, 2, f.chain.Length())
	assert.True(t, f.chain.ValidateChain())
}

func TestBreedMiningExhaustedLeavesLedgerUntouched(t *testing.T) {
	// An impossible difficulty with a tiny ceiling: the transaction
	// must fail cleanly with nothing appended.
	bus := events.NewEventBus()
	chain := ledger.NewLedger(64, nil, bus)
	orch := NewOrchestrator(chain, mining.NewMiner(mining.Config{
		Difficulty:  64,
		MaxAttempts: 64,
	}), stubEngine{}, bus)

	og, err := orch.RegisterGenesisStrain("OG Kush", map[string]float64{"potency": 19}, "l")
	require.NoError(t, err)
	bd, err := orch.RegisterGenesisStrain("Blue Dream", map[string]float64{"potency": 17.5}, "l")
	require.NoError(t, err)

	tx, err := orch.Breed(context.Background(), og.OffspringDigest, bd.OffspringDigest, "X", "b")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrMiningExhausted))
	assert.Equal(t, StateFailed, tx.State())
	assert.Equal(t, 2, chain.Length())
}

func TestBreedAsync(t *testing.T) {
	f := newFixture(t, stubEngine{}, quickMinerCfg())

	done := make(chan *Transaction, 1)
	f.orch.BreedAsync(context.Background(), f.ogDigest, f.bdDigest, "Async Kush", "b", func(tx *Transaction, err error) {
		require.NoError(t, err)
		done <- tx
	})

	tx := <-done
	assert.Equal(t, StateComplete, tx.State())
	assert.Equal(t, 3, f.chain.Length())
}

func TestBreedPublishesFailureEvents(t *testing.T) {
	f := newFixture(t, stubEngine{}, quickMinerCfg())
	_, ch := f.bus.Subscribe()

	_, err := f.orch.Breed(context.Background(), "bogus", f.bdDigest, "Doomed", "b")
	require.Error(t, err)

	ev := <-ch
	require.Equal(t, events.EventBreedingFailed, ev.Type())
	failed := ev.(*events.BreedingFailed)
	assert.Equal(t, "Doomed", failed.StrainName())
	assert.NotEmpty(t, failed.Reason())
}
