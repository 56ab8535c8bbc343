package mining

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strainchain/errors"
)

func TestBatchMinerFindsValidNonce(t *testing.T) {
	miner := NewBatchMiner(4096, 1024, 4)
	rec := testRecord()

	res, err := miner.Mine(context.Background(), rec, 2)
	require.NoError(t, err)

	assert.Equal(t, StateFound, miner.State())
	assert.Equal(t, "batched", res.Backend)
	assert.Equal(t, uint64(0), rec.Nonce)

	rec.Nonce = res.Nonce
	assert.True(t, rec.ValidateProofOfWork(2))
	assert.Equal(t, res.Digest, rec.CalculateDigest())
}

// Both backends must satisfy the identical predicate on identical
// inputs; the nonces they pick are allowed to differ.
func TestBackendsAgreeOnPredicate(t *testing.T) {
	rec := testRecord()
	difficulty := 2

	seqRes, err := NewSequentialMiner(1 << 20).Mine(context.Background(), rec, difficulty)
	require.NoError(t, err)

	batchRes, err := NewBatchMiner(4096, 1024, 4).Mine(context.Background(), rec, difficulty)
	require.NoError(t, err)

	seqRec, batchRec := *rec, *rec
	seqRec.Nonce = seqRes.Nonce
	batchRec.Nonce = batchRes.Nonce
	assert.True(t, seqRec.ValidateProofOfWork(difficulty))
	assert.True(t, batchRec.ValidateProofOfWork(difficulty))
}

func TestBatchMinerExhaustsCeiling(t *testing.T) {
	miner := NewBatchMiner(64, 2, 2)
	rec := testRecord()

	res, err := miner.Mine(context.Background(), rec, 64)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, stderrors.Is(err, errors.ErrMiningExhausted))
	assert.Equal(t, StateExhausted, miner.State())
}

func TestBatchMinerRejectsZeroWorkers(t *testing.T) {
	miner := NewBatchMiner(64, 2, 0)
	_, err := miner.Mine(context.Background(), testRecord(), 1)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrBackendUnavailable))
}

func TestBatchMinerHonorsContext(t *testing.T) {
	miner := NewBatchMiner(1<<16, 1<<20, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := miner.Mine(ctx, testRecord(), 64)
	require.Error(t, err)

	var dispatchErr *DispatchError
	assert.True(t, stderrors.As(err, &dispatchErr), "cancellation surfaces as a dispatch failure")
}
