package mining

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime"
	"time"

	"strainchain/block"
	"strainchain/errors"
	"strainchain/logx"
	"strainchain/monitoring"
)

// Config is the configuration surface of the proof-of-work search.
type Config struct {
	Difficulty     int
	MaxAttempts    uint64 // sequential ceiling
	MaxBatches     uint64 // batched ceiling
	BatchSize      uint64 // nonces per dispatch
	Workers        int    // dispatch width, 0 = one per CPU
	EnableParallel bool
}

// Miner selects between the batched and sequential backends. The
// batched backend is probed once at construction; a probe failure
// pins the session to sequential. A runtime failure during a batched
// search triggers exactly one sequential fallback for that call.
type Miner struct {
	cfg      Config
	parallel Backend
}

func NewMiner(cfg Config) *Miner {
	m := &Miner{cfg: cfg}
	parallel, err := probeBatchMiner(cfg)
	if err != nil {
		logx.Warn("MINING", fmt.Sprintf("parallel backend unavailable, using sequential for this session: %v", err))
		return m
	}
	m.parallel = parallel
	logx.Info("MINING", fmt.Sprintf("batched backend ready | batch_size=%d workers=%d", cfg.BatchSize, parallel.Workers))
	return m
}

// ParallelAvailable reports whether the batched backend survived the probe.
func (m *Miner) ParallelAvailable() bool {
	return m.parallel != nil
}

// probeBatchMiner verifies the batched backend can actually run before
// the session trusts it: the dispatch must be enabled, have parallel
// capacity, and solve a trivial search end to end.
func probeBatchMiner(cfg Config) (*BatchMiner, error) {
	if !cfg.EnableParallel {
		return nil, errors.Wrap(errors.ErrBackendUnavailable, "parallel backend disabled by config")
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers < 2 {
		return nil, errors.Wrap(errors.ErrBackendUnavailable, "no parallel capacity (workers=%d)", workers)
	}

	miner := NewBatchMiner(cfg.BatchSize, cfg.MaxBatches, workers)

	// Smoke dispatch at difficulty 0: any nonce wins, so a healthy
	// backend returns on the first round.
	probe := &block.Record{StrainName: "probe", Timestamp: time.Now().Unix()}
	probeMiner := NewBatchMiner(256, 1, workers)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := probeMiner.Mine(ctx, probe, 0); err != nil {
		return nil, errors.Wrap(errors.ErrBackendUnavailable, "smoke dispatch failed: %v", err)
	}
	return miner, nil
}

// Mine runs the proof-of-work search under the configured difficulty
// and ceilings. The caller's record is never mutated.
func (m *Miner) Mine(ctx context.Context, rec *block.Record) (*Result, error) {
	if m.parallel == nil {
		seq := NewSequentialMiner(m.cfg.MaxAttempts)
		return seq.Mine(ctx, rec, m.cfg.Difficulty)
	}

	res, err := m.parallel.Mine(ctx, rec, m.cfg.Difficulty)
	if err == nil {
		return res, nil
	}
	if stderrors.Is(err, errors.ErrMiningExhausted) {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// One fallback per call. Resume from the first nonce of the batch
	// that failed so no candidate is skipped.
	var dispatchErr *DispatchError
	resume := uint64(0)
	if stderrors.As(err, &dispatchErr) {
		resume = dispatchErr.ResumeNonce
	}
	monitoring.IncreaseBackendFallback()
	logx.Warn("MINING", fmt.Sprintf("batched backend failed mid-search, falling back to sequential from nonce %d: %v", resume, err))

	seq := NewSequentialMiner(m.cfg.MaxAttempts)
	seq.StartNonce = resume
	return seq.Mine(ctx, rec, m.cfg.Difficulty)
}
