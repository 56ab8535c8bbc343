package mining

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"

	"strainchain/block"
	"strainchain/errors"
	"strainchain/logx"
	"strainchain/monitoring"
)

const (
	// DefaultBatchSize matches one dispatch of a 256x256 compute grid.
	DefaultBatchSize uint64 = 65536
	ctxCheckStride   uint64 = 1024
)

// BatchMiner explores a fixed-size window of candidate nonces per round,
// split across a worker set in one data-parallel dispatch. Rounds are
// issued sequentially: dispatch, read back a single winning nonce,
// advance to the next window on a miss.
type BatchMiner struct {
	BatchSize  uint64
	MaxBatches uint64
	Workers    int

	state atomic.Int32
}

func NewBatchMiner(batchSize, maxBatches uint64, workers int) *BatchMiner {
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchMiner{
		BatchSize:  batchSize,
		MaxBatches: maxBatches,
		Workers:    workers,
	}
}

func (m *BatchMiner) Name() string { return "batched" }

func (m *BatchMiner) State() State { return State(m.state.Load()) }

func (m *BatchMiner) Mine(ctx context.Context, rec *block.Record, difficulty int) (*Result, error) {
	if m.Workers <= 0 {
		return nil, errors.Wrap(errors.ErrBackendUnavailable, "batched backend has no workers")
	}
	target := block.DifficultyTarget(difficulty)
	start := time.Now()
	m.state.Store(int32(StateSearching))

	var attempts uint64
	for round := uint64(0); round < m.MaxBatches; round++ {
		base := round * m.BatchSize
		winner, found, scanned, err := m.dispatch(ctx, rec, base, target)
		attempts += scanned
		if err != nil {
			m.state.Store(int32(StateExhausted))
			monitoring.AddMiningAttempts(m.Name(), attempts)
			return nil, &DispatchError{ResumeNonce: base, Err: err}
		}
		if found {
			m.state.Store(int32(StateFound))
			work := *rec
			work.Nonce = winner
			sum := work.DigestBytes()
			res := &Result{
				Nonce:    winner,
				Digest:   hex.EncodeToString(sum[:]),
				Attempts: attempts,
				Elapsed:  time.Since(start),
				Backend:  m.Name(),
			}
			monitoring.AddMiningAttempts(m.Name(), attempts)
			monitoring.SetMiningHashRate(m.Name(), res.HashRate())
			logx.Debug("MINING", fmt.Sprintf("batched search found nonce=%d round=%d rate=%.0f/s", winner, round, res.HashRate()))
			return res, nil
		}
	}

	m.state.Store(int32(StateExhausted))
	monitoring.AddMiningAttempts(m.Name(), attempts)
	return nil, errors.Wrap(errors.ErrMiningExhausted, "batched search spent %d rounds of %d at difficulty %d", m.MaxBatches, m.BatchSize, difficulty)
}

// dispatch scans [base, base+BatchSize) across the worker set and reads
// back the first winning nonce. A worker panic is converted into an
// error so the caller can fall back instead of crashing.
func (m *BatchMiner) dispatch(ctx context.Context, rec *block.Record, base uint64, target *uint256.Int) (uint64, bool, uint64, error) {
	g, ctx := errgroup.WithContext(ctx)
	var found atomic.Bool
	var winner atomic.Uint64
	var scanned atomic.Uint64

	stride := m.BatchSize / uint64(m.Workers)
	if m.BatchSize%uint64(m.Workers) != 0 {
		stride++
	}

	for w := 0; w < m.Workers; w++ {
		lo := base + uint64(w)*stride
		hi := lo + stride
		if hi > base+m.BatchSize {
			hi = base + m.BatchSize
		}
		if lo >= hi {
			continue
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("worker panic: %v", r)
				}
			}()
			work := *rec
			for n := lo; n < hi; n++ {
				if found.Load() {
					return nil
				}
				if (n-lo)%ctxCheckStride == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}
				work.Nonce = n
				scanned.Add(1)
				if sum := work.DigestBytes(); block.MeetsTarget(sum, target) {
					if found.CompareAndSwap(false, true) {
						winner.Store(n)
					}
					return nil
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, false, scanned.Load(), err
	}
	return winner.Load(), found.Load(), scanned.Load(), nil
}
