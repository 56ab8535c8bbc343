package mining

import (
	"context"
	"encoding/hex"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"strainchain/block"
	"strainchain/errors"
	"strainchain/logx"
	"strainchain/monitoring"
)

const defaultYieldEvery = 4096

// SequentialMiner walks the nonce space one candidate at a time. It
// yields the processor every YieldEvery attempts so a foreground loop
// sharing the scheduler is never starved.
type SequentialMiner struct {
	MaxAttempts uint64
	StartNonce  uint64
	YieldEvery  uint64

	state atomic.Int32
}

func NewSequentialMiner(maxAttempts uint64) *SequentialMiner {
	return &SequentialMiner{
		MaxAttempts: maxAttempts,
		YieldEvery:  defaultYieldEvery,
	}
}

func (m *SequentialMiner) Name() string { return "sequential" }

func (m *SequentialMiner) State() State { return State(m.state.Load()) }

func (m *SequentialMiner) Mine(ctx context.Context, rec *block.Record, difficulty int) (*Result, error) {
	yieldEvery := m.YieldEvery
	if yieldEvery == 0 {
		yieldEvery = defaultYieldEvery
	}
	target := block.DifficultyTarget(difficulty)
	work := *rec
	start := time.Now()
	m.state.Store(int32(StateSearching))

	for attempts := uint64(0); attempts < m.MaxAttempts; attempts++ {
		work.Nonce = m.StartNonce + attempts
		sum := work.DigestBytes()
		if block.MeetsTarget(sum, target) {
			m.state.Store(int32(StateFound))
			res := &Result{
				Nonce:    work.Nonce,
				Digest:   hex.EncodeToString(sum[:]),
				Attempts: attempts + 1,
				Elapsed:  time.Since(start),
				Backend:  m.Name(),
			}
			monitoring.AddMiningAttempts(m.Name(), res.Attempts)
			monitoring.SetMiningHashRate(m.Name(), res.HashRate())
			logx.Debug("MINING", fmt.Sprintf("sequential search found nonce=%d attempts=%d rate=%.0f/s", res.Nonce, res.Attempts, res.HashRate()))
			return res, nil
		}
		if (attempts+1)%yieldEvery == 0 {
			select {
			case <-ctx.Done():
				m.state.Store(int32(StateExhausted))
				return nil, ctx.Err()
			default:
			}
			runtime.Gosched()
		}
	}

	m.state.Store(int32(StateExhausted))
	monitoring.AddMiningAttempts(m.Name(), m.MaxAttempts)
	return nil, errors.Wrap(errors.ErrMiningExhausted, "sequential search spent %d attempts at difficulty %d", m.MaxAttempts, difficulty)
}
