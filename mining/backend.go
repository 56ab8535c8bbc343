package mining

import (
	"context"
	"fmt"
	"time"

	"strainchain/block"
	"strainchain/errors"
)

// Search states. A backend moves Idle -> Searching and settles on Found
// or Exhausted; the caller can poll State() while the search runs on a
// background goroutine.
type State int32

const (
	StateIdle State = iota
	StateSearching
	StateFound
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateFound:
		return "found"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Result is the readback of a successful proof-of-work search.
type Result struct {
	Nonce    uint64
	Digest   string // hex digest of the record at the winning nonce
	Attempts uint64
	Elapsed  time.Duration
	Backend  string
}

// HashRate reports attempts per second for diagnostics.
func (r *Result) HashRate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Attempts) / r.Elapsed.Seconds()
}

// Backend finds a nonce such that the record's digest meets the
// difficulty predicate. Implementations never mutate the caller's
// record; the winning nonce travels back in the Result.
type Backend interface {
	Name() string
	State() State
	Mine(ctx context.Context, rec *block.Record, difficulty int) (*Result, error)
}

// DispatchError reports a parallel dispatch that failed mid-search.
// ResumeNonce is the first nonce of the round that was not fully
// scanned, so a fallback can pick up without skipping candidates.
type DispatchError struct {
	ResumeNonce uint64
	Err         error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed at nonce %d: %v", e.ResumeNonce, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return errors.ErrBackendRuntime
}
