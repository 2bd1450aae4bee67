// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"fmt"
	"math/big"
	"sync/atomic"
	"time"
)

// DefaultMinVoteStake is 10^23 base units.
const DefaultMinVoteStake = "100000000000000000000000"

// CallContext is what the runtime knows about the caller of one operation.
type CallContext interface {
	Caller() string
	Now() (timestamp, block uint64)
	AttachedStake() *big.Int
}

// Clock stamps lifecycle transitions.
type Clock interface {
	Now() (timestamp, block uint64)
}

// SystemClock uses wall time in nanoseconds and a block index that grows by
// one on every stamp.
type SystemClock struct {
	block atomic.Uint64
}

// NewSystemClock returns a clock whose next block index is height+1.
func NewSystemClock(height uint64) *SystemClock {
	c := &SystemClock{}
	c.block.Store(height)
	return c
}

func (c *SystemClock) Now() (uint64, uint64) {
	return uint64(time.Now().UnixNano()), c.block.Add(1)
}

// Call is the CallContext built by the transport for one request.
type Call struct {
	Account string
	Deposit *big.Int
	Clock   Clock
}

func (c Call) Caller() string {
	return c.Account
}

func (c Call) Now() (uint64, uint64) {
	return c.Clock.Now()
}

func (c Call) AttachedStake() *big.Int {
	if c.Deposit == nil {
		return new(big.Int)
	}
	return c.Deposit
}

// ParseStake parses a non-negative decimal amount of base units.
// An empty string is zero.
func ParseStake(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid stake amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("stake amount %q is negative", s)
	}
	return v, nil
}
