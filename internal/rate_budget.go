// Rate budget: remaining-hits counters and the delta table that paces the
// scheduler's rate-paced queue against them.
//
// The budget tracks two counters observed from the remote API,
// auth_remaining and ip_remaining, both integers in 0..100+. RateDelta()
// derives a wait, in seconds, from auth_remaining via an 11-entry
// Fibonacci-like table whose last entry is >= 1800s (30 minutes): the table
// is built by iterating a, b = b, a+b from (0, 1) until at least 11 values
// have been produced and b >= 1800, then keeping the trailing 11. The
// lookup index is (100 - clamp(auth_remaining, 0, 100)) / 10, so the delta
// grows sharply as the budget nears zero.

package tweetabs_internal

import (
	"fmt"
	"sync"
	"time"
)

const (
	RATE_BUDGET_TABLE_LEN          = 11
	RATE_BUDGET_TABLE_FLOOR_SEC    = 30 * 60
	RATE_BUDGET_AUTH_LIMIT_DEFAULT = 50
	RATE_BUDGET_IP_LIMIT_DEFAULT   = 50
)

// buildRateDeltaTable computes the 11-entry Fibonacci-derived delta table,
// in seconds, per the rule above.
func buildRateDeltaTable() [RATE_BUDGET_TABLE_LEN]int {
	deltas := make([]int, 0, RATE_BUDGET_TABLE_LEN+8)
	a, b := 0, 1
	for len(deltas) < RATE_BUDGET_TABLE_LEN || b < RATE_BUDGET_TABLE_FLOOR_SEC {
		a, b = b, a+b
		deltas = append(deltas, b)
	}
	var table [RATE_BUDGET_TABLE_LEN]int
	copy(table[:], deltas[len(deltas)-RATE_BUDGET_TABLE_LEN:])
	return table
}

var rateDeltaTable = buildRateDeltaTable()

// RateBudgetConfig seeds the initial counters (§6 Configuration).
type RateBudgetConfig struct {
	AuthLimitInitial int `yaml:"auth_limit_initial"`
	IpLimitInitial   int `yaml:"ip_limit_initial"`
}

func DefaultRateBudgetConfig() *RateBudgetConfig {
	return &RateBudgetConfig{
		AuthLimitInitial: RATE_BUDGET_AUTH_LIMIT_DEFAULT,
		IpLimitInitial:   RATE_BUDGET_IP_LIMIT_DEFAULT,
	}
}

// RateBudget is the process-wide rate budget singleton; only the scheduler
// mutates it, but SnapCounters is safe to call from other goroutines for
// diagnostics.
type RateBudget struct {
	mu            sync.Mutex
	authRemaining int
	ipRemaining   int
}

func NewRateBudget(cfg *RateBudgetConfig) *RateBudget {
	if cfg == nil {
		cfg = DefaultRateBudgetConfig()
	}
	return &RateBudget{
		authRemaining: cfg.AuthLimitInitial,
		ipRemaining:   cfg.IpLimitInitial,
	}
}

func clampAuth(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// RateDelta returns the current pacing wait for the rate-paced queue.
func (rb *RateBudget) RateDelta() time.Duration {
	rb.mu.Lock()
	limit := clampAuth(rb.authRemaining)
	rb.mu.Unlock()
	idx := (100 - limit) / 10
	if idx >= RATE_BUDGET_TABLE_LEN {
		idx = RATE_BUDGET_TABLE_LEN - 1
	}
	if idx < 0 {
		idx = 0
	}
	return time.Duration(rateDeltaTable[idx]) * time.Second
}

// DecrementAuth accounts for a rate-paced task having just been released by
// the scheduler, ahead of the next corrective rate_limit() probe.
func (rb *RateBudget) DecrementAuth() {
	rb.mu.Lock()
	rb.authRemaining--
	rb.mu.Unlock()
}

// SetAuthRemaining records the authoritative value returned by a
// rate_limit(authenticated=true) probe.
func (rb *RateBudget) SetAuthRemaining(v int) {
	rb.mu.Lock()
	rb.authRemaining = v
	rb.mu.Unlock()
}

// SetIpRemaining records the authoritative value returned by a
// rate_limit(authenticated=false) probe.
func (rb *RateBudget) SetIpRemaining(v int) {
	rb.mu.Lock()
	rb.ipRemaining = v
	rb.mu.Unlock()
}

// SnapCounters returns a consistent (authRemaining, ipRemaining) pair.
func (rb *RateBudget) SnapCounters() (authRemaining, ipRemaining int) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.authRemaining, rb.ipRemaining
}

func (rb *RateBudget) String() string {
	auth, ip := rb.SnapCounters()
	return fmt.Sprintf("%T{auth_remaining=%d, ip_remaining=%d}", rb, auth, ip)
}
