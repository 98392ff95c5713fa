package tweetabs_internal

import "testing"

func TestRateDeltaTableMonotonicAndFloor(t *testing.T) {
	table := buildRateDeltaTable()
	if len(table) != RATE_BUDGET_TABLE_LEN {
		t.Fatalf("len(table) = %d, want %d", len(table), RATE_BUDGET_TABLE_LEN)
	}
	for i := 1; i < len(table); i++ {
		if table[i] <= table[i-1] {
			t.Errorf("table[%d]=%d not strictly greater than table[%d]=%d", i, table[i], i-1, table[i-1])
		}
	}
	if last := table[len(table)-1]; last < RATE_BUDGET_TABLE_FLOOR_SEC {
		t.Errorf("last entry = %d, want >= %d", last, RATE_BUDGET_TABLE_FLOOR_SEC)
	}
}

func TestRateDeltaGrowsAsBudgetShrinks(t *testing.T) {
	rb := NewRateBudget(&RateBudgetConfig{AuthLimitInitial: 100, IpLimitInitial: 100})
	full := rb.RateDelta()

	rb.SetAuthRemaining(0)
	empty := rb.RateDelta()

	if empty <= full {
		t.Errorf("RateDelta at 0 remaining (%s) not greater than at 100 remaining (%s)", empty, full)
	}
}

func TestRateDeltaClampsOutOfRange(t *testing.T) {
	rb := NewRateBudget(nil)

	rb.SetAuthRemaining(-50)
	belowZero := rb.RateDelta()

	rb.SetAuthRemaining(0)
	atZero := rb.RateDelta()

	if belowZero != atZero {
		t.Errorf("RateDelta(-50) = %s, want same as RateDelta(0) = %s", belowZero, atZero)
	}

	rb.SetAuthRemaining(500)
	above100 := rb.RateDelta()

	rb.SetAuthRemaining(100)
	at100 := rb.RateDelta()

	if above100 != at100 {
		t.Errorf("RateDelta(500) = %s, want same as RateDelta(100) = %s", above100, at100)
	}
}

func TestDecrementAuthAffectsRateDelta(t *testing.T) {
	rb := NewRateBudget(&RateBudgetConfig{AuthLimitInitial: 10, IpLimitInitial: 10})
	before := rb.RateDelta()
	for i := 0; i < 10; i++ {
		rb.DecrementAuth()
	}
	after := rb.RateDelta()
	if after <= before {
		t.Errorf("RateDelta after draining budget (%s) not greater than before (%s)", after, before)
	}
}

func TestSnapCounters(t *testing.T) {
	rb := NewRateBudget(&RateBudgetConfig{AuthLimitInitial: 7, IpLimitInitial: 3})
	auth, ip := rb.SnapCounters()
	if auth != 7 || ip != 3 {
		t.Errorf("SnapCounters() = (%d, %d), want (7, 3)", auth, ip)
	}
}
