package tweetabs_internal

import "testing"

func idSet(ids ...uint64) StripSet {
	seed := NewStripSet()
	for _, id := range ids {
		seed.Add(Strip{Key: TweetId(id)})
	}
	return seed
}

func hasIds(set StripSet, ids ...uint64) bool {
	if len(set) != len(ids) {
		return false
	}
	for _, id := range ids {
		if !set.Has(TweetId(id)) {
			return false
		}
	}
	return true
}

func TestUnionPropagatesAdditionsAndRemovals(t *testing.T) {
	reg := NewRegistry(nil)
	a := reg.NewPreset("A", idSet(1, 2))
	b := reg.NewPreset("B", idSet(2, 3))

	u, err := reg.NewUnion(a, b)
	if err != nil {
		t.Fatalf("NewUnion: %v", err)
	}
	if !hasIds(u.Strips(), 1, 2, 3) {
		t.Fatalf("union strips = %v, want {1,2,3}", keys(u.Strips()))
	}

	a.presetStrips = idSet(1, 2, 4)
	a.Refresh()
	if !hasIds(u.Strips(), 1, 2, 3, 4) {
		t.Errorf("union after add = %v, want {1,2,3,4}", keys(u.Strips()))
	}

	b.presetStrips = idSet(2)
	b.Refresh()
	if !hasIds(u.Strips(), 1, 2, 4) {
		t.Errorf("union after remove = %v, want {1,2,4}", keys(u.Strips()))
	}

	// Removing a strip from one input must not drop it from the union
	// while another input still offers it: a still holds 2 here, so
	// discarding b's only remaining strip (2) must leave it in place.
	b.presetStrips = idSet()
	b.Refresh()
	if !hasIds(u.Strips(), 1, 2, 4) {
		t.Errorf("union after removing shared member from one input = %v, want {1,2,4} (other input still holds 2)", keys(u.Strips()))
	}
}

func TestIntersectionTracksInputs(t *testing.T) {
	reg := NewRegistry(nil)
	a := reg.NewPreset("A", idSet(1, 2, 3))
	b := reg.NewPreset("B", idSet(2, 3, 4))

	i, err := reg.NewIntersection(a, b)
	if err != nil {
		t.Fatalf("NewIntersection: %v", err)
	}
	if !hasIds(i.Strips(), 2, 3) {
		t.Fatalf("intersection strips = %v, want {2,3}", keys(i.Strips()))
	}

	a.presetStrips = idSet(3)
	a.Refresh()
	if !hasIds(i.Strips(), 3) {
		t.Errorf("intersection after narrowing = %v, want {3}", keys(i.Strips()))
	}
}

func TestDifferenceSubtractsNegativeInputs(t *testing.T) {
	reg := NewRegistry(nil)
	pos := reg.NewPreset("Pos", idSet(1, 2, 3))
	neg := reg.NewPreset("Neg", idSet(2))

	d, err := reg.NewDifference(pos, neg)
	if err != nil {
		t.Fatalf("NewDifference: %v", err)
	}
	if !hasIds(d.Strips(), 1, 3) {
		t.Fatalf("difference strips = %v, want {1,3}", keys(d.Strips()))
	}

	neg.presetStrips = idSet(2, 3)
	neg.Refresh()
	if !hasIds(d.Strips(), 1) {
		t.Errorf("difference after widening negative = %v, want {1}", keys(d.Strips()))
	}
}

func TestDifferenceRejectsNegativeCycle(t *testing.T) {
	reg := NewRegistry(nil)
	pos := reg.NewPreset("Pos", idSet(1))
	neg := reg.NewPreset("Neg", idSet(2))

	d, err := reg.NewDifference(pos, neg)
	if err != nil {
		t.Fatalf("NewDifference: %v", err)
	}

	// Wiring d as an input of neg would let neg (d's own negative input)
	// observe d's output, a negative cycle; it must be rejected.
	if err := neg.AddInput(d); err == nil {
		t.Fatal("AddInput creating a negative cycle: want error, got nil")
	} else if _, ok := err.(*CycleError); !ok {
		t.Errorf("AddInput error type = %T, want *CycleError", err)
	}
}

func TestAddOverlaySurvivesRefresh(t *testing.T) {
	reg := NewRegistry(nil)
	a := reg.NewPreset("A", idSet(1))
	b := reg.NewPreset("B", idSet())
	u, err := reg.NewUnion(a, b)
	if err != nil {
		t.Fatalf("NewUnion: %v", err)
	}

	u.AddOverlay(idSet(99))
	if !u.Strips().Has(TweetId(99)) {
		t.Fatal("overlay strip missing right after AddOverlay")
	}

	// A Refresh driven by an unrelated input change must not drop the
	// overlay, since it's outside what any input currently offers.
	a.presetStrips = idSet(1, 2)
	a.Refresh()
	if !u.Strips().Has(TweetId(99)) {
		t.Error("overlay strip dropped by Refresh")
	}

	u.DiscardOverlay(idSet(99))
	if u.Strips().Has(TweetId(99)) {
		t.Error("overlay strip survived DiscardOverlay")
	}
}

func TestFreezeBlocksPropagation(t *testing.T) {
	reg := NewRegistry(nil)
	a := reg.NewPreset("A", idSet(1))
	u, err := reg.NewUnion(a)
	if err != nil {
		t.Fatalf("NewUnion: %v", err)
	}

	u.Freeze()
	a.presetStrips = idSet(1, 2)
	a.Refresh()
	if hasIds(u.Strips(), 1, 2) {
		t.Fatal("frozen tab picked up a change from its input")
	}

	u.Unfreeze()
	if !hasIds(u.Strips(), 1, 2) {
		t.Errorf("unfreeze did not catch up, strips = %v", keys(u.Strips()))
	}
}

func TestTypeMismatchRejectedAtWireTime(t *testing.T) {
	reg := NewRegistry(nil)
	tweets := reg.NewInteractive([]uint64{1}, StripTweet)
	users := reg.NewInteractive([]uint64{2}, StripUser)

	if _, err := reg.NewUnion(tweets, users); err == nil {
		t.Fatal("NewUnion across strip types: want error, got nil")
	} else if _, ok := err.(*TypeMismatch); !ok {
		t.Errorf("error type = %T, want *TypeMismatch", err)
	}
}

func TestCloseDetachesAndUnregisters(t *testing.T) {
	reg := NewRegistry(nil)
	a := reg.NewPreset("A", idSet(1))
	u, err := reg.NewUnion(a)
	if err != nil {
		t.Fatalf("NewUnion: %v", err)
	}

	u.Close()
	if reg.Count() != 1 {
		t.Errorf("Count() after closing union = %d, want 1", reg.Count())
	}
	if a.hasOutput(u) {
		t.Error("closed tab still listed as a's output")
	}
}

func TestTrimCapacityDropsOldestByKeyOrder(t *testing.T) {
	reg := NewRegistry(nil)
	t1 := newTab(reg, KindPeriodic, presetRule{})
	t1.stripType = StripTweet
	t1.stripTypeSet = true
	t1.capacity = 2
	t1.presetStrips = idSet(1, 2, 3, 4)
	t1.Refresh()

	if len(t1.Strips()) != 2 {
		t.Fatalf("len(Strips()) = %d, want 2", len(t1.Strips()))
	}
	if !hasIds(t1.Strips(), 3, 4) {
		t.Errorf("trimmed strips = %v, want {3,4} (highest keys retained)", keys(t1.Strips()))
	}
}
