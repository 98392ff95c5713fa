// Derived tab kinds: Union, Intersection, Difference. Each is nothing more
// than a rule over its inputs' current strips (§4.5) plus the constructor
// that wires up the initial inputs.

package tweetabs_internal

// unionRule holds everything that is a member of at least one input.
type unionRule struct{}

func (unionRule) recomputedStrips(t *Tab) StripSet {
	out := NewStripSet()
	for _, in := range t.inputs {
		for k, v := range in.strips {
			out[k] = v
		}
	}
	return out
}

// allowableStrips keeps only incoming strips that some input currently
// holds; Tab.AllowableStrips layers the added/deleted overlay on top of
// whatever this returns, so an overlay strip need not be offered by any
// input to stick.
func (unionRule) allowableStrips(t *Tab, incoming StripSet) StripSet {
	out := NewStripSet()
	for k, v := range incoming {
		for _, in := range t.inputs {
			if in.strips.Has(k) {
				out[k] = v
				break
			}
		}
	}
	return out
}

// NewUnion creates a Union tab over the given inputs, in order.
func (reg *Registry) NewUnion(inputs ...*Tab) (*Tab, error) {
	t := newTab(reg, KindUnion, unionRule{})
	t.SetName("Union")
	for _, in := range inputs {
		if err := t.AddInput(in); err != nil {
			return nil, err
		}
	}
	t.Refresh()
	return t, nil
}

// intersectionRule holds only what every input currently holds.
type intersectionRule struct{}

func (intersectionRule) recomputedStrips(t *Tab) StripSet {
	if len(t.inputs) == 0 {
		return NewStripSet()
	}
	out := t.inputs[0].strips.Clone()
	for _, in := range t.inputs[1:] {
		out = out.Intersect(in.strips)
	}
	return out
}

func (intersectionRule) allowableStrips(t *Tab, incoming StripSet) StripSet {
	out := incoming
	for _, in := range t.inputs {
		out = out.Intersect(in.strips)
	}
	return out
}

func (reg *Registry) NewIntersection(inputs ...*Tab) (*Tab, error) {
	t := newTab(reg, KindIntersection, intersectionRule{})
	t.SetName("Inter")
	for _, in := range inputs {
		if err := t.AddInput(in); err != nil {
			return nil, err
		}
	}
	t.Refresh()
	return t, nil
}

// differenceRule holds what the first ("positive") input offers, minus
// everything any later ("negative") input offers (§4.5, §4.8).
//
// The original computed this by mutating self.strips in place inside
// recomputed_strips instead of the local accumulator it returned, which
// made the subtraction a no-op from the caller's point of view; this
// reimplementation folds the subtraction into the value actually returned.
type differenceRule struct{}

func (differenceRule) recomputedStrips(t *Tab) StripSet {
	if len(t.inputs) == 0 {
		return NewStripSet()
	}
	out := t.inputs[0].strips.Clone()
	for _, neg := range t.inputs[1:] {
		out = out.Difference(neg.strips)
	}
	return out
}

func (differenceRule) allowableStrips(t *Tab, incoming StripSet) StripSet {
	if len(t.inputs) == 0 {
		return NewStripSet()
	}
	out := incoming.Intersect(t.inputs[0].strips)
	for _, neg := range t.inputs[1:] {
		out = out.Difference(neg.strips)
	}
	return out
}

// NewDifference creates a Difference tab: positive is the minuend's
// source, negative is zero or more tabs whose strips get subtracted. Wiring
// a negative input that would close a cycle through one of this tab's own
// future outputs is rejected before any edge is made (§4.8); since that
// check runs on add_output, a cycle can only be discovered once this
// Difference is itself wired as someone else's input, not here.
func (reg *Registry) NewDifference(positive *Tab, negative ...*Tab) (*Tab, error) {
	t := newTab(reg, KindDifference, differenceRule{})
	t.SetName("Diff")
	if err := t.AddInput(positive); err != nil {
		return nil, err
	}
	for _, neg := range negative {
		if err := t.AddInput(neg); err != nil {
			return nil, err
		}
	}
	t.Refresh()
	return t, nil
}
