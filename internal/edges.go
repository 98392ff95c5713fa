// Edge wiring: AddInput/DiscardInput, strip-type compatibility, and the
// Difference cycle check (§4.5 wiring rules, §4.8).

package tweetabs_internal

// AddInput wires supplier as a new input of t: t inherits supplier's strip
// type on its first input, and every later input must match exactly
// (§4.5). On success t's Refresh runs (unless frozen).
func (t *Tab) AddInput(supplier *Tab) error {
	if !t.stripTypeSet {
		t.stripType = supplier.stripType
		t.stripTypeSet = true
	} else if supplier.stripType != t.stripType {
		return &TypeMismatch{Tab: t, Input: supplier}
	}
	return supplier.addOutput(t)
}

// DiscardInput removes supplier as an input of t.
func (t *Tab) DiscardInput(supplier *Tab) {
	supplier.discardOutput(t)
}

// addOutput registers consumer as one of supplier's outputs and, as the
// dual, consumer as having supplier as an input. Called only via AddInput.
func (supplier *Tab) addOutput(consumer *Tab) error {
	if supplier.kind == KindDifference {
		if found, via := detectNegativeCycle(consumer, supplier.negativeInputs()); found {
			return &CycleError{From: supplier, To: via}
		}
	}
	if !supplier.hasOutput(consumer) {
		supplier.outputs = append(supplier.outputs, consumer)
	}
	if !consumer.hasInput(supplier) {
		consumer.inputs = append(consumer.inputs, supplier)
		if !consumer.frozen {
			consumer.Refresh()
		}
	}
	return nil
}

// discardOutput is addOutput's inverse.
func (supplier *Tab) discardOutput(consumer *Tab) {
	supplier.outputsRemove(consumer)
	if consumer.hasInput(supplier) {
		for i, in := range consumer.inputs {
			if in == supplier {
				consumer.inputs = append(consumer.inputs[:i:i], consumer.inputs[i+1:]...)
				break
			}
		}
		if !consumer.frozen {
			consumer.Refresh()
		}
	}
}

// negativeInputs returns a Difference tab's subtracted inputs (every input
// after the first, §4.5).
func (d *Tab) negativeInputs() []*Tab {
	if len(d.inputs) <= 1 {
		return nil
	}
	return d.inputs[1:]
}

// detectNegativeCycle walks forward from start itself and then over its
// outputs, looking for any tab in negative. Finding one means wiring
// (the Difference gaining this output) -> start would let the Difference's
// own subtracted input observe its own output, a negative loop (§4.8).
func detectNegativeCycle(start *Tab, negative []*Tab) (bool, *Tab) {
	if len(negative) == 0 {
		return false, nil
	}
	neg := make(map[*Tab]bool, len(negative))
	for _, n := range negative {
		neg[n] = true
	}
	seen := make(map[*Tab]bool)
	stack := []*Tab{start}
	for len(stack) > 0 {
		n := len(stack) - 1
		top := stack[n]
		stack = stack[:n]
		if seen[top] {
			continue
		}
		seen[top] = true
		if neg[top] {
			return true, top
		}
		stack = append(stack, top.outputs...)
	}
	return false, nil
}
