// Tab: the DAG node. A tab carries a strip set recomputed from its inputs
// (§4.5), plus local overlays (added/deleted) that survive a Refresh.

package tweetabs_internal

import "fmt"

type TabKind int

const (
	KindPreset TabKind = iota
	KindInteractive
	KindIdInput
	KindIdOutput
	KindPeriodic
	KindUnion
	KindIntersection
	KindDifference
)

var tabKindName = map[TabKind]string{
	KindPreset:       "Preset",
	KindInteractive:  "Interactive",
	KindIdInput:      "IdInput",
	KindIdOutput:     "IdOutput",
	KindPeriodic:     "Periodic",
	KindUnion:        "Union",
	KindIntersection: "Intersection",
	KindDifference:   "Difference",
}

func (k TabKind) String() string { return tabKindName[k] }

// Selection is a tab's tri-state selection flag (§4.7).
type Selection int

const (
	Unselected Selection = iota
	Selected
	SelectedComplement
)

// rule supplies the strip-recomputation and allowable-strips behavior that
// varies by tab kind (§4.5, §8). It is the Go stand-in for the original's
// per-subclass method overrides.
type rule interface {
	// recomputedStrips returns what a tab's strips would be from its
	// inputs alone, ignoring added/deleted overlays.
	recomputedStrips(t *Tab) StripSet
	// allowableStrips filters incoming against what this kind of tab may
	// ever hold (e.g. a Union may hold anything its inputs offer; a
	// Preset, Interactive, IdInput or Periodic tab only its own seed).
	allowableStrips(t *Tab, incoming StripSet) StripSet
}

// Tab is one DAG node. Every field is only ever touched from the scheduler
// goroutine (tasks run there exclusively), so Tab itself carries no
// locking.
type Tab struct {
	reg *Registry
	rl  rule

	ordinal int
	name    string
	kind    TabKind

	stripType    StripKind
	stripTypeSet bool

	inputs  []*Tab
	outputs []*Tab

	strips StripSet

	// presetStrips is the literal seed for source tabs (Preset,
	// Interactive, IdInput, Periodic); derived tabs (Union, Intersection,
	// Difference) never touch it.
	presetStrips StripSet

	// added/deleted are the manual overlays a user punches through a
	// Refresh (§3 invariant 3): added strips stay even if no longer
	// recomputed, deleted strips stay gone even if recomputed again.
	added   StripSet
	deleted StripSet

	frozen   bool
	hidden   bool
	selected Selection

	// modified is IdOutput's dirty bit (§4.9): set whenever AddStrips or
	// DiscardStrips changes anything, cleared by Save.
	modified bool

	// capacity caps presetStrips for Periodic tabs; 0 means uncapped
	// (§9.2). Unused by every other kind.
	capacity int

	// persistPath is IdInput/IdOutput's backing file.
	persistPath string
}

func newTab(reg *Registry, kind TabKind, rl rule) *Tab {
	t := &Tab{
		reg:      reg,
		rl:       rl,
		kind:     kind,
		strips:   NewStripSet(),
		added:    NewStripSet(),
		deleted:  NewStripSet(),
		selected: Unselected,
	}
	reg.nextTab(t)
	return t
}

// Id is a tab's stable display identity: its name if set, else its ordinal.
func (t *Tab) Id() string {
	if t.name != "" {
		return t.name
	}
	return fmt.Sprintf("#%d", t.ordinal)
}

func (t *Tab) String() string { return fmt.Sprintf("%s(%s)", t.kind, t.Id()) }

func (t *Tab) Name() string   { return t.name }
func (t *Tab) Kind() TabKind  { return t.kind }
func (t *Tab) Frozen() bool   { return t.frozen }
func (t *Tab) Hidden() bool   { return t.hidden }
func (t *Tab) Modified() bool { return t.modified }

// StripType returns the tab's strip kind. A tab whose type was never set
// (no wired input yet and no constructor setting it) reports the zero
// value, StripTweet; the first AddInput call fixes it for good.
func (t *Tab) StripType() StripKind { return t.stripType }

func (t *Tab) Strips() StripSet { return t.strips.Clone() }

func (t *Tab) Inputs() []*Tab {
	out := make([]*Tab, len(t.inputs))
	copy(out, t.inputs)
	return out
}

func (t *Tab) Outputs() []*Tab {
	out := make([]*Tab, len(t.outputs))
	copy(out, t.outputs)
	return out
}

func (t *Tab) labelState() TabLabel {
	return TabLabel{
		Name:     t.Id(),
		Frozen:   t.frozen,
		Hidden:   t.hidden,
		Selected: t.selected,
		Modified: t.modified,
	}
}

func (t *Tab) pushLabel() { t.reg.sink.TabLabelUpdated(t.Id(), t.labelState()) }

// SetName renames t via the registry's collision resolution.
func (t *Tab) SetName(name string) { t.reg.SetName(t, name) }

// Select marks t selected; complement selects every strip NOT held by t
// when the selection is later materialized by a view (§4.7).
func (t *Tab) Select(complement bool) {
	if complement {
		t.selected = SelectedComplement
	} else {
		t.selected = Selected
	}
	t.pushLabel()
}

func (t *Tab) Unselect() {
	t.selected = Unselected
	t.pushLabel()
}

func (t *Tab) Selected() Selection { return t.selected }

// Freeze stops t from recomputing on input changes until Unfreeze; wiring
// changes upstream are remembered (inputs list still updated) but Refresh
// is not invoked while frozen (§4.7).
func (t *Tab) Freeze() {
	t.frozen = true
	t.pushLabel()
}

func (t *Tab) Unfreeze() {
	t.frozen = false
	t.pushLabel()
	t.Refresh()
}

func (t *Tab) Hide() {
	t.hidden = true
	t.pushLabel()
}

// Unhide makes t visible again and, if it was hidden, reports every strip it
// currently holds to the sink as added.
func (t *Tab) Unhide() {
	wasHidden := t.hidden
	t.hidden = false
	t.pushLabel()
	if wasHidden {
		for _, s := range t.strips.Sorted() {
			t.reg.sink.StripAdded(t.Id(), s)
		}
	}
}

// Refresh recomputes t.strips from its rule plus the added/deleted
// overlays, then propagates the delta to its unfrozen outputs (§4.5).
func (t *Tab) Refresh() {
	if t.kind == KindPeriodic {
		t.trimCapacity()
	}
	target := t.rl.recomputedStrips(t).Union(t.added).Difference(t.deleted)
	stale := t.strips.Difference(target)
	t.DiscardStrips(stale)
	t.AddStrips(target)
}

// trimCapacity drops the oldest presetStrips (by key order, a stand-in for
// arrival order since strips carry no timestamp of their own) once
// presetStrips exceeds t.capacity (§9.2).
func (t *Tab) trimCapacity() {
	if t.capacity <= 0 || len(t.presetStrips) <= t.capacity {
		return
	}
	sorted := t.presetStrips.Sorted()
	drop := len(sorted) - t.capacity
	for _, s := range sorted[:drop] {
		t.presetStrips.Discard(s.Key)
	}
}

// AllowableStrips filters incoming down to what t's rule permits it to
// hold, then applies the manual overlay on top: anything in t.added that
// incoming also offers is forced in regardless of what the rule says, and
// anything in t.deleted is forced out, so the overlay always wins over
// whatever a tab would otherwise recompute (§3 invariant 3). Every
// AddStrips call funnels through this.
func (t *Tab) AllowableStrips(incoming StripSet) StripSet {
	allowed := t.rl.allowableStrips(t, incoming)
	forced := incoming.Intersect(t.added)
	return allowed.Union(forced).Difference(t.deleted)
}

// AddStrips adds the allowable subset of incoming to t.strips, cascades the
// newly-added strips to unfrozen outputs, and notifies the sink unless t is
// hidden. It returns exactly the strips that were newly added. (§4.5)
func (t *Tab) AddStrips(incoming StripSet) StripSet {
	allowed := t.AllowableStrips(incoming)
	fresh := allowed.Difference(t.strips)
	if len(fresh) == 0 {
		return fresh
	}
	for k, v := range fresh {
		t.strips[k] = v
	}
	if t.kind == KindIdOutput {
		t.modified = true
	}
	if !t.hidden {
		for _, s := range fresh.Sorted() {
			t.reg.sink.StripAdded(t.Id(), s)
		}
	}
	// A downstream tab's membership of any given strip can depend on more
	// than just t (Union needs any input, Intersection/Difference need
	// all of them), so an addition into t can only be forwarded as a
	// recompute of each output, not as a blind incremental add: Refresh
	// re-derives the output's full strip set from its rule (which reads
	// its inputs' current strips, t's included) and diffs it itself.
	for _, out := range t.outputs {
		if !out.frozen {
			out.Refresh()
		}
	}
	return fresh
}

// DiscardStrips removes the subset of incoming actually held by t, cascades
// the removal to unfrozen outputs, and notifies the sink unless t is
// hidden. It returns exactly the strips that were removed. (§4.5)
func (t *Tab) DiscardStrips(incoming StripSet) StripSet {
	gone := incoming.Intersect(t.strips)
	if len(gone) == 0 {
		return gone
	}
	for k := range gone {
		delete(t.strips, k)
	}
	if t.kind == KindIdOutput {
		t.modified = true
	}
	if !t.hidden {
		for _, s := range gone.Sorted() {
			t.reg.sink.StripRemoved(t.Id(), s.Key)
		}
	}
	// Same reasoning as in AddStrips: a strip leaving t doesn't necessarily
	// mean it leaves a Union output (another input may still hold it), and
	// it can mean a Difference output regains a strip it had previously
	// lost to this tab as a negative input. Only a full Refresh of each
	// output gets both directions right.
	for _, out := range t.outputs {
		if !out.frozen {
			out.Refresh()
		}
	}
	return gone
}

// AddOverlay is the user-facing "add these strips regardless of what the
// tab would otherwise recompute" action (§3 invariant 3): it records the
// overlay and folds it straight in, without a full Refresh.
func (t *Tab) AddOverlay(strips StripSet) {
	for k, v := range strips {
		t.added[k] = v
		t.deleted.Discard(k)
	}
	t.AddStrips(strips)
}

// DiscardOverlay is the inverse of AddOverlay.
func (t *Tab) DiscardOverlay(strips StripSet) {
	for k, v := range strips {
		t.deleted[k] = v
		t.added.Discard(k)
	}
	t.DiscardStrips(strips)
}

// Close detaches t from every input and output, clears its strips, and
// unregisters it (§4.6). An IdOutput with unsaved changes is saved first.
func (t *Tab) Close() {
	if t.kind == KindIdOutput && t.modified {
		if err := t.save(); err != nil {
			t.reg.sink.Error(err)
		}
	}
	for _, in := range t.inputs {
		in.outputsRemove(t)
	}
	t.inputs = nil
	for _, out := range append([]*Tab(nil), t.outputs...) {
		t.discardOutput(out)
	}
	t.strips = NewStripSet()
	t.reg.unregister(t)
}

func (t *Tab) outputsRemove(o *Tab) {
	for i, out := range t.outputs {
		if out == o {
			t.outputs = append(t.outputs[:i:i], t.outputs[i+1:]...)
			return
		}
	}
}

func (t *Tab) hasOutput(o *Tab) bool {
	for _, out := range t.outputs {
		if out == o {
			return true
		}
	}
	return false
}

func (t *Tab) hasInput(in *Tab) bool {
	for _, i := range t.inputs {
		if i == in {
			return true
		}
	}
	return false
}
