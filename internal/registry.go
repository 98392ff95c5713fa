// Tab registry: node identity, name allocation, creation/destruction
// notifications to the view sink (§4.6).

package tweetabs_internal

import "strconv"

var registryLog = NewCompLogger("registry")

// Registry is the process-wide tab registry singleton (§5 Shared
// resources). It is only ever touched from the scheduler goroutine, same
// as the tabs it holds, so it carries no locking of its own.
type Registry struct {
	byOrdinal   map[int]*Tab
	byName      map[string]*Tab
	nextOrdinal int
	sink        ViewSink
}

func NewRegistry(sink ViewSink) *Registry {
	if sink == nil {
		sink = NullViewSink{}
	}
	return &Registry{
		byOrdinal: make(map[int]*Tab),
		byName:    make(map[string]*Tab),
		sink:      sink,
	}
}

// nextTab allocates an ordinal and registers the tab under it; called once
// from each Tab constructor, before any input is wired (Lifecycles, §3).
func (r *Registry) nextTab(t *Tab) {
	r.nextOrdinal++
	t.ordinal = r.nextOrdinal
	r.byOrdinal[t.ordinal] = t
	r.sink.TabCreated(t.Id())
}

// Lookup finds a tab by ordinal or by name.
func (r *Registry) Lookup(ordinalOrName string) (*Tab, error) {
	if t, ok := r.byName[ordinalOrName]; ok {
		return t, nil
	}
	for _, t := range r.byOrdinal {
		if t.Id() == ordinalOrName {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

// SetName renames t, applying greedy trailing-digit-run collision
// resolution when the requested name is taken (§4.6). Passing an empty
// string reverts the tab to ordinal-only registration.
func (r *Registry) SetName(t *Tab, name string) {
	if t.name != "" {
		delete(r.byName, t.name)
	}
	if name == "" {
		t.name = ""
		r.sink.TabRenamed(t.Id(), "")
		r.sink.TabLabelUpdated(t.Id(), t.labelState())
		return
	}
	if _, taken := r.byName[name]; taken {
		resolved := r.resolveCollision(name)
		registryLog.Debugf("name %q taken, resolved to %q", name, resolved)
		name = resolved
	}
	t.name = name
	r.byName[name] = t
	r.sink.TabRenamed(t.Id(), name)
	r.sink.TabLabelUpdated(t.Id(), t.labelState())
}

// resolveCollision splits name into (base, counter) at the longest trailing
// run of digits — greedy, per the spec's fix for the original's ambiguous
// non-greedy regex (e.g. "Foo12bar34" splits as base="Foo12bar",
// counter=34, not base="Foo12bar3", counter=4) — increments the counter,
// and retries until the registry no longer has the candidate name.
func (r *Registry) resolveCollision(name string) string {
	base, counter := splitTrailingDigits(name)
	counter++
	candidate := base + strconv.Itoa(counter)
	for {
		if _, taken := r.byName[candidate]; !taken {
			return candidate
		}
		counter++
		candidate = base + strconv.Itoa(counter)
	}
}

// splitTrailingDigits returns the longest prefix with all trailing digits
// stripped, and the integer those trailing digits formed (or 1 if there
// were none, matching the original's "else: name_base = name; counter = 1"
// fallback).
func splitTrailingDigits(name string) (base string, counter int) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return name, 1
	}
	digits := name[i:]
	n := 0
	for _, c := range digits {
		n = n*10 + int(c-'0')
	}
	return name[:i], n
}

// unregister drops t from both maps; called from Tab.Close.
func (r *Registry) unregister(t *Tab) {
	delete(r.byOrdinal, t.ordinal)
	if t.name != "" {
		delete(r.byName, t.name)
	}
	r.sink.TabDestroyed(t.Id())
}

// Count returns the number of live tabs, used by tests asserting cleanup.
func (r *Registry) Count() int { return len(r.byOrdinal) }
