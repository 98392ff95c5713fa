// Source tab kinds: Preset, Interactive, IdInput, IdOutput. These hold a
// literal seed (presetStrips) instead of recomputing from other tabs'
// strips (§4.5, §9.3, §4.9).

package tweetabs_internal

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// idFileBufPool recycles the buffers used to slurp id_input files; each
// file is read once, when its IdInput tab is created (§4.9).
var idFileBufPool = NewBufPool(4)

// presetRule holds exactly its tab's literal seed; Preset, Interactive,
// IdInput and Periodic all share it (§4.5).
type presetRule struct{}

func (presetRule) recomputedStrips(t *Tab) StripSet { return t.presetStrips.Clone() }

func (presetRule) allowableStrips(t *Tab, incoming StripSet) StripSet {
	return incoming.Intersect(t.presetStrips)
}

// NewPreset creates a Preset tab seeded with the given strips; it accepts
// no inputs (§4.5).
func (reg *Registry) NewPreset(name string, seed StripSet) *Tab {
	t := newTab(reg, KindPreset, presetRule{})
	t.presetStrips = seed.Clone()
	if name != "" {
		t.SetName(name)
	}
	t.Refresh()
	return t
}

// NewInteractive creates a tab seeded with a literal list of ids typed in
// by a user rather than fetched from the remote API (§9.3). kind selects
// whether each id becomes a Tweet or a User strip.
func (reg *Registry) NewInteractive(ids []uint64, kind StripKind) *Tab {
	t := newTab(reg, KindInteractive, presetRule{})
	t.stripType = kind
	t.stripTypeSet = true
	seed := NewStripSet()
	for _, id := range ids {
		switch kind {
		case StripUser:
			seed.Add(Strip{Key: UserId(id)})
		default:
			seed.Add(Strip{Key: TweetId(id)})
		}
	}
	t.presetStrips = seed
	t.SetName("Interactive")
	t.Refresh()
	return t
}

// NewIdInput creates a tab whose preset strips are loaded from a file, one
// opaque key per line (§4.9). Strips round-trip by their
// StripKey.String() form, so an IdInput reading back an IdOutput's save
// file recovers the same key strings, each as an opaque key.
func (reg *Registry) NewIdInput(path string) (*Tab, error) {
	seed, err := loadIdFile(path)
	if err != nil {
		return nil, NewRemoteError("id_input load", err)
	}
	t := newTab(reg, KindIdInput, presetRule{})
	t.persistPath = path
	t.presetStrips = seed
	t.SetName(filepath.Base(path))
	t.Refresh()
	return t, nil
}

func loadIdFile(path string) (StripSet, error) {
	buf, err := idFileBufPool.ReadFile(path)
	if err != nil && err != ErrReadFileBufPotentialTruncation {
		return nil, err
	}
	defer idFileBufPool.ReturnBuf(buf)

	seed := NewStripSet()
	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		seed.Add(NewOpaqueStrip(line))
	}
	return seed, scanner.Err()
}

// NewIdOutput creates a Union tab over inputs that also persists its strip
// set to path on Close (§4.9). Unlike the original, which relied on
// atexit to flush unsaved output tabs, this waits for an explicit Close;
// the runtime closes every live IdOutput during shutdown.
func (reg *Registry) NewIdOutput(path string, inputs ...*Tab) (*Tab, error) {
	t := newTab(reg, KindIdOutput, unionRule{})
	t.persistPath = path
	t.SetName(filepath.Base(path))
	for _, in := range inputs {
		if err := t.AddInput(in); err != nil {
			return nil, err
		}
	}
	t.Refresh()
	return t, nil
}

// save writes t.strips to t.persistPath, one key per line sorted by key,
// via a temp-file-then-rename so a crash mid-write never corrupts the
// previous contents.
func (t *Tab) save() error {
	dir := filepath.Dir(t.persistPath)
	tmp := filepath.Join(dir, "."+filepath.Base(t.persistPath)+"."+uuid.NewString()+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, s := range t.strips.Sorted() {
		if _, err := fmt.Fprintln(w, s.String()); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, t.persistPath); err != nil {
		os.Remove(tmp)
		return err
	}
	t.modified = false
	return nil
}

// Save flushes an IdOutput's current strips to disk immediately, without
// waiting for Close. It does nothing for other kinds or when nothing
// changed since the last save.
func (t *Tab) Save() error {
	if t.kind != KindIdOutput {
		return nil
	}
	if !t.modified {
		return nil
	}
	return t.save()
}
