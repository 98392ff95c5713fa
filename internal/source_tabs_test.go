package tweetabs_internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIdInputLoadsOneKeyPerLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watched.txt")
	if err := os.WriteFile(path, []byte("alice\nbob\n\n  \ncarol\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(nil)
	tab, err := reg.NewIdInput(path)
	if err != nil {
		t.Fatalf("NewIdInput: %v", err)
	}

	strips := tab.Strips()
	for _, name := range []string{"alice", "bob", "carol"} {
		if !strips.Has(OpaqueKey(name)) {
			t.Errorf("missing key %q, got %v", name, keys(strips))
		}
	}
	if len(strips) != 3 {
		t.Errorf("len(strips) = %d, want 3 (blank lines skipped)", len(strips))
	}
}

func TestNewIdInputMissingFile(t *testing.T) {
	reg := NewRegistry(nil)
	if _, err := reg.NewIdInput(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("NewIdInput on missing file: want error, got nil")
	}
}

func TestIdOutputRoundTripsThroughIdInput(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "archive.txt")

	reg := NewRegistry(nil)
	src := reg.NewPreset("Src", NewStripSet(NewOpaqueStrip("x"), NewOpaqueStrip("y")))
	out, err := reg.NewIdOutput(outPath, src)
	if err != nil {
		t.Fatalf("NewIdOutput: %v", err)
	}

	if !out.Modified() {
		t.Fatal("IdOutput not marked modified after picking up its input's strips")
	}
	if err := out.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if out.Modified() {
		t.Error("Modified() still true after Save")
	}

	reg2 := NewRegistry(nil)
	roundTripped, err := reg2.NewIdInput(outPath)
	if err != nil {
		t.Fatalf("NewIdInput(round trip): %v", err)
	}
	got := roundTripped.Strips()
	if !got.Has(OpaqueKey("x")) || !got.Has(OpaqueKey("y")) || len(got) != 2 {
		t.Errorf("round-tripped strips = %v, want {x,y}", keys(got))
	}
}

func TestIdOutputSaveNoopWhenUnmodified(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "archive.txt")

	reg := NewRegistry(nil)
	out, err := reg.NewIdOutput(outPath)
	if err != nil {
		t.Fatalf("NewIdOutput: %v", err)
	}
	// No inputs, no strips picked up: never marked modified, so Save must
	// not create the file.
	if err := out.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(outPath); err == nil {
		t.Error("Save created a file despite no modification")
	}
}

func TestCloseFlushesUnsavedIdOutput(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "archive.txt")

	reg := NewRegistry(nil)
	src := reg.NewPreset("Src", NewStripSet(NewOpaqueStrip("z")))
	out, err := reg.NewIdOutput(outPath, src)
	if err != nil {
		t.Fatalf("NewIdOutput: %v", err)
	}

	out.Close()
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "z\n" {
		t.Errorf("archive contents = %q, want %q", data, "z\n")
	}
}

func TestNewInteractiveSeedsByStripKind(t *testing.T) {
	reg := NewRegistry(nil)
	tweets := reg.NewInteractive([]uint64{1, 2}, StripTweet)
	if tweets.StripType() != StripTweet {
		t.Errorf("StripType() = %v, want StripTweet", tweets.StripType())
	}
	if !tweets.Strips().Has(TweetId(1)) || !tweets.Strips().Has(TweetId(2)) {
		t.Errorf("strips = %v, want {1,2} as TweetId", keys(tweets.Strips()))
	}
}
