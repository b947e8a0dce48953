package cache

import (
	"path/filepath"
	"testing"

	"github.com/clonewatch/clonewatch/pkg/clone"
)

func TestTokenCacheStoreAndLookup(t *testing.T) {
	dir := t.TempDir()
	c, err := New(filepath.Join(dir, "cache"), 24, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tc := NewTokenCache(c, clone.ModeMild)

	tokens := []clone.Token{{Type: clone.TokenKeyword, Value: "package"}}
	frames := []clone.MapFrame{{SourceID: "a.go", StartTok: 0, EndTok: 1}}
	hash := HashBytes([]byte("package a\n"))

	if err := tc.Store("a.go", hash, tokens, frames); err != nil {
		t.Fatalf("Store: %v", err)
	}

	gotTokens, gotFrames, ok := tc.Lookup("a.go", hash)
	if !ok {
		t.Fatal("Lookup returned false for a freshly stored entry")
	}
	if len(gotTokens) != len(tokens) || len(gotFrames) != len(frames) {
		t.Errorf("Lookup returned %d tokens/%d frames, want %d/%d", len(gotTokens), len(gotFrames), len(tokens), len(frames))
	}
}

func TestTokenCacheMissOnContentChange(t *testing.T) {
	dir := t.TempDir()
	c, err := New(filepath.Join(dir, "cache"), 24, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tc := NewTokenCache(c, clone.ModeMild)

	tokens := []clone.Token{{Type: clone.TokenIdentifier, Value: "x"}}
	if err := tc.Store("a.go", HashBytes([]byte("old")), tokens, nil); err != nil {
		t.Fatalf("Store: %v", err)
	}

	if _, _, ok := tc.Lookup("a.go", HashBytes([]byte("new"))); ok {
		t.Error("Lookup should miss once the content hash changes")
	}
}

func TestTokenCacheIsolatesByMode(t *testing.T) {
	dir := t.TempDir()
	c, err := New(filepath.Join(dir, "cache"), 24, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	hash := HashBytes([]byte("package a\n"))

	strict := NewTokenCache(c, clone.ModeStrict)
	if err := strict.Store("a.go", hash, []clone.Token{{Value: "a"}}, nil); err != nil {
		t.Fatalf("Store: %v", err)
	}

	weak := NewTokenCache(c, clone.ModeWeak)
	if _, _, ok := weak.Lookup("a.go", hash); ok {
		t.Error("a ModeWeak lookup should not see a ModeStrict cache entry")
	}
}

func TestTokenCacheDisabledCache(t *testing.T) {
	c, err := New("", 0, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tc := NewTokenCache(c, clone.ModeMild)

	if err := tc.Store("a.go", "hash", nil, nil); err != nil {
		t.Errorf("Store on a disabled cache should not error: %v", err)
	}
	if _, _, ok := tc.Lookup("a.go", "hash"); ok {
		t.Error("Lookup on a disabled cache should always miss")
	}
}
