package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWalkFindsRecognizedExtensions(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "main.go", "package main")
	write(t, dir, "README.md", "# hi")
	write(t, dir, "sub/helper.go", "package sub")

	files, err := Walk(Options{
		Root:        dir,
		FormatsExts: map[string][]string{"go": {".go"}},
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 go files, got %d: %v", len(files), files)
	}
}

func TestWalkHonorsExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "main.go", "package main")
	write(t, dir, "vendor/dep.go", "package dep")

	files, err := Walk(Options{
		Root:            dir,
		FormatsExts:     map[string][]string{"go": {".go"}},
		ExcludePatterns: []string{"vendor/"},
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 1 || files[0].Path != filepath.Join(dir, "main.go") {
		t.Fatalf("expected only main.go, got %v", files)
	}
}

func TestWalkHonorsIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "main.go", "package main")
	write(t, dir, "generated/thing.go", "package generated")
	write(t, dir, ".clonewatchignore", "# comment\ngenerated/**\n")

	files, err := Walk(Options{
		Root:          dir,
		FormatsExts:   map[string][]string{"go": {".go"}},
		UseIgnoreFile: true,
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 1 || files[0].Path != filepath.Join(dir, "main.go") {
		t.Fatalf("expected only main.go, got %v", files)
	}
}

func TestWalkAssignsFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.py", "x = 1")

	files, err := Walk(Options{
		Root:        dir,
		FormatsExts: map[string][]string{"python": {".py"}, "go": {".go"}},
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 1 || files[0].Format != "python" {
		t.Fatalf("expected python format, got %v", files)
	}
}
