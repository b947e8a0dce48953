package clone

import (
	"context"
	"testing"
)

type recordingSubscriber struct {
	BaseSubscriber
	found   []Clone
	skipped []string
	ends    int
}

func (r *recordingSubscriber) OnCloneFound(e Event)    { r.found = append(r.found, e.Clone) }
func (r *recordingSubscriber) OnSkippedSource(e Event) { r.skipped = append(r.skipped, e.SourceID) }
func (r *recordingSubscriber) OnEnd(Event)             { r.ends++ }

const sampleFunc = `func sum(items []int) int {
	total := 0
	for _, item := range items {
		total += item
	}
	return total
}
`

func TestDetectorFindsCloneAcrossFiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTokens = 10
	cfg.MinLines = 2

	sub := &recordingSubscriber{}
	det := NewDetector(cfg, NewMemoryStore(), NewMutableRegistry(), sub)
	stat := NewStatistic()

	if _, err := det.DetectFile(Source{ID: "a.go", Format: FormatGo, Text: "package a\n\n" + sampleFunc}, stat); err != nil {
		t.Fatalf("DetectFile(a.go): %v", err)
	}
	clones, err := det.DetectFile(Source{ID: "b.go", Format: FormatGo, Text: "package b\n\n" + sampleFunc}, stat)
	if err != nil {
		t.Fatalf("DetectFile(b.go): %v", err)
	}

	if len(clones) == 0 {
		t.Fatal("expected a clone between two files sharing the same function body")
	}
	if len(sub.found) != len(clones) {
		t.Errorf("subscriber saw %d CLONE_FOUND events, detector returned %d clones", len(sub.found), len(clones))
	}
	if sub.ends != 2 {
		t.Errorf("expected 2 END events, got %d", sub.ends)
	}
	if stat.Total.Clones == 0 {
		t.Error("expected Statistic to record the clone")
	}
}

func TestDetectorSkipsUnknownFormat(t *testing.T) {
	sub := &recordingSubscriber{}
	det := NewDetector(DefaultConfig(), NewMemoryStore(), NewMutableRegistry(), sub)
	stat := NewStatistic()

	_, err := det.DetectFile(Source{ID: "weird.xyz", Format: Format("cobol"), Text: "whatever"}, stat)
	if err == nil {
		t.Fatal("expected an error for an unregistered format")
	}
	if len(sub.skipped) != 1 || sub.skipped[0] != "weird.xyz" {
		t.Errorf("expected SKIPPED_SOURCE for weird.xyz, got %v", sub.skipped)
	}
}

func TestDetectFileUsesPrebuiltFramesWhenPresent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTokens = 10
	cfg.MinLines = 2

	det := NewDetector(cfg, NewMemoryStore(), NewMutableRegistry())
	stat := NewStatistic()

	tokens, err := Tokenize(sampleFunc, FormatGo)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	significant := FilterSignificant(tokens, cfg.Mode, cfg.IgnoreCase)
	frames := BuildFramesFromSignificant("a.go", significant, cfg.Mode, cfg.MinTokens, cfg.IgnoreCase)

	src := Source{
		ID:     "a.go",
		Format: FormatGo,
		// Text is wrong on purpose: if DetectFile ignored PrebuiltFrames
		// and retokenized, the mismatch below would catch it.
		Text:           "package other\n",
		PrebuiltTokens: significant,
		PrebuiltFrames: frames,
	}
	if _, err := det.DetectFile(src, stat); err != nil {
		t.Fatalf("DetectFile: %v", err)
	}
	if stat.Total.Tokens != len(significant) {
		t.Errorf("Statistic recorded %d tokens, want the prebuilt count %d", stat.Total.Tokens, len(significant))
	}
}

func TestDriverRunAggregatesAcrossFiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTokens = 10
	cfg.MinLines = 2

	driver := NewDriver(cfg, NewMemoryStore(), 1)
	result, err := driver.Run(context.Background(), []Source{
		{ID: "a.go", Format: FormatGo, Text: "package a\n\n" + sampleFunc},
		{ID: "b.go", Format: FormatGo, Text: "package b\n\n" + sampleFunc},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Clones) == 0 {
		t.Fatal("expected at least one clone")
	}
	if result.Stat.Total.Sources != 2 {
		t.Errorf("Sources = %d, want 2", result.Stat.Total.Sources)
	}
}
