package clone

import (
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// SourceProvider resolves a sourceID to the full text it was tokenized
// from, so the validator pipeline can extract clone fragments without
// the matcher itself having to carry source text around.
type SourceProvider interface {
	Content(sourceID string) (string, bool)
}

// overlapTracker discards clones whose ranges, on both sides, are
// already fully covered by previously accepted clones in the same
// source - the common case when a long match also contains a shorter
// match the matcher's greedy extension already subsumed (§4.5, C5
// overlap suppression). One roaring bitmap per sourceID keeps this
// O(range length) per check instead of O(accepted clones so far).
type overlapTracker struct {
	claimed map[string]*roaring.Bitmap
}

func newOverlapTracker() *overlapTracker {
	return &overlapTracker{claimed: make(map[string]*roaring.Bitmap)}
}

func (t *overlapTracker) bitmapFor(sourceID string) *roaring.Bitmap {
	b, ok := t.claimed[sourceID]
	if !ok {
		b = roaring.New()
		t.claimed[sourceID] = b
	}
	return b
}

func (t *overlapTracker) fullyClaimed(sourceID string, r Range) bool {
	if r.End <= r.Start {
		return false
	}
	b := t.bitmapFor(sourceID)
	window := roaring.New()
	window.AddRange(uint64(r.Start), uint64(r.End))
	window.And(b)
	return window.GetCardinality() == uint64(r.End-r.Start)
}

func (t *overlapTracker) claim(sourceID string, r Range) {
	if r.End <= r.Start {
		return
	}
	t.bitmapFor(sourceID).AddRange(uint64(r.Start), uint64(r.End))
}

// Validate runs the ordered validator pipeline over raw matcher output
// (§C5): minimum-size filters first since they're the cheapest to check
// and reject the bulk of noise, then overlap suppression against clones
// already accepted earlier in the same call, then fragment extraction for
// each clone that survives. The overlap tracker lives for one call, so
// clones passed to separate calls (one per file in DetectFile) are not
// checked against each other.
func Validate(clones []RawClone, cfg Config, content SourceProvider) []Clone {
	tracker := newOverlapTracker()
	found := time.Now()
	accepted := make([]Clone, 0, len(clones))

	for _, rc := range clones {
		linesA := rc.A.EndLine - rc.A.StartLine + 1
		linesB := rc.B.EndLine - rc.B.StartLine + 1
		if linesA < cfg.MinLines || linesB < cfg.MinLines {
			continue
		}

		if rc.A.TokenCount() < cfg.MinTokens || rc.B.TokenCount() < cfg.MinTokens {
			continue
		}

		if cfg.MaxLines > 0 && (linesA > cfg.MaxLines || linesB > cfg.MaxLines) {
			continue
		}
		sizeA := rc.A.Range.End - rc.A.Range.Start
		sizeB := rc.B.Range.End - rc.B.Range.Start
		if cfg.MaxSize > 0 && (sizeA > cfg.MaxSize || sizeB > cfg.MaxSize) {
			continue
		}

		if tracker.fullyClaimed(rc.A.SourceID, rc.A.Range) && tracker.fullyClaimed(rc.B.SourceID, rc.B.Range) {
			continue
		}

		loc := func(span CloneSpan) CloneLocation {
			fragment := ""
			if text, ok := content.Content(span.SourceID); ok {
				start, end := span.Range.Start, span.Range.End
				if start >= 0 && end <= len(text) && start <= end {
					fragment = text[start:end]
				}
			}
			return CloneLocation{
				SourceID: span.SourceID,
				Start:    Position{Line: span.StartLine, Column: span.StartColumn, Position: span.Range.Start},
				End:      Position{Line: span.EndLine, Column: span.EndColumn, Position: span.Range.End},
				Range:    span.Range,
				Tokens:   span.TokenCount(),
				Fragment: fragment,
			}
		}

		accepted = append(accepted, Clone{
			Format:       rc.Format,
			FoundDate:    found,
			DuplicationA: loc(rc.A),
			DuplicationB: loc(rc.B),
		})

		tracker.claim(rc.A.SourceID, rc.A.Range)
		tracker.claim(rc.B.SourceID, rc.B.Range)
	}

	return accepted
}
