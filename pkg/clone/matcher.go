package clone

import "sync"

// FileIndex is the per-file data the matcher needs to extend a match
// that originates in an already-processed file: its significant (mask-
// key non-empty) token sequence and the frames built over it. The Store
// itself only ever holds the last occurrence of each frame id (§4.3);
// FileIndex is how the matcher recovers enough of that earlier file to
// verify and grow a match once a candidate has been found. A Registry
// retains one FileIndex per file seen so far during the run - this is
// additional to, and does not enlarge, the Store's O(total frames)
// footprint.
type FileIndex struct {
	SourceID string
	Format   Format
	Tokens   []Token
	Frames   []MapFrame
}

// Registry resolves a sourceID to the FileIndex recorded for it earlier
// in the run. mapRegistry (NewRegistry, NewMutableRegistry) is the
// in-memory implementation the multi-file driver uses.
type Registry interface {
	Lookup(sourceID string) (FileIndex, bool)
}

// mapRegistry is a minimal in-memory Registry, usable directly or as the
// basis for the driver's bookkeeping.
type mapRegistry struct {
	mu    sync.RWMutex
	files map[string]FileIndex
}

// NewRegistry returns an empty in-memory Registry.
func NewRegistry() Registry {
	return &mapRegistry{files: make(map[string]FileIndex)}
}

func (r *mapRegistry) Lookup(sourceID string) (FileIndex, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.files[sourceID]
	return idx, ok
}

// Record stores idx for later lookup. Exposed on the concrete type so
// the driver can populate the registry as files are processed, safe for
// concurrent use by multiple worker goroutines (§5).
func (r *mapRegistry) Record(idx FileIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[idx.SourceID] = idx
}

// RegistryWriter is the mutation half of Registry that Driver uses; kept
// separate from Registry so matcher code only ever sees the read-only view.
type RegistryWriter interface {
	Registry
	Record(idx FileIndex)
}

// NewMutableRegistry returns a Registry that also supports Record.
func NewMutableRegistry() RegistryWriter {
	return &mapRegistry{files: make(map[string]FileIndex)}
}

// Detect runs the Rabin-Karp matcher for one file (§4.4). file must carry
// every frame built for it, in ascending Index order, and the full
// significant-token sequence those frames index into. Matches already
// committed to file's own registry entry (via registry.Record, done by
// the caller before or after Detect - Detect itself never mutates it)
// are not required for self-matching: a file may match against itself
// using only the frames/tokens passed in directly.
func Detect(file FileIndex, store Store, registry Registry, mode Mode, ignoreCase bool) ([]RawClone, error) {
	frames := file.Frames
	var clones []RawClone

	for i := 0; i < len(frames); {
		f := frames[i]

		prior, ok, err := store.Get(f.ID)
		if err != nil {
			return clones, StoreFailure(file.SourceID, err)
		}

		if !ok || (prior.SourceID == file.SourceID && prior.Index == f.Index) {
			if err := store.Set(f.ID, recordFromFrame(file.SourceID, f)); err != nil {
				return clones, StoreFailure(file.SourceID, err)
			}
			i++
			continue
		}

		priorFile := file
		if prior.SourceID != file.SourceID {
			idx, found := registry.Lookup(prior.SourceID)
			if !found {
				// The earlier file's data is unavailable (should not
				// normally happen within one run); treat conservatively
				// as no match rather than risk an unverifiable clone.
				if err := store.Set(f.ID, recordFromFrame(file.SourceID, f)); err != nil {
					return clones, StoreFailure(file.SourceID, err)
				}
				i++
				continue
			}
			priorFile = idx
		}

		priorFrame := priorFile.Frames[prior.Index]
		windowWidth := priorFrame.EndTok - priorFrame.StartTok
		if !windowEqual(priorFile, priorFrame, file, f, mode, ignoreCase) {
			// Hash collision: advisory id matched but the mask-key
			// sequences differ. Not a match at all.
			if err := store.Set(f.ID, recordFromFrame(file.SourceID, f)); err != nil {
				return clones, StoreFailure(file.SourceID, err)
			}
			i++
			continue
		}

		if priorFile.SourceID == file.SourceID && i < prior.Index+windowWidth {
			// Even the minimal window already overlaps itself in token
			// space; no extension of it can ever be a valid self-match.
			if err := store.Set(f.ID, recordFromFrame(file.SourceID, f)); err != nil {
				return clones, StoreFailure(file.SourceID, err)
			}
			i++
			continue
		}

		k := extend(priorFile, prior.Index, file, i, windowWidth, mode, ignoreCase)

		aSpan := spanFromFrames(priorFile, prior.Index, prior.Index+k)
		bSpan := spanFromFrames(file, i, i+k)
		clones = append(clones, RawClone{Format: file.Format, A: aSpan, B: bSpan})

		if err := store.Set(f.ID, recordFromFrame(file.SourceID, f)); err != nil {
			return clones, StoreFailure(file.SourceID, err)
		}
		i += k + 1
	}

	return clones, nil
}

// extend grows a match window-by-window from (aStart on priorFile,
// bStart on file) while both sides have a next frame, the ids agree,
// the new tail token verifies, and - for self-matches - growing further
// would not make the two regions overlap in token space (§4.4 step 4,
// Self-matches): the A side's token range must stay entirely before the
// B side's token range, i.e. bStart must stay >= A's growing end index.
func extend(priorFile FileIndex, aStart int, file FileIndex, bStart, windowWidth int, mode Mode, ignoreCase bool) int {
	k := 0
	sameFile := priorFile.SourceID == file.SourceID
	for {
		nextA := aStart + k + 1
		nextB := bStart + k + 1
		if nextA >= len(priorFile.Frames) || nextB >= len(file.Frames) {
			break
		}
		if sameFile && bStart < aStart+(k+1)+windowWidth {
			break
		}
		aFrame := priorFile.Frames[nextA]
		bFrame := file.Frames[nextB]
		if aFrame.ID != bFrame.ID {
			break
		}
		aTail := priorFile.Tokens[aFrame.EndTok-1]
		bTail := file.Tokens[bFrame.EndTok-1]
		if MaskKey(aTail, mode, ignoreCase) != MaskKey(bTail, mode, ignoreCase) {
			break
		}
		k++
	}
	return k
}

// windowEqual verifies a full minTokens window match token-by-token
// rather than trusting the (advisory) hash equality alone (§4.2
// Collision policy).
func windowEqual(aFile FileIndex, aFrame MapFrame, bFile FileIndex, bFrame MapFrame, mode Mode, ignoreCase bool) bool {
	if aFrame.EndTok-aFrame.StartTok != bFrame.EndTok-bFrame.StartTok {
		return false
	}
	width := aFrame.EndTok - aFrame.StartTok
	for j := 0; j < width; j++ {
		aKey := MaskKey(aFile.Tokens[aFrame.StartTok+j], mode, ignoreCase)
		bKey := MaskKey(bFile.Tokens[bFrame.StartTok+j], mode, ignoreCase)
		if aKey != bKey {
			return false
		}
	}
	return true
}

func recordFromFrame(sourceID string, f MapFrame) StoreRecord {
	return StoreRecord{SourceID: sourceID, Range: f.Range, Index: f.Index, StartTok: f.StartTok, EndTok: f.EndTok}
}

func spanFromFrames(file FileIndex, startFrameIdx, endFrameIdx int) CloneSpan {
	startTok := file.Frames[startFrameIdx].StartTok
	endTok := file.Frames[endFrameIdx].EndTok
	first := file.Tokens[startTok]
	last := file.Tokens[endTok-1]
	return CloneSpan{
		SourceID:    file.SourceID,
		StartTok:    startTok,
		EndTok:      endTok,
		Range:       Range{first.Range.Start, last.Range.End},
		StartLine:   first.Line,
		EndLine:     last.Line,
		StartColumn: first.Column,
		EndColumn:   last.Column,
	}
}
