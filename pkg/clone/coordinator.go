package clone

import "sync"

// Source is one file handed to the Detector: its identity, language and
// full text (§6 "Inputs from the file-discovery collaborator").
//
// PrebuiltTokens/PrebuiltFrames let an external cache (internal/cache)
// skip C1 (Tokenize) and C2 (BuildFrames) for a file whose content
// hasn't changed since a prior run: when PrebuiltFrames is non-nil,
// DetectFile uses it directly instead of recomputing. Text is still
// required even when prebuilt frames are supplied, since the validator
// needs it to extract a clone's source fragment.
type Source struct {
	ID             string
	Format         Format
	Text           string
	PrebuiltTokens []Token
	PrebuiltFrames []MapFrame
}

// Detector runs the per-file pipeline: tokenize, enrich with semantic
// markers, build frames, run the matcher against the shared store and
// registry, validate, and emit lifecycle events (§4.6). Each DetectFile
// call handles one file; the Driver owns fan-out across files and shares
// one Detector across its workers, so DetectFile may run for several
// files at once (the sources map is guarded for that).
type Detector struct {
	Config   Config
	Store    Store
	Registry RegistryWriter
	Subs     []Subscriber

	mu      sync.RWMutex
	sources map[string]string
}

// NewDetector builds a Detector sharing store and registry across every
// file it is asked to process, so matches can be found across files.
func NewDetector(cfg Config, store Store, registry RegistryWriter, subs ...Subscriber) *Detector {
	return &Detector{
		Config:   cfg,
		Store:    store,
		Registry: registry,
		Subs:     subs,
		sources:  make(map[string]string),
	}
}

// Content implements SourceProvider by returning the text of whichever
// source has been processed so far in this Detector's lifetime.
func (d *Detector) Content(sourceID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	text, ok := d.sources[sourceID]
	return text, ok
}

// DetectFile runs the full pipeline for one source, returning the
// accepted clones. Every error it returns has already been translated
// into the relevant SKIPPED_SOURCE/STORE_ERROR event before the call
// returns, per §7's error taxonomy.
func (d *Detector) DetectFile(src Source, stat *Statistic) ([]Clone, error) {
	dispatch(d.Subs, Event{Name: EventMatchSource, SourceID: src.ID, Format: src.Format})

	var significant []Token
	var frames []MapFrame
	if src.PrebuiltFrames != nil {
		significant = src.PrebuiltTokens
		frames = src.PrebuiltFrames
	} else {
		tokens, err := Tokenize(src.Text, src.Format)
		if err != nil {
			dispatch(d.Subs, Event{Name: EventSkippedSource, SourceID: src.ID, Format: src.Format, Err: err})
			return nil, err
		}
		tokens = EnrichWithSemanticTokens(src.Text, src.Format, tokens)

		significant = FilterSignificant(tokens, d.Config.Mode, d.Config.IgnoreCase)
		frames = BuildFramesFromSignificant(src.ID, significant, d.Config.Mode, d.Config.MinTokens, d.Config.IgnoreCase)
	}

	d.mu.Lock()
	d.sources[src.ID] = src.Text
	d.mu.Unlock()
	lines := countLines(src.Text)
	stat.AddSource(src.Format, lines, len(significant))

	file := FileIndex{SourceID: src.ID, Format: src.Format, Tokens: significant, Frames: frames}

	dispatch(d.Subs, Event{Name: EventStartDetection, SourceID: src.ID, Format: src.Format, TokensCount: len(significant)})

	raw, err := Detect(file, d.Store, d.Registry, d.Config.Mode, d.Config.IgnoreCase)
	d.Registry.Record(file)
	if err != nil {
		dispatch(d.Subs, Event{Name: EventStoreError, SourceID: src.ID, Format: src.Format, Err: err})
		return nil, err
	}

	clones := Validate(raw, d.Config, d)
	for _, c := range clones {
		stat.AddClone(c)
		dispatch(d.Subs, Event{Name: EventCloneFound, SourceID: src.ID, Format: src.Format, Clone: c})
	}

	dispatch(d.Subs, Event{Name: EventEnd, SourceID: src.ID, Format: src.Format, Stat: stat})
	return clones, nil
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	lines := 1
	for _, c := range text {
		if c == '\n' {
			lines++
		}
	}
	return lines
}
