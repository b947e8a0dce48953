package clone

import (
	"sync"
	"time"
)

// Position locates a single point in a source file.
type Position struct {
	Line     int
	Column   int
	Position int // byte offset
}

// CloneLocation is one side of a discovered duplicate (§3 Clone).
type CloneLocation struct {
	SourceID string
	Start    Position
	End      Position
	Range    Range
	Tokens   int // significant tokens the span covers
	Fragment string
}

// Clone is a discovered duplicate, immutable once emitted (§3 Clone,
// §5 Ordering guarantees).
type Clone struct {
	Format       Format
	FoundDate    time.Time
	DuplicationA CloneLocation
	DuplicationB CloneLocation
}

// CloneSpan is one side of a match still under construction: token
// indices into the filtered significant-token sequence plus the byte
// and line extents they cover. The matcher works in token-index space;
// validators and the coordinator convert to byte/line space for Clone.
type CloneSpan struct {
	SourceID    string
	StartTok    int
	EndTok      int // exclusive
	Range       Range
	StartLine   int
	EndLine     int
	StartColumn int
	EndColumn   int
}

// TokenCount is the number of significant tokens the span covers.
func (s CloneSpan) TokenCount() int { return s.EndTok - s.StartTok }

// RawClone is a clone as emitted by the matcher, before the validator
// pipeline has checked size thresholds or extracted the source fragment
// (§4.4 step 5, §4.5).
type RawClone struct {
	Format Format
	A      CloneSpan
	B      CloneSpan
}

// FormatStat aggregates counters for a single format (§3 Statistic).
type FormatStat struct {
	Sources          int
	Lines            int
	Tokens           int
	Clones           int
	DuplicatedLines  int
	DuplicatedTokens int
	Percentage       float64
	PercentageTokens float64
}

// Statistic is the run-wide aggregate, overall and broken down by format.
// It mutates only through AddSource/AddClone, called exclusively by the
// detector coordinator and multi-file driver (§3 Lifecycle).
type Statistic struct {
	mu       sync.Mutex
	Total    FormatStat
	ByFormat map[Format]*FormatStat
}

// NewStatistic returns an empty, ready-to-use Statistic.
func NewStatistic() *Statistic {
	return &Statistic{ByFormat: make(map[Format]*FormatStat)}
}

func (s *Statistic) formatEntry(format Format) *FormatStat {
	fs, ok := s.ByFormat[format]
	if !ok {
		fs = &FormatStat{}
		s.ByFormat[format] = fs
	}
	return fs
}

// AddSource records that one file of format, with the given line and
// significant-token counts, was processed.
func (s *Statistic) AddSource(format Format, lines, tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fs := s.formatEntry(format)
	fs.Sources++
	fs.Lines += lines
	fs.Tokens += tokens
	s.Total.Sources++
	s.Total.Lines += lines
	s.Total.Tokens += tokens
	s.recompute(fs)
}

// AddClone records one accepted clone's contribution to duplication
// counters. Both sides of a clone are counted, matching the source
// language's convention of attributing duplication to every participant.
func (s *Statistic) AddClone(c Clone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	linesA := c.DuplicationA.End.Line - c.DuplicationA.Start.Line + 1
	linesB := c.DuplicationB.End.Line - c.DuplicationB.Start.Line + 1
	tokensA := c.DuplicationA.Tokens
	tokensB := c.DuplicationB.Tokens

	fs := s.formatEntry(c.Format)
	fs.Clones++
	fs.DuplicatedLines += linesA + linesB
	fs.DuplicatedTokens += tokensA + tokensB
	s.Total.Clones++
	s.Total.DuplicatedLines += linesA + linesB
	s.Total.DuplicatedTokens += tokensA + tokensB
	s.recompute(fs)
}

func (s *Statistic) recompute(fs *FormatStat) {
	if fs.Lines > 0 {
		fs.Percentage = 100 * float64(fs.DuplicatedLines) / float64(fs.Lines)
	}
	if fs.Tokens > 0 {
		fs.PercentageTokens = 100 * float64(fs.DuplicatedTokens) / float64(fs.Tokens)
	}
	if s.Total.Lines > 0 {
		s.Total.Percentage = 100 * float64(s.Total.DuplicatedLines) / float64(s.Total.Lines)
	}
	if s.Total.Tokens > 0 {
		s.Total.PercentageTokens = 100 * float64(s.Total.DuplicatedTokens) / float64(s.Total.Tokens)
	}
}
