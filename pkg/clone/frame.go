package clone

import "github.com/cespare/xxhash/v2"

// primeMod is a Mersenne prime (2^61 - 1) used as the modulus for the
// frame rolling hash. Two operands already reduced mod primeMod still
// multiply out to roughly 2^122, well past a uint64's range, so every
// rolling-hash multiply below must go through mulMod rather than a bare
// '*' - a bare product would wrap mod 2^64 before the '% primeMod'
// reduction, making the result depend on bits the reduction was meant to
// discard and breaking the "same window contents -> same id" contract
// the matcher and store both rely on. primeMod is large enough that
// incidental hash collisions between unrelated windows are vanishingly
// rare regardless; the matcher still verifies every candidate by
// comparing mask-key sequences token-by-token (§4.2 Collision policy),
// so correctness never depends on that choice alone.
const primeMod uint64 = (1 << 61) - 1

// rollingBase is the polynomial base for the frame rolling hash.
const rollingBase uint64 = 1000003

// MapFrame is a sliding window of exactly minTokens significant tokens
// (§3 MapFrame). Frames are built over the filtered, mode-significant
// token sequence, not the raw token sequence.
type MapFrame struct {
	ID       uint64
	SourceID string
	Index    int
	Range    Range
	StartTok int
	EndTok   int
}

// BuildFrames slides a window of width minTokens across tokens, dropping
// tokens whose mask key is empty under mode first (§4.2). The window
// hash is a rolling polynomial hash over each token's digest (itself an
// xxhash of the token's mask key), so rolling an incoming/outgoing token
// costs O(|key|) to digest plus O(1) to update the running hash - never
// O(minTokens) (§4.2 "Rolling updates must be O(|k|) per frame").
func BuildFrames(sourceID string, tokens []Token, mode Mode, minTokens int, ignoreCase bool) []MapFrame {
	return BuildFramesFromSignificant(sourceID, FilterSignificant(tokens, mode, ignoreCase), mode, minTokens, ignoreCase)
}

// FilterSignificant drops every token whose mask key is empty under
// mode, returning the sequence BuildFrames slides its window across.
// Callers that need the same token indexing BuildFrames used (the
// matcher, via FileIndex) must derive their token slice this way rather
// than passing the raw Tokenize output.
func FilterSignificant(tokens []Token, mode Mode, ignoreCase bool) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if MaskKey(t, mode, ignoreCase) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// BuildFramesFromSignificant builds frames directly over an
// already-filtered significant-token sequence (as returned by
// FilterSignificant), avoiding re-filtering when a caller needs to keep
// that slice around (as FileIndex does).
func BuildFramesFromSignificant(sourceID string, significantTokens []Token, mode Mode, minTokens int, ignoreCase bool) []MapFrame {
	type sigTok struct {
		tok    Token
		digest uint64
	}

	significant := make([]sigTok, len(significantTokens))
	for i, t := range significantTokens {
		key := MaskKey(t, mode, ignoreCase)
		significant[i] = sigTok{tok: t, digest: xxhash.Sum64String(key) % primeMod}
	}

	n := len(significant)
	if n < minTokens {
		return nil
	}

	basePowWindow := modPow(rollingBase, uint64(minTokens-1), primeMod)

	var hash uint64
	for i := 0; i < minTokens; i++ {
		hash = (mulMod(hash, rollingBase, primeMod) + significant[i].digest) % primeMod
	}

	frames := make([]MapFrame, 0, n-minTokens+1)
	frames = append(frames, newFrame(sourceID, hash, significant[0].tok, significant[minTokens-1].tok, 0, 0, minTokens))

	for i := minTokens; i < n; i++ {
		outgoing := significant[i-minTokens].digest
		incoming := significant[i].digest
		hash = (hash + primeMod - mulMod(outgoing, basePowWindow, primeMod)) % primeMod
		hash = (mulMod(hash, rollingBase, primeMod) + incoming) % primeMod

		startTok := i - minTokens + 1
		idx := startTok
		frames = append(frames, newFrame(sourceID, hash, significant[startTok].tok, significant[i].tok, idx, startTok, i+1))
	}

	return frames
}

func newFrame(sourceID string, hash uint64, first, last Token, index, startTok, endTok int) MapFrame {
	return MapFrame{
		ID:       hash,
		SourceID: sourceID,
		Index:    index,
		Range:    Range{first.Range.Start, last.Range.End},
		StartTok: startTok,
		EndTok:   endTok,
	}
}

func modPow(base, exp, mod uint64) uint64 {
	result := uint64(1)
	base %= mod
	for exp > 0 {
		if exp&1 == 1 {
			result = mulMod(result, base, mod)
		}
		base = mulMod(base, base, mod)
		exp >>= 1
	}
	return result
}

// mulMod computes a*b mod m without overflow, using the fact that m fits
// in 61 bits so splitting isn't required for our operand sizes - both
// operands are already reduced mod primeMod (< 2^61), and the widest
// platform uint64 multiply (2^61 * 2^61 = 2^122) would overflow, so we
// fall back to big-step multiplication via repeated doubling.
func mulMod(a, b, m uint64) uint64 {
	var result uint64
	a %= m
	for b > 0 {
		if b&1 == 1 {
			result = (result + a) % m
		}
		a = (a * 2) % m
		b >>= 1
	}
	return result
}
