package cache

import (
	"encoding/json"

	"github.com/clonewatch/clonewatch/pkg/clone"
)

// TokenCache memoizes a source file's tokenize+frame result keyed by its
// BLAKE3 content hash, so a file that hasn't changed across repeated runs
// (watch mode, CI re-runs against a warm cache dir) skips the tokenizer and
// frame builder entirely.
type TokenCache struct {
	cache *Cache
	mode  clone.Mode
}

// frameSet is what gets persisted per cache key: the mode-significant token
// slice and the frames built over it, exactly what FileIndex needs.
type frameSet struct {
	Tokens []clone.Token     `json:"tokens"`
	Frames []clone.MapFrame `json:"frames"`
}

// NewTokenCache wraps an existing Cache for clone package's significant-token
// and frame memoization. mode is part of the cache key's semantics: a file
// cached under ModeStrict must never be served to a ModeWeak lookup.
func NewTokenCache(c *Cache, mode clone.Mode) *TokenCache {
	return &TokenCache{cache: c, mode: mode}
}

// Lookup returns the cached significant tokens and frames for a file whose
// content hashes to contentHash, if present and still valid for sourceID.
func (tc *TokenCache) Lookup(sourceID, contentHash string) ([]clone.Token, []clone.MapFrame, bool) {
	key := tc.key(sourceID)
	raw, ok := tc.cache.GetWithHash(key, contentHash)
	if !ok {
		return nil, nil, false
	}

	var fs frameSet
	if err := json.Unmarshal(raw, &fs); err != nil {
		return nil, nil, false
	}
	return fs.Tokens, fs.Frames, true
}

// Store persists the significant tokens and frames built for a file, keyed
// by its content hash, for reuse on a later run.
func (tc *TokenCache) Store(sourceID, contentHash string, tokens []clone.Token, frames []clone.MapFrame) error {
	fs := frameSet{Tokens: tokens, Frames: frames}
	data, err := json.Marshal(fs)
	if err != nil {
		return err
	}
	return tc.cache.SetWithHash(tc.key(sourceID), contentHash, data)
}

func (tc *TokenCache) key(sourceID string) string {
	return string(tc.mode) + ":" + sourceID
}
