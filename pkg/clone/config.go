package clone

// Config holds the recognized detection options (§6). All fields have
// sane zero-value-free defaults via DefaultConfig; the CLI config loader
// (pkg/config) decodes onto a copy of DefaultConfig so unset fields never
// fall through to Go's zero values.
type Config struct {
	// MinLines is the minimum clone size in lines, checked at validation
	// time (§4.5 MinLines validator).
	MinLines int

	// MaxLines rejects clones larger than this many lines. Zero disables
	// the check.
	MaxLines int

	// MinTokens is both the sliding window width (§4.2) and the minimum
	// covered-token count re-checked at validation time.
	MinTokens int

	// MaxSize rejects clones whose fragment exceeds this many bytes.
	// Zero disables the check.
	MaxSize int

	// Mode selects mask-key derivation (§3 Mask key).
	Mode Mode

	// IgnoreCase lowercases mask keys for case-insensitive languages.
	IgnoreCase bool

	// FormatsExts maps a format id to the file extensions the discovery
	// collaborator should associate with it. The core never reads this
	// itself; it is surfaced here only so a single Config value can be
	// shared with the external layer for reporting (§6).
	FormatsExts map[string][]string
}

// DefaultConfig returns the documented defaults (§6).
func DefaultConfig() Config {
	return Config{
		MinLines:   5,
		MaxLines:   1000,
		MinTokens:  50,
		MaxSize:    0,
		Mode:       ModeMild,
		IgnoreCase: false,
	}
}

// Validate rejects nonsensical thresholds per §7 ConfigInvalid. It must be
// called before any file is processed; a Driver refuses to run otherwise.
func (c Config) Validate() error {
	switch {
	case c.MinTokens < 1:
		return ConfigFailure("minTokens must be >= 1")
	case c.MinLines < 1:
		return ConfigFailure("minLines must be >= 1")
	case c.MaxLines != 0 && c.MaxLines < c.MinLines:
		return ConfigFailure("maxLines must be >= minLines")
	case c.MaxSize < 0:
		return ConfigFailure("maxSize must be >= 0")
	case c.Mode != ModeStrict && c.Mode != ModeMild && c.Mode != ModeWeak:
		return ConfigFailure("mode must be one of strict, mild, weak")
	}
	return nil
}
