// Package config loads clonewatch's on-disk configuration: detection
// thresholds, discovery excludes, cache and report settings, layered through
// koanf and validated against an embedded JSON schema before the decoded
// clone.Config is ever handed to the detector.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsonparser "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/clonewatch/clonewatch/pkg/clone"
)

// Config holds every on-disk option, mirroring pkg/clone.Config for the
// detection knobs and adding the external layer's own (discovery excludes,
// cache, output, CI gate).
type Config struct {
	Detection DetectionConfig `koanf:"detection"`
	Exclude   ExcludeConfig   `koanf:"exclude"`
	Cache     CacheConfig     `koanf:"cache"`
	Output    OutputConfig    `koanf:"output"`
	Gate      GateConfig      `koanf:"gate"`
}

// DetectionConfig mirrors clone.Config's fields with koanf tags so it can
// be decoded straight off a config file; ToClone converts it into the
// value the core actually consumes.
type DetectionConfig struct {
	MinLines    int                 `koanf:"min_lines"`
	MaxLines    int                 `koanf:"max_lines"`
	MinTokens   int                 `koanf:"min_tokens"`
	MaxSize     int                 `koanf:"max_size"`
	Mode        string              `koanf:"mode"`
	IgnoreCase  bool                `koanf:"ignore_case"`
	FormatsExts map[string][]string `koanf:"formats_exts"`
}

// ToClone converts the decoded detection config into a clone.Config.
func (d DetectionConfig) ToClone() clone.Config {
	return clone.Config{
		MinLines:    d.MinLines,
		MaxLines:    d.MaxLines,
		MinTokens:   d.MinTokens,
		MaxSize:     d.MaxSize,
		Mode:        clone.Mode(d.Mode),
		IgnoreCase:  d.IgnoreCase,
		FormatsExts: d.FormatsExts,
	}
}

// ExcludeConfig defines which discovered files internal/discover should
// skip, using gitignore-style glob syntax (§ internal/discover).
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Gitignore bool     `koanf:"gitignore"`
}

// CacheConfig controls internal/cache's token/frame memoization.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // hours
}

// OutputConfig controls internal/reportfmt's rendering.
type OutputConfig struct {
	Format  string `koanf:"format"` // table, json, toon
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// GateConfig controls cmd/clonewatch's --silent CI-gate mode: the run
// fails (non-zero exit) when the overall duplication percentage exceeds
// MaxPercentage.
type GateConfig struct {
	MaxPercentage float64 `koanf:"max_percentage"`
}

// DefaultConfig returns the documented defaults, detection settings mirrored
// from clone.DefaultConfig.
func DefaultConfig() *Config {
	det := clone.DefaultConfig()
	return &Config{
		Detection: DetectionConfig{
			MinLines:   det.MinLines,
			MaxLines:   det.MaxLines,
			MinTokens:  det.MinTokens,
			MaxSize:    det.MaxSize,
			Mode:       string(det.Mode),
			IgnoreCase: det.IgnoreCase,
			FormatsExts: map[string][]string{
				"go":         {".go"},
				"python":     {".py"},
				"typescript": {".ts"},
				"tsx":        {".tsx"},
				"javascript": {".js", ".jsx"},
				"java":       {".java"},
				"c":          {".c", ".h"},
				"cpp":        {".cc", ".cpp", ".cxx", ".hpp"},
				"csharp":     {".cs"},
				"ruby":       {".rb"},
				"php":        {".php"},
				"rust":       {".rs"},
				"bash":       {".sh"},
			},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"**/*_test.go",
				"**/vendor/**",
				"**/node_modules/**",
				"**/dist/**",
				"**/build/**",
				"**/.git/**",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".clonewatch/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "table",
			Color:  true,
		},
		Gate: GateConfig{
			MaxPercentage: 0, // 0 disables the gate
		},
	}
}

//go:embed schema.json
var schemaJSON []byte

// schemaCompiled is built once from the embedded schema text, on first use.
var schemaCompiled *jsonschema.Schema

func compiledSchema() (*jsonschema.Schema, error) {
	if schemaCompiled != nil {
		return schemaCompiled, nil
	}
	var doc any
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("clonewatch-config.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := compiler.Compile("clonewatch-config.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	schemaCompiled = sch
	return sch, nil
}

// validateAgainstSchema validates the raw decoded koanf map against the
// embedded schema, ahead of clone.Config.Validate(). This turns a
// malformed YAML/TOML/JSON document (wrong types, unknown keys under a
// strict subtree) into a schema error instead of a silent zero-value
// fall-through.
func validateAgainstSchema(raw map[string]any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	return sch.Validate(raw)
}

// Load reads and decodes a config file, validating it against the embedded
// schema and then against clone.Config's own invariants.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = jsonparser.Parser()
	default:
		parser = yaml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	if err := validateAgainstSchema(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s failed schema validation: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s failed validation: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the decoded config's detection settings against
// clone.Config's own invariants (§7 ConfigInvalid).
func (c *Config) Validate() error {
	return c.Detection.ToClone().Validate()
}

// FindConfigFile searches standard locations for a clonewatch config file.
func FindConfigFile() string {
	names := []string{".clonewatch.yaml", ".clonewatch.yml", ".clonewatch.toml", ".clonewatch.json"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// LoadResult carries the loaded configuration and where it came from.
type LoadResult struct {
	Config *Config
	Source string // empty when no config file was found and defaults were used
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
}

// WithPath pins an explicit config file path instead of searching standard
// locations.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) { o.path = path }
}

// LoadConfig loads configuration with the given options, falling back to
// DefaultConfig when no file is found, and always validating before return.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	path := o.path
	if path == "" {
		path = FindConfigFile()
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg *Config
	var err error
	if path == "" {
		cfg = DefaultConfig()
	} else {
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &LoadResult{Config: cfg, Source: path}, nil
}
