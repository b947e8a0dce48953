// Package discover walks a root directory and produces File records (path
// and format, not yet read) from which cmd/clonewatch builds the
// clone.Source values pkg/clone.Driver.Run consumes, honoring exclude glob
// patterns and a .clonewatchignore file - the file-discovery collaborator
// spec.md places out of the core's scope but which a runnable binary still
// needs.
package discover

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/clonewatch/clonewatch/pkg/clone"
)

// IgnoreFileName is the project-level ignore file discover honors in
// addition to any explicit exclude patterns, one gitignore-style glob per
// line ("#" starts a comment, blank lines are skipped).
const IgnoreFileName = ".clonewatchignore"

// Options controls a Walk.
type Options struct {
	// Root is the directory to walk.
	Root string

	// ExcludePatterns are gitignore-style glob patterns (doublestar
	// syntax) matched against the path relative to Root.
	ExcludePatterns []string

	// UseIgnoreFile additionally loads Root/.clonewatchignore.
	UseIgnoreFile bool

	// FormatsExts maps a clone.Format to the file extensions that
	// belong to it; only files under a recognized extension are
	// returned.
	FormatsExts map[string][]string
}

// File is one discovered source file, not yet read.
type File struct {
	Path   string
	Format clone.Format
}

// Walk finds every file under opts.Root that isn't excluded and whose
// extension maps to a known format.
func Walk(opts Options) ([]File, error) {
	excludes := append([]string{}, opts.ExcludePatterns...)
	if opts.UseIgnoreFile {
		fromFile, err := readIgnoreFile(filepath.Join(opts.Root, IgnoreFileName))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", IgnoreFileName, err)
		}
		excludes = append(excludes, fromFile...)
	}

	extToFormat := make(map[string]clone.Format)
	for format, exts := range opts.FormatsExts {
		for _, ext := range exts {
			extToFormat[ext] = clone.Format(format)
		}
	}

	var files []File
	err := filepath.WalkDir(opts.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(opts.Root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && matchesAny(excludes, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if matchesAny(excludes, rel) {
			return nil
		}

		format, ok := extToFormat[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}
		files = append(files, File{Path: path, Format: format})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, rel)
		if err == nil && ok {
			return true
		}
		// A trailing-slash directory pattern ("vendor/") should also
		// match the bare directory name without a doublestar prefix.
		if strings.HasSuffix(pattern, "/") {
			trimmed := strings.TrimSuffix(pattern, "/")
			if rel == trimmed+"/" || strings.HasPrefix(rel, trimmed+"/") {
				return true
			}
		}
	}
	return false
}

func readIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}
