// Package fileproc provides concurrent file reading for the driver's
// file-discovery front end.
package fileproc

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap returns nil (ProcessingErrors doesn't wrap a single error).
func (e *ProcessingErrors) Unwrap() error {
	return nil
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O workloads such as reading many small files.
const DefaultWorkerMultiplier = 2

// FileContent pairs a discovered file with its loaded bytes, ready to
// hand to the detector as a clone.Source after a format lookup.
type FileContent struct {
	Path    string
	Content []byte
}

// ReadFiles loads every path's content in parallel using a bounded
// worker pool, skipping (and recording an error for) any file that
// cannot be read or exceeds maxSize bytes. maxSize of 0 means no limit.
// Results are returned in the same order as paths.
func ReadFiles(ctx context.Context, paths []string, maxSize int64) ([]FileContent, *ProcessingErrors) {
	if len(paths) == 0 {
		return nil, nil
	}

	maxWorkers := runtime.NumCPU() * DefaultWorkerMultiplier
	results := make([]FileContent, len(paths))
	present := make([]bool, len(paths))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				return ctx.Err()
			default:
			}

			if maxSize > 0 {
				info, err := os.Stat(path)
				if err != nil {
					errs.Add(path, err)
					return nil
				}
				if info.Size() > maxSize {
					errs.Add(path, fmt.Errorf("file too large: %d bytes (limit: %d)", info.Size(), maxSize))
					return nil
				}
			}

			data, err := os.ReadFile(path)
			if err != nil {
				errs.Add(path, err)
				return nil
			}

			results[i] = FileContent{Path: path, Content: data}
			present[i] = true
			return nil
		})
	}
	_ = p.Wait()

	ordered := make([]FileContent, 0, len(paths))
	for i, ok := range present {
		if ok {
			ordered = append(ordered, results[i])
		}
	}

	if !errs.HasErrors() {
		return ordered, nil
	}
	return ordered, errs
}
