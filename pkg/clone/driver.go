package clone

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// DefaultWorkerMultiplier mirrors the ratio the rest of this codebase
// uses for mixed I/O-bound file processing workloads.
const DefaultWorkerMultiplier = 2

// SourceError pairs a source that failed to process with the error that
// stopped it, letting Driver.Run report every failure instead of only
// the first one.
type SourceError struct {
	SourceID string
	Err      error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.SourceID, e.Err)
}

// Result is everything produced by running the multi-file driver once.
type Result struct {
	Stat    *Statistic
	Clones  []Clone
	Errors  []SourceError
	Skipped []string
}

// Driver coordinates detection across many files (C7, §5's concurrency
// model): each file gets its own single-threaded Detect pass, but
// multiple files' passes may run concurrently against the same shared
// Store and Registry, which are both safe for concurrent use. A worker
// count of 1 runs strictly sequentially; a count of 0 or less uses
// runtime.NumCPU() * DefaultWorkerMultiplier workers.
type Driver struct {
	Config   Config
	Store    Store
	Workers  int
	Subs     []Subscriber
	detector *Detector
	registry RegistryWriter
}

// NewDriver builds a Driver backed by a single shared store, registry
// and Detector so matches are found across every file it processes.
func NewDriver(cfg Config, store Store, workers int, subs ...Subscriber) *Driver {
	registry := NewMutableRegistry()
	return &Driver{
		Config:   cfg,
		Store:    store,
		Workers:  workers,
		Subs:     subs,
		registry: registry,
		detector: NewDetector(cfg, store, registry, subs...),
	}
}

// Run processes every source, in order of submission for result
// ordering purposes, optionally fanning file processing out across a
// bounded worker pool. Cancelling ctx stops new files from starting;
// files already in flight are allowed to finish so a clone in progress
// is never reported half-extended. Once the configuration has passed
// Validate, Run always closes d.Store before returning and always gives
// every WaitForCompletion subscriber a chance to flush, even when ctx was
// cancelled; an invalid configuration returns at once, before any file
// is processed or the store is closed.
func (d *Driver) Run(ctx context.Context, sources []Source) (*Result, error) {
	if err := d.Config.Validate(); err != nil {
		return nil, err
	}

	stat := NewStatistic()
	result := &Result{Stat: stat}

	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	type fileOutcome struct {
		clones  []Clone
		err     *SourceError
		skipped string
	}
	outcomes := make([]fileOutcome, len(sources))

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				outcomes[i] = fileOutcome{skipped: src.ID}
				return nil
			default:
			}

			clones, err := d.detector.DetectFile(src, stat)
			if err != nil {
				de, ok := err.(*DetectionError)
				if ok && (de.Kind == ErrKindTokenizerError || de.Kind == ErrKindUnknownFormat) {
					outcomes[i] = fileOutcome{skipped: src.ID}
					return nil
				}
				outcomes[i] = fileOutcome{err: &SourceError{SourceID: src.ID, Err: err}}
				if ok && de.Kind == ErrKindStoreUnavailable {
					return err
				}
				return nil
			}
			outcomes[i] = fileOutcome{clones: clones}
			return nil
		})
	}

	runErr := p.Wait()

	for _, o := range outcomes {
		result.Clones = append(result.Clones, o.clones...)
		if o.err != nil {
			result.Errors = append(result.Errors, *o.err)
		}
		if o.skipped != "" {
			result.Skipped = append(result.Skipped, o.skipped)
		}
	}

	for _, s := range d.Subs {
		if w, ok := s.(WaitForCompletion); ok {
			if err := w.WaitForCompletion(); err != nil {
				result.Errors = append(result.Errors, SourceError{SourceID: "<reporter>", Err: err})
			}
		}
	}

	if err := d.Store.Close(); err != nil {
		result.Errors = append(result.Errors, SourceError{SourceID: "<store>", Err: err})
	}

	return result, runErr
}
