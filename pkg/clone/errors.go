package clone

import "fmt"

// ErrorKind classifies an error surfaced by the detection pipeline, per
// the error handling contract: per-file errors are isolated, store
// errors are fatal unless the caller opts to continue.
type ErrorKind string

const (
	ErrKindUnknownFormat    ErrorKind = "UnknownFormat"
	ErrKindTokenizerError   ErrorKind = "TokenizerError"
	ErrKindStoreUnavailable ErrorKind = "StoreUnavailable"
	ErrKindConfigInvalid    ErrorKind = "ConfigInvalid"
)

// DetectionError wraps an underlying error with the kind the pipeline
// classified it as, plus the source it was processing when it occurred.
type DetectionError struct {
	Kind     ErrorKind
	SourceID string
	Err      error
}

func (e *DetectionError) Error() string {
	if e.SourceID != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.SourceID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}

// UnknownFormat reports that format is not registered with the tokenizer.
func UnknownFormat(format Format) *DetectionError {
	return &DetectionError{
		Kind: ErrKindUnknownFormat,
		Err:  fmt.Errorf("unknown format %q", format),
	}
}

// TokenizerFailure wraps a lexing failure for sourceID.
func TokenizerFailure(sourceID string, err error) *DetectionError {
	return &DetectionError{Kind: ErrKindTokenizerError, SourceID: sourceID, Err: err}
}

// StoreFailure wraps a backing-store I/O failure.
func StoreFailure(sourceID string, err error) *DetectionError {
	return &DetectionError{Kind: ErrKindStoreUnavailable, SourceID: sourceID, Err: err}
}

// ConfigFailure reports a nonsensical configuration value. Callers must
// fail fast on this before processing any file.
func ConfigFailure(reason string) *DetectionError {
	return &DetectionError{Kind: ErrKindConfigInvalid, Err: fmt.Errorf("%s", reason)}
}
