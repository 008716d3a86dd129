// internal/provision/errors.go
//
// Workflow-level error taxonomy.
//
// The store contributes ErrNotFound, ErrConflict, and ErrQuotaExceeded
// (internal/resource); this file adds the classes a workflow itself can
// produce.  Validation errors never follow a side effect; provider and
// storage errors during create arrive only after the applied side effects
// have been unwound, so the caller always sees the root cause.
package provision

import (
	"errors"
	"fmt"
)

// ErrUploadTooLarge rejects an archive above the configured ceiling
// before the extractor ever runs.
var ErrUploadTooLarge = errors.New("provision: upload exceeds size limit")

// ValidationError reports syntactically or policy-invalid input.  Reason
// is safe to show to the client verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ProviderError wraps a DNS provider failure or timeout.
type ProviderError struct {
	Op  string // "create A record", "delete CNAME record", ...
	Err error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("dns provider: %s: %v", e.Op, e.Err) }
func (e *ProviderError) Unwrap() error { return e.Err }

// StorageError wraps a filesystem extraction, write, or move failure.
type StorageError struct {
	Op  string // "extract site", "move site folder", ...
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }
