package storage

import (
	"fmt"

	"github.com/rohmanhakim/docs-crawler/internal/metadata"
	"github.com/rohmanhakim/docs-crawler/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCauseOpenFailed   StorageErrorCause = "database open failed"
	ErrCauseSchemaFailed StorageErrorCause = "schema setup failed"
	ErrCauseWriteFailure StorageErrorCause = "write failed"
	ErrCauseQueryFailure StorageErrorCause = "query failed"
	ErrCauseReadOnly     StorageErrorCause = "store is read-only"
)

type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
	Path      string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %s", e.Cause, e.Message)
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapStorageErrorToMetadataCause maps storage-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStorageErrorToMetadataCause(err *StorageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseOpenFailed, ErrCauseSchemaFailed, ErrCauseWriteFailure, ErrCauseQueryFailure:
		return metadata.CauseStorageFailure
	case ErrCauseReadOnly:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
