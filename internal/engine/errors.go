package engine

import (
	"fmt"

	"github.com/rohmanhakim/docs-crawler/pkg/failure"
)

type EngineErrorCause string

const (
	ErrCauseNoSeeds       EngineErrorCause = "no seed URLs"
	ErrCauseSeedFileOpen  EngineErrorCause = "seed file unreadable"
	ErrCauseStoreOpen     EngineErrorCause = "store unavailable"
	ErrCauseReportWrite   EngineErrorCause = "performance report unwritable"
)

// EngineError reports a failure in the engine's own bookkeeping — loading
// seeds, opening the store, writing the final report — as distinct from a
// failure of one crawled URL, which is always recoverable and never
// surfaces past process().
type EngineError struct {
	Message   string
	Retryable bool
	Cause     EngineErrorCause
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error: %s: %s", e.Cause, e.Message)
}

func (e *EngineError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
