package metadata

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// LogFileSink writes every recorded event as a line to a single log file,
// truncated on open (matching the crawler's own `std::ofstream(path,
// trunc)` discipline — each run gets a fresh log, not an appended one).
// When verbose is false only errors are written; fetches and artifacts are
// silently dropped, matching config's verbose_logging gate.
type LogFileSink struct {
	mu      sync.Mutex
	file    io.WriteCloser
	logger  *log.Logger
	verbose bool
}

// NewLogFileSink opens filename for writing (truncating any existing
// content) and returns a sink that writes to it.
func NewLogFileSink(filename string, verbose bool) (*LogFileSink, error) {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("metadata: opening log file %s: %w", filename, err)
	}
	return &LogFileSink{
		file:    f,
		logger:  log.New(f, "", log.LstdFlags),
		verbose: verbose,
	}, nil
}

// Close releases the underlying file.
func (s *LogFileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

func (s *LogFileSink) RecordError(observedAt time.Time, packageName string, action string, cause ErrorCause, details string, attrs []Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Printf("ERROR pkg=%s action=%s cause=%s details=%q%s", packageName, action, causeString(cause), details, formatAttrs(attrs))
}

func (s *LogFileSink) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount int, crawlDepth int) {
	if !s.verbose {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Printf("FETCH url=%s status=%d duration=%s content_type=%s retries=%d depth=%d",
		fetchUrl, httpStatus, duration, contentType, retryCount, crawlDepth)
}

func (s *LogFileSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	if !s.verbose {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Printf("ARTIFACT kind=%d path=%s%s", kind, path, formatAttrs(attrs))
}

func (s *LogFileSink) RecordAssetFetch(fetchUrl string, httpStatus int, duration time.Duration, retryCount int) {
	if !s.verbose {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Printf("ASSET_FETCH url=%s status=%d duration=%s retries=%d", fetchUrl, httpStatus, duration, retryCount)
}

// RecordFinalCrawlStats implements CrawlFinalizer; the summary is always
// written regardless of verbose_logging, since it is emitted exactly once.
func (s *LogFileSink) RecordFinalCrawlStats(totalPages int, totalErrors int, totalAssets int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Printf("SUMMARY pages=%d errors=%d assets=%d duration=%s", totalPages, totalErrors, totalAssets, duration)
}

func formatAttrs(attrs []Attribute) string {
	if len(attrs) == 0 {
		return ""
	}
	out := ""
	for _, a := range attrs {
		out += fmt.Sprintf(" %s=%s", a.Key, a.Value)
	}
	return out
}

func causeString(cause ErrorCause) string {
	switch cause {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}
