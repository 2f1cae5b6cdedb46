package metadata

import "time"

// ArtifactKind classifies what RecordArtifact is reporting on.
type ArtifactKind int

const (
	ArtifactUnknown ArtifactKind = iota
	ArtifactStoredPage
)

// MetadataSink is the write side of the crawl's observability log: every
// package on the fetch/extract/store path reports through it. A sink never
// returns an error and must never be consulted to make a scheduling,
// retry, or termination decision — see ErrorCause's rules in data.go.
type MetadataSink interface {
	RecordError(observedAt time.Time, packageName string, action string, cause ErrorCause, details string, attrs []Attribute)
	RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount int, crawlDepth int)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
	RecordAssetFetch(fetchUrl string, httpStatus int, duration time.Duration, retryCount int)
}

// CrawlFinalizer records the terminal crawl summary exactly once, after
// termination has already been decided by the engine.
type CrawlFinalizer interface {
	RecordFinalCrawlStats(totalPages int, totalErrors int, totalAssets int, duration time.Duration)
}
