package metadata_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/docs-crawler/internal/metadata"
)

func TestLogFileSink_TruncatesOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	if err := os.WriteFile(path, []byte("stale content from a previous run\n"), 0o644); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	sink, err := metadata.NewLogFileSink(path, true)
	if err != nil {
		t.Fatalf("NewLogFileSink: %v", err)
	}
	sink.RecordFetch("http://example.com/", 200, 10*time.Millisecond, "text/html", 0, 0)
	sink.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if strings.Contains(string(content), "stale content") {
		t.Errorf("log file was not truncated on open: %s", content)
	}
	if !strings.Contains(string(content), "FETCH") {
		t.Errorf("expected a FETCH line, got: %s", content)
	}
}

func TestLogFileSink_VerboseFalseSuppressesFetchAndArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	sink, err := metadata.NewLogFileSink(path, false)
	if err != nil {
		t.Fatalf("NewLogFileSink: %v", err)
	}
	sink.RecordFetch("http://example.com/", 200, time.Millisecond, "text/html", 0, 0)
	sink.RecordArtifact(metadata.ArtifactStoredPage, "http://example.com/", nil)
	sink.RecordError(time.Now(), "fetcher", "Get", metadata.CauseNetworkFailure, "timeout", nil)
	sink.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if strings.Contains(string(content), "FETCH") || strings.Contains(string(content), "ARTIFACT") {
		t.Errorf("verbose=false should suppress FETCH/ARTIFACT lines, got: %s", content)
	}
	if !strings.Contains(string(content), "ERROR") {
		t.Errorf("errors should always be recorded regardless of verbose, got: %s", content)
	}
}

func TestLogFileSink_FinalStatsAlwaysRecorded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	sink, err := metadata.NewLogFileSink(path, false)
	if err != nil {
		t.Fatalf("NewLogFileSink: %v", err)
	}
	sink.RecordFinalCrawlStats(42, 3, 7, 2*time.Second)
	sink.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(content), "SUMMARY") || !strings.Contains(string(content), "pages=42") {
		t.Errorf("expected a SUMMARY line with pages=42, got: %s", content)
	}
}

var _ metadata.MetadataSink = (*metadata.LogFileSink)(nil)
var _ metadata.CrawlFinalizer = (*metadata.LogFileSink)(nil)
