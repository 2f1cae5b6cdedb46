package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/docs-crawler/internal/storage"
)

func openTestStore(t *testing.T, mode storage.Mode, sink *metadataSinkMock) (*storage.SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crawl.db")
	store, err := storage.Open(path, mode, sink)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestSQLiteStore_InsertThenSeenIsTrue(t *testing.T) {
	sink := &metadataSinkMock{}
	store, _ := openTestStore(t, storage.ModeCrawler, sink)

	seen, err := store.Seen("https://example.com/")
	if err != nil || seen {
		t.Fatalf("expected unseen URL before insert, got seen=%v err=%v", seen, err)
	}

	if _, err := store.Insert("https://example.com/", "hello world"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	seen, err = store.Seen("https://example.com/")
	if err != nil || !seen {
		t.Fatalf("expected seen=true after insert, got seen=%v err=%v", seen, err)
	}
	if !sink.recordArtifactCalled {
		t.Error("expected Insert to record an artifact")
	}
}

func TestSQLiteStore_InsertIsIdempotent(t *testing.T) {
	store, _ := openTestStore(t, storage.ModeCrawler, nil)

	first, err := store.Insert("https://example.com/page", "version one")
	if err != nil {
		t.Fatalf("first Insert() error = %v", err)
	}
	second, err := store.Insert("https://example.com/page", "version two")
	if err != nil {
		t.Fatalf("second Insert() error = %v", err)
	}
	if first.URL() != second.URL() {
		t.Errorf("expected repeat insert to be a no-op keyed on the same URL, got %q and %q", first.URL(), second.URL())
	}
}

func TestSQLiteStore_CrawlerModeDestroysExistingStore(t *testing.T) {
	sink := &metadataSinkMock{}
	store, path := openTestStore(t, storage.ModeCrawler, sink)
	if _, err := store.Insert("https://example.com/", "content"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	store.Close()

	reopened, err := storage.Open(path, storage.ModeCrawler, sink)
	if err != nil {
		t.Fatalf("reopen in crawler mode error = %v", err)
	}
	defer reopened.Close()

	seen, err := reopened.Seen("https://example.com/")
	if err != nil {
		t.Fatalf("Seen() error = %v", err)
	}
	if seen {
		t.Error("expected a fresh crawler-mode store to have no prior rows")
	}
}

func TestSQLiteStore_SearcherModeIsReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawl.db")
	writer, err := storage.Open(path, storage.ModeCrawler, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := writer.Insert("https://example.com/", "content"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	writer.Close()

	reader, err := storage.Open(path, storage.ModeSearcher, nil)
	if err != nil {
		t.Fatalf("Open() in searcher mode error = %v", err)
	}
	defer reader.Close()

	seen, err := reader.Seen("https://example.com/")
	if err != nil || !seen {
		t.Fatalf("expected searcher mode to see the writer's row, got seen=%v err=%v", seen, err)
	}

	if _, err := reader.Insert("https://example.com/new", "content"); err == nil {
		t.Error("expected Insert to fail against a read-only store")
	}
}

func TestSQLiteStore_SearchMatchesContentSubstring(t *testing.T) {
	store, _ := openTestStore(t, storage.ModeCrawler, nil)

	if _, err := store.Insert("https://example.com/a", "the quick brown fox"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := store.Insert("https://example.com/b", "lazy dog sleeps"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	urls, err := store.Search("brown")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.com/a" {
		t.Fatalf("expected exactly [https://example.com/a], got %v", urls)
	}

	urls, err = store.Search("nonexistent-term")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("expected no matches, got %v", urls)
	}
}

func TestSQLiteStore_SearchTreatsPercentAndUnderscoreAsLiteral(t *testing.T) {
	store, _ := openTestStore(t, storage.ModeCrawler, nil)

	if _, err := store.Insert("https://example.com/a", "100% coverage, not a_b"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := store.Insert("https://example.com/b", "10X coverage, not aXb"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	urls, err := store.Search("100%")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.com/a" {
		t.Fatalf("expected only the literal \"100%%\" match, got %v", urls)
	}

	urls, err = store.Search("a_b")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.com/a" {
		t.Fatalf("expected only the literal \"a_b\" match, got %v", urls)
	}
}
