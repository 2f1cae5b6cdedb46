package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rohmanhakim/docs-crawler/internal/metadata"
	"github.com/rohmanhakim/docs-crawler/pkg/failure"
	"github.com/rohmanhakim/docs-crawler/pkg/fileutil"
)

/*
Responsibilities
- Persist crawled pages to a relational store
- Answer seen(url) without a separate index structure
- Enforce uniqueness on URL

Output Characteristics
- Single table, one row per distinct URL
- Idempotent inserts
- Safe for concurrent callers
*/

const schema = `CREATE TABLE pages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL UNIQUE,
	content TEXT NOT NULL
)`

// Store is the contract the engine writes crawled pages through.
type Store interface {
	Seen(url string) (bool, failure.ClassifiedError)
	Insert(url string, text string) (InsertResult, failure.ClassifiedError)
	Close() error
}

// SQLiteStore backs Store with a single-table SQLite database. Writes are
// serialized through mu; database/sql already pools reads, but a shared
// mutex keeps the seen-then-insert sequence atomic from the engine's point
// of view without requiring callers to coordinate.
type SQLiteStore struct {
	db           *sql.DB
	mu           sync.Mutex
	readOnly     bool
	metadataSink metadata.MetadataSink
}

// Open prepares path for the given mode and returns a Store. ModeCrawler
// destroys any existing file at path before creating a fresh schema.
// ModeSearcher opens an existing store read-only and never creates one.
func Open(path string, mode Mode, metadataSink metadata.MetadataSink) (*SQLiteStore, failure.ClassifiedError) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fileutil.EnsureDir(dir); err != nil {
			return nil, &StorageError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseOpenFailed,
				Path:      path,
			}
		}
	}

	if mode == ModeCrawler {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, &StorageError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseOpenFailed,
				Path:      path,
			}
		}
	}

	dsn := path
	if mode == ModeSearcher {
		dsn = "file:" + path + "?mode=ro"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseOpenFailed,
			Path:      path,
		}
	}
	if err := db.Ping(); err != nil {
		return nil, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseOpenFailed,
			Path:      path,
		}
	}

	store := &SQLiteStore{
		db:           db,
		readOnly:     mode == ModeSearcher,
		metadataSink: metadataSink,
	}

	if mode == ModeCrawler {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, &StorageError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseSchemaFailed,
				Path:      path,
			}
		}
	}

	return store, nil
}

// Seen reports whether url already has a row in the store.
func (s *SQLiteStore) Seen(url string) (bool, failure.ClassifiedError) {
	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM pages WHERE url = ? LIMIT 1`, url).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		storageErr := &StorageError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseQueryFailure,
		}
		s.recordError("Seen", storageErr, url)
		return false, storageErr
	}
	return true, nil
}

// Insert writes a new row for url if one does not already exist. Per the
// contract, a repeated insert for an already-seen URL is a no-op, not an
// error.
func (s *SQLiteStore) Insert(url string, text string) (InsertResult, failure.ClassifiedError) {
	if s.readOnly {
		storageErr := &StorageError{
			Message:   "store was opened read-only",
			Retryable: false,
			Cause:     ErrCauseReadOnly,
		}
		s.recordError("Insert", storageErr, url)
		return InsertResult{}, storageErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`INSERT OR IGNORE INTO pages (url, content) VALUES (?, ?)`, url, text)
	if err != nil {
		storageErr := &StorageError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
		s.recordError("Insert", storageErr, url)
		return InsertResult{}, storageErr
	}

	id, err := result.LastInsertId()
	if err != nil {
		id = 0
	}

	insertResult := NewInsertResult(id, url)
	if s.metadataSink != nil {
		s.metadataSink.RecordArtifact(
			metadata.ArtifactStoredPage,
			url,
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, url),
			},
		)
	}
	return insertResult, nil
}

// Search returns the URLs of every page whose content contains query as a
// literal substring, ordered by id. Used by the searcher CLI (§6.2); not
// part of the Store interface since the crawl engine never needs it.
func (s *SQLiteStore) Search(query string) ([]string, failure.ClassifiedError) {
	pattern := "%" + escapeLikePattern(query) + "%"
	rows, err := s.db.Query(`SELECT url FROM pages WHERE content LIKE ? ESCAPE '\' ORDER BY id`, pattern)
	if err != nil {
		storageErr := &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseQueryFailure,
		}
		s.recordError("Search", storageErr, query)
		return nil, storageErr
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, &StorageError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseQueryFailure,
			}
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// escapeLikePattern escapes LIKE's own wildcard characters so query is
// matched as a literal substring rather than a pattern.
func escapeLikePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(query)
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) recordError(action string, err *StorageError, url string) {
	if s.metadataSink == nil {
		return
	}
	s.metadataSink.RecordError(
		time.Now(),
		"storage",
		"SQLiteStore."+action,
		mapStorageErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, url),
		},
	)
}
