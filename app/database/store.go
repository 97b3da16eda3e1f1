package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	seenCacheSize    = 4096
	defaultListLimit = 50
	maxListLimit     = 500
)

// Store is the durable ledger of fetched item URLs. It is the single mutable
// resource shared by every poll cycle.
type Store struct {
	db  *sqlx.DB
	now func() time.Time

	seen *lru.Cache[string, struct{}]

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Open opens or creates the SQLite ledger at path and brings its schema up to date.
// Failure here is unrecoverable for the process.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	if _, err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure store schema: %w", err)
	}

	seen, err := lru.New[string, struct{}](seenCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create seen cache: %w", err)
	}

	return &Store{
		db:       db,
		now:      time.Now,
		seen:     seen,
		inflight: make(map[string]struct{}),
	}, nil
}

// DefaultPath returns the well-known ledger location under dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, "fetched.db")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Seen reports whether a record with this URL exists.
func (s *Store) Seen(ctx context.Context, url string) (bool, error) {
	if s.seen.Contains(url) {
		return true, nil
	}

	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM fetched_items WHERE url = ?)`, url)
	if err != nil {
		return false, fmt.Errorf("failed to check fetched item: %w", err)
	}

	if exists {
		s.seen.Add(url, struct{}{})
	}
	return exists, nil
}

// Record appends a new row. It does not deduplicate; callers check Seen first.
func (s *Store) Record(ctx context.Context, item FetchedItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fetched_items (url, name, feed_name, file_path, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`, item.URL, item.Name, item.FeedName, item.FilePath, s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record fetched item: %w", err)
	}

	s.seen.Add(item.URL, struct{}{})
	return nil
}

// Claim marks url as in flight so concurrent feed workers cannot both pass the
// Seen gate for it. The caller must invoke release once Record has been attempted.
func (s *Store) Claim(url string) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[url]; busy {
		return nil, false
	}
	s.inflight[url] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.inflight, url)
			s.mu.Unlock()
		})
	}, true
}

// Recent lists the newest records, optionally for a single feed.
func (s *Store) Recent(ctx context.Context, q RecentQuery) ([]Record, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	builder := sq.Select("id", "url", "name", "feed_name", "file_path", "fetched_at").
		From("fetched_items").
		OrderBy("id DESC").
		Limit(uint64(limit))
	if q.Feed != "" {
		builder = builder.Where(sq.Eq{"feed_name": q.Feed})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	records := []Record{}
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list fetched items: %w", err)
	}

	return records, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM fetched_items`); err != nil {
		return 0, fmt.Errorf("failed to count fetched items: %w", err)
	}
	return count, nil
}

func (s *Store) CountByFeed(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		FeedName string `db:"feed_name"`
		Count    int    `db:"count"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT feed_name, COUNT(*) AS count
		FROM fetched_items
		GROUP BY feed_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count fetched items by feed: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.FeedName] = row.Count
	}
	return counts, nil
}
