package seen

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store persists which listings have already been analyzed, so a scan
// never notifies twice for the same inscription. SQLite-backed;
// write-through, no in-memory cache to drift.
type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS seen_listings (
	listing_id TEXT PRIMARY KEY,
	url        TEXT NOT NULL DEFAULT '',
	seen_at    TEXT NOT NULL
);
`

func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// MarkSeen records a listing id. Marking an id twice is a no-op.
func (s *Store) MarkSeen(listingID, url string) error {
	if listingID == "" {
		return fmt.Errorf("empty listing id")
	}
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO seen_listings (listing_id, url, seen_at) VALUES (?, ?, ?)`,
		listingID, url, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) IsSeen(listingID string) (bool, error) {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(1) FROM seen_listings WHERE listing_id = ?`, listingID); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(1) FROM seen_listings`); err != nil {
		return 0, err
	}
	return n, nil
}
