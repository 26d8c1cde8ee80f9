package subscriber

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps subscribers in a SQLite table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS subscribers (
		user_id       TEXT PRIMARY KEY,
		subscribed_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Add(userID string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`INSERT OR IGNORE INTO subscribers (user_id, subscribed_at) VALUES (?, ?)`,
		userID, time.Now().UnixNano())
	if err != nil {
		return false, fmt.Errorf("insert subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) Remove(userID string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM subscribers WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("delete subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) Contains(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var one int
	err := s.db.QueryRow(`SELECT 1 FROM subscribers WHERE user_id = ?`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query subscriber: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT user_id FROM subscribers ORDER BY subscribed_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}

// ImportLegacy copies the IDs of a legacy text file into the table and
// renames the file to <path>.imported so the import runs once. A missing
// file imports nothing.
func (s *SQLiteStore) ImportLegacy(path string) (int, error) {
	ids, err := readIDs(path)
	if err != nil {
		return 0, fmt.Errorf("read legacy subscribers: %w", err)
	}
	if ids == nil {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return 0, nil
		}
	}

	s.mu.Lock()
	tx, err := s.db.Begin()
	if err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("begin: %w", err)
	}
	imported := 0
	base := time.Now().UnixNano()
	for i, id := range ids {
		res, err := tx.Exec(`INSERT OR IGNORE INTO subscribers (user_id, subscribed_at) VALUES (?, ?)`, id, base+int64(i))
		if err != nil {
			tx.Rollback()
			s.mu.Unlock()
			return 0, fmt.Errorf("import %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			imported++
		}
	}
	err = tx.Commit()
	s.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	if err := os.Rename(path, path+".imported"); err != nil {
		return imported, fmt.Errorf("mark legacy file imported: %w", err)
	}
	log.WithFields(log.Fields{"file": path, "imported": imported}).Info("imported legacy subscribers")
	return imported, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
