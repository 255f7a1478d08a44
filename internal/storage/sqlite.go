package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLiteStore implements LineStore using SQLite (for local use)
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore creates a new SQLite line store
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{sqlStore{db: db, logger: logger}}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS line_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		commit_id TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER,
		depth INTEGER,
		length INTEGER,
		author TEXT,
		date DATETIME,
		time TEXT,
		timezone TEXT,
		datetime DATETIME,
		type TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_line_records_commit ON line_records(commit_id);
	`

	_, err := s.db.Exec(schema)
	return err
}
