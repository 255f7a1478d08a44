package storage

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// PostgresStore implements LineStore using PostgreSQL
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore creates a new PostgreSQL line store
func NewPostgresStore(dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &PostgresStore{sqlStore{db: db, logger: logger}}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS line_records (
		id BIGSERIAL PRIMARY KEY,
		commit_id TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER,
		depth INTEGER,
		length INTEGER,
		author TEXT,
		date TIMESTAMPTZ,
		time TEXT,
		timezone TEXT,
		datetime TIMESTAMPTZ,
		type TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_line_records_commit ON line_records(commit_id);
	`

	_, err := s.db.Exec(schema)
	return err
}
