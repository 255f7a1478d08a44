package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/sirupsen/logrus"
)

const insertLine = `
	INSERT INTO line_records
	(commit_id, file, line, depth, length, author, date, time, timezone, datetime, type)
	VALUES (:commit_id, :file, :line, :depth, :length, :author, :date, :time, :timezone, :datetime, :type)
`

const selectLines = `
	SELECT commit_id, file, line, depth, length, author, date, time, timezone, datetime, type
	FROM line_records
	ORDER BY id
`

// sqlStore holds the queries shared by the sqlite and postgres stores.
// Named queries are rebound by sqlx for the driver's placeholder style.
type sqlStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) SaveLines(ctx context.Context, records []models.LineRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM line_records`); err != nil {
		return fmt.Errorf("clear line records: %w", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, insertLine)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		if _, err := stmt.ExecContext(ctx, &records[i]); err != nil {
			return fmt.Errorf("save line %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit line records: %w", err)
	}

	s.logger.WithField("lines", len(records)).Debug("Saved line records")
	return nil
}

func (s *sqlStore) LoadLines(ctx context.Context) ([]models.LineRecord, error) {
	records := []models.LineRecord{}
	if err := s.db.SelectContext(ctx, &records, selectLines); err != nil {
		return nil, fmt.Errorf("load line records: %w", err)
	}
	for i := range records {
		restoreZone(&records[i])
	}
	return records, nil
}

func (s *sqlStore) CountLines(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM line_records`); err != nil {
		return 0, fmt.Errorf("count line records: %w", err)
	}
	return n, nil
}
