package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rohankatakam/codefolio/internal/config"
	ferrors "github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/sirupsen/logrus"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
)

// LineStore persists a line log so it can be served without the CSV
type LineStore interface {
	// SaveLines replaces the stored log with records, keeping their order
	SaveLines(ctx context.Context, records []models.LineRecord) error
	// LoadLines returns records in the order they were saved
	LoadLines(ctx context.Context) ([]models.LineRecord, error)
	CountLines(ctx context.Context) (int, error)

	Close() error
}

// PrefsStore persists viewer preferences
type PrefsStore interface {
	GetColorScheme(ctx context.Context) (models.ColorScheme, error)
	SetColorScheme(ctx context.Context, scheme models.ColorScheme) error

	Close() error
}

// Open creates the line store selected by cfg.Type
func Open(cfg config.StorageConfig, logger *logrus.Logger) (LineStore, error) {
	switch cfg.Type {
	case "postgres":
		return OpenURL(cfg.PostgresDSN, logger)
	case "sqlite", "":
		return OpenURL("sqlite://"+cfg.LocalPath, logger)
	default:
		return nil, ferrors.ConfigErrorf("unknown storage type %q", cfg.Type)
	}
}

// OpenURL creates a line store from a source URL: sqlite://path or postgres://dsn
func OpenURL(source string, logger *logrus.Logger) (LineStore, error) {
	var (
		store LineStore
		err   error
	)
	switch {
	case strings.HasPrefix(source, "sqlite://"):
		var s *SQLiteStore
		s, err = NewSQLiteStore(strings.TrimPrefix(source, "sqlite://"), logger)
		store = s
	case strings.HasPrefix(source, "postgres://"), strings.HasPrefix(source, "postgresql://"):
		var s *PostgresStore
		s, err = NewPostgresStore(source, logger)
		store = s
	default:
		return nil, ferrors.ConfigErrorf("unsupported store source %q", source)
	}
	if err != nil {
		return nil, ferrors.DatabaseError(err, "open line store")
	}
	return store, nil
}

// restoreZone puts the stored instants back into the offset recorded with the
// line. Drivers may hand timestamps back in UTC or the session zone.
func restoreZone(rec *models.LineRecord) {
	loc, ok := offsetLocation(rec.Timezone)
	if !ok {
		return
	}
	rec.Date = rec.Date.In(loc)
	rec.Datetime = rec.Datetime.In(loc)
}

func offsetLocation(tz string) (*time.Location, bool) {
	if tz == "Z" {
		return time.UTC, true
	}
	t, err := time.Parse("-07:00", tz)
	if err != nil {
		return nil, false
	}
	_, offset := t.Zone()
	return time.FixedZone("", offset), true
}
