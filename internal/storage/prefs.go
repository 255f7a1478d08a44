package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ferrors "github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	prefsBucket    = "preferences"
	colorSchemeKey = "colorScheme"
)

// BoltPrefsStore implements PrefsStore on a bbolt file
type BoltPrefsStore struct {
	db     *bolt.DB
	logger *logrus.Logger
}

// NewBoltPrefsStore opens (or creates) the preference file at path
func NewBoltPrefsStore(path string, logger *logrus.Logger) (*BoltPrefsStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create prefs directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open prefs store: %w", err)
	}

	return &BoltPrefsStore{db: db, logger: logger}, nil
}

// GetColorScheme returns the stored scheme, automatic when nothing is stored
func (s *BoltPrefsStore) GetColorScheme(ctx context.Context) (models.ColorScheme, error) {
	scheme := models.ColorSchemeAuto
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(prefsBucket))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(colorSchemeKey))
		if data == nil {
			return nil
		}
		stored := models.ColorScheme(data)
		if !stored.Valid() {
			s.logger.WithField("value", string(data)).Warn("Ignoring invalid stored color scheme")
			return nil
		}
		scheme = stored
		return nil
	})
	if err != nil {
		return models.ColorSchemeAuto, ferrors.DatabaseError(err, "read color scheme")
	}
	return scheme, nil
}

// SetColorScheme stores scheme; unknown values are rejected
func (s *BoltPrefsStore) SetColorScheme(ctx context.Context, scheme models.ColorScheme) error {
	if !scheme.Valid() {
		return ferrors.ValidationErrorf("invalid color scheme %q", scheme)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(prefsBucket))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(colorSchemeKey), []byte(scheme))
	})
	if err != nil {
		return ferrors.DatabaseError(err, "write color scheme")
	}
	return nil
}

// Close closes the preference file
func (s *BoltPrefsStore) Close() error {
	return s.db.Close()
}
