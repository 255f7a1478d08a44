package cache

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Manager caches stateless chart renders. Keys include the dataset version,
// so bumping the version on reload makes every older entry unreachable.
type Manager struct {
	logger   *logrus.Logger
	memCache *cache.Cache
	version  atomic.Uint64
	hits     atomic.Uint64
	misses   atomic.Uint64
}

// Stats reports cache effectiveness
type Stats struct {
	Version uint64 `json:"version"`
	Items   int    `json:"items"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// NewManager creates a render cache with the given entry TTL and cleanup interval
func NewManager(ttl, cleanup time.Duration, logger *logrus.Logger) *Manager {
	return &Manager{
		logger:   logger,
		memCache: cache.New(ttl, cleanup),
	}
}

// Key builds a cache key for one render of the current dataset
func (m *Manager) Key(kind string, progress float64, brush string) string {
	return fmt.Sprintf("%d|%s|%s|%s", m.version.Load(), kind,
		strconv.FormatFloat(progress, 'g', -1, 64), brush)
}

// Get returns a cached render
func (m *Manager) Get(key string) ([]byte, bool) {
	if cached, found := m.memCache.Get(key); found {
		m.hits.Add(1)
		return cached.([]byte), true
	}
	m.misses.Add(1)
	return nil, false
}

// Set stores a render with the default TTL
func (m *Manager) Set(key string, data []byte) {
	m.memCache.Set(key, data, cache.DefaultExpiration)
}

// GetOrRender returns the cached render for key or produces and stores it
func (m *Manager) GetOrRender(key string, render func() ([]byte, error)) ([]byte, error) {
	if data, ok := m.Get(key); ok {
		return data, nil
	}
	data, err := render()
	if err != nil {
		return nil, err
	}
	m.Set(key, data)
	return data, nil
}

// Invalidate starts a new dataset version and drops every cached render
func (m *Manager) Invalidate() uint64 {
	v := m.version.Add(1)
	m.memCache.Flush()
	m.logger.WithField("version", v).Debug("Cleared render cache")
	return v
}

// Version is the current dataset version
func (m *Manager) Version() uint64 {
	return m.version.Load()
}

// Stats returns cache counters
func (m *Manager) Stats() Stats {
	return Stats{
		Version: m.version.Load(),
		Items:   m.memCache.ItemCount(),
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
	}
}
