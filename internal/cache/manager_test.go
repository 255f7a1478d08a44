package cache

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewManager(time.Minute, time.Minute, logger)
}

func TestGetOrRender(t *testing.T) {
	m := newTestManager()
	calls := 0
	render := func() ([]byte, error) {
		calls++
		return []byte("<svg/>"), nil
	}

	key := m.Key("svg", 50, "")
	for i := 0; i < 3; i++ {
		data, err := m.GetOrRender(key, render)
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", string(data))
	}
	assert.Equal(t, 1, calls)

	stats := m.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Items)
}

func TestGetOrRenderError(t *testing.T) {
	m := newTestManager()
	_, err := m.GetOrRender("k", func() ([]byte, error) { return nil, errors.New("boom") })
	require.Error(t, err)
	_, ok := m.Get("k")
	assert.False(t, ok, "failed renders are not cached")
}

func TestKeyDistinguishesInputs(t *testing.T) {
	m := newTestManager()
	assert.NotEqual(t, m.Key("svg", 50, ""), m.Key("svg", 51, ""))
	assert.NotEqual(t, m.Key("svg", 50, ""), m.Key("svg", 50, "1,2,3,4"))
	assert.NotEqual(t, m.Key("svg", 50, ""), m.Key("stats", 50, ""))
	assert.NotEqual(t, m.Key("svg", 50.00001, ""), m.Key("svg", 50.00004, ""))
	assert.NotEqual(t, m.Key("svg", 12.5, ""), m.Key("svg", 12.500000001, ""))
	assert.Equal(t, m.Key("svg", 12.5, ""), m.Key("svg", 12.5, ""))
}

func TestInvalidate(t *testing.T) {
	m := newTestManager()
	old := m.Key("svg", 100, "")
	m.Set(old, []byte("v0"))

	v := m.Invalidate()
	assert.Equal(t, uint64(1), v)

	_, ok := m.Get(old)
	assert.False(t, ok)
	assert.NotEqual(t, old, m.Key("svg", 100, ""))
}
