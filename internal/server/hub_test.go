package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohankatakam/codefolio/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcast(t *testing.T) {
	h := NewHub(logging.Discard())
	a, unsubA := h.Subscribe()
	b, unsubB := h.Subscribe()
	defer unsubB()
	assert.Equal(t, 2, h.Subscribers())

	h.Broadcast(Notice{Version: 3, Commits: 7})
	assert.Equal(t, Notice{Version: 3, Commits: 7}, <-a)
	assert.Equal(t, Notice{Version: 3, Commits: 7}, <-b)

	unsubA()
	unsubA()
	assert.Equal(t, 1, h.Subscribers())
	_, open := <-a
	assert.False(t, open)
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub(logging.Discard())
	ch, unsub := h.Subscribe()
	defer unsub()

	for i := 0; i < subscriberBuffer+5; i++ {
		h.Broadcast(Notice{Version: uint64(i)})
	}
	assert.Equal(t, int64(5), h.Dropped())
	assert.Len(t, ch, subscriberBuffer)
}

func TestHubClose(t *testing.T) {
	h := NewHub(logging.Discard())
	ch, unsub := h.Subscribe()
	h.Close()

	_, open := <-ch
	assert.False(t, open)
	unsub()

	late, _ := h.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loc.csv")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	w, err := NewWatcher(path, 20*time.Millisecond, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	go w.Run(ctx, func() { changed <- struct{}{} })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("ab"), 0644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case <-changed:
		t.Fatal("writes within the debounce window were reported twice")
	case <-time.After(100 * time.Millisecond):
	}
}
