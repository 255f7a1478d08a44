package server

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rohankatakam/codefolio/internal/config"
	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/logging"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/rohankatakam/codefolio/internal/page"
	"github.com/rohankatakam/codefolio/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(commit, file, typ string, at time.Time) models.LineRecord {
	return models.LineRecord{
		Commit:   commit,
		File:     file,
		Line:     1,
		Depth:    1,
		Length:   20,
		Author:   "ada",
		Date:     time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC),
		Time:     at.Format("15:04:05"),
		Timezone: "+00:00",
		Datetime: at,
		Type:     typ,
	}
}

func fixtureLines() []models.LineRecord {
	t1 := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 2, 3, 15, 0, 0, 0, time.UTC)
	return []models.LineRecord{
		record("a1", "main.js", "js", t1),
		record("a1", "main.js", "js", t1),
		record("b2", "style.css", "css", t2),
	}
}

func newTestServer(t *testing.T, load LoadFunc, prefs storage.PrefsStore) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Data.CommitURLBase = "https://github.com/ada/site/commit/"
	if load == nil {
		load = func(ctx context.Context) ([]models.LineRecord, error) { return fixtureLines(), nil }
	}

	s, err := New(Options{Config: cfg, Logger: logging.Discard(), Load: load, Prefs: prefs})
	require.NoError(t, err)
	require.NoError(t, s.Reload(context.Background()))
	return s
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestEmbeddedPageHasAnchors(t *testing.T) {
	sub, err := fs.Sub(webFS, "web")
	require.NoError(t, err)
	index, err := fs.ReadFile(sub, "index.html")
	require.NoError(t, err)

	assert.NoError(t, CheckAnchors(index))
}

func TestCheckAnchorsListsMissing(t *testing.T) {
	err := CheckAnchors([]byte(`<div id="stats"></div><div id='chart'></div><dl class="info files"></dl>`))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Contains(t, err.Error(), "#commit-slider")
	assert.Contains(t, err.Error(), "#language-breakdown")
	assert.NotContains(t, err.Error(), "#stats")
	assert.NotContains(t, err.Error(), ".files")

	err = CheckAnchors([]byte(`<div class="filesystem"></div>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".files")
}

func TestNewRejectsPageWithoutAnchors(t *testing.T) {
	assets := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte(`<html><body id="stats"></body></html>`)},
	}
	_, err := New(Options{Logger: logging.Discard(), Assets: assets})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestPageAndAssets(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="commit-slider"`)

	rec = get(t, s, "/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")

	rec = get(t, s, "/style.css")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzAndCommits(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Status  string `json:"status"`
		Version uint64 `json:"version"`
		Commits int    `json:"commits"`
		Lines   int    `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, uint64(1), health.Version)
	assert.Equal(t, 2, health.Commits)
	assert.Equal(t, 3, health.Lines)

	rec = get(t, s, "/api/commits")
	require.Equal(t, http.StatusOK, rec.Code)
	var commits []models.Commit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &commits))
	require.Len(t, commits, 2)
	assert.Equal(t, "a1", commits[0].ID)
	assert.Equal(t, "https://github.com/ada/site/commit/a1", commits[0].URL)
	assert.Equal(t, 2, commits[0].TotalLines)
}

func TestStatsFollowProgress(t *testing.T) {
	s := newTestServer(t, nil, nil)

	var body struct {
		Progress    float64        `json:"progress"`
		CutoffLabel string         `json:"cutoff_label"`
		Summary     models.Summary `json:"summary"`
	}

	rec := get(t, s, "/api/stats?progress=0")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Summary.TotalCommits)
	assert.Equal(t, 2, body.Summary.TotalLOC)
	assert.Equal(t, "February 1, 2024 at 9:00 AM", body.CutoffLabel)

	rec = get(t, s, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 100.0, body.Progress)
	assert.Equal(t, 2, body.Summary.TotalCommits)
	assert.Equal(t, 2, body.Summary.Files)
}

func TestStatsNearbyProgressNotShared(t *testing.T) {
	t0 := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	load := func(ctx context.Context) ([]models.LineRecord, error) {
		return []models.LineRecord{
			record("a1", "main.js", "js", t0),
			record("b2", "main.js", "js", t0.Add(50*time.Second+30*time.Microsecond)),
			record("c3", "main.js", "js", t0.Add(100*time.Second)),
		}, nil
	}
	s := newTestServer(t, load, nil)

	var body struct {
		Summary models.Summary `json:"summary"`
	}

	rec := get(t, s, "/api/stats?progress=50.00001")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Summary.TotalCommits)

	rec = get(t, s, "/api/stats?progress=50.00004")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Summary.TotalCommits)
}

func TestFiles(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/api/files?progress=100")
	require.Equal(t, http.StatusOK, rec.Code)
	var files []models.File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	require.Len(t, files, 2)
	assert.Equal(t, "main.js", files[0].Name)
	assert.Equal(t, 2, files[0].LineCount)
}

func TestBreakdownWithBrush(t *testing.T) {
	s := newTestServer(t, nil, nil)

	var body struct {
		Selected  []string                `json:"selected"`
		CountText string                  `json:"count_text"`
		Breakdown []models.BreakdownEntry `json:"breakdown"`
	}

	rec := get(t, s, "/api/breakdown?brush=0,0,1000,600")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.ElementsMatch(t, []string{"a1", "b2"}, body.Selected)
	assert.Equal(t, "2 commits selected", body.CountText)
	require.Len(t, body.Breakdown, 2)

	rec = get(t, s, "/api/breakdown")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Selected)
	assert.Equal(t, "No commits selected", body.CountText)
}

func TestBadQueries(t *testing.T) {
	s := newTestServer(t, nil, nil)

	for _, path := range []string{
		"/api/stats?progress=abc",
		"/api/breakdown?brush=1,2",
		"/chart.svg?brush=a,b,c,d",
	} {
		rec := get(t, s, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"error"`, path)
	}
}

func TestChartSVGIsCached(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/chart.svg?progress=100")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `data-id="a1"`)
	assert.Contains(t, rec.Body.String(), `data-id="b2"`)

	first := rec.Body.String()
	rec = get(t, s, "/chart.svg?progress=100")
	assert.Equal(t, first, rec.Body.String())

	stats := s.cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestReloadSwapsDatasetAndNotifies(t *testing.T) {
	var calls atomic.Int32
	load := func(ctx context.Context) ([]models.LineRecord, error) {
		lines := fixtureLines()
		if calls.Add(1) > 1 {
			lines = append(lines, record("c3", "new.go", "go", time.Date(2024, 2, 5, 12, 0, 0, 0, time.UTC)))
		}
		return lines, nil
	}
	s := newTestServer(t, load, nil)

	get(t, s, "/chart.svg")
	before := s.cache.Version()

	notices, unsubscribe := s.Hub().Subscribe()
	defer unsubscribe()

	require.NoError(t, s.Reload(context.Background()))
	assert.Greater(t, s.cache.Version(), before)
	assert.Equal(t, 0, s.cache.Stats().Items)

	select {
	case n := <-notices:
		assert.Equal(t, uint64(2), n.Version)
		assert.Equal(t, 3, n.Commits)
	case <-time.After(time.Second):
		t.Fatal("no reload notice")
	}

	rec := get(t, s, "/chart.svg")
	assert.Contains(t, rec.Body.String(), `data-id="c3"`)
}

func TestReloadFailureKeepsDataset(t *testing.T) {
	var fail atomic.Bool
	load := func(ctx context.Context) ([]models.LineRecord, error) {
		if fail.Load() {
			return nil, errors.NetworkError(assert.AnError, "fetch line log")
		}
		return fixtureLines(), nil
	}
	s := newTestServer(t, load, nil)

	fail.Store(true)
	err := s.Reload(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	assert.Equal(t, uint64(1), s.Dataset().Version)
	assert.Len(t, s.Dataset().Commits, 2)
}

func TestTheme(t *testing.T) {
	prefs, err := storage.NewBoltPrefsStore(filepath.Join(t.TempDir(), "prefs.db"), logging.Discard())
	require.NoError(t, err)
	defer prefs.Close()
	s := newTestServer(t, nil, prefs)

	rec := get(t, s, "/api/theme")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"colorScheme":"light dark"}`, rec.Body.String())

	put := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/theme", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		s.Handler().ServeHTTP(rec, req)
		return rec
	}

	rec = put(`{"colorScheme":"dark"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = get(t, s, "/api/theme")
	assert.JSONEq(t, `{"colorScheme":"dark"}`, rec.Body.String())

	rec = put(`{"colorScheme":"sepia"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = put(`not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThemeWithoutStore(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := get(t, s, "/api/theme")
	assert.JSONEq(t, `{"colorScheme":"light dark"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/theme", strings.NewReader(`{"colorScheme":"dark"}`))
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func dial(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketSession(t *testing.T) {
	s := newTestServer(t, nil, nil)
	conn := dial(t, s)

	msg := readMessage(t, conn)
	assert.Equal(t, MessageUpdate, msg.Type)
	assert.NotEmpty(t, msg.Session)
	require.NotNil(t, msg.Update)
	assert.Equal(t, page.KindSnapshot, msg.Update.Kind)
	assert.Equal(t, 2, msg.Update.Summary.TotalCommits)
	assert.Contains(t, msg.SVG, "<svg")
	session := msg.Session

	require.NoError(t, conn.WriteJSON(page.Event{Kind: page.KindProgress, Progress: 0}))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageUpdate, msg.Type)
	assert.Equal(t, session, msg.Session)
	assert.Equal(t, 1, msg.Update.Summary.TotalCommits)
	assert.NotEmpty(t, msg.SVG)

	require.NoError(t, conn.WriteJSON(page.Event{Kind: page.KindHover, CommitID: "a1"}))
	msg = readMessage(t, conn)
	assert.Equal(t, page.KindHover, msg.Update.Kind)
	assert.True(t, msg.Update.Tooltip.Visible)
	assert.Equal(t, "a1", msg.Update.Tooltip.ID)
	assert.Empty(t, msg.SVG, "hover does not re-render")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)

	require.NoError(t, conn.WriteJSON(page.Event{Kind: "zoom"}))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Contains(t, msg.Error, "zoom")
}

func TestWebSocketSessionFollowsReload(t *testing.T) {
	var calls atomic.Int32
	load := func(ctx context.Context) ([]models.LineRecord, error) {
		lines := fixtureLines()
		if calls.Add(1) > 1 {
			lines = append(lines, record("c3", "new.go", "go", time.Date(2024, 2, 5, 12, 0, 0, 0, time.UTC)))
		}
		return lines, nil
	}
	s := newTestServer(t, load, nil)
	conn := dial(t, s)

	msg := readMessage(t, conn)
	require.Equal(t, uint64(1), msg.Version)

	require.NoError(t, conn.WriteJSON(page.Event{Kind: page.KindProgress, Progress: 0}))
	msg = readMessage(t, conn)
	require.Equal(t, 0.0, msg.Update.Progress)

	require.Eventually(t, func() bool { return s.Hub().Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, s.Reload(context.Background()))

	msg = readMessage(t, conn)
	assert.Equal(t, MessageReload, msg.Type)
	assert.Equal(t, uint64(2), msg.Version)
	assert.Equal(t, 0.0, msg.Update.Progress, "slider position survives a reload")
	assert.Equal(t, 1, msg.Update.Summary.TotalCommits)
	assert.Len(t, msg.Update.Marks, 3)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "loc.csv")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	cfg := config.Default()
	cfg.Data.Source = src
	cfg.Data.Watch = true
	s, err := New(Options{
		Config: cfg,
		Logger: logging.Discard(),
		Load:   func(ctx context.Context) ([]models.LineRecord, error) { return fixtureLines(), nil },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
