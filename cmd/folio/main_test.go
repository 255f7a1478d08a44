package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohankatakam/codefolio/internal/chart"
	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/loader"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/rohankatakam/codefolio/internal/page"
	"github.com/rohankatakam/codefolio/internal/temporal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLineLog(t *testing.T, dir string) string {
	t.Helper()
	at := func(day, hour int) time.Time { return time.Date(2024, 2, day, hour, 0, 0, 0, time.UTC) }
	rec := func(commit, file, typ string, ts time.Time) models.LineRecord {
		return models.LineRecord{
			Commit: commit, File: file, Line: 1, Depth: 0, Length: 12, Author: "ada",
			Date: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			Time: ts.Format("15:04:05"), Timezone: "+00:00", Datetime: ts, Type: typ,
		}
	}

	path := filepath.Join(dir, "loc.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, loader.Write(f, []models.LineRecord{
		rec("a1", "main.js", "js", at(1, 9)),
		rec("a1", "main.js", "js", at(1, 9)),
		rec("b2", "style.css", "css", at(3, 15)),
	}))
	return path
}

// run executes the root command with isolated storage paths
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LOCAL_DB_PATH", filepath.Join(dir, "lines.db"))
	t.Setenv("PREFS_DB_PATH", filepath.Join(dir, "prefs.db"))
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestStatsJSON(t *testing.T) {
	src := writeLineLog(t, t.TempDir())

	out, err := run(t, "stats", "--data", src, "--format", "json", "--progress", "0", "--brush", "")
	require.NoError(t, err)

	var u page.Update
	require.NoError(t, json.Unmarshal([]byte(out), &u))
	assert.Equal(t, 1, u.Summary.TotalCommits)
	assert.Equal(t, "February 1, 2024 at 9:00 AM", u.CutoffLabel)
	assert.Equal(t, "No commits selected", u.CountText)
}

func TestStatsQuietWithBrush(t *testing.T) {
	src := writeLineLog(t, t.TempDir())

	out, err := run(t, "stats", "--data", src, "--format", "quiet", "--progress", "100", "--brush", "0,0,1000,600")
	require.NoError(t, err)
	assert.Contains(t, out, "2 commits selected")
}

func TestStatsRejectsUnknownFormat(t *testing.T) {
	src := writeLineLog(t, t.TempDir())

	_, err := run(t, "stats", "--data", src, "--format", "yaml")
	assert.Error(t, err)
	statsFormat = "text"
}

func TestRenderToFile(t *testing.T) {
	dir := t.TempDir()
	src := writeLineLog(t, dir)
	dst := filepath.Join(dir, "chart.svg")

	_, err := run(t, "render", "--data", src, "--progress", "100", "--brush", "", "-o", dst)
	require.NoError(t, err)
	renderOutput = ""

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
	assert.Contains(t, string(data), `data-id="b2"`)
}

func testFrame() *chart.Frame {
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	commits := temporal.Aggregate([]models.LineRecord{
		{Commit: "a1", File: "main.js", Line: 1, Type: "js", Datetime: at},
	}, "")
	return page.New(commits, page.Options{Layout: chart.DefaultLayout(), InitialProgress: 100}).Snapshot().Frame
}

func TestWriteChartFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "chart.svg")
	require.NoError(t, writeChartFile(dst, testFrame()))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "</svg>")
}

func TestWriteChartFileErrors(t *testing.T) {
	err := writeChartFile(filepath.Join(t.TempDir(), "missing", "chart.svg"), testFrame())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFileSystem))

	if _, statErr := os.Stat("/dev/full"); statErr != nil {
		t.Skip("no /dev/full")
	}
	err = writeChartFile("/dev/full", testFrame())
	assert.Error(t, err, "a failed write is reported, not dropped")
}

func TestRenderMissingSource(t *testing.T) {
	_, err := run(t, "render", "--data", filepath.Join(t.TempDir(), "missing.csv"), "-o", "")
	assert.Error(t, err)
}

func TestImportIntoSQLite(t *testing.T) {
	src := writeLineLog(t, t.TempDir())

	out, err := run(t, "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 lines into sqlite storage")
}

func TestTheme(t *testing.T) {
	dir := t.TempDir()
	prefs := filepath.Join(dir, "prefs.db")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Setenv("PREFS_DB_PATH", prefs)
	t.Setenv("LOG_LEVEL", "error")

	rootCmd.SetArgs([]string{"theme", "dark"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"dark"`)

	out.Reset()
	rootCmd.SetArgs([]string{"theme"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "dark\n", out.String())

	rootCmd.SetArgs([]string{"theme", "sepia"})
	assert.Error(t, rootCmd.Execute())
}

func TestConfigShowAndInit(t *testing.T) {
	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "initial_progress: 100")

	path := filepath.Join(t.TempDir(), "config.yaml")
	out, err = run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = run(t, "config", "init", path)
	assert.Error(t, err, "refuses to overwrite")
}
