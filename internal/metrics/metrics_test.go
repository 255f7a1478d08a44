package metrics

import (
	"testing"

	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitsFixture() []models.Commit {
	return []models.Commit{
		{ID: "a", TotalLines: 3, Lines: []models.LineRecord{
			{Commit: "a", File: "main.js", Line: 10, Depth: 1, Length: 30, Type: "js"},
			{Commit: "a", File: "main.js", Line: 11, Depth: 3, Length: 12, Type: "js"},
			{Commit: "a", File: "index.html", Line: 2, Depth: 0, Length: 80, Type: "html"},
		}},
		{ID: "b", TotalLines: 2, Lines: []models.LineRecord{
			{Commit: "b", File: "style.css", Line: 40, Depth: 1, Length: 5, Type: "css"},
			{Commit: "b", File: "index.html", Line: 3, Depth: 2, Length: 9, Type: "html"},
		}},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(commitsFixture())

	assert.Equal(t, models.Summary{
		TotalCommits: 2,
		TotalLOC:     5,
		Files:        3,
		LongestLine:  80,
		MaxFileLines: 2,
		MaxDepth:     3,
	}, s)
}

func TestSummarizeMaxFileLinesCountsRecords(t *testing.T) {
	commits := []models.Commit{{ID: "a", Lines: []models.LineRecord{
		{File: "main.js", Line: 500},
		{File: "main.js", Line: 501},
		{File: "x.js", Line: 1},
		{File: "x.js", Line: 2},
		{File: "x.js", Line: 3},
	}}}

	s := Summarize(commits)
	assert.Equal(t, 3, s.MaxFileLines, "x.js has the most records, main.js the highest line number")
	assert.Equal(t, 2, s.Files)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, models.Summary{}, Summarize(nil))
}

func TestStatsOrder(t *testing.T) {
	stats := Stats(Summarize(commitsFixture()))
	require.Len(t, stats, 6)
	assert.Equal(t, "Commits", stats[0].Label)
	assert.Equal(t, "Total LOC: 5", stats[2].String())
}

func TestFiles(t *testing.T) {
	files := Files(commitsFixture())
	require.Len(t, files, 3)

	// index.html and main.js tie at 2 lines; name breaks the tie
	assert.Equal(t, "index.html", files[0].Name)
	assert.Equal(t, "main.js", files[1].Name)
	assert.Equal(t, "style.css", files[2].Name)

	assert.Equal(t, 2, files[0].LineCount)
	assert.Equal(t, map[string]int{"html": 2}, files[0].TypeCounts)
	assert.Equal(t, 1, files[2].LineCount)
}

func TestFilesEmpty(t *testing.T) {
	assert.Empty(t, Files(nil))
}

func TestTypes(t *testing.T) {
	assert.Equal(t, []string{"js", "html", "css"}, Types(commitsFixture()))
}
