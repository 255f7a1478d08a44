// Package metrics derives the summary counters and the per-file view shown
// next to the commit chart.
package metrics

import (
	"strconv"

	"github.com/rohankatakam/codefolio/internal/models"
)

// Stat is one labeled counter in display order
type Stat struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Summarize computes the summary counters over a commit set. MaxFileLines
// is the largest number of records any one file contributes.
func Summarize(commits []models.Commit) models.Summary {
	s := models.Summary{TotalCommits: len(commits)}

	fileLines := make(map[string]int)
	for _, c := range commits {
		for _, l := range c.Lines {
			s.TotalLOC++
			if l.Length > s.LongestLine {
				s.LongestLine = l.Length
			}
			if l.Depth > s.MaxDepth {
				s.MaxDepth = l.Depth
			}
			fileLines[l.File]++
		}
	}

	s.Files = len(fileLines)
	for _, n := range fileLines {
		if n > s.MaxFileLines {
			s.MaxFileLines = n
		}
	}
	return s
}

// Stats lists the summary counters in display order
func Stats(s models.Summary) []Stat {
	return []Stat{
		{Label: "Commits", Value: s.TotalCommits},
		{Label: "Files", Value: s.Files},
		{Label: "Total LOC", Value: s.TotalLOC},
		{Label: "Max depth", Value: s.MaxDepth},
		{Label: "Longest line", Value: s.LongestLine},
		{Label: "Max lines", Value: s.MaxFileLines},
	}
}

// String renders a stat as "Label: value"
func (s Stat) String() string {
	return s.Label + ": " + strconv.Itoa(s.Value)
}
