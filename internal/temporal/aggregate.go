// Package temporal turns a line log into commits and restricts them to a
// moving point in time.
package temporal

import (
	"github.com/rohankatakam/codefolio/internal/models"
)

// Aggregate groups line records by commit id. Commits come out in the order
// their id first appears in lines, and each takes its metadata from that
// first record. urlBase is prefixed to the id to form the commit URL.
func Aggregate(lines []models.LineRecord, urlBase string) []models.Commit {
	index := make(map[string]int)
	commits := make([]models.Commit, 0)

	for _, line := range lines {
		i, seen := index[line.Commit]
		if !seen {
			i = len(commits)
			index[line.Commit] = i
			commits = append(commits, models.Commit{
				ID:       line.Commit,
				URL:      urlBase + line.Commit,
				Author:   line.Author,
				Date:     line.Date,
				Time:     line.Time,
				Timezone: line.Timezone,
				Datetime: line.Datetime,
				HourFrac: HourFrac(line),
			})
		}
		commits[i].Lines = append(commits[i].Lines, line)
	}

	for i := range commits {
		commits[i].TotalLines = len(commits[i].Lines)
	}

	return commits
}

// HourFrac is the time of day of the record's datetime in hours, read in the
// offset the datetime was recorded with.
func HourFrac(line models.LineRecord) float64 {
	return float64(line.Datetime.Hour()) + float64(line.Datetime.Minute())/60
}

// Lines flattens the line records of a commit set, preserving commit order
func Lines(commits []models.Commit) []models.LineRecord {
	n := 0
	for _, c := range commits {
		n += len(c.Lines)
	}
	lines := make([]models.LineRecord, 0, n)
	for _, c := range commits {
		lines = append(lines, c.Lines...)
	}
	return lines
}
