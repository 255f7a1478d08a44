package models

import (
	"time"
)

// LineRecord is one changed source line from the line log
type LineRecord struct {
	Commit   string    `json:"commit" db:"commit_id"`
	File     string    `json:"file" db:"file"`
	Line     int       `json:"line" db:"line"`
	Depth    int       `json:"depth" db:"depth"`
	Length   int       `json:"length" db:"length"`
	Author   string    `json:"author" db:"author"`
	Date     time.Time `json:"date" db:"date"`
	Time     string    `json:"time" db:"time"`
	Timezone string    `json:"timezone" db:"timezone"`
	Datetime time.Time `json:"datetime" db:"datetime"`
	Type     string    `json:"type" db:"type"`
}

// Commit aggregates every LineRecord sharing one commit id
type Commit struct {
	ID         string       `json:"id"`
	URL        string       `json:"url"`
	Author     string       `json:"author"`
	Date       time.Time    `json:"date"`
	Time       string       `json:"time"`
	Timezone   string       `json:"timezone"`
	Datetime   time.Time    `json:"datetime"`
	HourFrac   float64      `json:"hour_frac"` // 14.5 = 2:30 PM
	TotalLines int          `json:"total_lines"`
	Lines      []LineRecord `json:"-"`
}

// File is a grouping of lines by path over a commit set
type File struct {
	Name       string         `json:"name"`
	Lines      []LineRecord   `json:"-"`
	LineCount  int            `json:"line_count"`
	TypeCounts map[string]int `json:"type_counts"`
}

// Summary holds aggregate counters over a commit set
type Summary struct {
	TotalCommits int `json:"total_commits"`
	TotalLOC     int `json:"total_loc"`
	Files        int `json:"files"`
	LongestLine  int `json:"longest_line"`
	MaxFileLines int `json:"max_file_lines"`
	MaxDepth     int `json:"max_depth"`
}

// BreakdownEntry is one language/type share of changed lines
type BreakdownEntry struct {
	Type    string  `json:"type"`
	Lines   int     `json:"lines"`
	Share   float64 `json:"share"`   // 0.0 to 1.0
	Percent string  `json:"percent"` // "33.3%"
}

// ColorScheme is the stored theme preference
type ColorScheme string

const (
	ColorSchemeAuto  ColorScheme = "light dark"
	ColorSchemeLight ColorScheme = "light"
	ColorSchemeDark  ColorScheme = "dark"
)

// Valid reports whether the scheme is one of the known values
func (c ColorScheme) Valid() bool {
	switch c {
	case ColorSchemeAuto, ColorSchemeLight, ColorSchemeDark:
		return true
	}
	return false
}
