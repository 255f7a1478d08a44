package selection

import (
	"strconv"
	"strings"

	"github.com/rohankatakam/codefolio/internal/models"
)

// Breakdown counts lines per type over the selected commits, or over all
// commits when nothing is selected. Entries keep the order in which each
// type first appears.
func Breakdown(selected, all []models.Commit) []models.BreakdownEntry {
	source := selected
	if len(source) == 0 {
		source = all
	}

	index := make(map[string]int)
	entries := make([]models.BreakdownEntry, 0)
	total := 0
	for _, c := range source {
		for _, l := range c.Lines {
			i, ok := index[l.Type]
			if !ok {
				i = len(entries)
				index[l.Type] = i
				entries = append(entries, models.BreakdownEntry{Type: l.Type})
			}
			entries[i].Lines++
			total++
		}
	}

	for i := range entries {
		entries[i].Share = float64(entries[i].Lines) / float64(total)
		entries[i].Percent = FormatPercent(entries[i].Share)
	}
	return entries
}

// FormatPercent renders a share as a percentage with at most one decimal,
// dropping a trailing zero: 1/3 -> "33.3%", 0.5 -> "50%".
func FormatPercent(share float64) string {
	s := strconv.FormatFloat(share*100, 'f', 1, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s + "%"
}
