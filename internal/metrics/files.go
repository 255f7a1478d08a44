package metrics

import (
	"sort"

	"github.com/rohankatakam/codefolio/internal/models"
)

// Files groups the lines of a commit set by file name. Files are ordered by
// line count, largest first, with ties broken by name.
func Files(commits []models.Commit) []models.File {
	index := make(map[string]int)
	files := make([]models.File, 0)

	for _, c := range commits {
		for _, l := range c.Lines {
			i, ok := index[l.File]
			if !ok {
				i = len(files)
				index[l.File] = i
				files = append(files, models.File{
					Name:       l.File,
					TypeCounts: make(map[string]int),
				})
			}
			files[i].Lines = append(files[i].Lines, l)
			files[i].TypeCounts[l.Type]++
		}
	}

	for i := range files {
		files[i].LineCount = len(files[i].Lines)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].LineCount != files[j].LineCount {
			return files[i].LineCount > files[j].LineCount
		}
		return files[i].Name < files[j].Name
	})
	return files
}

// Types returns every line type in the commit set in order of first
// appearance. The page assigns file line colors by position in this list.
func Types(commits []models.Commit) []string {
	seen := make(map[string]bool)
	var types []string
	for _, c := range commits {
		for _, l := range c.Lines {
			if !seen[l.Type] {
				seen[l.Type] = true
				types = append(types, l.Type)
			}
		}
	}
	return types
}
