package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rohankatakam/codefolio/internal/git"
	"github.com/rohankatakam/codefolio/internal/page"
)

// QuietFormatter prints one summary line
type QuietFormatter struct{}

func (f *QuietFormatter) Format(w io.Writer, u *page.Update) error {
	if u.CutoffLabel == "" {
		_, err := fmt.Fprintln(w, "No commits")
		return err
	}
	_, err := fmt.Fprintf(w, "%d commits through %s; %s\n",
		u.Summary.TotalCommits, u.CutoffLabel, u.CountText)
	return err
}

// StandardFormatter prints stats, the type breakdown and the largest files
type StandardFormatter struct {
	styles   Styles
	MaxFiles int
}

func (f *StandardFormatter) Format(w io.Writer, u *page.Update) error {
	_, err := io.WriteString(w, f.Render(u)+"\n")
	return err
}

// Render lays the sections out vertically
func (f *StandardFormatter) Render(u *page.Update) string {
	s := f.styles
	sections := []string{s.Title.Render("Commit history")}

	if u.CutoffLabel != "" {
		sections = append(sections, s.Label.Render("Through ")+s.Value.Render(u.CutoffLabel))
	}
	sections = append(sections, "", f.renderStats(u), "", s.Accent.Render(u.CountText))

	if len(u.Breakdown) > 0 {
		sections = append(sections, "", f.renderBreakdown(u))
	}
	if len(u.Files) > 0 {
		sections = append(sections, "", f.renderFiles(u))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (f *StandardFormatter) renderStats(u *page.Update) string {
	s := f.styles
	width := 0
	for _, st := range u.Stats {
		if len(st.Label) > width {
			width = len(st.Label)
		}
	}
	var lines []string
	for _, st := range u.Stats {
		label := fmt.Sprintf("%-*s", width, st.Label)
		lines = append(lines, s.Label.Render(label)+"  "+s.Value.Render(fmt.Sprint(st.Value)))
	}
	return strings.Join(lines, "\n")
}

func (f *StandardFormatter) renderBreakdown(u *page.Update) string {
	s := f.styles
	lines := []string{s.Value.Render("Lines by type")}
	for _, e := range u.Breakdown {
		name := git.LanguageName(e.Type)
		if name != e.Type {
			name = fmt.Sprintf("%s (%s)", e.Type, name)
		}
		lines = append(lines, fmt.Sprintf("  %-24s %6d  %s", name, e.Lines, s.Muted.Render(e.Percent)))
	}
	return strings.Join(lines, "\n")
}

func (f *StandardFormatter) renderFiles(u *page.Update) string {
	s := f.styles
	files := u.Files
	if f.MaxFiles > 0 && len(files) > f.MaxFiles {
		files = files[:f.MaxFiles]
	}

	most := files[0].LineCount
	lines := []string{s.Value.Render("Files")}
	for _, file := range files {
		n := 1
		if most > 0 {
			n = file.LineCount * 30 / most
		}
		if n < 1 {
			n = 1
		}
		lines = append(lines, fmt.Sprintf("  %-32s %5d %s", truncate(file.Name, 32), file.LineCount,
			s.Bar.Render(strings.Repeat("█", n))))
	}
	if rest := len(u.Files) - len(files); rest > 0 {
		lines = append(lines, s.Muted.Render(fmt.Sprintf("  … %d more", rest)))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}
