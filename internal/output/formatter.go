package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/page"
	"golang.org/x/term"
)

// Formatter writes a view update for a terminal or a pipe
type Formatter interface {
	Format(w io.Writer, u *page.Update) error
}

// VerbosityLevel determines output detail
type VerbosityLevel int

const (
	VerbosityQuiet    VerbosityLevel = iota // one line: cutoff and selection count
	VerbosityStandard                       // stats, breakdown and top files
	VerbosityJSON                           // the full update as JSON
)

// ParseVerbosity maps a --format value onto a level
func ParseVerbosity(format string) (VerbosityLevel, error) {
	switch format {
	case "quiet":
		return VerbosityQuiet, nil
	case "text", "":
		return VerbosityStandard, nil
	case "json":
		return VerbosityJSON, nil
	default:
		return 0, errors.ValidationErrorf("unknown format %q (want text, quiet or json)", format)
	}
}

// NewFormatter creates the formatter for a level. Color applies to the
// text formatters only.
func NewFormatter(level VerbosityLevel, color bool) Formatter {
	switch level {
	case VerbosityQuiet:
		return &QuietFormatter{}
	case VerbosityJSON:
		return &JSONFormatter{}
	default:
		return &StandardFormatter{styles: NewStyles(color), MaxFiles: 10}
	}
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, or fallback when unknown
func Width(f *os.File, fallback int) int {
	if !IsTerminal(f) {
		return fallback
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// JSONFormatter writes the update as indented JSON
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, u *page.Update) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(u)
}
