package git

import (
	"path/filepath"
	"strings"
)

var languageNames = map[string]string{
	"go":     "Go",
	"py":     "Python",
	"js":     "JavaScript",
	"jsx":    "JavaScript",
	"mjs":    "JavaScript",
	"ts":     "TypeScript",
	"tsx":    "TypeScript",
	"svelte": "Svelte",
	"vue":    "Vue",
	"html":   "HTML",
	"css":    "CSS",
	"scss":   "Sass",
	"json":   "JSON",
	"md":     "Markdown",
	"yml":    "YAML",
	"yaml":   "YAML",
	"java":   "Java",
	"c":      "C",
	"cpp":    "C++",
	"cc":     "C++",
	"h":      "C/C++",
	"hpp":    "C++",
	"cs":     "C#",
	"rb":     "Ruby",
	"php":    "PHP",
	"rs":     "Rust",
	"swift":  "Swift",
	"kt":     "Kotlin",
	"sh":     "Shell",
	"bash":   "Shell",
	"sql":    "SQL",
	"lua":    "Lua",
	"dart":   "Dart",
	"ex":     "Elixir",
	"exs":    "Elixir",
	"hs":     "Haskell",
}

// TypeTag is the line type recorded for a file: its lower-case extension
// without the dot, or the lower-case base name when there is none.
func TypeTag(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != "" {
		return strings.TrimPrefix(ext, ".")
	}
	return strings.ToLower(filepath.Base(filePath))
}

// LanguageName returns a display name for a type tag, or the tag itself
func LanguageName(tag string) string {
	if name, ok := languageNames[tag]; ok {
		return name
	}
	return tag
}
