package server

import (
	"regexp"
	"strings"

	"github.com/rohankatakam/codefolio/internal/errors"
)

// Anchors lists the element ids the page script binds to
var Anchors = []string{
	"stats",
	"chart",
	"commit-slider",
	"selectedTime",
	"commit-tooltip",
	"commit-link",
	"commit-date",
	"selection-count",
	"language-breakdown",
}

// FilesClass is the class of the element that lists files
const FilesClass = "files"

var (
	idAttr    = regexp.MustCompile(`\bid\s*=\s*["']([^"']+)["']`)
	classAttr = regexp.MustCompile(`\bclass\s*=\s*["']([^"']+)["']`)
)

// CheckAnchors reports every anchor missing from the page markup in a single
// configuration error.
func CheckAnchors(html []byte) error {
	ids := make(map[string]bool)
	for _, m := range idAttr.FindAllSubmatch(html, -1) {
		ids[string(m[1])] = true
	}
	hasFiles := false
	for _, m := range classAttr.FindAllSubmatch(html, -1) {
		for _, cls := range strings.Fields(string(m[1])) {
			if cls == FilesClass {
				hasFiles = true
			}
		}
	}

	var missing []string
	for _, id := range Anchors {
		if !ids[id] {
			missing = append(missing, "#"+id)
		}
	}
	if !hasFiles {
		missing = append(missing, "."+FilesClass)
	}
	if len(missing) > 0 {
		return errors.ConfigErrorf("page template is missing anchors: %s", strings.Join(missing, ", "))
	}
	return nil
}
