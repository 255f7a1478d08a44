// Package selection implements the rectangular brush over the chart and the
// line-type breakdown of whatever it selects.
package selection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/models"
)

// Rect is a brush rectangle in chart pixel space
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Normalize orders the corners so X0 <= X1 and Y0 <= Y1
func (r Rect) Normalize() Rect {
	if r.X1 < r.X0 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y1 < r.Y0 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Contains reports whether (x, y) lies in the rectangle, edges included
func (r Rect) Contains(x, y float64) bool {
	n := r.Normalize()
	return n.X0 <= x && x <= n.X1 && n.Y0 <= y && y <= n.Y1
}

// String renders the rectangle in the form ParseRect accepts
func (r Rect) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return strings.Join([]string{f(r.X0), f(r.Y0), f(r.X1), f(r.Y1)}, ",")
}

// ParseRect reads "x0,y0,x1,y1". The corners may come in any order.
func ParseRect(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, errors.ValidationErrorf("brush %q: want x0,y0,x1,y1", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Rect{}, errors.ValidationErrorf("brush %q: %v", s, err)
		}
		v[i] = f
	}
	return Rect{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}.Normalize(), nil
}

// Projector places a commit in chart pixel space
type Projector interface {
	X(c models.Commit) float64
	Y(c models.Commit) float64
}

// Select returns the commits whose projected position falls inside the
// brush. A nil brush selects nothing.
func Select(commits []models.Commit, proj Projector, brush *Rect) []models.Commit {
	selected := make([]models.Commit, 0)
	if brush == nil || proj == nil {
		return selected
	}
	r := brush.Normalize()
	for _, c := range commits {
		if r.Contains(proj.X(c), proj.Y(c)) {
			selected = append(selected, c)
		}
	}
	return selected
}

// IDs indexes a commit set by id
func IDs(commits []models.Commit) map[string]bool {
	ids := make(map[string]bool, len(commits))
	for _, c := range commits {
		ids[c.ID] = true
	}
	return ids
}

// CountText is the selection count label
func CountText(n int) string {
	switch n {
	case 0:
		return "No commits selected"
	case 1:
		return "1 commit selected"
	default:
		return fmt.Sprintf("%d commits selected", n)
	}
}
