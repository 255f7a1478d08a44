package chart

import (
	"sort"
	"time"

	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/rohankatakam/codefolio/internal/scale"
	"github.com/rohankatakam/codefolio/internal/temporal"
)

// Opacity of a visible mark at rest
const MarkOpacity = 0.7

// MarkState says how a mark changed since the previous render
type MarkState string

const (
	// StateEnter marks a commit that became visible
	StateEnter MarkState = "enter"
	// StateUpdate marks a commit that stayed visible
	StateUpdate MarkState = "update"
	// StateExit marks a commit that was filtered out by this render
	StateExit MarkState = "exit"
	// StateHidden marks a commit that was and remains filtered out
	StateHidden MarkState = "hidden"
)

// Visible reports whether a mark in this state is drawn
func (s MarkState) Visible() bool {
	return s == StateEnter || s == StateUpdate
}

// Mark is one commit circle. Prev* hold the values the transition starts
// from; the unprefixed fields are where it ends.
type Mark struct {
	ID         string        `json:"id"`
	URL        string        `json:"url"`
	TotalLines int           `json:"total_lines"`
	State      MarkState     `json:"state"`
	Selected   bool          `json:"selected"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	R          float64       `json:"r"`
	Opacity    float64       `json:"opacity"`
	PrevX      float64       `json:"prev_x"`
	PrevY      float64       `json:"prev_y"`
	PrevR      float64       `json:"prev_r"`
	PrevOp     float64       `json:"prev_opacity"`
	Commit     models.Commit `json:"-"`
}

// Frame is the output of one render
type Frame struct {
	Layout Layout
	XScale *scale.Time
	YScale *scale.Linear
	RScale *scale.Sqrt
	Marks  []Mark
	XTicks []Tick
	YTicks []Tick
}

// X projects a commit's datetime onto the x axis
func (f *Frame) X(c models.Commit) float64 {
	return f.XScale.Map(c.Datetime)
}

// Y projects a commit's time of day onto the y axis
func (f *Frame) Y(c models.Commit) float64 {
	return f.YScale.Map(c.HourFrac)
}

// Visible returns the marks that are drawn after the transition
func (f *Frame) Visible() []Mark {
	var out []Mark
	for _, m := range f.Marks {
		if m.State.Visible() {
			out = append(out, m)
		}
	}
	return out
}

// Mark looks up a bound mark by commit id
func (f *Frame) Mark(id string) (Mark, bool) {
	for _, m := range f.Marks {
		if m.ID == id {
			return m, true
		}
	}
	return Mark{}, false
}

// Renderer keeps every commit bound to a mark by id across renders, so a
// commit keeps its identity when the filter hides and reveals it.
type Renderer struct {
	layout Layout
	all    []models.Commit
	prev   map[string]Mark
}

// NewRenderer binds the full commit set
func NewRenderer(layout Layout, all []models.Commit) *Renderer {
	return &Renderer{
		layout: layout,
		all:    all,
		prev:   make(map[string]Mark),
	}
}

// Layout returns the renderer's geometry
func (r *Renderer) Layout() Layout { return r.layout }

// Render lays out the filtered commits, marking the ids in selected. Commits
// outside filtered stay bound with zero radius and opacity.
func (r *Renderer) Render(filtered []models.Commit, selected map[string]bool) *Frame {
	f := r.Project(filtered)

	visible := make(map[string]bool, len(filtered))
	for _, c := range filtered {
		visible[c.ID] = true
	}

	marks := make([]Mark, 0, len(r.all))
	for _, c := range r.all {
		prev, bound := r.prev[c.ID]
		m := Mark{
			ID:         c.ID,
			URL:        c.URL,
			TotalLines: c.TotalLines,
			Selected:   selected[c.ID],
			Commit:     c,
		}

		wasVisible := bound && prev.State.Visible()
		if visible[c.ID] {
			m.X, m.Y, m.R, m.Opacity = f.X(c), f.Y(c), f.RScale.Map(float64(c.TotalLines)), MarkOpacity
			if wasVisible {
				m.State = StateUpdate
				m.PrevX, m.PrevY, m.PrevR, m.PrevOp = prev.X, prev.Y, prev.R, prev.Opacity
			} else {
				m.State = StateEnter
				m.PrevX, m.PrevY = m.X, m.Y
			}
		} else {
			m.Selected = false
			if bound {
				m.X, m.Y = prev.X, prev.Y
			}
			if wasVisible {
				m.State = StateExit
				m.PrevX, m.PrevY, m.PrevR, m.PrevOp = prev.X, prev.Y, prev.R, prev.Opacity
			} else {
				m.State = StateHidden
				m.PrevX, m.PrevY = m.X, m.Y
			}
		}
		marks = append(marks, m)
	}

	// small circles last so they draw on top
	sort.SliceStable(marks, func(i, j int) bool {
		return marks[i].TotalLines > marks[j].TotalLines
	})

	r.prev = make(map[string]Mark, len(marks))
	for _, m := range marks {
		r.prev[m.ID] = m
	}

	f.Marks = marks
	return f
}

// Project builds the scales and axes for a filtered set without binding
// marks. The result can place commits for hit testing before a render.
func (r *Renderer) Project(filtered []models.Commit) *Frame {
	area := r.layout.Usable()

	t0, t1, ok := temporal.Extent(filtered)
	if !ok {
		t0, t1, ok = temporal.Extent(r.all)
	}
	if !ok {
		t0 = time.Unix(0, 0).UTC()
		t1 = t0
	}

	xs := scale.NewTime(t0, t1, area.Left, area.Right).Nice(r.layout.XTicks)
	ys := scale.NewLinear(0, 24, area.Bottom, area.Top)

	lo, hi := lineExtent(filtered)
	rs := scale.NewSqrt(float64(lo), float64(hi), r.layout.RadiusMin, r.layout.RadiusMax)

	return &Frame{
		Layout: r.layout,
		XScale: xs,
		YScale: ys,
		RScale: rs,
		XTicks: xTicks(xs, r.layout.XTicks),
		YTicks: yTicks(ys, r.layout.YTicks, r.layout.Clock12),
	}
}

func lineExtent(commits []models.Commit) (lo, hi int) {
	for i, c := range commits {
		if i == 0 || c.TotalLines < lo {
			lo = c.TotalLines
		}
		if c.TotalLines > hi {
			hi = c.TotalLines
		}
	}
	return lo, hi
}
