// Package page owns the state of one interactive chart view and runs the
// load, filter, render, select pipeline for each interaction.
package page

import (
	"github.com/rohankatakam/codefolio/internal/chart"
	"github.com/rohankatakam/codefolio/internal/metrics"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/rohankatakam/codefolio/internal/selection"
	"github.com/rohankatakam/codefolio/internal/temporal"
)

// State is everything the view depends on
type State struct {
	Commits  []models.Commit
	Filter   *temporal.TimeFilter
	Filtered []models.Commit
	Frame    *chart.Frame
	Brush    *selection.Rect
	Selected []models.Commit
	Hovered  *models.Commit
}

// Update is what a view needs to redraw after an interaction
type Update struct {
	Kind        Kind                    `json:"kind"`
	Progress    float64                 `json:"progress"`
	CutoffLabel string                  `json:"cutoff_label"`
	Frame       *chart.Frame            `json:"-"`
	Marks       []chart.Mark            `json:"marks"`
	Summary     models.Summary          `json:"summary"`
	Stats       []metrics.Stat          `json:"stats"`
	Files       []models.File           `json:"files"`
	Selected    []string                `json:"selected"`
	CountText   string                  `json:"count_text"`
	Breakdown   []models.BreakdownEntry `json:"breakdown"`
	Tooltip     chart.Tooltip           `json:"tooltip"`
	Types       []string                `json:"types"`
}

// snapshot derives the view model from the state
func (s *State) snapshot(kind Kind) *Update {
	summary := metrics.Summarize(s.Filtered)

	ids := make([]string, 0, len(s.Selected))
	for _, c := range s.Selected {
		ids = append(ids, c.ID)
	}

	u := &Update{
		Kind:        kind,
		Progress:    s.Filter.Progress(),
		CutoffLabel: s.Filter.CutoffLabel(),
		Frame:       s.Frame,
		Summary:     summary,
		Stats:       metrics.Stats(summary),
		Files:       metrics.Files(s.Filtered),
		Selected:    ids,
		CountText:   selection.CountText(len(s.Selected)),
		Breakdown:   selection.Breakdown(s.Selected, s.Commits),
		Types:       metrics.Types(s.Commits),
	}
	if s.Frame != nil {
		u.Marks = s.Frame.Marks
		if s.Hovered != nil {
			u.Tooltip = s.Frame.TooltipAt(s.Hovered.ID)
		}
	}
	return u
}
