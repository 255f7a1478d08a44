package temporal

import (
	"math"
	"time"

	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/rohankatakam/codefolio/internal/scale"
)

// CutoffLayout formats the slider's cutoff label
const CutoffLayout = "January 2, 2006 at 3:04 PM"

// TimeFilter maps slider progress in [0, 100] onto the commit time range and
// keeps the commits at or before the resulting cutoff.
type TimeFilter struct {
	commits  []models.Commit
	scale    *scale.Time
	progress float64
	cutoff   time.Time
	filtered []models.Commit
}

// NewTimeFilter builds the progress scale over the datetime extent of
// commits. The scale is fixed for the life of the filter. The filter starts
// at progress 100.
func NewTimeFilter(commits []models.Commit) *TimeFilter {
	f := &TimeFilter{commits: commits}
	if min, max, ok := Extent(commits); ok {
		f.scale = scale.NewTime(min, max, 0, 100)
	}
	f.SetProgress(100)
	return f
}

// SetProgress moves the cutoff and returns the commits at or before it.
// Progress outside [0, 100] is clamped.
func (f *TimeFilter) SetProgress(p float64) []models.Commit {
	if math.IsNaN(p) {
		p = 0
	}
	f.progress = math.Max(0, math.Min(100, p))

	if f.scale == nil {
		f.cutoff = time.Time{}
		f.filtered = []models.Commit{}
		return f.filtered
	}

	f.cutoff = f.scale.Invert(f.progress)
	filtered := make([]models.Commit, 0, len(f.commits))
	for _, c := range f.commits {
		if !c.Datetime.After(f.cutoff) {
			filtered = append(filtered, c)
		}
	}
	f.filtered = filtered
	return filtered
}

// Progress returns the clamped slider value
func (f *TimeFilter) Progress() float64 { return f.progress }

// Filtered returns the commits kept by the last SetProgress
func (f *TimeFilter) Filtered() []models.Commit { return f.filtered }

// Commits returns the full commit set the filter was built over
func (f *TimeFilter) Commits() []models.Commit { return f.commits }

// Cutoff returns the current cutoff; ok is false for an empty commit set
func (f *TimeFilter) Cutoff() (time.Time, bool) {
	return f.cutoff, f.scale != nil
}

// CutoffLabel renders the cutoff for display, empty when there is none
func (f *TimeFilter) CutoffLabel() string {
	if f.scale == nil {
		return ""
	}
	return f.cutoff.Format(CutoffLayout)
}

// ProgressAt returns the slider value whose cutoff is t
func (f *TimeFilter) ProgressAt(t time.Time) float64 {
	if f.scale == nil {
		return 0
	}
	return math.Max(0, math.Min(100, f.scale.Map(t)))
}

// Extent returns the earliest and latest commit datetimes
func Extent(commits []models.Commit) (min, max time.Time, ok bool) {
	if len(commits) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = commits[0].Datetime, commits[0].Datetime
	for _, c := range commits[1:] {
		if c.Datetime.Before(min) {
			min = c.Datetime
		}
		if c.Datetime.After(max) {
			max = c.Datetime
		}
	}
	return min, max, true
}
